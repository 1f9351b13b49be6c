package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-records/internal/middleware"
	"github.com/noah-isme/sma-records/internal/models"
	appErrors "github.com/noah-isme/sma-records/pkg/errors"
)

type sessionServiceMock struct {
	resp       *models.LoginResponse
	err        error
	lastReq    models.LoginRequest
	loggedOut  bool
	changedFor int64
}

func (m *sessionServiceMock) StartSession(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	m.lastReq = req
	return m.resp, m.err
}

func (m *sessionServiceMock) Logout() { m.loggedOut = true }

func (m *sessionServiceMock) ChangePassword(ctx context.Context, id int64, req models.ChangePasswordRequest) error {
	m.changedFor = id
	return nil
}

func newJSONContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var payload []byte
	switch b := body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	default:
		payload, _ = json.Marshal(b)
	}
	req, _ := http.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var env map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestAuthHandlerLogin(t *testing.T) {
	account := models.NewAdminAccount(models.User{ID: 1, Username: "admin"}, models.AdminProfile{})
	mockSvc := &sessionServiceMock{resp: &models.LoginResponse{Token: "tok", Account: account}}
	h := NewAuthHandler(mockSvc, mockSvc)

	c, w := newJSONContext(http.MethodPost, "/auth/login", models.LoginRequest{Username: "admin", Password: "admin123"})
	h.Login(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", mockSvc.lastReq.Username)
	assert.Contains(t, string(decodeEnvelope(t, w)["data"]), `"token":"tok"`)

	mockSvc.err = appErrors.Clone(appErrors.ErrUnauthorized, "invalid username or password")
	c, w = newJSONContext(http.MethodPost, "/auth/login", models.LoginRequest{Username: "admin", Password: "nope"})
	h.Login(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c, w = newJSONContext(http.MethodPost, "/auth/login", `{"username":`)
	h.Login(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandlerMeAndLogout(t *testing.T) {
	mockSvc := &sessionServiceMock{}
	h := NewAuthHandler(mockSvc, mockSvc)

	c, w := newJSONContext(http.MethodGet, "/auth/me", nil)
	h.Me(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c, w = newJSONContext(http.MethodGet, "/auth/me", nil)
	c.Set(middleware.ContextAccountKey, models.NewStudentAccount(models.User{ID: 3, Username: "student"}, models.StudentProfile{StudentCode: "HS001"}))
	h.Me(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decodeEnvelope(t, w)["data"]), `"student_code":"HS001"`)

	c, w = newJSONContext(http.MethodPost, "/auth/logout", nil)
	h.Logout(c)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, mockSvc.loggedOut)
}

func TestAuthHandlerChangePasswordRejectsOfflineAccount(t *testing.T) {
	mockSvc := &sessionServiceMock{}
	h := NewAuthHandler(mockSvc, mockSvc)
	payload := models.ChangePasswordRequest{OldPassword: "teacher123", NewPassword: "another1"}

	offline := models.NewTeacherAccount(models.User{ID: -2, Username: "teacher"}, models.TeacherProfile{})
	offline.Offline = true
	c, w := newJSONContext(http.MethodPost, "/auth/change-password", payload)
	c.Set(middleware.ContextAccountKey, offline)
	h.ChangePassword(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Zero(t, mockSvc.changedFor)

	stored := models.NewTeacherAccount(models.User{ID: 7, Username: "gv7"}, models.TeacherProfile{})
	c, w = newJSONContext(http.MethodPost, "/auth/change-password", payload)
	c.Set(middleware.ContextAccountKey, stored)
	h.ChangePassword(c)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, int64(7), mockSvc.changedFor)
}
