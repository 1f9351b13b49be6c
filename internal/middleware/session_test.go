package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-records/internal/models"
	appErrors "github.com/noah-isme/sma-records/pkg/errors"
)

type fakeSession struct {
	token   string
	account *models.Account
}

func (f *fakeSession) Authenticate(token string) (*models.Account, error) {
	if f.account == nil || token != f.token {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session has ended")
	}
	return f.account, nil
}

func (f *fakeSession) IsInRole(role models.UserRole) bool {
	return f.account != nil && f.account.Role == role
}

type observation struct {
	method, path string
	status       int
}

type recordingObserver struct{ seen []observation }

func (r *recordingObserver) ObserveHTTPRequest(method, path string, status int, _ time.Duration) {
	r.seen = append(r.seen, observation{method, path, status})
}

func newTestRouter(session *fakeSession, observer *recordingObserver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics(observer, "/metrics"))
	r.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })

	protected := r.Group("/", Session(session))
	protected.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, CurrentAccount(c).Username)
	})
	protected.GET("/admin", RequireRoles(session, models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	protected.GET("/users/:id", RequireRolesOrSelf(session, "id", models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func serve(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestSessionRequiresLiveToken(t *testing.T) {
	session := &fakeSession{token: "tok", account: models.NewTeacherAccount(models.User{ID: 2, Username: "teacher"}, models.TeacherProfile{})}
	r := newTestRouter(session, &recordingObserver{})

	assert.Equal(t, http.StatusUnauthorized, serve(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "/me", "stale").Code)

	w := serve(r, "/me", "tok")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "teacher", w.Body.String())

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Basic dGVhY2hlcg==")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRoles(t *testing.T) {
	session := &fakeSession{token: "tok", account: models.NewTeacherAccount(models.User{ID: 2, Username: "teacher"}, models.TeacherProfile{})}
	r := newTestRouter(session, &recordingObserver{})

	assert.Equal(t, http.StatusForbidden, serve(r, "/admin", "tok").Code)
	assert.Equal(t, http.StatusOK, serve(r, "/users/2", "tok").Code)
	assert.Equal(t, http.StatusForbidden, serve(r, "/users/3", "tok").Code)

	session.account = models.NewAdminAccount(models.User{ID: 1, Username: "admin"}, models.AdminProfile{})
	assert.Equal(t, http.StatusOK, serve(r, "/admin", "tok").Code)
	assert.Equal(t, http.StatusOK, serve(r, "/users/3", "tok").Code)
}

func TestRequireRolesOrSelfIgnoresOfflineAccounts(t *testing.T) {
	offline := models.NewStudentAccount(models.User{ID: -3, Username: "student"}, models.StudentProfile{})
	offline.Offline = true
	session := &fakeSession{token: "tok", account: offline}
	r := newTestRouter(session, &recordingObserver{})

	assert.Equal(t, http.StatusForbidden, serve(r, "/users/-3", "tok").Code)
	assert.Equal(t, http.StatusForbidden, serve(r, "/users/3", "tok").Code)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	observer := &recordingObserver{}
	session := &fakeSession{token: "tok", account: models.NewAdminAccount(models.User{ID: 1}, models.AdminProfile{})}
	r := newTestRouter(session, observer)

	serve(r, "/users/42", "tok")
	serve(r, "/metrics", "")
	serve(r, "/nowhere", "")

	require.Len(t, observer.seen, 2)
	assert.Equal(t, observation{http.MethodGet, "/users/:id", http.StatusOK}, observer.seen[0])
	assert.Equal(t, observation{http.MethodGet, "unmatched", http.StatusNotFound}, observer.seen[1])
}
