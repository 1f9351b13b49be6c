package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-records/internal/models"
	appErrors "github.com/noah-isme/sma-records/pkg/errors"
	"github.com/noah-isme/sma-records/pkg/response"
)

type sessionService interface {
	StartSession(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Logout()
}

type passwordChanger interface {
	ChangePassword(ctx context.Context, id int64, req models.ChangePasswordRequest) error
}

// AuthHandler wires HTTP endpoints to the session service.
type AuthHandler struct {
	sessions  sessionService
	passwords passwordChanger
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(sessions sessionService, passwords passwordChanger) *AuthHandler {
	return &AuthHandler{sessions: sessions, passwords: passwords}
}

// Login godoc
// @Summary Log in
// @Description Starts the session. Store credentials are tried first, then the offline table when enabled.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req, "invalid login payload") {
		return
	}

	res, err := h.sessions.StartSession(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// Logout godoc
// @Summary Log out
// @Description Ends the current session; its token stops working.
// @Tags Authentication
// @Success 204
// @Failure 401 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.Logout()
	response.NoContent(c)
}

// Me godoc
// @Summary Current account
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	account := accountFromContext(c)
	if account == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.OK(c, account)
}

// ChangePassword godoc
// @Summary Change password
// @Description Offline sessions cannot change passwords.
// @Tags Authentication
// @Accept json
// @Param payload body models.ChangePasswordRequest true "Change password"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	account := accountFromContext(c)
	if account == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if account.Offline {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "offline accounts have no stored password"))
		return
	}

	var req models.ChangePasswordRequest
	if !bindJSON(c, &req, "invalid payload") {
		return
	}
	if err := h.passwords.ChangePassword(c.Request.Context(), account.ID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
