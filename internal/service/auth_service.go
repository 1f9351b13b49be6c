package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sma-records/internal/models"
	appErrors "github.com/noah-isme/sma-records/pkg/errors"
)

type credentialStore interface {
	FindCredentials(ctx context.Context, username string) (*models.Credentials, error)
	FindAccount(ctx context.Context, id int64, role models.UserRole) (*models.Account, error)
}

// SessionEvent identifies a session transition.
type SessionEvent string

const (
	UserLoggedIn  SessionEvent = "user_logged_in"
	UserLoggedOut SessionEvent = "user_logged_out"
)

// SessionListener observes session transitions. account is nil for UserLoggedOut.
// Listeners must not call Login or Logout.
type SessionListener func(event SessionEvent, account *models.Account)

// AuthConfig defines configuration for the session.
type AuthConfig struct {
	OfflineFallback bool
	SessionSecret   string
	SessionTTL      time.Duration
	Issuer          string
}

// AuthService holds the single process-wide session.
type AuthService struct {
	store   credentialStore
	logger  *zap.Logger
	metrics *MetricsService
	config  AuthConfig

	// opMu serialises whole transitions, listener calls included.
	opMu sync.Mutex
	mu   sync.RWMutex

	account   *models.Account
	sessionID string
	listeners []SessionListener
}

// NewAuthService constructs an AuthService in the LoggedOut state.
func NewAuthService(store credentialStore, metrics *MetricsService, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = 8 * time.Hour
	}
	return &AuthService{store: store, metrics: metrics, logger: logger, config: config}
}

// Subscribe registers a listener. Listeners run synchronously in registration order
// after the state change is visible.
func (s *AuthService) Subscribe(listener SessionListener) {
	if listener == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, listener)
	s.mu.Unlock()
}

// Login authenticates against the store, falling back to the offline table, and reports
// whether a session was started. Failure causes are logged, never returned.
func (s *AuthService) Login(ctx context.Context, username, password string) bool {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	_, ok := s.login(ctx, username, password)
	return ok
}

// StartSession logs in and issues the session token in one step.
func (s *AuthService) StartSession(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	account, ok := s.login(ctx, req.Username, req.Password)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid username or password")
	}

	s.mu.RLock()
	sessionID := s.sessionID
	s.mu.RUnlock()

	token, expiresAt, err := s.signToken(account, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to issue session token")
	}
	return &models.LoginResponse{Token: token, ExpiresAt: expiresAt, Account: account}, nil
}

// Logout ends the session. It is a no-op when nobody is logged in.
func (s *AuthService) Logout() {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.logout()
}

// Current returns the logged-in account.
func (s *AuthService) Current() (*models.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account, s.account != nil
}

// IsInRole reports whether the session is LoggedIn with the given role.
func (s *AuthService) IsInRole(role models.UserRole) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account != nil && s.account.Role == role
}

// Authenticate validates a session token and checks it belongs to the live session.
func (s *AuthService) Authenticate(tokenString string) (*models.Account, error) {
	claims := &models.SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.SessionSecret), nil
	}, jwt.WithIssuer(s.config.Issuer))
	if err != nil || !token.Valid {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid session token")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.account == nil || s.account.ID != claims.UserID || s.account.Offline != claims.Offline || s.sessionID != claims.ID {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session has ended")
	}
	return s.account, nil
}

func (s *AuthService) login(ctx context.Context, username, password string) (*models.Account, bool) {
	s.logout()

	source := LoginSourceStore
	account := s.storeAccount(ctx, username, password)
	if account == nil && s.config.OfflineFallback {
		account = offlineAccount(username, password)
		source = LoginSourceOffline
	}
	if account == nil {
		s.metrics.RecordLogin(LoginSourceRejected)
		s.logger.Info("login rejected", zap.String("username", username))
		return nil, false
	}

	s.mu.Lock()
	s.account = account
	s.sessionID = uuid.NewString()
	s.mu.Unlock()

	s.metrics.RecordLogin(source)
	s.metrics.SetSessionActive(true)
	s.logger.Info("user logged in",
		zap.String("username", account.Username),
		zap.String("role", string(account.Role)),
		zap.Bool("offline", account.Offline),
	)
	s.notify(UserLoggedIn, account)
	return account, true
}

func (s *AuthService) logout() {
	s.mu.Lock()
	previous := s.account
	s.account = nil
	s.sessionID = ""
	s.mu.Unlock()

	if previous == nil {
		return
	}
	s.metrics.SetSessionActive(false)
	s.logger.Info("user logged out", zap.String("username", previous.Username))
	s.notify(UserLoggedOut, nil)
}

// storeAccount runs the two-step store lookup and returns nil on any failure.
func (s *AuthService) storeAccount(ctx context.Context, username, password string) *models.Account {
	if s.store == nil {
		return nil
	}

	creds, err := s.store.FindCredentials(ctx, username)
	if err != nil {
		s.storeFailed("find credentials", username, err)
		return nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("password mismatch", zap.String("username", username))
		return nil
	}
	if !creds.IsActive {
		s.logger.Info("inactive account", zap.String("username", username))
		return nil
	}

	account, err := s.store.FindAccount(ctx, creds.ID, creds.Role)
	if err != nil {
		s.storeFailed("load account", username, err)
		return nil
	}
	return account
}

func (s *AuthService) storeFailed(step, username string, err error) {
	code := appErrors.FromError(err).Code
	s.metrics.RecordStoreFailure(code)
	if code == appErrors.ErrNotFound.Code {
		s.logger.Info("unknown username", zap.String("username", username))
		return
	}
	s.logger.Warn("login store step failed",
		zap.String("step", step),
		zap.String("username", username),
		zap.String("code", code),
		zap.Error(err),
	)
}

func (s *AuthService) notify(event SessionEvent, account *models.Account) {
	s.mu.RLock()
	listeners := make([]SessionListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(event, account)
	}
}

func (s *AuthService) signToken(account *models.Account, sessionID string) (string, time.Time, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.config.SessionTTL)
	claims := &models.SessionClaims{
		UserID:  account.ID,
		Role:    account.Role,
		Offline: account.Offline,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Issuer:    s.config.Issuer,
			Subject:   strconv.FormatInt(account.ID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.SessionSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// offlineAccount matches the fixed fallback table by exact equality. Offline ids are negative so
// they never name a stored row.
func offlineAccount(username, password string) *models.Account {
	var account *models.Account
	switch {
	case username == "admin" && password == "admin123":
		account = models.NewAdminAccount(models.User{
			ID: -1, Username: "admin", FirstName: "Quản trị", LastName: "Hệ thống",
			Email: "admin@school.edu", IsActive: true,
		}, models.AdminProfile{Position: "Quản trị viên hệ thống"})
	case username == "teacher" && password == "teacher123":
		account = models.NewTeacherAccount(models.User{
			ID: -2, Username: "teacher", FirstName: "Nguyễn", LastName: "Văn A",
			Email: "nguyenvana@school.edu", IsActive: true,
		}, models.TeacherProfile{TeacherCode: "GV001", Department: "Công nghệ thông tin"})
	case username == "student" && password == "student123":
		year := 2
		account = models.NewStudentAccount(models.User{
			ID: -3, Username: "student", FirstName: "Trần", LastName: "Thị B",
			Email: "tranthib@school.edu", IsActive: true,
		}, models.StudentProfile{StudentCode: "HS001", CurrentYear: &year})
	default:
		return nil
	}
	account.Offline = true
	return account
}
