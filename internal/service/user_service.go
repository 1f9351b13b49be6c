package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sma-records/internal/models"
	appErrors "github.com/noah-isme/sma-records/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.Account, int, error)
	FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Account, error)
	FindByUsername(ctx context.Context, username string) (*models.Account, error)
	Create(ctx context.Context, exec sqlx.ExtContext, account *models.Account) error
	Update(ctx context.Context, account *models.Account) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
}

// CreateAccountRequest represents payload for creating accounts. Exactly one profile must
// be set and it must match Role.
type CreateAccountRequest struct {
	Username  string                 `json:"username" validate:"required,max=50"`
	Password  string                 `json:"password" validate:"required,min=6"`
	FirstName string                 `json:"first_name" validate:"required,max=50"`
	LastName  string                 `json:"last_name" validate:"required,max=50"`
	Email     string                 `json:"email" validate:"required,email,max=100"`
	Role      models.UserRole        `json:"role" validate:"required,role"`
	Admin     *models.AdminProfile   `json:"admin"`
	Teacher   *models.TeacherProfile `json:"teacher"`
	Student   *models.StudentProfile `json:"student"`
}

// UpdateAccountRequest payload for updating accounts. The role cannot change.
type UpdateAccountRequest struct {
	FirstName string                 `json:"first_name" validate:"required,max=50"`
	LastName  string                 `json:"last_name" validate:"required,max=50"`
	Email     string                 `json:"email" validate:"required,email,max=100"`
	Admin     *models.AdminProfile   `json:"admin"`
	Teacher   *models.TeacherProfile `json:"teacher"`
	Student   *models.StudentProfile `json:"student"`
}

// UserService handles account administration.
type UserService struct {
	repo       userRepository
	validator  *validator.Validate
	logger     *zap.Logger
	bcryptCost int
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, validate *validator.Validate, logger *zap.Logger, bcryptCost int) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{repo: repo, validator: ensureValidator(validate), logger: logger, bcryptCost: bcryptCost}
}

// CreateAccount hashes the password and stores the account with its role payload.
func (s *UserService) CreateAccount(ctx context.Context, req CreateAccountRequest) (*models.Account, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid account payload")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	account := &models.Account{
		User: models.User{
			Username:     strings.TrimSpace(req.Username),
			PasswordHash: string(hash),
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Email:        strings.ToLower(req.Email),
			IsActive:     true,
			Role:         req.Role,
		},
		Admin:   req.Admin,
		Teacher: req.Teacher,
		Student: req.Student,
	}
	if err := account.Validate(); err != nil {
		return nil, validationError(err, err.Error())
	}

	if err := s.repo.Create(ctx, nil, account); err != nil {
		if appErrors.Is(err, appErrors.ErrConflict) {
			return nil, appErrors.WrapAs(appErrors.ErrConflict, err, "username already exists")
		}
		return nil, storeFailure(err, "failed to create account")
	}

	s.logger.Info("account created", zap.Int64("user_id", account.ID), zap.String("role", string(account.Role)))
	return account, nil
}

// GetAccount returns the account with id.
func (s *UserService) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	account, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, notFoundAs(err, "user")
	}
	return account, nil
}

// List returns accounts matching filter.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.Account, *models.Pagination, error) {
	if filter.Role != nil && !filter.Role.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown role filter")
	}
	accounts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, storeFailure(err, "failed to list users")
	}
	return accounts, paginationOf(filter.Page, filter.PageSize, total), nil
}

// Update rewrites the header fields and the payload of the account's existing role.
func (s *UserService) Update(ctx context.Context, id int64, req UpdateAccountRequest) (*models.Account, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid account payload")
	}

	account, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, notFoundAs(err, "user")
	}

	account.FirstName = req.FirstName
	account.LastName = req.LastName
	account.Email = strings.ToLower(req.Email)
	switch account.Role {
	case models.RoleAdmin:
		if req.Admin != nil {
			account.Admin = req.Admin
		}
	case models.RoleTeacher:
		if req.Teacher != nil {
			account.Teacher = req.Teacher
		}
	case models.RoleStudent:
		if req.Student != nil {
			account.Student = req.Student
		}
	}

	if err := s.repo.Update(ctx, account); err != nil {
		return nil, notFoundAs(err, "user")
	}
	return account, nil
}

// Deactivate marks the account inactive; it can no longer log in from the store.
func (s *UserService) Deactivate(ctx context.Context, id int64) error {
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return notFoundAs(err, "user")
	}
	s.logger.Info("account deactivated", zap.Int64("user_id", id))
	return nil
}

// ChangePassword verifies the old password before storing the new one.
func (s *UserService) ChangePassword(ctx context.Context, id int64, req models.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid change password payload")
	}

	account, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return notFoundAs(err, "user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.OldPassword)); err != nil {
		return appErrors.Clone(appErrors.ErrForbidden, "old password does not match")
	}
	return s.setPassword(ctx, account.ID, req.NewPassword)
}

// ResetPassword replaces the password of username without checking the old one.
func (s *UserService) ResetPassword(ctx context.Context, username, newPassword string) error {
	if len(newPassword) < 6 {
		return appErrors.Clone(appErrors.ErrValidation, "password must be at least 6 characters")
	}
	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return notFoundAs(err, "user")
	}
	return s.setPassword(ctx, account.ID, newPassword)
}

// Delete removes the account. A teacher still assigned to class sections is restricted.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if appErrors.Is(err, appErrors.ErrReferenceRestricted) {
			return appErrors.WrapAs(appErrors.ErrReferenceRestricted, err, "user is still assigned to class sections")
		}
		return notFoundAs(err, "user")
	}
	s.logger.Info("account deleted", zap.Int64("user_id", id))
	return nil
}

func (s *UserService) setPassword(ctx context.Context, id int64, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	if err := s.repo.UpdatePassword(ctx, id, string(hash)); err != nil {
		return notFoundAs(err, "user")
	}
	return nil
}
