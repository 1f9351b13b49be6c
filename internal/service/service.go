package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-records/internal/models"
	appErrors "github.com/noah-isme/sma-records/pkg/errors"
)

// unitOfWork runs fn inside one store transaction.
type unitOfWork interface {
	WithinTx(ctx context.Context, fn func(tx sqlx.ExtContext) error) error
}

// NewValidator returns a validator with the domain enum rules registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	registerDomainRules(v)
	return v
}

func registerDomainRules(v *validator.Validate) {
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return models.UserRole(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		return models.AttendanceStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		return models.DayOfWeek(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("audience", func(fl validator.FieldLevel) bool {
		return models.AnnouncementAudience(fl.Field().String()).Valid()
	})
}

func ensureValidator(v *validator.Validate) *validator.Validate {
	if v == nil {
		return NewValidator()
	}
	registerDomainRules(v)
	return v
}

func validationError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

// storeFailure keeps typed repository errors and wraps anything else as internal.
func storeFailure(err error, message string) error {
	var typed *appErrors.Error
	if errors.As(err, &typed) {
		return err
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

// notFoundAs rewrites a NOT_FOUND with a message naming the missing entity.
func notFoundAs(err error, entity string) error {
	if appErrors.Is(err, appErrors.ErrNotFound) {
		return appErrors.WrapAs(appErrors.ErrNotFound, err, entity+" not found")
	}
	return storeFailure(err, "failed to load "+entity)
}

func paginationOf(page, pageSize, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
