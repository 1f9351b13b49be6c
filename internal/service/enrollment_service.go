package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-records/internal/models"
	appErrors "github.com/noah-isme/sma-records/pkg/errors"
)

type enrollmentRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, enrollment *models.Enrollment) error
	FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Enrollment, error)
	Exists(ctx context.Context, exec sqlx.ExtContext, studentID, sectionID int64) (bool, error)
	ListBySection(ctx context.Context, sectionID int64) ([]models.EnrollmentDetail, error)
	ListByStudent(ctx context.Context, studentID int64) ([]models.EnrollmentDetail, error)
	Complete(ctx context.Context, id int64, grade decimal.Decimal) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id int64) error
}

type seatRepository interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.ClassSection, error)
	ReserveSeat(ctx context.Context, exec sqlx.ExtContext, id int64) (bool, error)
	ReleaseSeat(ctx context.Context, exec sqlx.ExtContext, id int64) error
}

var maxFinalGrade = decimal.NewFromInt(10)

// EnrollmentService enrolls students into class sections within their capacity.
type EnrollmentService struct {
	enrollments enrollmentRepository
	sections    seatRepository
	users       accountLookup
	uow         unitOfWork
	metrics     *MetricsService
	logger      *zap.Logger
	now         func() time.Time
}

// NewEnrollmentService constructs an EnrollmentService.
func NewEnrollmentService(enrollments enrollmentRepository, sections seatRepository, users accountLookup, uow unitOfWork, metrics *MetricsService, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		enrollments: enrollments,
		sections:    sections,
		users:       users,
		uow:         uow,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// Enroll adds an active student to a section. A duplicate enrollment conflicts and a full
// section is rejected with CAPACITY_EXCEEDED.
func (s *EnrollmentService) Enroll(ctx context.Context, studentID, sectionID int64) (*models.Enrollment, error) {
	enrollment := &models.Enrollment{
		StudentID:      studentID,
		ClassSectionID: sectionID,
		EnrollmentDate: s.now().UTC(),
	}

	err := s.uow.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		student, err := s.users.FindByID(ctx, tx, studentID)
		if err != nil {
			return notFoundAs(err, "student")
		}
		if student.Role != models.RoleStudent {
			return appErrors.Clone(appErrors.ErrRoleMismatch, "only students can enroll")
		}
		if !student.IsActive {
			return appErrors.Clone(appErrors.ErrValidation, "student account is inactive")
		}
		if _, err := s.sections.FindByID(ctx, tx, sectionID); err != nil {
			return notFoundAs(err, "class section")
		}

		exists, err := s.enrollments.Exists(ctx, tx, studentID, sectionID)
		if err != nil {
			return err
		}
		if exists {
			return appErrors.Clone(appErrors.ErrConflict, "student is already enrolled in this class section")
		}

		reserved, err := s.sections.ReserveSeat(ctx, tx, sectionID)
		if err != nil {
			return err
		}
		if !reserved {
			return appErrors.Clone(appErrors.ErrCapacityExceeded, "class section is full")
		}

		return s.enrollments.Create(ctx, tx, enrollment)
	})
	if err != nil {
		err = storeFailure(err, "failed to enroll student")
		s.metrics.RecordEnrollment(appErrors.FromError(err).Code)
		s.logger.Info("enrollment rejected",
			zap.Int64("student_id", studentID),
			zap.Int64("section_id", sectionID),
			zap.Error(err),
		)
		return nil, err
	}

	s.metrics.RecordEnrollment("ok")
	s.logger.Info("student enrolled", zap.Int64("student_id", studentID), zap.Int64("section_id", sectionID))
	return enrollment, nil
}

// Withdraw removes an enrollment and frees its seat.
func (s *EnrollmentService) Withdraw(ctx context.Context, enrollmentID int64) error {
	err := s.uow.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		enrollment, err := s.enrollments.FindByID(ctx, tx, enrollmentID)
		if err != nil {
			return notFoundAs(err, "enrollment")
		}
		if err := s.enrollments.Delete(ctx, tx, enrollmentID); err != nil {
			return err
		}
		return s.sections.ReleaseSeat(ctx, tx, enrollment.ClassSectionID)
	})
	if err != nil {
		return storeFailure(err, "failed to withdraw enrollment")
	}
	return nil
}

// Complete records the final grade (0-10, two decimals) and marks the enrollment completed.
func (s *EnrollmentService) Complete(ctx context.Context, enrollmentID int64, finalGrade decimal.Decimal) error {
	if finalGrade.IsNegative() || finalGrade.GreaterThan(maxFinalGrade) {
		return appErrors.Clone(appErrors.ErrValidation, "final grade must be between 0 and 10")
	}
	if err := s.enrollments.Complete(ctx, enrollmentID, finalGrade.Round(2)); err != nil {
		return notFoundAs(err, "enrollment")
	}
	return nil
}

// ListBySection returns a section's roster.
func (s *EnrollmentService) ListBySection(ctx context.Context, sectionID int64) ([]models.EnrollmentDetail, error) {
	items, err := s.enrollments.ListBySection(ctx, sectionID)
	if err != nil {
		return nil, storeFailure(err, "failed to list enrollments")
	}
	return items, nil
}

// ListByStudent returns a student's enrollments.
func (s *EnrollmentService) ListByStudent(ctx context.Context, studentID int64) ([]models.EnrollmentDetail, error) {
	items, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, storeFailure(err, "failed to list enrollments")
	}
	return items, nil
}
