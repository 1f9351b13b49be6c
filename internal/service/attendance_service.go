package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-records/internal/models"
	appErrors "github.com/noah-isme/sma-records/pkg/errors"
)

type attendanceRepository interface {
	CreateRecord(ctx context.Context, exec sqlx.ExtContext, record *models.AttendanceRecord) error
	CreateEntry(ctx context.Context, exec sqlx.ExtContext, entry *models.StudentAttendance) error
	FindRecord(ctx context.Context, id int64) (*models.AttendanceRecord, error)
	ListBySection(ctx context.Context, sectionID int64) ([]models.AttendanceRecord, error)
	Entries(ctx context.Context, recordID int64) ([]models.StudentAttendanceDetail, error)
	CountByStatus(ctx context.Context, studentID, sectionID int64) ([]models.StatusCount, error)
	DeleteRecord(ctx context.Context, id int64) error
}

type sectionLookup interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.ClassSection, error)
}

// AttendanceMark is one student's status in a RecordAttendanceRequest.
type AttendanceMark struct {
	StudentID int64                   `json:"student_id" validate:"required,gt=0"`
	Status    models.AttendanceStatus `json:"status" validate:"required,attendance_status"`
	Comment   string                  `json:"comment" validate:"max=200"`
}

// RecordAttendanceRequest takes the roll for one class meeting.
type RecordAttendanceRequest struct {
	ClassSectionID int64            `json:"class_section_id" validate:"required,gt=0"`
	Date           time.Time        `json:"date" validate:"required"`
	Notes          string           `json:"notes" validate:"max=500"`
	Marks          []AttendanceMark `json:"marks" validate:"required,min=1,dive"`
}

// AttendanceService records class attendance.
type AttendanceService struct {
	attendance  attendanceRepository
	sections    sectionLookup
	enrollments enrollmentChecker
	uow         unitOfWork
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(attendance attendanceRepository, sections sectionLookup, enrollments enrollmentChecker, uow unitOfWork, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		attendance:  attendance,
		sections:    sections,
		enrollments: enrollments,
		uow:         uow,
		validator:   ensureValidator(validate),
		logger:      logger,
	}
}

// Record stores the attendance record and every mark in one unit of work. Each student must
// be enrolled in the section and appear once.
func (s *AttendanceService) Record(ctx context.Context, req RecordAttendanceRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid attendance payload")
	}
	seen := make(map[int64]struct{}, len(req.Marks))
	for _, mark := range req.Marks {
		if _, dup := seen[mark.StudentID]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student "+formatID(mark.StudentID)+" is marked twice")
		}
		seen[mark.StudentID] = struct{}{}
	}

	y, m, d := req.Date.Date()
	record := &models.AttendanceRecord{
		ClassSectionID: req.ClassSectionID,
		Date:           time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Notes:          req.Notes,
	}

	err := s.uow.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		if _, err := s.sections.FindByID(ctx, tx, req.ClassSectionID); err != nil {
			return notFoundAs(err, "class section")
		}
		if err := s.attendance.CreateRecord(ctx, tx, record); err != nil {
			return err
		}
		for _, mark := range req.Marks {
			enrolled, err := s.enrollments.Exists(ctx, tx, mark.StudentID, req.ClassSectionID)
			if err != nil {
				return err
			}
			if !enrolled {
				return appErrors.Clone(appErrors.ErrValidation, "student "+formatID(mark.StudentID)+" is not enrolled in this class section")
			}
			entry := &models.StudentAttendance{
				AttendanceRecordID: record.ID,
				StudentID:          mark.StudentID,
				Status:             mark.Status,
				Comment:            mark.Comment,
			}
			if err := s.attendance.CreateEntry(ctx, tx, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, storeFailure(err, "failed to record attendance")
	}

	s.logger.Info("attendance recorded",
		zap.Int64("section_id", record.ClassSectionID),
		zap.Time("date", record.Date),
		zap.Int("marks", len(req.Marks)),
	)
	return record, nil
}

// ListBySection returns a section's attendance records, newest first.
func (s *AttendanceService) ListBySection(ctx context.Context, sectionID int64) ([]models.AttendanceRecord, error) {
	records, err := s.attendance.ListBySection(ctx, sectionID)
	if err != nil {
		return nil, storeFailure(err, "failed to list attendance records")
	}
	return records, nil
}

// Entries returns the marks of one record.
func (s *AttendanceService) Entries(ctx context.Context, recordID int64) ([]models.StudentAttendanceDetail, error) {
	if _, err := s.attendance.FindRecord(ctx, recordID); err != nil {
		return nil, notFoundAs(err, "attendance record")
	}
	entries, err := s.attendance.Entries(ctx, recordID)
	if err != nil {
		return nil, storeFailure(err, "failed to list attendance entries")
	}
	return entries, nil
}

// StudentSummary counts a student's statuses in a section.
func (s *AttendanceService) StudentSummary(ctx context.Context, studentID, sectionID int64) (*models.AttendanceSummary, error) {
	counts, err := s.attendance.CountByStatus(ctx, studentID, sectionID)
	if err != nil {
		return nil, storeFailure(err, "failed to summarise attendance")
	}

	summary := &models.AttendanceSummary{StudentID: studentID, ClassSectionID: sectionID}
	for _, c := range counts {
		switch c.Status {
		case models.AttendancePresent:
			summary.Present += c.Count
		case models.AttendanceAbsent:
			summary.Absent += c.Count
		case models.AttendanceLate:
			summary.Late += c.Count
		case models.AttendanceExcused:
			summary.Excused += c.Count
		default:
			continue
		}
		summary.Total += c.Count
	}
	return summary, nil
}

// DeleteRecord removes a record and its marks.
func (s *AttendanceService) DeleteRecord(ctx context.Context, id int64) error {
	if err := s.attendance.DeleteRecord(ctx, id); err != nil {
		return notFoundAs(err, "attendance record")
	}
	return nil
}
