package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-records/internal/models"
	appErrors "github.com/noah-isme/sma-records/pkg/errors"
)

type classSectionRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, section *models.ClassSection) error
	FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.ClassSection, error)
	GetDetail(ctx context.Context, id int64) (*models.ClassSectionDetail, error)
	List(ctx context.Context, filter models.ClassSectionFilter) ([]models.ClassSectionDetail, error)
	Delete(ctx context.Context, id int64) error
}

type scheduleRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, entry *models.ScheduleEntry) error
	FindBooking(ctx context.Context, exec sqlx.ExtContext, classroomID, timeSlotID int64, day models.DayOfWeek) (*models.ScheduleEntry, error)
	ListBySection(ctx context.Context, sectionID int64) ([]models.ScheduleEntryDetail, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]models.ScheduleEntryDetail, error)
	Delete(ctx context.Context, id int64) error
}

type courseLookup interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Course, error)
}

type semesterLookup interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Semester, error)
}

type accountLookup interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Account, error)
}

type classroomLookup interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Classroom, error)
}

type timeSlotLookup interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.TimeSlot, error)
}

// ScheduleEntryRequest places a section in a room at a slot on a weekday.
type ScheduleEntryRequest struct {
	TimeSlotID  int64            `json:"time_slot_id" validate:"required,gt=0"`
	ClassroomID int64            `json:"classroom_id" validate:"required,gt=0"`
	DayOfWeek   models.DayOfWeek `json:"day_of_week" validate:"required,weekday"`
}

// CreateSectionRequest describes a class section and its initial weekly schedule.
type CreateSectionRequest struct {
	SectionName string                 `json:"section_name" validate:"required,max=50"`
	MaxCapacity int                    `json:"max_capacity" validate:"required,gt=0"`
	CourseID    int64                  `json:"course_id" validate:"required,gt=0"`
	TeacherID   int64                  `json:"teacher_id" validate:"required,gt=0"`
	SemesterID  int64                  `json:"semester_id" validate:"required,gt=0"`
	Schedule    []ScheduleEntryRequest `json:"schedule" validate:"dive"`
}

// SectionDeps groups the repositories SectionService reads from.
type SectionDeps struct {
	Sections   classSectionRepository
	Schedule   scheduleRepository
	Courses    courseLookup
	Semesters  semesterLookup
	Users      accountLookup
	Classrooms classroomLookup
	TimeSlots  timeSlotLookup
}

// SectionService manages class sections and their weekly schedule.
type SectionService struct {
	deps      SectionDeps
	uow       unitOfWork
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSectionService constructs a SectionService.
func NewSectionService(deps SectionDeps, uow unitOfWork, validate *validator.Validate, logger *zap.Logger) *SectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SectionService{deps: deps, uow: uow, validator: ensureValidator(validate), logger: logger}
}

// Create stores the section and its schedule entries in one unit of work.
func (s *SectionService) Create(ctx context.Context, req CreateSectionRequest) (*models.ClassSection, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid class section payload")
	}

	section := &models.ClassSection{
		SectionName: req.SectionName,
		MaxCapacity: req.MaxCapacity,
		CourseID:    req.CourseID,
		TeacherID:   req.TeacherID,
		SemesterID:  req.SemesterID,
	}

	err := s.uow.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		if _, err := s.deps.Courses.FindByID(ctx, tx, req.CourseID); err != nil {
			return notFoundAs(err, "course")
		}
		if _, err := s.deps.Semesters.FindByID(ctx, tx, req.SemesterID); err != nil {
			return notFoundAs(err, "semester")
		}
		teacher, err := s.deps.Users.FindByID(ctx, tx, req.TeacherID)
		if err != nil {
			return notFoundAs(err, "teacher")
		}
		if teacher.Role != models.RoleTeacher {
			return appErrors.Clone(appErrors.ErrRoleMismatch, "assigned user is not a teacher")
		}

		if err := s.deps.Sections.Create(ctx, tx, section); err != nil {
			return err
		}
		for _, entry := range req.Schedule {
			if _, err := s.book(ctx, tx, section.ID, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, storeFailure(err, "failed to create class section")
	}

	s.logger.Info("class section created",
		zap.Int64("section_id", section.ID),
		zap.Int64("course_id", section.CourseID),
		zap.Int("schedule_entries", len(req.Schedule)),
	)
	return section, nil
}

// Get returns the section with course, teacher and semester names.
func (s *SectionService) Get(ctx context.Context, id int64) (*models.ClassSectionDetail, error) {
	detail, err := s.deps.Sections.GetDetail(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "class section")
	}
	return detail, nil
}

// List returns sections matching filter.
func (s *SectionService) List(ctx context.Context, filter models.ClassSectionFilter) ([]models.ClassSectionDetail, error) {
	sections, err := s.deps.Sections.List(ctx, filter)
	if err != nil {
		return nil, storeFailure(err, "failed to list class sections")
	}
	return sections, nil
}

// ListByCourse returns the sections of a course.
func (s *SectionService) ListByCourse(ctx context.Context, courseID int64) ([]models.ClassSectionDetail, error) {
	return s.List(ctx, models.ClassSectionFilter{CourseID: courseID})
}

// ListByTeacher returns the sections a teacher runs.
func (s *SectionService) ListByTeacher(ctx context.Context, teacherID int64) ([]models.ClassSectionDetail, error) {
	return s.List(ctx, models.ClassSectionFilter{TeacherID: teacherID})
}

// ListBySemester returns the sections of a semester.
func (s *SectionService) ListBySemester(ctx context.Context, semesterID int64) ([]models.ClassSectionDetail, error) {
	return s.List(ctx, models.ClassSectionFilter{SemesterID: semesterID})
}

// Delete removes a section with everything that belongs to it.
func (s *SectionService) Delete(ctx context.Context, id int64) error {
	if err := s.deps.Sections.Delete(ctx, id); err != nil {
		return notFoundAs(err, "class section")
	}
	s.logger.Info("class section deleted", zap.Int64("section_id", id))
	return nil
}

// AddScheduleEntry books a room for the section. A room already booked for the slot and day conflicts.
func (s *SectionService) AddScheduleEntry(ctx context.Context, sectionID int64, req ScheduleEntryRequest) (*models.ScheduleEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid schedule entry payload")
	}

	var entry *models.ScheduleEntry
	err := s.uow.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		if _, err := s.deps.Sections.FindByID(ctx, tx, sectionID); err != nil {
			return notFoundAs(err, "class section")
		}
		booked, err := s.book(ctx, tx, sectionID, req)
		entry = booked
		return err
	})
	if err != nil {
		return nil, storeFailure(err, "failed to add schedule entry")
	}
	return entry, nil
}

// ListSchedule returns a section's weekly schedule, Monday first.
func (s *SectionService) ListSchedule(ctx context.Context, sectionID int64) ([]models.ScheduleEntryDetail, error) {
	entries, err := s.deps.Schedule.ListBySection(ctx, sectionID)
	if err != nil {
		return nil, storeFailure(err, "failed to list schedule")
	}
	return entries, nil
}

// TeacherTimetable returns every schedule entry of the teacher's sections.
func (s *SectionService) TeacherTimetable(ctx context.Context, teacherID int64) ([]models.ScheduleEntryDetail, error) {
	entries, err := s.deps.Schedule.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, storeFailure(err, "failed to load timetable")
	}
	return entries, nil
}

// DeleteScheduleEntry removes one schedule entry.
func (s *SectionService) DeleteScheduleEntry(ctx context.Context, id int64) error {
	if err := s.deps.Schedule.Delete(ctx, id); err != nil {
		return notFoundAs(err, "schedule entry")
	}
	return nil
}

func (s *SectionService) book(ctx context.Context, tx sqlx.ExtContext, sectionID int64, req ScheduleEntryRequest) (*models.ScheduleEntry, error) {
	if _, err := s.deps.Classrooms.FindByID(ctx, tx, req.ClassroomID); err != nil {
		return nil, notFoundAs(err, "classroom")
	}
	if _, err := s.deps.TimeSlots.FindByID(ctx, tx, req.TimeSlotID); err != nil {
		return nil, notFoundAs(err, "time slot")
	}

	existing, err := s.deps.Schedule.FindBooking(ctx, tx, req.ClassroomID, req.TimeSlotID, req.DayOfWeek)
	switch {
	case err == nil:
		return nil, appErrors.Clone(appErrors.ErrConflict,
			"classroom is already booked by class section "+formatID(existing.ClassSectionID))
	case !appErrors.Is(err, appErrors.ErrNotFound):
		return nil, err
	}

	entry := &models.ScheduleEntry{
		ClassSectionID: sectionID,
		TimeSlotID:     req.TimeSlotID,
		ClassroomID:    req.ClassroomID,
		DayOfWeek:      req.DayOfWeek,
	}
	if err := s.deps.Schedule.Create(ctx, tx, entry); err != nil {
		if appErrors.Is(err, appErrors.ErrConflict) {
			return nil, appErrors.WrapAs(appErrors.ErrConflict, err, "classroom is already booked for this slot")
		}
		return nil, err
	}
	return entry, nil
}
