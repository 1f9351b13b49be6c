package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-records/internal/models"
	appErrors "github.com/noah-isme/sma-records/pkg/errors"
)

type courseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Course, error)
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id int64) error
}

type semesterRepository interface {
	Create(ctx context.Context, semester *models.Semester) error
	FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Semester, error)
	List(ctx context.Context) ([]models.Semester, error)
	FindActive(ctx context.Context) (*models.Semester, error)
	DeactivateAll(ctx context.Context, exec sqlx.ExtContext) error
	SetActive(ctx context.Context, exec sqlx.ExtContext, id int64) error
	Delete(ctx context.Context, id int64) error
}

type classroomRepository interface {
	Create(ctx context.Context, room *models.Classroom) error
	FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Classroom, error)
	List(ctx context.Context) ([]models.Classroom, error)
	Delete(ctx context.Context, id int64) error
}

type timeSlotRepository interface {
	Create(ctx context.Context, slot *models.TimeSlot) error
	FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.TimeSlot, error)
	List(ctx context.Context) ([]models.TimeSlot, error)
	Delete(ctx context.Context, id int64) error
}

// CourseRequest is the payload for creating or updating a course.
type CourseRequest struct {
	CourseCode  string `json:"course_code" validate:"required,max=20"`
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Credits     int    `json:"credits" validate:"gte=0,lte=20"`
	Department  string `json:"department" validate:"max=50"`
}

// CreateSemesterRequest describes a new semester.
type CreateSemesterRequest struct {
	Name      string    `json:"name" validate:"required,max=50"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
	IsActive  bool      `json:"is_active"`
}

// ClassroomRequest describes a new classroom.
type ClassroomRequest struct {
	RoomNumber string `json:"room_number" validate:"required,max=20"`
	Building   string `json:"building" validate:"max=50"`
	Floor      *int   `json:"floor"`
	Capacity   int    `json:"capacity" validate:"gte=0"`
	RoomType   string `json:"room_type" validate:"max=50"`
	Facilities string `json:"facilities" validate:"max=200"`
}

// TimeSlotRequest describes a new time slot; times are "15:04".
type TimeSlotRequest struct {
	Name        string `json:"name" validate:"required,max=50"`
	StartTime   string `json:"start_time" validate:"required"`
	EndTime     string `json:"end_time" validate:"required"`
	Description string `json:"description" validate:"max=200"`
}

// CatalogService manages the reference data class sections are built from.
type CatalogService struct {
	courses    courseRepository
	semesters  semesterRepository
	classrooms classroomRepository
	timeSlots  timeSlotRepository
	uow        unitOfWork
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(courses courseRepository, semesters semesterRepository, classrooms classroomRepository, timeSlots timeSlotRepository, uow unitOfWork, validate *validator.Validate, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		courses:    courses,
		semesters:  semesters,
		classrooms: classrooms,
		timeSlots:  timeSlots,
		uow:        uow,
		validator:  ensureValidator(validate),
		logger:     logger,
	}
}

// CreateCourse adds a course. Duplicate course codes conflict.
func (s *CatalogService) CreateCourse(ctx context.Context, req CourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid course payload")
	}
	course := &models.Course{
		CourseCode:  strings.ToUpper(strings.TrimSpace(req.CourseCode)),
		Name:        req.Name,
		Description: req.Description,
		Credits:     req.Credits,
		Department:  req.Department,
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, courseWriteError(err)
	}
	return course, nil
}

// GetCourse returns a course by id.
func (s *CatalogService) GetCourse(ctx context.Context, id int64) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, nil, id)
	if err != nil {
		return nil, notFoundAs(err, "course")
	}
	return course, nil
}

// ListCourses returns paginated courses.
func (s *CatalogService) ListCourses(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error) {
	courses, total, err := s.courses.List(ctx, filter)
	if err != nil {
		return nil, nil, storeFailure(err, "failed to list courses")
	}
	return courses, paginationOf(filter.Page, filter.PageSize, total), nil
}

// UpdateCourse rewrites a course.
func (s *CatalogService) UpdateCourse(ctx context.Context, id int64, req CourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid course payload")
	}
	course, err := s.courses.FindByID(ctx, nil, id)
	if err != nil {
		return nil, notFoundAs(err, "course")
	}
	course.CourseCode = strings.ToUpper(strings.TrimSpace(req.CourseCode))
	course.Name = req.Name
	course.Description = req.Description
	course.Credits = req.Credits
	course.Department = req.Department
	if err := s.courses.Update(ctx, course); err != nil {
		return nil, courseWriteError(err)
	}
	return course, nil
}

// DeleteCourse removes a course. Courses with class sections are restricted.
func (s *CatalogService) DeleteCourse(ctx context.Context, id int64) error {
	return restrictedDelete(s.courses.Delete(ctx, id), "course", "course has class sections")
}

// CreateSemester adds a semester; an active semester deactivates the others.
func (s *CatalogService) CreateSemester(ctx context.Context, req CreateSemesterRequest) (*models.Semester, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid semester payload")
	}
	if !req.EndDate.After(req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must be after start_date")
	}

	semester := &models.Semester{Name: req.Name, StartDate: req.StartDate, EndDate: req.EndDate}
	if err := s.semesters.Create(ctx, semester); err != nil {
		return nil, storeFailure(err, "failed to create semester")
	}
	if req.IsActive {
		if err := s.ActivateSemester(ctx, semester.ID); err != nil {
			return nil, err
		}
		semester.IsActive = true
	}
	return semester, nil
}

// ListSemesters returns every semester.
func (s *CatalogService) ListSemesters(ctx context.Context) ([]models.Semester, error) {
	semesters, err := s.semesters.List(ctx)
	if err != nil {
		return nil, storeFailure(err, "failed to list semesters")
	}
	return semesters, nil
}

// ActiveSemester returns the active semester.
func (s *CatalogService) ActiveSemester(ctx context.Context) (*models.Semester, error) {
	semester, err := s.semesters.FindActive(ctx)
	if err != nil {
		return nil, notFoundAs(err, "active semester")
	}
	return semester, nil
}

// ActivateSemester makes id the only active semester.
func (s *CatalogService) ActivateSemester(ctx context.Context, id int64) error {
	err := s.uow.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		if _, err := s.semesters.FindByID(ctx, tx, id); err != nil {
			return notFoundAs(err, "semester")
		}
		if err := s.semesters.DeactivateAll(ctx, tx); err != nil {
			return err
		}
		return s.semesters.SetActive(ctx, tx, id)
	})
	if err != nil {
		return storeFailure(err, "failed to activate semester")
	}
	s.logger.Info("semester activated", zap.Int64("semester_id", id))
	return nil
}

// DeleteSemester removes a semester. Semesters with class sections are restricted.
func (s *CatalogService) DeleteSemester(ctx context.Context, id int64) error {
	return restrictedDelete(s.semesters.Delete(ctx, id), "semester", "semester has class sections")
}

// CreateClassroom adds a classroom.
func (s *CatalogService) CreateClassroom(ctx context.Context, req ClassroomRequest) (*models.Classroom, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid classroom payload")
	}
	room := &models.Classroom{
		RoomNumber: req.RoomNumber,
		Building:   req.Building,
		Floor:      req.Floor,
		Capacity:   req.Capacity,
		RoomType:   req.RoomType,
		Facilities: req.Facilities,
	}
	if err := s.classrooms.Create(ctx, room); err != nil {
		return nil, storeFailure(err, "failed to create classroom")
	}
	return room, nil
}

// ListClassrooms returns every classroom.
func (s *CatalogService) ListClassrooms(ctx context.Context) ([]models.Classroom, error) {
	rooms, err := s.classrooms.List(ctx)
	if err != nil {
		return nil, storeFailure(err, "failed to list classrooms")
	}
	return rooms, nil
}

// DeleteClassroom removes a classroom and its schedule entries.
func (s *CatalogService) DeleteClassroom(ctx context.Context, id int64) error {
	if err := s.classrooms.Delete(ctx, id); err != nil {
		return notFoundAs(err, "classroom")
	}
	return nil
}

// CreateTimeSlot adds a time slot; the end must follow the start.
func (s *CatalogService) CreateTimeSlot(ctx context.Context, req TimeSlotRequest) (*models.TimeSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid time slot payload")
	}
	start, err := models.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return nil, validationError(err, "invalid start_time")
	}
	end, err := models.ParseTimeOfDay(req.EndTime)
	if err != nil {
		return nil, validationError(err, "invalid end_time")
	}
	if end <= start {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_time must be after start_time")
	}

	slot := &models.TimeSlot{Name: req.Name, StartTime: start, EndTime: end, Description: req.Description}
	if err := s.timeSlots.Create(ctx, slot); err != nil {
		return nil, storeFailure(err, "failed to create time slot")
	}
	return slot, nil
}

// ListTimeSlots returns every time slot ordered by start.
func (s *CatalogService) ListTimeSlots(ctx context.Context) ([]models.TimeSlot, error) {
	slots, err := s.timeSlots.List(ctx)
	if err != nil {
		return nil, storeFailure(err, "failed to list time slots")
	}
	return slots, nil
}

// DeleteTimeSlot removes a time slot and its schedule entries.
func (s *CatalogService) DeleteTimeSlot(ctx context.Context, id int64) error {
	if err := s.timeSlots.Delete(ctx, id); err != nil {
		return notFoundAs(err, "time slot")
	}
	return nil
}

func courseWriteError(err error) error {
	if appErrors.Is(err, appErrors.ErrConflict) {
		return appErrors.WrapAs(appErrors.ErrConflict, err, "course code already exists")
	}
	return notFoundAs(err, "course")
}

func restrictedDelete(err error, entity, restrictedMessage string) error {
	if err == nil {
		return nil
	}
	if appErrors.Is(err, appErrors.ErrReferenceRestricted) {
		return appErrors.WrapAs(appErrors.ErrReferenceRestricted, err, restrictedMessage)
	}
	return notFoundAs(err, entity)
}
