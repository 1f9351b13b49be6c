package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-records/internal/models"
	"github.com/noah-isme/sma-records/internal/service"
	appErrors "github.com/noah-isme/sma-records/pkg/errors"
	"github.com/noah-isme/sma-records/pkg/response"
)

type sectionService interface {
	Create(ctx context.Context, req service.CreateSectionRequest) (*models.ClassSection, error)
	Get(ctx context.Context, id int64) (*models.ClassSectionDetail, error)
	List(ctx context.Context, filter models.ClassSectionFilter) ([]models.ClassSectionDetail, error)
	Delete(ctx context.Context, id int64) error
	AddScheduleEntry(ctx context.Context, sectionID int64, req service.ScheduleEntryRequest) (*models.ScheduleEntry, error)
	ListSchedule(ctx context.Context, sectionID int64) ([]models.ScheduleEntryDetail, error)
	TeacherTimetable(ctx context.Context, teacherID int64) ([]models.ScheduleEntryDetail, error)
	DeleteScheduleEntry(ctx context.Context, id int64) error
}

// SectionHandler exposes class sections and their weekly schedule.
type SectionHandler struct {
	service sectionService
}

// NewSectionHandler constructs a SectionHandler.
func NewSectionHandler(svc sectionService) *SectionHandler {
	return &SectionHandler{service: svc}
}

// List godoc
// @Summary List class sections
// @Tags Sections
// @Produce json
// @Param course_id query int false "Course"
// @Param teacher_id query int false "Teacher"
// @Param semester_id query int false "Semester"
// @Success 200 {object} response.Envelope
// @Router /sections [get]
func (h *SectionHandler) List(c *gin.Context) {
	var filter models.ClassSectionFilter
	var ok bool
	if filter.CourseID, ok = queryID(c, "course_id"); !ok {
		return
	}
	if filter.TeacherID, ok = queryID(c, "teacher_id"); !ok {
		return
	}
	if filter.SemesterID, ok = queryID(c, "semester_id"); !ok {
		return
	}

	items, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// Get godoc
// @Summary Get class section
// @Tags Sections
// @Param id path int true "Section ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sections/{id} [get]
func (h *SectionHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	section, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, section)
}

// Create godoc
// @Summary Create class section
// @Description Creates the section and books its schedule in one transaction. The teacher must have role Teacher.
// @Tags Sections
// @Accept json
// @Param payload body service.CreateSectionRequest true "Section"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sections [post]
func (h *SectionHandler) Create(c *gin.Context) {
	var req service.CreateSectionRequest
	if !bindJSON(c, &req, "invalid section payload") {
		return
	}
	section, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, section)
}

// Delete godoc
// @Summary Delete class section
// @Tags Sections
// @Param id path int true "Section ID"
// @Success 204
// @Router /sections/{id} [delete]
func (h *SectionHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListSchedule godoc
// @Summary Weekly schedule of a section
// @Tags Sections
// @Param id path int true "Section ID"
// @Success 200 {object} response.Envelope
// @Router /sections/{id}/schedule [get]
func (h *SectionHandler) ListSchedule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	items, err := h.service.ListSchedule(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// AddScheduleEntry godoc
// @Summary Book a classroom for a section
// @Tags Sections
// @Accept json
// @Param id path int true "Section ID"
// @Param payload body service.ScheduleEntryRequest true "Booking"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sections/{id}/schedule [post]
func (h *SectionHandler) AddScheduleEntry(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.ScheduleEntryRequest
	if !bindJSON(c, &req, "invalid schedule payload") {
		return
	}
	entry, err := h.service.AddScheduleEntry(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// DeleteScheduleEntry godoc
// @Summary Remove a booking
// @Tags Sections
// @Param entryId path int true "Schedule entry ID"
// @Success 204
// @Router /schedule/{entryId} [delete]
func (h *SectionHandler) DeleteScheduleEntry(c *gin.Context) {
	id, ok := pathID(c, "entryId")
	if !ok {
		return
	}
	if err := h.service.DeleteScheduleEntry(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Timetable godoc
// @Summary Weekly timetable of a teacher
// @Description Teachers may only read their own timetable.
// @Tags Sections
// @Param id path int true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/timetable [get]
func (h *SectionHandler) Timetable(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if account := accountFromContext(c); account != nil && account.Role == models.RoleTeacher && account.ID != id {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "teachers may only read their own timetable"))
		return
	}
	items, err := h.service.TeacherTimetable(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}
