package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-records/internal/models"
	"github.com/noah-isme/sma-records/internal/service"
	"github.com/noah-isme/sma-records/pkg/response"
)

type catalogService interface {
	CreateCourse(ctx context.Context, req service.CourseRequest) (*models.Course, error)
	GetCourse(ctx context.Context, id int64) (*models.Course, error)
	ListCourses(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error)
	UpdateCourse(ctx context.Context, id int64, req service.CourseRequest) (*models.Course, error)
	DeleteCourse(ctx context.Context, id int64) error

	CreateSemester(ctx context.Context, req service.CreateSemesterRequest) (*models.Semester, error)
	ListSemesters(ctx context.Context) ([]models.Semester, error)
	ActiveSemester(ctx context.Context) (*models.Semester, error)
	ActivateSemester(ctx context.Context, id int64) error
	DeleteSemester(ctx context.Context, id int64) error

	CreateClassroom(ctx context.Context, req service.ClassroomRequest) (*models.Classroom, error)
	ListClassrooms(ctx context.Context) ([]models.Classroom, error)
	DeleteClassroom(ctx context.Context, id int64) error

	CreateTimeSlot(ctx context.Context, req service.TimeSlotRequest) (*models.TimeSlot, error)
	ListTimeSlots(ctx context.Context) ([]models.TimeSlot, error)
	DeleteTimeSlot(ctx context.Context, id int64) error
}

// CatalogHandler exposes courses, semesters, classrooms and time slots.
type CatalogHandler struct {
	service catalogService
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(svc catalogService) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

// ListCourses godoc
// @Summary List courses
// @Tags Catalog
// @Produce json
// @Param department query string false "Department"
// @Param search query string false "Search code or name"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CatalogHandler) ListCourses(c *gin.Context) {
	filter := models.CourseFilter{
		Department: c.Query("department"),
		Search:     c.Query("search"),
		SortBy:     c.Query("sort_by"),
		SortOrder:  c.Query("sort_order"),
	}
	filter.Page, filter.PageSize = pageQuery(c)

	items, pagination, err := h.service.ListCourses(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// GetCourse godoc
// @Summary Get course
// @Tags Catalog
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CatalogHandler) GetCourse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	course, err := h.service.GetCourse(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, course)
}

// CreateCourse godoc
// @Summary Create course
// @Tags Catalog
// @Accept json
// @Param payload body service.CourseRequest true "Course"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /courses [post]
func (h *CatalogHandler) CreateCourse(c *gin.Context) {
	var req service.CourseRequest
	if !bindJSON(c, &req, "invalid course payload") {
		return
	}
	course, err := h.service.CreateCourse(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// UpdateCourse godoc
// @Summary Update course
// @Tags Catalog
// @Accept json
// @Param id path int true "Course ID"
// @Param payload body service.CourseRequest true "Course"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [put]
func (h *CatalogHandler) UpdateCourse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.CourseRequest
	if !bindJSON(c, &req, "invalid course payload") {
		return
	}
	course, err := h.service.UpdateCourse(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, course)
}

// DeleteCourse godoc
// @Summary Delete course
// @Tags Catalog
// @Param id path int true "Course ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /courses/{id} [delete]
func (h *CatalogHandler) DeleteCourse(c *gin.Context) {
	h.deleteByID(c, h.service.DeleteCourse)
}

// ListSemesters godoc
// @Summary List semesters
// @Tags Catalog
// @Success 200 {object} response.Envelope
// @Router /semesters [get]
func (h *CatalogHandler) ListSemesters(c *gin.Context) {
	items, err := h.service.ListSemesters(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// ActiveSemester godoc
// @Summary Current semester
// @Tags Catalog
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /semesters/active [get]
func (h *CatalogHandler) ActiveSemester(c *gin.Context) {
	semester, err := h.service.ActiveSemester(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, semester)
}

// CreateSemester godoc
// @Summary Create semester
// @Tags Catalog
// @Accept json
// @Param payload body service.CreateSemesterRequest true "Semester"
// @Success 201 {object} response.Envelope
// @Router /semesters [post]
func (h *CatalogHandler) CreateSemester(c *gin.Context) {
	var req service.CreateSemesterRequest
	if !bindJSON(c, &req, "invalid semester payload") {
		return
	}
	semester, err := h.service.CreateSemester(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, semester)
}

// ActivateSemester godoc
// @Summary Make a semester the active one
// @Tags Catalog
// @Param id path int true "Semester ID"
// @Success 204
// @Router /semesters/{id}/activate [post]
func (h *CatalogHandler) ActivateSemester(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.ActivateSemester(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteSemester godoc
// @Summary Delete semester
// @Tags Catalog
// @Param id path int true "Semester ID"
// @Success 204
// @Router /semesters/{id} [delete]
func (h *CatalogHandler) DeleteSemester(c *gin.Context) {
	h.deleteByID(c, h.service.DeleteSemester)
}

// ListClassrooms godoc
// @Summary List classrooms
// @Tags Catalog
// @Success 200 {object} response.Envelope
// @Router /classrooms [get]
func (h *CatalogHandler) ListClassrooms(c *gin.Context) {
	items, err := h.service.ListClassrooms(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// CreateClassroom godoc
// @Summary Create classroom
// @Tags Catalog
// @Accept json
// @Param payload body service.ClassroomRequest true "Classroom"
// @Success 201 {object} response.Envelope
// @Router /classrooms [post]
func (h *CatalogHandler) CreateClassroom(c *gin.Context) {
	var req service.ClassroomRequest
	if !bindJSON(c, &req, "invalid classroom payload") {
		return
	}
	room, err := h.service.CreateClassroom(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, room)
}

// DeleteClassroom godoc
// @Summary Delete classroom
// @Tags Catalog
// @Param id path int true "Classroom ID"
// @Success 204
// @Router /classrooms/{id} [delete]
func (h *CatalogHandler) DeleteClassroom(c *gin.Context) {
	h.deleteByID(c, h.service.DeleteClassroom)
}

// ListTimeSlots godoc
// @Summary List time slots
// @Tags Catalog
// @Success 200 {object} response.Envelope
// @Router /time-slots [get]
func (h *CatalogHandler) ListTimeSlots(c *gin.Context) {
	items, err := h.service.ListTimeSlots(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// CreateTimeSlot godoc
// @Summary Create time slot
// @Tags Catalog
// @Accept json
// @Param payload body service.TimeSlotRequest true "Time slot, times as HH:MM"
// @Success 201 {object} response.Envelope
// @Router /time-slots [post]
func (h *CatalogHandler) CreateTimeSlot(c *gin.Context) {
	var req service.TimeSlotRequest
	if !bindJSON(c, &req, "invalid time slot payload") {
		return
	}
	slot, err := h.service.CreateTimeSlot(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slot)
}

// DeleteTimeSlot godoc
// @Summary Delete time slot
// @Tags Catalog
// @Param id path int true "Time slot ID"
// @Success 204
// @Router /time-slots/{id} [delete]
func (h *CatalogHandler) DeleteTimeSlot(c *gin.Context) {
	h.deleteByID(c, h.service.DeleteTimeSlot)
}

func (h *CatalogHandler) deleteByID(c *gin.Context, del func(context.Context, int64) error) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := del(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
