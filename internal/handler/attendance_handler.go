package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-records/internal/models"
	"github.com/noah-isme/sma-records/internal/service"
	"github.com/noah-isme/sma-records/pkg/response"
)

type attendanceService interface {
	Record(ctx context.Context, req service.RecordAttendanceRequest) (*models.AttendanceRecord, error)
	ListBySection(ctx context.Context, sectionID int64) ([]models.AttendanceRecord, error)
	Entries(ctx context.Context, recordID int64) ([]models.StudentAttendanceDetail, error)
	StudentSummary(ctx context.Context, studentID, sectionID int64) (*models.AttendanceSummary, error)
	DeleteRecord(ctx context.Context, id int64) error
}

// AttendanceHandler exposes roll-call endpoints.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs an AttendanceHandler.
func NewAttendanceHandler(svc attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// Record godoc
// @Summary Take attendance for a class meeting
// @Description Every marked student must be enrolled in the section. The date is stored without its time.
// @Tags Attendance
// @Accept json
// @Param payload body service.RecordAttendanceRequest true "Roll call"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Record(c *gin.Context) {
	var req service.RecordAttendanceRequest
	if !bindJSON(c, &req, "invalid attendance payload") {
		return
	}
	record, err := h.service.Record(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// ListBySection godoc
// @Summary Attendance records of a section
// @Tags Attendance
// @Param id path int true "Section ID"
// @Success 200 {object} response.Envelope
// @Router /sections/{id}/attendance [get]
func (h *AttendanceHandler) ListBySection(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	items, err := h.service.ListBySection(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// Entries godoc
// @Summary Marks of one attendance record
// @Tags Attendance
// @Param id path int true "Record ID"
// @Success 200 {object} response.Envelope
// @Router /attendance/{id} [get]
func (h *AttendanceHandler) Entries(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	items, err := h.service.Entries(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// Summary godoc
// @Summary Attendance totals of a student in a section
// @Tags Attendance
// @Param id path int true "Section ID"
// @Param studentId path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /sections/{id}/students/{studentId}/attendance [get]
func (h *AttendanceHandler) Summary(c *gin.Context) {
	sectionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	studentID, ok := pathID(c, "studentId")
	if !ok || !ownsStudentRecord(c, studentID) {
		return
	}
	summary, err := h.service.StudentSummary(c.Request.Context(), studentID, sectionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, summary)
}

// Delete godoc
// @Summary Delete an attendance record
// @Tags Attendance
// @Param id path int true "Record ID"
// @Success 204
// @Router /attendance/{id} [delete]
func (h *AttendanceHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteRecord(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
