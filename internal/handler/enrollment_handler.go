package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/sma-records/internal/models"
	appErrors "github.com/noah-isme/sma-records/pkg/errors"
	"github.com/noah-isme/sma-records/pkg/export"
	"github.com/noah-isme/sma-records/pkg/response"
)

type enrollmentService interface {
	Enroll(ctx context.Context, studentID, sectionID int64) (*models.Enrollment, error)
	Withdraw(ctx context.Context, enrollmentID int64) error
	Complete(ctx context.Context, enrollmentID int64, finalGrade decimal.Decimal) error
	ListBySection(ctx context.Context, sectionID int64) ([]models.EnrollmentDetail, error)
	ListByStudent(ctx context.Context, studentID int64) ([]models.EnrollmentDetail, error)
}

type exportService interface {
	Roster(ctx context.Context, sectionID int64, format export.Format) (*export.Document, error)
	Transcript(ctx context.Context, studentID int64, format export.Format) (*export.Document, error)
}

// EnrollmentHandler exposes enrollment endpoints and their exports.
type EnrollmentHandler struct {
	enrollments enrollmentService
	exports     exportService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments enrollmentService, exports exportService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments, exports: exports}
}

type enrollRequest struct {
	StudentID int64 `json:"student_id"`
}

// Enroll godoc
// @Summary Enroll a student in a section
// @Description Students enroll themselves and may omit student_id. Fails with CAPACITY_EXCEEDED when the section is full.
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path int true "Section ID"
// @Param payload body enrollRequest false "Student"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sections/{id}/enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	sectionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req enrollRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req, "invalid enrollment payload") {
		return
	}
	account := accountFromContext(c)
	if account != nil && account.Offline {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "offline sessions cannot enroll"))
		return
	}
	if account != nil && account.Role == models.RoleStudent && req.StudentID == 0 {
		req.StudentID = account.ID
	}
	if !ownsStudentRecord(c, req.StudentID) {
		return
	}

	enrollment, err := h.enrollments.Enroll(c.Request.Context(), req.StudentID, sectionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// Withdraw godoc
// @Summary Withdraw an enrollment
// @Description Frees the seat in the section.
// @Tags Enrollments
// @Param id path int true "Enrollment ID"
// @Success 204
// @Router /enrollments/{id} [delete]
func (h *EnrollmentHandler) Withdraw(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.enrollments.Withdraw(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

type completeRequest struct {
	FinalGrade decimal.Decimal `json:"final_grade"`
}

// Complete godoc
// @Summary Close an enrollment with a final grade
// @Tags Enrollments
// @Accept json
// @Param id path int true "Enrollment ID"
// @Param payload body completeRequest true "Final grade between 0 and 10"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Router /enrollments/{id}/complete [post]
func (h *EnrollmentHandler) Complete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req completeRequest
	if !bindJSON(c, &req, "invalid grade payload") {
		return
	}
	if err := h.enrollments.Complete(c.Request.Context(), id, req.FinalGrade); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListBySection godoc
// @Summary Students enrolled in a section
// @Tags Enrollments
// @Param id path int true "Section ID"
// @Success 200 {object} response.Envelope
// @Router /sections/{id}/enrollments [get]
func (h *EnrollmentHandler) ListBySection(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	items, err := h.enrollments.ListBySection(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// ListByStudent godoc
// @Summary Enrollments of a student
// @Tags Enrollments
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /students/{id}/enrollments [get]
func (h *EnrollmentHandler) ListByStudent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok || !ownsStudentRecord(c, id) {
		return
	}
	items, err := h.enrollments.ListByStudent(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// Roster godoc
// @Summary Download a section roster
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param id path int true "Section ID"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /sections/{id}/roster [get]
func (h *EnrollmentHandler) Roster(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	format, ok := exportFormat(c)
	if !ok {
		return
	}
	doc, err := h.exports.Roster(c.Request.Context(), id, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	sendDocument(c, doc)
}

// Transcript godoc
// @Summary Download a student's transcript
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param id path int true "Student ID"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /students/{id}/transcript [get]
func (h *EnrollmentHandler) Transcript(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok || !ownsStudentRecord(c, id) {
		return
	}
	format, ok := exportFormat(c)
	if !ok {
		return
	}
	doc, err := h.exports.Transcript(c.Request.Context(), id, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	sendDocument(c, doc)
}
