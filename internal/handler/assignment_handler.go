package handler

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-records/internal/models"
	"github.com/noah-isme/sma-records/internal/service"
	appErrors "github.com/noah-isme/sma-records/pkg/errors"
	"github.com/noah-isme/sma-records/pkg/response"
	"github.com/noah-isme/sma-records/pkg/storage"
)

type assignmentService interface {
	Create(ctx context.Context, req service.CreateAssignmentRequest) (*models.Assignment, error)
	Get(ctx context.Context, id int64) (*models.Assignment, error)
	ListBySection(ctx context.Context, sectionID int64) ([]models.Assignment, error)
	Delete(ctx context.Context, id int64) error
	Submit(ctx context.Context, req service.SubmitRequest) (*models.AssignmentSubmission, error)
	ListSubmissions(ctx context.Context, assignmentID int64) ([]models.AssignmentSubmission, error)
	GetSubmission(ctx context.Context, id int64) (*models.AssignmentSubmission, error)
	OpenAttachment(ctx context.Context, submissionID int64) (*os.File, error)
	Grade(ctx context.Context, submissionID int64, req service.GradeRequest) (*models.AssignmentSubmission, error)
	WeightedGrade(ctx context.Context, studentID, sectionID int64) (*models.WeightedGrade, error)
}

// AssignmentHandler exposes coursework endpoints.
type AssignmentHandler struct {
	service assignmentService
}

// NewAssignmentHandler constructs an AssignmentHandler.
func NewAssignmentHandler(svc assignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: svc}
}

// Create godoc
// @Summary Create assignment
// @Tags Coursework
// @Accept json
// @Param payload body service.CreateAssignmentRequest true "Assignment"
// @Success 201 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req service.CreateAssignmentRequest
	if !bindJSON(c, &req, "invalid assignment payload") {
		return
	}
	assignment, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Get godoc
// @Summary Get assignment
// @Tags Coursework
// @Param id path int true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	assignment, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, assignment)
}

// ListBySection godoc
// @Summary Assignments of a section
// @Tags Coursework
// @Param id path int true "Section ID"
// @Success 200 {object} response.Envelope
// @Router /sections/{id}/assignments [get]
func (h *AssignmentHandler) ListBySection(c *gin.Context) {
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

// Delete godoc
// @Summary Delete assignment
// @Tags Coursework
// @Param id path int true "Assignment ID"
// @Success 204
// @Router /assignments/{id} [delete]
func (h *AssignmentHandler) Delete(c *gin.Context) {
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

// Submit godoc
// @Summary Hand in an assignment
// @Description Multipart form with optional "content" text and "attachment" file (10 MiB max).
// @Tags Coursework
// @Accept multipart/form-data
// @Param id path int true "Assignment ID"
// @Param content formData string false "Answer text"
// @Param attachment formData file false "Attachment"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /assignments/{id}/submissions [post]
func (h *AssignmentHandler) Submit(c *gin.Context) {
	assignmentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	account := accountFromContext(c)
	if account == nil || account.Role != models.RoleStudent {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "only students submit work"))
		return
	}
	if account.Offline {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "offline sessions cannot submit work"))
		return
	}

	req := service.SubmitRequest{
		AssignmentID: assignmentID,
		StudentID:    account.ID,
		Content:      c.PostForm("content"),
	}

	file, header, err := c.Request.FormFile("attachment")
	switch {
	case err == nil:
		defer file.Close()
		if header.Size > storage.MaxAttachmentSize {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "attachment exceeds 10 MiB"))
			return
		}
		req.Attachment = file
		req.AttachmentName = header.Filename
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		response.Error(c, appErrors.WrapAs(appErrors.ErrValidation, err, "invalid multipart payload"))
		return
	}

	submission, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, submission)
}

// ListSubmissions godoc
// @Summary Submissions of an assignment
// @Tags Coursework
// @Param id path int true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/submissions [get]
func (h *AssignmentHandler) ListSubmissions(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	items, err := h.service.ListSubmissions(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// Attachment godoc
// @Summary Download a submission attachment
// @Description Students may only download their own submissions.
// @Tags Coursework
// @Produce octet-stream
// @Param id path int true "Submission ID"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /submissions/{id}/attachment [get]
func (h *AssignmentHandler) Attachment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	submission, err := h.service.GetSubmission(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !ownsStudentRecord(c, submission.StudentID) {
		return
	}

	f, err := h.service.OpenAttachment(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		response.Error(c, appErrors.WrapAs(appErrors.ErrInternal, err, "failed to read attachment"))
		return
	}
	name := "submission-" + strconv.FormatInt(id, 10) + filepath.Ext(submission.FilePath)
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.DataFromReader(http.StatusOK, info.Size(), "application/octet-stream", f, nil)
}

// Grade godoc
// @Summary Grade a submission
// @Tags Coursework
// @Accept json
// @Param id path int true "Submission ID"
// @Param payload body service.GradeRequest true "Score between 0 and the assignment's max points"
// @Success 200 {object} response.Envelope
// @Router /submissions/{id}/grade [post]
func (h *AssignmentHandler) Grade(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.GradeRequest
	if !bindJSON(c, &req, "invalid grade payload") {
		return
	}
	submission, err := h.service.Grade(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, submission)
}

// WeightedGrade godoc
// @Summary Weighted coursework grade of a student in a section
// @Tags Coursework
// @Param id path int true "Section ID"
// @Param studentId path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /sections/{id}/students/{studentId}/grade [get]
func (h *AssignmentHandler) WeightedGrade(c *gin.Context) {
	sectionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	studentID, ok := pathID(c, "studentId")
	if !ok || !ownsStudentRecord(c, studentID) {
		return
	}
	grade, err := h.service.WeightedGrade(c.Request.Context(), studentID, sectionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, grade)
}
