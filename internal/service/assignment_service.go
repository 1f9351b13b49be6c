package service

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-records/internal/models"
	appErrors "github.com/noah-isme/sma-records/pkg/errors"
)

type assignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	FindByID(ctx context.Context, id int64) (*models.Assignment, error)
	ListBySection(ctx context.Context, sectionID int64) ([]models.Assignment, error)
	Delete(ctx context.Context, id int64) error
}

type submissionRepository interface {
	Create(ctx context.Context, submission *models.AssignmentSubmission) error
	FindByID(ctx context.Context, id int64) (*models.AssignmentSubmission, error)
	Exists(ctx context.Context, assignmentID, studentID int64) (bool, error)
	ListByAssignment(ctx context.Context, assignmentID int64) ([]models.AssignmentSubmission, error)
	Grade(ctx context.Context, id int64, score decimal.Decimal, feedback string, gradedAt time.Time) error
	GradedWork(ctx context.Context, studentID, sectionID int64) ([]models.GradedWork, error)
}

type enrollmentChecker interface {
	Exists(ctx context.Context, exec sqlx.ExtContext, studentID, sectionID int64) (bool, error)
}

type attachmentStore interface {
	Save(folder, originalName string, r io.Reader) (string, error)
	Open(rel string) (*os.File, error)
	Delete(rel string) error
}

var (
	gradeScale = decimal.NewFromInt(10)
	maxWeight  = decimal.NewFromInt(1)
)

// CreateAssignmentRequest describes a new assignment. Weight is a fraction of the section grade.
type CreateAssignmentRequest struct {
	ClassSectionID int64           `json:"class_section_id" validate:"required,gt=0"`
	Title          string          `json:"title" validate:"required,max=100"`
	Description    string          `json:"description" validate:"max=1000"`
	DueDate        time.Time       `json:"due_date" validate:"required"`
	MaxPoints      decimal.Decimal `json:"max_points"`
	Weight         decimal.Decimal `json:"weight"`
}

// SubmitRequest is a student's answer. Attachment is optional.
type SubmitRequest struct {
	AssignmentID   int64     `validate:"required,gt=0"`
	StudentID      int64     `validate:"required,gt=0"`
	Content        string    `validate:"max=4000"`
	Attachment     io.Reader `validate:"-"`
	AttachmentName string    `validate:"-"`
}

// GradeRequest scores a submission.
type GradeRequest struct {
	Score    decimal.Decimal `json:"score"`
	Feedback string          `json:"feedback" validate:"max=1000"`
}

// AssignmentService manages coursework: assignments, submissions and grading.
type AssignmentService struct {
	assignments assignmentRepository
	submissions submissionRepository
	enrollments enrollmentChecker
	files       attachmentStore
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewAssignmentService constructs an AssignmentService. files may be nil, which disables attachments.
func NewAssignmentService(assignments assignmentRepository, submissions submissionRepository, enrollments enrollmentChecker, files attachmentStore, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		assignments: assignments,
		submissions: submissions,
		enrollments: enrollments,
		files:       files,
		validator:   ensureValidator(validate),
		logger:      logger,
		now:         time.Now,
	}
}

// Create adds an assignment to a section.
func (s *AssignmentService) Create(ctx context.Context, req CreateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid assignment payload")
	}
	if !req.MaxPoints.IsPositive() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "max_points must be positive")
	}
	if req.Weight.IsNegative() || req.Weight.GreaterThan(maxWeight) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "weight must be between 0 and 1")
	}

	assignment := &models.Assignment{
		ClassSectionID: req.ClassSectionID,
		Title:          req.Title,
		Description:    req.Description,
		CreatedDate:    s.now().UTC(),
		DueDate:        req.DueDate.UTC(),
		MaxPoints:      req.MaxPoints.Round(2),
		Weight:         req.Weight.Round(2),
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		if appErrors.Is(err, appErrors.ErrReferenceRestricted) {
			return nil, appErrors.WrapAs(appErrors.ErrNotFound, err, "class section not found")
		}
		return nil, storeFailure(err, "failed to create assignment")
	}
	return assignment, nil
}

// Get returns an assignment.
func (s *AssignmentService) Get(ctx context.Context, id int64) (*models.Assignment, error) {
	assignment, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "assignment")
	}
	return assignment, nil
}

// ListBySection returns a section's assignments ordered by due date.
func (s *AssignmentService) ListBySection(ctx context.Context, sectionID int64) ([]models.Assignment, error) {
	items, err := s.assignments.ListBySection(ctx, sectionID)
	if err != nil {
		return nil, storeFailure(err, "failed to list assignments")
	}
	return items, nil
}

// Delete removes an assignment together with its submissions.
func (s *AssignmentService) Delete(ctx context.Context, id int64) error {
	if err := s.assignments.Delete(ctx, id); err != nil {
		return notFoundAs(err, "assignment")
	}
	return nil
}

// Submit records a student's submission. Work handed in after the due date is flagged late.
func (s *AssignmentService) Submit(ctx context.Context, req SubmitRequest) (*models.AssignmentSubmission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid submission payload")
	}

	assignment, err := s.assignments.FindByID(ctx, req.AssignmentID)
	if err != nil {
		return nil, notFoundAs(err, "assignment")
	}
	enrolled, err := s.enrollments.Exists(ctx, nil, req.StudentID, assignment.ClassSectionID)
	if err != nil {
		return nil, storeFailure(err, "failed to check enrollment")
	}
	if !enrolled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student is not enrolled in this class section")
	}
	exists, err := s.submissions.Exists(ctx, req.AssignmentID, req.StudentID)
	if err != nil {
		return nil, storeFailure(err, "failed to check submission")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "assignment already submitted")
	}

	now := s.now().UTC()
	submission := &models.AssignmentSubmission{
		AssignmentID:   req.AssignmentID,
		StudentID:      req.StudentID,
		SubmissionDate: now,
		Content:        req.Content,
		IsLate:         now.After(assignment.DueDate),
	}

	if req.Attachment != nil {
		if s.files == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "attachments are not accepted")
		}
		rel, err := s.files.Save("assignment-"+formatID(req.AssignmentID), req.AttachmentName, req.Attachment)
		if err != nil {
			return nil, appErrors.WrapAs(appErrors.ErrValidation, err, "failed to store attachment")
		}
		submission.FilePath = rel
	}

	if err := s.submissions.Create(ctx, submission); err != nil {
		if submission.FilePath != "" {
			if derr := s.files.Delete(submission.FilePath); derr != nil {
				s.logger.Warn("failed to remove orphan attachment", zap.String("path", submission.FilePath), zap.Error(derr))
			}
		}
		if appErrors.Is(err, appErrors.ErrConflict) {
			return nil, appErrors.WrapAs(appErrors.ErrConflict, err, "assignment already submitted")
		}
		return nil, storeFailure(err, "failed to save submission")
	}

	s.logger.Info("submission received",
		zap.Int64("assignment_id", req.AssignmentID),
		zap.Int64("student_id", req.StudentID),
		zap.Bool("late", submission.IsLate),
	)
	return submission, nil
}

// ListSubmissions returns the submissions of an assignment.
func (s *AssignmentService) ListSubmissions(ctx context.Context, assignmentID int64) ([]models.AssignmentSubmission, error) {
	items, err := s.submissions.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, storeFailure(err, "failed to list submissions")
	}
	return items, nil
}

// GetSubmission returns a submission.
func (s *AssignmentService) GetSubmission(ctx context.Context, id int64) (*models.AssignmentSubmission, error) {
	submission, err := s.submissions.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "submission")
	}
	return submission, nil
}

// OpenAttachment returns the stored attachment of a submission. The caller closes it.
func (s *AssignmentService) OpenAttachment(ctx context.Context, submissionID int64) (*os.File, error) {
	submission, err := s.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if submission.FilePath == "" || s.files == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "submission has no attachment")
	}
	f, err := s.files.Open(submission.FilePath)
	if err != nil {
		return nil, appErrors.WrapAs(appErrors.ErrNotFound, err, "attachment not found")
	}
	return f, nil
}

// Grade scores a submission within [0, max points].
func (s *AssignmentService) Grade(ctx context.Context, submissionID int64, req GradeRequest) (*models.AssignmentSubmission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid grade payload")
	}

	submission, err := s.submissions.FindByID(ctx, submissionID)
	if err != nil {
		return nil, notFoundAs(err, "submission")
	}
	assignment, err := s.assignments.FindByID(ctx, submission.AssignmentID)
	if err != nil {
		return nil, notFoundAs(err, "assignment")
	}
	if req.Score.IsNegative() || req.Score.GreaterThan(assignment.MaxPoints) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "score must be between 0 and "+assignment.MaxPoints.String())
	}

	gradedAt := s.now().UTC()
	score := req.Score.Round(2)
	if err := s.submissions.Grade(ctx, submissionID, score, req.Feedback, gradedAt); err != nil {
		return nil, notFoundAs(err, "submission")
	}
	submission.Score = decimal.NewNullDecimal(score)
	submission.Feedback = req.Feedback
	submission.GradedDate = &gradedAt
	return submission, nil
}

// WeightedGrade aggregates a student's graded work in a section onto a 0-10 scale:
// sum(score/max*weight) / sum(weight), rounded to two places.
func (s *AssignmentService) WeightedGrade(ctx context.Context, studentID, sectionID int64) (*models.WeightedGrade, error) {
	work, err := s.submissions.GradedWork(ctx, studentID, sectionID)
	if err != nil {
		return nil, storeFailure(err, "failed to load graded work")
	}
	return &models.WeightedGrade{
		StudentID:      studentID,
		ClassSectionID: sectionID,
		Grade:          weightedAverage(work),
		GradedCount:    len(work),
	}, nil
}

func weightedAverage(work []models.GradedWork) decimal.Decimal {
	earned := decimal.Zero
	weights := decimal.Zero
	for _, w := range work {
		if !w.MaxPoints.IsPositive() {
			continue
		}
		earned = earned.Add(w.Score.Div(w.MaxPoints).Mul(w.Weight))
		weights = weights.Add(w.Weight)
	}
	if weights.IsZero() {
		return decimal.Zero
	}
	return earned.Div(weights).Mul(gradeScale).Round(2)
}
