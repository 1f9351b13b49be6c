package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/sma-records/internal/models"
)

const submissionColumns = `id, assignment_id, student_id, submission_date, content, file_path, score, feedback, graded_date, is_late`

// SubmissionRepository provides database access for assignment submissions.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository creates a new instance of SubmissionRepository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create inserts a submission.
func (r *SubmissionRepository) Create(ctx context.Context, submission *models.AssignmentSubmission) error {
	const query = `INSERT INTO assignment_submissions (assignment_id, student_id, submission_date, content, file_path, score, feedback, graded_date, is_late)
		VALUES (:assignment_id, :student_id, :submission_date, :content, :file_path, :score, :feedback, :graded_date, :is_late) RETURNING id`
	id, err := insertReturningID(ctx, r.db, query, submission)
	if err != nil {
		return storeError("create submission", err)
	}
	submission.ID = id
	return nil
}

// FindByID returns a submission by identifier.
func (r *SubmissionRepository) FindByID(ctx context.Context, id int64) (*models.AssignmentSubmission, error) {
	var submission models.AssignmentSubmission
	query := `SELECT ` + submissionColumns + ` FROM assignment_submissions WHERE id = ?`
	if err := r.db.GetContext(ctx, &submission, r.db.Rebind(query), id); err != nil {
		return nil, storeError("find submission", err)
	}
	return &submission, nil
}

// Exists reports whether the student already submitted the assignment.
func (r *SubmissionRepository) Exists(ctx context.Context, assignmentID, studentID int64) (bool, error) {
	const query = `SELECT COUNT(*) FROM assignment_submissions WHERE assignment_id = ? AND student_id = ?`
	var count int
	if err := r.db.GetContext(ctx, &count, r.db.Rebind(query), assignmentID, studentID); err != nil {
		return false, storeError("check submission", err)
	}
	return count > 0, nil
}

// ListByAssignment returns every submission for an assignment.
func (r *SubmissionRepository) ListByAssignment(ctx context.Context, assignmentID int64) ([]models.AssignmentSubmission, error) {
	query := `SELECT ` + submissionColumns + ` FROM assignment_submissions WHERE assignment_id = ? ORDER BY submission_date, id`
	var submissions []models.AssignmentSubmission
	if err := r.db.SelectContext(ctx, &submissions, r.db.Rebind(query), assignmentID); err != nil {
		return nil, storeError("list submissions", err)
	}
	return submissions, nil
}

// Grade stores score and feedback.
func (r *SubmissionRepository) Grade(ctx context.Context, id int64, score decimal.Decimal, feedback string, gradedAt time.Time) error {
	return execAffecting(ctx, r.db, "grade submission",
		`UPDATE assignment_submissions SET score = ?, feedback = ?, graded_date = ? WHERE id = ?`,
		score.StringFixed(2), feedback, gradedAt, id)
}

// GradedWork returns the graded submissions of a student in a section with their assignment scale.
func (r *SubmissionRepository) GradedWork(ctx context.Context, studentID, sectionID int64) ([]models.GradedWork, error) {
	const query = `SELECT a.id AS assignment_id, a.max_points, a.weight, s.score
		FROM assignment_submissions s
		JOIN assignments a ON a.id = s.assignment_id
		WHERE s.student_id = ? AND a.class_section_id = ? AND s.score IS NOT NULL
		ORDER BY a.id`
	var work []models.GradedWork
	if err := r.db.SelectContext(ctx, &work, r.db.Rebind(query), studentID, sectionID); err != nil {
		return nil, storeError("list graded work", err)
	}
	return work, nil
}
