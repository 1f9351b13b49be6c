package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-records/internal/models"
)

const assignmentColumns = `id, class_section_id, title, description, created_date, due_date, max_points, weight`

// AssignmentRepository provides database access for assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new instance of AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create inserts an assignment.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.CreatedDate.IsZero() {
		assignment.CreatedDate = time.Now().UTC()
	}
	const query = `INSERT INTO assignments (class_section_id, title, description, created_date, due_date, max_points, weight)
		VALUES (:class_section_id, :title, :description, :created_date, :due_date, :max_points, :weight) RETURNING id`
	id, err := insertReturningID(ctx, r.db, query, assignment)
	if err != nil {
		return storeError("create assignment", err)
	}
	assignment.ID = id
	return nil
}

// FindByID returns an assignment by identifier.
func (r *AssignmentRepository) FindByID(ctx context.Context, id int64) (*models.Assignment, error) {
	var assignment models.Assignment
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE id = ?`
	if err := r.db.GetContext(ctx, &assignment, r.db.Rebind(query), id); err != nil {
		return nil, storeError("find assignment", err)
	}
	return &assignment, nil
}

// ListBySection returns a section's assignments by due date.
func (r *AssignmentRepository) ListBySection(ctx context.Context, sectionID int64) ([]models.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE class_section_id = ? ORDER BY due_date, id`
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, r.db.Rebind(query), sectionID); err != nil {
		return nil, storeError("list assignments", err)
	}
	return assignments, nil
}

// Delete removes an assignment and its submissions.
func (r *AssignmentRepository) Delete(ctx context.Context, id int64) error {
	return execAffecting(ctx, r.db, "delete assignment", `DELETE FROM assignments WHERE id = ?`, id)
}
