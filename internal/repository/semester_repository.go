package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-records/internal/models"
)

const semesterColumns = `id, name, start_date, end_date, is_active`

// SemesterRepository provides database access for semesters.
type SemesterRepository struct {
	db *sqlx.DB
}

// NewSemesterRepository creates a new instance of SemesterRepository.
func NewSemesterRepository(db *sqlx.DB) *SemesterRepository {
	return &SemesterRepository{db: db}
}

// Create inserts a semester.
func (r *SemesterRepository) Create(ctx context.Context, semester *models.Semester) error {
	const query = `INSERT INTO semesters (name, start_date, end_date, is_active)
		VALUES (:name, :start_date, :end_date, :is_active) RETURNING id`
	id, err := insertReturningID(ctx, r.db, query, semester)
	if err != nil {
		return storeError("create semester", err)
	}
	semester.ID = id
	return nil
}

// FindByID returns a semester by identifier.
func (r *SemesterRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Semester, error) {
	target := pick(r.db, exec)
	var semester models.Semester
	query := `SELECT ` + semesterColumns + ` FROM semesters WHERE id = ?`
	if err := sqlx.GetContext(ctx, target, &semester, target.Rebind(query), id); err != nil {
		return nil, storeError("find semester", err)
	}
	return &semester, nil
}

// List returns all semesters, newest first.
func (r *SemesterRepository) List(ctx context.Context) ([]models.Semester, error) {
	var semesters []models.Semester
	if err := r.db.SelectContext(ctx, &semesters, `SELECT `+semesterColumns+` FROM semesters ORDER BY start_date DESC, id DESC`); err != nil {
		return nil, storeError("list semesters", err)
	}
	return semesters, nil
}

// FindActive returns the active semester.
func (r *SemesterRepository) FindActive(ctx context.Context) (*models.Semester, error) {
	var semester models.Semester
	query := `SELECT ` + semesterColumns + ` FROM semesters WHERE is_active = ? LIMIT 1`
	if err := r.db.GetContext(ctx, &semester, r.db.Rebind(query), true); err != nil {
		return nil, storeError("find active semester", err)
	}
	return &semester, nil
}

// DeactivateAll clears the active flag on every semester.
func (r *SemesterRepository) DeactivateAll(ctx context.Context, exec sqlx.ExtContext) error {
	target := pick(r.db, exec)
	if _, err := target.ExecContext(ctx, target.Rebind(`UPDATE semesters SET is_active = ? WHERE is_active = ?`), false, true); err != nil {
		return storeError("deactivate semesters", err)
	}
	return nil
}

// SetActive marks one semester active.
func (r *SemesterRepository) SetActive(ctx context.Context, exec sqlx.ExtContext, id int64) error {
	return execAffecting(ctx, pick(r.db, exec), "activate semester", `UPDATE semesters SET is_active = ? WHERE id = ?`, true, id)
}

// Delete removes a semester. Semesters still referenced by a class section are restricted.
func (r *SemesterRepository) Delete(ctx context.Context, id int64) error {
	return execAffecting(ctx, r.db, "delete semester", `DELETE FROM semesters WHERE id = ?`, id)
}
