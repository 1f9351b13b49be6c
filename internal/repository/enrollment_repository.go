package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/sma-records/internal/models"
)

const enrollmentDetailSelect = `SELECT e.id, e.student_id, e.class_section_id, e.enrollment_date, e.final_grade, e.is_completed,
	COALESCE(u.student_code, '') AS student_code,
	u.first_name || ' ' || u.last_name AS student_name,
	cs.section_name, c.course_code
	FROM enrollments e
	JOIN users u ON u.id = e.student_id
	JOIN class_sections cs ON cs.id = e.class_section_id
	JOIN courses c ON c.id = cs.course_id`

// EnrollmentRepository provides database access for enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository creates a new instance of EnrollmentRepository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Create inserts an enrollment. The (student, section) pair is unique.
func (r *EnrollmentRepository) Create(ctx context.Context, exec sqlx.ExtContext, enrollment *models.Enrollment) error {
	if enrollment.EnrollmentDate.IsZero() {
		enrollment.EnrollmentDate = time.Now().UTC()
	}
	const query = `INSERT INTO enrollments (student_id, class_section_id, enrollment_date, final_grade, is_completed)
		VALUES (:student_id, :class_section_id, :enrollment_date, :final_grade, :is_completed) RETURNING id`
	id, err := insertReturningID(ctx, pick(r.db, exec), query, enrollment)
	if err != nil {
		return storeError("create enrollment", err)
	}
	enrollment.ID = id
	return nil
}

// FindByID returns an enrollment by identifier.
func (r *EnrollmentRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Enrollment, error) {
	target := pick(r.db, exec)
	const query = `SELECT id, student_id, class_section_id, enrollment_date, final_grade, is_completed FROM enrollments WHERE id = ?`
	var enrollment models.Enrollment
	if err := sqlx.GetContext(ctx, target, &enrollment, target.Rebind(query), id); err != nil {
		return nil, storeError("find enrollment", err)
	}
	return &enrollment, nil
}

// Exists reports whether the student is already enrolled in the section.
func (r *EnrollmentRepository) Exists(ctx context.Context, exec sqlx.ExtContext, studentID, sectionID int64) (bool, error) {
	target := pick(r.db, exec)
	const query = `SELECT COUNT(*) FROM enrollments WHERE student_id = ? AND class_section_id = ?`
	var count int
	if err := sqlx.GetContext(ctx, target, &count, target.Rebind(query), studentID, sectionID); err != nil {
		return false, storeError("check enrollment", err)
	}
	return count > 0, nil
}

// ListBySection returns the enrollments of a section ordered by student name.
func (r *EnrollmentRepository) ListBySection(ctx context.Context, sectionID int64) ([]models.EnrollmentDetail, error) {
	query := enrollmentDetailSelect + ` WHERE e.class_section_id = ? ORDER BY u.last_name, u.first_name`
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, r.db.Rebind(query), sectionID); err != nil {
		return nil, storeError("list section enrollments", err)
	}
	return enrollments, nil
}

// ListByStudent returns a student's enrollments.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.EnrollmentDetail, error) {
	query := enrollmentDetailSelect + ` WHERE e.student_id = ? ORDER BY e.enrollment_date DESC, e.id DESC`
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, r.db.Rebind(query), studentID); err != nil {
		return nil, storeError("list student enrollments", err)
	}
	return enrollments, nil
}

// Complete records the final grade and marks the enrollment completed.
func (r *EnrollmentRepository) Complete(ctx context.Context, id int64, grade decimal.Decimal) error {
	return execAffecting(ctx, r.db, "complete enrollment",
		`UPDATE enrollments SET final_grade = ?, is_completed = ? WHERE id = ?`, grade.StringFixed(2), true, id)
}

// Delete removes an enrollment.
func (r *EnrollmentRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id int64) error {
	return execAffecting(ctx, pick(r.db, exec), "delete enrollment", `DELETE FROM enrollments WHERE id = ?`, id)
}
