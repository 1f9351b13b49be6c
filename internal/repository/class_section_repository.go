package repository

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-records/internal/models"
)

const classSectionColumns = `id, section_name, max_capacity, current_enrollment, course_id, teacher_id, semester_id`

const classSectionDetailSelect = `SELECT cs.id, cs.section_name, cs.max_capacity, cs.current_enrollment,
	cs.course_id, cs.teacher_id, cs.semester_id,
	c.course_code, c.name AS course_name,
	u.first_name || ' ' || u.last_name AS teacher_name,
	s.name AS semester_name
	FROM class_sections cs
	JOIN courses c ON c.id = cs.course_id
	JOIN users u ON u.id = cs.teacher_id
	JOIN semesters s ON s.id = cs.semester_id`

// ClassSectionRepository provides database access for class sections.
type ClassSectionRepository struct {
	db *sqlx.DB
}

// NewClassSectionRepository creates a new instance of ClassSectionRepository.
func NewClassSectionRepository(db *sqlx.DB) *ClassSectionRepository {
	return &ClassSectionRepository{db: db}
}

// Create inserts a class section.
func (r *ClassSectionRepository) Create(ctx context.Context, exec sqlx.ExtContext, section *models.ClassSection) error {
	const query = `INSERT INTO class_sections (section_name, max_capacity, current_enrollment, course_id, teacher_id, semester_id)
		VALUES (:section_name, :max_capacity, :current_enrollment, :course_id, :teacher_id, :semester_id) RETURNING id`
	id, err := insertReturningID(ctx, pick(r.db, exec), query, section)
	if err != nil {
		return storeError("create class section", err)
	}
	section.ID = id
	return nil
}

// FindByID returns a class section by identifier.
func (r *ClassSectionRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.ClassSection, error) {
	target := pick(r.db, exec)
	var section models.ClassSection
	query := `SELECT ` + classSectionColumns + ` FROM class_sections WHERE id = ?`
	if err := sqlx.GetContext(ctx, target, &section, target.Rebind(query), id); err != nil {
		return nil, storeError("find class section", err)
	}
	return &section, nil
}

// GetDetail returns a class section with course, teacher and semester names.
func (r *ClassSectionRepository) GetDetail(ctx context.Context, id int64) (*models.ClassSectionDetail, error) {
	var detail models.ClassSectionDetail
	if err := r.db.GetContext(ctx, &detail, r.db.Rebind(classSectionDetailSelect+` WHERE cs.id = ?`), id); err != nil {
		return nil, storeError("get class section", err)
	}
	return &detail, nil
}

// List returns sections matching the filter.
func (r *ClassSectionRepository) List(ctx context.Context, filter models.ClassSectionFilter) ([]models.ClassSectionDetail, error) {
	var conditions []string
	var args []interface{}
	if filter.CourseID != 0 {
		conditions = append(conditions, "cs.course_id = ?")
		args = append(args, filter.CourseID)
	}
	if filter.TeacherID != 0 {
		conditions = append(conditions, "cs.teacher_id = ?")
		args = append(args, filter.TeacherID)
	}
	if filter.SemesterID != 0 {
		conditions = append(conditions, "cs.semester_id = ?")
		args = append(args, filter.SemesterID)
	}
	query := classSectionDetailSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY c.course_code, cs.section_name"

	var sections []models.ClassSectionDetail
	if err := r.db.SelectContext(ctx, &sections, r.db.Rebind(query), args...); err != nil {
		return nil, storeError("list class sections", err)
	}
	return sections, nil
}

// ReserveSeat increments current_enrollment only while it is below max_capacity and reports
// whether a seat was taken.
func (r *ClassSectionRepository) ReserveSeat(ctx context.Context, exec sqlx.ExtContext, id int64) (bool, error) {
	target := pick(r.db, exec)
	const query = `UPDATE class_sections SET current_enrollment = current_enrollment + 1
		WHERE id = ? AND current_enrollment < max_capacity`
	res, err := target.ExecContext(ctx, target.Rebind(query), id)
	if err != nil {
		return false, storeError("reserve seat", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storeError("reserve seat", err)
	}
	return n == 1, nil
}

// ReleaseSeat gives a seat back.
func (r *ClassSectionRepository) ReleaseSeat(ctx context.Context, exec sqlx.ExtContext, id int64) error {
	target := pick(r.db, exec)
	const query = `UPDATE class_sections SET current_enrollment = current_enrollment - 1
		WHERE id = ? AND current_enrollment > 0`
	if _, err := target.ExecContext(ctx, target.Rebind(query), id); err != nil {
		return storeError("release seat", err)
	}
	return nil
}

// Delete removes a section; enrollments, assignments, attendance, schedule entries and
// section announcements go with it.
func (r *ClassSectionRepository) Delete(ctx context.Context, id int64) error {
	return execAffecting(ctx, r.db, "delete class section", `DELETE FROM class_sections WHERE id = ?`, id)
}
