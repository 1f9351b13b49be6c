package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-records/internal/models"
)

const courseColumns = `id, course_code, name, description, credits, department`

// CourseRepository provides database access for the course catalog.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new instance of CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// Create inserts a course. A duplicate course_code yields CONFLICT.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	const query = `INSERT INTO courses (course_code, name, description, credits, department)
		VALUES (:course_code, :name, :description, :credits, :department) RETURNING id`
	id, err := insertReturningID(ctx, r.db, query, course)
	if err != nil {
		return storeError("create course", err)
	}
	course.ID = id
	return nil
}

// FindByID returns a course by identifier.
func (r *CourseRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Course, error) {
	target := pick(r.db, exec)
	var course models.Course
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = ?`
	if err := sqlx.GetContext(ctx, target, &course, target.Rebind(query), id); err != nil {
		return nil, storeError("find course", err)
	}
	return &course, nil
}

// FindByCode returns a course by its unique code.
func (r *CourseRepository) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	var course models.Course
	query := `SELECT ` + courseColumns + ` FROM courses WHERE course_code = ?`
	if err := r.db.GetContext(ctx, &course, r.db.Rebind(query), code); err != nil {
		return nil, storeError("find course by code", err)
	}
	return &course, nil
}

// List returns courses based on filters with total count.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	baseQuery := `FROM courses WHERE 1=1`
	var args []interface{}
	if filter.Department != "" {
		baseQuery += " AND department = ?"
		args = append(args, filter.Department)
	}
	if filter.Search != "" {
		baseQuery += " AND (LOWER(course_code) LIKE ? OR LOWER(name) LIKE ?)"
		like := "%" + strings.ToLower(filter.Search) + "%"
		args = append(args, like, like)
	}

	order := sortClause(filter.SortBy, filter.SortOrder, "course_code", map[string]bool{
		"course_code": true, "name": true, "credits": true, "department": true,
	})
	_, pageSize, offset := pageBounds(filter.Page, filter.PageSize)

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s LIMIT %d OFFSET %d", courseColumns, baseQuery, order, pageSize, offset)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, r.db.Rebind(listQuery), args...); err != nil {
		return nil, 0, storeError("list courses", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind("SELECT COUNT(*) "+baseQuery), args...); err != nil {
		return nil, 0, storeError("count courses", err)
	}
	return courses, total, nil
}

// Update rewrites the course's mutable fields.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	return execAffecting(ctx, r.db, "update course",
		`UPDATE courses SET course_code = ?, name = ?, description = ?, credits = ?, department = ? WHERE id = ?`,
		course.CourseCode, course.Name, course.Description, course.Credits, course.Department, course.ID)
}

// Delete removes a course. Courses still referenced by a class section are restricted.
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	return execAffecting(ctx, r.db, "delete course", `DELETE FROM courses WHERE id = ?`, id)
}
