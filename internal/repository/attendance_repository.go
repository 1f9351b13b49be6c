package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-records/internal/models"
)

// AttendanceRepository provides database access for attendance records and their entries.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository creates a new instance of AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// CreateRecord inserts a class meeting.
func (r *AttendanceRepository) CreateRecord(ctx context.Context, exec sqlx.ExtContext, record *models.AttendanceRecord) error {
	const query = `INSERT INTO attendance_records (class_section_id, date, notes)
		VALUES (:class_section_id, :date, :notes) RETURNING id`
	id, err := insertReturningID(ctx, pick(r.db, exec), query, record)
	if err != nil {
		return storeError("create attendance record", err)
	}
	record.ID = id
	return nil
}

// CreateEntry inserts one student's mark.
func (r *AttendanceRepository) CreateEntry(ctx context.Context, exec sqlx.ExtContext, entry *models.StudentAttendance) error {
	const query = `INSERT INTO student_attendances (attendance_record_id, student_id, status, comment)
		VALUES (:attendance_record_id, :student_id, :status, :comment) RETURNING id`
	id, err := insertReturningID(ctx, pick(r.db, exec), query, entry)
	if err != nil {
		return storeError("create student attendance", err)
	}
	entry.ID = id
	return nil
}

// FindRecord returns an attendance record by identifier.
func (r *AttendanceRepository) FindRecord(ctx context.Context, id int64) (*models.AttendanceRecord, error) {
	const query = `SELECT id, class_section_id, date, notes FROM attendance_records WHERE id = ?`
	var record models.AttendanceRecord
	if err := r.db.GetContext(ctx, &record, r.db.Rebind(query), id); err != nil {
		return nil, storeError("find attendance record", err)
	}
	return &record, nil
}

// ListBySection returns a section's meetings, latest first.
func (r *AttendanceRepository) ListBySection(ctx context.Context, sectionID int64) ([]models.AttendanceRecord, error) {
	const query = `SELECT id, class_section_id, date, notes FROM attendance_records WHERE class_section_id = ? ORDER BY date DESC, id DESC`
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, r.db.Rebind(query), sectionID); err != nil {
		return nil, storeError("list attendance records", err)
	}
	return records, nil
}

// Entries returns the marks of one meeting.
func (r *AttendanceRepository) Entries(ctx context.Context, recordID int64) ([]models.StudentAttendanceDetail, error) {
	const query = `SELECT sa.id, sa.attendance_record_id, sa.student_id, sa.status, sa.comment,
		COALESCE(u.student_code, '') AS student_code, u.first_name || ' ' || u.last_name AS student_name
		FROM student_attendances sa
		JOIN users u ON u.id = sa.student_id
		WHERE sa.attendance_record_id = ?
		ORDER BY u.last_name, u.first_name`
	var entries []models.StudentAttendanceDetail
	if err := r.db.SelectContext(ctx, &entries, r.db.Rebind(query), recordID); err != nil {
		return nil, storeError("list student attendance", err)
	}
	return entries, nil
}

// CountByStatus groups a student's marks in a section by status.
func (r *AttendanceRepository) CountByStatus(ctx context.Context, studentID, sectionID int64) ([]models.StatusCount, error) {
	const query = `SELECT sa.status, COUNT(*) AS count
		FROM student_attendances sa
		JOIN attendance_records ar ON ar.id = sa.attendance_record_id
		WHERE sa.student_id = ? AND ar.class_section_id = ?
		GROUP BY sa.status`
	var counts []models.StatusCount
	if err := r.db.SelectContext(ctx, &counts, r.db.Rebind(query), studentID, sectionID); err != nil {
		return nil, storeError("count attendance", err)
	}
	return counts, nil
}

// DeleteRecord removes a meeting and its marks.
func (r *AttendanceRepository) DeleteRecord(ctx context.Context, id int64) error {
	return execAffecting(ctx, r.db, "delete attendance record", `DELETE FROM attendance_records WHERE id = ?`, id)
}
