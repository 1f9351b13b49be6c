package repository

import (
	"context"
	"sort"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-records/internal/models"
)

const scheduleDetailSelect = `SELECT se.id, se.class_section_id, se.time_slot_id, se.classroom_id, se.day_of_week,
	cs.section_name, c.course_code, r.room_number, r.building,
	ts.name AS slot_name, ts.start_time, ts.end_time
	FROM schedule_entries se
	JOIN class_sections cs ON cs.id = se.class_section_id
	JOIN courses c ON c.id = cs.course_id
	JOIN classrooms r ON r.id = se.classroom_id
	JOIN time_slots ts ON ts.id = se.time_slot_id`

// ScheduleRepository provides database access for schedule entries.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new instance of ScheduleRepository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Create inserts a schedule entry. A classroom already booked for the slot and day yields CONFLICT.
func (r *ScheduleRepository) Create(ctx context.Context, exec sqlx.ExtContext, entry *models.ScheduleEntry) error {
	const query = `INSERT INTO schedule_entries (class_section_id, time_slot_id, classroom_id, day_of_week)
		VALUES (:class_section_id, :time_slot_id, :classroom_id, :day_of_week) RETURNING id`
	id, err := insertReturningID(ctx, pick(r.db, exec), query, entry)
	if err != nil {
		return storeError("create schedule entry", err)
	}
	entry.ID = id
	return nil
}

// FindBooking returns the entry occupying a classroom at a slot and day, if any.
func (r *ScheduleRepository) FindBooking(ctx context.Context, exec sqlx.ExtContext, classroomID, timeSlotID int64, day models.DayOfWeek) (*models.ScheduleEntry, error) {
	target := pick(r.db, exec)
	const query = `SELECT id, class_section_id, time_slot_id, classroom_id, day_of_week FROM schedule_entries
		WHERE classroom_id = ? AND time_slot_id = ? AND day_of_week = ?`
	var entry models.ScheduleEntry
	if err := sqlx.GetContext(ctx, target, &entry, target.Rebind(query), classroomID, timeSlotID, day); err != nil {
		return nil, storeError("find booking", err)
	}
	return &entry, nil
}

// ListBySection returns a section's weekly schedule.
func (r *ScheduleRepository) ListBySection(ctx context.Context, sectionID int64) ([]models.ScheduleEntryDetail, error) {
	var entries []models.ScheduleEntryDetail
	if err := r.db.SelectContext(ctx, &entries, r.db.Rebind(scheduleDetailSelect+` WHERE se.class_section_id = ?`), sectionID); err != nil {
		return nil, storeError("list section schedule", err)
	}
	sortWeekly(entries)
	return entries, nil
}

// ListByTeacher returns every entry of the sections a teacher runs.
func (r *ScheduleRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]models.ScheduleEntryDetail, error) {
	var entries []models.ScheduleEntryDetail
	if err := r.db.SelectContext(ctx, &entries, r.db.Rebind(scheduleDetailSelect+` WHERE cs.teacher_id = ?`), teacherID); err != nil {
		return nil, storeError("list teacher timetable", err)
	}
	sortWeekly(entries)
	return entries, nil
}

// Delete removes a schedule entry.
func (r *ScheduleRepository) Delete(ctx context.Context, id int64) error {
	return execAffecting(ctx, r.db, "delete schedule entry", `DELETE FROM schedule_entries WHERE id = ?`, id)
}

func sortWeekly(entries []models.ScheduleEntryDetail) {
	sort.SliceStable(entries, func(i, j int) bool {
		if oi, oj := entries[i].DayOfWeek.Order(), entries[j].DayOfWeek.Order(); oi != oj {
			return oi < oj
		}
		return entries[i].StartTime < entries[j].StartTime
	})
}
