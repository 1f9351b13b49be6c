package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-records/internal/models"
)

const timeSlotColumns = `id, name, start_time, end_time, description`

// TimeSlotRepository provides database access for time slots.
type TimeSlotRepository struct {
	db *sqlx.DB
}

// NewTimeSlotRepository creates a new instance of TimeSlotRepository.
func NewTimeSlotRepository(db *sqlx.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

// Create inserts a time slot.
func (r *TimeSlotRepository) Create(ctx context.Context, slot *models.TimeSlot) error {
	const query = `INSERT INTO time_slots (name, start_time, end_time, description)
		VALUES (:name, :start_time, :end_time, :description) RETURNING id`
	id, err := insertReturningID(ctx, r.db, query, slot)
	if err != nil {
		return storeError("create time slot", err)
	}
	slot.ID = id
	return nil
}

// FindByID returns a time slot by identifier.
func (r *TimeSlotRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.TimeSlot, error) {
	target := pick(r.db, exec)
	var slot models.TimeSlot
	query := `SELECT ` + timeSlotColumns + ` FROM time_slots WHERE id = ?`
	if err := sqlx.GetContext(ctx, target, &slot, target.Rebind(query), id); err != nil {
		return nil, storeError("find time slot", err)
	}
	return &slot, nil
}

// List returns the slots of the teaching day in order.
func (r *TimeSlotRepository) List(ctx context.Context) ([]models.TimeSlot, error) {
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, `SELECT `+timeSlotColumns+` FROM time_slots ORDER BY start_time, id`); err != nil {
		return nil, storeError("list time slots", err)
	}
	return slots, nil
}

// Delete removes a time slot together with its schedule entries.
func (r *TimeSlotRepository) Delete(ctx context.Context, id int64) error {
	return execAffecting(ctx, r.db, "delete time slot", `DELETE FROM time_slots WHERE id = ?`, id)
}
