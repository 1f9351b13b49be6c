package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-records/internal/models"
)

const classroomColumns = `id, room_number, building, floor, capacity, room_type, facilities`

// ClassroomRepository provides database access for classrooms.
type ClassroomRepository struct {
	db *sqlx.DB
}

// NewClassroomRepository creates a new instance of ClassroomRepository.
func NewClassroomRepository(db *sqlx.DB) *ClassroomRepository {
	return &ClassroomRepository{db: db}
}

// Create inserts a classroom.
func (r *ClassroomRepository) Create(ctx context.Context, room *models.Classroom) error {
	const query = `INSERT INTO classrooms (room_number, building, floor, capacity, room_type, facilities)
		VALUES (:room_number, :building, :floor, :capacity, :room_type, :facilities) RETURNING id`
	id, err := insertReturningID(ctx, r.db, query, room)
	if err != nil {
		return storeError("create classroom", err)
	}
	room.ID = id
	return nil
}

// FindByID returns a classroom by identifier.
func (r *ClassroomRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Classroom, error) {
	target := pick(r.db, exec)
	var room models.Classroom
	query := `SELECT ` + classroomColumns + ` FROM classrooms WHERE id = ?`
	if err := sqlx.GetContext(ctx, target, &room, target.Rebind(query), id); err != nil {
		return nil, storeError("find classroom", err)
	}
	return &room, nil
}

// List returns every classroom ordered by building and room.
func (r *ClassroomRepository) List(ctx context.Context) ([]models.Classroom, error) {
	var rooms []models.Classroom
	if err := r.db.SelectContext(ctx, &rooms, `SELECT `+classroomColumns+` FROM classrooms ORDER BY building, room_number`); err != nil {
		return nil, storeError("list classrooms", err)
	}
	return rooms, nil
}

// Delete removes a classroom together with its schedule entries.
func (r *ClassroomRepository) Delete(ctx context.Context, id int64) error {
	return execAffecting(ctx, r.db, "delete classroom", `DELETE FROM classrooms WHERE id = ?`, id)
}
