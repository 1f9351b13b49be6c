package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-records/internal/models"
	appErrors "github.com/noah-isme/sma-records/pkg/errors"
)

func TestScheduleTimetableOrderAndDoubleBooking(t *testing.T) {
	gw := newSQLiteGateway(t)
	f := seedFixture(t, gw, 30)
	ctx := context.Background()
	db := gw.DB()

	room := &models.Classroom{RoomNumber: "204", Building: "B", Capacity: 35}
	require.NoError(t, NewClassroomRepository(db).Create(ctx, room))
	slots := NewTimeSlotRepository(db)
	early := &models.TimeSlot{Name: "P1", StartTime: models.NewTimeOfDay(7, 0, 0), EndTime: models.NewTimeOfDay(7, 45, 0)}
	late := &models.TimeSlot{Name: "P2", StartTime: models.NewTimeOfDay(8, 0, 0), EndTime: models.NewTimeOfDay(8, 45, 0)}
	require.NoError(t, slots.Create(ctx, late))
	require.NoError(t, slots.Create(ctx, early))

	schedule := NewScheduleRepository(db)
	for _, e := range []models.ScheduleEntry{
		{ClassSectionID: f.section.ID, TimeSlotID: late.ID, ClassroomID: room.ID, DayOfWeek: models.Wednesday},
		{ClassSectionID: f.section.ID, TimeSlotID: late.ID, ClassroomID: room.ID, DayOfWeek: models.Monday},
		{ClassSectionID: f.section.ID, TimeSlotID: early.ID, ClassroomID: room.ID, DayOfWeek: models.Monday},
	} {
		entry := e
		require.NoError(t, schedule.Create(ctx, nil, &entry))
	}

	err := schedule.Create(ctx, nil, &models.ScheduleEntry{
		ClassSectionID: f.section.ID, TimeSlotID: early.ID, ClassroomID: room.ID, DayOfWeek: models.Monday,
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict), "got %v", err)

	booked, err := schedule.FindBooking(ctx, nil, room.ID, early.ID, models.Monday)
	require.NoError(t, err)
	assert.Equal(t, f.section.ID, booked.ClassSectionID)

	timetable, err := schedule.ListByTeacher(ctx, f.teacher.ID)
	require.NoError(t, err)
	require.Len(t, timetable, 3)
	assert.Equal(t, models.Monday, timetable[0].DayOfWeek)
	assert.Equal(t, "P1", timetable[0].SlotName)
	assert.Equal(t, "07:00:00", timetable[0].StartTime.String())
	assert.Equal(t, models.Monday, timetable[1].DayOfWeek)
	assert.Equal(t, models.Wednesday, timetable[2].DayOfWeek)
	assert.Equal(t, "MATH101", timetable[2].CourseCode)

	slotList, err := slots.List(ctx)
	require.NoError(t, err)
	require.Len(t, slotList, 2)
	assert.Equal(t, "P1", slotList[0].Name)
}
