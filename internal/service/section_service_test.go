package service

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-records/internal/models"
	appErrors "github.com/noah-isme/sma-records/pkg/errors"
)

type mockSectionRepo struct {
	sections map[int64]*models.ClassSection
	filter   models.ClassSectionFilter
}

func (m *mockSectionRepo) Create(ctx context.Context, exec sqlx.ExtContext, section *models.ClassSection) error {
	section.ID = int64(len(m.sections) + 1)
	clone := *section
	m.sections[section.ID] = &clone
	return nil
}

func (m *mockSectionRepo) FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.ClassSection, error) {
	s, ok := m.sections[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "find class section: no rows")
	}
	return s, nil
}

func (m *mockSectionRepo) GetDetail(ctx context.Context, id int64) (*models.ClassSectionDetail, error) {
	s, ok := m.sections[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "get class section: no rows")
	}
	return &models.ClassSectionDetail{ClassSection: *s}, nil
}

func (m *mockSectionRepo) List(ctx context.Context, filter models.ClassSectionFilter) ([]models.ClassSectionDetail, error) {
	m.filter = filter
	return nil, nil
}

func (m *mockSectionRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.sections[id]; !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "delete class section: not found")
	}
	delete(m.sections, id)
	return nil
}

type mockScheduleRepo struct {
	entries []models.ScheduleEntry
}

func (m *mockScheduleRepo) Create(ctx context.Context, exec sqlx.ExtContext, entry *models.ScheduleEntry) error {
	entry.ID = int64(len(m.entries) + 1)
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockScheduleRepo) FindBooking(ctx context.Context, exec sqlx.ExtContext, classroomID, timeSlotID int64, day models.DayOfWeek) (*models.ScheduleEntry, error) {
	for _, e := range m.entries {
		if e.ClassroomID == classroomID && e.TimeSlotID == timeSlotID && e.DayOfWeek == day {
			found := e
			return &found, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "find booking: no rows")
}

func (m *mockScheduleRepo) ListBySection(ctx context.Context, sectionID int64) ([]models.ScheduleEntryDetail, error) {
	var out []models.ScheduleEntryDetail
	for _, e := range m.entries {
		if e.ClassSectionID == sectionID {
			out = append(out, models.ScheduleEntryDetail{ScheduleEntry: e})
		}
	}
	return out, nil
}

func (m *mockScheduleRepo) ListByTeacher(ctx context.Context, teacherID int64) ([]models.ScheduleEntryDetail, error) {
	return nil, nil
}

func (m *mockScheduleRepo) Delete(ctx context.Context, id int64) error {
	return nil
}

type lookupFunc[T any] func(id int64) (*T, error)

type stubLookup[T any] struct {
	find lookupFunc[T]
}

func (s stubLookup[T]) FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*T, error) {
	return s.find(id)
}

func existing[T any](ids ...int64) stubLookup[T] {
	return stubLookup[T]{find: func(id int64) (*T, error) {
		for _, known := range ids {
			if known == id {
				return new(T), nil
			}
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, "lookup: no rows")
	}}
}

func accountsByID(accounts ...*models.Account) stubLookup[models.Account] {
	return stubLookup[models.Account]{find: func(id int64) (*models.Account, error) {
		for _, a := range accounts {
			if a.ID == id {
				return a, nil
			}
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, "find user: no rows")
	}}
}

func newTestSectionService() (*SectionService, *mockSectionRepo, *mockScheduleRepo) {
	sections := &mockSectionRepo{sections: map[int64]*models.ClassSection{}}
	schedule := &mockScheduleRepo{}
	teacher := models.NewTeacherAccount(models.User{ID: 10, Username: "lan", IsActive: true}, models.TeacherProfile{TeacherCode: "GV010"})
	student := models.NewStudentAccount(models.User{ID: 20, Username: "an", IsActive: true}, models.StudentProfile{StudentCode: "HS020"})

	svc := NewSectionService(SectionDeps{
		Sections:   sections,
		Schedule:   schedule,
		Courses:    existing[models.Course](1),
		Semesters:  existing[models.Semester](1),
		Users:      accountsByID(teacher, student),
		Classrooms: existing[models.Classroom](1, 2),
		TimeSlots:  existing[models.TimeSlot](1, 2),
	}, &fakeUnitOfWork{}, nil, zap.NewNop())
	return svc, sections, schedule
}

func sectionRequest() CreateSectionRequest {
	return CreateSectionRequest{
		SectionName: "10A1",
		MaxCapacity: 30,
		CourseID:    1,
		TeacherID:   10,
		SemesterID:  1,
		Schedule: []ScheduleEntryRequest{
			{TimeSlotID: 1, ClassroomID: 1, DayOfWeek: models.Monday},
			{TimeSlotID: 2, ClassroomID: 1, DayOfWeek: models.Wednesday},
		},
	}
}

func TestSectionServiceCreateWithSchedule(t *testing.T) {
	svc, sections, schedule := newTestSectionService()

	section, err := svc.Create(context.Background(), sectionRequest())
	require.NoError(t, err)
	assert.Equal(t, 0, section.CurrentEnrollment)
	assert.Len(t, sections.sections, 1)
	require.Len(t, schedule.entries, 2)
	assert.Equal(t, section.ID, schedule.entries[0].ClassSectionID)

	entries, err := svc.ListSchedule(context.Background(), section.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestSectionServiceCreateValidatesReferences(t *testing.T) {
	svc, _, _ := newTestSectionService()

	req := sectionRequest()
	req.TeacherID = 20
	_, err := svc.Create(context.Background(), req)
	assert.True(t, appErrors.Is(err, appErrors.ErrRoleMismatch))

	req = sectionRequest()
	req.CourseID = 9
	_, err = svc.Create(context.Background(), req)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	req = sectionRequest()
	req.MaxCapacity = 0
	_, err = svc.Create(context.Background(), req)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	req = sectionRequest()
	req.Schedule[0].DayOfWeek = "Funday"
	_, err = svc.Create(context.Background(), req)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestSectionServiceRejectsDoubleBooking(t *testing.T) {
	svc, _, schedule := newTestSectionService()
	first, err := svc.Create(context.Background(), sectionRequest())
	require.NoError(t, err)

	second := sectionRequest()
	second.SectionName = "10A2"
	second.Schedule = nil
	other, err := svc.Create(context.Background(), second)
	require.NoError(t, err)

	_, err = svc.AddScheduleEntry(context.Background(), other.ID, ScheduleEntryRequest{TimeSlotID: 1, ClassroomID: 1, DayOfWeek: models.Monday})
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Contains(t, err.Error(), formatID(first.ID))

	entry, err := svc.AddScheduleEntry(context.Background(), other.ID, ScheduleEntryRequest{TimeSlotID: 1, ClassroomID: 2, DayOfWeek: models.Monday})
	require.NoError(t, err)
	assert.Equal(t, other.ID, entry.ClassSectionID)
	assert.Len(t, schedule.entries, 3)

	_, err = svc.AddScheduleEntry(context.Background(), 77, ScheduleEntryRequest{TimeSlotID: 2, ClassroomID: 2, DayOfWeek: models.Friday})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestSectionServiceListFilters(t *testing.T) {
	svc, sections, _ := newTestSectionService()

	_, err := svc.ListByCourse(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, models.ClassSectionFilter{CourseID: 4}, sections.filter)

	_, err = svc.ListByTeacher(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, models.ClassSectionFilter{TeacherID: 10}, sections.filter)

	_, err = svc.ListBySemester(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, models.ClassSectionFilter{SemesterID: 3}, sections.filter)

	assert.True(t, appErrors.Is(svc.Delete(context.Background(), 5), appErrors.ErrNotFound))
}
