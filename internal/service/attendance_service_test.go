package service

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-records/internal/models"
	appErrors "github.com/noah-isme/sma-records/pkg/errors"
)

type mockAttendanceRepo struct {
	records []models.AttendanceRecord
	entries []models.StudentAttendance
	counts  []models.StatusCount
}

func (m *mockAttendanceRepo) CreateRecord(ctx context.Context, exec sqlx.ExtContext, record *models.AttendanceRecord) error {
	record.ID = int64(len(m.records) + 1)
	m.records = append(m.records, *record)
	return nil
}

func (m *mockAttendanceRepo) CreateEntry(ctx context.Context, exec sqlx.ExtContext, entry *models.StudentAttendance) error {
	entry.ID = int64(len(m.entries) + 1)
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockAttendanceRepo) FindRecord(ctx context.Context, id int64) (*models.AttendanceRecord, error) {
	for _, r := range m.records {
		if r.ID == id {
			found := r
			return &found, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "find attendance record: no rows")
}

func (m *mockAttendanceRepo) ListBySection(ctx context.Context, sectionID int64) ([]models.AttendanceRecord, error) {
	return m.records, nil
}

func (m *mockAttendanceRepo) Entries(ctx context.Context, recordID int64) ([]models.StudentAttendanceDetail, error) {
	var out []models.StudentAttendanceDetail
	for _, e := range m.entries {
		if e.AttendanceRecordID == recordID {
			out = append(out, models.StudentAttendanceDetail{StudentAttendance: e})
		}
	}
	return out, nil
}

func (m *mockAttendanceRepo) CountByStatus(ctx context.Context, studentID, sectionID int64) ([]models.StatusCount, error) {
	return m.counts, nil
}

func (m *mockAttendanceRepo) DeleteRecord(ctx context.Context, id int64) error {
	return nil
}

type sectionsByID map[int64]*models.ClassSection

func (s sectionsByID) FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.ClassSection, error) {
	section, ok := s[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "find class section: no rows")
	}
	return section, nil
}

func newTestAttendanceService() (*AttendanceService, *mockAttendanceRepo, *fakeUnitOfWork) {
	repo := &mockAttendanceRepo{}
	uow := &fakeUnitOfWork{}
	svc := NewAttendanceService(repo, sectionsByID{5: {ID: 5}}, enrolledSet{{20, 5}: true, {21, 5}: true}, uow, nil, zap.NewNop())
	return svc, repo, uow
}

func TestAttendanceServiceRecord(t *testing.T) {
	svc, repo, uow := newTestAttendanceService()
	date := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)

	record, err := svc.Record(context.Background(), RecordAttendanceRequest{
		ClassSectionID: 5,
		Date:           date,
		Marks: []AttendanceMark{
			{StudentID: 20, Status: models.AttendancePresent},
			{StudentID: 21, Status: models.AttendanceLate, Comment: "bus"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), record.Date)
	assert.Equal(t, 1, uow.calls)

	entries, err := svc.Entries(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Len(t, repo.entries, 2)
}

func TestAttendanceServiceRecordRejects(t *testing.T) {
	svc, _, _ := newTestAttendanceService()
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		req  RecordAttendanceRequest
		want *appErrors.Error
	}{
		{"unknown status", RecordAttendanceRequest{ClassSectionID: 5, Date: date, Marks: []AttendanceMark{{StudentID: 20, Status: "Sleeping"}}}, appErrors.ErrValidation},
		{"no marks", RecordAttendanceRequest{ClassSectionID: 5, Date: date}, appErrors.ErrValidation},
		{"duplicate student", RecordAttendanceRequest{ClassSectionID: 5, Date: date, Marks: []AttendanceMark{
			{StudentID: 20, Status: models.AttendancePresent}, {StudentID: 20, Status: models.AttendanceAbsent},
		}}, appErrors.ErrValidation},
		{"not enrolled", RecordAttendanceRequest{ClassSectionID: 5, Date: date, Marks: []AttendanceMark{{StudentID: 99, Status: models.AttendancePresent}}}, appErrors.ErrValidation},
		{"unknown section", RecordAttendanceRequest{ClassSectionID: 6, Date: date, Marks: []AttendanceMark{{StudentID: 20, Status: models.AttendancePresent}}}, appErrors.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Record(context.Background(), tc.req)
			assert.True(t, appErrors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestAttendanceServiceStudentSummary(t *testing.T) {
	svc, repo, _ := newTestAttendanceService()
	repo.counts = []models.StatusCount{
		{Status: models.AttendancePresent, Count: 10},
		{Status: models.AttendanceAbsent, Count: 2},
		{Status: models.AttendanceExcused, Count: 1},
	}

	summary, err := svc.StudentSummary(context.Background(), 20, 5)
	require.NoError(t, err)
	assert.Equal(t, 10, summary.Present)
	assert.Equal(t, 2, summary.Absent)
	assert.Equal(t, 0, summary.Late)
	assert.Equal(t, 13, summary.Total)

	_, err = svc.Entries(context.Background(), 77)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
