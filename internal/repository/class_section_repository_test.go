package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-records/internal/models"
	appErrors "github.com/noah-isme/sma-records/pkg/errors"
)

func TestReserveSeatStopsAtCapacity(t *testing.T) {
	gw := newSQLiteGateway(t)
	f := seedFixture(t, gw, 2)
	ctx := context.Background()
	sections := NewClassSectionRepository(gw.DB())

	for i := 0; i < 2; i++ {
		ok, err := sections.ReserveSeat(ctx, nil, f.section.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := sections.ReserveSeat(ctx, nil, f.section.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	section, err := sections.FindByID(ctx, nil, f.section.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, section.CurrentEnrollment)

	require.NoError(t, sections.ReleaseSeat(ctx, nil, f.section.ID))
	section, err = sections.FindByID(ctx, nil, f.section.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, section.CurrentEnrollment)
}

func TestEnrollmentPairIsUnique(t *testing.T) {
	gw := newSQLiteGateway(t)
	f := seedFixture(t, gw, 30)
	ctx := context.Background()
	enrollments := NewEnrollmentRepository(gw.DB())

	require.NoError(t, enrollments.Create(ctx, nil, &models.Enrollment{StudentID: f.student.ID, ClassSectionID: f.section.ID}))
	err := enrollments.Create(ctx, nil, &models.Enrollment{StudentID: f.student.ID, ClassSectionID: f.section.ID})
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict), "got %v", err)

	exists, err := enrollments.Exists(ctx, nil, f.student.ID, f.section.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	list, err := enrollments.ListBySection(ctx, f.section.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "HS001", list[0].StudentCode)
	assert.Equal(t, "Minh Le", list[0].StudentName)
	assert.False(t, list[0].FinalGrade.Valid)
}

func TestClassSectionRepositoryListFilters(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClassSectionRepository(db)

	rows := sqlmock.NewRows([]string{"id", "section_name", "max_capacity", "current_enrollment", "course_id", "teacher_id",
		"semester_id", "course_code", "course_name", "teacher_name", "semester_name"}).
		AddRow(1, "A1", 30, 12, 2, 3, 4, "MATH101", "Algebra", "Lan Tran", "2026A")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE cs.teacher_id = ? AND cs.semester_id = ? ORDER BY c.course_code, cs.section_name")).
		WithArgs(int64(3), int64(4)).
		WillReturnRows(rows)

	sections, err := repo.List(context.Background(), models.ClassSectionFilter{TeacherID: 3, SemesterID: 4})
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.True(t, sections[0].HasSeat())
	require.NoError(t, mock.ExpectationsWereMet())
}
