package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sma-records/internal/models"
	"github.com/noah-isme/sma-records/pkg/config"
	appErrors "github.com/noah-isme/sma-records/pkg/errors"
)

func countRows(t *testing.T, db *sqlx.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM "+table))
	return n
}

func TestGatewaySeedCreatesBootstrapAdminOnEmptyStore(t *testing.T) {
	gw := newSQLiteGateway(t)
	ctx := context.Background()

	assert.True(t, gw.Seed(ctx))

	users := NewUserRepository(gw.DB())
	accounts, total, err := users.List(ctx, models.UserFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	admin := accounts[0]
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.Equal(t, "admin", admin.Username)
	require.NotNil(t, admin.Admin)
	assert.Equal(t, "Văn phòng chính", admin.Admin.OfficeLocation)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("admin123")))
}

func TestGatewayProvisionAndSeedAreIdempotent(t *testing.T) {
	gw := newSQLiteGateway(t)
	ctx := context.Background()

	require.True(t, gw.Seed(ctx))
	require.NoError(t, gw.Provision(ctx))
	assert.False(t, gw.Seed(ctx))

	var admins int
	require.NoError(t, gw.DB().Get(&admins, "SELECT COUNT(*) FROM users WHERE role = 'Admin'"))
	assert.Equal(t, 1, admins)
}

func TestGatewaySeedSkipsPopulatedStore(t *testing.T) {
	gw := newSQLiteGateway(t)
	seedFixture(t, gw, 30)

	assert.False(t, gw.Seed(context.Background()))
	assert.Equal(t, 2, countRows(t, gw.DB(), "users"))
}

func TestGatewayProvisionFailureIsTyped(t *testing.T) {
	gw := NewGateway(nil, config.DatabaseConfig{}, SeedOptions{}, zap.NewNop())
	gw.migrate = func(context.Context, config.DatabaseConfig) error { return errors.New("dial tcp: connection refused") }

	err := gw.Provision(context.Background())
	assert.True(t, appErrors.Is(err, appErrors.ErrSchemaProvisioning))
}

func TestGatewayWithinTxRollsBack(t *testing.T) {
	gw := newSQLiteGateway(t)
	ctx := context.Background()
	courses := NewCourseRepository(gw.DB())

	boom := errors.New("boom")
	err := gw.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO courses (course_code, name, credits) VALUES (?, ?, ?)`), "TMP1", "Temp", 1); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = courses.FindByCode(ctx, "TMP1")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestDeleteCourseReferencedBySectionIsRestricted(t *testing.T) {
	gw := newSQLiteGateway(t)
	f := seedFixture(t, gw, 30)
	ctx := context.Background()

	err := NewCourseRepository(gw.DB()).Delete(ctx, f.course.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrReferenceRestricted), "got %v", err)
	assert.Equal(t, 1, countRows(t, gw.DB(), "courses"))

	err = NewUserRepository(gw.DB()).Delete(ctx, f.teacher.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrReferenceRestricted), "got %v", err)

	err = NewSemesterRepository(gw.DB()).Delete(ctx, f.semester.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrReferenceRestricted), "got %v", err)
}

func TestDeleteSectionCascadesToDependents(t *testing.T) {
	gw := newSQLiteGateway(t)
	f := seedFixture(t, gw, 30)
	ctx := context.Background()
	db := gw.DB()

	require.NoError(t, NewEnrollmentRepository(db).Create(ctx, nil, &models.Enrollment{StudentID: f.student.ID, ClassSectionID: f.section.ID}))

	assignment := &models.Assignment{
		ClassSectionID: f.section.ID, Title: "Homework 1", DueDate: time.Now().Add(24 * time.Hour),
		MaxPoints: dec("10"), Weight: dec("0.5"),
	}
	require.NoError(t, NewAssignmentRepository(db).Create(ctx, assignment))
	require.NoError(t, NewSubmissionRepository(db).Create(ctx, &models.AssignmentSubmission{
		AssignmentID: assignment.ID, StudentID: f.student.ID, SubmissionDate: time.Now(),
	}))

	attendance := NewAttendanceRepository(db)
	record := &models.AttendanceRecord{ClassSectionID: f.section.ID, Date: time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, attendance.CreateRecord(ctx, nil, record))
	require.NoError(t, attendance.CreateEntry(ctx, nil, &models.StudentAttendance{
		AttendanceRecordID: record.ID, StudentID: f.student.ID, Status: models.AttendancePresent,
	}))

	room := &models.Classroom{RoomNumber: "101", Building: "A", Capacity: 40}
	require.NoError(t, NewClassroomRepository(db).Create(ctx, room))
	slot := &models.TimeSlot{Name: "P1", StartTime: models.NewTimeOfDay(7, 0, 0), EndTime: models.NewTimeOfDay(7, 45, 0)}
	require.NoError(t, NewTimeSlotRepository(db).Create(ctx, slot))
	require.NoError(t, NewScheduleRepository(db).Create(ctx, nil, &models.ScheduleEntry{
		ClassSectionID: f.section.ID, TimeSlotID: slot.ID, ClassroomID: room.ID, DayOfWeek: models.Monday,
	}))

	sectionID := f.section.ID
	require.NoError(t, NewAnnouncementRepository(db).Create(ctx, &models.Announcement{
		Title: "Quiz", Content: "Friday", PostedDate: time.Now(), PostedByID: f.teacher.ID,
		ClassSectionID: &sectionID, TargetAudience: models.AudienceStudents,
	}))

	require.NoError(t, NewClassSectionRepository(db).Delete(ctx, f.section.ID))

	for _, table := range []string{"enrollments", "assignments", "assignment_submissions", "attendance_records",
		"student_attendances", "schedule_entries", "announcements"} {
		assert.Equal(t, 0, countRows(t, db, table), table)
	}
	assert.Equal(t, 1, countRows(t, db, "courses"))
	assert.Equal(t, 1, countRows(t, db, "classrooms"))
}

func TestDeleteStudentCascadesToEnrollments(t *testing.T) {
	gw := newSQLiteGateway(t)
	f := seedFixture(t, gw, 30)
	ctx := context.Background()
	db := gw.DB()

	sections := NewClassSectionRepository(db)
	reserved, err := sections.ReserveSeat(ctx, nil, f.section.ID)
	require.NoError(t, err)
	require.True(t, reserved)
	require.NoError(t, NewEnrollmentRepository(db).Create(ctx, nil, &models.Enrollment{StudentID: f.student.ID, ClassSectionID: f.section.ID}))

	require.NoError(t, NewUserRepository(db).Delete(ctx, f.student.ID))
	assert.Equal(t, 0, countRows(t, db, "enrollments"))
	section, err := sections.FindByID(ctx, nil, f.section.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, section.CurrentEnrollment)
}

func TestDeleteStudentFreesSeatInFullSection(t *testing.T) {
	gw := newSQLiteGateway(t)
	f := seedFixture(t, gw, 1)
	ctx := context.Background()
	db := gw.DB()
	sections := NewClassSectionRepository(db)

	reserved, err := sections.ReserveSeat(ctx, nil, f.section.ID)
	require.NoError(t, err)
	require.True(t, reserved)
	require.NoError(t, NewEnrollmentRepository(db).Create(ctx, nil, &models.Enrollment{StudentID: f.student.ID, ClassSectionID: f.section.ID}))

	reserved, err = sections.ReserveSeat(ctx, nil, f.section.ID)
	require.NoError(t, err)
	require.False(t, reserved)

	require.NoError(t, NewUserRepository(db).Delete(ctx, f.student.ID))
	reserved, err = sections.ReserveSeat(ctx, nil, f.section.ID)
	require.NoError(t, err)
	assert.True(t, reserved)
}

func TestDeleteTeacherWithSectionsKeepsSeats(t *testing.T) {
	gw := newSQLiteGateway(t)
	f := seedFixture(t, gw, 30)
	ctx := context.Background()
	db := gw.DB()
	sections := NewClassSectionRepository(db)

	_, err := sections.ReserveSeat(ctx, nil, f.section.ID)
	require.NoError(t, err)
	require.NoError(t, NewEnrollmentRepository(db).Create(ctx, nil, &models.Enrollment{StudentID: f.student.ID, ClassSectionID: f.section.ID}))

	err = NewUserRepository(db).Delete(ctx, f.teacher.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrReferenceRestricted))
	section, err := sections.FindByID(ctx, nil, f.section.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, section.CurrentEnrollment)
}

func TestDuplicateUsernameAndCourseCodeConflict(t *testing.T) {
	gw := newSQLiteGateway(t)
	f := seedFixture(t, gw, 30)
	ctx := context.Background()
	db := gw.DB()

	dup := models.NewStudentAccount(models.User{Username: f.student.Username, PasswordHash: "x", IsActive: true}, models.StudentProfile{})
	err := NewUserRepository(db).Create(ctx, nil, dup)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict), "got %v", err)

	err = NewCourseRepository(db).Create(ctx, &models.Course{CourseCode: "MATH101", Name: "Again", Credits: 1})
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict), "got %v", err)
}

func TestStoredAccountRoundTripsThroughSQLite(t *testing.T) {
	gw := newSQLiteGateway(t)
	f := seedFixture(t, gw, 30)

	account, err := NewUserRepository(gw.DB()).FindAccount(context.Background(), f.student.ID, models.RoleStudent)
	require.NoError(t, err)
	require.NotNil(t, account.Student)
	assert.Equal(t, "HS001", account.Student.StudentCode)
	require.NotNil(t, account.Student.CurrentYear)
	assert.Equal(t, 2, *account.Student.CurrentYear)
	assert.Nil(t, account.Teacher)

	_, err = NewUserRepository(gw.DB()).FindAccount(context.Background(), f.student.ID, models.RoleTeacher)
	assert.True(t, appErrors.Is(err, appErrors.ErrRoleMismatch))
}
