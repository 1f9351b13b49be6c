package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sma-records/internal/models"
	"github.com/noah-isme/sma-records/pkg/config"
	"github.com/noah-isme/sma-records/pkg/database"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

// newSQLiteGateway provisions a fresh file-backed store for behaviour tests.
func newSQLiteGateway(t *testing.T) *Gateway {
	t.Helper()
	cfg := config.DatabaseConfig{Driver: config.DriverSQLite, Path: filepath.Join(t.TempDir(), "records.db")}
	db, err := database.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gw := NewGateway(db, cfg, SeedOptions{AdminPassword: "admin123", BcryptCost: bcrypt.MinCost}, zap.NewNop())
	require.NoError(t, gw.Provision(context.Background()))
	return gw
}

// fixture is a small school: one teacher, one student, one course, one semester and one section.
type fixture struct {
	teacher  *models.Account
	student  *models.Account
	course   *models.Course
	semester *models.Semester
	section  *models.ClassSection
}

func seedFixture(t *testing.T, gw *Gateway, capacity int) fixture {
	t.Helper()
	ctx := context.Background()
	db := gw.DB()

	year := 2
	f := fixture{
		teacher: models.NewTeacherAccount(models.User{
			Username: "gv001", PasswordHash: "x", FirstName: "Lan", LastName: "Tran", Email: "lan@school.edu", IsActive: true,
		}, models.TeacherProfile{TeacherCode: "GV001", Department: "Math"}),
		student: models.NewStudentAccount(models.User{
			Username: "hs001", PasswordHash: "x", FirstName: "Minh", LastName: "Le", Email: "minh@school.edu", IsActive: true,
		}, models.StudentProfile{StudentCode: "HS001", CurrentYear: &year}),
		course: &models.Course{CourseCode: "MATH101", Name: "Algebra", Credits: 3, Department: "Math"},
		semester: &models.Semester{
			Name:      "2026A",
			StartDate: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, 5, 30, 0, 0, 0, 0, time.UTC),
			IsActive:  true,
		},
	}

	users := NewUserRepository(db)
	require.NoError(t, users.Create(ctx, nil, f.teacher))
	require.NoError(t, users.Create(ctx, nil, f.student))
	require.NoError(t, NewCourseRepository(db).Create(ctx, f.course))
	require.NoError(t, NewSemesterRepository(db).Create(ctx, f.semester))

	f.section = &models.ClassSection{
		SectionName: "A1", MaxCapacity: capacity, CourseID: f.course.ID, TeacherID: f.teacher.ID, SemesterID: f.semester.ID,
	}
	require.NoError(t, NewClassSectionRepository(db).Create(ctx, nil, f.section))
	return f
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
