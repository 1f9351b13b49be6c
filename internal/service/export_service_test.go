package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-records/internal/models"
	appErrors "github.com/noah-isme/sma-records/pkg/errors"
	"github.com/noah-isme/sma-records/pkg/export"
)

type stubRoster struct {
	bySection map[int64][]models.EnrollmentDetail
	byStudent map[int64][]models.EnrollmentDetail
}

func (s stubRoster) ListBySection(ctx context.Context, sectionID int64) ([]models.EnrollmentDetail, error) {
	return s.bySection[sectionID], nil
}

func (s stubRoster) ListByStudent(ctx context.Context, studentID int64) ([]models.EnrollmentDetail, error) {
	return s.byStudent[studentID], nil
}

type stubSectionDetails map[int64]*models.ClassSectionDetail

func (s stubSectionDetails) GetDetail(ctx context.Context, id int64) (*models.ClassSectionDetail, error) {
	d, ok := s[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "find class section: no rows")
	}
	return d, nil
}

func newTestExportService() *ExportService {
	enrolled := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	graded := models.EnrollmentDetail{
		Enrollment:  models.Enrollment{ID: 1, StudentID: 20, ClassSectionID: 5, EnrollmentDate: enrolled, IsCompleted: true, FinalGrade: decimal.NewNullDecimal(decimal.RequireFromString("8.5"))},
		StudentCode: "HS001", StudentName: "Trần Thị B", SectionName: "A1", CourseCode: "CS101",
	}
	open := models.EnrollmentDetail{
		Enrollment:  models.Enrollment{ID: 2, StudentID: 21, ClassSectionID: 5, EnrollmentDate: enrolled},
		StudentCode: "HS002", StudentName: "Lê Văn C", SectionName: "A1", CourseCode: "CS101",
	}
	roster := stubRoster{
		bySection: map[int64][]models.EnrollmentDetail{5: {graded, open}},
		byStudent: map[int64][]models.EnrollmentDetail{20: {graded}},
	}
	sections := stubSectionDetails{5: {
		ClassSection: models.ClassSection{ID: 5, SectionName: "A1"},
		CourseCode:   "CS101", CourseName: "Lập trình", SemesterName: "HK1 2026",
	}}
	year := 2
	users := accountsByID(
		models.NewStudentAccount(models.User{ID: 20, FirstName: "Trần", LastName: "Thị B", Role: models.RoleStudent}, models.StudentProfile{StudentCode: "HS001", CurrentYear: &year}),
		models.NewTeacherAccount(models.User{ID: 2, Role: models.RoleTeacher}, models.TeacherProfile{TeacherCode: "GV001"}),
	)
	return NewExportService(roster, sections, users, zap.NewNop())
}

func TestExportServiceRosterCSV(t *testing.T) {
	svc := newTestExportService()

	doc, err := svc.Roster(context.Background(), 5, export.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "roster-cs101-a1.csv", doc.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", doc.ContentType)

	body := string(bytes.TrimPrefix(doc.Body, []byte("\xEF\xBB\xBF")))
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "No,Student Code,Student Name,Enrolled,Completed,Final Grade", lines[0])
	assert.Equal(t, "1,HS001,Trần Thị B,2026-02-01,Yes,8.50", lines[1])
	assert.Equal(t, "2,HS002,Lê Văn C,2026-02-01,No,", lines[2])

	_, err = svc.Roster(context.Background(), 6, export.FormatCSV)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestExportServiceTranscript(t *testing.T) {
	svc := newTestExportService()

	doc, err := svc.Transcript(context.Background(), 20, export.FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "transcript-hs001.pdf", doc.Filename)
	assert.True(t, bytes.HasPrefix(doc.Body, []byte("%PDF")))

	_, err = svc.Transcript(context.Background(), 2, export.FormatCSV)
	assert.True(t, appErrors.Is(err, appErrors.ErrRoleMismatch))

	_, err = svc.Transcript(context.Background(), 99, export.FormatCSV)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "cs101-a1", slug("CS101 - A1"))
	assert.Equal(t, "hs001", slug("HS001"))
	assert.Equal(t, "", slug("--"))
}
