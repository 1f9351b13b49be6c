package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-records/internal/models"
	appErrors "github.com/noah-isme/sma-records/pkg/errors"
	"github.com/noah-isme/sma-records/pkg/export"
)

type rosterSource interface {
	ListBySection(ctx context.Context, sectionID int64) ([]models.EnrollmentDetail, error)
	ListByStudent(ctx context.Context, studentID int64) ([]models.EnrollmentDetail, error)
}

type sectionDetailSource interface {
	GetDetail(ctx context.Context, id int64) (*models.ClassSectionDetail, error)
}

// ExportService renders enrollment data as downloadable documents.
type ExportService struct {
	enrollments rosterSource
	sections    sectionDetailSource
	users       accountLookup
	logger      *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(enrollments rosterSource, sections sectionDetailSource, users accountLookup, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{enrollments: enrollments, sections: sections, users: users, logger: logger}
}

// Roster renders the students of a class section.
func (s *ExportService) Roster(ctx context.Context, sectionID int64, format export.Format) (*export.Document, error) {
	section, err := s.sections.GetDetail(ctx, sectionID)
	if err != nil {
		return nil, notFoundAs(err, "class section")
	}
	items, err := s.enrollments.ListBySection(ctx, sectionID)
	if err != nil {
		return nil, storeFailure(err, "failed to load roster")
	}

	data := export.Dataset{
		Title:   fmt.Sprintf("%s %s - %s (%s)", section.CourseCode, section.SectionName, section.CourseName, section.SemesterName),
		Headers: []string{"No", "Student Code", "Student Name", "Enrolled", "Completed", "Final Grade"},
		Rows:    make([][]string, 0, len(items)),
	}
	for i, e := range items {
		data.Rows = append(data.Rows, []string{
			fmt.Sprint(i + 1),
			e.StudentCode,
			e.StudentName,
			e.EnrollmentDate.Format("2006-01-02"),
			yesNo(e.IsCompleted),
			finalGrade(e.Enrollment),
		})
	}

	base := "roster-" + slug(section.CourseCode+"-"+section.SectionName)
	return s.render(format, base, data)
}

// Transcript renders every enrollment of a student.
func (s *ExportService) Transcript(ctx context.Context, studentID int64, format export.Format) (*export.Document, error) {
	student, err := s.users.FindByID(ctx, nil, studentID)
	if err != nil {
		return nil, notFoundAs(err, "student")
	}
	if student.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrRoleMismatch, "user is not a student")
	}
	items, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, storeFailure(err, "failed to load enrollments")
	}

	data := export.Dataset{
		Title:   "Transcript - " + student.FullName(),
		Headers: []string{"Course", "Section", "Enrolled", "Completed", "Final Grade"},
		Rows:    make([][]string, 0, len(items)),
	}
	for _, e := range items {
		data.Rows = append(data.Rows, []string{
			e.CourseCode,
			e.SectionName,
			e.EnrollmentDate.Format("2006-01-02"),
			yesNo(e.IsCompleted),
			finalGrade(e.Enrollment),
		})
	}

	code := formatID(studentID)
	if student.Student != nil && student.Student.StudentCode != "" {
		code = student.Student.StudentCode
	}
	return s.render(format, "transcript-"+slug(code), data)
}

func (s *ExportService) render(format export.Format, base string, data export.Dataset) (*export.Document, error) {
	doc, err := export.Render(format, base, data)
	if err != nil {
		s.logger.Error("export render failed", zap.String("file", base), zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.WrapAs(appErrors.ErrInternal, err, "failed to render export")
	}
	s.logger.Debug("export rendered", zap.String("file", doc.Filename), zap.Int("rows", len(data.Rows)))
	return doc, nil
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func finalGrade(e models.Enrollment) string {
	if !e.FinalGrade.Valid {
		return ""
	}
	return e.FinalGrade.Decimal.StringFixed(2)
}

func slug(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case b.Len() > 0 && !strings.HasSuffix(b.String(), "-"):
			b.WriteByte('-')
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
