package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Enrollment links a student to a class section.
type Enrollment struct {
	ID             int64               `db:"id" json:"id"`
	StudentID      int64               `db:"student_id" json:"student_id"`
	ClassSectionID int64               `db:"class_section_id" json:"class_section_id"`
	EnrollmentDate time.Time           `db:"enrollment_date" json:"enrollment_date"`
	FinalGrade     decimal.NullDecimal `db:"final_grade" json:"final_grade"`
	IsCompleted    bool                `db:"is_completed" json:"is_completed"`
}

// EnrollmentDetail enriches Enrollment with student and section info.
type EnrollmentDetail struct {
	Enrollment
	StudentCode string `db:"student_code" json:"student_code"`
	StudentName string `db:"student_name" json:"student_name"`
	SectionName string `db:"section_name" json:"section_name"`
	CourseCode  string `db:"course_code" json:"course_code"`
}
