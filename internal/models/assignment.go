package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Assignment is a graded task in a class section. Weight is a fraction in [0,1].
type Assignment struct {
	ID             int64           `db:"id" json:"id"`
	ClassSectionID int64           `db:"class_section_id" json:"class_section_id"`
	Title          string          `db:"title" json:"title"`
	Description    string          `db:"description" json:"description"`
	CreatedDate    time.Time       `db:"created_date" json:"created_date"`
	DueDate        time.Time       `db:"due_date" json:"due_date"`
	MaxPoints      decimal.Decimal `db:"max_points" json:"max_points"`
	Weight         decimal.Decimal `db:"weight" json:"weight"`
}

// AssignmentSubmission is one student's answer to an assignment.
type AssignmentSubmission struct {
	ID             int64               `db:"id" json:"id"`
	AssignmentID   int64               `db:"assignment_id" json:"assignment_id"`
	StudentID      int64               `db:"student_id" json:"student_id"`
	SubmissionDate time.Time           `db:"submission_date" json:"submission_date"`
	Content        string              `db:"content" json:"content"`
	FilePath       string              `db:"file_path" json:"file_path,omitempty"`
	Score          decimal.NullDecimal `db:"score" json:"score"`
	Feedback       string              `db:"feedback" json:"feedback"`
	GradedDate     *time.Time          `db:"graded_date" json:"graded_date,omitempty"`
	IsLate         bool                `db:"is_late" json:"is_late"`
}

// GradedWork pairs a graded submission score with its assignment's scale, used for weighting.
type GradedWork struct {
	AssignmentID int64           `db:"assignment_id"`
	MaxPoints    decimal.Decimal `db:"max_points"`
	Weight       decimal.Decimal `db:"weight"`
	Score        decimal.Decimal `db:"score"`
}

// WeightedGrade is a student's running grade in a section on a 0-10 scale.
type WeightedGrade struct {
	StudentID      int64           `json:"student_id"`
	ClassSectionID int64           `json:"class_section_id"`
	Grade          decimal.Decimal `json:"grade"`
	GradedCount    int             `json:"graded_count"`
}
