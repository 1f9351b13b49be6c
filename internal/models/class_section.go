package models

// ClassSection is one teachable instance of a course in a semester.
type ClassSection struct {
	ID                int64  `db:"id" json:"id"`
	SectionName       string `db:"section_name" json:"section_name"`
	MaxCapacity       int    `db:"max_capacity" json:"max_capacity"`
	CurrentEnrollment int    `db:"current_enrollment" json:"current_enrollment"`
	CourseID          int64  `db:"course_id" json:"course_id"`
	TeacherID         int64  `db:"teacher_id" json:"teacher_id"`
	SemesterID        int64  `db:"semester_id" json:"semester_id"`
}

// HasSeat reports whether another student fits.
func (s ClassSection) HasSeat() bool {
	return s.CurrentEnrollment < s.MaxCapacity
}

// ClassSectionDetail enriches ClassSection with course, teacher and semester names.
type ClassSectionDetail struct {
	ClassSection
	CourseCode   string `db:"course_code" json:"course_code"`
	CourseName   string `db:"course_name" json:"course_name"`
	TeacherName  string `db:"teacher_name" json:"teacher_name"`
	SemesterName string `db:"semester_name" json:"semester_name"`
}

// ClassSectionFilter narrows section listings; zero values are ignored.
type ClassSectionFilter struct {
	CourseID   int64
	TeacherID  int64
	SemesterID int64
}
