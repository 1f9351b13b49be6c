package models

import "time"

// Course is a catalog entry; course_code is unique.
type Course struct {
	ID          int64  `db:"id" json:"id"`
	CourseCode  string `db:"course_code" json:"course_code"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	Credits     int    `db:"credits" json:"credits"`
	Department  string `db:"department" json:"department"`
}

// CourseFilter captures filtering criteria for listing courses.
type CourseFilter struct {
	Department string
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// Semester is an academic term. At most one semester is active at a time.
type Semester struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	IsActive  bool      `db:"is_active" json:"is_active"`
}
