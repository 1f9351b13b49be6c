package models

import "time"

// AttendanceStatus is the per-student mark on an attendance record.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "Present"
	AttendanceAbsent  AttendanceStatus = "Absent"
	AttendanceLate    AttendanceStatus = "Late"
	AttendanceExcused AttendanceStatus = "Excused"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused:
		return true
	default:
		return false
	}
}

// AttendanceRecord is one class meeting of a section.
type AttendanceRecord struct {
	ID             int64     `db:"id" json:"id"`
	ClassSectionID int64     `db:"class_section_id" json:"class_section_id"`
	Date           time.Time `db:"date" json:"date"`
	Notes          string    `db:"notes" json:"notes"`
}

// StudentAttendance is a student's status in one attendance record.
type StudentAttendance struct {
	ID                 int64            `db:"id" json:"id"`
	AttendanceRecordID int64            `db:"attendance_record_id" json:"attendance_record_id"`
	StudentID          int64            `db:"student_id" json:"student_id"`
	Status             AttendanceStatus `db:"status" json:"status"`
	Comment            string           `db:"comment" json:"comment"`
}

// StudentAttendanceDetail adds the student's code and name.
type StudentAttendanceDetail struct {
	StudentAttendance
	StudentCode string `db:"student_code" json:"student_code"`
	StudentName string `db:"student_name" json:"student_name"`
}

// AttendanceSummary counts a student's statuses within a section.
type AttendanceSummary struct {
	StudentID      int64 `json:"student_id"`
	ClassSectionID int64 `json:"class_section_id"`
	Present        int   `json:"present"`
	Absent         int   `json:"absent"`
	Late           int   `json:"late"`
	Excused        int   `json:"excused"`
	Total          int   `json:"total"`
}

// StatusCount is one row of a grouped status count.
type StatusCount struct {
	Status AttendanceStatus `db:"status"`
	Count  int              `db:"count"`
}
