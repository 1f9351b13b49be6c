package models

// DayOfWeek is stored as the English day name.
type DayOfWeek string

const (
	Monday    DayOfWeek = "Monday"
	Tuesday   DayOfWeek = "Tuesday"
	Wednesday DayOfWeek = "Wednesday"
	Thursday  DayOfWeek = "Thursday"
	Friday    DayOfWeek = "Friday"
	Saturday  DayOfWeek = "Saturday"
	Sunday    DayOfWeek = "Sunday"
)

var weekdayOrder = map[DayOfWeek]int{
	Monday: 1, Tuesday: 2, Wednesday: 3, Thursday: 4, Friday: 5, Saturday: 6, Sunday: 7,
}

// Valid reports whether d is a weekday name.
func (d DayOfWeek) Valid() bool {
	_, ok := weekdayOrder[d]
	return ok
}

// Order returns 1 for Monday through 7 for Sunday, 0 when invalid.
func (d DayOfWeek) Order() int {
	return weekdayOrder[d]
}

// Classroom is a physical room.
type Classroom struct {
	ID         int64  `db:"id" json:"id"`
	RoomNumber string `db:"room_number" json:"room_number"`
	Building   string `db:"building" json:"building"`
	Floor      *int   `db:"floor" json:"floor,omitempty"`
	Capacity   int    `db:"capacity" json:"capacity"`
	RoomType   string `db:"room_type" json:"room_type"`
	Facilities string `db:"facilities" json:"facilities"`
}

// TimeSlot is a named period of the teaching day.
type TimeSlot struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	StartTime   TimeOfDay `db:"start_time" json:"start_time"`
	EndTime     TimeOfDay `db:"end_time" json:"end_time"`
	Description string    `db:"description" json:"description"`
}

// ScheduleEntry places a class section in a classroom at a time slot on a weekday.
type ScheduleEntry struct {
	ID             int64     `db:"id" json:"id"`
	ClassSectionID int64     `db:"class_section_id" json:"class_section_id"`
	TimeSlotID     int64     `db:"time_slot_id" json:"time_slot_id"`
	ClassroomID    int64     `db:"classroom_id" json:"classroom_id"`
	DayOfWeek      DayOfWeek `db:"day_of_week" json:"day_of_week"`
}

// ScheduleEntryDetail is a ScheduleEntry joined with its room, slot and section.
type ScheduleEntryDetail struct {
	ScheduleEntry
	SectionName string    `db:"section_name" json:"section_name"`
	CourseCode  string    `db:"course_code" json:"course_code"`
	RoomNumber  string    `db:"room_number" json:"room_number"`
	Building    string    `db:"building" json:"building"`
	SlotName    string    `db:"slot_name" json:"slot_name"`
	StartTime   TimeOfDay `db:"start_time" json:"start_time"`
	EndTime     TimeOfDay `db:"end_time" json:"end_time"`
}
