package models

import "time"

// AnnouncementAudience defines who can see an announcement.
type AnnouncementAudience string

const (
	AudienceAll      AnnouncementAudience = "All"
	AudienceStudents AnnouncementAudience = "Students"
	AudienceTeachers AnnouncementAudience = "Teachers"
)

// Valid reports whether a is a known audience.
func (a AnnouncementAudience) Valid() bool {
	switch a {
	case AudienceAll, AudienceStudents, AudienceTeachers:
		return true
	default:
		return false
	}
}

// AudienceForRole maps a role to the audience its members read.
func AudienceForRole(role UserRole) AnnouncementAudience {
	switch role {
	case RoleStudent:
		return AudienceStudents
	case RoleTeacher:
		return AudienceTeachers
	default:
		return AudienceAll
	}
}

// Announcement is a notice either for one class section or, when ClassSectionID is nil, institution-wide.
type Announcement struct {
	ID             int64                `db:"id" json:"id"`
	Title          string               `db:"title" json:"title"`
	Content        string               `db:"content" json:"content"`
	PostedDate     time.Time            `db:"posted_date" json:"posted_date"`
	ExpiryDate     *time.Time           `db:"expiry_date" json:"expiry_date,omitempty"`
	PostedByID     int64                `db:"posted_by_id" json:"posted_by_id"`
	ClassSectionID *int64               `db:"class_section_id" json:"class_section_id,omitempty"`
	TargetAudience AnnouncementAudience `db:"target_audience" json:"target_audience"`
	IsImportant    bool                 `db:"is_important" json:"is_important"`
}

// Expired reports whether the announcement has passed its expiry at now.
func (a Announcement) Expired(now time.Time) bool {
	return a.ExpiryDate != nil && !a.ExpiryDate.After(now)
}

// VisibleTo reports whether an audience sees the announcement.
func (a Announcement) VisibleTo(audience AnnouncementAudience) bool {
	return a.TargetAudience == AudienceAll || audience == AudienceAll || a.TargetAudience == audience
}
