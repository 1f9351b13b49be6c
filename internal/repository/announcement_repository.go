package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-records/internal/models"
)

const announcementColumns = `id, title, content, posted_date, expiry_date, posted_by_id, class_section_id, target_audience, is_important`

// AnnouncementRepository provides database access for announcements.
type AnnouncementRepository struct {
	db *sqlx.DB
}

// NewAnnouncementRepository creates a new instance of AnnouncementRepository.
func NewAnnouncementRepository(db *sqlx.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// Create inserts an announcement.
func (r *AnnouncementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	const query = `INSERT INTO announcements (title, content, posted_date, expiry_date, posted_by_id, class_section_id, target_audience, is_important)
		VALUES (:title, :content, :posted_date, :expiry_date, :posted_by_id, :class_section_id, :target_audience, :is_important) RETURNING id`
	id, err := insertReturningID(ctx, r.db, query, announcement)
	if err != nil {
		return storeError("create announcement", err)
	}
	announcement.ID = id
	return nil
}

// FindByID returns an announcement by identifier.
func (r *AnnouncementRepository) FindByID(ctx context.Context, id int64) (*models.Announcement, error) {
	var announcement models.Announcement
	query := `SELECT ` + announcementColumns + ` FROM announcements WHERE id = ?`
	if err := r.db.GetContext(ctx, &announcement, r.db.Rebind(query), id); err != nil {
		return nil, storeError("find announcement", err)
	}
	return &announcement, nil
}

// ListInstitutionWide returns announcements not tied to a section, newest first.
func (r *AnnouncementRepository) ListInstitutionWide(ctx context.Context) ([]models.Announcement, error) {
	query := `SELECT ` + announcementColumns + ` FROM announcements WHERE class_section_id IS NULL ORDER BY posted_date DESC, id DESC`
	var announcements []models.Announcement
	if err := r.db.SelectContext(ctx, &announcements, query); err != nil {
		return nil, storeError("list announcements", err)
	}
	return announcements, nil
}

// ListForSections returns announcements posted to any of the given sections, newest first.
func (r *AnnouncementRepository) ListForSections(ctx context.Context, sectionIDs []int64) ([]models.Announcement, error) {
	if len(sectionIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT `+announcementColumns+` FROM announcements WHERE class_section_id IN (?) ORDER BY posted_date DESC, id DESC`, sectionIDs)
	if err != nil {
		return nil, storeError("list section announcements", err)
	}
	var announcements []models.Announcement
	if err := r.db.SelectContext(ctx, &announcements, r.db.Rebind(query), args...); err != nil {
		return nil, storeError("list section announcements", err)
	}
	return announcements, nil
}

// Delete removes an announcement.
func (r *AnnouncementRepository) Delete(ctx context.Context, id int64) error {
	return execAffecting(ctx, r.db, "delete announcement", `DELETE FROM announcements WHERE id = ?`, id)
}
