package service

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-records/internal/models"
	appErrors "github.com/noah-isme/sma-records/pkg/errors"
)

type announcementRepository interface {
	Create(ctx context.Context, announcement *models.Announcement) error
	FindByID(ctx context.Context, id int64) (*models.Announcement, error)
	ListInstitutionWide(ctx context.Context) ([]models.Announcement, error)
	ListForSections(ctx context.Context, sectionIDs []int64) ([]models.Announcement, error)
	Delete(ctx context.Context, id int64) error
}

// institutionBoardKey caches the institution-wide announcements.
const institutionBoardKey = "announcements:institution"

// PostAnnouncementRequest describes a new announcement. A nil ClassSectionID posts institution-wide.
type PostAnnouncementRequest struct {
	Title          string                      `json:"title" validate:"required,max=100"`
	Content        string                      `json:"content" validate:"required"`
	ExpiryDate     *time.Time                  `json:"expiry_date"`
	ClassSectionID *int64                      `json:"class_section_id" validate:"omitempty,gt=0"`
	TargetAudience models.AnnouncementAudience `json:"target_audience" validate:"required,audience"`
	IsImportant    bool                        `json:"is_important"`
}

// AnnouncementService publishes announcements and builds each reader's board.
type AnnouncementService struct {
	repo      announcementRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAnnouncementService constructs an AnnouncementService. cache may be nil.
func NewAnnouncementService(repo announcementRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AnnouncementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnnouncementService{repo: repo, cache: cache, validator: ensureValidator(validate), logger: logger, now: time.Now}
}

// Post publishes an announcement by postedBy.
func (s *AnnouncementService) Post(ctx context.Context, postedBy int64, req PostAnnouncementRequest) (*models.Announcement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid announcement payload")
	}
	now := s.now().UTC()
	if req.ExpiryDate != nil && !req.ExpiryDate.After(now) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "expiry_date must be in the future")
	}

	announcement := &models.Announcement{
		Title:          req.Title,
		Content:        req.Content,
		PostedDate:     now,
		ExpiryDate:     req.ExpiryDate,
		PostedByID:     postedBy,
		ClassSectionID: req.ClassSectionID,
		TargetAudience: req.TargetAudience,
		IsImportant:    req.IsImportant,
	}
	if err := s.repo.Create(ctx, announcement); err != nil {
		if appErrors.Is(err, appErrors.ErrReferenceRestricted) {
			return nil, appErrors.WrapAs(appErrors.ErrNotFound, err, "class section or author not found")
		}
		return nil, storeFailure(err, "failed to post announcement")
	}

	if announcement.ClassSectionID == nil {
		s.cache.Invalidate(ctx, institutionBoardKey)
	}
	s.logger.Info("announcement posted", zap.Int64("announcement_id", announcement.ID), zap.Int64("posted_by", postedBy))
	return announcement, nil
}

// Get returns an announcement.
func (s *AnnouncementService) Get(ctx context.Context, id int64) (*models.Announcement, error) {
	announcement, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "announcement")
	}
	return announcement, nil
}

// Delete removes an announcement.
func (s *AnnouncementService) Delete(ctx context.Context, id int64) error {
	announcement, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundAs(err, "announcement")
	}
	if announcement.ClassSectionID == nil {
		s.cache.Invalidate(ctx, institutionBoardKey)
	}
	return nil
}

// ListVisible returns what audience sees at now: institution-wide posts plus those of
// sectionIDs, without expired ones, important first and then newest first.
func (s *AnnouncementService) ListVisible(ctx context.Context, audience models.AnnouncementAudience, sectionIDs []int64, now time.Time) ([]models.Announcement, error) {
	if !audience.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown audience")
	}

	board, err := s.institutionBoard(ctx)
	if err != nil {
		return nil, err
	}
	sectionPosts, err := s.repo.ListForSections(ctx, sectionIDs)
	if err != nil {
		return nil, storeFailure(err, "failed to list section announcements")
	}

	visible := make([]models.Announcement, 0, len(board)+len(sectionPosts))
	for _, a := range append(board, sectionPosts...) {
		if a.Expired(now) || !a.VisibleTo(audience) {
			continue
		}
		visible = append(visible, a)
	}
	sort.SliceStable(visible, func(i, j int) bool {
		if visible[i].IsImportant != visible[j].IsImportant {
			return visible[i].IsImportant
		}
		return visible[i].PostedDate.After(visible[j].PostedDate)
	})
	return visible, nil
}

func (s *AnnouncementService) institutionBoard(ctx context.Context) ([]models.Announcement, error) {
	var board []models.Announcement
	if s.cache.Get(ctx, institutionBoardKey, &board) {
		return board, nil
	}
	board, err := s.repo.ListInstitutionWide(ctx)
	if err != nil {
		return nil, storeFailure(err, "failed to list announcements")
	}
	s.cache.Set(ctx, institutionBoardKey, board, 0)
	return board, nil
}
