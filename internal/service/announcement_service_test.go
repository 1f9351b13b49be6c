package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-records/internal/models"
	appErrors "github.com/noah-isme/sma-records/pkg/errors"
)

type mockAnnouncementRepo struct {
	items          []models.Announcement
	boardQueries   int
	sectionQueries [][]int64
}

func (m *mockAnnouncementRepo) Create(ctx context.Context, a *models.Announcement) error {
	a.ID = int64(len(m.items) + 1)
	m.items = append(m.items, *a)
	return nil
}

func (m *mockAnnouncementRepo) FindByID(ctx context.Context, id int64) (*models.Announcement, error) {
	for _, a := range m.items {
		if a.ID == id {
			found := a
			return &found, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "find announcement: no rows")
}

func (m *mockAnnouncementRepo) ListInstitutionWide(ctx context.Context) ([]models.Announcement, error) {
	m.boardQueries++
	var out []models.Announcement
	for _, a := range m.items {
		if a.ClassSectionID == nil {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAnnouncementRepo) ListForSections(ctx context.Context, sectionIDs []int64) ([]models.Announcement, error) {
	m.sectionQueries = append(m.sectionQueries, sectionIDs)
	wanted := make(map[int64]bool, len(sectionIDs))
	for _, id := range sectionIDs {
		wanted[id] = true
	}
	var out []models.Announcement
	for _, a := range m.items {
		if a.ClassSectionID != nil && wanted[*a.ClassSectionID] {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAnnouncementRepo) Delete(ctx context.Context, id int64) error {
	for i, a := range m.items {
		if a.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrNotFound, "delete announcement: not found")
}

// memoryCache stores JSON like the redis repository does.
type memoryCache map[string][]byte

func (c memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := c[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c[key] = raw
	return nil
}

func (c memoryCache) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c, k)
	}
	return nil
}

var announcementClock = time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

func newTestAnnouncementService() (*AnnouncementService, *mockAnnouncementRepo, memoryCache) {
	repo := &mockAnnouncementRepo{}
	store := memoryCache{}
	cache := NewCacheService(store, nil, time.Minute, zap.NewNop(), true)
	svc := NewAnnouncementService(repo, cache, nil, zap.NewNop())
	svc.now = func() time.Time { return announcementClock }
	return svc, repo, store
}

func int64Ptr(v int64) *int64 { return &v }

func TestAnnouncementServicePostValidates(t *testing.T) {
	svc, _, _ := newTestAnnouncementService()
	ctx := context.Background()

	_, err := svc.Post(ctx, 1, PostAnnouncementRequest{Title: "Exam", Content: "Room 4", TargetAudience: "Parents"})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	past := announcementClock.Add(-time.Hour)
	_, err = svc.Post(ctx, 1, PostAnnouncementRequest{Title: "Exam", Content: "Room 4", TargetAudience: models.AudienceAll, ExpiryDate: &past})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	posted, err := svc.Post(ctx, 1, PostAnnouncementRequest{Title: "Exam", Content: "Room 4", TargetAudience: models.AudienceAll})
	require.NoError(t, err)
	assert.Equal(t, announcementClock, posted.PostedDate)
	assert.Equal(t, int64(1), posted.PostedByID)
}

func TestAnnouncementServiceListVisible(t *testing.T) {
	svc, repo, _ := newTestAnnouncementService()
	ctx := context.Background()

	post := func(title string, audience models.AnnouncementAudience, section *int64, important bool, postedAt time.Time, expiry *time.Time) {
		svc.now = func() time.Time { return postedAt }
		_, err := svc.Post(ctx, 1, PostAnnouncementRequest{
			Title: title, Content: title, TargetAudience: audience,
			ClassSectionID: section, IsImportant: important, ExpiryDate: expiry,
		})
		require.NoError(t, err)
	}
	expiry := announcementClock.Add(2 * time.Hour)
	post("holiday", models.AudienceAll, nil, false, announcementClock.Add(-3*time.Hour), nil)
	post("staff meeting", models.AudienceTeachers, nil, false, announcementClock.Add(-2*time.Hour), nil)
	post("quiz moved", models.AudienceStudents, int64Ptr(5), true, announcementClock.Add(-4*time.Hour), nil)
	post("other section", models.AudienceAll, int64Ptr(6), false, announcementClock.Add(-time.Hour), nil)
	post("fire drill", models.AudienceAll, nil, false, announcementClock.Add(-time.Hour), &expiry)

	titles := func(items []models.Announcement) []string {
		out := make([]string, 0, len(items))
		for _, a := range items {
			out = append(out, a.Title)
		}
		return out
	}

	students, err := svc.ListVisible(ctx, models.AudienceStudents, []int64{5}, announcementClock)
	require.NoError(t, err)
	assert.Equal(t, []string{"quiz moved", "fire drill", "holiday"}, titles(students))

	teachers, err := svc.ListVisible(ctx, models.AudienceTeachers, nil, announcementClock)
	require.NoError(t, err)
	assert.Equal(t, []string{"fire drill", "staff meeting", "holiday"}, titles(teachers))

	later, err := svc.ListVisible(ctx, models.AudienceTeachers, nil, expiry.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, []string{"staff meeting", "holiday"}, titles(later))

	assert.Equal(t, 1, repo.boardQueries, "institution board should be served from cache after the first read")

	_, err = svc.ListVisible(ctx, "Parents", nil, announcementClock)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestAnnouncementServiceInvalidatesBoard(t *testing.T) {
	svc, repo, store := newTestAnnouncementService()
	ctx := context.Background()

	first, err := svc.Post(ctx, 1, PostAnnouncementRequest{Title: "a", Content: "a", TargetAudience: models.AudienceAll})
	require.NoError(t, err)
	_, err = svc.ListVisible(ctx, models.AudienceAll, nil, announcementClock)
	require.NoError(t, err)
	assert.Contains(t, store, institutionBoardKey)

	_, err = svc.Post(ctx, 1, PostAnnouncementRequest{Title: "s", Content: "s", TargetAudience: models.AudienceAll, ClassSectionID: int64Ptr(5)})
	require.NoError(t, err)
	assert.Contains(t, store, institutionBoardKey, "section posts leave the board cached")

	_, err = svc.Post(ctx, 1, PostAnnouncementRequest{Title: "b", Content: "b", TargetAudience: models.AudienceAll})
	require.NoError(t, err)
	assert.NotContains(t, store, institutionBoardKey)

	board, err := svc.ListVisible(ctx, models.AudienceAll, nil, announcementClock)
	require.NoError(t, err)
	assert.Len(t, board, 2)
	assert.Equal(t, 2, repo.boardQueries)

	require.NoError(t, svc.Delete(ctx, first.ID))
	assert.NotContains(t, store, institutionBoardKey)
	assert.True(t, appErrors.Is(svc.Delete(ctx, first.ID), appErrors.ErrNotFound))
}
