package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-records/internal/middleware"
	"github.com/noah-isme/sma-records/internal/models"
	"github.com/noah-isme/sma-records/internal/service"
)

type announcementServiceMock struct {
	audience   models.AnnouncementAudience
	sectionIDs []int64
	postedBy   int64
}

func (m *announcementServiceMock) Post(ctx context.Context, postedBy int64, req service.PostAnnouncementRequest) (*models.Announcement, error) {
	m.postedBy = postedBy
	return &models.Announcement{ID: 1, PostedByID: postedBy, Title: req.Title}, nil
}

func (m *announcementServiceMock) Delete(ctx context.Context, id int64) error { return nil }

func (m *announcementServiceMock) ListVisible(ctx context.Context, audience models.AnnouncementAudience, sectionIDs []int64, now time.Time) ([]models.Announcement, error) {
	m.audience = audience
	m.sectionIDs = sectionIDs
	return []models.Announcement{}, nil
}

type sectionListerStub struct{ lastFilter models.ClassSectionFilter }

func (s *sectionListerStub) List(ctx context.Context, filter models.ClassSectionFilter) ([]models.ClassSectionDetail, error) {
	s.lastFilter = filter
	return []models.ClassSectionDetail{{ClassSection: models.ClassSection{ID: 8}}, {ClassSection: models.ClassSection{ID: 9}}}, nil
}

func TestAnnouncementHandlerBoardResolvesSections(t *testing.T) {
	announcements := &announcementServiceMock{}
	enrollments := &enrollmentServiceMock{byStudent: []models.EnrollmentDetail{
		{Enrollment: models.Enrollment{ClassSectionID: 5}},
		{Enrollment: models.Enrollment{ClassSectionID: 6}},
	}}
	sections := &sectionListerStub{}
	h := NewAnnouncementHandler(announcements, enrollments, sections)

	c, w := newJSONContext(http.MethodGet, "/announcements", nil)
	c.Set(middleware.ContextAccountKey, studentAccount)
	h.Board(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.AudienceStudents, announcements.audience)
	assert.Equal(t, []int64{5, 6}, announcements.sectionIDs)

	c, w = newJSONContext(http.MethodGet, "/announcements", nil)
	c.Set(middleware.ContextAccountKey, teacherAccount)
	h.Board(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.AudienceTeachers, announcements.audience)
	assert.Equal(t, int64(2), sections.lastFilter.TeacherID)
	assert.Equal(t, []int64{8, 9}, announcements.sectionIDs)
}

func TestAnnouncementHandlerPost(t *testing.T) {
	announcements := &announcementServiceMock{}
	h := NewAnnouncementHandler(announcements, &enrollmentServiceMock{}, &sectionListerStub{})
	payload := service.PostAnnouncementRequest{Title: "Exam", Content: "Room 4", TargetAudience: models.AudienceAll}

	c, w := newJSONContext(http.MethodPost, "/announcements", payload)
	c.Set(middleware.ContextAccountKey, teacherAccount)
	h.Post(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int64(2), announcements.postedBy)

	offline := models.NewTeacherAccount(models.User{ID: -2}, models.TeacherProfile{})
	offline.Offline = true
	c, w = newJSONContext(http.MethodPost, "/announcements", payload)
	c.Set(middleware.ContextAccountKey, offline)
	h.Post(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
