package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-records/internal/models"
	"github.com/noah-isme/sma-records/internal/service"
	appErrors "github.com/noah-isme/sma-records/pkg/errors"
	"github.com/noah-isme/sma-records/pkg/response"
)

type announcementService interface {
	Post(ctx context.Context, postedBy int64, req service.PostAnnouncementRequest) (*models.Announcement, error)
	Delete(ctx context.Context, id int64) error
	ListVisible(ctx context.Context, audience models.AnnouncementAudience, sectionIDs []int64, now time.Time) ([]models.Announcement, error)
}

type studentEnrollments interface {
	ListByStudent(ctx context.Context, studentID int64) ([]models.EnrollmentDetail, error)
}

type sectionLister interface {
	List(ctx context.Context, filter models.ClassSectionFilter) ([]models.ClassSectionDetail, error)
}

// AnnouncementHandler serves the announcement board.
type AnnouncementHandler struct {
	announcements announcementService
	enrollments   studentEnrollments
	sections      sectionLister
	now           func() time.Time
}

// NewAnnouncementHandler constructs an AnnouncementHandler.
func NewAnnouncementHandler(announcements announcementService, enrollments studentEnrollments, sections sectionLister) *AnnouncementHandler {
	return &AnnouncementHandler{announcements: announcements, enrollments: enrollments, sections: sections, now: time.Now}
}

// Board godoc
// @Summary Announcements visible to the current account
// @Description Institution-wide posts plus those of the caller's sections, unexpired, important first.
// @Tags Announcements
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /announcements [get]
func (h *AnnouncementHandler) Board(c *gin.Context) {
	account := accountFromContext(c)
	if account == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	sectionIDs, err := h.sectionsOf(c.Request.Context(), account)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.announcements.ListVisible(c.Request.Context(), models.AudienceForRole(account.Role), sectionIDs, h.now())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// Post godoc
// @Summary Post an announcement
// @Description Omit class_section_id to post institution-wide.
// @Tags Announcements
// @Accept json
// @Param payload body service.PostAnnouncementRequest true "Announcement"
// @Success 201 {object} response.Envelope
// @Router /announcements [post]
func (h *AnnouncementHandler) Post(c *gin.Context) {
	account := accountFromContext(c)
	if account == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if account.Offline {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "offline accounts cannot post"))
		return
	}
	var req service.PostAnnouncementRequest
	if !bindJSON(c, &req, "invalid announcement payload") {
		return
	}
	announcement, err := h.announcements.Post(c.Request.Context(), account.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, announcement)
}

// Delete godoc
// @Summary Delete an announcement
// @Tags Announcements
// @Param id path int true "Announcement ID"
// @Success 204
// @Router /announcements/{id} [delete]
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.announcements.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *AnnouncementHandler) sectionsOf(ctx context.Context, account *models.Account) ([]int64, error) {
	var ids []int64
	switch account.Role {
	case models.RoleStudent:
		items, err := h.enrollments.ListByStudent(ctx, account.ID)
		if err != nil {
			return nil, err
		}
		for _, e := range items {
			ids = append(ids, e.ClassSectionID)
		}
	case models.RoleTeacher:
		items, err := h.sections.List(ctx, models.ClassSectionFilter{TeacherID: account.ID})
		if err != nil {
			return nil, err
		}
		for _, s := range items {
			ids = append(ids, s.ID)
		}
	default:
		items, err := h.sections.List(ctx, models.ClassSectionFilter{})
		if err != nil {
			return nil, err
		}
		for _, s := range items {
			ids = append(ids, s.ID)
		}
	}
	return ids, nil
}
