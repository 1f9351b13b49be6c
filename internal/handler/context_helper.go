package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-records/internal/middleware"
	"github.com/noah-isme/sma-records/internal/models"
	appErrors "github.com/noah-isme/sma-records/pkg/errors"
	"github.com/noah-isme/sma-records/pkg/export"
	"github.com/noah-isme/sma-records/pkg/response"
)

func accountFromContext(c *gin.Context) *models.Account {
	return middleware.CurrentAccount(c)
}

// pathID parses a positive int64 path parameter and writes a 400 when it is not one.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid "+name))
		return 0, false
	}
	return id, true
}

// queryID parses an optional int64 query parameter; absent yields 0.
func queryID(c *gin.Context, name string) (int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid "+name))
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dest interface{}, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message))
		return false
	}
	return true
}

func pageQuery(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return page, size
}

// ownsStudentRecord admits staff, and students only for their own id. Offline students have no
// stored record.
func ownsStudentRecord(c *gin.Context, studentID int64) bool {
	account := accountFromContext(c)
	if account == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return false
	}
	if account.Offline && account.Role == models.RoleStudent {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "offline sessions have no student records"))
		return false
	}
	if account.Role == models.RoleStudent && account.ID != studentID {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "students may only access their own records"))
		return false
	}
	return true
}

func sendDocument(c *gin.Context, doc *export.Document) {
	c.Header("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, doc.ContentType, doc.Body)
}

func exportFormat(c *gin.Context) (export.Format, bool) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, appErrors.WrapAs(appErrors.ErrValidation, err, "format must be csv or pdf"))
		return "", false
	}
	return format, true
}
