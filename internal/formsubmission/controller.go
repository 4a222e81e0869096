package formsubmission

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"safety-forms-api/internal/logs"
	"safety-forms-api/internal/middlewares"
	"safety-forms-api/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type FormSubmissionController struct {
	FormSubmissionService FormSubmissionServiceAPI
	LogService            LogServicePort
}

func writeError(c *gin.Context, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "errors": verr.Errors})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "form not found"})
	case errors.Is(err, ErrSubjectRequired),
		errors.Is(err, ErrFormInactive),
		errors.Is(err, util.ErrInvalidDataURL):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// GET /api/forms/:id/submissions?subject_type=...&subject_id=...
func (cc *FormSubmissionController) GetFormSubmission(c *gin.Context) {
	subjectType := strings.TrimSpace(c.Query("subject_type"))
	subjectID := strings.TrimSpace(c.Query("subject_id"))
	if subjectType == "" || subjectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrSubjectRequired.Error()})
		return
	}

	res, err := cc.FormSubmissionService.Get(c.Param("id"), subjectType, subjectID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// POST /api/forms/:id/submissions
func (cc *FormSubmissionController) SubmitForm(c *gin.Context) {
	uid, ok := middlewares.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user ID"})
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.FormID = c.Param("id")

	res, err := cc.FormSubmissionService.Submit(&req, uid)
	if err != nil {
		writeError(c, err)
		return
	}

	formID := res.FormID
	entry := logs.SystemLog{
		Level:   "INFO",
		Service: "formsubmission",
		UserID:  &uid,
		Action:  "SUBMIT_FORM",
		Message: fmt.Sprintf("Form submitted for %s %s", res.SubjectType, res.SubjectID),
		FormID:  &formID,
		Roles:   middlewares.CurrentRoles(c),
	}
	if err := cc.LogService.Log(entry, map[string]interface{}{"uploads": len(res.Uploads)}); err != nil {
		fmt.Printf("Failed to insert log: %v\n", err)
	}

	c.JSON(http.StatusOK, res)
}

// GET /api/forms/:id/submissions/export
func (cc *FormSubmissionController) ExportSubmissions(c *gin.Context) {
	filename, data, err := cc.FormSubmissionService.ExportXLSX(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// GET /api/submissions/uploads/:id
func (cc *FormSubmissionController) GetUpload(c *gin.Context) {
	idParam := strings.TrimSpace(c.Param("id"))
	id, err := strconv.Atoi(idParam)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	data, contentType, filename, err := cc.FormSubmissionService.GetUploadBytes(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "upload not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	disposition := "inline"
	if !strings.HasPrefix(contentType, "image/") && contentType != "application/pdf" {
		disposition = "attachment"
	}

	c.Header("Content-Disposition", fmt.Sprintf(`%s; filename="%s"`, disposition, filename))
	c.Data(http.StatusOK, contentType, data)
}
