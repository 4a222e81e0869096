package formcatalog

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"safety-forms-api/internal/formengine"
	"safety-forms-api/internal/logs"
	"safety-forms-api/internal/middlewares"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type FormCatalogController struct {
	FormService FormCatalogServiceAPI
	LogService  LogServicePort
}

func (fc *FormCatalogController) audit(c *gin.Context, level, action, message, formID string, uid uint) {
	entry := logs.SystemLog{
		Level:   level,
		Service: "formcatalog",
		Action:  action,
		Message: message,
		Roles:   middlewares.CurrentRoles(c),
	}
	if uid > 0 {
		entry.UserID = &uid
	}
	if formID != "" {
		entry.FormID = &formID
	}
	if err := fc.LogService.Log(entry, nil); err != nil {
		fmt.Printf("Failed to insert log: %v\n", err)
	}
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "form not found"})
	case errors.Is(err, ErrDuplicateCode):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNameRequired),
		errors.Is(err, formengine.ErrNoValidSection),
		errors.Is(err, formengine.ErrEmptyFieldLabel):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// GET /api/forms?category=...&is_active=true&page=1&limit=20
func (fc *FormCatalogController) ListForms(c *gin.Context) {
	var filter FormFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	filter.Normalize()

	forms, total, err := fc.FormService.FetchMany(filter)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  forms,
		"total": total,
		"page":  filter.Page,
		"limit": filter.Limit,
	})
}

func (fc *FormCatalogController) GetForm(c *gin.Context) {
	form, err := fc.FormService.FetchOne(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

func (fc *FormCatalogController) CreateForm(c *gin.Context) {
	uid, ok := middlewares.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user ID"})
		return
	}

	var input formengine.Form
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	form, err := fc.FormService.Create(&input, uid)
	if err != nil {
		writeError(c, err)
		return
	}

	fc.audit(c, "INFO", "CREATE_FORM", fmt.Sprintf("Form created : %s", form.Name), form.ID, uid)
	c.JSON(http.StatusCreated, form)
}

func (fc *FormCatalogController) UpdateForm(c *gin.Context) {
	uid, ok := middlewares.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user ID"})
		return
	}

	var patch FormPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	form, err := fc.FormService.Update(c.Param("id"), patch)
	if err != nil {
		writeError(c, err)
		return
	}

	fc.audit(c, "INFO", "UPDATE_FORM", fmt.Sprintf("Form updated : %s", form.Name), form.ID, uid)
	c.JSON(http.StatusOK, form)
}

func (fc *FormCatalogController) DuplicateForm(c *gin.Context) {
	uid, ok := middlewares.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user ID"})
		return
	}

	var req DuplicateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	form, err := fc.FormService.Duplicate(c.Param("id"), req.Name, uid)
	if err != nil {
		writeError(c, err)
		return
	}

	fc.audit(c, "INFO", "DUPLICATE_FORM", fmt.Sprintf("Form %s duplicated as %s", c.Param("id"), form.Name), form.ID, uid)
	c.JSON(http.StatusCreated, form)
}

func (fc *FormCatalogController) DeleteForm(c *gin.Context) {
	uid, ok := middlewares.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user ID"})
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	if err := fc.FormService.Delete(id); err != nil {
		writeError(c, err)
		return
	}

	fc.audit(c, "WARN", "DELETE_FORM", fmt.Sprintf("Form deactivated : %s", id), id, uid)
	c.JSON(http.StatusOK, gin.H{"message": "Form deactivated successfully"})
}

// POST /api/forms/:id/validate {"responses": {...}}
func (fc *FormCatalogController) ValidateResponses(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	errs, err := fc.FormService.ValidateResponses(c.Param("id"), req.Responses)
	if err != nil {
		writeError(c, err)
		return
	}
	if errs == nil {
		errs = formengine.Errors{}
	}

	c.JSON(http.StatusOK, gin.H{"valid": errs.Valid(), "errors": errs})
}

// POST /api/authoring/check checks a draft schema without storing it.
func (fc *FormCatalogController) CheckDraft(c *gin.Context) {
	var input formengine.Form
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	problems := []string{}
	if strings.TrimSpace(input.Name) == "" {
		problems = append(problems, ErrNameRequired.Error())
	}
	err := formengine.CheckForm(&input)
	for _, sentinel := range []error{formengine.ErrNoValidSection, formengine.ErrEmptyFieldLabel} {
		if errors.Is(err, sentinel) {
			problems = append(problems, sentinel.Error())
		}
	}

	c.JSON(http.StatusOK, gin.H{"valid": len(problems) == 0, "errors": problems})
}

// POST /api/authoring/reminders {"validityDays":365,"firstPercent":10,"secondPercent":5}
func (fc *FormCatalogController) CheckReminders(c *gin.Context) {
	var req ReminderCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan := formengine.ReminderPlan{
		ValidityDays:  req.ValidityDays,
		FirstPercent:  req.FirstPercent,
		SecondPercent: req.SecondPercent,
	}
	first, second := plan.Days()

	resp := gin.H{"valid": true, "firstDay": first, "secondDay": second}
	if err := plan.Check(); err != nil {
		resp["valid"] = false
		resp["error"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}
