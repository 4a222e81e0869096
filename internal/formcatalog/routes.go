package formcatalog

import (
	"safety-forms-api/internal/logs"
	"safety-forms-api/internal/middlewares"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, formService *FormCatalogService, logService *logs.LogService) {
	fc := &FormCatalogController{FormService: formService, LogService: logService}

	formGroup := r.Group("/api/forms")
	formGroup.Use(middlewares.AuthMiddleware())
	{
		formGroup.GET("", fc.ListForms)
		formGroup.POST("", fc.CreateForm)
		formGroup.GET("/:id", fc.GetForm)
		formGroup.PUT("/:id", fc.UpdateForm)
		formGroup.DELETE("/:id", fc.DeleteForm)
		formGroup.POST("/:id/duplicate", fc.DuplicateForm)
		formGroup.POST("/:id/validate", fc.ValidateResponses)
	}

	authoringGroup := r.Group("/api/authoring")
	authoringGroup.Use(middlewares.AuthMiddleware())
	{
		authoringGroup.POST("/check", fc.CheckDraft)
		authoringGroup.POST("/reminders", fc.CheckReminders)
	}
}
