package formsubmission

import (
	"safety-forms-api/internal/logs"
	"safety-forms-api/internal/middlewares"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, formSubmissionService *FormSubmissionService, logService *logs.LogService) {
	formSubmissionController := &FormSubmissionController{
		FormSubmissionService: formSubmissionService,
		LogService:            logService,
	}

	formSubmissionGroup := r.Group("/api/forms/:id/submissions")
	formSubmissionGroup.Use(middlewares.AuthMiddleware())
	{
		formSubmissionGroup.GET("", formSubmissionController.GetFormSubmission)
		formSubmissionGroup.POST("", formSubmissionController.SubmitForm)
		formSubmissionGroup.GET("/export", formSubmissionController.ExportSubmissions)
	}

	uploadGroup := r.Group("/api/submissions/uploads")
	uploadGroup.Use(middlewares.AuthMiddleware())
	{
		uploadGroup.GET("/:id", formSubmissionController.GetUpload)
	}
}
