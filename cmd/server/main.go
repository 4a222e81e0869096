package main

import (
	"log"

	"safety-forms-api/config"
	"safety-forms-api/internal/formcatalog"
	"safety-forms-api/internal/formsubmission"
	"safety-forms-api/internal/logs"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg := config.LoadConfig()

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&formcatalog.FormTemplate{},
		&formsubmission.FormSubmission{},
		&formsubmission.FormSubmissionUpload{},
		&logs.SystemLog{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Origins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
	}))

	logService := &logs.LogService{DB: db}
	logs.RegisterRoutes(r, logService)

	formService := &formcatalog.FormCatalogService{DB: db}
	formcatalog.RegisterRoutes(r, formService, logService)

	if cfg.UploadBucket == "" {
		log.Printf("UPLOAD_BUCKET is not set; submissions with signatures will be rejected")
	}
	submissionService := &formsubmission.FormSubmissionService{
		DB:     db,
		Forms:  formService,
		Bucket: cfg.UploadBucket,
	}
	formsubmission.RegisterRoutes(r, submissionService, logService)

	// --- Cloud Run expects plain HTTP, on $PORT, bind to 0.0.0.0 ---
	port := cfg.Port
	if port == "" {
		port = "8080"
	}
	log.Printf("Starting server on 0.0.0.0:%s ...", port)
	log.Fatal(r.Run("0.0.0.0:" + port))
}
