package formcatalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"safety-forms-api/internal/formengine"
	"safety-forms-api/internal/logs"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:formcatalog_%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&FormTemplate{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func breakDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB: %v", err)
	}
	_ = sqlDB.Close()
}

func ptrFloat(f float64) *float64 { return &f }

func sampleForm(name, code string) *formengine.Form {
	return &formengine.Form{
		Name:     name,
		Code:     code,
		Category: "trabajo_en_altura",
		Tags:     []string{"epp"},
		Metadata: formengine.FormMetadata{
			ValidityDays:     365,
			RequiresApproval: true,
			ApproverRoles:    []string{"supervisor"},
		},
		Sections: []*formengine.Section{{
			ID: "s1", Title: "Datos", Order: 1,
			Fields: []*formengine.Field{
				{ID: "f1", Label: "Altura", Name: "altura", Type: formengine.FieldNumber, Required: true, Order: 1,
					Validation: &formengine.ValidationRule{Max: ptrFloat(10)}},
				{ID: "f2", Label: "Tipo", Name: "tipo", Type: formengine.FieldSelect, Order: 2,
					Options: []formengine.Option{formengine.BareOption("A"), formengine.LabeledOption("b", "B")}},
			},
		}},
	}
}

type fakeLogService struct {
	Calls []logs.SystemLog
	Err   error
}

func (f *fakeLogService) Log(l logs.SystemLog, payload interface{}) error {
	f.Calls = append(f.Calls, l)
	return f.Err
}

// uid header stands in for AuthMiddleware.
func mockAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-UserID") != "" {
			var id float64
			_, _ = fmt.Sscanf(c.GetHeader("X-UserID"), "%g", &id)
			c.Set("userID", id)
		}
		c.Set("roles", []string{"supervisor"})
		c.Next()
	}
}

func setupRouter(svc FormCatalogServiceAPI, logSvc LogServicePort) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	fc := &FormCatalogController{FormService: svc, LogService: logSvc}

	g := r.Group("/api/forms")
	g.Use(mockAuthMiddleware())
	{
		g.GET("", fc.ListForms)
		g.POST("", fc.CreateForm)
		g.GET("/:id", fc.GetForm)
		g.PUT("/:id", fc.UpdateForm)
		g.DELETE("/:id", fc.DeleteForm)
		g.POST("/:id/duplicate", fc.DuplicateForm)
		g.POST("/:id/validate", fc.ValidateResponses)
	}
	a := r.Group("/api/authoring")
	a.Use(mockAuthMiddleware())
	{
		a.POST("/check", fc.CheckDraft)
		a.POST("/reminders", fc.CheckReminders)
	}
	return r
}

func doJSON(r http.Handler, method, path string, body any, uid string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if uid != "" {
		req.Header.Set("X-UserID", uid)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v body=%s", err, w.Body.String())
	}
	return out
}
