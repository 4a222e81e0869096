package formsubmission

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"safety-forms-api/internal/formengine"
	"safety-forms-api/internal/logs"
	"safety-forms-api/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sigPNG = "data:image/png;base64,iVBORw0KGgo="

var dbSeq int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:formsubmission_%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
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

	if err := db.AutoMigrate(&FormSubmission{}, &FormSubmissionUpload{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func ptrFloat(f float64) *float64 { return &f }

func permitForm() *formengine.Form {
	return &formengine.Form{
		ID:       "form-1",
		Name:     "Permiso de altura",
		IsActive: true,
		Sections: []*formengine.Section{{
			ID: "s1", Title: "Datos", Order: 1,
			Fields: []*formengine.Field{
				{ID: "f1", Label: "Altura", Name: "altura", Type: formengine.FieldNumber, Required: true, Order: 1,
					Validation: &formengine.ValidationRule{Max: ptrFloat(10)}},
				{ID: "f2", Label: "EPP", Name: "epp", Type: formengine.FieldMultiselect, Order: 2,
					Options: []formengine.Option{formengine.BareOption("Casco"), formengine.BareOption("Arnés")}},
				{ID: "f3", Label: "Conforme", Name: "conforme", Type: formengine.FieldCheckbox, Order: 3},
			},
		}, {
			ID: "s2", Title: "Firmas", Order: 2,
			Fields: []*formengine.Field{
				{ID: "f4", Label: "Firma", Name: "firma", Type: formengine.FieldSignature, Required: true, Order: 1},
			},
		}},
	}
}

type fakeForms struct {
	forms map[string]*formengine.Form
	err   error
}

func (f *fakeForms) FetchOne(id string) (*formengine.Form, error) {
	if f.err != nil {
		return nil, f.err
	}
	form, ok := f.forms[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return form, nil
}

// fakeObjects stands in for the bucket behind the upload and read hooks.
type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	failOn  string
}

func withFakeObjects(t *testing.T) *fakeObjects {
	t.Helper()
	store := &fakeObjects{objects: map[string][]byte{}, types: map[string]string{}}

	prevUpload, prevRead := uploadBase64ToGCSHook, readGCSObjectHook
	uploadBase64ToGCSHook = func(ctx context.Context, dataURL, bucket, object string) (string, int64, error) {
		data, mime, err := util.DecodeDataURL(dataURL)
		if err != nil {
			return "", 0, err
		}
		url := fmt.Sprintf("gs://%s/%s", bucket, object)
		store.mu.Lock()
		defer store.mu.Unlock()
		if store.failOn != "" && bytes.Contains([]byte(object), []byte(store.failOn)) {
			return "", 0, errors.New("bucket unavailable")
		}
		store.objects[url] = data
		store.types[url] = mime
		return url, int64(len(data)), nil
	}
	readGCSObjectHook = func(ctx context.Context, gsURL string) ([]byte, string, error) {
		store.mu.Lock()
		defer store.mu.Unlock()
		data, ok := store.objects[gsURL]
		if !ok {
			return nil, "", errors.New("object not found")
		}
		return data, store.types[gsURL], nil
	}
	t.Cleanup(func() { uploadBase64ToGCSHook, readGCSObjectHook = prevUpload, prevRead })

	return store
}

func (f *fakeObjects) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

func newTestService(t *testing.T) (*FormSubmissionService, *fakeObjects) {
	t.Helper()
	store := withFakeObjects(t)
	svc := &FormSubmissionService{
		DB:     newTestDB(t),
		Forms:  &fakeForms{forms: map[string]*formengine.Form{"form-1": permitForm()}},
		Bucket: "safety-uploads",
	}
	return svc, store
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
		c.Set("roles", []string{"operario"})
		c.Next()
	}
}

func setupRouter(svc FormSubmissionServiceAPI, logSvc LogServicePort) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cc := &FormSubmissionController{FormSubmissionService: svc, LogService: logSvc}

	g := r.Group("/api/forms/:id/submissions")
	g.Use(mockAuthMiddleware())
	{
		g.GET("", cc.GetFormSubmission)
		g.POST("", cc.SubmitForm)
		g.GET("/export", cc.ExportSubmissions)
	}
	u := r.Group("/api/submissions/uploads")
	u.Use(mockAuthMiddleware())
	{
		u.GET("/:id", cc.GetUpload)
	}
	return r
}

func doJSON(r http.Handler, method, path, body, uid string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
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
