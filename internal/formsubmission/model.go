package formsubmission

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"safety-forms-api/internal/formengine"

	"github.com/iancoleman/orderedmap"
	"gorm.io/datatypes"
)

// FormSubmission holds the latest answers one subject gave to one form.
type FormSubmission struct {
	ID          int64          `json:"id" gorm:"primaryKey;autoIncrement"`
	FormID      string         `json:"form_id" gorm:"size:36;not null;uniqueIndex:uq_form_submissions_form_subject"`
	SubjectType string         `json:"subject_type" gorm:"type:varchar(50);not null;uniqueIndex:uq_form_submissions_form_subject"`
	SubjectID   string         `json:"subject_id" gorm:"type:varchar(100);not null;uniqueIndex:uq_form_submissions_form_subject"`
	Answers     datatypes.JSON `json:"answers" gorm:"type:jsonb;not null"`
	SubmittedBy *uint          `json:"submitted_by,omitempty"`
	CreatedAt   time.Time      `json:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt   time.Time      `json:"updated_at" gorm:"not null;autoUpdateTime"`
}

func (FormSubmission) TableName() string { return "form_submissions" }

// FormSubmissionUpload records a signature image moved to object storage.
type FormSubmissionUpload struct {
	ID            int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	SubmissionID  int64     `json:"submission_id" gorm:"not null;index"`
	FieldName     string    `json:"field_name" gorm:"type:varchar(200);not null"`
	FileName      string    `json:"file_name" gorm:"type:text;not null"`
	MimeType      string    `json:"mime_type" gorm:"type:text;not null;default:''"`
	FileSizeBytes int64     `json:"file_size_bytes" gorm:"not null;default:0"`
	FileURL       string    `json:"file_url" gorm:"type:text"`
	CreatedAt     time.Time `json:"created_at" gorm:"not null;autoCreateTime"`
}

func (FormSubmissionUpload) TableName() string { return "form_submission_uploads" }

type SubmitRequest struct {
	FormID      string             `json:"-"`
	SubjectType string             `json:"subject_type"`
	SubjectID   string             `json:"subject_id"`
	Answers     []formengine.Tuple `json:"answers"`
}

type UploadResponse struct {
	ID            int64  `json:"id"`
	FieldName     string `json:"field_name"`
	FileName      string `json:"file_name"`
	MimeType      string `json:"mime_type"`
	FileSizeBytes int64  `json:"file_size_bytes"`
	FileURL       string `json:"file_url"`
}

type SubmissionResponse struct {
	Found       bool                   `json:"found"`
	ID          int64                  `json:"id,omitempty"`
	FormID      string                 `json:"form_id"`
	SubjectType string                 `json:"subject_type"`
	SubjectID   string                 `json:"subject_id"`
	SubmittedBy *uint                  `json:"submitted_by,omitempty"`
	Answers     []formengine.Tuple     `json:"answers"`
	Values      *orderedmap.OrderedMap `json:"values"`
	Uploads     []UploadResponse       `json:"uploads"`
	UpdatedAt   *time.Time             `json:"updated_at,omitempty"`
}

// ValidationError reports the per-field messages that blocked a submission.
type ValidationError struct {
	Errors formengine.Errors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Errors))
	for name := range e.Errors {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}

func valuesOf(tuples []formengine.Tuple) *orderedmap.OrderedMap {
	values := orderedmap.New()
	for _, t := range tuples {
		values.Set(t.FieldName, t.Value)
	}
	return values
}
