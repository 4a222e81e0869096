package formsubmission

import (
	"safety-forms-api/internal/formengine"
	"safety-forms-api/internal/logs"
)

// FormFetcher loads the schema a submission is checked against.
type FormFetcher interface {
	FetchOne(id string) (*formengine.Form, error)
}

type FormSubmissionServiceAPI interface {
	Submit(req *SubmitRequest, userID uint) (*SubmissionResponse, error)
	Get(formID, subjectType, subjectID string) (*SubmissionResponse, error)
	ExportXLSX(formID string) (string, []byte, error)
	GetUploadBytes(id uint) ([]byte, string, string, error)
}

type LogServicePort interface {
	Log(log logs.SystemLog, payload interface{}) error
}
