package formsubmission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"safety-forms-api/internal/formengine"
	"safety-forms-api/internal/util"

	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrSubjectRequired = errors.New("subject_type and subject_id are required")
	ErrFormInactive    = errors.New("form is not active")
	ErrNoUploadBucket  = errors.New("upload bucket is not configured")
)

type FormSubmissionService struct {
	DB     *gorm.DB
	Forms  FormFetcher
	Bucket string
}

var uploadBase64ToGCSHook = util.UploadBase64ToGCS
var readGCSObjectHook = util.ReadGCSObject

type signatureUpload struct {
	idx      int
	field    string
	dataURL  string
	mime     string
	url      string
	size     int64
	fileName string
}

// uploadSignatures moves every data URL answered on a signature field to
// object storage and swaps the answer for the stored gs:// URL.
func (s *FormSubmissionService) uploadSignatures(form *formengine.Form, req *SubmitRequest, tuples []formengine.Tuple) ([]signatureUpload, error) {
	var jobs []signatureUpload
	for i, t := range tuples {
		fld := form.FieldByName(t.FieldName)
		if fld == nil || fld.Type != formengine.FieldSignature {
			continue
		}
		v, ok := t.Value.(string)
		if !ok || !util.IsDataURL(v) {
			continue
		}
		_, mime, err := util.DecodeDataURL(v)
		if err != nil {
			return nil, fmt.Errorf("signature %q: %w", t.FieldName, err)
		}
		jobs = append(jobs, signatureUpload{idx: i, field: t.FieldName, dataURL: v, mime: mime})
	}

	if len(jobs) == 0 {
		return nil, nil
	}
	if strings.TrimSpace(s.Bucket) == "" {
		return nil, ErrNoUploadBucket
	}

	prefix := util.SignaturePrefix(req.FormID, req.SubjectType, req.SubjectID)
	timestamp := time.Now().UTC().Format("20060102150405")

	type result struct {
		job signatureUpload
		err error
	}

	sem := make(chan struct{}, 4) // 4 parallel uploads
	outCh := make(chan result, len(jobs))
	var wg sync.WaitGroup

	for _, j := range jobs {
		wg.Add(1)

		go func(j signatureUpload) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			j.fileName = fmt.Sprintf("%s_%s%s", util.SanitizePart(j.field), timestamp, util.ExtFromFilenameOrMime("", j.mime))
			url, size, err := uploadBase64ToGCSHook(
				context.Background(),
				j.dataURL,
				s.Bucket,
				prefix+"/"+j.fileName,
			)
			if err != nil {
				outCh <- result{err: fmt.Errorf("failed to upload signature %q: %w", j.field, err)}
				return
			}

			j.url = url
			j.size = size
			outCh <- result{job: j}
		}(j)
	}

	wg.Wait()
	close(outCh)

	uploaded := make([]signatureUpload, 0, len(jobs))
	for r := range outCh {
		if r.err != nil {
			return nil, r.err
		}
		tuples[r.job.idx].Value = r.job.url
		uploaded = append(uploaded, r.job)
	}

	return uploaded, nil
}

// Submit validates the answers against the stored form and saves them as the
// subject's current submission.
func (s *FormSubmissionService) Submit(req *SubmitRequest, userID uint) (*SubmissionResponse, error) {
	if req == nil {
		return nil, errors.New("request is required")
	}
	req.FormID = strings.TrimSpace(req.FormID)
	req.SubjectType = util.ClampText(req.SubjectType, 50)
	req.SubjectID = util.ClampText(req.SubjectID, 100)
	if req.SubjectType == "" || req.SubjectID == "" {
		return nil, ErrSubjectRequired
	}

	form, err := s.Forms.FetchOne(req.FormID)
	if err != nil {
		return nil, err
	}
	if !form.IsActive {
		return nil, ErrFormInactive
	}

	seed := make(map[string]any, len(req.Answers))
	for _, t := range req.Answers {
		seed[t.FieldName] = t.Value
	}

	var tuples []formengine.Tuple
	session := formengine.NewSession(form, seed, formengine.OnSubmit(func(ts []formengine.Tuple) {
		tuples = ts
	}))
	if !session.Submit() {
		return nil, &ValidationError{Errors: session.Errors()}
	}

	// Upload first (outside DB transaction)
	uploads, err := s.uploadSignatures(form, req, tuples)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(tuples)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal answers: %w", err)
	}

	var submittedBy *uint
	if userID > 0 {
		submittedBy = &userID
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var sub FormSubmission
		findErr := tx.
			Where("form_id = ? AND subject_type = ? AND subject_id = ?", req.FormID, req.SubjectType, req.SubjectID).
			First(&sub).Error

		if findErr != nil && !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}

		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			sub = FormSubmission{
				FormID:      req.FormID,
				SubjectType: req.SubjectType,
				SubjectID:   req.SubjectID,
				Answers:     datatypes.JSON(raw),
				SubmittedBy: submittedBy,
			}
			if err := tx.Create(&sub).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Model(&sub).Updates(map[string]interface{}{
				"answers":      datatypes.JSON(raw),
				"submitted_by": submittedBy,
			}).Error; err != nil {
				return err
			}
		}

		// Earlier uploads stay; the answers point at the newest ones.
		for _, u := range uploads {
			row := FormSubmissionUpload{
				SubmissionID:  sub.ID,
				FieldName:     u.field,
				FileName:      u.fileName,
				MimeType:      u.mime,
				FileSizeBytes: u.size,
				FileURL:       u.url,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(req.FormID, req.SubjectType, req.SubjectID)
}

// Get returns the subject's current submission, or Found=false when there is none.
func (s *FormSubmissionService) Get(formID, subjectType, subjectID string) (*SubmissionResponse, error) {
	formID = strings.TrimSpace(formID)
	subjectType = strings.TrimSpace(subjectType)
	subjectID = strings.TrimSpace(subjectID)
	if subjectType == "" || subjectID == "" {
		return nil, ErrSubjectRequired
	}

	var sub FormSubmission
	err := s.DB.
		Where("form_id = ? AND subject_type = ? AND subject_id = ?", formID, subjectType, subjectID).
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &SubmissionResponse{
				Found:       false,
				FormID:      formID,
				SubjectType: subjectType,
				SubjectID:   subjectID,
				Answers:     []formengine.Tuple{},
				Values:      valuesOf(nil),
				Uploads:     []UploadResponse{},
			}, nil
		}
		return nil, err
	}

	tuples, err := decodeAnswers(sub.Answers)
	if err != nil {
		return nil, err
	}

	var uploads []FormSubmissionUpload
	if err := s.DB.
		Where("submission_id = ?", sub.ID).
		Order("id asc").
		Find(&uploads).Error; err != nil {
		return nil, err
	}

	respUploads := make([]UploadResponse, 0, len(uploads))
	for _, u := range uploads {
		respUploads = append(respUploads, UploadResponse{
			ID:            u.ID,
			FieldName:     u.FieldName,
			FileName:      u.FileName,
			MimeType:      u.MimeType,
			FileSizeBytes: u.FileSizeBytes,
			FileURL:       u.FileURL,
		})
	}

	updatedAt := sub.UpdatedAt
	return &SubmissionResponse{
		Found:       true,
		ID:          sub.ID,
		FormID:      sub.FormID,
		SubjectType: sub.SubjectType,
		SubjectID:   sub.SubjectID,
		SubmittedBy: sub.SubmittedBy,
		Answers:     tuples,
		Values:      valuesOf(tuples),
		Uploads:     respUploads,
		UpdatedAt:   &updatedAt,
	}, nil
}

func decodeAnswers(raw datatypes.JSON) ([]formengine.Tuple, error) {
	tuples := []formengine.Tuple{}
	if len(raw) == 0 {
		return tuples, nil
	}
	if err := json.Unmarshal(raw, &tuples); err != nil {
		return nil, fmt.Errorf("failed to decode answers: %w", err)
	}
	return tuples, nil
}

// ExportXLSX builds a spreadsheet with one row per submission and one column
// per field of the form.
func (s *FormSubmissionService) ExportXLSX(formID string) (string, []byte, error) {
	form, err := s.Forms.FetchOne(strings.TrimSpace(formID))
	if err != nil {
		return "", nil, err
	}

	var subs []FormSubmission
	if err := s.DB.
		Where("form_id = ?", form.ID).
		Order("id asc").
		Find(&subs).Error; err != nil {
		return "", nil, err
	}

	fields := form.AllFields()

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E2E8F0"}},
	})

	sheet := safeSheetName(form.Name)
	if sheet == "" {
		sheet = "Respuestas"
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return "", nil, err
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return "", nil, err
	}

	header := []interface{}{
		excelize.Cell{Value: "subject_type", StyleID: headerStyle},
		excelize.Cell{Value: "subject_id", StyleID: headerStyle},
		excelize.Cell{Value: "submitted_by", StyleID: headerStyle},
		excelize.Cell{Value: "updated_at", StyleID: headerStyle},
	}
	for _, fld := range fields {
		label := fld.Label
		if strings.TrimSpace(label) == "" {
			label = fld.Name
		}
		header = append(header, excelize.Cell{Value: label, StyleID: headerStyle})
	}
	if err := sw.SetRow("A1", header); err != nil {
		return "", nil, err
	}

	for i, sub := range subs {
		tuples, err := decodeAnswers(sub.Answers)
		if err != nil {
			return "", nil, err
		}
		byName := make(map[string]any, len(tuples))
		for _, t := range tuples {
			byName[t.FieldName] = t.Value
		}

		submittedBy := ""
		if sub.SubmittedBy != nil {
			submittedBy = fmt.Sprintf("%d", *sub.SubmittedBy)
		}
		values := []interface{}{
			sub.SubjectType,
			sub.SubjectID,
			submittedBy,
			sub.UpdatedAt.UTC().Format(time.RFC3339),
		}
		for _, fld := range fields {
			values = append(values, cellText(byName[fld.Name]))
		}

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, values); err != nil {
			return "", nil, err
		}
	}

	if err := sw.Flush(); err != nil {
		return "", nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return "", nil, err
	}

	filename := fmt.Sprintf("%s_%s.xlsx", util.SanitizePart(form.Name), time.Now().UTC().Format("20060102_150405"))
	return filename, buf.Bytes(), nil
}

func cellText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "Sí"
		}
		return "No"
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			parts = append(parts, fmt.Sprintf("%v", p))
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprintf("%v", v)
}

func safeSheetName(name string) string {
	n := strings.TrimSpace(name)
	n = strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_").Replace(n)
	if r := []rune(n); len(r) > 31 {
		n = string(r[:31])
	}
	return n
}

func (s *FormSubmissionService) GetUploadBytes(id uint) ([]byte, string, string, error) {
	var rec FormSubmissionUpload
	if err := s.DB.First(&rec, id).Error; err != nil {
		return nil, "", "", err
	}

	data, contentType, err := readGCSObjectHook(context.Background(), rec.FileURL)
	if err != nil {
		return nil, "", "", err
	}

	if contentType == "" {
		contentType = strings.TrimSpace(rec.MimeType)
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	filename := strings.TrimSpace(rec.FileName)
	if filename == "" {
		if _, objectPath, err := util.ParseGSURL(rec.FileURL); err == nil {
			filename = path.Base(objectPath)
		}
	}
	if filename == "" {
		filename = fmt.Sprintf("upload_%d", rec.ID)
	}

	return data, contentType, filename, nil
}
