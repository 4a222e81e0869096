package formcatalog

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"safety-forms-api/internal/formengine"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type FormTemplate struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	Code        *string        `gorm:"size:100;uniqueIndex" json:"code,omitempty"`
	Name        string         `gorm:"size:255;not null" json:"name"`
	Description string         `gorm:"type:text;not null;default:''" json:"description"`
	Category    string         `gorm:"size:100;not null;index" json:"category"`
	RequiredFor datatypes.JSON `gorm:"type:jsonb" json:"required_for"`
	Tags        datatypes.JSON `gorm:"type:jsonb" json:"tags"`
	Metadata    datatypes.JSON `gorm:"type:jsonb" json:"metadata"`
	Sections    datatypes.JSON `gorm:"type:jsonb;not null" json:"sections"`
	IsActive    bool           `gorm:"not null;index" json:"is_active"`
	CreatedBy   *uint          `json:"created_by,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (FormTemplate) TableName() string { return "form_templates" }

func (t *FormTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// FormFilter drives FetchMany. A nil IsActive lists both states.
type FormFilter struct {
	Category string `form:"category"`
	IsActive *bool  `form:"is_active"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

// FormPatch is a partial update; nil members are left untouched.
type FormPatch struct {
	Code        *string                  `json:"code"`
	Name        *string                  `json:"name"`
	Description *string                  `json:"description"`
	Category    *string                  `json:"category"`
	RequiredFor *[]string                `json:"requiredFor"`
	Tags        *[]string                `json:"tags"`
	Metadata    *formengine.FormMetadata `json:"metadata"`
	Sections    *[]*formengine.Section   `json:"sections"`
	IsActive    *bool                    `json:"isActive"`
}

type DuplicateRequest struct {
	Name string `json:"name"`
}

type ValidateRequest struct {
	Responses formengine.Responses `json:"responses"`
}

type ReminderCheckRequest struct {
	ValidityDays  int     `json:"validityDays"`
	FirstPercent  float64 `json:"firstPercent"`
	SecondPercent float64 `json:"secondPercent"`
}

func marshalColumn(v any) (datatypes.JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

func unmarshalColumn(col datatypes.JSON, dst any) error {
	if len(col) == 0 || string(col) == "null" {
		return nil
	}
	return json.Unmarshal(col, dst)
}

func newTemplate(f *formengine.Form) (*FormTemplate, error) {
	t := &FormTemplate{
		ID:          f.ID,
		Name:        strings.TrimSpace(f.Name),
		Description: f.Description,
		Category:    strings.TrimSpace(f.Category),
		IsActive:    f.IsActive,
		CreatedAt:   f.CreatedAt,
	}
	if code := strings.TrimSpace(f.Code); code != "" {
		t.Code = &code
	}

	sections := f.Sections
	if sections == nil {
		sections = []*formengine.Section{}
	}
	columns := []struct {
		dst *datatypes.JSON
		src any
	}{
		{&t.RequiredFor, nonNil(f.RequiredFor)},
		{&t.Tags, nonNil(f.Tags)},
		{&t.Metadata, f.Metadata},
		{&t.Sections, sections},
	}
	for _, c := range columns {
		b, err := marshalColumn(c.src)
		if err != nil {
			return nil, fmt.Errorf("encode form %q: %w", f.Name, err)
		}
		*c.dst = b
	}
	return t, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// ToForm decodes the stored schema.
func (t *FormTemplate) ToForm() (*formengine.Form, error) {
	f := &formengine.Form{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Category:    t.Category,
		IsActive:    t.IsActive,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.Code != nil {
		f.Code = *t.Code
	}

	columns := []struct {
		src datatypes.JSON
		dst any
	}{
		{t.RequiredFor, &f.RequiredFor},
		{t.Tags, &f.Tags},
		{t.Metadata, &f.Metadata},
		{t.Sections, &f.Sections},
	}
	for _, c := range columns {
		if err := unmarshalColumn(c.src, c.dst); err != nil {
			return nil, fmt.Errorf("decode form %s: %w", t.ID, err)
		}
	}
	return f, nil
}
