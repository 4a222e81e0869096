// Package formengine interprets declarative inspection/checklist forms: it decides
// which fields are visible, validates responses, tracks a live response session and
// provides the structural edit operations used to author a form.
package formengine

import (
	"sort"
	"time"
)

// Form is a named schema describing the sections and fields to be filled out.
type Form struct {
	ID          string       `json:"id"`
	Code        string       `json:"code,omitempty"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Category    string       `json:"category"`
	RequiredFor []string     `json:"requiredFor,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	Metadata    FormMetadata `json:"metadata"`
	Sections    []*Section   `json:"sections"`
	IsActive    bool         `json:"isActive"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

type FormMetadata struct {
	EstimatedMinutes   int      `json:"estimatedMinutes,omitempty"`
	RequiresApproval   bool     `json:"requiresApproval"`
	ApproverRoles      []string `json:"approverRoles,omitempty"`
	RequiresAttachment bool     `json:"requiresAttachment"`
	ValidityDays       int      `json:"validityDays,omitempty"`
}

type Section struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Order       int      `json:"order"`
	Fields      []*Field `json:"fields"`
}

type Field struct {
	ID          string          `json:"id"`
	Label       string          `json:"label"`
	Name        string          `json:"name"`
	Type        FieldType       `json:"type"`
	Required    bool            `json:"required"`
	Order       int             `json:"order"`
	Options     []Option        `json:"options,omitempty"`
	Validation  *ValidationRule `json:"validation,omitempty"`
	Conditional *Conditional    `json:"conditional,omitempty"`
	Placeholder string          `json:"placeholder,omitempty"`
	HelperText  string          `json:"helperText,omitempty"`
}

// ValidationRule holds type-specific constraints. Nil pointers and an empty
// pattern mean "not set".
type ValidationRule struct {
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
}

type Conditional struct {
	ShowIf *ConditionalRule `json:"showIf,omitempty"`
}

// ConditionalRule gates a field's visibility on another field's current value.
type ConditionalRule struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value"`
}

type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "notEquals"
	OpGreaterThan Operator = "greaterThan"
	OpLessThan    Operator = "lessThan"
)

// Responses maps a field's machine name to its current value.
type Responses map[string]any

// Errors maps a field's machine name to a single message. A missing key means valid.
type Errors map[string]string

func (e Errors) Valid() bool { return len(e) == 0 }

// OrderedSections returns the non-nil sections sorted by Order, ties kept in
// array position.
func (f *Form) OrderedSections() []*Section {
	if f == nil {
		return nil
	}
	out := make([]*Section, 0, len(f.Sections))
	for _, s := range f.Sections {
		if s != nil {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// OrderedFields returns the non-nil fields sorted by Order.
func (s *Section) OrderedFields() []*Field {
	if s == nil {
		return nil
	}
	out := make([]*Field, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f != nil {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// AllFields walks every section and field in stored array order, skipping nils.
func (f *Form) AllFields() []*Field {
	if f == nil {
		return nil
	}
	var out []*Field
	for _, s := range f.Sections {
		if s == nil {
			continue
		}
		for _, fld := range s.Fields {
			if fld != nil {
				out = append(out, fld)
			}
		}
	}
	return out
}

func (f *Form) FieldByName(name string) *Field {
	for _, fld := range f.AllFields() {
		if fld.Name == name {
			return fld
		}
	}
	return nil
}

// FieldIDByName returns the id of the field with the given machine name, or ""
// when no such field exists.
func (f *Form) FieldIDByName(name string) string {
	if fld := f.FieldByName(name); fld != nil {
		return fld.ID
	}
	return ""
}

func (f *Form) HasRequiredFields() bool {
	for _, fld := range f.AllFields() {
		if fld.Required {
			return true
		}
	}
	return false
}

// Usable reports whether the form has at least one section holding a field.
func (f *Form) Usable() bool {
	if f == nil {
		return false
	}
	for _, s := range f.Sections {
		if s == nil {
			continue
		}
		for _, fld := range s.Fields {
			if fld != nil {
				return true
			}
		}
	}
	return false
}

// ShowIf returns the field's visibility rule, nil when it has none.
func (fld *Field) ShowIf() *ConditionalRule {
	if fld == nil || fld.Conditional == nil {
		return nil
	}
	return fld.Conditional.ShowIf
}
