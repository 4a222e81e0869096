package formengine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNoValidSection       = errors.New("Debe existir al menos una sección con título y al menos un campo")
	ErrEmptyFieldLabel      = errors.New("Todos los campos deben tener una etiqueta")
	ErrUnknownProperty      = errors.New("unknown property")
	ErrInvalidPropertyValue = errors.New("invalid property value")
	ErrOutOfRange           = errors.New("index out of range")
)

type FieldProperty string

const (
	PropLabel       FieldProperty = "label"
	PropName        FieldProperty = "name"
	PropType        FieldProperty = "type"
	PropRequired    FieldProperty = "required"
	PropPlaceholder FieldProperty = "placeholder"
	PropHelperText  FieldProperty = "helperText"
)

type SectionProperty string

const (
	PropTitle       SectionProperty = "title"
	PropDescription SectionProperty = "description"
)

// IDGenerator returns a new identifier with the given prefix.
type IDGenerator func(prefix string) string

// NewID builds "<prefix>_<unix millis>_<random>", unique enough for one editing
// session; the store assigns permanent ids on save.
func NewID(prefix string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), suffix)
}

type EditorOption func(*Editor)

func WithIDGenerator(gen IDGenerator) EditorOption {
	return func(e *Editor) { e.newID = gen }
}

// Editor applies structural edits to a form held in memory. Index arguments are
// positions in the stored slices, not order numbers.
type Editor struct {
	form  *Form
	newID IDGenerator
}

// NewEditor edits form in place. A nil form starts a new one with a single empty
// section.
func NewEditor(form *Form, opts ...EditorOption) *Editor {
	e := &Editor{form: form, newID: NewID}
	for _, opt := range opts {
		opt(e)
	}
	if e.form == nil {
		e.form = &Form{IsActive: true}
	}
	if len(e.form.Sections) == 0 {
		e.AddSection()
	}
	return e
}

func (e *Editor) Form() *Form { return e.form }

func (e *Editor) section(si int) *Section {
	if si < 0 || si >= len(e.form.Sections) {
		return nil
	}
	return e.form.Sections[si]
}

func (e *Editor) field(si, fi int) *Field {
	sec := e.section(si)
	if sec == nil || fi < 0 || fi >= len(sec.Fields) {
		return nil
	}
	return sec.Fields[fi]
}

func (e *Editor) AddSection() *Section {
	sec := &Section{
		ID:     e.newID("section"),
		Order:  len(e.form.Sections) + 1,
		Fields: []*Field{},
	}
	e.form.Sections = append(e.form.Sections, sec)
	return sec
}

// RemoveSection drops the section at si. The last remaining section cannot be
// removed; false is returned and nothing changes.
func (e *Editor) RemoveSection(si int) bool {
	if len(e.form.Sections) <= 1 || si < 0 || si >= len(e.form.Sections) {
		return false
	}
	e.form.Sections = append(e.form.Sections[:si], e.form.Sections[si+1:]...)
	return true
}

// MoveSection moves a section to a new position and renumbers every section's
// order to match.
func (e *Editor) MoveSection(from, to int) bool {
	secs := e.form.Sections
	if from < 0 || from >= len(secs) || to < 0 || to >= len(secs) {
		return false
	}
	e.form.Sections = move(secs, from, to)
	for i, s := range e.form.Sections {
		if s != nil {
			s.Order = i + 1
		}
	}
	return true
}

func (e *Editor) SetSectionProperty(si int, prop SectionProperty, value string) error {
	sec := e.section(si)
	if sec == nil {
		return ErrOutOfRange
	}
	switch prop {
	case PropTitle:
		sec.Title = value
	case PropDescription:
		sec.Description = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownProperty, prop)
	}
	return nil
}

// AddField appends a blank text field to section si and returns it, or nil when
// the section does not exist.
func (e *Editor) AddField(si int) *Field {
	sec := e.section(si)
	if sec == nil {
		return nil
	}
	fld := &Field{
		ID:    e.newID("field"),
		Name:  e.uniqueName(fmt.Sprintf("field_%d", len(e.form.AllFields())+1)),
		Type:  FieldText,
		Order: len(sec.Fields) + 1,
	}
	sec.Fields = append(sec.Fields, fld)
	return fld
}

func (e *Editor) uniqueName(base string) string {
	name := base
	for n := 2; e.form.FieldByName(name) != nil; n++ {
		name = fmt.Sprintf("%s_%d", base, n)
	}
	return name
}

func (e *Editor) RemoveField(si, fi int) bool {
	sec := e.section(si)
	if sec == nil || fi < 0 || fi >= len(sec.Fields) {
		return false
	}
	sec.Fields = append(sec.Fields[:fi], sec.Fields[fi+1:]...)
	return true
}

func (e *Editor) MoveField(si, from, to int) bool {
	sec := e.section(si)
	if sec == nil || from < 0 || from >= len(sec.Fields) || to < 0 || to >= len(sec.Fields) {
		return false
	}
	sec.Fields = move(sec.Fields, from, to)
	for i, f := range sec.Fields {
		if f != nil {
			f.Order = i + 1
		}
	}
	return true
}

// SetFieldProperty sets one scalar property of a field. String properties take
// a string and required takes a bool.
func (e *Editor) SetFieldProperty(si, fi int, prop FieldProperty, value any) error {
	fld := e.field(si, fi)
	if fld == nil {
		return ErrOutOfRange
	}

	if prop == PropRequired {
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%w: %s wants a bool", ErrInvalidPropertyValue, prop)
		}
		fld.Required = b
		return nil
	}

	s, ok := value.(string)
	if !ok {
		if t, isType := value.(FieldType); isType && prop == PropType {
			s, ok = string(t), true
		}
	}
	if !ok {
		return fmt.Errorf("%w: %s wants a string", ErrInvalidPropertyValue, prop)
	}

	switch prop {
	case PropLabel:
		fld.Label = s
	case PropName:
		fld.Name = s
	case PropType:
		fld.Type = FieldType(s)
		if fld.Type.HasOptions() && fld.Options == nil {
			fld.Options = []Option{}
		}
	case PropPlaceholder:
		fld.Placeholder = s
	case PropHelperText:
		fld.HelperText = s
	default:
		return fmt.Errorf("%w: %s", ErrUnknownProperty, prop)
	}
	return nil
}

// SetValidation replaces the field's constraints; nil removes them.
func (e *Editor) SetValidation(si, fi int, rule *ValidationRule) error {
	fld := e.field(si, fi)
	if fld == nil {
		return ErrOutOfRange
	}
	fld.Validation = rule
	return nil
}

// SetConditional replaces the field's visibility rule; nil makes it always
// visible.
func (e *Editor) SetConditional(si, fi int, rule *ConditionalRule) error {
	fld := e.field(si, fi)
	if fld == nil {
		return ErrOutOfRange
	}
	if rule == nil {
		fld.Conditional = nil
		return nil
	}
	fld.Conditional = &Conditional{ShowIf: rule}
	return nil
}

// AddOption appends a numbered option and returns its index, or -1 when the
// field does not exist.
func (e *Editor) AddOption(si, fi int) int {
	fld := e.field(si, fi)
	if fld == nil {
		return -1
	}
	n := len(fld.Options) + 1
	fld.Options = append(fld.Options, LabeledOption(
		fmt.Sprintf("opcion_%d", n),
		fmt.Sprintf("Opción %d", n),
	))
	return len(fld.Options) - 1
}

// RenameOption changes the label of a {value,label} option. Bare-string options
// are left untouched and false is returned.
func (e *Editor) RenameOption(si, fi, oi int, label string) bool {
	fld := e.field(si, fi)
	if fld == nil || oi < 0 || oi >= len(fld.Options) {
		return false
	}
	if fld.Options[oi].Bare {
		return false
	}
	fld.Options[oi].Label = label
	return true
}

func (e *Editor) RemoveOption(si, fi, oi int) bool {
	fld := e.field(si, fi)
	if fld == nil || oi < 0 || oi >= len(fld.Options) {
		return false
	}
	fld.Options = append(fld.Options[:oi], fld.Options[oi+1:]...)
	return true
}

func (e *Editor) Check() error { return CheckForm(e.form) }

// CheckForm gates a form before it is saved: some section must have a title and
// a field, and every field must have a label. Each rule yields one summary
// error; both are joined when both fail.
func CheckForm(form *Form) error {
	var errs []error

	validSection := false
	labelsOK := true
	if form != nil {
		for _, sec := range form.Sections {
			if sec == nil {
				continue
			}
			hasField := false
			for _, fld := range sec.Fields {
				if fld == nil {
					continue
				}
				hasField = true
				if strings.TrimSpace(fld.Label) == "" {
					labelsOK = false
				}
			}
			if hasField && strings.TrimSpace(sec.Title) != "" {
				validSection = true
			}
		}
	}

	if !validSection {
		errs = append(errs, ErrNoValidSection)
	}
	if !labelsOK {
		errs = append(errs, ErrEmptyFieldLabel)
	}
	return errors.Join(errs...)
}

func move[T any](items []T, from, to int) []T {
	item := items[from]
	items = append(items[:from], items[from+1:]...)
	items = append(items[:to], append([]T{item}, items[to:]...)...)
	return items
}
