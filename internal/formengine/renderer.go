package formengine

import "errors"

var (
	ErrDisabled       = errors.New("form is read-only")
	ErrFieldNotFound  = errors.New("field not found")
	ErrFieldHidden    = errors.New("field is hidden")
	ErrWrongWidget    = errors.New("edit does not apply to this field type")
	ErrUnknownOption  = errors.New("value is not one of the field options")
	ErrNoSignaturePad = errors.New("no signature pad bound to field")
)

// Widget is the input behaviour chosen for a field. The set of implementations
// is closed; UnknownWidget stands for type tags this version does not know and
// is never drawn.
type Widget interface {
	widget()
}

// InputMode distinguishes the free-entry text widgets.
type InputMode string

const (
	ModeText     InputMode = "text"
	ModeNumber   InputMode = "number"
	ModeDate     InputMode = "date"
	ModeTextarea InputMode = "textarea"
)

type TextWidget struct {
	Mode        InputMode
	Placeholder string
}

type CheckboxWidget struct{}

// ChoiceWidget picks exactly one option, drawn as radio buttons or a dropdown.
type ChoiceWidget struct {
	Dropdown bool
	Options  []Option
}

type MultiChoiceWidget struct {
	Options []Option
}

type SignatureWidget struct {
	Pad SignaturePad
}

type FileWidget struct{}

type UnknownWidget struct {
	Type FieldType
}

func (TextWidget) widget()        {}
func (CheckboxWidget) widget()    {}
func (ChoiceWidget) widget()      {}
func (MultiChoiceWidget) widget() {}
func (SignatureWidget) widget()   {}
func (FileWidget) widget()        {}
func (UnknownWidget) widget()     {}

// WidgetFor maps a field's type tag to its widget.
func WidgetFor(fld *Field, pad SignaturePad) Widget {
	switch fld.Type {
	case FieldText:
		return TextWidget{Mode: ModeText, Placeholder: fld.Placeholder}
	case FieldNumber:
		return TextWidget{Mode: ModeNumber, Placeholder: fld.Placeholder}
	case FieldDate:
		return TextWidget{Mode: ModeDate, Placeholder: fld.Placeholder}
	case FieldTextarea:
		return TextWidget{Mode: ModeTextarea, Placeholder: fld.Placeholder}
	case FieldCheckbox:
		return CheckboxWidget{}
	case FieldRadio:
		return ChoiceWidget{Options: fld.Options}
	case FieldSelect:
		return ChoiceWidget{Dropdown: true, Options: fld.Options}
	case FieldMultiselect:
		return MultiChoiceWidget{Options: fld.Options}
	case FieldSignature:
		return SignatureWidget{Pad: pad}
	case FieldFile:
		return FileWidget{}
	default:
		return UnknownWidget{Type: fld.Type}
	}
}

type View struct {
	Sections []SectionView
	// RequiredLegend is set when any field in the form is required, visible
	// or not.
	RequiredLegend bool
	Disabled       bool
}

type SectionView struct {
	Section *Section
	Fields  []FieldView
}

type FieldView struct {
	Field    *Field
	Widget   Widget
	Value    any
	Error    string
	Required bool
	Disabled bool
}

type RendererOption func(*Renderer)

// WithDisabled puts the renderer in read-only mode: values and errors are still
// shown but every edit is refused.
func WithDisabled(disabled bool) RendererOption {
	return func(r *Renderer) { r.disabled = disabled }
}

// Renderer draws a session's form and routes user edits back into it.
type Renderer struct {
	session  *Session
	disabled bool
}

func NewRenderer(session *Session, opts ...RendererOption) *Renderer {
	r := &Renderer{session: session}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render lays out the visible fields of every section. Visibility is worked out
// from the responses as they are now, so it must be called again after edits.
func (r *Renderer) Render() *View {
	if r.session == nil {
		return &View{Disabled: r.disabled}
	}
	form := r.session.Form()
	view := &View{
		RequiredLegend: form.HasRequiredFields(),
		Disabled:       r.disabled,
	}
	responses := r.session.responses

	for _, sec := range form.OrderedSections() {
		sv := SectionView{Section: sec}
		for _, fld := range sec.OrderedFields() {
			if !IsVisible(fld, responses) {
				continue
			}
			w := WidgetFor(fld, r.session.Signature(fld.Name))
			if _, unknown := w.(UnknownWidget); unknown {
				continue
			}
			sv.Fields = append(sv.Fields, FieldView{
				Field:    fld,
				Widget:   w,
				Value:    responses[fld.Name],
				Error:    r.session.Error(fld.Name),
				Required: fld.Required,
				Disabled: r.disabled,
			})
		}
		view.Sections = append(view.Sections, sv)
	}
	return view
}

// editable resolves name to a visible field whose widget passes accept.
func (r *Renderer) editable(name string, accept func(Widget) bool) (*Field, Widget, error) {
	if r.disabled {
		return nil, nil, ErrDisabled
	}
	if r.session == nil {
		return nil, nil, ErrFieldNotFound
	}
	fld := r.session.Form().FieldByName(name)
	if fld == nil {
		return nil, nil, ErrFieldNotFound
	}
	if !IsVisible(fld, r.session.responses) {
		return nil, nil, ErrFieldHidden
	}
	w := WidgetFor(fld, r.session.Signature(name))
	if !accept(w) {
		return nil, nil, ErrWrongWidget
	}
	return fld, w, nil
}

// SetText stores free text for text, number, date and textarea fields.
func (r *Renderer) SetText(name, text string) error {
	fld, _, err := r.editable(name, func(w Widget) bool {
		_, ok := w.(TextWidget)
		return ok
	})
	if err != nil {
		return err
	}
	r.session.SetValue(fld, text)
	return nil
}

func (r *Renderer) SetChecked(name string, checked bool) error {
	fld, _, err := r.editable(name, func(w Widget) bool {
		_, ok := w.(CheckboxWidget)
		return ok
	})
	if err != nil {
		return err
	}
	r.session.SetValue(fld, checked)
	return nil
}

// Choose selects the option whose value is value on a radio or select field.
func (r *Renderer) Choose(name, value string) error {
	fld, _, err := r.editable(name, func(w Widget) bool {
		_, ok := w.(ChoiceWidget)
		return ok
	})
	if err != nil {
		return err
	}
	if !fld.hasOptionValue(value) {
		return ErrUnknownOption
	}
	r.session.SetValue(fld, value)
	return nil
}

// ToggleOption adds value to a multiselect answer, or removes it when already
// selected. Selection keeps the order options were picked in.
func (r *Renderer) ToggleOption(name, value string) error {
	fld, _, err := r.editable(name, func(w Widget) bool {
		_, ok := w.(MultiChoiceWidget)
		return ok
	})
	if err != nil {
		return err
	}
	if !fld.hasOptionValue(value) {
		return ErrUnknownOption
	}

	current := selectedValues(r.session.Value(name))
	next := make([]string, 0, len(current)+1)
	removed := false
	for _, v := range current {
		if v == value {
			removed = true
			continue
		}
		next = append(next, v)
	}
	if !removed {
		next = append(next, value)
	}
	r.session.SetValue(fld, next)
	return nil
}

// CaptureSignature stores the bound pad's image as the field value. An empty
// pad stores the empty string.
func (r *Renderer) CaptureSignature(name string) error {
	fld, w, err := r.editable(name, func(w Widget) bool {
		_, ok := w.(SignatureWidget)
		return ok
	})
	if err != nil {
		return err
	}
	pad := w.(SignatureWidget).Pad
	if pad == nil {
		return ErrNoSignaturePad
	}
	if pad.IsEmpty() {
		r.session.SetValue(fld, "")
		return nil
	}
	img, err := pad.ExportAsImage()
	if err != nil {
		return err
	}
	r.session.SetValue(fld, img)
	return nil
}

func (r *Renderer) ClearSignature(name string) error {
	fld, w, err := r.editable(name, func(w Widget) bool {
		_, ok := w.(SignatureWidget)
		return ok
	})
	if err != nil {
		return err
	}
	if pad := w.(SignatureWidget).Pad; pad != nil {
		pad.Clear()
	}
	r.session.SetValue(fld, "")
	return nil
}

// SelectFile records the chosen file's display name. The bytes are uploaded
// elsewhere.
func (r *Renderer) SelectFile(name, displayName string) error {
	fld, _, err := r.editable(name, func(w Widget) bool {
		_, ok := w.(FileWidget)
		return ok
	})
	if err != nil {
		return err
	}
	r.session.SetValue(fld, displayName)
	return nil
}

func selectedValues(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
