package formengine

// Tuple is one answer as handed to the hosting page.
type Tuple struct {
	FieldID   string `json:"fieldId"`
	FieldName string `json:"fieldName"`
	Value     any    `json:"value"`
}

type SessionOption func(*Session)

// OnChange registers a callback fired with the full tuple list after every edit.
func OnChange(fn func([]Tuple)) SessionOption {
	return func(s *Session) { s.onChange = fn }
}

// OnSubmit registers a callback fired with the tuple list when Submit passes
// validation.
func OnSubmit(fn func([]Tuple)) SessionOption {
	return func(s *Session) { s.onSubmit = fn }
}

// Session owns the live responses and errors of one open form. It has a single
// writer and is not safe for concurrent use.
type Session struct {
	form      *Form
	responses Responses
	errors    Errors
	order     []string
	pads      map[string]SignaturePad

	onChange func([]Tuple)
	onSubmit func([]Tuple)
}

func NewSession(form *Form, seed map[string]any, opts ...SessionOption) *Session {
	s := &Session{pads: map[string]SignaturePad{}}
	for _, opt := range opts {
		opt(s)
	}
	s.Initialize(form, seed)
	return s
}

// Initialize resets the session to form, seeding each field from seed when it
// holds a non-nil value for the field's name and from the type default
// otherwise.
func (s *Session) Initialize(form *Form, seed map[string]any) {
	s.form = form
	s.responses = Responses{}
	s.errors = Errors{}
	s.order = nil

	for _, fld := range form.AllFields() {
		value := fld.Type.DefaultValue()
		if v, ok := seed[fld.Name]; ok && v != nil {
			value = v
		}
		s.put(fld.Name, value)
	}
}

func (s *Session) put(name string, value any) {
	if _, exists := s.responses[name]; !exists {
		s.order = append(s.order, name)
	}
	s.responses[name] = value
}

// SetValue stores value for fld, clears its error and notifies the change
// callback.
func (s *Session) SetValue(fld *Field, value any) {
	if fld == nil {
		return
	}
	s.put(fld.Name, value)
	delete(s.errors, fld.Name)

	if s.onChange != nil {
		s.onChange(s.Tuples())
	}
}

// Submit validates the responses. When nothing fails the submit callback gets
// the tuple list and Submit returns true; otherwise the errors are kept for
// display and nothing is emitted.
func (s *Session) Submit() bool {
	errs := Validate(s.form, s.responses)
	s.errors = errs
	if !errs.Valid() {
		return false
	}
	if s.onSubmit != nil {
		s.onSubmit(s.Tuples())
	}
	return true
}

// Tuples lists every response in first-insertion order.
func (s *Session) Tuples() []Tuple {
	out := make([]Tuple, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, Tuple{
			FieldID:   s.form.FieldIDByName(name),
			FieldName: name,
			Value:     s.responses[name],
		})
	}
	return out
}

func (s *Session) Form() *Form { return s.form }

func (s *Session) Value(name string) any { return s.responses[name] }

func (s *Session) Error(name string) string { return s.errors[name] }

func (s *Session) Responses() Responses {
	out := make(Responses, len(s.responses))
	for k, v := range s.responses {
		out[k] = v
	}
	return out
}

func (s *Session) Errors() Errors {
	out := make(Errors, len(s.errors))
	for k, v := range s.errors {
		out[k] = v
	}
	return out
}

// BindSignature attaches the capture pad used by the signature field name.
func (s *Session) BindSignature(name string, pad SignaturePad) {
	if pad == nil {
		delete(s.pads, name)
		return
	}
	s.pads[name] = pad
}

func (s *Session) Signature(name string) SignaturePad { return s.pads[name] }
