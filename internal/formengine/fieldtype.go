package formengine

// FieldType tags the kind of input a field takes. Tags outside the known set are
// kept verbatim so schemas written by newer clients still load; they render as
// nothing.
type FieldType string

const (
	FieldText        FieldType = "text"
	FieldNumber      FieldType = "number"
	FieldDate        FieldType = "date"
	FieldTextarea    FieldType = "textarea"
	FieldCheckbox    FieldType = "checkbox"
	FieldRadio       FieldType = "radio"
	FieldSelect      FieldType = "select"
	FieldMultiselect FieldType = "multiselect"
	FieldSignature   FieldType = "signature"
	FieldFile        FieldType = "file"
)

var knownFieldTypes = map[FieldType]bool{
	FieldText: true, FieldNumber: true, FieldDate: true, FieldTextarea: true,
	FieldCheckbox: true, FieldRadio: true, FieldSelect: true, FieldMultiselect: true,
	FieldSignature: true, FieldFile: true,
}

func (t FieldType) Known() bool { return knownFieldTypes[t] }

func (t FieldType) IsNumeric() bool { return t == FieldNumber }

func (t FieldType) IsText() bool { return t == FieldText || t == FieldTextarea }

// HasOptions reports whether the type picks from an option list.
func (t FieldType) HasOptions() bool {
	return t == FieldRadio || t == FieldSelect || t == FieldMultiselect
}

// seedsList reports whether the type starts out as an empty list.
func (t FieldType) seedsList() bool {
	return t == FieldCheckbox || t == FieldMultiselect
}

// DefaultValue is the value a field holds before the user touches it.
func (t FieldType) DefaultValue() any {
	if t.seedsList() {
		return []string{}
	}
	return ""
}
