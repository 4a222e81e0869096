package formengine

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Option is one choice of a radio, select or multiselect field.
//
// Stored schemas carry options either as a bare string or as a {value,label}
// object. Both decode into the same shape here; a bare string yields identical
// value and label and is re-encoded as a bare string.
type Option struct {
	Value string
	Label string
	Bare  bool
}

func BareOption(s string) Option { return Option{Value: s, Label: s, Bare: true} }

func LabeledOption(value, label string) Option { return Option{Value: value, Label: label} }

type optionObject struct {
	Value any    `json:"value"`
	Label string `json:"label"`
}

func (o *Option) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*o = BareOption(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*o = BareOption("")
		return nil
	}

	var obj optionObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("option must be a string or {value,label}: %w", err)
	}
	value := ""
	if obj.Value != nil {
		value = fmt.Sprint(obj.Value)
	}
	*o = Option{Value: value, Label: obj.Label}
	return nil
}

func (o Option) MarshalJSON() ([]byte, error) {
	if o.Bare {
		return json.Marshal(o.Value)
	}
	return json.Marshal(optionObject{Value: o.Value, Label: o.Label})
}

func (fld *Field) hasOptionValue(v string) bool {
	for _, o := range fld.Options {
		if o.Value == v {
			return true
		}
	}
	return false
}
