package formengine

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"unicode/utf8"
)

const msgInvalidFormat = "Formato inválido"

// Validate checks every field of form against responses and returns one message
// per failing field.
//
// Fields are checked whether or not they are currently visible, so a required
// field hidden by its rule still blocks submission.
func Validate(form *Form, responses Responses) Errors {
	errs := Errors{}
	for _, fld := range form.AllFields() {
		if msg := validateField(fld, responses[fld.Name]); msg != "" {
			errs[fld.Name] = msg
		}
	}
	return errs
}

// validateField runs the checks in order; a later failure replaces an earlier
// message, including the required one. Empty values are checked too: a blank
// number counts as 0 and blank text has length 0.
func validateField(fld *Field, value any) string {
	msg := ""

	if fld.Required && isEmptyValue(value) {
		msg = fmt.Sprintf("%s es requerido", fld.Label)
	}

	rule := fld.Validation
	if rule == nil {
		return msg
	}

	switch {
	case fld.Type.IsNumeric():
		n := toNumber(value)
		if math.IsNaN(n) {
			break
		}
		if rule.Min != nil && n < *rule.Min {
			msg = fmt.Sprintf("El valor mínimo es %s", formatBound(*rule.Min))
		}
		if rule.Max != nil && n > *rule.Max {
			msg = fmt.Sprintf("El valor máximo es %s", formatBound(*rule.Max))
		}

	case fld.Type.IsText():
		s := stringValue(value)
		length := utf8.RuneCountInString(s)
		if rule.MinLength != nil && length < *rule.MinLength {
			msg = fmt.Sprintf("Debe tener al menos %d caracteres", *rule.MinLength)
		}
		if rule.MaxLength != nil && length > *rule.MaxLength {
			msg = fmt.Sprintf("Debe tener como máximo %d caracteres", *rule.MaxLength)
		}
		if rule.Pattern != "" {
			re, err := regexp.Compile(rule.Pattern)
			if err == nil && !re.MatchString(s) {
				msg = msgInvalidFormat
			}
		}
	}

	return msg
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case undefined:
		return true
	case string:
		return t == ""
	case []string:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	}
	if n, ok := numberValue(v); ok {
		return formatBound(n)
	}
	return fmt.Sprint(v)
}

func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
