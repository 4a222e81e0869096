package formengine

import (
	"encoding/json"
	"fmt"
	"testing"
)

func ptrFloat(f float64) *float64 { return &f }
func ptrInt(i int) *int           { return &i }

func mustForm(t *testing.T, raw string) *Form {
	t.Helper()
	var f Form
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		t.Fatalf("unmarshal form: %v", err)
	}
	return &f
}

// inspectionForm has a yes/no gate that reveals a required detail field.
const inspectionJSON = `{
	"id": "frm-1",
	"name": "Inspección de andamios",
	"category": "inspection",
	"sections": [
		{
			"id": "sec-2",
			"title": "Cierre",
			"order": 2,
			"fields": [
				{"id": "f-sign", "label": "Firma", "name": "firma", "type": "signature", "order": 1},
				{"id": "f-doc", "label": "Adjunto", "name": "adjunto", "type": "file", "order": 2}
			]
		},
		{
			"id": "sec-1",
			"title": "General",
			"order": 1,
			"fields": [
				{"id": "f-detail", "label": "Detalle", "name": "detalle", "type": "textarea", "order": 3, "required": true,
				 "conditional": {"showIf": {"field": "hay_danos", "operator": "equals", "value": "yes"}}},
				{"id": "f-gate", "label": "¿Hay daños?", "name": "hay_danos", "type": "radio", "order": 2,
				 "options": ["yes", {"value": "no", "label": "No"}]},
				{"id": "f-height", "label": "Altura", "name": "altura", "type": "number", "order": 1,
				 "validation": {"min": 1, "max": 10}},
				null,
				{"id": "f-ppe", "label": "EPP", "name": "epp", "type": "multiselect", "order": 4,
				 "options": ["Casco", {"value": "arnes", "label": "Arnés"}]},
				{"id": "f-ok", "label": "Conforme", "name": "conforme", "type": "checkbox", "order": 5},
				{"id": "f-future", "label": "Mapa", "name": "mapa", "type": "geo", "order": 6}
			]
		}
	]
}`

type fakePad struct {
	image   string
	empty   bool
	cleared int
	err     error
}

func (p *fakePad) Clear()        { p.cleared++; p.empty = true }
func (p *fakePad) IsEmpty() bool { return p.empty }
func (p *fakePad) ExportAsImage() (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return p.image, nil
}

func seqIDs() IDGenerator {
	n := 0
	return func(prefix string) string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}
