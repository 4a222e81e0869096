package formengine

import (
	"reflect"
	"testing"
)

func TestSession_InitializeSeedsDefaults(t *testing.T) {
	form := mustForm(t, inspectionJSON)
	s := NewSession(form, map[string]any{"altura": "4", "hay_danos": nil, "ghost": "x"})

	if s.Value("altura") != "4" {
		t.Fatalf("altura = %#v, want seeded 4", s.Value("altura"))
	}
	if s.Value("hay_danos") != "" {
		t.Fatalf("nil seed must fall back to default, got %#v", s.Value("hay_danos"))
	}
	if v, ok := s.Value("epp").([]string); !ok || len(v) != 0 {
		t.Fatalf("multiselect default = %#v", s.Value("epp"))
	}
	if v, ok := s.Value("conforme").([]string); !ok || len(v) != 0 {
		t.Fatalf("checkbox default = %#v", s.Value("conforme"))
	}
	if _, ok := s.Responses()["ghost"]; ok {
		t.Fatal("seed keys outside the schema must not be loaded")
	}
	if len(s.Responses()) != 8 {
		t.Fatalf("expected one entry per field, got %d", len(s.Responses()))
	}
}

func TestSession_InitializeIsIdempotent(t *testing.T) {
	form := mustForm(t, inspectionJSON)
	seed := map[string]any{"altura": "3", "detalle": "grieta"}

	s := NewSession(form, seed)
	first := s.Responses()
	firstTuples := s.Tuples()

	s.Initialize(form, seed)
	if !reflect.DeepEqual(first, s.Responses()) {
		t.Fatalf("responses differ:\n%v\n%v", first, s.Responses())
	}
	if !reflect.DeepEqual(firstTuples, s.Tuples()) {
		t.Fatal("tuple order differs between initializations")
	}
}

func TestSession_InitializeToleratesNil(t *testing.T) {
	s := NewSession(nil, nil)
	if len(s.Responses()) != 0 || len(s.Tuples()) != 0 {
		t.Fatal("nil form must yield empty session")
	}
	if !s.Submit() {
		t.Fatal("empty form submits clean")
	}

	s.Initialize(&Form{Sections: []*Section{nil, {Fields: nil}, {Fields: []*Field{nil}}}}, nil)
	if len(s.Responses()) != 0 {
		t.Fatal("nil sections and fields must be skipped")
	}
}

func TestSession_SetValueClearsErrorAndNotifies(t *testing.T) {
	form := mustForm(t, inspectionJSON)

	var changes [][]Tuple
	s := NewSession(form, nil, OnChange(func(ts []Tuple) { changes = append(changes, ts) }))

	if s.Submit() {
		t.Fatal("submit must fail while detalle is empty")
	}
	if s.Error("detalle") == "" {
		t.Fatal("expected error on detalle")
	}

	s.SetValue(form.FieldByName("detalle"), "fisura en base")
	if s.Error("detalle") != "" {
		t.Fatal("SetValue must clear the field error")
	}
	if len(changes) != 1 {
		t.Fatalf("change callback fired %d times, want 1", len(changes))
	}

	var found bool
	for _, tp := range changes[0] {
		if tp.FieldName == "detalle" {
			found = true
			if tp.FieldID != "f-detail" || tp.Value != "fisura en base" {
				t.Fatalf("unexpected tuple %#v", tp)
			}
		}
	}
	if !found {
		t.Fatal("change payload missing detalle")
	}
	if len(changes[0]) != 8 {
		t.Fatalf("change payload carries the full response set, got %d", len(changes[0]))
	}

	s.SetValue(nil, "x")
	if len(changes) != 1 {
		t.Fatal("nil field must be a no-op")
	}
}

func TestSession_UnknownFieldGetsEmptyID(t *testing.T) {
	form := mustForm(t, inspectionJSON)
	s := NewSession(form, nil)

	s.SetValue(&Field{Name: "extra"}, "v")
	tuples := s.Tuples()
	last := tuples[len(tuples)-1]
	if last.FieldName != "extra" || last.FieldID != "" {
		t.Fatalf("unexpected tuple %#v", last)
	}
}

func TestSession_SubmitEmitsOneTuplePerResponse(t *testing.T) {
	form := mustForm(t, inspectionJSON)

	var submitted []Tuple
	calls := 0
	s := NewSession(form, map[string]any{"detalle": "ok", "altura": "5"},
		OnSubmit(func(ts []Tuple) { calls++; submitted = ts }))

	if !s.Submit() {
		t.Fatalf("expected submit to pass, errors=%v", s.Errors())
	}
	if calls != 1 {
		t.Fatalf("submit callback fired %d times", calls)
	}
	if len(submitted) != len(s.Responses()) {
		t.Fatalf("got %d tuples for %d responses", len(submitted), len(s.Responses()))
	}
	if submitted[0].FieldName != "firma" || submitted[0].FieldID != "f-sign" {
		t.Fatalf("tuples follow schema order, first = %#v", submitted[0])
	}
}

func TestSession_SubmitBlockedKeepsErrors(t *testing.T) {
	form := mustForm(t, inspectionJSON)
	calls := 0
	s := NewSession(form, map[string]any{"detalle": "ok", "altura": "11"},
		OnSubmit(func([]Tuple) { calls++ }))

	if s.Submit() {
		t.Fatal("expected submit to fail")
	}
	if calls != 0 {
		t.Fatal("submit callback must not fire on validation errors")
	}
	if s.Errors()["altura"] == "" {
		t.Fatal("expected range error on altura")
	}
}
