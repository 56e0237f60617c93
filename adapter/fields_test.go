package adapter

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryRegistryAddAndLookup(t *testing.T) {
	r := NewMemoryRegistry()

	if err := r.AddField(FieldSpec{Name: "state", High: "1", Low: "0", Kind: FieldBinary, Value: "0"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := r.AddField(FieldSpec{Name: "state"}); !errors.Is(err, ErrFieldExists) {
		t.Fatalf("expected ErrFieldExists, got %v", err)
	}
	if err := r.AddField(FieldSpec{}); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue for empty name, got %v", err)
	}

	f := r.FieldByName("state")
	if f == nil {
		t.Fatal("lookup by name failed")
	}
	if f.ID() != "state" || f.Value() != "0" {
		t.Fatalf("unexpected field %q=%q", f.ID(), f.Value())
	}

	if r.FieldByName("missing") != nil {
		t.Fatal("expected nil for unknown name")
	}
	if _, err := r.Field("missing"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestMemoryRegistrySetValueValidation(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()

	mustAdd := func(spec FieldSpec) {
		t.Helper()
		if err := r.AddField(spec); err != nil {
			t.Fatalf("add %q: %v", spec.Name, err)
		}
	}
	mustAdd(FieldSpec{Name: "state", High: "1", Low: "0", Kind: FieldBinary, Value: "0"})
	mustAdd(FieldSpec{Name: "brightness", High: "100", Low: "0", Kind: FieldNumeric, Value: "50"})
	mustAdd(FieldSpec{Name: "model", Kind: FieldNumeric, ReadOnly: true, Value: "1"})

	cases := []struct {
		name  string
		field string
		value string
		want  error
	}{
		{"binary ok", "state", "1", nil},
		{"binary junk", "state", "2", ErrInvalidValue},
		{"numeric ok", "brightness", "80", nil},
		{"numeric out of range", "brightness", "101", ErrInvalidValue},
		{"numeric junk", "brightness", "dim", ErrInvalidValue},
		{"read only", "model", "2", ErrReadOnlyField},
		{"unknown", "nope", "1", ErrUnknownField},
	}
	for _, tc := range cases {
		err := r.SetValue(ctx, tc.field, tc.value, false)
		if tc.want == nil && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if tc.want != nil && !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	if got := r.FieldByName("brightness").Value(); got != "80" {
		t.Fatalf("accepted write not persisted: %q", got)
	}
	if got := r.FieldByName("model").Value(); got != "1" {
		t.Fatalf("read-only field mutated: %q", got)
	}
}

func TestMemoryRegistryFieldsOrder(t *testing.T) {
	r := NewMemoryRegistry()
	for _, name := range []string{"c", "a", "b"} {
		if err := r.AddField(FieldSpec{Name: name, Kind: FieldNumeric}); err != nil {
			t.Fatalf("add %q: %v", name, err)
		}
	}

	fields := r.Fields()
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(fields))
	}
	for i, want := range []string{"c", "a", "b"} {
		if fields[i].Name() != want {
			t.Fatalf("position %d: expected %q, got %q", i, want, fields[i].Name())
		}
	}
}
