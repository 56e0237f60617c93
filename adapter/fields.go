// Copyright 2025 Edgeo SCADA
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package adapter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
)

// Field registry errors
var (
	ErrUnknownField  = errors.New("adapter: unknown field")
	ErrFieldExists   = errors.New("adapter: field already registered")
	ErrReadOnlyField = errors.New("adapter: field is read-only")
	ErrInvalidValue  = errors.New("adapter: invalid field value")
)

// FieldKind is the value kind of a field
type FieldKind int

const (
	FieldBinary FieldKind = iota
	FieldNumeric
)

func (k FieldKind) String() string {
	switch k {
	case FieldBinary:
		return "binary"
	case FieldNumeric:
		return "numeric"
	default:
		return fmt.Sprintf("field-kind(%d)", int(k))
	}
}

// FieldSpec describes one abstract field exposed to callers
type FieldSpec struct {
	Name     string
	ReadOnly bool
	High     string
	Low      string
	Kind     FieldKind
	Value    string
	Virtual  bool
}

// Field is one registered field descriptor
type Field interface {
	ID() string
	Name() string
	Value() string
	SetValue(value string)
	Spec() FieldSpec
}

// Registry is the field registry the adapter publishes its fields through.
// Implementations own descriptor storage and the base write behavior; the
// adapter only translates between fields and device commands.
type Registry interface {
	// FieldByName returns the field with the given name, or nil
	FieldByName(name string) Field

	// Field returns the field with the given id
	Field(id string) (Field, error)

	// AddField registers a new field descriptor
	AddField(spec FieldSpec) error

	// SetValue is the base write behavior: validate and persist the value
	// into the descriptor. It runs before (and regardless of) any device
	// command the adapter dispatches for the write.
	SetValue(ctx context.Context, id, value string, scripted bool) error
}

// memField is a field held by MemoryRegistry
type memField struct {
	mu    sync.RWMutex
	spec  FieldSpec
	value string
}

func (f *memField) ID() string   { return f.spec.Name }
func (f *memField) Name() string { return f.spec.Name }

func (f *memField) Value() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.value
}

func (f *memField) SetValue(value string) {
	f.mu.Lock()
	f.value = value
	f.mu.Unlock()
}

func (f *memField) Spec() FieldSpec {
	f.mu.RLock()
	defer f.mu.RUnlock()
	spec := f.spec
	spec.Value = f.value
	return spec
}

// MemoryRegistry is an in-memory Registry. Field ids equal field names.
type MemoryRegistry struct {
	mu     sync.RWMutex
	fields map[string]*memField
	order  []string
}

// NewMemoryRegistry creates an empty in-memory registry
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		fields: make(map[string]*memField),
	}
}

// FieldByName returns the field with the given name, or nil
func (r *MemoryRegistry) FieldByName(name string) Field {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.fields[name]
	if !ok {
		return nil
	}
	return f
}

// Field returns the field with the given id
func (r *MemoryRegistry) Field(id string) (Field, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.fields[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, id)
	}
	return f, nil
}

// AddField registers a new field descriptor
func (r *MemoryRegistry) AddField(spec FieldSpec) error {
	if spec.Name == "" {
		return fmt.Errorf("%w: empty field name", ErrInvalidValue)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.fields[spec.Name]; ok {
		return fmt.Errorf("%w: %q", ErrFieldExists, spec.Name)
	}

	r.fields[spec.Name] = &memField{spec: spec, value: spec.Value}
	r.order = append(r.order, spec.Name)
	return nil
}

// Fields returns all registered fields in registration order
func (r *MemoryRegistry) Fields() []Field {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Field, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.fields[name])
	}
	return out
}

// SetValue validates and persists a value. The scripted flag is accepted for
// interface parity; this implementation treats scripted and direct writes
// identically.
func (r *MemoryRegistry) SetValue(ctx context.Context, id, value string, scripted bool) error {
	r.mu.RLock()
	f, ok := r.fields[id]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, id)
	}

	spec := f.Spec()
	if spec.ReadOnly {
		return fmt.Errorf("%w: %q", ErrReadOnlyField, id)
	}
	if err := validateValue(spec, value); err != nil {
		return err
	}

	f.SetValue(value)
	return nil
}

// validateValue checks a value against the field's kind and bounds
func validateValue(spec FieldSpec, value string) error {
	switch spec.Kind {
	case FieldBinary:
		if value != "0" && value != "1" {
			return fmt.Errorf("%w: %q is not binary", ErrInvalidValue, value)
		}
	case FieldNumeric:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %q is not numeric", ErrInvalidValue, value)
		}
		low, lerr := strconv.Atoi(spec.Low)
		high, herr := strconv.Atoi(spec.High)
		if lerr == nil && herr == nil && (n < low || n > high) {
			return fmt.Errorf("%w: %d not in [%d,%d]", ErrInvalidValue, n, low, high)
		}
	}
	return nil
}
