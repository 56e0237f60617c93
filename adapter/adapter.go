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

// Package adapter keeps a local mirror of one Yeelight device's state in
// sync with the physical device. It polls on a bounded cadence, translates
// abstract field reads/writes into device commands, and degrades to
// stale-but-consistent state whenever the device is unreachable.
package adapter

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/edgeo/drivers/yeelight/yeelight"
)

// PollInterval is the minimum time between device property fetches. Polls
// issued earlier return an empty patch without touching the device.
const PollInterval = 5 * time.Second

// Patch maps changed field names to their new values
type Patch map[string]string

// Device is the handle the adapter drives. *yeelight.Client satisfies it;
// tests substitute fakes.
type Device interface {
	Connect(ctx context.Context) error
	Properties(ctx context.Context, names ...string) (map[string]string, error)
	ModelSpec(ctx context.Context) (yeelight.ModelSpec, error)
	SetPower(ctx context.Context, on bool) error
	SetPowerMode(ctx context.Context, mode yeelight.PowerMode) error
	SetBrightness(ctx context.Context, level int) error
	SetColorTemp(ctx context.Context, kelvin int) error
	SetHSV(ctx context.Context, hue, sat int) error
	BackgroundCommand(ctx context.Context, method string, params ...any) error
	Close() error
}

// Adapter synchronizes one device instance with its field registry.
// A single mutex serializes all device I/O: polls and writes never
// interleave their device calls.
type Adapter struct {
	mu  sync.Mutex
	dev Device // nil when unconfigured or closed

	registry Registry
	cache    *StateCache

	bindings  []*binding
	nightLite *binding

	capability  Capability
	initialized atomic.Bool

	logger *slog.Logger
	now    func() time.Time
}

// adapterOptions holds construction configuration
type adapterOptions struct {
	address string
	model   string
	device  Device
	logger  *slog.Logger
	clock   func() time.Time
}

// AdapterOption is a functional option for configuring the adapter
type AdapterOption func(*adapterOptions)

// WithAddress sets the device network address the adapter creates its
// handle from. Without an address (or an injected device) the adapter is
// permanently inert.
func WithAddress(addr string) AdapterOption {
	return func(o *adapterOptions) {
		o.address = addr
	}
}

// WithModel sets the device model identifier for capability discovery
func WithModel(model string) AdapterOption {
	return func(o *adapterOptions) {
		o.model = model
	}
}

// WithDevice injects an existing device handle instead of creating one from
// an address
func WithDevice(dev Device) AdapterOption {
	return func(o *adapterOptions) {
		o.device = dev
	}
}

// WithLogger sets the adapter logger
func WithLogger(logger *slog.Logger) AdapterOption {
	return func(o *adapterOptions) {
		o.logger = logger
	}
}

// WithClock overrides the time source used for poll rate limiting
func WithClock(now func() time.Time) AdapterOption {
	return func(o *adapterOptions) {
		o.clock = now
	}
}

// New creates an adapter bound to the given field registry. A missing
// address is a configuration error: it is logged once and every subsequent
// operation on the instance is a no-op.
func New(registry Registry, opts ...AdapterOption) *Adapter {
	options := &adapterOptions{
		logger: slog.Default(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(options)
	}

	a := &Adapter{
		registry:  registry,
		cache:     NewStateCache(),
		bindings:  fieldBindings(),
		nightLite: nightLightBinding(),
		logger:    options.logger,
		now:       options.clock,
	}

	switch {
	case options.device != nil:
		a.dev = options.device
	case options.address != "":
		client, err := yeelight.NewClient(
			yeelight.WithAddress(options.address),
			yeelight.WithModel(options.model),
			yeelight.WithLogger(options.logger),
		)
		if err != nil {
			a.logger.Warn("device handle creation failed", slog.String("error", err.Error()))
			return a
		}
		a.dev = client
	default:
		a.logger.Warn("device address is missing")
	}

	return a
}

// allBindings returns the write/delta bindings including the conditional
// night light
func (a *Adapter) allBindings() []*binding {
	return append([]*binding{a.nightLite}, a.bindings...)
}

// device returns the current handle under the lock
func (a *Adapter) device() Device {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dev
}

// Initialize performs one-time setup: connect, discover capabilities and
// register field descriptors. It is idempotent and tolerant of partial
// failure; the instance stays uninitialized (and retryable) unless every
// step succeeds.
func (a *Adapter) Initialize(ctx context.Context) error {
	if a.initialized.Load() || a.device() == nil {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.initialized.Load() || a.dev == nil {
		return nil
	}

	if err := a.dev.Connect(ctx); err != nil && !errors.Is(err, yeelight.ErrAlreadyConnected) {
		a.logger.Warn("initialization connect failed", slog.String("error", err.Error()))
		return err
	}

	props, err := a.dev.Properties(ctx)
	if err != nil {
		a.logger.Warn("initialization property fetch failed", slog.String("error", err.Error()))
		return err
	}
	if len(props) == 0 {
		// No data means no device readiness: an empty set must not be
		// cached and must not mark the device initialized.
		a.logger.Warn("failed to retrieve device properties")
		return ErrEmptyProperties
	}

	if err := a.cache.Replace(props); err != nil {
		return err
	}

	spec, err := a.dev.ModelSpec(ctx)
	if err != nil {
		a.logger.Debug("capability discovery failed, using default spec",
			slog.String("error", err.Error()))
		a.capability = FallbackCapability()
	} else {
		a.capability = DiscoveredCapability(spec)
	}

	if a.capability.NightLight && a.registry.FieldByName(FieldNightLight) == nil {
		value := a.nightLite.decodeValue(props[yeelight.PropActiveMode])
		if value == "" {
			value = "0"
		}
		if err := a.registry.AddField(FieldSpec{
			Name:  FieldNightLight,
			High:  "1",
			Low:   "0",
			Kind:  FieldBinary,
			Value: value,
		}); err != nil {
			a.logger.Warn("night light registration failed", slog.String("error", err.Error()))
			return err
		}
	}

	for _, b := range a.bindings {
		raw, present := props[b.key]
		if !present || a.registry.FieldByName(b.field) != nil {
			continue
		}
		high, low := b.bounds(a.capability)
		if err := a.registry.AddField(FieldSpec{
			Name:  b.field,
			High:  high,
			Low:   low,
			Kind:  b.kind,
			Value: b.decodeValue(raw),
		}); err != nil {
			a.logger.Warn("field registration failed",
				slog.String("field", b.field),
				slog.String("error", err.Error()))
			return err
		}
	}

	a.initialized.Store(true)
	a.logger.Debug("device initialized",
		slog.String("capability_origin", a.capability.Origin.String()),
		slog.Int("properties", len(props)))
	return nil
}

// IsConnected reports whether the handle exists and initialization completed
func (a *Adapter) IsConnected() bool {
	return a.device() != nil && a.initialized.Load()
}

// Capability returns the capability spec in effect. Valid after Initialize.
func (a *Adapter) Capability() Capability {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.capability
}

// Cache returns the adapter's state cache
func (a *Adapter) Cache() *StateCache {
	return a.cache
}

// Poll reconciles the local mirror against the device and returns the set of
// fields whose decoded value changed. It returns an empty patch when there
// is no handle, when the minimum poll interval has not elapsed, or when the
// fetch fails (the stale cache is preserved).
func (a *Adapter) Poll(ctx context.Context) (Patch, error) {
	if a.device() == nil {
		return Patch{}, nil
	}

	// Fast path, read outside the device lock. Mildly racy under extreme
	// concurrency; worst case is one extra skipped poll.
	if a.now().Sub(a.cache.LastPoll()) < PollInterval {
		return Patch{}, nil
	}

	a.mu.Lock()
	dev := a.dev
	if dev == nil {
		a.mu.Unlock()
		return Patch{}, nil
	}

	props, err := dev.Properties(ctx)
	if err == nil && len(props) == 0 {
		err = ErrEmptyProperties
	}
	if err != nil {
		a.mu.Unlock()
		a.logger.Warn("poll failed", slog.String("error", err.Error()))
		return Patch{}, err
	}

	if err := a.cache.Replace(props); err != nil {
		a.mu.Unlock()
		return Patch{}, err
	}
	a.cache.MarkPolled(a.now())
	a.mu.Unlock()

	// Delta computation runs outside the lock: only field registry state is
	// touched from here on.
	patch := Patch{}
	for _, b := range a.allBindings() {
		raw, ok := props[b.key]
		if !ok {
			continue
		}
		field := a.registry.FieldByName(b.field)
		if field == nil {
			continue
		}
		value := b.decodeValue(raw)
		if field.Value() != value {
			field.SetValue(value)
			patch[b.field] = value
		}
	}

	return patch, nil
}

// SetValue writes a field. The registry's base write runs first, so the
// value is validated and persisted locally even if the device command then
// fails; the optimistic cache update is skipped in that case and the next
// poll reconverges. The scripted flag is passed through to the base write
// untouched.
func (a *Adapter) SetValue(ctx context.Context, fieldID, value string, scripted bool) error {
	field, err := a.registry.Field(fieldID)
	if err != nil {
		return err
	}
	name := field.Name()

	if err := a.registry.SetValue(ctx, fieldID, value, scripted); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.dev == nil {
		return nil
	}

	b := a.bindingByName(name)
	if b == nil {
		// Virtual or unmapped field: the base write is all there is.
		return nil
	}

	cacheValue, err := b.send(ctx, a.dev, a.peerValue, value)
	if err != nil {
		a.logger.Error("device write failed",
			slog.String("field", name),
			slog.String("error", err.Error()))
		return err
	}

	a.cache.Update(b.key, cacheValue)
	return nil
}

// bindingByName finds the binding for an abstract field name
func (a *Adapter) bindingByName(name string) *binding {
	for _, b := range a.allBindings() {
		if b.field == name {
			return b
		}
	}
	return nil
}

// peerValue resolves a companion field's current value for composed commands
func (a *Adapter) peerValue(name string) (string, error) {
	field := a.registry.FieldByName(name)
	if field == nil {
		return "", ErrUnknownField
	}
	return field.Value(), nil
}

// Close releases the device handle. Safe to call repeatedly; once closed,
// polls and writes perform no device I/O.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.dev == nil {
		return nil
	}

	err := a.dev.Close()
	a.dev = nil
	return err
}
