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

package yeelight

import (
	"log/slog"
	"time"
)

// clientOptions holds configuration for the Yeelight client
type clientOptions struct {
	// Device configuration
	address string
	model   string

	// Transition applied to state-changing commands
	effect   Effect
	duration time.Duration

	// Timeouts
	timeout time.Duration

	// Logging
	logger *slog.Logger
}

// defaultOptions returns the default client options
func defaultOptions() *clientOptions {
	return &clientOptions{
		effect:   EffectSmooth,
		duration: 300 * time.Millisecond,
		timeout:  3 * time.Second,
		logger:   slog.Default(),
	}
}

// Option is a functional option for configuring the client
type Option func(*clientOptions)

// WithAddress sets the device address. The port defaults to DefaultPort
// when the address carries none.
func WithAddress(addr string) Option {
	return func(o *clientOptions) {
		o.address = addr
	}
}

// WithModel sets the device model identifier used for capability lookups
func WithModel(model string) Option {
	return func(o *clientOptions) {
		o.model = model
	}
}

// WithEffect sets the transition effect for state-changing commands
func WithEffect(effect Effect) Option {
	return func(o *clientOptions) {
		o.effect = effect
	}
}

// WithDuration sets the transition duration for smooth state changes.
// The firmware enforces a 30ms minimum.
func WithDuration(d time.Duration) Option {
	return func(o *clientOptions) {
		if d < 30*time.Millisecond {
			d = 30 * time.Millisecond
		}
		o.duration = d
	}
}

// WithTimeout sets the request timeout
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = d
	}
}

// WithLogger sets the logger for the client
func WithLogger(logger *slog.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}
