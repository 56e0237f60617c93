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
	"errors"
	"fmt"
)

// Sentinel errors
var (
	ErrTimeout          = errors.New("yeelight: request timeout")
	ErrConnectionClosed = errors.New("yeelight: connection closed")
	ErrInvalidResponse  = errors.New("yeelight: invalid response")
	ErrInvalidMessage   = errors.New("yeelight: invalid message")
	ErrNotConnected     = errors.New("yeelight: not connected")
	ErrAlreadyConnected = errors.New("yeelight: already connected")
	ErrNoAddress        = errors.New("yeelight: no device address configured")
	ErrUnknownModel     = errors.New("yeelight: unknown device model")
	ErrValueOutOfRange  = errors.New("yeelight: value out of range")
	ErrEmptyResult      = errors.New("yeelight: empty result")
)

// ErrorCode represents a device-reported error code
type ErrorCode int

const (
	// Codes observed from Yeelight firmware. The firmware reports most
	// failures as -1 or -5000 regardless of cause.
	ErrorCodeGeneral        ErrorCode = -1
	ErrorCodeQuotaExceeded  ErrorCode = -5001
	ErrorCodeInvalidCommand ErrorCode = -5000
)

func (e ErrorCode) String() string {
	names := map[ErrorCode]string{
		ErrorCodeGeneral:        "general-error",
		ErrorCodeQuotaExceeded:  "quota-exceeded",
		ErrorCodeInvalidCommand: "invalid-command",
	}
	if name, ok := names[e]; ok {
		return name
	}
	return fmt.Sprintf("error-code(%d)", int(e))
}

// DeviceError represents an error response reported by the device
type DeviceError struct {
	Code    ErrorCode
	Message string
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("yeelight device error: code=%s, message=%q", e.Code, e.Message)
}

func (e *DeviceError) Is(target error) bool {
	t, ok := target.(*DeviceError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDeviceError creates a new device error
func NewDeviceError(code ErrorCode, message string) *DeviceError {
	return &DeviceError{
		Code:    code,
		Message: message,
	}
}

// IsTimeout returns true if the error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsDeviceError returns true if the error was reported by the device rather
// than produced by the transport
func IsDeviceError(err error) bool {
	var devErr *DeviceError
	return errors.As(err, &devErr)
}

// IsQuotaExceeded returns true if the device rejected the command because the
// per-minute command quota was exhausted
func IsQuotaExceeded(err error) bool {
	var devErr *DeviceError
	if errors.As(err, &devErr) {
		return devErr.Code == ErrorCodeQuotaExceeded
	}
	return false
}
