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
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Request is a command sent to the device. Each request carries a client
// assigned id which the device echoes back in its response.
type Request struct {
	ID     int64  `json:"id"`
	Method string `json:"method"`
	Params []any  `json:"params"`
}

// Response is the device's reply to a request. Exactly one of Result or
// Error is set.
type Response struct {
	ID     int64          `json:"id"`
	Result []any          `json:"result,omitempty"`
	Error  *ResponseError `json:"error,omitempty"`
}

// ResponseError is the error object embedded in a failed response
type ResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Notification is an unsolicited state report pushed by the device when one
// of its properties changes, regardless of what caused the change.
type Notification struct {
	Method string         `json:"method"`
	Params map[string]any `json:"params"`
}

// NotificationMethodProps is the only notification method the protocol
// defines.
const NotificationMethodProps = "props"

// EncodeRequest encodes a request as a single protocol line. The protocol is
// newline framed: one JSON document per line, terminated by CRLF.
func EncodeRequest(req *Request) ([]byte, error) {
	if req.Method == "" {
		return nil, fmt.Errorf("%w: empty method", ErrInvalidMessage)
	}
	if req.Params == nil {
		req.Params = []any{}
	}
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return append(data, '\r', '\n'), nil
}

// Message is a decoded protocol line: either a response or a notification.
type Message struct {
	Response     *Response
	Notification *Notification
}

// DecodeMessage decodes a single protocol line. Lines carrying a "method"
// member are notifications; everything else must be a response with an id.
func DecodeMessage(line []byte) (*Message, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil, fmt.Errorf("%w: empty line", ErrInvalidMessage)
	}
	if len(line) > MaxMessageSize {
		return nil, fmt.Errorf("%w: line exceeds %d bytes", ErrInvalidMessage, MaxMessageSize)
	}

	var probe struct {
		ID     *int64 `json:"id"`
		Method string `json:"method"`
	}
	if err := json.Unmarshal(line, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	if probe.Method != "" {
		var notif Notification
		if err := json.Unmarshal(line, &notif); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
		}
		return &Message{Notification: &notif}, nil
	}

	if probe.ID == nil {
		return nil, fmt.Errorf("%w: neither response nor notification", ErrInvalidMessage)
	}

	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return &Message{Response: &resp}, nil
}

// ResultStrings converts a result array to strings. The firmware reports
// property values as strings but some models answer numerics for a few
// properties; normalize everything to the string form callers expect.
func ResultStrings(result []any) []string {
	out := make([]string, len(result))
	for i, v := range result {
		out[i] = stringifyValue(v)
	}
	return out
}

// NotificationProps converts notification params to the same normalized
// string map produced by a get_prop fetch.
func NotificationProps(n *Notification) map[string]string {
	props := make(map[string]string, len(n.Params))
	for k, v := range n.Params {
		props[k] = stringifyValue(v)
	}
	return props
}

func stringifyValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		// JSON numbers decode as float64; property values are integral
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprintf("%v", t)
	}
}
