package yeelight

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestEncodeRequestFraming(t *testing.T) {
	line, err := EncodeRequest(&Request{ID: 3, Method: MethodSetPower, Params: []any{"on", "smooth", 300}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.HasSuffix(line, []byte("\r\n")) {
		t.Fatalf("missing CRLF terminator: %q", line)
	}

	var req Request
	if err := json.Unmarshal(bytes.TrimSpace(line), &req); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if req.ID != 3 || req.Method != MethodSetPower || len(req.Params) != 3 {
		t.Fatalf("unexpected round trip %+v", req)
	}
}

func TestEncodeRequestNilParams(t *testing.T) {
	line, err := EncodeRequest(&Request{ID: 1, Method: MethodToggle})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	// The device rejects a missing params member; nil must serialize as [].
	if !bytes.Contains(line, []byte(`"params":[]`)) {
		t.Fatalf("nil params not encoded as empty array: %q", line)
	}
}

func TestEncodeRequestEmptyMethod(t *testing.T) {
	if _, err := EncodeRequest(&Request{ID: 1}); !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("expected ErrInvalidMessage, got %v", err)
	}
}

func TestDecodeMessage(t *testing.T) {
	cases := []struct {
		name string
		line string
		want func(*Message) bool
		err  bool
	}{
		{
			name: "result response",
			line: `{"id":7,"result":["ok"]}`,
			want: func(m *Message) bool {
				return m.Response != nil && m.Response.ID == 7 && m.Response.Error == nil
			},
		},
		{
			name: "error response",
			line: `{"id":2,"error":{"code":-5000,"message":"invalid command"}}`,
			want: func(m *Message) bool {
				return m.Response != nil && m.Response.Error != nil && m.Response.Error.Code == -5000
			},
		},
		{
			name: "props notification",
			line: `{"method":"props","params":{"power":"on","bright":50}}`,
			want: func(m *Message) bool {
				return m.Notification != nil && m.Notification.Method == NotificationMethodProps
			},
		},
		{
			name: "zero id response",
			line: `{"id":0,"result":["ok"]}`,
			want: func(m *Message) bool {
				return m.Response != nil && m.Response.ID == 0
			},
		},
		{name: "empty line", line: "", err: true},
		{name: "garbage", line: "not json", err: true},
		{name: "neither kind", line: `{"result":["ok"]}`, err: true},
	}

	for _, tc := range cases {
		msg, err := DecodeMessage([]byte(tc.line))
		if tc.err {
			if !errors.Is(err, ErrInvalidMessage) {
				t.Fatalf("%s: expected ErrInvalidMessage, got %v", tc.name, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: decode: %v", tc.name, err)
		}
		if !tc.want(msg) {
			t.Fatalf("%s: unexpected message %+v", tc.name, msg)
		}
	}
}

func TestDecodeMessageOversized(t *testing.T) {
	line := append([]byte(`{"id":1,"result":["`), bytes.Repeat([]byte("x"), MaxMessageSize)...)
	line = append(line, []byte(`"]}`)...)
	if _, err := DecodeMessage(line); !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("expected ErrInvalidMessage for oversized line, got %v", err)
	}
}

func TestResultStrings(t *testing.T) {
	got := ResultStrings([]any{"on", float64(50), float64(4000), true, nil})
	want := []string{"on", "50", "4000", "1", ""}
	if len(got) != len(want) {
		t.Fatalf("length mismatch: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestNotificationProps(t *testing.T) {
	n := &Notification{
		Method: NotificationMethodProps,
		Params: map[string]any{"power": "off", "bright": float64(25)},
	}
	props := NotificationProps(n)
	if props["power"] != "off" || props["bright"] != "25" {
		t.Fatalf("unexpected props %v", props)
	}
}
