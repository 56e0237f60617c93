package yeelight

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"
)

// fakeBulb is a loopback TCP server speaking the newline-framed protocol.
type fakeBulb struct {
	t  *testing.T
	ln net.Listener

	mu     sync.Mutex
	conn   net.Conn
	handle func(req *Request) *Response

	reqMu    sync.Mutex
	requests []*Request
}

func newFakeBulb(t *testing.T, handle func(req *Request) *Response) *fakeBulb {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	b := &fakeBulb{t: t, ln: ln, handle: handle}
	go b.serve()
	t.Cleanup(func() {
		b.ln.Close()
		b.mu.Lock()
		if b.conn != nil {
			b.conn.Close()
		}
		b.mu.Unlock()
	})
	return b
}

func (b *fakeBulb) addr() string {
	return b.ln.Addr().String()
}

func (b *fakeBulb) serve() {
	conn, err := b.ln.Accept()
	if err != nil {
		return
	}
	b.mu.Lock()
	b.conn = conn
	b.mu.Unlock()

	r := bufio.NewReader(conn)
	for {
		line, err := r.ReadBytes('\n')
		if err != nil {
			return
		}
		var req Request
		if err := json.Unmarshal(bytes.TrimSpace(line), &req); err != nil {
			continue
		}
		b.reqMu.Lock()
		b.requests = append(b.requests, &req)
		b.reqMu.Unlock()

		resp := b.handle(&req)
		if resp == nil {
			continue
		}
		data, err := json.Marshal(resp)
		if err != nil {
			b.t.Errorf("marshal response: %v", err)
			return
		}
		conn.Write(append(data, '\r', '\n'))
	}
}

// push sends an unsolicited props notification to the connected client
func (b *fakeBulb) push(params map[string]any) error {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()
	if conn == nil {
		return errors.New("no client connected")
	}
	data, err := json.Marshal(&Notification{Method: NotificationMethodProps, Params: params})
	if err != nil {
		return err
	}
	_, err = conn.Write(append(data, '\r', '\n'))
	return err
}

// send writes raw bytes to the connected client, bypassing framing
func (b *fakeBulb) send(raw []byte) error {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()
	if conn == nil {
		return errors.New("no client connected")
	}
	_, err := conn.Write(raw)
	return err
}

func (b *fakeBulb) requestLog() []*Request {
	b.reqMu.Lock()
	defer b.reqMu.Unlock()
	return append([]*Request(nil), b.requests...)
}

// okHandler answers every request with ["ok"], serving get_prop from the
// given property map (missing properties come back as empty strings).
func okHandler(state map[string]string) func(req *Request) *Response {
	return func(req *Request) *Response {
		if req.Method != MethodGetProp {
			return &Response{ID: req.ID, Result: []any{"ok"}}
		}
		result := make([]any, len(req.Params))
		for i, p := range req.Params {
			name, _ := p.(string)
			result[i] = state[name]
		}
		return &Response{ID: req.ID, Result: result}
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func connectedClient(t *testing.T, bulb *fakeBulb, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{
		WithAddress(bulb.addr()),
		WithTimeout(2 * time.Second),
		WithLogger(testLogger()),
	}, opts...)
	c, err := NewClient(opts...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestNewClientRequiresAddress(t *testing.T) {
	if _, err := NewClient(); !errors.Is(err, ErrNoAddress) {
		t.Fatalf("expected ErrNoAddress, got %v", err)
	}
}

func TestClientConnectLifecycle(t *testing.T) {
	bulb := newFakeBulb(t, okHandler(nil))
	c := connectedClient(t, bulb)

	if c.State() != StateConnected {
		t.Fatalf("expected connected state, got %v", c.State())
	}
	if err := c.Connect(context.Background()); !errors.Is(err, ErrAlreadyConnected) {
		t.Fatalf("expected ErrAlreadyConnected, got %v", err)
	}

	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if c.State() != StateDisconnected {
		t.Fatalf("expected disconnected state, got %v", c.State())
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestClientCallRequiresConnection(t *testing.T) {
	bulb := newFakeBulb(t, okHandler(nil))
	c, err := NewClient(WithAddress(bulb.addr()), WithLogger(testLogger()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := c.Call(context.Background(), MethodGetProp, "power"); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestClientProperties(t *testing.T) {
	bulb := newFakeBulb(t, okHandler(map[string]string{
		PropPower:  "on",
		PropBright: "80",
		PropCt:     "4000",
	}))
	c := connectedClient(t, bulb)

	props, err := c.Properties(context.Background())
	if err != nil {
		t.Fatalf("properties: %v", err)
	}
	if props[PropPower] != "on" || props[PropBright] != "80" {
		t.Fatalf("unexpected props %v", props)
	}
	// Unsupported properties are dropped rather than reported empty.
	if _, ok := props[PropBgPower]; ok {
		t.Fatalf("empty property leaked into result: %v", props)
	}
	// Normal mode: current_brightness mirrors bright.
	if props[PropCurrentBrightness] != "80" {
		t.Fatalf("current_brightness: expected 80, got %q", props[PropCurrentBrightness])
	}
}

func TestClientPropertiesMoonlightBrightness(t *testing.T) {
	bulb := newFakeBulb(t, okHandler(map[string]string{
		PropPower:      "on",
		PropBright:     "80",
		PropNlBr:       "15",
		PropActiveMode: "1",
	}))
	c := connectedClient(t, bulb)

	props, err := c.Properties(context.Background())
	if err != nil {
		t.Fatalf("properties: %v", err)
	}
	if props[PropCurrentBrightness] != "15" {
		t.Fatalf("moonlight brightness: expected 15, got %q", props[PropCurrentBrightness])
	}
}

func TestClientSetPowerWiresEffectParams(t *testing.T) {
	bulb := newFakeBulb(t, okHandler(nil))
	c := connectedClient(t, bulb)

	if err := c.SetPower(context.Background(), true); err != nil {
		t.Fatalf("set power: %v", err)
	}

	log := bulb.requestLog()
	if len(log) != 1 {
		t.Fatalf("expected one request, got %d", len(log))
	}
	req := log[0]
	if req.Method != MethodSetPower {
		t.Fatalf("unexpected method %q", req.Method)
	}
	// "on", effect name, duration ms
	if len(req.Params) != 3 || req.Params[0] != "on" || req.Params[1] != "smooth" {
		t.Fatalf("unexpected params %v", req.Params)
	}
}

func TestClientSetPowerModeAppendsMode(t *testing.T) {
	bulb := newFakeBulb(t, okHandler(nil))
	c := connectedClient(t, bulb)

	if err := c.SetPowerMode(context.Background(), PowerModeMoonlight); err != nil {
		t.Fatalf("set power mode: %v", err)
	}
	req := bulb.requestLog()[0]
	if len(req.Params) != 4 {
		t.Fatalf("expected 4 params, got %v", req.Params)
	}
	if mode, ok := req.Params[3].(float64); !ok || int(mode) != int(PowerModeMoonlight) {
		t.Fatalf("mode param: %v", req.Params[3])
	}
}

func TestClientValidationShortCircuits(t *testing.T) {
	bulb := newFakeBulb(t, okHandler(nil))
	c := connectedClient(t, bulb)

	if err := c.SetBrightness(context.Background(), 0); !errors.Is(err, ErrValueOutOfRange) {
		t.Fatalf("expected ErrValueOutOfRange, got %v", err)
	}
	if err := c.SetHSV(context.Background(), 400, 50); !errors.Is(err, ErrValueOutOfRange) {
		t.Fatalf("expected ErrValueOutOfRange, got %v", err)
	}
	if got := len(bulb.requestLog()); got != 0 {
		t.Fatalf("invalid values reached the device: %d requests", got)
	}
}

func TestClientDeviceError(t *testing.T) {
	bulb := newFakeBulb(t, func(req *Request) *Response {
		return &Response{ID: req.ID, Error: &ResponseError{Code: -5000, Message: "invalid command"}}
	})
	c := connectedClient(t, bulb)

	_, err := c.Call(context.Background(), "no_such_method")
	if err == nil {
		t.Fatal("expected device error")
	}
	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		t.Fatalf("expected DeviceError, got %T: %v", err, err)
	}
	if devErr.Code != ErrorCodeInvalidCommand {
		t.Fatalf("unexpected code %d", devErr.Code)
	}
}

func TestClientCallTimeout(t *testing.T) {
	bulb := newFakeBulb(t, func(req *Request) *Response {
		return nil // swallow the request
	})
	c := connectedClient(t, bulb)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if _, err := c.Call(ctx, MethodGetProp, "power"); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestClientCallFragmentedResponse(t *testing.T) {
	// Answer in two bursts separated well beyond the receiver's read
	// deadline; the first half of the line must not be dropped.
	var bulb *fakeBulb
	bulb = newFakeBulb(t, func(req *Request) *Response {
		data, err := json.Marshal(&Response{ID: req.ID, Result: []any{"ok"}})
		if err != nil {
			t.Errorf("marshal response: %v", err)
			return nil
		}
		data = append(data, '\r', '\n')
		half := len(data) / 2
		go func() {
			bulb.send(data[:half])
			time.Sleep(300 * time.Millisecond)
			bulb.send(data[half:])
		}()
		return nil
	})
	c := connectedClient(t, bulb)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	result, err := c.Call(ctx, MethodSetPower, "on")
	if err != nil {
		t.Fatalf("call across split response: %v", err)
	}
	if len(result) != 1 || result[0] != "ok" {
		t.Fatalf("expected [ok], got %v", result)
	}
}

func TestClientCallCanceled(t *testing.T) {
	bulb := newFakeBulb(t, func(req *Request) *Response {
		return nil // swallow the request
	})
	c := connectedClient(t, bulb)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := c.Call(ctx, MethodGetProp, "power")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if errors.Is(err, ErrTimeout) {
		t.Fatalf("cancellation reported as timeout: %v", err)
	}

	snap := c.Metrics().Snapshot()
	if snap.RequestsTimedOut != 0 {
		t.Fatalf("cancellation counted as timeout: %d", snap.RequestsTimedOut)
	}
	if snap.RequestsFailed != 1 {
		t.Fatalf("expected 1 failed request, got %d", snap.RequestsFailed)
	}
}

func TestClientNotificationDispatch(t *testing.T) {
	bulb := newFakeBulb(t, okHandler(nil))
	c := connectedClient(t, bulb)

	got := make(chan map[string]string, 1)
	c.OnNotification(func(props map[string]string) {
		select {
		case got <- props:
		default:
		}
	})

	if err := bulb.push(map[string]any{"power": "on", "bright": float64(35)}); err != nil {
		t.Fatalf("push: %v", err)
	}

	select {
	case props := <-got:
		if props["power"] != "on" || props["bright"] != "35" {
			t.Fatalf("unexpected props %v", props)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("notification not delivered")
	}
}

func TestClientModelSpec(t *testing.T) {
	bulb := newFakeBulb(t, okHandler(nil))
	c := connectedClient(t, bulb, WithModel("ceiling4"))

	spec, err := c.ModelSpec(context.Background())
	if err != nil {
		t.Fatalf("model spec: %v", err)
	}
	if spec.Model != "ceiling4" || !spec.NightLight {
		t.Fatalf("unexpected spec %+v", spec)
	}

	noModel := connectedClient(t, newFakeBulb(t, okHandler(nil)))
	if _, err := noModel.ModelSpec(context.Background()); !errors.Is(err, ErrUnknownModel) {
		t.Fatalf("expected ErrUnknownModel, got %v", err)
	}
}
