package yeelight

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/edgeo/drivers/yeelight/yeelight/internal/transport"
)

// ConnectionState represents the client connection state
type ConnectionState int32

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// NotificationHandler is called when an unsolicited props notification is
// received. The props map holds the changed properties in their normalized
// string form.
type NotificationHandler func(props map[string]string)

// Client is a Yeelight LAN-protocol client for a single device
type Client struct {
	opts      *clientOptions
	transport *transport.TCPTransport

	state     atomic.Int32
	requestID atomic.Int64

	// Pending requests
	pendingMu sync.RWMutex
	pending   map[int64]chan *Response

	// Notification subscribers
	notifyMu sync.RWMutex
	notify   []NotificationHandler

	// Metrics
	metrics *Metrics

	// Logger
	logger *slog.Logger

	// Receiver goroutine
	receiverCtx    context.Context
	receiverCancel context.CancelFunc
	receiverDone   chan struct{}
}

// NewClient creates a new Yeelight client
func NewClient(opts ...Option) (*Client, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	if options.address == "" {
		return nil, ErrNoAddress
	}

	c := &Client{
		opts:    options,
		pending: make(map[int64]chan *Response),
		metrics: NewMetrics(),
		logger:  options.logger,
	}

	// Create transport
	c.transport = transport.NewTCPTransport(options.address, DefaultPort)
	c.transport.SetReadTimeout(options.timeout)
	c.transport.SetWriteTimeout(options.timeout)

	return c, nil
}

// Connect opens the connection to the device
func (c *Client) Connect(ctx context.Context) error {
	if !c.state.CompareAndSwap(int32(StateDisconnected), int32(StateConnecting)) {
		return ErrAlreadyConnected
	}

	c.metrics.ConnectAttempts.Inc()

	if err := c.transport.Open(ctx); err != nil {
		c.state.Store(int32(StateDisconnected))
		c.metrics.ConnectFailures.Inc()
		return fmt.Errorf("open transport: %w", err)
	}

	// Start receiver goroutine
	c.receiverCtx, c.receiverCancel = context.WithCancel(context.Background())
	c.receiverDone = make(chan struct{})
	go c.receiver()

	c.state.Store(int32(StateConnected))
	c.metrics.ConnectSuccesses.Inc()

	c.logger.Info("connected",
		slog.String("remote_addr", c.transport.RemoteAddr().String()),
	)

	return nil
}

// Close closes the connection
func (c *Client) Close() error {
	if c.state.Load() == int32(StateDisconnected) {
		return nil
	}

	c.state.Store(int32(StateDisconnected))
	c.metrics.Disconnects.Inc()

	// Stop receiver
	if c.receiverCancel != nil {
		c.receiverCancel()
	}

	if err := c.transport.Close(); err != nil {
		return fmt.Errorf("close transport: %w", err)
	}

	if c.receiverDone != nil {
		<-c.receiverDone
	}

	// Close pending requests
	c.pendingMu.Lock()
	for _, ch := range c.pending {
		close(ch)
	}
	c.pending = make(map[int64]chan *Response)
	c.pendingMu.Unlock()

	c.logger.Info("disconnected")
	return nil
}

// State returns the current connection state
func (c *Client) State() ConnectionState {
	return ConnectionState(c.state.Load())
}

// Metrics returns the client metrics
func (c *Client) Metrics() *Metrics {
	return c.metrics
}

// Address returns the configured device address
func (c *Client) Address() string {
	return c.opts.address
}

// Model returns the configured device model identifier
func (c *Client) Model() string {
	return c.opts.model
}

// OnNotification registers a handler for unsolicited props notifications.
// Handlers run on the receiver goroutine and must not block.
func (c *Client) OnNotification(h NotificationHandler) {
	c.notifyMu.Lock()
	c.notify = append(c.notify, h)
	c.notifyMu.Unlock()
}

// nextRequestID returns the next request ID
func (c *Client) nextRequestID() int64 {
	return c.requestID.Add(1)
}

// receiver handles incoming protocol lines
func (c *Client) receiver() {
	defer close(c.receiverDone)

	for {
		select {
		case <-c.receiverCtx.Done():
			return
		default:
		}

		line, err := c.transport.ReceiveLineWithTimeout(100 * time.Millisecond)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			if c.transport.IsClosed() {
				return
			}
			c.logger.Debug("receive error", slog.String("error", err.Error()))
			continue
		}

		c.metrics.BytesReceived.Add(int64(len(line)))
		c.metrics.RecordActivity()

		c.handleLine(line)
	}
}

// handleLine processes an incoming protocol line
func (c *Client) handleLine(line []byte) {
	msg, err := DecodeMessage(line)
	if err != nil {
		c.logger.Debug("invalid message", slog.String("error", err.Error()))
		return
	}

	if msg.Notification != nil {
		c.handleNotification(msg.Notification)
		return
	}

	c.metrics.ResponsesReceived.Inc()
	if msg.Response.Error != nil {
		c.metrics.ErrorsReceived.Inc()
	}
	c.handleResponse(msg.Response)
}

// handleNotification dispatches a props notification to subscribers
func (c *Client) handleNotification(n *Notification) {
	c.metrics.NotificationsReceived.Inc()

	if n.Method != NotificationMethodProps {
		c.logger.Debug("unknown notification method", slog.String("method", n.Method))
		return
	}

	props := NotificationProps(n)

	c.notifyMu.RLock()
	handlers := make([]NotificationHandler, len(c.notify))
	copy(handlers, c.notify)
	c.notifyMu.RUnlock()

	for _, h := range handlers {
		h(props)
	}
}

// handleResponse handles a response to a pending request
func (c *Client) handleResponse(resp *Response) {
	c.pendingMu.RLock()
	ch, ok := c.pending[resp.ID]
	c.pendingMu.RUnlock()

	if ok {
		select {
		case ch <- resp:
		default:
		}
	}
}

// Call sends a request and waits for the matching response. The returned
// slice is the raw result array of a successful response.
func (c *Client) Call(ctx context.Context, method string, params ...any) ([]any, error) {
	if c.State() != StateConnected {
		return nil, ErrNotConnected
	}

	id := c.nextRequestID()

	// Create response channel
	respCh := make(chan *Response, 1)
	c.pendingMu.Lock()
	c.pending[id] = respCh
	c.pendingMu.Unlock()

	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
	}()

	line, err := EncodeRequest(&Request{ID: id, Method: method, Params: params})
	if err != nil {
		return nil, err
	}

	// Send request
	start := time.Now()
	c.metrics.RequestsSent.Inc()
	c.metrics.ActiveRequests.Inc()
	defer c.metrics.ActiveRequests.Dec()

	if err := c.transport.Send(ctx, line); err != nil {
		c.metrics.RequestsFailed.Inc()
		return nil, fmt.Errorf("send request: %w", err)
	}

	c.metrics.BytesSent.Add(int64(len(line)))

	// Wait for response
	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.Canceled) {
			c.metrics.RequestsFailed.Inc()
			return nil, fmt.Errorf("call %s: %w", method, ctx.Err())
		}
		c.metrics.RequestsTimedOut.Inc()
		return nil, ErrTimeout

	case resp, ok := <-respCh:
		c.metrics.RequestLatency.Record(time.Since(start))

		if !ok {
			return nil, ErrConnectionClosed
		}

		if resp.Error != nil {
			c.metrics.RequestsFailed.Inc()
			return nil, NewDeviceError(ErrorCode(resp.Error.Code), resp.Error.Message)
		}

		c.metrics.RequestsSucceeded.Inc()
		return resp.Result, nil
	}
}

// Command sends a state-changing request and discards the "ok" result
func (c *Client) Command(ctx context.Context, method string, params ...any) error {
	_, err := c.Call(ctx, method, params...)
	return err
}

// effectParams returns the transition arguments appended to state-changing
// commands.
func (c *Client) effectParams() []any {
	return []any{string(c.opts.effect), int(c.opts.duration.Milliseconds())}
}

// Properties fetches device properties in a single get_prop call. With no
// names it requests TrackedProperties. Properties the device does not
// support come back as empty strings and are dropped from the result, so
// the returned map may be partial. PropCurrentBrightness is synthesized
// from nl_br or bright depending on active_mode.
func (c *Client) Properties(ctx context.Context, names ...string) (map[string]string, error) {
	if len(names) == 0 {
		names = TrackedProperties
	}

	params := make([]any, len(names))
	for i, n := range names {
		params[i] = n
	}

	result, err := c.Call(ctx, MethodGetProp, params...)
	if err != nil {
		return nil, err
	}
	if len(result) != len(names) {
		return nil, fmt.Errorf("%w: got %d values for %d properties", ErrInvalidResponse, len(result), len(names))
	}

	values := ResultStrings(result)
	props := make(map[string]string, len(names))
	for i, name := range names {
		if values[i] == "" {
			continue
		}
		props[name] = values[i]
	}

	synthesizeCurrentBrightness(props)

	return props, nil
}

// synthesizeCurrentBrightness derives PropCurrentBrightness: nl_br while in
// moonlight mode, bright otherwise.
func synthesizeCurrentBrightness(props map[string]string) {
	if props[PropActiveMode] == "1" {
		if nl, ok := props[PropNlBr]; ok {
			props[PropCurrentBrightness] = nl
			return
		}
	}
	if br, ok := props[PropBright]; ok {
		props[PropCurrentBrightness] = br
	}
}

// SetPower turns the main light on or off
func (c *Client) SetPower(ctx context.Context, on bool) error {
	params := append([]any{PowerValue(on)}, c.effectParams()...)
	return c.Command(ctx, MethodSetPower, params...)
}

// SetPowerMode turns the main light on in the given mode
func (c *Client) SetPowerMode(ctx context.Context, mode PowerMode) error {
	params := append([]any{PowerValue(true)}, c.effectParams()...)
	if mode != PowerModeLast {
		params = append(params, int(mode))
	}
	return c.Command(ctx, MethodSetPower, params...)
}

// SetBrightness sets the main light brightness (1-100)
func (c *Client) SetBrightness(ctx context.Context, level int) error {
	if err := ValidateBrightness(level); err != nil {
		return err
	}
	params := append([]any{level}, c.effectParams()...)
	return c.Command(ctx, MethodSetBright, params...)
}

// SetColorTemp sets the main light color temperature in Kelvin
func (c *Client) SetColorTemp(ctx context.Context, kelvin int) error {
	if err := ValidateColorTemp(kelvin, ColorTempMin, ColorTempMax); err != nil {
		return err
	}
	params := append([]any{kelvin}, c.effectParams()...)
	return c.Command(ctx, MethodSetCtAbx, params...)
}

// SetHSV sets the main light hue and saturation
func (c *Client) SetHSV(ctx context.Context, hue, sat int) error {
	if err := ValidateHSV(hue, sat); err != nil {
		return err
	}
	params := append([]any{hue, sat}, c.effectParams()...)
	return c.Command(ctx, MethodSetHSV, params...)
}

// Toggle toggles the main light power state
func (c *Client) Toggle(ctx context.Context) error {
	return c.Command(ctx, MethodToggle)
}

// BackgroundCommand sends a state-changing command for the auxiliary
// (background) light channel, appending the transition arguments.
func (c *Client) BackgroundCommand(ctx context.Context, method string, params ...any) error {
	return c.Command(ctx, method, append(params, c.effectParams()...)...)
}

// ModelSpec returns the capability spec for the configured model. Models
// absent from the built-in table yield ErrUnknownModel; callers are expected
// to substitute DefaultSpec.
func (c *Client) ModelSpec(ctx context.Context) (ModelSpec, error) {
	if c.opts.model == "" {
		return ModelSpec{}, ErrUnknownModel
	}
	spec, ok := LookupSpec(c.opts.model)
	if !ok {
		return ModelSpec{}, fmt.Errorf("%w: %q", ErrUnknownModel, c.opts.model)
	}
	return spec, nil
}
