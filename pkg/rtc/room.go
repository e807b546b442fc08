package rtc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/atelierlabs/design-tutor/internal/metrics"
)

const (
	defaultCallTimeout      = 10 * time.Second
	defaultPingInterval     = 20 * time.Second
	defaultWriteTimeout     = 5 * time.Second
	defaultHandshakeTimeout = 10 * time.Second

	audioFrameBuffer = 128
	outboundBuffer   = 64
)

// ConnectOptions configures a room connection.
type ConnectOptions struct {
	// URL is the ws(s):// endpoint of the room server.
	URL string
	// Room is the room name to join.
	Room string
	// Identity is this participant's identity within the room.
	Identity string
	// Token, when set, is sent as a bearer credential during the handshake.
	Token string

	// CallTimeout bounds PerformRPC when the caller's context has no
	// earlier deadline. Defaults to 10s.
	CallTimeout time.Duration
	// PingInterval is the keepalive ping cadence. Defaults to 20s.
	PingInterval time.Duration
	// WriteTimeout bounds each socket write. Defaults to 5s.
	WriteTimeout time.Duration

	Logger *slog.Logger
}

type rpcResult struct {
	payload string
	errMsg  string
}

type wsRoom struct {
	conn     *websocket.Conn
	identity string
	logger   *slog.Logger

	callTimeout time.Duration

	mu       sync.Mutex
	remotes  []*remoteParticipant // join order
	handlers map[string]RPCHandler
	pending  map[string]chan rpcResult

	outbound chan outboundFrame
	audioIn  chan []byte

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	local *localParticipant
}

type remoteParticipant struct {
	identity string
}

func (p *remoteParticipant) Identity() string { return p.identity }

type localParticipant struct {
	room *wsRoom
}

func (p *localParticipant) Identity() string { return p.room.identity }

func (p *localParticipant) PerformRPC(ctx context.Context, destinationIdentity, method, payload string) (string, error) {
	return p.room.performRPC(ctx, destinationIdentity, method, payload)
}

func (p *localParticipant) RegisterRPCMethod(method string, handler RPCHandler) {
	p.room.mu.Lock()
	p.room.handlers[method] = handler
	p.room.mu.Unlock()
}

func (p *localParticipant) PublishAudio(frame []byte) error {
	return p.room.enqueue(outboundFrame{binary: frame})
}

// Connect joins a room and returns once the server has acknowledged the join
// with the current participant roster.
func Connect(ctx context.Context, opts ConnectOptions) (Room, error) {
	if strings.TrimSpace(opts.URL) == "" {
		return nil, fmt.Errorf("rtc: room URL is required")
	}
	if strings.TrimSpace(opts.Identity) == "" {
		return nil, fmt.Errorf("rtc: identity is required")
	}

	u, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("rtc: parse room URL: %w", err)
	}
	q := u.Query()
	if opts.Room != "" {
		q.Set("room", opts.Room)
	}
	q.Set("identity", opts.Identity)
	u.RawQuery = q.Encode()

	header := http.Header{}
	if opts.Token != "" {
		header.Set("Authorization", "Bearer "+opts.Token)
	}

	dialer := websocket.Dialer{HandshakeTimeout: defaultHandshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("rtc: connect (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("rtc: connect: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	roomCtx, cancel := context.WithCancel(context.Background())
	r := &wsRoom{
		conn:        conn,
		identity:    opts.Identity,
		logger:      logger.With("room", opts.Room, "identity", opts.Identity),
		callTimeout: opts.CallTimeout,
		handlers:    make(map[string]RPCHandler),
		pending:     make(map[string]chan rpcResult),
		outbound:    make(chan outboundFrame, outboundBuffer),
		audioIn:     make(chan []byte, audioFrameBuffer),
		ctx:         roomCtx,
		cancel:      cancel,
	}
	if r.callTimeout <= 0 {
		r.callTimeout = defaultCallTimeout
	}
	r.local = &localParticipant{room: r}

	// The server speaks first: a welcome envelope with the current roster.
	deadline := time.Now().Add(defaultHandshakeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetReadDeadline(deadline)
	var welcome envelope
	if err := conn.ReadJSON(&welcome); err != nil {
		_ = conn.Close()
		cancel()
		return nil, fmt.Errorf("rtc: read welcome: %w", err)
	}
	if welcome.Type != msgWelcome {
		_ = conn.Close()
		cancel()
		return nil, fmt.Errorf("rtc: expected welcome, got %q", welcome.Type)
	}
	_ = conn.SetReadDeadline(time.Time{})
	for _, identity := range welcome.Identities {
		if identity != opts.Identity {
			r.remotes = append(r.remotes, &remoteParticipant{identity: identity})
		}
	}

	writer := &outboundWriter{
		conn:         conn,
		ctx:          roomCtx,
		frames:       r.outbound,
		pingInterval: opts.PingInterval,
		writeTimeout: opts.WriteTimeout,
	}
	go func() {
		if err := writer.Run(); err != nil {
			r.logger.Warn("room writer stopped", "error", err)
		}
		r.shutdown()
	}()
	go r.readLoop()

	r.logger.Info("joined room", "remote_participants", len(r.remotes))
	return r, nil
}

func (r *wsRoom) LocalParticipant() LocalParticipant { return r.local }

func (r *wsRoom) RemoteParticipants() []RemoteParticipant {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RemoteParticipant, len(r.remotes))
	for i, p := range r.remotes {
		out[i] = p
	}
	return out
}

func (r *wsRoom) AudioFrames() <-chan []byte { return r.audioIn }

func (r *wsRoom) Close() error {
	r.shutdown()
	return nil
}

func (r *wsRoom) shutdown() {
	r.closeOnce.Do(func() {
		r.cancel()
		_ = r.conn.Close()

		// Fail every in-flight call so callers don't wait out their timeout.
		r.mu.Lock()
		pending := r.pending
		r.pending = make(map[string]chan rpcResult)
		r.mu.Unlock()
		for _, ch := range pending {
			select {
			case ch <- rpcResult{errMsg: ErrRoomClosed.Error()}:
			default:
			}
		}
	})
}

func (r *wsRoom) enqueue(frame outboundFrame) error {
	if r.ctx.Err() != nil {
		return ErrRoomClosed
	}
	select {
	case r.outbound <- frame:
		return nil
	default:
		return fmt.Errorf("rtc: outbound queue full")
	}
}

func (r *wsRoom) performRPC(ctx context.Context, destinationIdentity, method, payload string) (string, error) {
	id := uuid.NewString()
	ch := make(chan rpcResult, 1)

	r.mu.Lock()
	r.pending[id] = ch
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		delete(r.pending, id)
		r.mu.Unlock()
	}()

	data, err := json.Marshal(envelope{
		Type:    msgRPCRequest,
		ID:      id,
		From:    r.identity,
		To:      destinationIdentity,
		Method:  method,
		Payload: payload,
	})
	if err != nil {
		return "", fmt.Errorf("rtc: encode rpc request: %w", err)
	}
	if err := r.enqueue(outboundFrame{text: data}); err != nil {
		metrics.RPCOutbound.WithLabelValues(method, "send_failed").Inc()
		return "", err
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.callTimeout)
		defer cancel()
	}

	select {
	case res := <-ch:
		if res.errMsg != "" {
			metrics.RPCOutbound.WithLabelValues(method, "error").Inc()
			return "", &RPCError{Method: method, Message: res.errMsg}
		}
		metrics.RPCOutbound.WithLabelValues(method, "ok").Inc()
		return res.payload, nil
	case <-ctx.Done():
		metrics.RPCOutbound.WithLabelValues(method, "timeout").Inc()
		return "", ctx.Err()
	case <-r.ctx.Done():
		metrics.RPCOutbound.WithLabelValues(method, "closed").Inc()
		return "", ErrRoomClosed
	}
}

func (r *wsRoom) readLoop() {
	// The read loop is the sole sender on audioIn, so it also closes it.
	defer close(r.audioIn)
	defer r.shutdown()

	for {
		msgType, data, err := r.conn.ReadMessage()
		if err != nil {
			if r.ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				r.logger.Warn("room read failed", "error", err)
			}
			return
		}

		if msgType == websocket.BinaryMessage {
			frame := make([]byte, len(data))
			copy(frame, data)
			select {
			case r.audioIn <- frame:
			default:
				// Audio is lossy by nature; drop rather than stall the reader.
			}
			continue
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			r.logger.Warn("malformed envelope", "error", err)
			continue
		}

		switch env.Type {
		case msgJoin:
			r.addRemote(env.Identity)
		case msgLeave:
			r.removeRemote(env.Identity)
		case msgRPCRequest:
			go r.dispatchRPC(env)
		case msgRPCResponse:
			r.mu.Lock()
			ch := r.pending[env.ID]
			r.mu.Unlock()
			if ch == nil {
				r.logger.Debug("response for unknown call", "id", env.ID)
				continue
			}
			select {
			case ch <- rpcResult{payload: env.Payload, errMsg: env.Error}:
			default:
			}
		default:
			r.logger.Debug("unknown envelope type", "type", env.Type)
		}
	}
}

func (r *wsRoom) addRemote(identity string) {
	if identity == "" || identity == r.identity {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.remotes {
		if p.identity == identity {
			return
		}
	}
	r.remotes = append(r.remotes, &remoteParticipant{identity: identity})
	r.logger.Info("participant joined", "participant", identity)
}

func (r *wsRoom) removeRemote(identity string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.remotes {
		if p.identity == identity {
			r.remotes = append(r.remotes[:i], r.remotes[i+1:]...)
			r.logger.Info("participant left", "participant", identity)
			return
		}
	}
}

// dispatchRPC runs an inbound call and always answers it. Handler panics are
// converted to error responses so a misbehaving handler cannot take the
// connection down.
func (r *wsRoom) dispatchRPC(env envelope) {
	metrics.RPCInbound.WithLabelValues(env.Method).Inc()

	r.mu.Lock()
	handler := r.handlers[env.Method]
	r.mu.Unlock()

	resp := envelope{Type: msgRPCResponse, ID: env.ID, From: r.identity, To: env.From}
	if handler == nil {
		resp.Error = "unknown method: " + env.Method
	} else {
		result, err := invokeHandler(r.ctx, handler, RPCInvocation{
			CallerIdentity: env.From,
			Method:         env.Method,
			Payload:        env.Payload,
		})
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Payload = result
		}
	}

	data, err := json.Marshal(resp)
	if err != nil {
		r.logger.Error("encode rpc response", "method", env.Method, "error", err)
		return
	}
	if err := r.enqueue(outboundFrame{text: data}); err != nil {
		r.logger.Warn("rpc response not sent", "method", env.Method, "error", err)
	}
}

func invokeHandler(ctx context.Context, handler RPCHandler, inv RPCInvocation) (result string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handler panic: %v", rec)
		}
	}()
	return handler(ctx, inv)
}
