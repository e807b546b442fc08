// Package rtc provides the real-time room abstraction the agent talks
// through: participants sharing a room, a request/response call primitive
// addressed by participant identity and method name, and raw audio frames.
//
// The concrete implementation in this package speaks a small JSON envelope
// protocol over a WebSocket connection to a room server. The core of the
// agent only depends on the interfaces here, so tests substitute fakes.
package rtc

import (
	"context"
	"errors"
	"fmt"
)

// ErrRoomClosed is returned by operations on a room whose connection has
// been closed or lost.
var ErrRoomClosed = errors.New("rtc: room closed")

// RPCInvocation carries one inbound remote call.
type RPCInvocation struct {
	// CallerIdentity is the identity of the participant who made the call.
	CallerIdentity string
	// Method is the registered method name the caller addressed.
	Method string
	// Payload is the raw request payload, by convention a JSON document.
	Payload string
}

// RPCHandler handles an inbound remote call and returns the response
// payload. Errors are reported back to the caller as the call's failure;
// handlers that must never fail the caller return error strings instead.
type RPCHandler func(ctx context.Context, inv RPCInvocation) (string, error)

// RPCError is the remote side's failure of a performed call.
type RPCError struct {
	Method  string
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc %s failed: %s", e.Method, e.Message)
}

// RemoteParticipant is another participant connected to the same room.
type RemoteParticipant interface {
	// Identity returns the participant's stable identity within the room.
	Identity() string
}

// LocalParticipant is this process's own presence in the room.
type LocalParticipant interface {
	// Identity returns the local participant's identity.
	Identity() string

	// PerformRPC makes a request/response call to the participant with the
	// given identity and awaits the reply. The context bounds the wait.
	PerformRPC(ctx context.Context, destinationIdentity, method, payload string) (string, error)

	// RegisterRPCMethod installs a handler for inbound calls addressed to
	// the given method name. Registering the same name again replaces the
	// previous handler.
	RegisterRPCMethod(method string, handler RPCHandler)

	// PublishAudio sends one raw audio frame into the room.
	PublishAudio(frame []byte) error
}

// Room is one connection to a real-time room.
type Room interface {
	// LocalParticipant returns this process's participant.
	LocalParticipant() LocalParticipant

	// RemoteParticipants lists the currently connected remote participants
	// in join order.
	RemoteParticipants() []RemoteParticipant

	// AudioFrames returns the stream of raw audio frames received from the
	// room. The channel is closed when the room closes.
	AudioFrames() <-chan []byte

	// Close tears the connection down. Safe to call more than once.
	Close() error
}
