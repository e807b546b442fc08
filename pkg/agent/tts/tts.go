// Package tts provides streaming text-to-speech for the agent's voice.
package tts

import (
	"context"
	"errors"
	"sync"
)

// ErrStreamClosed is returned when pushing to a closed stream.
var ErrStreamClosed = errors.New("tts: stream closed")

// SynthesizeOptions configures one synthesis.
type SynthesizeOptions struct {
	Voice      string // voice identifier
	Language   string // language code
	SampleRate int    // PCM sample rate in Hz
}

// Provider is the interface for text-to-speech services.
type Provider interface {
	// Name returns the provider identifier.
	Name() string

	// SynthesizeStream converts text to streaming PCM audio.
	SynthesizeStream(ctx context.Context, text string, opts SynthesizeOptions) (*Stream, error)
}

// Stream delivers synthesized audio chunks as they are generated. Providers
// push with Push and signal completion with Finish; consumers range over
// Chunks and then check Err.
type Stream struct {
	chunks chan []byte
	done   chan struct{}

	errMu sync.Mutex
	err   error

	closeOnce sync.Once
}

// NewStream creates an empty stream for a provider to feed.
func NewStream() *Stream {
	return &Stream{
		chunks: make(chan []byte, 100),
		done:   make(chan struct{}),
	}
}

// Chunks returns the channel of audio chunks. It is closed when synthesis
// completes or the stream is closed.
func (s *Stream) Chunks() <-chan []byte {
	return s.chunks
}

// Err returns the error that ended the stream, if any.
func (s *Stream) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

// Close abandons the stream. Safe to call more than once.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	return nil
}

// Done returns a channel closed when the stream is closed.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

// Push delivers one audio chunk. Returns false when the consumer is gone.
func (s *Stream) Push(chunk []byte) bool {
	select {
	case s.chunks <- chunk:
		return true
	case <-s.done:
		return false
	}
}

// SetError records the error that ended the stream.
func (s *Stream) SetError(err error) {
	s.errMu.Lock()
	s.err = err
	s.errMu.Unlock()
}

// Finish closes the chunk channel to signal completion.
func (s *Stream) Finish() {
	close(s.chunks)
}
