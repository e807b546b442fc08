// Package stt provides streaming speech-to-text for the agent's hearing.
package stt

import "context"

// StreamOptions configures a streaming transcription session.
type StreamOptions struct {
	Model      string // provider-specific model identifier
	Language   string // ISO language code
	SampleRate int    // PCM sample rate in Hz (pcm_s16le)
}

// Delta is one streaming transcript update.
type Delta struct {
	Text  string // partial or final transcript text
	Final bool   // true when the segment is final
}

// Stream is one live transcription session. Audio goes in incrementally;
// transcript deltas come out on a channel that closes when the session ends.
type Stream interface {
	// SendAudio sends one chunk of raw PCM audio.
	SendAudio(data []byte) error

	// Finalize flushes buffered audio and forces a final transcript for the
	// current utterance, keeping the session open.
	Finalize() error

	// Transcripts returns the delta channel.
	Transcripts() <-chan Delta

	// Close ends the session.
	Close() error
}

// Provider is the interface for speech-to-text services.
type Provider interface {
	// Name returns the provider identifier.
	Name() string

	// NewStream opens a streaming transcription session.
	NewStream(ctx context.Context, opts StreamOptions) (Stream, error)
}
