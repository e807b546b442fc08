// Package agent implements the voice side of the design tutor: a dialogue
// session that turns user speech into model turns, executes the model's tool
// calls, and speaks replies into the room.
package agent

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/atelierlabs/design-tutor/pkg/agent/stt"
	"github.com/atelierlabs/design-tutor/pkg/agent/tts"
	"github.com/atelierlabs/design-tutor/pkg/rtc"
)

// maxToolRounds bounds how many tool-call rounds one dialogue turn may take
// before the session gives up and asks the model for a plain reply.
const maxToolRounds = 8

// SessionOptions configures a dialogue session.
type SessionOptions struct {
	// Instructions is the system prompt governing the tutor's behavior.
	Instructions string
	// Tools are the functions the model may call during a turn.
	Tools []Tool
	// LLM is the dialogue model. Required.
	LLM LLM
	// TTS synthesizes the agent's speech. Optional; without it replies are
	// logged instead of spoken.
	TTS tts.Provider
	// STT transcribes room audio into user turns. Optional; without it the
	// session only reacts to programmatic triggers.
	STT stt.Provider
	// Room is the real-time room the session speaks and listens through.
	Room rtc.Room

	Voice      string
	Language   string
	STTModel   string
	SampleRate int

	// GreetingDelay is how long Run waits after start before generating the
	// opening reply, giving the client time to finish joining.
	GreetingDelay time.Duration

	Logger *slog.Logger
}

// Session is one live dialogue with the student. It serializes turns: the
// history mutex guards the transcript, and a turn mutex ensures only one
// model completion runs at a time even when an RPC handler triggers speech
// while a voice turn is in flight.
type Session struct {
	instructions string
	tools        []Tool
	llm          LLM
	tts          tts.Provider
	stt          stt.Provider
	room         rtc.Room

	voice         string
	language      string
	sttModel      string
	sampleRate    int
	greetingDelay time.Duration
	logger        *slog.Logger

	turnMu sync.Mutex

	histMu  sync.Mutex
	history []Message
}

// NewSession validates the options and builds a session.
func NewSession(opts SessionOptions) (*Session, error) {
	if opts.LLM == nil {
		return nil, fmt.Errorf("agent: LLM is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sampleRate := opts.SampleRate
	if sampleRate <= 0 {
		sampleRate = 24000
	}
	return &Session{
		instructions:  opts.Instructions,
		tools:         opts.Tools,
		llm:           opts.LLM,
		tts:           opts.TTS,
		stt:           opts.STT,
		room:          opts.Room,
		voice:         opts.Voice,
		language:      opts.Language,
		sttModel:      opts.STTModel,
		sampleRate:    sampleRate,
		greetingDelay: opts.GreetingDelay,
		logger:        logger,
	}, nil
}

// Say speaks the given text into the room and records it as an assistant
// turn. Safe to call from RPC handlers. Without a TTS provider or a room the
// text is logged and the session keeps going.
func (s *Session) Say(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	s.appendHistory(Message{Role: RoleAssistant, Text: text})

	if s.tts == nil || s.room == nil {
		s.logger.Info("say (no voice output)", "text", text)
		return nil
	}

	stream, err := s.tts.SynthesizeStream(ctx, text, tts.SynthesizeOptions{
		Voice:      s.voice,
		Language:   s.language,
		SampleRate: s.sampleRate,
	})
	if err != nil {
		return fmt.Errorf("agent: synthesize: %w", err)
	}
	defer stream.Close()

	local := s.room.LocalParticipant()
	for chunk := range stream.Chunks() {
		if err := local.PublishAudio(chunk); err != nil {
			return fmt.Errorf("agent: publish audio: %w", err)
		}
	}
	if err := stream.Err(); err != nil && err != io.EOF && err != context.Canceled {
		return fmt.Errorf("agent: synthesis stream: %w", err)
	}
	return nil
}

// GenerateReply runs one dialogue turn: model completion, tool dispatch
// rounds, then speech for the final text.
func (s *Session) GenerateReply(ctx context.Context) error {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	for round := 0; round < maxToolRounds; round++ {
		reply, err := s.llm.Complete(ctx, CompletionRequest{
			Instructions: s.instructions,
			Messages:     s.snapshotHistory(),
			Tools:        s.tools,
		})
		if err != nil {
			return fmt.Errorf("agent: complete: %w", err)
		}

		if len(reply.ToolCalls) == 0 {
			if reply.Text == "" {
				return nil
			}
			return s.Say(ctx, reply.Text)
		}

		s.appendHistory(Message{Role: RoleAssistant, Text: reply.Text, ToolCalls: reply.ToolCalls})
		for _, call := range reply.ToolCalls {
			result := s.runTool(ctx, call)
			s.appendHistory(Message{Role: RoleTool, ToolResult: &ToolResult{
				CallID:  call.ID,
				Name:    call.Name,
				Content: result,
			}})
		}
	}
	return fmt.Errorf("agent: turn exceeded %d tool rounds", maxToolRounds)
}

// HandleTranscript records a final user utterance and generates the reply.
func (s *Session) HandleTranscript(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	s.logger.Info("user said", "text", text)
	s.appendHistory(Message{Role: RoleUser, Text: text})
	return s.GenerateReply(ctx)
}

// Run drives the session until the context is canceled: it waits out the
// greeting delay, speaks the opening reply, then feeds room audio through
// the transcriber and turns final transcripts into dialogue turns.
func (s *Session) Run(ctx context.Context) error {
	if s.greetingDelay > 0 {
		select {
		case <-time.After(s.greetingDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := s.GenerateReply(ctx); err != nil {
		s.logger.Error("opening reply failed", "error", err)
	}

	if s.stt == nil || s.room == nil {
		<-ctx.Done()
		return ctx.Err()
	}

	stream, err := s.stt.NewStream(ctx, stt.StreamOptions{
		Model:      s.sttModel,
		Language:   s.language,
		SampleRate: s.sampleRate,
	})
	if err != nil {
		return fmt.Errorf("agent: open stt stream: %w", err)
	}
	defer stream.Close()

	go func() {
		for frame := range s.room.AudioFrames() {
			if err := stream.SendAudio(frame); err != nil {
				s.logger.Warn("stt send failed", "error", err)
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delta, ok := <-stream.Transcripts():
			if !ok {
				return fmt.Errorf("agent: stt stream ended")
			}
			if !delta.Final {
				continue
			}
			if err := s.HandleTranscript(ctx, delta.Text); err != nil {
				s.logger.Error("dialogue turn failed", "error", err)
			}
		}
	}
}

// History returns a copy of the dialogue transcript so far.
func (s *Session) History() []Message {
	return s.snapshotHistory()
}

func (s *Session) appendHistory(msg Message) {
	s.histMu.Lock()
	s.history = append(s.history, msg)
	s.histMu.Unlock()
}

func (s *Session) snapshotHistory() []Message {
	s.histMu.Lock()
	defer s.histMu.Unlock()
	out := make([]Message, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) runTool(ctx context.Context, call ToolCall) string {
	for _, tool := range s.tools {
		if tool.Name != call.Name {
			continue
		}
		result, err := tool.Handler(ctx, call.Args)
		if err != nil {
			s.logger.Error("tool failed", "tool", call.Name, "error", err)
			return "error: " + err.Error()
		}
		s.logger.Info("tool completed", "tool", call.Name, "result", result)
		return result
	}
	s.logger.Warn("model called unknown tool", "tool", call.Name)
	return fmt.Sprintf("error: unknown tool %q", call.Name)
}
