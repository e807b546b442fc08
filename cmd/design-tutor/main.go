// The design-tutor worker runs one voice tutoring session: it joins a
// real-time room as the agent participant, teaches graphic design over
// voice, pushes flash cards and quizzes to the connected client, and answers
// the client's flip and quiz-submission calls.
//
// Usage:
//
//	go run ./cmd/design-tutor
//
// Environment variables (see internal/config for the full list):
//
//	TUTOR_ROOM_URL      - ws(s):// endpoint of the room server (required)
//	GEMINI_API_KEY      - dialogue model (required)
//	ELEVENLABS_API_KEY  - voice output (required)
//	CARTESIA_API_KEY    - voice input (required)
//	TAVUS_API_KEY       - avatar rendering (optional)
//	TUTOR_METRICS_ADDR  - serve prometheus metrics when set, e.g. :9090
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/atelierlabs/design-tutor/internal/config"
	"github.com/atelierlabs/design-tutor/internal/metrics"
	"github.com/atelierlabs/design-tutor/pkg/agent"
	"github.com/atelierlabs/design-tutor/pkg/agent/stt"
	"github.com/atelierlabs/design-tutor/pkg/agent/tts"
	"github.com/atelierlabs/design-tutor/pkg/avatar"
	"github.com/atelierlabs/design-tutor/pkg/rtc"
	"github.com/atelierlabs/design-tutor/pkg/tutor"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.LoadFromEnv()
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil && ctx.Err() == nil {
		logger.Error("session failed", "error", err)
		os.Exit(1)
	}
	logger.Info("session ended")
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, logger)
	}

	room, err := rtc.Connect(ctx, rtc.ConnectOptions{
		URL:         cfg.RoomURL,
		Room:        cfg.RoomName,
		Identity:    cfg.Identity,
		Token:       cfg.RoomToken,
		CallTimeout: cfg.CallTimeout,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	defer room.Close()

	llm, err := agent.NewGeminiLLM(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return err
	}

	state := tutor.NewSessionState()
	notifier := tutor.NewNotifier(room, logger)

	session, err := agent.NewSession(agent.SessionOptions{
		Instructions:  tutor.Instructions,
		Tools:         tutor.AgentTools(state, notifier),
		LLM:           llm,
		TTS:           tts.NewElevenLabs(cfg.ElevenLabsAPIKey),
		STT:           stt.NewCartesia(cfg.CartesiaAPIKey),
		Room:          room,
		Voice:         cfg.ElevenLabsVoice,
		Language:      cfg.STTLanguage,
		STTModel:      cfg.STTModel,
		SampleRate:    cfg.SampleRate,
		GreetingDelay: cfg.GreetingDelay,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	handlers := tutor.NewHandlers(state, notifier, session, logger)
	handlers.Register(room.LocalParticipant())

	if cfg.TavusAPIKey != "" {
		avatarSession, err := avatar.NewClient(cfg.TavusAPIKey).StartSession(ctx, avatar.SessionRequest{
			ReplicaID:        cfg.TavusReplicaID,
			PersonaID:        cfg.TavusPersonaID,
			ConversationName: cfg.RoomName,
		})
		if err != nil {
			// The session still works as voice-only.
			logger.Warn("avatar unavailable", "error", err)
		} else {
			logger.Info("avatar started", "conversation_id", avatarSession.ConversationID)
			defer func() {
				endCtx, endCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer endCancel()
				if err := avatarSession.End(endCtx); err != nil {
					logger.Warn("avatar end failed", "error", err)
				}
			}()
		}
	}

	logger.Info("design tutor ready",
		"room", cfg.RoomName,
		"identity", cfg.Identity,
		"model", cfg.GeminiModel,
	)
	return session.Run(ctx)
}

func serveMetrics(addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	logger.Info("serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn("metrics server stopped", "error", err)
	}
}
