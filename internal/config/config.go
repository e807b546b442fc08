// Package config loads the worker's configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is everything the design-tutor worker needs to run one session.
type Config struct {
	// Room connection.
	RoomURL   string
	RoomName  string
	Identity  string
	RoomToken string

	// Dialogue model.
	GeminiAPIKey string
	GeminiModel  string

	// Voice output.
	ElevenLabsAPIKey string
	ElevenLabsVoice  string

	// Voice input.
	CartesiaAPIKey string
	STTModel       string
	STTLanguage    string

	// Avatar rendering (optional; skipped when the key is empty).
	TavusAPIKey    string
	TavusReplicaID string
	TavusPersonaID string

	SampleRate    int
	GreetingDelay time.Duration
	CallTimeout   time.Duration

	// MetricsAddr, when set, serves prometheus metrics on this address.
	MetricsAddr string
}

// LoadFromEnv reads configuration from environment variables, applying
// defaults where sensible and failing on missing required values.
func LoadFromEnv() (Config, error) {
	cfg := Config{
		RoomURL:          os.Getenv("TUTOR_ROOM_URL"),
		RoomName:         envOr("TUTOR_ROOM_NAME", "design-tutor"),
		Identity:         envOr("TUTOR_IDENTITY", "design-tutor-agent"),
		RoomToken:        os.Getenv("TUTOR_ROOM_TOKEN"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      envOr("TUTOR_GEMINI_MODEL", "gemini-2.0-flash"),
		ElevenLabsAPIKey: os.Getenv("ELEVENLABS_API_KEY"),
		ElevenLabsVoice:  envOr("ELEVENLABS_VOICE_ID", "21m00Tcm4TlvDq8ikWAM"),
		CartesiaAPIKey:   os.Getenv("CARTESIA_API_KEY"),
		STTModel:         envOr("TUTOR_STT_MODEL", "ink-whisper"),
		STTLanguage:      envOr("TUTOR_STT_LANGUAGE", "en"),
		TavusAPIKey:      os.Getenv("TAVUS_API_KEY"),
		TavusReplicaID:   envOr("TAVUS_REPLICA_ID", "r4c41453d2"),
		TavusPersonaID:   envOr("TAVUS_PERSONA_ID", "p2fbd605"),
		SampleRate:       envIntOr("TUTOR_SAMPLE_RATE", 24000),
		GreetingDelay:    envDurationOr("TUTOR_GREETING_DELAY", 5*time.Second),
		CallTimeout:      envDurationOr("TUTOR_CALL_TIMEOUT", 10*time.Second),
		MetricsAddr:      os.Getenv("TUTOR_METRICS_ADDR"),
	}

	var missing []string
	if cfg.RoomURL == "" {
		missing = append(missing, "TUTOR_ROOM_URL")
	}
	if cfg.GeminiAPIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if cfg.ElevenLabsAPIKey == "" {
		missing = append(missing, "ELEVENLABS_API_KEY")
	}
	if cfg.CartesiaAPIKey == "" {
		missing = append(missing, "CARTESIA_API_KEY")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("config: missing required env vars: %s", strings.Join(missing, ", "))
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDurationOr(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
