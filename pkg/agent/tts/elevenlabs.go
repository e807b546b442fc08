package tts

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const elevenLabsDefaultWSBase = "wss://api.elevenlabs.io/v1/text-to-speech/{voice_id}/stream-input"

// ElevenLabs synthesizes speech over ElevenLabs' streaming-input WebSocket.
type ElevenLabs struct {
	apiKey    string
	wsBaseURL string
}

// NewElevenLabs creates an ElevenLabs TTS provider.
func NewElevenLabs(apiKey string) *ElevenLabs {
	return &ElevenLabs{
		apiKey:    strings.TrimSpace(apiKey),
		wsBaseURL: elevenLabsDefaultWSBase,
	}
}

// WithWSBaseURL overrides the WebSocket endpoint, mainly for tests.
func (e *ElevenLabs) WithWSBaseURL(base string) *ElevenLabs {
	if base = strings.TrimSpace(base); base != "" {
		e.wsBaseURL = base
	}
	return e
}

func (e *ElevenLabs) Name() string { return "elevenlabs" }

func (e *ElevenLabs) SynthesizeStream(ctx context.Context, text string, opts SynthesizeOptions) (*Stream, error) {
	if e.apiKey == "" {
		return nil, fmt.Errorf("elevenlabs api key is required")
	}
	voiceID := strings.TrimSpace(opts.Voice)
	if voiceID == "" {
		return nil, fmt.Errorf("voice id is required")
	}

	wsURL, err := elevenLabsWSURL(e.wsBaseURL, voiceID, opts.SampleRate)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("xi-api-key", e.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs connect: %w", err)
	}

	// Prime the connection, send the whole utterance, then flush.
	messages := []map[string]any{
		{"text": " ", "voice_id": voiceID},
		{"text": ensureTrailingSpace(text)},
		{"text": "", "flush": true},
	}
	for _, msg := range messages {
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(msg); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("elevenlabs send: %w", err)
		}
	}

	stream := NewStream()
	go func() {
		defer stream.Finish()
		defer conn.Close()
		for {
			select {
			case <-ctx.Done():
				stream.SetError(ctx.Err())
				return
			case <-stream.Done():
				return
			default:
			}

			_, data, err := conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					stream.SetError(err)
				}
				return
			}

			var msg elevenLabsMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			if msg.Audio != "" {
				audio, err := base64.StdEncoding.DecodeString(msg.Audio)
				if err == nil && len(audio) > 0 {
					if !stream.Push(audio) {
						return
					}
				}
			}
			if msg.IsFinal {
				return
			}
		}
	}()

	return stream, nil
}

type elevenLabsMessage struct {
	Audio   string `json:"audio"`
	IsFinal bool   `json:"isFinal"`
}

func elevenLabsWSURL(base, voiceID string, sampleRate int) (string, error) {
	base = strings.ReplaceAll(base, "{voice_id}", url.PathEscape(voiceID))
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid elevenlabs ws url: %w", err)
	}
	if u.Scheme == "" {
		u.Scheme = "wss"
	}
	if sampleRate <= 0 {
		sampleRate = 24000
	}
	q := u.Query()
	if q.Get("model_id") == "" {
		q.Set("model_id", "eleven_flash_v2_5")
	}
	if q.Get("output_format") == "" {
		q.Set("output_format", fmt.Sprintf("pcm_%d", sampleRate))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func ensureTrailingSpace(text string) string {
	text = strings.TrimSpace(text)
	if text == "" || strings.HasSuffix(text, " ") {
		return text
	}
	return text + " "
}
