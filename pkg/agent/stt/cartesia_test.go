package stt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestCartesiaStream(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("model") != "ink-whisper" || q.Get("language") != "en" {
			t.Errorf("query = %v", q)
		}
		if q.Get("encoding") != "pcm_s16le" || q.Get("sample_rate") != "16000" {
			t.Errorf("query = %v", q)
		}
		if r.Header.Get("X-API-Key") != "key-1" || r.Header.Get("Cartesia-Version") != cartesiaVersion {
			t.Errorf("headers = %v", r.Header)
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		// First frame is audio, then the finalize command.
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			t.Errorf("read audio: %v", err)
			return
		}
		if msgType != websocket.BinaryMessage || string(data) != "\x01\x02" {
			t.Errorf("audio frame = type %d data %v", msgType, data)
		}
		msgType, data, err = conn.ReadMessage()
		if err != nil {
			t.Errorf("read finalize: %v", err)
			return
		}
		if msgType != websocket.TextMessage || string(data) != "finalize" {
			t.Errorf("finalize frame = type %d data %q", msgType, data)
		}

		_ = conn.WriteJSON(cartesiaMessage{Type: "transcript", Text: "what is", IsFinal: false})
		_ = conn.WriteJSON(cartesiaMessage{Type: "flush_done"})
		_ = conn.WriteJSON(cartesiaMessage{Type: "transcript", Text: "what is kerning", IsFinal: true})
		_ = conn.WriteJSON(cartesiaMessage{Type: "done"})
	}))
	defer srv.Close()

	provider := NewCartesia("key-1").WithWSURL("ws" + strings.TrimPrefix(srv.URL, "http"))
	stream, err := provider.NewStream(context.Background(), StreamOptions{})
	if err != nil {
		t.Fatalf("new stream: %v", err)
	}
	defer stream.Close()

	if err := stream.SendAudio([]byte{1, 2}); err != nil {
		t.Fatalf("send audio: %v", err)
	}
	if err := stream.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	var deltas []Delta
	timeout := time.After(2 * time.Second)
	for {
		select {
		case delta, ok := <-stream.Transcripts():
			if !ok {
				if len(deltas) != 2 {
					t.Fatalf("deltas = %v", deltas)
				}
				if deltas[0].Final || deltas[0].Text != "what is" {
					t.Fatalf("first delta = %+v", deltas[0])
				}
				if !deltas[1].Final || deltas[1].Text != "what is kerning" {
					t.Fatalf("second delta = %+v", deltas[1])
				}
				return
			}
			deltas = append(deltas, delta)
		case <-timeout:
			t.Fatalf("transcripts not delivered, got %v", deltas)
		}
	}
}

func TestCartesiaStreamClosedOperations(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		// Drain until the client hangs up.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	provider := NewCartesia("key-1").WithWSURL("ws" + strings.TrimPrefix(srv.URL, "http"))
	stream, err := provider.NewStream(context.Background(), StreamOptions{})
	if err != nil {
		t.Fatalf("new stream: %v", err)
	}

	if err := stream.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := stream.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if err := stream.SendAudio([]byte{1}); err == nil {
		t.Fatal("send after close must fail")
	}
	if err := stream.Finalize(); err == nil {
		t.Fatal("finalize after close must fail")
	}

	select {
	case _, ok := <-stream.Transcripts():
		if ok {
			t.Fatal("unexpected delta after close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("transcript channel not closed")
	}
}
