package avatar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStartSessionAndEnd(t *testing.T) {
	var starts, ends int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "key-1" {
			t.Errorf("missing api key header")
		}
		switch r.URL.Path {
		case "/v2/conversations":
			starts++
			var req SessionRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode request: %v", err)
			}
			if req.ReplicaID != "replica-1" || req.PersonaID != "persona-1" {
				t.Errorf("request = %+v", req)
			}
			_ = json.NewEncoder(w).Encode(map[string]string{
				"conversation_id":  "conv-1",
				"conversation_url": "https://example.test/conv-1",
				"status":           "active",
			})
		case "/v2/conversations/conv-1/end":
			ends++
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClient("key-1").WithBaseURL(srv.URL)
	session, err := client.StartSession(context.Background(), SessionRequest{
		ReplicaID:        "replica-1",
		PersonaID:        "persona-1",
		ConversationName: "design-tutor",
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if session.ConversationID != "conv-1" || session.ConversationURL != "https://example.test/conv-1" {
		t.Fatalf("session = %+v", session)
	}

	if err := session.End(context.Background()); err != nil {
		t.Fatalf("end: %v", err)
	}
	if starts != 1 || ends != 1 {
		t.Fatalf("starts=%d ends=%d", starts, ends)
	}
}

func TestStartSessionValidation(t *testing.T) {
	if _, err := NewClient("").StartSession(context.Background(), SessionRequest{ReplicaID: "r"}); err == nil {
		t.Fatal("expected error without api key")
	}
	if _, err := NewClient("k").StartSession(context.Background(), SessionRequest{}); err == nil {
		t.Fatal("expected error without replica id")
	}
}

func TestStartSessionServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid persona"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewClient("k").WithBaseURL(srv.URL).StartSession(context.Background(), SessionRequest{ReplicaID: "r"})
	if err == nil {
		t.Fatal("expected error on 400 response")
	}
}
