// Package avatar starts and stops hosted avatar conversations. The avatar
// service renders the tutor's speech as a video participant that joins the
// same room as the agent; this package only drives its REST lifecycle.
package avatar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const defaultBaseURL = "https://tavusapi.com"

// Client talks to the avatar service.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an avatar service client.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{},
	}
}

// WithBaseURL overrides the service endpoint, mainly for tests.
func (c *Client) WithBaseURL(base string) *Client {
	if base = strings.TrimSpace(base); base != "" {
		c.baseURL = strings.TrimRight(base, "/")
	}
	return c
}

// SessionRequest describes the avatar conversation to start.
type SessionRequest struct {
	// ReplicaID selects the rendered likeness.
	ReplicaID string `json:"replica_id"`
	// PersonaID selects the avatar's persona configuration.
	PersonaID string `json:"persona_id"`
	// ConversationName labels the conversation in the service's dashboard.
	ConversationName string `json:"conversation_name,omitempty"`
}

// Session is one running avatar conversation.
type Session struct {
	// ConversationID identifies the conversation at the service.
	ConversationID string
	// ConversationURL is where the rendered avatar can be joined.
	ConversationURL string

	client *Client
}

type conversationResponse struct {
	ConversationID  string `json:"conversation_id"`
	ConversationURL string `json:"conversation_url"`
	Status          string `json:"status"`
}

// StartSession creates a new avatar conversation and returns its handle.
func (c *Client) StartSession(ctx context.Context, req SessionRequest) (*Session, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("avatar: api key is required")
	}
	if req.ReplicaID == "" {
		return nil, fmt.Errorf("avatar: replica id is required")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("avatar: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/conversations", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("avatar: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("avatar: start conversation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("avatar: start conversation: status %d: %s", resp.StatusCode, string(data))
	}

	var conv conversationResponse
	if err := json.NewDecoder(resp.Body).Decode(&conv); err != nil {
		return nil, fmt.Errorf("avatar: decode response: %w", err)
	}
	if conv.ConversationID == "" {
		return nil, fmt.Errorf("avatar: response missing conversation id")
	}

	return &Session{
		ConversationID:  conv.ConversationID,
		ConversationURL: conv.ConversationURL,
		client:          c,
	}, nil
}

// End stops the avatar conversation.
func (s *Session) End(ctx context.Context) error {
	url := fmt.Sprintf("%s/v2/conversations/%s/end", s.client.baseURL, s.ConversationID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return fmt.Errorf("avatar: create end request: %w", err)
	}
	httpReq.Header.Set("x-api-key", s.client.apiKey)

	resp, err := s.client.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("avatar: end conversation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("avatar: end conversation: status %d: %s", resp.StatusCode, string(data))
	}
	return nil
}
