package tutor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/atelierlabs/design-tutor/pkg/rtc"
)

// Method names the client uses to call into the agent.
const (
	MethodFlipFlashCard = "agent.flipFlashCard"
	MethodSubmitQuiz    = "agent.submitQuiz"
)

// Speech is the dialogue layer's utterance sink. The quiz handler hands it
// the verbal result summary to speak to the student.
type Speech interface {
	Say(ctx context.Context, text string) error
}

type flipFlashCardRequest struct {
	ID string `json:"id"`
}

type submitQuizRequest struct {
	ID      string            `json:"id"`
	Answers map[string]string `json:"answers"`
}

// Handlers are the client-invokable entry points of the session. Their
// return values are best-effort diagnostics that clients may ignore, so
// every failure is caught locally and converted to an "error: ..." string;
// nothing propagates to the transport.
type Handlers struct {
	state    *SessionState
	notifier *Notifier
	speech   Speech
	logger   *slog.Logger
}

// NewHandlers wires the inbound handlers to one session's state, its
// notifier, and the speech sink. speech may be nil, in which case quiz
// summaries are logged only.
func NewHandlers(state *SessionState, notifier *Notifier, speech Speech, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{state: state, notifier: notifier, speech: speech, logger: logger}
}

// Register installs both handlers on the room's local participant.
func (h *Handlers) Register(local rtc.LocalParticipant) {
	local.RegisterRPCMethod(MethodFlipFlashCard, h.HandleFlipFlashCard)
	local.RegisterRPCMethod(MethodSubmitQuiz, h.HandleSubmitQuiz)
}

// HandleFlipFlashCard flips a card the student tapped on. The client has
// already flipped its own copy, so no notification is sent back; the agent
// only keeps its record in sync.
func (h *Handlers) HandleFlipFlashCard(ctx context.Context, inv rtc.RPCInvocation) (string, error) {
	h.logger.Info("received flash card flip", "payload", inv.Payload)

	var req flipFlashCardRequest
	if err := json.Unmarshal([]byte(inv.Payload), &req); err != nil {
		h.logger.Error("flip payload decode failed", "payload", inv.Payload, "error", err)
		return "error: " + err.Error(), nil
	}
	if req.ID == "" {
		h.logger.Error("no card ID found in payload")
		return "", nil
	}

	card, ok := h.state.FlipFlashCard(req.ID)
	if !ok {
		h.logger.Error("flash card not found", "card_id", req.ID)
		return "", nil
	}
	h.logger.Info("flipped flash card", "card_id", card.ID, "flipped", card.Flipped)
	return "", nil
}

// HandleSubmitQuiz grades a submission, creates a remedial flash card for
// every incorrectly answered question, shows those cards to the client, and
// hands the spoken result summary to the speech sink.
func (h *Handlers) HandleSubmitQuiz(ctx context.Context, inv rtc.RPCInvocation) (string, error) {
	h.logger.Info("received quiz submission", "payload", inv.Payload)

	var req submitQuizRequest
	if err := json.Unmarshal([]byte(inv.Payload), &req); err != nil {
		h.logger.Error("quiz submission decode failed", "payload", inv.Payload, "error", err)
		return "error: " + err.Error(), nil
	}
	if req.ID == "" {
		h.logger.Error("no quiz ID found in payload")
		return "error: No quiz ID found in payload", nil
	}

	results := h.state.Grade(req.ID, req.Answers)
	if len(results) == 0 {
		h.logger.Error("quiz not found", "quiz_id", req.ID)
		return "error: Quiz not found", nil
	}

	correctCount := 0
	for _, r := range results {
		if r.IsCorrect {
			correctCount++
		}
	}
	summary := fmt.Sprintf("You got %d out of %d questions correct.", correctCount, len(results))

	feedback := make([]string, 0, len(results))
	for _, r := range results {
		if r.IsCorrect {
			feedback = append(feedback, fmt.Sprintf("Question: %s\nYour answer: %s ✓ Correct!", r.Question.Text, r.Selected.Text))
			continue
		}

		selectedText := "None"
		if r.Selected != nil {
			selectedText = r.Selected.Text
		}
		line := fmt.Sprintf("Question: %s\nYour answer: %s ✗ Incorrect.", r.Question.Text, selectedText)
		if r.Correct != nil {
			line += fmt.Sprintf(" The correct answer is: %s", r.Correct.Text)

			// Turn the miss into study material.
			card, index := h.state.AddFlashCard(r.Question.Text, r.Correct.Text)
			status := h.notifier.ShowFlashCard(ctx, card, index)
			h.logger.Info("created remedial flash card", "card_id", card.ID, "status", status)
		}
		feedback = append(feedback, line)
	}

	full := summary + "\n\n" + strings.Join(feedback, "\n\n")
	if h.speech != nil {
		if err := h.speech.Say(ctx, full); err != nil {
			h.logger.Error("speak quiz summary", "error", err)
		}
	} else {
		h.logger.Info("quiz summary", "text", full)
	}
	return "success", nil
}
