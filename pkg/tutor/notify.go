package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/atelierlabs/design-tutor/internal/metrics"
	"github.com/atelierlabs/design-tutor/pkg/rtc"
)

// Method names of the client-side remote calls the notifier performs.
const (
	MethodClientFlashCard = "client.flashcard"
	MethodClientQuiz      = "client.quiz"
)

var (
	errNoRoom = errors.New("no room connection is available")
	errNoPeer = errors.New("no remote participant is connected")
)

// Wire payloads, one typed struct per event. These shapes are the client
// contract and must not change.

type showFlashCardPayload struct {
	Action   string `json:"action"`
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Index    int    `json:"index"`
}

type flipFlashCardPayload struct {
	Action string `json:"action"`
	ID     string `json:"id"`
}

type showQuizPayload struct {
	Action    string            `json:"action"`
	ID        string            `json:"id"`
	Questions []quizQuestionDTO `json:"questions"`
}

type quizQuestionDTO struct {
	ID      string          `json:"id"`
	Text    string          `json:"text"`
	Answers []quizAnswerDTO `json:"answers"`
}

// quizAnswerDTO deliberately carries no correct flag: the client must not
// learn the answers before the student submits.
type quizAnswerDTO struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Notifier delivers state-change events to the connected client as
// request/response calls through the room. Delivery always degrades to a
// descriptive status string: a missing room, an empty room, or a failed call
// must never fail the operation that triggered the event, since the record
// is already stored locally either way.
//
// The notifier addresses the first remote participant only. The session is
// designed for a single connected client; with several peers this silently
// picks whichever joined first.
type Notifier struct {
	room   rtc.Room
	logger *slog.Logger
}

// NewNotifier returns a notifier sending through the given room. A nil room
// is tolerated; every send then degrades to its status string.
func NewNotifier(room rtc.Room, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{room: room, logger: logger}
}

// ShowFlashCard tells the client to display a newly created flash card.
// index is the card's 0-based position in the session's flash card sequence
// at creation time.
func (n *Notifier) ShowFlashCard(ctx context.Context, card FlashCard, index int) string {
	payload := showFlashCardPayload{
		Action:   "show",
		ID:       card.ID,
		Question: card.Question,
		Answer:   card.Answer,
		Index:    index,
	}
	if err := n.deliver(ctx, MethodClientFlashCard, payload); err != nil {
		n.logger.Warn("flash card not delivered", "card_id", card.ID, "reason", err)
		return fmt.Sprintf("Created a flash card, but couldn't show it to the student: %v.", err)
	}
	return fmt.Sprintf("I've created a flash card with the question: %q", card.Question)
}

// FlipFlashCard tells the client to flip a flash card the agent flipped.
func (n *Notifier) FlipFlashCard(ctx context.Context, card FlashCard) string {
	payload := flipFlashCardPayload{Action: "flip", ID: card.ID}
	if err := n.deliver(ctx, MethodClientFlashCard, payload); err != nil {
		n.logger.Warn("flip not delivered", "card_id", card.ID, "reason", err)
		return fmt.Sprintf("Flipped the flash card, but couldn't show it to the student: %v.", err)
	}
	side := "question"
	if card.Flipped {
		side = "answer"
	}
	return fmt.Sprintf("I've flipped the flash card to show the %s", side)
}

// ShowQuiz tells the client to display a newly created quiz. The payload
// carries question and answer IDs and texts only; correctness never leaves
// the process.
func (n *Notifier) ShowQuiz(ctx context.Context, quiz Quiz) string {
	payload := showQuizPayload{
		Action:    "show",
		ID:        quiz.ID,
		Questions: make([]quizQuestionDTO, 0, len(quiz.Questions)),
	}
	for _, q := range quiz.Questions {
		dto := quizQuestionDTO{
			ID:      q.ID,
			Text:    q.Text,
			Answers: make([]quizAnswerDTO, 0, len(q.Answers)),
		}
		for _, a := range q.Answers {
			dto.Answers = append(dto.Answers, quizAnswerDTO{ID: a.ID, Text: a.Text})
		}
		payload.Questions = append(payload.Questions, dto)
	}
	if err := n.deliver(ctx, MethodClientQuiz, payload); err != nil {
		n.logger.Warn("quiz not delivered", "quiz_id", quiz.ID, "reason", err)
		return fmt.Sprintf("Created a quiz, but couldn't show it to the student: %v.", err)
	}
	return fmt.Sprintf("I've created a quiz with %d questions. Please answer them when you're ready.", len(quiz.Questions))
}

func (n *Notifier) deliver(ctx context.Context, method string, payload any) error {
	if n.room == nil {
		metrics.Notifications.WithLabelValues(method, "no_room").Inc()
		return errNoRoom
	}
	peers := n.room.RemoteParticipants()
	if len(peers) == 0 {
		metrics.Notifications.WithLabelValues(method, "no_peer").Inc()
		return errNoPeer
	}

	data, err := json.Marshal(payload)
	if err != nil {
		metrics.Notifications.WithLabelValues(method, "encode_failed").Inc()
		return fmt.Errorf("encode %s payload: %w", method, err)
	}

	n.logger.Debug("sending client event", "method", method, "payload", string(data))
	if _, err := n.room.LocalParticipant().PerformRPC(ctx, peers[0].Identity(), method, string(data)); err != nil {
		metrics.Notifications.WithLabelValues(method, "call_failed").Inc()
		return fmt.Errorf("call %s: %w", method, err)
	}
	metrics.Notifications.WithLabelValues(method, "ok").Inc()
	return nil
}
