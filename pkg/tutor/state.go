// Package tutor implements the session core of the design-tutor agent: the
// per-session record store for flash cards and quizzes, the grading of quiz
// submissions, and both sides of the remote-call contract with the connected
// client.
package tutor

import (
	"sync"

	"github.com/google/uuid"
)

// FlashCard is a two-sided question/answer teaching artifact with a flip state.
type FlashCard struct {
	ID       string
	Question string
	Answer   string
	Flipped  bool
}

// QuizAnswer is one answer option of a quiz question.
type QuizAnswer struct {
	ID      string
	Text    string
	Correct bool
}

// QuizQuestion is a multiple-choice question. Answer order is the
// presentation order shown to the student.
type QuizQuestion struct {
	ID      string
	Text    string
	Answers []QuizAnswer
}

// Quiz is an ordered set of multiple-choice questions. Quizzes are immutable
// after creation; grading only reads them.
type Quiz struct {
	ID        string
	Questions []QuizQuestion
}

// QuizAnswerInput describes an answer option before an identifier is assigned.
type QuizAnswerInput struct {
	Text    string `json:"text"`
	Correct bool   `json:"is_correct"`
}

// QuizQuestionInput describes a question before identifiers are assigned.
type QuizQuestionInput struct {
	Text    string            `json:"text"`
	Answers []QuizAnswerInput `json:"answers"`
}

// SessionState holds everything created during one tutoring session. Both
// record sequences are append-only and live for the session's duration; there
// is no persistence. The dialogue tools and the inbound RPC handlers run on
// different goroutines, so every access goes through the mutex.
type SessionState struct {
	mu         sync.Mutex
	flashCards []*FlashCard
	quizzes    []*Quiz
}

// NewSessionState returns an empty session.
func NewSessionState() *SessionState {
	return &SessionState{}
}

// AddFlashCard creates a flash card with a fresh identifier and appends it.
// The returned index is the card's 0-based position at creation time.
func (s *SessionState) AddFlashCard(question, answer string) (FlashCard, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	card := &FlashCard{
		ID:       uuid.NewString(),
		Question: question,
		Answer:   answer,
	}
	s.flashCards = append(s.flashCards, card)
	return *card, len(s.flashCards) - 1
}

// GetFlashCard looks up a flash card by ID.
func (s *SessionState) GetFlashCard(id string) (FlashCard, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, card := range s.flashCards {
		if card.ID == id {
			return *card, true
		}
	}
	return FlashCard{}, false
}

// FlipFlashCard toggles the flip state of the card with the given ID and
// returns the updated record. The second return is false when no such card
// exists; that is an ordinary outcome for callers to branch on, not an error.
func (s *SessionState) FlipFlashCard(id string) (FlashCard, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, card := range s.flashCards {
		if card.ID == id {
			card.Flipped = !card.Flipped
			return *card, true
		}
	}
	return FlashCard{}, false
}

// FlashCardCount reports how many flash cards the session holds.
func (s *SessionState) FlashCardCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.flashCards)
}

// AddQuiz builds a quiz from the given questions, assigning fresh identifiers
// to the quiz, every question, and every answer option, preserving input
// order at every level. Nothing enforces that exactly one answer per question
// is flagged correct; the grader tolerates any count.
func (s *SessionState) AddQuiz(questions []QuizQuestionInput) Quiz {
	quiz := &Quiz{
		ID:        uuid.NewString(),
		Questions: make([]QuizQuestion, 0, len(questions)),
	}
	for _, q := range questions {
		question := QuizQuestion{
			ID:      uuid.NewString(),
			Text:    q.Text,
			Answers: make([]QuizAnswer, 0, len(q.Answers)),
		}
		for _, a := range q.Answers {
			question.Answers = append(question.Answers, QuizAnswer{
				ID:      uuid.NewString(),
				Text:    a.Text,
				Correct: a.Correct,
			})
		}
		quiz.Questions = append(quiz.Questions, question)
	}

	s.mu.Lock()
	s.quizzes = append(s.quizzes, quiz)
	s.mu.Unlock()
	return *quiz
}

// GetQuiz looks up a quiz by ID.
func (s *SessionState) GetQuiz(id string) (Quiz, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, quiz := range s.quizzes {
		if quiz.ID == id {
			return *quiz, true
		}
	}
	return Quiz{}, false
}

// QuizCount reports how many quizzes the session holds.
func (s *SessionState) QuizCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.quizzes)
}
