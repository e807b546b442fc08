package tutor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/atelierlabs/design-tutor/pkg/rtc"
)

type fakeSpeech struct {
	spoken []string
	err    error
}

func (f *fakeSpeech) Say(ctx context.Context, text string) error {
	f.spoken = append(f.spoken, text)
	return f.err
}

func invocation(method, payload string) rtc.RPCInvocation {
	return rtc.RPCInvocation{CallerIdentity: "student", Method: method, Payload: payload}
}

func TestHandleFlipFlashCard(t *testing.T) {
	state := NewSessionState()
	card, _ := state.AddFlashCard("q", "a")
	h := NewHandlers(state, NewNotifier(nil, nil), nil, nil)

	tests := []struct {
		name       string
		payload    string
		wantPrefix string
		wantFlip   bool
	}{
		{name: "valid", payload: fmt.Sprintf(`{"id":%q}`, card.ID), wantFlip: true},
		{name: "malformed json", payload: `{"id":`, wantPrefix: "error: "},
		{name: "missing id", payload: `{}`},
		{name: "unknown card", payload: `{"id":"nope"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before, _ := state.GetFlashCard(card.ID)

			got, err := h.HandleFlipFlashCard(context.Background(), invocation(MethodFlipFlashCard, tt.payload))
			if err != nil {
				t.Fatalf("handler returned transport error: %v", err)
			}
			if tt.wantPrefix == "" && got != "" {
				t.Fatalf("response = %q, want empty", got)
			}
			if tt.wantPrefix != "" && !strings.HasPrefix(got, tt.wantPrefix) {
				t.Fatalf("response = %q, want prefix %q", got, tt.wantPrefix)
			}

			after, _ := state.GetFlashCard(card.ID)
			if tt.wantFlip && after.Flipped == before.Flipped {
				t.Fatal("card not flipped")
			}
			if !tt.wantFlip && after.Flipped != before.Flipped {
				t.Fatal("card flipped unexpectedly")
			}
		})
	}
}

func TestHandleSubmitQuizErrors(t *testing.T) {
	state := NewSessionState()
	h := NewHandlers(state, NewNotifier(nil, nil), nil, nil)

	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{name: "missing id", payload: `{"answers":{}}`, want: "error: No quiz ID found in payload"},
		{name: "unknown quiz", payload: `{"id":"nope","answers":{}}`, want: "error: Quiz not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := h.HandleSubmitQuiz(context.Background(), invocation(MethodSubmitQuiz, tt.payload))
			if err != nil {
				t.Fatalf("handler returned transport error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("response = %q, want %q", got, tt.want)
			}
		})
	}

	got, err := h.HandleSubmitQuiz(context.Background(), invocation(MethodSubmitQuiz, `not json`))
	if err != nil {
		t.Fatalf("handler returned transport error: %v", err)
	}
	if !strings.HasPrefix(got, "error: ") {
		t.Fatalf("response = %q, want decode error string", got)
	}
}

func TestHandleSubmitQuizGradesAndRemediates(t *testing.T) {
	state := NewSessionState()
	room := newFakeRoom("student")
	speech := &fakeSpeech{}
	h := NewHandlers(state, NewNotifier(room, nil), speech, nil)

	quiz := buildQuiz(t, state)
	q1, q2 := quiz.Questions[0], quiz.Questions[1]

	req := submitQuizRequest{
		ID: quiz.ID,
		Answers: map[string]string{
			q1.ID: q1.Answers[1].ID, // correct
			q2.ID: q2.Answers[1].ID, // wrong
		},
	}
	payload, _ := json.Marshal(req)

	got, err := h.HandleSubmitQuiz(context.Background(), invocation(MethodSubmitQuiz, string(payload)))
	if err != nil {
		t.Fatalf("handler returned transport error: %v", err)
	}
	if got != "success" {
		t.Fatalf("response = %q, want success", got)
	}

	// One remedial flash card, built from the missed question.
	if n := state.FlashCardCount(); n != 1 {
		t.Fatalf("flash card count = %d, want 1 remedial card", n)
	}
	if len(room.local.calls) != 1 || room.local.calls[0].Method != MethodClientFlashCard {
		t.Fatalf("calls = %+v, want one flash card notification", room.local.calls)
	}
	var cardPayload map[string]any
	if err := json.Unmarshal([]byte(room.local.calls[0].Payload), &cardPayload); err != nil {
		t.Fatalf("remedial payload not valid JSON: %v", err)
	}
	if cardPayload["question"] != q2.Text || cardPayload["answer"] != "Space between letter pairs" {
		t.Fatalf("remedial card = %v", cardPayload)
	}

	// The spoken summary reports the score and per-question feedback.
	if len(speech.spoken) != 1 {
		t.Fatalf("spoken count = %d, want 1", len(speech.spoken))
	}
	summary := speech.spoken[0]
	if !strings.Contains(summary, "You got 1 out of 2 questions correct.") {
		t.Fatalf("summary = %q", summary)
	}
	if !strings.Contains(summary, "✓ Correct!") || !strings.Contains(summary, "✗ Incorrect.") {
		t.Fatalf("summary = %q", summary)
	}
	if !strings.Contains(summary, "The correct answer is: Space between letter pairs") {
		t.Fatalf("summary = %q", summary)
	}
}

func TestHandleSubmitQuizAllCorrectCreatesNoCards(t *testing.T) {
	state := NewSessionState()
	room := newFakeRoom("student")
	speech := &fakeSpeech{}
	h := NewHandlers(state, NewNotifier(room, nil), speech, nil)

	quiz := buildQuiz(t, state)
	req := submitQuizRequest{
		ID: quiz.ID,
		Answers: map[string]string{
			quiz.Questions[0].ID: quiz.Questions[0].Answers[1].ID,
			quiz.Questions[1].ID: quiz.Questions[1].Answers[0].ID,
		},
	}
	payload, _ := json.Marshal(req)

	got, _ := h.HandleSubmitQuiz(context.Background(), invocation(MethodSubmitQuiz, string(payload)))
	if got != "success" {
		t.Fatalf("response = %q", got)
	}
	if n := state.FlashCardCount(); n != 0 {
		t.Fatalf("flash card count = %d, want 0", n)
	}
	if !strings.Contains(speech.spoken[0], "You got 2 out of 2 questions correct.") {
		t.Fatalf("summary = %q", speech.spoken[0])
	}
}

func TestHandleSubmitQuizWithoutSpeech(t *testing.T) {
	state := NewSessionState()
	h := NewHandlers(state, NewNotifier(nil, nil), nil, nil)
	quiz := buildQuiz(t, state)

	payload := fmt.Sprintf(`{"id":%q,"answers":{}}`, quiz.ID)
	got, err := h.HandleSubmitQuiz(context.Background(), invocation(MethodSubmitQuiz, payload))
	if err != nil {
		t.Fatalf("handler returned transport error: %v", err)
	}
	if got != "success" {
		t.Fatalf("response = %q, want success even without a speech sink", got)
	}
}

func TestRegisterInstallsBothMethods(t *testing.T) {
	local := &fakeLocal{}
	h := NewHandlers(NewSessionState(), NewNotifier(nil, nil), nil, nil)
	h.Register(local)

	for _, method := range []string{MethodFlipFlashCard, MethodSubmitQuiz} {
		if local.handlers[method] == nil {
			t.Fatalf("method %s not registered", method)
		}
	}
}
