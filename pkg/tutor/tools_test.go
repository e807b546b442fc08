package tutor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/atelierlabs/design-tutor/pkg/agent"
)

func toolByName(t *testing.T, tools []agent.Tool, name string) agent.Tool {
	t.Helper()
	for _, tool := range tools {
		if tool.Name == name {
			return tool
		}
	}
	t.Fatalf("tool %s not found", name)
	return agent.Tool{}
}

func TestAgentToolsCreateFlashCard(t *testing.T) {
	state := NewSessionState()
	room := newFakeRoom("student")
	tools := AgentTools(state, NewNotifier(room, nil))

	tool := toolByName(t, tools, "create_flash_card")
	status, err := tool.Handler(context.Background(),
		json.RawMessage(`{"question":"What is tracking?","answer":"Uniform letter spacing."}`))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(status, "What is tracking?") {
		t.Fatalf("status = %q", status)
	}
	if n := state.FlashCardCount(); n != 1 {
		t.Fatalf("flash card count = %d, want 1", n)
	}
	if len(room.local.calls) != 1 {
		t.Fatalf("notification count = %d, want 1", len(room.local.calls))
	}
}

func TestAgentToolsFlipFlashCard(t *testing.T) {
	state := NewSessionState()
	room := newFakeRoom("student")
	tools := AgentTools(state, NewNotifier(room, nil))
	card, _ := state.AddFlashCard("q", "a")

	tool := toolByName(t, tools, "flip_flash_card")

	status, err := tool.Handler(context.Background(),
		json.RawMessage(fmt.Sprintf(`{"card_id":%q}`, card.ID)))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(status, "flipped") {
		t.Fatalf("status = %q", status)
	}
	got, _ := state.GetFlashCard(card.ID)
	if !got.Flipped {
		t.Fatal("card not flipped")
	}

	status, err = tool.Handler(context.Background(), json.RawMessage(`{"card_id":"nope"}`))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if status != "Flash card with ID nope not found." {
		t.Fatalf("status = %q", status)
	}
}

func TestAgentToolsCreateQuiz(t *testing.T) {
	state := NewSessionState()
	room := newFakeRoom("student")
	tools := AgentTools(state, NewNotifier(room, nil))

	tool := toolByName(t, tools, "create_quiz")
	args := `{"questions":[{"text":"q1","answers":[{"text":"a","is_correct":true},{"text":"b","is_correct":false}]}]}`
	status, err := tool.Handler(context.Background(), json.RawMessage(args))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(status, "1 questions") {
		t.Fatalf("status = %q", status)
	}
	if n := state.QuizCount(); n != 1 {
		t.Fatalf("quiz count = %d, want 1", n)
	}
	if len(room.local.calls) != 1 || room.local.calls[0].Method != MethodClientQuiz {
		t.Fatalf("calls = %+v", room.local.calls)
	}
}
