package tutor

import (
	"context"
	"fmt"

	"github.com/atelierlabs/design-tutor/pkg/agent"
)

// AgentTools returns the function tools the dialogue model uses to drive the
// flash card and quiz UI. Each tool mutates the session state first and then
// notifies the client; the returned status string goes back to the model so
// it can tell the student what happened (or didn't).
func AgentTools(state *SessionState, notifier *Notifier) []agent.Tool {
	createFlashCard := agent.MakeTool("create_flash_card",
		"Create a new flash card and display it to the student.",
		func(ctx context.Context, in struct {
			Question string `json:"question" desc:"The question or front side of the flash card"`
			Answer   string `json:"answer" desc:"The answer or back side of the flash card"`
		}) (string, error) {
			card, index := state.AddFlashCard(in.Question, in.Answer)
			return notifier.ShowFlashCard(ctx, card, index), nil
		})

	flipFlashCard := agent.MakeTool("flip_flash_card",
		"Flip a flash card to show the answer or the question.",
		func(ctx context.Context, in struct {
			CardID string `json:"card_id" desc:"The ID of the flash card to flip"`
		}) (string, error) {
			card, ok := state.FlipFlashCard(in.CardID)
			if !ok {
				return fmt.Sprintf("Flash card with ID %s not found.", in.CardID), nil
			}
			return notifier.FlipFlashCard(ctx, card), nil
		})

	createQuiz := agent.MakeTool("create_quiz",
		"Create a multiple-choice quiz and display it to the student. Each question needs 3-5 answer options with exactly one marked correct.",
		func(ctx context.Context, in struct {
			Questions []QuizQuestionInput `json:"questions" desc:"The quiz questions, each with its answer options in presentation order"`
		}) (string, error) {
			quiz := state.AddQuiz(in.Questions)
			return notifier.ShowQuiz(ctx, quiz), nil
		})

	return []agent.Tool{createFlashCard, flipFlashCard, createQuiz}
}
