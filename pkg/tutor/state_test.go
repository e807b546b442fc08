package tutor

import "testing"

func TestAddFlashCardAssignsDistinctIDs(t *testing.T) {
	state := NewSessionState()

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		card, index := state.AddFlashCard("q", "a")
		if card.ID == "" {
			t.Fatal("expected a generated ID")
		}
		if seen[card.ID] {
			t.Fatalf("duplicate ID %s", card.ID)
		}
		seen[card.ID] = true
		if index != i {
			t.Fatalf("index = %d, want %d", index, i)
		}

		got, ok := state.GetFlashCard(card.ID)
		if !ok {
			t.Fatalf("card %s not resolvable after creation", card.ID)
		}
		if got.Question != "q" || got.Answer != "a" || got.Flipped {
			t.Fatalf("unexpected card %+v", got)
		}
	}
}

func TestFlipFlashCardTogglesAndReverts(t *testing.T) {
	state := NewSessionState()
	card, _ := state.AddFlashCard("What is kerning?", "Space between letter pairs.")

	flipped, ok := state.FlipFlashCard(card.ID)
	if !ok || !flipped.Flipped {
		t.Fatalf("first flip: got (%+v, %v), want flipped=true", flipped, ok)
	}

	flipped, ok = state.FlipFlashCard(card.ID)
	if !ok || flipped.Flipped {
		t.Fatalf("second flip: got (%+v, %v), want flipped=false", flipped, ok)
	}
}

func TestFlipFlashCardUnknownIDLeavesStoreUnchanged(t *testing.T) {
	state := NewSessionState()
	card, _ := state.AddFlashCard("q", "a")

	if _, ok := state.FlipFlashCard("no-such-id"); ok {
		t.Fatal("expected absent result for unknown ID")
	}
	if n := state.FlashCardCount(); n != 1 {
		t.Fatalf("card count = %d, want 1", n)
	}
	got, _ := state.GetFlashCard(card.ID)
	if got.Flipped {
		t.Fatal("existing card must not be flipped by a failed lookup")
	}
}

func TestGetFlashCardUnknownID(t *testing.T) {
	state := NewSessionState()
	if _, ok := state.GetFlashCard("missing"); ok {
		t.Fatal("expected absent result")
	}
}

func TestAddQuizAssignsIDsAndPreservesOrder(t *testing.T) {
	state := NewSessionState()

	quiz := state.AddQuiz([]QuizQuestionInput{
		{Text: "first", Answers: []QuizAnswerInput{
			{Text: "a1", Correct: true},
			{Text: "a2"},
			{Text: "a3"},
		}},
		{Text: "second", Answers: []QuizAnswerInput{
			{Text: "b1"},
			{Text: "b2", Correct: true},
		}},
	})

	if quiz.ID == "" {
		t.Fatal("expected a generated quiz ID")
	}
	if len(quiz.Questions) != 2 {
		t.Fatalf("question count = %d, want 2", len(quiz.Questions))
	}
	if quiz.Questions[0].Text != "first" || quiz.Questions[1].Text != "second" {
		t.Fatal("question order not preserved")
	}

	ids := map[string]bool{quiz.ID: true}
	for _, q := range quiz.Questions {
		if q.ID == "" || ids[q.ID] {
			t.Fatalf("bad question ID %q", q.ID)
		}
		ids[q.ID] = true
		for _, a := range q.Answers {
			if a.ID == "" || ids[a.ID] {
				t.Fatalf("bad answer ID %q", a.ID)
			}
			ids[a.ID] = true
		}
	}

	wantAnswers := []string{"a1", "a2", "a3"}
	for i, a := range quiz.Questions[0].Answers {
		if a.Text != wantAnswers[i] {
			t.Fatalf("answer order not preserved: got %q at %d", a.Text, i)
		}
	}

	stored, ok := state.GetQuiz(quiz.ID)
	if !ok {
		t.Fatal("quiz not resolvable after creation")
	}
	if stored.Questions[1].Answers[1].Text != "b2" || !stored.Questions[1].Answers[1].Correct {
		t.Fatalf("stored quiz differs: %+v", stored.Questions[1])
	}
}
