package tutor

// QuestionResult is the graded outcome for a single quiz question. Selected
// is nil when the submission omitted the question or named an option that
// does not exist; Correct is nil when no option is flagged correct.
type QuestionResult struct {
	Question  QuizQuestion
	Selected  *QuizAnswer
	Correct   *QuizAnswer
	IsCorrect bool
}

// Grade checks a submission against the stored quiz, one result per question
// in the quiz's stored order. answers maps question ID to the chosen answer
// option ID. An unknown quiz ID yields a nil result, which callers must treat
// as "quiz not found". A stored quiz with zero questions yields an empty
// non-nil slice instead.
//
// Grading never fails: a missing or unrecognized chosen answer simply grades
// the question as incorrect with no selection.
func (s *SessionState) Grade(quizID string, answers map[string]string) []QuestionResult {
	quiz, ok := s.GetQuiz(quizID)
	if !ok {
		return nil
	}

	results := make([]QuestionResult, 0, len(quiz.Questions))
	for _, question := range quiz.Questions {
		chosenID := answers[question.ID]

		var selected, correct *QuizAnswer
		for i := range question.Answers {
			answer := question.Answers[i]
			if answer.ID == chosenID {
				selected = &answer
			}
			if answer.Correct && correct == nil {
				correct = &answer
			}
		}

		results = append(results, QuestionResult{
			Question:  question,
			Selected:  selected,
			Correct:   correct,
			IsCorrect: selected != nil && selected.Correct,
		})
	}
	return results
}
