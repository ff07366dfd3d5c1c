package quiz

func optionsOf(q *QuizQuestion) []Option {
	opts := []Option{{Key: "A", Text: q.OptionA}, {Key: "B", Text: q.OptionB}}
	for _, o := range []struct {
		key  string
		text *string
	}{{"C", q.OptionC}, {"D", q.OptionD}, {"E", q.OptionE}} {
		if o.text != nil && *o.text != "" {
			opts = append(opts, Option{Key: o.key, Text: *o.text})
		}
	}
	return opts
}

func questionView(q *QuizQuestion, position int, reveal bool) QuestionView {
	v := QuestionView{
		ID:             q.ID,
		Position:       position,
		QuestionText:   q.QuestionText,
		QuestionImage:  q.QuestionImage,
		Options:        optionsOf(q),
		Difficulty:     q.Difficulty,
		MultipleChoice: IsMultipleChoice(q.CorrectAnswer),
	}
	if reveal {
		correct := q.CorrectAnswer
		v.CorrectAnswer = &correct
		v.Explanation = q.Explanation
	}
	return v
}

func attemptSummary(a *QuizAttempt) AttemptView {
	v := AttemptView{
		ID:             a.ID,
		UserID:         a.UserID,
		Mode:           a.Mode,
		SubjectID:      a.SubjectID,
		BlockID:        a.BlockID,
		TotalQuestions: a.TotalQuestions,
		CorrectAnswers: a.CorrectAnswers,
		WrongAnswers:   a.WrongAnswers,
		SkippedAnswers: a.SkippedAnswers,
		Score:          a.Score,
		TimeSpent:      a.TimeSpent,
		IsCompleted:    a.IsCompleted,
		StartedAt:      a.StartedAt,
		CompletedAt:    a.CompletedAt,
	}
	if a.Subject != nil {
		v.SubjectName = a.Subject.Name
	}
	if a.Block != nil {
		v.BlockTitle = a.Block.Title
	}
	return v
}

// attemptDetail joins each answer to its question. Answer keys are revealed
// only for completed attempts.
func attemptDetail(a *QuizAttempt) AttemptView {
	v := attemptSummary(a)
	v.Answers = make([]AnswerView, 0, len(a.Answers))
	for i := range a.Answers {
		ans := &a.Answers[i]
		av := AnswerView{
			QuestionID: ans.QuestionID,
			Position:   ans.Position,
			UserAnswer: ans.UserAnswer,
			IsCorrect:  ans.IsCorrect,
			TimeSpent:  ans.TimeSpent,
		}
		if ans.Question != nil {
			av.Question = questionView(ans.Question, ans.Position, a.IsCompleted)
		}
		v.Answers = append(v.Answers, av)
	}
	return v
}
