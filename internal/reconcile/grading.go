package reconcile

import (
	"strings"

	"github.com/spigell/hirescore/internal/backend"
)

// QuestionView is one graded answer, numbered from 1 in quiz order.
type QuestionView struct {
	Number int
	Text   string
	Score  Score
	Tip    string
}

type GradingView struct {
	Overall   Score
	QuizMatch Score
	Questions []QuestionView
	Gaps      []string
	Message   string
}

// Grading pairs feedback with the quiz questions by question id. Feedback for
// an unknown question keeps its position with empty text.
func Grading(quiz *backend.Quiz, g *backend.Grading, opts Options) GradingView {
	if g == nil {
		return GradingView{}
	}

	texts := make(map[int64]string)
	if quiz != nil {
		for _, q := range quiz.Questions {
			texts[q.ID] = q.Text
		}
	}

	view := GradingView{
		Overall:   known(g.Overall),
		Questions: make([]QuestionView, 0, len(g.PerQuestion)),
	}

	for i, fb := range g.PerQuestion {
		view.Questions = append(view.Questions, QuestionView{
			Number: i + 1,
			Text:   texts[fb.QuestionID],
			Score:  known(fb.Score),
			Tip:    strings.TrimSpace(fb.Tip),
		})
	}

	if g.QuizMatch != nil {
		view.QuizMatch = known(g.QuizMatch.Score)
		view.Gaps = Gaps(&backend.MatchResult{QuizMatch: g.QuizMatch}, opts.MaxGaps)
		view.Message = strings.TrimSpace(g.QuizMatch.Message)
	}

	return view
}
