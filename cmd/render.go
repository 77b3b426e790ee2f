package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spigell/hirescore/internal/reconcile"
	"github.com/spigell/hirescore/internal/session"
)

var toneMarks = map[reconcile.Tone]string{
	reconcile.ToneGood:    "+",
	reconcile.ToneWarn:    "~",
	reconcile.ToneBad:     "!",
	reconcile.ToneNeutral: " ",
}

func printNotice(w io.Writer, board *session.Board) {
	notice, ok := board.Current()
	if !ok {
		return
	}

	fmt.Fprintf(w, "[%s] %s\n", notice.Kind, notice.Message)
	if notice.Kind == session.NoticeError {
		board.Dismiss()
	}
}

func printMatch(w io.Writer, title string, v reconcile.View) {
	fmt.Fprintf(w, "%s: %s [%s%s]\n", title, v.Score, toneMarks[v.Tone], v.Badge)

	if v.Skills != nil {
		fmt.Fprintf(w, "  skills matched: %d/%d\n", v.Skills.Matched, v.Skills.Total)
	}

	if v.Message != "" {
		fmt.Fprintf(w, "  %s\n", v.Message)
	}

	printGaps(w, v.Gaps)
}

func printGaps(w io.Writer, gaps []string) {
	if len(gaps) == 0 {
		return
	}

	fmt.Fprintln(w, "  gaps:")
	for _, gap := range gaps {
		fmt.Fprintf(w, "    - %s\n", gap)
	}
}

func printGrading(w io.Writer, g reconcile.GradingView) {
	fmt.Fprintf(w, "Quiz: %s", g.Overall)
	if g.QuizMatch.Known {
		fmt.Fprintf(w, " (skill coverage %s)", g.QuizMatch)
	}
	fmt.Fprintln(w)

	for _, q := range g.Questions {
		fmt.Fprintf(w, "  Q%d %s: %s\n", q.Number, q.Score, q.Text)
		if q.Tip != "" {
			fmt.Fprintf(w, "     tip: %s\n", q.Tip)
		}
	}

	if g.Message != "" {
		fmt.Fprintf(w, "  %s\n", g.Message)
	}

	printGaps(w, g.Gaps)
}

func printState(w io.Writer, s session.State, opts reconcile.Options) {
	fmt.Fprintf(w, "session %s, backend %s\n", s.SessionID, s.Health)
	if s.Busy != "" {
		fmt.Fprintf(w, "in progress: %s\n", s.Busy)
	}

	job := "-"
	if s.Job != nil {
		job = fmt.Sprintf("#%d %s", s.Job.ID, s.Job.Title)
	}
	fmt.Fprintf(w, "job:    %-10s %s\n", s.JobStatus, job)

	resume := "-"
	if s.Resume != nil {
		resume = fmt.Sprintf("#%d", s.Resume.ID)
		if s.Resume.FromFile() {
			resume += fmt.Sprintf(" %s (%d chars)", s.Resume.Filename, s.Resume.Chars)
		}
	}
	fmt.Fprintf(w, "resume: %-10s %s\n", s.ResumeStatus, resume)

	quiz := "-"
	if s.Quiz != nil {
		quiz = fmt.Sprintf("#%d, %d/%d answered", s.Quiz.ID, answered(s), len(s.Quiz.Questions))
	}
	fmt.Fprintf(w, "quiz:   %-10s %s\n", s.QuizStatus, quiz)

	if s.Grading != nil {
		printGrading(w, reconcile.Grading(s.Quiz, s.Grading.Grading, opts))
	}
	if s.CVMatch != nil {
		printMatch(w, "CV match", reconcile.Reconcile(reconcile.KindCV, s.CVMatch, opts))
	}
	if s.Match != nil {
		printMatch(w, "Combined fit", reconcile.Reconcile(reconcile.KindCombined, s.Match, opts))
	}
}

func answered(s session.State) int {
	n := 0
	for _, q := range s.Quiz.Questions {
		if strings.TrimSpace(s.Answers[q.ID]) != "" {
			n++
		}
	}
	return n
}
