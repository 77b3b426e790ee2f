package session

import (
	"testing"

	"github.com/spigell/hirescore/internal/backend"
)

func TestStoreClearAll(t *testing.T) {
	s := NewStore()
	tr := NewTracker()

	s.SetJob(&Job{ID: 1})
	s.SetResume(&Resume{ID: 2})
	s.SetQuiz(&backend.Quiz{ID: 3})
	s.SetAnswer(30, "answer")
	s.SetGrading(&Grading{QuizID: 3, Grading: &backend.Grading{}})
	s.SetCVMatch(&backend.MatchResult{})
	s.SetMatch(&backend.MatchResult{})
	tr.CommitJob("t", "d")

	s.ClearAll(tr)

	if s.Job() != nil || s.Resume() != nil || s.Quiz() != nil || s.Grading() != nil {
		t.Fatalf("entity slots not cleared")
	}
	if s.CVMatch() != nil || s.Match() != nil {
		t.Fatalf("match slots not cleared")
	}
	if s.Answer(30) != "" || len(s.Answers()) != 0 {
		t.Fatalf("answers not cleared")
	}
	if !tr.JobChanged("t", "d") {
		t.Fatalf("tracker not reset")
	}

	s.SetAnswer(1, "still usable")
	if s.Answer(1) != "still usable" {
		t.Fatalf("store unusable after clear")
	}
}

func TestStoreAnswersReturnsCopy(t *testing.T) {
	s := NewStore()
	s.SetAnswer(1, "a")

	answers := s.Answers()
	answers[1] = "changed"

	if s.Answer(1) != "a" {
		t.Fatalf("store mutated through the returned map")
	}
}
