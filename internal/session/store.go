package session

import "github.com/spigell/hirescore/internal/backend"

type Job struct {
	ID          int64
	Title       string
	Description string
}

// Resume is the current resume slot. SourceText is empty for uploads.
type Resume struct {
	ID         int64
	SourceText string
	Filename   string
	Chars      int
}

func (r *Resume) FromFile() bool {
	return r != nil && r.Filename != ""
}

// Grading remembers which quiz it was produced for.
type Grading struct {
	QuizID int64
	*backend.Grading
}

// Store holds one value per entity slot. It is not safe for concurrent use;
// the Orchestrator serializes access.
type Store struct {
	job     *Job
	resume  *Resume
	quiz    *backend.Quiz
	answers map[int64]string
	grading *Grading
	cvMatch *backend.MatchResult
	match   *backend.MatchResult
}

func NewStore() *Store {
	return &Store{answers: make(map[int64]string)}
}

func (s *Store) Job() *Job { return s.job }
func (s *Store) Resume() *Resume { return s.resume }
func (s *Store) Quiz() *backend.Quiz { return s.quiz }
func (s *Store) Grading() *Grading { return s.grading }
func (s *Store) CVMatch() *backend.MatchResult { return s.cvMatch }
func (s *Store) Match() *backend.MatchResult { return s.match }

func (s *Store) SetJob(j *Job) { s.job = j }
func (s *Store) SetResume(r *Resume) { s.resume = r }
func (s *Store) SetQuiz(q *backend.Quiz) { s.quiz = q }
func (s *Store) SetGrading(g *Grading) { s.grading = g }
func (s *Store) SetCVMatch(m *backend.MatchResult) { s.cvMatch = m }
func (s *Store) SetMatch(m *backend.MatchResult) { s.match = m }

// Answer returns the stored answer or an empty string.
func (s *Store) Answer(questionID int64) string {
	return s.answers[questionID]
}

func (s *Store) SetAnswer(questionID int64, text string) {
	s.answers[questionID] = text
}

func (s *Store) Answers() map[int64]string {
	out := make(map[int64]string, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

func (s *Store) ClearAnswers() {
	s.answers = make(map[int64]string)
}

// ClearAll empties every slot and makes t forget its snapshots in the same step.
func (s *Store) ClearAll(t *Tracker) {
	*s = Store{answers: make(map[int64]string)}
	if t != nil {
		t.Reset()
	}
}
