package session

import (
	"context"
	"io"
	"sync"

	"github.com/spigell/hirescore/internal/backend"
)

// stubBackend records every call. Unset hooks return canned successes.
type stubBackend struct {
	mu    sync.Mutex
	calls []string

	saveJob    func(backend.JobRequest) (*backend.JobResponse, error)
	saveResume func(backend.ResumeTextRequest) (*backend.ResumeResponse, error)
	upload     func(filename string, content []byte) (*backend.ResumeResponse, error)
	startQuiz  func(backend.QuizStartRequest) (*backend.Quiz, error)
	gradeQuiz  func(backend.GradeRequest) (*backend.Grading, error)
	match      func(backend.MatchRequest) (*backend.MatchResult, error)
	health     func() error
}

func (s *stubBackend) record(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, op)
}

func (s *stubBackend) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.calls...)
}

func (s *stubBackend) Health(_ context.Context) error {
	s.record(backend.OpHealth)
	if s.health != nil {
		return s.health()
	}
	return nil
}

func (s *stubBackend) SaveJob(_ context.Context, req backend.JobRequest) (*backend.JobResponse, error) {
	s.record(backend.OpSaveJob)
	if s.saveJob != nil {
		return s.saveJob(req)
	}
	return &backend.JobResponse{JobID: 1}, nil
}

func (s *stubBackend) SaveResumeText(_ context.Context, req backend.ResumeTextRequest) (*backend.ResumeResponse, error) {
	s.record(backend.OpSaveResume)
	if s.saveResume != nil {
		return s.saveResume(req)
	}
	return &backend.ResumeResponse{ResumeID: 2}, nil
}

func (s *stubBackend) UploadResume(_ context.Context, filename string, content io.Reader) (*backend.ResumeResponse, error) {
	s.record(backend.OpUploadResume)
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	if s.upload != nil {
		return s.upload(filename, data)
	}
	return &backend.ResumeResponse{ResumeID: 3, Chars: len(data)}, nil
}

func (s *stubBackend) StartQuiz(_ context.Context, req backend.QuizStartRequest) (*backend.Quiz, error) {
	s.record(backend.OpStartQuiz)
	if s.startQuiz != nil {
		return s.startQuiz(req)
	}
	return &backend.Quiz{
		ID: 10,
		Questions: []backend.Question{
			{ID: 101, Index: 0, Text: "What is a goroutine?"},
			{ID: 102, Index: 1, Text: "How do channels close?"},
		},
	}, nil
}

func (s *stubBackend) GradeQuiz(_ context.Context, req backend.GradeRequest) (*backend.Grading, error) {
	s.record(backend.OpGradeQuiz)
	if s.gradeQuiz != nil {
		return s.gradeQuiz(req)
	}
	return &backend.Grading{Overall: 72.4}, nil
}

func (s *stubBackend) Match(_ context.Context, req backend.MatchRequest) (*backend.MatchResult, error) {
	s.record(backend.OpMatch)
	if s.match != nil {
		return s.match(req)
	}
	combined := 64.0
	return &backend.MatchResult{Combined: &combined, Badge: "good"}, nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *recordingNotifier) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.notices = append(r.notices, n)
}

func (r *recordingNotifier) All() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Notice(nil), r.notices...)
}

func (r *recordingNotifier) Last() (Notice, bool) {
	all := r.All()
	if len(all) == 0 {
		return Notice{}, false
	}
	return all[len(all)-1], true
}
