// Package session owns the state of one fit assessment: which inputs were
// committed to the backend, which operation is in flight, and the latest
// results. All mutations happen in response to a completed remote call.
package session

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/hirescore/internal/backend"
	"github.com/spigell/hirescore/internal/logger"
	"github.com/spigell/hirescore/internal/reconcile"
	"github.com/spigell/hirescore/internal/utils"
)

// Operation names double as gate labels.
const (
	OpSaveJob      = backend.OpSaveJob
	OpSaveResume   = backend.OpSaveResume
	OpUploadResume = backend.OpUploadResume
	OpStartQuiz    = backend.OpStartQuiz
	OpGradeQuiz    = backend.OpGradeQuiz
	OpCVMatch      = "cv_match"
	OpMatch        = backend.OpMatch
	OpAnswer       = "answer"
	OpReset        = "reset"
)

const (
	MinQuizQuestions     = 1
	MaxQuizQuestions     = 10
	DefaultQuizQuestions = 5
	// MaxUploadBytes is the largest resume file accepted for upload.
	MaxUploadBytes = 5 << 20

	logTextLimit = 80
)

var resumeExtensions = []string{".pdf", ".docx", ".txt"}

var failureFallbacks = map[string]string{
	OpSaveJob:      "Failed to save JD",
	OpSaveResume:   "Failed to save resume",
	OpUploadResume: "Upload failed",
	OpStartQuiz:    "Quiz start failed",
	OpGradeQuiz:    "Quiz grade failed",
	OpCVMatch:      "CV match failed",
	OpMatch:        "Combined fit failed",
}

// Backend is the remote matching service. *backend.Client implements it.
type Backend interface {
	Health(ctx context.Context) error
	SaveJob(ctx context.Context, req backend.JobRequest) (*backend.JobResponse, error)
	SaveResumeText(ctx context.Context, req backend.ResumeTextRequest) (*backend.ResumeResponse, error)
	UploadResume(ctx context.Context, filename string, content io.Reader) (*backend.ResumeResponse, error)
	StartQuiz(ctx context.Context, req backend.QuizStartRequest) (*backend.Quiz, error)
	GradeQuiz(ctx context.Context, req backend.GradeRequest) (*backend.Grading, error)
	Match(ctx context.Context, req backend.MatchRequest) (*backend.MatchResult, error)
}

type Config struct {
	// QuizQuestions is used when StartQuiz is called with zero.
	QuizQuestions int
}

type Orchestrator struct {
	backend  Backend
	notifier Notifier
	logger   *zap.Logger
	gate     *Gate
	cfg      Config
	newID    func() string

	mu        sync.Mutex
	tracker   *Tracker
	store     *Store
	epoch     uint64
	sessionID string
	health    HealthStatus
}

func New(b Backend, n Notifier, log *zap.Logger, cfg Config) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	if n == nil {
		n = discardNotifier{}
	}
	if cfg.QuizQuestions == 0 {
		cfg.QuizQuestions = DefaultQuizQuestions
	}

	return &Orchestrator{
		backend:   b,
		notifier:  n,
		logger:    log,
		gate:      NewGate(),
		cfg:       cfg,
		newID:     uuid.NewString,
		tracker:   NewTracker(),
		store:     NewStore(),
		sessionID: uuid.NewString(),
		health:    HealthUnknown,
	}
}

type discardNotifier struct{}

func (discardNotifier) Notify(Notice) {}

// commitFunc runs under o.mu once the response is in. stale=true drops it silently.
type commitFunc func() (message string, stale bool)

type callFunc func(ctx context.Context) (commitFunc, error)

// plan is what an operation decided while holding the gate. A nil call means
// the input is unchanged and nothing is sent.
type plan struct {
	call      callFunc
	unchanged string
}

// exec runs one mutating operation: gate, validation, at most one remote
// call, then an all-or-nothing commit. The gate is released on every path.
func (o *Orchestrator) exec(ctx context.Context, op string, prepare func() (plan, error)) (Outcome, error) {
	tok, ok := o.gate.TryAcquire(op)
	if !ok {
		held, _ := o.gate.Held()
		o.logger.Debug("operation ignored", zap.String(logger.FieldOperation, op), zap.String("in_progress", held))
		return OutcomeBusy, nil
	}
	defer o.gate.Release(tok)

	o.mu.Lock()
	epoch := o.epoch
	sessionID := o.sessionID
	p, err := prepare()
	o.mu.Unlock()

	log := logger.WithSession(o.logger, sessionID, op)

	if err != nil {
		log.Info("rejected before sending", zap.Error(err))
		o.notify(NoticeError, op, err.Error())
		return OutcomeFailed, err
	}

	if p.call == nil {
		log.Debug("input unchanged, nothing sent")
		o.notify(NoticeInfo, op, p.unchanged)
		return OutcomeUnchanged, nil
	}

	commit, callErr := p.call(backend.WithSessionID(ctx, sessionID))

	o.mu.Lock()
	outcome, message := o.settle(epoch, commit, callErr)
	o.mu.Unlock()

	switch outcome {
	case OutcomeStale:
		log.Debug("discarding superseded response")
		return outcome, nil
	case OutcomeFailed:
		log.Warn("operation failed", zap.Error(callErr))
		o.notify(NoticeError, op, failureMessage(op, callErr))
		return outcome, callErr
	default:
		log.Info("operation succeeded", zap.String("notice", message))
		o.notify(NoticeSuccess, op, message)
		return outcome, nil
	}
}

func (o *Orchestrator) settle(epoch uint64, commit commitFunc, err error) (Outcome, string) {
	if o.epoch != epoch {
		return OutcomeStale, ""
	}

	if err != nil {
		return OutcomeFailed, ""
	}

	message, stale := commit()
	if stale {
		return OutcomeStale, ""
	}

	return OutcomeApplied, message
}

func (o *Orchestrator) notify(kind NoticeKind, op, message string) {
	o.notifier.Notify(Notice{Kind: kind, Operation: op, Message: message})
}

func failureMessage(op string, err error) string {
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			return msg
		}
	}
	return failureFallbacks[op]
}

func missingID(op, field string) error {
	return &backend.RemoteError{Op: op, Message: fmt.Sprintf("response is missing %s", field)}
}

// SaveJob commits a job description. Unchanged input is not resent.
func (o *Orchestrator) SaveJob(ctx context.Context, title, description string) (Outcome, error) {
	return o.exec(ctx, OpSaveJob, func() (plan, error) {
		t, d := strings.TrimSpace(title), strings.TrimSpace(description)
		if t == "" {
			return plan{}, invalid(OpSaveJob, "title", "job title is required")
		}
		if d == "" {
			return plan{}, invalid(OpSaveJob, "description", "job description is required")
		}

		if current := o.store.Job(); current != nil && !o.tracker.JobChanged(t, d) {
			return plan{unchanged: fmt.Sprintf("JD unchanged (job_id: %d)", current.ID)}, nil
		}

		o.logger.Debug("saving job description",
			zap.String("title", t),
			zap.String("description", utils.TruncateForLog(d, logTextLimit)),
		)

		req := backend.JobRequest{Title: t, Description: d}
		return plan{call: func(ctx context.Context) (commitFunc, error) {
			resp, err := o.backend.SaveJob(ctx, req)
			if err != nil {
				return nil, err
			}
			if resp.JobID <= 0 {
				return nil, missingID(OpSaveJob, "job_id")
			}

			return func() (string, bool) {
				if previous := o.store.Job(); previous != nil && previous.ID != resp.JobID {
					o.dropJobScoped()
				}
				o.store.SetJob(&Job{ID: resp.JobID, Title: t, Description: d})
				o.tracker.CommitJob(t, d)
				return fmt.Sprintf("Saved JD (job_id: %d)", resp.JobID), false
			}, nil
		}}, nil
	})
}

// dropJobScoped clears everything that was computed against the previous job.
func (o *Orchestrator) dropJobScoped() {
	o.store.SetQuiz(nil)
	o.store.SetGrading(nil)
	o.store.ClearAnswers()
	o.store.SetCVMatch(nil)
	o.store.SetMatch(nil)
}

// SaveResumeText commits pasted resume text. It replaces any current resume.
func (o *Orchestrator) SaveResumeText(ctx context.Context, text string) (Outcome, error) {
	return o.exec(ctx, OpSaveResume, func() (plan, error) {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return plan{}, invalid(OpSaveResume, "text", "resume text is required")
		}

		if current := o.store.Resume(); current != nil && !o.tracker.ResumeChanged(trimmed) {
			return plan{unchanged: fmt.Sprintf("Resume unchanged (resume_id: %d)", current.ID)}, nil
		}

		req := backend.ResumeTextRequest{Text: trimmed}
		return plan{call: func(ctx context.Context) (commitFunc, error) {
			resp, err := o.backend.SaveResumeText(ctx, req)
			if err != nil {
				return nil, err
			}
			if resp.ResumeID <= 0 {
				return nil, missingID(OpSaveResume, "resume_id")
			}

			return func() (string, bool) {
				o.store.SetResume(&Resume{ID: resp.ResumeID, SourceText: trimmed})
				o.tracker.CommitResume(trimmed)
				return fmt.Sprintf("Saved resume (resume_id: %d)", resp.ResumeID), false
			}, nil
		}}, nil
	})
}

// UploadResume sends a PDF, DOCX or TXT file of at most MaxUploadBytes. It
// always reaches the backend and makes the next pasted text count as changed.
func (o *Orchestrator) UploadResume(ctx context.Context, filename string, size int64, content io.Reader) (Outcome, error) {
	return o.exec(ctx, OpUploadResume, func() (plan, error) {
		name := filepath.Base(strings.TrimSpace(filename))
		if name == "." || name == string(filepath.Separator) || content == nil {
			return plan{}, invalid(OpUploadResume, "file", "resume file is required")
		}

		ext := strings.ToLower(filepath.Ext(name))
		if !slices.Contains(resumeExtensions, ext) {
			return plan{}, invalid(OpUploadResume, "file", "unsupported resume file type %q, expected one of %s", ext, strings.Join(resumeExtensions, ", "))
		}

		if size <= 0 {
			return plan{}, invalid(OpUploadResume, "file", "resume file %s is empty", name)
		}
		if size > MaxUploadBytes {
			return plan{}, invalid(OpUploadResume, "file", "resume file %s is %s, the limit is %s",
				name, utils.FormatFileSize(size), utils.FormatFileSize(MaxUploadBytes))
		}

		return plan{call: func(ctx context.Context) (commitFunc, error) {
			resp, err := o.backend.UploadResume(ctx, name, io.LimitReader(content, MaxUploadBytes))
			if err != nil {
				return nil, err
			}
			if resp.ResumeID <= 0 {
				return nil, missingID(OpUploadResume, "resume_id")
			}

			return func() (string, bool) {
				o.store.SetResume(&Resume{ID: resp.ResumeID, Filename: name, Chars: resp.Chars})
				o.tracker.ForgetResume()
				return fmt.Sprintf("Uploaded resume (id: %d, %d chars)", resp.ResumeID, resp.Chars), false
			}, nil
		}}, nil
	})
}

// StartQuiz generates a quiz for the current job. Zero questions means the
// configured default. A new quiz discards the previous answers and grading.
func (o *Orchestrator) StartQuiz(ctx context.Context, questions int) (Outcome, error) {
	return o.exec(ctx, OpStartQuiz, func() (plan, error) {
		job := o.store.Job()
		if job == nil {
			return plan{}, invalid(OpStartQuiz, "job_id", "save a job description before starting a quiz")
		}

		n := questions
		if n == 0 {
			n = o.cfg.QuizQuestions
		}
		if n < MinQuizQuestions || n > MaxQuizQuestions {
			return plan{}, invalid(OpStartQuiz, "questions", "question count must be between %d and %d, got %d",
				MinQuizQuestions, MaxQuizQuestions, n)
		}

		req := backend.QuizStartRequest{JobID: job.ID, Questions: n}
		return plan{call: func(ctx context.Context) (commitFunc, error) {
			quiz, err := o.backend.StartQuiz(ctx, req)
			if err != nil {
				return nil, err
			}
			if quiz.ID <= 0 {
				return nil, missingID(OpStartQuiz, "quiz_id")
			}

			return func() (string, bool) {
				o.store.SetQuiz(quiz)
				o.store.SetGrading(nil)
				o.store.ClearAnswers()
				return fmt.Sprintf("Quiz started (quiz_id: %d)", quiz.ID), false
			}, nil
		}}, nil
	})
}

// SetAnswer records a client-side answer for a question of the current quiz.
func (o *Orchestrator) SetAnswer(questionID int64, text string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	quiz := o.store.Quiz()
	if quiz == nil {
		return invalid(OpAnswer, "quiz_id", "there is no active quiz")
	}

	if !slices.ContainsFunc(quiz.Questions, func(q backend.Question) bool { return q.ID == questionID }) {
		return invalid(OpAnswer, "question_id", "question %d is not part of quiz %d", questionID, quiz.ID)
	}

	o.store.SetAnswer(questionID, text)
	return nil
}

// GradeQuiz submits an answer for every question of the current quiz. A
// response for a quiz that is no longer current is dropped.
func (o *Orchestrator) GradeQuiz(ctx context.Context) (Outcome, error) {
	return o.exec(ctx, OpGradeQuiz, func() (plan, error) {
		quiz := o.store.Quiz()
		if quiz == nil {
			return plan{}, invalid(OpGradeQuiz, "quiz_id", "start a quiz before submitting answers")
		}

		answers := make([]backend.Answer, 0, len(quiz.Questions))
		for _, q := range quiz.Questions {
			answers = append(answers, backend.Answer{QuestionID: q.ID, Text: o.store.Answer(q.ID)})
		}

		quizID := quiz.ID
		req := backend.GradeRequest{QuizID: quizID, Answers: answers}
		return plan{call: func(ctx context.Context) (commitFunc, error) {
			grading, err := o.backend.GradeQuiz(ctx, req)
			if err != nil {
				return nil, err
			}

			return func() (string, bool) {
				if current := o.store.Quiz(); current == nil || current.ID != quizID {
					return "", true
				}
				o.store.SetGrading(&Grading{QuizID: quizID, Grading: grading})
				return fmt.Sprintf("Quiz graded (%s)", reconcile.Percent(grading.Overall)), false
			}, nil
		}}, nil
	})
}

// ComputeCVMatch compares the current resume with the current job.
func (o *Orchestrator) ComputeCVMatch(ctx context.Context) (Outcome, error) {
	return o.exec(ctx, OpCVMatch, func() (plan, error) {
		job := o.store.Job()
		if job == nil {
			return plan{}, invalid(OpCVMatch, "job_id", "save a job description before running a CV match")
		}
		resume := o.store.Resume()
		if resume == nil {
			return plan{}, invalid(OpCVMatch, "resume_id", "save or upload a resume before running a CV match")
		}

		resumeID := resume.ID
		req := backend.MatchRequest{JobID: job.ID, ResumeID: &resumeID}
		return plan{call: func(ctx context.Context) (commitFunc, error) {
			result, err := o.backend.Match(ctx, req)
			if err != nil {
				return nil, err
			}

			return func() (string, bool) {
				o.store.SetCVMatch(result)
				return "CV match computed", false
			}, nil
		}}, nil
	})
}

// ComputeMatch requests the combined fit from exactly the ids currently held.
func (o *Orchestrator) ComputeMatch(ctx context.Context) (Outcome, error) {
	return o.exec(ctx, OpMatch, func() (plan, error) {
		job := o.store.Job()
		if job == nil {
			return plan{}, invalid(OpMatch, "job_id", "save a job description before computing the combined fit")
		}

		req := backend.MatchRequest{JobID: job.ID}
		if resume := o.store.Resume(); resume != nil {
			id := resume.ID
			req.ResumeID = &id
		}
		if quiz := o.store.Quiz(); quiz != nil {
			id := quiz.ID
			req.QuizID = &id
		}

		return plan{call: func(ctx context.Context) (commitFunc, error) {
			result, err := o.backend.Match(ctx, req)
			if err != nil {
				return nil, err
			}

			return func() (string, bool) {
				o.store.SetMatch(result)
				return "Combined fit computed", false
			}, nil
		}}, nil
	})
}

// Reset returns every slot to its initial state and starts a new session id.
// Responses to calls still in flight are discarded when they arrive.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	o.store.ClearAll(o.tracker)
	o.epoch++
	previous := o.sessionID
	o.sessionID = o.newID()
	o.gate.Discard()
	current := o.sessionID
	o.mu.Unlock()

	o.logger.Info("session reset",
		zap.String("previous_session_id", previous),
		zap.String(logger.FieldSession, current),
	)
	o.notify(NoticeInfo, OpReset, "Session reset")
}

// CheckHealth probes the backend. It does not take the gate.
func (o *Orchestrator) CheckHealth(ctx context.Context) HealthStatus {
	o.setHealth(HealthChecking)

	status := HealthOK
	if err := o.backend.Health(ctx); err != nil {
		o.logger.Warn("backend health check failed", zap.Error(err))
		status = HealthError
	}

	o.setHealth(status)
	return status
}

func (o *Orchestrator) setHealth(status HealthStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.health = status
}
