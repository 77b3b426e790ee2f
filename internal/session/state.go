package session

import "github.com/spigell/hirescore/internal/backend"

// SlotStatus is the lifecycle of the job and resume slots.
type SlotStatus string

const (
	SlotEmpty  SlotStatus = "empty"
	SlotSaving SlotStatus = "saving"
	SlotSaved  SlotStatus = "saved"
)

type QuizStatus string

const (
	QuizEmpty      QuizStatus = "empty"
	QuizGenerating QuizStatus = "generating"
	QuizReady      QuizStatus = "ready"
	QuizGrading    QuizStatus = "grading"
	QuizGraded     QuizStatus = "graded"
)

type MatchStatus string

const (
	MatchIdle      MatchStatus = "idle"
	MatchComputing MatchStatus = "computing"
	MatchComputed  MatchStatus = "computed"
)

type HealthStatus string

const (
	HealthUnknown  HealthStatus = "unknown"
	HealthChecking HealthStatus = "checking"
	HealthOK       HealthStatus = "ok"
	HealthError    HealthStatus = "error"
)

// State is a read-only snapshot. Entity pointers are shared with the store,
// which only ever replaces them.
type State struct {
	SessionID string
	Busy      string
	Health    HealthStatus

	Job     *Job
	Resume  *Resume
	Quiz    *backend.Quiz
	Answers map[int64]string
	Grading *Grading
	CVMatch *backend.MatchResult
	Match   *backend.MatchResult

	JobStatus     SlotStatus
	ResumeStatus  SlotStatus
	QuizStatus    QuizStatus
	CVMatchStatus MatchStatus
	MatchStatus   MatchStatus
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()

	busy, _ := o.gate.Held()

	return State{
		SessionID: o.sessionID,
		Busy:      busy,
		Health:    o.health,

		Job:     o.store.Job(),
		Resume:  o.store.Resume(),
		Quiz:    o.store.Quiz(),
		Answers: o.store.Answers(),
		Grading: o.store.Grading(),
		CVMatch: o.store.CVMatch(),
		Match:   o.store.Match(),

		JobStatus:     slotStatus(o.store.Job() != nil, busy == OpSaveJob),
		ResumeStatus:  slotStatus(o.store.Resume() != nil, busy == OpSaveResume || busy == OpUploadResume),
		QuizStatus:    quizStatus(o.store, busy),
		CVMatchStatus: matchStatus(o.store.CVMatch() != nil, busy == OpCVMatch),
		MatchStatus:   matchStatus(o.store.Match() != nil, busy == OpMatch),
	}
}

func slotStatus(saved, saving bool) SlotStatus {
	switch {
	case saving:
		return SlotSaving
	case saved:
		return SlotSaved
	default:
		return SlotEmpty
	}
}

func quizStatus(s *Store, busy string) QuizStatus {
	switch {
	case busy == OpStartQuiz:
		return QuizGenerating
	case busy == OpGradeQuiz:
		return QuizGrading
	case s.Grading() != nil:
		return QuizGraded
	case s.Quiz() != nil:
		return QuizReady
	default:
		return QuizEmpty
	}
}

func matchStatus(computed, computing bool) MatchStatus {
	switch {
	case computing:
		return MatchComputing
	case computed:
		return MatchComputed
	default:
		return MatchIdle
	}
}
