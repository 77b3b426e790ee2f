package session

import "strings"

type jobSnapshot struct {
	title       string
	description string
}

// Tracker remembers the last committed JD and resume text so repeated
// submits of unchanged content do not reach the backend. A missing snapshot
// means every input counts as changed.
type Tracker struct {
	job    *jobSnapshot
	resume *string
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// JobChanged compares trimmed values with the last commit.
func (t *Tracker) JobChanged(title, description string) bool {
	if t.job == nil {
		return true
	}

	return t.job.title != strings.TrimSpace(title) ||
		t.job.description != strings.TrimSpace(description)
}

func (t *Tracker) CommitJob(title, description string) {
	t.job = &jobSnapshot{
		title:       strings.TrimSpace(title),
		description: strings.TrimSpace(description),
	}
}

func (t *Tracker) ResumeChanged(text string) bool {
	if t.resume == nil {
		return true
	}

	return *t.resume != strings.TrimSpace(text)
}

func (t *Tracker) CommitResume(text string) {
	trimmed := strings.TrimSpace(text)
	t.resume = &trimmed
}

// ForgetResume drops the text snapshot. Called after a file upload: the file
// content is never assumed to equal any pasted text.
func (t *Tracker) ForgetResume() {
	t.resume = nil
}

func (t *Tracker) Reset() {
	t.job = nil
	t.resume = nil
}
