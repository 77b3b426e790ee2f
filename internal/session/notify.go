package session

import (
	"sync"
	"time"
)

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
	NoticeInfo    NoticeKind = "info"
)

type Notice struct {
	Kind      NoticeKind
	Operation string
	Message   string
	At        time.Time
}

// Notifier receives every user-visible outcome of the orchestrator.
type Notifier interface {
	Notify(Notice)
}

// Board keeps the latest notice. Errors stay until dismissed, success and
// info notices expire after ttl.
type Board struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	current *Notice
}

const defaultNoticeTTL = 5 * time.Second

func NewBoard(ttl time.Duration) *Board {
	if ttl <= 0 {
		ttl = defaultNoticeTTL
	}
	return &Board{ttl: ttl, now: time.Now}
}

func (b *Board) Notify(n Notice) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n.At.IsZero() {
		n.At = b.now()
	}
	b.current = &n
}

// Current returns the visible notice, if any.
func (b *Board) Current() (Notice, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.current == nil {
		return Notice{}, false
	}

	if b.current.Kind != NoticeError && b.now().Sub(b.current.At) >= b.ttl {
		b.current = nil
		return Notice{}, false
	}

	return *b.current, true
}

func (b *Board) Dismiss() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.current = nil
}
