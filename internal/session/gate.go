package session

import "sync"

// Token proves ownership of the gate. Tokens from before a Discard are stale.
type Token struct {
	op  string
	gen uint64
}

func (t Token) Operation() string {
	return t.op
}

// Gate is a single-slot, non-blocking lock shared by every mutating operation.
type Gate struct {
	mu   sync.Mutex
	held bool
	op   string
	gen  uint64
}

func NewGate() *Gate {
	return &Gate{}
}

// TryAcquire never waits. ok is false when another operation holds the gate.
func (g *Gate) TryAcquire(op string) (Token, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.held {
		return Token{}, false
	}

	g.gen++
	g.held = true
	g.op = op

	return Token{op: op, gen: g.gen}, true
}

// Release frees the gate if tok is the current holder and reports whether it did.
func (g *Gate) Release(tok Token) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.held || tok.gen != g.gen {
		return false
	}

	g.held = false
	g.op = ""
	return true
}

// Held returns the operation in progress.
func (g *Gate) Held() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.op, g.held
}

// Discard frees the gate regardless of holder; the outstanding token becomes stale.
func (g *Gate) Discard() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.gen++
	g.held = false
	g.op = ""
}
