// Package session tracks the current translation request and its result.
//
// Each Begin issues a Ticket. Completions carrying an older ticket are
// discarded, so a slow response can never overwrite a newer one.
package session

import (
	"sync"

	"github.com/alnah/go-formalize/internal/align"
)

// Ticket identifies one request. Compare with Session.Current.
type Ticket uint64

// Result is what a finished request stores.
type Result struct {
	Raw   string
	Pairs align.Pairs
}

// Snapshot is a copy of the session state.
type Snapshot struct {
	Raw   string      `json:"raw"`
	Pairs align.Pairs `json:"pairs"`
	Error string      `json:"error,omitempty"`
	Busy  bool        `json:"busy"`
}

// Session holds the latest result. Safe for concurrent use.
type Session struct {
	mu         sync.RWMutex
	generation Ticket
	busy       bool
	raw        string
	pairs      align.Pairs
	errMsg     string
}

// New returns an empty session.
func New() *Session {
	return &Session{}
}

// Begin starts a request. Previous output and error are cleared.
func (s *Session) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.busy = true
	s.raw = ""
	s.pairs = nil
	s.errMsg = ""
	return s.generation
}

// Current returns the ticket of the latest request.
func (s *Session) Current() Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Commit stores r if t is still current. Returns false for a stale ticket.
func (s *Session) Commit(t Ticket, r Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t != s.generation {
		return false
	}
	s.busy = false
	s.raw = r.Raw
	s.pairs = r.Pairs.Clone()
	s.errMsg = ""
	return true
}

// Fail records err if t is still current. Returns false for a stale ticket.
// Pairs stay empty after a failure.
func (s *Session) Fail(t Ticket, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t != s.generation {
		return false
	}
	s.busy = false
	s.raw = ""
	s.pairs = nil
	if err != nil {
		s.errMsg = err.Error()
	}
	return true
}

// Edit replaces the translation of one pair.
// Returns align.ErrPairNotFound for an unknown id.
func (s *Session) Edit(id, translated string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pairs.Edit(id, translated)
}

// Pair returns the pair with the given id.
func (s *Session) Pair(id string) (align.Pair, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pairs.Find(id)
}

// Pairs returns a copy of the current pairs.
func (s *Session) Pairs() align.Pairs {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pairs.Clone()
}

// JoinedText returns the translation for copying.
func (s *Session) JoinedText() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pairs.JoinedText(s.raw)
}

// Snapshot returns a copy of the whole state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Raw:   s.raw,
		Pairs: s.pairs.Clone(),
		Error: s.errMsg,
		Busy:  s.busy,
	}
}
