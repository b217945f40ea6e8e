package webreg

import (
	"sync"
	"sync/atomic"
)

// Session holds the mutable state a Client carries between requests: the
// opaque credential string, the bound term, a request counter, and a
// validity flag. The two implementations trade synchronization for
// speed; pick SharedSession unless the client provably stays on one
// goroutine.
type Session interface {
	Credential() string
	SetCredential(cred string)
	Term() string
	SetTerm(term string)
	// NextRequest increments and returns the request counter.
	NextRequest() uint64
	// Valid reports whether the last complete response accepted the
	// credential. It starts true.
	Valid() bool

	setValid(ok bool)
}

// OwnedSession is a session for a client owned by a single goroutine.
// It performs no synchronization; sharing it across goroutines is a data
// race.
type OwnedSession struct {
	credential string
	term       string
	requests   uint64
	invalid    bool
}

func NewOwnedSession(credential, term string) *OwnedSession {
	return &OwnedSession{credential: credential, term: term}
}

func (s *OwnedSession) Credential() string { return s.credential }

func (s *OwnedSession) SetCredential(cred string) {
	s.credential = cred
	s.invalid = false
}
func (s *OwnedSession) Term() string        { return s.term }
func (s *OwnedSession) SetTerm(term string) { s.term = term }
func (s *OwnedSession) Valid() bool         { return !s.invalid }
func (s *OwnedSession) setValid(ok bool)    { s.invalid = !ok }

func (s *OwnedSession) NextRequest() uint64 {
	s.requests++
	return s.requests
}

// SharedSession is a session safe for any number of goroutines. Reads of
// the credential and term take a shared lock and copy out; writes take
// the lock exclusively and only for the assignment. No lock is ever held
// across a network call. The request counter and validity flag are
// atomics so the hot path never contends with credential rotation.
type SharedSession struct {
	mu         sync.RWMutex
	credential string
	term       string

	requests atomic.Uint64
	invalid  atomic.Bool
}

func NewSharedSession(credential, term string) *SharedSession {
	return &SharedSession{credential: credential, term: term}
}

func (s *SharedSession) Credential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential
}

func (s *SharedSession) SetCredential(cred string) {
	s.mu.Lock()
	s.credential = cred
	s.mu.Unlock()
	// a fresh credential is presumed valid until proven otherwise
	s.invalid.Store(false)
}

func (s *SharedSession) Term() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.term
}

func (s *SharedSession) SetTerm(term string) {
	s.mu.Lock()
	s.term = term
	s.mu.Unlock()
}

func (s *SharedSession) NextRequest() uint64 {
	return s.requests.Add(1)
}

func (s *SharedSession) Valid() bool      { return !s.invalid.Load() }
func (s *SharedSession) setValid(ok bool) { s.invalid.Store(!ok) }
