package recovery

import (
	"crypto/ed25519"
	"errors"
	"sync"

	"github.com/auranet/aura/ids"
)

var (
	ErrInsufficient      = errors.New("recovery: fewer than threshold shares collected")
	ErrAlreadyRecovered  = errors.New("recovery: session already completed")
	ErrInvalidSignature  = errors.New("recovery: share signature invalid, guardian marked byzantine")
	ErrGuardianExcluded  = errors.New("recovery: guardian already excluded as byzantine for this session")
)

// RecoveryRequest is broadcast by the requester to every guardian over
// an out-of-band recovery code.
type RecoveryRequest struct {
	Session       ids.SessionId
	Account       ids.AccountId
	Justification string
}

// ShareRelease is a guardian's root-key share, released into the
// recovery context only after the guardian's own consensus-gated
// acceptance of the request.
type ShareRelease struct {
	Session   ids.SessionId
	Guardian  ids.GuardianId
	Share     []byte
	Signature []byte
	PublicKey ed25519.PublicKey
}

// verify checks the release's signature covers (session, guardian,
// share).
func (r ShareRelease) verify() bool {
	payload := append(append(append([]byte{}, r.Session.Bytes()...), r.Guardian.Bytes()...), r.Share...)
	return ed25519.Verify(r.PublicKey, payload, r.Signature)
}

// Registry tracks which recovery sessions have already completed, so a
// replayed request for the same SessionId is rejected idempotently
// rather than re-running recovery.
type Registry struct {
	mu        sync.Mutex
	completed map[ids.SessionId]struct{}
}

// NewRegistry returns an empty completed-session registry.
func NewRegistry() *Registry {
	return &Registry{completed: make(map[ids.SessionId]struct{})}
}

// MarkCompleted records session as finished.
func (r *Registry) MarkCompleted(session ids.SessionId) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed[session] = struct{}{}
}

// IsCompleted reports whether session has already finished.
func (r *Registry) IsCompleted(session ids.SessionId) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.completed[session]
	return ok
}

// Session collects share releases toward reconstructing a root key for
// one recovery attempt.
type Session struct {
	mu sync.Mutex

	request   RecoveryRequest
	set       GuardianSet
	byzantine map[ids.GuardianId]struct{}
	shares    map[ids.GuardianId]ShareRelease
	registry  *Registry
}

// Open starts a recovery session, refusing outright if this session id
// already completed (replay).
func Open(request RecoveryRequest, set GuardianSet, registry *Registry) (*Session, error) {
	if registry.IsCompleted(request.Session) {
		return nil, ErrAlreadyRecovered
	}
	return &Session{
		request:   request,
		set:       set,
		byzantine: make(map[ids.GuardianId]struct{}),
		shares:    make(map[ids.GuardianId]ShareRelease),
		registry:  registry,
	}, nil
}

// Accept validates and records a guardian's released share. An invalid
// signature marks the guardian byzantine and excludes it from this
// session's threshold count, without aborting the session.
func (s *Session) Accept(release ShareRelease) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.set.Contains(release.Guardian) {
		return ErrUnknownGuardian
	}
	if _, excluded := s.byzantine[release.Guardian]; excluded {
		return ErrGuardianExcluded
	}
	if !release.verify() {
		s.byzantine[release.Guardian] = struct{}{}
		return ErrInvalidSignature
	}
	s.shares[release.Guardian] = release
	return nil
}

// Collected returns the number of valid, non-byzantine shares accepted
// so far.
func (s *Session) Collected() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.shares)
}

// Reconstruct returns every collected share once at least the
// guardian set's threshold has been reached, marking the session
// completed so a replay of the same SessionId is rejected by Open.
func (s *Session) Reconstruct() ([]ShareRelease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.shares) < s.set.Threshold {
		return nil, ErrInsufficient
	}
	out := make([]ShareRelease, 0, len(s.shares))
	for _, r := range s.shares {
		out = append(out, r)
	}
	s.registry.MarkCompleted(s.request.Session)
	return out, nil
}
