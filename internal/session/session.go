// Package session tracks ingestion sessions: the lifecycle of a batch of
// audio files from upload through indexing, keyed by session ID.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State represents the lifecycle state of an ingestion session.
type State int

const (
	// StatePending - Session created, no files processed yet.
	StatePending State = iota
	// StateIngesting - At least one file is being transcribed or indexed.
	StateIngesting
	// StateIndexed - Finished with at least one file indexed.
	StateIndexed
	// StateFailed - Finished with nothing indexed.
	// "Silence > bad data": a session with zero vectors is failed, not empty-success.
	StateFailed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateIngesting:
		return "INGESTING"
	case StateIndexed:
		return "INDEXED"
	case StateFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// MarshalJSON renders the state as its string form.
func (s State) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON parses the string form back into a state.
func (s *State) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "PENDING":
		*s = StatePending
	case "INGESTING":
		*s = StateIngesting
	case "INDEXED":
		*s = StateIndexed
	case "FAILED":
		*s = StateFailed
	default:
		return fmt.Errorf("unknown session state %q", name)
	}
	return nil
}

// IsTerminal returns true if the state is terminal (INDEXED or FAILED).
func (s State) IsTerminal() bool {
	return s == StateIndexed || s == StateFailed
}

// ErrNotFound is returned for unknown session IDs.
var ErrNotFound = errors.New("session not found")

// FileStatus is the per-file outcome recorded on a session.
type FileStatus struct {
	File     string `json:"file"`
	Segments int    `json:"segments"`
	Indexed  int    `json:"indexed"`
	Error    string `json:"error,omitempty"`
}

// Session is a snapshot of one ingestion session. Store methods return
// copies; callers never see live internal state.
type Session struct {
	ID        string       `json:"id"`
	State     State        `json:"state"`
	Files     []FileStatus `json:"files"`
	Indexed   int          `json:"indexed"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Store is an in-memory session registry. Thread-safe for concurrent access.
//
// State transitions:
//
//	PENDING → INGESTING → INDEXED
//	               │
//	               └──→ FAILED (no file produced vectors)
//
// Recording a file onto a terminal session reopens it to INGESTING; a
// session ID names a logical archive batch, and callers may keep adding
// files to it.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// GetOrCreate returns the session with the given ID, creating it in
// PENDING state if needed. An empty ID gets a generated UUID.
func (s *Store) GetOrCreate(id string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		id = uuid.NewString()
	}
	sess, ok := s.sessions[id]
	if !ok {
		now := time.Now()
		sess = &Session{ID: id, State: StatePending, CreatedAt: now, UpdatedAt: now}
		s.sessions[id] = sess
	}
	return snapshot(sess)
}

// Get returns a snapshot of the session or ErrNotFound.
func (s *Store) Get(id string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return snapshot(sess), nil
}

// RecordFile appends a file outcome and moves the session to INGESTING.
// Unknown sessions return ErrNotFound; terminal sessions are reopened.
func (s *Store) RecordFile(id string, fs FileStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	sess.State = StateIngesting
	sess.Files = append(sess.Files, fs)
	sess.Indexed += fs.Indexed
	sess.UpdatedAt = time.Now()
	return nil
}

// Finish moves the session to its terminal state: INDEXED when at least
// one vector was upserted, FAILED otherwise. Idempotent.
func (s *Store) Finish(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	if sess.Indexed > 0 {
		sess.State = StateIndexed
	} else {
		sess.State = StateFailed
	}
	sess.UpdatedAt = time.Now()
	return snapshot(sess), nil
}

// Len returns the number of tracked sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func snapshot(sess *Session) Session {
	out := *sess
	out.Files = append([]FileStatus(nil), sess.Files...)
	return out
}
