package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryTracker is an in-memory Tracker for tests. It mirrors the narrow-update
// semantics of DynamoTracker and records the sequence of step transitions so
// tests can assert ordering.
type MemoryTracker struct {
	mu       sync.Mutex
	sessions map[string]*Session

	// StepHistory records every step passed to MarkRunning/UpdateStep, in order.
	StepHistory []Step
}

var _ Tracker = (*MemoryTracker)(nil)

// NewMemoryTracker returns an empty MemoryTracker.
func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{sessions: make(map[string]*Session)}
}

// Seed inserts a session, replacing any existing record with the same ID.
func (m *MemoryTracker) Seed(sess *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
}

// Snapshot returns the current session record, or nil.
func (m *MemoryTracker) Snapshot(sessionID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[sessionID]
}

func (m *MemoryTracker) Get(_ context.Context, sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	copied := *sess
	return &copied, nil
}

func (m *MemoryTracker) get(sessionID string) (*Session, error) {
	sess, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s not found", sessionID)
	}
	return sess, nil
}

func (m *MemoryTracker) MarkPending(_ context.Context, sessionID string, attemptNumber int, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, err := m.get(sessionID)
	if err != nil {
		return err
	}
	now := time.Now().UnixMilli()
	sess.Processing = &Processing{
		State:         StatePending,
		StartedAt:     now,
		UpdatedAt:     now,
		AttemptNumber: attemptNumber,
		TaskID:        taskID,
	}
	return nil
}

func (m *MemoryTracker) MarkRunning(_ context.Context, sessionID string, step Step) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, err := m.get(sessionID)
	if err != nil {
		return err
	}
	if sess.Processing == nil {
		return fmt.Errorf("session %s has no processing sub-document", sessionID)
	}
	sess.Processing.State = StateRunning
	sess.Processing.CurrentStep = step
	sess.Processing.UpdatedAt = time.Now().UnixMilli()
	m.StepHistory = append(m.StepHistory, step)
	return nil
}

func (m *MemoryTracker) UpdateStep(_ context.Context, sessionID string, step Step) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, err := m.get(sessionID)
	if err != nil {
		return err
	}
	if sess.Processing == nil {
		return fmt.Errorf("session %s has no processing sub-document", sessionID)
	}
	sess.Processing.CurrentStep = step
	sess.Processing.UpdatedAt = time.Now().UnixMilli()
	m.StepHistory = append(m.StepHistory, step)
	return nil
}

func (m *MemoryTracker) MarkFailed(_ context.Context, sessionID, code, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, err := m.get(sessionID)
	if err != nil {
		return err
	}
	if sess.Processing == nil {
		sess.Processing = &Processing{}
	}
	now := time.Now().UnixMilli()
	sess.Processing.State = StateFailed
	sess.Processing.Error = &ProcessingError{Code: code, Message: message, Timestamp: now}
	sess.Processing.UpdatedAt = now
	return nil
}

func (m *MemoryTracker) Finalize(_ context.Context, sessionID string, outputs *Outputs) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, err := m.get(sessionID)
	if err != nil {
		return err
	}
	sess.Processing = nil
	sess.Outputs = outputs
	return nil
}
