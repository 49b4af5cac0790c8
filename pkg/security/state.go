// Package security stores the shell's security documents (identity,
// delegations, revocation queue, audit log, failed flush queue). The strings
// are never parsed here.
package security

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	"cidfeed/pkg/model"
	"cidfeed/pkg/store"
)

type State struct {
	mu      sync.Mutex
	state   model.SecurityState
	backend store.Backend
	logger  *zap.Logger
}

// Open loads the persisted documents; a missing or malformed record yields an
// empty state.
func Open(backend store.Backend, logger *zap.Logger) *State {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &State{backend: backend, logger: logger}
	if backend == nil {
		return s
	}
	var loaded model.SecurityState
	found, err := backend.Load(store.KeySecurityState, &loaded)
	switch {
	case err != nil:
		logger.Warn("security state unreadable; using empty state", zap.Error(err))
	case found:
		s.state = Normalize(loaded)
	}
	return s
}

func (s *State) Get() model.SecurityState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Set replaces all five documents with their normalized values and persists.
func (s *State) Set(in model.SecurityState) model.SecurityState {
	next := Normalize(in)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = next
	if s.backend != nil {
		if err := s.backend.Save(store.KeySecurityState, s.state); err != nil {
			s.logger.Warn("security state persist failed", zap.Error(err))
		}
	}
	return s.state.Clone()
}

// Normalize trims every field; blank values become absent.
func Normalize(in model.SecurityState) model.SecurityState {
	return model.SecurityState{
		Identity:         normalizeField(in.Identity),
		Delegations:      normalizeField(in.Delegations),
		RevocationQueue:  normalizeField(in.RevocationQueue),
		AuditLog:         normalizeField(in.AuditLog),
		FailedFlushQueue: normalizeField(in.FailedFlushQueue),
	}
}

func normalizeField(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}
