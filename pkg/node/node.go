// Package node holds the simulated private node record. Nothing here touches
// the network; peer_count is a counter driven by commands.
package node

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"go.uber.org/zap"

	"cidfeed/pkg/model"
	"cidfeed/pkg/store"
)

// DefaultPeerCount is assigned by Start when the node has no peers yet.
const DefaultPeerCount uint16 = 3

// ErrUnsupportedMode is returned by StartWithMode for unknown modes.
var ErrUnsupportedMode = errors.New("unsupported mode")

var modePeers = map[string]uint16{
	"easy":    4,
	"private": 2,
}

// Modes lists the recognised start modes.
func Modes() []string {
	return []string{"easy", "private"}
}

// PeersForMode maps a start mode onto its fixed peer count.
func PeersForMode(mode string) (uint16, error) {
	peers, ok := modePeers[strings.ToLower(strings.TrimSpace(mode))]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedMode, mode)
	}
	return peers, nil
}

// State is the process-wide node record mirrored to the backend after every
// mutation. All access is serialized by mu.
type State struct {
	mu      sync.Mutex
	status  model.NodeStatus
	backend store.Backend
	logger  *zap.Logger
}

// Open loads the persisted record, falling back to defaults when it is
// missing or unreadable.
func Open(backend store.Backend, logger *zap.Logger) *State {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &State{backend: backend, logger: logger}
	if backend == nil {
		return s
	}
	var loaded model.NodeStatus
	found, err := backend.Load(store.KeyNodeState, &loaded)
	switch {
	case err != nil:
		logger.Warn("node state unreadable; using defaults", zap.Error(err))
	case found:
		s.status = loaded
	}
	return s
}

func (s *State) Status() model.NodeStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *State) Start() model.NodeStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Online = true
	if s.status.PeerCount == 0 {
		s.status.PeerCount = DefaultPeerCount
	}
	s.persistLocked()
	return s.status
}

// StartWithMode brings the node online with the peer count fixed by mode.
// Unknown modes leave the state untouched.
func (s *State) StartWithMode(mode string) (model.NodeStatus, error) {
	peers, err := PeersForMode(mode)
	if err != nil {
		return s.Status(), err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = model.NodeStatus{Online: true, PeerCount: peers}
	s.persistLocked()
	return s.status, nil
}

func (s *State) Stop() model.NodeStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = model.NodeStatus{}
	s.persistLocked()
	return s.status
}

// SimulatePeerJoin bumps the peer counter while online; it saturates at
// math.MaxUint16 and is a no-op offline.
func (s *State) SimulatePeerJoin() model.NodeStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.status.Online {
		return s.status
	}
	if s.status.PeerCount < math.MaxUint16 {
		s.status.PeerCount++
	}
	s.persistLocked()
	return s.status
}

// persistLocked is best-effort; failures are logged and dropped.
func (s *State) persistLocked() {
	if s.backend == nil {
		return
	}
	if err := s.backend.Save(store.KeyNodeState, s.status); err != nil {
		s.logger.Warn("node state persist failed", zap.Error(err))
	}
}
