package store

import "errors"

const (
	KeyNodeState     = "private_node_state"
	KeySecurityState = "security_state"
)

// ErrInvalidKey is returned for keys that cannot be mapped onto a backend path.
var ErrInvalidKey = errors.New("invalid state key")

// Backend mirrors named state records as flat JSON objects.
// Load reports found=false (and no error) when nothing was stored under key.
type Backend interface {
	Load(key string, v interface{}) (bool, error)
	Save(key string, v interface{}) error
}

// NewMemory is a helper to construct the in-memory implementation without importing it directly.
func NewMemory() Backend {
	return NewMemoryBackend()
}
