//go:build consul

package store

import (
	"go.uber.org/zap"

	"cidfeed/pkg/consul"
)

// NewConsulBackend creates a Consul KV backed store (requires build tag consul).
func NewConsulBackend(addr string, logger *zap.Logger) Backend {
	return consul.NewBackend(addr, logger)
}
