//go:build !consul

package store

import "go.uber.org/zap"

// NewConsulBackend returns a memory backend when the consul build tag is not enabled.
func NewConsulBackend(addr string, logger *zap.Logger) Backend {
	if logger != nil {
		logger.Warn("consul backend requested but consul build tag not enabled; using memory backend", zap.String("addr", addr))
	}
	return NewMemoryBackend()
}
