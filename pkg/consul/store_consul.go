//go:build consul

package consul

import (
	"encoding/json"
	"fmt"

	consulapi "github.com/hashicorp/consul/api"
	"go.uber.org/zap"
)

const statePrefix = "cidfeed/state/"

// Backend mirrors state records into Consul KV under cidfeed/state/<key>.
type Backend struct {
	cli    *consulapi.Client
	logger *zap.Logger
}

func NewBackend(addr string, logger *zap.Logger) *Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := consulapi.DefaultConfig()
	if addr != "" {
		cfg.Address = addr
	}
	cli, err := consulapi.NewClient(cfg)
	if err != nil {
		logger.Error("consul client init failed", zap.String("addr", addr), zap.Error(err))
	}
	return &Backend{cli: cli, logger: logger}
}

func (b *Backend) Load(key string, v interface{}) (bool, error) {
	if b.cli == nil {
		return false, fmt.Errorf("consul client not configured")
	}
	kv, _, err := b.cli.KV().Get(statePrefix+key, nil)
	if err != nil {
		return false, err
	}
	if kv == nil {
		return false, nil
	}
	if err := json.Unmarshal(kv.Value, v); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (b *Backend) Save(key string, v interface{}) error {
	if b.cli == nil {
		return fmt.Errorf("consul client not configured")
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = b.cli.KV().Put(&consulapi.KVPair{Key: statePrefix + key, Value: raw}, nil)
	return err
}
