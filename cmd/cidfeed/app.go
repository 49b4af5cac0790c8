package main

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"cidfeed/pkg/api"
	"cidfeed/pkg/command"
	"cidfeed/pkg/config"
	"cidfeed/pkg/journal"
	"cidfeed/pkg/node"
	"cidfeed/pkg/security"
	"cidfeed/pkg/store"
)

// app is the wired set of state containers behind the dispatcher.
type app struct {
	dataDir    string
	dispatcher *command.Dispatcher
	journal    *journal.Journal
	hub        *api.EventHub
}

func newBackend(c config.Config, dir string, l *zap.Logger) (store.Backend, error) {
	switch c.Store {
	case config.StoreFile:
		return store.NewFileBackend(dir), nil
	case config.StoreMemory:
		return store.NewMemoryBackend(), nil
	case config.StoreConsul:
		return store.NewConsulBackend(c.ConsulAddr, l), nil
	default:
		return nil, fmt.Errorf("unsupported store type: %s", c.Store)
	}
}

func buildApp(c config.Config, l *zap.Logger, withHub bool) (*app, error) {
	if l == nil {
		l = zap.NewNop()
	}
	dir := c.ResolvedDataDir()
	backend, err := newBackend(c, dir, l)
	if err != nil {
		return nil, err
	}
	a := &app{dataDir: dir}
	opts := []command.Option{command.WithLogger(l)}
	if c.Journal {
		j, err := journal.Open(filepath.Join(dir, journal.FileName), l)
		if err != nil {
			// the journal is optional; commands still work without it
			l.Warn("journal unavailable", zap.Error(err))
		} else {
			a.journal = j
			opts = append(opts, command.WithRecorder(j))
		}
	}
	if withHub {
		a.hub = api.NewEventHub(l)
		opts = append(opts, command.WithPublisher(a.hub))
	}
	a.dispatcher = command.New(node.Open(backend, l), security.Open(backend, l), opts...)
	return a, nil
}

func (a *app) Close() {
	if a.hub != nil {
		a.hub.Close()
	}
	if a.journal != nil {
		_ = a.journal.Close()
	}
}
