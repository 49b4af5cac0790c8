// Package command maps the shell's named commands onto the node and security
// state containers.
package command

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"cidfeed/pkg/metrics"
	"cidfeed/pkg/model"
	"cidfeed/pkg/node"
	"cidfeed/pkg/security"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrInvalidArgs    = errors.New("invalid arguments")
)

// Handler decodes args and runs a command.
type Handler func(ctx context.Context, args json.RawMessage) (interface{}, error)

// Recorder receives one entry per invocation.
type Recorder interface {
	Record(ctx context.Context, e model.JournalEntry)
}

// Publisher fans out state-change events.
type Publisher interface {
	Publish(evt model.Event)
}

type Dispatcher struct {
	node     *node.State
	security *security.State
	handlers map[string]Handler
	recorder Recorder
	events   Publisher
	logger   *zap.Logger
}

type Option func(*Dispatcher)

func WithRecorder(r Recorder) Option   { return func(d *Dispatcher) { d.recorder = r } }
func WithPublisher(p Publisher) Option { return func(d *Dispatcher) { d.events = p } }
func WithLogger(l *zap.Logger) Option  { return func(d *Dispatcher) { d.logger = l } }

func New(n *node.State, s *security.State, opts ...Option) *Dispatcher {
	d := &Dispatcher{node: n, security: s, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	d.handlers = d.routes()
	metrics.ObserveNode(n.Status())
	return d
}

// Commands lists registered command names in sorted order.
func (d *Dispatcher) Commands() []string {
	out := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Invoke runs the named command with JSON args (nil or empty for none).
func (d *Dispatcher) Invoke(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	h, ok := d.handlers[name]
	if !ok {
		err := fmt.Errorf("%w: %s", ErrUnknownCommand, name)
		metrics.ObserveCommand("unknown", err)
		return nil, err
	}
	start := time.Now()
	res, err := h(ctx, args)
	elapsed := time.Since(start)

	metrics.ObserveCommand(name, err)
	entry := model.JournalEntry{
		Command:    name,
		OK:         err == nil,
		DurationMS: elapsed.Milliseconds(),
		Timestamp:  start,
	}
	if err != nil {
		entry.Error = err.Error()
		d.logger.Info("command failed", zap.String("command", name), zap.Error(err))
	} else {
		d.logger.Debug("command ok", zap.String("command", name), zap.Duration("took", elapsed))
	}
	if d.recorder != nil {
		d.recorder.Record(ctx, entry)
	}
	return res, err
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(bytes.TrimSpace(args)) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	return nil
}

func (d *Dispatcher) publish(kind string, payload interface{}) {
	if d.events == nil {
		return
	}
	d.events.Publish(model.Event{Type: kind, Payload: payload})
}
