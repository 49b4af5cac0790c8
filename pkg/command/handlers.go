package command

import (
	"context"
	"encoding/json"

	"cidfeed/pkg/metrics"
	"cidfeed/pkg/model"
	"cidfeed/pkg/security"
)

const (
	GetPrivateNodeStatus     = "get_private_node_status"
	StartPrivateNode         = "start_private_node"
	StartPrivateNodeWithMode = "start_private_node_with_mode"
	StopPrivateNode          = "stop_private_node"
	SimulatePeerJoin         = "simulate_peer_join"
	GetSecurityState         = "get_security_state"
	SetSecurityState         = "set_security_state"
	FlushRevocationQueue     = "flush_revocation_queue"
)

type startModeArgs struct {
	Mode string `json:"mode"`
}

type flushArgs struct {
	IDs []string `json:"ids"`
}

func (d *Dispatcher) routes() map[string]Handler {
	return map[string]Handler{
		GetPrivateNodeStatus: func(context.Context, json.RawMessage) (interface{}, error) {
			return d.node.Status(), nil
		},
		StartPrivateNode: func(context.Context, json.RawMessage) (interface{}, error) {
			return d.nodeChanged(d.node.Start()), nil
		},
		StartPrivateNodeWithMode: func(_ context.Context, args json.RawMessage) (interface{}, error) {
			var req startModeArgs
			if err := decodeArgs(args, &req); err != nil {
				return nil, err
			}
			st, err := d.node.StartWithMode(req.Mode)
			if err != nil {
				return nil, err
			}
			return d.nodeChanged(st), nil
		},
		StopPrivateNode: func(context.Context, json.RawMessage) (interface{}, error) {
			return d.nodeChanged(d.node.Stop()), nil
		},
		SimulatePeerJoin: func(context.Context, json.RawMessage) (interface{}, error) {
			before := d.node.Status()
			st := d.node.SimulatePeerJoin()
			if st == before {
				return st, nil
			}
			return d.nodeChanged(st), nil
		},
		GetSecurityState: func(context.Context, json.RawMessage) (interface{}, error) {
			return d.security.Get(), nil
		},
		SetSecurityState: func(_ context.Context, args json.RawMessage) (interface{}, error) {
			var req model.SecurityState
			if err := decodeArgs(args, &req); err != nil {
				return nil, err
			}
			st := d.security.Set(req)
			d.publish(model.EventSecurityState, st)
			return st, nil
		},
		FlushRevocationQueue: func(_ context.Context, args json.RawMessage) (interface{}, error) {
			var req flushArgs
			if err := decodeArgs(args, &req); err != nil {
				return nil, err
			}
			return security.FlushRevocationQueue(req.IDs), nil
		},
	}
}

func (d *Dispatcher) nodeChanged(st model.NodeStatus) model.NodeStatus {
	metrics.ObserveNode(st)
	d.publish(model.EventNodeStatus, st)
	return st
}
