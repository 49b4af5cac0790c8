package model

// NodeStatus is the simulated private node record shown by the shell.
type NodeStatus struct {
	Online    bool   `json:"online"`
	PeerCount uint16 `json:"peer_count"`
}
