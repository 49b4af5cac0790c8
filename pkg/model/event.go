package model

const (
	EventNodeStatus    = "node_status"
	EventSecurityState = "security_state"
)

// Event is pushed to UI subscribers after a state change.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}
