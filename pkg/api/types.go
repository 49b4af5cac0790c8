package api

import "encoding/json"

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// TokenRequest trades the shell secret for a bridge token.
type TokenRequest struct {
	Secret string `json:"secret"`
	Shell  string `json:"shell,omitempty"` // optional shell label stored in the token
}

type TokenResponse struct {
	Token string `json:"token"`
}

// InvokeRequest is accepted as an alternative envelope on /api/v1/invoke.
type InvokeRequest struct {
	Command string          `json:"command"`
	Args    json.RawMessage `json:"args,omitempty"`
}
