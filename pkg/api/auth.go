package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"cidfeed/pkg/auth"
)

const defaultShell = "desktop"

// tokenHandler exchanges the configured shell secret for a signed token.
func tokenHandler(opts Options, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if opts.ShellSecretHash == "" {
			writeError(w, http.StatusForbidden, "token exchange disabled")
			return
		}
		var req TokenRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&req); err != nil || req.Secret == "" {
			writeError(w, http.StatusBadRequest, "invalid payload")
			return
		}
		if !auth.CheckSecret(opts.ShellSecretHash, req.Secret) {
			logger.Warn("token exchange rejected", zap.String("remote", r.RemoteAddr))
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		shell := strings.TrimSpace(req.Shell)
		if shell == "" {
			shell = defaultShell
		}
		token, err := opts.Issuer.Generate(shell, opts.TokenTTL)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to issue token")
			return
		}
		writeJSON(w, http.StatusOK, TokenResponse{Token: token})
	}
}

// authFunc accepts the static token (X-Auth-Token or Bearer) or a bearer JWT
// from the issuer. With neither a token nor a secret configured every request
// passes.
func authFunc(token, secretHash string, issuer *auth.Issuer) func(r *http.Request) bool {
	if token == "" && secretHash == "" {
		return func(_ *http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		if token != "" && r.Header.Get("X-Auth-Token") == token {
			return true
		}
		bearer := bearerToken(r)
		if bearer == "" {
			// browsers cannot set headers on websocket upgrades
			bearer = r.URL.Query().Get("token")
		}
		if bearer == "" {
			return false
		}
		if token != "" && bearer == token {
			return true
		}
		_, err := issuer.Parse(bearer)
		return err == nil
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(h, "Bearer ")
}
