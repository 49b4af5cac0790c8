package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"cidfeed/pkg/auth"
	"cidfeed/pkg/command"
	"cidfeed/pkg/model"
	"cidfeed/pkg/node"
)

const maxArgsBytes = 1 << 20

// Invoker runs named commands.
type Invoker interface {
	Invoke(ctx context.Context, name string, args json.RawMessage) (interface{}, error)
	Commands() []string
}

// JournalReader lists recorded invocations.
type JournalReader interface {
	List(ctx context.Context, limit int) ([]model.JournalEntry, error)
}

// Options configures the bridge routes. Zero values disable the feature.
type Options struct {
	Token           string
	ShellSecretHash string
	TokenTTL        time.Duration
	Issuer          *auth.Issuer
	Journal         JournalReader
	Hub             *EventHub
	Logger          *zap.Logger
}

// RegisterRoutes wires the HTTP handlers on the provided mux.
func RegisterRoutes(mux *http.ServeMux, inv Invoker, opts Options) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Issuer == nil {
		opts.Issuer = auth.NewIssuer("")
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	allowed := authFunc(opts.Token, opts.ShellSecretHash, opts.Issuer)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("cidfeed bridge"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/api/v1/auth/token", tokenHandler(opts, logger))

	mux.HandleFunc("/api/v1/commands", func(w http.ResponseWriter, r *http.Request) {
		if !allowed(r) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		writeJSON(w, http.StatusOK, inv.Commands())
	})

	mux.HandleFunc("/api/v1/invoke", func(w http.ResponseWriter, r *http.Request) {
		if !allowed(r) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var req InvokeRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, maxArgsBytes)).Decode(&req); err != nil || req.Command == "" {
			writeError(w, http.StatusBadRequest, "invalid payload")
			return
		}
		runCommand(w, r, inv, req.Command, req.Args, logger)
	})

	mux.HandleFunc("/api/v1/invoke/", func(w http.ResponseWriter, r *http.Request) {
		if !allowed(r) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/invoke/"), "/")
		if name == "" {
			writeError(w, http.StatusBadRequest, "command is required")
			return
		}
		args, err := io.ReadAll(io.LimitReader(r.Body, maxArgsBytes))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid payload")
			return
		}
		runCommand(w, r, inv, name, args, logger)
	})

	mux.HandleFunc("/api/v1/journal", func(w http.ResponseWriter, r *http.Request) {
		if !allowed(r) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if opts.Journal == nil {
			writeError(w, http.StatusNotFound, "journal disabled")
			return
		}
		limit := 50
		if s := r.URL.Query().Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				writeError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			limit = n
		}
		entries, err := opts.Journal.List(r.Context(), limit)
		if err != nil {
			logger.Warn("journal list failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to list journal")
			return
		}
		writeJSON(w, http.StatusOK, entries)
	})

	if opts.Hub != nil {
		mux.HandleFunc("/api/v1/events", func(w http.ResponseWriter, r *http.Request) {
			if !allowed(r) {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			opts.Hub.HandleSubscribe(w, r)
		})
	}
}

func runCommand(w http.ResponseWriter, r *http.Request, inv Invoker, name string, args json.RawMessage, logger *zap.Logger) {
	res, err := inv.Invoke(r.Context(), name, args)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			logger.Error("command crashed", zap.String("command", name), zap.Error(err))
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, command.ErrUnknownCommand):
		return http.StatusNotFound
	case errors.Is(err, command.ErrInvalidArgs), errors.Is(err, node.ErrUnsupportedMode):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
