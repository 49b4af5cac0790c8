package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cidfeed/pkg/api"
	"cidfeed/pkg/auth"
	"cidfeed/pkg/version"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local command bridge for the UI shell",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if serveAddr != "" {
			cfg.Addr = serveAddr
		}
		a, err := buildApp(cfg, logger, true)
		if err != nil {
			return err
		}
		defer a.Close()

		opts := api.Options{
			Token:           cfg.Token,
			ShellSecretHash: cfg.ShellSecretHash,
			TokenTTL:        cfg.TokenTTL,
			Issuer:          auth.NewIssuer(cfg.JWTSecret),
			Hub:             a.hub,
			Logger:          logger,
		}
		if a.journal != nil {
			opts.Journal = a.journal
		}
		mux := http.NewServeMux()
		api.RegisterRoutes(mux, a.dispatcher, opts)

		srv := &http.Server{
			Addr:              cfg.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		logger.Info("bridge listening",
			zap.String("addr", cfg.Addr),
			zap.String("data_dir", a.dataDir),
			zap.String("store", cfg.Store),
			zap.Bool("auth", cfg.AuthEnabled()),
			zap.String("version", version.String()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		logger.Info("bridge stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (env CIDFEED_ADDR)")
}
