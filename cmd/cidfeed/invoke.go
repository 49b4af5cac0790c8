package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cidfeed/pkg/auth"
	"cidfeed/pkg/config"
)

var invokeCmd = &cobra.Command{
	Use:   "invoke <command> [json-args]",
	Short: "Run one command in-process against the data directory",
	Example: `  cidfeed invoke start_private_node_with_mode '{"mode":"easy"}'
  cidfeed invoke flush_revocation_queue '{"ids":["a","fail-b","a"]}'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cfg, logger, false)
		if err != nil {
			return err
		}
		defer a.Close()

		var raw json.RawMessage
		if len(args) == 2 && strings.TrimSpace(args[1]) != "" {
			if !json.Valid([]byte(args[1])) {
				return fmt.Errorf("args are not valid JSON")
			}
			raw = json.RawMessage(args[1])
		}
		res, err := a.dispatcher.Invoke(cmd.Context(), args[0], raw)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List the command names the bridge accepts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c := cfg
		c.Journal = false
		c.Store = config.StoreMemory
		a, err := buildApp(c, logger, false)
		if err != nil {
			return err
		}
		defer a.Close()
		for _, name := range a.dispatcher.Commands() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

var hashSecretCmd = &cobra.Command{
	Use:   "hash-secret <secret>",
	Short: "Print a bcrypt hash for CIDFEED_SHELL_SECRET_HASH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := auth.HashSecret(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

var (
	tokenShell string
	tokenTTL   time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bridge token signed with CIDFEED_JWT_SECRET",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cfg.JWTSecret == "" {
			return fmt.Errorf("CIDFEED_JWT_SECRET is required to mint tokens")
		}
		ttl := cfg.TokenTTL
		if tokenTTL > 0 {
			ttl = tokenTTL
		}
		tok, err := auth.NewIssuer(cfg.JWTSecret).Generate(tokenShell, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenShell, "shell", "desktop", "shell label stored in the token")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (defaults to CIDFEED_TOKEN_TTL)")
}
