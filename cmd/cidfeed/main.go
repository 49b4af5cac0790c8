package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cidfeed/pkg/config"
	"cidfeed/pkg/logging"
	"cidfeed/pkg/version"
)

var (
	cfg    config.Config
	logger *zap.Logger

	// flag overrides; empty keeps the env value
	dataDir   string
	storeType string
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "cidfeed",
	Short: "CIDFeed desktop bridge: private node status and security state",
	Long: `cidfeed runs the backend commands of the CIDFeed desktop shell.

The private node is simulated: online/offline and a peer counter. Security
documents are stored verbatim. State is mirrored to JSON files in the data
directory after every change.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		if dataDir != "" {
			loaded.DataDir = dataDir
		}
		if storeType != "" {
			loaded.Store = storeType
		}
		if logLevel != "" {
			loaded.LogLevel = logLevel
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded
		l, err := logging.New(cfg.LogLevel, cfg.LogJSON)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "state directory (env CIDFEED_DATA_DIR)")
	rootCmd.PersistentFlags().StringVar(&storeType, "store", "", "store backend: file|memory|consul (env CIDFEED_STORE)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (env CIDFEED_LOG_LEVEL)")
	rootCmd.AddCommand(serveCmd, invokeCmd, commandsCmd, hashSecretCmd, tokenCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
