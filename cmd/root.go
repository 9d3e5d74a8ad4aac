package main

import (
	"fmt"
	"os"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Vovarama1992/videodl/internal/config"
)

var (
	flagConfig string
	flagPort   string
	flagYtdlp  string
)

// cfg and zl are set by loadConfig before any command runs.
var (
	cfg *config.Config
	zl  *logger.ZapLogger
)

var rootCmd = &cobra.Command{
	Use:               "videodl",
	Short:             "Resolve social media posts to direct video links",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              serveRun,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Path to a TOML config file (overrides CONFIG_FILE)")
	rootCmd.PersistentFlags().StringVarP(&flagPort, "port", "p", "", "HTTP port (overrides PORT)")
	rootCmd.PersistentFlags().StringVar(&flagYtdlp, "ytdlp", "", "Path to the yt-dlp binary (overrides YTDLP_PATH)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig merges defaults < config file < env < flags and builds the logger.
func loadConfig(cmd *cobra.Command, args []string) error {
	if flagConfig != "" {
		if err := os.Setenv("CONFIG_FILE", flagConfig); err != nil {
			return err
		}
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if flagPort != "" {
		cfg.Port = flagPort
	}
	if flagYtdlp != "" {
		cfg.YtdlpPath = flagYtdlp
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	zcore, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	zl = logger.NewZapLogger(zcore.Sugar())
	return nil
}

var versionCmd = &cobra.Command{
	Use:               "version",
	Short:             "Print the version",
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "videodl %s\n", config.Version)
	},
}
