// Package cmd implements the minichat command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/linanwx/minichat/config"
	"github.com/linanwx/minichat/logger"
)

var rootCmd = &cobra.Command{
	Use:   "minichat",
	Short: "A Minitel-style terminal chat client",
	Long: `minichat draws a fixed text-mode frame and chats with a language model
inside it. Replies stream into the REPONSE box with accents removed.

Type 'sortir', 'exit' or 'q' to leave. Ctrl+C clears the current question.

Examples:
  minichat                                    # ollama with codellama:latest
  minichat --provider openai --model gpt-4o-mini
  minichat onboard                            # write ~/.minichat/config.yaml`,
	SilenceUsage:      true,
	PersistentPreRunE: initRuntime,
	RunE:              runChat,
}

var configDirFlag string

func init() {
	rootCmd.PersistentFlags().StringVar(&configDirFlag, "config-dir", "", "Config directory (default ~/.minichat)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// initRuntime applies the config directory and starts logging. A broken
// config file does not stop logging; runChat reports it.
func initRuntime(_ *cobra.Command, _ []string) error {
	config.SetConfigDir(configDirFlag)

	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	configDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.BuildLoggerConfig(), configDir); err != nil {
		fmt.Fprintln(os.Stderr, "logger init error:", err)
	}
	return nil
}
