package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/linanwx/minichat/config"
	"github.com/linanwx/minichat/internal/health"
	"github.com/linanwx/minichat/provider"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the config, the terminal and the chat backend",
	Long: `Print a health report: config file, log file, terminal size and whether
the configured backend answers. Accepts the same backend flags as minichat.`,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().StringVar(&chatFlags.provider, "provider", "", "Chat backend to check")
	doctorCmd.Flags().StringVar(&chatFlags.model, "model", "", "Model name")
	doctorCmd.Flags().StringVar(&chatFlags.apiKey, "api-key", "", "API key for the provider")
	doctorCmd.Flags().StringVar(&chatFlags.apiBase, "api-base", "", "Custom API base URL")
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyChatOverrides(cfg, chatFlags)

	opts, err := doctorOptions(cfg)
	if err != nil {
		return err
	}
	snapshot := health.Collect(cmd.Context(), opts)

	out, err := yaml.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))
	return nil
}

func doctorOptions(cfg *config.Config) (health.Options, error) {
	configPath, err := config.ConfigPath()
	if err != nil {
		return health.Options{}, err
	}
	opts := health.Options{
		ConfigPath: configPath,
		Provider:   cfg.Chat.Provider,
		Model:      cfg.Chat.ModelType,
	}
	if lc := cfg.BuildLoggerConfig(); lc.Enabled && lc.File != "" {
		opts.LogFile = lc.File
		if !filepath.IsAbs(lc.File) {
			opts.LogFile = filepath.Join(filepath.Dir(configPath), lc.File)
		}
	}

	backend, err := provider.Build(cfg.Chat.Provider, cfg.ProviderSettings())
	if err != nil {
		opts.BuildError = err
		return opts, nil
	}
	if pinger, ok := backend.(provider.Pinger); ok {
		opts.Probe = pinger.Ping
	}
	return opts, nil
}
