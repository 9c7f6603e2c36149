package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/linanwx/minichat/config"
	"github.com/linanwx/minichat/console"
	"github.com/linanwx/minichat/logger"
	"github.com/linanwx/minichat/provider"
	"github.com/linanwx/minichat/screen"
	"github.com/linanwx/minichat/session"
)

// chatOverrides are the command-line settings that win over config.yaml.
type chatOverrides struct {
	provider string
	model    string
	apiKey   string
	apiBase  string
}

var chatFlags chatOverrides

func init() {
	rootCmd.Flags().StringVar(&chatFlags.provider, "provider", "", "Chat backend: "+strings.Join(provider.SupportedProviders(), ", "))
	rootCmd.Flags().StringVar(&chatFlags.model, "model", "", "Model name (default depends on the provider)")
	rootCmd.Flags().StringVar(&chatFlags.apiKey, "api-key", "", "API key for the provider")
	rootCmd.Flags().StringVar(&chatFlags.apiBase, "api-base", "", "Custom API base URL")
}

// applyChatOverrides merges command-line settings into cfg. Switching
// provider without naming a model drops the configured one, which belonged
// to the old provider.
func applyChatOverrides(cfg *config.Config, o chatOverrides) {
	if p := strings.TrimSpace(o.provider); p != "" && p != cfg.Chat.Provider {
		cfg.SetProvider(p)
		cfg.SetModelType("")
	}
	if o.model != "" {
		cfg.SetModelType(o.model)
	}
	if o.apiKey != "" {
		cfg.SetProviderAPIKey(o.apiKey)
	}
	if o.apiBase != "" {
		cfg.SetProviderAPIBase(o.apiBase)
	}
}

func runChat(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyChatOverrides(cfg, chatFlags)

	backend, err := provider.Build(cfg.Chat.Provider, cfg.ProviderSettings())
	if err != nil {
		return err
	}

	con, err := console.New()
	if err != nil {
		return fmt.Errorf("minichat needs an interactive terminal: %w", err)
	}
	defer con.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("shutdown signal received", "signal", sig.String())
			cancel()
			con.Cancel()
		case <-ctx.Done():
		}
	}()

	out := screen.New(os.Stdout)
	sess := session.New(backend, con, out, cfg.Chat.SystemPrompt)
	logger.Info("minichat started", "provider", cfg.Chat.Provider, "modelType", cfg.Chat.ModelType)

	if err := sess.Run(ctx); err != nil {
		logger.Error("session stopped", "err", err)
	}
	session.Farewell(out)
	logger.Info("minichat stopped", "turns", sess.Turns())
	return nil
}
