package cmd

import (
	"path/filepath"
	"testing"

	"github.com/linanwx/minichat/config"
	"github.com/linanwx/minichat/provider"
)

func TestApplyChatOverrides(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		o        chatOverrides
		provider string
		model    string
		wantKey  string
		wantBase string
	}{
		{
			name:     "no flags keep the config",
			provider: "ollama",
			model:    "codellama:latest",
		},
		{
			name:     "provider switch drops the old model",
			o:        chatOverrides{provider: "openai", apiKey: "sk-flag"},
			provider: "openai",
			model:    "",
			wantKey:  "sk-flag",
		},
		{
			name:     "provider and model",
			o:        chatOverrides{provider: "deepseek", model: "deepseek-chat", apiBase: "https://example.test/v1"},
			provider: "deepseek",
			model:    "deepseek-chat",
			wantBase: "https://example.test/v1",
		},
		{
			name:     "model only",
			o:        chatOverrides{model: "mistral"},
			provider: "ollama",
			model:    "mistral",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			applyChatOverrides(cfg, tt.o)
			if cfg.Chat.Provider != tt.provider || cfg.Chat.ModelType != tt.model {
				t.Fatalf("chat = %s/%s, want %s/%s", cfg.Chat.Provider, cfg.Chat.ModelType, tt.provider, tt.model)
			}
			s := cfg.ProviderSettings()
			if s.APIKey != tt.wantKey || s.APIBase != tt.wantBase {
				t.Fatalf("settings = %+v", s)
			}
		})
	}
}

func TestBuildProviderOptions(t *testing.T) {
	t.Parallel()

	options := buildProviderOptions()
	if len(options) != len(provider.SupportedProviders()) {
		t.Fatalf("got %d options, want one per provider", len(options))
	}
	if options[0].Value != recommendedProvider {
		t.Fatalf("first option = %q, want %q", options[0].Value, recommendedProvider)
	}
	if models := buildModelOptions("ollama"); len(models) == 0 || models[0].Value != "codellama:latest" {
		t.Fatalf("ollama model options = %v", models)
	}
}

func TestValidateAPIKey(t *testing.T) {
	reg := provider.ProviderRegistration{EnvKey: "MINICHAT_TEST_KEY"}
	t.Setenv("MINICHAT_TEST_KEY", "")

	validate := validateAPIKey(reg)
	if validate("  ") == nil {
		t.Fatal("blank key accepted without environment fallback")
	}
	if validate("sk-1") != nil {
		t.Fatal("non-empty key rejected")
	}
	t.Setenv("MINICHAT_TEST_KEY", "sk-env")
	if validate("") != nil {
		t.Fatal("blank key rejected although the environment has one")
	}
}

func TestDoctorOptions(t *testing.T) {
	dir := t.TempDir()
	config.SetConfigDir(dir)
	t.Cleanup(func() { config.SetConfigDir("") })
	t.Setenv("OPENAI_API_KEY", "")

	cfg := config.DefaultConfig()
	opts, err := doctorOptions(cfg)
	if err != nil {
		t.Fatalf("doctorOptions() error = %v", err)
	}
	if opts.ConfigPath != filepath.Join(dir, "config.yaml") {
		t.Fatalf("ConfigPath = %q", opts.ConfigPath)
	}
	if opts.LogFile != filepath.Join(dir, "logs", "minichat.log") {
		t.Fatalf("LogFile = %q", opts.LogFile)
	}
	if opts.Probe == nil || opts.BuildError != nil {
		t.Fatal("ollama backend should be probed")
	}

	applyChatOverrides(cfg, chatOverrides{provider: "openai"})
	opts, err = doctorOptions(cfg)
	if err != nil {
		t.Fatalf("doctorOptions() error = %v", err)
	}
	if opts.BuildError == nil || opts.Probe != nil {
		t.Fatalf("missing openai key should be reported, got %+v", opts)
	}
}
