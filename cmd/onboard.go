package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/linanwx/minichat/config"
	"github.com/linanwx/minichat/provider"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize minichat configuration",
	Long:  `Choose a chat backend and write the minichat config file.`,
	RunE:  runOnboard,
}

var onboardForce bool

func init() {
	onboardCmd.Flags().BoolVar(&onboardForce, "force", false, "Overwrite an existing config file")
	rootCmd.AddCommand(onboardCmd)
}

const recommendedProvider = "ollama"

// providerURLs maps provider names to their API key portal URLs.
var providerURLs = map[string]string{
	"openai":     "https://platform.openai.com/api-keys",
	"deepseek":   "https://platform.deepseek.com",
	"openrouter": "https://openrouter.ai/keys",
	"anthropic":  "https://console.anthropic.com",
}

func runOnboard(_ *cobra.Command, _ []string) error {
	configPath, err := config.ConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(configPath); err == nil && !onboardForce {
		fmt.Println("Config already exists at:", configPath)
		fmt.Println("To reconfigure, run 'minichat onboard --force' or edit the file directly.")
		return nil
	}

	var (
		selectedProvider string
		selectedModel    string
		apiKey           string
		apiBase          string
	)

	// Step 1: select provider
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Choose your chat backend").
				Description("minichat talks to a local Ollama server by default.").
				Options(buildProviderOptions()...).
				Value(&selectedProvider),
		),
	).Run()
	if err != nil {
		return err
	}

	// Step 2: select model (dynamic based on provider)
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Choose model for " + selectedProvider).
				Description("The first option is the recommended default.").
				Options(buildModelOptions(selectedProvider)...).
				Value(&selectedModel),
		),
	).Run()
	if err != nil {
		return err
	}

	// Step 3: credentials
	reg, _ := provider.Lookup(selectedProvider)
	fields := []huh.Field{
		huh.NewInput().
			Title("API base URL").
			Description(baseURLHint(reg)).
			Value(&apiBase),
	}
	if !reg.KeyOptional {
		fields = append([]huh.Field{
			huh.NewInput().
				Title("Enter your " + selectedProvider + " API key").
				Description(keyHint(selectedProvider, reg)).
				EchoMode(huh.EchoModePassword).
				Validate(validateAPIKey(reg)).
				Value(&apiKey),
		}, fields...)
	}
	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	cfg.SetProvider(selectedProvider)
	cfg.SetModelType(selectedModel)
	cfg.SetProviderAPIKey(apiKey)
	cfg.SetProviderAPIBase(apiBase)
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("minichat initialized successfully!")
	fmt.Println()
	fmt.Println("  Config:", configPath)
	fmt.Println("  Provider:", selectedProvider)
	fmt.Println("  Model:", selectedModel)
	fmt.Println()
	fmt.Println("Run 'minichat' to start chatting.")
	return nil
}

func buildProviderOptions() []huh.Option[string] {
	names := provider.SupportedProviders()
	// Put the local backend first.
	sorted := make([]string, 0, len(names))
	for _, n := range names {
		if n == recommendedProvider {
			sorted = append([]string{n}, sorted...)
		} else {
			sorted = append(sorted, n)
		}
	}
	options := make([]huh.Option[string], 0, len(sorted))
	for _, name := range sorted {
		models := provider.SupportedModelsForProvider(name)
		label := name + " (" + strings.Join(models, ", ") + ")"
		if name == recommendedProvider {
			label += " [Recommended]"
		}
		options = append(options, huh.NewOption(label, name))
	}
	return options
}

func buildModelOptions(providerName string) []huh.Option[string] {
	models := provider.SupportedModelsForProvider(providerName)
	options := make([]huh.Option[string], 0, len(models))
	for _, m := range models {
		options = append(options, huh.NewOption(m, m))
	}
	return options
}

func keyHint(name string, reg provider.ProviderRegistration) string {
	hint := "Leave empty to use $" + reg.EnvKey + "."
	if url := providerURLs[name]; url != "" {
		hint = "Create one at " + url + ". " + hint
	}
	return hint
}

func baseURLHint(reg provider.ProviderRegistration) string {
	if reg.EnvBase == "" {
		return "Optional. Leave empty for the default endpoint."
	}
	return "Optional. Leave empty for $" + reg.EnvBase + " or the default endpoint."
}

// validateAPIKey accepts an empty key only when the environment provides one.
func validateAPIKey(reg provider.ProviderRegistration) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) != "" {
			return nil
		}
		if reg.EnvKey != "" && strings.TrimSpace(os.Getenv(reg.EnvKey)) != "" {
			return nil
		}
		return fmt.Errorf("API key is required")
	}
}
