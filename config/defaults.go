package config

const (
	defaultProvider  = "ollama"
	defaultModelType = "codellama:latest"
	defaultLogFile   = "logs/minichat.log"
)

// DefaultSystemPrompt is the persona sent before every question.
const DefaultSystemPrompt = "Tu es Minichat, un assistant qui parle en français d'autrefois, dans le style du 17ème-18ème siècle. " +
	"Ta technologie préférée est le Minitel. " +
	"Utilise un langage soutenu et désuet (vouvoiement, \"point\" au lieu de \"pas\", \"être moult\", \"fort\", \"nenni\", etc.). " +
	"Tu n'es point à l'aise avec les technologies modernes et tu les trouves bien étranges et déconcertantes. " +
	"Exprime ton émerveillement et ta confusion face aux concepts technologiques. " +
	"IMPORTANT: Réponds TOUJOURS en moins de 2 phrases, pas plus."

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Chat: ChatConfig{
			Provider:     defaultProvider,
			ModelType:    defaultModelType,
			SystemPrompt: DefaultSystemPrompt,
		},
		Providers: ProvidersConfig{
			Ollama: &ProviderConfig{},
		},
		Logging: defaultLoggingConfig(),
	}
}

func defaultLoggingConfig() LoggingConfig {
	enabled := true
	return LoggingConfig{
		Enabled: &enabled,
		Level:   "info",
		File:    defaultLogFile,
	}
}

func (c *Config) applyDefaults() {
	if c.Chat.Provider == "" {
		c.Chat.Provider = defaultProvider
	}
	// A model only makes sense for the provider it was chosen with; an
	// empty one lets the provider pick its own default.
	if c.Chat.ModelType == "" && c.Chat.Provider == defaultProvider {
		c.Chat.ModelType = defaultModelType
	}
	if c.Chat.MaxTokens < 0 {
		c.Chat.MaxTokens = 0
	}

	def := defaultLoggingConfig()
	if c.Logging == (LoggingConfig{}) {
		c.Logging = def
		return
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Level
	}
	if c.Logging.File == "" && !c.Logging.Stderr {
		c.Logging.File = def.File
	}
	if c.Logging.Enabled == nil {
		c.Logging.Enabled = def.Enabled
	}
}
