package config

import "os"

// APIKeySource represents where an API key comes from.
type APIKeySource string

const (
	KeySourceEnv    APIKeySource = "env"
	KeySourceConfig APIKeySource = "config"
	KeySourceNone   APIKeySource = "none"
)

// KeyStatus describes one provider key without revealing it.
type KeyStatus struct {
	Name     string       `json:"name"`
	Source   APIKeySource `json:"source"`
	IsSet    bool         `json:"is_set"`
	Required bool         `json:"required"`         // the configured providers call this key
	Masked   string       `json:"masked,omitempty"` // e.g., "sk-...abc"
}

// Missing reports whether a key the configuration depends on is absent.
func (k KeyStatus) Missing() bool { return k.Required && !k.IsSet }

// keySpec names a secret, reads it from cfg, and lists the variables that
// may have supplied it.
type keySpec struct {
	name     string
	value    func(*Config) string
	required func(*Config) bool
	envVars  []string
}

var keySpecs = []keySpec{
	{
		name:     "NewsAPI Key",
		value:    func(c *Config) string { return c.News.APIKey },
		required: func(c *Config) bool { return c.News.Provider != NewsProviderRSS },
		envVars:  []string{"NEWSAPI_KEY", "STOCKPULSE_NEWS_API_KEY"},
	},
	{
		name:     "OpenAI API Key",
		value:    func(c *Config) string { return c.LLM.OpenAIKey },
		required: llmUses(ProviderOpenAI),
		envVars:  []string{"OPENAI_API_KEY", "STOCKPULSE_LLM_OPENAI_KEY"},
	},
	{
		name:     "Groq API Key",
		value:    func(c *Config) string { return c.LLM.GroqKey },
		required: llmUses(ProviderGroq),
		envVars:  []string{"GROQ_API_KEY", "STOCKPULSE_LLM_GROQ_KEY"},
	},
	{
		name:     "Gemini API Key",
		value:    func(c *Config) string { return c.LLM.GeminiKey },
		required: llmUses(ProviderGemini),
		envVars:  []string{"GEMINI_API_KEY", "STOCKPULSE_LLM_GEMINI_KEY"},
	},
}

func llmUses(provider string) func(*Config) bool {
	return func(c *Config) bool {
		if c.LLM.Provider == "" {
			return provider == ProviderOpenAI
		}
		return c.LLM.Provider == provider
	}
}

// CheckAPIKeys returns the status of every provider key.
func CheckAPIKeys(cfg *Config) []KeyStatus {
	out := make([]KeyStatus, 0, len(keySpecs))
	for _, spec := range keySpecs {
		status := checkKey(spec.name, spec.value(cfg), spec.envVars...)
		status.Required = spec.required(cfg)
		out = append(out, status)
	}
	return out
}

// checkKey checks if a key is set and where it came from.
func checkKey(name, value string, envVars ...string) KeyStatus {
	status := KeyStatus{Name: name, Source: KeySourceNone}
	if value == "" {
		return status
	}

	status.IsSet = true
	status.Source = KeySourceConfig
	for _, e := range envVars {
		if os.Getenv(e) == value {
			status.Source = KeySourceEnv
			break
		}
	}
	status.Masked = maskKey(value)
	return status
}

// maskKey keeps the first and last three characters of a key.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
