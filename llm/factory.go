// Provider construction.
//
// The agent needs exactly one configured Provider per run; this file turns a
// provider name plus optional overrides into that Provider. The CLI goes
// through config.Settings for the overrides, library callers can use the
// builder directly:
//
//	provider, err := llm.ProviderGemini.FromEnv()
//	provider, err := llm.ProviderAnthropic.Model(llm.ModelAnthropicClaudeSonnet4).APIKey("sk-...")

package llm

import (
	"fmt"
	"os"
	"strings"
)

// ProviderType identifies a supported LLM backend.
type ProviderType int

const (
	ProviderOpenAI ProviderType = iota
	ProviderAnthropic
	ProviderDeepSeek
	ProviderGemini
)

// Model identifiers the agent stack is known to work with. Any model string
// the backend accepts can be passed to Model(); these are the tested ones.
const (
	ModelOpenAIGPT52            = "gpt-5.2"
	ModelOpenAIGPT4oMini        = "gpt-4o-mini"
	ModelAnthropicClaudeOpus45  = "claude-opus-4-5-20251101"
	ModelAnthropicClaudeSonnet4 = "claude-sonnet-4-20250514"
	ModelDeepSeekV32            = "deepseek-v3.2"
	ModelGeminiFlash3           = "gemini-3-flash"
	ModelGeminiPro3             = "gemini-3-pro"
)

// Builder defaults when no override is given.
const (
	defaultMaxTokens   = 4096
	defaultTemperature = 0.7
)

// providerEntry holds per-backend wiring: display name, API key env var,
// default model.
type providerEntry struct {
	name         string
	envVar       string
	defaultModel string
}

var providerTable = map[ProviderType]providerEntry{
	ProviderOpenAI:    {"openai", "OPENAI_API_KEY", ModelOpenAIGPT52},
	ProviderAnthropic: {"anthropic", "ANTHROPIC_API_KEY", ModelAnthropicClaudeOpus45},
	ProviderDeepSeek:  {"deepseek", "DEEPSEEK_API_KEY", ModelDeepSeekV32},
	ProviderGemini:    {"gemini", "GEMINI_API_KEY", ModelGeminiFlash3},
}

// String returns the canonical provider name.
func (p ProviderType) String() string {
	if entry, ok := providerTable[p]; ok {
		return entry.name
	}
	return "unknown"
}

// EnvVar returns the environment variable holding this provider's API key.
func (p ProviderType) EnvVar() string {
	return providerTable[p].envVar
}

// DefaultModel returns the model used when none is configured.
func (p ProviderType) DefaultModel() string {
	return providerTable[p].defaultModel
}

// ParseProviderType parses a provider name, accepting common aliases.
func ParseProviderType(s string) (ProviderType, error) {
	switch strings.ToLower(s) {
	case "openai", "gpt":
		return ProviderOpenAI, nil
	case "anthropic", "claude":
		return ProviderAnthropic, nil
	case "deepseek":
		return ProviderDeepSeek, nil
	case "gemini", "google":
		return ProviderGemini, nil
	default:
		return 0, fmt.Errorf("unknown provider: %s", s)
	}
}

// FromEnv creates a provider with defaults, reading the API key from the
// environment.
func (p ProviderType) FromEnv() (Provider, error) {
	return NewProviderBuilder(p).FromEnv()
}

// Model starts configuring this provider with a specific model.
func (p ProviderType) Model(model string) *ProviderBuilder {
	return NewProviderBuilder(p).Model(model)
}

// APIKey creates a provider with an explicit API key and defaults for
// everything else.
func (p ProviderType) APIKey(key string) (Provider, error) {
	return NewProviderBuilder(p).APIKey(key)
}

// ProviderBuilder collects provider options before construction.
type ProviderBuilder struct {
	providerType ProviderType
	model        string
	maxTokens    uint32
	temperature  *float32
}

// NewProviderBuilder creates a builder for the given provider.
func NewProviderBuilder(providerType ProviderType) *ProviderBuilder {
	return &ProviderBuilder{providerType: providerType}
}

// Model sets the model to use.
func (b *ProviderBuilder) Model(model string) *ProviderBuilder {
	b.model = model
	return b
}

// MaxTokens sets the response token ceiling.
func (b *ProviderBuilder) MaxTokens(tokens uint32) *ProviderBuilder {
	b.maxTokens = tokens
	return b
}

// Temperature sets sampling temperature.
func (b *ProviderBuilder) Temperature(temp float32) *ProviderBuilder {
	b.temperature = &temp
	return b
}

// FromEnv builds the provider, reading the API key from the environment.
func (b *ProviderBuilder) FromEnv() (Provider, error) {
	envVar := b.providerType.EnvVar()
	apiKey := os.Getenv(envVar)
	if apiKey == "" {
		return nil, fmt.Errorf("%s: %s environment variable not set", b.providerType, envVar)
	}
	return b.build(apiKey)
}

// APIKey builds the provider with an explicit API key.
func (b *ProviderBuilder) APIKey(key string) (Provider, error) {
	return b.build(key)
}

func (b *ProviderBuilder) build(apiKey string) (Provider, error) {
	model := b.model
	if model == "" {
		model = b.providerType.DefaultModel()
	}

	maxTokens := b.maxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	temperature := float32(defaultTemperature)
	if b.temperature != nil {
		temperature = *b.temperature
	}

	switch b.providerType {
	case ProviderOpenAI:
		return NewOpenAIProvider(apiKey, model, maxTokens, temperature), nil
	case ProviderAnthropic:
		return NewAnthropicProvider(apiKey, model, maxTokens, temperature), nil
	case ProviderDeepSeek:
		return NewDeepSeekProvider(apiKey, model, maxTokens, temperature), nil
	case ProviderGemini:
		return NewGeminiProvider(apiKey, model, maxTokens, temperature), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %v", b.providerType)
	}
}
