package services

import (
	"sync"

	"promptforge/models"
)

// DefaultModel returns the built-in default model for a provider, or ""
// for unknown providers.
func DefaultModel(provider string) string {
	switch provider {
	case models.ProviderOpenAI:
		return "gpt-4o"
	case models.ProviderDeepSeek:
		return "deepseek-r1"
	case models.ProviderClaude:
		return "claude-3.5-sonnet"
	default:
		return ""
	}
}

// ModelPreferences holds the process-wide default-model overrides.
// Volatile: lost on restart.
type ModelPreferences struct {
	mu     sync.RWMutex
	models map[string]string
}

// NewModelPreferences creates an empty preference store
func NewModelPreferences() *ModelPreferences {
	return &ModelPreferences{
		models: make(map[string]string),
	}
}

// Set overrides the default model for a provider
func (p *ModelPreferences) Set(provider, model string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.models[provider] = model
}

// Get returns the override for a provider, falling back to the built-in
// default when none is set.
func (p *ModelPreferences) Get(provider string) string {
	p.mu.RLock()
	model, ok := p.models[provider]
	p.mu.RUnlock()

	if ok && model != "" {
		return model
	}
	return DefaultModel(provider)
}
