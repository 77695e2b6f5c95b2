package models

import "time"

// Known provider identifiers. Providers are open-ended strings at the
// storage layer; these are the ones the frontend offers.
const (
	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"
	ProviderClaude   = "claude"
)

// APIKey represents a user's stored credential for one provider.
// At most one row exists per (user, provider) pair.
type APIKey struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Provider  string    `json:"provider"`
	APIKey    string    `json:"-"` // Never expose the raw credential in JSON
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
