package models

import "time"

// AITool is the downstream developer tool an enhanced prompt is formatted for
type AITool string

const (
	AIToolReplit AITool = "replit"
	AIToolCursor AITool = "cursor"
	AIToolV0     AITool = "v0"
)

// Valid reports whether the tool is one of the supported targets
func (t AITool) Valid() bool {
	switch t {
	case AIToolReplit, AIToolCursor, AIToolV0:
		return true
	}
	return false
}

// PromptType selects the instruction template: creating a new app
// description or enhancing an existing prompt
type PromptType string

const (
	PromptTypeCreate  PromptType = "create"
	PromptTypeEnhance PromptType = "enhance"
)

// Valid reports whether the prompt type is supported
func (p PromptType) Valid() bool {
	return p == PromptTypeCreate || p == PromptTypeEnhance
}

// Favorite flag values as stored in the database. The column is text,
// not boolean, and the API contract exposes it that way.
const (
	FavoriteTrue  = "true"
	FavoriteFalse = "false"
)

// Prompt represents an enhancement result owned by a user
type Prompt struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	Input      string    `json:"input"`
	Enhanced   string    `json:"enhanced"`
	Favorite   string    `json:"favorite"`
	PromptType string    `json:"promptType"`
	ImageURL   *string   `json:"imageUrl"`
	VoiceURL   *string   `json:"voiceUrl"`
	Context    *string   `json:"context"`
	Timestamp  time.Time `json:"timestamp"`
}
