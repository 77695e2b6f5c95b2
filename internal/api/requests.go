package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// RegisterRequest is the body of POST /api/auth/register
type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	Name     *string `json:"name"`
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// EnhanceRequest is the body of POST /api/enhance
type EnhanceRequest struct {
	Input      string `json:"input" validate:"required"`
	AITool     string `json:"aiTool" validate:"required,oneof=replit cursor v0"`
	PromptType string `json:"promptType" validate:"required,oneof=create enhance"`
	ImageURL   string `json:"imageUrl"`
	VoiceURL   string `json:"voiceUrl"`
	Context    string `json:"context"`
}

// APIKeyRequest is the body of POST /api/settings/{provider}
type APIKeyRequest struct {
	Key   string `json:"key" validate:"required"`
	Model string `json:"model" validate:"required"`
}

// ModelRequest is the body of POST /api/settings/{provider}/model
type ModelRequest struct {
	Model string `json:"model" validate:"required"`
}

// validationMessages maps "Struct.Field.tag" to the message the client
// shows. Contract is first-violation-wins, so order of struct fields matters.
var validationMessages = map[string]string{
	"RegisterRequest.Email.required":     "Invalid email address",
	"RegisterRequest.Email.email":        "Invalid email address",
	"RegisterRequest.Password.required":  "Password must be at least 6 characters",
	"RegisterRequest.Password.min":       "Password must be at least 6 characters",
	"LoginRequest.Email.required":        "Email and password are required",
	"LoginRequest.Email.email":           "Invalid email address",
	"LoginRequest.Password.required":     "Email and password are required",
	"EnhanceRequest.Input.required":      "Please enter a prompt",
	"EnhanceRequest.AITool.required":     "Invalid AI tool",
	"EnhanceRequest.AITool.oneof":        "Invalid AI tool",
	"EnhanceRequest.PromptType.required": "Invalid prompt type",
	"EnhanceRequest.PromptType.oneof":    "Invalid prompt type",
	"APIKeyRequest.Key.required":         "API key and model are required",
	"APIKeyRequest.Model.required":       "API key and model are required",
	"ModelRequest.Model.required":        "Model is required",
}

// decodeAndValidate parses the JSON body into dst and validates it.
// Returns the client-facing message for the first problem found, or ""
// when the request is valid.
func decodeAndValidate(r *http.Request, dst interface{}) string {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return "Invalid request body"
	}
	return firstViolation(validate.Struct(dst))
}

// firstViolation translates a validator error into the fixed message for
// its first field violation.
func firstViolation(err error) string {
	if err == nil {
		return ""
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return "Invalid request body"
	}
	v := verrs[0]
	if msg, ok := validationMessages[v.StructNamespace()+"."+v.Tag()]; ok {
		return msg
	}
	return fmt.Sprintf("Invalid value for %s", v.Field())
}
