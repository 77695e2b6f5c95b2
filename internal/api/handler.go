package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"promptforge/config"
	"promptforge/internal/auth"
	"promptforge/models"
	"promptforge/observability"
	"promptforge/repository"
	"promptforge/services"
)

// Repository is the storage surface the handlers need
type Repository interface {
	CreateUser(ctx context.Context, email, hashedPassword string, name *string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreatePrompt(ctx context.Context, prompt *models.Prompt) (*models.Prompt, error)
	GetPromptsByUser(ctx context.Context, userID int64) ([]models.Prompt, error)
	ToggleFavorite(ctx context.Context, id, userID int64) (*models.Prompt, error)
	GetAPIKey(ctx context.Context, userID int64, provider string) (*models.APIKey, error)
	SetAPIKey(ctx context.Context, key *models.APIKey) (*models.APIKey, error)
	GetAllAPIKeys(ctx context.Context, userID int64) ([]models.APIKey, error)
	Health(ctx context.Context) error
}

// SessionStore issues, resolves and revokes cookie sessions
type SessionStore interface {
	Establish(w http.ResponseWriter, r *http.Request, user *models.User) error
	Current(r *http.Request) (*auth.SessionUser, error)
	Destroy(w http.ResponseWriter, r *http.Request) error
}

// PromptEnhancer runs the enhancement pipeline
type PromptEnhancer interface {
	Enhance(ctx context.Context, req services.EnhanceRequest) (string, error)
}

// Handler handles HTTP API requests
type Handler struct {
	cfg      *config.Config
	repo     Repository
	sessions SessionStore
	enhancer PromptEnhancer
	prefs    *services.ModelPreferences
}

// NewHandler creates a new Handler
func NewHandler(cfg *config.Config, repo Repository, sessions SessionStore, enhancer PromptEnhancer, prefs *services.ModelPreferences) *Handler {
	return &Handler{
		cfg:      cfg,
		repo:     repo,
		sessions: sessions,
		enhancer: enhancer,
		prefs:    prefs,
	}
}

// HandleHealth returns the health status of the application
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status": "ok",
		"services": map[string]string{
			"database": "unknown",
		},
	}

	if err := h.repo.Health(r.Context()); err == nil {
		status["services"].(map[string]string)["database"] = "connected"
	} else {
		status["services"].(map[string]string)["database"] = "disconnected"
		status["status"] = "degraded"
	}

	cbStatus := services.GetGlobalRegistry().Status()
	status["circuit_breakers"] = cbStatus
	for _, cb := range cbStatus {
		if cb.State == "open" {
			status["status"] = "degraded"
			break
		}
	}

	h.jsonResponse(w, status, http.StatusOK)
}

// HandleRegister creates a user account and logs it in
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	metrics := observability.GetMetrics()

	var req RegisterRequest
	if msg := decodeAndValidate(r, &req); msg != "" {
		h.jsonError(w, msg, http.StatusBadRequest)
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		observability.Error("Failed to hash password", "error", err)
		h.jsonError(w, "Failed to create account", http.StatusInternalServerError)
		return
	}

	user, err := h.repo.CreateUser(r.Context(), req.Email, hashed, req.Name)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			metrics.RecordAuthAttempt("register", "duplicate")
			h.jsonError(w, "Email already in use", http.StatusBadRequest)
			return
		}
		observability.Error("Failed to create user", "error", err)
		h.jsonError(w, "Failed to create account", http.StatusInternalServerError)
		return
	}

	if err := h.sessions.Establish(w, r, user); err != nil {
		observability.WithUser(user.ID).Error("Failed to establish session", "error", err)
		h.jsonError(w, "Failed to create account", http.StatusInternalServerError)
		return
	}

	metrics.RecordAuthAttempt("register", "success")
	h.jsonResponse(w, map[string]interface{}{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
	}, http.StatusCreated)
}

// HandleLogin authenticates a user and establishes a session
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	metrics := observability.GetMetrics()

	var req LoginRequest
	if msg := decodeAndValidate(r, &req); msg != "" {
		h.jsonError(w, msg, http.StatusBadRequest)
		return
	}

	user, err := h.repo.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			observability.Error("Failed to look up user", "error", err)
		}
		metrics.RecordAuthAttempt("login", "failure")
		h.jsonError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	if !auth.VerifyPassword(user.HashedPassword, req.Password) {
		metrics.RecordAuthAttempt("login", "failure")
		h.jsonError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	if err := h.sessions.Establish(w, r, user); err != nil {
		observability.WithUser(user.ID).Error("Failed to establish session", "error", err)
		h.jsonError(w, "Failed to log in", http.StatusInternalServerError)
		return
	}

	metrics.RecordAuthAttempt("login", "success")
	h.jsonResponse(w, map[string]interface{}{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
	}, http.StatusOK)
}

// HandleLogout destroys the caller's session
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(w, r); err != nil {
		observability.Error("Failed to destroy session", "error", err)
		h.jsonError(w, "Failed to log out", http.StatusInternalServerError)
		return
	}
	h.jsonResponse(w, map[string]string{"message": "Logged out successfully"}, http.StatusOK)
}

// HandleEnhance runs the enhancement pipeline and persists the result
func (h *Handler) HandleEnhance(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var req EnhanceRequest
	if msg := decodeAndValidate(r, &req); msg != "" {
		h.jsonError(w, msg, http.StatusBadRequest)
		return
	}

	enhanced, err := h.enhancer.Enhance(r.Context(), services.EnhanceRequest{
		UserID:     user.ID,
		Input:      req.Input,
		Tool:       models.AITool(req.AITool),
		PromptType: models.PromptType(req.PromptType),
		ImageURL:   req.ImageURL,
		VoiceURL:   req.VoiceURL,
		Context:    req.Context,
	})
	if err != nil {
		if errors.Is(err, services.ErrAPIKeyMissing) {
			h.jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		observability.WithUser(user.ID).Error("Failed to enhance prompt", "error", err)
		h.jsonError(w, "Failed to enhance prompt", http.StatusInternalServerError)
		return
	}

	prompt := &models.Prompt{
		UserID:     user.ID,
		Input:      req.Input,
		Enhanced:   enhanced,
		Favorite:   models.FavoriteFalse,
		PromptType: req.PromptType,
		ImageURL:   optional(req.ImageURL),
		VoiceURL:   optional(req.VoiceURL),
		Context:    optional(req.Context),
	}

	saved, err := h.repo.CreatePrompt(r.Context(), prompt)
	if err != nil {
		observability.WithUser(user.ID).Error("Failed to save prompt", "error", err)
		h.jsonError(w, "Failed to enhance prompt", http.StatusInternalServerError)
		return
	}

	h.jsonResponse(w, saved, http.StatusOK)
}

// HandleGetPrompts returns the caller's prompt history
func (h *Handler) HandleGetPrompts(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	prompts, err := h.repo.GetPromptsByUser(r.Context(), user.ID)
	if err != nil {
		observability.WithUser(user.ID).Error("Failed to list prompts", "error", err)
		h.jsonError(w, "Failed to fetch prompts", http.StatusInternalServerError)
		return
	}
	if prompts == nil {
		// An empty history is [], never null
		prompts = []models.Prompt{}
	}

	h.jsonResponse(w, prompts, http.StatusOK)
}

// HandleToggleFavorite flips the favorite flag on one of the caller's prompts
func (h *Handler) HandleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.jsonError(w, "Invalid prompt ID", http.StatusBadRequest)
		return
	}

	prompt, err := h.repo.ToggleFavorite(r.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.jsonError(w, "Prompt not found", http.StatusNotFound)
			return
		}
		observability.WithUser(user.ID).Error("Failed to toggle favorite", "error", err)
		h.jsonError(w, "Failed to update prompt", http.StatusInternalServerError)
		return
	}

	h.jsonResponse(w, prompt, http.StatusOK)
}

// HandleSetAPIKey stores the caller's credential for a provider
func (h *Handler) HandleSetAPIKey(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	provider := chi.URLParam(r, "provider")

	var req APIKeyRequest
	if msg := decodeAndValidate(r, &req); msg != "" {
		h.jsonError(w, msg, http.StatusBadRequest)
		return
	}

	_, err := h.repo.SetAPIKey(r.Context(), &models.APIKey{
		UserID:   user.ID,
		Provider: provider,
		APIKey:   req.Key,
		Model:    req.Model,
	})
	if err != nil {
		observability.WithUser(user.ID).Error("Failed to save api key", "error", err, "provider", provider)
		h.jsonError(w, "Failed to save API key", http.StatusInternalServerError)
		return
	}

	h.jsonResponse(w, map[string]string{"message": "API key saved successfully"}, http.StatusOK)
}

// HandleGetAPIKey reports whether the caller has a key for a provider,
// never the key itself
func (h *Handler) HandleGetAPIKey(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	provider := chi.URLParam(r, "provider")

	key, err := h.repo.GetAPIKey(r.Context(), user.ID, provider)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.jsonResponse(w, map[string]interface{}{"hasKey": false}, http.StatusOK)
			return
		}
		observability.WithUser(user.ID).Error("Failed to fetch api key", "error", err, "provider", provider)
		h.jsonError(w, "Failed to fetch API key", http.StatusInternalServerError)
		return
	}

	h.jsonResponse(w, map[string]interface{}{
		"hasKey": true,
		"model":  key.Model,
	}, http.StatusOK)
}

// HandleGetAllSettings returns key presence and model per provider
func (h *Handler) HandleGetAllSettings(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	keys, err := h.repo.GetAllAPIKeys(r.Context(), user.ID)
	if err != nil {
		observability.WithUser(user.ID).Error("Failed to fetch settings", "error", err)
		h.jsonError(w, "Failed to fetch settings", http.StatusInternalServerError)
		return
	}

	settings := make(map[string]interface{}, len(keys))
	for _, key := range keys {
		settings[key.Provider] = map[string]interface{}{
			"hasKey": true,
			"model":  key.Model,
		}
	}

	h.jsonResponse(w, settings, http.StatusOK)
}

// HandleSetDefaultModel overrides the process-wide default model for a provider
func (h *Handler) HandleSetDefaultModel(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	var req ModelRequest
	if msg := decodeAndValidate(r, &req); msg != "" {
		h.jsonError(w, msg, http.StatusBadRequest)
		return
	}

	h.prefs.Set(provider, req.Model)
	h.jsonResponse(w, map[string]string{"message": "Model updated successfully"}, http.StatusOK)
}

// HandleGetDefaultModel returns the default model for a provider
func (h *Handler) HandleGetDefaultModel(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	h.jsonResponse(w, map[string]string{"model": h.prefs.Get(provider)}, http.StatusOK)
}

// Helper functions

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (h *Handler) jsonResponse(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
