package repository

import (
	"context"
	"errors"
	"fmt"

	"promptforge/models"
	"promptforge/observability"

	"github.com/jackc/pgx/v5"
)

// CreatePrompt stores an enhancement result and returns the full record
func (r *Repository) CreatePrompt(ctx context.Context, prompt *models.Prompt) (*models.Prompt, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}

	timer := observability.GetMetrics().NewTimer()
	defer timer.ObserveDB("insert", "prompts")

	query := `
		INSERT INTO prompts (user_id, input, enhanced, favorite, prompt_type, image_url, voice_url, context)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, user_id, input, enhanced, favorite, prompt_type, image_url, voice_url, context, created_at
	`

	favorite := prompt.Favorite
	if favorite == "" {
		favorite = models.FavoriteFalse
	}

	var stored models.Prompt
	err := r.db.QueryRow(ctx, query,
		prompt.UserID,
		prompt.Input,
		prompt.Enhanced,
		favorite,
		prompt.PromptType,
		prompt.ImageURL,
		prompt.VoiceURL,
		prompt.Context,
	).Scan(
		&stored.ID,
		&stored.UserID,
		&stored.Input,
		&stored.Enhanced,
		&stored.Favorite,
		&stored.PromptType,
		&stored.ImageURL,
		&stored.VoiceURL,
		&stored.Context,
		&stored.Timestamp,
	)
	if err != nil {
		observability.GetMetrics().RecordDBError("insert", "prompts")
		return nil, fmt.Errorf("failed to create prompt: %w", err)
	}

	return &stored, nil
}

// GetPromptsByUser returns the user's prompts in insertion-timestamp order
func (r *Repository) GetPromptsByUser(ctx context.Context, userID int64) ([]models.Prompt, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}

	query := `
		SELECT id, user_id, input, enhanced, favorite, prompt_type, image_url, voice_url, context, created_at
		FROM prompts
		WHERE user_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		observability.GetMetrics().RecordDBError("select", "prompts")
		return nil, fmt.Errorf("failed to query prompts: %w", err)
	}
	defer rows.Close()

	var prompts []models.Prompt
	for rows.Next() {
		var p models.Prompt
		err := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.Input,
			&p.Enhanced,
			&p.Favorite,
			&p.PromptType,
			&p.ImageURL,
			&p.VoiceURL,
			&p.Context,
			&p.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prompt: %w", err)
		}
		prompts = append(prompts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prompts: %w", err)
	}

	return prompts, nil
}

// ToggleFavorite flips the favorite flag of the user's prompt and returns
// the updated record. The flip happens in a single conditional UPDATE so
// concurrent toggles compose instead of losing one. Returns ErrNotFound
// when the prompt does not exist or belongs to another user.
func (r *Repository) ToggleFavorite(ctx context.Context, id, userID int64) (*models.Prompt, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}

	timer := observability.GetMetrics().NewTimer()
	defer timer.ObserveDB("update", "prompts")

	query := `
		UPDATE prompts
		SET favorite = CASE WHEN favorite = 'true' THEN 'false' ELSE 'true' END
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, input, enhanced, favorite, prompt_type, image_url, voice_url, context, created_at
	`

	var p models.Prompt
	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&p.ID,
		&p.UserID,
		&p.Input,
		&p.Enhanced,
		&p.Favorite,
		&p.PromptType,
		&p.ImageURL,
		&p.VoiceURL,
		&p.Context,
		&p.Timestamp,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		observability.GetMetrics().RecordDBError("update", "prompts")
		return nil, fmt.Errorf("failed to toggle favorite: %w", err)
	}

	return &p, nil
}
