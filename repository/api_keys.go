package repository

import (
	"context"
	"errors"
	"fmt"

	"promptforge/models"
	"promptforge/observability"

	"github.com/jackc/pgx/v5"
)

// GetAPIKey retrieves the stored credential for a (user, provider) pair
func (r *Repository) GetAPIKey(ctx context.Context, userID int64, provider string) (*models.APIKey, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}

	query := `
		SELECT id, user_id, provider, api_key, model, created_at, updated_at
		FROM api_keys
		WHERE user_id = $1 AND provider = $2
	`

	var key models.APIKey
	err := r.db.QueryRow(ctx, query, userID, provider).Scan(
		&key.ID,
		&key.UserID,
		&key.Provider,
		&key.APIKey,
		&key.Model,
		&key.CreatedAt,
		&key.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		observability.GetMetrics().RecordDBError("select", "api_keys")
		return nil, fmt.Errorf("failed to get api key: %w", err)
	}

	return &key, nil
}

// SetAPIKey replaces the credential for (user, provider): existing rows for
// the pair are deleted and the new row inserted in one transaction, so a
// race between two callers still leaves exactly one row, last commit wins.
func (r *Repository) SetAPIKey(ctx context.Context, key *models.APIKey) (*models.APIKey, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}

	timer := observability.GetMetrics().NewTimer()
	defer timer.ObserveDB("replace", "api_keys")

	tx, txRepo, err := r.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	_, err = txRepo.db.Exec(ctx,
		`DELETE FROM api_keys WHERE user_id = $1 AND provider = $2`,
		key.UserID, key.Provider,
	)
	if err != nil {
		observability.GetMetrics().RecordDBError("delete", "api_keys")
		return nil, fmt.Errorf("failed to delete existing api key: %w", err)
	}

	query := `
		INSERT INTO api_keys (user_id, provider, api_key, model)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, provider, api_key, model, created_at, updated_at
	`

	var stored models.APIKey
	err = txRepo.db.QueryRow(ctx, query, key.UserID, key.Provider, key.APIKey, key.Model).Scan(
		&stored.ID,
		&stored.UserID,
		&stored.Provider,
		&stored.APIKey,
		&stored.Model,
		&stored.CreatedAt,
		&stored.UpdatedAt,
	)
	if err != nil {
		observability.GetMetrics().RecordDBError("insert", "api_keys")
		return nil, fmt.Errorf("failed to insert api key: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit api key replacement: %w", err)
	}

	return &stored, nil
}

// GetAllAPIKeys returns all credentials stored for a user
func (r *Repository) GetAllAPIKeys(ctx context.Context, userID int64) ([]models.APIKey, error) {
	if err := r.checkDB(); err != nil {
		return nil, err
	}

	query := `
		SELECT id, user_id, provider, api_key, model, created_at, updated_at
		FROM api_keys
		WHERE user_id = $1
		ORDER BY provider
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		observability.GetMetrics().RecordDBError("select", "api_keys")
		return nil, fmt.Errorf("failed to query api keys: %w", err)
	}
	defer rows.Close()

	var keys []models.APIKey
	for rows.Next() {
		var key models.APIKey
		err := rows.Scan(
			&key.ID,
			&key.UserID,
			&key.Provider,
			&key.APIKey,
			&key.Model,
			&key.CreatedAt,
			&key.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan api key: %w", err)
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating api keys: %w", err)
	}

	return keys, nil
}
