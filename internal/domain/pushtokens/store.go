package pushtokens

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"turfbook/internal/infra/dbx"
)

type Store interface {
	Upsert(ctx context.Context, userID int64, token string, deviceInfo json.RawMessage) error
	Remove(ctx context.Context, userID int64, token string) error
	RemoveTokens(ctx context.Context, tokens []string) error
	TokensFor(ctx context.Context, userIDs []int64) (map[int64][]string, error)
	PruneStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

type Repository struct {
	db dbx.Querier
}

func NewRepository(db dbx.Querier) *Repository {
	return &Repository{db: db}
}

// Upsert stores token for the user and refreshes last_updated.
func (r *Repository) Upsert(ctx context.Context, userID int64, token string, deviceInfo json.RawMessage) error {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeoutDuration)
	defer cancel()

	const q = `
		INSERT INTO user_push_tokens (user_id, expo_push_token, device_info, last_updated)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id, expo_push_token)
		DO UPDATE SET device_info = EXCLUDED.device_info, last_updated = now()`

	if _, err := r.db.Exec(ctx, q, userID, token, deviceInfo); err != nil {
		return fmt.Errorf("upsert push token: %w", err)
	}
	return nil
}

func (r *Repository) Remove(ctx context.Context, userID int64, token string) error {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeoutDuration)
	defer cancel()

	_, err := r.db.Exec(ctx, `DELETE FROM user_push_tokens WHERE user_id = $1 AND expo_push_token = $2`, userID, token)
	return err
}

// RemoveTokens drops tokens Expo reported as no longer registered.
func (r *Repository) RemoveTokens(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeoutDuration)
	defer cancel()

	_, err := r.db.Exec(ctx, `DELETE FROM user_push_tokens WHERE expo_push_token = ANY($1)`, tokens)
	return err
}

func (r *Repository) TokensFor(ctx context.Context, userIDs []int64) (map[int64][]string, error) {
	result := make(map[int64][]string)
	if len(userIDs) == 0 {
		return result, nil
	}

	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeoutDuration)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT user_id, expo_push_token FROM user_push_tokens WHERE user_id = ANY($1)`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("load push tokens: %w", err)
	}
	defer rows.Close()

	var (
		uid   int64
		token string
	)
	for rows.Next() {
		if err := rows.Scan(&uid, &token); err != nil {
			return nil, err
		}
		result[uid] = append(result[uid], token)
	}
	return result, rows.Err()
}

func (r *Repository) PruneStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, dbx.QueryTimeoutDuration)
	defer cancel()

	interval := fmt.Sprintf("%d seconds", int64(olderThan.Seconds()))
	tag, err := r.db.Exec(ctx, `DELETE FROM user_push_tokens WHERE last_updated < now() - $1::interval`, interval)
	if err != nil {
		return 0, fmt.Errorf("prune push tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
