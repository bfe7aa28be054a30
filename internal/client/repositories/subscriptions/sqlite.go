package subscriptions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/notiapp/notiapp/internal/client/models"
	"github.com/notiapp/notiapp/internal/common"
	"github.com/notiapp/notiapp/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or
// *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Save(ctx context.Context, sub *models.Subscription) error {
	prefs, err := json.Marshal(sub.Preferences)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	query := `INSERT INTO subscriptions (id, endpoint, p256dh, auth, user_name, preferences, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET endpoint = excluded.endpoint,
				p256dh = excluded.p256dh,
				auth = excluded.auth,
				user_name = excluded.user_name,
				preferences = excluded.preferences,
				created_at = excluded.created_at
	`
	_, err = r.db.ExecContext(ctx, query,
		models.SubscriptionID, sub.Endpoint, sub.Keys.P256dh, sub.Keys.Auth,
		sub.UserName, string(prefs), sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context) (*models.Subscription, error) {
	query := `SELECT id, endpoint, p256dh, auth, user_name, preferences, created_at FROM subscriptions WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, models.SubscriptionID)

	sub := &models.Subscription{}
	var prefs string
	err := row.Scan(&sub.Id, &sub.Endpoint, &sub.Keys.P256dh, &sub.Keys.Auth,
		&sub.UserName, &prefs, &sub.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	if err := json.Unmarshal([]byte(prefs), &sub.Preferences); err != nil {
		return nil, fmt.Errorf("failed to decode preferences: %w", err)
	}
	return sub, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = ?`, models.SubscriptionID)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}
