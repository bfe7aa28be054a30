package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/notiapp/notiapp/internal/common"
	"github.com/notiapp/notiapp/internal/server/migrations"
	"github.com/notiapp/notiapp/internal/server/models"
)

// Postgres is the durable backend. Notes and subscriptions live in two
// tables keyed by clientId and endpoint respectively; migrations run on
// open.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return &Postgres{db: db}, nil
}

func (p *Postgres) UpsertNote(ctx context.Context, n *models.Note) (bool, error) {
	// xmax = 0 only holds for freshly inserted rows, which is exactly the
	// created/updated distinction the sync protocol needs
	query := `
		INSERT INTO notes (client_id, text, timestamp_ms, saved_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (client_id)
		DO UPDATE SET text = EXCLUDED.text, timestamp_ms = EXCLUDED.timestamp_ms, saved_at = now()
		RETURNING (xmax = 0);
	`
	var created bool
	if err := p.db.QueryRowContext(ctx, query, n.ClientId, n.Text, n.Timestamp).Scan(&created); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

func (p *Postgres) ListNotes(ctx context.Context) ([]models.Note, error) {
	query := `SELECT client_id, text, timestamp_ms, saved_at FROM notes ORDER BY timestamp_ms DESC`
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select notes: %w", err)
	}
	defer rows.Close()

	var result []models.Note
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ClientId, &n.Text, &n.Timestamp, &n.SavedAt); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func (p *Postgres) SaveSubscription(ctx context.Context, sub *models.Subscription) error {
	prefs, err := json.Marshal(sub.Preferences)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	query := `
		INSERT INTO subscriptions (endpoint, p256dh, auth, user_name, preferences, subscribed_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (endpoint)
		DO UPDATE SET p256dh = EXCLUDED.p256dh, auth = EXCLUDED.auth,
			user_name = EXCLUDED.user_name, preferences = EXCLUDED.preferences;
	`
	if _, err := p.db.ExecContext(ctx, query,
		sub.Endpoint, sub.Keys.P256dh, sub.Keys.Auth, sub.UserName, prefs); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (p *Postgres) GetSubscription(ctx context.Context, endpoint string) (*models.Subscription, error) {
	query := `SELECT endpoint, p256dh, auth, user_name, preferences, subscribed_at
		FROM subscriptions WHERE endpoint = $1`

	sub, err := scanSubscription(p.db.QueryRowContext(ctx, query, endpoint))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	return sub, err
}

func (p *Postgres) DeleteSubscription(ctx context.Context, endpoint string) (bool, error) {
	res, err := p.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE endpoint = $1`, endpoint)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n > 0, nil
}

func (p *Postgres) ListSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	query := `SELECT endpoint, p256dh, auth, user_name, preferences, subscribed_at
		FROM subscriptions ORDER BY endpoint`
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select subscriptions: %w", err)
	}
	defer rows.Close()

	var result []models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *sub)
	}
	return result, rows.Err()
}

func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

func (p *Postgres) Close() error { return p.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row rowScanner) (*models.Subscription, error) {
	var sub models.Subscription
	var prefs []byte
	if err := row.Scan(&sub.Endpoint, &sub.Keys.P256dh, &sub.Keys.Auth,
		&sub.UserName, &prefs, &sub.SubscribedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(prefs, &sub.Preferences); err != nil {
		return nil, fmt.Errorf("failed to decode preferences: %w", err)
	}
	return &sub, nil
}
