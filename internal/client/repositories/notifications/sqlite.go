package notifications

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
// *sql.Tx). The opaque Data map is stored as a JSON column.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Add(ctx context.Context, n *models.Notification) error {
	data := n.Data
	if data == nil {
		data = map[string]any{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode notification data: %w", err)
	}

	query := `INSERT INTO notifications (title, body, data, received_at, is_read) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, n.Title, n.Body, string(raw), n.ReceivedAt, n.Read)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted notification id: %w", err)
	}
	n.Id = id
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Notification, error) {
	query := `SELECT id, title, body, data, received_at, is_read FROM notifications WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	n, err := scanNotification(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Notification, error) {
	query := `SELECT id, title, body, data, received_at, is_read FROM notifications ORDER BY received_at DESC, id DESC`
	return r.selectNotifications(ctx, query)
}

func (r *SQLiteRepository) GetUnread(ctx context.Context) ([]models.Notification, error) {
	query := `SELECT id, title, body, data, received_at, is_read FROM notifications WHERE is_read = 0 ORDER BY received_at DESC, id DESC`
	return r.selectNotifications(ctx, query)
}

func (r *SQLiteRepository) selectNotifications(ctx context.Context, query string, args ...any) ([]models.Notification, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select notifications: %w", err)
	}
	defer rows.Close()

	var result []models.Notification
	for rows.Next() {
		n, err := scanNotification(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanNotification(scan func(dest ...any) error) (*models.Notification, error) {
	n := &models.Notification{}
	var raw string
	if err := scan(&n.Id, &n.Title, &n.Body, &raw, &n.ReceivedAt, &n.Read); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(raw), &n.Data); err != nil {
		return nil, fmt.Errorf("failed to decode notification data: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) MarkRead(ctx context.Context, id int64) error {
	query := `UPDATE notifications SET is_read = 1 WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM notifications`); err != nil {
		return fmt.Errorf("failed to clear notifications: %w", err)
	}
	return nil
}
