package notes

import (
	"context"
	"database/sql"
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

func (r *SQLiteRepository) Add(ctx context.Context, note *models.Note) error {
	query := `INSERT INTO notes (client_id, text, created_at, synced) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, note.ClientId, note.Text, note.CreatedAt, note.Synced)
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted note id: %w", err)
	}
	note.Id = id
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Note, error) {
	query := `SELECT id, client_id, text, created_at, synced FROM notes WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	n := &models.Note{}
	if err := row.Scan(&n.Id, &n.ClientId, &n.Text, &n.CreatedAt, &n.Synced); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Note, error) {
	query := `SELECT id, client_id, text, created_at, synced FROM notes ORDER BY created_at DESC, id DESC`
	return r.selectNotes(ctx, query)
}

func (r *SQLiteRepository) GetUnsynced(ctx context.Context) ([]models.Note, error) {
	query := `SELECT id, client_id, text, created_at, synced FROM notes WHERE synced = 0 ORDER BY created_at, id`
	return r.selectNotes(ctx, query)
}

func (r *SQLiteRepository) selectNotes(ctx context.Context, query string, args ...any) ([]models.Note, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select notes: %w", err)
	}
	defer rows.Close()

	var result []models.Note
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.Id, &n.ClientId, &n.Text, &n.CreatedAt, &n.Synced); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, clientID string) error {
	query := `UPDATE notes SET synced = 1 WHERE client_id = ?`
	res, err := r.db.ExecContext(ctx, query, clientID)
	if err != nil {
		return fmt.Errorf("failed to mark note synced: %w", err)
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

// MarkSyncedAll marks every given clientId synced. When the repository is
// bound to a *sql.DB the marks run inside one transaction, so a batch
// acknowledgement is applied completely or not at all.
func (r *SQLiteRepository) MarkSyncedAll(ctx context.Context, clientIDs []string) error {
	if len(clientIDs) == 0 {
		return nil
	}

	db, ok := r.db.(*sql.DB)
	if !ok {
		// already inside a caller-owned transaction
		for _, id := range clientIDs {
			if err := r.MarkSynced(ctx, id); err != nil {
				return err
			}
		}
		return nil
	}

	return dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		rtx := NewSQLiteRepository(tx)
		for _, id := range clientIDs {
			if err := rtx.MarkSynced(ctx, id); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id int64) error {
	query := `DELETE FROM notes WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
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
	if _, err := r.db.ExecContext(ctx, `DELETE FROM notes`); err != nil {
		return fmt.Errorf("failed to clear notes: %w", err)
	}
	return nil
}
