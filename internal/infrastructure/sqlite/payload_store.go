package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/google/uuid"

	"github.com/zjrosen/mirrorkit/internal/bundle"
	"github.com/zjrosen/mirrorkit/internal/log"
)

// PayloadStore is a bundle.Source backed by the payloads table.
type PayloadStore struct {
	db  *sql.DB
	now func() time.Time
}

// Ensure PayloadStore implements bundle.Source.
var _ bundle.Source = (*PayloadStore)(nil)

func newPayloadStore(db *sql.DB) *PayloadStore {
	return &PayloadStore{db: db, now: time.Now}
}

// Payload returns the payload stored under key. Missing keys wrap
// bundle.ErrNotFound.
func (s *PayloadStore) Payload(ctx context.Context, key string) (string, error) {
	cleaned, err := bundle.CleanKey(key)
	if err != nil {
		return "", err
	}

	var payload string
	err = s.db.QueryRowContext(ctx, `SELECT payload FROM payloads WHERE key = ?`, cleaned).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", bundle.ErrNotFound, cleaned)
	}
	if err != nil {
		return "", fmt.Errorf("failed to load payload: %w", err)
	}
	return payload, nil
}

// Put stores a single payload, replacing any existing one.
func (s *PayloadStore) Put(ctx context.Context, key, payload string) error {
	cleaned, err := bundle.CleanKey(key)
	if err != nil {
		return err
	}
	now := s.now().Unix()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO payloads (key, kind, payload, checksum, import_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, NULL, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			kind = excluded.kind, payload = excluded.payload, checksum = excluded.checksum,
			import_id = NULL, updated_at = excluded.updated_at`,
		cleaned, kindForKey(cleaned), payload, checksum(payload), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to store payload: %w", err)
	}
	return nil
}

// Import copies every .js and .css file of fsys into the store in a single
// transaction. Files whose content is unchanged are left untouched.
func (s *PayloadStore) Import(ctx context.Context, fsys fs.FS, root string) (*ImportResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	model := &ImportModel{
		ID:        uuid.New().String(),
		Root:      root,
		CreatedAt: s.now().Unix(),
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO imports (id, root, created_at) VALUES (?, ?, ?)`,
		model.ID, model.Root, model.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to record import: %w", err)
	}

	err = bundle.Walk(fsys, func(key string) error {
		data, err := fs.ReadFile(fsys, key)
		if err != nil {
			return fmt.Errorf("reading %s: %w", key, err)
		}
		payload := string(data)
		sum := checksum(payload)

		var existing string
		err = tx.QueryRowContext(ctx, `SELECT checksum FROM payloads WHERE key = ?`, key).Scan(&existing)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			_, err = tx.ExecContext(ctx,
				`INSERT INTO payloads (key, kind, payload, checksum, import_id, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				key, kindForKey(key), payload, sum, model.ID, model.CreatedAt, model.CreatedAt,
			)
			model.Added++
		case err != nil:
			return fmt.Errorf("failed to check %s: %w", key, err)
		case existing == sum:
			model.Unchanged++
			return nil
		default:
			_, err = tx.ExecContext(ctx,
				`UPDATE payloads SET payload = ?, checksum = ?, import_id = ?, updated_at = ? WHERE key = ?`,
				payload, sum, model.ID, model.CreatedAt, key,
			)
			model.Updated++
		}
		if err != nil {
			return fmt.Errorf("failed to store %s: %w", key, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE imports SET added = ?, updated = ?, unchanged = ? WHERE id = ?`,
		model.Added, model.Updated, model.Unchanged, model.ID,
	); err != nil {
		return nil, fmt.Errorf("failed to record import counts: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import: %w", err)
	}

	log.Info(log.CatDB, "Imported bundle",
		"id", model.ID, "root", root,
		"added", model.Added, "updated", model.Updated, "unchanged", model.Unchanged)
	return model.toResult(), nil
}

// Keys returns every stored key in lexical order.
func (s *PayloadStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM payloads ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list payloads: %w", err)
	}
	defer func() { _ = rows.Close() }()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan payload key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Delete removes the given keys. Unknown keys are ignored.
func (s *PayloadStore) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM payloads WHERE key = ?`, key); err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}
	return nil
}

// LastImport returns the most recent import, or nil if there has been none.
func (s *PayloadStore) LastImport(ctx context.Context) (*ImportResult, error) {
	var m ImportModel
	err := s.db.QueryRowContext(ctx,
		`SELECT id, root, added, updated, unchanged, created_at FROM imports
		ORDER BY created_at DESC, rowid DESC LIMIT 1`,
	).Scan(&m.ID, &m.Root, &m.Added, &m.Updated, &m.Unchanged, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load last import: %w", err)
	}
	return m.toResult(), nil
}

func checksum(payload string) string {
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
