package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/golang-migrate/migrate/v4/database"
)

const migrationsTable = "schema_migrations"

// migrateDriver runs golang-migrate against an already open connection.
// The connection belongs to DB, so Close is a no-op.
type migrateDriver struct {
	conn     *sql.DB
	isLocked atomic.Bool
}

// Compile-time check that migrateDriver implements database.Driver.
var _ database.Driver = (*migrateDriver)(nil)

func newMigrateDriver(conn *sql.DB) (*migrateDriver, error) {
	d := &migrateDriver{conn: conn}
	if _, err := conn.Exec(`CREATE TABLE IF NOT EXISTS ` + migrationsTable + ` (version INTEGER NOT NULL, dirty INTEGER NOT NULL)`); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}
	return d, nil
}

// Open is unsupported; the driver is always built from an open connection.
func (d *migrateDriver) Open(string) (database.Driver, error) {
	return nil, errors.New("open by url not supported")
}

func (d *migrateDriver) Close() error {
	return nil
}

func (d *migrateDriver) Lock() error {
	if !d.isLocked.CompareAndSwap(false, true) {
		return database.ErrLocked
	}
	return nil
}

func (d *migrateDriver) Unlock() error {
	if !d.isLocked.CompareAndSwap(true, false) {
		return database.ErrNotLocked
	}
	return nil
}

func (d *migrateDriver) Run(migration io.Reader) error {
	query, err := io.ReadAll(migration)
	if err != nil {
		return err
	}
	if _, err := d.conn.Exec(string(query)); err != nil {
		return &database.Error{OrigErr: err, Err: "migration failed", Query: query}
	}
	return nil
}

func (d *migrateDriver) SetVersion(version int, dirty bool) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return &database.Error{OrigErr: err, Err: "transaction start failed"}
	}

	if _, err := tx.Exec(`DELETE FROM ` + migrationsTable); err != nil {
		_ = tx.Rollback()
		return &database.Error{OrigErr: err, Err: "failed to clear version"}
	}

	// NilVersion with dirty set still has to be recorded so a failed first
	// migration is visible.
	if version >= 0 || (version == database.NilVersion && dirty) {
		if _, err := tx.Exec(`INSERT INTO `+migrationsTable+` (version, dirty) VALUES (?, ?)`, version, dirty); err != nil {
			_ = tx.Rollback()
			return &database.Error{OrigErr: err, Err: "failed to record version"}
		}
	}

	if err := tx.Commit(); err != nil {
		return &database.Error{OrigErr: err, Err: "transaction commit failed"}
	}
	return nil
}

func (d *migrateDriver) Version() (int, bool, error) {
	var version int
	var dirty bool
	err := d.conn.QueryRow(`SELECT version, dirty FROM ` + migrationsTable + ` LIMIT 1`).Scan(&version, &dirty)
	if errors.Is(err, sql.ErrNoRows) {
		return database.NilVersion, false, nil
	}
	if err != nil {
		return 0, false, &database.Error{OrigErr: err, Err: "failed to read version"}
	}
	return version, dirty, nil
}

func (d *migrateDriver) Drop() error {
	rows, err := d.conn.Query(`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`)
	if err != nil {
		return err
	}
	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			_ = rows.Close()
			return err
		}
		tables = append(tables, name)
	}
	if err := rows.Close(); err != nil {
		return err
	}

	for _, name := range tables {
		if _, err := d.conn.Exec(`DROP TABLE IF EXISTS "` + name + `"`); err != nil {
			return fmt.Errorf("failed to drop %s: %w", name, err)
		}
	}
	return nil
}
