package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface checks.
var _ SaveStore = (*SQLiteStore)(nil)
var _ HistoryStore = (*SQLiteStore)(nil)

// SQLiteStore implements SaveStore and HistoryStore backed by a SQLite
// database. Timestamps are stored as RFC 3339 text.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS saves (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	snapshot   BLOB NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS rolls (
	game_id      TEXT    NOT NULL,
	seq          INTEGER NOT NULL,
	symbol       TEXT    NOT NULL,
	action       TEXT    NOT NULL,
	amount_cents INTEGER NOT NULL,
	price_cents  INTEGER NOT NULL,
	rolled_at    TEXT    NOT NULL,
	PRIMARY KEY (game_id, seq)
);
`

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, applies
// the schema, and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db %s: %w", dbPath, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// SaveStore implementation
// ---------------------------------------------------------------------------

// SaveGame upserts the snapshot under the given slot name.
func (s *SQLiteStore) SaveGame(ctx context.Context, name string, snapshot []byte) (SaveInfo, error) {
	now := time.Now().UTC()
	id := uuid.NewString()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO saves (id, name, snapshot, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			snapshot = excluded.snapshot,
			updated_at = excluded.updated_at`,
		id, name, snapshot, now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano))
	if err != nil {
		return SaveInfo{}, fmt.Errorf("saving game %q: %w", name, err)
	}

	return s.saveInfo(ctx, name)
}

// LoadGame returns the snapshot stored under the given slot name.
func (s *SQLiteStore) LoadGame(ctx context.Context, name string) ([]byte, error) {
	var snapshot []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT snapshot FROM saves WHERE name = ?`, name).Scan(&snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no save named %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("loading game %q: %w", name, err)
	}
	return snapshot, nil
}

// ListSaves returns all save slots, most recently updated first.
func (s *SQLiteStore) ListSaves(ctx context.Context) ([]SaveInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_at, updated_at
		FROM saves
		ORDER BY updated_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("listing saves: %w", err)
	}
	defer rows.Close()

	var saves []SaveInfo
	for rows.Next() {
		info, err := scanSaveInfo(rows)
		if err != nil {
			return nil, err
		}
		saves = append(saves, info)
	}
	return saves, rows.Err()
}

// DeleteSave removes the slot with the given name.
func (s *SQLiteStore) DeleteSave(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM saves WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting save %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no save named %q", name)
	}
	return nil
}

func (s *SQLiteStore) saveInfo(ctx context.Context, name string) (SaveInfo, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at, updated_at
		FROM saves WHERE name = ?`, name)
	return scanSaveInfo(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSaveInfo(row rowScanner) (SaveInfo, error) {
	var info SaveInfo
	var created, updated string
	if err := row.Scan(&info.ID, &info.Name, &created, &updated); err != nil {
		return SaveInfo{}, fmt.Errorf("scanning save row: %w", err)
	}
	var err error
	if info.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return SaveInfo{}, fmt.Errorf("parsing created_at: %w", err)
	}
	if info.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return SaveInfo{}, fmt.Errorf("parsing updated_at: %w", err)
	}
	return info, nil
}

// ---------------------------------------------------------------------------
// HistoryStore implementation
// ---------------------------------------------------------------------------

// WriteRolls persists a batch of roll records, replacing records with the
// same game and sequence number.
func (s *SQLiteStore) WriteRolls(ctx context.Context, records []RollRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning rolls transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO rolls
			(game_id, seq, symbol, action, amount_cents, price_cents, rolled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing rolls insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.ExecContext(ctx,
			r.GameID, r.Seq, r.Symbol, r.Action, r.AmountCents, r.PriceCents,
			r.RolledAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("inserting roll %d for game %s: %w", r.Seq, r.GameID, err)
		}
	}

	return tx.Commit()
}

// ReadRolls returns all recorded rolls for a game in sequence order.
func (s *SQLiteStore) ReadRolls(ctx context.Context, gameID string) ([]RollRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT game_id, seq, symbol, action, amount_cents, price_cents, rolled_at
		FROM rolls WHERE game_id = ? ORDER BY seq`, gameID)
	if err != nil {
		return nil, fmt.Errorf("reading rolls for game %s: %w", gameID, err)
	}
	defer rows.Close()

	var records []RollRecord
	for rows.Next() {
		var r RollRecord
		var rolledAt string
		if err := rows.Scan(&r.GameID, &r.Seq, &r.Symbol, &r.Action,
			&r.AmountCents, &r.PriceCents, &rolledAt); err != nil {
			return nil, fmt.Errorf("scanning roll row: %w", err)
		}
		if r.RolledAt, err = time.Parse(time.RFC3339Nano, rolledAt); err != nil {
			return nil, fmt.Errorf("parsing rolled_at: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
