// Package store defines storage interfaces for the stockticker host: named
// save slots holding game snapshots, and per-roll history records for
// post-game review.
package store

import (
	"context"
	"time"
)

// SaveInfo describes one named save slot.
type SaveInfo struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SaveStore persists game snapshots under player-chosen slot names.
type SaveStore interface {
	// SaveGame writes the snapshot under the given slot name, creating the
	// slot or replacing its contents.
	SaveGame(ctx context.Context, name string, snapshot []byte) (SaveInfo, error)

	// LoadGame returns the snapshot stored under the given slot name.
	LoadGame(ctx context.Context, name string) ([]byte, error)

	// ListSaves returns all save slots, most recently updated first.
	ListSaves(ctx context.Context) ([]SaveInfo, error)

	// DeleteSave removes the slot with the given name.
	DeleteSave(ctx context.Context, name string) error
}

// RollRecord is one resolved roll as observed by the host: which stock
// moved, how, and the resulting price.
type RollRecord struct {
	GameID      string
	Seq         int64
	Symbol      string
	Action      string
	AmountCents int64
	PriceCents  int64
	RolledAt    time.Time
}

// HistoryStore persists the roll-by-roll history of games.
type HistoryStore interface {
	// WriteRolls persists a batch of roll records. Records already present
	// (same game and sequence number) are replaced.
	WriteRolls(ctx context.Context, records []RollRecord) error

	// ReadRolls returns all recorded rolls for a game in sequence order.
	ReadRolls(ctx context.Context, gameID string) ([]RollRecord, error)
}
