package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"
)

// Compile-time interface check.
var _ HistoryStore = (*ParquetStore)(nil)

// ParquetStore implements HistoryStore using one Parquet file per game,
// suitable for post-game analysis with columnar tooling.
type ParquetStore struct {
	DataDir string
}

// NewParquetStore creates a new ParquetStore rooted at the given data
// directory.
func NewParquetStore(dataDir string) *ParquetStore {
	return &ParquetStore{DataDir: dataDir}
}

// ---------------------------------------------------------------------------
// Parquet record types (on-disk schema)
// ---------------------------------------------------------------------------

// rollParquetRecord is the Parquet schema for roll history.
type rollParquetRecord struct {
	GameID      string `parquet:"game_id"`
	Seq         int64  `parquet:"seq"`
	Symbol      string `parquet:"symbol"`
	Action      string `parquet:"action"`
	AmountCents int64  `parquet:"amount_cents"`
	PriceCents  int64  `parquet:"price_cents"`
	RolledAt    int64  `parquet:"rolled_at,timestamp(millisecond)"` // Unix ms
}

// ---------------------------------------------------------------------------
// HistoryStore implementation
// ---------------------------------------------------------------------------

// WriteRolls writes roll history to Parquet files, one file per game at:
//
//	<DataDir>/history/<game_id>.parquet
//
// Existing records for the same (game, seq) are replaced.
func (s *ParquetStore) WriteRolls(_ context.Context, records []RollRecord) error {
	if len(records) == 0 {
		return nil
	}

	groups := make(map[string][]rollParquetRecord)
	for _, r := range records {
		groups[r.GameID] = append(groups[r.GameID], rollParquetRecord{
			GameID:      r.GameID,
			Seq:         r.Seq,
			Symbol:      r.Symbol,
			Action:      r.Action,
			AmountCents: r.AmountCents,
			PriceCents:  r.PriceCents,
			RolledAt:    r.RolledAt.UnixMilli(),
		})
	}

	for gameID, incoming := range groups {
		path := s.historyPath(gameID)

		// Read existing records to merge.
		existing, _ := readParquetFile[rollParquetRecord](path)
		merged := mergeRollRecords(existing, incoming)

		if err := writeParquetFile(path, merged); err != nil {
			return fmt.Errorf("writing roll history for game %s: %w", gameID, err)
		}
	}
	return nil
}

// ReadRolls reads the recorded rolls for a game in sequence order. A game
// with no history file yields no records and no error.
func (s *ParquetStore) ReadRolls(_ context.Context, gameID string) ([]RollRecord, error) {
	records, err := readParquetFile[rollParquetRecord](s.historyPath(gameID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading roll history for game %s: %w", gameID, err)
	}

	out := make([]RollRecord, 0, len(records))
	for _, r := range records {
		out = append(out, RollRecord{
			GameID:      r.GameID,
			Seq:         r.Seq,
			Symbol:      r.Symbol,
			Action:      r.Action,
			AmountCents: r.AmountCents,
			PriceCents:  r.PriceCents,
			RolledAt:    time.UnixMilli(r.RolledAt),
		})
	}
	return out, nil
}

// historyPath returns the filesystem path for a game's history file.
// Layout: <dataDir>/history/<game_id>.parquet
func (s *ParquetStore) historyPath(gameID string) string {
	return filepath.Join(s.DataDir, "history", gameID+".parquet")
}

// ---------------------------------------------------------------------------
// Parquet file helpers
// ---------------------------------------------------------------------------

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// mergeRollRecords deduplicates records by (game, seq), preferring new
// records over existing ones. Results are sorted by sequence number.
func mergeRollRecords(existing, incoming []rollParquetRecord) []rollParquetRecord {
	type key struct {
		gameID string
		seq    int64
	}
	seen := make(map[key]rollParquetRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[key{r.GameID, r.Seq}] = r
	}
	for _, r := range incoming {
		seen[key{r.GameID, r.Seq}] = r
	}

	merged := make([]rollParquetRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Seq < merged[j].Seq
	})
	return merged
}
