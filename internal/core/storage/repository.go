package storage

import (
	"context"
)

// FactFilter narrows a spawn-chance query. MapName and BossName are optional
// exact names compared case-insensitively; Start and End are an inclusive
// epoch-second range and are always applied.
type FactFilter struct {
	MapName  string
	BossName string
	Start    int64
	End      int64
}

// FactRow is one flat (map, boss, chance) observation with its snapshot time.
type FactRow struct {
	MapName      string
	BossName     string
	Chance       float64
	EpochSeconds int64
}

// SnapshotStore defines the interface for writing and reading boss spawn
// snapshots. The ingestion pipeline is the sole writer; all other callers
// are read-only consumers.
type SnapshotStore interface {
	// ResolveTimestamp returns the id of the timestamp row for the given
	// epoch second, creating it if absent.
	ResolveTimestamp(ctx context.Context, epochSeconds int64) (int64, error)

	// ResolveMap returns the id of the map row with the given name,
	// creating it if absent.
	ResolveMap(ctx context.Context, name string) (int64, error)

	// ResolveBoss returns the id of the boss row with the given name,
	// creating it if absent.
	ResolveBoss(ctx context.Context, name string) (int64, error)

	// InsertSpawnChance writes one fact row. A pre-existing row with the
	// same (boss_id, map_id, timestamp_id) key is a silent no-op; the
	// first written chance wins.
	InsertSpawnChance(ctx context.Context, bossID, mapID int64, chance float64, timestampID int64) error

	// QueryFacts returns flat fact rows joined to their dimensions,
	// matching the filter. No ordering is imposed.
	QueryFacts(ctx context.Context, filter FactFilter) ([]FactRow, error)

	// ListBosses returns the distinct boss names seen so far.
	ListBosses(ctx context.Context) ([]string, error)

	// ListMaps returns the distinct map names seen so far.
	ListMaps(ctx context.Context) ([]string, error)
}
