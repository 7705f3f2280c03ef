// Package ingestion turns feed snapshots into time-indexed fact rows.
//
// Each run assigns one shared epoch-second timestamp, resolves the map and
// boss dimension rows for every (map, boss) pair in the payload, and writes
// one fact row per pair. There is no overall transaction: a partial failure
// leaves earlier pairs committed, and the next scheduled run starts fresh.
package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/capsulelab/tarkov-capsule/internal/core/storage"
	"github.com/capsulelab/tarkov-capsule/internal/feed"
	"github.com/google/uuid"
)

// FeedSource provides the current spawn-chance payload.
type FeedSource interface {
	Fetch(ctx context.Context) (*feed.Payload, error)
}

// Service ingests one feed snapshot per Run call.
type Service struct {
	source FeedSource
	store  storage.SnapshotStore
	nowFn  func() time.Time
}

// NewService creates a snapshot ingestion service.
func NewService(source FeedSource, store storage.SnapshotStore) *Service {
	if source == nil {
		panic("ingestion: feed source must not be nil")
	}
	if store == nil {
		panic("ingestion: store must not be nil")
	}
	return &Service{
		source: source,
		store:  store,
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Run executes one snapshot ingestion. Any failure is logged and swallowed:
// a failed run produces no retry and no rollback, the next scheduled run
// simply tries again from scratch.
func (s *Service) Run(ctx context.Context) {
	runID := uuid.NewString()
	started := s.nowFn()

	facts, err := s.ingest(ctx)
	if err != nil {
		ingestRuns.WithLabelValues("failure").Inc()
		slog.Error("[Ingestion] Snapshot run failed",
			"run_id", runID,
			"facts_written", facts,
			"error", err)
		return
	}

	ingestRuns.WithLabelValues("success").Inc()
	slog.Info("[Ingestion] Snapshot run complete",
		"run_id", runID,
		"facts_written", facts,
		"duration", s.nowFn().Sub(started))
}

// ingest fetches the feed and upserts one snapshot. Returns the number of
// fact rows written before any failure.
func (s *Service) ingest(ctx context.Context) (int, error) {
	payload, err := s.source.Fetch(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch feed: %w", err)
	}

	// One shared timestamp for the whole run. A second run landing in the
	// same epoch second reuses the existing row.
	now := s.nowFn().Unix()
	timestampID, err := s.store.ResolveTimestamp(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("resolve timestamp %d: %w", now, err)
	}

	facts := 0
	for _, m := range payload.Maps {
		mapID, err := s.store.ResolveMap(ctx, m.Name)
		if err != nil {
			return facts, fmt.Errorf("resolve map %q: %w", m.Name, err)
		}

		for _, b := range m.Bosses {
			bossID, err := s.store.ResolveBoss(ctx, b.Name)
			if err != nil {
				return facts, fmt.Errorf("resolve boss %q: %w", b.Name, err)
			}

			if err := s.store.InsertSpawnChance(ctx, bossID, mapID, b.SpawnChance, timestampID); err != nil {
				return facts, fmt.Errorf("insert fact for %q on %q: %w", b.Name, m.Name, err)
			}
			facts++
			factsWritten.Inc()
		}
	}

	return facts, nil
}
