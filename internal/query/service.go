// Package query turns stored spawn-chance facts back into client-shaped
// views: filtered flat rows, grouped trees, and latest-per-key reductions.
package query

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/capsulelab/tarkov-capsule/internal/core/storage"
)

const (
	dateLayout    = "2006-01-02"
	defaultWindow = 7 * 24 * time.Hour
)

// Service implements the query/aggregation engine over a SnapshotStore.
type Service struct {
	store storage.SnapshotStore
	nowFn func() time.Time
}

// NewService creates a query service backed by the given store.
func NewService(store storage.SnapshotStore) *Service {
	if store == nil {
		panic("query: store must not be nil")
	}
	return &Service{
		store: store,
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// QuerySpawnChances returns flat rows matching the params. Dates default to
// one week ago / now; unparseable dates silently revert to those defaults.
// Unknown map or boss names yield an empty result, never an error.
func (s *Service) QuerySpawnChances(ctx context.Context, params Params) ([]SpawnChanceRow, error) {
	start, end := s.resolveWindow(params.StartDate, params.EndDate)

	facts, err := s.store.QueryFacts(ctx, storage.FactFilter{
		MapName:  params.MapName,
		BossName: params.BossName,
		Start:    start,
		End:      end,
	})
	if err != nil {
		return nil, fmt.Errorf("query facts: %w", err)
	}

	rows := make([]SpawnChanceRow, 0, len(facts))
	for _, f := range facts {
		rows = append(rows, SpawnChanceRow{
			MapName:   f.MapName,
			BossName:  f.BossName,
			Chance:    f.Chance,
			Timestamp: time.Unix(f.EpochSeconds, 0).UTC().Format(time.RFC3339),
		})
	}
	return rows, nil
}

// LatestSpawnChances returns only the most recent row per (boss, map) key
// within the query window.
func (s *Service) LatestSpawnChances(ctx context.Context, params Params) ([]SpawnChanceRow, error) {
	rows, err := s.QuerySpawnChances(ctx, params)
	if err != nil {
		return nil, err
	}
	return LatestPerKey(rows, BossMapKey), nil
}

// ListBosses returns the distinct boss names, rendered in Pascal case.
func (s *Service) ListBosses(ctx context.Context) ([]string, error) {
	names, err := s.store.ListBosses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bosses: %w", err)
	}

	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, toPascalCase(name))
	}
	return out, nil
}

// ListMaps returns the distinct map names.
func (s *Service) ListMaps(ctx context.Context) ([]string, error) {
	names, err := s.store.ListMaps(ctx)
	if err != nil {
		return nil, fmt.Errorf("list maps: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// resolveWindow converts YYYY-MM-DD bounds to an inclusive epoch-second
// range. Absent or unparseable values fall back to one week ago / now.
func (s *Service) resolveWindow(startDate, endDate string) (int64, int64) {
	now := s.nowFn()
	start := now.Add(-defaultWindow).Unix()
	end := now.Unix()

	if startDate != "" {
		if t, err := time.Parse(dateLayout, startDate); err == nil {
			start = t.Unix()
		}
	}
	if endDate != "" {
		if t, err := time.Parse(dateLayout, endDate); err == nil {
			end = t.Unix()
		}
	}

	return start, end
}

// toPascalCase capitalizes the first letter of each word and lowercases the
// rest, matching how boss names are shown to chat users.
func toPascalCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		// Boss names can carry non-ASCII letters, so split on the first
		// rune rather than the first byte.
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}
