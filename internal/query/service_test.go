package query

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/capsulelab/tarkov-capsule/internal/core/storage"
	"github.com/stretchr/testify/require"
)

// fakeStore serves canned facts, applying the same filter semantics as the
// postgres adapter: inclusive epoch range, case-insensitive exact names.
type fakeStore struct {
	facts      []storage.FactRow
	bosses     []string
	maps       []string
	err        error
	lastFilter storage.FactFilter
}

func (f *fakeStore) ResolveTimestamp(context.Context, int64) (int64, error) { return 0, nil }
func (f *fakeStore) ResolveMap(context.Context, string) (int64, error)      { return 0, nil }
func (f *fakeStore) ResolveBoss(context.Context, string) (int64, error)     { return 0, nil }
func (f *fakeStore) InsertSpawnChance(context.Context, int64, int64, float64, int64) error {
	return nil
}

func (f *fakeStore) QueryFacts(_ context.Context, filter storage.FactFilter) ([]storage.FactRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastFilter = filter

	var rows []storage.FactRow
	for _, row := range f.facts {
		if row.EpochSeconds < filter.Start || row.EpochSeconds > filter.End {
			continue
		}
		if filter.MapName != "" && !strings.EqualFold(filter.MapName, row.MapName) {
			continue
		}
		if filter.BossName != "" && !strings.EqualFold(filter.BossName, row.BossName) {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (f *fakeStore) ListBosses(context.Context) ([]string, error) { return f.bosses, f.err }
func (f *fakeStore) ListMaps(context.Context) ([]string, error)   { return f.maps, f.err }

func newTestService(store *fakeStore, nowEpoch int64) *Service {
	svc := NewService(store)
	svc.nowFn = func() time.Time {
		return time.Unix(nowEpoch, 0).UTC()
	}
	return svc
}

func TestQuerySpawnChances_SingleIngestedRow(t *testing.T) {
	store := &fakeStore{facts: []storage.FactRow{
		{MapName: "Customs", BossName: "Reshala", Chance: 0.32, EpochSeconds: 1000},
	}}
	svc := newTestService(store, 2000)

	rows, err := svc.QuerySpawnChances(context.Background(), Params{
		StartDate: "1970-01-01",
		EndDate:   "1970-01-02",
	})
	require.NoError(t, err)
	require.Equal(t, []SpawnChanceRow{{
		MapName:   "Customs",
		BossName:  "Reshala",
		Chance:    0.32,
		Timestamp: time.Unix(1000, 0).UTC().Format(time.RFC3339),
	}}, rows)
}

func TestQuerySpawnChances_DefaultWindowIsOneWeek(t *testing.T) {
	now := int64(10_000_000)
	store := &fakeStore{}
	svc := newTestService(store, now)

	_, err := svc.QuerySpawnChances(context.Background(), Params{})
	require.NoError(t, err)
	require.Equal(t, now, store.lastFilter.End)
	require.Equal(t, now-7*24*60*60, store.lastFilter.Start)
}

func TestQuerySpawnChances_UnparseableDatesFallBackToDefaults(t *testing.T) {
	now := int64(10_000_000)
	store := &fakeStore{}
	svc := newTestService(store, now)

	_, err := svc.QuerySpawnChances(context.Background(), Params{
		StartDate: "next tuesday",
		EndDate:   "10/02/2024",
	})
	require.NoError(t, err)
	require.Equal(t, now, store.lastFilter.End)
	require.Equal(t, now-7*24*60*60, store.lastFilter.Start)
}

func TestQuerySpawnChances_UnknownBossReturnsEmptyNotError(t *testing.T) {
	store := &fakeStore{facts: []storage.FactRow{
		{MapName: "Customs", BossName: "Reshala", Chance: 0.32, EpochSeconds: 1000},
	}}
	svc := newTestService(store, 2000)

	rows, err := svc.QuerySpawnChances(context.Background(), Params{
		BossName:  "NoSuchBoss",
		StartDate: "1970-01-01",
		EndDate:   "1970-01-02",
	})
	require.NoError(t, err)
	require.NotNil(t, rows)
	require.Empty(t, rows)
}

func TestQuerySpawnChances_StoreErrorPropagates(t *testing.T) {
	store := &fakeStore{err: errors.New("db down")}
	svc := newTestService(store, 2000)

	_, err := svc.QuerySpawnChances(context.Background(), Params{})
	require.ErrorContains(t, err, "query facts")
}

func TestLatestSpawnChances_ReducesToMostRecentPerPair(t *testing.T) {
	store := &fakeStore{facts: []storage.FactRow{
		{MapName: "Customs", BossName: "Reshala", Chance: 0.20, EpochSeconds: 1000},
		{MapName: "Customs", BossName: "Reshala", Chance: 0.50, EpochSeconds: 2000},
	}}
	svc := newTestService(store, 3000)

	rows, err := svc.LatestSpawnChances(context.Background(), Params{
		StartDate: "1970-01-01",
		EndDate:   "1970-01-02",
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 0.50, rows[0].Chance)
}

func TestListBosses_PascalCasesNames(t *testing.T) {
	store := &fakeStore{bosses: []string{"reshala", "big pipe", "KILLA"}}
	svc := newTestService(store, 1000)

	bosses, err := svc.ListBosses(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"Reshala", "Big Pipe", "Killa"}, bosses)
}

func TestListBosses_HandlesMultiByteRunes(t *testing.T) {
	store := &fakeStore{bosses: []string{"кабан", "übermensch"}}
	svc := newTestService(store, 1000)

	bosses, err := svc.ListBosses(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"Кабан", "Übermensch"}, bosses)
}

func TestListMaps_EmptyStoreYieldsEmptySlice(t *testing.T) {
	svc := newTestService(&fakeStore{}, 1000)

	maps, err := svc.ListMaps(context.Background())
	require.NoError(t, err)
	require.NotNil(t, maps)
	require.Empty(t, maps)
}
