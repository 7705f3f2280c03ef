package ingestion

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/capsulelab/tarkov-capsule/internal/core/storage"
	"github.com/capsulelab/tarkov-capsule/internal/feed"
	"github.com/stretchr/testify/require"
)

type stubFeed struct {
	payload *feed.Payload
	err     error
}

func (s *stubFeed) Fetch(ctx context.Context) (*feed.Payload, error) {
	return s.payload, s.err
}

// memStore is an in-memory SnapshotStore with the same semantics as the
// postgres adapter: append-only dimensions keyed by natural name and
// first-write-wins facts keyed on (boss, map, timestamp).
type memStore struct {
	timestamps map[int64]int64
	maps       map[string]int64
	bosses     map[string]int64
	facts      map[string]storage.FactRow
	nextID     int64

	failInsertAfter int // fail the Nth fact insert when > 0
	inserts         int
}

func newMemStore() *memStore {
	return &memStore{
		timestamps: make(map[int64]int64),
		maps:       make(map[string]int64),
		bosses:     make(map[string]int64),
		facts:      make(map[string]storage.FactRow),
	}
}

func (m *memStore) ResolveTimestamp(_ context.Context, epochSeconds int64) (int64, error) {
	if id, ok := m.timestamps[epochSeconds]; ok {
		return id, nil
	}
	m.nextID++
	m.timestamps[epochSeconds] = m.nextID
	return m.nextID, nil
}

func (m *memStore) ResolveMap(_ context.Context, name string) (int64, error) {
	if id, ok := m.maps[name]; ok {
		return id, nil
	}
	m.nextID++
	m.maps[name] = m.nextID
	return m.nextID, nil
}

func (m *memStore) ResolveBoss(_ context.Context, name string) (int64, error) {
	if id, ok := m.bosses[name]; ok {
		return id, nil
	}
	m.nextID++
	m.bosses[name] = m.nextID
	return m.nextID, nil
}

func (m *memStore) InsertSpawnChance(_ context.Context, bossID, mapID int64, chance float64, timestampID int64) error {
	m.inserts++
	if m.failInsertAfter > 0 && m.inserts >= m.failInsertAfter {
		return errors.New("statement failed")
	}
	key := fmt.Sprintf("%d/%d/%d", bossID, mapID, timestampID)
	if _, ok := m.facts[key]; ok {
		return nil // first write wins
	}
	var mapName, bossName string
	for name, id := range m.maps {
		if id == mapID {
			mapName = name
		}
	}
	for name, id := range m.bosses {
		if id == bossID {
			bossName = name
		}
	}
	var epoch int64
	for e, id := range m.timestamps {
		if id == timestampID {
			epoch = e
		}
	}
	m.facts[key] = storage.FactRow{MapName: mapName, BossName: bossName, Chance: chance, EpochSeconds: epoch}
	return nil
}

func (m *memStore) QueryFacts(_ context.Context, filter storage.FactFilter) ([]storage.FactRow, error) {
	var rows []storage.FactRow
	for _, row := range m.facts {
		if row.EpochSeconds >= filter.Start && row.EpochSeconds <= filter.End {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (m *memStore) ListBosses(_ context.Context) ([]string, error) {
	names := make([]string, 0, len(m.bosses))
	for name := range m.bosses {
		names = append(names, name)
	}
	return names, nil
}

func (m *memStore) ListMaps(_ context.Context) ([]string, error) {
	names := make([]string, 0, len(m.maps))
	for name := range m.maps {
		names = append(names, name)
	}
	return names, nil
}

func fixedClock(epoch int64) func() time.Time {
	return func() time.Time {
		return time.Unix(epoch, 0).UTC()
	}
}

func TestService_Ingest_OneFactPerPairWithSharedTimestamp(t *testing.T) {
	store := newMemStore()
	svc := NewService(&stubFeed{payload: &feed.Payload{Maps: []feed.Map{
		{Name: "Customs", Bosses: []feed.Boss{{Name: "Reshala", SpawnChance: 0.32}}},
		{Name: "Woods", Bosses: []feed.Boss{
			{Name: "Shturman", SpawnChance: 0.25},
			{Name: "Reshala", SpawnChance: 0.1},
		}},
	}}}, store)
	svc.nowFn = fixedClock(1000)

	facts, err := svc.ingest(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, facts)
	require.Len(t, store.facts, 3)
	require.Len(t, store.timestamps, 1)

	rows, err := store.QueryFacts(context.Background(), storage.FactFilter{Start: 999, End: 1001})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, row := range rows {
		require.Equal(t, int64(1000), row.EpochSeconds)
	}
}

func TestService_Ingest_SamePairSameSecondFirstWriteWins(t *testing.T) {
	store := newMemStore()
	payload := &feed.Payload{Maps: []feed.Map{
		{Name: "Customs", Bosses: []feed.Boss{{Name: "Reshala", SpawnChance: 0.32}}},
	}}
	svc := NewService(&stubFeed{payload: payload}, store)
	svc.nowFn = fixedClock(1000)

	_, err := svc.ingest(context.Background())
	require.NoError(t, err)

	// Same pair again in the same epoch second with a different chance.
	payload.Maps[0].Bosses[0].SpawnChance = 0.40
	_, err = svc.ingest(context.Background())
	require.NoError(t, err)

	rows, err := store.QueryFacts(context.Background(), storage.FactFilter{Start: 0, End: 2000})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 0.32, rows[0].Chance)
}

func TestService_Ingest_ReusesDimensionIDs(t *testing.T) {
	store := newMemStore()
	svc := NewService(&stubFeed{payload: &feed.Payload{Maps: []feed.Map{
		{Name: "Customs", Bosses: []feed.Boss{{Name: "Reshala", SpawnChance: 0.32}}},
	}}}, store)

	svc.nowFn = fixedClock(1000)
	_, err := svc.ingest(context.Background())
	require.NoError(t, err)

	svc.nowFn = fixedClock(2000)
	_, err = svc.ingest(context.Background())
	require.NoError(t, err)

	require.Len(t, store.maps, 1)
	require.Len(t, store.bosses, 1)
	require.Len(t, store.timestamps, 2)
	require.Len(t, store.facts, 2)
}

func TestService_Ingest_PartialFailureLeavesEarlierFacts(t *testing.T) {
	store := newMemStore()
	store.failInsertAfter = 2
	svc := NewService(&stubFeed{payload: &feed.Payload{Maps: []feed.Map{
		{Name: "Customs", Bosses: []feed.Boss{{Name: "Reshala", SpawnChance: 0.32}}},
		{Name: "Woods", Bosses: []feed.Boss{{Name: "Shturman", SpawnChance: 0.25}}},
	}}}, store)
	svc.nowFn = fixedClock(1000)

	facts, err := svc.ingest(context.Background())
	require.Error(t, err)
	require.Equal(t, 1, facts)
	require.Len(t, store.facts, 1)
}

func TestService_Run_SwallowsFeedFailure(t *testing.T) {
	store := newMemStore()
	svc := NewService(&stubFeed{err: errors.New("upstream down")}, store)
	svc.nowFn = fixedClock(1000)

	// Must not panic and must not write anything.
	svc.Run(context.Background())
	require.Empty(t, store.facts)
}
