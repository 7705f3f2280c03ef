package query

import "strings"

// GroupMode selects the dimension used to nest flat rows for display.
type GroupMode int

const (
	GroupNone GroupMode = iota
	GroupByBoss
	GroupByMap
	GroupByTimestamp
)

// ParseGroupMode maps a groupBy query parameter to a GroupMode.
// Unknown values fall back to no grouping.
func ParseGroupMode(s string) GroupMode {
	switch strings.ToLower(s) {
	case "boss":
		return GroupByBoss
	case "map":
		return GroupByMap
	case "timestamp":
		return GroupByTimestamp
	default:
		return GroupNone
	}
}

// groupBucket is one group key with its rows in received order.
type groupBucket struct {
	key  string
	rows []SpawnChanceRow
}

// Group nests flat rows by the given mode. Group keys use exact string
// equality on the already-formatted fields, and groups appear in insertion
// order of each key's first appearance. GroupNone returns the rows unchanged.
func Group(rows []SpawnChanceRow, mode GroupMode) interface{} {
	if mode == GroupNone {
		return rows
	}

	var keyFn func(SpawnChanceRow) string
	switch mode {
	case GroupByBoss:
		keyFn = func(r SpawnChanceRow) string { return r.BossName }
	case GroupByMap:
		keyFn = func(r SpawnChanceRow) string { return r.MapName }
	case GroupByTimestamp:
		keyFn = func(r SpawnChanceRow) string { return r.Timestamp }
	}

	buckets := reduceByKey(rows, keyFn)

	switch mode {
	case GroupByBoss:
		groups := make([]BossGroup, 0, len(buckets))
		for _, b := range buckets {
			entries := make([]BossGroupEntry, 0, len(b.rows))
			for _, r := range b.rows {
				entries = append(entries, BossGroupEntry{
					MapName:     r.MapName,
					SpawnChance: r.Chance,
					Timestamp:   r.Timestamp,
				})
			}
			groups = append(groups, BossGroup{BossName: b.key, Maps: entries})
		}
		return groups

	case GroupByMap:
		groups := make([]MapGroup, 0, len(buckets))
		for _, b := range buckets {
			entries := make([]MapGroupEntry, 0, len(b.rows))
			for _, r := range b.rows {
				entries = append(entries, MapGroupEntry{
					BossName:    r.BossName,
					SpawnChance: r.Chance,
					Timestamp:   r.Timestamp,
				})
			}
			groups = append(groups, MapGroup{MapName: b.key, Bosses: entries})
		}
		return groups

	default: // GroupByTimestamp
		groups := make([]TimestampGroup, 0, len(buckets))
		for _, b := range buckets {
			entries := make([]TimestampGroupEntry, 0, len(b.rows))
			for _, r := range b.rows {
				entries = append(entries, TimestampGroupEntry{
					BossName:    r.BossName,
					MapName:     r.MapName,
					SpawnChance: r.Chance,
				})
			}
			groups = append(groups, TimestampGroup{Timestamp: b.key, Entries: entries})
		}
		return groups
	}
}

// reduceByKey is the single reduction behind every grouping mode: rows are
// bucketed by the extracted key, buckets ordered by first appearance.
func reduceByKey(rows []SpawnChanceRow, keyFn func(SpawnChanceRow) string) []groupBucket {
	index := make(map[string]int, len(rows))
	buckets := make([]groupBucket, 0)

	for _, row := range rows {
		key := keyFn(row)
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, groupBucket{key: key})
		}
		buckets[i].rows = append(buckets[i].rows, row)
	}

	return buckets
}
