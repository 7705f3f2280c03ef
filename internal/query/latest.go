package query

import "time"

// BossMapKey keys a row by its (boss, map) pair, the usual identity for
// "current state" reductions.
func BossMapKey(r SpawnChanceRow) string {
	return r.BossName + "\x00" + r.MapName
}

// LatestPerKey collapses historical rows down to the single most recent
// observation per key. Timestamps are compared as parsed date-times, not
// lexically; rows whose timestamp fails to parse are skipped. Ties resolve
// to the last row encountered. Output holds one row per key, in first-seen
// key order.
func LatestPerKey(rows []SpawnChanceRow, keyFn func(SpawnChanceRow) string) []SpawnChanceRow {
	type latest struct {
		row SpawnChanceRow
		at  time.Time
	}

	index := make(map[string]int, len(rows))
	kept := make([]latest, 0)

	for _, row := range rows {
		at, err := time.Parse(time.RFC3339, row.Timestamp)
		if err != nil {
			continue
		}

		key := keyFn(row)
		i, ok := index[key]
		if !ok {
			index[key] = len(kept)
			kept = append(kept, latest{row: row, at: at})
			continue
		}
		if !at.Before(kept[i].at) {
			kept[i] = latest{row: row, at: at}
		}
	}

	out := make([]SpawnChanceRow, 0, len(kept))
	for _, l := range kept {
		out = append(out, l.row)
	}
	return out
}
