package query

// SpawnChanceRow is one flat query result. The field names are the JSON
// keys the chat bot and charting UI consume.
type SpawnChanceRow struct {
	MapName   string  `json:"MapName"`
	BossName  string  `json:"BossName"`
	Chance    float64 `json:"Chance"`
	Timestamp string  `json:"Timestamp"` // ISO-8601, whole-second precision
}

// Params are the caller-supplied filters for a spawn-chance query.
// StartDate and EndDate are raw YYYY-MM-DD strings; unparseable values
// silently fall back to the default one-week window.
type Params struct {
	MapName   string
	BossName  string
	StartDate string
	EndDate   string
}

// BossGroup holds every observation for one boss.
type BossGroup struct {
	BossName string           `json:"bossName"`
	Maps     []BossGroupEntry `json:"maps"`
}

type BossGroupEntry struct {
	MapName     string  `json:"mapName"`
	SpawnChance float64 `json:"spawnChance"`
	Timestamp   string  `json:"timestamp"`
}

// MapGroup holds every observation on one map.
type MapGroup struct {
	MapName string          `json:"mapName"`
	Bosses  []MapGroupEntry `json:"bosses"`
}

type MapGroupEntry struct {
	BossName    string  `json:"bossName"`
	SpawnChance float64 `json:"spawnChance"`
	Timestamp   string  `json:"timestamp"`
}

// TimestampGroup holds every observation taken at one instant.
type TimestampGroup struct {
	Timestamp string                `json:"timestamp"`
	Entries   []TimestampGroupEntry `json:"entries"`
}

type TimestampGroupEntry struct {
	BossName    string  `json:"bossName"`
	MapName     string  `json:"mapName"`
	SpawnChance float64 `json:"spawnChance"`
}
