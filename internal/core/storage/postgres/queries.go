package postgres

// SQL statements for the snapshot schema.
//
// Dimension resolution is a two-step conditional insert: the INSERT with
// ON CONFLICT DO NOTHING RETURNING returns no row when the natural key
// already exists, in which case the adapter falls back to the SELECT.
// Both statements together are race-free under concurrent ingestion runs:
// whichever run loses the insert race still resolves the winner's id.

const (
	queryInsertTimestamp = `
		INSERT INTO timestamps (epoch_seconds)
		VALUES ($1)
		ON CONFLICT (epoch_seconds) DO NOTHING
		RETURNING id
	`

	querySelectTimestamp = `SELECT id FROM timestamps WHERE epoch_seconds = $1`

	queryInsertMap = `
		INSERT INTO maps (name)
		VALUES ($1)
		ON CONFLICT (name) DO NOTHING
		RETURNING id
	`

	querySelectMap = `SELECT id FROM maps WHERE name = $1`

	queryInsertBoss = `
		INSERT INTO bosses (name)
		VALUES ($1)
		ON CONFLICT (name) DO NOTHING
		RETURNING id
	`

	querySelectBoss = `SELECT id FROM bosses WHERE name = $1`

	// queryInsertSpawnChance writes one fact row. The composite primary key
	// (boss_id, map_id, timestamp_id) makes a second write for the same pair
	// in the same epoch second a silent no-op: the first chance wins.
	queryInsertSpawnChance = `
		INSERT INTO spawn_chances (boss_id, map_id, chance, timestamp_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (boss_id, map_id, timestamp_id) DO NOTHING
	`

	// Fact queries join all three dimensions and filter on an inclusive
	// epoch-second range. One prepared variant per optional-filter
	// combination so every shape stays a prepared statement.
	queryFactsBase = `
		SELECT maps.name, bosses.name, spawn_chances.chance, timestamps.epoch_seconds
		FROM spawn_chances
		JOIN maps ON spawn_chances.map_id = maps.id
		JOIN bosses ON spawn_chances.boss_id = bosses.id
		JOIN timestamps ON spawn_chances.timestamp_id = timestamps.id
		WHERE timestamps.epoch_seconds BETWEEN $1 AND $2
	`

	queryFactsByMap = queryFactsBase + `
		  AND LOWER(maps.name) = LOWER($3)
	`

	queryFactsByBoss = queryFactsBase + `
		  AND LOWER(bosses.name) = LOWER($3)
	`

	queryFactsByMapAndBoss = queryFactsBase + `
		  AND LOWER(maps.name) = LOWER($3)
		  AND LOWER(bosses.name) = LOWER($4)
	`

	queryListBosses = `SELECT name FROM bosses`

	queryListMaps = `SELECT name FROM maps`
)
