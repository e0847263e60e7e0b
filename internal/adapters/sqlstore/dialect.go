package sqlstore

import (
	"fmt"
	"strconv"
	"strings"
)

// dialect captures what differs between the supported SQL engines.
type dialect struct {
	name       string
	driverName string
	idColumn   string
	realType   string
	// orderText forces byte-wise ordering of text so category order matches
	// the in-memory store.
	orderText string
	numbered  bool
}

var (
	sqliteDialect = dialect{
		name:       "sqlite",
		driverName: "sqlite",
		idColumn:   "INTEGER PRIMARY KEY AUTOINCREMENT",
		realType:   "REAL",
	}
	postgresDialect = dialect{
		name:       "postgres",
		driverName: "pgx",
		idColumn:   "BIGSERIAL PRIMARY KEY",
		realType:   "DOUBLE PRECISION",
		orderText:  ` COLLATE "C"`,
		numbered:   true,
	}
)

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case "sqlite":
		return sqliteDialect, nil
	case "postgres":
		return postgresDialect, nil
	}
	return dialect{}, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
}

// rebind rewrites '?' placeholders into $n for engines that number them.
func (d dialect) rebind(q string) string {
	if !d.numbered {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d dialect) schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS races (
			id ` + d.idColumn + `,
			name TEXT NOT NULL,
			name_key TEXT NOT NULL UNIQUE,
			race_date TEXT NOT NULL DEFAULT '',
			distance_km ` + d.realType + ` NOT NULL DEFAULT 0,
			ascent_m ` + d.realType + ` NOT NULL DEFAULT 0,
			created_at BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			id ` + d.idColumn + `,
			race_id BIGINT NOT NULL REFERENCES races(id),
			seq INTEGER NOT NULL,
			bib TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL DEFAULT '',
			gender TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			chip_time TEXT NOT NULL DEFAULT '',
			chip_seconds INTEGER NOT NULL DEFAULT 0,
			pace TEXT NOT NULL DEFAULT '',
			pace_seconds INTEGER NOT NULL DEFAULT 0,
			distance_km ` + d.realType + ` NOT NULL DEFAULT 0,
			ascent_m ` + d.realType + ` NOT NULL DEFAULT 0,
			checkpoints TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS results_race_chip ON results (race_id, gender, chip_seconds, id)`,
		`CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at BIGINT NOT NULL,
			metadata TEXT,
			analysis TEXT NOT NULL
		)`,
	}
}
