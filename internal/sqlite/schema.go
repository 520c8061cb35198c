package sqlite

// Schema DDL. A snapshot row carries the head identity; its records hang
// off it and are replaced wholesale on every save.
const (
	createSnapshots = `CREATE TABLE IF NOT EXISTS snapshots (
    name TEXT PRIMARY KEY,
    head TEXT,
    saved_at TEXT NOT NULL
);`

	createRecords = `CREATE TABLE IF NOT EXISTS records (
    snapshot TEXT NOT NULL,
    record_id TEXT NOT NULL,
    prev_id TEXT,
    next_id TEXT,
    payload TEXT NOT NULL,
    PRIMARY KEY (snapshot, record_id),
    FOREIGN KEY (snapshot) REFERENCES snapshots(name) ON DELETE CASCADE
);`
)

// schemaStatements lists DDL in execution order.
var schemaStatements = []string{
	"PRAGMA foreign_keys = ON",
	createSnapshots,
	createRecords,
}
