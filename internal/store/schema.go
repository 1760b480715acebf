package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS lane_snapshots (
    lane                 TEXT PRIMARY KEY,
    payload              TEXT NOT NULL,
    item_count           INTEGER NOT NULL DEFAULT 0,
    fetched_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS fetch_log (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    lane                 TEXT NOT NULL,
    fetched_at           TEXT NOT NULL,
    duration_ms          INTEGER NOT NULL,
    ok                   INTEGER NOT NULL,
    error                TEXT
);

CREATE INDEX IF NOT EXISTS idx_fetch_log_time ON fetch_log(fetched_at);
`
