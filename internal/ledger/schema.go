package ledger

const schema = `
CREATE TABLE IF NOT EXISTS connections (
    bssid TEXT PRIMARY KEY,
    ssid TEXT,
    password TEXT,
    last_connected INTEGER
);

CREATE INDEX IF NOT EXISTS idx_connections_last ON connections(last_connected);
`
