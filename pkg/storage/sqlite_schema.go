package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema creates the tables of the hello database.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    username      TEXT    NOT NULL UNIQUE,
    password_hash TEXT    NOT NULL,
    role          TEXT    NOT NULL CHECK (role IN ('ADMIN', 'USER')),
    created_at    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS greeting_history (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    name       TEXT    NOT NULL,
    message    TEXT    NOT NULL,
    created_at INTEGER NOT NULL,
    user_id    INTEGER REFERENCES users(id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS idx_greeting_history_user ON greeting_history(user_id);
CREATE INDEX IF NOT EXISTS idx_greeting_history_created ON greeting_history(created_at);

CREATE TABLE IF NOT EXISTS schema_version (
    version    INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
);
`

const (
	insertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version, applied_at) VALUES (?, ?)`
	getSchemaVersion    = `SELECT MAX(version) FROM schema_version`
)

// Prepared statement names.
const (
	stmtCreateUser     = "create_user"
	stmtGetUser        = "get_user"
	stmtListUsers      = "list_users"
	stmtDeleteUser     = "delete_user"
	stmtCountUsers     = "count_users"
	stmtInsertGreeting = "insert_greeting"
	stmtListGreetings  = "list_greetings"
	stmtListByUser     = "list_greetings_by_user"
	stmtCountGreetings = "count_greetings"
	stmtTopGreeted     = "top_greeted"
	stmtDeleteBefore   = "delete_greetings_before"
)

const greetingColumns = `g.id, g.name, g.message, g.created_at, g.user_id, COALESCE(u.username, '')`

var statements = map[string]string{
	stmtCreateUser: `INSERT INTO users (username, password_hash, role, created_at)
		VALUES (?, ?, ?, ?) ON CONFLICT(username) DO NOTHING`,
	stmtGetUser:    `SELECT id, username, password_hash, role, created_at FROM users WHERE username = ?`,
	stmtListUsers:  `SELECT id, username, password_hash, role, created_at FROM users ORDER BY id`,
	stmtDeleteUser: `DELETE FROM users WHERE username = ?`,
	stmtCountUsers: `SELECT COUNT(*) FROM users`,

	stmtInsertGreeting: `INSERT INTO greeting_history (name, message, created_at, user_id) VALUES (?, ?, ?, ?)`,
	stmtListGreetings: `SELECT ` + greetingColumns + `
		FROM greeting_history g LEFT JOIN users u ON u.id = g.user_id
		ORDER BY g.id`,
	stmtListByUser: `SELECT ` + greetingColumns + `
		FROM greeting_history g LEFT JOIN users u ON u.id = g.user_id
		WHERE g.user_id = ? ORDER BY g.id`,
	stmtCountGreetings: `SELECT COUNT(*) FROM greeting_history`,
	stmtTopGreeted: `SELECT u.username, COUNT(*) AS n
		FROM greeting_history g JOIN users u ON u.id = g.user_id
		GROUP BY u.id, u.username
		ORDER BY n DESC, u.username ASC
		LIMIT ?`,
	stmtDeleteBefore: `DELETE FROM greeting_history WHERE created_at < ?`,
}
