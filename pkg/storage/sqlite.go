package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"webeng-hq/hello/pkg/config"

	_ "github.com/mattn/go-sqlite3" // driver "sqlite3", requires cgo
	_ "modernc.org/sqlite"          // driver "sqlite", pure Go
)

const sqliteBackend = "sqlite"

// SQLiteStore implements Store on SQLite.
type SQLiteStore struct {
	db        *sql.DB
	config    config.SQLiteConfig
	stmts     map[string]*sql.Stmt
	logger    *slog.Logger
	closeOnce sync.Once
}

// NewSQLiteStore opens the database at cfg.Path with cfg.Driver, creates
// the schema and prepares all statements. The parent directory of the
// database file is created if needed.
func NewSQLiteStore(ctx context.Context, cfg config.SQLiteConfig, logger *slog.Logger) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, newError(sqliteBackend, "open", errors.New("db path cannot be empty"))
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "storage.sqlite", "driver", cfg.Driver)

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, newError(sqliteBackend, "mkdir", err)
		}
	}

	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, newError(sqliteBackend, "open", err)
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, newError(sqliteBackend, "open", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	s := &SQLiteStore{
		db:     db,
		config: cfg,
		stmts:  make(map[string]*sql.Stmt, len(statements)),
		logger: logger,
	}

	if err := s.initialize(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	logger.Info("SQLite storage initialized",
		"path", cfg.Path,
		"journal_mode", cfg.JournalMode,
		"max_open_conns", cfg.MaxOpenConns,
	)
	return s, nil
}

// buildDSN encodes the journal mode, busy timeout and foreign key
// enforcement in the connection string so every pooled connection gets
// them. The two drivers spell the parameters differently.
func buildDSN(cfg config.SQLiteConfig) (string, error) {
	journal := strings.ToUpper(cfg.JournalMode)
	if journal == "" {
		journal = "WAL"
	}
	busy := cfg.BusyTimeout.Milliseconds()

	q := url.Values{}
	switch cfg.Driver {
	case "sqlite":
		q.Add("_pragma", fmt.Sprintf("journal_mode(%s)", journal))
		q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busy))
		q.Add("_pragma", "foreign_keys(1)")
	case "sqlite3":
		q.Set("_journal_mode", journal)
		q.Set("_busy_timeout", fmt.Sprintf("%d", busy))
		q.Set("_foreign_keys", "1")
	default:
		return "", fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
	return "file:" + cfg.Path + "?" + q.Encode(), nil
}

func (s *SQLiteStore) initialize(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return newError(sqliteBackend, "ping", err)
	}

	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return newError(sqliteBackend, "create_schema", err)
	}
	if _, err := s.db.ExecContext(ctx, insertSchemaVersion, SchemaVersion, time.Now().UnixNano()); err != nil {
		return newError(sqliteBackend, "insert_schema_version", err)
	}

	var version sql.NullInt64
	if err := s.db.QueryRowContext(ctx, getSchemaVersion).Scan(&version); err != nil {
		return newError(sqliteBackend, "get_schema_version", err)
	}
	if version.Int64 != SchemaVersion {
		return newError(sqliteBackend, "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version.Int64))
	}

	for name, query := range statements {
		stmt, err := s.db.PrepareContext(ctx, query)
		if err != nil {
			return newError(sqliteBackend, "prepare_"+name, err)
		}
		s.stmts[name] = stmt
	}

	s.logger.Debug("schema ready", "version", version.Int64)
	return nil
}

func (s *SQLiteStore) CreateUser(ctx context.Context, u *User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	res, err := s.stmts[stmtCreateUser].ExecContext(ctx, u.Username, u.PasswordHash, u.Role, u.CreatedAt.UnixNano())
	if err != nil {
		return newError(sqliteBackend, stmtCreateUser, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return newError(sqliteBackend, stmtCreateUser, err)
	}
	if n == 0 {
		return newError(sqliteBackend, stmtCreateUser, ErrDuplicate)
	}
	if u.ID, err = res.LastInsertId(); err != nil {
		return newError(sqliteBackend, stmtCreateUser, err)
	}
	return nil
}

func (s *SQLiteStore) GetUser(ctx context.Context, username string) (*User, error) {
	u, err := scanUser(s.stmts[stmtGetUser].QueryRowContext(ctx, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, newError(sqliteBackend, stmtGetUser, ErrNotFound)
	}
	if err != nil {
		return nil, newError(sqliteBackend, stmtGetUser, err)
	}
	return u, nil
}

func (s *SQLiteStore) ListUsers(ctx context.Context) ([]*User, error) {
	rows, err := s.stmts[stmtListUsers].QueryContext(ctx)
	if err != nil {
		return nil, newError(sqliteBackend, stmtListUsers, err)
	}
	defer rows.Close()

	users := []*User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, newError(sqliteBackend, stmtListUsers, err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, newError(sqliteBackend, stmtListUsers, err)
	}
	return users, nil
}

// DeleteUser removes the user. Its greetings stay in the history without
// a user link.
func (s *SQLiteStore) DeleteUser(ctx context.Context, username string) error {
	res, err := s.stmts[stmtDeleteUser].ExecContext(ctx, username)
	if err != nil {
		return newError(sqliteBackend, stmtDeleteUser, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return newError(sqliteBackend, stmtDeleteUser, err)
	}
	if n == 0 {
		return newError(sqliteBackend, stmtDeleteUser, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) CountUsers(ctx context.Context) (int64, error) {
	return s.count(ctx, stmtCountUsers)
}

func (s *SQLiteStore) InsertGreeting(ctx context.Context, g *Greeting) error {
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}
	var userID sql.NullInt64
	if g.UserID != nil {
		userID = sql.NullInt64{Int64: *g.UserID, Valid: true}
	}
	res, err := s.stmts[stmtInsertGreeting].ExecContext(ctx, g.Name, g.Message, g.CreatedAt.UnixNano(), userID)
	if err != nil {
		return newError(sqliteBackend, stmtInsertGreeting, err)
	}
	if g.ID, err = res.LastInsertId(); err != nil {
		return newError(sqliteBackend, stmtInsertGreeting, err)
	}
	return nil
}

func (s *SQLiteStore) ListGreetings(ctx context.Context) ([]*Greeting, error) {
	return s.queryGreetings(ctx, stmtListGreetings)
}

func (s *SQLiteStore) ListGreetingsByUser(ctx context.Context, userID int64) ([]*Greeting, error) {
	return s.queryGreetings(ctx, stmtListByUser, userID)
}

func (s *SQLiteStore) CountGreetings(ctx context.Context) (int64, error) {
	return s.count(ctx, stmtCountGreetings)
}

func (s *SQLiteStore) TopGreeted(ctx context.Context, limit int) ([]UserCount, error) {
	rows, err := s.stmts[stmtTopGreeted].QueryContext(ctx, limit)
	if err != nil {
		return nil, newError(sqliteBackend, stmtTopGreeted, err)
	}
	defer rows.Close()

	top := []UserCount{}
	for rows.Next() {
		var uc UserCount
		if err := rows.Scan(&uc.Username, &uc.Count); err != nil {
			return nil, newError(sqliteBackend, stmtTopGreeted, err)
		}
		top = append(top, uc)
	}
	if err := rows.Err(); err != nil {
		return nil, newError(sqliteBackend, stmtTopGreeted, err)
	}
	return top, nil
}

func (s *SQLiteStore) DeleteGreetingsBefore(ctx context.Context, t time.Time) (int64, error) {
	res, err := s.stmts[stmtDeleteBefore].ExecContext(ctx, t.UnixNano())
	if err != nil {
		return 0, newError(sqliteBackend, stmtDeleteBefore, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, newError(sqliteBackend, stmtDeleteBefore, err)
	}
	return n, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return newError(sqliteBackend, "ping", err)
	}
	return nil
}

// Close closes the prepared statements and the database. It is safe to
// call more than once.
func (s *SQLiteStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		for _, stmt := range s.stmts {
			_ = stmt.Close()
		}
		if cerr := s.db.Close(); cerr != nil {
			err = newError(sqliteBackend, "close", cerr)
		}
	})
	return err
}

func (s *SQLiteStore) count(ctx context.Context, name string) (int64, error) {
	var n int64
	if err := s.stmts[name].QueryRowContext(ctx).Scan(&n); err != nil {
		return 0, newError(sqliteBackend, name, err)
	}
	return n, nil
}

func (s *SQLiteStore) queryGreetings(ctx context.Context, name string, args ...any) ([]*Greeting, error) {
	rows, err := s.stmts[name].QueryContext(ctx, args...)
	if err != nil {
		return nil, newError(sqliteBackend, name, err)
	}
	defer rows.Close()

	greetings := []*Greeting{}
	for rows.Next() {
		var (
			g       Greeting
			created int64
			userID  sql.NullInt64
		)
		if err := rows.Scan(&g.ID, &g.Name, &g.Message, &created, &userID, &g.Username); err != nil {
			return nil, newError(sqliteBackend, name, err)
		}
		g.CreatedAt = time.Unix(0, created)
		if userID.Valid {
			id := userID.Int64
			g.UserID = &id
		}
		greetings = append(greetings, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, newError(sqliteBackend, name, err)
	}
	return greetings, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var (
		u       User
		created int64
	)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &created); err != nil {
		return nil, err
	}
	u.CreatedAt = time.Unix(0, created)
	return &u, nil
}
