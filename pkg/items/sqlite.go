package items

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"simpleapp/itemsvc/pkg/apperr"
	"simpleapp/itemsvc/pkg/config"
	"simpleapp/itemsvc/pkg/telemetry/logging"
)

// MemoryPath keeps the database in memory.
const MemoryPath = ":memory:"

// Repository error codes, logged with every classified failure.
const (
	CodeDuplicateEntity = "DUPLICATE_ENTITY"
	CodeIntegrityError  = "INTEGRITY_ERROR"
	CodeDatabaseError   = "DATABASE_ERROR"
	CodeUnexpectedError = "UNEXPECTED_ERROR"
	CodeItemNotFound    = "ITEM_NOT_FOUND"
	CodeInvalidID       = "INVALID_ID"
)

// SQLiteStore implements Store on SQLite.
//
// The database runs in WAL mode with a busy timeout. Failures are
// classified into application errors and logged with an error_code.
type SQLiteStore struct {
	db     *sql.DB
	logger *logging.Logger
	now    func() time.Time
}

// OpenSQLite opens (creating if needed) the item database described by cfg.
func OpenSQLite(ctx context.Context, cfg config.DatabaseConfig, logger *logging.Logger) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}

	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = config.DefaultDatabaseBusyTimeout
	}

	memory := cfg.Path == MemoryPath
	if !memory {
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)",
		cfg.Path, busy.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to ":memory:" is a separate database.
	if memory {
		db.SetMaxOpenConns(1)
	} else if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{db: db, logger: logger, now: time.Now}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS item (
		item_id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL CHECK (length(name) BETWEEN 1 AND 50),
		description TEXT NOT NULL CHECK (length(description) BETWEEN 1 AND 500),
		price REAL NOT NULL CHECK (price > 0),
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

const itemColumns = `item_id, name, description, price, created_at, updated_at`

// Create inserts a new item.
func (s *SQLiteStore) Create(ctx context.Context, in Input) (*Item, error) {
	now := s.now().UTC().UnixNano()
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO item (name, description, price, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING `+itemColumns,
		in.Name, in.Description, in.Price, now, now)

	item, err := scanItem(row)
	if err != nil {
		return nil, s.classify(ctx, "create", err)
	}
	return item, nil
}

// Get returns the item with the given ID.
func (s *SQLiteStore) Get(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM item WHERE item_id = ?`, id)

	item, err := scanItem(row)
	if err != nil {
		return nil, s.classify(ctx, "get", err)
	}
	return item, nil
}

// Update replaces the writable fields of an item.
func (s *SQLiteStore) Update(ctx context.Context, id int64, in Input) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE item SET name = ?, description = ?, price = ?, updated_at = ?
		WHERE item_id = ?
		RETURNING `+itemColumns,
		in.Name, in.Description, in.Price, s.now().UTC().UnixNano(), id)

	item, err := scanItem(row)
	if err != nil {
		return nil, s.classify(ctx, "update", err)
	}
	return item, nil
}

// Delete removes an item.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM item WHERE item_id = ?`, id)
	if err != nil {
		return s.classify(ctx, "delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return s.classify(ctx, "delete", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping checks that the database answers a trivial query.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	var one int
	return s.db.QueryRowContext(ctx, `SELECT 1`).Scan(&one)
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (*Item, error) {
	var (
		item             Item
		created, updated int64
	)
	if err := row.Scan(&item.ID, &item.Name, &item.Description, &item.Price, &created, &updated); err != nil {
		return nil, err
	}
	item.CreatedAt = time.Unix(0, created).UTC()
	item.UpdatedAt = time.Unix(0, updated).UTC()
	return &item, nil
}

// classify turns a driver error into an application error and logs it.
// A missing row becomes ErrNotFound and is not logged.
func (s *SQLiteStore) classify(ctx context.Context, op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}

	kind, code, message := classifyError(err)
	s.logger.Error(ctx, message, map[string]any{
		"error_code": code,
		"details":    err.Error(),
		"operation":  op,
	})
	return apperr.Wrap(kind, err, message)
}

func classifyError(err error) (apperr.Kind, string, string) {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		if code&0xff == sqlite3.SQLITE_CONSTRAINT {
			if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY {
				return apperr.KindDatabaseIntegrity, CodeDuplicateEntity, "Duplicate entity"
			}
			return apperr.KindDatabaseIntegrity, CodeIntegrityError, "Integrity error occurred"
		}
		return apperr.KindDatabase, CodeDatabaseError, "Database error occurred"
	}

	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, sql.ErrTxDone) {
		return apperr.KindDatabase, CodeDatabaseError, "Database error occurred"
	}

	return apperr.KindUnexpected, CodeUnexpectedError, "Unexpected error occurred"
}
