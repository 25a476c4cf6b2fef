package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"spendtrack/internal/core"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteRepository is the single persistent store: users, the transaction
// ledger and server-side sessions all live in one SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateUser inserts a user row. The password column holds either a bcrypt
// hash or the OAuth sentinel. The UNIQUE constraint on username surfaces as
// core.ErrUsernameTaken so concurrent registrations cannot produce duplicates.
func (r *SQLiteRepository) CreateUser(ctx context.Context, username, password string) (core.User, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (username, password) VALUES (?, ?)",
		username, password,
	)
	if err != nil {
		var liteErr *sqlite.Error
		if errors.As(err, &liteErr) {
			switch liteErr.Code() {
			case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
				return core.User{}, fmt.Errorf("insert user: %w", core.ErrUsernameTaken)
			}
		}
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "User created", "id", id, "username", username)

	return core.User{ID: id, Username: username, Password: password}, nil
}

// GetUserByUsername performs an exact, case-sensitive lookup.
func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		"SELECT id, username, password FROM users WHERE username = ?",
		username,
	).Scan(&u.ID, &u.Username, &u.Password)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.User{}, core.ErrUserNotFound
		}
		return core.User{}, fmt.Errorf("query user by username: %w", err)
	}
	return u, nil
}

// CreateTransaction appends a ledger entry. Date, category and type are
// persisted exactly as supplied.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO expense_tracker (date, category, type, amount, user_id) VALUES (?, ?, ?, ?, ?)",
		tx.Date, tx.Category, tx.Type, tx.Amount.Cents, tx.UserID,
	)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("last insert id: %w", err)
	}
	tx.ID = id

	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID,
		"user_id", tx.UserID,
		"type", tx.Type,
		"amount_cents", tx.Amount.Cents)

	return tx, nil
}

// ListTransactionsByUser returns the user's entries in insertion order.
func (r *SQLiteRepository) ListTransactionsByUser(ctx context.Context, userID int64) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, date, category, type, amount, user_id FROM expense_tracker WHERE user_id = ? ORDER BY id",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var tx core.Transaction
		if err := rows.Scan(&tx.ID, &tx.Date, &tx.Category, &tx.Type, &tx.Amount.Cents, &tx.UserID); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return txs, nil
}

// DeleteTransaction removes an entry by id, unconditionally: no ownership
// check is performed, matching the observed behavior of the delete route.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM expense_tracker WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// SessionRecord is one server-side session row. UserData carries the
// serialized user record as issued at login.
type SessionRecord struct {
	Token     string
	UserID    int64
	UserData  string
	ExpiresAt time.Time
}

func (r *SQLiteRepository) CreateSession(ctx context.Context, rec SessionRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO sessions (token, user_id, user_data, expires_at) VALUES (?, ?, ?, ?)",
		rec.Token, rec.UserID, rec.UserData, rec.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetSession(ctx context.Context, token string) (SessionRecord, error) {
	var rec SessionRecord
	err := r.db.QueryRowContext(ctx,
		"SELECT token, user_id, user_data, expires_at FROM sessions WHERE token = ?",
		token,
	).Scan(&rec.Token, &rec.UserID, &rec.UserData, &rec.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SessionRecord{}, core.ErrSessionNotFound
		}
		return SessionRecord{}, fmt.Errorf("query session: %w", err)
	}
	return rec, nil
}

// DeleteExpiredSessions removes sessions past their expiry and reports how
// many rows were dropped.
func (r *SQLiteRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= ?", now)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
