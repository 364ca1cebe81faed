package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// Store owns the SQLite ledger. All mutations triggered by one user command
// run inside a single transaction via WithUserTx, serialized per user so
// two racing commands from the same user cannot both pass an existence
// check and violate the (owner_id, name) uniqueness invariant.
type Store struct {
	db      *sql.DB
	queries *Queries

	mu        sync.Mutex
	userLocks map[int64]*sync.Mutex
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{
		db:        db,
		queries:   New(db),
		userLocks: make(map[int64]*sync.Mutex),
	}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Queries returns the autocommit query set, used for reads and for the
// lifecycle operations the transport layer calls outside the command flow.
func (s *Store) Queries() *Queries {
	return s.queries
}

func (s *Store) userLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}
	return lock
}

// WithUserTx runs fn inside one transaction holding the user's lock. The
// transaction commits only if fn succeeds, so every mutation of a command
// persists together or not at all.
func (s *Store) WithUserTx(ctx context.Context, userID int64, fn func(q *Queries) error) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(New(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "Rollback failed", "error", rbErr, "user_id", userID)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Reset wipes all ledger state in one transaction. The schema itself is
// owned by migrations and stays in place. Administrative use only.
func (s *Store) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"transactions", "categories", "accounts", "users"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("wipe %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}

	slog.InfoContext(ctx, "Ledger reset")
	return nil
}
