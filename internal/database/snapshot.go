package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/chybatronik/goUsersTable/internal/models"
)

const (
	deleteRecordsQuery = `DELETE FROM user_records`

	insertRecordQuery = `INSERT INTO user_records
		(position, id, full_name, balance, is_active, registered, state, country, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	selectRecordsQuery = `SELECT id, full_name, balance, is_active, registered, state, country, fetched_at
		FROM user_records ORDER BY position`
)

// SnapshotStore keeps the last successfully fetched record set in PostgreSQL,
// in payload order, so it can stand in when the upstream is down.
type SnapshotStore struct {
	db *sql.DB
}

// NewSnapshotStore creates a store over db. The schema must already be migrated.
func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// SaveSnapshot replaces the stored snapshot with users in a single transaction
func (s *SnapshotStore) SaveSnapshot(ctx context.Context, users []models.User, fetchedAt time.Time) error {
	err := WithTx(ctx, s.db, nil, func(ctx context.Context, tx DBTX) error {
		if _, err := tx.ExecContext(ctx, deleteRecordsQuery); err != nil {
			return fmt.Errorf("failed to clear snapshot: %w", err)
		}

		for i, u := range users {
			if _, err := tx.ExecContext(ctx, insertRecordQuery,
				i, u.ID, u.FullName, u.Balance, u.IsActive, u.Registered, u.State, u.Country, fetchedAt,
			); err != nil {
				return fmt.Errorf("failed to store record %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the stored records in their original order and the time they were
// fetched. It returns ErrNoSnapshot when nothing has been saved.
func (s *SnapshotStore) LoadSnapshot(ctx context.Context) ([]models.User, time.Time, error) {
	rows, err := s.db.QueryContext(ctx, selectRecordsQuery)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to query snapshot: %w", err)
	}
	defer rows.Close()

	var (
		users     []models.User
		fetchedAt time.Time
	)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.FullName, &u.Balance, &u.IsActive, &u.Registered, &u.State, &u.Country, &fetchedAt); err != nil {
			return nil, time.Time{}, fmt.Errorf("failed to scan snapshot record: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to read snapshot: %w", err)
	}

	if len(users) == 0 {
		return nil, time.Time{}, ErrNoSnapshot
	}
	return users, fetchedAt, nil
}

// Ping verifies the database is reachable
func (s *SnapshotStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
