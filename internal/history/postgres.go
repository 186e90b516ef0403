package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"community-pulse/internal/temporal"
)

const (
	createSchemaSQL = `CREATE TABLE IF NOT EXISTS snapshots (
        snap_date      date PRIMARY KEY,
        captured_at    timestamptz NOT NULL,
        member_count   bigint NOT NULL,
        total_channels bigint NOT NULL,
        total_capacity numeric NOT NULL,
        block_height   bigint,
        source         text NOT NULL DEFAULT '',
        created_at     timestamptz NOT NULL DEFAULT now()
    );
    CREATE TABLE IF NOT EXISTS notify_marks (
        mark_key   text NOT NULL,
        mark_date  date NOT NULL,
        created_at timestamptz NOT NULL DEFAULT now(),
        PRIMARY KEY (mark_key, mark_date)
    );`

	upsertSnapshotSQL = `INSERT INTO snapshots (
        snap_date,
        captured_at,
        member_count,
        total_channels,
        total_capacity,
        block_height,
        source
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7
    )
    ON CONFLICT (snap_date) DO UPDATE
    SET
        captured_at    = EXCLUDED.captured_at,
        member_count   = EXCLUDED.member_count,
        total_channels = EXCLUDED.total_channels,
        total_capacity = EXCLUDED.total_capacity,
        block_height   = EXCLUDED.block_height,
        source         = EXCLUDED.source;`

	selectSnapshotColumns = `snap_date, captured_at, member_count, total_channels, total_capacity, block_height, source`

	getSnapshotSQL = `SELECT ` + selectSnapshotColumns + `
    FROM snapshots WHERE snap_date = $1;`

	rangeSnapshotsSQL = `SELECT ` + selectSnapshotColumns + `
    FROM snapshots
    WHERE snap_date >= $1 AND snap_date <= $2
    ORDER BY snap_date;`

	latestSnapshotSQL = `SELECT ` + selectSnapshotColumns + `
    FROM snapshots ORDER BY snap_date DESC LIMIT 1;`

	recentSnapshotsSQL = `SELECT ` + selectSnapshotColumns + `
    FROM snapshots ORDER BY snap_date DESC LIMIT $1;`

	deleteBeforeSQL = `DELETE FROM snapshots WHERE snap_date < $1;`

	alreadyNotifiedSQL = `SELECT EXISTS (
        SELECT 1 FROM notify_marks WHERE mark_key = $1 AND mark_date = $2
    );`

	markNotifiedSQL = `INSERT INTO notify_marks (mark_key, mark_date)
    VALUES ($1, $2)
    ON CONFLICT (mark_key, mark_date) DO NOTHING;`

	tryAdvisoryLockSQL = `SELECT pg_try_advisory_lock($1);`
	advisoryUnlockSQL  = `SELECT pg_advisory_unlock($1);`
)

// PostgresStore persists snapshots and notification marks in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wires a pgx pool into a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Close releases the underlying pool resources.
func (s *PostgresStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *PostgresStore) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// EnsureSchema creates the snapshot and mark tables when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, execErr := pool.Exec(ctx, createSchemaSQL); execErr != nil {
		return fmt.Errorf("ensure schema: %w", execErr)
	}
	return nil
}

// Put upserts a snapshot by its date.
func (s *PostgresStore) Put(ctx context.Context, snap Snapshot) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	var block interface{}
	if snap.BlockHeight != nil {
		block = *snap.BlockHeight
	}

	_, execErr := pool.Exec(ctx, upsertSnapshotSQL,
		snap.Date.Time(time.UTC),
		snap.Timestamp,
		snap.MemberCount,
		snap.TotalChannels,
		snap.TotalCapacity.String(),
		block,
		snap.Source,
	)
	if execErr != nil {
		return fmt.Errorf("upsert snapshot: %w", execErr)
	}
	return nil
}

// Get performs an exact-date lookup; nil when absent.
func (s *PostgresStore) Get(ctx context.Context, date temporal.Date) (*Snapshot, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, getSnapshotSQL, date.Time(time.UTC))
	if queryErr != nil {
		return nil, fmt.Errorf("get snapshot: %w", queryErr)
	}
	defer rows.Close()

	return firstSnapshot(rows)
}

// Range lists snapshots within [start, end], ascending by date.
func (s *PostgresStore) Range(ctx context.Context, start, end temporal.Date) ([]Snapshot, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, rangeSnapshotsSQL, start.Time(time.UTC), end.Time(time.UTC))
	if queryErr != nil {
		return nil, fmt.Errorf("range snapshots: %w", queryErr)
	}
	defer rows.Close()

	return collectSnapshots(rows)
}

// Latest returns the snapshot with the maximum date; nil when empty.
func (s *PostgresStore) Latest(ctx context.Context) (*Snapshot, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, latestSnapshotSQL)
	if queryErr != nil {
		return nil, fmt.Errorf("latest snapshot: %w", queryErr)
	}
	defer rows.Close()

	return firstSnapshot(rows)
}

// Recent lists up to limit snapshots, newest first.
func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]Snapshot, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, recentSnapshotsSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("recent snapshots: %w", queryErr)
	}
	defer rows.Close()

	return collectSnapshots(rows)
}

// DeleteBefore removes snapshots dated strictly before cutoff.
func (s *PostgresStore) DeleteBefore(ctx context.Context, cutoff temporal.Date) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}

	cmdTag, execErr := pool.Exec(ctx, deleteBeforeSQL, cutoff.Time(time.UTC))
	if execErr != nil {
		return 0, fmt.Errorf("delete snapshots before: %w", execErr)
	}
	return cmdTag.RowsAffected(), nil
}

// AlreadyNotified reports whether key was marked notified on day.
func (s *PostgresStore) AlreadyNotified(ctx context.Context, key string, day temporal.Date) (bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return false, err
	}

	var exists bool
	if scanErr := pool.QueryRow(ctx, alreadyNotifiedSQL, key, day.Time(time.UTC)).Scan(&exists); scanErr != nil {
		return false, fmt.Errorf("check notify mark: %w", scanErr)
	}
	return exists, nil
}

// MarkNotified records a same-day dedup mark for key.
func (s *PostgresStore) MarkNotified(ctx context.Context, key string, day temporal.Date) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, execErr := pool.Exec(ctx, markNotifiedSQL, key, day.Time(time.UTC)); execErr != nil {
		return fmt.Errorf("insert notify mark: %w", execErr)
	}
	return nil
}

// TryAdvisoryLock attempts to acquire a postgres advisory lock and returns
// a release func. Guards against two instances capturing concurrently.
func (s *PostgresStore) TryAdvisoryLock(ctx context.Context, key int64) (func(), bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, false, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, tryAdvisoryLockSQL, key).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	unlock := func() {
		ctxUnlock, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, _ = conn.Exec(ctxUnlock, advisoryUnlockSQL, key)
		conn.Release()
	}
	return unlock, true, nil
}

func firstSnapshot(rows pgx.Rows) (*Snapshot, error) {
	if !rows.Next() {
		if rows.Err() != nil {
			return nil, rows.Err()
		}
		return nil, nil
	}
	snap, err := scanSnapshot(rows)
	if err != nil {
		return nil, err
	}
	return &snap, rows.Err()
}

func collectSnapshots(rows pgx.Rows) ([]Snapshot, error) {
	snaps := make([]Snapshot, 0)
	for rows.Next() {
		snap, scanErr := scanSnapshot(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		snaps = append(snaps, snap)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return snaps, nil
}

func scanSnapshot(rows pgx.Rows) (Snapshot, error) {
	var (
		snapDate    time.Time
		capturedAt  time.Time
		members     int64
		channels    int64
		capacityStr string
		block       sql.NullInt64
		source      string
	)

	if err := rows.Scan(&snapDate, &capturedAt, &members, &channels, &capacityStr, &block, &source); err != nil {
		return Snapshot{}, err
	}

	capacity, err := decimal.NewFromString(capacityStr)
	if err != nil {
		return Snapshot{}, fmt.Errorf("parse total capacity: %w", err)
	}

	snap := Snapshot{
		Date:          temporal.DateOf(snapDate),
		Timestamp:     capturedAt,
		MemberCount:   members,
		TotalChannels: channels,
		TotalCapacity: capacity,
		Source:        source,
	}
	if block.Valid {
		value := block.Int64
		snap.BlockHeight = &value
	}
	return snap, nil
}

var _ RecordStore = (*PostgresStore)(nil)
