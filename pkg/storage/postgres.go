package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/plantops/assetgraph/pkg/types"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

const pgDriver = "pgx"

// DDL applied on startup. The cleanup_measurements() procedure is
// deliberately NOT created here: it is provisioned externally (see
// scripts/cleanup_measurements.sql) and its absence only degrades the
// retention sweep to a logged warning.
var pgSchema = []string{
	`CREATE TABLE IF NOT EXISTS assets (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		parent_id TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS assets_parent_id_idx ON assets (parent_id)`,
	`CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		active_signal_ids JSONB NOT NULL DEFAULT '[]',
		hidden_signal_ids JSONB NOT NULL DEFAULT '[]',
		date_range TEXT NOT NULL DEFAULT '',
		custom_colors TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS measurements (
		signal_id TEXT NOT NULL,
		timestamp TIMESTAMPTZ NOT NULL,
		value DOUBLE PRECISION NOT NULL,
		status TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS measurements_timestamp_idx ON measurements (timestamp)`,
}

// PostgresStore implements Store against a hosted Postgres database, the
// production deployment mode.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a Postgres-backed store using the provided DSN and
// ensures the schema exists.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open(pgDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	for _, stmt := range pgSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute ddl: %w", err)
		}
	}
	return &PostgresStore{db: db}, nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *PostgresStore) DB() *sql.DB { return s.db }

// Close closes the connection pool.
func (s *PostgresStore) Close() error { return s.db.Close() }

// Ping verifies the database is reachable.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const assetColumns = "id, name, type, parent_id"

func scanAsset(row interface{ Scan(...any) error }) (*types.Asset, error) {
	var a types.Asset
	var parent sql.NullString
	if err := row.Scan(&a.ID, &a.Name, &a.Type, &parent); err != nil {
		return nil, err
	}
	if parent.Valid {
		a.ParentID = &parent.String
	}
	return &a, nil
}

func (s *PostgresStore) queryAssets(ctx context.Context, query string, args ...any) ([]*types.Asset, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select assets: %w", err)
	}
	defer rows.Close()

	var assets []*types.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assets: %w", err)
	}
	return assets, nil
}

func (s *PostgresStore) GetAsset(ctx context.Context, id string) (*types.Asset, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+assetColumns+" FROM assets WHERE id = $1", id)
	a, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get asset: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) ListAssetsByParent(ctx context.Context, parentID *string) ([]*types.Asset, error) {
	if parentID == nil {
		return s.queryAssets(ctx, "SELECT "+assetColumns+" FROM assets WHERE parent_id IS NULL")
	}
	return s.queryAssets(ctx, "SELECT "+assetColumns+" FROM assets WHERE parent_id = $1", *parentID)
}

// placeholders builds "$1,$2,..." for n arguments.
func placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(parts, ",")
}

func (s *PostgresStore) ListAssetsByParents(ctx context.Context, parentIDs []string) (map[string][]*types.Asset, error) {
	out := make(map[string][]*types.Asset)
	if len(parentIDs) == 0 {
		return out, nil
	}
	args := make([]any, len(parentIDs))
	for i, id := range parentIDs {
		args[i] = id
	}
	assets, err := s.queryAssets(ctx,
		"SELECT "+assetColumns+" FROM assets WHERE parent_id IN ("+placeholders(len(args))+")", args...)
	if err != nil {
		return nil, err
	}
	for _, a := range assets {
		out[*a.ParentID] = append(out[*a.ParentID], a)
	}
	return out, nil
}

func (s *PostgresStore) ListAssetsByIDs(ctx context.Context, ids []string) ([]*types.Asset, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return s.queryAssets(ctx,
		"SELECT "+assetColumns+" FROM assets WHERE id IN ("+placeholders(len(args))+")", args...)
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func (s *PostgresStore) SearchAssets(ctx context.Context, query string) ([]*types.Asset, error) {
	pattern := "%" + escapeLike(query) + "%"
	return s.queryAssets(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE name ILIKE $1 ESCAPE '\'`, pattern)
}

func (s *PostgresStore) UpsertAssets(ctx context.Context, assets []*types.Asset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	for _, a := range assets {
		var parent any
		if a.ParentID != nil {
			parent = *a.ParentID
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO assets (id, name, type, parent_id) VALUES ($1,$2,$3,$4)
			 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, type = EXCLUDED.type, parent_id = EXCLUDED.parent_id`,
			a.ID, a.Name, a.Type, parent)
		if err != nil {
			return fmt.Errorf("upsert asset %s: %w", a.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

func (s *PostgresStore) ListSnapshots(ctx context.Context) ([]*types.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at, active_signal_ids, hidden_signal_ids, date_range, custom_colors
		 FROM snapshots ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("select snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*types.Snapshot
	for rows.Next() {
		var snap types.Snapshot
		var active, hidden []byte
		var colors sql.NullString
		if err := rows.Scan(&snap.ID, &snap.Name, &snap.CreatedAt, &active, &hidden, &snap.DateRange, &colors); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if err := json.Unmarshal(active, &snap.ActiveSignalIDs); err != nil {
			return nil, fmt.Errorf("decode active signal ids: %w", err)
		}
		if err := json.Unmarshal(hidden, &snap.HiddenSignalIDs); err != nil {
			return nil, fmt.Errorf("decode hidden signal ids: %w", err)
		}
		snap.CustomColors = colors.String
		snapshots = append(snapshots, &snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return snapshots, nil
}

func (s *PostgresStore) CreateSnapshot(ctx context.Context, snapshot *types.Snapshot) error {
	active, err := json.Marshal(snapshot.ActiveSignalIDs)
	if err != nil {
		return fmt.Errorf("encode active signal ids: %w", err)
	}
	hidden, err := json.Marshal(snapshot.HiddenSignalIDs)
	if err != nil {
		return fmt.Errorf("encode hidden signal ids: %w", err)
	}
	var colors any
	if snapshot.CustomColors != "" {
		colors = snapshot.CustomColors
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, name, created_at, active_signal_ids, hidden_signal_ids, date_range, custom_colors)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		snapshot.ID, snapshot.Name, snapshot.CreatedAt, active, hidden, snapshot.DateRange, colors)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteSnapshot(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete snapshot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *PostgresStore) InsertMeasurements(ctx context.Context, batch []*types.Measurement) error {
	if len(batch) == 0 {
		return nil
	}
	// One multi-row INSERT per batch, matching the ingester's single batched
	// write per tick.
	var sb strings.Builder
	sb.WriteString(`INSERT INTO measurements (signal_id, timestamp, value, status) VALUES `)
	args := make([]any, 0, len(batch)*4)
	for i, m := range batch {
		if i > 0 {
			sb.WriteString(",")
		}
		base := i * 4
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d)", base+1, base+2, base+3, base+4)
		args = append(args, m.SignalID, m.Timestamp, m.Value, string(m.Status))
	}
	if _, err := s.db.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("insert measurements: %w", err)
	}
	return nil
}

// CleanupMeasurements invokes the server-side cleanup_measurements()
// procedure. Retention is pushed to the database so the sweep never scans
// rows over the wire; a missing procedure surfaces as an error the caller
// is expected to log and ignore.
func (s *PostgresStore) CleanupMeasurements(ctx context.Context, olderThan time.Duration) (int64, error) {
	var removed int64
	err := s.db.QueryRowContext(ctx,
		`SELECT cleanup_measurements(make_interval(secs => $1))`, olderThan.Seconds()).Scan(&removed)
	if err != nil {
		return 0, fmt.Errorf("cleanup_measurements: %w", err)
	}
	return removed, nil
}
