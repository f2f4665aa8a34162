package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/whale2d/sim2d/internal/world"
)

// SnapshotRow is one stored tick of a run.
type SnapshotRow struct {
	RunID     uuid.UUID
	Tick      uint64
	Digest    uint64
	BodyCount int
}

// BodyRow is one entity inside a snapshot.
type BodyRow struct {
	Entity   uint64
	Name     string
	PosX     float64
	PosY     float64
	VelX     float64
	VelY     float64
	Grounded bool
}

var bodyColumns = []string{"run_id", "tick", "entity", "name", "pos_x", "pos_y", "vel_x", "vel_y", "grounded"}

// SnapshotRepo writes the snapshots of a single simulation run.
type SnapshotRepo struct {
	db    *DB
	runID uuid.UUID
}

// NewSnapshotRepo binds a repo to a fresh run id.
func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db, runID: uuid.New()}
}

func (r *SnapshotRepo) RunID() uuid.UUID { return r.runID }

// StartRun records the run header. Must be called before the first snapshot.
func (r *SnapshotRepo) StartRun(ctx context.Context, name, scene, resolution string) error {
	if _, err := r.db.Pool.Exec(ctx,
		`INSERT INTO sim_runs (id, name, scene, resolution) VALUES ($1, $2, $3, $4)`,
		r.runID, name, scene, resolution,
	); err != nil {
		return fmt.Errorf("start run: %w", err)
	}
	return nil
}

// SaveSnapshot atomically writes the snapshot header and all body rows.
func (r *SnapshotRepo) SaveSnapshot(ctx context.Context, tick uint64, digest uint64, bodies []world.BodyState) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("snapshot begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`INSERT INTO snapshots (run_id, tick, digest, body_count) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (run_id, tick) DO NOTHING`,
		r.runID, int64(tick), digestToDB(digest), len(bodies),
	)
	if err != nil {
		return fmt.Errorf("snapshot insert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// tick already stored for this run
		return nil
	}

	if len(bodies) > 0 {
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"body_states"},
			bodyColumns,
			pgx.CopyFromRows(bodyRows(r.runID, tick, bodies)),
		); err != nil {
			return fmt.Errorf("snapshot bodies: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// Latest returns the newest snapshot of the run, or nil if none exists.
func (r *SnapshotRepo) Latest(ctx context.Context) (*SnapshotRow, error) {
	row := &SnapshotRow{RunID: r.runID}
	var tick, digest int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT tick, digest, body_count FROM snapshots
		 WHERE run_id = $1 ORDER BY tick DESC LIMIT 1`, r.runID,
	).Scan(&tick, &digest, &row.BodyCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	row.Tick = uint64(tick)
	row.Digest = digestFromDB(digest)
	return row, nil
}

// LoadBodies returns the bodies stored for a tick in entity order.
func (r *SnapshotRepo) LoadBodies(ctx context.Context, tick uint64) ([]BodyRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT entity, name, pos_x, pos_y, vel_x, vel_y, grounded
		 FROM body_states
		 WHERE run_id = $1 AND tick = $2
		 ORDER BY entity`, r.runID, int64(tick),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []BodyRow
	for rows.Next() {
		var b BodyRow
		var entity int64
		if err := rows.Scan(&entity, &b.Name, &b.PosX, &b.PosY, &b.VelX, &b.VelY, &b.Grounded); err != nil {
			return nil, err
		}
		b.Entity = uint64(entity)
		result = append(result, b)
	}
	return result, rows.Err()
}

// bodyRows lays out body states in bodyColumns order for COPY.
func bodyRows(runID uuid.UUID, tick uint64, bodies []world.BodyState) [][]any {
	rows := make([][]any, 0, len(bodies))
	for _, b := range bodies {
		rows = append(rows, []any{
			runID, int64(tick), int64(b.Entity), b.Name,
			b.Position.X, b.Position.Y, b.Velocity.X, b.Velocity.Y,
			b.Grounded,
		})
	}
	return rows
}

// Postgres has no unsigned 64-bit type; digests are stored bit for bit.
func digestToDB(d uint64) int64   { return int64(d) }
func digestFromDB(d int64) uint64 { return uint64(d) }
