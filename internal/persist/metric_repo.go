package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/voxelpath/pathd/internal/core/vec"
	"github.com/voxelpath/pathd/internal/metrics"
)

// PathRecord is one finished search as stored in path_metrics.
type PathRecord struct {
	RequestID  int
	Requester  uint64
	Map        string
	Start      vec.Vec3
	Goal       vec.Vec3
	Metric     metrics.PathMetric
	RecordedAt time.Time // set by the database
}

type MetricRepo struct {
	db *DB
}

func NewMetricRepo(db *DB) *MetricRepo {
	return &MetricRepo{db: db}
}

// InsertBatch writes records in a single transaction.
func (r *MetricRepo) InsertBatch(ctx context.Context, records []PathRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("metrics begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, rec := range records {
		m := rec.Metric
		if _, err := tx.Exec(ctx,
			`INSERT INTO path_metrics (request_id, requester, map_name,
			        start_x, start_y, start_z, goal_x, goal_y, goal_z,
			        success, cancelled, elapsed_us, cost, path_size, max_depth, nodes_explored, queries)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
			rec.RequestID, int64(rec.Requester), rec.Map,
			rec.Start.X, rec.Start.Y, rec.Start.Z, rec.Goal.X, rec.Goal.Y, rec.Goal.Z,
			m.Success, m.Cancelled, m.Time.Microseconds(), m.Cost, m.Size, m.MaxDepth, m.NodesExplored, m.Queries,
		); err != nil {
			return fmt.Errorf("metrics insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// Recent loads the newest records, newest first.
func (r *MetricRepo) Recent(ctx context.Context, limit int) ([]PathRecord, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT request_id, requester, map_name,
		        start_x, start_y, start_z, goal_x, goal_y, goal_z,
		        success, cancelled, elapsed_us, cost, path_size, max_depth, nodes_explored, queries, recorded_at
		 FROM path_metrics ORDER BY recorded_at DESC, id DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []PathRecord
	for rows.Next() {
		var rec PathRecord
		var requester, elapsedUS int64
		m := &rec.Metric
		if err := rows.Scan(
			&rec.RequestID, &requester, &rec.Map,
			&rec.Start.X, &rec.Start.Y, &rec.Start.Z, &rec.Goal.X, &rec.Goal.Y, &rec.Goal.Z,
			&m.Success, &m.Cancelled, &elapsedUS, &m.Cost, &m.Size, &m.MaxDepth, &m.NodesExplored, &m.Queries,
			&rec.RecordedAt,
		); err != nil {
			return nil, err
		}
		rec.Requester = uint64(requester)
		m.Time = time.Duration(elapsedUS) * time.Microsecond
		result = append(result, rec)
	}
	return result, rows.Err()
}

// SuccessRate returns the number of stored searches and how many found a path.
func (r *MetricRepo) SuccessRate(ctx context.Context) (total, success int, err error) {
	err = r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE success) FROM path_metrics`,
	).Scan(&total, &success)
	return total, success, err
}
