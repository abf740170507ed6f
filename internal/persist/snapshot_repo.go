package persist

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// SnapshotRow records which world snapshot a map was last loaded from.
type SnapshotRow struct {
	Name     string
	Checksum string
	Cells    int
	LoadedAt time.Time
}

type SnapshotRepo struct {
	db *DB
}

func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Load returns nil when the map has never been recorded.
func (r *SnapshotRepo) Load(ctx context.Context, name string) (*SnapshotRow, error) {
	row := &SnapshotRow{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT name, checksum, cells, loaded_at FROM world_snapshots WHERE name = $1`, name,
	).Scan(&row.Name, &row.Checksum, &row.Cells, &row.LoadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Save upserts the checksum of the snapshot a map was loaded from.
func (r *SnapshotRepo) Save(ctx context.Context, name, checksum string, cells int) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO world_snapshots (name, checksum, cells, loaded_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (name) DO UPDATE SET checksum = EXCLUDED.checksum, cells = EXCLUDED.cells, loaded_at = NOW()`,
		name, checksum, cells,
	)
	return err
}
