package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"gpsnav/internal/routing"
)

// Postgres implements Store over a Postgres database reached through the
// pgx stdlib driver. Job/Vehicle rows are stored one-per-rank with their
// full struct marshaled to JSONB; the routing core never touches SQL
// directly, so this is the only place job/vehicle shapes leak into a
// column format.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens and pings a Postgres connection pool.
func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) SaveJobs(ctx context.Context, inputID string, jobs []routing.Job) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM jobs WHERE input_id=$1`, inputID); err != nil {
		return err
	}
	for rank, job := range jobs {
		data, err := json.Marshal(job)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO jobs (input_id, rank, data) VALUES ($1,$2,$3)`,
			inputID, rank, data); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (p *Postgres) LoadJobs(ctx context.Context, inputID string) ([]routing.Job, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT data FROM jobs WHERE input_id=$1 ORDER BY rank`, inputID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []routing.Job
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var job routing.Job
		if err := json.Unmarshal(data, &job); err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, rows.Err()
}

func (p *Postgres) SaveVehicles(ctx context.Context, inputID string, vehicles []routing.Vehicle) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM vehicles WHERE input_id=$1`, inputID); err != nil {
		return err
	}
	for rank, v := range vehicles {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO vehicles (input_id, rank, data) VALUES ($1,$2,$3)`,
			inputID, rank, data); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (p *Postgres) LoadVehicles(ctx context.Context, inputID string) ([]routing.Vehicle, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT data FROM vehicles WHERE input_id=$1 ORDER BY rank`, inputID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []routing.Vehicle
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var v routing.Vehicle
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, rows.Err()
}

func (p *Postgres) SaveRouteSnapshots(ctx context.Context, runID string, snapshots []RouteSnapshot) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM route_snapshots WHERE run_id=$1`, runID); err != nil {
		return err
	}
	for _, s := range snapshots {
		ranks, err := json.Marshal(s.JobRanks)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO route_snapshots (run_id, vehicle_rank, job_ranks, cost, duration, distance) VALUES ($1,$2,$3,$4,$5,$6)`,
			runID, s.VehicleRank, ranks, s.Eval.Cost, s.Eval.Duration, s.Eval.Distance); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (p *Postgres) ListRouteSnapshots(ctx context.Context, runID string) ([]RouteSnapshot, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT vehicle_rank, job_ranks, cost, duration, distance FROM route_snapshots WHERE run_id=$1 ORDER BY vehicle_rank`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RouteSnapshot
	for rows.Next() {
		var s RouteSnapshot
		var ranks []byte
		if err := rows.Scan(&s.VehicleRank, &ranks, &s.Eval.Cost, &s.Eval.Duration, &s.Eval.Distance); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(ranks, &s.JobRanks); err != nil {
			return nil, err
		}
		s.RunID = runID
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, rows.Err()
}

func (p *Postgres) SaveRunSummary(ctx context.Context, summary RunSummary) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO run_summaries (run_id, densified, shed, dropped) VALUES ($1,$2,$3,$4)
		 ON CONFLICT (run_id) DO UPDATE SET densified=$2, shed=$3, dropped=$4`,
		summary.RunID, summary.Densified, summary.Shed, summary.Dropped)
	return err
}

func (p *Postgres) GetRunSummary(ctx context.Context, runID string) (RunSummary, error) {
	var s RunSummary
	s.RunID = runID
	err := p.db.QueryRowContext(ctx,
		`SELECT densified, shed, dropped FROM run_summaries WHERE run_id=$1`, runID).
		Scan(&s.Densified, &s.Shed, &s.Dropped)
	if err == sql.ErrNoRows {
		return RunSummary{}, ErrNotFound
	}
	if err != nil {
		return RunSummary{}, fmt.Errorf("get run summary: %w", err)
	}
	return s, nil
}
