package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/shift-manager/backend/internal/domain"
)

func (r *Repository) CreateRun(run *domain.Run) error {
	query := `
		INSERT INTO runs (cohort_id, status, iterations)
		VALUES ($1, $2, $3)
		RETURNING id, score, average_contacts, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{run.CohortID, run.Status, run.Iterations}
	dst := []any{&run.ID, &run.Score, &run.AverageContacts, &run.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) MarkRunStarted(run *domain.Run) error {
	query := `
		UPDATE runs SET status = $1, started_at = NOW(), version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING started_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	run.Status = domain.RunStatusRunning
	if err := r.dbpool.QueryRowContext(ctx, query, run.Status, run.ID, run.Version).Scan(&run.StartedAt, &run.Version); err != nil {
		return err
	}

	return nil
}

// CompleteRun persists the terminal state of a run: final score,
// average contacts and the serialized schedule. There is no
// best-seen checkpoint to persist alongside it, because the driver
// that produced this run never tracked one; only the terminal state
// the caller hands us exists to record.
func (r *Repository) CompleteRun(run *domain.Run) error {
	query := `
		UPDATE runs
		SET status = $1, score = $2, average_contacts = $3, schedule = $4, finished_at = NOW(), version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING finished_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	run.Status = domain.RunStatusCompleted
	args := []any{run.Status, run.Score, run.AverageContacts, run.Schedule, run.ID, run.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&run.FinishedAt, &run.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) MarkRunFailed(run *domain.Run) error {
	query := `
		UPDATE runs SET status = $1, finished_at = NOW(), version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING finished_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	run.Status = domain.RunStatusFailed
	if err := r.dbpool.QueryRowContext(ctx, query, run.Status, run.ID, run.Version).Scan(&run.FinishedAt, &run.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetRunByID(id int64) (*domain.Run, error) {
	query := `
		SELECT cohort_id, status, iterations, score, average_contacts, schedule, started_at, finished_at, version
		FROM runs WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	run := &domain.Run{ID: id}
	dst := []any{&run.CohortID, &run.Status, &run.Iterations, &run.Score, &run.AverageContacts, &run.Schedule, &run.StartedAt, &run.FinishedAt, &run.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return run, nil
}

func (r *Repository) GetLatestRunForCohort(cohortID int64) (*domain.Run, error) {
	query := `
		SELECT id, status, iterations, score, average_contacts, schedule, started_at, finished_at, version
		FROM runs WHERE cohort_id = $1
		ORDER BY id DESC
		LIMIT 1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	run := &domain.Run{CohortID: cohortID}
	dst := []any{&run.ID, &run.Status, &run.Iterations, &run.Score, &run.AverageContacts, &run.Schedule, &run.StartedAt, &run.FinishedAt, &run.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, cohortID).Scan(dst...); err != nil {
		return nil, err
	}

	return run, nil
}

func (r *Repository) GetAllRunsForCohort(cohortID int64) ([]*domain.Run, error) {
	query := `
		SELECT id, status, iterations, score, average_contacts, schedule, started_at, finished_at, version
		FROM runs WHERE cohort_id = $1
		ORDER BY id DESC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, cohortID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]*domain.Run, 0)
	for rows.Next() {
		run := &domain.Run{CohortID: cohortID}
		dst := []any{&run.ID, &run.Status, &run.Iterations, &run.Score, &run.AverageContacts, &run.Schedule, &run.StartedAt, &run.FinishedAt, &run.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return runs, nil
}
