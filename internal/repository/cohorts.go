package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sysu-ecnc-dev/shift-manager/backend/internal/domain"
)

func (r *Repository) CreateCohort(cohort *domain.Cohort) error {
	immM, err := json.Marshal(cohort.ImmovableM)
	if err != nil {
		return err
	}
	immF, err := json.Marshal(cohort.ImmovableF)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO cohorts (name, group_count, male_count, female_count, day_count, immovable_m, immovable_f, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{cohort.Name, cohort.GroupCount, cohort.MaleCount, cohort.FemaleCount, cohort.DayCount, immM, immF, cohort.OwnerID}
	dst := []any{&cohort.ID, &cohort.CreatedAt, &cohort.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetCohortByID(id int64) (*domain.Cohort, error) {
	query := `
		SELECT name, group_count, male_count, female_count, day_count, immovable_m, immovable_f, owner_id, created_at, version
		FROM cohorts WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	cohort := &domain.Cohort{ID: id}
	var immM, immF []byte

	dst := []any{&cohort.Name, &cohort.GroupCount, &cohort.MaleCount, &cohort.FemaleCount, &cohort.DayCount, &immM, &immF, &cohort.OwnerID, &cohort.CreatedAt, &cohort.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(immM, &cohort.ImmovableM); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(immF, &cohort.ImmovableF); err != nil {
		return nil, err
	}

	return cohort, nil
}

func (r *Repository) GetAllCohortsByOwnerID(ownerID int64) ([]*domain.Cohort, error) {
	query := `
		SELECT id, name, group_count, male_count, female_count, day_count, immovable_m, immovable_f, owner_id, created_at, version
		FROM cohorts WHERE owner_id = $1
		ORDER BY created_at DESC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cohorts := make([]*domain.Cohort, 0)
	for rows.Next() {
		var cohort domain.Cohort
		var immM, immF []byte
		dst := []any{&cohort.ID, &cohort.Name, &cohort.GroupCount, &cohort.MaleCount, &cohort.FemaleCount, &cohort.DayCount, &immM, &immF, &cohort.OwnerID, &cohort.CreatedAt, &cohort.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(immM, &cohort.ImmovableM); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(immF, &cohort.ImmovableF); err != nil {
			return nil, err
		}
		cohorts = append(cohorts, &cohort)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return cohorts, nil
}

// UpdateCohortImmovables updates only the two immovable-count vectors,
// the only part of a cohort a caller may change once it exists: every
// other field determines the shape of day 0, and changing it would
// invalidate any run already recorded against this cohort.
func (r *Repository) UpdateCohortImmovables(cohort *domain.Cohort) error {
	immM, err := json.Marshal(cohort.ImmovableM)
	if err != nil {
		return err
	}
	immF, err := json.Marshal(cohort.ImmovableF)
	if err != nil {
		return err
	}

	query := `
		UPDATE cohorts
		SET immovable_m = $1, immovable_f = $2, version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, immM, immF, cohort.ID, cohort.Version).Scan(&cohort.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteCohort(id int64) error {
	query := `DELETE FROM cohorts WHERE id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
