package postgres

import (
	"context"
	"time"

	"campground-backend/internal/domain"
	"campground-backend/internal/repository"
)

type tariffRepository struct {
	db DBTX
}

func NewTariffRepository(db DBTX) repository.TariffRepository {
	return &tariffRepository{db: db}
}

func (r *tariffRepository) Insert(ctx context.Context, t *domain.Tariff) error {
	query := `INSERT INTO tariffs (category, amount_cents, effective_from, created_on)
	          VALUES ($1, $2, $3, $4) RETURNING id`
	return r.db.QueryRowContext(ctx, query, t.Category, t.AmountCents, t.EffectiveFrom, time.Now()).Scan(&t.ID)
}

func (r *tariffRepository) Snapshot(ctx context.Context, at time.Time) (domain.TariffSnapshot, error) {
	query := `SELECT DISTINCT ON (category) category, amount_cents
	          FROM tariffs WHERE effective_from <= $1
	          ORDER BY category, effective_from DESC`
	rows, err := r.db.QueryContext(ctx, query, at)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshot := make(domain.TariffSnapshot)
	for rows.Next() {
		var category domain.TariffCategory
		var amount int64
		if err := rows.Scan(&category, &amount); err != nil {
			return nil, err
		}
		snapshot[category] = amount
	}
	return snapshot, rows.Err()
}

func (r *tariffRepository) ListHistory(ctx context.Context, category domain.TariffCategory) ([]domain.Tariff, error) {
	query := `SELECT id, category, amount_cents, effective_from, created_on
	          FROM tariffs WHERE category = $1 ORDER BY effective_from DESC`
	rows, err := r.db.QueryContext(ctx, query, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tariffs []domain.Tariff
	for rows.Next() {
		var t domain.Tariff
		if err := rows.Scan(&t.ID, &t.Category, &t.AmountCents, &t.EffectiveFrom, &t.CreatedOn); err != nil {
			return nil, err
		}
		tariffs = append(tariffs, t)
	}
	return tariffs, rows.Err()
}
