package postgres

import (
	"context"
	"time"

	"campground-backend/internal/domain"
	"campground-backend/internal/repository"
)

type extraChargeRepository struct {
	db DBTX
}

func NewExtraChargeRepository(db DBTX) repository.ExtraChargeRepository {
	return &extraChargeRepository{db: db}
}

func (r *extraChargeRepository) Create(ctx context.Context, c *domain.ExtraCharge) error {
	query := `INSERT INTO extra_charges (stay_id, kind, quantity, days, unit_price_cents, total_cents, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	return r.db.QueryRowContext(ctx, query, c.StayID, c.Kind, c.Quantity, c.Days, c.UnitPriceCents, c.TotalCents, time.Now()).Scan(&c.ID)
}

func (r *extraChargeRepository) ListByStay(ctx context.Context, stayID int64) ([]domain.ExtraCharge, error) {
	query := `SELECT id, stay_id, kind, quantity, days, unit_price_cents, total_cents, created_on
	          FROM extra_charges WHERE stay_id = $1 ORDER BY created_on`
	rows, err := r.db.QueryContext(ctx, query, stayID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var charges []domain.ExtraCharge
	for rows.Next() {
		var c domain.ExtraCharge
		if err := rows.Scan(&c.ID, &c.StayID, &c.Kind, &c.Quantity, &c.Days, &c.UnitPriceCents, &c.TotalCents, &c.CreatedOn); err != nil {
			return nil, err
		}
		charges = append(charges, c)
	}
	return charges, rows.Err()
}

func (r *extraChargeRepository) SumByStay(ctx context.Context, stayID int64) (int64, error) {
	var sum int64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(total_cents), 0) FROM extra_charges WHERE stay_id = $1`, stayID).Scan(&sum)
	return sum, err
}
