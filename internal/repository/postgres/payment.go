package postgres

import (
	"context"
	"database/sql"
	"time"

	"campground-backend/internal/domain"
	"campground-backend/internal/repository"

	"github.com/lib/pq"
)

const paymentColumns = `id, stay_id, amount_cents, method, receipt_number, receipt_issued, paid_on`

type paymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	query := `INSERT INTO payments (stay_id, amount_cents, method, receipt_number, receipt_issued, paid_on)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if p.PaidOn.IsZero() {
		p.PaidOn = time.Now()
	}
	return r.db.QueryRowContext(ctx, query, p.StayID, p.AmountCents, p.Method, p.ReceiptNumber, p.ReceiptIssued, p.PaidOn).Scan(&p.ID)
}

func (r *paymentRepository) ListByStay(ctx context.Context, stayID int64) ([]domain.Payment, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE stay_id = $1 ORDER BY paid_on`, stayID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

func (r *paymentRepository) SumByStay(ctx context.Context, stayID int64) (int64, error) {
	var sum int64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(amount_cents), 0) FROM payments WHERE stay_id = $1`, stayID).Scan(&sum)
	return sum, err
}

func (r *paymentRepository) SumByStays(ctx context.Context, stayIDs []int64) (int64, error) {
	if len(stayIDs) == 0 {
		return 0, nil
	}
	var sum int64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(amount_cents), 0) FROM payments WHERE stay_id = ANY($1)`, pq.Array(stayIDs)).Scan(&sum)
	return sum, err
}

func (r *paymentRepository) ListByDate(ctx context.Context, date string) ([]domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE paid_on::date = $1::date ORDER BY paid_on`
	rows, err := r.db.QueryContext(ctx, query, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

func (r *paymentRepository) MarkReceiptIssued(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE payments SET receipt_issued = true WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func collectPayments(rows *sql.Rows) ([]domain.Payment, error) {
	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.StayID, &p.AmountCents, &p.Method, &p.ReceiptNumber, &p.ReceiptIssued, &p.PaidOn); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
