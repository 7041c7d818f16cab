package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"campground-backend/internal/domain"
	"campground-backend/internal/repository"
)

const stayColumns = `id, responsible_phone, entry_date, planned_exit_date, actual_exit_date,
	person_count, tent_count, chair_count, table_count, vehicle,
	person_nights, discount_cents, final_amount_override_cents,
	state, entry_confirmed, payment_promise_date, parcel_names, created_on, updated_on`

type stayRepository struct {
	db DBTX
}

func NewStayRepository(db DBTX) repository.StayRepository {
	return &stayRepository{db: db}
}

func scanStay(row interface{ Scan(...any) error }) (*domain.Stay, error) {
	st := &domain.Stay{}
	err := row.Scan(&st.ID, &st.ResponsiblePhone, &st.EntryDate, &st.PlannedExitDate, &st.ActualExitDate,
		&st.PersonCount, &st.TentCount, &st.ChairCount, &st.TableCount, &st.Vehicle,
		&st.PersonNights, &st.DiscountCents, &st.FinalAmountOverrideCents,
		&st.State, &st.EntryConfirmed, &st.PaymentPromiseDate, &st.ParcelNames, &st.CreatedOn, &st.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return st, nil
}

func (r *stayRepository) Create(ctx context.Context, st *domain.Stay) error {
	query := `INSERT INTO stays (responsible_phone, entry_date, planned_exit_date, actual_exit_date,
	            person_count, tent_count, chair_count, table_count, vehicle,
	            person_nights, discount_cents, final_amount_override_cents,
	            state, entry_confirmed, payment_promise_date, parcel_names, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	          RETURNING id`
	now := time.Now()
	st.CreatedOn = now
	st.UpdatedOn = now
	return r.db.QueryRowContext(ctx, query,
		st.ResponsiblePhone, st.EntryDate, st.PlannedExitDate, st.ActualExitDate,
		st.PersonCount, st.TentCount, st.ChairCount, st.TableCount, st.Vehicle,
		st.PersonNights, st.DiscountCents, st.FinalAmountOverrideCents,
		st.State, st.EntryConfirmed, st.PaymentPromiseDate, st.ParcelNames, now, now).Scan(&st.ID)
}

func (r *stayRepository) GetByID(ctx context.Context, id int64) (*domain.Stay, error) {
	return scanStay(r.db.QueryRowContext(ctx, `SELECT `+stayColumns+` FROM stays WHERE id = $1`, id))
}

func (r *stayRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Stay, error) {
	return scanStay(r.db.QueryRowContext(ctx, `SELECT `+stayColumns+` FROM stays WHERE id = $1 FOR UPDATE`, id))
}

func (r *stayRepository) Update(ctx context.Context, st *domain.Stay) error {
	query := `UPDATE stays SET responsible_phone=$1, entry_date=$2, planned_exit_date=$3, actual_exit_date=$4,
	            person_count=$5, tent_count=$6, chair_count=$7, table_count=$8, vehicle=$9,
	            person_nights=$10, discount_cents=$11, final_amount_override_cents=$12,
	            state=$13, entry_confirmed=$14, payment_promise_date=$15, parcel_names=$16, updated_on=$17
	          WHERE id=$18`
	st.UpdatedOn = time.Now()
	res, err := r.db.ExecContext(ctx, query,
		st.ResponsiblePhone, st.EntryDate, st.PlannedExitDate, st.ActualExitDate,
		st.PersonCount, st.TentCount, st.ChairCount, st.TableCount, st.Vehicle,
		st.PersonNights, st.DiscountCents, st.FinalAmountOverrideCents,
		st.State, st.EntryConfirmed, st.PaymentPromiseDate, st.ParcelNames, st.UpdatedOn, st.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *stayRepository) FindActiveByPhone(ctx context.Context, phone string) (*domain.Stay, error) {
	query := `SELECT ` + stayColumns + ` FROM stays
	          WHERE responsible_phone = $1 AND state IN ('RESERVED', 'ACTIVE')
	          ORDER BY created_on DESC LIMIT 1`
	st, err := scanStay(r.db.QueryRowContext(ctx, query, phone))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return st, err
}

func (r *stayRepository) ListByPhone(ctx context.Context, phone string, includeCancelled bool) ([]domain.Stay, error) {
	query := `SELECT ` + stayColumns + ` FROM stays WHERE responsible_phone = $1`
	if !includeCancelled {
		query += ` AND state <> 'CANCELLED'`
	}
	query += ` ORDER BY created_on`
	rows, err := r.db.QueryContext(ctx, query, phone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectStays(rows)
}

func (r *stayRepository) ListByState(ctx context.Context, state domain.StayState) ([]domain.Stay, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+stayColumns+` FROM stays WHERE state = $1 ORDER BY entry_date`, state)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectStays(rows)
}

func (r *stayRepository) ListOverdue(ctx context.Context, date string) ([]domain.Stay, error) {
	query := `SELECT ` + stayColumns + ` FROM stays
	          WHERE state = 'ACTIVE' AND planned_exit_date < $1 AND actual_exit_date IS NULL
	          ORDER BY planned_exit_date`
	rows, err := r.db.QueryContext(ctx, query, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectStays(rows)
}

func (r *stayRepository) ListResponsiblePhones(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT responsible_phone FROM stays WHERE state <> 'CANCELLED'`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var phones []string
	for rows.Next() {
		var phone string
		if err := rows.Scan(&phone); err != nil {
			return nil, err
		}
		phones = append(phones, phone)
	}
	return phones, rows.Err()
}

func collectStays(rows *sql.Rows) ([]domain.Stay, error) {
	var stays []domain.Stay
	for rows.Next() {
		var st domain.Stay
		if err := rows.Scan(&st.ID, &st.ResponsiblePhone, &st.EntryDate, &st.PlannedExitDate, &st.ActualExitDate,
			&st.PersonCount, &st.TentCount, &st.ChairCount, &st.TableCount, &st.Vehicle,
			&st.PersonNights, &st.DiscountCents, &st.FinalAmountOverrideCents,
			&st.State, &st.EntryConfirmed, &st.PaymentPromiseDate, &st.ParcelNames, &st.CreatedOn, &st.UpdatedOn); err != nil {
			return nil, err
		}
		stays = append(stays, st)
	}
	return stays, rows.Err()
}
