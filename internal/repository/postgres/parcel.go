package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"campground-backend/internal/domain"
	"campground-backend/internal/repository"
)

const parcelColumns = `id, name, state, occupant_count, owning_stay_id, pos_x, pos_y, is_bed_unit, created_on`

type parcelRepository struct {
	db DBTX
}

func NewParcelRepository(db DBTX) repository.ParcelRepository {
	return &parcelRepository{db: db}
}

func scanParcel(row interface{ Scan(...any) error }) (*domain.Parcel, error) {
	p := &domain.Parcel{}
	err := row.Scan(&p.ID, &p.Name, &p.State, &p.OccupantCount, &p.OwningStayID, &p.PosX, &p.PosY, &p.IsBedUnit, &p.CreatedOn)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *parcelRepository) Create(ctx context.Context, p *domain.Parcel) error {
	query := `INSERT INTO parcels (name, state, occupant_count, owning_stay_id, pos_x, pos_y, is_bed_unit, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	if p.State == "" {
		p.State = domain.ParcelStateFree
	}
	return r.db.QueryRowContext(ctx, query, p.Name, p.State, p.OccupantCount, p.OwningStayID, p.PosX, p.PosY, p.IsBedUnit, time.Now()).Scan(&p.ID)
}

func (r *parcelRepository) GetByID(ctx context.Context, id int64) (*domain.Parcel, error) {
	return scanParcel(r.db.QueryRowContext(ctx, `SELECT `+parcelColumns+` FROM parcels WHERE id = $1`, id))
}

func (r *parcelRepository) GetByName(ctx context.Context, name string) (*domain.Parcel, error) {
	return scanParcel(r.db.QueryRowContext(ctx, `SELECT `+parcelColumns+` FROM parcels WHERE name = $1`, name))
}

func (r *parcelRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Parcel, error) {
	return scanParcel(r.db.QueryRowContext(ctx, `SELECT `+parcelColumns+` FROM parcels WHERE id = $1 FOR UPDATE`, id))
}

func (r *parcelRepository) GetByNameForUpdate(ctx context.Context, name string) (*domain.Parcel, error) {
	return scanParcel(r.db.QueryRowContext(ctx, `SELECT `+parcelColumns+` FROM parcels WHERE name = $1 FOR UPDATE`, name))
}

func (r *parcelRepository) List(ctx context.Context) ([]domain.Parcel, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+parcelColumns+` FROM parcels ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectParcels(rows)
}

func (r *parcelRepository) Update(ctx context.Context, p *domain.Parcel) error {
	query := `UPDATE parcels SET state=$1, occupant_count=$2, owning_stay_id=$3, pos_x=$4, pos_y=$5, is_bed_unit=$6 WHERE id=$7`
	res, err := r.db.ExecContext(ctx, query, p.State, p.OccupantCount, p.OwningStayID, p.PosX, p.PosY, p.IsBedUnit, p.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *parcelRepository) LinkStay(ctx context.Context, parcelID, stayID int64) error {
	query := `INSERT INTO stay_parcels (parcel_id, stay_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, parcelID, stayID)
	return err
}

func (r *parcelRepository) UnlinkStay(ctx context.Context, parcelID, stayID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM stay_parcels WHERE parcel_id = $1 AND stay_id = $2`, parcelID, stayID)
	return err
}

func (r *parcelRepository) ListByStay(ctx context.Context, stayID int64) ([]domain.Parcel, error) {
	query := `SELECT p.id, p.name, p.state, p.occupant_count, p.owning_stay_id, p.pos_x, p.pos_y, p.is_bed_unit, p.created_on
	          FROM parcels p JOIN stay_parcels sp ON sp.parcel_id = p.id
	          WHERE sp.stay_id = $1 ORDER BY p.name`
	rows, err := r.db.QueryContext(ctx, query, stayID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectParcels(rows)
}

func (r *parcelRepository) CountActiveStays(ctx context.Context, parcelID, excludingStayID int64) (int32, error) {
	var count int32
	query := `SELECT count(*) FROM stay_parcels sp
	          JOIN stays s ON s.id = sp.stay_id
	          WHERE sp.parcel_id = $1 AND sp.stay_id <> $2 AND s.state IN ('RESERVED', 'ACTIVE')`
	err := r.db.QueryRowContext(ctx, query, parcelID, excludingStayID).Scan(&count)
	return count, err
}

func (r *parcelRepository) CreateSelection(ctx context.Context, sel *domain.ParcelSelection) error {
	query := `INSERT INTO stay_parcel_selections (stay_id, parcel_id, token, expires_at, created_on)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	return r.db.QueryRowContext(ctx, query, sel.StayID, sel.ParcelID, sel.Token, sel.ExpiresAt, time.Now()).Scan(&sel.ID)
}

func (r *parcelRepository) ListSelections(ctx context.Context, stayID int64) ([]domain.ParcelSelection, error) {
	query := `SELECT id, stay_id, parcel_id, token, expires_at, created_on
	          FROM stay_parcel_selections WHERE stay_id = $1 ORDER BY created_on`
	rows, err := r.db.QueryContext(ctx, query, stayID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var selections []domain.ParcelSelection
	for rows.Next() {
		var sel domain.ParcelSelection
		if err := rows.Scan(&sel.ID, &sel.StayID, &sel.ParcelID, &sel.Token, &sel.ExpiresAt, &sel.CreatedOn); err != nil {
			return nil, err
		}
		selections = append(selections, sel)
	}
	return selections, rows.Err()
}

func (r *parcelRepository) DeleteSelections(ctx context.Context, stayID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM stay_parcel_selections WHERE stay_id = $1`, stayID)
	return err
}

func (r *parcelRepository) DeleteExpiredSelections(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM stay_parcel_selections WHERE expires_at <= $1`, time.Now())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func collectParcels(rows *sql.Rows) ([]domain.Parcel, error) {
	var parcels []domain.Parcel
	for rows.Next() {
		var p domain.Parcel
		if err := rows.Scan(&p.ID, &p.Name, &p.State, &p.OccupantCount, &p.OwningStayID, &p.PosX, &p.PosY, &p.IsBedUnit, &p.CreatedOn); err != nil {
			return nil, err
		}
		parcels = append(parcels, p)
	}
	if err := rows.Err(); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return parcels, nil
}
