package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"campground-backend/internal/domain"
	"campground-backend/internal/repository"

	"github.com/lib/pq"
)

const occupantColumns = `id, phone, name, stay_id, is_responsible_party, age, risk_flag, illness_note, created_on`

// uniqueViolation is the Postgres error code for a unique constraint hit.
const uniqueViolation = "23505"

type occupantRepository struct {
	db DBTX
}

func NewOccupantRepository(db DBTX) repository.OccupantRepository {
	return &occupantRepository{db: db}
}

func (r *occupantRepository) insert(ctx context.Context, o *domain.Occupant) error {
	query := `INSERT INTO occupants (phone, name, stay_id, is_responsible_party, age, risk_flag, illness_note, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	return r.db.QueryRowContext(ctx, query, o.Phone, o.Name, o.StayID, o.IsResponsibleParty, o.Age, o.RiskFlag, o.IllnessNote, time.Now()).Scan(&o.ID)
}

// Create inserts the occupant. Phones are effectively unique; when a
// second registration arrives with the same phone (shared family phone,
// typo at the desk) the insert is retried once with a "-2" suffix instead
// of dropping the person.
func (r *occupantRepository) Create(ctx context.Context, o *domain.Occupant) error {
	err := r.insert(ctx, o)
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		o.Phone = o.Phone + "-2"
		return r.insert(ctx, o)
	}
	return err
}

func scanOccupant(row interface{ Scan(...any) error }) (*domain.Occupant, error) {
	o := &domain.Occupant{}
	err := row.Scan(&o.ID, &o.Phone, &o.Name, &o.StayID, &o.IsResponsibleParty, &o.Age, &o.RiskFlag, &o.IllnessNote, &o.CreatedOn)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *occupantRepository) GetByID(ctx context.Context, id int64) (*domain.Occupant, error) {
	return scanOccupant(r.db.QueryRowContext(ctx, `SELECT `+occupantColumns+` FROM occupants WHERE id = $1`, id))
}

func (r *occupantRepository) GetByPhone(ctx context.Context, phone string) (*domain.Occupant, error) {
	return scanOccupant(r.db.QueryRowContext(ctx, `SELECT `+occupantColumns+` FROM occupants WHERE phone = $1`, phone))
}

func (r *occupantRepository) Update(ctx context.Context, o *domain.Occupant) error {
	query := `UPDATE occupants SET phone=$1, name=$2, stay_id=$3, is_responsible_party=$4, age=$5, risk_flag=$6, illness_note=$7 WHERE id=$8`
	res, err := r.db.ExecContext(ctx, query, o.Phone, o.Name, o.StayID, o.IsResponsibleParty, o.Age, o.RiskFlag, o.IllnessNote, o.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *occupantRepository) ListByStay(ctx context.Context, stayID int64) ([]domain.Occupant, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+occupantColumns+` FROM occupants WHERE stay_id = $1 ORDER BY created_on`, stayID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var occupants []domain.Occupant
	for rows.Next() {
		var o domain.Occupant
		if err := rows.Scan(&o.ID, &o.Phone, &o.Name, &o.StayID, &o.IsResponsibleParty, &o.Age, &o.RiskFlag, &o.IllnessNote, &o.CreatedOn); err != nil {
			return nil, err
		}
		occupants = append(occupants, o)
	}
	return occupants, rows.Err()
}

func (r *occupantRepository) CountResponsible(ctx context.Context, stayID int64) (int32, error) {
	var count int32
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM occupants WHERE stay_id = $1 AND is_responsible_party`, stayID).Scan(&count)
	return count, err
}
