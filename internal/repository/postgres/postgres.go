package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"campground-backend/internal/repository"

	_ "github.com/lib/pq"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so every repository can
// run either standalone or inside a Store.WithTx transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
	q  DBTX

	tariffs      repository.TariffRepository
	parcels      repository.ParcelRepository
	stays        repository.StayRepository
	occupants    repository.OccupantRepository
	payments     repository.PaymentRepository
	extraCharges repository.ExtraChargeRepository
	users        repository.UserRepository
}

func NewStore(db *sql.DB) *Store {
	return newStore(db, db)
}

func newStore(db *sql.DB, q DBTX) *Store {
	return &Store{
		db:           db,
		q:            q,
		tariffs:      NewTariffRepository(q),
		parcels:      NewParcelRepository(q),
		stays:        NewStayRepository(q),
		occupants:    NewOccupantRepository(q),
		payments:     NewPaymentRepository(q),
		extraCharges: NewExtraChargeRepository(q),
		users:        NewUserRepository(q),
	}
}

func (s *Store) Tariffs() repository.TariffRepository           { return s.tariffs }
func (s *Store) Parcels() repository.ParcelRepository           { return s.parcels }
func (s *Store) Stays() repository.StayRepository               { return s.stays }
func (s *Store) Occupants() repository.OccupantRepository       { return s.occupants }
func (s *Store) Payments() repository.PaymentRepository         { return s.payments }
func (s *Store) ExtraCharges() repository.ExtraChargeRepository { return s.extraCharges }
func (s *Store) Users() repository.UserRepository               { return s.users }

// WithTx runs fn against a transaction-bound copy of the store. Row locks
// taken through the ForUpdate repository methods are held until commit.
func (s *Store) WithTx(ctx context.Context, fn func(repository.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	txStore := newStore(s.db, tx)
	if err := fn(txStore); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
