package repository

import (
	"context"
	"time"

	"campground-backend/internal/domain"
)

type TariffRepository interface {
	Insert(ctx context.Context, t *domain.Tariff) error
	// Snapshot resolves the effective rate per category at the given time.
	Snapshot(ctx context.Context, at time.Time) (domain.TariffSnapshot, error)
	ListHistory(ctx context.Context, category domain.TariffCategory) ([]domain.Tariff, error)
}

type ParcelRepository interface {
	Create(ctx context.Context, p *domain.Parcel) error
	GetByID(ctx context.Context, id int64) (*domain.Parcel, error)
	GetByName(ctx context.Context, name string) (*domain.Parcel, error)
	// ForUpdate variants take a row lock; they are only meaningful inside
	// Store.WithTx.
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Parcel, error)
	GetByNameForUpdate(ctx context.Context, name string) (*domain.Parcel, error)
	List(ctx context.Context) ([]domain.Parcel, error)
	Update(ctx context.Context, p *domain.Parcel) error

	// Stay<->parcel association (shared parcels reference many stays).
	LinkStay(ctx context.Context, parcelID, stayID int64) error
	UnlinkStay(ctx context.Context, parcelID, stayID int64) error
	ListByStay(ctx context.Context, stayID int64) ([]domain.Parcel, error)
	// CountActiveStays is the authoritative recount: non-cancelled,
	// non-finalized stays linked to the parcel, excluding one stay.
	CountActiveStays(ctx context.Context, parcelID, excludingStayID int64) (int32, error)

	// Pending selections buffered between check-in and liquidation.
	CreateSelection(ctx context.Context, sel *domain.ParcelSelection) error
	ListSelections(ctx context.Context, stayID int64) ([]domain.ParcelSelection, error)
	DeleteSelections(ctx context.Context, stayID int64) error
	DeleteExpiredSelections(ctx context.Context) (int64, error)
}

type StayRepository interface {
	Create(ctx context.Context, st *domain.Stay) error
	GetByID(ctx context.Context, id int64) (*domain.Stay, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Stay, error)
	Update(ctx context.Context, st *domain.Stay) error
	// FindActiveByPhone returns the reserved or active stay for a
	// responsible phone, or nil when there is none.
	FindActiveByPhone(ctx context.Context, phone string) (*domain.Stay, error)
	ListByPhone(ctx context.Context, phone string, includeCancelled bool) ([]domain.Stay, error)
	ListByState(ctx context.Context, state domain.StayState) ([]domain.Stay, error)
	// ListOverdue returns active stays whose planned exit is before the
	// given date and that have not checked out.
	ListOverdue(ctx context.Context, date string) ([]domain.Stay, error)
	ListResponsiblePhones(ctx context.Context) ([]string, error)
}

type OccupantRepository interface {
	// Create retries once with a suffixed phone when the phone collides.
	Create(ctx context.Context, o *domain.Occupant) error
	GetByID(ctx context.Context, id int64) (*domain.Occupant, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Occupant, error)
	Update(ctx context.Context, o *domain.Occupant) error
	ListByStay(ctx context.Context, stayID int64) ([]domain.Occupant, error)
	CountResponsible(ctx context.Context, stayID int64) (int32, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) error
	ListByStay(ctx context.Context, stayID int64) ([]domain.Payment, error)
	SumByStay(ctx context.Context, stayID int64) (int64, error)
	SumByStays(ctx context.Context, stayIDs []int64) (int64, error)
	ListByDate(ctx context.Context, date string) ([]domain.Payment, error)
	MarkReceiptIssued(ctx context.Context, id int64) error
}

type ExtraChargeRepository interface {
	Create(ctx context.Context, c *domain.ExtraCharge) error
	ListByStay(ctx context.Context, stayID int64) ([]domain.ExtraCharge, error)
	SumByStay(ctx context.Context, stayID int64) (int64, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *domain.StaffUser) error
	GetByID(ctx context.Context, id int64) (*domain.StaffUser, error)
	GetByUsername(ctx context.Context, username string) (*domain.StaffUser, error)
}

// Store bundles the repositories and provides transactional execution.
// Every multi-record settlement mutation runs inside WithTx so partial
// application is never observable.
type Store interface {
	Tariffs() TariffRepository
	Parcels() ParcelRepository
	Stays() StayRepository
	Occupants() OccupantRepository
	Payments() PaymentRepository
	ExtraCharges() ExtraChargeRepository
	Users() UserRepository

	// WithTx runs fn against a transaction-bound Store. fn returning an
	// error rolls the transaction back. WithTx must not be nested.
	WithTx(ctx context.Context, fn func(Store) error) error
}
