package service

import (
	"context"
	"time"

	"campground-backend/internal/domain"
)

// PaymentInput is an optional payment recorded as part of another
// operation (liquidation, extension, checkout).
type PaymentInput struct {
	AmountCents int64                `json:"amount_cents"`
	Method      domain.PaymentMethod `json:"method"`
}

type CreateStayRequest struct {
	Name             string `json:"name"`
	Phone            string `json:"phone"`
	ResponsiblePhone string `json:"responsible_phone"`
	IsResponsible    bool   `json:"is_responsible"`
	Age              int32  `json:"age"`
	RiskFlag         bool   `json:"risk_flag"`
	IllnessNote      string `json:"illness_note"`

	EntryDate       string `json:"entry_date"`
	PlannedExitDate string `json:"planned_exit_date"`
	PersonCount     int32  `json:"person_count"`
	TentCount       int32  `json:"tent_count"`
	ChairCount      int32  `json:"chair_count"`
	TableCount      int32  `json:"table_count"`
	Vehicle         string `json:"vehicle"`
}

type LiquidateRequest struct {
	StayID        int64         `json:"stay_id"`
	DiscountCents int64         `json:"discount_cents"`
	Payment       *PaymentInput `json:"payment,omitempty"`
	PromiseDate   *string       `json:"promise_date,omitempty"`
}

type CheckoutRequest struct {
	StayID              int64         `json:"stay_id"`
	ActualExitDate      string        `json:"actual_exit_date"`
	ManualOverrideCents *int64        `json:"manual_override_cents,omitempty"`
	Payment             *PaymentInput `json:"payment,omitempty"`
}

type StayService interface {
	CreateOrJoinStay(ctx context.Context, req CreateStayRequest) (*domain.Stay, *domain.Occupant, error)
	Liquidate(ctx context.Context, req LiquidateRequest) (*domain.Stay, int64, error)
	Extend(ctx context.Context, stayID int64, newExitDate string, payment *PaymentInput) (*domain.Stay, error)
	ExtendGroup(ctx context.Context, phone, newExitDate string, payment *PaymentInput) ([]domain.Stay, error)
	Checkout(ctx context.Context, req CheckoutRequest) (*domain.Stay, int64, error)
	RecordPayment(ctx context.Context, stayID, amountCents int64, method domain.PaymentMethod) (*domain.Payment, error)
	AddExtraCharge(ctx context.Context, stayID int64, kind domain.TariffCategory, quantity, days int32) (*domain.ExtraCharge, error)
	GetStay(ctx context.Context, stayID int64) (*domain.Stay, []domain.Occupant, error)
}

type ParcelService interface {
	CreateParcel(ctx context.Context, name string, posX, posY int32, isBedUnit bool) (*domain.Parcel, error)
	ListParcels(ctx context.Context) ([]domain.Parcel, error)
	// SelectParcels buffers provisional picks for a reserved stay;
	// liquidation commits them.
	SelectParcels(ctx context.Context, stayID int64, names []string) ([]domain.ParcelSelection, error)
	AssignParcels(ctx context.Context, stayID int64, names []string) (*domain.Stay, error)
	ReleaseParcel(ctx context.Context, stayID int64, name string) error
	MoveOccupancy(ctx context.Context, stayID int64, fromName, toName string, occupantIDs []int64) error
}

type FusionService interface {
	FuseStays(ctx context.Context, sourceID, targetID int64) (*domain.Stay, error)
	ReassignOccupant(ctx context.Context, occupantID, newStayID int64) (*domain.Occupant, error)
	// NormalizeResponsible demotes extra responsible parties so a stay
	// has at most one payer; the earliest-registered one is kept.
	NormalizeResponsible(ctx context.Context, stayID int64) error
}

type SettlementService interface {
	StayStatement(ctx context.Context, stayID int64) (*StayStatement, error)
	GroupStatement(ctx context.Context, phone string) (*GroupStatement, error)
	GroupBalance(ctx context.Context, phone string) (int64, error)
	// Status classifies a balance against the settled threshold. Every
	// view that reports debt goes through here; the threshold is applied
	// nowhere else.
	Status(balanceCents int64) domain.SettlementStatus
}

type TariffService interface {
	// SetTariff inserts a new rate effective from the given date; prior
	// rows are kept so old snapshots stay reproducible.
	SetTariff(ctx context.Context, category domain.TariffCategory, amountCents int64, effectiveFrom string) (*domain.Tariff, error)
	History(ctx context.Context, category domain.TariffCategory) ([]domain.Tariff, error)
	CurrentRates(ctx context.Context) (domain.TariffSnapshot, error)
}

type ReportingService interface {
	CashRegister(ctx context.Context, date string) (*CashRegisterReport, error)
	// MarkReceiptIssued records that a payment's paper receipt went out;
	// the cash register counts the ones still pending.
	MarkReceiptIssued(ctx context.Context, paymentID int64) error
	Debtors(ctx context.Context) ([]DebtorEntry, error)
	Occupancy(ctx context.Context) (*OccupancyReport, error)
}

// NotifierService is fire-and-forget: dispatch happens on a background
// goroutine and failures are logged, never returned to the caller.
type NotifierService interface {
	Notify(recipients []string, message string, kind domain.NotificationKind, delay time.Duration)
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (string, *domain.StaffUser, error)
}
