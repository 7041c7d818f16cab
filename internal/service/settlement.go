package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"campground-backend/internal/domain"
	"campground-backend/internal/logger"
	"campground-backend/internal/repository"
	"campground-backend/internal/utils"
)

// StayStatement is one stay's accrued charges against its own payments.
type StayStatement struct {
	Stay          domain.Stay             `json:"stay"`
	Breakdown     utils.CostBreakdown     `json:"breakdown"`
	TotalDueCents int64                   `json:"total_due_cents"`
	PaidCents     int64                   `json:"paid_cents"`
	BalanceCents  int64                   `json:"balance_cents"`
	Status        domain.SettlementStatus `json:"status"`
}

// GroupStatement aggregates every non-cancelled stay sharing one
// responsible phone. The group balance, not any single stay's, is what
// staff act on: a group split across duplicate stays would otherwise
// show its debt twice.
type GroupStatement struct {
	ResponsiblePhone string                  `json:"responsible_phone"`
	Stays            []StayStatement         `json:"stays"`
	TotalDueCents    int64                   `json:"total_due_cents"`
	TotalPaidCents   int64                   `json:"total_paid_cents"`
	BalanceCents     int64                   `json:"balance_cents"`
	Status           domain.SettlementStatus `json:"status"`
}

type settlementService struct {
	store                 repository.Store
	settledThresholdCents int64
}

func NewSettlementService(store repository.Store, settledThresholdCents int64) SettlementService {
	return &settlementService{store: store, settledThresholdCents: settledThresholdCents}
}

// buildStayCharge gathers a stay's billable facts: accrued person-nights,
// billable days (actual exit when set, else planned, floored at one
// night), resource counts, bed-unit housing, and the extras total.
func buildStayCharge(ctx context.Context, store repository.Store, stay *domain.Stay) (utils.StayCharge, error) {
	exit := stay.PlannedExitDate
	if stay.ActualExitDate != nil {
		exit = *stay.ActualExitDate
	}
	days, err := utils.BillableDays(stay.EntryDate, exit)
	if err != nil {
		return utils.StayCharge{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	extras, err := store.ExtraCharges().SumByStay(ctx, stay.ID)
	if err != nil {
		return utils.StayCharge{}, err
	}

	parcels, err := store.Parcels().ListByStay(ctx, stay.ID)
	if err != nil {
		return utils.StayCharge{}, err
	}
	bedUnit := false
	for _, p := range parcels {
		if p.IsBedUnit {
			bedUnit = true
			break
		}
	}

	return utils.StayCharge{
		PersonNights:  stay.PersonNights,
		Days:          days,
		TentCount:     stay.TentCount,
		ChairCount:    stay.ChairCount,
		TableCount:    stay.TableCount,
		Vehicle:       stay.Vehicle,
		BedUnit:       bedUnit,
		ExtrasCents:   extras,
		DiscountCents: stay.DiscountCents,
	}, nil
}

// stayTotalDue computes a stay's breakdown and its due amount. A
// persisted final override (set at checkout) replaces the computed total
// entirely.
func stayTotalDue(ctx context.Context, store repository.Store, stay *domain.Stay, rates domain.TariffSnapshot) (utils.CostBreakdown, int64, error) {
	charge, err := buildStayCharge(ctx, store, stay)
	if err != nil {
		return utils.CostBreakdown{}, 0, err
	}
	breakdown := utils.ComputeStayCost(charge, rates)
	due := breakdown.TotalCents
	if stay.FinalAmountOverrideCents != nil {
		due = *stay.FinalAmountOverrideCents
	}
	return breakdown, due, nil
}

func (s *settlementService) Status(balanceCents int64) domain.SettlementStatus {
	abs := balanceCents
	if abs < 0 {
		abs = -abs
	}
	if abs <= s.settledThresholdCents {
		return domain.SettlementStatusSettled
	}
	if balanceCents > 0 {
		return domain.SettlementStatusOwing
	}
	return domain.SettlementStatusInCredit
}

func (s *settlementService) stayStatement(ctx context.Context, store repository.Store, stay *domain.Stay, rates domain.TariffSnapshot) (*StayStatement, error) {
	breakdown, due, err := stayTotalDue(ctx, store, stay, rates)
	if err != nil {
		return nil, err
	}
	paid, err := store.Payments().SumByStay(ctx, stay.ID)
	if err != nil {
		return nil, err
	}
	balance := due - paid
	return &StayStatement{
		Stay:          *stay,
		Breakdown:     breakdown,
		TotalDueCents: due,
		PaidCents:     paid,
		BalanceCents:  balance,
		Status:        s.Status(balance),
	}, nil
}

func (s *settlementService) StayStatement(ctx context.Context, stayID int64) (*StayStatement, error) {
	logger.EnterMethod("settlementService.StayStatement", "stayID", stayID)

	stay, err := s.store.Stays().GetByID(ctx, stayID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: stay %d", ErrNotFound, stayID)
		}
		return nil, err
	}
	rates, err := s.store.Tariffs().Snapshot(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	stmt, err := s.stayStatement(ctx, s.store, stay, rates)
	if err != nil {
		logger.ExitMethodWithError("settlementService.StayStatement", err, "stayID", stayID)
		return nil, err
	}
	logger.ExitMethod("settlementService.StayStatement", "stayID", stayID, "balance", stmt.BalanceCents)
	return stmt, nil
}

func (s *settlementService) GroupStatement(ctx context.Context, phone string) (*GroupStatement, error) {
	logger.EnterMethod("settlementService.GroupStatement", "phone", phone)

	stays, err := s.store.Stays().ListByPhone(ctx, phone, false)
	if err != nil {
		return nil, err
	}
	if len(stays) == 0 {
		return nil, fmt.Errorf("%w: no stays for phone %s", ErrNotFound, phone)
	}
	rates, err := s.store.Tariffs().Snapshot(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	group := &GroupStatement{ResponsiblePhone: phone}
	for i := range stays {
		stmt, err := s.stayStatement(ctx, s.store, &stays[i], rates)
		if err != nil {
			logger.ExitMethodWithError("settlementService.GroupStatement", err, "phone", phone, "stayID", stays[i].ID)
			return nil, err
		}
		group.Stays = append(group.Stays, *stmt)
		group.TotalDueCents += stmt.TotalDueCents
		group.TotalPaidCents += stmt.PaidCents
	}

	// Fusing cancels the source stay but leaves its payments where they
	// were recorded; the debt they cover now lives on the target. The
	// group's paid leg must read across cancelled stays too, or that
	// money disappears from every balance view.
	all, err := s.store.Stays().ListByPhone(ctx, phone, true)
	if err != nil {
		return nil, err
	}
	var cancelledIDs []int64
	for i := range all {
		if all[i].State == domain.StayStateCancelled {
			cancelledIDs = append(cancelledIDs, all[i].ID)
		}
	}
	if len(cancelledIDs) > 0 {
		paid, err := s.store.Payments().SumByStays(ctx, cancelledIDs)
		if err != nil {
			return nil, err
		}
		group.TotalPaidCents += paid
	}

	group.BalanceCents = group.TotalDueCents - group.TotalPaidCents
	group.Status = s.Status(group.BalanceCents)

	logger.ExitMethod("settlementService.GroupStatement", "phone", phone, "balance", group.BalanceCents, "stays", len(group.Stays))
	return group, nil
}

func (s *settlementService) GroupBalance(ctx context.Context, phone string) (int64, error) {
	group, err := s.GroupStatement(ctx, phone)
	if err != nil {
		return 0, err
	}
	return group.BalanceCents, nil
}
