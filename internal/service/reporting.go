package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"campground-backend/internal/domain"
	"campground-backend/internal/logger"
	"campground-backend/internal/repository"
	"campground-backend/internal/utils"
)

// CashRegisterReport is one day's take, broken down by method. Built
// from the append-only payment log, so re-running it for a past date
// always yields the same numbers.
type CashRegisterReport struct {
	Date            string                         `json:"date"`
	Payments        []domain.Payment               `json:"payments"`
	TotalCents      int64                          `json:"total_cents"`
	ByMethodCents   map[domain.PaymentMethod]int64 `json:"by_method_cents"`
	ReceiptsPending int32                          `json:"receipts_pending"`
}

type DebtorEntry struct {
	ResponsiblePhone string                  `json:"responsible_phone"`
	StayIDs          []int64                 `json:"stay_ids"`
	BalanceCents     int64                   `json:"balance_cents"`
	Status           domain.SettlementStatus `json:"status"`
	PromiseDate      *string                 `json:"promise_date,omitempty"`
	PromiseBroken    bool                    `json:"promise_broken"`
}

type OccupancyReport struct {
	Date            string  `json:"date"`
	TotalParcels    int32   `json:"total_parcels"`
	OccupiedParcels int32   `json:"occupied_parcels"`
	FreeParcels     int32   `json:"free_parcels"`
	ActiveStays     int32   `json:"active_stays"`
	ReservedStays   int32   `json:"reserved_stays"`
	PersonsOnSite   int32   `json:"persons_on_site"`
	AtRiskPersons   int32   `json:"at_risk_persons"`
	OccupancyRate   float64 `json:"occupancy_rate"`
}

type reportingService struct {
	store      repository.Store
	settlement SettlementService
}

func NewReportingService(store repository.Store, settlement SettlementService) ReportingService {
	return &reportingService{store: store, settlement: settlement}
}

func (s *reportingService) CashRegister(ctx context.Context, date string) (*CashRegisterReport, error) {
	logger.EnterMethod("reportingService.CashRegister", "date", date)

	if _, err := utils.ParseDate(date); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	payments, err := s.store.Payments().ListByDate(ctx, date)
	if err != nil {
		logger.ExitMethodWithError("reportingService.CashRegister", err, "date", date)
		return nil, err
	}

	report := &CashRegisterReport{
		Date:          date,
		Payments:      payments,
		ByMethodCents: map[domain.PaymentMethod]int64{},
	}
	for _, p := range payments {
		report.TotalCents += p.AmountCents
		report.ByMethodCents[p.Method] += p.AmountCents
		if !p.ReceiptIssued {
			report.ReceiptsPending++
		}
	}

	logger.ExitMethod("reportingService.CashRegister", "date", date, "total", report.TotalCents, "payments", len(payments))
	return report, nil
}

// MarkReceiptIssued flips the payment's receipt flag once the paper
// receipt has gone out; the cash register report tracks the ones still
// pending.
func (s *reportingService) MarkReceiptIssued(ctx context.Context, paymentID int64) error {
	logger.EnterMethod("reportingService.MarkReceiptIssued", "paymentID", paymentID)

	err := s.store.Payments().MarkReceiptIssued(ctx, paymentID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: payment %d", ErrNotFound, paymentID)
	}
	if err != nil {
		logger.ExitMethodWithError("reportingService.MarkReceiptIssued", err, "paymentID", paymentID)
		return err
	}

	logger.ExitMethod("reportingService.MarkReceiptIssued", "paymentID", paymentID)
	return nil
}

// Debtors lists every responsible-phone group whose balance is past the
// settled threshold, worst first. A broken payment promise is any
// promise date already behind today with the debt still open.
func (s *reportingService) Debtors(ctx context.Context) ([]DebtorEntry, error) {
	logger.EnterMethod("reportingService.Debtors")

	phones, err := s.store.Stays().ListResponsiblePhones(ctx)
	if err != nil {
		logger.ExitMethodWithError("reportingService.Debtors", err)
		return nil, err
	}

	today := utils.FormatDate(time.Now())
	var debtors []DebtorEntry
	for _, phone := range phones {
		group, err := s.settlement.GroupStatement(ctx, phone)
		if err != nil {
			logger.ExitMethodWithError("reportingService.Debtors", err, "phone", phone)
			return nil, err
		}
		if group.Status != domain.SettlementStatusOwing {
			continue
		}
		entry := DebtorEntry{
			ResponsiblePhone: phone,
			BalanceCents:     group.BalanceCents,
			Status:           group.Status,
		}
		for _, stmt := range group.Stays {
			entry.StayIDs = append(entry.StayIDs, stmt.Stay.ID)
			if stmt.Stay.PaymentPromiseDate == nil {
				continue
			}
			if entry.PromiseDate == nil || *stmt.Stay.PaymentPromiseDate > *entry.PromiseDate {
				entry.PromiseDate = stmt.Stay.PaymentPromiseDate
			}
		}
		if entry.PromiseDate != nil && *entry.PromiseDate < today {
			entry.PromiseBroken = true
		}
		debtors = append(debtors, entry)
	}

	sort.Slice(debtors, func(i, j int) bool {
		return debtors[i].BalanceCents > debtors[j].BalanceCents
	})

	logger.ExitMethod("reportingService.Debtors", "count", len(debtors))
	return debtors, nil
}

func (s *reportingService) Occupancy(ctx context.Context) (*OccupancyReport, error) {
	logger.EnterMethod("reportingService.Occupancy")

	parcels, err := s.store.Parcels().List(ctx)
	if err != nil {
		return nil, err
	}
	report := &OccupancyReport{Date: utils.FormatDate(time.Now())}
	report.TotalParcels = int32(len(parcels))
	for _, p := range parcels {
		if p.State == domain.ParcelStateOccupied {
			report.OccupiedParcels++
		} else {
			report.FreeParcels++
		}
	}

	for _, st := range []struct {
		state domain.StayState
		count *int32
	}{
		{domain.StayStateActive, &report.ActiveStays},
		{domain.StayStateReserved, &report.ReservedStays},
	} {
		stays, err := s.store.Stays().ListByState(ctx, st.state)
		if err != nil {
			logger.ExitMethodWithError("reportingService.Occupancy", err)
			return nil, err
		}
		*st.count = int32(len(stays))
		if st.state == domain.StayStateActive {
			for i := range stays {
				report.PersonsOnSite += stays[i].PersonCount
				occupants, err := s.store.Occupants().ListByStay(ctx, stays[i].ID)
				if err != nil {
					return nil, err
				}
				for j := range occupants {
					if occupants[j].AtRisk() {
						report.AtRiskPersons++
					}
				}
			}
		}
	}

	if report.TotalParcels > 0 {
		report.OccupancyRate = float64(report.OccupiedParcels) / float64(report.TotalParcels)
	}

	logger.ExitMethod("reportingService.Occupancy", "occupied", report.OccupiedParcels, "total", report.TotalParcels)
	return report, nil
}
