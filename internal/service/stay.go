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

	"github.com/google/uuid"
)

type stayService struct {
	store    repository.Store
	notifier NotifierService
}

func NewStayService(store repository.Store, notifier NotifierService) StayService {
	return &stayService{store: store, notifier: notifier}
}

func getStayLocked(ctx context.Context, store repository.Store, stayID int64) (*domain.Stay, error) {
	stay, err := store.Stays().GetByIDForUpdate(ctx, stayID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: stay %d", ErrNotFound, stayID)
		}
		return nil, err
	}
	return stay, nil
}

func recordPaymentTx(ctx context.Context, store repository.Store, stayID int64, in *PaymentInput) (*domain.Payment, error) {
	if in.AmountCents <= 0 {
		return nil, fmt.Errorf("%w: payment amount must be positive", ErrInvalidInput)
	}
	if in.Method == "" {
		return nil, fmt.Errorf("%w: payment method is required", ErrInvalidInput)
	}
	payment := &domain.Payment{
		StayID:        stayID,
		AmountCents:   in.AmountCents,
		Method:        in.Method,
		ReceiptNumber: uuid.NewString(),
	}
	if err := store.Payments().Create(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *stayService) CreateOrJoinStay(ctx context.Context, req CreateStayRequest) (*domain.Stay, *domain.Occupant, error) {
	logger.EnterMethod("stayService.CreateOrJoinStay", "phone", req.Phone, "responsiblePhone", req.ResponsiblePhone)

	if req.Phone == "" || req.ResponsiblePhone == "" {
		return nil, nil, fmt.Errorf("%w: phone and responsible phone are required", ErrInvalidInput)
	}
	if req.EntryDate == "" || req.PlannedExitDate == "" {
		return nil, nil, fmt.Errorf("%w: entry and planned exit dates are required", ErrInvalidInput)
	}
	if req.PersonCount <= 0 {
		return nil, nil, fmt.Errorf("%w: person count must be positive", ErrInvalidInput)
	}
	nights, err := utils.BillableDays(req.EntryDate, req.PlannedExitDate)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	vehicle := domain.NormalizeVehicle(req.Vehicle)

	var stay *domain.Stay
	var occupant *domain.Occupant
	err = s.store.WithTx(ctx, func(store repository.Store) error {
		existing, err := store.Stays().FindActiveByPhone(ctx, req.ResponsiblePhone)
		if err != nil {
			return err
		}

		if existing != nil {
			// Join: re-read under lock, accrue this cohort's nights and
			// widen the date range to the union.
			stay, err = getStayLocked(ctx, store, existing.ID)
			if err != nil {
				return err
			}
			stay.PersonNights += nights * req.PersonCount
			stay.PersonCount += req.PersonCount
			stay.EntryDate = utils.MinDate(stay.EntryDate, req.EntryDate)
			stay.PlannedExitDate = utils.MaxDate(stay.PlannedExitDate, req.PlannedExitDate)
			if req.IsResponsible {
				// The responsible party's declaration wins for shared gear.
				stay.TentCount = req.TentCount
				stay.ChairCount = req.ChairCount
				stay.TableCount = req.TableCount
			} else {
				stay.TentCount += req.TentCount
				stay.ChairCount += req.ChairCount
				stay.TableCount += req.TableCount
			}
			stay.Vehicle = domain.MergeVehicle(stay.Vehicle, vehicle)
			if err := store.Stays().Update(ctx, stay); err != nil {
				return err
			}
		} else {
			stay = &domain.Stay{
				ResponsiblePhone: req.ResponsiblePhone,
				EntryDate:        req.EntryDate,
				PlannedExitDate:  req.PlannedExitDate,
				PersonCount:      req.PersonCount,
				TentCount:        req.TentCount,
				ChairCount:       req.ChairCount,
				TableCount:       req.TableCount,
				Vehicle:          vehicle,
				PersonNights:     nights * req.PersonCount,
				State:            domain.StayStateReserved,
			}
			if err := store.Stays().Create(ctx, stay); err != nil {
				return err
			}
		}

		isResponsible := req.IsResponsible
		if isResponsible {
			responsibleCount, err := store.Occupants().CountResponsible(ctx, stay.ID)
			if err != nil {
				return err
			}
			if responsibleCount > 0 {
				isResponsible = false
			}
		}
		occupant = &domain.Occupant{
			Phone:              req.Phone,
			Name:               req.Name,
			StayID:             stay.ID,
			IsResponsibleParty: isResponsible,
			Age:                req.Age,
			RiskFlag:           req.RiskFlag,
			IllnessNote:        req.IllnessNote,
		}
		return store.Occupants().Create(ctx, occupant)
	})
	if err != nil {
		logger.ExitMethodWithError("stayService.CreateOrJoinStay", err, "phone", req.Phone)
		return nil, nil, err
	}

	s.notifier.Notify([]string{req.Phone},
		fmt.Sprintf("Welcome %s! Your stay is registered from %s to %s.", req.Name, stay.EntryDate, stay.PlannedExitDate),
		domain.NotificationKindWelcome, 0)

	logger.ExitMethod("stayService.CreateOrJoinStay", "stayID", stay.ID, "occupantID", occupant.ID)
	return stay, occupant, nil
}

// Liquidate confirms entry: the stay goes active, buffered parcel
// selections are committed under row locks, the initial payment is
// recorded, and an optional payment-promise date is kept when a balance
// remains. Everything happens in one transaction.
func (s *stayService) Liquidate(ctx context.Context, req LiquidateRequest) (*domain.Stay, int64, error) {
	logger.EnterMethod("stayService.Liquidate", "stayID", req.StayID)

	if req.DiscountCents < 0 {
		return nil, 0, fmt.Errorf("%w: discount cannot be negative", ErrInvalidInput)
	}

	var stay *domain.Stay
	var balance int64
	err := s.store.WithTx(ctx, func(store repository.Store) error {
		var err error
		stay, err = getStayLocked(ctx, store, req.StayID)
		if err != nil {
			return err
		}
		if stay.State != domain.StayStateReserved {
			return fmt.Errorf("%w: stay %d is %s, expected %s", ErrInvalidState, stay.ID, stay.State, domain.StayStateReserved)
		}

		selections, err := store.Parcels().ListSelections(ctx, stay.ID)
		if err != nil {
			return err
		}
		for _, sel := range selections {
			parcel, err := store.Parcels().GetByIDForUpdate(ctx, sel.ParcelID)
			if err != nil {
				return err
			}
			if err := occupyParcelLocked(ctx, store, parcel, stay.ID); err != nil {
				return err
			}
		}
		if err := store.Parcels().DeleteSelections(ctx, stay.ID); err != nil {
			return err
		}

		stay.DiscountCents = req.DiscountCents
		stay.EntryConfirmed = true
		stay.State = domain.StayStateActive
		if err := regenerateParcelNames(ctx, store, stay); err != nil {
			return err
		}

		if req.Payment != nil {
			if _, err := recordPaymentTx(ctx, store, stay.ID, req.Payment); err != nil {
				return err
			}
		}

		rates, err := store.Tariffs().Snapshot(ctx, time.Now())
		if err != nil {
			return err
		}
		_, due, err := stayTotalDue(ctx, store, stay, rates)
		if err != nil {
			return err
		}
		paid, err := store.Payments().SumByStay(ctx, stay.ID)
		if err != nil {
			return err
		}
		balance = due - paid
		if balance > 0 && req.PromiseDate != nil {
			if _, err := utils.ParseDate(*req.PromiseDate); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
			stay.PaymentPromiseDate = req.PromiseDate
		}
		return store.Stays().Update(ctx, stay)
	})
	if err != nil {
		logger.ExitMethodWithError("stayService.Liquidate", err, "stayID", req.StayID)
		return nil, 0, err
	}

	if req.Payment != nil {
		s.notifier.Notify([]string{stay.ResponsiblePhone},
			fmt.Sprintf("Payment of %s received. Outstanding balance: %s.", utils.FormatCents(req.Payment.AmountCents), utils.FormatCents(balance)),
			domain.NotificationKindReceipt, 0)
	}

	logger.ExitMethod("stayService.Liquidate", "stayID", stay.ID, "balance", balance)
	return stay, balance, nil
}

func extendStayLocked(ctx context.Context, store repository.Store, stay *domain.Stay, newExitDate string) (int32, error) {
	delta, err := utils.DaysBetween(stay.PlannedExitDate, newExitDate)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if delta == 0 {
		return 0, nil
	}
	stay.PlannedExitDate = newExitDate
	stay.PersonNights += delta * stay.PersonCount
	return delta, store.Stays().Update(ctx, stay)
}

func (s *stayService) Extend(ctx context.Context, stayID int64, newExitDate string, payment *PaymentInput) (*domain.Stay, error) {
	logger.EnterMethod("stayService.Extend", "stayID", stayID, "newExitDate", newExitDate)

	var stay *domain.Stay
	err := s.store.WithTx(ctx, func(store repository.Store) error {
		var err error
		stay, err = getStayLocked(ctx, store, stayID)
		if err != nil {
			return err
		}
		if stay.State != domain.StayStateActive {
			return fmt.Errorf("%w: stay %d is %s, expected %s", ErrInvalidState, stay.ID, stay.State, domain.StayStateActive)
		}
		delta, err := extendStayLocked(ctx, store, stay, newExitDate)
		if err != nil {
			return err
		}
		if delta == 0 {
			return fmt.Errorf("%w: new exit date %s does not extend the stay", ErrInvalidInput, newExitDate)
		}
		if payment != nil {
			if _, err := recordPaymentTx(ctx, store, stay.ID, payment); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("stayService.Extend", err, "stayID", stayID)
		return nil, err
	}

	logger.ExitMethod("stayService.Extend", "stayID", stay.ID, "plannedExitDate", stay.PlannedExitDate)
	return stay, nil
}

// ExtendGroup pushes every active stay of the responsible-party group to
// the new exit date. Each member's day delta is computed against its own
// planned exit; members already planning to stay past the date are left
// alone.
func (s *stayService) ExtendGroup(ctx context.Context, phone, newExitDate string, payment *PaymentInput) ([]domain.Stay, error) {
	logger.EnterMethod("stayService.ExtendGroup", "phone", phone, "newExitDate", newExitDate)

	var extended []domain.Stay
	err := s.store.WithTx(ctx, func(store repository.Store) error {
		stays, err := store.Stays().ListByPhone(ctx, phone, false)
		if err != nil {
			return err
		}
		var primary *domain.Stay
		for i := range stays {
			if stays[i].State != domain.StayStateActive {
				continue
			}
			stay, err := getStayLocked(ctx, store, stays[i].ID)
			if err != nil {
				return err
			}
			if primary == nil {
				primary = stay
			}
			if stay.PlannedExitDate >= newExitDate {
				continue
			}
			if _, err := extendStayLocked(ctx, store, stay, newExitDate); err != nil {
				return err
			}
			extended = append(extended, *stay)
		}
		if primary == nil {
			return fmt.Errorf("%w: no active stays for phone %s", ErrNotFound, phone)
		}
		if payment != nil {
			if _, err := recordPaymentTx(ctx, store, primary.ID, payment); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("stayService.ExtendGroup", err, "phone", phone)
		return nil, err
	}

	logger.ExitMethod("stayService.ExtendGroup", "phone", phone, "extended", len(extended))
	return extended, nil
}

// Checkout finalizes the stay. The final amount is either the computed
// total plus a day-delta adjustment (actual minus planned days, at the
// stay's per-day rate) or a fully manual override; the two are mutually
// exclusive and the result is persisted as the stay's final amount.
// Parcels are released through an authoritative recount.
func (s *stayService) Checkout(ctx context.Context, req CheckoutRequest) (*domain.Stay, int64, error) {
	logger.EnterMethod("stayService.Checkout", "stayID", req.StayID, "actualExitDate", req.ActualExitDate)

	if req.ActualExitDate == "" {
		return nil, 0, fmt.Errorf("%w: actual exit date is required", ErrInvalidInput)
	}

	var stay *domain.Stay
	var balance int64
	err := s.store.WithTx(ctx, func(store repository.Store) error {
		var err error
		stay, err = getStayLocked(ctx, store, req.StayID)
		if err != nil {
			return err
		}
		if stay.State != domain.StayStateActive {
			return fmt.Errorf("%w: stay %d is %s, expected %s", ErrInvalidState, stay.ID, stay.State, domain.StayStateActive)
		}
		actualDays, err := utils.BillableDays(stay.EntryDate, req.ActualExitDate)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}

		rates, err := store.Tariffs().Snapshot(ctx, time.Now())
		if err != nil {
			return err
		}
		charge, err := buildStayCharge(ctx, store, stay)
		if err != nil {
			return err
		}

		var final int64
		if req.ManualOverrideCents != nil {
			final = *req.ManualOverrideCents
		} else {
			breakdown := utils.ComputeStayCost(charge, rates)
			adjustment := int64(actualDays-charge.Days) * utils.PerDayTotalCents(stay.PersonCount, charge, rates)
			final = breakdown.TotalCents + adjustment
		}

		exit := req.ActualExitDate
		stay.ActualExitDate = &exit
		stay.FinalAmountOverrideCents = &final
		stay.State = domain.StayStateFinalized

		if req.Payment != nil {
			if _, err := recordPaymentTx(ctx, store, stay.ID, req.Payment); err != nil {
				return err
			}
		}

		parcels, err := store.Parcels().ListByStay(ctx, stay.ID)
		if err != nil {
			return err
		}
		for i := range parcels {
			parcel, err := store.Parcels().GetByIDForUpdate(ctx, parcels[i].ID)
			if err != nil {
				return err
			}
			if err := store.Parcels().UnlinkStay(ctx, parcel.ID, stay.ID); err != nil {
				return err
			}
			if err := releaseParcelLocked(ctx, store, parcel, stay.ID); err != nil {
				return err
			}
		}

		paid, err := store.Payments().SumByStay(ctx, stay.ID)
		if err != nil {
			return err
		}
		balance = final - paid
		return store.Stays().Update(ctx, stay)
	})
	if err != nil {
		logger.ExitMethodWithError("stayService.Checkout", err, "stayID", req.StayID)
		return nil, 0, err
	}

	s.notifier.Notify([]string{stay.ResponsiblePhone},
		fmt.Sprintf("Checked out. Final amount %s, balance %s. Safe travels!",
			utils.FormatCents(*stay.FinalAmountOverrideCents), utils.FormatCents(balance)),
		domain.NotificationKindReceipt, 0)

	logger.ExitMethod("stayService.Checkout", "stayID", stay.ID, "final", *stay.FinalAmountOverrideCents, "balance", balance)
	return stay, balance, nil
}

func (s *stayService) RecordPayment(ctx context.Context, stayID, amountCents int64, method domain.PaymentMethod) (*domain.Payment, error) {
	logger.EnterMethod("stayService.RecordPayment", "stayID", stayID, "amount", amountCents)

	var payment *domain.Payment
	err := s.store.WithTx(ctx, func(store repository.Store) error {
		stay, err := getStayLocked(ctx, store, stayID)
		if err != nil {
			return err
		}
		if stay.State == domain.StayStateCancelled {
			return fmt.Errorf("%w: cannot pay against cancelled stay %d", ErrInvalidState, stayID)
		}
		payment, err = recordPaymentTx(ctx, store, stay.ID, &PaymentInput{AmountCents: amountCents, Method: method})
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("stayService.RecordPayment", err, "stayID", stayID)
		return nil, err
	}

	logger.ExitMethod("stayService.RecordPayment", "stayID", stayID, "paymentID", payment.ID)
	return payment, nil
}

// AddExtraCharge prices an ad-hoc rental at the tariff in force right
// now and stores the computed total; later tariff changes never re-price
// an already-agreed rental.
func (s *stayService) AddExtraCharge(ctx context.Context, stayID int64, kind domain.TariffCategory, quantity, days int32) (*domain.ExtraCharge, error) {
	logger.EnterMethod("stayService.AddExtraCharge", "stayID", stayID, "kind", kind)

	if quantity <= 0 || days <= 0 {
		return nil, fmt.Errorf("%w: quantity and days must be positive", ErrInvalidInput)
	}

	var charge *domain.ExtraCharge
	err := s.store.WithTx(ctx, func(store repository.Store) error {
		stay, err := getStayLocked(ctx, store, stayID)
		if err != nil {
			return err
		}
		if stay.State != domain.StayStateReserved && stay.State != domain.StayStateActive {
			return fmt.Errorf("%w: stay %d is %s", ErrInvalidState, stayID, stay.State)
		}
		rates, err := store.Tariffs().Snapshot(ctx, time.Now())
		if err != nil {
			return err
		}
		unit := rates.Rate(kind)
		charge = &domain.ExtraCharge{
			StayID:         stay.ID,
			Kind:           kind,
			Quantity:       quantity,
			Days:           days,
			UnitPriceCents: unit,
			TotalCents:     int64(quantity) * int64(days) * unit,
		}
		return store.ExtraCharges().Create(ctx, charge)
	})
	if err != nil {
		logger.ExitMethodWithError("stayService.AddExtraCharge", err, "stayID", stayID)
		return nil, err
	}

	logger.ExitMethod("stayService.AddExtraCharge", "stayID", stayID, "total", charge.TotalCents)
	return charge, nil
}

func (s *stayService) GetStay(ctx context.Context, stayID int64) (*domain.Stay, []domain.Occupant, error) {
	stay, err := s.store.Stays().GetByID(ctx, stayID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, fmt.Errorf("%w: stay %d", ErrNotFound, stayID)
		}
		return nil, nil, err
	}
	occupants, err := s.store.Occupants().ListByStay(ctx, stayID)
	if err != nil {
		return nil, nil, err
	}
	return stay, occupants, nil
}
