package service

import (
	"context"
	"fmt"
	"time"

	"campground-backend/internal/domain"
	"campground-backend/internal/logger"
	"campground-backend/internal/repository"
	"campground-backend/internal/utils"
)

var tariffCategories = map[domain.TariffCategory]bool{
	domain.TariffCategoryPerson:     true,
	domain.TariffCategoryParcel:     true,
	domain.TariffCategoryBed:        true,
	domain.TariffCategoryChair:      true,
	domain.TariffCategoryTable:      true,
	domain.TariffCategoryCar:        true,
	domain.TariffCategoryMotorcycle: true,
}

type tariffService struct {
	store repository.Store
}

func NewTariffService(store repository.Store) TariffService {
	return &tariffService{store: store}
}

func (s *tariffService) SetTariff(ctx context.Context, category domain.TariffCategory, amountCents int64, effectiveFrom string) (*domain.Tariff, error) {
	logger.EnterMethod("tariffService.SetTariff", "category", category, "amount", amountCents)

	if !tariffCategories[category] {
		return nil, fmt.Errorf("%w: unknown tariff category %q", ErrInvalidInput, category)
	}
	if amountCents < 0 {
		return nil, fmt.Errorf("%w: tariff amount cannot be negative", ErrInvalidInput)
	}
	from, err := utils.ParseDate(effectiveFrom)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	tariff := &domain.Tariff{
		Category:      category,
		AmountCents:   amountCents,
		EffectiveFrom: from,
	}
	if err := s.store.Tariffs().Insert(ctx, tariff); err != nil {
		logger.ExitMethodWithError("tariffService.SetTariff", err, "category", category)
		return nil, err
	}

	logger.ExitMethod("tariffService.SetTariff", "category", category, "id", tariff.ID)
	return tariff, nil
}

func (s *tariffService) History(ctx context.Context, category domain.TariffCategory) ([]domain.Tariff, error) {
	if !tariffCategories[category] {
		return nil, fmt.Errorf("%w: unknown tariff category %q", ErrInvalidInput, category)
	}
	return s.store.Tariffs().ListHistory(ctx, category)
}

func (s *tariffService) CurrentRates(ctx context.Context) (domain.TariffSnapshot, error) {
	return s.store.Tariffs().Snapshot(ctx, time.Now())
}
