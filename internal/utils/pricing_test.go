package utils

import (
	"testing"

	"campground-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRates() domain.TariffSnapshot {
	return domain.TariffSnapshot{
		domain.TariffCategoryPerson:     1000,
		domain.TariffCategoryParcel:     500,
		domain.TariffCategoryBed:        1500,
		domain.TariffCategoryChair:      100,
		domain.TariffCategoryTable:      200,
		domain.TariffCategoryCar:        400,
		domain.TariffCategoryMotorcycle: 250,
	}
}

func TestDaysBetween(t *testing.T) {
	days, err := DaysBetween("2026-09-01", "2026-09-04")
	require.NoError(t, err)
	assert.Equal(t, int32(3), days)

	days, err = DaysBetween("2026-09-01", "2026-09-01")
	require.NoError(t, err)
	assert.Equal(t, int32(0), days)

	_, err = DaysBetween("2026-09-04", "2026-09-01")
	assert.Error(t, err)

	_, err = DaysBetween("09/01/2026", "2026-09-04")
	assert.Error(t, err)
}

func TestBillableDays_MinimumOneNight(t *testing.T) {
	days, err := BillableDays("2026-09-01", "2026-09-01")
	require.NoError(t, err)
	assert.Equal(t, int32(1), days)

	days, err = BillableDays("2026-09-01", "2026-09-05")
	require.NoError(t, err)
	assert.Equal(t, int32(4), days)
}

func TestMinMaxDate(t *testing.T) {
	assert.Equal(t, "2026-09-01", MinDate("2026-09-01", "2026-09-04"))
	assert.Equal(t, "2026-09-04", MaxDate("2026-09-01", "2026-09-04"))
	assert.Equal(t, "2026-09-01", MinDate("2026-09-01", "2026-09-01"))
}

func TestComputeStayCost_PersonNightsPlusLodging(t *testing.T) {
	// Two people, three nights, one tent: 6*1000 + 1*3*500.
	got := ComputeStayCost(StayCharge{
		PersonNights: 6, Days: 3, TentCount: 1,
	}, testRates())

	assert.Equal(t, int64(6000), got.PersonCents)
	assert.Equal(t, int64(1500), got.LodgingCents)
	assert.Equal(t, int64(7500), got.TotalCents)
}

func TestComputeStayCost_BedUnit(t *testing.T) {
	// A bed unit reprices people and suppresses the tent charge; chairs
	// and vehicles still bill per day.
	got := ComputeStayCost(StayCharge{
		PersonNights: 4, Days: 2, TentCount: 1, ChairCount: 2,
		Vehicle: domain.VehicleCar, BedUnit: true,
	}, testRates())

	assert.Equal(t, int64(6000), got.PersonCents)
	assert.Equal(t, int64(2*100*2+400*2), got.LodgingCents)
	assert.Equal(t, int64(7200), got.TotalCents)
}

func TestComputeStayCost_NegativeTotalNotClamped(t *testing.T) {
	got := ComputeStayCost(StayCharge{
		PersonNights: 1, Days: 1, DiscountCents: 5000,
	}, testRates())
	assert.Equal(t, int64(-4000), got.TotalCents)
}

func TestComputeStayCost_ExtrasAndDiscount(t *testing.T) {
	got := ComputeStayCost(StayCharge{
		PersonNights: 2, Days: 2, ExtrasCents: 600, DiscountCents: 300,
	}, testRates())
	assert.Equal(t, int64(600), got.ExtrasCents)
	assert.Equal(t, int64(2000+600-300), got.TotalCents)
}

func TestPerDayTotalCents(t *testing.T) {
	rates := testRates()

	perDay := PerDayTotalCents(2, StayCharge{TentCount: 1}, rates)
	assert.Equal(t, int64(2*1000+500), perDay)

	perDay = PerDayTotalCents(3, StayCharge{BedUnit: true, TentCount: 1, TableCount: 1}, rates)
	assert.Equal(t, int64(3*1500+200), perDay)

	perDay = PerDayTotalCents(1, StayCharge{Vehicle: domain.VehicleMotorcycle}, rates)
	assert.Equal(t, int64(1000+250), perDay)
}

func TestVehicleRateCents(t *testing.T) {
	rates := testRates()
	assert.Equal(t, int64(400), VehicleRateCents(rates, domain.VehicleCar))
	assert.Equal(t, int64(250), VehicleRateCents(rates, domain.VehicleMotorcycle))
	assert.Equal(t, int64(0), VehicleRateCents(rates, domain.VehicleNone))
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "75.00", FormatCents(7500))
	assert.Equal(t, "0.05", FormatCents(5))
	assert.Equal(t, "-16.00", FormatCents(-1600))
}
