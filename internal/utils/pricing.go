package utils

import (
	"fmt"
	"time"

	"campground-backend/internal/domain"
)

const dateLayout = "2006-01-02"

// ParseDate converts a yyyy-mm-dd formatted string into a time.Time.
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected yyyy-mm-dd", dateStr)
	}
	return t, nil
}

// FormatDate renders a time.Time as yyyy-mm-dd.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// DaysBetween returns the calendar-day difference end-start. Zero means
// same day; an error is returned when end precedes start.
func DaysBetween(start, end string) (int32, error) {
	s, err := ParseDate(start)
	if err != nil {
		return 0, fmt.Errorf("invalid start date: %w", err)
	}
	e, err := ParseDate(end)
	if err != nil {
		return 0, fmt.Errorf("invalid end date: %w", err)
	}
	days := int32(e.Sub(s).Hours() / 24)
	if days < 0 {
		return 0, fmt.Errorf("end date %s precedes start date %s", end, start)
	}
	return days, nil
}

// BillableDays applies the minimum one-night policy: a same-day stay
// still pays one night.
func BillableDays(start, end string) (int32, error) {
	days, err := DaysBetween(start, end)
	if err != nil {
		return 0, err
	}
	if days < 1 {
		days = 1
	}
	return days, nil
}

// MaxDate and MinDate compare yyyy-mm-dd strings; the layout sorts
// lexicographically so plain string comparison is exact.
func MaxDate(a, b string) string {
	if a > b {
		return a
	}
	return b
}

func MinDate(a, b string) string {
	if a < b {
		return a
	}
	return b
}

// VehicleRateCents resolves the daily vehicle charge from a snapshot.
func VehicleRateCents(rates domain.TariffSnapshot, v domain.VehicleType) int64 {
	switch v {
	case domain.VehicleMotorcycle:
		return rates.Rate(domain.TariffCategoryMotorcycle)
	case domain.VehicleCar:
		return rates.Rate(domain.TariffCategoryCar)
	default:
		return 0
	}
}

// StayCharge carries the billable facts of a stay into the cost
// computation, decoupled from persistence.
type StayCharge struct {
	PersonNights  int32
	Days          int32 // billable base duration, already floored at 1
	TentCount     int32
	ChairCount    int32
	TableCount    int32
	Vehicle       domain.VehicleType
	BedUnit       bool // stay is housed in a bed unit (priced per head)
	ExtrasCents   int64
	DiscountCents int64
}

// CostBreakdown itemizes a stay's accrued charges. TotalCents may be
// negative: an overpaid or over-discounted stay is a refund state to
// surface, never to clamp.
type CostBreakdown struct {
	PersonCents   int64 `json:"person_cents"`
	LodgingCents  int64 `json:"lodging_cents"`
	ExtrasCents   int64 `json:"extras_cents"`
	DiscountCents int64 `json:"discount_cents"`
	TotalCents    int64 `json:"total_cents"`
}

// ComputeStayCost derives the accrued charges of a stay from a tariff
// snapshot.
//
// The person component is PersonNights times the person rate — the
// accumulator, not nights*persons, so extended and fused stays keep the
// nights they accrued. A bed unit prices people at the bed rate and
// suppresses the daily tent/parcel charge; chairs, tables and vehicles
// charge the same either way.
func ComputeStayCost(ch StayCharge, rates domain.TariffSnapshot) CostBreakdown {
	personRate := rates.Rate(domain.TariffCategoryPerson)
	if ch.BedUnit {
		personRate = rates.Rate(domain.TariffCategoryBed)
	}
	person := int64(ch.PersonNights) * personRate

	days := int64(ch.Days)
	var lodging int64
	if !ch.BedUnit {
		lodging += int64(ch.TentCount) * rates.Rate(domain.TariffCategoryParcel) * days
	}
	lodging += int64(ch.ChairCount) * rates.Rate(domain.TariffCategoryChair) * days
	lodging += int64(ch.TableCount) * rates.Rate(domain.TariffCategoryTable) * days
	lodging += VehicleRateCents(rates, ch.Vehicle) * days

	total := person + lodging + ch.ExtrasCents - ch.DiscountCents
	return CostBreakdown{
		PersonCents:   person,
		LodgingCents:  lodging,
		ExtrasCents:   ch.ExtrasCents,
		DiscountCents: ch.DiscountCents,
		TotalCents:    total,
	}
}

// PerDayTotalCents is the rate one further (or one fewer) day of the stay
// is worth: the per-night person charge for the current headcount plus
// the daily lodging charges. Checkout day-delta adjustments use this.
func PerDayTotalCents(personCount int32, ch StayCharge, rates domain.TariffSnapshot) int64 {
	personRate := rates.Rate(domain.TariffCategoryPerson)
	if ch.BedUnit {
		personRate = rates.Rate(domain.TariffCategoryBed)
	}
	perDay := int64(personCount) * personRate
	if !ch.BedUnit {
		perDay += int64(ch.TentCount) * rates.Rate(domain.TariffCategoryParcel)
	}
	perDay += int64(ch.ChairCount) * rates.Rate(domain.TariffCategoryChair)
	perDay += int64(ch.TableCount) * rates.Rate(domain.TariffCategoryTable)
	perDay += VehicleRateCents(rates, ch.Vehicle)
	return perDay
}

// FormatCents renders integer cents as a currency string for display.
// This is the only place amounts are rounded or formatted.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
