package domain

import (
	"strings"
	"time"
)

type StayState string

const (
	StayStateReserved  StayState = "RESERVED"
	StayStateActive    StayState = "ACTIVE"
	StayStateFinalized StayState = "FINALIZED"
	StayStateCancelled StayState = "CANCELLED"
)

type VehicleType string

const (
	VehicleNone       VehicleType = "NONE"
	VehicleCar        VehicleType = "CAR"
	VehicleMotorcycle VehicleType = "MOTORCYCLE"
)

// NormalizeVehicle maps free-form registration input onto a vehicle type.
// Empty, "none" and the legacy "ninguno" mean no vehicle; "moto" and
// variants mean motorcycle; any other non-empty value charges as a car.
func NormalizeVehicle(s string) VehicleType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "ninguno":
		return VehicleNone
	case "moto", "motorcycle", "motorbike":
		return VehicleMotorcycle
	default:
		return VehicleCar
	}
}

// MergeVehicle resolves the vehicle type of a fused stay by priority
// car > motorcycle > none, regardless of which stay survives the merge.
func MergeVehicle(a, b VehicleType) VehicleType {
	if a == VehicleCar || b == VehicleCar {
		return VehicleCar
	}
	if a == VehicleMotorcycle || b == VehicleMotorcycle {
		return VehicleMotorcycle
	}
	return VehicleNone
}

// Stay is one booking unit: a group sharing a responsible payer over a
// date range.
//
// PersonNights is an accumulator, not a derived value. Every operation
// that adds people, extends dates or merges stays adds its own delta;
// recomputing it as nights*persons would silently lose the history of
// merged and extended stays.
type Stay struct {
	ID               int64   `json:"id"`
	ResponsiblePhone string  `json:"responsible_phone"`
	EntryDate        string  `json:"entry_date"`        // yyyy-mm-dd
	PlannedExitDate  string  `json:"planned_exit_date"` // yyyy-mm-dd
	ActualExitDate   *string `json:"actual_exit_date,omitempty"`

	PersonCount int32       `json:"person_count"`
	TentCount   int32       `json:"tent_count"`
	ChairCount  int32       `json:"chair_count"`
	TableCount  int32       `json:"table_count"`
	Vehicle     VehicleType `json:"vehicle"`

	PersonNights             int32  `json:"person_nights"`
	DiscountCents            int64  `json:"discount_cents"`
	FinalAmountOverrideCents *int64 `json:"final_amount_override_cents,omitempty"`

	State              StayState `json:"state"`
	EntryConfirmed     bool      `json:"entry_confirmed"`
	PaymentPromiseDate *string   `json:"payment_promise_date,omitempty"`

	// ParcelNames is a display string regenerated from the stay_parcels
	// association; it is never used as a join key.
	ParcelNames string `json:"parcel_names"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// ExtraCharge is an ad-hoc itemized rental added outside the base
// resource counts. The total is computed from the tariff in force at
// insertion time and never re-priced.
type ExtraCharge struct {
	ID             int64          `json:"id"`
	StayID         int64          `json:"stay_id"`
	Kind           TariffCategory `json:"kind"`
	Quantity       int32          `json:"quantity"`
	Days           int32          `json:"days"`
	UnitPriceCents int64          `json:"unit_price_cents"`
	TotalCents     int64          `json:"total_cents"`
	CreatedOn      time.Time      `json:"created_on"`
}
