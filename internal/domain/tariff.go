package domain

import "time"

type TariffCategory string

const (
	TariffCategoryPerson     TariffCategory = "PERSON"
	TariffCategoryParcel     TariffCategory = "PARCEL"
	TariffCategoryBed        TariffCategory = "BED"
	TariffCategoryChair      TariffCategory = "CHAIR"
	TariffCategoryTable      TariffCategory = "TABLE"
	TariffCategoryCar        TariffCategory = "CAR"
	TariffCategoryMotorcycle TariffCategory = "MOTORCYCLE"
)

// Tariff is one time-versioned price entry. Rows are append-only; the
// effective rate for a category is the entry with the latest
// effective_from that is <= the query time.
type Tariff struct {
	ID            int64          `json:"id"`
	Category      TariffCategory `json:"category"`
	AmountCents   int64          `json:"amount_cents"`
	EffectiveFrom time.Time      `json:"effective_from"`
	CreatedOn     time.Time      `json:"created_on"`
}

// TariffSnapshot holds the effective rate per category, resolved once at
// the start of an operation so every line of a settlement is priced from
// the same version of the catalog.
type TariffSnapshot map[TariffCategory]int64

// Rate returns the snapshot rate for a category. A category without a
// published rate prices at zero; that is occupancy without the resource,
// not an error.
func (s TariffSnapshot) Rate(c TariffCategory) int64 {
	return s[c]
}
