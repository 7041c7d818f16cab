package domain

import "time"

type ParcelState string

const (
	ParcelStateFree     ParcelState = "FREE"
	ParcelStateOccupied ParcelState = "OCCUPIED"
	ParcelStateReserved ParcelState = "RESERVED"
)

// Parcel is a physical plot or bed unit. Parcels can be shared: several
// stays may be linked to one parcel, and OccupantCount tracks how many
// active stays are linked. OwningStayID is the first stay that occupied
// the parcel; sharing stays never displace it.
type Parcel struct {
	ID            int64       `json:"id"`
	Name          string      `json:"name"` // unique, human-assigned ("12", "Cama 3")
	State         ParcelState `json:"state"`
	OccupantCount int32       `json:"occupant_count"`
	OwningStayID  *int64      `json:"owning_stay_id,omitempty"`
	PosX          int32       `json:"pos_x"`
	PosY          int32       `json:"pos_y"`
	// Bed units price per head at the bed rate and suppress the daily
	// parcel charge. Explicit flag, not a name heuristic.
	IsBedUnit bool      `json:"is_bed_unit"`
	CreatedOn time.Time `json:"created_on"`
}

// ParcelSelection is a provisional pick buffered between check-in and
// liquidation. Liquidation commits the buffered selections; a maintenance
// job purges the ones that expired uncommitted.
type ParcelSelection struct {
	ID        int64     `json:"id"`
	StayID    int64     `json:"stay_id"`
	ParcelID  int64     `json:"parcel_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedOn time.Time `json:"created_on"`
}
