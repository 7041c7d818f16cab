package domain

import (
	"strings"
	"time"
)

// Occupant is one person linked to exactly one stay. At most one occupant
// per stay carries IsResponsibleParty; the fusion service tolerates and
// corrects stays where two ended up flagged.
type Occupant struct {
	ID                 int64     `json:"id"`
	Phone              string    `json:"phone"` // effectively unique; suffixed on collision
	Name               string    `json:"name"`
	StayID             int64     `json:"stay_id"`
	IsResponsibleParty bool      `json:"is_responsible_party"`
	Age                int32     `json:"age"`
	RiskFlag           bool      `json:"risk_flag"`
	IllnessNote        string    `json:"illness_note"`
	CreatedOn          time.Time `json:"created_on"`
}

// RiskAgeThreshold is the age at or above which an occupant counts as a
// medical-risk person independent of any explicit flag.
const RiskAgeThreshold = 65

// IsAtRisk is the single rule set for the medical-risk classification:
// an explicit flag, age at or above RiskAgeThreshold, or any non-blank
// illness note. The note's content is not keyword-matched; staff wrote it
// because it matters.
func IsAtRisk(age int32, explicitFlag bool, illnessNote string) bool {
	if explicitFlag {
		return true
	}
	if age >= RiskAgeThreshold {
		return true
	}
	return strings.TrimSpace(illnessNote) != ""
}

// AtRisk reports the occupant's medical-risk classification.
func (o *Occupant) AtRisk() bool {
	return IsAtRisk(o.Age, o.RiskFlag, o.IllnessNote)
}
