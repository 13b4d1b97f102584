package maintenance

import "fmt"

// Status is the operational state of a unit.
type Status string

const (
	StatusFunctional   Status = "functional"
	StatusOutOfService Status = "out_of_service"
	StatusUnverified   Status = "unverified"
)

// NormalizeStatus maps a stored status value onto the known set. Legacy
// datasets exported from the original carnet carry French labels; those are
// accepted and rewritten. The second return reports whether the value was
// recognized.
func NormalizeStatus(s Status) (Status, bool) {
	switch s {
	case StatusFunctional, StatusOutOfService, StatusUnverified:
		return s, true
	case "Fonctionnel":
		return StatusFunctional, true
	case "HS":
		return StatusOutOfService, true
	case "Non vérifié":
		return StatusUnverified, true
	}
	return StatusUnverified, false
}

// Label returns the human-readable form used in reports.
func (s Status) Label() string {
	switch s {
	case StatusFunctional:
		return "Functional"
	case StatusOutOfService:
		return "Out of service"
	case StatusUnverified:
		return "Unverified"
	}
	return string(s)
}

// Unit is one tracked heat-pump unit. ID is the stable primary key; Floor is
// derived from the id prefix and rewritten on every reconciliation.
type Unit struct {
	ID                     string `json:"id"`
	Floor                  string `json:"floor"`
	Status                 Status `json:"status"`
	LastVerifiedDate       string `json:"lastVerifiedDate"`
	PlannedMaintenanceDate string `json:"plannedMaintenanceDate"`
	Notes                  string `json:"notes"`
	SerialNumber           string `json:"serialNumber"`
	SecondaryDeviceID      string `json:"secondaryDeviceId"`
}

// Validate checks unit invariants.
func (u Unit) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("%w: unit with empty id", ErrMalformedSnapshot)
	}
	if _, ok := NormalizeStatus(u.Status); !ok {
		return fmt.Errorf("%w: unit %s has unknown status %q", ErrMalformedSnapshot, u.ID, u.Status)
	}
	return nil
}

// UnitPatch is a partial update; nil fields are left untouched.
type UnitPatch struct {
	Status                 *Status
	LastVerifiedDate       *string
	PlannedMaintenanceDate *string
	Notes                  *string
	SerialNumber           *string
	SecondaryDeviceID      *string
}

// Apply merges the supplied fields into the unit.
func (u *Unit) Apply(p UnitPatch) {
	if p.Status != nil {
		u.Status = *p.Status
	}
	if p.LastVerifiedDate != nil {
		u.LastVerifiedDate = *p.LastVerifiedDate
	}
	if p.PlannedMaintenanceDate != nil {
		u.PlannedMaintenanceDate = *p.PlannedMaintenanceDate
	}
	if p.Notes != nil {
		u.Notes = *p.Notes
	}
	if p.SerialNumber != nil {
		u.SerialNumber = *p.SerialNumber
	}
	if p.SecondaryDeviceID != nil {
		u.SecondaryDeviceID = *p.SecondaryDeviceID
	}
}
