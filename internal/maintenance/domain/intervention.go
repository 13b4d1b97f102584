package maintenance

import "strings"

// Kind classifies a maintenance intervention.
type Kind string

const (
	KindMaintenance Kind = "maintenance"
	KindRepair      Kind = "repair"
	KindInspection  Kind = "inspection"
	KindReplacement Kind = "replacement"
)

// Intervention is one maintenance event. Interventions are stored per unit id,
// newest first; Date is kept in ISO form internally regardless of the
// representation callers supply.
type Intervention struct {
	Date        string `json:"date"`
	Kind        Kind   `json:"kind"`
	Description string `json:"description"`
	Technician  string `json:"technician"`
}

// Validate checks creation preconditions. The description is the only hard
// requirement; everything else is the caller's concern.
func (i Intervention) Validate() error {
	if strings.TrimSpace(i.Description) == "" {
		return ErrEmptyDescription
	}
	return nil
}
