package maintenance

// Identifier field labels recorded in the audit trail.
const (
	FieldSerialNumber      = "serialNumber"
	FieldSecondaryDeviceID = "secondaryDeviceId"
)

// HistoryEntry is one audit record of an identifier change. Date is captured
// at write time in display form.
type HistoryEntry struct {
	Date          string `json:"date"`
	Field         string `json:"field"`
	PreviousValue string `json:"previousValue"`
	NewValue      string `json:"newValue"`
	EditedBy      string `json:"editedBy,omitempty"`
}

// History holds the per-unit audit trail, newest first. An empty Entries
// slice is the expected state for untouched units.
type History struct {
	Entries []HistoryEntry `json:"entries"`
}
