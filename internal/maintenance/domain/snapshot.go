package maintenance

// Snapshot is the export/import document: the union of the three persisted
// collections. The field names match the JSON files produced by earlier
// versions of the carnet so old exports remain importable.
type Snapshot struct {
	Machines      []Unit                    `json:"machines"`
	Interventions map[string][]Intervention `json:"interventions"`
	IDHistory     map[string]History        `json:"idHistory"`
}
