// Package application implements the maintenance repository: the single
// owner of the unit registry working set, the intervention log, and the
// identifier-change audit trail.
package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	maintenance "carnet-pac/internal/maintenance/domain"
	"carnet-pac/internal/observability/metrics"
	"carnet-pac/internal/registry"
)

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Statistics aggregates unit states.
type Statistics struct {
	Total        int `json:"total"`
	Functional   int `json:"functional"`
	OutOfService int `json:"outOfService"`
	Unverified   int `json:"unverified"`
}

// UnitOverride customizes one unit inside a bulk maintenance run.
type UnitOverride struct {
	Description string
	Status      maintenance.Status
}

// BulkOptions carries the per-unit overrides of a bulk maintenance run.
// Overridden descriptions are only applied when UseUnitDescriptions is set,
// mirroring the collective-maintenance form which collects them all but lets
// the operator choose whether they count.
type BulkOptions struct {
	UseUnitDescriptions bool
	Overrides           map[string]UnitOverride
}

// Service is the maintenance repository. All public methods are safe for
// concurrent use; every mutation persists before returning. A failed durable
// write is logged and counted, the in-memory state stays authoritative and
// the next successful write self-heals the store.
type Service struct {
	mu       sync.RWMutex
	store    maintenance.Store
	registry *registry.Registry
	clock    Clock
	logger   *log.Logger

	units         []maintenance.Unit
	interventions map[string][]maintenance.Intervention
	history       map[string]maintenance.History
}

// NewService constructs the repository. Call Load before use.
func NewService(store maintenance.Store, reg *registry.Registry, clock Clock, logger *log.Logger) (*Service, error) {
	if store == nil {
		return nil, errors.New("maintenance service: nil store")
	}
	if reg == nil {
		return nil, errors.New("maintenance service: nil registry")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		store:         store,
		registry:      reg,
		clock:         clock,
		logger:        logger,
		interventions: make(map[string][]maintenance.Intervention),
		history:       make(map[string]maintenance.History),
	}, nil
}

// Load reads the three collections from the store, synthesizing defaults for
// an empty database, then reconciles against the canonical id set and writes
// the reconciled state back. Reconciliation is idempotent: running it on an
// already-reconciled dataset changes nothing.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	units, err := loadBucket[[]maintenance.Unit](ctx, s.store, maintenance.KeyMachines)
	if err != nil {
		return err
	}
	interventions, err := loadBucket[map[string][]maintenance.Intervention](ctx, s.store, maintenance.KeyInterventions)
	if err != nil {
		return err
	}
	history, err := loadBucket[map[string]maintenance.History](ctx, s.store, maintenance.KeyIDHistory)
	if err != nil {
		return err
	}

	s.units = units
	s.interventions = interventions
	s.history = history
	if s.interventions == nil {
		s.interventions = make(map[string][]maintenance.Intervention)
	}
	if s.history == nil {
		s.history = make(map[string]maintenance.History)
	}

	s.reconcileLocked()
	s.persistAllLocked(ctx)
	return nil
}

func loadBucket[T any](ctx context.Context, store maintenance.Store, key string) (T, error) {
	var out T
	data, err := store.Get(ctx, key)
	if err != nil {
		return out, fmt.Errorf("load %s: %w", key, err)
	}
	if data == nil {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", key, err)
	}
	return out, nil
}

// reconcileLocked prunes entries keyed by non-canonical ids, synthesizes
// missing canonical units, re-derives floors and normalizes legacy field
// values. Intervention sequences stay only for units that have at least one
// entry; history gets an (possibly empty) entry for every canonical id.
func (s *Service) reconcileLocked() {
	seen := make(map[string]struct{}, len(s.units))
	kept := make([]maintenance.Unit, 0, len(s.units))
	for _, u := range s.units {
		if !s.registry.Contains(u.ID) {
			continue
		}
		if _, dup := seen[u.ID]; dup {
			continue
		}
		seen[u.ID] = struct{}{}
		u.Floor = s.registry.DeriveFloor(u.ID)
		u.Status, _ = maintenance.NormalizeStatus(u.Status)
		if u.LastVerifiedDate == "" {
			u.LastVerifiedDate = maintenance.UnsetDate
		}
		if u.PlannedMaintenanceDate == "" {
			u.PlannedMaintenanceDate = maintenance.UnsetDate
		}
		kept = append(kept, u)
	}
	for _, id := range s.registry.CanonicalIDs() {
		if _, ok := seen[id]; !ok {
			kept = append(kept, s.defaultUnit(id))
		}
	}
	s.units = kept

	for id, seq := range s.interventions {
		if !s.registry.Contains(id) || len(seq) == 0 {
			delete(s.interventions, id)
		}
	}
	for id := range s.history {
		if !s.registry.Contains(id) {
			delete(s.history, id)
		}
	}
	for _, id := range s.registry.CanonicalIDs() {
		h := s.history[id]
		if h.Entries == nil {
			h.Entries = make([]maintenance.HistoryEntry, 0)
		}
		s.history[id] = h
	}
}

func (s *Service) defaultUnit(id string) maintenance.Unit {
	return maintenance.Unit{
		ID:                     id,
		Floor:                  s.registry.DeriveFloor(id),
		Status:                 maintenance.StatusUnverified,
		LastVerifiedDate:       maintenance.UnsetDate,
		PlannedMaintenanceDate: maintenance.UnsetDate,
	}
}

// persistBucket writes one collection. Store failures are deliberately
// non-fatal: the in-memory state remains the source of truth and the error
// surfaces through the log and the persist-failure counter only.
func (s *Service) persistBucket(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err == nil {
		err = s.store.Set(ctx, key, data)
	}
	if err != nil {
		metrics.IncPersistFailure(key)
		s.logger.Printf("maintenance: persist %s failed: %v", key, err)
	}
}

func (s *Service) persistAllLocked(ctx context.Context) {
	s.persistBucket(ctx, maintenance.KeyMachines, s.units)
	s.persistBucket(ctx, maintenance.KeyInterventions, s.interventions)
	s.persistBucket(ctx, maintenance.KeyIDHistory, s.history)
}

// GetAll returns a snapshot copy of every unit.
func (s *Service) GetAll() []maintenance.Unit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]maintenance.Unit, len(s.units))
	copy(out, s.units)
	return out
}

// GetByID returns one unit by id.
func (s *Service) GetByID(id string) (maintenance.Unit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.units[i], true
	}
	return maintenance.Unit{}, false
}

func (s *Service) indexLocked(id string) int {
	for i := range s.units {
		if s.units[i].ID == id {
			return i
		}
	}
	return -1
}

// Update merges the supplied fields into the unit and persists.
func (s *Service) Update(ctx context.Context, id string, patch maintenance.UnitPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.updateLocked(ctx, id, patch)
	metrics.ObserveOperation("update", err)
	return err
}

func (s *Service) updateLocked(ctx context.Context, id string, patch maintenance.UnitPatch) error {
	i := s.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", maintenance.ErrUnitNotFound, id)
	}
	s.units[i].Apply(patch)
	s.persistBucket(ctx, maintenance.KeyMachines, s.units)
	return nil
}

// UpdateSerialNumber records an audit entry and updates the unit's serial
// number. Writing the current value back is a successful no-op: no entry, no
// store write.
func (s *Service) UpdateSerialNumber(ctx context.Context, id, value, editedBy string) error {
	err := s.updateIdentifier(ctx, id, maintenance.FieldSerialNumber, value, editedBy)
	metrics.ObserveOperation("update_serial_number", err)
	return err
}

// UpdateSecondaryDeviceID records an audit entry and updates the unit's
// secondary device id, with the same no-op-on-unchanged rule.
func (s *Service) UpdateSecondaryDeviceID(ctx context.Context, id, value, editedBy string) error {
	err := s.updateIdentifier(ctx, id, maintenance.FieldSecondaryDeviceID, value, editedBy)
	metrics.ObserveOperation("update_secondary_device_id", err)
	return err
}

func (s *Service) updateIdentifier(ctx context.Context, id, field, value, editedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", maintenance.ErrUnitNotFound, id)
	}

	var current string
	patch := maintenance.UnitPatch{}
	switch field {
	case maintenance.FieldSerialNumber:
		current = s.units[i].SerialNumber
		patch.SerialNumber = &value
	case maintenance.FieldSecondaryDeviceID:
		current = s.units[i].SecondaryDeviceID
		patch.SecondaryDeviceID = &value
	default:
		return fmt.Errorf("maintenance: unknown identifier field %q", field)
	}
	if current == value {
		return nil
	}

	entry := maintenance.HistoryEntry{
		Date:          maintenance.FormatDisplay(s.clock.Now()),
		Field:         field,
		PreviousValue: current,
		NewValue:      value,
		EditedBy:      editedBy,
	}
	h := s.history[id]
	h.Entries = append([]maintenance.HistoryEntry{entry}, h.Entries...)
	s.history[id] = h
	s.persistBucket(ctx, maintenance.KeyIDHistory, s.history)

	return s.updateLocked(ctx, id, patch)
}

// GetHistory returns the identifier audit trail for a unit, newest first.
func (s *Service) GetHistory(id string) []maintenance.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.history[id].Entries
	out := make([]maintenance.HistoryEntry, len(entries))
	copy(out, entries)
	return out
}

// DeleteHistoryEntry removes one audit record by position.
func (s *Service) DeleteHistoryEntry(ctx context.Context, id string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	h := s.history[id]
	if index < 0 || index >= len(h.Entries) {
		err = fmt.Errorf("%w: history[%d] of %s", maintenance.ErrIndexOutOfRange, index, id)
	} else {
		h.Entries = append(h.Entries[:index:index], h.Entries[index+1:]...)
		s.history[id] = h
		s.persistBucket(ctx, maintenance.KeyIDHistory, s.history)
	}
	metrics.ObserveOperation("delete_history_entry", err)
	return err
}

// GetInterventions returns the intervention log for a unit, newest first.
func (s *Service) GetInterventions(id string) []maintenance.Intervention {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seq := s.interventions[id]
	out := make([]maintenance.Intervention, len(seq))
	copy(out, seq)
	return out
}

// AddIntervention prepends one intervention to a unit's log and moves the
// unit's last-verified date to the intervention date. The date is normalized
// to ISO whatever representation the caller supplied.
func (s *Service) AddIntervention(ctx context.Context, id string, in maintenance.Intervention) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.addInterventionLocked(ctx, id, in)
	metrics.ObserveOperation("add_intervention", err)
	return err
}

func (s *Service) addInterventionLocked(ctx context.Context, id string, in maintenance.Intervention) error {
	if s.indexLocked(id) < 0 {
		return fmt.Errorf("%w: %s", maintenance.ErrUnitNotFound, id)
	}
	if err := in.Validate(); err != nil {
		return err
	}
	in.Date = maintenance.ToISO(in.Date)

	s.interventions[id] = append([]maintenance.Intervention{in}, s.interventions[id]...)
	s.persistBucket(ctx, maintenance.KeyInterventions, s.interventions)

	return s.updateLocked(ctx, id, maintenance.UnitPatch{LastVerifiedDate: &in.Date})
}

// DeleteIntervention removes one intervention by position and recomputes the
// unit's last-verified date from the new head, or clears it when the log
// empties (at which point the unit's map entry goes away too).
func (s *Service) DeleteIntervention(ctx context.Context, id string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.deleteInterventionLocked(ctx, id, index)
	metrics.ObserveOperation("delete_intervention", err)
	return err
}

func (s *Service) deleteInterventionLocked(ctx context.Context, id string, index int) error {
	seq := s.interventions[id]
	if index < 0 || index >= len(seq) {
		return fmt.Errorf("%w: intervention[%d] of %s", maintenance.ErrIndexOutOfRange, index, id)
	}
	seq = append(seq[:index:index], seq[index+1:]...)

	lastVerified := maintenance.UnsetDate
	if len(seq) > 0 {
		s.interventions[id] = seq
		lastVerified = seq[0].Date
	} else {
		delete(s.interventions, id)
	}
	s.persistBucket(ctx, maintenance.KeyInterventions, s.interventions)

	return s.updateLocked(ctx, id, maintenance.UnitPatch{LastVerifiedDate: &lastVerified})
}

// AddInterventionBulk applies one intervention template to many units. All
// preconditions are checked up front and the new state is staged before
// anything is swapped in, so a failing call has no effect at all. Unless an
// override says otherwise a serviced unit comes out Functional.
func (s *Service) AddInterventionBulk(ctx context.Context, ids []string, template maintenance.Intervention, opts *BulkOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.addInterventionBulkLocked(ctx, ids, template, opts)
	metrics.ObserveOperation("add_intervention_bulk", err)
	return err
}

func (s *Service) addInterventionBulkLocked(ctx context.Context, ids []string, template maintenance.Intervention, opts *BulkOptions) error {
	if len(ids) == 0 {
		return maintenance.ErrNoUnits
	}
	if err := template.Validate(); err != nil {
		return err
	}
	indexes := make(map[string]int, len(ids))
	for _, id := range ids {
		i := s.indexLocked(id)
		if i < 0 {
			return fmt.Errorf("%w: %s", maintenance.ErrUnitNotFound, id)
		}
		indexes[id] = i
	}
	template.Date = maintenance.ToISO(template.Date)

	// Stage the full new state, then swap and commit once.
	nextUnits := make([]maintenance.Unit, len(s.units))
	copy(nextUnits, s.units)
	nextInterventions := make(map[string][]maintenance.Intervention, len(s.interventions))
	for id, seq := range s.interventions {
		nextInterventions[id] = seq
	}

	for _, id := range ids {
		record := template
		status := maintenance.StatusFunctional
		if opts != nil {
			if ov, ok := opts.Overrides[id]; ok {
				if opts.UseUnitDescriptions && ov.Description != "" {
					record.Description = ov.Description
				}
				if ov.Status != "" {
					status = ov.Status
				}
			}
		}
		nextInterventions[id] = append([]maintenance.Intervention{record}, nextInterventions[id]...)

		u := &nextUnits[indexes[id]]
		u.Status = status
		u.LastVerifiedDate = record.Date
	}

	s.units = nextUnits
	s.interventions = nextInterventions
	s.persistBucket(ctx, maintenance.KeyInterventions, s.interventions)
	s.persistBucket(ctx, maintenance.KeyMachines, s.units)
	return nil
}

// Statistics aggregates unit states across the whole fleet.
func (s *Service) Statistics() Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return statsOf(s.units, "")
}

// StatisticsByFloor aggregates unit states for one floor.
func (s *Service) StatisticsByFloor(floor string) Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return statsOf(s.units, floor)
}

func statsOf(units []maintenance.Unit, floor string) Statistics {
	var st Statistics
	for _, u := range units {
		if floor != "" && u.Floor != floor {
			continue
		}
		st.Total++
		switch u.Status {
		case maintenance.StatusFunctional:
			st.Functional++
		case maintenance.StatusOutOfService:
			st.OutOfService++
		default:
			st.Unverified++
		}
	}
	return st
}

// ExportSnapshot serializes the union of the three collections.
func (s *Service) ExportSnapshot() ([]byte, error) {
	s.mu.RLock()
	snap := maintenance.Snapshot{
		Machines:      append([]maintenance.Unit(nil), s.units...),
		Interventions: make(map[string][]maintenance.Intervention, len(s.interventions)),
		IDHistory:     make(map[string]maintenance.History, len(s.history)),
	}
	for id, seq := range s.interventions {
		snap.Interventions[id] = append([]maintenance.Intervention(nil), seq...)
	}
	for id, h := range s.history {
		snap.IDHistory[id] = maintenance.History{Entries: append([]maintenance.HistoryEntry(nil), h.Entries...)}
	}
	s.mu.RUnlock()

	data, err := json.Marshal(snap)
	metrics.ObserveSnapshot("export", err)
	return data, err
}

// ImportSnapshot replaces the three collections wholesale from a serialized
// snapshot, reconciling against the canonical id set before persisting. A
// payload that fails to parse or validate leaves the repository untouched.
func (s *Service) ImportSnapshot(ctx context.Context, data []byte) error {
	err := s.importSnapshot(ctx, data)
	metrics.ObserveSnapshot("import", err)
	return err
}

func (s *Service) importSnapshot(ctx context.Context, data []byte) error {
	var snap maintenance.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("%w: %v", maintenance.ErrMalformedSnapshot, err)
	}
	if snap.Machines == nil {
		return fmt.Errorf("%w: missing machines collection", maintenance.ErrMalformedSnapshot)
	}
	for _, u := range snap.Machines {
		if err := u.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.units = snap.Machines
	s.interventions = snap.Interventions
	s.history = snap.IDHistory
	if s.interventions == nil {
		s.interventions = make(map[string][]maintenance.Intervention)
	}
	if s.history == nil {
		s.history = make(map[string]maintenance.History)
	}
	s.reconcileLocked()
	s.persistAllLocked(ctx)
	return nil
}

// ResetAll regenerates the three collections to their default state for the
// canonical fleet and persists. Irreversible.
func (s *Service) ResetAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.registry.CanonicalIDs()
	s.units = make([]maintenance.Unit, 0, len(ids))
	s.interventions = make(map[string][]maintenance.Intervention)
	s.history = make(map[string]maintenance.History, len(ids))
	for _, id := range ids {
		s.units = append(s.units, s.defaultUnit(id))
		s.history[id] = maintenance.History{Entries: make([]maintenance.HistoryEntry, 0)}
	}
	s.persistAllLocked(ctx)
	metrics.ObserveOperation("reset_all", nil)
	return nil
}
