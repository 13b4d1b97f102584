package application

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	maintenance "carnet-pac/internal/maintenance/domain"
	"carnet-pac/internal/maintenance/infrastructure/memory"
	"carnet-pac/internal/registry"
)

type fixedClock struct{ at time.Time }

func (c fixedClock) Now() time.Time { return c.at }

var testClock = fixedClock{at: time.Date(2025, 4, 15, 10, 0, 0, 0, time.Local)}

func newTestRegistry(t *testing.T, ids ...string) *registry.Registry {
	t.Helper()
	if len(ids) == 0 {
		ids = []string{"A0401", "A0402", "A0403", "TSGR1"}
	}
	reg, err := registry.New(registry.Config{Units: ids})
	if err != nil {
		t.Fatalf("test registry: %v", err)
	}
	return reg
}

func newTestService(t *testing.T, store maintenance.Store, reg *registry.Registry) *Service {
	t.Helper()
	if store == nil {
		store = memory.NewStore()
	}
	if reg == nil {
		reg = newTestRegistry(t)
	}
	svc, err := NewService(store, reg, testClock, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return svc
}

func seedStore(t *testing.T, store maintenance.Store, key string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal seed: %v", err)
	}
	if err := store.Set(context.Background(), key, data); err != nil {
		t.Fatalf("seed store: %v", err)
	}
}

func TestLoadSynthesizesDefaultFleet(t *testing.T) {
	svc := newTestService(t, nil, nil)

	units := svc.GetAll()
	if len(units) != 4 {
		t.Fatalf("expected 4 units, got %d", len(units))
	}
	u, ok := svc.GetByID("A0401")
	if !ok {
		t.Fatal("A0401 missing")
	}
	if u.Status != maintenance.StatusUnverified || u.LastVerifiedDate != maintenance.UnsetDate ||
		u.PlannedMaintenanceDate != maintenance.UnsetDate || u.Floor != "4" {
		t.Fatalf("unexpected defaults: %+v", u)
	}
	if u, _ := svc.GetByID("TSGR1"); u.Floor != registry.TechnicalFloor {
		t.Fatalf("TSGR1 floor: %+v", u)
	}
}

func TestReconcileIdempotent(t *testing.T) {
	store := memory.NewStore()
	seedStore(t, store, maintenance.KeyMachines, []maintenance.Unit{
		{ID: "A0402", Floor: "9", Status: "Fonctionnel", LastVerifiedDate: "2025-03-01", Notes: "kept"},
		{ID: "GHOST", Status: maintenance.StatusFunctional},
	})

	svc := newTestService(t, store, nil)
	first := svc.GetAll()

	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("second load: %v", err)
	}
	second := svc.GetAll()

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("reconciliation not idempotent:\nfirst  %+v\nsecond %+v", first, second)
	}

	if _, ok := svc.GetByID("GHOST"); ok {
		t.Fatal("non-canonical unit survived")
	}
	u, ok := svc.GetByID("A0402")
	if !ok {
		t.Fatal("canonical stored unit dropped")
	}
	if u.Notes != "kept" || u.LastVerifiedDate != "2025-03-01" {
		t.Fatalf("stored data lost on reconcile: %+v", u)
	}
	if u.Floor != "4" {
		t.Fatalf("floor not re-derived: %+v", u)
	}
	if u.Status != maintenance.StatusFunctional {
		t.Fatalf("legacy status not normalized: %+v", u)
	}
}

func TestReconcileCascades(t *testing.T) {
	store := memory.NewStore()
	seedStore(t, store, maintenance.KeyInterventions, map[string][]maintenance.Intervention{
		"GHOST": {{Date: "2025-01-01", Kind: maintenance.KindRepair, Description: "orphan"}},
		"A0401": {{Date: "2025-01-01", Kind: maintenance.KindMaintenance, Description: "kept"}},
	})
	seedStore(t, store, maintenance.KeyIDHistory, map[string]maintenance.History{
		"GHOST": {Entries: []maintenance.HistoryEntry{{Field: maintenance.FieldSerialNumber}}},
	})

	svc := newTestService(t, store, nil)

	if got := svc.GetInterventions("GHOST"); len(got) != 0 {
		t.Fatalf("orphan interventions survived: %v", got)
	}
	if got := svc.GetInterventions("A0401"); len(got) != 1 || got[0].Description != "kept" {
		t.Fatalf("canonical interventions lost: %v", got)
	}
	if got := svc.GetHistory("GHOST"); len(got) != 0 {
		t.Fatalf("orphan history survived: %v", got)
	}

	data, err := svc.ExportSnapshot()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	var snap maintenance.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	for _, id := range []string{"A0401", "A0402", "A0403", "TSGR1"} {
		h, ok := snap.IDHistory[id]
		if !ok {
			t.Fatalf("history map missing canonical id %s", id)
		}
		if h.Entries == nil {
			t.Fatalf("history entries nil for %s", id)
		}
	}
	if _, ok := snap.Interventions["GHOST"]; ok {
		t.Fatal("orphan interventions exported")
	}
}

func TestAddInterventionOrdering(t *testing.T) {
	svc := newTestService(t, nil, nil)
	ctx := context.Background()

	a := maintenance.Intervention{Date: "2025-04-01", Kind: maintenance.KindMaintenance, Description: "first"}
	b := maintenance.Intervention{Date: "2025-04-10", Kind: maintenance.KindInspection, Description: "second"}
	if err := svc.AddIntervention(ctx, "A0401", a); err != nil {
		t.Fatalf("add a: %v", err)
	}
	if err := svc.AddIntervention(ctx, "A0401", b); err != nil {
		t.Fatalf("add b: %v", err)
	}

	got := svc.GetInterventions("A0401")
	if len(got) != 2 || got[0].Description != "second" || got[1].Description != "first" {
		t.Fatalf("ordering: %v", got)
	}
	if u, _ := svc.GetByID("A0401"); u.LastVerifiedDate != "2025-04-10" {
		t.Fatalf("last verified: %+v", u)
	}
}

func TestDeleteInterventionRecomputesLastVerified(t *testing.T) {
	svc := newTestService(t, nil, nil)
	ctx := context.Background()

	i1 := maintenance.Intervention{Date: "2025-03-01", Kind: maintenance.KindMaintenance, Description: "older"}
	i0 := maintenance.Intervention{Date: "2025-04-01", Kind: maintenance.KindMaintenance, Description: "newer"}
	if err := svc.AddIntervention(ctx, "A0401", i1); err != nil {
		t.Fatalf("add i1: %v", err)
	}
	if err := svc.AddIntervention(ctx, "A0401", i0); err != nil {
		t.Fatalf("add i0: %v", err)
	}

	if err := svc.DeleteIntervention(ctx, "A0401", 0); err != nil {
		t.Fatalf("delete head: %v", err)
	}
	if u, _ := svc.GetByID("A0401"); u.LastVerifiedDate != "2025-03-01" {
		t.Fatalf("last verified after head delete: %+v", u)
	}

	if err := svc.DeleteIntervention(ctx, "A0401", 0); err != nil {
		t.Fatalf("delete last: %v", err)
	}
	if u, _ := svc.GetByID("A0401"); u.LastVerifiedDate != maintenance.UnsetDate {
		t.Fatalf("last verified after emptying: %+v", u)
	}

	data, err := svc.ExportSnapshot()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	var snap maintenance.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if _, ok := snap.Interventions["A0401"]; ok {
		t.Fatal("empty intervention sequence still persisted")
	}

	if err := svc.DeleteIntervention(ctx, "A0401", 0); !errors.Is(err, maintenance.ErrIndexOutOfRange) {
		t.Fatalf("delete from empty: got %v", err)
	}
}

func TestIdentifierUpdateNoOpAndAudit(t *testing.T) {
	svc := newTestService(t, nil, nil)
	ctx := context.Background()

	if err := svc.UpdateSerialNumber(ctx, "A0401", "SN-100", "marc"); err != nil {
		t.Fatalf("first update: %v", err)
	}
	if u, _ := svc.GetByID("A0401"); u.SerialNumber != "SN-100" {
		t.Fatalf("serial not applied: %+v", u)
	}
	history := svc.GetHistory("A0401")
	if len(history) != 1 {
		t.Fatalf("history length: %v", history)
	}
	entry := history[0]
	if entry.Field != maintenance.FieldSerialNumber || entry.PreviousValue != "" ||
		entry.NewValue != "SN-100" || entry.EditedBy != "marc" {
		t.Fatalf("audit entry: %+v", entry)
	}
	if entry.Date != maintenance.FormatDisplay(testClock.at) {
		t.Fatalf("audit date: %q", entry.Date)
	}

	// Writing the same value back succeeds without an audit entry.
	if err := svc.UpdateSerialNumber(ctx, "A0401", "SN-100", "marc"); err != nil {
		t.Fatalf("no-op update: %v", err)
	}
	if got := svc.GetHistory("A0401"); len(got) != 1 {
		t.Fatalf("no-op added history: %v", got)
	}

	if err := svc.UpdateSecondaryDeviceID(ctx, "A0401", "NEU-9", ""); err != nil {
		t.Fatalf("secondary id update: %v", err)
	}
	history = svc.GetHistory("A0401")
	if len(history) != 2 || history[0].Field != maintenance.FieldSecondaryDeviceID {
		t.Fatalf("secondary id audit: %+v", history)
	}

	if err := svc.UpdateSerialNumber(ctx, "NOPE", "x", ""); !errors.Is(err, maintenance.ErrUnitNotFound) {
		t.Fatalf("unknown unit: got %v", err)
	}
}

func TestDeleteHistoryEntry(t *testing.T) {
	svc := newTestService(t, nil, nil)
	ctx := context.Background()

	if err := svc.UpdateSerialNumber(ctx, "A0401", "SN-1", ""); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := svc.UpdateSerialNumber(ctx, "A0401", "SN-2", ""); err != nil {
		t.Fatalf("update: %v", err)
	}

	if err := svc.DeleteHistoryEntry(ctx, "A0401", 5); !errors.Is(err, maintenance.ErrIndexOutOfRange) {
		t.Fatalf("out of bounds: got %v", err)
	}
	if err := svc.DeleteHistoryEntry(ctx, "A0401", 0); err != nil {
		t.Fatalf("delete: %v", err)
	}
	history := svc.GetHistory("A0401")
	if len(history) != 1 || history[0].NewValue != "SN-1" {
		t.Fatalf("history after delete: %+v", history)
	}
}

func TestBulkMaintenance(t *testing.T) {
	svc := newTestService(t, nil, nil)
	ctx := context.Background()

	template := maintenance.Intervention{
		Date:        "15/04/2025",
		Kind:        maintenance.KindMaintenance,
		Description: "Filter check",
		Technician:  "D.",
	}
	ids := []string{"A0401", "A0402", "A0403"}
	if err := svc.AddInterventionBulk(ctx, ids, template, nil); err != nil {
		t.Fatalf("bulk: %v", err)
	}

	for _, id := range ids {
		u, ok := svc.GetByID(id)
		if !ok {
			t.Fatalf("unit %s missing", id)
		}
		if u.Status != maintenance.StatusFunctional {
			t.Fatalf("%s status: %+v", id, u)
		}
		if u.LastVerifiedDate != "2025-04-15" {
			t.Fatalf("%s last verified: %+v", id, u)
		}
		seq := svc.GetInterventions(id)
		if len(seq) != 1 || seq[0].Description != "Filter check" || seq[0].Date != "2025-04-15" {
			t.Fatalf("%s interventions: %v", id, seq)
		}
	}
	// TSGR1 was not part of the run.
	if u, _ := svc.GetByID("TSGR1"); u.Status != maintenance.StatusUnverified {
		t.Fatalf("untouched unit changed: %+v", u)
	}
}

func TestBulkMaintenanceOverrides(t *testing.T) {
	svc := newTestService(t, nil, nil)
	ctx := context.Background()

	template := maintenance.Intervention{Date: "2025-04-15", Kind: maintenance.KindMaintenance, Description: "Standard service"}
	opts := &BulkOptions{
		UseUnitDescriptions: true,
		Overrides: map[string]UnitOverride{
			"A0402": {Description: "Compressor replaced", Status: maintenance.StatusOutOfService},
		},
	}
	if err := svc.AddInterventionBulk(ctx, []string{"A0401", "A0402"}, template, opts); err != nil {
		t.Fatalf("bulk: %v", err)
	}

	if got := svc.GetInterventions("A0401"); got[0].Description != "Standard service" {
		t.Fatalf("A0401 description: %v", got)
	}
	if got := svc.GetInterventions("A0402"); got[0].Description != "Compressor replaced" {
		t.Fatalf("A0402 description: %v", got)
	}
	if u, _ := svc.GetByID("A0402"); u.Status != maintenance.StatusOutOfService {
		t.Fatalf("A0402 status: %+v", u)
	}
	if u, _ := svc.GetByID("A0401"); u.Status != maintenance.StatusFunctional {
		t.Fatalf("A0401 status: %+v", u)
	}
}

func TestBulkMaintenanceAllOrNothing(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(t, store, nil)
	ctx := context.Background()

	before, err := store.Get(ctx, maintenance.KeyInterventions)
	if err != nil {
		t.Fatalf("store get: %v", err)
	}

	template := maintenance.Intervention{Date: "2025-04-15", Kind: maintenance.KindMaintenance, Description: "Filter check"}
	err = svc.AddInterventionBulk(ctx, []string{"A0401", "GHOST"}, template, nil)
	if !errors.Is(err, maintenance.ErrUnitNotFound) {
		t.Fatalf("bulk with unknown id: got %v", err)
	}

	if got := svc.GetInterventions("A0401"); len(got) != 0 {
		t.Fatalf("partial in-memory effect: %v", got)
	}
	if u, _ := svc.GetByID("A0401"); u.Status != maintenance.StatusUnverified {
		t.Fatalf("partial status effect: %+v", u)
	}
	after, err := store.Get(ctx, maintenance.KeyInterventions)
	if err != nil {
		t.Fatalf("store get: %v", err)
	}
	if string(before) != string(after) {
		t.Fatal("store mutated by failed bulk")
	}

	if err := svc.AddInterventionBulk(ctx, nil, template, nil); !errors.Is(err, maintenance.ErrNoUnits) {
		t.Fatalf("empty id list: got %v", err)
	}
}

func TestUnknownIDLeavesStoreUntouched(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(t, store, nil)
	ctx := context.Background()

	keys := []string{maintenance.KeyMachines, maintenance.KeyInterventions, maintenance.KeyIDHistory}
	before := make(map[string][]byte)
	for _, key := range keys {
		data, err := store.Get(ctx, key)
		if err != nil {
			t.Fatalf("store get %s: %v", key, err)
		}
		before[key] = data
	}

	in := maintenance.Intervention{Date: "2025-04-15", Kind: maintenance.KindRepair, Description: "x"}
	if err := svc.AddIntervention(ctx, "NONEXISTENT", in); !errors.Is(err, maintenance.ErrUnitNotFound) {
		t.Fatalf("unknown id: got %v", err)
	}

	for _, key := range keys {
		after, err := store.Get(ctx, key)
		if err != nil {
			t.Fatalf("store get %s: %v", key, err)
		}
		if string(before[key]) != string(after) {
			t.Fatalf("bucket %s changed", key)
		}
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	svc := newTestService(t, nil, nil)
	ctx := context.Background()

	if err := svc.AddIntervention(ctx, "A0401", maintenance.Intervention{
		Date: "2025-04-01", Kind: maintenance.KindMaintenance, Description: "service", Technician: "L.",
	}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.UpdateSerialNumber(ctx, "A0402", "SN-7", "anna"); err != nil {
		t.Fatalf("serial: %v", err)
	}

	units := svc.GetAll()
	interventions := svc.GetInterventions("A0401")
	history := svc.GetHistory("A0402")

	data, err := svc.ExportSnapshot()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if err := svc.ImportSnapshot(ctx, data); err != nil {
		t.Fatalf("import: %v", err)
	}

	if !reflect.DeepEqual(units, svc.GetAll()) {
		t.Fatal("units changed across round trip")
	}
	if !reflect.DeepEqual(interventions, svc.GetInterventions("A0401")) {
		t.Fatal("interventions changed across round trip")
	}
	if !reflect.DeepEqual(history, svc.GetHistory("A0402")) {
		t.Fatal("history changed across round trip")
	}
}

func TestImportMalformed(t *testing.T) {
	svc := newTestService(t, nil, nil)
	ctx := context.Background()
	before := svc.GetAll()

	cases := [][]byte{
		[]byte("not json"),
		[]byte(`{"interventions": {}}`),
		[]byte(`{"machines": [{"id": "", "status": "functional"}]}`),
		[]byte(`{"machines": [{"id": "A0401", "status": "bogus"}]}`),
	}
	for _, data := range cases {
		if err := svc.ImportSnapshot(ctx, data); !errors.Is(err, maintenance.ErrMalformedSnapshot) {
			t.Fatalf("import %s: got %v", data, err)
		}
	}
	if !reflect.DeepEqual(before, svc.GetAll()) {
		t.Fatal("failed import mutated state")
	}
}

func TestImportReconcilesForeignSnapshot(t *testing.T) {
	svc := newTestService(t, nil, nil)
	ctx := context.Background()

	// Snapshot from a different canonical-id generation: one known unit, one
	// retired unit, orphan child entries.
	snap := maintenance.Snapshot{
		Machines: []maintenance.Unit{
			{ID: "A0401", Floor: "2", Status: "Fonctionnel", LastVerifiedDate: "2024-12-01"},
			{ID: "RETIRED", Status: maintenance.StatusFunctional},
		},
		Interventions: map[string][]maintenance.Intervention{
			"RETIRED": {{Date: "2024-01-01", Kind: maintenance.KindRepair, Description: "gone"}},
		},
		IDHistory: map[string]maintenance.History{
			"RETIRED": {Entries: []maintenance.HistoryEntry{{Field: maintenance.FieldSerialNumber}}},
		},
	}
	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := svc.ImportSnapshot(ctx, data); err != nil {
		t.Fatalf("import: %v", err)
	}

	if _, ok := svc.GetByID("RETIRED"); ok {
		t.Fatal("retired unit imported")
	}
	u, ok := svc.GetByID("A0401")
	if !ok {
		t.Fatal("known unit lost")
	}
	if u.Status != maintenance.StatusFunctional || u.Floor != "4" || u.LastVerifiedDate != "2024-12-01" {
		t.Fatalf("imported unit: %+v", u)
	}
	// Units absent from the snapshot are synthesized back.
	if _, ok := svc.GetByID("A0403"); !ok {
		t.Fatal("canonical unit not synthesized after import")
	}
	if got := svc.GetInterventions("RETIRED"); len(got) != 0 {
		t.Fatalf("orphan interventions imported: %v", got)
	}
}

func TestResetAll(t *testing.T) {
	svc := newTestService(t, nil, nil)
	ctx := context.Background()

	if err := svc.AddIntervention(ctx, "A0401", maintenance.Intervention{
		Date: "2025-04-01", Kind: maintenance.KindMaintenance, Description: "service",
	}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.UpdateSerialNumber(ctx, "A0401", "SN-1", ""); err != nil {
		t.Fatalf("serial: %v", err)
	}

	if err := svc.ResetAll(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if got := svc.GetInterventions("A0401"); len(got) != 0 {
		t.Fatalf("interventions survived reset: %v", got)
	}
	if got := svc.GetHistory("A0401"); len(got) != 0 {
		t.Fatalf("history survived reset: %v", got)
	}
	u, _ := svc.GetByID("A0401")
	if u.Status != maintenance.StatusUnverified || u.SerialNumber != "" || u.LastVerifiedDate != maintenance.UnsetDate {
		t.Fatalf("unit not reset: %+v", u)
	}
}

func TestStatistics(t *testing.T) {
	svc := newTestService(t, nil, nil)
	ctx := context.Background()

	functional := maintenance.StatusFunctional
	outOfService := maintenance.StatusOutOfService
	if err := svc.Update(ctx, "A0401", maintenance.UnitPatch{Status: &functional}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := svc.Update(ctx, "TSGR1", maintenance.UnitPatch{Status: &outOfService}); err != nil {
		t.Fatalf("update: %v", err)
	}

	stats := svc.Statistics()
	want := Statistics{Total: 4, Functional: 1, OutOfService: 1, Unverified: 2}
	if stats != want {
		t.Fatalf("stats: %+v", stats)
	}

	floor4 := svc.StatisticsByFloor("4")
	if (floor4 != Statistics{Total: 3, Functional: 1, Unverified: 2}) {
		t.Fatalf("floor 4 stats: %+v", floor4)
	}
	technical := svc.StatisticsByFloor(registry.TechnicalFloor)
	if (technical != Statistics{Total: 1, OutOfService: 1}) {
		t.Fatalf("technical stats: %+v", technical)
	}
}

func TestConcreteScenario(t *testing.T) {
	reg := newTestRegistry(t, "A0401", "A0402")
	svc := newTestService(t, nil, reg)
	ctx := context.Background()

	if err := svc.ResetAll(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	err := svc.AddIntervention(ctx, "A0401", maintenance.Intervention{
		Date:        "15/04/2025",
		Kind:        maintenance.KindMaintenance,
		Description: "Filter cleaned",
		Technician:  "D.",
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	u, _ := svc.GetByID("A0401")
	if u.LastVerifiedDate != "2025-04-15" {
		t.Fatalf("last verified: %+v", u)
	}
	if got := svc.GetInterventions("A0401"); got[0].Description != "Filter cleaned" {
		t.Fatalf("head intervention: %v", got)
	}
}

func TestCallerMutationHasNoEffect(t *testing.T) {
	svc := newTestService(t, nil, nil)
	ctx := context.Background()

	units := svc.GetAll()
	units[0].Notes = "scribbled"
	if u, _ := svc.GetByID(units[0].ID); u.Notes == "scribbled" {
		t.Fatal("GetAll leaked internal state")
	}

	if err := svc.AddIntervention(ctx, "A0401", maintenance.Intervention{
		Date: "2025-04-01", Kind: maintenance.KindMaintenance, Description: "service",
	}); err != nil {
		t.Fatalf("add: %v", err)
	}
	seq := svc.GetInterventions("A0401")
	seq[0].Description = "scribbled"
	if got := svc.GetInterventions("A0401"); got[0].Description == "scribbled" {
		t.Fatal("GetInterventions leaked internal state")
	}
}

type failingStore struct {
	inner    maintenance.Store
	failSets bool
}

func (s *failingStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.inner.Get(ctx, key)
}

func (s *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if s.failSets {
		return errors.New("disk full")
	}
	return s.inner.Set(ctx, key, value)
}

func TestPersistenceFailureIsNonFatal(t *testing.T) {
	store := &failingStore{inner: memory.NewStore()}
	svc := newTestService(t, store, nil)
	ctx := context.Background()

	store.failSets = true
	err := svc.AddIntervention(ctx, "A0401", maintenance.Intervention{
		Date: "2025-04-01", Kind: maintenance.KindMaintenance, Description: "service",
	})
	if err != nil {
		t.Fatalf("operation failed on store error: %v", err)
	}
	// Memory stays authoritative.
	if got := svc.GetInterventions("A0401"); len(got) != 1 {
		t.Fatalf("in-memory state lost: %v", got)
	}

	// Next successful write self-heals the store.
	store.failSets = false
	if err := svc.AddIntervention(ctx, "A0401", maintenance.Intervention{
		Date: "2025-04-02", Kind: maintenance.KindMaintenance, Description: "again",
	}); err != nil {
		t.Fatalf("add: %v", err)
	}
	data, err := store.Get(ctx, maintenance.KeyInterventions)
	if err != nil {
		t.Fatalf("store get: %v", err)
	}
	var persisted map[string][]maintenance.Intervention
	if err := json.Unmarshal(data, &persisted); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(persisted["A0401"]) != 2 {
		t.Fatalf("store not healed: %v", persisted)
	}
}

func TestUpdateUnknownUnit(t *testing.T) {
	svc := newTestService(t, nil, nil)
	notes := "x"
	err := svc.Update(context.Background(), "GHOST", maintenance.UnitPatch{Notes: &notes})
	if !errors.Is(err, maintenance.ErrUnitNotFound) {
		t.Fatalf("update unknown: got %v", err)
	}
}
