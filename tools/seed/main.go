// Demo seeder: loads the repository against a local database and injects the
// sample fleet data used in demos and manual testing.
package main

import (
	"context"
	"flag"
	"log"

	"carnet-pac/internal/maintenance/application"
	maintenance "carnet-pac/internal/maintenance/domain"
	"carnet-pac/internal/maintenance/infrastructure/sqlite"
	"carnet-pac/internal/registry"
)

type seedUnit struct {
	id      string
	status  maintenance.Status
	planned string
	notes   string
}

var seedUnits = []seedUnit{
	{id: "A0401", status: maintenance.StatusFunctional, planned: "2025-07-15", notes: "RAS"},
	{id: "A0402", status: maintenance.StatusFunctional, planned: "2025-07-15", notes: "Filtre à changer prochainement"},
	{id: "A0403", status: maintenance.StatusFunctional, planned: "2025-07-16", notes: "RAS"},
	{id: "A0401b", status: maintenance.StatusOutOfService, planned: "2025-05-20", notes: "Panne compresseur - Pièce commandée"},
}

// Oldest first: AddIntervention prepends, so the last one seeded ends up as
// the head and drives the unit's last-verified date.
var seedInterventions = map[string][]maintenance.Intervention{
	"A0401": {
		{Date: "2025-01-15", Kind: maintenance.KindMaintenance, Description: "Installation initiale", Technician: "Martin D."},
		{Date: "2025-04-01", Kind: maintenance.KindMaintenance, Description: "Vérification des filtres", Technician: "Sophie L."},
	},
	"A0402": {
		{Date: "2025-01-15", Kind: maintenance.KindMaintenance, Description: "Installation initiale", Technician: "Martin D."},
	},
}

func main() {
	dbPath := flag.String("db", "var/carnet.db", "sqlite database path")
	registryConfig := flag.String("registry", "", "registry config yaml (defaults to built-in fleet)")
	reset := flag.Bool("reset", false, "reset all data before seeding")
	flag.Parse()

	reg, err := registry.Load(*registryConfig)
	if err != nil {
		log.Fatalf("registry config error: %v", err)
	}
	store, err := sqlite.NewStore(*dbPath)
	if err != nil {
		log.Fatalf("sqlite store error: %v", err)
	}
	defer store.Close()

	svc, err := application.NewService(store, reg, application.SystemClock{}, nil)
	if err != nil {
		log.Fatalf("maintenance service error: %v", err)
	}

	ctx := context.Background()
	if err := svc.Load(ctx); err != nil {
		log.Fatalf("maintenance load error: %v", err)
	}
	if *reset {
		if err := svc.ResetAll(ctx); err != nil {
			log.Fatalf("reset error: %v", err)
		}
	}

	for _, su := range seedUnits {
		status := su.status
		patch := maintenance.UnitPatch{
			Status:                 &status,
			PlannedMaintenanceDate: &su.planned,
			Notes:                  &su.notes,
		}
		if err := svc.Update(ctx, su.id, patch); err != nil {
			log.Printf("skip %s: %v", su.id, err)
		}
	}

	seeded := 0
	for id, seq := range seedInterventions {
		for _, in := range seq {
			if err := svc.AddIntervention(ctx, id, in); err != nil {
				log.Printf("skip intervention for %s: %v", id, err)
				continue
			}
			seeded++
		}
	}

	stats := svc.Statistics()
	log.Printf("seeded %d interventions; fleet: %d units, %d functional, %d out of service, %d unverified",
		seeded, stats.Total, stats.Functional, stats.OutOfService, stats.Unverified)
}
