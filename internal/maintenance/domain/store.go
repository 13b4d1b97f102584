package maintenance

import "context"

// Storage bucket keys. The values are carried over from the original carnet
// so a database migrated from it keeps working.
const (
	KeyMachines      = "carnet_maintenance_pac_machines_v2"
	KeyInterventions = "carnet_maintenance_pac_interventions_v2"
	KeyIDHistory     = "carnet_maintenance_pac_id_history_v1"
)

// Store is the durable key-value boundary: one JSON document per bucket key.
// Get returns (nil, nil) when the key is absent.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
