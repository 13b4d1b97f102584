// Package carnethttp exposes the read-only catalog API consumed by the UI
// shell: the machine list with embedded intervention history, per-machine
// lookup, fleet statistics and the printable report.
package carnethttp

import (
	"encoding/json"
	"net/http"
	"strings"

	"carnet-pac/internal/maintenance/application"
	maintenance "carnet-pac/internal/maintenance/domain"
	"carnet-pac/internal/maintenance/interfaces"
	"carnet-pac/internal/observability/metrics"
	"carnet-pac/internal/registry"
)

type machineView struct {
	ID                     string                     `json:"id"`
	Floor                  string                     `json:"floor"`
	Status                 maintenance.Status         `json:"status"`
	SerialNumber           string                     `json:"serialNumber"`
	SecondaryDeviceID      string                     `json:"secondaryDeviceId"`
	LastVerifiedDate       string                     `json:"lastVerifiedDate"`
	PlannedMaintenanceDate string                     `json:"plannedMaintenanceDate"`
	Notes                  string                     `json:"notes"`
	History                []maintenance.Intervention `json:"history"`
}

func viewOf(svc *application.Service, u maintenance.Unit) machineView {
	return machineView{
		ID:                     u.ID,
		Floor:                  u.Floor,
		Status:                 u.Status,
		SerialNumber:           u.SerialNumber,
		SecondaryDeviceID:      u.SecondaryDeviceID,
		LastVerifiedDate:       u.LastVerifiedDate,
		PlannedMaintenanceDate: u.PlannedMaintenanceDate,
		Notes:                  u.Notes,
		History:                svc.GetInterventions(u.ID),
	}
}

// MachinesHandler serves GET /api/machines and GET /api/machines/{id}.
type MachinesHandler struct {
	svc *application.Service
}

// NewMachinesHandler constructs a MachinesHandler.
func NewMachinesHandler(svc *application.Service) *MachinesHandler {
	return &MachinesHandler{svc: svc}
}

func (h *MachinesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.svc == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/machines"), "/")
	w.Header().Set("Content-Type", "application/json")
	if id == "" {
		units := h.svc.GetAll()
		views := make([]machineView, 0, len(units))
		for _, u := range units {
			views = append(views, viewOf(h.svc, u))
		}
		_ = json.NewEncoder(w).Encode(views)
		return
	}

	u, ok := h.svc.GetByID(id)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "machine not found"})
		return
	}
	_ = json.NewEncoder(w).Encode(viewOf(h.svc, u))
}

// StatsHandler serves GET /api/stats: global counts plus a per-floor split.
type StatsHandler struct {
	svc *application.Service
	reg *registry.Registry
}

// NewStatsHandler constructs a StatsHandler.
func NewStatsHandler(svc *application.Service, reg *registry.Registry) *StatsHandler {
	return &StatsHandler{svc: svc, reg: reg}
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.svc == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	byFloor := make(map[string]application.Statistics)
	for _, floor := range h.reg.Floors() {
		byFloor[floor] = h.svc.StatisticsByFloor(floor)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		application.Statistics
		ByFloor map[string]application.Statistics `json:"byFloor"`
	}{h.svc.Statistics(), byFloor})
}

// ConfigHandler serves GET /api/config: the fleet layout and the
// common-failure tag list the UI offers in its pickers.
type ConfigHandler struct {
	reg *registry.Registry
}

// NewConfigHandler constructs a ConfigHandler.
func NewConfigHandler(reg *registry.Registry) *ConfigHandler {
	return &ConfigHandler{reg: reg}
}

func (h *ConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.reg == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Units       []string `json:"units"`
		Floors      []string `json:"floors"`
		FailureTags []string `json:"failureTags"`
	}{h.reg.CanonicalIDs(), h.reg.Floors(), h.reg.FailureTags()})
}

// ReportHandler serves GET /api/report?format=html|pdf|xlsx.
type ReportHandler struct {
	svc   *application.Service
	clock application.Clock
}

// NewReportHandler constructs a ReportHandler.
func NewReportHandler(svc *application.Service, clock application.Clock) *ReportHandler {
	if clock == nil {
		clock = application.SystemClock{}
	}
	return &ReportHandler{svc: svc, clock: clock}
}

func (h *ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.svc == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	opts := interfaces.ReportOptions{
		Floor:                r.URL.Query().Get("floor"),
		IncludeIdentifiers:   true,
		IncludeNotes:         true,
		IncludeInterventions: r.URL.Query().Get("interventions") != "false",
		GeneratedAt:          h.clock.Now(),
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "html"
	}

	var (
		data        []byte
		err         error
		contentType string
	)
	switch format {
	case "html":
		data, err = interfaces.BuildReportHTML(h.svc, opts)
		contentType = "text/html; charset=utf-8"
	case "pdf":
		data, err = interfaces.BuildReportPDF(h.svc, opts)
		contentType = "application/pdf"
	case "xlsx":
		data, err = interfaces.BuildReportXLSX(h.svc, opts)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		http.Error(w, "unknown format", http.StatusBadRequest)
		return
	}
	metrics.ObserveReportExport(format, err)
	if err != nil {
		http.Error(w, "report render error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(data)
}
