// Package interfaces renders consumer-facing views of the maintenance
// repository: the printable fleet report in HTML, PDF and XLSX form.
package interfaces

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"carnet-pac/internal/maintenance/application"
	maintenance "carnet-pac/internal/maintenance/domain"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

// Repository is the read surface the report needs.
type Repository interface {
	GetAll() []maintenance.Unit
	GetInterventions(id string) []maintenance.Intervention
	Statistics() application.Statistics
	StatisticsByFloor(floor string) application.Statistics
}

// ReportOptions selects the content of a fleet report.
type ReportOptions struct {
	Floor                string // empty means every floor
	IncludeIdentifiers   bool
	IncludeNotes         bool
	IncludeInterventions bool
	GeneratedAt          time.Time
}

type reportUnit struct {
	maintenance.Unit
	StatusLabel   string
	LastVerified  string
	Planned       string
	Interventions []reportIntervention
}

type reportIntervention struct {
	Date        string
	Kind        string
	Description string
	Technician  string
}

type reportData struct {
	Title       string
	GeneratedAt string
	Floor       string
	Stats       application.Statistics
	Units       []reportUnit
	Options     ReportOptions
}

func buildReportData(repo Repository, opts ReportOptions) reportData {
	data := reportData{
		Title:       "Carnet de maintenance PAC",
		GeneratedAt: maintenance.FormatDisplay(opts.GeneratedAt),
		Floor:       opts.Floor,
		Options:     opts,
	}
	if opts.Floor == "" {
		data.Stats = repo.Statistics()
	} else {
		data.Stats = repo.StatisticsByFloor(opts.Floor)
	}
	for _, u := range repo.GetAll() {
		if opts.Floor != "" && u.Floor != opts.Floor {
			continue
		}
		ru := reportUnit{
			Unit:         u,
			StatusLabel:  u.Status.Label(),
			LastVerified: maintenance.ToDisplay(u.LastVerifiedDate),
			Planned:      maintenance.ToDisplay(u.PlannedMaintenanceDate),
		}
		if opts.IncludeInterventions {
			for _, in := range repo.GetInterventions(u.ID) {
				ru.Interventions = append(ru.Interventions, reportIntervention{
					Date:        maintenance.ToDisplay(in.Date),
					Kind:        string(in.Kind),
					Description: in.Description,
					Technician:  in.Technician,
				})
			}
		}
		data.Units = append(data.Units, ru)
	}
	return data
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; padding: 24px; }
table { border-collapse: collapse; width: 100%; margin-bottom: 24px; }
th, td { border: 1px solid #d1d5db; padding: 4px 8px; text-align: left; }
th { background: #f3f4f6; }
h3 { margin-bottom: 4px; }
@media print { .no-print { display: none; } }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>Generated {{.GeneratedAt}}{{if .Floor}} — floor {{.Floor}}{{end}}</p>
<p>{{.Stats.Total}} units: {{.Stats.Functional}} functional, {{.Stats.OutOfService}} out of service, {{.Stats.Unverified}} unverified</p>
<h2>Units</h2>
<table>
<thead><tr>
<th>Id</th><th>Floor</th><th>Status</th>
{{- if .Options.IncludeIdentifiers}}<th>Serial number</th><th>Device id</th>{{end}}
{{- if .Options.IncludeNotes}}<th>Notes</th>{{end}}
<th>Last verified</th><th>Planned maintenance</th>
</tr></thead>
<tbody>
{{- range .Units}}
<tr>
<td>{{.ID}}</td><td>{{.Floor}}</td><td>{{.StatusLabel}}</td>
{{- if $.Options.IncludeIdentifiers}}<td>{{if .SerialNumber}}{{.SerialNumber}}{{else}}-{{end}}</td><td>{{if .SecondaryDeviceID}}{{.SecondaryDeviceID}}{{else}}-{{end}}</td>{{end}}
{{- if $.Options.IncludeNotes}}<td>{{if .Notes}}{{.Notes}}{{else}}-{{end}}</td>{{end}}
<td>{{.LastVerified}}</td><td>{{.Planned}}</td>
</tr>
{{- end}}
</tbody>
</table>
{{- if .Options.IncludeInterventions}}
<h2>Interventions</h2>
{{- range .Units}}
{{- if .Interventions}}
<h3>{{.ID}} — {{.StatusLabel}}</h3>
<table>
<thead><tr><th>Date</th><th>Kind</th><th>Description</th><th>Technician</th></tr></thead>
<tbody>
{{- range .Interventions}}
<tr><td>{{.Date}}</td><td>{{.Kind}}</td><td>{{.Description}}</td><td>{{.Technician}}</td></tr>
{{- end}}
</tbody>
</table>
{{- end}}
{{- end}}
{{- end}}
</body>
</html>
`))

// BuildReportHTML renders the printable report page.
func BuildReportHTML(repo Repository, opts ReportOptions) ([]byte, error) {
	data := buildReportData(repo, opts)
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildReportPDF renders the fleet report as a PDF.
func BuildReportPDF(repo Repository, opts ReportOptions) ([]byte, error) {
	data := buildReportData(repo, opts)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, data.Title)
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", data.GeneratedAt))
	pdf.Ln(5)
	if data.Floor != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Floor: %s", data.Floor))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Units: %d (functional %d, out of service %d, unverified %d)",
		data.Stats.Total, data.Stats.Functional, data.Stats.OutOfService, data.Stats.Unverified))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(25, 6, "Id", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Floor", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Status", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Last verified", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Planned", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, u := range data.Units {
		pdf.CellFormat(25, 6, u.ID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, u.Floor, "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, u.StatusLabel, "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, u.LastVerified, "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, u.Planned, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	if opts.IncludeInterventions {
		for _, u := range data.Units {
			if len(u.Interventions) == 0 {
				continue
			}
			pdf.Ln(4)
			pdf.SetFont("Arial", "B", 10)
			pdf.Cell(0, 6, fmt.Sprintf("%s - %s", u.ID, u.StatusLabel))
			pdf.Ln(6)
			pdf.SetFont("Arial", "", 9)
			for _, in := range u.Interventions {
				pdf.Cell(0, 5, fmt.Sprintf("%s  %s  %s (%s)", in.Date, in.Kind, in.Description, in.Technician))
				pdf.Ln(5)
			}
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildReportXLSX renders the fleet report as a workbook with a summary
// sheet, a units sheet and an interventions sheet.
func BuildReportXLSX(repo Repository, opts ReportOptions) ([]byte, error) {
	data := buildReportData(repo, opts)

	f := excelize.NewFile()
	summarySheet := "summary"
	unitsSheet := "units"
	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(unitsSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", data.Title)
	_ = f.SetCellValue(summarySheet, "A3", "Generated")
	_ = f.SetCellValue(summarySheet, "B3", data.GeneratedAt)
	_ = f.SetCellValue(summarySheet, "A4", "Units")
	_ = f.SetCellValue(summarySheet, "B4", data.Stats.Total)
	_ = f.SetCellValue(summarySheet, "A5", "Functional")
	_ = f.SetCellValue(summarySheet, "B5", data.Stats.Functional)
	_ = f.SetCellValue(summarySheet, "A6", "Out of service")
	_ = f.SetCellValue(summarySheet, "B6", data.Stats.OutOfService)
	_ = f.SetCellValue(summarySheet, "A7", "Unverified")
	_ = f.SetCellValue(summarySheet, "B7", data.Stats.Unverified)

	headers := []string{"Id", "Floor", "Status", "Serial number", "Device id", "Notes", "Last verified", "Planned maintenance"}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(unitsSheet, cell, h)
	}
	for row, u := range data.Units {
		values := []any{u.ID, u.Floor, u.StatusLabel, u.SerialNumber, u.SecondaryDeviceID, u.Notes, u.LastVerified, u.Planned}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			_ = f.SetCellValue(unitsSheet, cell, v)
		}
	}

	if opts.IncludeInterventions {
		interventionsSheet := "interventions"
		if _, err := f.NewSheet(interventionsSheet); err != nil {
			return nil, err
		}
		for col, h := range []string{"Unit", "Date", "Kind", "Description", "Technician"} {
			cell, err := excelize.CoordinatesToCellName(col+1, 1)
			if err != nil {
				return nil, err
			}
			_ = f.SetCellValue(interventionsSheet, cell, h)
		}
		row := 2
		for _, u := range data.Units {
			for _, in := range u.Interventions {
				values := []any{u.ID, in.Date, in.Kind, in.Description, in.Technician}
				for col, v := range values {
					cell, err := excelize.CoordinatesToCellName(col+1, row)
					if err != nil {
						return nil, err
					}
					_ = f.SetCellValue(interventionsSheet, cell, v)
				}
				row++
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
