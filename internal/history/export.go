package history

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/sourabhsahu334/newsUserBackend/internal/experience"
	"github.com/sourabhsahu334/newsUserBackend/internal/folders"
	"github.com/sourabhsahu334/newsUserBackend/internal/oracle"
)

const (
	exportSheet   = "Candidates"
	exportBatch   = 100
	maxExportRows = 5000
)

var columnLabels = map[string]string{
	"name":                    "Name",
	"email":                   "Email",
	"fit_status":              "Fit Status",
	"current_company":         "Current Company",
	"mobile":                  "Mobile",
	"summary":                 "Summary",
	"collegename":             "College",
	"skillsets":               "Skills",
	"total_skills":            "Total Skills",
	"total_experience":        "Total Experience",
	"total_experience_months": "Total Experience (Months)",
	"number_of_companies":     "Companies",
	"latest_company":          "Latest Company",
	"latest_start_date":       "Latest Start Date",
	"latest_end_date":         "Latest End Date",
	"latest_duration_months":  "Latest Duration (Months)",
	"experience_history":      "Experience History",
	"github_link":             "GitHub",
	"linkedin_link":           "LinkedIn",
}

// ExportColumns returns the sheet layout for a folder: name and email lead.
func ExportColumns(visible []string) []string {
	out := []string{"name", "email"}
	for _, key := range visible {
		if key == "name" || key == "email" || slices.Contains(out, key) {
			continue
		}
		if _, ok := columnLabels[key]; !ok {
			continue
		}
		out = append(out, key)
	}
	return out
}

// Export renders the folder's successful records as an xlsx workbook.
func (s *Service) Export(ctx context.Context, accountID, folderName string) ([]byte, error) {
	folderName = strings.TrimSpace(folderName)
	if folderName == "" {
		folderName = folders.DefaultName
	}
	visible := folders.DefaultColumns
	if s.Folders != nil {
		folder, err := s.Folders.Get(ctx, accountID, folderName)
		if err != nil {
			return nil, err
		}
		visible = folder.VisibleColumns
	}

	var records []Record
	for offset := 0; offset < maxExportRows; offset += exportBatch {
		items, total, err := s.Repo.List(ctx, accountID, Query{
			Filter: Filter{Folder: folderName, Status: StatusSuccess},
			Offset: offset,
			Limit:  exportBatch,
		})
		if err != nil {
			return nil, err
		}
		records = append(records, items...)
		if offset+len(items) >= total || len(items) == 0 {
			break
		}
	}
	return renderWorkbook(ExportColumns(visible), records, s.now())
}

func renderWorkbook(columns []string, records []Record, now time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	for i, key := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(exportSheet, cell, columnLabels[key])
		_ = f.SetCellStyle(exportSheet, cell, cell, headerStyle)
		colName, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(exportSheet, colName, colName, columnWidth(key))
	}

	for r, rec := range records {
		if rec.Candidate == nil {
			continue
		}
		summary := experience.Summarize(rec.Candidate.Experience, now)
		for i, key := range columns {
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			_ = f.SetCellValue(exportSheet, cell, ColumnValue(rec.Candidate, summary, key))
		}
	}
	_ = f.SetPanes(exportSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func columnWidth(key string) float64 {
	switch key {
	case "summary", "experience_history", "skillsets":
		return 50
	case "email", "linkedin_link", "github_link":
		return 30
	default:
		return 18
	}
}

// ColumnValue derives one cell for a candidate.
func ColumnValue(c *oracle.Candidate, sum experience.Summary, key string) any {
	switch key {
	case "name":
		return c.Name
	case "email":
		return c.Email
	case "mobile":
		return c.Mobile
	case "github_link":
		return c.GithubLink
	case "linkedin_link":
		return c.LinkedinLink
	case "current_company":
		return c.CurrentCompany
	case "collegename":
		return c.CollegeName
	case "fit_status":
		if c.Fit == nil {
			return ""
		}
		return c.Fit.FitStatus
	case "summary":
		if c.Fit == nil {
			return ""
		}
		return c.Fit.Summary
	case "skillsets":
		return strings.Join(c.Skillsets, ", ")
	case "total_skills":
		return len(c.Skillsets)
	case "total_experience":
		return experience.FormatMonths(sum.TotalMonths)
	case "total_experience_months":
		return sum.TotalMonths
	case "number_of_companies":
		return sum.Companies
	case "latest_company":
		if sum.Latest == nil {
			return ""
		}
		return deref(sum.Latest.Company)
	case "latest_start_date":
		if sum.Latest == nil {
			return ""
		}
		return deref(sum.Latest.StartDate)
	case "latest_end_date":
		if sum.Latest == nil {
			return ""
		}
		return deref(sum.Latest.EndDate)
	case "latest_duration_months":
		if sum.Latest == nil || sum.Latest.Months == nil {
			return ""
		}
		return *sum.Latest.Months
	case "experience_history":
		parts := make([]string, 0, len(c.Experience))
		for _, e := range c.Experience {
			parts = append(parts, fmt.Sprintf("%s (%s - %s)", orDash(e.Company), orDash(e.StartDate), orDash(e.EndDate)))
		}
		return strings.Join(parts, "; ")
	default:
		return ""
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orDash(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return "-"
	}
	return *s
}
