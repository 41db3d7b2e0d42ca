package httpapi

import (
	"bytes"
	"fmt"
	"strings"

	"seniorsync/internal/domain"

	"github.com/xuri/excelize/v2"
)

// ReportExportHeader 日报导出表头
var ReportExportHeader = []string{
	"Date",
	"User ID",
	"Sleep Hours",
	"Mood Rating",
	"Pain",
	"Pain Severity",
	"Medications Taken",
	"Meals",
	"Health Concerns",
	"Concerns",
	"Summary",
}

const reportSheetName = "Health Reports"

func reportRow(r *domain.StoredReport) []any {
	return []any{
		r.ReportDate,
		r.UserID,
		r.SleepHours,
		r.MoodRating,
		r.Pain,
		r.PainSeverity,
		r.MedicationsTaken,
		r.Meals,
		r.HealthConcerns,
		strings.Join(r.Concerns, "; "),
		r.Summary,
	}
}

// GenerateReportExport 生成日报 Excel；reports 为空时只有表头
func GenerateReportExport(reports []*domain.StoredReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(reportSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	// 有告警项的行标红
	concernStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "#C00000"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create concern style: %w", err)
	}

	if err := f.SetSheetRow(reportSheetName, "A1", &ReportExportHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(ReportExportHeader))
	if err != nil {
		return nil, fmt.Errorf("failed to convert column number: %w", err)
	}
	if err := f.SetCellStyle(reportSheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}

	widths := map[string]float64{"A": 12, "B": 20, "J": 40, "K": 60}
	for col, width := range widths {
		if err := f.SetColWidth(reportSheetName, col, col, width); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, r := range reports {
		row := i + 2
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		values := reportRow(r)
		if err := f.SetSheetRow(reportSheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", row, err)
		}
		if len(r.Concerns) > 0 {
			if err := f.SetCellStyle(reportSheetName, cell, fmt.Sprintf("%s%d", lastCol, row), concernStyle); err != nil {
				return nil, fmt.Errorf("failed to set row style: %w", err)
			}
		}
	}

	if err := f.SetPanes(reportSheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
