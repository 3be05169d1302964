// Package export renders comparison results as spreadsheet workbooks.
package export

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/menuinzicht/backend/internal/application/usecase/analytics"
)

const (
	comparisonSheet = "Comparison"
	infoSheet       = "Info"

	// ContentType is the MIME type of the generated workbooks.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var comparisonHeader = []interface{}{"Bucket", "Period A", "Period A dates", "Period B", "Period B dates"}

// ComparisonWorkbook builds an XLSX workbook with one row per aligned bucket
// and a sheet describing how the rows were produced. Missing values stay blank.
// The caller must Close the returned file.
func ComparisonWorkbook(out *analytics.GetComparisonOutput) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", comparisonSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to name comparison sheet: %w", err)
	}
	if err := writeRows(f, out); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := writeInfo(f, out); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

// FileName returns the download name of a comparison workbook.
func FileName(out *analytics.GetComparisonOutput) string {
	return fmt.Sprintf("comparison-%s-%s.xlsx", out.Metric, out.Mode)
}

func writeRows(f *excelize.File, out *analytics.GetComparisonOutput) error {
	if err := f.SetSheetRow(comparisonSheet, "A1", &comparisonHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(comparisonSheet, "A1", "E1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	// Built-in format 2 is "0.00".
	money, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return fmt.Errorf("failed to create number style: %w", err)
	}

	for i, row := range out.Rows {
		line := i + 2
		values := []interface{}{row.Label, cellValue(row.ValueA), row.TooltipA(), cellValue(row.ValueB), row.TooltipB()}
		if err := f.SetSheetRow(comparisonSheet, "A"+strconv.Itoa(line), &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", line, err)
		}
	}

	if len(out.Rows) > 0 {
		last := strconv.Itoa(len(out.Rows) + 1)
		if err := f.SetCellStyle(comparisonSheet, "B2", "B"+last, money); err != nil {
			return fmt.Errorf("failed to style values: %w", err)
		}
		if err := f.SetCellStyle(comparisonSheet, "D2", "D"+last, money); err != nil {
			return fmt.Errorf("failed to style values: %w", err)
		}
	}

	if err := f.SetColWidth(comparisonSheet, "A", "E", 24); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	return nil
}

func writeInfo(f *excelize.File, out *analytics.GetComparisonOutput) error {
	if _, err := f.NewSheet(infoSheet); err != nil {
		return fmt.Errorf("failed to create info sheet: %w", err)
	}

	info := [][]interface{}{
		{"Mode", string(out.Mode)},
		{"Metric", string(out.Metric)},
		{"Chart", string(out.Chart)},
		{"Strategy", string(out.Strategy)},
		{"Alignment", string(out.Policy)},
		{"Comparing", out.Comparing},
		{"Buckets of period A excluded", out.TruncatedA},
		{"Buckets of period B excluded", out.TruncatedB},
	}
	for i, pair := range info {
		if err := f.SetSheetRow(infoSheet, "A"+strconv.Itoa(i+1), &pair); err != nil {
			return fmt.Errorf("failed to write info row: %w", err)
		}
	}
	return f.SetColWidth(infoSheet, "A", "A", 30)
}

// cellValue returns a float for present values and an empty cell for missing ones.
func cellValue(v *decimal.Decimal) interface{} {
	if v == nil {
		return nil
	}
	return v.InexactFloat64()
}
