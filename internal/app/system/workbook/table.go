package workbook

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Column describes one output column. Width is in spreadsheet character
// units and is ignored by csv.
type Column struct {
	Header string
	Width  float64
}

// Table is a single-sheet tabular document ready to be rendered.
type Table struct {
	Sheet   string
	Columns []Column
	Rows    [][]any
}

// Headers returns the column headers in order.
func (t Table) Headers() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Header
	}
	return out
}

// Render encodes t in format f.
func Render(t Table, f Format) ([]byte, error) {
	switch f {
	case XLSX, "":
		return renderXLSX(t)
	case CSV:
		return renderCSV(t)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

func renderXLSX(t Table) ([]byte, error) {
	x := excelize.NewFile()
	defer x.Close()

	sheet := t.Sheet
	if sheet == "" {
		sheet = "Sheet1"
	}
	if def := x.GetSheetName(0); def != sheet {
		if err := x.SetSheetName(def, sheet); err != nil {
			return nil, fmt.Errorf("workbook: name sheet: %w", err)
		}
	}

	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c.Header
		if c.Width > 0 {
			col, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				return nil, err
			}
			if err := x.SetColWidth(sheet, col, col, c.Width); err != nil {
				return nil, fmt.Errorf("workbook: column width: %w", err)
			}
		}
	}
	if err := x.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("workbook: header row: %w", err)
	}
	if len(t.Columns) > 0 {
		style, err := x.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return nil, err
		}
		if err := x.SetRowStyle(sheet, 1, 1, style); err != nil {
			return nil, err
		}
	}

	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		r := row
		if err := x.SetSheetRow(sheet, cell, &r); err != nil {
			return nil, fmt.Errorf("workbook: row %d: %w", i+2, err)
		}
	}

	buf, err := x.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("workbook: write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func renderCSV(t Table) ([]byte, error) {
	var buf bytes.Buffer
	// UTF-8 BOM so Excel opens accented headers correctly.
	buf.WriteString("\ufeff")

	cw := csv.NewWriter(&buf)
	cw.UseCRLF = true
	if err := cw.Write(t.Headers()); err != nil {
		return nil, err
	}
	rec := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		rec = rec[:0]
		for _, v := range row {
			rec = append(rec, cellString(v))
		}
		if err := cw.Write(rec); err != nil {
			return nil, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
