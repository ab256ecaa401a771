package workbook

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row is one data row of the first sheet, keyed by trimmed header text.
// Line is the 1-based row number in the file (the header is line 1 when
// it is the first row).
type Row struct {
	Line   int
	Values map[string]string
	// Headers lists the non-blank headers in sheet order. It is shared
	// by every row of a sheet.
	Headers []string
}

// Get returns the trimmed value for header h.
func (r Row) Get(h string) string {
	return strings.TrimSpace(r.Values[h])
}

// Parse reads the first sheet of an xlsx or csv file. The first non-blank
// row is the header; blank data rows are skipped. An empty sheet yields an
// empty slice and no error.
func Parse(r io.Reader, filename string) ([]Row, error) {
	f, ok := FormatOf(filename)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filename)
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("workbook: read: %w", err)
	}
	if len(data) > MaxUploadSize {
		return nil, ErrTooLarge
	}

	var records [][]string
	switch f {
	case XLSX:
		records, err = readXLSX(data)
	case CSV:
		records, err = readCSV(data)
	}
	if err != nil {
		return nil, err
	}
	return toRows(records)
}

func readXLSX(data []byte) ([][]string, error) {
	x, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("workbook: open xlsx: %w", err)
	}
	defer x.Close()

	sheets := x.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheet
	}
	rows, err := x.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("workbook: read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // allow variable fields
	reader.TrimLeadingSpace = true
	reader.Comma = sniffComma(data)

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("workbook: read csv: %w", err)
	}
	return records, nil
}

// sniffComma picks ';' when the first line has more semicolons than
// commas, which is what spreadsheet apps in pt-BR locales write.
func sniffComma(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}

func toRows(records [][]string) ([]Row, error) {
	headerAt := -1
	for i, rec := range records {
		if !blank(rec) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return []Row{}, nil
	}

	header := make([]string, len(records[headerAt]))
	for i, h := range records[headerAt] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	ordered := make([]string, 0, len(header))
	for _, h := range header {
		if h != "" {
			ordered = append(ordered, h)
		}
	}

	rows := make([]Row, 0, len(records)-headerAt-1)
	for i := headerAt + 1; i < len(records); i++ {
		rec := records[i]
		if blank(rec) {
			continue
		}
		if len(rows) >= MaxRows {
			return nil, ErrTooManyRows
		}
		values := make(map[string]string, len(header))
		for j, h := range header {
			if h == "" {
				continue
			}
			if j < len(rec) {
				values[h] = strings.TrimSpace(rec[j])
			} else {
				values[h] = ""
			}
		}
		rows = append(rows, Row{Line: i + 1, Values: values, Headers: ordered})
	}
	return rows, nil
}

func blank(rec []string) bool {
	for _, s := range rec {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}
