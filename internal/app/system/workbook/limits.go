// internal/app/system/workbook/limits.go
package workbook

import "errors"

// Upload size and row limits for workbook processing.
const (
	MaxUploadSize = 5 << 20 // 5 MB
	MaxRows       = 20000
)

var (
	// ErrTooManyRows is returned when a sheet holds more than MaxRows data rows.
	ErrTooManyRows = errors.New("workbook: too many rows")
	// ErrTooLarge is returned when the input exceeds MaxUploadSize.
	ErrTooLarge = errors.New("workbook: file too large")
	// ErrUnsupportedFormat is returned for anything other than xlsx or csv.
	ErrUnsupportedFormat = errors.New("workbook: unsupported format")
	// ErrNoSheet is returned for an xlsx file without worksheets.
	ErrNoSheet = errors.New("workbook: no sheet")
)
