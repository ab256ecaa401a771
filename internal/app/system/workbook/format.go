package workbook

import (
	"path/filepath"
	"strings"
)

// Format is a tabular file format.
type Format string

const (
	XLSX Format = "xlsx"
	CSV  Format = "csv"
)

// ParseFormat maps "xlsx", ".csv" and the like to a Format.
func ParseFormat(s string) (Format, bool) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "xlsx":
		return XLSX, true
	case "csv":
		return CSV, true
	}
	return "", false
}

// FormatOf returns the format implied by filename's extension.
func FormatOf(filename string) (Format, bool) {
	return ParseFormat(filepath.Ext(filename))
}

// Extension returns ".xlsx" or ".csv".
func (f Format) Extension() string { return "." + string(f) }

// ContentType returns the MIME type used for downloads.
func (f Format) ContentType() string {
	if f == CSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Filename returns name with f's extension, replacing any other extension.
func (f Format) Filename(name string) string {
	name = strings.TrimSpace(filepath.Base(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "export"
	}
	ext := filepath.Ext(name)
	if _, ok := ParseFormat(ext); ok {
		name = strings.TrimSuffix(name, ext)
	}
	return name + f.Extension()
}
