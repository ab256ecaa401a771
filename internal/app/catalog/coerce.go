package catalog

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dalemusser/vitrine/internal/app/system/filter"
	"github.com/dalemusser/vitrine/internal/domain/models"
)

// numberRegexp captures the first numeric run, with grouping/decimal marks.
var numberRegexp = regexp.MustCompile(`-?\d[\d.,]*`)

var truthy = map[string]bool{
	"1": true, "true": true, "sim": true, "s": true, "yes": true,
	"y": true, "x": true, "verdadeiro": true,
}

// ParseNumber extracts a number from spreadsheet text, accepting pt-BR and
// en-US grouping:
//
//	"2000" → 2000
//	"2.000" → 2000
//	"R$ 2.000/mês" → 2000
//	"1.234,56" → 1234.56
//	"60.5" → 60.5
func ParseNumber(raw string) (float64, bool) {
	m := numberRegexp.FindString(strings.TrimSpace(raw))
	if m == "" {
		return 0, false
	}
	m = strings.TrimRight(m, ".,")

	dots, commas := strings.Count(m, "."), strings.Count(m, ",")
	switch {
	case dots > 0 && commas > 0:
		// Whichever mark comes last is the decimal separator.
		if strings.LastIndex(m, ",") > strings.LastIndex(m, ".") {
			m = strings.ReplaceAll(m, ".", "")
			m = strings.Replace(m, ",", ".", 1)
		} else {
			m = strings.ReplaceAll(m, ",", "")
		}
	case commas > 1:
		m = strings.ReplaceAll(m, ",", "")
	case commas == 1:
		m = strings.Replace(m, ",", ".", 1)
	case dots > 1:
		m = strings.ReplaceAll(m, ".", "")
	case dots == 1:
		// pt-BR thousands: exactly three digits after a single dot.
		if i := strings.Index(m, "."); len(m)-i-1 == 3 {
			m = strings.Replace(m, ".", "", 1)
		}
	}

	f, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseCount parses a non-fractional count such as a bedroom number.
func ParseCount(raw string) (int, bool) {
	f, ok := ParseNumber(raw)
	if !ok || f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

// ParseTruthy reports whether raw is one of the accepted "yes" spellings.
func ParseTruthy(raw string) bool {
	return truthy[filter.Fold(strings.TrimSpace(raw))]
}

// ParseKindLabel maps the workbook "type" column: "Venda", in any case or
// accenting, is a sale and anything else a rental.
func ParseKindLabel(raw string) models.ListingKind {
	if filter.Fold(strings.TrimSpace(raw)) == "venda" {
		return models.KindSale
	}
	return models.KindRent
}

// ParseStatusLabel maps "Ativo/Pendente/Arquivado" or canonical values.
// Blank means the default; anything unknown is returned as-is so that
// validation rejects it.
func ParseStatusLabel(raw string) models.Status {
	s := filter.Fold(strings.TrimSpace(raw))
	switch s {
	case "":
		return models.DefaultStatus
	case "ativo", "ativa":
		return models.StatusActive
	case "pendente":
		return models.StatusPending
	case "arquivado", "arquivada":
		return models.StatusArchived
	}
	if st, ok := models.ParseStatus(s); ok {
		return st
	}
	return models.Status(strings.TrimSpace(raw))
}

// splitImages splits a cell holding several image URLs.
func splitImages(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ';' || r == '|' || r == '\n' || r == ' ' || r == '\t' || r == ','
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
