package catalog

import (
	"math"
	"strings"

	"github.com/dalemusser/vitrine/internal/app/system/workbook"
	"github.com/dalemusser/vitrine/internal/domain/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultExportFilename is used when the caller gives no name.
const DefaultExportFilename = "imoveis.xlsx"

// ExportSheet names the single sheet of an exported workbook.
const ExportSheet = "Imóveis"

// ExportColumns is the fixed export schema. Every header is one the
// importer recognizes except ID, so an export can be imported again.
var ExportColumns = []workbook.Column{
	{Header: "ID", Width: 28},
	{Header: "Título", Width: 40},
	{Header: "Endereço", Width: 45},
	{Header: "Tipo", Width: 10},
	{Header: "Preço", Width: 18},
	{Header: "Quartos", Width: 10},
	{Header: "Banheiros", Width: 10},
	{Header: "Área (m²)", Width: 12},
	{Header: "Status", Width: 12},
	{Header: "Destaque", Width: 10},
	{Header: "Imagem principal", Width: 40},
	{Header: "Imagens", Width: 60},
}

// KindLabel returns the pt-BR label for k.
func KindLabel(k models.ListingKind) string {
	if k == models.KindSale {
		return "Venda"
	}
	return "Aluguel"
}

// StatusLabel returns the pt-BR label for s; blank reads as active.
func StatusLabel(s models.Status) string {
	switch s {
	case models.StatusActive, "":
		return "Ativo"
	case models.StatusPending:
		return "Pendente"
	case models.StatusArchived:
		return "Arquivado"
	}
	return string(s)
}

// FeaturedLabel returns "Sim" or "Não".
func FeaturedLabel(featured bool) string {
	if featured {
		return "Sim"
	}
	return "Não"
}

// FormatPrice renders a price with pt-BR grouping: "R$ 2.000/mês" for
// rentals, "R$ 500.000" for sales. Cents are shown only when present.
func FormatPrice(price float64, kind models.ListingKind) string {
	ptBR := message.NewPrinter(language.BrazilianPortuguese)
	var s string
	if price == math.Trunc(price) {
		s = ptBR.Sprintf("R$ %d", int64(price))
	} else {
		s = ptBR.Sprintf("R$ %.2f", price)
	}
	if kind == models.KindRent {
		s += "/mês"
	}
	return s
}

// ExportTable projects props into the fixed export schema, in order.
func ExportTable(props []models.Property) workbook.Table {
	rows := make([][]any, 0, len(props))
	for _, p := range props {
		rows = append(rows, []any{
			p.ID,
			p.Title,
			p.PublicAddress,
			KindLabel(p.Kind),
			FormatPrice(p.Price, p.Kind),
			p.Bedrooms,
			p.Bathrooms,
			p.AreaSqMeters,
			StatusLabel(p.Status),
			FeaturedLabel(p.Featured),
			p.PrimaryImage,
			strings.Join(p.Images, "; "),
		})
	}
	cols := make([]workbook.Column, len(ExportColumns))
	copy(cols, ExportColumns)
	return workbook.Table{Sheet: ExportSheet, Columns: cols, Rows: rows}
}

// Download is a rendered file ready to be served.
type Download struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Export renders props as a workbook. The format is taken from f, or from
// the filename extension when f is empty, defaulting to xlsx.
func Export(props []models.Property, filename string, f workbook.Format) (Download, error) {
	if filename == "" {
		filename = DefaultExportFilename
	}
	if f == "" {
		var ok bool
		if f, ok = workbook.FormatOf(filename); !ok {
			f = workbook.XLSX
		}
	}
	data, err := workbook.Render(ExportTable(props), f)
	if err != nil {
		return Download{}, err
	}
	return Download{
		Filename:    f.Filename(filename),
		ContentType: f.ContentType(),
		Data:        data,
	}, nil
}
