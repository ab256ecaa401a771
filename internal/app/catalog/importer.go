package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"

	"github.com/dalemusser/vitrine/internal/app/system/filter"
	"github.com/dalemusser/vitrine/internal/app/system/notify"
	"github.com/dalemusser/vitrine/internal/app/system/timeouts"
	"github.com/dalemusser/vitrine/internal/app/system/workbook"
	"github.com/dalemusser/vitrine/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Summary is the outcome of a workbook import.
type Summary struct {
	ImportID     string       `json:"import_id"`
	SuccessCount int          `json:"success_count"`
	ErrorCount   int          `json:"error_count"`
	Failures     []RowFailure `json:"failures,omitempty"`
}

// RowFailure explains why one workbook line was not imported.
type RowFailure struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Workbook columns, matched against headers after folding case and accents
// and dropping everything but letters and digits.
const (
	colTitle        = "title"
	colAddress      = "public_address"
	colFullAddress  = "full_address"
	colPrice        = "price"
	colKind         = "kind"
	colBedrooms     = "bedrooms"
	colBathrooms    = "bathrooms"
	colArea         = "area_sq_meters"
	colPrimaryImage = "primary_image"
	colImages       = "images"
	colDescription  = "description"
	colStatus       = "status"
	colIsPublic     = "is_public"
	colFeatured     = "featured"
	colPhone        = "contact_phone"
	colEmail        = "contact_email"
)

var headerAliases = map[string][]string{
	colTitle:        {"title", "titulo", "nome"},
	colAddress:      {"address", "endereco", "publicaddress", "enderecopublico"},
	colFullAddress:  {"fulladdress", "enderecocompleto"},
	colPrice:        {"price", "preco", "valor"},
	colKind:         {"type", "tipo", "kind", "listingkind", "modalidade"},
	colBedrooms:     {"bedrooms", "quartos", "bedroomcount", "dormitorios"},
	colBathrooms:    {"bathrooms", "banheiros", "bathroomcount"},
	colArea:         {"area", "aream", "aream2", "areasqmeters", "areasqm"},
	colPrimaryImage: {"image", "imagem", "primaryimage", "primaryimageref", "imagemprincipal", "foto"},
	colImages:       {"images", "imagens", "additionalimages", "additionalimagerefs", "fotos"},
	colDescription:  {"description", "descricao"},
	colStatus:       {"status", "situacao"},
	colIsPublic:     {"ispublic", "public", "publico", "visivel"},
	colFeatured:     {"featured", "destaque"},
	colPhone:        {"phone", "telefone", "contactphone"},
	colEmail:        {"email", "contactemail"},
}

var aliasToColumn = func() map[string]string {
	m := map[string]string{}
	for col, aliases := range headerAliases {
		for _, a := range aliases {
			m[a] = col
		}
	}
	return m
}()

// headerKey folds a header to the form used in headerAliases.
func headerKey(h string) string {
	var b strings.Builder
	for _, r := range filter.Fold(h) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// canonicalRow re-keys a workbook row by column name. Unknown headers are
// dropped; the first non-blank header mapping to a column wins, in sheet
// order.
func canonicalRow(r workbook.Row) map[string]string {
	headers := r.Headers
	if len(headers) == 0 {
		headers = make([]string, 0, len(r.Values))
		for h := range r.Values {
			headers = append(headers, h)
		}
		sort.Strings(headers)
	}

	out := make(map[string]string, len(headers))
	for _, h := range headers {
		col, ok := aliasToColumn[headerKey(h)]
		if !ok {
			continue
		}
		if cur, seen := out[col]; seen && cur != "" {
			continue
		}
		out[col] = strings.TrimSpace(r.Values[h])
	}
	return out
}

// DraftFromRow coerces a workbook row into a Draft. Coercion problems are
// returned as field errors; the draft still needs Validate.
func DraftFromRow(r workbook.Row) (models.Draft, []models.FieldError) {
	v := canonicalRow(r)
	d := models.NewDraft()
	var errs []models.FieldError
	bad := func(field, reason string) {
		errs = append(errs, models.FieldError{Field: field, Reason: reason})
	}

	d.Title = v[colTitle]
	d.PublicAddress = v[colAddress]
	d.FullAddress = v[colFullAddress]
	d.Kind = ParseKindLabel(v[colKind])
	d.PrimaryImage = v[colPrimaryImage]
	d.Images = splitImages(v[colImages])
	d.Description = v[colDescription]
	d.Status = ParseStatusLabel(v[colStatus])
	d.ContactPhone = v[colPhone]
	d.ContactEmail = v[colEmail]

	number := func(col string, dst *float64) {
		raw := v[col]
		if raw == "" {
			bad(col, "is required")
			return
		}
		f, ok := ParseNumber(raw)
		if !ok {
			bad(col, fmt.Sprintf("%q is not a number", raw))
			return
		}
		*dst = f
	}
	count := func(col string, dst *int) {
		raw := v[col]
		if raw == "" {
			return
		}
		n, ok := ParseCount(raw)
		if !ok {
			bad(col, fmt.Sprintf("%q is not a whole number", raw))
			return
		}
		*dst = n
	}
	number(colPrice, &d.Price)
	number(colArea, &d.AreaSqMeters)
	count(colBedrooms, &d.Bedrooms)
	count(colBathrooms, &d.Bathrooms)

	if raw, ok := v[colIsPublic]; ok && raw != "" {
		d.IsPublic = ParseTruthy(raw)
	}
	if raw, ok := v[colFeatured]; ok && raw != "" {
		d.Featured = ParseTruthy(raw)
	}
	return d, errs
}

// ImportWorkbook creates one property per data row of the first sheet.
//
// Rows are submitted one at a time and counted independently; a failed row
// never undoes an earlier success. When at least one row was created the
// whole catalog is reloaded from the store. An unreadable or empty
// workbook returns a *ParseError before anything is submitted.
func (s *Synchronizer) ImportWorkbook(ctx context.Context, file io.Reader, name string) (Summary, error) {
	sum := Summary{ImportID: uuid.NewString()}
	log := s.log.With(zap.String("import_id", sum.ImportID), zap.String("file", name))

	rows, err := workbook.Parse(file, name)
	if err != nil {
		log.Warn("workbook parse failed", zap.Error(err))
		s.notify(ctx, notify.Error, "Não foi possível ler a planilha %q: %s", name, parseReason(err))
		return sum, &ParseError{Err: err}
	}
	if len(rows) == 0 {
		s.notify(ctx, notify.Error, "A planilha %q não contém imóveis.", name)
		return sum, &ParseError{Err: ErrEmptyWorkbook}
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Batch(), log, "workbook import")
	defer cancel()

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			for _, rest := range rows[i:] {
				sum.fail(rest.Line, "import interrupted: "+err.Error())
			}
			break
		}
		if reason := s.importRow(ctx, row); reason != "" {
			sum.fail(row.Line, reason)
			continue
		}
		sum.SuccessCount++
	}

	log.Info("workbook import finished",
		zap.Int("rows", len(rows)),
		zap.Int("success_count", sum.SuccessCount),
		zap.Int("error_count", sum.ErrorCount))

	var reloadErr error
	if sum.SuccessCount > 0 {
		reloadCtx, cancelReload := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Medium())
		_, reloadErr = s.reload(reloadCtx)
		cancelReload()
		s.notify(ctx, notify.Success, "%d imóvel(is) importado(s) com sucesso.", sum.SuccessCount)
	}
	if sum.ErrorCount > 0 {
		s.notify(ctx, notify.Error, "%d linha(s) da planilha não puderam ser importadas.", sum.ErrorCount)
	}
	if reloadErr != nil {
		s.notify(ctx, notify.Error, "Importação concluída, mas o catálogo não pôde ser recarregado.")
		return sum, reloadErr
	}
	return sum, nil
}

func (sum *Summary) fail(line int, reason string) {
	sum.ErrorCount++
	sum.Failures = append(sum.Failures, RowFailure{Line: line, Reason: reason})
}

// importRow coerces, validates and inserts one row. It returns the failure
// reason, or "" on success.
func (s *Synchronizer) importRow(ctx context.Context, row workbook.Row) string {
	d, coerceErrs := DraftFromRow(row)
	d, err := prepare(d)
	var fields []models.FieldError
	fields = append(fields, coerceErrs...)
	var ve *ValidationError
	if errors.As(err, &ve) {
		fields = mergeFieldErrors(fields, ve.Fields)
	}
	if len(fields) > 0 {
		return (&ValidationError{Fields: fields}).Error()
	}

	var p models.Property
	p.Apply(d)
	if _, err := s.store.Insert(ctx, p); err != nil {
		s.log.Warn("import row insert failed", zap.Int("line", row.Line), zap.Error(err))
		return (&RemoteError{Op: "create", Err: err}).Error()
	}
	return ""
}

// mergeFieldErrors appends b to a, skipping fields a already reports.
func mergeFieldErrors(a, b []models.FieldError) []models.FieldError {
	seen := make(map[string]bool, len(a))
	for _, f := range a {
		seen[f.Field] = true
	}
	for _, f := range b {
		if !seen[f.Field] {
			a = append(a, f)
		}
	}
	return a
}

func parseReason(err error) string {
	switch {
	case errors.Is(err, workbook.ErrTooLarge):
		return "arquivo maior que 5 MB"
	case errors.Is(err, workbook.ErrTooManyRows):
		return fmt.Sprintf("mais de %d linhas", workbook.MaxRows)
	case errors.Is(err, workbook.ErrUnsupportedFormat):
		return "formato não suportado (use .xlsx ou .csv)"
	}
	return "arquivo inválido"
}
