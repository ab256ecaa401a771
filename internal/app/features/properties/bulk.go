// internal/app/features/properties/bulk.go
package properties

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dalemusser/vitrine/internal/app/catalog"
	uierrors "github.com/dalemusser/vitrine/internal/app/features/errors"
	"github.com/dalemusser/vitrine/internal/app/system/notify"
	"github.com/dalemusser/vitrine/internal/app/system/workbook"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// multipartOverhead is the allowance for form boundaries and headers on
// top of the workbook itself.
const multipartOverhead = 64 << 10

type importResponse struct {
	catalog.Summary
	Notifications []notify.Notification `json:"notifications"`
	Error         string                `json:"error,omitempty"`
}

// HandleImport handles POST /admin/properties/import with the workbook in
// the multipart field "file".
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, workbook.MaxUploadSize+multipartOverhead)
	if err := r.ParseMultipartForm(workbook.MaxUploadSize); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			h.ErrLog.LogBadRequest(w, r, "upload too large", err,
				fmt.Sprintf("Arquivo grande demais. O limite é %d MB.", workbook.MaxUploadSize>>20))
			return
		}
		h.ErrLog.LogBadRequest(w, r, "parse multipart failed", err, "Formulário inválido.")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "missing upload", err, `Envie a planilha no campo "file".`)
		return
	}
	defer file.Close()

	ctx, rec := withRecorder(r)
	sum, err := h.Sync.ImportWorkbook(ctx, file, header.Filename)

	resp := importResponse{Summary: sum, Notifications: notifications(rec)}
	status := http.StatusOK
	if err != nil {
		status = uierrors.StatusCode(err)
		resp.Error = err.Error()
		h.Log.Warn("workbook import failed",
			zap.String("import_id", sum.ImportID),
			zap.String("file", header.Filename),
			zap.Int("status", status),
			zap.Error(err))
	}
	uierrors.WriteJSON(w, status, resp)
}

// HandleExport handles GET /admin/properties/export. It honours the same
// filters as the list plus "filename" and "format" (xlsx or csv).
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	var f workbook.Format
	if s := query.Get(r, "format"); s != "" {
		var ok bool
		if f, ok = workbook.ParseFormat(s); !ok {
			h.ErrLog.LogBadRequest(w, r, "bad export format", workbook.ErrUnsupportedFormat,
				"Formato desconhecido. Use xlsx ou csv.")
			return
		}
	}

	dl, err := h.adminView(r).Export(strings.TrimSpace(query.Get(r, "filename")), f)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "export failed", err, "Não foi possível gerar a planilha.")
		return
	}

	w.Header().Set("Content-Type", dl.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, url.PathEscape(dl.Filename)))
	w.Header().Set("Content-Length", strconv.Itoa(len(dl.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(dl.Data)
}

type reloadResponse struct {
	Count         int                   `json:"count"`
	Notifications []notify.Notification `json:"notifications"`
}

// HandleReload handles POST /admin/properties/reload.
func (h *Handler) HandleReload(w http.ResponseWriter, r *http.Request) {
	ctx, rec := withRecorder(r)
	n, err := h.Sync.Reload(ctx)
	if err != nil {
		h.ErrLog.Log(w, r, "reload failed", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, reloadResponse{Count: n, Notifications: notifications(rec)})
}
