// internal/app/features/properties/write.go
package properties

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	uierrors "github.com/dalemusser/vitrine/internal/app/features/errors"
	"github.com/dalemusser/vitrine/internal/app/system/notify"
	"github.com/dalemusser/vitrine/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

func (h *Handler) readDraft(w http.ResponseWriter, r *http.Request) (models.Draft, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "read body failed", err, "Corpo da requisição inválido ou grande demais.")
		return models.Draft{}, false
	}
	d, err := decodeDraft(h.draftSchema, body)
	if err != nil {
		h.ErrLog.Log(w, r, "draft rejected", err)
		return models.Draft{}, false
	}
	return d, true
}

// HandleCreate handles POST /admin/properties.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	d, ok := h.readDraft(w, r)
	if !ok {
		return
	}
	ctx, rec := withRecorder(r)
	p, err := h.Sync.Create(ctx, d)
	if err != nil {
		h.ErrLog.Log(w, r, "create property failed", err)
		return
	}
	writeProperty(w, http.StatusCreated, p, rec)
}

// HandleUpdate handles PUT /admin/properties/{id}. An If-Match header
// carrying the property version turns the write into a conditional one.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, ok := h.readDraft(w, r)
	if !ok {
		return
	}

	ctx, rec := withRecorder(r)
	var (
		p   models.Property
		err error
	)
	if version, has := ifMatch(r); has {
		p, err = h.Sync.UpdateIfVersion(ctx, id, d, version)
	} else {
		p, err = h.Sync.Update(ctx, id, d)
	}
	if err != nil {
		h.ErrLog.Log(w, r, "update property failed", err)
		return
	}
	writeProperty(w, http.StatusOK, p, rec)
}

// ifMatch parses an If-Match header such as `"3"` or `W/"3"`.
func ifMatch(r *http.Request) (int64, bool) {
	v := strings.TrimSpace(r.Header.Get("If-Match"))
	v = strings.TrimPrefix(v, "W/")
	v = strings.Trim(v, `"`)
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// HandleDelete handles DELETE /admin/properties/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, rec := withRecorder(r)
	if err := h.Sync.Delete(ctx, id); err != nil {
		h.ErrLog.Log(w, r, "delete property failed", err)
		return
	}
	h.Log.Info("property deleted", zap.String("property_id", id))
	uierrors.WriteJSON(w, http.StatusOK, propertyResponse{Notifications: notifications(rec)})
}

// HandleToggleVisibility handles POST /admin/properties/{id}/visibility.
func (h *Handler) HandleToggleVisibility(w http.ResponseWriter, r *http.Request) {
	ctx, rec := withRecorder(r)
	p, err := h.Sync.ToggleVisibility(ctx, chi.URLParam(r, "id"))
	h.respondTransition(w, r, "toggle visibility failed", p, err, rec)
}

// HandleToggleFeatured handles POST /admin/properties/{id}/featured.
func (h *Handler) HandleToggleFeatured(w http.ResponseWriter, r *http.Request) {
	ctx, rec := withRecorder(r)
	p, err := h.Sync.ToggleFeatured(ctx, chi.URLParam(r, "id"))
	h.respondTransition(w, r, "toggle featured failed", p, err, rec)
}

type statusRequest struct {
	Status string `json:"status"`
}

// HandleChangeStatus handles POST /admin/properties/{id}/status with a
// body of {"status": "active"|"pending"|"archived"}.
func (h *Handler) HandleChangeStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode status failed", err, "Corpo da requisição inválido.")
		return
	}
	ctx, rec := withRecorder(r)
	p, err := h.Sync.ChangeStatus(ctx, chi.URLParam(r, "id"), models.Status(strings.TrimSpace(req.Status)))
	h.respondTransition(w, r, "change status failed", p, err, rec)
}

func (h *Handler) respondTransition(w http.ResponseWriter, r *http.Request, msg string, p models.Property, err error, rec *notify.Recorder) {
	if err != nil {
		h.ErrLog.Log(w, r, msg, err)
		return
	}
	writeProperty(w, http.StatusOK, p, rec)
}
