// internal/app/features/properties/handler.go
package properties

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/vitrine/internal/app/catalog"
	uierrors "github.com/dalemusser/vitrine/internal/app/features/errors"
	"github.com/dalemusser/vitrine/internal/app/system/auth"
	"github.com/dalemusser/vitrine/internal/app/system/notify"
	"github.com/dalemusser/vitrine/internal/app/system/ratelimit"
	"github.com/dalemusser/vitrine/internal/domain/models"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"
)

// Handler owns the admin catalog endpoints: listing, single-property
// writes, workbook import/export and the admin session.
//
// It is constructed once at startup in bootstrap around the shared
// Synchronizer.
type Handler struct {
	Sync     *catalog.Synchronizer
	Sessions *auth.SessionManager
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	SignIns  *ratelimit.Limiter // per client IP

	draftSchema *jsonschema.Schema
}

// NewHandler constructs a Handler. It fails only if the embedded draft
// schema does not compile.
func NewHandler(sync *catalog.Synchronizer, sessions *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) (*Handler, error) {
	schema, err := compileDraftSchema()
	if err != nil {
		return nil, err
	}
	return &Handler{
		Sync:        sync,
		Sessions:    sessions,
		Log:         logger,
		ErrLog:      errLog,
		SignIns:     ratelimit.NewSignIn(),
		draftSchema: schema,
	}, nil
}

// propertyResponse is returned by every single-property write.
type propertyResponse struct {
	Property      *models.Property      `json:"property,omitempty"`
	Notifications []notify.Notification `json:"notifications"`
}

// writeProperty answers with p as privileged viewers see it. The ETag
// carries the version, ready to be sent back in If-Match.
func writeProperty(w http.ResponseWriter, status int, p models.Property, rec *notify.Recorder) {
	out := p.Privileged()
	setETag(w, out)
	uierrors.WriteJSON(w, status, propertyResponse{Property: &out, Notifications: notifications(rec)})
}

func setETag(w http.ResponseWriter, p models.Property) {
	w.Header().Set("ETag", strconv.Quote(strconv.FormatInt(p.Version, 10)))
}

// withRecorder attaches a fresh recorder to the request context so the
// notifications raised by the operation can be returned to the caller.
func withRecorder(r *http.Request) (context.Context, *notify.Recorder) {
	rec := notify.NewRecorder()
	return notify.WithSink(r.Context(), rec), rec
}

func notifications(rec *notify.Recorder) []notify.Notification {
	all := rec.All()
	if all == nil {
		all = []notify.Notification{}
	}
	return all
}
