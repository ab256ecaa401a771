// internal/app/features/listings/handler.go
package listings

import (
	"github.com/dalemusser/vitrine/internal/app/catalog"
	uierrors "github.com/dalemusser/vitrine/internal/app/features/errors"
	"github.com/dalemusser/vitrine/internal/app/system/paging"
	"go.uber.org/zap"
)

// Handler serves the public catalog. Privileged callers see every listing
// with private fields intact; everyone else sees public listings redacted.
//
// It is constructed once at startup in bootstrap and reads the shared
// in-memory catalog.
type Handler struct {
	Catalog  *catalog.Catalog
	PageSize int
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
}

// NewHandler constructs a listings Handler. A pageSize <= 0 uses
// paging.PublicPageSize.
func NewHandler(cat *catalog.Catalog, pageSize int, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	if pageSize <= 0 {
		pageSize = paging.PublicPageSize
	}
	return &Handler{
		Catalog:  cat,
		PageSize: pageSize,
		Log:      logger,
		ErrLog:   errLog,
	}
}
