package controllers

import (
	"net/http"

	"github.com/kigurumiya/reserve-backend/api/responses"
	inventorysvc "github.com/kigurumiya/reserve-backend/internal/inventory"
	pkgerrors "github.com/kigurumiya/reserve-backend/pkg/errors"
	"github.com/kigurumiya/reserve-backend/pkg/logger"
)

// PublicListItems returns the active rental catalog without stock numbers.
func PublicListItems(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}
		items, err := svc.ListPublicItems(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}
