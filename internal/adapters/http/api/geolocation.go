package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/mapty/internal/adapters/geo"
)

// Locator asks the session for the position again when its map is missing.
type Locator interface {
	Locate(ctx context.Context) error
}

// GeolocationHandler accepts positions reported by the page. Without a
// reporter both routes answer 409.
type GeolocationHandler struct {
	reporter LocationReporter
	locator  Locator
}

// NewGeolocationHandler creates a new geolocation handler. r may be nil.
func NewGeolocationHandler(r LocationReporter, l Locator) *GeolocationHandler {
	return &GeolocationHandler{reporter: r, locator: l}
}

// HandleReport handles POST /geolocation requests.
func (h *GeolocationHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	if h.reporter == nil {
		writeError(w, http.StatusConflict, "conflict", ErrNoLocationInput)
		return
	}
	var req positionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := h.reporter.Report(r.Context(), req.coords()); err != nil {
		if errors.Is(err, geo.ErrUnavailable) {
			writeError(w, http.StatusUnprocessableEntity, "invalid_input", err)
			return
		}
		writeServiceError(w, err)
		return
	}
	// Restarts the lookup if an earlier request already failed.
	if h.locator != nil {
		if err := h.locator.Locate(r.Context()); err != nil {
			writeServiceError(w, err)
			return
		}
	}
	w.WriteHeader(http.StatusAccepted)
}

// HandleReportError handles POST /geolocation/error requests.
func (h *GeolocationHandler) HandleReportError(w http.ResponseWriter, r *http.Request) {
	if h.reporter == nil {
		writeError(w, http.StatusConflict, "conflict", ErrNoLocationInput)
		return
	}
	var req positionErrorRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	h.reporter.ReportError(r.Context(), req.Reason)
	w.WriteHeader(http.StatusAccepted)
}
