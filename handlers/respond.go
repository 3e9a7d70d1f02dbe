package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"installcost/costing"
	"installcost/services"
)

var errBadRequest = errors.New("bad request")

// badRequest wraps a client input problem so respondError maps it to 400.
func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// isHTMX reports whether the request was issued by HTMX.
func isHTMX(e *core.RequestEvent) bool {
	return e.Request.Header.Get("HX-Request") == "true"
}

// errorStatus maps domain errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrCalculationNotFound),
		errors.Is(err, services.ErrSupplierNotFound),
		errors.Is(err, costing.ErrVariantNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrVersionConflict),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrReadOnly),
		errors.Is(err, services.ErrNoFinalSnapshot),
		errors.Is(err, costing.ErrVariantCycle):
		return http.StatusConflict
	case errors.Is(err, errBadRequest),
		errors.Is(err, costing.ErrInvalidItemRef),
		errors.Is(err, costing.ErrInvalidStatus),
		errors.Is(err, costing.ErrInvalidPaymentTerms):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError writes err as an error toast for HTMX callers and as
// {"error": "..."} otherwise. Internal errors are logged and not exposed.
func respondError(e *core.RequestEvent, component string, err error) error {
	status := errorStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("%s: %v", component, err)
		message = "Something went wrong. Please try again."
	}
	if isHTMX(e) {
		return ErrorToast(e, status, message)
	}
	return e.JSON(status, map[string]string{"error": message})
}

// parseMode reads the mode query parameter, defaulting to INITIAL.
func parseMode(e *core.RequestEvent) (costing.Mode, error) {
	switch m := costing.Mode(e.Request.URL.Query().Get("mode")); m {
	case "":
		return costing.ModeInitial, nil
	case costing.ModeInitial, costing.ModeFinal:
		return m, nil
	default:
		return "", badRequest("unknown mode %q", m)
	}
}

// parseCurrency reads the currency query parameter. Empty means the offer
// currency of the calculation.
func parseCurrency(e *core.RequestEvent) (costing.Currency, error) {
	c := costing.Currency(e.Request.URL.Query().Get("currency"))
	if c != "" && !c.Valid() {
		return "", badRequest("unknown currency %q", c)
	}
	return c, nil
}
