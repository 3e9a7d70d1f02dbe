package handlers

import (
	"encoding/json"
	"log"

	"github.com/pocketbase/pocketbase/core"
)

// addTrigger adds one event to the HX-Trigger response header, keeping the
// events already set. A header that is not a JSON object is replaced.
func addTrigger(e *core.RequestEvent, event string, payload any) {
	events := map[string]any{}
	if existing := e.Response.Header().Get("HX-Trigger"); existing != "" {
		if err := json.Unmarshal([]byte(existing), &events); err != nil {
			log.Printf("toast: existing HX-Trigger is not valid JSON, overwriting: %v", err)
			events = map[string]any{}
		}
	}
	events[event] = payload

	data, err := json.Marshal(events)
	if err != nil {
		log.Printf("toast: failed to marshal HX-Trigger JSON: %v", err)
		return
	}
	e.Response.Header().Set("HX-Trigger", string(data))
}

// SetToast asks the client to show a toast notification of the given type
// (success, info, warning or error).
func SetToast(e *core.RequestEvent, toastType string, message string) {
	addTrigger(e, "showToast", map[string]string{
		"message": message,
		"type":    toastType,
	})
}

// TriggerCalculationChanged tells open views of a calculation that it was
// saved at a new version, so stale forms refresh before their next edit.
func TriggerCalculationChanged(e *core.RequestEvent, id string, version int) {
	addTrigger(e, "calculationChanged", map[string]any{
		"id":      id,
		"version": version,
	})
}

// ErrorToast sets an error toast and prevents HTMX from swapping the error text into the DOM.
// It sets HX-Reswap: none so the response body is ignored by HTMX, while the HX-Trigger
// header still fires the toast event.
func ErrorToast(e *core.RequestEvent, statusCode int, message string) error {
	SetToast(e, "error", message)
	e.Response.Header().Set("HX-Reswap", "none")
	return e.String(statusCode, message)
}
