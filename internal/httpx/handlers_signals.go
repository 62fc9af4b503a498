package httpx

import (
	"net/http"

	"github.com/campusworks/portal-session/internal/service"
)

// SignalHandlers receives browser-reported lifecycle signals and feeds
// them to the session controller's monitors.
type SignalHandlers struct {
	Controller *service.Controller
}

// Activity records a qualifying user-activity signal, restarting the
// idle window.
// POST /signals/activity.
func (h *SignalHandlers) Activity(w http.ResponseWriter, r *http.Request) {
	h.Controller.RecordActivity()
	w.WriteHeader(http.StatusNoContent)
}

// Visibility records a tab visibility transition. Stable hidden-to-
// visible edges trigger a debounced session refresh.
// POST /signals/visibility.
func (h *SignalHandlers) Visibility(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Visible bool `json:"visible"`
	}
	if !DecodeJSON(w, r, &body) {
		return
	}

	h.Controller.RecordVisibility(body.Visible)
	w.WriteHeader(http.StatusNoContent)
}
