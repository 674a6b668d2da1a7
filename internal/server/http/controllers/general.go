package controllers

import (
	"net/http"

	"github.com/moorlog/moor/internal/runtime"
	anchorsvc "github.com/moorlog/moor/internal/services/anchors"
)

// GeneralController handles general HTTP endpoints like health and limits.
type GeneralController struct {
	rt  *runtime.Runtime
	svc *anchorsvc.Service
}

// NewGeneralController creates a new general controller.
func NewGeneralController(rt *runtime.Runtime, svc *anchorsvc.Service) *GeneralController {
	return &GeneralController{
		rt:  rt,
		svc: svc,
	}
}

// RegisterRoutes registers general routes with the given mux.
func (c *GeneralController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/healthz", c.handleHealth)
	mux.HandleFunc("/v1/limits", c.handleLimits)
}

// handleHealth returns the health status of the service.
//
// Returns 200 OK with {"status": "ok"} if healthy, 503 Service Unavailable otherwise.
func (c *GeneralController) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := c.rt.CheckHealth(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "not_serving")
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleLimits exposes the compiled-in structural bounds so clients can
// validate before submitting.
func (c *GeneralController) handleLimits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	writeJSON(w, c.svc.Limits())
}
