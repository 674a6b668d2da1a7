package controllers

import (
	"net/http"

	"github.com/moorlog/moor/internal/runtime"
	anchorsvc "github.com/moorlog/moor/internal/services/anchors"
)

// ControllerRegistry manages all HTTP controllers.
//
// It provides a centralized way to register all controller routes
// and manages the lifecycle of individual controllers.
type ControllerRegistry struct {
	general *GeneralController
	anchors *AnchorsController
}

// NewControllerRegistry creates a new controller registry.
func NewControllerRegistry(rt *runtime.Runtime, anchorsSvc *anchorsvc.Service) *ControllerRegistry {
	return &ControllerRegistry{
		general: NewGeneralController(rt, anchorsSvc),
		anchors: NewAnchorsController(rt, anchorsSvc),
	}
}

// RegisterAllRoutes registers all controller routes with the given mux.
func (r *ControllerRegistry) RegisterAllRoutes(mux *http.ServeMux) {
	r.general.RegisterRoutes(mux)
	r.anchors.RegisterRoutes(mux)
}
