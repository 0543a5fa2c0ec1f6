package handler

import (
	"net/http"

	"lodging/internal/audit/service"
	httputil "lodging/pkg/http"
	"lodging/pkg/middleware"
	"lodging/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type TrailHandler struct {
	service service.AuditService
}

func NewTrailHandler(service service.AuditService) *TrailHandler {
	return &TrailHandler{service: service}
}

func (h *TrailHandler) GetByBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	events, err := h.service.Trail(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, events)
}

func (h *TrailHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/audit/bookings/:id", middleware.RequireRole(model.RoleAdmin)(h.GetByBooking))
}
