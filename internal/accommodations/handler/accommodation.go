package handler

import (
	"net/http"

	"lodging/internal/accommodations/service"
	httputil "lodging/pkg/http"
	"lodging/pkg/logger"
	"lodging/pkg/middleware"
	"lodging/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AccommodationHandler struct {
	service service.AccommodationService
	log     *logger.Logger
}

func NewAccommodationHandler(service service.AccommodationService, log *logger.Logger) *AccommodationHandler {
	return &AccommodationHandler{
		service: service,
		log:     log,
	}
}

func (h *AccommodationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var acc model.Accommodation
	if err := httputil.DecodeJSON(r, &acc); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Create(r.Context(), &acc); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, acc)
}

func (h *AccommodationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	acc, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, acc)
}

func (h *AccommodationHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	accs, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, accs, total, limit, offset)
}

func (h *AccommodationHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.AccommodationUpdate
	if err := httputil.DecodeJSON(r, &updates); err != nil {
		httputil.WriteError(w, err)
		return
	}

	acc, err := h.service.Update(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, acc)
}

func (h *AccommodationHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AccommodationHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	nights, err := httputil.ExtractInt(r, "nights")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	rooms, err := httputil.ExtractInt(r, "rooms")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	search := &model.AccommodationSearch{
		Type:      query.Get("type"),
		Location:  query.Get("location"),
		StartDate: query.Get("start_date"),
		Nights:    nights,
		Rooms:     rooms,
	}

	accs, err := h.service.Search(r.Context(), search)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, accs)
}

func (h *AccommodationHandler) RegisterRoutes(router *httprouter.Router) {
	admin := middleware.RequireRole(model.RoleAdmin)

	router.GET("/api/v1/accommodations/search", middleware.RequireUser(h.Search))
	router.GET("/api/v1/accommodations", middleware.RequireUser(h.GetAll))
	router.GET("/api/v1/accommodations/id/:id", middleware.RequireUser(h.GetByID))
	router.POST("/api/v1/accommodations", admin(h.Create))
	router.PATCH("/api/v1/accommodations/id/:id", admin(h.Update))
	router.DELETE("/api/v1/accommodations/id/:id", admin(h.Delete))
}
