package handler

import (
	"net/http"

	"lodging/internal/users/service"
	httputil "lodging/pkg/http"
	"lodging/pkg/logger"
	"lodging/pkg/middleware"
	"lodging/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type UserHandler struct {
	service service.UserService
	log     *logger.Logger
}

func NewUserHandler(service service.UserService, log *logger.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		log:     log,
	}
}

func (h *UserHandler) SignUp(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.SignUpRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	resp, err := h.service.SignUp(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, resp)
}

func (h *UserHandler) SignIn(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.SignInRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	resp, err := h.service.SignIn(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, resp)
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, err := h.service.Me(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, user)
}

func (h *UserHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/auth/signup", h.SignUp)
	router.POST("/api/v1/auth/signin", h.SignIn)
	router.GET("/api/v1/auth/me", middleware.RequireUser(h.Me))
}
