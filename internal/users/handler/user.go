package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"medbook/internal/users/service"
	httputil "medbook/pkg/http"
	"medbook/pkg/logger"
	"medbook/pkg/middleware"
	"medbook/pkg/model"
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

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requester, err := middleware.MustRequester(r)
	if err != nil {
		h.writeError(w, "Me", err)
		return
	}

	user, err := h.service.Me(r.Context(), requester)
	if err != nil {
		h.writeError(w, "Me", err)
		return
	}

	h.writeSuccess(w, "Me", user)
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requester, err := middleware.MustRequester(r)
	if err != nil {
		h.writeError(w, "UpdateMe", err)
		return
	}

	var updates model.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeInvalidBody(w, "UpdateMe")
		return
	}

	user, err := h.service.UpdateMe(r.Context(), requester, &updates)
	if err != nil {
		h.writeError(w, "UpdateMe", err)
		return
	}

	h.writeSuccess(w, "UpdateMe", user)
}

func (h *UserHandler) ListDoctors(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	doctors, err := h.service.ListDoctors(r.Context(), r.URL.Query().Get("specialization"))
	if err != nil {
		h.writeError(w, "ListDoctors", err)
		return
	}

	h.writeSuccess(w, "ListDoctors", doctors)
}

func (h *UserHandler) ListPatients(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requester, err := middleware.MustRequester(r)
	if err != nil {
		h.writeError(w, "ListPatients", err)
		return
	}

	patients, err := h.service.ListPatients(r.Context(), requester)
	if err != nil {
		h.writeError(w, "ListPatients", err)
		return
	}

	h.writeSuccess(w, "ListPatients", patients)
}

func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, err := h.service.Get(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	h.writeSuccess(w, "GetByID", user)
}

func (h *UserHandler) SetAvailability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requester, err := middleware.MustRequester(r)
	if err != nil {
		h.writeError(w, "SetAvailability", err)
		return
	}

	var body struct {
		AvailabilitySlots []model.AvailabilitySlot `json:"availability_slots"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeInvalidBody(w, "SetAvailability")
		return
	}

	doctor, err := h.service.SetAvailability(r.Context(), requester, ps.ByName("id"), body.AvailabilitySlots)
	if err != nil {
		h.writeError(w, "SetAvailability", err)
		return
	}

	h.writeSuccess(w, "SetAvailability", doctor)
}

func (h *UserHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "error", err)
	}
}

func (h *UserHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}

func (h *UserHandler) writeInvalidBody(w http.ResponseWriter, handler string) {
	if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: "Invalid request body",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", handler, "error", err)
	}
}

func (h *UserHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/users/me", h.Me)
	router.PATCH("/api/v1/users/me", h.UpdateMe)
	router.GET("/api/v1/users/doctors", h.ListDoctors)
	router.GET("/api/v1/users/patients", h.ListPatients)
	router.GET("/api/v1/users/id/:id", h.GetByID)
	router.PUT("/api/v1/users/doctors/:id/availability", h.SetAvailability)
}
