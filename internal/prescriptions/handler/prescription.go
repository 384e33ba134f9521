package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"medbook/internal/prescriptions/service"
	httputil "medbook/pkg/http"
	"medbook/pkg/logger"
	"medbook/pkg/middleware"
)

type PrescriptionHandler struct {
	service service.PrescriptionService
	log     *logger.Logger
}

func NewPrescriptionHandler(service service.PrescriptionService, log *logger.Logger) *PrescriptionHandler {
	return &PrescriptionHandler{
		service: service,
		log:     log,
	}
}

func (h *PrescriptionHandler) Issue(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requester, err := middleware.MustRequester(r)
	if err != nil {
		h.writeError(w, "Issue", err)
		return
	}

	var req service.IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeInvalidBody(w, "Issue")
		return
	}

	view, err := h.service.Issue(r.Context(), requester, &req)
	if err != nil {
		h.writeError(w, "Issue", err)
		return
	}

	if err := httputil.WriteCreated(w, view); err != nil {
		h.log.Error("failed to write success response", "handler", "Issue", "error", err)
	}
}

func (h *PrescriptionHandler) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requester, err := middleware.MustRequester(r)
	if err != nil {
		h.writeError(w, "ListMine", err)
		return
	}

	views, err := h.service.ListMine(r.Context(), requester)
	if err != nil {
		h.writeError(w, "ListMine", err)
		return
	}

	h.writeSuccess(w, "ListMine", views)
}

func (h *PrescriptionHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requester, err := middleware.MustRequester(r)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	view, err := h.service.Get(r.Context(), requester, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	h.writeSuccess(w, "GetByID", view)
}

func (h *PrescriptionHandler) ListByAppointment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requester, err := middleware.MustRequester(r)
	if err != nil {
		h.writeError(w, "ListByAppointment", err)
		return
	}

	views, err := h.service.ListByAppointment(r.Context(), requester, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "ListByAppointment", err)
		return
	}

	h.writeSuccess(w, "ListByAppointment", views)
}

func (h *PrescriptionHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "error", err)
	}
}

func (h *PrescriptionHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}

func (h *PrescriptionHandler) writeInvalidBody(w http.ResponseWriter, handler string) {
	if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: "Invalid request body",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", handler, "error", err)
	}
}

func (h *PrescriptionHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/prescriptions", h.Issue)
	router.GET("/api/v1/prescriptions", h.ListMine)
	router.GET("/api/v1/prescriptions/id/:id", h.GetByID)
	router.GET("/api/v1/prescriptions/appointment/:id", h.ListByAppointment)
}
