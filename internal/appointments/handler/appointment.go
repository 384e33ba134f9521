package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"medbook/internal/appointments/service"
	httputil "medbook/pkg/http"
	"medbook/pkg/logger"
	"medbook/pkg/middleware"
	"medbook/pkg/model"
)

type AppointmentHandler struct {
	service service.AppointmentService
	log     *logger.Logger
}

func NewAppointmentHandler(service service.AppointmentService, log *logger.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		service: service,
		log:     log,
	}
}

func (h *AppointmentHandler) Book(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requester, err := middleware.MustRequester(r)
	if err != nil {
		h.writeError(w, "Book", err)
		return
	}

	var req service.BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeInvalidBody(w, "Book")
		return
	}

	view, err := h.service.Book(r.Context(), requester, &req)
	if err != nil {
		h.writeError(w, "Book", err)
		return
	}

	if err := httputil.WriteCreated(w, view); err != nil {
		h.log.Error("failed to write success response", "handler", "Book", "error", err)
	}
}

func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requester, err := middleware.MustRequester(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	query := r.URL.Query()
	filter := model.AppointmentFilter{
		Status:       model.AppointmentStatus(query.Get("status")),
		UpcomingOnly: query.Get("upcoming") == "true",
	}

	views, totalCount, err := h.service.List(r.Context(), requester, filter, limit, offset)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, views, totalCount, limit, offset); err != nil {
		h.log.Error("failed to write success response", "handler", "List", "error", err)
	}
}

func (h *AppointmentHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
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

func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requester, err := middleware.MustRequester(r)
	if err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	var body struct {
		Status model.AppointmentStatus `json:"status"`
		Notes  *string                 `json:"notes,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeInvalidBody(w, "UpdateStatus")
		return
	}

	view, err := h.service.TransitionStatus(r.Context(), requester, ps.ByName("id"), body.Status, body.Notes)
	if err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	h.writeSuccess(w, "UpdateStatus", view)
}

func (h *AppointmentHandler) Edit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requester, err := middleware.MustRequester(r)
	if err != nil {
		h.writeError(w, "Edit", err)
		return
	}

	var update model.AppointmentUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeInvalidBody(w, "Edit")
		return
	}

	view, err := h.service.Edit(r.Context(), requester, ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "Edit", err)
		return
	}

	h.writeSuccess(w, "Edit", view)
}

func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requester, err := middleware.MustRequester(r)
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	view, err := h.service.Cancel(r.Context(), requester, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	h.writeSuccess(w, "Cancel", view)
}

func (h *AppointmentHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "error", err)
	}
}

func (h *AppointmentHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}

func (h *AppointmentHandler) writeInvalidBody(w http.ResponseWriter, handler string) {
	if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: "Invalid request body",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", handler, "error", err)
	}
}

func (h *AppointmentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/appointments", h.Book)
	router.GET("/api/v1/appointments", h.List)
	router.GET("/api/v1/appointments/id/:id", h.GetByID)
	router.PATCH("/api/v1/appointments/id/:id", h.Edit)
	router.DELETE("/api/v1/appointments/id/:id", h.Cancel)
	router.PUT("/api/v1/appointments/id/:id/status", h.UpdateStatus)
}
