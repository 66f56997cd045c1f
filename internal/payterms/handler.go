package payterms

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/varejo-erp/varejo-erp/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/payment-conditions", func(r chi.Router) {
		r.Get("/", h.ListConditions)
		r.Post("/", h.CreateCondition)
		r.Get("/{id}", h.ShowCondition)
		r.Put("/{id}", h.UpdateCondition)
		r.Delete("/{id}", h.DeleteCondition)
	})
	r.Route("/payment-methods", func(r chi.Router) {
		r.Get("/", h.ListMethods)
		r.Post("/", h.CreateMethod)
		r.Put("/{id}", h.UpdateMethod)
		r.Delete("/{id}", h.DeleteMethod)
	})
}

func (h *Handler) ListConditions(w http.ResponseWriter, r *http.Request) {
	conditions, err := h.service.ListConditions(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": conditions})
}

func (h *Handler) ShowCondition(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid condition ID")
		return
	}
	cond, err := h.service.GetCondition(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cond)
}

func (h *Handler) CreateCondition(w http.ResponseWriter, r *http.Request) {
	var cond PaymentCondition
	if err := httpx.DecodeJSON(r, &cond); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	created, err := h.service.CreateCondition(r.Context(), cond)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateCondition(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid condition ID")
		return
	}
	var cond PaymentCondition
	if err := httpx.DecodeJSON(r, &cond); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	cond.ID = id
	if err := h.service.UpdateCondition(r.Context(), cond); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"updated": true})
}

func (h *Handler) DeleteCondition(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid condition ID")
		return
	}
	if err := h.service.DeleteCondition(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.service.ListMethods(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": methods})
}

func (h *Handler) CreateMethod(w http.ResponseWriter, r *http.Request) {
	var m PaymentMethod
	if err := httpx.DecodeJSON(r, &m); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	created, err := h.service.CreateMethod(r.Context(), m)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateMethod(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid method ID")
		return
	}
	var m PaymentMethod
	if err := httpx.DecodeJSON(r, &m); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	m.ID = id
	if err := h.service.UpdateMethod(r.Context(), m); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"updated": true})
}

func (h *Handler) DeleteMethod(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid method ID")
		return
	}
	if err := h.service.DeleteMethod(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("payment catalog operation failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
