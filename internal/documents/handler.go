package documents

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/varejo-erp/varejo-erp/internal/platform/httpx"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes exposes the purchase and sales flows. The two trees are the
// same handler parameterized by document kind.
func (h *Handler) MountRoutes(r chi.Router) {
	h.mountKind(r, "/purchases", KindPurchase)
	h.mountKind(r, "/sales", KindSales)
}

func (h *Handler) mountKind(r chi.Router, prefix string, kind DocumentKind) {
	r.Route(prefix, func(r chi.Router) {
		r.Get("/", h.list(kind))
		r.Post("/", h.create(kind))
		r.Route("/{model}/{series}/{number}", func(r chi.Router) {
			r.Get("/", h.show(kind))
			r.Put("/", h.update(kind))
			r.Post("/cancel", h.cancel(kind))
			r.Post("/installments/{sequence}/pay", h.settleInstallment(kind))
			r.Post("/installments/{sequence}/cancel", h.cancelInstallment(kind))
		})
	})
}

func refFromPath(r *http.Request, kind DocumentKind) DocumentRef {
	return DocumentRef{
		Kind:   kind,
		Model:  chi.URLParam(r, "model"),
		Series: chi.URLParam(r, "series"),
		Number: chi.URLParam(r, "number"),
	}
}

func (h *Handler) list(kind DocumentKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := filtersFromQuery(r)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		headers, total, err := h.service.List(r.Context(), kind, filters)
		if err != nil {
			h.respondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"items": headers, "total": total})
	}
}

func filtersFromQuery(r *http.Request) (ListFilters, error) {
	q := r.URL.Query()
	filters := ListFilters{Limit: 25}

	if raw := q.Get("counterparty_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return ListFilters{}, errors.New("invalid counterparty_id")
		}
		filters.CounterpartyID = &id
	}
	if raw := q.Get("issued_from"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return ListFilters{}, errors.New("invalid issued_from")
		}
		filters.IssuedFrom = &parsed
	}
	if raw := q.Get("issued_to"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return ListFilters{}, errors.New("invalid issued_to")
		}
		filters.IssuedTo = &parsed
	}
	filters.IncludeCancelled = q.Get("include_cancelled") == "true"
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 200 {
			return ListFilters{}, errors.New("limit must be between 1 and 200")
		}
		filters.Limit = limit
	}
	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return ListFilters{}, errors.New("page must be at least 1")
		}
		filters.Offset = (page - 1) * filters.Limit
	}
	return filters, nil
}

func (h *Handler) show(kind DocumentKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := h.service.Get(r.Context(), refFromPath(r, kind))
		if err != nil {
			h.respondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, doc)
	}
}

func (h *Handler) create(kind DocumentKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		draft, ok := h.decodeDraft(w, r, kind, nil)
		if !ok {
			return
		}
		doc, err := h.service.Create(r.Context(), draft)
		if err != nil {
			h.respondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, doc)
	}
}

func (h *Handler) update(kind DocumentKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := refFromPath(r, kind)
		draft, ok := h.decodeDraft(w, r, kind, &ref)
		if !ok {
			return
		}
		doc, err := h.service.Update(r.Context(), draft)
		if err != nil {
			h.respondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, doc)
	}
}

// decodeDraft parses and validates the request body. When ref is set the path
// identity wins over whatever the body carries.
func (h *Handler) decodeDraft(w http.ResponseWriter, r *http.Request, kind DocumentKind, ref *DocumentRef) (DraftDocument, bool) {
	var req documentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return DraftDocument{}, false
	}
	if ref != nil {
		req.Model, req.Series, req.Number = ref.Model, ref.Series, ref.Number
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return DraftDocument{}, false
	}
	draft, err := req.toDraft(kind)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return DraftDocument{}, false
	}
	return draft, true
}

func (h *Handler) cancel(kind DocumentKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.service.Cancel(r.Context(), refFromPath(r, kind)); err != nil {
			h.respondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"cancelled": true})
	}
}

func (h *Handler) settleInstallment(kind DocumentKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := refFromPath(r, kind)
		sequence, err := strconv.Atoi(chi.URLParam(r, "sequence"))
		if err != nil || sequence < 1 {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid installment sequence")
			return
		}
		var req settleRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
			return
		}
		if err := h.validator.Struct(req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		paidDate, err := time.Parse(dateLayout, req.PaidDate)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid paid_date")
			return
		}
		inst, err := h.service.MarkInstallmentPaid(r.Context(), ref, sequence, paidDate, req.PaidAmount)
		if err != nil {
			h.respondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, inst)
	}
}

func (h *Handler) cancelInstallment(kind DocumentKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := refFromPath(r, kind)
		sequence, err := strconv.Atoi(chi.URLParam(r, "sequence"))
		if err != nil || sequence < 1 {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid installment sequence")
			return
		}
		inst, err := h.service.CancelInstallment(r.Context(), ref, sequence)
		if err != nil {
			h.respondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, inst)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrUnknownReference),
		errors.Is(err, ErrInvalidCondition),
		errors.Is(err, ErrInconsistentCondition):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unprocessable Entity", err.Error())
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicate),
		errors.Is(err, ErrAlreadyCancelled),
		errors.Is(err, ErrSettlementConflict):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrPersistence):
		h.logger.Error("document store unavailable", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Service Unavailable", "storage temporarily unavailable")
	default:
		h.logger.Error("document operation failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
