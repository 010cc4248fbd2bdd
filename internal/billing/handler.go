package billing

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ganesh5491/vyapar-sub000/internal/platform/httpx"
	"github.com/ganesh5491/vyapar-sub000/internal/shared"
)

// Handler exposes the lifecycle engine over REST.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	sequences   *SequenceGenerator
	idempotency *shared.IdempotencyStore
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sequences *SequenceGenerator, idempotency *shared.IdempotencyStore) *Handler {
	return &Handler{
		logger:      logger,
		service:     service,
		sequences:   sequences,
		idempotency: idempotency,
	}
}

// MountRoutes registers document routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(actorMiddleware)

	r.Route("/documents/{family}", func(r chi.Router) {
		r.Get("/", h.listDocuments)
		r.Post("/", h.createDocument)
		r.Get("/next-number", h.peekNumber)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getDocument)
			r.Put("/", h.updateDocument)
			r.Delete("/", h.deleteDocument)
			r.Post("/status", h.setStatus)
			r.Post("/payments", h.applyPayment)
			r.Post("/refunds", h.applyRefund)
			r.Post("/convert", h.convertDocument)
			r.Post("/apply", h.applyCredit)
		})
	})
	r.Get("/payments", h.listPayments)
}

// actorMiddleware records the acting user from the X-Actor header.
func actorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if actor := r.Header.Get("X-Actor"); actor != "" {
			r = r.WithContext(shared.ContextWithActor(r.Context(), actor))
		}
		next.ServeHTTP(w, r)
	})
}

func familyParam(r *http.Request) Family {
	return Family(chi.URLParam(r, "family"))
}

// guardIdempotent rejects replays of the same Idempotency-Key. Returns false
// when the request was already processed; the key is released again if the
// operation afterwards fails.
func (h *Handler) guardIdempotent(w http.ResponseWriter, r *http.Request, module string) (key string, ok bool) {
	key = r.Header.Get("Idempotency-Key")
	if key == "" {
		return "", true
	}
	if err := h.idempotency.CheckAndInsert(r.Context(), key, module); err != nil {
		httpx.RespondError(w, err)
		return key, false
	}
	return key, true
}

func (h *Handler) releaseIdempotent(r *http.Request, key, module string) {
	if key == "" {
		return
	}
	if err := h.idempotency.Delete(r.Context(), key, module); err != nil {
		h.logger.Warn("release idempotency key", slog.String("key", key), slog.Any("error", err))
	}
}

func (h *Handler) createDocument(w http.ResponseWriter, r *http.Request) {
	var req CreateDocumentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	doc, err := h.service.CreateDocument(r.Context(), familyParam(r), req)
	if err != nil {
		h.logger.Warn("create document", slog.String("family", chi.URLParam(r, "family")), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}

func (h *Handler) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.GetDocument(r.Context(), familyParam(r), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) listDocuments(w http.ResponseWriter, r *http.Request) {
	req := ListDocumentsRequest{Limit: 50}
	if status := r.URL.Query().Get("status"); status != "" {
		s := Status(status)
		req.Status = &s
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			req.Limit = parsed
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			req.Offset = parsed
		}
	}
	docs, total, err := h.service.ListDocuments(r.Context(), familyParam(r), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	page := 1
	if req.Limit > 0 {
		page = req.Offset/req.Limit + 1
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      docs,
		"total":      total,
		"pagination": shared.NewPagination(page, req.Limit, total),
	})
}

func (h *Handler) updateDocument(w http.ResponseWriter, r *http.Request) {
	var req UpdateDocumentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	doc, err := h.service.UpdateDocument(r.Context(), familyParam(r), chi.URLParam(r, "id"), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) deleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteDocument(r.Context(), familyParam(r), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	var req SetStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	doc, err := h.service.SetStatus(r.Context(), familyParam(r), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) applyPayment(w http.ResponseWriter, r *http.Request) {
	key, ok := h.guardIdempotent(w, r, "payments")
	if !ok {
		return
	}
	var req PaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.releaseIdempotent(r, key, "payments")
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	doc, err := h.service.ApplyPayment(r.Context(), familyParam(r), chi.URLParam(r, "id"), req)
	if err != nil {
		h.releaseIdempotent(r, key, "payments")
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) applyRefund(w http.ResponseWriter, r *http.Request) {
	key, ok := h.guardIdempotent(w, r, "refunds")
	if !ok {
		return
	}
	var req RefundRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.releaseIdempotent(r, key, "refunds")
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	doc, err := h.service.ApplyRefund(r.Context(), familyParam(r), chi.URLParam(r, "id"), req)
	if err != nil {
		h.releaseIdempotent(r, key, "refunds")
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) convertDocument(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	result, err := h.service.Convert(r.Context(), familyParam(r), chi.URLParam(r, "id"), req.TargetFamily)
	if err != nil {
		h.logger.Warn("convert document", slog.String("family", chi.URLParam(r, "family")), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) applyCredit(w http.ResponseWriter, r *http.Request) {
	var req ApplyCreditRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	doc, err := h.service.ApplyCredit(r.Context(), familyParam(r), chi.URLParam(r, "id"), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) peekNumber(w http.ResponseWriter, r *http.Request) {
	family := familyParam(r)
	if err := family.Validate(); err != nil {
		httpx.RespondError(w, err)
		return
	}
	number, err := h.sequences.Peek(r.Context(), family.String())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"number": number})
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.service.ListPayments(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": payments})
}
