// Package handler is the thin HTTP layer over the registry service. It
// decodes requests, delegates, and translates domain errors to JSON
// responses; no business logic lives here.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vanity/internal/registry/models"
	"vanity/internal/registry/service"
	dErrors "vanity/pkg/domain-errors"
	"vanity/pkg/requestcontext"
)

type Handler struct {
	svc    *service.Service
	logger *slog.Logger
}

func New(svc *service.Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// RegisterPublic wires the read-only endpoints that need no caller identity.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/v1/params", h.getParams)
	r.Get("/v1/fees", h.getFee)
	r.Get("/v1/names", h.getName)
}

// RegisterProtected wires the endpoints that act on behalf of an
// authenticated settlement account.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Get("/v1/reservations/ticket", h.getTicket)
	r.Post("/v1/reservations", h.reserve)
	r.Post("/v1/purchases", h.buy)
	r.Post("/v1/claims", h.claim)
	r.Post("/v1/renewals", h.renew)
}

type paramsResponse struct {
	BasePrice     string `json:"base_price"`
	Advance       string `json:"advance"`
	LockingAmount string `json:"locking_amount"`
	LockingPeriod int64  `json:"locking_period_seconds"`
	RenewPeriod   int64  `json:"renew_period_seconds"`
}

func (h *Handler) getParams(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, paramsResponse{
		BasePrice:     h.svc.BasePrice().String(),
		Advance:       h.svc.Advance().String(),
		LockingAmount: h.svc.LockingAmount().String(),
		LockingPeriod: int64(h.svc.LockingPeriod() / time.Second),
		RenewPeriod:   int64(h.svc.RenewPeriod() / time.Second),
	})
}

func (h *Handler) getFee(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		h.writeError(w, r, dErrors.New(dErrors.CodeBadRequest, "name query parameter is required"))
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]string{
		"name": name,
		"fee":  h.svc.CalculateFee(name).String(),
	})
}

type nameResponse struct {
	Name          string    `json:"name"`
	Owner         string    `json:"owner"`
	State         string    `json:"state"`
	PurchasedAt   time.Time `json:"purchased_at"`
	LockedUntil   time.Time `json:"locked_until"`
	RenewableFrom time.Time `json:"renewable_from"`
	Lapsed        bool      `json:"lapsed"`
}

func (h *Handler) getName(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		h.writeError(w, r, dErrors.New(dErrors.CodeBadRequest, "name query parameter is required"))
		return
	}
	o, lapsed, err := h.svc.Lookup(r.Context(), name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, ownershipView(o, lapsed))
}

func ownershipView(o *models.Ownership, lapsed bool) nameResponse {
	return nameResponse{
		Name:          o.Name,
		Owner:         o.Owner.String(),
		State:         string(o.State),
		PurchasedAt:   o.PurchasedAt,
		LockedUntil:   o.LockedUntil,
		RenewableFrom: o.RenewableFrom,
		Lapsed:        lapsed,
	}
}

func (h *Handler) getTicket(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		h.writeError(w, r, dErrors.New(dErrors.CodeBadRequest, "name query parameter is required"))
		return
	}
	caller := requestcontext.Caller(r.Context())
	if caller.IsZero() {
		h.writeError(w, r, dErrors.New(dErrors.CodeUnauthorized, "caller identity required"))
		return
	}

	var salt [][]byte
	if s := r.URL.Query().Get("salt"); s != "" {
		salt = append(salt, []byte(s))
	}
	ticket := h.svc.ReservationID(name, caller, salt...)
	h.writeJSON(w, r, http.StatusOK, map[string]string{"ticket": ticket.String()})
}

func (h *Handler) reserve(w http.ResponseWriter, r *http.Request) {
	var req reserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}
	ticket, payment, err := req.parse()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.Reserve(r.Context(), ticket, payment); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, map[string]string{"ticket": ticket.String()})
}

func (h *Handler) buy(w http.ResponseWriter, r *http.Request) {
	var req buyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}
	ticket, name, payment, err := req.parse()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.Buy(r.Context(), ticket, name, payment); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, map[string]string{"name": name})
}

func (h *Handler) claim(w http.ResponseWriter, r *http.Request) {
	h.nameOperation(w, r, h.svc.Claim)
}

func (h *Handler) renew(w http.ResponseWriter, r *http.Request) {
	h.nameOperation(w, r, h.svc.Renew)
}

func (h *Handler) nameOperation(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, name string) error) {
	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}
	name, err := req.parse()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := op(r.Context(), name); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]string{"name": name})
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write response",
			"error", err,
			"request_id", requestcontext.RequestID(r.Context()),
		)
	}
}

// writeError translates domain errors to the JSON error envelope. Unknown
// errors surface as 500 without leaking internals.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.ToHTTPStatus(code)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed",
			"error", err,
			"request_id", requestcontext.RequestID(r.Context()),
		)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   string(code),
		"message": dErrors.MessageOf(err),
	})
}
