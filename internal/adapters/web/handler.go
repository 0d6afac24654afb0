// Package web adapts ApplicationService to a JSON HTTP API for the browser
// front end. All cart state lives in the browser; checkout submits the cart
// lines and the server re-validates everything against authoritative stock.
package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"heladeria-pos/internal/app"
	"heladeria-pos/internal/core"
)

type handler struct {
	svc            app.ApplicationService
	allowedOrigins map[string]bool
}

// NewHandler builds the API router. allowedOrigins is a comma-separated CORS
// allow-list; "*" allows any origin, empty allows none.
func NewHandler(svc app.ApplicationService, allowedOrigins string) http.Handler {
	h := &handler{svc: svc, allowedOrigins: map[string]bool{}}
	for _, o := range strings.Split(allowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			h.allowedOrigins[o] = true
		}
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/vendors", h.listVendors)

	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("POST /api/products", h.createProduct)
	mux.HandleFunc("PATCH /api/products/{id}", h.updateProduct)
	mux.HandleFunc("POST /api/products/{id}/restock", h.restockProduct)
	mux.HandleFunc("DELETE /api/products/{id}", h.deleteProduct)

	mux.HandleFunc("GET /api/clients", h.listClients)
	mux.HandleFunc("POST /api/clients", h.createClient)
	mux.HandleFunc("GET /api/clients/{id}", h.getClient)
	mux.HandleFunc("PATCH /api/clients/{id}", h.updateClient)
	mux.HandleFunc("GET /api/clients/{id}/transactions", h.creditHistory)

	mux.HandleFunc("POST /api/sales", h.checkout)
	mux.HandleFunc("GET /api/sales", h.listSales)
	mux.HandleFunc("DELETE /api/sales/{id}", h.deleteSale)

	mux.HandleFunc("GET /api/credit-transactions", h.listCreditTransactions)
	mux.HandleFunc("POST /api/credit-payments", h.applyCreditPayment)

	mux.HandleFunc("GET /api/dashboard", h.dashboard)

	return h.cors(mux)
}

// ── middleware ────────────────────────────────────────────────────────────────

func (h *handler) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (h.allowedOrigins["*"] || h.allowedOrigins[origin]) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ── response helpers ──────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			log.Printf("web: encode response: %v", err)
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps the core failure taxonomy onto HTTP statuses. Every mapped
// failure is recoverable in the UI; only storage failures are a gateway problem.
func writeError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrOutOfStock),
		errors.Is(err, core.ErrInsufficientStock),
		errors.Is(err, core.ErrEmptyCart),
		errors.Is(err, core.ErrClientRequired),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrAmountExceedsDebt):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrDuplicateSale):
		status = http.StatusConflict
	default:
		var se *core.StorageError
		if errors.As(err, &se) {
			log.Printf("web: storage failure: %v", err)
			writeJSON(w, http.StatusBadGateway, errorResponse{Error: "storage failure, operation not committed"})
			return
		}
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id in path"})
		return 0, false
	}
	return id, true
}

// ── vendors ───────────────────────────────────────────────────────────────────

func (h *handler) listVendors(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListVendors(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ── products ──────────────────────────────────────────────────────────────────

func (h *handler) listProducts(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListProducts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req app.CreateProductRequest
	if !decodeBody(w, r, &req) {
		return
	}
	product, err := h.svc.CreateProduct(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req app.UpdateProductRequest
	if !decodeBody(w, r, &req) {
		return
	}
	product, err := h.svc.UpdateProduct(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *handler) restockProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	product, err := h.svc.RestockProduct(r.Context(), id, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteProduct(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── clients ───────────────────────────────────────────────────────────────────

func (h *handler) listClients(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListClients(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) getClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	client, err := h.svc.GetClient(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

func (h *handler) createClient(w http.ResponseWriter, r *http.Request) {
	var req app.CreateClientRequest
	if !decodeBody(w, r, &req) {
		return
	}
	client, err := h.svc.CreateClient(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, client)
}

func (h *handler) updateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req app.UpdateClientRequest
	if !decodeBody(w, r, &req) {
		return
	}
	client, err := h.svc.UpdateClient(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

func (h *handler) creditHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res, err := h.svc.CreditHistory(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ── sales ─────────────────────────────────────────────────────────────────────

func (h *handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req app.CheckoutRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := h.svc.Checkout(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *handler) listSales(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("today") == "true" {
		res, err := h.svc.ListTodaySales(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid limit"})
			return
		}
		limit = n
	}
	res, err := h.svc.ListSales(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) deleteSale(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteSale(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── credits ───────────────────────────────────────────────────────────────────

func (h *handler) listCreditTransactions(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListCreditTransactions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) applyCreditPayment(w http.ResponseWriter, r *http.Request) {
	var req app.PaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := h.svc.ApplyCreditPayment(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// ── dashboard ─────────────────────────────────────────────────────────────────

func (h *handler) dashboard(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.DashboardSummary(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
