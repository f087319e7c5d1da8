package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"restaurant-app/order-svc/internal/domain"
	"restaurant-app/order-svc/internal/service"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	SessionHeader = "X-Session-ID"

	defaultPage      = 1
	defaultCount     = 10
	defaultMinRating = 4.0

	// StatusClientClosedRequest reports a checkout abandoned by the caller.
	StatusClientClosedRequest = 499
)

// addItemRequest names a catalog dish by either key schema.
type addItemRequest struct {
	ID     string `json:"id"`
	ItemID string `json:"item_id"`
}

type Handler struct {
	Catalog  service.CatalogServiceInterface
	Sessions service.SessionProvider
	Receipts service.ReceiptServiceInterface
	Logger   *zap.Logger
}

func NewHandler(catalog service.CatalogServiceInterface, sessions service.SessionProvider, receipts service.ReceiptServiceInterface, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Catalog:  catalog,
		Sessions: sessions,
		Receipts: receipts,
		Logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	r.HandleFunc("/api/cuisines", h.getCuisines).Methods("GET")
	r.HandleFunc("/api/dishes/top", h.getTopDishes).Methods("GET")
	r.HandleFunc("/api/dishes/{id}", h.getDish).Methods("GET")

	r.HandleFunc("/api/cart", h.getCart).Methods("GET")
	r.HandleFunc("/api/cart", h.clearCart).Methods("DELETE")
	r.HandleFunc("/api/cart/items", h.addCartItem).Methods("POST")
	r.HandleFunc("/api/cart/items/{id}", h.removeCartItem).Methods("DELETE")

	r.HandleFunc("/api/checkout", h.submitCheckout).Methods("POST")
	r.HandleFunc("/api/checkout", h.getCheckout).Methods("GET")
	r.HandleFunc("/api/checkout", h.dismissCheckout).Methods("DELETE")

	r.HandleFunc("/api/receipts", h.getReceipts).Methods("GET")
	r.HandleFunc("/api/receipts/{ref}", h.getReceipt).Methods("GET")
	r.HandleFunc("/api/receipts/{ref}/qrcode", h.getReceiptQRCode).Methods("GET")
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "order-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) getCuisines(w http.ResponseWriter, r *http.Request) {
	page, err := intQuery(r, "page", defaultPage)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	count, err := intQuery(r, "count", defaultCount)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cuisines, err := h.Catalog.ListCuisines(r.Context(), page, count)
	if err != nil {
		h.Logger.Warn("failed to list cuisines", zap.Error(err))
		http.Error(w, err.Error(), catalogStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, cuisines)
}

func (h *Handler) getTopDishes(w http.ResponseWriter, r *http.Request) {
	minRating := defaultMinRating
	if raw := r.URL.Query().Get("min_rating"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			http.Error(w, "invalid min_rating", http.StatusBadRequest)
			return
		}
		minRating = parsed
	}

	dishes, err := h.Catalog.TopDishes(r.Context(), minRating)
	if err != nil {
		h.Logger.Warn("failed to load top dishes", zap.Error(err))
		http.Error(w, err.Error(), catalogStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, dishes)
}

func (h *Handler) getDish(w http.ResponseWriter, r *http.Request) {
	dish, err := h.Catalog.GetDish(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), dishStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, dish)
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session.Cart.Snapshot())
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON format: "+err.Error(), http.StatusBadRequest)
		return
	}
	dishID := req.ID
	if dishID == "" {
		dishID = req.ItemID
	}
	if dishID == "" {
		http.Error(w, "dish id is required", http.StatusBadRequest)
		return
	}

	// price and cuisine come from the catalog, never from the client
	dish, err := h.Catalog.GetDish(r.Context(), dishID)
	if err != nil {
		h.Logger.Warn("failed to resolve dish", zap.String("dish_id", dishID), zap.Error(err))
		http.Error(w, err.Error(), dishStatus(err))
		return
	}
	session.Cart.AddDish(*dish)
	writeJSON(w, http.StatusOK, session.Cart.Snapshot())
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	session.Cart.RemoveDishByID(mux.Vars(r)["id"])
	writeJSON(w, http.StatusOK, session.Cart.Snapshot())
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	session.Cart.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) submitCheckout(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	outcome, err := session.Checkout.Submit(r.Context())
	if err != nil {
		writeJSON(w, submitStatus(err), map[string]interface{}{
			"error":   err.Error(),
			"outcome": outcome,
		})
		return
	}

	response := map[string]interface{}{"outcome": outcome}
	if h.Receipts != nil && outcome.Reference != "" {
		response["qr_code"] = h.Receipts.QRLink(outcome.Reference)
	}
	writeJSON(w, http.StatusCreated, response)
}

func (h *Handler) getCheckout(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session.Checkout.Status())
}

func (h *Handler) dismissCheckout(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session.Checkout.Dismiss())
}

func (h *Handler) getReceipts(w http.ResponseWriter, r *http.Request) {
	receipts, err := h.Receipts.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, receipts)
}

func (h *Handler) getReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.Receipts.Get(r.Context(), mux.Vars(r)["ref"])
	if err != nil {
		if errors.Is(err, domain.ErrReceiptNotFound) {
			http.Error(w, "Receipt not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (h *Handler) getReceiptQRCode(w http.ResponseWriter, r *http.Request) {
	qrCode, err := h.Receipts.QRCode(r.Context(), mux.Vars(r)["ref"])
	if err != nil {
		if errors.Is(err, domain.ErrReceiptNotFound) {
			http.Error(w, "Receipt not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(qrCode) == 0 {
		http.Error(w, "QR code not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(qrCode)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*service.Session, bool) {
	id := r.Header.Get(SessionHeader)
	if id == "" {
		http.Error(w, SessionHeader+" header is required", http.StatusBadRequest)
		return nil, false
	}
	return h.Sessions.Session(id), true
}

func submitStatus(err error) int {
	var submitErr *service.SubmitError
	switch {
	case errors.Is(err, service.ErrSubmissionInProgress):
		return http.StatusConflict
	case errors.Is(err, service.ErrSubmissionCanceled):
		return StatusClientClosedRequest
	case errors.As(err, &submitErr):
		switch submitErr.Kind {
		case domain.KindValidation:
			return http.StatusUnprocessableEntity
		case domain.KindTransport:
			return http.StatusBadGateway
		case domain.KindBusiness:
			return http.StatusPaymentRequired
		}
	}
	return http.StatusInternalServerError
}

func catalogStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidCatalogQuery):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTransport), errors.Is(err, service.ErrCatalogRejected):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// dishStatus is catalogStatus with an unknown dish reported as 404.
func dishStatus(err error) int {
	if errors.Is(err, service.ErrCatalogRejected) {
		return http.StatusNotFound
	}
	return catalogStatus(err)
}

func intQuery(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("invalid " + key)
	}
	return value, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
