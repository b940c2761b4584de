package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/calibre88/pos-transfer/internal/adapter/shopify"
	"github.com/calibre88/pos-transfer/internal/auth"
	"github.com/calibre88/pos-transfer/internal/core/domain"
	"github.com/calibre88/pos-transfer/internal/core/service"
	"github.com/calibre88/pos-transfer/internal/port"
)

var (
	errMissingCredentials = errors.New("missing session token")
	errNoStoredSession    = errors.New("no stored session for shop")
)

type HTTPHandler struct {
	catalog       *service.CatalogService
	transfers     *service.TransferService
	sessions      port.SessionRepository
	verifier      *auth.TokenVerifier
	allowedOrigin string
	log           *zap.Logger
}

func NewHTTPHandler(catalog *service.CatalogService, transfers *service.TransferService, sessions port.SessionRepository, verifier *auth.TokenVerifier, allowedOrigin string, log *zap.Logger) *HTTPHandler {
	return &HTTPHandler{
		catalog:       catalog,
		transfers:     transfers,
		sessions:      sessions,
		verifier:      verifier,
		allowedOrigin: allowedOrigin,
		log:           log,
	}
}

// Routes builds the full inbound surface, CORS included. The POS extension
// runtime calls cross-origin, so preflights are answered before routing.
func (h *HTTPHandler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("GET /search", h.Search)
	mux.HandleFunc("GET /inventory/{id}", h.Inventory)
	mux.HandleFunc("GET /locations", h.Locations)
	mux.HandleFunc("POST /transfer", h.Transfer)
	mux.HandleFunc("/transfer", h.methodNotAllowed)
	return h.cors(mux)
}

func (h *HTTPHandler) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", h.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Idempotency-Key")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authenticate resolves the caller to a stored admin session. Two paths are
// accepted: the POS extension sends a bearer session token plus an explicit
// shop parameter, the embedded admin sends the token as an id_token query
// parameter. Both end at the shop's offline session in the store.
func (h *HTTPHandler) authenticate(ctx context.Context, r *http.Request) (*domain.Session, error) {
	tokenString := ""
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		tokenString = strings.TrimPrefix(header, "Bearer ")
	}
	if tokenString == "" {
		tokenString = r.URL.Query().Get("id_token")
	}
	if tokenString == "" {
		return nil, errMissingCredentials
	}

	shop, err := h.verifier.VerifySessionToken(tokenString)
	if err != nil {
		return nil, err
	}

	if shopParam := r.URL.Query().Get("shop"); shopParam != "" && !strings.EqualFold(shopParam, shop) {
		return nil, auth.ErrShopMismatch
	}

	sess, err := h.sessions.GetSession(ctx, shop)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, errNoStoredSession
	}
	return sess, nil
}

func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := h.requestContext(r)
	r = r.WithContext(ctx)

	sess, err := h.authenticate(ctx, r)
	if err != nil {
		h.unauthorized(w, r, err)
		return
	}

	query := r.URL.Query().Get("q")
	products, err := h.catalog.Search(ctx, *sess, query)
	if err != nil {
		h.log.Error("search failed", zap.String("shop", sess.Shop), zap.String("q", query), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"products": []domain.Product{},
			"error":    "search failed: " + err.Error(),
		})
		return
	}
	if products == nil {
		products = []domain.Product{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (h *HTTPHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	ctx := h.requestContext(r)
	r = r.WithContext(ctx)

	sess, err := h.authenticate(ctx, r)
	if err != nil {
		h.unauthorized(w, r, err)
		return
	}

	inventoryItemID := r.PathValue("id")
	if inventoryItemID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "inventory item id is required"})
		return
	}

	levels, err := h.catalog.InventoryLevels(ctx, *sess, inventoryItemID)
	if errors.Is(err, service.ErrItemNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "inventory item not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch inventory levels"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"inventoryItemId": levels.InventoryItemID,
		"levels":          levels.Levels,
	})
}

func (h *HTTPHandler) Locations(w http.ResponseWriter, r *http.Request) {
	ctx := h.requestContext(r)
	r = r.WithContext(ctx)

	sess, err := h.authenticate(ctx, r)
	if err != nil {
		h.unauthorized(w, r, err)
		return
	}

	locations, err := h.catalog.Locations(ctx, *sess)
	if err != nil {
		h.log.Error("locations fetch failed", zap.String("shop", sess.Shop), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch locations"})
		return
	}
	if locations == nil {
		locations = []domain.Location{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"locations": locations})
}

type transferResponse struct {
	Success      bool               `json:"success"`
	AdjustmentID string             `json:"adjustmentId,omitempty"`
	CreatedAt    string             `json:"createdAt,omitempty"`
	Changes      []any              `json:"changes"`
	Error        string             `json:"error,omitempty"`
	Errors       []domain.UserError `json:"errors,omitempty"`
	Warnings     []domain.Warning   `json:"warnings,omitempty"`
}

func (h *HTTPHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	ctx := h.requestContext(r)
	r = r.WithContext(ctx)

	sess, err := h.authenticate(ctx, r)
	if err != nil {
		h.unauthorized(w, r, err)
		return
	}

	var req domain.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, transferResponse{
			Success: false,
			Changes: []any{},
			Error:   "invalid JSON body",
		})
		return
	}
	req.IdempotencyKey = r.Header.Get("Idempotency-Key")

	result, err := h.transfers.Transfer(ctx, *sess, req)
	if err != nil {
		h.writeTransferError(w, r, sess.Shop, err)
		return
	}

	if !result.Success {
		writeJSON(w, http.StatusBadRequest, transferResponse{
			Success:  false,
			Changes:  []any{},
			Error:    joinUserErrors(result.Errors),
			Errors:   result.Errors,
			Warnings: result.Warnings,
		})
		return
	}

	writeJSON(w, http.StatusOK, transferResponse{
		Success:      true,
		AdjustmentID: result.AdjustmentID,
		CreatedAt:    result.CreatedAt,
		Changes:      []any{},
		Warnings:     result.Warnings,
	})
}

func (h *HTTPHandler) writeTransferError(w http.ResponseWriter, r *http.Request, shop string, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		writeJSON(w, http.StatusBadRequest, transferResponse{
			Success: false,
			Changes: []any{},
			Error:   validationErr.Error(),
			Errors:  validationErr.Errors,
		})
		return
	}

	if errors.Is(err, service.ErrDuplicateTransfer) {
		writeJSON(w, http.StatusConflict, transferResponse{
			Success: false,
			Changes: []any{},
			Error:   "duplicate transfer request",
		})
		return
	}

	// The remote service refused the operation at the query level; the
	// message is safe to pass through.
	var gqlErr *shopify.GraphQLError
	if errors.As(err, &gqlErr) {
		writeJSON(w, http.StatusBadRequest, transferResponse{
			Success: false,
			Changes: []any{},
			Error:   gqlErr.Error(),
		})
		return
	}

	h.log.Error("transfer failed",
		zap.String("shop", shop),
		zap.String("path", r.URL.Path),
		zap.String("requestId", RequestID(r.Context())),
		zap.Error(err),
	)
	writeJSON(w, http.StatusInternalServerError, transferResponse{
		Success: false,
		Changes: []any{},
		Error:   "failed to transfer inventory",
	})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "use POST to transfer inventory"})
}

func (h *HTTPHandler) unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Warn("authentication failed",
		zap.String("path", r.URL.Path),
		zap.String("requestId", RequestID(r.Context())),
		zap.Error(err),
	)
	writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication failed: " + err.Error()})
}

// requestContext attaches a correlation id for log/audit tracing.
func (h *HTTPHandler) requestContext(r *http.Request) context.Context {
	return context.WithValue(r.Context(), requestIDKey{}, uuid.NewString())
}

type requestIDKey struct{}

// RequestID returns the correlation id attached by the handler, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func joinUserErrors(errs []domain.UserError) string {
	msgs := make([]string, len(errs))
	for i, ue := range errs {
		msgs[i] = ue.Message
	}
	return strings.Join(msgs, ", ")
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
