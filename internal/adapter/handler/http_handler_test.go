package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/calibre88/pos-transfer/internal/auth"
	"github.com/calibre88/pos-transfer/internal/core/domain"
	"github.com/calibre88/pos-transfer/internal/core/service"
)

const (
	testSecret = "shpss_test_secret"
	testAPIKey = "test-api-key"
	testShop   = "demo.myshopify.com"
)

// Stub AdminGateway
type stubGateway struct {
	products       []domain.Product
	searchErr      error
	levels         *domain.ItemLevels
	locations      []domain.Location
	adjustGroup    *domain.AdjustmentGroup
	adjustUserErrs []domain.UserError
	adjustErr      error
	adjustCalls    int
}

func (g *stubGateway) SearchProducts(ctx context.Context, sess domain.Session, query string) ([]domain.Product, error) {
	return g.products, g.searchErr
}

func (g *stubGateway) SearchByBarcode(ctx context.Context, sess domain.Session, barcode string) ([]domain.Product, error) {
	return g.products, g.searchErr
}

func (g *stubGateway) InventoryLevels(ctx context.Context, sess domain.Session, inventoryItemID string) (*domain.ItemLevels, error) {
	return g.levels, nil
}

func (g *stubGateway) Locations(ctx context.Context, sess domain.Session) ([]domain.Location, error) {
	return g.locations, nil
}

func (g *stubGateway) ActivateInventory(ctx context.Context, sess domain.Session, inventoryItemID, locationID string) ([]domain.UserError, error) {
	return nil, nil
}

func (g *stubGateway) AdjustQuantities(ctx context.Context, sess domain.Session, input domain.AdjustmentInput) (*domain.AdjustmentGroup, []domain.UserError, error) {
	g.adjustCalls++
	if g.adjustErr != nil {
		return nil, nil, g.adjustErr
	}
	if len(g.adjustUserErrs) > 0 {
		return nil, g.adjustUserErrs, nil
	}
	return g.adjustGroup, nil, nil
}

type stubSessions struct {
	sessions map[string]*domain.Session
}

func (s *stubSessions) GetSession(ctx context.Context, shop string) (*domain.Session, error) {
	return s.sessions[shop], nil
}

func (s *stubSessions) SaveSession(ctx context.Context, sess domain.Session) error {
	s.sessions[sess.Shop] = &sess
	return nil
}

func newTestHandler(t *testing.T, gw *stubGateway) http.Handler {
	t.Helper()
	log := zap.NewNop()
	catalog := service.NewCatalogService(gw, log)
	transfers := service.NewTransferService(gw, nil, nil, log)
	sessions := &stubSessions{sessions: map[string]*domain.Session{
		testShop: {Shop: testShop, AccessToken: "shpat_test"},
	}}
	verifier := auth.NewTokenVerifier(testSecret, testAPIKey)
	h := NewHTTPHandler(catalog, transfers, sessions, verifier, "*", log)
	return h.Routes()
}

func sessionToken(t *testing.T) string {
	t.Helper()
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss":  "https://" + testShop + "/admin",
		"dest": "https://" + testShop,
		"aud":  testAPIKey,
		"exp":  now.Add(time.Minute).Unix(),
		"iat":  now.Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func doRequest(t *testing.T, h http.Handler, method, target, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+sessionToken(t))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t, &stubGateway{})

	rec := doRequest(t, h, http.MethodGet, "/health", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuth_MissingToken(t *testing.T) {
	h := newTestHandler(t, &stubGateway{})

	rec := doRequest(t, h, http.MethodGet, "/search?q=tee", "", false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if _, ok := decodeBody(t, rec)["error"]; !ok {
		t.Error("expected error message in body")
	}
}

func TestAuth_BadToken(t *testing.T) {
	h := newTestHandler(t, &stubGateway{})

	req := httptest.NewRequest(http.MethodGet, "/search?q=tee", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuth_ShopParamMismatch(t *testing.T) {
	h := newTestHandler(t, &stubGateway{})

	rec := doRequest(t, h, http.MethodGet, "/search?q=tee&shop=other.myshopify.com", "", true)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 on shop mismatch, got %d", rec.Code)
	}
}

func TestAuth_IDTokenQueryParam(t *testing.T) {
	h := newTestHandler(t, &stubGateway{})

	rec := doRequest(t, h, http.MethodGet, "/locations?id_token="+sessionToken(t), "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 via id_token, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCORS_Preflight(t *testing.T) {
	h := newTestHandler(t, &stubGateway{})

	rec := doRequest(t, h, http.MethodOptions, "/transfer", "", false)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected allow-origin *, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, "POST") {
		t.Errorf("expected POST allowed, got %q", got)
	}
}

func TestTransfer_MethodGuard(t *testing.T) {
	h := newTestHandler(t, &stubGateway{})

	rec := doRequest(t, h, http.MethodGet, "/transfer", "", true)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestSearch_Success(t *testing.T) {
	gw := &stubGateway{products: []domain.Product{{ID: "p1", Title: "Basic Tee"}}}
	h := newTestHandler(t, gw)

	rec := doRequest(t, h, http.MethodGet, "/search?q=tee", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	products := body["products"].([]any)
	if len(products) != 1 {
		t.Errorf("expected 1 product, got %d", len(products))
	}
}

func TestSearch_RemoteFailure(t *testing.T) {
	gw := &stubGateway{searchErr: errors.New("dial tcp: i/o timeout")}
	h := newTestHandler(t, gw)

	rec := doRequest(t, h, http.MethodGet, "/search?q=tee", "", true)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if products := body["products"].([]any); len(products) != 0 {
		t.Errorf("expected empty products on failure, got %v", products)
	}
	if body["error"] == "" {
		t.Error("expected error message")
	}
}

func TestInventory_NotFound(t *testing.T) {
	h := newTestHandler(t, &stubGateway{levels: nil})

	rec := doRequest(t, h, http.MethodGet, "/inventory/gid:%2F%2Fshopify%2FInventoryItem%2F404", "", true)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestInventory_Success(t *testing.T) {
	gw := &stubGateway{levels: &domain.ItemLevels{
		InventoryItemID: "gid://shopify/InventoryItem/1",
		Levels: map[string]domain.InventoryLevel{
			"gid://shopify/Location/A": {Name: "Shop 45", Available: 7, OnHand: 9},
		},
	}}
	h := newTestHandler(t, gw)

	rec := doRequest(t, h, http.MethodGet, "/inventory/gid:%2F%2Fshopify%2FInventoryItem%2F1", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["inventoryItemId"] != "gid://shopify/InventoryItem/1" {
		t.Errorf("unexpected item id: %v", body["inventoryItemId"])
	}
	levels := body["levels"].(map[string]any)
	level := levels["gid://shopify/Location/A"].(map[string]any)
	if level["available"].(float64) != 7 || level["onHand"].(float64) != 9 {
		t.Errorf("unexpected level: %v", level)
	}
}

func TestLocations_Success(t *testing.T) {
	gw := &stubGateway{locations: []domain.Location{
		{ID: "loc-a", Name: "Shop 45", IsActive: true},
		{ID: "loc-b", Name: "Closed", IsActive: false},
	}}
	h := newTestHandler(t, gw)

	rec := doRequest(t, h, http.MethodGet, "/locations", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	locations := body["locations"].([]any)
	if len(locations) != 1 {
		t.Errorf("expected only active locations, got %v", locations)
	}
}

func TestTransfer_Success(t *testing.T) {
	gw := &stubGateway{adjustGroup: &domain.AdjustmentGroup{
		ID:        "gid://shopify/InventoryAdjustmentGroup/42",
		CreatedAt: "2026-01-15T10:00:00Z",
		Reason:    "correction",
	}}
	h := newTestHandler(t, gw)

	body := `{"inventoryItemId":"i1","originLocationId":"a","destinationLocationId":"b","quantity":3}`
	rec := doRequest(t, h, http.MethodPost, "/transfer", body, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeBody(t, rec)
	if resp["success"] != true {
		t.Error("expected success true")
	}
	if resp["adjustmentId"] != "gid://shopify/InventoryAdjustmentGroup/42" {
		t.Errorf("unexpected adjustmentId: %v", resp["adjustmentId"])
	}
	if _, ok := resp["changes"]; !ok {
		t.Error("expected changes field in response")
	}
}

func TestTransfer_ValidationError(t *testing.T) {
	gw := &stubGateway{}
	h := newTestHandler(t, gw)

	body := `{"inventoryItemId":"i1","originLocationId":"a","destinationLocationId":"b","quantity":0}`
	rec := doRequest(t, h, http.MethodPost, "/transfer", body, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if gw.adjustCalls != 0 {
		t.Errorf("validation failure must not reach the remote service, got %d calls", gw.adjustCalls)
	}

	resp := decodeBody(t, rec)
	if resp["success"] != false {
		t.Error("expected success false")
	}
	errs := resp["errors"].([]any)
	if len(errs) != 1 {
		t.Fatalf("expected 1 field error, got %v", errs)
	}
	if errs[0].(map[string]any)["field"] != "quantity" {
		t.Errorf("unexpected field error: %v", errs[0])
	}
}

func TestTransfer_InvalidJSON(t *testing.T) {
	h := newTestHandler(t, &stubGateway{})

	rec := doRequest(t, h, http.MethodPost, "/transfer", "{not json", true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTransfer_RemoteUserError(t *testing.T) {
	gw := &stubGateway{adjustUserErrs: []domain.UserError{{Field: "quantity", Message: "insufficient stock"}}}
	h := newTestHandler(t, gw)

	body := `{"inventoryItemId":"i1","originLocationId":"a","destinationLocationId":"b","quantity":3}`
	rec := doRequest(t, h, http.MethodPost, "/transfer", body, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	resp := decodeBody(t, rec)
	if resp["error"] != "insufficient stock" {
		t.Errorf("unexpected error message: %v", resp["error"])
	}
	errs := resp["errors"].([]any)
	first := errs[0].(map[string]any)
	if first["field"] != "quantity" || first["message"] != "insufficient stock" {
		t.Errorf("expected user error passthrough, got %v", first)
	}
}

func TestTransfer_TransportError(t *testing.T) {
	gw := &stubGateway{adjustErr: errors.New("dial tcp: i/o timeout")}
	h := newTestHandler(t, gw)

	body := `{"inventoryItemId":"i1","originLocationId":"a","destinationLocationId":"b","quantity":3}`
	rec := doRequest(t, h, http.MethodPost, "/transfer", body, true)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	resp := decodeBody(t, rec)
	if resp["error"] != "failed to transfer inventory" {
		t.Errorf("transport detail must not leak, got %v", resp["error"])
	}
}
