package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/calibre88/pos-transfer/internal/core/domain"
)

func TestSearch_BarcodeDetection(t *testing.T) {
	tests := []struct {
		query       string
		wantBarcode bool
	}{
		{"12345678", true},        // 8 digits, lower bound
		{"12345678901234", true},  // 14 digits, upper bound
		{"1234567", false},        // 7 digits
		{"123456789012345", false}, // 15 digits
		{"1234567a", false},
		{"shirt", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			gw := &mockGateway{}
			svc := NewCatalogService(gw, zap.NewNop())

			if _, err := svc.Search(context.Background(), testSession(), tt.query); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			gotBarcode := len(gw.barcodeQueries) == 1
			if gotBarcode != tt.wantBarcode {
				t.Errorf("query %q: barcode dispatch = %v, want %v", tt.query, gotBarcode, tt.wantBarcode)
			}
			if tt.wantBarcode && gw.barcodeQueries[0] != tt.query {
				t.Errorf("barcode passed through as %q", gw.barcodeQueries[0])
			}
		})
	}
}

func TestSearch_TextQueryShape(t *testing.T) {
	gw := &mockGateway{}
	svc := NewCatalogService(gw, zap.NewNop())

	if _, err := svc.Search(context.Background(), testSession(), "shirt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(gw.searchQueries) != 1 {
		t.Fatalf("expected 1 search call, got %d", len(gw.searchQueries))
	}
	want := "title:*shirt* OR sku:*shirt*"
	if gw.searchQueries[0] != want {
		t.Errorf("expected query %q, got %q", want, gw.searchQueries[0])
	}
}

func TestSearch_EmptyQueryDefaultListing(t *testing.T) {
	for _, q := range []string{"", "a"} {
		gw := &mockGateway{}
		svc := NewCatalogService(gw, zap.NewNop())

		if _, err := svc.Search(context.Background(), testSession(), q); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(gw.searchQueries) != 1 || gw.searchQueries[0] != "status:active" {
			t.Errorf("query %q: expected default active listing, got %v", q, gw.searchQueries)
		}
	}
}

func TestInventoryLevels_Found(t *testing.T) {
	gw := &mockGateway{levels: &domain.ItemLevels{
		InventoryItemID: "gid://shopify/InventoryItem/1",
		Levels: map[string]domain.InventoryLevel{
			"gid://shopify/Location/A": {Name: "Shop 45", Available: 7, OnHand: 9},
		},
	}}
	svc := NewCatalogService(gw, zap.NewNop())

	levels, err := svc.InventoryLevels(context.Background(), testSession(), "gid://shopify/InventoryItem/1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	level := levels.Levels["gid://shopify/Location/A"]
	if level.Available != 7 || level.OnHand != 9 {
		t.Errorf("unexpected level: %+v", level)
	}
}

func TestInventoryLevels_NotFound(t *testing.T) {
	gw := &mockGateway{levels: nil}
	svc := NewCatalogService(gw, zap.NewNop())

	_, err := svc.InventoryLevels(context.Background(), testSession(), "gid://shopify/InventoryItem/404")
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestLocations_FiltersInactive(t *testing.T) {
	gw := &mockGateway{locations: []domain.Location{
		{ID: "loc-a", Name: "Shop 45", IsActive: true},
		{ID: "loc-b", Name: "Closed warehouse", IsActive: false},
		{ID: "loc-c", Name: "Shop 47", IsActive: true},
	}}
	svc := NewCatalogService(gw, zap.NewNop())

	locations, err := svc.Locations(context.Background(), testSession())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(locations) != 2 {
		t.Fatalf("expected 2 active locations, got %d", len(locations))
	}
	for _, loc := range locations {
		if !loc.IsActive {
			t.Errorf("inactive location leaked: %+v", loc)
		}
	}
}
