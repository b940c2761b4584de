package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/calibre88/pos-transfer/internal/core/domain"
	"github.com/calibre88/pos-transfer/internal/port"
)

var ErrItemNotFound = errors.New("inventory item not found")

// barcodePattern decides whether scanner input gets the exact-barcode query.
// The 8-14 digit window is a compatibility contract with the POS client; do
// not widen or narrow it.
var barcodePattern = regexp.MustCompile(`^\d{8,14}$`)

// CatalogService is the read-only gateway: it translates lookups into the
// remote service's query shapes and serves the normalized view models back.
type CatalogService struct {
	gateway port.AdminGateway
	log     *zap.Logger
}

func NewCatalogService(gateway port.AdminGateway, log *zap.Logger) *CatalogService {
	return &CatalogService{gateway: gateway, log: log}
}

// Search dispatches on the shape of the input: an 8-14 digit string is
// treated as a scanned barcode, two or more characters as a fuzzy title/SKU
// search, anything shorter as a request for the default active-item listing.
func (s *CatalogService) Search(ctx context.Context, sess domain.Session, query string) ([]domain.Product, error) {
	switch {
	case barcodePattern.MatchString(query):
		return s.gateway.SearchByBarcode(ctx, sess, query)
	case len(query) >= 2:
		remoteQuery := fmt.Sprintf("title:*%s* OR sku:*%s*", query, query)
		return s.gateway.SearchProducts(ctx, sess, remoteQuery)
	default:
		return s.gateway.SearchProducts(ctx, sess, "status:active")
	}
}

// InventoryLevels returns the per-location levels for one item, keyed by
// location id. An item unknown to the remote service maps to ErrItemNotFound.
func (s *CatalogService) InventoryLevels(ctx context.Context, sess domain.Session, inventoryItemID string) (*domain.ItemLevels, error) {
	levels, err := s.gateway.InventoryLevels(ctx, sess, inventoryItemID)
	if err != nil {
		s.log.Error("inventory levels lookup failed",
			zap.String("shop", sess.Shop),
			zap.String("inventoryItemId", inventoryItemID),
			zap.Error(err),
		)
		return nil, err
	}
	if levels == nil {
		return nil, ErrItemNotFound
	}
	return levels, nil
}

// Locations lists the shop's locations, filtered to active ones.
func (s *CatalogService) Locations(ctx context.Context, sess domain.Session) ([]domain.Location, error) {
	all, err := s.gateway.Locations(ctx, sess)
	if err != nil {
		return nil, err
	}
	active := make([]domain.Location, 0, len(all))
	for _, loc := range all {
		if loc.IsActive {
			active = append(active, loc)
		}
	}
	return active, nil
}
