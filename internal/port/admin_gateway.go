package port

import (
	"context"

	"github.com/calibre88/pos-transfer/internal/core/domain"
)

// AdminGateway is the outbound contract to the remote inventory service.
// Every call is scoped to one shop session; the gateway holds no per-shop
// state of its own.
type AdminGateway interface {
	// SearchProducts runs the free-form product query. The query string uses
	// the remote service's search syntax (e.g. "title:*shirt* OR sku:*shirt*").
	SearchProducts(ctx context.Context, sess domain.Session, query string) ([]domain.Product, error)

	// SearchByBarcode looks up at most one variant by exact barcode and
	// returns it wrapped in its parent product.
	SearchByBarcode(ctx context.Context, sess domain.Session, barcode string) ([]domain.Product, error)

	// InventoryLevels fetches per-location levels for one item. Returns
	// (nil, nil) when the remote service knows no such item.
	InventoryLevels(ctx context.Context, sess domain.Session, inventoryItemID string) (*domain.ItemLevels, error)

	// Locations lists the shop's locations, active or not.
	Locations(ctx context.Context, sess domain.Session) ([]domain.Location, error)

	// ActivateInventory enables stocking of an item at a location. The remote
	// endpoint is not idempotent; "already active" comes back as a user error.
	ActivateInventory(ctx context.Context, sess domain.Session, inventoryItemID, locationID string) ([]domain.UserError, error)

	// AdjustQuantities submits one causally-grouped set of signed deltas.
	// Business-rule rejections come back as user errors with a nil group.
	AdjustQuantities(ctx context.Context, sess domain.Session, input domain.AdjustmentInput) (*domain.AdjustmentGroup, []domain.UserError, error)
}
