package shopify

import (
	"github.com/shopspring/decimal"

	"github.com/calibre88/pos-transfer/internal/core/domain"
)

// Wire shapes for the admin API. Each query decodes into its own tagged
// response type; normalization into domain types happens here and nowhere
// else, so an unexpected shape fails the decode instead of silently
// defaulting fields.

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLErrorEntry struct {
	Message string `json:"message"`
}

type wireUserError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type wireImage struct {
	URL string `json:"url"`
}

type wireQuantity struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type wireVariant struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	SKU           *string         `json:"sku"`
	Barcode       *string         `json:"barcode"`
	Price         decimal.Decimal `json:"price"`
	InventoryItem *struct {
		ID string `json:"id"`
	} `json:"inventoryItem"`
}

type wireProduct struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	FeaturedImage *wireImage `json:"featuredImage"`
	Variants      struct {
		Edges []struct {
			Node wireVariant `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
}

// productSearchResult is the shape of the free-text and default-listing
// queries: products with nested variants.
type productSearchResult struct {
	Products struct {
		Edges []struct {
			Node wireProduct `json:"node"`
		} `json:"edges"`
	} `json:"products"`
}

// barcodeSearchResult is the shape of the barcode query: at most one variant
// with its parent product nested inside.
type barcodeSearchResult struct {
	ProductVariants struct {
		Edges []struct {
			Node struct {
				wireVariant
				Product struct {
					ID            string     `json:"id"`
					Title         string     `json:"title"`
					FeaturedImage *wireImage `json:"featuredImage"`
				} `json:"product"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"productVariants"`
}

type inventoryLevelsResult struct {
	InventoryItem *struct {
		ID              string `json:"id"`
		InventoryLevels struct {
			Edges []struct {
				Node struct {
					ID       string `json:"id"`
					Location struct {
						ID   string `json:"id"`
						Name string `json:"name"`
					} `json:"location"`
					Quantities []wireQuantity `json:"quantities"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"inventoryLevels"`
	} `json:"inventoryItem"`
}

type locationsResult struct {
	Locations struct {
		Edges []struct {
			Node struct {
				ID       string `json:"id"`
				Name     string `json:"name"`
				IsActive bool   `json:"isActive"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"locations"`
}

type activateResult struct {
	InventoryActivate struct {
		InventoryLevel *struct {
			ID         string         `json:"id"`
			Quantities []wireQuantity `json:"quantities"`
		} `json:"inventoryLevel"`
		UserErrors []wireUserError `json:"userErrors"`
	} `json:"inventoryActivate"`
}

type adjustResult struct {
	InventoryAdjustQuantities struct {
		InventoryAdjustmentGroup *struct {
			ID        string `json:"id"`
			CreatedAt string `json:"createdAt"`
			Reason    string `json:"reason"`
		} `json:"inventoryAdjustmentGroup"`
		UserErrors []wireUserError `json:"userErrors"`
	} `json:"inventoryAdjustQuantities"`
}

func (v wireVariant) toDomain() domain.ProductVariant {
	out := domain.ProductVariant{
		ID:    v.ID,
		Title: v.Title,
		Price: v.Price,
	}
	if v.SKU != nil {
		out.SKU = *v.SKU
	}
	if v.Barcode != nil {
		out.Barcode = *v.Barcode
	}
	if v.InventoryItem != nil {
		out.InventoryItemID = v.InventoryItem.ID
	}
	return out
}

func (r productSearchResult) toDomain() []domain.Product {
	products := make([]domain.Product, 0, len(r.Products.Edges))
	for _, edge := range r.Products.Edges {
		p := domain.Product{
			ID:       edge.Node.ID,
			Title:    edge.Node.Title,
			Variants: make([]domain.ProductVariant, 0, len(edge.Node.Variants.Edges)),
		}
		if edge.Node.FeaturedImage != nil {
			p.Image = edge.Node.FeaturedImage.URL
		}
		for _, ve := range edge.Node.Variants.Edges {
			p.Variants = append(p.Variants, ve.Node.toDomain())
		}
		products = append(products, p)
	}
	return products
}

func (r barcodeSearchResult) toDomain() []domain.Product {
	if len(r.ProductVariants.Edges) == 0 {
		return []domain.Product{}
	}
	node := r.ProductVariants.Edges[0].Node
	p := domain.Product{
		ID:       node.Product.ID,
		Title:    node.Product.Title,
		Variants: []domain.ProductVariant{node.wireVariant.toDomain()},
	}
	if node.Product.FeaturedImage != nil {
		p.Image = node.Product.FeaturedImage.URL
	}
	return []domain.Product{p}
}

func (r inventoryLevelsResult) toDomain() *domain.ItemLevels {
	if r.InventoryItem == nil {
		return nil
	}
	levels := make(map[string]domain.InventoryLevel, len(r.InventoryItem.InventoryLevels.Edges))
	for _, edge := range r.InventoryItem.InventoryLevels.Edges {
		level := domain.InventoryLevel{Name: edge.Node.Location.Name}
		for _, q := range edge.Node.Quantities {
			switch q.Name {
			case "available":
				level.Available = q.Quantity
			case "on_hand":
				level.OnHand = q.Quantity
			}
		}
		levels[edge.Node.Location.ID] = level
	}
	return &domain.ItemLevels{
		InventoryItemID: r.InventoryItem.ID,
		Levels:          levels,
	}
}

func toUserErrors(wire []wireUserError) []domain.UserError {
	if len(wire) == 0 {
		return nil
	}
	out := make([]domain.UserError, len(wire))
	for i, ue := range wire {
		out[i] = domain.UserError{Field: ue.Field, Message: ue.Message}
	}
	return out
}
