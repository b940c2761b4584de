package domain

import "github.com/shopspring/decimal"

// ProductVariant is the normalized view of one sellable variant. Optional
// fields (SKU, Barcode) are empty strings when the shop has not set them.
type ProductVariant struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	SKU             string          `json:"sku"`
	Barcode         string          `json:"barcode"`
	Price           decimal.Decimal `json:"price"`
	InventoryItemID string          `json:"inventoryItemId"`
}

// Product is the normalized view served to the POS client, regardless of
// which search strategy produced it.
type Product struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Image    string           `json:"image"`
	Variants []ProductVariant `json:"variants"`
}

type Location struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
}
