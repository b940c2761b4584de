package domain

import "time"

// InventoryLevel is the stock position of one item at one location.
// "Available" is sellable stock, "OnHand" the physical count. Both are owned
// by the remote service and read fresh on every request.
type InventoryLevel struct {
	Name      string `json:"name"`
	Available int    `json:"available"`
	OnHand    int    `json:"onHand"`
}

// ItemLevels holds every known level for one inventory item, keyed by
// location id.
type ItemLevels struct {
	InventoryItemID string
	Levels          map[string]InventoryLevel
}

// Session is one shop's stored admin credential, resolved per request.
type Session struct {
	Shop        string
	AccessToken string
	Scope       string
	ExpiresAt   time.Time
}
