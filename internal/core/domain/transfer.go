package domain

import (
	"fmt"
	"strings"
	"time"
)

// AdjustmentReason is sent with every quantity adjustment and must stay
// stable: downstream audit trails filter on it.
const AdjustmentReason = "correction"

// AdjustmentName is the quantity counter both deltas apply to.
const AdjustmentName = "available"

// TransferRequest describes one stock move between two locations.
type TransferRequest struct {
	InventoryItemID       string `json:"inventoryItemId"`
	OriginLocationID      string `json:"originLocationId"`
	DestinationLocationID string `json:"destinationLocationId"`
	Quantity              int    `json:"quantity"`

	// IdempotencyKey is optional. When set, a duplicate submission with the
	// same key is rejected before any remote call.
	IdempotencyKey string `json:"-"`
}

// Validate checks the request locally. It returns a *ValidationError listing
// every offending field, or nil when the request is well formed.
func (r TransferRequest) Validate() error {
	var errs []UserError

	if r.InventoryItemID == "" {
		errs = append(errs, UserError{Field: "inventoryItemId", Message: "inventory item id is required"})
	}
	if r.OriginLocationID == "" {
		errs = append(errs, UserError{Field: "originLocationId", Message: "origin location id is required"})
	}
	if r.DestinationLocationID == "" {
		errs = append(errs, UserError{Field: "destinationLocationId", Message: "destination location id is required"})
	}
	if r.Quantity < 1 {
		errs = append(errs, UserError{Field: "quantity", Message: "quantity must be a positive integer"})
	}
	if r.OriginLocationID != "" && r.OriginLocationID == r.DestinationLocationID {
		errs = append(errs, UserError{Field: "destinationLocationId", Message: "origin and destination must differ"})
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// UserError is a field-level business-rule violation reported by the remote
// service, passed through to the client unchanged.
type UserError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports locally detected request problems. It never
// involves a remote call.
type ValidationError struct {
	Errors []UserError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ue := range e.Errors {
		msgs[i] = fmt.Sprintf("%s: %s", ue.Field, ue.Message)
	}
	return "invalid transfer request: " + strings.Join(msgs, ", ")
}

// Warning is a non-fatal problem encountered while executing a transfer,
// kept on the result so operators retain visibility into swallowed errors.
type Warning struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// AdjustmentGroup is the remote-assigned record correlating the paired
// debit/credit as one causal unit.
type AdjustmentGroup struct {
	ID        string
	CreatedAt string
	Reason    string
}

// TransferResult is the outcome of one transfer attempt. Success and Errors
// are mutually exclusive; Warnings may accompany either.
type TransferResult struct {
	Success      bool
	AdjustmentID string
	CreatedAt    string
	Errors       []UserError
	Warnings     []Warning
}

// AdjustmentChange is one signed delta against a single item/location pair.
type AdjustmentChange struct {
	InventoryItemID string
	LocationID      string
	Delta           int
}

// AdjustmentInput is the payload of the adjust-quantities mutation.
type AdjustmentInput struct {
	Reason  string
	Name    string
	Changes []AdjustmentChange
}

// BuildTransferInput produces the two-delta adjustment for a transfer:
// -quantity at the origin, +quantity at the destination, both against the
// "available" counter. The deltas always sum to zero.
func BuildTransferInput(inventoryItemID, originLocationID, destinationLocationID string, quantity int) AdjustmentInput {
	if quantity < 0 {
		quantity = -quantity
	}
	return AdjustmentInput{
		Reason: AdjustmentReason,
		Name:   AdjustmentName,
		Changes: []AdjustmentChange{
			{InventoryItemID: inventoryItemID, LocationID: originLocationID, Delta: -quantity},
			{InventoryItemID: inventoryItemID, LocationID: destinationLocationID, Delta: quantity},
		},
	}
}

// TransferRecord is one audit row written after a successful transfer.
type TransferRecord struct {
	ID                    string
	Shop                  string
	InventoryItemID       string
	OriginLocationID      string
	DestinationLocationID string
	Quantity              int
	AdjustmentID          string
	Reason                string
	CreatedAt             time.Time
}
