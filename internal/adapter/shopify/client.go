package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/calibre88/pos-transfer/internal/core/domain"
)

// GraphQLError is a query-level rejection from the remote service: the HTTP
// round trip succeeded but the operation itself was refused.
type GraphQLError struct {
	Messages []string
}

func (e *GraphQLError) Error() string {
	return strings.Join(e.Messages, ", ")
}

// Client talks to the admin GraphQL API over HTTP. It is safe for concurrent
// use; per-shop credentials travel with each call, never on the client.
type Client struct {
	httpClient *http.Client
	apiVersion string
	baseURL    string // overrides the per-shop endpoint, used by tests
	log        *zap.Logger
}

func NewClient(apiVersion string, log *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		apiVersion: apiVersion,
		log:        log,
	}
}

func (c *Client) endpoint(shop string) string {
	if c.baseURL != "" {
		return c.baseURL
	}
	return fmt.Sprintf("https://%s/admin/api/%s/graphql.json", shop, c.apiVersion)
}

// execute posts one GraphQL operation and decodes its data payload into out.
// Query-level errors come back as *GraphQLError.
func (c *Client) execute(ctx context.Context, sess domain.Session, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(sess.Shop), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", sess.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("admin api request failed", zap.String("shop", sess.Shop), zap.Error(err))
		return fmt.Errorf("admin api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("admin api returned status %d", resp.StatusCode)
	}

	var envelope struct {
		Data   json.RawMessage     `json:"data"`
		Errors []graphQLErrorEntry `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if len(envelope.Errors) > 0 {
		gqlErr := &GraphQLError{Messages: make([]string, len(envelope.Errors))}
		for i, e := range envelope.Errors {
			gqlErr.Messages[i] = e.Message
		}
		return gqlErr
	}

	if out != nil {
		if len(envelope.Data) == 0 {
			return fmt.Errorf("admin api response missing data")
		}
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

func (c *Client) SearchProducts(ctx context.Context, sess domain.Session, query string) ([]domain.Product, error) {
	var result productSearchResult
	if err := c.execute(ctx, sess, searchProductsQuery, map[string]any{"query": query}, &result); err != nil {
		return nil, err
	}
	return result.toDomain(), nil
}

func (c *Client) SearchByBarcode(ctx context.Context, sess domain.Session, barcode string) ([]domain.Product, error) {
	var result barcodeSearchResult
	if err := c.execute(ctx, sess, searchByBarcodeQuery, map[string]any{"barcode": barcode}, &result); err != nil {
		return nil, err
	}
	return result.toDomain(), nil
}

func (c *Client) InventoryLevels(ctx context.Context, sess domain.Session, inventoryItemID string) (*domain.ItemLevels, error) {
	var result inventoryLevelsResult
	if err := c.execute(ctx, sess, getInventoryLevelsQuery, map[string]any{"inventoryItemId": inventoryItemID}, &result); err != nil {
		return nil, err
	}
	return result.toDomain(), nil
}

func (c *Client) Locations(ctx context.Context, sess domain.Session) ([]domain.Location, error) {
	var result locationsResult
	if err := c.execute(ctx, sess, getLocationsQuery, nil, &result); err != nil {
		return nil, err
	}
	locations := make([]domain.Location, 0, len(result.Locations.Edges))
	for _, edge := range result.Locations.Edges {
		locations = append(locations, domain.Location{
			ID:       edge.Node.ID,
			Name:     edge.Node.Name,
			IsActive: edge.Node.IsActive,
		})
	}
	return locations, nil
}

func (c *Client) ActivateInventory(ctx context.Context, sess domain.Session, inventoryItemID, locationID string) ([]domain.UserError, error) {
	var result activateResult
	err := c.execute(ctx, sess, activateInventoryMutation, map[string]any{
		"inventoryItemId": inventoryItemID,
		"locationId":      locationID,
	}, &result)
	if err != nil {
		return nil, err
	}
	return toUserErrors(result.InventoryActivate.UserErrors), nil
}

func (c *Client) AdjustQuantities(ctx context.Context, sess domain.Session, input domain.AdjustmentInput) (*domain.AdjustmentGroup, []domain.UserError, error) {
	changes := make([]map[string]any, len(input.Changes))
	for i, ch := range input.Changes {
		changes[i] = map[string]any{
			"inventoryItemId": ch.InventoryItemID,
			"locationId":      ch.LocationID,
			"delta":           ch.Delta,
		}
	}

	var result adjustResult
	err := c.execute(ctx, sess, adjustInventoryMutation, map[string]any{
		"input": map[string]any{
			"reason":  input.Reason,
			"name":    input.Name,
			"changes": changes,
		},
	}, &result)
	if err != nil {
		return nil, nil, err
	}

	if userErrs := toUserErrors(result.InventoryAdjustQuantities.UserErrors); len(userErrs) > 0 {
		return nil, userErrs, nil
	}

	group := result.InventoryAdjustQuantities.InventoryAdjustmentGroup
	if group == nil {
		return nil, nil, fmt.Errorf("adjustment accepted but no adjustment group returned")
	}
	return &domain.AdjustmentGroup{
		ID:        group.ID,
		CreatedAt: group.CreatedAt,
		Reason:    group.Reason,
	}, nil, nil
}
