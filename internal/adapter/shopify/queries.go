package shopify

// GraphQL documents sent to the admin API. Page sizes match what the POS
// client renders: 10 products, 20 variants each, 20 locations, 10 levels.

const searchProductsQuery = `
  query SearchProducts($query: String!) {
    products(first: 10, query: $query) {
      edges {
        node {
          id
          title
          featuredImage {
            url
          }
          variants(first: 20) {
            edges {
              node {
                id
                title
                sku
                barcode
                price
                inventoryItem {
                  id
                }
              }
            }
          }
        }
      }
    }
  }
`

const searchByBarcodeQuery = `
  query SearchByBarcode($barcode: String!) {
    productVariants(first: 1, query: $barcode) {
      edges {
        node {
          id
          title
          sku
          barcode
          price
          product {
            id
            title
            featuredImage {
              url
            }
          }
          inventoryItem {
            id
          }
        }
      }
    }
  }
`

const getInventoryLevelsQuery = `
  query GetInventoryLevels($inventoryItemId: ID!) {
    inventoryItem(id: $inventoryItemId) {
      id
      inventoryLevels(first: 10) {
        edges {
          node {
            id
            location {
              id
              name
            }
            quantities(names: ["available", "on_hand"]) {
              name
              quantity
            }
          }
        }
      }
    }
  }
`

const getLocationsQuery = `
  query GetLocations {
    locations(first: 20) {
      edges {
        node {
          id
          name
          isActive
        }
      }
    }
  }
`

const activateInventoryMutation = `
  mutation InventoryActivate($inventoryItemId: ID!, $locationId: ID!) {
    inventoryActivate(inventoryItemId: $inventoryItemId, locationId: $locationId) {
      inventoryLevel {
        id
        quantities(names: ["available", "on_hand"]) {
          name
          quantity
        }
      }
      userErrors {
        field
        message
      }
    }
  }
`

const adjustInventoryMutation = `
  mutation AdjustInventory($input: InventoryAdjustQuantitiesInput!) {
    inventoryAdjustQuantities(input: $input) {
      inventoryAdjustmentGroup {
        id
        createdAt
        reason
      }
      userErrors {
        field
        message
      }
    }
  }
`
