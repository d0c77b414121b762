package schema

import "context"

// StaticProvider serves the curated e-commerce catalog without touching the
// warehouse. It is the default in duckdb mode, where the dataset files are
// generated from this same catalog.
type StaticProvider struct {
	catalog Catalog
}

func NewStaticProvider() *StaticProvider {
	return &StaticProvider{catalog: DefaultCatalog()}
}

func (p *StaticProvider) Schema(_ context.Context) (Catalog, error) {
	return p.catalog, nil
}

// DefaultCatalog returns the seven-table store dataset with column
// documentation. The descriptions carry the semantic hints SQL generation
// needs: which table holds revenue, which timestamps mean what, and how the
// foreign keys line up.
func DefaultCatalog() Catalog {
	return Catalog{Tables: []Table{
		{
			Name:        "products",
			Description: "Catalog of items available for sale.",
			Columns: []Column{
				{Name: "id", Type: "INTEGER", Description: "PK. Unique identifier for the product."},
				{Name: "cost", Type: "REAL", Description: "The cost to manufacture or acquire the item (not the sale price)."},
				{Name: "category", Type: "TEXT", Description: "High-level product category (e.g., 'Accessories', 'Outerwear')."},
				{Name: "name", Type: "TEXT", Description: "The commercial name of the product."},
				{Name: "brand", Type: "TEXT", Description: "The brand manufacturer."},
				{Name: "retail_price", Type: "REAL", Description: "The suggested MSRP or list price of the item."},
				{Name: "department", Type: "TEXT", Description: "Gender or demographic target (e.g., 'Men', 'Women')."},
				{Name: "sku", Type: "TEXT", Description: "Stock Keeping Unit code."},
				{Name: "distribution_center_id", Type: "INTEGER", Description: "FK. Links to DISTRIBUTION_CENTERS table (location where stocked)."},
			},
		},
		{
			Name:        "users",
			Description: "Registered customers and their demographic data.",
			Columns: []Column{
				{Name: "id", Type: "INTEGER", Description: "PK. Unique identifier for the user."},
				{Name: "first_name", Type: "TEXT", Description: "User's first name."},
				{Name: "last_name", Type: "TEXT", Description: "User's last name."},
				{Name: "email", Type: "TEXT", Description: "User's email address."},
				{Name: "age", Type: "INTEGER", Description: "User's age."},
				{Name: "gender", Type: "TEXT", Description: "User's gender (M/F)."},
				{Name: "state", Type: "TEXT", Description: "State of residence."},
				{Name: "street_address", Type: "TEXT", Description: "Street address."},
				{Name: "postal_code", Type: "TEXT", Description: "Zip/Postal code."},
				{Name: "city", Type: "TEXT", Description: "City of residence."},
				{Name: "country", Type: "TEXT", Description: "Country of residence."},
				{Name: "latitude", Type: "REAL", Description: "GPS latitude of user address."},
				{Name: "longitude", Type: "REAL", Description: "GPS longitude of user address."},
				{Name: "traffic_source", Type: "TEXT", Description: "Marketing channel that acquired the user (e.g., 'Search', 'Organic')."},
				{Name: "created_at", Type: "TIMESTAMP", Description: "Date and time the account was created."},
			},
		},
		{
			Name:        "orders",
			Description: "Summary of a purchase event (basket level).",
			Columns: []Column{
				{Name: "order_id", Type: "INTEGER", Description: "PK. Unique identifier for the order."},
				{Name: "user_id", Type: "INTEGER", Description: "FK. Links to USERS table."},
				{Name: "status", Type: "TEXT", Description: "Current state of the order (e.g., 'Complete', 'Cancelled', 'Returned')."},
				{Name: "gender", Type: "TEXT", Description: "Gender associated with the order items (often redundant with User gender)."},
				{Name: "created_at", Type: "TIMESTAMP", Description: "Timestamp when the order was placed."},
				{Name: "returned_at", Type: "TIMESTAMP", Description: "Timestamp if/when the order was returned."},
				{Name: "shipped_at", Type: "TIMESTAMP", Description: "Timestamp when the order left the warehouse."},
				{Name: "delivered_at", Type: "TIMESTAMP", Description: "Timestamp when the order reached the customer."},
				{Name: "num_of_item", Type: "INTEGER", Description: "Total count of items in this order."},
			},
		},
		{
			Name:        "order_items",
			Description: "Individual line items within an order. Use this for revenue calculations.",
			Columns: []Column{
				{Name: "id", Type: "INTEGER", Description: "PK. Unique identifier for the line item."},
				{Name: "order_id", Type: "INTEGER", Description: "FK. Links to ORDERS table."},
				{Name: "user_id", Type: "INTEGER", Description: "FK. Links to USERS table."},
				{Name: "product_id", Type: "INTEGER", Description: "FK. Links to PRODUCTS table."},
				{Name: "inventory_item_id", Type: "INTEGER", Description: "FK. Links to INVENTORY_ITEMS table (specific stock instance)."},
				{Name: "status", Type: "TEXT", Description: "Status of this specific item (e.g., 'Returned', 'Complete')."},
				{Name: "created_at", Type: "TIMESTAMP", Description: "Purchase timestamp."},
				{Name: "shipped_at", Type: "TIMESTAMP", Description: "Shipping timestamp."},
				{Name: "delivered_at", Type: "TIMESTAMP", Description: "Delivery timestamp."},
				{Name: "returned_at", Type: "TIMESTAMP", Description: "Return timestamp."},
				{Name: "sale_price", Type: "REAL", Description: "The actual price the user paid for this item (Revenue)."},
			},
		},
		{
			Name:        "inventory_items",
			Description: "Historical log of every specific physical item in the warehouse.",
			Columns: []Column{
				{Name: "id", Type: "INTEGER", Description: "PK. Unique identifier for the inventory unit."},
				{Name: "product_id", Type: "INTEGER", Description: "FK. Links to PRODUCTS table."},
				{Name: "created_at", Type: "TIMESTAMP", Description: "When the item arrived in inventory."},
				{Name: "sold_at", Type: "TIMESTAMP", Description: "When the item was sold (NULL if currently in stock)."},
				{Name: "cost", Type: "REAL", Description: "Cost of this specific inventory batch."},
				{Name: "product_category", Type: "TEXT", Description: "Redundant snapshot of product category."},
				{Name: "product_name", Type: "TEXT", Description: "Redundant snapshot of product name."},
				{Name: "product_brand", Type: "TEXT", Description: "Redundant snapshot of brand."},
				{Name: "product_retail_price", Type: "REAL", Description: "Redundant snapshot of retail price."},
				{Name: "product_department", Type: "TEXT", Description: "Redundant snapshot of department."},
				{Name: "product_sku", Type: "TEXT", Description: "Redundant snapshot of SKU."},
				{Name: "product_distribution_center_id", Type: "INTEGER", Description: "FK. Links to DISTRIBUTION_CENTERS table."},
			},
		},
		{
			Name:        "distribution_centers",
			Description: "Physical warehouse locations.",
			Columns: []Column{
				{Name: "id", Type: "INTEGER", Description: "PK. Unique identifier for the distribution center."},
				{Name: "name", Type: "TEXT", Description: "Name of the facility (e.g., 'Memphis TN')."},
				{Name: "latitude", Type: "REAL", Description: "GPS latitude of the facility."},
				{Name: "longitude", Type: "REAL", Description: "GPS longitude of the facility."},
			},
		},
		{
			Name:        "events",
			Description: "Web traffic logs (views, clicks, interactions).",
			Columns: []Column{
				{Name: "id", Type: "INTEGER", Description: "PK. Unique identifier for the event log."},
				{Name: "user_id", Type: "INTEGER", Description: "FK. Links to USERS (can be NULL for guest visitors)."},
				{Name: "sequence_number", Type: "INTEGER", Description: "Order of events within a session."},
				{Name: "session_id", Type: "TEXT", Description: "Unique ID for the browsing session."},
				{Name: "created_at", Type: "TIMESTAMP", Description: "Timestamp of the event."},
				{Name: "ip_address", Type: "TEXT", Description: "User's IP address."},
				{Name: "city", Type: "TEXT", Description: "Estimated city based on IP."},
				{Name: "state", Type: "TEXT", Description: "Estimated state based on IP."},
				{Name: "postal_code", Type: "TEXT", Description: "Estimated zip code based on IP."},
				{Name: "browser", Type: "TEXT", Description: "Browser used (e.g., 'Chrome', 'Safari')."},
				{Name: "traffic_source", Type: "TEXT", Description: "Marketing source for this session."},
				{Name: "uri", Type: "TEXT", Description: "The specific URL path visited."},
				{Name: "event_type", Type: "TEXT", Description: "Type of interaction (e.g., 'product', 'department', 'cart', 'purchase')."},
			},
		},
	}}
}
