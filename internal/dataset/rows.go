package dataset

import "time"

// Row structs mirror the columns in schema.DefaultCatalog. Nullable
// timestamps are optional pointers so DuckDB sees real NULLs.

type ProductRow struct {
	ID                   int64   `parquet:"id"`
	Cost                 float64 `parquet:"cost"`
	Category             string  `parquet:"category"`
	Name                 string  `parquet:"name"`
	Brand                string  `parquet:"brand"`
	RetailPrice          float64 `parquet:"retail_price"`
	Department           string  `parquet:"department"`
	SKU                  string  `parquet:"sku"`
	DistributionCenterID int64   `parquet:"distribution_center_id"`
}

type UserRow struct {
	ID            int64     `parquet:"id"`
	FirstName     string    `parquet:"first_name"`
	LastName      string    `parquet:"last_name"`
	Email         string    `parquet:"email"`
	Age           int64     `parquet:"age"`
	Gender        string    `parquet:"gender"`
	State         string    `parquet:"state"`
	StreetAddress string    `parquet:"street_address"`
	PostalCode    string    `parquet:"postal_code"`
	City          string    `parquet:"city"`
	Country       string    `parquet:"country"`
	Latitude      float64   `parquet:"latitude"`
	Longitude     float64   `parquet:"longitude"`
	TrafficSource string    `parquet:"traffic_source"`
	CreatedAt     time.Time `parquet:"created_at"`
}

type OrderRow struct {
	OrderID     int64      `parquet:"order_id"`
	UserID      int64      `parquet:"user_id"`
	Status      string     `parquet:"status"`
	Gender      string     `parquet:"gender"`
	CreatedAt   time.Time  `parquet:"created_at"`
	ReturnedAt  *time.Time `parquet:"returned_at,optional"`
	ShippedAt   *time.Time `parquet:"shipped_at,optional"`
	DeliveredAt *time.Time `parquet:"delivered_at,optional"`
	NumOfItem   int64      `parquet:"num_of_item"`
}

type OrderItemRow struct {
	ID              int64      `parquet:"id"`
	OrderID         int64      `parquet:"order_id"`
	UserID          int64      `parquet:"user_id"`
	ProductID       int64      `parquet:"product_id"`
	InventoryItemID int64      `parquet:"inventory_item_id"`
	Status          string     `parquet:"status"`
	CreatedAt       time.Time  `parquet:"created_at"`
	ShippedAt       *time.Time `parquet:"shipped_at,optional"`
	DeliveredAt     *time.Time `parquet:"delivered_at,optional"`
	ReturnedAt      *time.Time `parquet:"returned_at,optional"`
	SalePrice       float64    `parquet:"sale_price"`
}

type InventoryItemRow struct {
	ID                          int64      `parquet:"id"`
	ProductID                   int64      `parquet:"product_id"`
	CreatedAt                   time.Time  `parquet:"created_at"`
	SoldAt                      *time.Time `parquet:"sold_at,optional"`
	Cost                        float64    `parquet:"cost"`
	ProductCategory             string     `parquet:"product_category"`
	ProductName                 string     `parquet:"product_name"`
	ProductBrand                string     `parquet:"product_brand"`
	ProductRetailPrice          float64    `parquet:"product_retail_price"`
	ProductDepartment           string     `parquet:"product_department"`
	ProductSKU                  string     `parquet:"product_sku"`
	ProductDistributionCenterID int64      `parquet:"product_distribution_center_id"`
}

type DistributionCenterRow struct {
	ID        int64   `parquet:"id"`
	Name      string  `parquet:"name"`
	Latitude  float64 `parquet:"latitude"`
	Longitude float64 `parquet:"longitude"`
}

type EventRow struct {
	ID             int64     `parquet:"id"`
	UserID         *int64    `parquet:"user_id,optional"`
	SequenceNumber int64     `parquet:"sequence_number"`
	SessionID      string    `parquet:"session_id"`
	CreatedAt      time.Time `parquet:"created_at"`
	IPAddress      string    `parquet:"ip_address"`
	City           string    `parquet:"city"`
	State          string    `parquet:"state"`
	PostalCode     string    `parquet:"postal_code"`
	Browser        string    `parquet:"browser"`
	TrafficSource  string    `parquet:"traffic_source"`
	URI            string    `parquet:"uri"`
	EventType      string    `parquet:"event_type"`
}
