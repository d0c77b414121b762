// Package dataset owns the seven-table demo warehouse in its parquet form:
// deterministic generation, encoding, upload to object storage, and the sync
// that pulls the files down next to the DuckDB executor.
package dataset

import (
	"bytes"
	"fmt"

	"github.com/parquet-go/parquet-go"
)

// TableNames returns the dataset tables in their canonical order. Object
// keys, local file names, and the schema catalog all follow this list.
func TableNames() []string {
	return []string{
		"products",
		"users",
		"orders",
		"order_items",
		"inventory_items",
		"distribution_centers",
		"events",
	}
}

// Dataset holds one generated snapshot of every table.
type Dataset struct {
	Products            []ProductRow
	Users               []UserRow
	Orders              []OrderRow
	OrderItems          []OrderItemRow
	InventoryItems      []InventoryItemRow
	DistributionCenters []DistributionCenterRow
	Events              []EventRow
}

// EncodeTable renders one table as a parquet payload.
func (d *Dataset) EncodeTable(name string) ([]byte, error) {
	switch name {
	case "products":
		return encodeRows(d.Products)
	case "users":
		return encodeRows(d.Users)
	case "orders":
		return encodeRows(d.Orders)
	case "order_items":
		return encodeRows(d.OrderItems)
	case "inventory_items":
		return encodeRows(d.InventoryItems)
	case "distribution_centers":
		return encodeRows(d.DistributionCenters)
	case "events":
		return encodeRows(d.Events)
	default:
		return nil, fmt.Errorf("unknown dataset table %q", name)
	}
}

func encodeRows[T any](rows []T) ([]byte, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("rows are required")
	}

	buf := bytes.NewBuffer(nil)
	writer := parquet.NewGenericWriter[T](buf)
	if _, err := writer.Write(rows); err != nil {
		return nil, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}
