package dataset

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
)

func TestEncodeTableRoundTrip(t *testing.T) {
	created := time.Date(2023, time.March, 5, 9, 0, 0, 0, time.UTC)
	shipped := created.Add(48 * time.Hour)
	d := &Dataset{Orders: []OrderRow{
		{OrderID: 1, UserID: 4, Status: "Shipped", Gender: "F", CreatedAt: created, ShippedAt: &shipped, NumOfItem: 2},
		{OrderID: 2, UserID: 9, Status: "Processing", Gender: "M", CreatedAt: created.Add(time.Hour), NumOfItem: 1},
	}}

	data, err := d.EncodeTable("orders")
	if err != nil {
		t.Fatalf("EncodeTable() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty parquet payload")
	}

	reader := parquet.NewGenericReader[OrderRow](bytes.NewReader(data))
	defer func() { _ = reader.Close() }()
	rows := make([]OrderRow, 2)
	count, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		t.Fatalf("reader.Read() error = %v", err)
	}
	if count != 2 {
		t.Fatalf("read rows = %d", count)
	}
	if rows[0].OrderID != 1 || rows[0].ShippedAt == nil || !rows[0].ShippedAt.Equal(shipped) {
		t.Fatalf("first row mangled: %+v", rows[0])
	}
	if rows[1].ShippedAt != nil {
		t.Fatalf("nil shipped_at did not survive: %+v", rows[1])
	}
}

func TestEncodeTableRejectsUnknownAndEmpty(t *testing.T) {
	d := &Dataset{}
	if _, err := d.EncodeTable("snapshots"); err == nil {
		t.Fatal("expected error for unknown table")
	}
	if _, err := d.EncodeTable("orders"); err == nil {
		t.Fatal("expected error for empty table")
	}
}

func TestEncodeEveryGeneratedTable(t *testing.T) {
	d := NewGenerator(GeneratorConfig{Seed: 2, Users: 8, Products: 6, Orders: 10, Events: 20}).Generate()
	for _, table := range TableNames() {
		data, err := d.EncodeTable(table)
		if err != nil {
			t.Fatalf("EncodeTable(%s) error = %v", table, err)
		}
		if len(data) == 0 {
			t.Fatalf("EncodeTable(%s) returned empty payload", table)
		}
	}
}
