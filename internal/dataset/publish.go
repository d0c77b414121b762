package dataset

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/storewise/storewise/internal/storage"
)

// Upload encodes every table and puts it at its object key under prefix.
func Upload(ctx context.Context, store storage.ObjectStore, prefix string, d *Dataset) ([]storage.ObjectInfo, error) {
	infos := make([]storage.ObjectInfo, 0, len(TableNames()))
	for _, table := range TableNames() {
		data, err := d.EncodeTable(table)
		if err != nil {
			return nil, fmt.Errorf("encode table %s: %w", table, err)
		}
		key, err := storage.BuildDatasetTablePath(prefix, table)
		if err != nil {
			return nil, err
		}
		info, err := store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), storage.PutOptions{ContentType: "application/octet-stream"})
		if err != nil {
			return nil, fmt.Errorf("put dataset object %s: %w", key, err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// WriteLocal encodes every table into dir as <table>.parquet.
func WriteLocal(dir string, d *Dataset) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dataset dir: %w", err)
	}
	for _, table := range TableNames() {
		data, err := d.EncodeTable(table)
		if err != nil {
			return fmt.Errorf("encode table %s: %w", table, err)
		}
		if err := os.WriteFile(filepath.Join(dir, table+".parquet"), data, 0o644); err != nil {
			return fmt.Errorf("write table %s: %w", table, err)
		}
	}
	return nil
}
