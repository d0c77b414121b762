package storage

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

var pathComponentPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,127}$`)

// BuildDatasetTablePath returns the object key for one dataset table under
// the given remote prefix, e.g. datasets/current/orders.parquet.
func BuildDatasetTablePath(prefix, tableName string) (string, error) {
	if err := validatePathComponent(tableName, "table name"); err != nil {
		return "", err
	}
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return tableName + ".parquet", nil
	}
	for _, segment := range strings.Split(prefix, "/") {
		if err := validatePathComponent(segment, "prefix segment"); err != nil {
			return "", err
		}
	}
	return path.Join(prefix, tableName+".parquet"), nil
}

// BuildExportFilePath returns the object key a run's exported result is
// written to.
func BuildExportFilePath(runID string) (string, error) {
	if err := validatePathComponent(runID, "run id"); err != nil {
		return "", err
	}
	return path.Join("exports", runID+".parquet"), nil
}

func validatePathComponent(value, field string) error {
	if !pathComponentPattern.MatchString(value) {
		return fmt.Errorf("invalid %s: %q", field, value)
	}
	return nil
}
