package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
)

// Catalog is a read-only instance type → upstream cloud id lookup.
type Catalog struct {
	cloudIDs map[string]string
}

// New builds a catalog from an explicit mapping. The map is copied.
func New(cloudIDs map[string]string) *Catalog {
	m := make(map[string]string, len(cloudIDs))
	for k, v := range cloudIDs {
		m[k] = v
	}
	return &Catalog{cloudIDs: m}
}

// LoadCSV builds a catalog from a CSV file with at least the columns
// InstanceType and UpstreamCloudId.
func LoadCSV(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("catalog %s is empty", path)
	}

	typeCol, cloudCol := -1, -1
	for i, name := range rows[0] {
		switch name {
		case "InstanceType":
			typeCol = i
		case "UpstreamCloudId":
			cloudCol = i
		}
	}
	if typeCol < 0 || cloudCol < 0 {
		return nil, fmt.Errorf("catalog %s is missing the InstanceType or UpstreamCloudId column", path)
	}

	cloudIDs := make(map[string]string, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) <= typeCol || len(row) <= cloudCol {
			continue
		}
		cloudIDs[row[typeCol]] = row[cloudCol]
	}
	return &Catalog{cloudIDs: cloudIDs}, nil
}

// UpstreamCloudID resolves an instance type to the id the pods API expects.
func (c *Catalog) UpstreamCloudID(instanceType string) (string, bool) {
	id, ok := c.cloudIDs[instanceType]
	return id, ok
}
