package sku

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadCompositeTable reads a composite accessory mapping from a JSON file.
// The file is a map of combined token to the list of individual accessory
// sku codes it stands for:
//
//	{"AN": ["AF", "NL"]}
//
// A missing file is not an error; the configurator simply concatenates
// accessory codes when no table is available.
func LoadCompositeTable(path string) (*CompositeTable, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewCompositeTable(), nil
		}
		return nil, fmt.Errorf("read composites file: %w", err)
	}

	var raw map[string][]string
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("parse composites file: %w", err)
	}

	table := NewCompositeTable()
	for token, codes := range raw {
		if token == "" || len(codes) < 2 {
			return nil, fmt.Errorf("composite %q must map to at least two codes", token)
		}
		table.Add(token, codes...)
	}
	return table, nil
}
