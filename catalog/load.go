/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

var ErrUnsupportedFormat = errors.New("unsupported catalog format")

type document struct {
	Items []Item `json:"items" yaml:"items" toml:"items"`
}

// Load reads a catalog file. The format is picked from the extension:
// .yaml/.yml, .toml or .json.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog load failed (%s): %w", path, err)
	}

	var doc document

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	case ".toml":
		err = toml.Unmarshal(data, &doc)
	case ".json":
		err = json.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("%w: %q (%s)", ErrUnsupportedFormat, ext, path)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog parse failed (%s): %w", path, err)
	}

	c, err := New(doc.Items)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}

	return c, nil
}
