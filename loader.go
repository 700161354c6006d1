package biforms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-biforms/pkg/contract"
	"github.com/goliatone/go-biforms/pkg/expression"
	"github.com/goliatone/go-biforms/pkg/model"
)

// FormDocument is the on-disk description of a form: the node properties the
// service produced plus the source location the form edits.
type FormDocument struct {
	FilePath        string                    `json:"filePath"`
	TargetLineRange *expression.LineRange     `json:"targetLineRange,omitempty"`
	Order           []string                  `json:"order,omitempty"`
	Properties      map[string]model.Property `json:"properties"`
}

// LoadFormDocument reads a JSON or YAML form document.
func LoadFormDocument(path string) (FormDocument, error) {
	var doc FormDocument
	if err := decodeFile(path, &doc); err != nil {
		return FormDocument{}, err
	}
	if len(doc.Properties) == 0 {
		return FormDocument{}, fmt.Errorf("biforms: %s: no properties", path)
	}
	return doc, nil
}

// LoadProperties reads a bare property map from a JSON or YAML file.
func LoadProperties(path string) (map[string]model.Property, error) {
	var props map[string]model.Property
	if err := decodeFile(path, &props); err != nil {
		return nil, err
	}
	return props, nil
}

// LoadValues reads field values from a JSON or YAML file.
func LoadValues(path string) (map[string]any, error) {
	var values map[string]any
	if err := decodeFile(path, &values); err != nil {
		return nil, err
	}
	return values, nil
}

// LoadErrors reads an error payload keyed by field path, as produced by a
// failed save. Use render.FormErrorKey for messages about the whole form.
func LoadErrors(path string) (map[string][]string, error) {
	var payload map[string][]string
	if err := decodeFile(path, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// LoadContract fetches an OpenAPI document from a path or URL and returns its
// resources.
func LoadContract(ctx context.Context, location string, options ...contract.LoadOption) ([]contract.Resource, error) {
	raw, err := contract.Load(ctx, location, options...)
	if err != nil {
		return nil, err
	}
	return contract.Parse(ctx, raw)
}

// LoadThemeManifest reads a theme manifest. YAML and JSON are both accepted.
func LoadThemeManifest(path string) (*theme.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("biforms: read theme %s: %w", path, err)
	}
	var manifest theme.Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("biforms: decode theme %s: %w", path, err)
	}
	return &manifest, nil
}

// decodeFile decodes JSON, or YAML routed through JSON so json tags apply.
func decodeFile(path string, out any) error {
	if path == "" {
		return errors.New("biforms: path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("biforms: read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("biforms: decode %s: %w", path, err)
		}
		if data, err = json.Marshal(raw); err != nil {
			return fmt.Errorf("biforms: encode %s: %w", path, err)
		}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("biforms: decode %s: %w", path, err)
	}
	return nil
}
