// Package export renders a project's requirements into portable documents.
package export

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/startificial/requireflow/internal/errors"
	"github.com/startificial/requireflow/internal/model"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Document is the exported shape. Field order matters for YAML readability.
type Document struct {
	Project      model.Project       `json:"project" yaml:"project"`
	Customer     model.Customer      `json:"customer" yaml:"customer"`
	Sources      []model.InputSource `json:"sources" yaml:"sources"`
	Requirements []model.Requirement `json:"requirements" yaml:"requirements"`
}

// Render serializes the document in the requested format and returns the
// bytes together with their content type.
func Render(doc Document, format Format) ([]byte, string, error) {
	switch format {
	case FormatJSON, "":
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, "", errors.NewAPI("failed to render JSON export: "+err.Error(), 500, nil)
		}
		return data, "application/json", nil
	case FormatYAML:
		data, err := yaml.Marshal(doc)
		if err != nil {
			return nil, "", errors.NewAPI("failed to render YAML export: "+err.Error(), 500, nil)
		}
		return data, "application/yaml", nil
	default:
		return nil, "", errors.NewValidation("Unsupported export format", map[string][]string{
			"format": {"must be one of: json, yaml"},
		})
	}
}
