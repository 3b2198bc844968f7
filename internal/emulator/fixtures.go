// Package emulator serves a local stand-in for the MOCO invoice, project
// and customer endpoints, backed by YAML fixtures.
package emulator

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Invoice is an invoice fixture.
type Invoice struct {
	ID         int64       `yaml:"id" json:"id"`
	Identifier string      `yaml:"identifier" json:"identifier"`
	Date       string      `yaml:"date" json:"date"`
	Title      string      `yaml:"title" json:"title,omitempty"`
	Status     string      `yaml:"status" json:"status"`
	Currency   string      `yaml:"currency" json:"currency"`
	GrossTotal json.Number `yaml:"gross_total" json:"gross_total"`
	ProjectID  *int64      `yaml:"project_id" json:"project_id"`
	CustomerID int64       `yaml:"customer_id" json:"customer_id"`
}

// Project is a project fixture.
type Project struct {
	ID               int64             `yaml:"id" json:"id"`
	Name             string            `yaml:"name" json:"name"`
	Active           bool              `yaml:"active" json:"active"`
	CustomProperties map[string]string `yaml:"custom_properties" json:"custom_properties"`
}

// Customer is a customer fixture.
type Customer struct {
	ID               int64             `yaml:"id" json:"id"`
	Name             string            `yaml:"name" json:"name"`
	CustomProperties map[string]string `yaml:"custom_properties" json:"custom_properties"`
}

// Fixtures is the full data set served by the emulator.
type Fixtures struct {
	Invoices  []Invoice  `yaml:"invoices"`
	Projects  []Project  `yaml:"projects"`
	Customers []Customer `yaml:"customers"`
}

// LoadFixtures reads fixtures from a YAML file.
func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}

	var fixtures Fixtures
	if err := yaml.Unmarshal(data, &fixtures); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i, inv := range fixtures.Invoices {
		if inv.Currency == "" {
			fixtures.Invoices[i].Currency = "EUR"
		}
		if inv.GrossTotal == "" {
			return nil, fmt.Errorf("invoice %d: gross_total is required", inv.ID)
		}
	}

	return &fixtures, nil
}
