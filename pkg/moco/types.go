// Package moco provides a MOCO API client and types.
package moco

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Invoice represents an invoice in the MOCO API.
type Invoice struct {
	ID         int64           `json:"id"`
	Identifier string          `json:"identifier"`
	Date       string          `json:"date"` // YYYY-MM-DD
	Title      string          `json:"title,omitempty"`
	Status     string          `json:"status"` // created, sent, partially_paid, paid, overdue, ignored
	Currency   string          `json:"currency"`
	GrossTotal decimal.Decimal `json:"gross_total"`
	ProjectID  *int64          `json:"project_id,omitempty"`
	CustomerID int64           `json:"customer_id"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Project represents a project in the MOCO API.
type Project struct {
	ID               int64            `json:"id"`
	Identifier       string           `json:"identifier,omitempty"`
	Name             string           `json:"name"`
	Active           bool             `json:"active"`
	CustomProperties CustomProperties `json:"custom_properties"`
}

// Customer represents a customer company in the MOCO API.
type Customer struct {
	ID               int64            `json:"id"`
	Name             string           `json:"name"`
	Type             string           `json:"type,omitempty"` // customer, supplier, organization
	CustomProperties CustomProperties `json:"custom_properties"`
}

// CustomProperties holds the user-defined fields of a MOCO record.
// Values are usually strings but MOCO also returns numbers, booleans and lists.
type CustomProperties map[string]interface{}

// Get returns the property as text, or "" if it is not set.
func (p CustomProperties) Get(key string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// ErrorResponse represents an error response from the MOCO API.
type ErrorResponse struct {
	Message string `json:"message"`
}
