// Package transfer resolves MOCO invoices into direct-debit transfers.
package transfer

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer is one invoice resolved to everything a direct debit needs.
type Transfer struct {
	Total            decimal.Decimal
	InvoiceDate      string // as delivered by MOCO, YYYY-MM-DD
	Identifier       string // invoice number, used as remittance information
	IBAN             string
	BIC              string
	DebtorName       string
	MandateReference string
	MandateDate      time.Time
	InvoiceID        int64
	ProjectID        int64
	CustomerID       int64
}
