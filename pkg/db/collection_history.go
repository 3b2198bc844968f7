package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/sepa-export/pkg/transfer"
)

// CollectionHistory records which invoices have been put into a batch file.
type CollectionHistory struct {
	conn *Connection
}

// NewCollectionHistory creates a new CollectionHistory instance.
func NewCollectionHistory(conn *Connection) *CollectionHistory {
	return &CollectionHistory{conn: conn}
}

// RecordBatch records all transfers of a written batch file in one transaction.
// Re-recording an invoice moves it to the new batch.
func (h *CollectionHistory) RecordBatch(ctx context.Context, messageID, batchFile string, transfers []transfer.Transfer) error {
	query := `
		INSERT INTO collection_history (invoice_id, identifier, customer_id, amount, mandate_reference, message_id, batch_file)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(invoice_id) DO UPDATE SET
			identifier = excluded.identifier,
			customer_id = excluded.customer_id,
			amount = excluded.amount,
			mandate_reference = excluded.mandate_reference,
			message_id = excluded.message_id,
			batch_file = excluded.batch_file,
			collected_at = CURRENT_TIMESTAMP
	`

	return h.conn.Transaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, t := range transfers {
			if _, err := stmt.ExecContext(ctx,
				t.InvoiceID,
				t.Identifier,
				t.CustomerID,
				t.Total.String(),
				t.MandateReference,
				messageID,
				batchFile,
			); err != nil {
				return fmt.Errorf("failed to record invoice %d: %w", t.InvoiceID, err)
			}
		}
		return nil
	})
}

// GetCollectedIDs returns the MOCO ids of all invoices already collected.
func (h *CollectionHistory) GetCollectedIDs(ctx context.Context) (map[int64]bool, error) {
	rows, err := h.conn.QueryContext(ctx, `SELECT invoice_id FROM collection_history`)
	if err != nil {
		return nil, fmt.Errorf("failed to get collected IDs: %w", err)
	}
	defer rows.Close()

	ids := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan invoice ID: %w", err)
		}
		ids[id] = true
	}

	return ids, rows.Err()
}

// Stats represents collection statistics.
type Stats struct {
	TotalInvoices  int
	TotalBatches   int
	TotalAmount    decimal.Decimal
	LastCollection sql.NullString
}

// GetStats retrieves collection statistics.
func (h *CollectionHistory) GetStats(ctx context.Context) (*Stats, error) {
	stats := Stats{TotalAmount: decimal.Zero}

	err := h.conn.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT message_id), MAX(collected_at) FROM collection_history`,
	).Scan(&stats.TotalInvoices, &stats.TotalBatches, &stats.LastCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection counts: %w", err)
	}

	// Amounts are stored as text to keep them exact; sum them here.
	rows, err := h.conn.QueryContext(ctx, `SELECT amount FROM collection_history`)
	if err != nil {
		return nil, fmt.Errorf("failed to get amounts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan amount: %w", err)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid stored amount %q: %w", raw, err)
		}
		stats.TotalAmount = stats.TotalAmount.Add(amount)
	}

	return &stats, rows.Err()
}
