// Package db provides SQLite storage for the collection history.
package db

// Schema defines the SQL statements to create database tables.
const Schema = `
-- Collection history table
-- Tracks which MOCO invoices have been included in a written batch file
CREATE TABLE IF NOT EXISTS collection_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    invoice_id INTEGER NOT NULL UNIQUE, -- ID from MOCO API
    identifier TEXT NOT NULL,           -- Invoice number
    customer_id INTEGER NOT NULL,
    amount TEXT NOT NULL,               -- Decimal amount in EUR
    mandate_reference TEXT NOT NULL,
    message_id TEXT NOT NULL,           -- MsgId of the batch
    batch_file TEXT NOT NULL,           -- Path to the batch file
    collected_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_collection_history_message
    ON collection_history(message_id);
`

// InitializeSchema initializes the database schema.
// It creates all tables if they don't exist.
func InitializeSchema(conn *Connection) error {
	if _, err := conn.Exec(Schema); err != nil {
		return err
	}
	return nil
}
