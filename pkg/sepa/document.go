// Package sepa builds SEPA direct-debit batches (pain.008.001.02).
package sepa

import (
	"time"

	"github.com/shopspring/decimal"
)

// Format is the ISO 20022 message this package produces.
const Format = "pain.008.001.02"

// Document is a direct-debit initiation: a group header and its payment blocks.
type Document struct {
	GroupHeader  GroupHeader
	PaymentInfos []*PaymentInfo
}

// GroupHeader identifies the message.
type GroupHeader struct {
	MessageID     string
	Created       time.Time
	InitiatorName string
}

// PaymentInfo is one collection on one date into one creditor account.
type PaymentInfo struct {
	ID              string
	CollectionDate  time.Time
	LocalInstrument string // CORE or B2B
	SequenceType    string // FRST, RCUR, OOFF or FNAL
	Currency        string
	BatchBooking    bool

	CreditorName string
	CreditorIBAN string
	CreditorBIC  string
	CreditorID   string // creditor scheme identifier, e.g. DE98ZZZ09999999999

	Transactions []Transaction
}

// Transaction is a single debit from one debtor.
type Transaction struct {
	EndToEndID           string
	Amount               decimal.Decimal
	MandateID            string
	MandateSignatureDate time.Time
	DebtorName           string
	DebtorIBAN           string
	DebtorBIC            string // empty if unknown
	RemittanceInfo       string
}

// AddTransaction appends tx to the payment block.
func (p *PaymentInfo) AddTransaction(tx Transaction) {
	p.Transactions = append(p.Transactions, tx)
}

// ControlSum returns the sum of all transaction amounts in the block.
func (p *PaymentInfo) ControlSum() decimal.Decimal {
	sum := decimal.Zero
	for _, tx := range p.Transactions {
		sum = sum.Add(tx.Amount)
	}
	return sum
}

// NumberOfTransactions counts the transactions of all payment blocks.
func (d *Document) NumberOfTransactions() int {
	n := 0
	for _, info := range d.PaymentInfos {
		n += len(info.Transactions)
	}
	return n
}

// ControlSum returns the sum of all transaction amounts of the document.
func (d *Document) ControlSum() decimal.Decimal {
	sum := decimal.Zero
	for _, info := range d.PaymentInfos {
		sum = sum.Add(info.ControlSum())
	}
	return sum
}
