package sepa

import (
	"fmt"
	"time"

	"github.com/shunichi-ikebuchi/sepa-export/pkg/transfer"
)

const maxIDLength = 35

// Creditor is the account the debits are collected into.
type Creditor struct {
	Name     string
	IBAN     string
	BIC      string
	SchemeID string
}

// BuilderConfig represents the configuration for Builder.
type BuilderConfig struct {
	Creditor        Creditor
	MessagePrefix   string // Default: SEPA
	LocalInstrument string // Default: CORE
	SequenceType    string // Default: FRST
	Currency        string // Default: EUR

	// DebtorBICOverride replaces the resolved debtor BIC on every
	// transaction when set.
	DebtorBICOverride string

	// Now returns the build time. Default: time.Now
	Now func() time.Time
}

// IncompleteTransferError is returned when a transfer lacks a field
// required for a debit.
type IncompleteTransferError struct {
	Identifier string
	Field      string
}

func (e *IncompleteTransferError) Error() string {
	return fmt.Sprintf("transfer for invoice %q is missing %s", e.Identifier, e.Field)
}

// Builder builds direct-debit documents from transfers.
type Builder struct {
	config BuilderConfig
}

// NewBuilder creates a new Builder.
func NewBuilder(config BuilderConfig) *Builder {
	if config.MessagePrefix == "" {
		config.MessagePrefix = "SEPA"
	}
	if config.LocalInstrument == "" {
		config.LocalInstrument = "CORE"
	}
	if config.SequenceType == "" {
		config.SequenceType = "FRST"
	}
	if config.Currency == "" {
		config.Currency = "EUR"
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Builder{config: config}
}

// Build creates a document with one payment block holding one transaction
// per transfer. Amounts are rounded to cents so the control sums match the
// serialized transactions.
func (b *Builder) Build(transfers []transfer.Transfer) (*Document, error) {
	now := b.config.Now()
	creditor := b.config.Creditor

	msgID := messageID(b.config.MessagePrefix, now)

	doc := &Document{
		GroupHeader: GroupHeader{
			MessageID:     msgID,
			Created:       now,
			InitiatorName: creditor.Name,
		},
	}

	info := &PaymentInfo{
		ID:              clip(msgID + ".PMT1"),
		CollectionDate:  time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
		LocalInstrument: b.config.LocalInstrument,
		SequenceType:    b.config.SequenceType,
		Currency:        b.config.Currency,
		CreditorName:    creditor.Name,
		CreditorIBAN:    creditor.IBAN,
		CreditorBIC:     creditor.BIC,
		CreditorID:      creditor.SchemeID,
	}
	doc.PaymentInfos = append(doc.PaymentInfos, info)

	for _, t := range transfers {
		if err := checkComplete(t); err != nil {
			return nil, err
		}

		bic := t.BIC
		if b.config.DebtorBICOverride != "" {
			bic = b.config.DebtorBICOverride
		}

		info.AddTransaction(Transaction{
			EndToEndID:           EndToEndID(t),
			Amount:               t.Total.Round(2),
			MandateID:            t.MandateReference,
			MandateSignatureDate: t.MandateDate,
			DebtorName:           t.DebtorName,
			DebtorIBAN:           t.IBAN,
			DebtorBIC:            bic,
			RemittanceInfo:       t.Identifier,
		})
	}

	return doc, nil
}

// EndToEndID returns the end-to-end id of a transfer: mandate reference
// and invoice identifier joined by a dot.
func EndToEndID(t transfer.Transfer) string {
	return fmt.Sprintf("%s.%s", t.MandateReference, t.Identifier)
}

func checkComplete(t transfer.Transfer) error {
	switch {
	case t.IBAN == "":
		return &IncompleteTransferError{Identifier: t.Identifier, Field: "IBAN"}
	case t.MandateReference == "":
		return &IncompleteTransferError{Identifier: t.Identifier, Field: "mandate reference"}
	case !t.Total.Round(2).IsPositive():
		return &IncompleteTransferError{Identifier: t.Identifier, Field: "a positive amount"}
	}
	return nil
}

// messageID returns <prefix>.<unix millis>.TR0. The prefix is shortened so
// the timestamp always survives the length limit.
func messageID(prefix string, now time.Time) string {
	suffix := fmt.Sprintf(".%d.TR0", now.UnixMilli())
	if room := maxIDLength - len(suffix); len(prefix) > room {
		prefix = prefix[:max(room, 0)]
	}
	return clip(prefix + suffix)
}

func clip(id string) string {
	if len(id) > maxIDLength {
		return id[:maxIDLength]
	}
	return id
}
