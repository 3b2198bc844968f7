package sepa

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shunichi-ikebuchi/sepa-export/pkg/transfer"
)

var buildTime = time.Date(2024, time.January, 23, 14, 30, 5, 0, time.UTC)

func testBuilder(override string) *Builder {
	return NewBuilder(BuilderConfig{
		Creditor: Creditor{
			Name:     "Example GmbH",
			IBAN:     "DE02120300000000202051",
			BIC:      "BYLADEM1001",
			SchemeID: "DE98ZZZ09999999999",
		},
		MessagePrefix:     "DPLX",
		DebtorBICOverride: override,
		Now:               func() time.Time { return buildTime },
	})
}

func testTransfer(mandate, identifier, total string) transfer.Transfer {
	return transfer.Transfer{
		Total:            decimal.RequireFromString(total),
		InvoiceDate:      "2024-01-10",
		Identifier:       identifier,
		IBAN:             "DE89370400440532013000",
		BIC:              "COBADEFFXXX",
		DebtorName:       "Erika Mustermann",
		MandateReference: mandate,
		MandateDate:      time.Date(2023, time.March, 5, 0, 0, 0, 0, time.UTC),
	}
}

func TestBuildHeaderAndPaymentInfo(t *testing.T) {
	doc, err := testBuilder("").Build([]transfer.Transfer{testTransfer("M123", "INV-7", "119.00")})
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("DPLX.%d.TR0", buildTime.UnixMilli()), doc.GroupHeader.MessageID)
	assert.True(t, doc.GroupHeader.Created.Equal(buildTime))
	assert.Equal(t, "Example GmbH", doc.GroupHeader.InitiatorName)

	require.Len(t, doc.PaymentInfos, 1)
	info := doc.PaymentInfos[0]
	assert.Equal(t, doc.GroupHeader.MessageID+".PMT1", info.ID)
	assert.Equal(t, "2024-01-23", info.CollectionDate.Format("2006-01-02"))
	assert.Equal(t, "CORE", info.LocalInstrument)
	assert.Equal(t, "FRST", info.SequenceType)
	assert.Equal(t, "EUR", info.Currency)
	assert.Equal(t, "Example GmbH", info.CreditorName)
	assert.Equal(t, "DE02120300000000202051", info.CreditorIBAN)
	assert.Equal(t, "BYLADEM1001", info.CreditorBIC)
	assert.Equal(t, "DE98ZZZ09999999999", info.CreditorID)
}

func TestBuildTransaction(t *testing.T) {
	doc, err := testBuilder("").Build([]transfer.Transfer{testTransfer("M123", "INV-7", "119.00")})
	require.NoError(t, err)

	txs := doc.PaymentInfos[0].Transactions
	require.Len(t, txs, 1)
	tx := txs[0]

	assert.Equal(t, "M123.INV-7", tx.EndToEndID)
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("119")))
	assert.Equal(t, "M123", tx.MandateID)
	assert.Equal(t, "2023-03-05", tx.MandateSignatureDate.Format("2006-01-02"))
	assert.Equal(t, "Erika Mustermann", tx.DebtorName)
	assert.Equal(t, "DE89370400440532013000", tx.DebtorIBAN)
	assert.Equal(t, "COBADEFFXXX", tx.DebtorBIC)
	assert.Equal(t, "INV-7", tx.RemittanceInfo)
}

func TestBuildDebtorBICOverride(t *testing.T) {
	doc, err := testBuilder("DUSSDEDDXXX").Build([]transfer.Transfer{
		testTransfer("M1", "A", "1"),
		testTransfer("M2", "B", "2"),
	})
	require.NoError(t, err)

	for _, tx := range doc.PaymentInfos[0].Transactions {
		assert.Equal(t, "DUSSDEDDXXX", tx.DebtorBIC)
	}
}

func TestBuildOnePaymentInfoRegardlessOfCount(t *testing.T) {
	for _, n := range []int{0, 1, 25} {
		t.Run(fmt.Sprintf("%d transfers", n), func(t *testing.T) {
			var transfers []transfer.Transfer
			for i := 0; i < n; i++ {
				transfers = append(transfers, testTransfer(fmt.Sprintf("M%d", i), fmt.Sprintf("INV-%d", i), "10.50"))
			}

			doc, err := testBuilder("").Build(transfers)
			require.NoError(t, err)
			require.Len(t, doc.PaymentInfos, 1)
			assert.Len(t, doc.PaymentInfos[0].Transactions, n)
			assert.Equal(t, n, doc.NumberOfTransactions())
			assert.True(t, doc.ControlSum().Equal(decimal.RequireFromString("10.50").Mul(decimal.NewFromInt(int64(n)))))

			for i, tx := range doc.PaymentInfos[0].Transactions {
				assert.Equal(t, fmt.Sprintf("INV-%d", i), tx.RemittanceInfo)
			}
		})
	}
}

func TestBuildIncompleteTransfer(t *testing.T) {
	noIBAN := testTransfer("M1", "A", "1")
	noIBAN.IBAN = ""
	noMandate := testTransfer("", "B", "1")
	zero := testTransfer("M3", "C", "0")

	tests := []struct {
		name  string
		input transfer.Transfer
		field string
	}{
		{"missing IBAN", noIBAN, "IBAN"},
		{"missing mandate", noMandate, "mandate reference"},
		{"zero amount", zero, "a positive amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := testBuilder("").Build([]transfer.Transfer{testTransfer("OK", "OK", "5"), tt.input})
			assert.Nil(t, doc)

			var incomplete *IncompleteTransferError
			require.True(t, errors.As(err, &incomplete), "expected IncompleteTransferError, got %T", err)
			assert.Equal(t, tt.field, incomplete.Field)
			assert.Equal(t, tt.input.Identifier, incomplete.Identifier)
		})
	}
}

func TestBuildMessageIDLongPrefix(t *testing.T) {
	build := func(prefix string, at time.Time) *Document {
		doc, err := NewBuilder(BuilderConfig{
			MessagePrefix: prefix,
			Now:           func() time.Time { return at },
		}).Build(nil)
		require.NoError(t, err)
		return doc
	}

	for _, prefix := range []string{"ACME-GMBH-LASTSCHRIFT-EXPORT", "A-VERY-LONG-MESSAGE-PREFIX-THAT-OVERFLOWS"} {
		t.Run(prefix, func(t *testing.T) {
			first := build(prefix, buildTime)
			second := build(prefix, buildTime.Add(time.Hour))

			assert.LessOrEqual(t, len(first.GroupHeader.MessageID), 35)
			assert.NotEqual(t, first.GroupHeader.MessageID, second.GroupHeader.MessageID)
			assert.True(t, strings.HasSuffix(first.GroupHeader.MessageID, fmt.Sprintf(".%d.TR0", buildTime.UnixMilli())))
			assert.LessOrEqual(t, len(first.PaymentInfos[0].ID), 35)
		})
	}

	doc, err := NewBuilder(BuilderConfig{}).Build(nil)
	require.NoError(t, err)
	assert.Regexp(t, `^SEPA\.\d+\.TR0$`, doc.GroupHeader.MessageID)
}

func TestBuildRoundsAmountsToCents(t *testing.T) {
	transfers := []transfer.Transfer{
		testTransfer("M1", "A", "0.005"),
		testTransfer("M2", "B", "0.005"),
		testTransfer("M3", "C", "0.005"),
	}

	doc, err := testBuilder("").Build(transfers)
	require.NoError(t, err)

	sum := decimal.Zero
	for _, tx := range doc.PaymentInfos[0].Transactions {
		assert.Equal(t, "0.01", tx.Amount.String())
		sum = sum.Add(tx.Amount)
	}
	assert.True(t, doc.ControlSum().Equal(sum))
	assert.Equal(t, "0.03", doc.ControlSum().StringFixed(2))

	_, err = testBuilder("").Build([]transfer.Transfer{testTransfer("M1", "A", "0.004")})
	var incomplete *IncompleteTransferError
	require.True(t, errors.As(err, &incomplete))
	assert.Equal(t, "a positive amount", incomplete.Field)
}
