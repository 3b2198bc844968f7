package sepa

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shunichi-ikebuchi/sepa-export/pkg/transfer"
)

// parsedDocument reads back the parts of a pain.008 file the tests check.
type parsedDocument struct {
	XMLName xml.Name `xml:"urn:iso:std:iso:20022:tech:xsd:pain.008.001.02 Document"`
	GrpHdr  struct {
		MsgID   string `xml:"MsgId"`
		CreDtTm string `xml:"CreDtTm"`
		NbOfTxs int    `xml:"NbOfTxs"`
		CtrlSum string `xml:"CtrlSum"`
		Nm      string `xml:"InitgPty>Nm"`
	} `xml:"CstmrDrctDbtInitn>GrpHdr"`
	PmtInf []struct {
		PmtInfID     string `xml:"PmtInfId"`
		PmtMtd       string `xml:"PmtMtd"`
		NbOfTxs      int    `xml:"NbOfTxs"`
		CtrlSum      string `xml:"CtrlSum"`
		SvcLvl       string `xml:"PmtTpInf>SvcLvl>Cd"`
		LclInstrm    string `xml:"PmtTpInf>LclInstrm>Cd"`
		SeqTp        string `xml:"PmtTpInf>SeqTp"`
		ReqdColltnDt string `xml:"ReqdColltnDt"`
		CdtrIBAN     string `xml:"CdtrAcct>Id>IBAN"`
		CdtrBIC      string `xml:"CdtrAgt>FinInstnId>BIC"`
		ChrgBr       string `xml:"ChrgBr"`
		CdtrSchmeID  string `xml:"CdtrSchmeId>Id>PrvtId>Othr>Id"`
		Tx           []struct {
			EndToEndID string `xml:"PmtId>EndToEndId"`
			Amount     struct {
				Ccy   string `xml:"Ccy,attr"`
				Value string `xml:",chardata"`
			} `xml:"InstdAmt"`
			MndtID    string `xml:"DrctDbtTx>MndtRltdInf>MndtId"`
			DtOfSgntr string `xml:"DrctDbtTx>MndtRltdInf>DtOfSgntr"`
			DbtrBIC   string `xml:"DbtrAgt>FinInstnId>BIC"`
			DbtrOthr  string `xml:"DbtrAgt>FinInstnId>Othr>Id"`
			DbtrNm    string `xml:"Dbtr>Nm"`
			DbtrIBAN  string `xml:"DbtrAcct>Id>IBAN"`
			Ustrd     string `xml:"RmtInf>Ustrd"`
		} `xml:"DrctDbtTxInf"`
	} `xml:"CstmrDrctDbtInitn>PmtInf"`
}

func encode(t *testing.T, transfers []transfer.Transfer) ([]byte, parsedDocument) {
	t.Helper()

	doc, err := testBuilder("").Build(transfers)
	require.NoError(t, err)

	data, err := doc.Bytes()
	require.NoError(t, err)

	var parsed parsedDocument
	require.NoError(t, xml.Unmarshal(data, &parsed))
	return data, parsed
}

func TestWriteXMLStructure(t *testing.T) {
	noBIC := testTransfer("M2", "INV-8", "0.5")
	noBIC.BIC = ""

	data, parsed := encode(t, []transfer.Transfer{
		testTransfer("M1", "INV-7", "119"),
		noBIC,
	})

	assert.True(t, bytes.HasPrefix(data, []byte(xml.Header)))
	assert.Contains(t, string(data), `xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"`)

	assert.Equal(t, "2024-01-23T14:30:05", parsed.GrpHdr.CreDtTm)
	assert.Equal(t, 2, parsed.GrpHdr.NbOfTxs)
	assert.Equal(t, "119.50", parsed.GrpHdr.CtrlSum)
	assert.Equal(t, "Example GmbH", parsed.GrpHdr.Nm)

	require.Len(t, parsed.PmtInf, 1)
	pmt := parsed.PmtInf[0]
	assert.Equal(t, parsed.GrpHdr.MsgID+".PMT1", pmt.PmtInfID)
	assert.Equal(t, "DD", pmt.PmtMtd)
	assert.Equal(t, 2, pmt.NbOfTxs)
	assert.Equal(t, "119.50", pmt.CtrlSum)
	assert.Equal(t, "SEPA", pmt.SvcLvl)
	assert.Equal(t, "CORE", pmt.LclInstrm)
	assert.Equal(t, "FRST", pmt.SeqTp)
	assert.Equal(t, "2024-01-23", pmt.ReqdColltnDt)
	assert.Equal(t, "DE02120300000000202051", pmt.CdtrIBAN)
	assert.Equal(t, "BYLADEM1001", pmt.CdtrBIC)
	assert.Equal(t, "SLEV", pmt.ChrgBr)
	assert.Equal(t, "DE98ZZZ09999999999", pmt.CdtrSchmeID)

	require.Len(t, pmt.Tx, 2)
	first := pmt.Tx[0]
	assert.Equal(t, "M1.INV-7", first.EndToEndID)
	assert.Equal(t, "EUR", first.Amount.Ccy)
	assert.Equal(t, "119.00", first.Amount.Value)
	assert.Equal(t, "M1", first.MndtID)
	assert.Equal(t, "2023-03-05", first.DtOfSgntr)
	assert.Equal(t, "COBADEFFXXX", first.DbtrBIC)
	assert.Empty(t, first.DbtrOthr)
	assert.Equal(t, "Erika Mustermann", first.DbtrNm)
	assert.Equal(t, "DE89370400440532013000", first.DbtrIBAN)
	assert.Equal(t, "INV-7", first.Ustrd)

	second := pmt.Tx[1]
	assert.Equal(t, "0.50", second.Amount.Value)
	assert.Empty(t, second.DbtrBIC)
	assert.Equal(t, "NOTPROVIDED", second.DbtrOthr)
}

func TestWriteXMLElementOrder(t *testing.T) {
	data, _ := encode(t, []transfer.Transfer{testTransfer("M1", "INV-7", "10")})
	out := string(data)

	order := []string{
		"<GrpHdr>", "<MsgId>", "<CreDtTm>", "<NbOfTxs>", "<CtrlSum>", "<InitgPty>",
		"<PmtInf>", "<PmtInfId>", "<PmtMtd>", "<BtchBookg>", "<PmtTpInf>", "<ReqdColltnDt>",
		"<Cdtr>", "<CdtrAcct>", "<CdtrAgt>", "<ChrgBr>", "<CdtrSchmeId>",
		"<DrctDbtTxInf>", "<PmtId>", "<InstdAmt", "<DrctDbtTx>", "<DbtrAgt>", "<Dbtr>", "<DbtrAcct>", "<RmtInf>",
	}

	last := -1
	for _, tag := range order {
		idx := strings.Index(out[last+1:], tag)
		require.NotEqual(t, -1, idx, "%s missing or out of order", tag)
		last += idx + 1
	}
}

func TestWriteXMLEmptyBatch(t *testing.T) {
	data, parsed := encode(t, nil)

	assert.Equal(t, 0, parsed.GrpHdr.NbOfTxs)
	assert.Equal(t, "0.00", parsed.GrpHdr.CtrlSum)
	require.Len(t, parsed.PmtInf, 1)
	assert.Empty(t, parsed.PmtInf[0].Tx)
	assert.NotContains(t, string(data), "<DrctDbtTxInf>")
}

func TestWriteXMLEscapesText(t *testing.T) {
	tr := testTransfer("M1", "INV-7", "10")
	tr.DebtorName = "Müller & Söhne <KG>"

	data, parsed := encode(t, []transfer.Transfer{tr})

	assert.Contains(t, string(data), "Müller &amp; Söhne &lt;KG&gt;")
	assert.Equal(t, "Müller & Söhne <KG>", parsed.PmtInf[0].Tx[0].DbtrNm)
}

func TestWriteXMLControlSumMatchesAmounts(t *testing.T) {
	_, parsed := encode(t, []transfer.Transfer{
		testTransfer("M1", "A", "0.005"),
		testTransfer("M2", "B", "0.005"),
		testTransfer("M3", "C", "0.005"),
	})

	pmt := parsed.PmtInf[0]
	for _, tx := range pmt.Tx {
		assert.Equal(t, "0.01", tx.Amount.Value)
	}
	assert.Equal(t, "0.03", pmt.CtrlSum)
	assert.Equal(t, "0.03", parsed.GrpHdr.CtrlSum)
}
