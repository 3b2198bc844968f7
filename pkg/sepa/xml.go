package sepa

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

const (
	namespace       = "urn:iso:std:iso:20022:tech:xsd:pain.008.001.02"
	xsiNamespace    = "http://www.w3.org/2001/XMLSchema-instance"
	dateLayout      = "2006-01-02"
	dateTimeLayout  = "2006-01-02T15:04:05"
	notProvidedBIC  = "NOTPROVIDED"
	paymentMethodDD = "DD"
)

// XML wire structure. Field order defines element order.

type xmlDocument struct {
	XMLName  xml.Name             `xml:"Document"`
	Xmlns    string               `xml:"xmlns,attr"`
	XmlnsXsi string               `xml:"xmlns:xsi,attr"`
	Initn    xmlCstmrDrctDbtInitn `xml:"CstmrDrctDbtInitn"`
}

type xmlCstmrDrctDbtInitn struct {
	GrpHdr xmlGrpHdr   `xml:"GrpHdr"`
	PmtInf []xmlPmtInf `xml:"PmtInf"`
}

type xmlGrpHdr struct {
	MsgID    string   `xml:"MsgId"`
	CreDtTm  string   `xml:"CreDtTm"`
	NbOfTxs  int      `xml:"NbOfTxs"`
	CtrlSum  string   `xml:"CtrlSum"`
	InitgPty xmlParty `xml:"InitgPty"`
}

type xmlParty struct {
	Nm string `xml:"Nm"`
}

type xmlPmtInf struct {
	PmtInfID     string            `xml:"PmtInfId"`
	PmtMtd       string            `xml:"PmtMtd"`
	BtchBookg    bool              `xml:"BtchBookg"`
	NbOfTxs      int               `xml:"NbOfTxs"`
	CtrlSum      string            `xml:"CtrlSum"`
	PmtTpInf     xmlPmtTpInf       `xml:"PmtTpInf"`
	ReqdColltnDt string            `xml:"ReqdColltnDt"`
	Cdtr         xmlParty          `xml:"Cdtr"`
	CdtrAcct     xmlAccount        `xml:"CdtrAcct"`
	CdtrAgt      xmlAgent          `xml:"CdtrAgt"`
	ChrgBr       string            `xml:"ChrgBr"`
	CdtrSchmeID  xmlCdtrSchmeID    `xml:"CdtrSchmeId"`
	DrctDbtTxInf []xmlDrctDbtTxInf `xml:"DrctDbtTxInf"`
}

type xmlPmtTpInf struct {
	SvcLvl    xmlCode `xml:"SvcLvl"`
	LclInstrm xmlCode `xml:"LclInstrm"`
	SeqTp     string  `xml:"SeqTp"`
}

type xmlCode struct {
	Cd string `xml:"Cd"`
}

type xmlAccount struct {
	IBAN string `xml:"Id>IBAN"`
}

type xmlAgent struct {
	FinInstnID xmlFinInstnID `xml:"FinInstnId"`
}

type xmlFinInstnID struct {
	BIC  string     `xml:"BIC,omitempty"`
	Othr *xmlOthrID `xml:"Othr,omitempty"`
}

type xmlOthrID struct {
	ID string `xml:"Id"`
}

type xmlCdtrSchmeID struct {
	ID    string `xml:"Id>PrvtId>Othr>Id"`
	Prtry string `xml:"Id>PrvtId>Othr>SchmeNm>Prtry"`
}

type xmlDrctDbtTxInf struct {
	EndToEndID string     `xml:"PmtId>EndToEndId"`
	InstdAmt   xmlAmount  `xml:"InstdAmt"`
	MndtID     string     `xml:"DrctDbtTx>MndtRltdInf>MndtId"`
	DtOfSgntr  string     `xml:"DrctDbtTx>MndtRltdInf>DtOfSgntr"`
	DbtrAgt    xmlAgent   `xml:"DbtrAgt"`
	Dbtr       xmlParty   `xml:"Dbtr"`
	DbtrAcct   xmlAccount `xml:"DbtrAcct"`
	Ustrd      string     `xml:"RmtInf>Ustrd,omitempty"`
}

type xmlAmount struct {
	Ccy   string `xml:"Ccy,attr"`
	Value string `xml:",chardata"`
}

// WriteXML serializes the document as pain.008.001.02.
func (d *Document) WriteXML(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("failed to write XML header: %w", err)
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(d.wire()); err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return fmt.Errorf("failed to flush document: %w", err)
	}

	_, err := io.WriteString(w, "\n")
	return err
}

// Bytes returns the serialized document.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.WriteXML(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (d *Document) wire() xmlDocument {
	doc := xmlDocument{
		Xmlns:    namespace,
		XmlnsXsi: xsiNamespace,
		Initn: xmlCstmrDrctDbtInitn{
			GrpHdr: xmlGrpHdr{
				MsgID:    d.GroupHeader.MessageID,
				CreDtTm:  d.GroupHeader.Created.Format(dateTimeLayout),
				NbOfTxs:  d.NumberOfTransactions(),
				CtrlSum:  formatAmount(d.ControlSum()),
				InitgPty: xmlParty{Nm: d.GroupHeader.InitiatorName},
			},
		},
	}

	for _, info := range d.PaymentInfos {
		pmt := xmlPmtInf{
			PmtInfID:  info.ID,
			PmtMtd:    paymentMethodDD,
			BtchBookg: info.BatchBooking,
			NbOfTxs:   len(info.Transactions),
			CtrlSum:   formatAmount(info.ControlSum()),
			PmtTpInf: xmlPmtTpInf{
				SvcLvl:    xmlCode{Cd: "SEPA"},
				LclInstrm: xmlCode{Cd: info.LocalInstrument},
				SeqTp:     info.SequenceType,
			},
			ReqdColltnDt: info.CollectionDate.Format(dateLayout),
			Cdtr:         xmlParty{Nm: info.CreditorName},
			CdtrAcct:     xmlAccount{IBAN: info.CreditorIBAN},
			CdtrAgt:      agent(info.CreditorBIC),
			ChrgBr:       "SLEV",
			CdtrSchmeID:  xmlCdtrSchmeID{ID: info.CreditorID, Prtry: "SEPA"},
		}

		for _, tx := range info.Transactions {
			pmt.DrctDbtTxInf = append(pmt.DrctDbtTxInf, xmlDrctDbtTxInf{
				EndToEndID: tx.EndToEndID,
				InstdAmt:   xmlAmount{Ccy: info.Currency, Value: formatAmount(tx.Amount)},
				MndtID:     tx.MandateID,
				DtOfSgntr:  tx.MandateSignatureDate.Format(dateLayout),
				DbtrAgt:    agent(tx.DebtorBIC),
				Dbtr:       xmlParty{Nm: tx.DebtorName},
				DbtrAcct:   xmlAccount{IBAN: tx.DebtorIBAN},
				Ustrd:      tx.RemittanceInfo,
			})
		}

		doc.Initn.PmtInf = append(doc.Initn.PmtInf, pmt)
	}

	return doc
}

func agent(bic string) xmlAgent {
	if bic == "" {
		return xmlAgent{FinInstnID: xmlFinInstnID{Othr: &xmlOthrID{ID: notProvidedBIC}}}
	}
	return xmlAgent{FinInstnID: xmlFinInstnID{BIC: bic}}
}

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
