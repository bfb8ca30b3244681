package bankfile

import (
	"bytes"
	"encoding/xml"
	"time"
)

const painNamespace = "urn:iso:std:iso:20022:tech:xsd:pain.001.001.03"

type sepaDocument struct {
	XMLName  xml.Name     `xml:"Document"`
	Xmlns    string       `xml:"xmlns,attr"`
	XmlnsXSI string       `xml:"xmlns:xsi,attr"`
	Initn    sepaTransfer `xml:"CstmrCdtTrfInitn"`
}

type sepaTransfer struct {
	GrpHdr sepaGroupHeader `xml:"GrpHdr"`
	PmtInf sepaPaymentInfo `xml:"PmtInf"`
}

type sepaGroupHeader struct {
	MsgID    string   `xml:"MsgId"`
	CreDtTm  string   `xml:"CreDtTm"`
	NbOfTxs  int      `xml:"NbOfTxs"`
	CtrlSum  string   `xml:"CtrlSum"`
	InitgPty sepaName `xml:"InitgPty"`
}

type sepaName struct {
	Nm string `xml:"Nm"`
}

type sepaPaymentInfo struct {
	PmtInfID    string         `xml:"PmtInfId"`
	PmtMtd      string         `xml:"PmtMtd"`
	BtchBookg   bool           `xml:"BtchBookg"`
	NbOfTxs     int            `xml:"NbOfTxs"`
	CtrlSum     string         `xml:"CtrlSum"`
	SvcLvl      string         `xml:"PmtTpInf>SvcLvl>Cd"`
	ReqdExctnDt string         `xml:"ReqdExctnDt"`
	Dbtr        sepaName       `xml:"Dbtr"`
	DbtrIBAN    string         `xml:"DbtrAcct>Id>IBAN"`
	DbtrCcy     string         `xml:"DbtrAcct>Ccy"`
	DbtrBIC     string         `xml:"DbtrAgt>FinInstnId>BIC"`
	ChrgBr      string         `xml:"ChrgBr"`
	Txs         []sepaCreditTx `xml:"CdtTrfTxInf"`
}

type sepaCreditTx struct {
	EndToEndID string     `xml:"PmtId>EndToEndId"`
	Amt        sepaAmount `xml:"Amt>InstdAmt"`
	CdtrAgt    sepaAgent  `xml:"CdtrAgt>FinInstnId"`
	Cdtr       sepaName   `xml:"Cdtr"`
	CdtrIBAN   string     `xml:"CdtrAcct>Id>IBAN"`
	Ustrd      string     `xml:"RmtInf>Ustrd"`
}

type sepaAmount struct {
	Ccy   string `xml:"Ccy,attr"`
	Value string `xml:",chardata"`
}

// sepaAgent carries the BIC when known, NOTPROVIDED otherwise.
type sepaAgent struct {
	BIC     string `xml:"BIC,omitempty"`
	OtherID string `xml:"Othr>Id,omitempty"`
}

// RenderSEPA builds a pain.001.001.03 customer credit transfer initiation.
// The batch id doubles as the message id.
func RenderSEPA(b Batch, debtor Debtor) ([]byte, error) {
	total := b.Total().StringFixed(2)
	doc := sepaDocument{
		Xmlns:    painNamespace,
		XmlnsXSI: "http://www.w3.org/2001/XMLSchema-instance",
		Initn: sepaTransfer{
			GrpHdr: sepaGroupHeader{
				MsgID:    b.ID,
				CreDtTm:  b.CreatedAt.UTC().Format(time.RFC3339),
				NbOfTxs:  len(b.Payments),
				CtrlSum:  total,
				InitgPty: sepaName{Nm: debtor.Name},
			},
			PmtInf: sepaPaymentInfo{
				PmtInfID:    b.ID + "-PMT",
				PmtMtd:      "TRF",
				BtchBookg:   true,
				NbOfTxs:     len(b.Payments),
				CtrlSum:     total,
				SvcLvl:      "SEPA",
				ReqdExctnDt: nextBusinessDay(b.CreatedAt).Format("2006-01-02"),
				Dbtr:        sepaName{Nm: debtor.Name},
				DbtrIBAN:    debtor.IBAN,
				DbtrCcy:     string(b.Currency),
				DbtrBIC:     debtor.BIC,
				ChrgBr:      "SLEV",
			},
		},
	}

	for _, p := range b.Payments {
		agent := sepaAgent{BIC: deref(p.Beneficiary.SwiftCode)}
		if agent.BIC == "" {
			agent.OtherID = "NOTPROVIDED"
		}
		doc.Initn.PmtInf.Txs = append(doc.Initn.PmtInf.Txs, sepaCreditTx{
			EndToEndID: p.Ref,
			Amt:        sepaAmount{Ccy: string(b.Currency), Value: p.Amount.StringFixed(2)},
			CdtrAgt:    agent,
			Cdtr:       sepaName{Nm: p.Beneficiary.AccountName},
			CdtrIBAN:   deref(p.Beneficiary.IBAN),
			Ustrd:      "Withdrawal " + p.Ref,
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
