package bankfile

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"
)

var csvHeader = []string{
	"BATCH_ID", "TRANSACTION_REF", "BENEFICIARY_NAME", "BANK_NAME", "ACCOUNT_NUMBER",
	"IBAN", "SWIFT", "AMOUNT", "CURRENCY", "CREATED_AT", "MERCHANT_EMAIL",
}

// RenderCSV writes one row per payment under a fixed header.
func RenderCSV(b Batch) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, p := range b.Payments {
		row := []string{
			b.ID,
			p.Ref,
			p.Beneficiary.AccountName,
			p.Beneficiary.BankName,
			p.Beneficiary.AccountNumber,
			deref(p.Beneficiary.IBAN),
			deref(p.Beneficiary.SwiftCode),
			p.Amount.StringFixed(2),
			string(p.Currency),
			p.CreatedAt.UTC().Format(time.RFC3339),
			p.MerchantEmail,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row %s: %w", p.Ref, err)
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
