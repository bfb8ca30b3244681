// Package bankfile renders withdrawal batches into the files banks accept:
// a flat CSV, ISO 20022 pain.001.001.03 credit transfers for IBAN payees and
// SWIFT MT103 messages for BIC payees.
package bankfile

import (
	"fmt"
	"sort"
	"time"

	"merchant-wallet-engine/internal/core/domain"
	"merchant-wallet-engine/internal/core/ports"

	"github.com/shopspring/decimal"
)

// Debtor is the platform account the bank debits.
type Debtor struct {
	Name    string
	IBAN    string
	BIC     string
	Account string
}

// Payment is one withdrawal inside a batch.
type Payment struct {
	Ref           string
	Beneficiary   domain.Beneficiary
	Amount        decimal.Decimal
	Currency      domain.Currency
	CreatedAt     time.Time
	MerchantEmail string
}

// Batch is a set of payments in a single currency.
type Batch struct {
	ID        string
	Currency  domain.Currency
	CreatedAt time.Time
	Payments  []Payment
}

// Total sums the payment amounts.
func (b Batch) Total() decimal.Decimal {
	total := decimal.Zero
	for _, p := range b.Payments {
		total = total.Add(p.Amount)
	}
	return total
}

// FormatFor picks the richest format the beneficiary details allow.
func FormatFor(b domain.Beneficiary) ports.BatchFormat {
	switch {
	case b.IBAN != nil && *b.IBAN != "":
		return ports.BatchFormatSEPA
	case b.SwiftCode != nil && *b.SwiftCode != "":
		return ports.BatchFormatSWIFT
	default:
		return ports.BatchFormatCSV
	}
}

// Split groups payments per currency, preserving order, so each rendered
// file carries one currency.
func Split(id string, createdAt time.Time, payments []Payment) []Batch {
	byCcy := map[domain.Currency][]Payment{}
	for _, p := range payments {
		byCcy[p.Currency] = append(byCcy[p.Currency], p)
	}
	batches := make([]Batch, 0, len(byCcy))
	for ccy, ps := range byCcy {
		batches = append(batches, Batch{ID: id, Currency: ccy, CreatedAt: createdAt, Payments: ps})
	}
	sort.Slice(batches, func(i, j int) bool { return batches[i].Currency < batches[j].Currency })
	return batches
}

// Render produces the file name and content for one batch in one format.
func Render(format ports.BatchFormat, b Batch, debtor Debtor) (string, []byte, error) {
	if len(b.Payments) == 0 {
		return "", nil, fmt.Errorf("bankfile: batch %s has no payments", b.ID)
	}
	switch format {
	case ports.BatchFormatCSV:
		content, err := RenderCSV(b)
		return fmt.Sprintf("batch_%s_%s.csv", b.ID, b.Currency), content, err
	case ports.BatchFormatSEPA:
		content, err := RenderSEPA(b, debtor)
		return fmt.Sprintf("sepa_%s_%s.xml", b.ID, b.Currency), content, err
	case ports.BatchFormatSWIFT:
		content, err := RenderSWIFT(b, debtor)
		return fmt.Sprintf("swift_mt103_%s_%s.txt", b.ID, b.Currency), content, err
	}
	return "", nil, fmt.Errorf("bankfile: unknown format %q", format)
}

// nextBusinessDay skips Saturday and Sunday.
func nextBusinessDay(t time.Time) time.Time {
	d := t.AddDate(0, 0, 1)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
