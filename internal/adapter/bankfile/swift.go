package bankfile

import (
	"fmt"
	"regexp"
	"strings"
)

const swiftLineWidth = 35

var swiftDisallowed = regexp.MustCompile(`[^A-Za-z0-9\s.,\-()/]`)

// RenderSWIFT emits one MT103 single customer credit transfer per payment,
// separated by a blank line.
func RenderSWIFT(b Batch, debtor Debtor) ([]byte, error) {
	valueDate := nextBusinessDay(b.CreatedAt).Format("060102")
	messages := make([]string, 0, len(b.Payments))
	for i, p := range b.Payments {
		bic := deref(p.Beneficiary.SwiftCode)
		if bic == "" {
			return nil, fmt.Errorf("bankfile: payment %s has no BIC", p.Ref)
		}
		messages = append(messages, mt103(p, b.ID, i+1, valueDate, bic, debtor))
	}
	return []byte(strings.Join(messages, "\n\n") + "\n"), nil
}

func mt103(p Payment, batchID string, seq int, valueDate, bic string, debtor Debtor) string {
	lines := []string{
		fmt.Sprintf("{1:F01%s0000000000}", debtor.BIC),
		fmt.Sprintf("{2:I103%sN}", bic),
		fmt.Sprintf("{3:{108:%s}}", p.Ref),
		"{4:",
		":20:" + p.Ref,
		":23B:CRED",
		fmt.Sprintf(":32A:%s%s%s", valueDate, p.Currency, strings.Replace(p.Amount.StringFixed(2), ".", ",", 1)),
		":50K:/" + debtor.Account,
	}
	lines = append(lines, swiftMultiLine(debtor.Name, 4)...)
	lines = append(lines, ":59:/"+p.Beneficiary.AccountNumber)
	lines = append(lines, swiftMultiLine(p.Beneficiary.AccountName, 1)...)
	lines = append(lines,
		":70:/INV/WITHDRAWAL",
		"/REC/"+p.Ref,
		":71A:SHA",
		":72:/BATCH/"+batchID,
		fmt.Sprintf("/SEQ/%d", seq),
		"-}",
	)
	return strings.Join(lines, "\n")
}

// swiftMultiLine upper-cases text, drops characters outside the SWIFT X
// character set and wraps it at 35 columns, keeping at most maxLines lines.
func swiftMultiLine(text string, maxLines int) []string {
	cleaned := strings.ToUpper(swiftDisallowed.ReplaceAllString(text, ""))
	var lines []string
	for len(cleaned) > 0 && len(lines) < maxLines {
		n := min(len(cleaned), swiftLineWidth)
		lines = append(lines, cleaned[:n])
		cleaned = cleaned[n:]
	}
	return lines
}
