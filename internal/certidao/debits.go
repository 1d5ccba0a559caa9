package certidao

import (
	"regexp"
	"strings"
)

var (
	periodRe   = regexp.MustCompile(`(?:^|[^\d/])(\d{2})\s*/\s*(\d{4})(?:[^\d/]|$)`)
	yearRe     = regexp.MustCompile(`(?:^|[^\d.,])((?:19|20)\d{2})(?:[^\d,]|$)`)
	amountRe   = regexp.MustCompile(`(?:R\$\s*)?(\d{1,3}(?:\.\d{3})+,\d{2}|\d+,\d{2})`)
	currencyRe = regexp.MustCompile(`R\$`)
)

// DebitRowSeparator joins the period, amount and description of a debit row
const DebitRowSeparator = " | "

// NormalizeDebitRow turns one line of a SEFAZ debit listing into
// "MM/YYYY | 1.234,56 | DESCRIÇÃO". Lines without a period (MM/YYYY that is
// not part of a full date) or without a positive amount are rejected.
func NormalizeDebitRow(line string) (string, bool) {
	m := periodRe.FindStringSubmatchIndex(line)
	if m == nil {
		return "", false
	}
	month, year := line[m[2]:m[3]], line[m[4]:m[5]]
	if month < "01" || month > "12" {
		return "", false
	}
	rest := line[:m[2]] + " " + line[m[5]:]
	return buildDebitRow(month+"/"+year, rest)
}

// NormalizeIPVARow turns an IPVA line into "YYYY | 1.234,56 | DESCRIÇÃO"
func NormalizeIPVARow(line string) (string, bool) {
	m := yearRe.FindStringSubmatchIndex(line)
	if m == nil {
		return "", false
	}
	year := line[m[2]:m[3]]
	rest := line[:m[2]] + " " + line[m[3]:]
	return buildDebitRow(year, rest)
}

func buildDebitRow(period, rest string) (string, bool) {
	var amount float64
	found := false
	for _, sm := range amountRe.FindAllStringSubmatch(rest, -1) {
		if v, ok := ParseBRL(sm[1]); ok && v > 0 {
			amount, found = v, true
			break
		}
	}
	if !found {
		return "", false
	}

	desc := amountRe.ReplaceAllString(rest, " ")
	desc = currencyRe.ReplaceAllString(desc, " ")
	desc = strings.Trim(strings.TrimSpace(whitespaceRe.ReplaceAllString(desc, " ")), "-|;: ")

	parts := []string{period, brlPrinter.Sprintf("%.2f", amount)}
	if desc != "" {
		parts = append(parts, desc)
	}
	return strings.Join(parts, DebitRowSeparator), true
}

// DebitRow is a parsed view of a normalized debit row
type DebitRow struct {
	Period      string  `json:"period"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
}

// ParseDebitRow splits a row produced by NormalizeDebitRow or NormalizeIPVARow
func ParseDebitRow(row string) (DebitRow, bool) {
	parts := strings.SplitN(row, DebitRowSeparator, 3)
	if len(parts) < 2 {
		return DebitRow{}, false
	}
	amount, ok := ParseBRL(parts[1])
	if !ok {
		return DebitRow{}, false
	}
	d := DebitRow{Period: parts[0], Amount: amount}
	if len(parts) == 3 {
		d.Description = parts[2]
	}
	return d, true
}

// DebitTotal sums the amounts of the given debit rows, skipping rows that do
// not parse.
func DebitTotal(rows []string) float64 {
	var total float64
	for _, row := range rows {
		if d, ok := ParseDebitRow(row); ok {
			total += d.Amount
		}
	}
	return total
}
