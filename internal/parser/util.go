package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/financas-app/statement-parser/internal/models"
)

// maxStatementSize bounds accepted uploads for every strategy.
const maxStatementSize = 10 << 20 // 10 MB

// Date patterns found on Brazilian card statements.
var (
	// DD/MM/YYYY
	dateFullPattern = regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{4})\b`)
	// DD/MM/YY
	dateShortYearPattern = regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{2})\b`)
	// DD/MM with no year — year defaults to the current one
	dateNoYearPattern = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})\b`)
)

// Monetary patterns: currency-marked and bare thousand-separated pt-BR
// decimals ("R$ 1.234,56", "1.234,56").
var (
	currencyAmountPattern = regexp.MustCompile(`R\$\s*(\d{1,3}(?:\.\d{3})*,\d{2}|\d+,\d{2})`)
	bareAmountPattern     = regexp.MustCompile(`\b\d{1,3}(?:\.\d{3})*,\d{2}\b`)
)

// installmentPattern matches plan markers like "2/12" or "PARC 03/10".
var installmentPattern = regexp.MustCompile(`(?i)\b(?:parc(?:ela)?\.?\s*)?(\d{1,2})/(\d{1,2})\b`)

// findDate searches a line for a transaction date, trying full, two-digit
// year and yearless forms in that order. It returns the parsed date and
// the matched substring so the caller can remove it from the description.
func findDate(line string, now time.Time) (time.Time, string, bool) {
	if m := dateFullPattern.FindString(line); m != "" {
		if t, err := time.Parse("2/1/2006", m); err == nil {
			return t, m, true
		}
	}
	if m := dateShortYearPattern.FindString(line); m != "" {
		if t, err := time.Parse("2/1/06", m); err == nil {
			return t, m, true
		}
	}
	if m := dateNoYearPattern.FindStringSubmatch(line); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if day >= 1 && day <= 31 && month >= 1 && month <= 12 {
			t := time.Date(now.Year(), time.Month(month), day, 0, 0, 0, 0, time.UTC)
			return t, m[0], true
		}
	}
	return time.Time{}, "", false
}

// findAmount searches a line for a monetary value, preferring the last
// match — statements typically place the amount at the line's end.
// Currency-marked values win over bare decimals.
func findAmount(line string) (decimal.Decimal, string, bool) {
	if matches := currencyAmountPattern.FindAllString(line, -1); len(matches) > 0 {
		last := matches[len(matches)-1]
		if amt, err := parseBRLAmount(last); err == nil {
			return amt, last, true
		}
	}
	if matches := bareAmountPattern.FindAllString(line, -1); len(matches) > 0 {
		last := matches[len(matches)-1]
		if amt, err := parseBRLAmount(last); err == nil {
			return amt, last, true
		}
	}
	return decimal.Decimal{}, "", false
}

// parseBRLAmount converts "R$ 1.234,56" or "1.234,56" to a decimal.
func parseBRLAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "R$", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	return decimal.NewFromString(s)
}

// findInstallment returns an "n/m" marker from a description, or "".
// Plans run from 2 to 48 installments; anything else is treated as noise
// (a leftover date fragment, a fraction in the merchant name).
func findInstallment(description string) string {
	for _, m := range installmentPattern.FindAllStringSubmatch(description, -1) {
		num, _ := strconv.Atoi(m[1])
		den, _ := strconv.Atoi(m[2])
		if den >= 2 && den <= 48 && num >= 1 && num <= den {
			return m[1] + "/" + m[2]
		}
	}
	return ""
}

// removeLast cuts the last occurrence of sub from s.
func removeLast(s, sub string) string {
	idx := strings.LastIndex(s, sub)
	if idx < 0 {
		return s
	}
	return s[:idx] + s[idx+len(sub):]
}

// cleanDescription strips currency symbols and collapses whitespace left
// behind after removing the date and amount substrings.
func cleanDescription(s string) string {
	s = strings.ReplaceAll(s, "R$", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, " -|")
}

// Plausibility bounds shared by every strategy. Transactions outside
// them are dropped and counted, never surfaced as errors.
var maxPlausibleAmount = decimal.NewFromInt(1_000_000)

func plausibleDate(t, now time.Time) bool {
	return !t.Before(now.AddDate(-2, 0, 0)) && !t.After(now.AddDate(0, 1, 0))
}

func plausibleAmount(a decimal.Decimal) bool {
	return a.IsPositive() && a.LessThanOrEqual(maxPlausibleAmount)
}

func plausibleDescription(s string) bool {
	n := utf8.RuneCountInString(s)
	return n >= 3 && n <= 200
}

func plausibleTransaction(txn models.ParsedTransaction, now time.Time) bool {
	return plausibleDate(txn.Date, now) &&
		plausibleAmount(txn.Amount) &&
		plausibleDescription(txn.Description)
}

// dedupe collapses exact repeats on (ISO date, description, amount),
// preserving first-seen order. Statements often print the same line in
// both summary and detail sections.
func dedupe(txns []models.ParsedTransaction) []models.ParsedTransaction {
	seen := make(map[string]bool, len(txns))
	out := txns[:0]
	for _, txn := range txns {
		key := txn.Date.Format("2006-01-02") + "|" + txn.Description + "|" + txn.Amount.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, txn)
	}
	return out
}

// sumAmounts totals the transaction amounts for metadata.
func sumAmounts(txns []models.ParsedTransaction) decimal.Decimal {
	total := decimal.Zero
	for _, txn := range txns {
		total = total.Add(txn.Amount)
	}
	return total
}

// statementPeriod derives "YYYY-MM-DD to YYYY-MM-DD" from the min/max
// transaction dates actually extracted, or "" when there are none.
func statementPeriod(txns []models.ParsedTransaction) string {
	if len(txns) == 0 {
		return ""
	}
	min, max := txns[0].Date, txns[0].Date
	for _, txn := range txns[1:] {
		if txn.Date.Before(min) {
			min = txn.Date
		}
		if txn.Date.After(max) {
			max = txn.Date
		}
	}
	return min.Format("2006-01-02") + " to " + max.Format("2006-01-02")
}
