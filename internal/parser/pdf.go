package parser

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/financas-app/statement-parser/internal/category"
	"github.com/financas-app/statement-parser/internal/extractor"
	"github.com/financas-app/statement-parser/internal/models"
)

// PDFStrategy recovers transactions from PDF statement text using
// line-oriented regex extraction. It is the broadest and most heuristic
// strategy: it accepts degraded text and returns whatever validates.
type PDFStrategy struct{}

func NewPDFStrategy() *PDFStrategy {
	return &PDFStrategy{}
}

func (s *PDFStrategy) Name() string {
	return "pdf"
}

// CanParse accepts files whose declared media type or extension
// indicates PDF.
func (s *PDFStrategy) CanParse(file models.StatementFile) bool {
	if strings.Contains(strings.ToLower(file.MediaType), "pdf") {
		return true
	}
	return file.Extension() == ".pdf"
}

// Known issuers, matched case-insensitively against the recovered text.
// Detection only enriches metadata; it never gates success.
var knownBanks = []struct {
	needle string
	name   string
}{
	{"nubank", "Nubank"},
	{"banco do brasil", "Banco do Brasil"},
	{"itau", "Itaú"},
	{"itaú", "Itaú"},
	{"bradesco", "Bradesco"},
	{"santander", "Santander"},
	{"caixa", "Caixa"},
	{"banco inter", "Banco Inter"},
	{"c6 bank", "C6 Bank"},
	{"btg pactual", "BTG Pactual"},
	{"xp investimentos", "XP"},
	{"sicoob", "Sicoob"},
	{"sicredi", "Sicredi"},
	{"picpay", "PicPay"},
}

const unknownBank = "Unknown Bank"

func detectBank(text string) string {
	lower := strings.ToLower(text)
	for _, b := range knownBanks {
		if strings.Contains(lower, b.needle) {
			return b.name
		}
	}
	return unknownBank
}

// Keywords marking header/total/summary lines that must not be mistaken
// for transactions.
var skipLineKeywords = []string{
	"TOTAL", "SALDO", "VENCIMENTO", "LIMITE", "FATURA",
	"PAGAMENTO MINIMO", "PAGAMENTO MÍNIMO", "RESUMO", "ENCARGOS",
	"JUROS", "ANUIDADE", "DATA DE FECHAMENTO",
}

// isSkippableLine flags clear header/total lines. The short-line guard
// avoids false positives on legitimate descriptions that merely contain
// one of the keywords.
func isSkippableLine(line string) bool {
	if utf8.RuneCountInString(line) >= 45 {
		return false
	}
	upper := strings.ToUpper(line)
	for _, kw := range skipLineKeywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}

func (s *PDFStrategy) Parse(_ context.Context, file models.StatementFile) models.ParseResult {
	text, err := extractor.RecoverText(file.Data)
	if err != nil {
		return models.Failure("could not recover text from the PDF: " + err.Error())
	}

	bank := detectBank(text)
	now := time.Now()

	var (
		txns    []models.ParsedTransaction
		dropped int
	)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) < 10 {
			continue
		}
		if isSkippableLine(line) {
			continue
		}

		date, dateStr, ok := findDate(line, now)
		if !ok {
			continue
		}
		amount, amountStr, ok := findAmount(line)
		if !ok {
			continue
		}

		desc := strings.Replace(line, dateStr, "", 1)
		desc = removeLast(desc, amountStr)
		desc = cleanDescription(desc)

		txn := models.ParsedTransaction{
			Date:        date,
			Description: desc,
			Amount:      amount,
			Category:    category.Categorize(desc),
			Installment: findInstallment(desc),
			RawData:     map[string]any{"source": "pdf", "line": line},
		}
		if !plausibleTransaction(txn, now) {
			dropped++
			continue
		}
		txns = append(txns, txn)
	}

	txns = dedupe(txns)

	if len(txns) == 0 {
		result := models.Failure(
			"no transactions could be extracted from the PDF text",
			"try exporting the statement as OFX/QFX and uploading that instead",
		)
		result.Metadata.BankName = bank
		result.Metadata.DroppedCount = dropped
		return result
	}

	total := sumAmounts(txns)
	return models.ParseResult{
		Success:      true,
		Transactions: txns,
		Notices: []string{
			fmt.Sprintf("Extracted %d transactions from %s statement (total %s)",
				len(txns), bank, total.StringFixed(2)),
		},
		Metadata: models.ParseMetadata{
			BankName:        bank,
			TotalAmount:     total,
			StatementPeriod: statementPeriod(txns),
			DroppedCount:    dropped,
		},
	}
}
