package parser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/financas-app/statement-parser/internal/category"
	"github.com/financas-app/statement-parser/internal/models"
	"github.com/financas-app/statement-parser/internal/ocr"
)

// OCRStrategy delegates the whole file to an external recognition
// capability and maps its structured output into the shared transaction
// model. It attempts no local fallback: when the capability fails, its
// own error is surfaced.
type OCRStrategy struct {
	client *ocr.Client
}

func NewOCRStrategy(client *ocr.Client) *OCRStrategy {
	return &OCRStrategy{client: client}
}

func (s *OCRStrategy) Name() string {
	return "ocr"
}

// CanParse accepts only files whose declared type is PDF, non-empty and
// at most 10 MB — stricter than the byte-heuristic strategy, which may
// still attempt files this one rejects.
func (s *OCRStrategy) CanParse(file models.StatementFile) bool {
	if !strings.Contains(strings.ToLower(file.MediaType), "pdf") {
		return false
	}
	return file.Size() > 0 && file.Size() <= maxStatementSize
}

func (s *OCRStrategy) Parse(ctx context.Context, file models.StatementFile) models.ParseResult {
	resp, err := s.client.Recognize(ctx, file.Name, file.Data)
	if err != nil {
		return models.Failure("recognition service unavailable: " + err.Error())
	}

	if !resp.Success || resp.Data == nil {
		msg := resp.Error
		if msg == "" {
			msg = "recognition failed without a reported reason"
		}
		result := models.Failure(msg)
		result.Notices = resp.Warnings
		return result
	}

	data := resp.Data
	now := time.Now()

	var (
		txns    []models.ParsedTransaction
		errs    []string
		dropped int
	)
	for i, item := range data.Items {
		date, err := parseRecognizedDate(item.Date)
		if err != nil {
			errs = append(errs, fmt.Sprintf("item %d: %v", i+1, err))
			continue
		}
		desc := strings.TrimSpace(item.Description)
		txn := models.ParsedTransaction{
			Date:        date,
			Description: desc,
			Amount:      decimal.NewFromFloat(item.Amount).Abs(),
			Category:    category.Categorize(desc),
			Installment: findInstallment(desc),
			RawData:     map[string]any{"source": "ocr", "confidence": data.Confidence},
		}
		if !plausibleTransaction(txn, now) {
			dropped++
			continue
		}
		txns = append(txns, txn)
	}

	if len(txns) == 0 {
		errs = append(errs, "recognition returned no usable transactions")
		result := models.Failure(errs...)
		result.Metadata.BankName = data.BankName
		result.Metadata.DroppedCount = dropped
		result.Notices = resp.Warnings
		return result
	}

	refMonth, refYear := inferCompetency(data.IssuedDate, data.DueDate)

	metadata := models.ParseMetadata{
		BankName:        data.BankName,
		TotalAmount:     decimal.NewFromFloat(data.TotalAmount),
		StatementPeriod: statementPeriod(txns),
		DueDate:         data.DueDate,
		ReferenceMonth:  refMonth,
		ReferenceYear:   refYear,
		DroppedCount:    dropped,
	}
	if metadata.TotalAmount.IsZero() {
		metadata.TotalAmount = sumAmounts(txns)
	}

	notices := append([]string{}, resp.Warnings...)
	notices = append(notices,
		fmt.Sprintf("Recognized %d transactions with %.0f%% confidence (%s, total %s)",
			len(txns), data.Confidence*100, data.BankName, metadata.TotalAmount.StringFixed(2)))

	return models.ParseResult{
		Success:      true,
		Transactions: txns,
		Errors:       errs,
		Notices:      notices,
		Metadata:     metadata,
	}
}

// parseRecognizedDate accepts the ISO and pt-BR forms the recognition
// service is known to emit.
func parseRecognizedDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("02/01/2006", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// inferCompetency derives the statement's reference (month, year):
// prefer the issued date's month/year; otherwise fall back to the due
// date's month minus one, rolling the year back across January.
func inferCompetency(issuedDate, dueDate string) (int, int) {
	if t, err := parseRecognizedDate(issuedDate); err == nil {
		return int(t.Month()), t.Year()
	}
	if t, err := parseRecognizedDate(dueDate); err == nil {
		month := int(t.Month()) - 1
		year := t.Year()
		if month == 0 {
			month = 12
			year--
		}
		return month, year
	}
	return 0, 0
}
