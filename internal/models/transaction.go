package models

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// StatementFile is an uploaded statement as received from the caller:
// the raw bytes plus the filename and declared media type. Strategies
// use all three to decide whether they can handle the file.
type StatementFile struct {
	Name      string `json:"name"`
	MediaType string `json:"mediaType"`
	Data      []byte `json:"-"`
}

// Extension returns the lowercased file extension, including the dot.
func (f StatementFile) Extension() string {
	return strings.ToLower(filepath.Ext(f.Name))
}

// Size returns the file size in bytes.
func (f StatementFile) Size() int {
	return len(f.Data)
}

// ParsedTransaction is one recovered purchase/charge from a statement.
// Amount is always positive; the strategy resolves sign/direction before
// constructing it.
type ParsedTransaction struct {
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Installment string          `json:"installment,omitempty"` // e.g. "2/12"
	RawData     map[string]any  `json:"rawData,omitempty"`     // debug provenance only
}

// ParseMetadata is optional, strategy-dependent enrichment attached to a
// ParseResult. Downstream consumers never require any of these fields.
type ParseMetadata struct {
	BankName        string          `json:"bankName,omitempty"`
	CardLast4       string          `json:"cardLast4,omitempty"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	StatementPeriod string          `json:"statementPeriod,omitempty"`
	ClosingDate     string          `json:"closingDate,omitempty"`
	DueDate         string          `json:"dueDate,omitempty"`
	ReferenceMonth  int             `json:"referenceMonth,omitempty"`
	ReferenceYear   int             `json:"referenceYear,omitempty"`
	// DroppedCount is how many structurally parseable transactions were
	// discarded by the plausibility filter, so callers can detect silent
	// data loss.
	DroppedCount int `json:"droppedCount,omitempty"`
}

// ParseResult is the output of one parse attempt. Errors carries failure
// diagnostics; Notices carries informational annotations on success
// (counts, confidence, totals). When Success is false, Transactions is
// always empty.
type ParseResult struct {
	Success      bool                `json:"success"`
	Transactions []ParsedTransaction `json:"transactions"`
	Errors       []string            `json:"errors,omitempty"`
	Notices      []string            `json:"notices,omitempty"`
	Metadata     ParseMetadata       `json:"metadata"`
}

// Failure builds a hard-failure ParseResult carrying the given diagnostics.
func Failure(errs ...string) ParseResult {
	return ParseResult{
		Success:      false,
		Transactions: []ParsedTransaction{},
		Errors:       errs,
	}
}

// InvoiceCompetency is the billing period a statement/invoice belongs to.
type InvoiceCompetency struct {
	Month int `json:"month"` // 1..12
	Year  int `json:"year"`  // 2020..2100
}

// CardDates is a card's fixed billing-cycle configuration.
type CardDates struct {
	ClosingDay int `json:"closingDay"` // 1..31
	DueDay     int `json:"dueDay"`     // 1..31
}

// CalculatedDates is the result of applying a card's cycle configuration
// to a competency. Computed on demand, never persisted; callers recompute
// from the two immutable inputs.
type CalculatedDates struct {
	ClosingDate    time.Time `json:"closingDate"`
	DueDate        time.Time `json:"dueDate"`
	ClosingDateISO string    `json:"closingDateISO"` // YYYY-MM-DD
	DueDateISO     string    `json:"dueDateISO"`     // YYYY-MM-DD
}
