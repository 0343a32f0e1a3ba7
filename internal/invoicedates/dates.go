// Package invoicedates derives closing and due dates from a card's
// billing-cycle configuration and an invoice competency (month, year).
// All functions are pure; callers recompute on demand.
package invoicedates

import (
	"fmt"
	"time"

	"github.com/financas-app/statement-parser/internal/models"
)

const (
	minYear = 2020
	maxYear = 2100
)

// InvalidDateSentinel is returned by FormatForDisplay for unparseable
// input. It is a deliberate UI-facing soft failure, not an error.
const InvalidDateSentinel = "Invalid date"

const (
	isoLayout     = "2006-01-02"
	displayLayout = "02/01/2006"
)

func validateDay(day int) error {
	if day < 1 || day > 31 {
		return fmt.Errorf("day must be between 1 and 31, got %d", day)
	}
	return nil
}

func validateMonth(month int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("month must be between 1 and 12, got %d", month)
	}
	return nil
}

func validateYear(year int) error {
	if year < minYear || year > maxYear {
		return fmt.Errorf("year must be between %d and %d, got %d", minYear, maxYear, year)
	}
	return nil
}

// ValidateCompetency checks the month and year bounds of a competency.
func ValidateCompetency(c models.InvoiceCompetency) error {
	if err := validateMonth(c.Month); err != nil {
		return fmt.Errorf("invalid competency month: %w", err)
	}
	if err := validateYear(c.Year); err != nil {
		return fmt.Errorf("invalid competency year: %w", err)
	}
	return nil
}

// CalculateClosingDate places the closing day inside the competency
// month/year.
func CalculateClosingDate(closingDay, month, year int) (time.Time, error) {
	if err := validateDay(closingDay); err != nil {
		return time.Time{}, fmt.Errorf("invalid closing day: %w", err)
	}
	if err := validateMonth(month); err != nil {
		return time.Time{}, fmt.Errorf("invalid competency month: %w", err)
	}
	if err := validateYear(year); err != nil {
		return time.Time{}, fmt.Errorf("invalid competency year: %w", err)
	}
	return time.Date(year, time.Month(month), closingDay, 0, 0, 0, 0, time.UTC), nil
}

// CalculateDueDate places the due day in the month immediately following
// the closing month, rolling the year forward when the closing month is
// December. The grace period always spans exactly one month regardless of
// how the two day numbers compare.
func CalculateDueDate(dueDay, closingMonth, closingYear int) (time.Time, error) {
	if err := validateDay(dueDay); err != nil {
		return time.Time{}, fmt.Errorf("invalid due day: %w", err)
	}
	if err := validateMonth(closingMonth); err != nil {
		return time.Time{}, fmt.Errorf("invalid closing month: %w", err)
	}
	if err := validateYear(closingYear); err != nil {
		return time.Time{}, fmt.Errorf("invalid closing year: %w", err)
	}

	dueMonth := closingMonth + 1
	dueYear := closingYear
	if closingMonth == 12 {
		dueMonth = 1
		dueYear++
	}
	return time.Date(dueYear, time.Month(dueMonth), dueDay, 0, 0, 0, 0, time.UTC), nil
}

// CalculateInvoiceDates composes closing and due date calculation for a
// card and competency, also emitting ISO (YYYY-MM-DD) string forms for
// interchange.
func CalculateInvoiceDates(card models.CardDates, competency models.InvoiceCompetency) (models.CalculatedDates, error) {
	closing, err := CalculateClosingDate(card.ClosingDay, competency.Month, competency.Year)
	if err != nil {
		return models.CalculatedDates{}, err
	}
	due, err := CalculateDueDate(card.DueDay, competency.Month, competency.Year)
	if err != nil {
		return models.CalculatedDates{}, err
	}
	return models.CalculatedDates{
		ClosingDate:    closing,
		DueDate:        due,
		ClosingDateISO: closing.Format(isoLayout),
		DueDateISO:     due.Format(isoLayout),
	}, nil
}

// FormatForDisplay renders a time.Time or an ISO/RFC3339 date string as
// "DD/MM/YYYY". Unparseable input yields InvalidDateSentinel instead of
// an error.
func FormatForDisplay(value any) string {
	switch v := value.(type) {
	case time.Time:
		if v.IsZero() {
			return InvalidDateSentinel
		}
		return v.Format(displayLayout)
	case string:
		if t, err := time.Parse(isoLayout, v); err == nil {
			return t.Format(displayLayout)
		}
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t.Format(displayLayout)
		}
		return InvalidDateSentinel
	default:
		return InvalidDateSentinel
	}
}
