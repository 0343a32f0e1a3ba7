package parser

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/financas-app/statement-parser/internal/models"
)

type stubStrategy struct {
	name    string
	accepts bool
	called  *bool
	result  models.ParseResult
	panics  bool
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) CanParse(models.StatementFile) bool { return s.accepts }

func (s *stubStrategy) Parse(context.Context, models.StatementFile) models.ParseResult {
	if s.called != nil {
		*s.called = true
	}
	if s.panics {
		panic("boom")
	}
	return s.result
}

func TestDispatcher_FirstAcceptingStrategyWins(t *testing.T) {
	firstCalled := false
	secondCalled := false

	d := NewDispatcher(zerolog.Nop(),
		&stubStrategy{name: "reject", accepts: false},
		&stubStrategy{name: "first", accepts: true, called: &firstCalled,
			result: models.ParseResult{Success: true, Transactions: []models.ParsedTransaction{}}},
		&stubStrategy{name: "second", accepts: true, called: &secondCalled},
	)

	result := d.Parse(context.Background(), models.StatementFile{Name: "f.pdf"})

	if !result.Success {
		t.Error("expected the first accepting strategy's result")
	}
	if !firstCalled {
		t.Error("first accepting strategy was not invoked")
	}
	if secondCalled {
		t.Error("later strategies must not run once one accepts")
	}
}

func TestDispatcher_NoStrategyAccepts(t *testing.T) {
	d := NewDispatcher(zerolog.Nop(), &stubStrategy{name: "reject", accepts: false})

	result := d.Parse(context.Background(), models.StatementFile{Name: "notes.txt"})
	if result.Success {
		t.Fatal("expected failure when no strategy accepts")
	}
	if len(result.Errors) == 0 || !strings.Contains(result.Errors[0], "unsupported") {
		t.Errorf("expected an unsupported-format diagnostic, got %v", result.Errors)
	}
}

// A panicking strategy is converted into a hard-failure result so the
// caller always receives a consistent shape.
func TestDispatcher_RecoversPanic(t *testing.T) {
	d := NewDispatcher(zerolog.Nop(), &stubStrategy{name: "explode", accepts: true, panics: true})

	result := d.Parse(context.Background(), models.StatementFile{Name: "f.pdf"})
	if result.Success {
		t.Fatal("expected failure after panic")
	}
	if len(result.Errors) == 0 || !strings.Contains(result.Errors[0], "internal parser fault") {
		t.Errorf("expected an internal fault diagnostic, got %v", result.Errors)
	}
	if len(result.Transactions) != 0 {
		t.Error("failed result must carry no transactions")
	}
}

func TestDefault_StrategyOrder(t *testing.T) {
	d := Default(zerolog.Nop(), nil)
	if len(d.strategies) != 2 {
		t.Fatalf("strategies: got %d, want 2 without an OCR client", len(d.strategies))
	}
	if d.strategies[0].Name() != "ofx" || d.strategies[1].Name() != "pdf" {
		t.Errorf("unexpected order: %s, %s", d.strategies[0].Name(), d.strategies[1].Name())
	}
}
