package parser

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/financas-app/statement-parser/internal/models"
)

func ofxFile(t *testing.T, content string) models.StatementFile {
	t.Helper()
	return models.StatementFile{
		Name:      "statement.ofx",
		MediaType: "application/x-ofx",
		Data:      []byte(content),
	}
}

// sampleOFX builds a statement with two debits and one credit, dated
// relative to now so the plausibility window never interferes.
func sampleOFX(now time.Time) string {
	d1 := now.AddDate(0, 0, -20).Format("20060102")
	d2 := now.AddDate(0, 0, -18).Format("20060102")
	d3 := now.AddDate(0, 0, -15).Format("20060102")
	return fmt.Sprintf(`OFXHEADER:100
DATA:OFXSGML

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<FI>
<ORG>Banco Exemplo
<FID>1234
</FI>
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTRS>
<ACCTID>5412345678901234
<BANKTRANLIST>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>%s120000
<TRNAMT>-120.00
<FITID>txn-001
<MEMO>SUPERMARKET X
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>%s120000
<TRNAMT>-45.00
<FITID>txn-002
<NAME>UBER
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>%s120000
<TRNAMT>500.00
<FITID>txn-003
<MEMO>PAYMENT RECEIVED
</STMTTRN>
</BANKTRANLIST>
</CCSTMTRS>
</CREDITCARDMSGSRSV1>
</OFX>`, d1, d2, d3)
}

func TestOFXStrategy_CanParse(t *testing.T) {
	s := NewOFXStrategy()

	file := ofxFile(t, sampleOFX(time.Now()))
	if !s.CanParse(file) {
		t.Error("expected CanParse=true for a valid .ofx file")
	}

	qfx := file
	qfx.Name = "statement.qfx"
	if !s.CanParse(qfx) {
		t.Error("expected CanParse=true for a .qfx file")
	}

	wrongExt := file
	wrongExt.Name = "statement.pdf"
	if s.CanParse(wrongExt) {
		t.Error("expected CanParse=false for non-OFX extension")
	}

	noMarker := ofxFile(t, strings.Repeat("x", 2000))
	if s.CanParse(noMarker) {
		t.Error("expected CanParse=false without an OFX marker in the head")
	}

	empty := ofxFile(t, "")
	if s.CanParse(empty) {
		t.Error("expected CanParse=false for an empty file")
	}
}

// End-to-end: two debits and one credit parse to exactly two
// transactions totalling 165.00, with the credit excluded.
func TestOFXStrategy_Parse(t *testing.T) {
	s := NewOFXStrategy()
	result := s.Parse(context.Background(), ofxFile(t, sampleOFX(time.Now())))

	if !result.Success {
		t.Fatalf("expected success, got errors: %v", result.Errors)
	}
	if len(result.Transactions) != 2 {
		t.Fatalf("transactions: got %d, want 2", len(result.Transactions))
	}

	first := result.Transactions[0]
	if first.Description != "SUPERMARKET X" {
		t.Errorf("txn[0].Description = %q, want %q", first.Description, "SUPERMARKET X")
	}
	want, _ := decimal.NewFromString("120.00")
	if !first.Amount.Equal(want) {
		t.Errorf("txn[0].Amount = %s, want 120.00", first.Amount)
	}

	second := result.Transactions[1]
	if second.Description != "UBER" {
		t.Errorf("txn[1].Description = %q, want %q (NAME fallback)", second.Description, "UBER")
	}

	total, _ := decimal.NewFromString("165.00")
	if !result.Metadata.TotalAmount.Equal(total) {
		t.Errorf("metadata total = %s, want 165.00", result.Metadata.TotalAmount)
	}
	if result.Metadata.BankName != "Banco Exemplo" {
		t.Errorf("bank = %q, want %q", result.Metadata.BankName, "Banco Exemplo")
	}
	if result.Metadata.CardLast4 != "1234" {
		t.Errorf("cardLast4 = %q, want %q", result.Metadata.CardLast4, "1234")
	}
	if result.Metadata.StatementPeriod == "" {
		t.Error("expected a statement period derived from transaction dates")
	}
	if len(result.Notices) == 0 {
		t.Error("expected a success notice")
	}
}

func TestOFXStrategy_SignNormalization(t *testing.T) {
	now := time.Now()
	content := fmt.Sprintf(`<OFX>
<STMTTRN>
<DTPOSTED>%s
<TRNAMT>-45.90
<MEMO>FARMACIA CENTRAL
</STMTTRN>
</OFX>`, now.AddDate(0, 0, -5).Format("20060102"))

	result := NewOFXStrategy().Parse(context.Background(), ofxFile(t, content))
	if !result.Success {
		t.Fatalf("expected success, got errors: %v", result.Errors)
	}
	want, _ := decimal.NewFromString("45.90")
	if !result.Transactions[0].Amount.Equal(want) {
		t.Errorf("amount = %s, want 45.90 (positive)", result.Transactions[0].Amount)
	}
}

func TestOFXStrategy_NoOFXTag(t *testing.T) {
	result := NewOFXStrategy().Parse(context.Background(), ofxFile(t, "OFXHEADER:100\nnothing else"))
	if result.Success {
		t.Fatal("expected failure without <OFX> tag")
	}
	if len(result.Errors) != 1 {
		t.Errorf("errors: got %d, want exactly 1", len(result.Errors))
	}
	if len(result.Transactions) != 0 {
		t.Error("failed result must carry no transactions")
	}
}

func TestOFXStrategy_OnlyCredits(t *testing.T) {
	now := time.Now()
	content := fmt.Sprintf(`<OFX>
<STMTTRN>
<DTPOSTED>%s
<TRNAMT>500.00
<MEMO>PAYMENT RECEIVED
</STMTTRN>
</OFX>`, now.AddDate(0, 0, -5).Format("20060102"))

	result := NewOFXStrategy().Parse(context.Background(), ofxFile(t, content))
	if result.Success {
		t.Fatal("expected failure when all blocks are credits")
	}
	if len(result.Errors) == 0 {
		t.Error("expected a diagnostic error")
	}
}

// A malformed block aborts only itself; the remaining blocks still parse.
func TestOFXStrategy_MalformedBlockIsSkipped(t *testing.T) {
	now := time.Now()
	content := fmt.Sprintf(`<OFX>
<STMTTRN>
<DTPOSTED>garbage
<TRNAMT>-10.00
<MEMO>BROKEN DATE
</STMTTRN>
<STMTTRN>
<DTPOSTED>%s
<TRNAMT>-22.50
<MEMO>GOOD BLOCK
</STMTTRN>
</OFX>`, now.AddDate(0, 0, -3).Format("20060102"))

	result := NewOFXStrategy().Parse(context.Background(), ofxFile(t, content))
	if !result.Success {
		t.Fatalf("expected success, got errors: %v", result.Errors)
	}
	if len(result.Transactions) != 1 {
		t.Fatalf("transactions: got %d, want 1", len(result.Transactions))
	}
	if len(result.Errors) != 1 {
		t.Errorf("errors: got %d, want 1 (the malformed block)", len(result.Errors))
	}
}

func TestOFXTagValue(t *testing.T) {
	text := "<ORG>Banco Exemplo\n<FID>1234\n<TRNAMT>-45.90<FITID>abc"

	if got := ofxTagValue(text, "ORG"); got != "Banco Exemplo" {
		t.Errorf("ORG = %q", got)
	}
	if got := ofxTagValue(text, "TRNAMT"); got != "-45.90" {
		t.Errorf("TRNAMT = %q", got)
	}
	if got := ofxTagValue(text, "MISSING"); got != "" {
		t.Errorf("MISSING = %q, want empty", got)
	}
}

func TestExtractOFXBlocks_MissingClosingTag(t *testing.T) {
	text := "<STMTTRN><TRNAMT>-1.00\n<STMTTRN><TRNAMT>-2.00\n"
	blocks := extractOFXBlocks(text, "STMTTRN")
	if len(blocks) != 2 {
		t.Fatalf("blocks: got %d, want 2", len(blocks))
	}
}
