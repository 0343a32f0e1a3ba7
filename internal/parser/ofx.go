package parser

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/financas-app/statement-parser/internal/category"
	"github.com/financas-app/statement-parser/internal/models"
)

// OFXStrategy extracts transactions from OFX/QFX financial-exchange
// files. The format is tag-based SGML/XML; blocks are located by bracket
// matching rather than a full parser, which copes with the many
// half-conformant exports banks produce.
type OFXStrategy struct{}

func NewOFXStrategy() *OFXStrategy {
	return &OFXStrategy{}
}

func (s *OFXStrategy) Name() string {
	return "ofx"
}

// CanParse accepts .ofx/.qfx files up to 10 MB whose first ~1000 bytes
// contain an OFX marker.
func (s *OFXStrategy) CanParse(file models.StatementFile) bool {
	ext := file.Extension()
	if ext != ".ofx" && ext != ".qfx" {
		return false
	}
	if file.Size() == 0 || file.Size() > maxStatementSize {
		return false
	}
	head := file.Data
	if len(head) > 1000 {
		head = head[:1000]
	}
	headStr := string(head)
	return strings.Contains(headStr, "<OFX>") || strings.Contains(headStr, "OFXHEADER")
}

func (s *OFXStrategy) Parse(_ context.Context, file models.StatementFile) models.ParseResult {
	text := string(file.Data)

	idx := strings.Index(text, "<OFX>")
	if idx < 0 {
		return models.Failure("no <OFX> tag found: the file does not look like a valid OFX/QFX statement")
	}
	body := text[idx:]

	blocks := extractOFXBlocks(body, "STMTTRN")

	var (
		txns    []models.ParsedTransaction
		errs    []string
		dropped int
	)
	now := time.Now()

	for i, block := range blocks {
		txn, err := parseOFXBlock(block)
		if err != nil {
			// A malformed block aborts only itself.
			errs = append(errs, fmt.Sprintf("transaction %d: %v", i+1, err))
			continue
		}
		if txn == nil {
			// Credit — card-bill ingestion only wants debits.
			continue
		}
		if !plausibleTransaction(*txn, now) {
			dropped++
			continue
		}
		txns = append(txns, *txn)
	}

	bank := ofxBankName(body)

	if len(txns) == 0 {
		errs = append(errs, "no debit transactions could be extracted from the OFX file")
		result := models.Failure(errs...)
		result.Metadata.BankName = bank
		result.Metadata.DroppedCount = dropped
		return result
	}

	metadata := models.ParseMetadata{
		BankName:        bank,
		TotalAmount:     sumAmounts(txns),
		StatementPeriod: statementPeriod(txns),
		DroppedCount:    dropped,
	}
	if acct := ofxTagValue(body, "ACCTID"); len(acct) >= 4 {
		metadata.CardLast4 = acct[len(acct)-4:]
	}

	return models.ParseResult{
		Success:      true,
		Transactions: txns,
		Errors:       errs,
		Notices: []string{
			fmt.Sprintf("Imported %d transactions from %s (total %s)",
				len(txns), bank, metadata.TotalAmount.StringFixed(2)),
		},
		Metadata: metadata,
	}
}

// parseOFXBlock extracts one transaction from a STMTTRN block. A nil
// transaction with nil error means the block was a credit and is skipped.
func parseOFXBlock(block string) (*models.ParsedTransaction, error) {
	amtStr := ofxTagValue(block, "TRNAMT")
	if amtStr == "" {
		return nil, fmt.Errorf("missing TRNAMT")
	}
	amt, err := decimal.NewFromString(strings.TrimSpace(amtStr))
	if err != nil {
		return nil, fmt.Errorf("invalid TRNAMT %q", amtStr)
	}
	if amt.Sign() > 0 {
		return nil, nil
	}

	date, err := parseOFXDate(ofxTagValue(block, "DTPOSTED"))
	if err != nil {
		return nil, err
	}

	desc := strings.TrimSpace(ofxTagValue(block, "MEMO"))
	if desc == "" {
		desc = strings.TrimSpace(ofxTagValue(block, "NAME"))
	}
	if desc == "" {
		desc = "OFX transaction"
	}

	raw := map[string]any{"source": "ofx"}
	if trnType := ofxTagValue(block, "TRNTYPE"); trnType != "" {
		raw["trnType"] = trnType
	}
	if fitID := ofxTagValue(block, "FITID"); fitID != "" {
		raw["fitId"] = fitID
	}

	return &models.ParsedTransaction{
		Date:        date,
		Description: desc,
		Amount:      amt.Abs(),
		Category:    category.Categorize(desc),
		RawData:     raw,
	}, nil
}

// parseOFXDate reads DTPOSTED values of the form YYYYMMDD[HHMMSS...] by
// fixed-offset substring, not a general date parser.
func parseOFXDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) < 8 {
		return time.Time{}, fmt.Errorf("invalid DTPOSTED %q", s)
	}
	year, err1 := strconv.Atoi(s[0:4])
	month, err2 := strconv.Atoi(s[4:6])
	day, err3 := strconv.Atoi(s[6:8])
	if err1 != nil || err2 != nil || err3 != nil ||
		month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("invalid DTPOSTED %q", s)
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

// extractOFXBlocks returns the inner text of each <TAG>...</TAG> block.
// When a closing tag is missing (common in SGML exports), the block runs
// to the next opening tag or to the end of the document.
func extractOFXBlocks(text, tag string) []string {
	open := "<" + tag + ">"
	closing := "</" + tag + ">"

	var blocks []string
	for {
		start := strings.Index(text, open)
		if start < 0 {
			break
		}
		rest := text[start+len(open):]

		end := strings.Index(rest, closing)
		next := strings.Index(rest, open)
		switch {
		case end >= 0 && (next < 0 || end < next):
			blocks = append(blocks, rest[:end])
			text = rest[end+len(closing):]
		case next >= 0:
			blocks = append(blocks, rest[:next])
			text = rest[next:]
		default:
			blocks = append(blocks, rest)
			text = ""
		}
	}
	return blocks
}

// ofxTagValue returns the value following <TAG>, which runs until the
// next tag or end of line. OFX leaf values are not always closed.
func ofxTagValue(text, tag string) string {
	open := "<" + tag + ">"
	idx := strings.Index(text, open)
	if idx < 0 {
		return ""
	}
	rest := text[idx+len(open):]
	if end := strings.IndexAny(rest, "<\r\n"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

// ofxBankName recovers the issuer from ORG or FID, falling back to a
// generic label.
func ofxBankName(text string) string {
	if org := ofxTagValue(text, "ORG"); org != "" {
		return org
	}
	if fid := ofxTagValue(text, "FID"); fid != "" {
		return "Bank " + fid
	}
	return "OFX statement"
}
