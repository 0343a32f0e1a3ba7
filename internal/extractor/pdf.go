// Package extractor recovers plain text from statement file buffers.
// It tries structured PDF extraction first and falls back to treating
// the byte stream as recoverable text (UTF-8, then Latin-1). True
// content-stream decompression is out of scope: statements whose text
// cannot be recovered this way are reported as possibly encrypted.
package extractor

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

const minRecoverableChars = 100

// RecoverText turns raw statement bytes into normalized, line-oriented
// text. It returns an error only when no readable text can be recovered.
func RecoverText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty file")
	}

	// Structured extraction when the buffer is a real PDF and the
	// library can decode it.
	if bytes.HasPrefix(data, []byte("%PDF")) {
		if text, err := extractWithLibrary(data); err == nil {
			text = Normalize(text)
			if IsReadableText(text) {
				return text, nil
			}
		}
	}

	// Byte-level recovery: decode as UTF-8; retry as Latin-1 when the
	// result looks corrupted (replacement runes or implausibly short).
	text := string(data)
	if looksCorrupted(text) {
		text = decodeLatin1(data)
	}
	text = Normalize(text)

	if !IsReadableText(text) {
		return "", fmt.Errorf("no readable text could be recovered: the statement may be encrypted, image-based or use an unsupported encoding")
	}
	return text, nil
}

// looksCorrupted reports whether a UTF-8 decode produced garbage.
func looksCorrupted(text string) bool {
	if len(text) < minRecoverableChars {
		return true
	}
	return strings.ContainsRune(text, utf8.RuneError)
}

// decodeLatin1 maps each byte to the corresponding Unicode code point.
func decodeLatin1(data []byte) string {
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}

var (
	spaceRuns     = regexp.MustCompile(`[ \t]+`)
	blankLineRuns = regexp.MustCompile(`\n{3,}`)
)

// Normalize strips control characters except newlines, collapses runs of
// spaces/tabs, and collapses blank-line runs, preserving the line
// structure the extraction step depends on.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '\n':
			b.WriteRune(r)
		case r == '\r':
			// dropped; \r\n collapses to \n
		case r == '\t':
			b.WriteRune(' ')
		case unicode.IsControl(r) || r == utf8.RuneError:
			// dropped
		default:
			b.WriteRune(r)
		}
	}
	text = spaceRuns.ReplaceAllString(b.String(), " ")
	text = blankLineRuns.ReplaceAllString(text, "\n\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// commonWords that appear in virtually all card statements. If the
// recovered text contains none of these, it is likely garbage.
var commonWords = []string{
	"fatura", "cartao", "cartão", "banco", "total", "saldo",
	"vencimento", "pagamento", "limite", "lancamentos", "lançamentos",
	"compras", "data", "valor", "statement", "account", "balance",
}

func containsCommonWord(text string) bool {
	lower := strings.ToLower(text)
	for _, word := range commonWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// textQuality returns the ratio of readable characters (letters, digits,
// punctuation, whitespace) to total characters. Latin letters with
// accents count as readable since statements are mostly pt-BR.
func textQuality(text string) float64 {
	total := 0
	readable := 0
	for _, r := range text {
		total++
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) ||
			strings.ContainsRune(`.,-/:;()'"$%&@#!?+=*`, r) || r == '£' || r == '€' {
			readable++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

// IsReadableText checks that the text is long enough, mostly readable
// characters, and contains at least one word expected in a statement.
func IsReadableText(text string) bool {
	if len(strings.TrimSpace(text)) < minRecoverableChars {
		return false
	}
	if textQuality(text) <= 0.55 {
		return false
	}
	return containsCommonWord(text)
}

// extractWithLibrary uses the ledongthuc/pdf reader over the in-memory
// buffer. The library panics on some malformed files, so recover into an
// error.
func extractWithLibrary(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	numPages := r.NumPage()
	if numPages == 0 {
		return "", fmt.Errorf("PDF has no pages")
	}

	// Row-based extraction keeps amounts on the same line as their
	// description, which the line-oriented parser depends on.
	if text := extractByRow(r, numPages); IsReadableText(Normalize(text)) {
		return text, nil
	}

	// Whole-document plain text as a second attempt.
	reader, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	plain, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func extractByRow(r *pdf.Reader, numPages int) string {
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			var parts []string
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			line := strings.TrimSpace(strings.Join(parts, " "))
			if line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return strings.Join(pages, "\n")
}
