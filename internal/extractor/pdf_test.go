package extractor

import (
	"bytes"
	"strings"
	"testing"
)

func TestRecoverText_UTF8(t *testing.T) {
	input := "Fatura de Cartão de Crédito\n" +
		"15/01/2025  UBER *TRIP   R$ 23,50\n\n\n\n" +
		"Total da fatura: R$ 23,50\n" +
		strings.Repeat("linha de detalhe da fatura\n", 4)

	text, err := RecoverText([]byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "UBER *TRIP R$ 23,50") {
		t.Errorf("space runs not collapsed: %q", text)
	}
	if strings.Contains(text, "\n\n\n") {
		t.Error("blank-line runs not collapsed")
	}
}

func TestRecoverText_Latin1Fallback(t *testing.T) {
	// "Fatura de Cartão" encoded as Latin-1: ã is a single 0xE3 byte,
	// which is invalid UTF-8.
	latin1 := []byte("Fatura de Cart\xe3o de Cr\xe9dito - total da fatura\n")
	latin1 = append(latin1, bytes.Repeat([]byte("compras e lancamentos do cartao\n"), 4)...)

	text, err := RecoverText(latin1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "Cartão de Crédito") {
		t.Errorf("Latin-1 bytes not recovered: %q", text)
	}
}

func TestRecoverText_ControlCharactersStripped(t *testing.T) {
	input := "Fatura do cartao\x00\x01 com total\x07 e saldo\n" +
		strings.Repeat("linha de lancamento da fatura\n", 4)

	text, err := RecoverText([]byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.ContainsAny(text, "\x00\x01\x07") {
		t.Error("control characters survived normalization")
	}
	if !strings.Contains(text, "com total e saldo") {
		t.Errorf("text mangled: %q", text)
	}
}

func TestRecoverText_Unreadable(t *testing.T) {
	if _, err := RecoverText(bytes.Repeat([]byte{0xfe, 0xff, 0x00}, 300)); err == nil {
		t.Error("expected an error for binary garbage")
	}
	if _, err := RecoverText(nil); err == nil {
		t.Error("expected an error for an empty buffer")
	}
	if _, err := RecoverText([]byte("too short")); err == nil {
		t.Error("expected an error for implausibly short text")
	}
}

func TestIsReadableText(t *testing.T) {
	good := strings.Repeat("fatura do cartao com lancamentos e total ", 5)
	if !IsReadableText(good) {
		t.Error("statement-like text should be readable")
	}

	// Long and mostly letters, but nothing a statement would contain.
	if IsReadableText(strings.Repeat("zzzz yyyy xxxx ", 20)) {
		t.Error("text without statement words should be rejected")
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize("  a\tb   c  \r\nd\n\n\n\n\ne  ")
	want := "a b c\nd\n\ne"
	if got != want {
		t.Errorf("Normalize = %q, want %q", got, want)
	}
}
