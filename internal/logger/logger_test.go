package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf)
	log.Info().Str("file", "fatura.pdf").Msg("parse finished")

	out := buf.String()
	assert.Contains(t, out, `"message":"parse finished"`)
	assert.Contains(t, out, `"file":"fatura.pdf"`)
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	stored := NewWithWriter(&buf)

	ctx := WithContext(context.Background(), stored)
	log := FromContext(ctx, zerolog.Nop())
	log.Info().Msg("request scoped")
	assert.Contains(t, buf.String(), "request scoped")
}

func TestFromContext_Fallback(t *testing.T) {
	var buf bytes.Buffer
	fallback := NewWithWriter(&buf)

	log := FromContext(context.Background(), fallback)
	log.Info().Msg("fallback used")
	assert.Contains(t, buf.String(), "fallback used")
}
