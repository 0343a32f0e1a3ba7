// Package parser turns heterogeneous statement files into a uniform
// list of dated, categorized transactions. Each format is handled by a
// Strategy; the Dispatcher probes them in priority order and runs the
// first one that accepts the file.
package parser

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/financas-app/statement-parser/internal/logger"
	"github.com/financas-app/statement-parser/internal/models"
	"github.com/financas-app/statement-parser/internal/ocr"
)

// Strategy is one concrete statement format handler. Implementations are
// stateless: configuration constants only, no mutable fields across
// calls, so concurrent parses of different files need no locking.
type Strategy interface {
	// Name identifies the strategy in logs and provenance data.
	Name() string
	// CanParse reports whether this strategy accepts the file.
	// Returning false is non-participation, not an error.
	CanParse(file models.StatementFile) bool
	// Parse runs the extraction. Expected malformed input is encoded in
	// the returned ParseResult, never raised.
	Parse(ctx context.Context, file models.StatementFile) models.ParseResult
}

// Dispatcher holds the ordered strategy list. The list is injected
// explicitly; there is no process-wide registry.
type Dispatcher struct {
	strategies []Strategy
	log        zerolog.Logger
}

// NewDispatcher builds a dispatcher over the given strategies, probed in
// the order supplied.
func NewDispatcher(log zerolog.Logger, strategies ...Strategy) *Dispatcher {
	return &Dispatcher{strategies: strategies, log: log}
}

// Default returns a dispatcher with the built-in strategies in priority
// order: OFX, then OCR (when a client is configured), then the PDF byte
// heuristic as the broadest fallback.
func Default(log zerolog.Logger, ocrClient *ocr.Client) *Dispatcher {
	strategies := []Strategy{NewOFXStrategy()}
	if ocrClient != nil {
		strategies = append(strategies, NewOCRStrategy(ocrClient))
	}
	strategies = append(strategies, NewPDFStrategy())
	return NewDispatcher(log, strategies...)
}

// Parse probes each strategy and runs the first that accepts the file.
// A panicking strategy is converted into a hard-failure result so the
// caller always receives a consistent shape. When no strategy accepts,
// the result is a hard failure with an unsupported-format diagnostic.
func (d *Dispatcher) Parse(ctx context.Context, file models.StatementFile) (result models.ParseResult) {
	log := logger.FromContext(ctx, d.log).With().
		Str("run_id", uuid.NewString()).
		Str("file", file.Name).
		Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("strategy panicked")
			result = models.Failure(fmt.Sprintf("internal parser fault: %v", r))
		}
	}()

	for _, s := range d.strategies {
		if !s.CanParse(file) {
			continue
		}
		log.Info().Str("strategy", s.Name()).Int("size", file.Size()).Msg("strategy accepted file")
		result = s.Parse(ctx, file)
		log.Info().
			Str("strategy", s.Name()).
			Bool("success", result.Success).
			Int("transactions", len(result.Transactions)).
			Int("dropped", result.Metadata.DroppedCount).
			Msg("parse finished")
		return result
	}

	log.Warn().Str("media_type", file.MediaType).Msg("no strategy accepted file")
	return models.Failure(fmt.Sprintf(
		"unsupported file format %q: expected an OFX/QFX or PDF statement", file.Name))
}
