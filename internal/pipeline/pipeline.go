package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"stockcard/internal/card"
	"stockcard/internal/logger"
	"stockcard/internal/provider"
	"stockcard/internal/quote"
)

// ErrInvalidSymbol is returned before any fetch when the symbol is unusable.
var ErrInvalidSymbol = errors.New("invalid symbol")

var symbolPattern = regexp.MustCompile(`^[A-Z0-9.\-^=:]{1,32}$`)

// Service runs fetch → normalize → compile → validate for one symbol per call.
// It holds no per-request state, so concurrent calls are independent.
type Service struct {
	Fetcher provider.Fetcher
	Style   card.Style
	// Tracer defaults to the global provider's "stockcard/pipeline" tracer.
	Tracer trace.Tracer
}

func New(f provider.Fetcher, style card.Style) *Service {
	return &Service{Fetcher: f, Style: style, Tracer: otel.Tracer("stockcard/pipeline")}
}

// NormalizeSymbol trims and upper-cases s, rejecting anything a ticker cannot contain.
func NormalizeSymbol(s string) (string, error) {
	sym := strings.ToUpper(strings.TrimSpace(s))
	if !symbolPattern.MatchString(sym) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSymbol, s)
	}
	return sym, nil
}

// FetchAndCompile returns a validated card for symbol, or fails with one of
// ErrInvalidSymbol, provider.ErrNetwork, quote.ErrMalformedQuote or card.ErrRender.
// No partial card is ever returned.
func (s *Service) FetchAndCompile(ctx context.Context, symbol string) (card.Document, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return card.Document{}, err
	}

	tracer := s.Tracer
	if tracer == nil {
		tracer = otel.Tracer("stockcard/pipeline")
	}
	ctx, span := tracer.Start(ctx, "FetchAndCompile", trace.WithAttributes(
		attribute.String("symbol", sym),
		attribute.String("provider", s.Fetcher.Name()),
	))
	defer span.End()

	log := logger.FromContext(ctx).With("symbol", sym, "provider", s.Fetcher.Name())
	start := time.Now()

	doc, err := s.run(ctx, tracer, log, sym)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Warn("quote card failed", "error", err, "elapsed", time.Since(start))
		return card.Document{}, err
	}
	log.Info("quote card compiled", "elapsed", time.Since(start))
	return doc, nil
}

func (s *Service) run(ctx context.Context, tracer trace.Tracer, log *slog.Logger, sym string) (card.Document, error) {
	fetchCtx, span := tracer.Start(ctx, "fetch")
	body, err := s.Fetcher.FetchQuote(fetchCtx, sym)
	if err != nil {
		var ne *provider.NetworkError
		if !errors.As(err, &ne) {
			// limiter waits and other pre-request failures
			err = &provider.NetworkError{Op: "fetch", URL: s.Fetcher.Name(), Err: err}
		}
		endWithError(span, err)
		return card.Document{}, err
	}
	span.End()

	_, span = tracer.Start(ctx, "normalize")
	q, err := quote.Parse(body)
	if err != nil {
		endWithError(span, err)
		return card.Document{}, err
	}
	span.End()
	log.Debug("quote normalized", "quote", q)

	_, span = tracer.Start(ctx, "compile")
	doc := card.Compile(q, s.Style)
	if err := card.Validate(doc); err != nil {
		endWithError(span, err)
		return card.Document{}, err
	}
	span.End()
	return doc, nil
}

func endWithError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()
}
