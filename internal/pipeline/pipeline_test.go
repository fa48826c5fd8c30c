package pipeline_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/mock/gomock"
	"stockcard/internal/card"
	"stockcard/internal/logger"
	"stockcard/internal/pipeline"
	"stockcard/internal/provider"
	"stockcard/internal/quote"
)

const msftPayload = `{"Global Quote": {"01. symbol":"MSFT","07. latest trading day":"2021-05-01","05. price":"62.30","02. open":"61.00","03. high":"63.00","04. low":"60.50","09. change":"-0.20","10. change percent":"-0.32%"}}`

func newService(t *testing.T) (*pipeline.Service, *MockFetcher) {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := NewMockFetcher(ctrl)
	f.EXPECT().Name().Return("mock").AnyTimes()
	return pipeline.New(f, card.DefaultStyle()), f
}

func TestFetchAndCompile_EndToEnd(t *testing.T) {
	t.Parallel()

	// Arrange: the provider returns the reference payload
	svc, f := newService(t)
	f.EXPECT().FetchQuote(gomock.Any(), "MSFT").Return([]byte(msftPayload), nil).Times(1)

	// Act: run the pipeline with a lower-case, padded symbol
	doc, err := svc.FetchAndCompile(t.Context(), " msft ")
	require.NoError(t, err)

	// Assert: the card is the compiled form of the normalized quote
	want := card.Compile(quote.Details{
		Symbol: "MSFT", TradingDay: "2021-05-01",
		Price: 62.3, Open: 61, High: 63, Low: 60.5,
		Change: -0.2, ChangePercent: -0.32,
	}, card.DefaultStyle())
	require.Equal(t, want, doc)

	b, err := json.Marshal(doc)
	require.NoError(t, err)
	require.Contains(t, string(b), `"▼ -0.20 (-0.32% )"`)
	require.Contains(t, string(b), `"Attention"`)
	require.Contains(t, string(b), `"62.30"`)
}

func TestFetchAndCompile_MissingRecord(t *testing.T) {
	t.Parallel()

	svc, f := newService(t)
	f.EXPECT().FetchQuote(gomock.Any(), "MSFT").Return([]byte(`{}`), nil).Times(1)

	doc, err := svc.FetchAndCompile(t.Context(), "MSFT")
	require.ErrorIs(t, err, quote.ErrMalformedQuote)
	require.NotErrorIs(t, err, card.ErrRender)
	require.Equal(t, card.Document{}, doc)
}

func TestFetchAndCompile_NetworkError(t *testing.T) {
	t.Parallel()

	svc, f := newService(t)
	netErr := &provider.NetworkError{Op: "GET", URL: "http://example.test", StatusCode: 503, Err: errors.New("unavailable")}
	f.EXPECT().FetchQuote(gomock.Any(), "MSFT").Return(nil, netErr).Times(1)

	doc, err := svc.FetchAndCompile(t.Context(), "MSFT")
	require.ErrorIs(t, err, provider.ErrNetwork)
	var ne *provider.NetworkError
	require.True(t, errors.As(err, &ne))
	require.Same(t, netErr, ne)
	require.Equal(t, card.Document{}, doc)
}

func TestFetchAndCompile_WrapsOtherFetchFailures(t *testing.T) {
	t.Parallel()

	svc, f := newService(t)
	f.EXPECT().FetchQuote(gomock.Any(), "MSFT").Return(nil, context.Canceled).Times(1)

	_, err := svc.FetchAndCompile(t.Context(), "MSFT")
	require.ErrorIs(t, err, provider.ErrNetwork)
	require.ErrorIs(t, err, context.Canceled)
}

func TestFetchAndCompile_InvalidSymbol(t *testing.T) {
	t.Parallel()

	for _, sym := range []string{"", "   ", "MS FT", "MSFT&apikey=x", "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"} {
		svc, f := newService(t)
		f.EXPECT().FetchQuote(gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.FetchAndCompile(t.Context(), sym)
		require.ErrorIs(t, err, pipeline.ErrInvalidSymbol, sym)
	}
}

func TestNormalizeSymbol(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{"msft": "MSFT", " brk.b ": "BRK.B", "^gspc": "^GSPC", "eurusd=x": "EURUSD=X"} {
		got, err := pipeline.NormalizeSymbol(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestFetchAndCompile_ConcurrentIndependent(t *testing.T) {
	t.Parallel()

	svc, f := newService(t)
	symbols := []string{"MSFT", "AAPL", "IBM", "TSLA"}
	f.EXPECT().
		FetchQuote(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, sym string) ([]byte, error) {
			return []byte(fmt.Sprintf(`{"Global Quote": {"01. symbol":%q,"07. latest trading day":"2021-05-01","05. price":"1","02. open":"1","03. high":"1","04. low":"1","09. change":"0","10. change percent":"0%%"}}`, sym)), nil
		}).
		Times(len(symbols))

	docs := make([]card.Document, len(symbols))
	errs := make([]error, len(symbols))
	var wg sync.WaitGroup
	for i, sym := range symbols {
		wg.Add(1)
		go func() {
			defer wg.Done()
			docs[i], errs[i] = svc.FetchAndCompile(context.Background(), sym)
		}()
	}
	wg.Wait()

	for i, sym := range symbols {
		require.NoError(t, errs[i])
		header := docs[i].Body[0].(card.Container).Items[0].(card.TextBlock)
		require.Equal(t, sym, header.Text)
	}
}

func TestFetchAndCompile_StageSpanRecordsError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		body      []byte
		fetchErr  error
		failStage string
	}{
		{"fetch", nil, &provider.NetworkError{Op: "GET", URL: "http://example.test", Err: errors.New("refused")}, "fetch"},
		{"normalize", []byte(`{}`), nil, "normalize"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// Arrange: record spans from a private tracer provider
			rec := tracetest.NewSpanRecorder()
			tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
			svc, f := newService(t)
			svc.Tracer = tp.Tracer("test")
			f.EXPECT().FetchQuote(gomock.Any(), "MSFT").Return(tt.body, tt.fetchErr).Times(1)

			// Act
			_, err := svc.FetchAndCompile(t.Context(), "MSFT")
			require.Error(t, err)

			// Assert: the failing stage and the root span carry the error
			byName := map[string]sdktrace.ReadOnlySpan{}
			for _, sp := range rec.Ended() {
				byName[sp.Name()] = sp
			}
			stage, ok := byName[tt.failStage]
			require.True(t, ok, "stage span %q not ended", tt.failStage)
			require.Equal(t, codes.Error, stage.Status().Code)
			require.NotEmpty(t, stage.Events())
			require.Equal(t, codes.Error, byName["FetchAndCompile"].Status().Code)
			require.NotContains(t, byName, "compile")
		})
	}
}

func TestFetchAndCompile_LogsNormalizedQuote(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := logger.WithContext(t.Context(), l)

	svc, f := newService(t)
	f.EXPECT().FetchQuote(gomock.Any(), "MSFT").Return([]byte(msftPayload), nil).Times(1)

	_, err := svc.FetchAndCompile(ctx, "MSFT")
	require.NoError(t, err)
	require.Contains(t, buf.String(), `"msg":"quote normalized"`)
	require.Contains(t, buf.String(), `"trading_day":"2021-05-01"`)
	require.Contains(t, buf.String(), `"change_percent":-0.32`)
}
