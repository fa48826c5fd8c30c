package main

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"stockcard/internal/card"
	"stockcard/internal/logger"
	"stockcard/internal/pipeline"
	"stockcard/internal/provider"
	"stockcard/internal/quote"
)

type app struct {
	svc           *pipeline.Service
	style         card.Style
	defaultSymbol string
	timeout       time.Duration
}

type cardResponse struct {
	Card       card.Document   `json:"card"`
	HostConfig card.HostConfig `json:"hostConfig"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (a *app) routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/card", a.handleCard).Methods(http.MethodGet)
	api.HandleFunc("/card/{symbol}", a.handleCard).Methods(http.MethodGet)
	api.HandleFunc("/hostconfig", a.handleHostConfig).Methods(http.MethodGet)

	r.Use(withRequestID, recoverPanic)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
	})
	return c.Handler(withGzip(r))
}

func (a *app) handleCard(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	if symbol == "" {
		symbol = r.URL.Query().Get("symbol")
	}
	if strings.TrimSpace(symbol) == "" {
		symbol = a.defaultSymbol
	}

	ctx, cancel := context.WithTimeout(r.Context(), a.timeout)
	defer cancel()

	doc, err := a.svc.FetchAndCompile(ctx, symbol)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cardResponse{Card: doc, HostConfig: card.HostConfigFor(a.style)})
}

func (a *app) handleHostConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, card.HostConfigFor(a.style))
}

// writeError maps pipeline failures onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status, kind := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, pipeline.ErrInvalidSymbol):
		status, kind = http.StatusBadRequest, "invalid_symbol"
	case errors.Is(err, context.DeadlineExceeded):
		status, kind = http.StatusGatewayTimeout, "network"
	case errors.Is(err, provider.ErrNetwork):
		status, kind = http.StatusBadGateway, "network"
	case errors.Is(err, quote.ErrMalformedQuote):
		status, kind = http.StatusBadGateway, "malformed_quote"
	case errors.Is(err, card.ErrRender):
		status, kind = http.StatusInternalServerError, "render"
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// withRequestID tags the request context logger with an X-Request-ID, generating one if absent.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		l := logger.FromContext(r.Context()).With("request_id", id)
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context(), l)))
	})
}

// withGzip compresses response when client supports gzip.
func withGzip(next http.Handler) http.Handler {
	var gzPool = sync.Pool{New: func() any {
		w, _ := gzip.NewWriterLevel(io.Discard, gzip.BestSpeed)
		return w
	}}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}
		gz := gzPool.Get().(*gzip.Writer)
		gz.Reset(w)
		defer func() {
			_ = gz.Close()
			gz.Reset(io.Discard)
			gzPool.Put(gz)
		}()
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Add("Vary", "Accept-Encoding")
		next.ServeHTTP(gzipResponseWriter{ResponseWriter: w, Writer: gz}, r)
	})
}

type gzipResponseWriter struct {
	http.ResponseWriter
	Writer io.Writer
}

func (g gzipResponseWriter) Write(b []byte) (int, error) {
	return g.Writer.Write(b)
}

// recoverPanic protects handlers from panics.
func recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.FromContext(r.Context()).Error("handler panic", "panic", rec, "path", r.URL.Path)
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
