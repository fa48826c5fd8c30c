package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	"stockcard/internal/card"
	"stockcard/internal/config"
	"stockcard/internal/httpx"
	"stockcard/internal/logger"
	"stockcard/internal/pipeline"
	"stockcard/internal/provider"
	"stockcard/internal/provider/alphavantage"
	"stockcard/internal/provider/ratelimit"
)

type output struct {
	Card       card.Document   `json:"card"`
	HostConfig card.HostConfig `json:"hostConfig"`
}

type options struct {
	symbolsCSV string
	outDir     string
	timeout    int
	configPath string
}

// parseOptions reads flags from args. Env-backed defaults are read at call time,
// so .env must already be loaded.
func parseOptions(fs *flag.FlagSet, args []string) (options, error) {
	var o options
	fs.StringVar(&o.symbolsCSV, "symbols", os.Getenv("SYMBOLS"), "comma-separated ticker symbols (default: config default_symbol)")
	fs.StringVar(&o.outDir, "out", "", "write <SYMBOL>.json files into this directory instead of stdout")
	fs.IntVar(&o.timeout, "timeout", 0, "overall timeout seconds (default: request timeout per symbol)")
	fs.StringVar(&o.configPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json (optional)")
	err := fs.Parse(args)
	return o, err
}

func loadDotenv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: .env: %v", err)
	}
}

func main() {
	loadDotenv()
	opts, err := parseOptions(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("flags: %v", err)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	logger.InitWriter(os.Stderr, cfg.LogLevel)

	symbols := splitCSV(opts.symbolsCSV)
	if len(symbols) == 0 {
		symbols = []string{cfg.DefaultSymbol}
	}

	av, err := alphavantage.New(cfg.AlphaVantage.APIKey,
		alphavantage.WithBaseURL(cfg.AlphaVantage.Endpoint),
		alphavantage.WithHTTPClient(httpx.New(cfg.RequestTimeout())),
	)
	if err != nil {
		log.Fatalf("alphavantage: %v", err)
	}
	var f provider.Fetcher = av
	if l := ratelimit.NewLimiter(cfg.AlphaVantage.MaxRequestsPerMinute, cfg.AlphaVantage.Burst, cfg.MinRequestInterval()); l != nil {
		f = &ratelimit.Limited{F: f, L: l}
	}
	svc := pipeline.New(f, cfg.Card)

	total := time.Duration(opts.timeout) * time.Second
	if total <= 0 {
		// symbols queue behind the limiter, so budget one request timeout each
		total = cfg.RequestTimeout() * time.Duration(len(symbols))
	}
	ctx, cancel := context.WithTimeout(context.Background(), total)
	defer cancel()

	results := make([]*output, len(symbols))
	var g errgroup.Group
	for i, sym := range symbols {
		g.Go(func() error {
			doc, err := svc.FetchAndCompile(ctx, sym)
			if err != nil {
				logger.L.Error("card failed", "symbol", sym, "error", err)
				return fmt.Errorf("%s: %w", sym, err)
			}
			results[i] = &output{Card: doc, HostConfig: card.HostConfigFor(cfg.Card)}
			return nil
		})
	}
	failed := g.Wait()

	for i, sym := range symbols {
		if results[i] == nil {
			continue
		}
		if err := emit(opts.outDir, sym, results[i]); err != nil {
			log.Fatalf("write %s: %v", sym, err)
		}
	}
	if failed != nil {
		os.Exit(1)
	}
}

func emit(dir, symbol string, out *output) error {
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	if dir == "" {
		fmt.Println(string(b))
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	name := strings.ToUpper(strings.TrimSpace(symbol)) + ".json"
	return os.WriteFile(filepath.Join(dir, name), append(b, '\n'), 0o644)
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
