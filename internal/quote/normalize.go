package quote

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Alpha Vantage GLOBAL_QUOTE keys.
const (
	RecordKey = "Global Quote"

	KeySymbol        = "01. symbol"
	KeyOpen          = "02. open"
	KeyHigh          = "03. high"
	KeyLow           = "04. low"
	KeyPrice         = "05. price"
	KeyTradingDay    = "07. latest trading day"
	KeyChange        = "09. change"
	KeyChangePercent = "10. change percent"
)

// notice keys are sent instead of a quote when the request is throttled or rejected.
var noticeKeys = []string{"Error Message", "Information", "Note"}

// decimalText is plain decimal notation with '.' as the separator. ParseFloat alone
// would also take hex floats, underscores and Inf/NaN spellings.
var decimalText = regexp.MustCompile(`^[+-]?([0-9]+\.?[0-9]*|\.[0-9]+)([eE][+-]?[0-9]+)?$`)

// Parse decodes a raw provider response body and normalizes it.
func Parse(body []byte) (Details, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Details{}, malformed("", "invalid JSON", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Details{}, malformed("", "trailing data", nil)
	}
	return Normalize(raw)
}

// Normalize converts a decoded provider payload into Details.
// Every failure is a *MalformedError; no partial value is returned.
func Normalize(raw any) (Details, error) {
	root, ok := raw.(map[string]any)
	if !ok {
		return Details{}, malformed("", fmt.Sprintf("expected JSON object, got %s", kindOf(raw)), nil)
	}

	rec, ok := root[RecordKey].(map[string]any)
	if !ok {
		reason := fmt.Sprintf("missing %q record", RecordKey)
		for _, k := range noticeKeys {
			if msg, ok := root[k].(string); ok && strings.TrimSpace(msg) != "" {
				reason += ": provider said: " + strings.TrimSpace(msg)
				break
			}
		}
		return Details{}, malformed("", reason, nil)
	}

	var (
		d   Details
		err error
	)
	if d.Symbol, err = text(rec, KeySymbol); err != nil {
		return Details{}, err
	}
	if d.TradingDay, err = text(rec, KeyTradingDay); err != nil {
		return Details{}, err
	}

	nums := []struct {
		key string
		dst *float64
	}{
		{KeyPrice, &d.Price},
		{KeyOpen, &d.Open},
		{KeyHigh, &d.High},
		{KeyLow, &d.Low},
		{KeyChange, &d.Change},
	}
	for _, n := range nums {
		if *n.dst, err = number(rec, n.key, false); err != nil {
			return Details{}, err
		}
	}
	if d.ChangePercent, err = number(rec, KeyChangePercent, true); err != nil {
		return Details{}, err
	}
	return d, nil
}

func text(rec map[string]any, key string) (string, error) {
	v, ok := rec[key]
	if !ok {
		return "", malformed(key, "missing", nil)
	}
	s, ok := v.(string)
	if !ok {
		return "", malformed(key, fmt.Sprintf("expected string, got %s", kindOf(v)), nil)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", malformed(key, "empty", nil)
	}
	return s, nil
}

// number parses a provider numeric field. Values arrive as strings, but plain JSON
// numbers are accepted too. When percent is set a single trailing '%' is dropped.
func number(rec map[string]any, key string, percent bool) (float64, error) {
	v, ok := rec[key]
	if !ok {
		return 0, malformed(key, "missing", nil)
	}

	var s string
	switch t := v.(type) {
	case string:
		s = t
	case json.Number:
		s = t.String()
	case float64:
		s = strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return 0, malformed(key, fmt.Sprintf("expected number, got %s", kindOf(v)), nil)
	}

	s = strings.TrimSpace(s)
	if percent {
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	}
	if s == "" {
		return 0, malformed(key, "empty", nil)
	}

	if !decimalText.MatchString(s) {
		return 0, malformed(key, fmt.Sprintf("not a number: %q", s), nil)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, malformed(key, fmt.Sprintf("not a number: %q", s), nil)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, malformed(key, fmt.Sprintf("not finite: %q", s), nil)
	}
	return f, nil
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "bool"
	case json.Number, float64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
