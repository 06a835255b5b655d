package source

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LoadTickersFromFile reads a list of tickers from a file.
// Supported formats:
//   - .txt  : one ticker per line, '#' lines are treated as comments
//   - .json : JSON array of strings
func LoadTickersFromFile(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tickers file %s: %w", path, err)
	}

	var tickers []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(content, &tickers); err != nil {
			return nil, fmt.Errorf("parse JSON: %w", err)
		}
	case ".txt":
		tickers = parseTickersFromText(string(content))
	default:
		return nil, fmt.Errorf("unsupported ticker file extension %q (use .txt or .json)", filepath.Ext(path))
	}

	unique := uniqueTickers(tickers)
	for _, t := range unique {
		if err := CheckTicker(t); err != nil {
			return nil, fmt.Errorf("tickers file %s: ticker %q: %w", path, t, err)
		}
	}
	slog.Info("loaded tickers from file", "count", len(unique), "path", path)
	return unique, nil
}

// parseTickersFromText parses a plain text representation of tickers
// where each non-empty, non-comment line represents a ticker.
func parseTickersFromText(s string) []string {
	var tickers []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			tickers = append(tickers, line)
		}
	}
	return tickers
}

// uniqueTickers upper-cases, drops empties and duplicates, keeping first-seen order.
func uniqueTickers(tickers []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range tickers {
		t = strings.TrimSpace(strings.ToUpper(t))
		if t != "" && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// FilterInstruments keeps the instruments listed in allowed (case-insensitive),
// in the order of instruments. An empty allowed list keeps everything.
func FilterInstruments(instruments, allowed []string) []string {
	if len(allowed) == 0 {
		return instruments
	}
	keep := make(map[string]bool, len(allowed))
	for _, t := range allowed {
		keep[strings.ToUpper(strings.TrimSpace(t))] = true
	}
	var out []string
	for _, id := range instruments {
		if keep[strings.ToUpper(id)] {
			out = append(out, id)
		}
	}
	return out
}
