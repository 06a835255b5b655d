package pipeline

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
)

const manifestName = ".manifest.json"

// ManifestEntry records the latest written output of one instrument.
type ManifestEntry struct {
	RunID    string `json:"run_id"`
	MonthEnd string `json:"month_end"`
	Rows     int    `json:"rows"`
	File     string `json:"file"`
}

// ManifestUpdate is sent when an instrument's file has been written.
type ManifestUpdate struct {
	Ticker string
	Entry  ManifestEntry
}

// ManifestPath returns {dir}/.manifest.json.
func ManifestPath(dir string) string {
	return filepath.Join(dir, manifestName)
}

// LoadManifest reads the manifest at path; a missing or unreadable file is empty.
func LoadManifest(path string) map[string]ManifestEntry {
	data, err := os.ReadFile(path)
	if err != nil {
		return make(map[string]ManifestEntry)
	}
	var m map[string]ManifestEntry
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return make(map[string]ManifestEntry)
	}
	return m
}

// RunManifestWriter receives updates and persists the manifest after each one (run as goroutine).
func RunManifestWriter(path string, updates <-chan ManifestUpdate) {
	m := LoadManifest(path)
	for u := range updates {
		m[u.Ticker] = u.Entry
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			slog.Warn("manifest marshal error", "error", err)
			continue
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			slog.Warn("manifest write error", "error", err)
		}
	}
}
