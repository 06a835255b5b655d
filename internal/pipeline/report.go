package pipeline

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	successReportName = ".lastrun.success.json"
	failedReportName  = ".lastrun.failed.json"
)

type successReport struct {
	RunID   string   `json:"run_id"`
	Tickers []string `json:"tickers"`
}

type failedReport struct {
	RunID  string    `json:"run_id"`
	Failed []Failure `json:"failed"`
}

// writeRunReport replaces both report files so a clean run clears earlier failures.
func writeRunReport(dir string, sum Summary) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	ok := successReport{RunID: sum.RunID, Tickers: sum.Succeeded}
	if ok.Tickers == nil {
		ok.Tickers = []string{}
	}
	p := filepath.Join(dir, successReportName)
	if err := writeJSON(p, ok); err != nil {
		return err
	}
	slog.Info("report wrote success", "path", p, "tickers", len(ok.Tickers))

	bad := failedReport{RunID: sum.RunID, Failed: sum.Failures}
	if bad.Failed == nil {
		bad.Failed = []Failure{}
	}
	p = filepath.Join(dir, failedReportName)
	if err := writeJSON(p, bad); err != nil {
		return err
	}
	if len(bad.Failed) > 0 {
		slog.Info("report wrote failed", "path", p, "count", len(bad.Failed))
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func joinFailedReasons(failedList []Failure) string {
	if len(failedList) == 0 {
		return ""
	}
	var b strings.Builder
	for i, f := range failedList {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(f.Ticker)
		b.WriteString(": ")
		b.WriteString(f.Reason)
		if i >= 4 && len(failedList) > 6 {
			b.WriteString(fmt.Sprintf(" (+%d more)", len(failedList)-5))
			break
		}
	}
	return b.String()
}
