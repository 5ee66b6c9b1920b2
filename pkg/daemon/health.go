// Package daemon persists the running generator's health so other tools
// can inspect it without reading the status stream.
package daemon

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gitlab.com/tinyland/lab/pulsebar/pkg/collectors"
)

// CollectorHealth is the on-disk form of a collectors.CollectorStatus.
type CollectorHealth struct {
	Name        string        `json:"name"`
	Healthy     bool          `json:"healthy"`
	LastRun     time.Time     `json:"last_run"`
	LastError   string        `json:"last_error,omitempty"`
	RunCount    int64         `json:"run_count"`
	ErrorCount  int64         `json:"error_count"`
	LastLatency time.Duration `json:"last_latency_ns"`
}

// HealthStatus is a snapshot of the generator written to the health file.
type HealthStatus struct {
	PID        int               `json:"pid"`
	StartedAt  time.Time         `json:"started_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
	Ticks      int64             `json:"ticks"`
	Collectors []CollectorHealth `json:"collectors"`
}

// NewHealthStatus builds a snapshot from registry statuses.
func NewHealthStatus(started time.Time, ticks int64, statuses []collectors.CollectorStatus) *HealthStatus {
	hs := &HealthStatus{
		PID:        os.Getpid(),
		StartedAt:  started,
		UpdatedAt:  time.Now(),
		Ticks:      ticks,
		Collectors: make([]CollectorHealth, 0, len(statuses)),
	}
	for _, s := range statuses {
		ch := CollectorHealth{
			Name:        s.Name,
			Healthy:     s.Healthy,
			LastRun:     s.LastRun,
			RunCount:    s.RunCount,
			ErrorCount:  s.ErrorCount,
			LastLatency: s.LastLatency,
		}
		if s.LastError != nil {
			ch.LastError = s.LastError.Error()
		}
		hs.Collectors = append(hs.Collectors, ch)
	}
	return hs
}

// WriteHealthFile writes the health status as indented JSON to path.
// The write is atomic: content goes to a temporary file first, then is
// renamed into place to prevent partial reads.
func WriteHealthFile(path string, status *HealthStatus) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create health directory: %w", err)
	}

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal health status: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp health file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename health file: %w", err)
	}

	return nil
}

// ReadHealthFile reads and parses the health status JSON from path.
func ReadHealthFile(path string) (*HealthStatus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read health file: %w", err)
	}

	var status HealthStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("unmarshal health file: %w", err)
	}

	return &status, nil
}
