// Package report wraps run results with run metadata and persists them to
// the local filesystem or S3.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"breachsim/internal/batch"
	"breachsim/internal/domain"
)

// Report is the persisted envelope of a single run
type Report struct {
	RunID      string        `json:"run_id"`
	Scenario   string        `json:"scenario"`
	Seed       int64         `json:"seed"`
	Ticks      int           `json:"ticks"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Result     domain.Result `json:"result"`
}

// BatchReport is the persisted envelope of a batch
type BatchReport struct {
	BatchID    string              `json:"batch_id"`
	Scenario   string              `json:"scenario"`
	Workers    int                 `json:"workers"`
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt time.Time           `json:"finished_at"`
	Summary    domain.BatchSummary `json:"summary"`
	Runs       []batch.Run         `json:"runs,omitempty"`
}

// Document is anything a Sink can store
type Document interface {
	Key() string
}

// Sink stores serialized documents and returns where they ended up
type Sink interface {
	Put(ctx context.Context, key string, data []byte) (string, error)
}

// NewReport wraps a finished run in a fresh envelope
func NewReport(scenario string, seed int64, ticks int, startedAt, finishedAt time.Time, result domain.Result) Report {
	return Report{
		RunID:      uuid.NewString(),
		Scenario:   scenario,
		Seed:       seed,
		Ticks:      ticks,
		StartedAt:  startedAt.UTC(),
		FinishedAt: finishedAt.UTC(),
		Result:     result,
	}
}

// NewBatchReport wraps a finished batch in a fresh envelope
func NewBatchReport(b *batch.Batch, workers int, startedAt, finishedAt time.Time) BatchReport {
	return BatchReport{
		BatchID:    uuid.NewString(),
		Scenario:   b.Summary.Scenario,
		Workers:    workers,
		StartedAt:  startedAt.UTC(),
		FinishedAt: finishedAt.UTC(),
		Summary:    b.Summary,
		Runs:       b.Runs,
	}
}

// Key names a run report file: <scenario>-<run id>.json
func (r Report) Key() string {
	return fmt.Sprintf("%s-%s.json", slug(r.Scenario), r.RunID)
}

// Key names a batch report file: <scenario>-batch-<batch id>.json
func (r BatchReport) Key() string {
	return fmt.Sprintf("%s-batch-%s.json", slug(r.Scenario), r.BatchID)
}

// Save serializes doc as indented JSON and hands it to sink
func Save(ctx context.Context, sink Sink, doc Document) (string, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return sink.Put(ctx, doc.Key(), data)
}

var unsafeKeyChars = regexp.MustCompile(`[^a-z0-9_-]+`)

func slug(name string) string {
	s := unsafeKeyChars.ReplaceAllString(strings.ToLower(name), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "scenario"
	}
	return s
}
