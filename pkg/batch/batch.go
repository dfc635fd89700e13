// Package batch parses many credit reports concurrently with a per-document
// deadline.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/coolbeans/creditai/pkg/metrics"
	"github.com/coolbeans/creditai/pkg/report"
	"golang.org/x/sync/errgroup"
)

// ErrNoDocuments is returned by Run when given nothing to parse.
var ErrNoDocuments = errors.New("no documents to parse")

// Defaults used when a Runner leaves the field zero.
const (
	DefaultWorkers         = 4
	DefaultDocumentTimeout = 5 * time.Second
)

// Status is the outcome of one document.
type Status string

const (
	StatusOK       Status = "ok"
	StatusTimeout  Status = "timeout"
	StatusCanceled Status = "canceled"
)

// Parser is the part of report.Parser the runner needs.
type Parser interface {
	ParseText(text string) *report.ParsedCreditReport
}

// Document is one report to parse.
type Document struct {
	Name string
	Text string
}

// Result is the outcome of parsing one Document. Report is nil unless Status
// is StatusOK.
type Result struct {
	Name     string                     `json:"name"`
	Status   Status                     `json:"status"`
	Report   *report.ParsedCreditReport `json:"report,omitempty"`
	Err      error                      `json:"-"`
	Duration time.Duration              `json:"duration"`
}

// Runner parses documents in parallel. The zero value of Workers and
// DocumentTimeout selects the defaults.
type Runner struct {
	Parser          Parser
	Workers         int
	DocumentTimeout time.Duration
	Logger          *slog.Logger
	Metrics         *metrics.Metrics
}

// Run parses docs with at most Workers documents in flight. Results keep the
// input order. A document that exceeds DocumentTimeout gets StatusTimeout and
// context.DeadlineExceeded without failing the batch. When ctx is canceled the
// remaining documents get StatusCanceled and Run returns ctx.Err() alongside
// the results.
func (r *Runner) Run(ctx context.Context, docs []Document) ([]Result, error) {
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}
	if r.Parser == nil {
		return nil, errors.New("batch runner has no parser")
	}

	workers := r.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	start := time.Now()
	results := make([]Result, len(docs))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			results[i] = Result{Name: doc.Name, Status: StatusCanceled, Err: err}
			r.Metrics.IncrementBatchDocument(string(StatusCanceled))
			continue
		}
		g.Go(func() error {
			results[i] = r.parseOne(ctx, doc)
			r.Metrics.IncrementBatchDocument(string(results[i].Status))
			if results[i].Err != nil {
				logger.Warn("document not parsed", "document", doc.Name, "status", results[i].Status, "error", results[i].Err)
			}
			return nil
		})
	}
	_ = g.Wait()

	summary := Summarize(results)
	logger.Info("batch complete",
		"documents", summary.Total,
		"ok", summary.OK,
		"timeout", summary.Timeout,
		"canceled", summary.Canceled,
		"duration", time.Since(start),
	)

	return results, ctx.Err()
}

// parseOne runs the parser under the document deadline. The parser is not
// context aware, so an abandoned parse finishes in the background and its
// result is dropped.
func (r *Runner) parseOne(ctx context.Context, doc Document) Result {
	timeout := r.DocumentTimeout
	if timeout <= 0 {
		timeout = DefaultDocumentTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	done := make(chan *report.ParsedCreditReport, 1)
	go func() {
		done <- r.Parser.ParseText(doc.Text)
	}()

	select {
	case rep := <-done:
		return Result{Name: doc.Name, Status: StatusOK, Report: rep, Duration: time.Since(start)}
	case <-ctx.Done():
		err := ctx.Err()
		status := StatusCanceled
		if errors.Is(err, context.DeadlineExceeded) {
			status = StatusTimeout
		}
		return Result{Name: doc.Name, Status: status, Err: err, Duration: time.Since(start)}
	}
}

// Summary counts batch outcomes.
type Summary struct {
	Total    int                   `json:"total"`
	OK       int                   `json:"ok"`
	Timeout  int                   `json:"timeout"`
	Canceled int                   `json:"canceled"`
	Formats  map[report.Format]int `json:"formats"`
}

// Summarize counts results by status and counts successful reports by
// detected format.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results), Formats: make(map[report.Format]int)}
	for _, res := range results {
		switch res.Status {
		case StatusOK:
			s.OK++
			if res.Report != nil {
				s.Formats[res.Report.Format]++
			}
		case StatusTimeout:
			s.Timeout++
		case StatusCanceled:
			s.Canceled++
		}
	}
	return s
}

// LoadDirectory reads every *.txt file in dir, in name order, as a Document
// named after the file.
func LoadDirectory(dir string) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading batch directory: %w", err)
	}

	var docs []Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".txt") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		docs = append(docs, Document{Name: entry.Name(), Text: string(data)})
	}
	return docs, nil
}
