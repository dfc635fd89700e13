package report

import (
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/coolbeans/creditai/pkg/creditor"
	"github.com/coolbeans/creditai/pkg/metrics"
	"github.com/coolbeans/creditai/pkg/pattern"
)

// CreditorResolver maps a free-text creditor label to a canonical creditor.
type CreditorResolver interface {
	StandardizeCreditorName(raw string) creditor.Match
}

// FormatDetector identifies the format of a report.
type FormatDetector interface {
	DetectFormat(content string) pattern.Detection
}

// Parser extracts structured data from credit report text. It holds no
// per-call state and is safe for concurrent use when its resolver is.
type Parser struct {
	resolver CreditorResolver
	detector FormatDetector
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger for parse diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics records parse metrics on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Parser) {
		p.metrics = m
	}
}

// NewParser creates a Parser. A nil detector reports every document as unknown;
// a nil resolver leaves CreditorMatch fields empty.
func NewParser(resolver CreditorResolver, detector FormatDetector, opts ...Option) *Parser {
	p := &Parser{
		resolver: resolver,
		detector: detector,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseText parses one report. It never panics and never fails; problems are
// reported through Metadata.ParsingErrors.
func (p *Parser) ParseText(text string) *ParsedCreditReport {
	start := time.Now()
	report := newReport()

	p.guard(report, "format_detection", func() {
		if p.detector == nil {
			return
		}
		detection := p.detector.DetectFormat(text)
		report.Format = Format(detection.FormatID)
		report.Metadata.DetectedFormat = report.Format
		report.Metadata.DetectionMethod = detection.Method
	})

	var sections Sections
	p.guard(report, "sectioning", func() {
		sections = IdentifySections(text)
		report.Metadata.SectionsFound = sections.Found
	})

	p.section(report, sections, SectionPersonalInfo, func(body string) {
		report.PersonalInfo = extractPersonalInfo(body)
	})
	p.section(report, sections, SectionCreditScores, func(body string) {
		report.CreditScores = append(report.CreditScores, extractCreditScores(body)...)
	})
	p.section(report, sections, SectionAccounts, func(body string) {
		for _, block := range splitAccountBlocks(body) {
			if acct, ok := p.parseAccount(block); ok {
				report.Accounts = append(report.Accounts, acct)
			}
		}
	})
	p.section(report, sections, SectionNegativeItems, func(body string) {
		for _, block := range paragraphs(stripHeaders(body)) {
			if item, ok := p.parseNegativeItem(block); ok {
				report.NegativeItems = append(report.NegativeItems, item)
			}
		}
	})
	p.section(report, sections, SectionInquiries, func(body string) {
		p.extractInquiries(body, func(inq Inquiry) {
			report.Inquiries = append(report.Inquiries, inq)
		})
	})
	p.section(report, sections, SectionPublicRecords, func(body string) {
		report.PublicRecords = append(report.PublicRecords, extractPublicRecords(body)...)
	})

	report.Confidence = aggregateConfidence(report)
	report.Metadata.QualityScore = qualityScore(report, utf8.RuneCountInString(text))

	elapsed := time.Since(start)
	report.Metadata.ProcessingTimeMs = float64(elapsed.Microseconds()) / 1000

	p.metrics.ObserveParse(string(report.Format), elapsed)
	p.logger.Debug("credit report parsed",
		"format", report.Format,
		"sections", len(report.Metadata.SectionsFound),
		"accounts", len(report.Accounts),
		"errors", len(report.Metadata.ParsingErrors),
		"duration_ms", report.Metadata.ProcessingTimeMs,
	)

	return report
}

// section runs fn on the text of a located section under a recover guard.
func (p *Parser) section(report *ParsedCreditReport, sections Sections, section Section, fn func(body string)) {
	body, ok := sections.Text(section)
	if !ok {
		return
	}
	p.guard(report, string(section), func() { fn(body) })
}

// guard recovers a panic in fn and records it as "<stage>: <message>".
// Records appended before the panic are kept.
func (p *Parser) guard(report *ParsedCreditReport, stage string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			report.Metadata.ParsingErrors = append(report.Metadata.ParsingErrors, fmt.Sprintf("%s: %v", stage, r))
			p.logger.Warn("section extraction failed", "section", stage, "error", r)
			p.metrics.IncrementSectionError(stage)
		}
	}()
	fn()
}

// resolve standardizes a creditor name and records the match type.
func (p *Parser) resolve(name string) *creditor.Match {
	if p.resolver == nil {
		return nil
	}
	m := p.resolver.StandardizeCreditorName(name)
	label := string(m.MatchType)
	if m.IsUnmatched() {
		label = "none"
	}
	p.metrics.IncrementCreditorMatch(label)
	return &m
}
