// Package report renders the outcome of a reconciliation run for people
// (text) or for other tools (json, yaml).
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"fjacquet/card-recon/internal/currencyutils"
	"fjacquet/card-recon/internal/dateutils"
	"fjacquet/card-recon/internal/logging"
	"fjacquet/card-recon/internal/models"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Supported report formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

const rule = "---------------------------------"

// Report is one rendered reconciliation run.
type Report struct {
	RunID       string                 `json:"run_id" yaml:"run_id"`
	GeneratedAt time.Time              `json:"generated_at" yaml:"generated_at"`
	Source      string                 `json:"source,omitempty" yaml:"source,omitempty"`
	Ingestion   *models.NormalizeStats `json:"ingestion,omitempty" yaml:"ingestion,omitempty"`
	Result      models.MatchResult     `json:"result" yaml:"result"`
}

// NewReport stamps result with a fresh run ID and the current time.
// stats may be nil when the records did not come from an ingestion step.
func NewReport(source string, result models.MatchResult, stats *models.NormalizeStats) *Report {
	return &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Source:      source,
		Ingestion:   stats,
		Result:      result,
	}
}

// ReportGenerator renders reports in the supported formats.
type ReportGenerator struct {
	logger    logging.Logger
	formatter *currencyutils.Formatter
}

// NewReportGenerator creates a generator that prints amounts with formatter.
func NewReportGenerator(logger logging.Logger, formatter *currencyutils.Formatter) *ReportGenerator {
	return &ReportGenerator{
		logger:    logger.WithField("component", "ReportGenerator"),
		formatter: formatter,
	}
}

// GenerateReport renders report as text, json or yaml.
func (g *ReportGenerator) GenerateReport(report *Report, format string) ([]byte, error) {
	switch format {
	case FormatText, "":
		return g.generateTextReport(report)
	case FormatJSON:
		return g.generateJSONReport(report)
	case FormatYAML:
		return g.generateYAMLReport(report)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

// WriteReport renders report and writes it to w.
func (g *ReportGenerator) WriteReport(w io.Writer, report *Report, format string) error {
	out, err := g.GenerateReport(report, format)
	if err != nil {
		return err
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	g.logger.Debug("Report written",
		logging.F(logging.FieldRunID, report.RunID),
		logging.F(logging.FieldFormat, format))
	return nil
}

func (g *ReportGenerator) generateJSONReport(report *Report) ([]byte, error) {
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal JSON report")
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return append(out, '\n'), nil
}

func (g *ReportGenerator) generateYAMLReport(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		g.logger.WithError(err).Error("Failed to marshal YAML report")
		return nil, fmt.Errorf("failed to marshal YAML report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal YAML report: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *ReportGenerator) generateTextReport(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	r := report.Result

	fmt.Fprintln(&buf, "--- FINAL ANALYSIS REPORT ---")
	fmt.Fprintf(&buf, "Run ID: %s\n", report.RunID)
	if report.Source != "" {
		fmt.Fprintf(&buf, "Source: %s\n", report.Source)
	}
	if s := report.Ingestion; s != nil {
		fmt.Fprintf(&buf, "Rows kept: %d of %d (dropped without date: %d, amounts set to 0: %d)\n",
			s.RowsKept, s.RowsRead, s.DroppedNoDate, s.CoercedAmounts)
	}
	fmt.Fprintf(&buf, "Payments: %d  Purchases (1 install): %d  Matched: %d  Ignored: %d\n\n",
		r.PaymentCount, r.PurchaseCount, r.MatchedCount, r.ExcludedCount)

	if r.AllPaid() {
		fmt.Fprintln(&buf, "Congratulations! All single-installment purchases have an associated payment.")
	} else {
		fmt.Fprintln(&buf, "UNPAID PURCHASES (NO 1-TO-1 MATCH):")
		tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(models.CleanHeader, "\t"))
		for _, p := range r.UnpaidPurchases {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				dateutils.FormatDayFirst(p.Date), p.CardType, p.Description, p.City,
				p.InstallmentPlan, p.InstallmentPlanAlt, g.formatter.Format(p.Amount))
		}
		if err := tw.Flush(); err != nil {
			return nil, fmt.Errorf("failed to render unpaid table: %w", err)
		}
	}

	fmt.Fprintln(&buf, rule)
	fmt.Fprintf(&buf, "Total unpaid (no match):     %s\n", g.formatter.Format(r.TotalUnpaid))
	fmt.Fprintln(&buf, rule)
	fmt.Fprintf(&buf, "Total payments (1 install):  %s\n", g.formatter.Format(r.TotalPayments))
	fmt.Fprintf(&buf, "Total purchases (1 install): %s\n", g.formatter.Format(r.TotalPurchases))
	fmt.Fprintf(&buf, "Difference (Pay - Shop):     %s\n", g.formatter.Format(r.Difference))
	fmt.Fprintln(&buf, "--- Analysis Complete ---")

	return buf.Bytes(), nil
}
