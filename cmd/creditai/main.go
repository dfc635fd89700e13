package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coolbeans/creditai/pkg/batch"
	"github.com/coolbeans/creditai/pkg/creditor"
	"github.com/coolbeans/creditai/pkg/pattern"
	"github.com/coolbeans/creditai/pkg/server"
	"github.com/coolbeans/creditai/pkg/violation"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "creditai",
		Short: "Credit report parser and creditor resolver",
		Long: `creditai turns the text of a consumer credit report into structured data.

It detects the bureau or vendor format, splits the report into sections,
extracts personal information, scores, accounts, negative items, inquiries
and public records, and resolves creditor names to canonical identities.

Configuration is read from CREDITAI_* environment variables; flags override them.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("formats-dir", "", "Directory of format pattern YAML files overriding the built-in formats")
	rootCmd.PersistentFlags().String("creditors-file", "", "YAML file of additional creditors")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json")

	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(detectCmd())
	rootCmd.AddCommand(matchCmd())
	rootCmd.AddCommand(creditorsCmd())
	rootCmd.AddCommand(batchCmd())
	rootCmd.AddCommand(reviewCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse a credit report into JSON",
		Long: `Parse the text of a credit report and print the structured result as JSON.

Examples:
  creditai parse --file report.txt
  creditai parse --file - --pretty < report.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			pretty, _ := cmd.Flags().GetBool("pretty")

			text, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			app, err := setup(cmd)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), app.parser.ParseText(text), pretty)
		},
	}
	cmd.Flags().StringP("file", "f", "", "Report text file, or - for stdin (required)")
	cmd.Flags().Bool("pretty", false, "Indent JSON output")
	return cmd
}

func detectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Detect the format of a credit report",
		Long: `Detect which bureau or vendor produced a credit report.

Examples:
  creditai detect --file report.txt
  creditai detect --file report.txt --explain
  creditai detect --file report.txt --format equifax`,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			explain, _ := cmd.Flags().GetBool("explain")
			formatID, _ := cmd.Flags().GetString("format")

			text, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			app, err := setup(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case formatID != "":
				fmt.Fprint(out, app.detector.ExplainMatch(text, formatID))
			case explain:
				_, debug := app.detector.DetectWithDebug(text)
				fmt.Fprint(out, debug)
			default:
				d := app.detector.DetectFormat(text)
				fmt.Fprintf(out, "Format: %s\nMethod: %s\n", d.FormatID, d.Method)
				if d.Match != nil {
					fmt.Fprintf(out, "Evidence: %s\n", d.Match)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringP("file", "f", "", "Report text file, or - for stdin (required)")
	cmd.Flags().Bool("explain", false, "Show the evaluation of every registered format")
	cmd.Flags().String("format", "", "Explain the evaluation of one format ID")
	return cmd
}

func matchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match NAME",
		Short: "Resolve a creditor name",
		Long: `Standardize a creditor name and list the closest registered creditors.

Examples:
  creditai match "CAP ONE BANK USA"
  creditai match "synchrony" --limit 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			app, err := setup(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			m := app.resolver.StandardizeCreditorName(args[0])
			if m.IsUnmatched() {
				fmt.Fprintf(out, "No match for %q\n", args[0])
			} else {
				fmt.Fprintf(out, "Best match: %s (%s, %s match, confidence %.2f)\n",
					m.Creditor.Name, m.Creditor.Type, m.MatchType, m.Confidence)
			}

			candidates := app.resolver.FindPotentialMatches(args[0], limit)
			if len(candidates) == 0 {
				return nil
			}
			fmt.Fprintln(out, "\nCandidates:")
			for _, c := range candidates {
				fmt.Fprintf(out, "  %-35s %-18s %-8s %.2f\n", c.Creditor.Name, c.Creditor.Type, c.MatchType, c.Confidence)
			}
			return nil
		},
	}
	cmd.Flags().Int("limit", creditor.DefaultMatchLimit, "Maximum number of candidates")
	return cmd
}

func creditorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "creditors",
		Short: "List registered creditors",
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, _ := cmd.Flags().GetString("type")
			app, err := setup(cmd)
			if err != nil {
				return err
			}

			types := creditor.AllTypes
			if typ != "" {
				t := creditor.Type(strings.ToLower(typ))
				if !t.Valid() {
					return fmt.Errorf("unknown creditor type %q", typ)
				}
				types = []creditor.Type{t}
			}

			out := cmd.OutOrStdout()
			total := 0
			for _, t := range types {
				for _, id := range app.resolver.CreditorsByType(t) {
					fmt.Fprintf(out, "%-35s %-18s %s\n", id.Name, id.Type, strings.Join(id.Aliases, ", "))
					total++
				}
			}
			fmt.Fprintf(out, "\n%d creditors\n", total)
			return nil
		},
	}
	cmd.Flags().String("type", "", "Only list creditors of this type")
	return cmd
}

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Parse every .txt report in a directory",
		Long: `Parse every .txt report in a directory in parallel.

Each document runs under its own deadline; a slow document is reported as a
timeout and does not stop the batch.

Examples:
  creditai batch --dir reports/
  creditai batch --dir reports/ --workers 8 --timeout 2s --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			asJSON, _ := cmd.Flags().GetBool("json")
			if dir == "" {
				return fmt.Errorf("--dir flag is required")
			}

			app, err := setup(cmd)
			if err != nil {
				return err
			}
			workers := app.cfg.Batch.Workers
			if cmd.Flags().Changed("workers") {
				workers, _ = cmd.Flags().GetInt("workers")
			}
			timeout := app.cfg.Batch.DocumentTimeout
			if cmd.Flags().Changed("timeout") {
				timeout, _ = cmd.Flags().GetDuration("timeout")
			}

			docs, err := batch.LoadDirectory(dir)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runner := &batch.Runner{
				Parser:          app.parser,
				Workers:         workers,
				DocumentTimeout: timeout,
				Logger:          app.logger,
				Metrics:         app.metrics,
			}
			results, runErr := runner.Run(ctx, docs)
			if results == nil {
				return runErr
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if err := writeJSON(out, results, true); err != nil {
					return err
				}
				return runErr
			}

			for _, res := range results {
				if res.Status != batch.StatusOK {
					fmt.Fprintf(out, "%-30s %-10s %v\n", res.Name, res.Status, res.Err)
					continue
				}
				r := res.Report
				fmt.Fprintf(out, "%-30s %-22s accounts=%d negative=%d inquiries=%d quality=%d\n",
					res.Name, r.Format, len(r.Accounts), len(r.NegativeItems), len(r.Inquiries), r.Metadata.QualityScore)
			}
			s := batch.Summarize(results)
			fmt.Fprintf(out, "\n%d documents: %d ok, %d timeout, %d canceled\n", s.Total, s.OK, s.Timeout, s.Canceled)
			return runErr
		},
	}
	cmd.Flags().String("dir", "", "Directory of .txt reports (required)")
	cmd.Flags().Int("workers", batch.DefaultWorkers, "Documents parsed in parallel")
	cmd.Flags().Duration("timeout", batch.DefaultDocumentTimeout, "Deadline per document")
	cmd.Flags().Bool("json", false, "Print full results as JSON")
	return cmd
}

func reviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Parse a report and list disputable reporting violations",
		Long: `Parse a credit report and review it for FCRA and Metro 2 reporting problems.

Examples:
  creditai review --file report.txt
  creditai review --file report.txt --as-of 2024-06-01 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			asOfStr, _ := cmd.Flags().GetString("as-of")
			asJSON, _ := cmd.Flags().GetBool("json")

			asOf := time.Now()
			if asOfStr != "" {
				t, err := time.Parse("2006-01-02", asOfStr)
				if err != nil {
					return fmt.Errorf("--as-of must be YYYY-MM-DD: %w", err)
				}
				asOf = t
			}

			text, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			app, err := setup(cmd)
			if err != nil {
				return err
			}

			violations := violation.Review(app.parser.ParseText(text), asOf)
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, violations, true)
			}
			if len(violations) == 0 {
				fmt.Fprintln(out, "No violations found.")
				return nil
			}
			for _, v := range violations {
				fmt.Fprintf(out, "[%s] %s: %s\n", strings.ToUpper(string(v.Severity)), v.Title, v.AffectedAccount)
				fmt.Fprintf(out, "    %s\n", v.Description)
				if v.LegalBasis != "" {
					fmt.Fprintf(out, "    Basis: %s\n", v.LegalBasis)
				}
			}
			fmt.Fprintf(out, "\n%d violations\n", len(violations))
			return nil
		},
	}
	cmd.Flags().StringP("file", "f", "", "Report text file, or - for stdin (required)")
	cmd.Flags().String("as-of", "", "Review date (YYYY-MM-DD), default today")
	cmd.Flags().Bool("json", false, "Print violations as JSON")
	return cmd
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the parsing and creditor API over HTTP",
		Long: `Serve the JSON API.

Routes:
  POST /v1/reports/parse          {"text": "..."}
  POST /v1/reports/review         {"text": "...", "as_of": "YYYY-MM-DD"}
  GET  /v1/creditors?type=
  GET  /v1/creditors/standardize?name=
  GET  /v1/creditors/matches?name=&limit=
  GET  /healthz
  GET  /metrics

With --watch, edits to YAML files in --formats-dir apply without a restart.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			watch, _ := cmd.Flags().GetBool("watch")
			app, err := setup(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				app.cfg.HTTP.Addr, _ = cmd.Flags().GetString("addr")
			}

			if watch {
				if app.cfg.Parser.FormatsDir == "" {
					return fmt.Errorf("--watch needs --formats-dir or CREDITAI_FORMATS_DIR")
				}
				app.registry.SetOnChange(func(event string, _ *pattern.FormatPattern) {
					app.logger.Info("format patterns changed", "event", event, "formats", app.registry.Count())
				})
				if err := app.registry.Watch(); err != nil {
					return err
				}
				defer app.registry.StopWatch()
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(app.parser, app.resolver,
				server.WithLogger(app.logger),
				server.WithGatherer(app.promRegistry),
			)
			return srv.ListenAndServe(ctx, app.cfg.HTTP)
		},
	}
	cmd.Flags().String("addr", "", "Listen address (default from CREDITAI_HTTP_ADDR or :8080)")
	cmd.Flags().Bool("watch", false, "Reload format patterns when files in the formats directory change")
	return cmd
}

func readInput(cmd *cobra.Command, file string) (string, error) {
	if file == "" {
		return "", fmt.Errorf("--file flag is required")
	}
	if file == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", file, err)
	}
	return string(data), nil
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}

