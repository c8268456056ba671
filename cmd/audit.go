package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/seo-optimizer/seoaudit/analyzer"
	"github.com/seo-optimizer/seoaudit/output"
	"github.com/seo-optimizer/seoaudit/page"
	"github.com/seo-optimizer/seoaudit/report"
)

type auditFlags struct {
	format    string
	outputDir string
	htmlFile  string
	lcp       float64
	inp       float64
	cls       float64
	ttfb      float64
}

func newAuditCmd(configPath *string) *cobra.Command {
	var f auditFlags

	cmd := &cobra.Command{
		Use:   "audit <url>",
		Short: "Audit one page and print the report",
		Long: `Audit fetches a page, runs every rule of the catalog against it and prints
the report. With --html the page is read from a local file instead and <url>
only names it. Measured Core Web Vitals can be supplied with --lcp, --inp,
--cls and --ttfb.

Examples:
  seoaudit audit https://example.com
  seoaudit audit https://example.com --format json
  seoaudit audit https://example.com --format pdf --output_dir ./reports
  seoaudit audit https://example.com --html snapshot.html --lcp 2100 --cls 0.05`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd, *configPath, args[0], f)
		},
	}

	cmd.Flags().StringVar(&f.format, "format", "text", "Report format: text, json or pdf")
	cmd.Flags().StringVar(&f.outputDir, "output_dir", "", "Write the report into this directory instead of stdout")
	cmd.Flags().StringVar(&f.htmlFile, "html", "", "Audit this local HTML file as <url>")
	cmd.Flags().Float64Var(&f.lcp, "lcp", 0, "Largest Contentful Paint in ms")
	cmd.Flags().Float64Var(&f.inp, "inp", 0, "Interaction to Next Paint in ms")
	cmd.Flags().Float64Var(&f.cls, "cls", 0, "Cumulative Layout Shift")
	cmd.Flags().Float64Var(&f.ttfb, "ttfb", 0, "Time to First Byte in ms")
	return cmd
}

// vitalsFromFlags returns nil when no vital was given, so the audit stays
// cacheable and the performance category keeps its placeholder.
func vitalsFromFlags(cmd *cobra.Command, f auditFlags) *page.WebVitals {
	var v page.WebVitals
	set := false
	for _, m := range []struct {
		flag string
		val  float64
		dst  **float64
	}{
		{"lcp", f.lcp, &v.LCP},
		{"inp", f.inp, &v.INP},
		{"cls", f.cls, &v.CLS},
		{"ttfb", f.ttfb, &v.TTFB},
	} {
		if cmd.Flags().Changed(m.flag) {
			*m.dst = page.Float(m.val)
			set = true
		}
	}
	if !set {
		return nil
	}
	return &v
}

func runAudit(cmd *cobra.Command, configPath, rawURL string, f auditFlags) error {
	renderer, err := report.ForFormat(f.format)
	if err != nil {
		return err
	}
	if _, ok := renderer.(report.PDFRenderer); ok && f.outputDir == "" {
		return errors.New("--format pdf needs --output_dir")
	}
	if err := checkURL(rawURL); err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), configPath, cmd.ErrOrStderr(), false)
	if err != nil {
		return err
	}
	defer a.close()

	vitals := vitalsFromFlags(cmd, f)

	var result analyzer.Analysis
	if f.htmlFile != "" {
		html, err := os.ReadFile(f.htmlFile)
		if err != nil {
			return fmt.Errorf("reading %s: %w", f.htmlFile, err)
		}
		result, err = a.analyzer.AuditHTML(string(html), rawURL, nil, vitals)
		if err != nil {
			return err
		}
	} else {
		result, err = a.analyzer.Analyze(cmd.Context(), rawURL, vitals)
		if err != nil {
			return err
		}
	}

	data, err := renderer.Render(result.Report, result.Extraction)
	if err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	return emit(cmd, f.outputDir, rawURL, data, renderer.Extension())
}

// emit prints data, or writes it under dir and prints the path.
func emit(cmd *cobra.Command, dir, rawURL string, data []byte, ext string) error {
	if dir == "" {
		out := cmd.OutOrStdout()
		if _, err := out.Write(data); err != nil {
			return err
		}
		_, err := fmt.Fprintln(out)
		return err
	}

	w, err := output.New(dir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}
	path, err := w.Write(rawURL, data, ext)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Written: %s\n", path)
	return nil
}

func checkURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("invalid URL: %s (must include scheme, e.g. https://example.com)", rawURL)
	}
	return nil
}
