package report

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/sanjoy16/C-Autograder-Pro/internal/config"
	"github.com/sanjoy16/C-Autograder-Pro/internal/result"
	"github.com/sanjoy16/C-Autograder-Pro/internal/validation"
)

// MaxStaticChars bounds the static-analysis text shown in rendered reports.
const MaxStaticChars = 5000

const truncatedMarker = "... (truncated)"

// Formats lists the output formats Render and Summarize accept.
var Formats = []string{"table", "markdown", "json"}

// ValidateFormat rejects any format not in Formats.
func ValidateFormat(format string) error {
	if slices.Contains(Formats, format) {
		return nil
	}
	return fmt.Errorf("unknown format %q: want %s", format, strings.Join(Formats, ", "))
}

var (
	passLabel = color.New(color.FgGreen, color.Bold).SprintFunc()
	failLabel = color.New(color.FgRed, color.Bold).SprintFunc()
	heading   = color.New(color.Bold).SprintFunc()
)

// Generate renders every report stored under dir. One report is shown in
// full; several are summarized one row each.
func Generate(dir, format string, weights config.Weights, w io.Writer) error {
	if err := ValidateFormat(format); err != nil {
		return err
	}
	reports, err := Load(dir)
	if err != nil {
		return err
	}
	switch len(reports) {
	case 0:
		return fmt.Errorf("no reports found in %s", dir)
	case 1:
		return Render(reports[0], format, weights, w)
	default:
		return Summarize(reports, format, w)
	}
}

// Load reads every report below dir, skipping files that do not parse.
func Load(dir string) ([]*result.AggregateReport, error) {
	paths, err := result.FindReports(dir)
	if err != nil {
		return nil, err
	}
	var reports []*result.AggregateReport
	for _, p := range paths {
		r, err := result.ReadReport(p)
		if err != nil {
			continue
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// Render writes one report in full.
func Render(r *result.AggregateReport, format string, weights config.Weights, w io.Writer) error {
	switch format {
	case "markdown":
		return writeMarkdown(r, weights, w)
	case "json":
		return writeJSON(r, w)
	case "table":
		return writeTable(r, weights, w)
	default:
		return ValidateFormat(format)
	}
}

// Summarize writes one row per report.
func Summarize(reports []*result.AggregateReport, format string, w io.Writer) error {
	switch format {
	case "markdown":
		fmt.Fprintln(w, "| Submission | Total | Design | Tests | Performance | Optimization | Static |")
		fmt.Fprintln(w, "|---|---|---|---|---|---|---|")
		for _, r := range reports {
			s := r.Scores()
			fmt.Fprintf(w, "| %s | %.2f | %.2f | %.2f | %.2f | %.2f | %.2f |\n",
				escapeCell(r.Title), r.TotalScore, s.Design, s.Tests, s.Performance, s.Optimization, s.Static)
		}
		return nil
	case "json":
		return writeJSON(reports, w)
	case "table":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SUBMISSION\tTOTAL\tDESIGN\tTESTS\tPERFORMANCE\tOPTIMIZATION\tSTATIC")
		fmt.Fprintln(tw, strings.Repeat("-", 90))
		for _, r := range reports {
			s := r.Scores()
			fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\n",
				r.Title, r.TotalScore, s.Design, s.Tests, s.Performance, s.Optimization, s.Static)
		}
		return tw.Flush()
	default:
		return ValidateFormat(format)
	}
}

type row struct {
	name   string
	score  float64
	max    float64
	detail string
}

func rows(r *result.AggregateReport, weights config.Weights) []row {
	rubric := validation.Rubric(weights)
	s := r.Scores()
	scores := []float64{s.Design, s.Tests, s.Performance, s.Optimization, s.Static}
	details := []string{
		r.Design.Report,
		r.Tests.Report,
		r.Performance.Report,
		r.Optimization.Report,
		fmt.Sprintf("%d issue(s)", validation.ScoreStaticReport(r.StaticReport, weights.Static).Issues),
	}
	out := make([]row, len(rubric))
	for i, c := range rubric {
		out[i] = row{name: c.Name, score: scores[i], max: c.Max, detail: oneLine(details[i])}
	}
	return out
}

func writeTable(r *result.AggregateReport, weights config.Weights, w io.Writer) error {
	fmt.Fprintf(w, "%s %s\n", heading("Submission:"), r.Title)
	if r.Source != "" {
		fmt.Fprintf(w, "%s %s\n", heading("Source:"), r.Source)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COMPONENT\tSCORE\tMAX\tDETAIL")
	fmt.Fprintln(tw, strings.Repeat("-", 80))
	for _, rw := range rows(r, weights) {
		fmt.Fprintf(tw, "%s\t%.2f\t%g\t%s\n", rw.name, rw.score, rw.max, rw.detail)
	}
	fmt.Fprintf(tw, "TOTAL\t%.2f\t%g\t\n", r.TotalScore, validation.RubricTotal(weights))
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(r.Tests.Cases) > 0 {
		fmt.Fprintln(w)
		tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "INPUT\tEXPECTED\tACTUAL\tRESULT")
		for _, c := range r.Tests.Cases {
			label := failLabel("FAIL")
			if c.Pass {
				label = passLabel("PASS")
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", oneLine(c.Input), oneLine(c.Expected), oneLine(c.Actual), label)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if strings.TrimSpace(r.StaticReport) != "" {
		fmt.Fprintf(w, "\n%s\n%s\n", heading("Static analysis:"), TruncateStatic(r.StaticReport))
	}
	if r.Narrative != "" {
		fmt.Fprintf(w, "\n%s\n%s\n", heading("Narrative:"), r.Narrative)
	}
	return nil
}

func writeMarkdown(r *result.AggregateReport, weights config.Weights, w io.Writer) error {
	fmt.Fprintf(w, "# %s\n\n", r.Title)
	if !r.GeneratedAt.IsZero() {
		fmt.Fprintf(w, "Generated %s\n\n", r.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Fprintln(w, "| Component | Score | Max | Detail |")
	fmt.Fprintln(w, "|---|---|---|---|")
	for _, rw := range rows(r, weights) {
		fmt.Fprintf(w, "| %s | %.2f | %g | %s |\n", rw.name, rw.score, rw.max, escapeCell(rw.detail))
	}
	fmt.Fprintf(w, "| **Total** | **%.2f** | %g | |\n", r.TotalScore, validation.RubricTotal(weights))

	if len(r.Tests.Cases) > 0 {
		fmt.Fprint(w, "\n## Test cases\n\n")
		fmt.Fprintln(w, "| Input | Expected | Actual | Result |")
		fmt.Fprintln(w, "|---|---|---|---|")
		for _, c := range r.Tests.Cases {
			res := "FAIL"
			if c.Pass {
				res = "PASS"
			}
			fmt.Fprintf(w, "| %s | %s | %s | %s |\n",
				escapeCell(oneLine(c.Input)), escapeCell(oneLine(c.Expected)), escapeCell(oneLine(c.Actual)), res)
		}
	}
	if strings.TrimSpace(r.StaticReport) != "" {
		fmt.Fprintf(w, "\n## Static analysis\n\n```\n%s\n```\n", TruncateStatic(r.StaticReport))
	}
	if r.Narrative != "" {
		fmt.Fprintf(w, "\n## Narrative\n\n%s\n", r.Narrative)
	}
	return nil
}

func writeJSON(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// TruncateStatic cuts text to MaxStaticChars characters and marks the cut.
func TruncateStatic(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxStaticChars {
		return text
	}
	return string(runes[:MaxStaticChars]) + truncatedMarker
}

func oneLine(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\r\n", "; ")
	return strings.NewReplacer("\n", "; ", "\r", "; ", "\t", " ").Replace(s)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
