package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/ChuLiYu/cpu-scheduler-sim/internal/comparison"
	"github.com/ChuLiYu/cpu-scheduler-sim/pkg/types"
)

// WriteComparison writes the metric table followed by the analysis.
func WriteComparison(w io.Writer, r *comparison.Report) {
	_, _ = fmt.Fprintln(w, "Results")
	WriteComparisonTable(w, r)
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Analysis")
	WriteAnalysis(w, r)
}

// WriteComparisonTable writes one row per metric and one column per algorithm.
func WriteComparisonTable(w io.Writer, r *comparison.Report) {
	header := []string{"Metric"}
	for _, o := range r.Outcomes {
		header = append(header, o.Algorithm.DisplayName())
	}

	row := func(label string, value func(types.Metrics) float64) []string {
		cells := []string{label}
		for _, o := range r.Outcomes {
			if !o.OK() {
				cells = append(cells, "error")
				continue
			}
			cells = append(cells, fmt.Sprintf("%.2f", value(o.Run.Metrics)))
		}
		return cells
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader(header)
	for _, metric := range types.RankedMetrics {
		table.Append(row(metric.Label(), func(m types.Metrics) float64 { return m.Value(metric) }))
	}
	table.Append(row("Throughput", func(m types.Metrics) float64 { return m.Throughput }))
	table.Render()
}

// WriteAnalysis explains each ranking: a tie across every run, or the best
// algorithms and how far behind the others are.
func WriteAnalysis(w io.Writer, r *comparison.Report) {
	for _, o := range r.Outcomes {
		if !o.OK() {
			_, _ = fmt.Fprintf(w, "! %s failed: %v\n", o.Algorithm.DisplayName(), o.Err)
		}
	}

	for _, rk := range r.Rankings {
		unit := ""
		if rk.Metric.HigherIsBetter() {
			unit = "%"
		}

		_, _ = fmt.Fprintf(w, "\n• %s:\n", rk.Metric.Label())
		if rk.AllEqual {
			_, _ = fmt.Fprintf(w, "  All equal: %.2f%s\n", rk.Value, unit)
			continue
		}

		names := make([]string, len(rk.Best))
		best := make(map[types.Algorithm]bool, len(rk.Best))
		for i, a := range rk.Best {
			names[i] = a.DisplayName()
			best[a] = true
		}
		_, _ = fmt.Fprintf(w, "  Best: %s (%.2f%s)\n", strings.Join(names, ", "), rk.Value, unit)

		for _, o := range r.Succeeded() {
			if best[o.Algorithm] {
				continue
			}
			_, _ = fmt.Fprintf(w, "  • %s: %s\n", o.Algorithm.DisplayName(), verdict(rk, o.Run.Metrics.Value(rk.Metric)))
		}
	}
}

func verdict(rk comparison.Ranking, v float64) string {
	ratio := comparison.Ratio(rk.Metric, rk.Value, v)
	switch {
	case ratio == 0:
		return "N/A"
	case rk.Metric.HigherIsBetter():
		return fmt.Sprintf("%.1fx worse", ratio)
	default:
		return fmt.Sprintf("%.1fx longer", ratio)
	}
}
