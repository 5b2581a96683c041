// Package report renders runs and comparisons as terminal text: a Gantt
// strip, a per-process table and the comparison analysis.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/ChuLiYu/cpu-scheduler-sim/pkg/types"
)

// IdleLabel marks CPU idle gaps in the Gantt chart.
const IdleLabel = "idle"

const ganttCellWidth = 8

// WriteRun writes the Gantt chart and the process table of one run.
func WriteRun(w io.Writer, run types.RunResult) {
	_, _ = fmt.Fprintf(w, "%s\n\n", run.Algorithm.DisplayName())
	WriteGantt(w, run.Schedule)
	WriteProcessTable(w, run)
	_, _ = fmt.Fprintf(w, "Makespan: %d  Idle: %d  Context switch: %d  Preemptions: %d  Throughput: %.3f/t\n",
		run.Makespan, run.IdleTime, run.ContextSwitchTime, run.Preemptions, run.Metrics.Throughput)
}

type ganttCell struct {
	label         string
	start, finish int
}

func ganttCells(schedule []types.Segment) []ganttCell {
	cells := make([]ganttCell, 0, len(schedule))
	clock := 0
	for _, s := range schedule {
		if s.Start > clock {
			cells = append(cells, ganttCell{label: IdleLabel, start: clock, finish: s.Start})
		}
		cells = append(cells, ganttCell{label: string(s.PID), start: s.Start, finish: s.Finish})
		clock = s.Finish
	}
	return cells
}

// WriteGantt writes one cell per segment with the time marks underneath.
// Gaps between segments become idle cells.
func WriteGantt(w io.Writer, schedule []types.Segment) {
	_, _ = fmt.Fprintln(w, "Gantt schedule")
	cells := ganttCells(schedule)
	if len(cells) == 0 {
		_, _ = fmt.Fprint(w, "(empty)\n\n")
		return
	}

	var bar, marks strings.Builder
	bar.WriteString("|")
	for _, c := range cells {
		width := max(ganttCellWidth, len(c.label)+2)
		left := (width - len(c.label)) / 2
		bar.WriteString(strings.Repeat(" ", left))
		bar.WriteString(c.label)
		bar.WriteString(strings.Repeat(" ", width-left-len(c.label)))
		bar.WriteString("|")

		mark := strconv.Itoa(c.start)
		marks.WriteString(mark)
		marks.WriteString(strings.Repeat(" ", max(1, width+1-len(mark))))
	}
	marks.WriteString(strconv.Itoa(cells[len(cells)-1].finish))

	_, _ = fmt.Fprintln(w, bar.String())
	_, _ = fmt.Fprintln(w, marks.String())
	_, _ = fmt.Fprintln(w)
}

// WriteProcessTable writes one row per completed process, in completion order.
func WriteProcessTable(w io.Writer, run types.RunResult) {
	_, _ = fmt.Fprintln(w, "Schedule table")
	rows := make([][]string, 0, len(run.Completed))
	for _, p := range run.Completed {
		rows = append(rows, []string{
			string(p.ID),
			strconv.Itoa(p.Priority),
			strconv.Itoa(p.BurstTime),
			strconv.Itoa(p.ArrivalTime),
			strconv.Itoa(p.WaitingTime),
			strconv.Itoa(p.TurnaroundTime),
			strconv.Itoa(p.ResponseTime),
			strconv.Itoa(p.CompletionTime),
		})
	}

	m := run.Metrics
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Priority", "Burst", "Arrival", "Wait", "Turnaround", "Response", "Exit"})
	table.AppendBulk(rows)
	table.SetFooter([]string{"", "", "", "",
		fmt.Sprintf("Average\n%.2f", m.AvgWaitingTime),
		fmt.Sprintf("Average\n%.2f", m.AvgTurnaroundTime),
		fmt.Sprintf("Average\n%.2f", m.AvgResponseTime),
		fmt.Sprintf("CPU\n%.2f%%", m.CPUUtilization)})
	table.Render()
}
