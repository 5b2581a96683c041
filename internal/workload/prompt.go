package workload

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ChuLiYu/cpu-scheduler-sim/pkg/types"
)

// Prompt reads a workload interactively: a process count, then arrival,
// burst and (when required) priority per process. PIDs are 1..n. An invalid
// answer is reported on out and asked again; input ending early is an error.
func Prompt(in io.Reader, out io.Writer, opts Options) ([]types.Process, error) {
	p := prompter{scanner: bufio.NewScanner(in), out: out}

	_, _ = fmt.Fprintln(out, "Process information")
	n, err := p.askInt("Number of processes", func(v int) string {
		if v <= 0 {
			return "number of processes must be positive"
		}
		return ""
	})
	if err != nil {
		return nil, err
	}

	records := make([]Record, n)
	for i := range records {
		_, _ = fmt.Fprintf(out, "\nProcess #%d (PID: %d)\n", i+1, i+1)

		arrival, err := p.askInt("  Arrival time (>= 0)", func(v int) string {
			if v < 0 {
				return "arrival time cannot be negative"
			}
			return ""
		})
		if err != nil {
			return nil, err
		}
		burst, err := p.askInt("  Burst time (> 0)", func(v int) string {
			if v <= 0 {
				return "burst time must be positive"
			}
			return ""
		})
		if err != nil {
			return nil, err
		}

		rec := Record{PID: json.RawMessage(strconv.Itoa(i + 1)), ArrivalTime: &arrival, BurstTime: &burst}
		if opts.RequirePriority {
			prio, err := p.askInt("  Priority (lower = higher priority)", func(v int) string {
				if v < 0 {
					return "priority cannot be negative"
				}
				return ""
			})
			if err != nil {
				return nil, err
			}
			rec.Priority = &prio
		}
		records[i] = rec
	}
	_, _ = fmt.Fprintln(out)
	return Processes(records, opts)
}

type prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// askInt repeats the question until check accepts the answer
func (p prompter) askInt(label string, check func(int) string) (int, error) {
	for {
		_, _ = fmt.Fprintf(p.out, "%s: ", label)
		if !p.scanner.Scan() {
			if err := p.scanner.Err(); err != nil {
				return 0, fmt.Errorf("%w: reading input: %v", ErrInvalidInput, err)
			}
			return 0, fmt.Errorf("%w: input ended before %s", ErrInvalidInput, strings.TrimSpace(label))
		}

		v, err := strconv.Atoi(strings.TrimSpace(p.scanner.Text()))
		if err != nil {
			_, _ = fmt.Fprintln(p.out, "please enter a valid number")
			continue
		}
		if msg := check(v); msg != "" {
			_, _ = fmt.Fprintln(p.out, msg)
			continue
		}
		return v, nil
	}
}
