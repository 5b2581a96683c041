package workload

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ChuLiYu/cpu-scheduler-sim/pkg/types"
)

// Column aliases accepted in a CSV header, compared case-insensitively.
var columnAliases = map[string][]string{
	"pid":          {"pid", "process id", "process_id", "id"},
	"arrival_time": {"arrival_time", "arrival time", "arrival", "at"},
	"burst_time":   {"burst_time", "burst time", "burst", "bt"},
	"priority":     {"priority", "prio", "pr"},
}

// Headerless files use the course layout: pid, burst, arrival[, priority].
var defaultColumns = map[string]int{"pid": 0, "burst_time": 1, "arrival_time": 2, "priority": 3}

// ReadCSV reads a CSV workload. See parseRows for header detection.
func ReadCSV(r io.Reader, opts Options) ([]types.Process, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	var lines []int
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: reading CSV: %v", ErrInvalidInput, err)
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, row)
		lines = append(lines, line)
	}
	return parseRows(rows, lines, opts)
}

// parseRows turns tabular rows into processes. The first row is a header
// when it names a known column, or when none of its cells after the first
// is an integer. Otherwise every row is data in the headerless layout.
// lines holds the source line of each row; nil means row i is line i+1.
func parseRows(rows [][]string, lines []int, opts Options) ([]types.Process, error) {
	if len(rows) == 0 {
		return []types.Process{}, nil
	}
	if lines == nil {
		lines = make([]int, len(rows))
		for i := range lines {
			lines[i] = i + 1
		}
	}

	columns := defaultColumns
	if isHeader(rows[0]) {
		var err error
		if columns, err = mapHeader(rows[0], opts); err != nil {
			return nil, err
		}
		rows, lines = rows[1:], lines[1:]
	}

	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		if blank(row) {
			continue
		}
		rec, err := recordFromRow(row, columns)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidInput, lines[i], err)
		}
		records = append(records, rec)
	}
	return Processes(records, opts)
}

func isHeader(row []string) bool {
	for _, cell := range row {
		if _, ok := columnFor(cell); ok {
			return true
		}
	}
	if len(row) < 2 {
		return false
	}
	for _, cell := range row[1:] {
		if _, err := strconv.Atoi(strings.TrimSpace(cell)); err == nil {
			return false
		}
	}
	return true
}

// columnFor resolves a header cell to its field name
func columnFor(cell string) (string, bool) {
	name := strings.ToLower(strings.TrimSpace(cell))
	for field, aliases := range columnAliases {
		for _, alias := range aliases {
			if name == alias {
				return field, true
			}
		}
	}
	return "", false
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func mapHeader(header []string, opts Options) (map[string]int, error) {
	columns := make(map[string]int)
	for i, cell := range header {
		if field, ok := columnFor(cell); ok {
			columns[field] = i
		}
	}

	var missing []string
	if _, ok := columns["burst_time"]; !ok {
		missing = append(missing, "burst_time")
	}
	if _, ok := columns["priority"]; !ok && opts.RequirePriority {
		missing = append(missing, "priority")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required columns: %s", ErrInvalidInput, strings.Join(missing, ", "))
	}
	return columns, nil
}

func recordFromRow(row []string, columns map[string]int) (Record, error) {
	cell := func(field string) (string, bool) {
		i, ok := columns[field]
		if !ok || i >= len(row) {
			return "", false
		}
		v := strings.TrimSpace(row[i])
		return v, v != ""
	}
	number := func(field string) (*int, error) {
		v, ok := cell(field)
		if !ok {
			return nil, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not an integer", field, v)
		}
		return &n, nil
	}

	var rec Record
	if pid, ok := cell("pid"); ok {
		raw, err := json.Marshal(pid)
		if err != nil {
			return rec, err
		}
		rec.PID = raw
	}

	var errs []error
	var err error
	if rec.ArrivalTime, err = number("arrival_time"); err != nil {
		errs = append(errs, err)
	}
	if rec.BurstTime, err = number("burst_time"); err != nil {
		errs = append(errs, err)
	}
	if rec.Priority, err = number("priority"); err != nil {
		errs = append(errs, err)
	}
	return rec, errors.Join(errs...)
}
