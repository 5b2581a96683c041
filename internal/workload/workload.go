// Package workload turns files and request bodies into validated process
// lists. Validation happens here, once, before anything reaches the engine.
package workload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ChuLiYu/cpu-scheduler-sim/pkg/types"
)

var (
	// ErrInvalidInput indicates a record the engine must never see
	ErrInvalidInput = errors.New("invalid workload")
	// ErrUnsupportedFormat indicates an unknown file type
	ErrUnsupportedFormat = errors.New("unsupported workload format")
)

// Format is a workload encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Options controls boundary validation
type Options struct {
	// RequirePriority makes priority mandatory and non-negative. Set it when
	// any selected algorithm is priority-aware.
	RequirePriority bool
}

// OptionsFor returns the options matching a selection of algorithms
func OptionsFor(algs ...types.Algorithm) Options {
	for _, a := range algs {
		if a.NeedsPriority() {
			return Options{RequirePriority: true}
		}
	}
	return Options{}
}

// Record is one process as it appears on the wire. Pointer fields tell a
// missing value apart from zero.
type Record struct {
	PID         json.RawMessage `json:"pid,omitempty"` // string or number
	ArrivalTime *int            `json:"arrival_time,omitempty"`
	BurstTime   *int            `json:"burst_time,omitempty"`
	Priority    *int            `json:"priority,omitempty"`
}

func (r Record) pid(index int) (types.ProcessID, error) {
	raw := bytes.TrimSpace(r.PID)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return types.ProcessID(strconv.Itoa(index + 1)), nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		if strings.TrimSpace(s) == "" {
			return "", errors.New("empty pid")
		}
		return types.ProcessID(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("pid must be a string or a number: %s", raw)
	}
	return types.ProcessID(n.String()), nil
}

// Processes converts records into validated processes. Missing pids default
// to the 1-based position, missing arrival times to 0.
func Processes(records []Record, opts Options) ([]types.Process, error) {
	procs := make([]types.Process, 0, len(records))
	for i, r := range records {
		pid, err := r.pid(i)
		if err != nil {
			return nil, fmt.Errorf("%w: process %d: %v", ErrInvalidInput, i+1, err)
		}
		if r.BurstTime == nil {
			return nil, fmt.Errorf("%w: process %s: missing required field burst_time", ErrInvalidInput, pid)
		}
		if opts.RequirePriority && r.Priority == nil {
			return nil, fmt.Errorf("%w: process %s: priority is required", ErrInvalidInput, pid)
		}

		p := types.NewProcess(pid, deref(r.ArrivalTime), *r.BurstTime, deref(r.Priority))
		procs = append(procs, p)
	}
	if err := Validate(procs, opts); err != nil {
		return nil, err
	}
	return procs, nil
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// Validate applies the boundary rules to an already built workload
func Validate(procs []types.Process, opts Options) error {
	seen := make(map[types.ProcessID]struct{}, len(procs))
	for _, p := range procs {
		switch {
		case p.ID == "":
			return fmt.Errorf("%w: empty pid", ErrInvalidInput)
		case p.BurstTime <= 0:
			return fmt.Errorf("%w: process %s: burst time must be positive, got %d", ErrInvalidInput, p.ID, p.BurstTime)
		case p.ArrivalTime < 0:
			return fmt.Errorf("%w: process %s: arrival time cannot be negative, got %d", ErrInvalidInput, p.ID, p.ArrivalTime)
		case opts.RequirePriority && p.Priority < 0:
			return fmt.Errorf("%w: process %s: priority cannot be negative, got %d", ErrInvalidInput, p.ID, p.Priority)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: duplicate pid %s", ErrInvalidInput, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

// ParseJSON decodes a JSON array of process records
func ParseJSON(data []byte, opts Options) ([]types.Process, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: JSON file must contain an array of processes: %v", ErrInvalidInput, err)
	}
	return Processes(records, opts)
}

// FormatFromPath picks the format from the file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// Decode reads a workload in the given format
func Decode(r io.Reader, format Format, opts Options) ([]types.Process, error) {
	switch format {
	case FormatJSON:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return ParseJSON(data, opts)
	case FormatCSV:
		return ReadCSV(r, opts)
	case FormatXLSX:
		return ReadXLSX(r, opts)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// LoadFile reads the workload at path, choosing the format by extension
func LoadFile(path string, opts Options) ([]types.Process, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open workload: %w", err)
	}
	defer f.Close()

	procs, err := Decode(f, format, opts)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return procs, nil
}

// Records converts processes back into wire records
func Records(procs []types.Process) []Record {
	records := make([]Record, len(procs))
	for i, p := range procs {
		pid, _ := json.Marshal(string(p.ID))
		arrival, burst, priority := p.ArrivalTime, p.BurstTime, p.Priority
		records[i] = Record{PID: pid, ArrivalTime: &arrival, BurstTime: &burst, Priority: &priority}
	}
	return records
}
