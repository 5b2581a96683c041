package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/ChuLiYu/cpu-scheduler-sim/internal/comparison"
	"github.com/ChuLiYu/cpu-scheduler-sim/internal/engine"
	"github.com/ChuLiYu/cpu-scheduler-sim/internal/export"
	"github.com/ChuLiYu/cpu-scheduler-sim/internal/workload"
	"github.com/ChuLiYu/cpu-scheduler-sim/pkg/types"
)

// SimulateRequest asks for one algorithm run
type SimulateRequest struct {
	Algorithm     types.Algorithm   `json:"algorithm"`
	Processes     []workload.Record `json:"processes"`
	Quantum       int               `json:"quantum,omitempty"`        // 0 selects the server default
	ContextSwitch *int              `json:"context_switch,omitempty"` // nil selects the server default
}

// CompareRequest asks for a comparison
type CompareRequest struct {
	Algorithms    []types.Algorithm `json:"algorithms,omitempty"` // empty selects the server default
	Processes     []workload.Record `json:"processes"`
	Quantum       int               `json:"quantum,omitempty"`
	ContextSwitch *int              `json:"context_switch,omitempty"`
}

// Options configures a Service
type Options struct {
	Defaults   engine.Config       // quantum and context switch used when a request omits them
	Algorithms []types.Algorithm   // default comparison selection, all algorithms when empty
	Workers    int                 // worker pool size per comparison
	Observer   comparison.Observer // optional, receives every run
}

// Service executes simulation requests for the gRPC and HTTP front-ends.
// Responses are export documents, so a client can store them as they are.
type Service struct {
	opts Options
}

// NewService creates a Service
func NewService(opts Options) *Service {
	if len(opts.Algorithms) == 0 {
		opts.Algorithms = types.Algorithms
	}
	return &Service{opts: opts}
}

func (s *Service) config(quantum int, contextSwitch *int) engine.Config {
	cfg := s.opts.Defaults
	if quantum != 0 {
		cfg.Quantum = quantum
	}
	if contextSwitch != nil {
		cfg.ContextSwitch = *contextSwitch
	}
	return cfg
}

// Simulate runs one algorithm
func (s *Service) Simulate(ctx context.Context, req SimulateRequest) (export.Document, error) {
	alg, err := types.ParseAlgorithm(string(req.Algorithm))
	if err != nil {
		return export.Document{}, fmt.Errorf("%w: %q", engine.ErrUnknownAlgorithm, req.Algorithm)
	}
	procs, err := workload.Processes(req.Processes, workload.OptionsFor(alg))
	if err != nil {
		return export.Document{}, err
	}

	cfg := s.config(req.Quantum, req.ContextSwitch)
	report, err := comparison.Compare(ctx, procs, []types.Algorithm{alg}, cfg, s.comparisonOptions())
	if err != nil {
		return export.Document{}, err
	}
	outcome := report.Outcomes[0]
	if !outcome.OK() {
		return export.Document{}, outcome.Err
	}
	return export.FromRun(procs, outcome.Run, cfg), nil
}

// Compare runs the selected algorithms and ranks them
func (s *Service) Compare(ctx context.Context, req CompareRequest) (export.Document, error) {
	algs := req.Algorithms
	if len(algs) == 0 {
		algs = s.opts.Algorithms
	}
	procs, err := workload.Processes(req.Processes, workload.OptionsFor(algs...))
	if err != nil {
		return export.Document{}, err
	}

	cfg := s.config(req.Quantum, req.ContextSwitch)
	report, err := comparison.Compare(ctx, procs, algs, cfg, s.comparisonOptions())
	if err != nil {
		return export.Document{}, err
	}
	return export.FromReport(procs, report, cfg), nil
}

func (s *Service) comparisonOptions() comparison.Options {
	return comparison.Options{Workers: s.opts.Workers, Observer: s.opts.Observer}
}

// IsInvalidArgument reports whether err was caused by the request rather
// than by the server.
func IsInvalidArgument(err error) bool {
	for _, target := range []error{
		workload.ErrInvalidInput,
		engine.ErrInvalidProcess,
		engine.ErrDuplicateProcess,
		engine.ErrInvalidQuantum,
		engine.ErrInvalidContextSwitch,
		engine.ErrUnknownAlgorithm,
		comparison.ErrNoAlgorithms,
		comparison.ErrDuplicateAlgorithm,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
