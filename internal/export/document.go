package export

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ChuLiYu/cpu-scheduler-sim/internal/comparison"
	"github.com/ChuLiYu/cpu-scheduler-sim/internal/engine"
	"github.com/ChuLiYu/cpu-scheduler-sim/pkg/types"
)

// SchemaVersion is the document layout written by this package.
const SchemaVersion = 1

// Document is the exported form of one run or one comparison.
type Document struct {
	SchemaVersion int                  `json:"schema_version"`
	ID            uuid.UUID            `json:"id"`
	GeneratedAt   time.Time            `json:"generated_at"`
	Config        RunConfig            `json:"config"`
	Workload      []types.Process      `json:"workload"` // input records, run state cleared
	Runs          []RunRecord          `json:"runs"`     // selection order
	Rankings      []comparison.Ranking `json:"rankings,omitempty"`
}

// RunConfig mirrors engine.Config in the document.
type RunConfig struct {
	Quantum       int `json:"quantum"`
	ContextSwitch int `json:"context_switch"`
}

// RunRecord is one algorithm's outcome. Exactly one of Error and Result is set.
type RunRecord struct {
	Algorithm types.Algorithm  `json:"algorithm"`
	Error     string           `json:"error,omitempty"`
	Result    *types.RunResult `json:"result,omitempty"`
}

func newDocument(procs []types.Process, cfg engine.Config) Document {
	return Document{
		SchemaVersion: SchemaVersion,
		ID:            uuid.New(),
		GeneratedAt:   time.Now().UTC(),
		Config:        RunConfig{Quantum: cfg.Quantum, ContextSwitch: cfg.ContextSwitch},
		Workload:      types.CloneProcesses(procs),
	}
}

// FromRun builds a document holding a single run.
func FromRun(procs []types.Process, run types.RunResult, cfg engine.Config) Document {
	doc := newDocument(procs, cfg)
	doc.Runs = []RunRecord{{Algorithm: run.Algorithm, Result: &run}}
	return doc
}

// FromReport builds a document holding every outcome of a comparison.
func FromReport(procs []types.Process, r *comparison.Report, cfg engine.Config) Document {
	doc := newDocument(procs, cfg)
	doc.Rankings = r.Rankings
	for _, o := range r.Outcomes {
		rec := RunRecord{Algorithm: o.Algorithm}
		if o.OK() {
			run := o.Run
			rec.Result = &run
		} else {
			rec.Error = o.Err.Error()
		}
		doc.Runs = append(doc.Runs, rec)
	}
	return doc
}

// Report rebuilds the comparison report stored in the document. Rankings
// are recomputed from the runs, so a hand-edited file stays consistent.
func (d Document) Report() *comparison.Report {
	outcomes := make([]comparison.Outcome, 0, len(d.Runs))
	for _, rec := range d.Runs {
		o := comparison.Outcome{Algorithm: rec.Algorithm}
		switch {
		case rec.Result != nil:
			o.Run = *rec.Result
		case rec.Error != "":
			o.Err = errors.New(rec.Error)
		default:
			o.Err = errors.New("no result recorded")
		}
		outcomes = append(outcomes, o)
	}
	return &comparison.Report{Outcomes: outcomes, Rankings: comparison.Rank(outcomes)}
}

// EngineConfig returns the configuration the runs were produced with.
func (d Document) EngineConfig() engine.Config {
	return engine.Config{Quantum: d.Config.Quantum, ContextSwitch: d.Config.ContextSwitch}
}
