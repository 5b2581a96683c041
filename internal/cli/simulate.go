package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ChuLiYu/cpu-scheduler-sim/internal/comparison"
	"github.com/ChuLiYu/cpu-scheduler-sim/internal/export"
	"github.com/ChuLiYu/cpu-scheduler-sim/internal/report"
	"github.com/ChuLiYu/cpu-scheduler-sim/internal/server"
	"github.com/ChuLiYu/cpu-scheduler-sim/internal/workload"
	"github.com/ChuLiYu/cpu-scheduler-sim/pkg/types"
)

// remoteTimeout bounds a single call to a remote Simulator
const remoteTimeout = 30 * time.Second

// simulator is implemented by the local server.Service and the remote server.Client
type simulator interface {
	Simulate(ctx context.Context, req server.SimulateRequest) (export.Document, error)
	Compare(ctx context.Context, req server.CompareRequest) (export.Document, error)
}

// runFlags are shared by run and compare
type runFlags struct {
	file          string
	quantum       int
	contextSwitch int
	serverAddr    string
	exportPath    string
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "workload file (.json, .csv or .xlsx); prompts for processes when omitted")
	cmd.Flags().IntVarP(&f.quantum, "quantum", "q", 0, "time quantum for rr and priority-rr (default from config)")
	cmd.Flags().IntVar(&f.contextSwitch, "context-switch", 0, "context switch cost between slices (default from config)")
	cmd.Flags().StringVar(&f.serverAddr, "server", "", "run on a remote simulator (e.g. localhost:50051)")
	cmd.Flags().StringVarP(&f.exportPath, "export", "o", "", "write results to a .json document or a text file")
}

// loadWorkload reads the workload file, or asks for the processes on the
// command's input when no file was given.
func (f *runFlags) loadWorkload(cmd *cobra.Command, opts workload.Options) ([]types.Process, error) {
	if f.file != "" {
		return workload.LoadFile(f.file, opts)
	}
	return workload.Prompt(cmd.InOrStdin(), cmd.OutOrStdout(), opts)
}

// overrides returns the request fields set on the command line
func (f *runFlags) overrides(cmd *cobra.Command) (quantum int, contextSwitch *int) {
	if cmd.Flags().Changed("quantum") {
		quantum = f.quantum
	}
	if cmd.Flags().Changed("context-switch") {
		cs := f.contextSwitch
		contextSwitch = &cs
	}
	return quantum, contextSwitch
}

// openSimulator returns the remote client when addr is set, otherwise a
// local service configured from cfg. The returned func releases it.
func openSimulator(cfg *Config, addr string) (simulator, func(), error) {
	if addr != "" {
		log.Printf("Using remote simulator at %s\n", addr)
		client, err := server.Dial(addr)
		if err != nil {
			return nil, nil, err
		}
		return client, func() { _ = client.Close() }, nil
	}

	algs, err := cfg.algorithms()
	if err != nil {
		return nil, nil, err
	}
	svc := server.NewService(server.Options{
		Defaults:   cfg.engineConfig(),
		Algorithms: algs,
		Workers:    cfg.Comparison.Workers,
	})
	return svc, func() {}, nil
}

func buildRunCommand() *cobra.Command {
	var flags runFlags
	var algorithm string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one scheduling algorithm on a workload",
		Long:  "Simulate one algorithm and print its Gantt chart and per-process table.",
		Example: `  schedsim run -a sjf
  schedsim run -f workload.json -a sjf
  schedsim run -f workload.csv -a rr -q 3 --context-switch 1 -o rr.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(cmd, &flags, algorithm)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", string(types.FCFS), fmt.Sprintf("algorithm, one of %v", types.Algorithms))
	return cmd
}

func runSimulation(cmd *cobra.Command, flags *runFlags, algorithm string) error {
	cfg, err := loadConfig(configFile, cmd.Flags().Changed("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	alg, err := types.ParseAlgorithm(algorithm)
	if err != nil {
		return err
	}
	procs, err := flags.loadWorkload(cmd, workload.OptionsFor(alg))
	if err != nil {
		return err
	}

	sim, release, err := openSimulator(cfg, flags.serverAddr)
	if err != nil {
		return err
	}
	defer release()

	ctx, cancel := context.WithTimeout(cmd.Context(), remoteTimeout)
	defer cancel()

	quantum, contextSwitch := flags.overrides(cmd)
	doc, err := sim.Simulate(ctx, server.SimulateRequest{
		Algorithm:     alg,
		Processes:     workload.Records(procs),
		Quantum:       quantum,
		ContextSwitch: contextSwitch,
	})
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	if len(doc.Runs) != 1 || doc.Runs[0].Result == nil {
		return fmt.Errorf("simulation returned no result")
	}

	render := func(w io.Writer) { report.WriteRun(w, *doc.Runs[0].Result) }
	render(cmd.OutOrStdout())
	return exportDocument(flags.exportPath, doc, render)
}

func buildCompareCommand() *cobra.Command {
	var flags runFlags
	var algorithms []string

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare scheduling algorithms on a workload",
		Long:  "Run several algorithms on independent copies of one workload and rank them per metric.",
		Example: `  schedsim compare -f workload.json
  schedsim compare -f workload.json -a fcfs,sjf,rr -q 2 -o comparison.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComparison(cmd, &flags, algorithms)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringSliceVarP(&algorithms, "algorithms", "a", nil, "algorithms to compare (default from config)")
	return cmd
}

func runComparison(cmd *cobra.Command, flags *runFlags, names []string) error {
	cfg, err := loadConfig(configFile, cmd.Flags().Changed("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	algs, err := parseAlgorithms(names)
	if err != nil {
		return err
	}
	if len(algs) == 0 {
		if algs, err = cfg.algorithms(); err != nil {
			return err
		}
	}
	procs, err := flags.loadWorkload(cmd, workload.OptionsFor(algs...))
	if err != nil {
		return err
	}

	sim, release, err := openSimulator(cfg, flags.serverAddr)
	if err != nil {
		return err
	}
	defer release()

	ctx, cancel := context.WithTimeout(cmd.Context(), remoteTimeout)
	defer cancel()

	quantum, contextSwitch := flags.overrides(cmd)
	doc, err := sim.Compare(ctx, server.CompareRequest{
		Algorithms:    algs,
		Processes:     workload.Records(procs),
		Quantum:       quantum,
		ContextSwitch: contextSwitch,
	})
	if err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}

	r := doc.Report()
	render := func(w io.Writer) { writeComparison(w, r) }
	render(cmd.OutOrStdout())
	return exportDocument(flags.exportPath, doc, render)
}

// writeComparison writes every run followed by the comparison
func writeComparison(w io.Writer, r *comparison.Report) {
	for _, o := range r.Succeeded() {
		report.WriteRun(w, o.Run)
		_, _ = fmt.Fprintln(w)
	}
	report.WriteComparison(w, r)
}

// exportDocument stores doc as JSON for a .json path, otherwise the rendered text
func exportDocument(path string, doc export.Document, render func(io.Writer)) error {
	if path == "" {
		return nil
	}

	m := export.NewManager(path)
	if m.Exists() {
		log.Printf("Overwriting %s\n", m.Path())
	}
	var err error
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = m.Write(doc)
	} else {
		err = m.WriteText(render)
	}
	if err != nil {
		return fmt.Errorf("failed to export results: %w", err)
	}
	log.Printf("Results exported to %s\n", m.Path())
	return nil
}

func buildShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <export.json>",
		Short: "Render a previously exported result document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := export.NewManager(args[0]).Load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			cfg := doc.EngineConfig()
			_, _ = fmt.Fprintf(out, "Document %s generated %s, quantum %d, context switch %d, %d processes\n\n",
				doc.ID, doc.GeneratedAt.Format(time.RFC3339), cfg.Quantum, cfg.ContextSwitch, len(doc.Workload))

			r := doc.Report()
			if len(r.Outcomes) == 1 && r.Outcomes[0].OK() {
				report.WriteRun(out, r.Outcomes[0].Run)
				return nil
			}
			writeComparison(out, r)
			return nil
		},
	}
}
