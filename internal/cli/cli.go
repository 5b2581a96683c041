// ============================================================================
// schedsim CLI - Command Line Interface
// ============================================================================
//
// Package: internal/cli
// File: cli.go
// Purpose: Cobra command tree of the scheduling simulator
//
// Command Structure:
//   schedsim                       # Root command
//   ├── run                        # Simulate one algorithm
//   ├── compare                    # Compare several algorithms
//   ├── serve                      # Start gRPC + HTTP front-ends
//   ├── show                       # Render an exported JSON document
//   ├── algorithms                 # List algorithm keys
//   ├── status                     # Print the effective configuration
//   ├── --config, -c               # Config file (default: configs/default.yaml)
//   └── --version
//
// Configuration:
//   YAML file merged onto built-in defaults. The default path may be
//   absent; an explicit --config path must exist.
//
// Remote mode:
//   run and compare accept --server host:port and then execute on a
//   running `schedsim serve` through gRPC. Output is identical.
//
// ============================================================================

package cli

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ChuLiYu/cpu-scheduler-sim/pkg/types"
)

// Global config file path
var configFile string

// BuildCLI builds the root command
func BuildCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "schedsim",
		Short: "schedsim: a CPU scheduling simulator",
		Long: `schedsim simulates FCFS, SJF, Priority, preemptive Priority, Round-Robin
and Priority Round-Robin on a workload, prints Gantt charts and per-process
statistics, and ranks the algorithms against each other.`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", defaultConfigPath, "config file path")

	rootCmd.AddCommand(buildRunCommand())
	rootCmd.AddCommand(buildCompareCommand())
	rootCmd.AddCommand(buildServeCommand())
	rootCmd.AddCommand(buildShowCommand())
	rootCmd.AddCommand(buildAlgorithmsCommand())
	rootCmd.AddCommand(buildStatusCommand())

	return rootCmd
}

func buildAlgorithmsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "algorithms",
		Short: "List the supported scheduling algorithms",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Key", "Name", "Quantum", "Priority"})
			for _, a := range types.Algorithms {
				table.Append([]string{string(a), a.DisplayName(), yesNo(a.NeedsQuantum()), yesNo(a.NeedsPriority())})
			}
			table.Render()
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}

func buildStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile, cmd.Flags().Changed("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			out := cmd.OutOrStdout()

			_, _ = fmt.Fprintln(out, "=== schedsim status ===")
			_, _ = fmt.Fprintf(out, "Config file: %s\n", configFile)
			_, _ = fmt.Fprintf(out, "Quantum: %d\n", cfg.Scheduler.Quantum)
			_, _ = fmt.Fprintf(out, "Context switch: %d\n", cfg.Scheduler.ContextSwitch)
			_, _ = fmt.Fprintf(out, "Workers: %s\n", workersLabel(cfg.Comparison.Workers))
			_, _ = fmt.Fprintf(out, "Algorithms: %v\n", cfg.Comparison.Algorithms)
			_, _ = fmt.Fprintf(out, "gRPC port: %s\n", portLabel(cfg.Server.GRPCPort))
			_, _ = fmt.Fprintf(out, "HTTP port: %s\n", portLabel(cfg.Server.HTTPPort))
			if cfg.Metrics.Enabled {
				_, _ = fmt.Fprintf(out, "Metrics: enabled on port %d\n", cfg.Metrics.Port)
			} else {
				_, _ = fmt.Fprintln(out, "Metrics: disabled")
			}
			return nil
		},
	}
}

func workersLabel(n int) string {
	if n <= 0 {
		return "auto"
	}
	return fmt.Sprint(n)
}

func portLabel(p int) string {
	if p == 0 {
		return "disabled"
	}
	return fmt.Sprint(p)
}
