package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"feasibility/internal/cache"
	"feasibility/internal/config"
	apierrors "feasibility/internal/errors"
	"feasibility/internal/exporter"
	"feasibility/internal/feasibility"
	"feasibility/internal/infrastructure"
	"feasibility/internal/services"
	"feasibility/internal/validation"
	"feasibility/pkg/contracts"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

type analyzeOptions struct {
	project string
	mode    string
	format  string
	out     string
	tables  string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "feasibility-cli",
		Short:         "Score the feasibility and risk of an investment project",
		Version:       contracts.GetVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level written to stderr (debug, info, warn, error)")

	root.AddCommand(newAnalyzeCmd(&logLevel), newBatchCmd(&logLevel), newModesCmd(&logLevel))
	return root
}

func newAnalyzeCmd(logLevel *string) *cobra.Command {
	opts := analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run an analysis on a project file and write the report",
		Example: `  feasibility-cli analyze --project plant.yaml
  feasibility-cli analyze --project plant.json --mode conservative --format xlsx --out plant.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := infrastructure.NewLogger(*logLevel, cmd.ErrOrStderr())
			return runAnalyze(cmd.Context(), opts, cmd.OutOrStdout(), logger)
		},
	}

	cmd.Flags().StringVarP(&opts.project, "project", "p", "", "project definition file (.yaml, .yml or .json)")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", string(feasibility.ModeBase), "analysis mode (conservative, base, aggressive)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", string(exporter.FormatJSON), "report format (json, csv, xlsx)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "report file; stdout when empty (required for xlsx)")
	cmd.Flags().StringVar(&opts.tables, "tables", "", "scoring tables override (.yaml)")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func runAnalyze(ctx context.Context, opts analyzeOptions, stdout io.Writer, logger *slog.Logger) error {
	files := validation.NewFileValidator(logger)

	kind, err := files.ValidateProjectFile(opts.project)
	if err != nil {
		return err
	}

	format, err := exporter.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	if opts.out == "" && format == exporter.FormatXLSX {
		return fmt.Errorf("--out is required for %s reports", format)
	}
	if opts.out != "" {
		if err := files.ValidateOutputFile(opts.out, format.Extension()); err != nil {
			return err
		}
	}

	mode, err := feasibility.ParseMode(opts.mode)
	if err != nil {
		return err
	}

	project, err := loadProject(opts.project, kind)
	if err != nil {
		return err
	}

	svc, store, err := newAnalysisService(opts.tables, files, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	stored, err := svc.RunAnalysis(ctx, project, mode)
	if err != nil {
		return err
	}

	if opts.out == "" {
		return exporter.Export(stdout, format, stored.Result)
	}
	return writeReport(opts.out, format, stored.Result, logger)
}

func newModesCmd(logLevel *string) *cobra.Command {
	var (
		tables string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "modes",
		Short: "List the analysis modes and their parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := infrastructure.NewLogger(*logLevel, cmd.ErrOrStderr())
			svc, store, err := newAnalysisService(tables, validation.NewFileValidator(logger), logger)
			if err != nil {
				return err
			}
			defer store.Close()

			modes := svc.Modes()
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(modes)
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "MODE\tGROWTH HAIRCUT\tRISK PREMIUM\tSCENARIO SPREAD\tPROBABILITY")
			for _, m := range modes {
				fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.0f%%\n",
					m.Name, m.GrowthHaircut, m.RiskPremiumFactor, m.ScenarioSpread, m.ScenarioProbability)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&tables, "tables", "", "scoring tables override (.yaml)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the mode table as JSON")

	return cmd
}

// newAnalysisService builds the engine over the default or overridden tables.
// Results live in a process-local store for the duration of the command.
func newAnalysisService(tablesFile string, files *validation.FileValidator, logger *slog.Logger) (*services.AnalysisService, cache.Store, error) {
	if tablesFile != "" {
		if err := files.ValidateTablesFile(tablesFile); err != nil {
			return nil, nil, err
		}
	}

	tables, err := config.LoadEngineTables(tablesFile)
	if err != nil {
		return nil, nil, err
	}

	engine, err := feasibility.NewEngine(tables, logger, feasibility.WithTimeout(config.DefaultAnalysisTimeout))
	if err != nil {
		return nil, nil, err
	}

	store := cache.NewMemoryStore(0, 0)
	return services.NewAnalysisService(engine, store, services.AnalysisServiceOptions{}, logger), store, nil
}

func loadProject(path string, kind validation.FileKind) (feasibility.Project, error) {
	var project feasibility.Project

	data, err := os.ReadFile(path)
	if err != nil {
		return project, apierrors.NewStorageError("failed to read project file", err).WithContext("file", path)
	}

	switch kind {
	case validation.KindYAML:
		if err := yaml.UnmarshalStrict(data, &project); err != nil {
			return project, apierrors.NewParsingError("failed to parse project "+path, err)
		}
	default:
		if err := json.Unmarshal(data, &project); err != nil {
			return project, apierrors.NewParsingError("failed to parse project "+path, err)
		}
	}

	return project, nil
}

func writeReport(path string, format exporter.Format, result *feasibility.AnalysisResult, logger *slog.Logger) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return apierrors.NewStorageError("failed to create report", err).WithContext("file", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = apierrors.NewStorageError("failed to close report", cerr).WithContext("file", path)
		}
	}()

	if err := exporter.Export(f, format, result); err != nil {
		return err
	}

	logger.Info("report written",
		slog.String("file", path),
		slog.String("format", string(format)),
		slog.String("project_id", result.ProjectID),
		slog.Float64("overall_score", result.OverallScore))
	return nil
}
