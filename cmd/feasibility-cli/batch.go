package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"feasibility/internal/config"
	apierrors "feasibility/internal/errors"
	"feasibility/internal/exporter"
	"feasibility/internal/feasibility"
	"feasibility/internal/files"
	"feasibility/internal/infrastructure"
	"feasibility/internal/services"
	"feasibility/internal/validation"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// batchSummaryFile is written into the output directory after every batch run
const batchSummaryFile = "batch-summary.csv"

type batchOptions struct {
	dir     string
	mode    string
	format  string
	out     string
	tables  string
	workers int
}

type batchOutcome struct {
	file   files.FileInfo
	report string
	result *feasibility.AnalysisResult
	err    error
}

func newBatchCmd(logLevel *string) *cobra.Command {
	opts := batchOptions{}

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Analyze every project file in a directory",
		Long: `Analyze every .yaml, .yml and .json project in a directory and write one
report per project plus a batch-summary.csv into the output directory.
A failing project does not stop the others.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := infrastructure.NewLogger(*logLevel, cmd.ErrOrStderr())
			return runBatch(cmd.Context(), opts, cmd.OutOrStdout(), logger)
		},
	}

	cmd.Flags().StringVarP(&opts.dir, "dir", "d", config.DefaultProjectsDir, "directory holding project files")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", string(feasibility.ModeBase), "analysis mode (conservative, base, aggressive)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", string(exporter.FormatCSV), "report format (json, csv, xlsx)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", config.DefaultReportsDir, "output directory")
	cmd.Flags().StringVar(&opts.tables, "tables", "", "scoring tables override (.yaml)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 4, "projects analyzed concurrently")

	return cmd
}

func runBatch(ctx context.Context, opts batchOptions, stdout io.Writer, logger *slog.Logger) error {
	if opts.workers < 1 {
		return fmt.Errorf("--workers must be at least 1")
	}

	format, err := exporter.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	mode, err := feasibility.ParseMode(opts.mode)
	if err != nil {
		return err
	}

	projects, err := files.NewDiscovery("").FindProjectFiles(opts.dir)
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		return fmt.Errorf("no project files found in %s", opts.dir)
	}

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateOutputDirectory(opts.out); err != nil {
		return err
	}

	svc, store, err := newAnalysisService(opts.tables, validator, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	logger.Info("batch started",
		slog.String("dir", opts.dir),
		slog.Int("projects", len(projects)),
		slog.String("mode", string(mode)),
		slog.Int("workers", opts.workers))

	outcomes := make([]batchOutcome, len(projects))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers)
	for i, file := range projects {
		g.Go(func() error {
			outcomes[i] = analyzeProjectFile(gctx, svc, validator, file, mode, format, opts.out, logger)
			return nil
		})
	}
	_ = g.Wait()

	records := make([][]string, 0, len(outcomes))
	failed := 0
	for _, o := range outcomes {
		if o.err != nil {
			failed++
			logger.Error("project analysis failed",
				slog.String("file", o.file.Path),
				slog.String("error", o.err.Error()))
		}
		records = append(records, exporter.BatchRecord(o.file.Name, o.result, o.err))
	}

	csvWriter := exporter.NewCSVWriter(opts.out, logger)
	if err := csvWriter.WriteCSV(batchSummaryFile, exporter.WriteOptions{
		Headers:   exporter.BatchHeaders,
		Records:   records,
		BOMPrefix: true,
	}); err != nil {
		return apierrors.NewStorageError("failed to write batch summary", err)
	}

	if err := printBatchTable(stdout, outcomes); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d projects failed", failed, len(projects))
	}
	return nil
}

func analyzeProjectFile(ctx context.Context, svc *services.AnalysisService, validator *validation.FileValidator, file files.FileInfo, mode feasibility.Mode, format exporter.Format, outDir string, logger *slog.Logger) batchOutcome {
	outcome := batchOutcome{file: file}

	kind, err := validator.ValidateProjectFile(file.Path)
	if err != nil {
		outcome.err = err
		return outcome
	}

	project, err := loadProject(file.Path, kind)
	if err != nil {
		outcome.err = err
		return outcome
	}

	stored, err := svc.RunAnalysis(ctx, project, mode)
	if err != nil {
		outcome.err = err
		return outcome
	}
	outcome.result = stored.Result

	outcome.report = files.ReportPath(outDir, file, format.Extension())
	if err := writeReport(outcome.report, format, stored.Result, logger); err != nil {
		outcome.err = err
		outcome.report = ""
	}
	return outcome
}

func printBatchTable(out io.Writer, outcomes []batchOutcome) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tPROJECT\tSCORE\tRECOMMENDATION\tREPORT")
	for _, o := range outcomes {
		if o.result == nil {
			fmt.Fprintf(tw, "%s\t-\t-\tfailed\t-\n", o.file.Name)
			continue
		}
		report := o.report
		if report == "" {
			report = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\t%s\n",
			o.file.Name, o.result.ProjectID, o.result.OverallScore, o.result.Recommendation, report)
	}
	return tw.Flush()
}
