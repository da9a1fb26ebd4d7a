// Package shared holds helpers used across the feasibility service that belong to
// no single layer.
//
// The testutil subpackage provides a buffered slog handler for asserting on log
// output and canonical project fixtures reused by the service, transport and
// exporter tests:
//
//	logger, logs := testutil.NewTestLogger(t)
//	svc := services.NewAnalysisService(engine, store, logger)
//	_, _ = svc.RunAnalysis(ctx, testutil.FlatProject(), feasibility.ModeBase)
//	testutil.AssertLogContains(t, logs, slog.LevelInfo, "analysis completed")
package shared
