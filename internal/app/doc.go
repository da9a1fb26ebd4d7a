// Package app wires the feasibility service together and manages its lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration from .env, environment (FEAS_*) and config.yaml
//	2. Initialize logging and OpenTelemetry
//	3. Load the scoring tables and build the engine
//	4. Open the result cache (memory or redis)
//	5. Create the analysis and health services
//	6. Mount handlers and middleware on a chi router
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// # Graceful Shutdown
//
// Run blocks until SIGINT or SIGTERM, then drains in-flight requests, closes
// the result cache and flushes telemetry. The package never calls os.Exit.
package app
