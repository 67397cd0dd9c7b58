// Package preflight checks that a data directory can be indexed before
// any work is done.
//
// The package validates:
//   - the data directory exists and is a directory
//   - it can be listed and written
//   - free disk space (warning only)
//   - an existing index file parses (warning only)
//
// Use the Checker type to run all validations:
//
//	checker := preflight.New()
//	results := checker.RunAll(ctx, "data")
//	if checker.HasCriticalFailures(results) {
//	    // Handle failures
//	}
package preflight
