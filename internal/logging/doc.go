// Package logging provides opt-in file-based logging with rotation for cohorts.
// When the --debug flag is set, JSON logs are written to ~/.cohorts/logs/
// and mirrored to stderr.
//
// Without --debug, logs go to stderr as text at the configured level
// (warn by default), so a plain run prints nothing but its result line.
package logging
