package report

import (
	"time"
)

// reporter stores and displays output from the compiler as necessary.  The
// compiler is strictly single threaded, so no synchronization is needed: the
// reporter simply counts what it has seen so the phase driver can decide
// whether to continue.
type reporter struct {
	LogLevel int

	errorCount  int
	warnCount   int
	noticeCount int

	// deferred holds all warnings and notices so they can be displayed
	// together at the end of compilation
	deferred []*Diagnostic

	// all holds every diagnostic in report order, for callers that inspect
	// the outcome programmatically
	all []*Diagnostic

	startTime time.Time
}

// Enumeration of the different log levels
const (
	LogLevelSilent  = iota // no output at all
	LogLevelError          // only errors, in GNU one-line format
	LogLevelWarning        // errors, warnings and notices, in GNU one-line format
	LogLevelVerbose        // everything, pretty-printed (DEFAULT)
)

// handleDiag prompts the reporter to process a diagnostic.  Errors are
// displayed immediately; warnings and notices are deferred until the end of
// compilation so they do not interrupt phase output.
func (r *reporter) handleDiag(d *Diagnostic) {
	r.all = append(r.all, d)

	switch d.Severity {
	case SevError:
		r.errorCount++

		if r.LogLevel > LogLevelSilent {
			d.display(r.LogLevel)
		}
	case SevWarning:
		r.warnCount++
		r.deferred = append(r.deferred, d)
	case SevNotice:
		r.noticeCount++
		r.deferred = append(r.deferred, d)
	}
}
