package report

import (
	"fmt"
	"os"
	"time"

	"yasdl/common"
)

// rep is a global reference to a shared reporter (created/initialized with
// the compiler, but separated for general usage)
var rep reporter

// Initialize initializes the global reporter with the provided log level name.
func Initialize(loglevelname string) {
	var loglevel int
	switch loglevelname {
	case "silent":
		loglevel = LogLevelSilent
	case "error":
		loglevel = LogLevelError
	case "warning":
		loglevel = LogLevelWarning
	// everything else (including invalid log levels) should default to verbose
	default:
		loglevel = LogLevelVerbose
	}

	rep = reporter{LogLevel: loglevel, startTime: time.Now()}
}

// ShouldProceed indicates whether or not the reporter has encountered any
// errors.  The phase driver consults this between phase steps: all violations
// of one step are reported before the pipeline decides to stop.
func ShouldProceed() bool {
	return rep.errorCount == 0
}

// ErrorCount returns the number of errors reported so far.
func ErrorCount() int {
	return rep.errorCount
}

// WarningCount returns the number of warnings reported so far.
func WarningCount() int {
	return rep.warnCount
}

// Diagnostics returns every diagnostic reported so far, in report order.
func Diagnostics() []*Diagnostic {
	return rep.all
}

// -----------------------------------------------------------------------------

// ReportError reports a semantic error located by the given context.
func ReportError(ctx *Context, code, msg string) {
	rep.handleDiag(&Diagnostic{Severity: SevError, Code: code, Message: msg, Context: ctx})
}

// ReportWarning reports a warning.  Warnings never stop the pipeline and do
// not affect the exit code.
func ReportWarning(ctx *Context, code, msg string) {
	rep.handleDiag(&Diagnostic{Severity: SevWarning, Code: code, Message: msg, Context: ctx})
}

// ReportNotice reports a notice.
func ReportNotice(ctx *Context, code, msg string) {
	rep.handleDiag(&Diagnostic{Severity: SevNotice, Code: code, Message: msg, Context: ctx})
}

// ReportLoadError reports a phase-0 error: an I/O failure or an unresolvable
// import.  The context points at the importing statement when one is known.
func ReportLoadError(ctx *Context, err error) {
	rep.handleDiag(&Diagnostic{Severity: SevError, Code: "00001", Message: err.Error(), Context: ctx})
}

// ReportSyntaxError reports a syntax error from the parser.  Syntax errors
// are fatal: loading stops, nothing else is attempted.
func ReportSyntaxError(origin string, line, col int, msg string) {
	rep.handleDiag(&Diagnostic{
		Severity: SevError,
		Code:     "00002",
		Message:  msg,
		Context:  &Context{Origin: origin, Line: line, Col: col},
	})
}

// ReportFatal prints a configuration error that prevents the compiler from
// running at all, then exits with the I/O exit code.
func ReportFatal(tag string, err error) {
	PrintErrorMessage(tag, err)
	os.Exit(common.ExitIO)
}

// ReportICE reports an internal invariant violation.  These are errors that
// must be impossible; they are displayed as an "Internal Error" message
// without a diagnostic code, are not recorded among the diagnostics, and
// always terminate the process with the internal exit code.
func ReportICE(msg string, args ...interface{}) {
	displayICE(fmt.Sprintf(msg, args...))
	os.Exit(common.ExitInternal)
}

// -----------------------------------------------------------------------------

// ReportCompileHeader displays the compiler version and the top schemas before
// compilation starts.  Verbose log level only.
func ReportCompileHeader(tops []string) {
	if rep.LogLevel == LogLevelVerbose {
		displayCompileHeader(tops)
	}
}

// ReportCompilationFinished flushes deferred warnings and notices and
// displays the closing message.
func ReportCompilationFinished() {
	if rep.LogLevel >= LogLevelWarning {
		for _, d := range rep.deferred {
			d.display(rep.LogLevel)
		}
	}

	if rep.LogLevel == LogLevelVerbose {
		displayCompilationFinished(rep.errorCount, rep.warnCount, rep.noticeCount, time.Since(rep.startTime))
	}
}
