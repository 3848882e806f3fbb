package report

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"yasdl/common"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnColorFG    = pterm.FgYellow
	WarnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	NoticeColorFG  = pterm.FgCyan
	NoticeStyleBG  = pterm.NewStyle(pterm.BgCyan, pterm.FgBlack)
	InfoColorFG    = SuccessColorFG
	InfoStyleBG    = SuccessStyleBG
)

// PrintErrorMessage prints a standard Go error to the console
func PrintErrorMessage(tag string, err error) {
	ErrorStyleBG.Print(tag)
	ErrorColorFG.Println(" " + err.Error())
}

// PrintInfoMessage prints an informational message to the user
func PrintInfoMessage(tag, msg string) {
	InfoStyleBG.Print(tag)
	InfoColorFG.Println(" " + msg)
}

// -----------------------------------------------------------------------------

// display prints the diagnostic.  At the verbose log level a banner with the
// source line and a caret marker is shown; at lower levels the GNU one-line
// format is used so IDEs can parse and jump to the location.
func (d *Diagnostic) display(loglevel int) {
	if loglevel == LogLevelVerbose {
		d.displayBanner()
		fmt.Println(d.Message)
		d.displaySourceLine()
	} else {
		fmt.Println(d.gnuFormat())
	}
}

// gnuFormat renders the diagnostic in the GNU error message format:
// "file":line:KINDcode:path:message
// See http://www.gnu.org/prep/standards/standards.html#Errors
func (d *Diagnostic) gnuFormat() string {
	ctx := d.Context
	return fmt.Sprintf("%q:%d:%s%s:%s:%s",
		ctx.Origin, ctx.Line, d.Severity.letter(), d.Code, ctx.DefPath, d.Message)
}

// displayBanner displays the banner on top of a diagnostic
func (d *Diagnostic) displayBanner() {
	fmt.Print("\n\n-- ")

	var kindLen int
	switch d.Severity {
	case SevError:
		ErrorStyleBG.Print("Error " + d.Code)
		kindLen = 6 + len(d.Code)
	case SevWarning:
		WarnStyleBG.Print("Warning " + d.Code)
		kindLen = 8 + len(d.Code)
	default:
		NoticeStyleBG.Print("Notice " + d.Code)
		kindLen = 7 + len(d.Code)
	}

	fmt.Print(" ")

	fileName := filepath.Base(d.Context.Origin)
	bannerLen := pterm.GetTerminalWidth() / 2
	if bannerLen > 50 {
		bannerLen = 50
	}
	dashCount := bannerLen - len(fileName) - kindLen - 1
	if dashCount < 3 {
		dashCount = 3
	}

	fmt.Print(strings.Repeat("-", dashCount) + " ")
	InfoColorFG.Println(fileName)

	if d.Context.DefPath != "" {
		fmt.Println("in " + d.Context.DefPath)
	}
}

// displaySourceLine prints the offending source line with a caret marker
// under the reported column.
func (d *Diagnostic) displaySourceLine() {
	ctx := d.Context
	if ctx.SourceLine == "" || ctx.Line == 0 {
		return
	}

	fmt.Println()

	lineNumber := fmt.Sprintf("%-5v", ctx.Line)
	InfoColorFG.Print(lineNumber)
	fmt.Print("|  ")
	fmt.Println(strings.ReplaceAll(ctx.SourceLine, "\t", "    "))

	if ctx.Col >= 0 {
		// tabs were expanded to four columns above, so the caret offset must
		// account for them too
		offset := 0
		for i, c := range ctx.SourceLine {
			if i >= ctx.Col {
				break
			}
			if c == '\t' {
				offset += 4
			} else {
				offset++
			}
		}

		fmt.Print(strings.Repeat(" ", len(lineNumber)), "|  ")
		ErrorColorFG.Println(strings.Repeat(" ", offset) + "^")
	}

	fmt.Println()
}

const icePostlude = `
This is likely a bug in the compiler.
Please report it together with the schema set that triggered it.`

func displayICE(msg string) {
	fmt.Print("\n\n")
	ErrorStyleBG.Print("Internal Error ")
	ErrorColorFG.Println(msg)
	InfoColorFG.Println(icePostlude)
}

// -----------------------------------------------------------------------------

// displayCompileHeader displays the compiler information before compilation
func displayCompileHeader(tops []string) {
	fmt.Print("yasdl ")
	InfoColorFG.Print("v" + common.YASDLVersion)
	fmt.Print(" -- compiling: ")
	InfoColorFG.Println(strings.Join(tops, ", "))
}

// displayCompilationFinished displays the closing message
func displayCompilationFinished(errorCount, warningCount, noticeCount int, elapsed time.Duration) {
	fmt.Print("\n")

	if errorCount == 0 {
		SuccessColorFG.Print("All done! ")
	} else {
		ErrorColorFG.Print("Oh no! ")
	}

	fmt.Print("(")

	switch errorCount {
	case 0:
		SuccessColorFG.Print(0)
		fmt.Print(" errors, ")
	case 1:
		ErrorColorFG.Print(1)
		fmt.Print(" error, ")
	default:
		ErrorColorFG.Print(errorCount)
		fmt.Print(" errors, ")
	}

	switch warningCount {
	case 0:
		SuccessColorFG.Print(0)
		fmt.Print(" warnings, ")
	case 1:
		WarnColorFG.Print(1)
		fmt.Print(" warning, ")
	default:
		WarnColorFG.Print(warningCount)
		fmt.Print(" warnings, ")
	}

	switch noticeCount {
	case 0:
		fmt.Print(0)
	default:
		NoticeColorFG.Print(noticeCount)
	}
	fmt.Printf(" notices) (%.3fs)\n", elapsed.Seconds())
}
