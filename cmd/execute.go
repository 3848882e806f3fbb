package cmd

import (
	"os"

	"github.com/ComedicChimera/olive"

	"yasdl/common"
	"yasdl/config"
	"yasdl/loader"
	"yasdl/report"
	"yasdl/sema"
)

// Execute runs the main `yasdl` application
func Execute() {
	cfg, err := config.Load()
	if err != nil {
		report.ReportFatal("Config Error", err)
	}

	// set up the argument parser and all its extended commands and arguments
	cli := olive.NewCLI("yasdl", "yasdl is a compiler for YASDL schema sets", true)
	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "the compiler log level", false,
		[]string{"silent", "error", "warning", "verbose"})
	if cfg.LogLevel != "" {
		logLvlArg.SetDefaultValue(cfg.LogLevel)
	} else {
		logLvlArg.SetDefaultValue("verbose")
	}

	compileCmd := cli.AddSubcommand("compile", "compile a schema set", true)
	compileCmd.AddPrimaryArg("schema-path", "the path or URI of the top schema", true)
	compileCmd.AddStringArg("driver", "d", "the database driver to check types against", false)
	compileCmd.AddFlag("strict", "s", "treat warnings as errors")

	checkCmd := cli.AddSubcommand("check", "check a schema set and report diagnostics", true)
	checkCmd.AddPrimaryArg("schema-path", "the path or URI of the top schema", true)
	checkCmd.AddStringArg("driver", "d", "the database driver to check types against", false)
	checkCmd.AddFlag("strict", "s", "treat warnings as errors")

	cli.AddSubcommand("version", "print the yasdl version", false)

	// run the argument parser
	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		report.PrintErrorMessage("CLI Usage Error", err)
		os.Exit(common.ExitIO)
	}

	// process the inputed command line
	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "compile", "check":
		execCompileCommand(cfg, subResult, result.Arguments["loglevel"].(string))
	case "version":
		report.PrintInfoMessage("YASDL Version", common.YASDLVersion)
	}
}

// execCompileCommand executes the compile/check subcommand and handles all
// errors, translating the outcome to the documented exit codes.
func execCompileCommand(cfg *config.Config, result *olive.ArgParseResult, loglevel string) {
	topPath, _ := result.PrimaryArg()

	report.Initialize(loglevel)
	report.ReportCompileHeader([]string{topPath})

	l := loader.NewLoader(cfg.SearchPath)
	res, err := l.Load([]string{topPath})
	if err != nil {
		// syntax errors and I/O failures are terminal
		report.PrintErrorMessage("Load Error", err)
		os.Exit(common.ExitIO)
	}
	if !report.ShouldProceed() {
		report.ReportCompilationFinished()
		os.Exit(common.ExitSemantic)
	}

	var opts []sema.Option
	driverName := cfg.Driver
	if arg, ok := result.Arguments["driver"]; ok {
		driverName = arg.(string)
	}
	if driverName != "" {
		opts = append(opts, sema.WithDriver(sema.BaseTypes))
	}
	if result.HasFlag("strict") {
		opts = append(opts, sema.Strict())
	}

	c := sema.NewCompiler(res, opts...)
	ok := c.Compile()
	report.ReportCompilationFinished()
	if !ok {
		os.Exit(common.ExitSemantic)
	}
}
