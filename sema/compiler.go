package sema

import (
	"yasdl/ast"
	"yasdl/loader"
	"yasdl/report"
)

// Compiler is the semantic schema checker.  It runs the analysis phases 1-8
// over a loaded schema registry, annotating the AST in append-only fashion:
// each phase reads the state left by the previous one and writes new
// attributes that are never mutated again.
type Compiler struct {
	res *loader.Result

	// driver enables the phase-8 database specific checks when set.
	driver TypeRegistry

	// strict treats warnings as errors for the purpose of stopping the
	// pipeline.
	strict bool

	// allGuids maps guid values to the definitions carrying them; built in
	// phase 7.
	allGuids map[string]ast.Item

	// toplevels collects the realized toplevel fieldsets in load order;
	// built in phase 5.
	toplevels []*ast.FieldSet
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithDriver enables the driver specific checks of phase 8.
func WithDriver(driver TypeRegistry) Option {
	return func(c *Compiler) { c.driver = driver }
}

// Strict makes warnings stop the pipeline like errors do.
func Strict() Option {
	return func(c *Compiler) { c.strict = true }
}

// NewCompiler creates a compiler over a loaded schema registry.
func NewCompiler(res *loader.Result, opts ...Option) *Compiler {
	c := &Compiler{res: res}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// proceed tells whether the pipeline may enter the next phase step.  All
// violations of one step are reported before this gate is consulted.
func (c *Compiler) proceed() bool {
	if !report.ShouldProceed() {
		return false
	}
	if c.strict && report.WarningCount() > 0 {
		return false
	}
	return true
}

// Compile runs all analysis phases.  It returns true when the compilation
// was successful; diagnostics have been reported either way.
func (c *Compiler) Compile() bool {
	// Phase 1 - local semantic checks.
	c.phase1Step1()
	if !c.proceed() {
		return false
	}
	for _, step := range []func(ast.Item){
		c.phase1Step3, c.phase1Step4, c.phase1Step5,
		c.phase1Step6, c.phase1Step7, c.phase1Step8,
	} {
		c.res.Iterate(0, step)
		if !c.proceed() {
			return false
		}
	}
	c.phase1Step9()
	if !c.proceed() {
		return false
	}

	// Phase 2 - building implementation trees.
	for _, step := range []func(){
		c.phase2Step1, c.phase2Step2, c.phase2Step3,
		c.phase2Step4, c.phase2Step5,
	} {
		step()
		if !c.proceed() {
			return false
		}
	}

	// Phase 3 - building the inheritance graph.
	c.res.Iterate(0, c.phase3Step1)
	if !c.proceed() {
		return false
	}
	for _, step := range []func(){
		c.phase3Step2, c.phase3Step3, c.phase3Step4,
		c.phase3Step5, c.phase3Step6, c.phase3Step7,
	} {
		step()
		if !c.proceed() {
			return false
		}
	}

	// Phase 4 - binding all other names dynamically.
	for _, step := range []func(ast.Item){
		c.phase4Step1, c.phase4Step2, c.phase4Step3,
		c.phase4Step4, c.phase4Step5,
	} {
		c.res.Iterate(0, step)
		if !c.proceed() {
			return false
		}
	}

	// Phase 5 - finding out what is realized.
	c.phase5Realize()
	if !c.proceed() {
		return false
	}
	c.res.Iterate(0, c.phase5Step4)
	if !c.proceed() {
		return false
	}

	// Phase 6 - checking that required definitions are realized.
	c.phase6Step1()
	if !c.proceed() {
		return false
	}

	// Phase 7 - global checks.
	c.allGuids = make(map[string]ast.Item)
	for _, step := range c.phase7Steps() {
		c.res.Iterate(0, step)
		if !c.proceed() {
			return false
		}
	}

	// Phase 8 - database driver dependent checks.
	if c.driver != nil {
		c.res.Iterate(0, c.phase8Step1)
		if !c.proceed() {
			return false
		}
	}

	return true
}

// -----------------------------------------------------------------------------
// diagnostic helpers

// itemContext builds the report context for a diagnostic attached to an AST
// item.
func itemContext(it ast.Item) *report.Context {
	b := it.Base()
	ctx := &report.Context{
		DefPath: ast.Path(it),
		Line:    b.Line,
		Col:     b.Col,
	}
	if schema := ast.OwnerSchema(it); schema != nil {
		ctx.Origin = schema.Origin
		ctx.SourceLine = schema.SourceLineAt(b.Line)
	}
	return ctx
}

func (c *Compiler) errorAt(it ast.Item, code, msg string) {
	report.ReportError(itemContext(it), code, msg)
}

func (c *Compiler) warnAt(it ast.Item, code, msg string) {
	report.ReportWarning(itemContext(it), code, msg)
}

func (c *Compiler) noticeAt(it ast.Item, code, msg string) {
	report.ReportNotice(itemContext(it), code, msg)
}
