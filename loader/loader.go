package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"yasdl/ast"
	"yasdl/common"
	"yasdl/report"
	"yasdl/syntax"
)

// Loader resolves use/require statements, fetches schema sources and parses
// them into a Result.  Two origins resolving to the same canonical key are
// the same schema; a schema is never parsed twice.
type Loader struct {
	// SearchPath is the list of directories searched for local schema
	// files, after the directory of the importing schema itself.
	SearchPath []string

	// FetchFunc loads source text for an origin.  Defaults to Fetch; tests
	// substitute their own.
	FetchFunc func(string) (string, error)
}

// Result is the registry of loaded schemas.  It is the input of the semantic
// analyzer.
type Result struct {
	// Schemas maps canonical origin keys to parsed schemas.
	Schemas map[string]*ast.Schema

	// Origins lists the origin keys in load order, so that iteration over
	// the registry is deterministic.
	Origins []string

	// MainOrigins lists the top schemas: the ones passed on the command
	// line, plus the built-in venus schema.
	MainOrigins []string
}

// Iterate visits every item of every loaded schema in load order, depth
// first, restricted by the kind mask.
func (r *Result) Iterate(kinds ast.Kind, fn func(ast.Item)) {
	for _, origin := range r.Origins {
		ast.Iterate(r.Schemas[origin], kinds, fn)
	}
}

// SchemaByPackage returns the loaded schema with the given package name, or
// nil.
func (r *Result) SchemaByPackage(name string) *ast.Schema {
	for _, origin := range r.Origins {
		if r.Schemas[origin].PackageName == name {
			return r.Schemas[origin]
		}
	}
	return nil
}

// NewLoader creates a loader over the given search path.
func NewLoader(searchPath []string) *Loader {
	return &Loader{SearchPath: searchPath, FetchFunc: Fetch}
}

// Load fetches and parses the given top schemas and the transitive closure
// of their imports.  Syntax errors and I/O failures are terminal and
// returned as an error; phase-0 semantic violations (bad package names,
// missing aliases, duplicate packages) are reported through the report
// package, and the caller must consult report.ShouldProceed.
func (l *Loader) Load(tops []string) (*Result, error) {
	res := &Result{Schemas: make(map[string]*ast.Schema)}

	// The built-in venus schema is implicitly required by every top schema.
	queue := []string{VenusOrigin}
	res.MainOrigins = append(res.MainOrigins, VenusOrigin)

	for _, top := range tops {
		origin, err := l.canonicalTop(top)
		if err != nil {
			return nil, err
		}
		if !containsString(res.MainOrigins, origin) {
			res.MainOrigins = append(res.MainOrigins, origin)
			queue = append(queue, origin)
		}
	}

	// Recursively parse all (sub)schemas until no unresolved imports remain.
	for len(queue) > 0 {
		origin := queue[0]
		queue = queue[1:]
		if _, ok := res.Schemas[origin]; ok {
			continue
		}

		schema, err := l.parseOrigin(origin)
		if err != nil {
			return nil, err
		}
		res.Schemas[origin] = schema
		res.Origins = append(res.Origins, origin)

		for _, use := range schema.Uses {
			target, err := l.resolveUse(schema, use)
			if err != nil {
				return nil, err
			}
			use.Origin = target
			if _, ok := res.Schemas[target]; !ok {
				queue = append(queue, target)
			}
		}
	}

	// Connect use statements to their schemas.
	for _, origin := range res.Origins {
		for _, use := range res.Schemas[origin].Uses {
			use.Schema = res.Schemas[use.Origin]
		}
	}

	l.checkAliases(res)
	l.checkPackageNames(res)

	// Set up ownership links and static name caches for the binder.
	for _, origin := range res.Origins {
		schema := res.Schemas[origin]
		schema.SetupOwners()
		ast.CacheStaticNames(schema)
	}

	return res, nil
}

// canonicalTop canonicalizes a top-schema origin given on the command line.
// Local origins must be .yasdl file paths; they are made absolute with all
// symlinks resolved so that re-loads through different spellings are
// detected.
func (l *Loader) canonicalTop(top string) (string, error) {
	if top == VenusOrigin || IsURI(top) {
		return top, nil
	}

	if !strings.HasSuffix(top, common.SrcFileExtension) {
		return "", fmt.Errorf("invalid schema path %q: must be an URI or a %s file path",
			top, common.SrcFileExtension)
	}
	return canonicalPath(top)
}

func canonicalPath(fpath string) (string, error) {
	abs, err := filepath.Abs(fpath)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}

// parseOrigin fetches and parses one schema.  The schema's own search path
// is its source directory followed by the loader search path.
func (l *Loader) parseOrigin(origin string) (*ast.Schema, error) {
	var data string
	var err error
	if origin == VenusOrigin {
		data = venusSource
	} else {
		data, err = l.FetchFunc(origin)
		if err != nil {
			return nil, fmt.Errorf("cannot load schema %s: %w", origin, err)
		}
	}

	schema, serr := syntax.Parse(origin, data)
	if serr != nil {
		return nil, serr
	}

	if origin != VenusOrigin && !IsURI(origin) {
		srcDir := filepath.Dir(origin)
		schema.SearchPath = append([]string{srcDir}, l.SearchPath...)
	} else {
		schema.SearchPath = l.SearchPath
	}
	return schema, nil
}

// resolveUse determines the canonical origin of a use/require target.
func (l *Loader) resolveUse(schema *ast.Schema, use *ast.Use) (string, error) {
	if IsURI(use.Name) {
		return use.Name, nil
	}
	if use.Name == "venus" {
		return VenusOrigin, nil
	}

	rel := strings.ReplaceAll(use.Name, ".", string(os.PathSeparator)) + common.SrcFileExtension
	for _, dir := range schema.SearchPath {
		fpath := filepath.Join(dir, rel)
		if info, err := os.Stat(fpath); err == nil && !info.IsDir() {
			return canonicalPath(fpath)
		}
	}

	return "", fmt.Errorf("%q:%d: schema %s cannot be located (search path: %s)",
		schema.Origin, use.Line, use.Name, strings.Join(schema.SearchPath, string(os.PathListSeparator)))
}

// checkAliases enforces the alias rules: a URI import and any dotted import
// must declare an alias; only a single simple name may be used verbatim.
func (l *Loader) checkAliases(res *Result) {
	for _, origin := range res.Origins {
		schema := res.Schemas[origin]
		for _, use := range schema.Uses {
			if use.Alias != "" {
				continue
			}
			if IsURI(use.Name) {
				report.ReportError(useContext(schema, use), "00011",
					"an alias is mandatory for URI imports")
			} else if strings.Contains(use.Name, ".") {
				report.ReportError(useContext(schema, use), "00012",
					"an alias is mandatory unless the imported name is a single simple name")
			}
		}
	}
}

// checkPackageNames runs the post-load identity checks: every locally loaded
// schema's declared package name must match the path used to reach it, every
// URI-loaded schema's package name must start with the reverse-DNS of its
// host, and no two loaded schemas may share a package name.
func (l *Loader) checkPackageNames(res *Result) {
	for _, origin := range res.Origins {
		schema := res.Schemas[origin]
		switch {
		case origin == VenusOrigin:
			// builtin, nothing to check
		case IsURI(origin):
			revdns := reverseDNS(HostOf(origin))
			if _, ok := stripPackagePrefix(schema.PackageName, revdns); !ok {
				report.ReportError(schemaContext(schema), "00021", fmt.Sprintf(
					"package name %s of a remote schema must start with the reverse domain name %s of its host",
					schema.PackageName, revdns))
			}
		default:
			rel := strings.ReplaceAll(schema.PackageName, ".", string(os.PathSeparator)) + common.SrcFileExtension
			if !strings.HasSuffix(origin, string(os.PathSeparator)+rel) && filepath.Base(origin) != rel {
				report.ReportError(schemaContext(schema), "00022", fmt.Sprintf(
					"declared package name %s does not match the file location %s",
					schema.PackageName, origin))
			}
		}
	}

	// No two loaded schemas may share a package name.
	byName := make(map[string]*ast.Schema)
	for _, origin := range res.Origins {
		schema := res.Schemas[origin]
		if other, ok := byName[schema.PackageName]; ok {
			msg := fmt.Sprintf("duplicate package name %s", schema.PackageName)
			report.ReportError(schemaContext(other), "00023", msg)
			report.ReportError(schemaContext(schema), "00023", msg)
		} else {
			byName[schema.PackageName] = schema
		}
	}
}

// reverseDNS turns a host name into its reverse domain name.  The optional
// "www." prefix of the host is ignored.
func reverseDNS(host string) string {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	parts := strings.Split(host, ".")
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

func stripPackagePrefix(name, prefix string) (string, bool) {
	if name == prefix {
		return "", true
	}
	if strings.HasPrefix(name, prefix+".") {
		return name[len(prefix)+1:], true
	}
	return "", false
}

func containsString(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

func schemaContext(schema *ast.Schema) *report.Context {
	return &report.Context{
		Origin:     schema.Origin,
		DefPath:    schema.PackageName,
		SourceLine: schema.SourceLineAt(schema.Line),
		Line:       schema.Line,
		Col:        schema.Col,
	}
}

func useContext(schema *ast.Schema, use *ast.Use) *report.Context {
	return &report.Context{
		Origin:     schema.Origin,
		DefPath:    schema.PackageName,
		SourceLine: schema.SourceLineAt(use.Line),
		Line:       use.Line,
		Col:        use.Col,
	}
}
