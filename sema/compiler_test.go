package sema

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"yasdl/ast"
	"yasdl/loader"
	"yasdl/report"
)

// compileFiles writes the given schema files into a temp dir, loads the tops
// and runs the compiler over the result.
func compileFiles(t *testing.T, files map[string]string, tops []string, opts ...Option) (*Compiler, *loader.Result, bool) {
	t.Helper()
	report.Initialize("silent")

	dir := t.TempDir()
	for relPath, src := range files {
		fpath := filepath.Join(dir, filepath.FromSlash(relPath))
		if err := os.MkdirAll(filepath.Dir(fpath), 0755); err != nil {
			t.Fatal(err)
		}
		if err := ioutil.WriteFile(fpath, []byte(src), 0644); err != nil {
			t.Fatal(err)
		}
	}

	var topPaths []string
	for _, top := range tops {
		topPaths = append(topPaths, filepath.Join(dir, filepath.FromSlash(top)))
	}

	l := loader.NewLoader([]string{dir})
	res, err := l.Load(topPaths)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if !report.ShouldProceed() {
		t.Fatalf("unexpected loader diagnostics: %+v", report.Diagnostics())
	}

	c := NewCompiler(res, opts...)
	return c, res, c.Compile()
}

func compileOne(t *testing.T, src string, opts ...Option) (*Compiler, *loader.Result, bool) {
	t.Helper()
	pkg := packageNameOf(t, src)
	return compileFiles(t, map[string]string{pkg + ".yasdl": src}, []string{pkg + ".yasdl"}, opts...)
}

func packageNameOf(t *testing.T, src string) string {
	t.Helper()
	rest := strings.TrimSpace(src)
	if !strings.HasPrefix(rest, "schema") {
		t.Fatal("test schema must start with the schema keyword")
	}
	rest = strings.TrimSpace(rest[len("schema"):])
	end := strings.IndexAny(rest, " \t\r\n{")
	return rest[:end]
}

func hasCode(code string) bool {
	for _, d := range report.Diagnostics() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func hasCodeAt(code, defPath string) bool {
	for _, d := range report.Diagnostics() {
		if d.Code == code && d.Context != nil && d.Context.DefPath == defPath {
			return true
		}
	}
	return false
}

func findDef(t *testing.T, res *loader.Result, path string) ast.Item {
	t.Helper()
	var found ast.Item
	res.Iterate(0, func(it ast.Item) {
		if ast.Path(it) == path {
			found = it
		}
	})
	if found == nil {
		t.Fatalf("definition %s not found", path)
	}
	return found
}

func fieldNamesOf(it ast.Item) []string {
	var names []string
	for _, path := range ast.ContainedPaths(it, ast.KindField) {
		names = append(names, path[len(path)-1].Base().Name)
	}
	return names
}

// -----------------------------------------------------------------------------
// scenarios

// S1: member merge order with a deletion.
func TestScenarioMemberMergeOrder(t *testing.T) {
	_, res, ok := compileOne(t, `
schema s1 {
    guid "s1";
    language "en";
    abstract fieldset a {
        field f1 { type "char"; size 1; }
        field f2 { type "char"; size 1; }
        field f3 { type "char"; size 1; }
    }
    fieldset b : a {
        delete f2;
    }
}`)
	if !ok {
		t.Fatalf("compilation failed: %+v", report.Diagnostics())
	}

	b := findDef(t, res, "s1.b")
	if diff := cmp.Diff([]string{"f1", "f3"}, fieldNamesOf(b)); diff != "" {
		t.Errorf("members of b mismatch (-want +got):\n%s", diff)
	}
	for _, m := range b.Base().Members() {
		if ast.FinalOf(m) != m {
			t.Errorf("member %s is not its own final implementor", m.Base().Name)
		}
	}
}

// S2: an imp-name ancestor inherits from the final implementation.
func TestScenarioImpNameAncestor(t *testing.T) {
	_, res, ok := compileOne(t, `
schema s2 {
    guid "s2";
    language "en";
    abstract field name { type "char"; size 100; }
    field firstname : =name { reqlevel "mandatory"; }
    final field goodname { implements name; type "text"; }
}`)
	if !ok {
		t.Fatalf("compilation failed: %+v", report.Diagnostics())
	}

	firstname := findDef(t, res, "s2.firstname").(*ast.Field)
	goodname := findDef(t, res, "s2.goodname")

	if got := firstname.Type(); got != "text" {
		t.Errorf("firstname.type = %q, want \"text\"", got)
	}
	if got := firstname.Size(); got != 100 {
		t.Errorf("firstname.size = %d, want 100", got)
	}
	if got := firstname.ReqLevel(); got != "mandatory" {
		t.Errorf("firstname.reqlevel = %q, want \"mandatory\"", got)
	}
	if len(firstname.Ancestors) != 1 || firstname.Ancestors[0] != goodname {
		t.Errorf("firstname's effective ancestor should be goodname, got %v", firstname.Ancestors)
	}
}

// S3: stub reimplementation under new names keeps inherited indexes working.
func TestScenarioStubReimplementationRename(t *testing.T) {
	c, res, ok := compileOne(t, `
schema indexes_04 {
    guid "s3";
    language "en";
    abstract fieldset outer {
        field code { type "char"; size 10; }
        field name { type "char"; size 100; }
        index uidx_code {
            fields code;
            unique true;
        }
        index idx_name {
            fields name;
        }
    }
    required fieldset outer_3 : outer {
        implements all;
        guid "outer3";
        field code3 { implements schema.outer.code; type "char"; size 10; }
        field name3 { implements schema.outer.name; type "char"; size 100; }
        field code { type "char"; size 10; }
    }
}`)
	if !ok {
		t.Fatalf("compilation failed: %+v", report.Diagnostics())
	}

	outer3 := findDef(t, res, "indexes_04.outer_3")
	if !outer3.Base().Realized || !outer3.Base().Toplevel {
		t.Fatal("outer_3 should be a realized toplevel fieldset")
	}
	if diff := cmp.Diff([]string{"code3", "name3", "code"}, fieldNamesOf(outer3)); diff != "" {
		t.Errorf("fields of outer_3 mismatch (-want +got):\n%s", diff)
	}

	comp := c.Result()
	if len(comp.Toplevels) != 1 {
		t.Fatalf("expected 1 toplevel fieldset, got %d", len(comp.Toplevels))
	}
	top := comp.Toplevels[0]
	if top.Name() != "outer_3" {
		t.Errorf("unexpected toplevel %s", top.Name())
	}

	idxTargets := make(map[string]string)
	for _, ix := range top.Indexes {
		fields := ix.Fields()
		dn := fields.Args[0].(*ast.DottedName)
		idxTargets[ix.Name] = dn.Ref.Base().Name
	}
	want := map[string]string{"uidx_code": "code3", "idx_name": "name3"}
	if diff := cmp.Diff(want, idxTargets); diff != "" {
		t.Errorf("index targets mismatch (-want +got):\n%s", diff)
	}
}

// S4: a required member hidden by multiple inheritance must be reported.
func TestScenarioRequiredUnrealized(t *testing.T) {
	_, _, ok := compileFiles(t, map[string]string{
		"cmr.yasdl": `
schema cmr {
    guid "cmr";
    language "en";
    abstract fieldset partner {
        required field name { type "char"; size 100; }
    }
    abstract fieldset customer : partner {
        field custcode { type "char"; size 10; }
    }
}`,
		"app.yasdl": `
schema app {
    require cmr as c;
    guid "app";
    language "en";
    required fieldset partner_customer : c.partner c.customer {
        implements all;
        guid "pc";
        delete name;
        field code { type "char"; size 20; }
    }
}`,
	}, []string{"app.yasdl"})

	if ok {
		t.Fatal("compilation should have failed")
	}
	if !hasCodeAt("06011", "cmr.partner.name") {
		t.Errorf("expected a phase-6 error citing cmr.partner.name, got %+v", report.Diagnostics())
	}
}

// S5: realization propagates through required fieldsets and references.
func TestScenarioRealizationPropagation(t *testing.T) {
	_, res, ok := compileOne(t, `
schema s5 {
    guid "s5";
    language "en";
    required fieldset invoice {
        guid "inv";
        field issuer -> person;
        field amount { type "numeric"; precision 10; }
    }
    fieldset person {
        guid "person";
        field fullname { type "char"; size 100; }
        fieldset address {
            field city { type "char"; size 50; }
        }
    }
}`)
	if !ok {
		t.Fatalf("compilation failed: %+v", report.Diagnostics())
	}

	invoice := findDef(t, res, "s5.invoice")
	person := findDef(t, res, "s5.person")
	address := findDef(t, res, "s5.person.address")
	city := findDef(t, res, "s5.person.address.city")

	if !invoice.Base().Realized || !invoice.Base().Toplevel {
		t.Error("invoice should be realized and toplevel")
	}
	if !person.Base().Realized || !person.Base().Toplevel {
		t.Error("person should be realized and toplevel")
	}
	if !address.Base().Realized || address.Base().Toplevel {
		t.Error("address should be realized but not toplevel")
	}
	if !city.Base().Realized {
		t.Error("city should be realized")
	}

	issuer := findDef(t, res, "s5.invoice.issuer").(*ast.Field)
	if got := issuer.Type(); got != "identifier" {
		t.Errorf("a referencing field has type %q, want \"identifier\"", got)
	}
}

// S6: an ancestor cycle stops the pipeline in phase 3.
func TestScenarioAncestorCycle(t *testing.T) {
	_, _, ok := compileOne(t, `
schema s6 {
    guid "s6";
    language "en";
    field a : b;
    field b : c;
    field c : a;
}`)
	if ok {
		t.Fatal("compilation should have failed")
	}
	if !hasCode("03021") {
		t.Errorf("expected the ancestor cycle error, got %+v", report.Diagnostics())
	}

	// phases 4 and later must not have run
	for _, d := range report.Diagnostics() {
		if strings.HasPrefix(d.Code, "04") || strings.HasPrefix(d.Code, "05") ||
			strings.HasPrefix(d.Code, "06") || strings.HasPrefix(d.Code, "07") {
			t.Errorf("phase 4+ diagnostic %s reported after a phase-3 error", d.Code)
		}
	}
}
