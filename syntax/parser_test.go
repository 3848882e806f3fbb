package syntax

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"yasdl/ast"
)

func parse(t *testing.T, src string) *ast.Schema {
	t.Helper()
	schema, err := Parse("test.yasdl", src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return schema
}

func childNames(it ast.Item) []string {
	var names []string
	for _, child := range it.Base().Children {
		names = append(names, child.Base().Name)
	}
	return names
}

func TestParseSchemaHeader(t *testing.T) {
	schema := parse(t, `
schema cmr.partner {
    use venus;
    require cmr.core as core;
    guid "g1";
}`)

	if schema.PackageName != "cmr.partner" {
		t.Errorf("expected package name cmr.partner, got %s", schema.PackageName)
	}
	if schema.Name != "partner" {
		t.Errorf("expected simple name partner, got %s", schema.Name)
	}

	if len(schema.Uses) != 2 {
		t.Fatalf("expected 2 use statements, got %d", len(schema.Uses))
	}
	if schema.Uses[0].Name != "venus" || schema.Uses[0].Require || schema.Uses[0].Alias != "" {
		t.Errorf("unexpected first use: %+v", schema.Uses[0])
	}
	if schema.Uses[1].Name != "cmr.core" || !schema.Uses[1].Require || schema.Uses[1].Alias != "core" {
		t.Errorf("unexpected second use: %+v", schema.Uses[1])
	}
}

func TestParseColonBecomesAncestors(t *testing.T) {
	schema := parse(t, `
schema demo {
    fieldset b : a =c;
}`)

	fs := schema.Children[0].(*ast.FieldSet)
	if fs.Name != "b" {
		t.Fatalf("expected fieldset b, got %s", fs.Name)
	}

	anc, ok := fs.Children[0].(*ast.Property)
	if !ok || anc.Name != "ancestors" {
		t.Fatalf("expected an ancestors property, got %+v", fs.Children[0])
	}
	if len(anc.Args) != 2 {
		t.Fatalf("expected 2 ancestors, got %d", len(anc.Args))
	}

	first := anc.Args[0].(*ast.DottedName)
	second := anc.Args[1].(*ast.DottedName)
	if first.Value != "a" || first.Imp {
		t.Errorf("unexpected first ancestor: %+v", first)
	}
	if second.Value != "c" || !second.Imp {
		t.Errorf("expected imp-name =c, got %+v", second)
	}
}

func TestParseArrowBecomesReferences(t *testing.T) {
	schema := parse(t, `
schema demo {
    fieldset invoice {
        field issuer -> person;
    }
}`)

	invoice := schema.Children[0].(*ast.FieldSet)
	issuer := invoice.Children[0].(*ast.Field)

	refs, ok := issuer.Children[len(issuer.Children)-1].(*ast.Property)
	if !ok || refs.Name != "references" {
		t.Fatalf("expected a references property, got %+v", issuer.Children)
	}
	dn := refs.Args[0].(*ast.DottedName)
	if dn.Value != "person" {
		t.Errorf("expected reference to person, got %s", dn.Value)
	}
}

func TestParseFieldBody(t *testing.T) {
	schema := parse(t, `
schema demo {
    abstract field name {
        type "char";
        size 100;
        notnull true;
        displaylabel none;
    }
}`)

	f := schema.Children[0].(*ast.Field)
	if diff := cmp.Diff([]string{"abstract"}, f.Modifiers); diff != "" {
		t.Errorf("modifiers mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"type", "size", "notnull", "displaylabel"}, childNames(f)); diff != "" {
		t.Errorf("property names mismatch (-want +got):\n%s", diff)
	}

	size := f.Children[1].(*ast.Property)
	if len(size.Args) != 1 || size.Args[0] != 100 {
		t.Errorf("expected size argument 100, got %+v", size.Args)
	}
	notnull := f.Children[2].(*ast.Property)
	if len(notnull.Args) != 1 || notnull.Args[0] != true {
		t.Errorf("expected notnull argument true, got %+v", notnull.Args)
	}
	label := f.Children[3].(*ast.Property)
	if _, ok := label.Args[0].(ast.None); !ok {
		t.Errorf("expected none argument, got %+v", label.Args)
	}
}

func TestParseFieldSetBody(t *testing.T) {
	schema := parse(t, `
schema demo {
    fieldset person {
        field code { type "char"; size 10; }
        fieldset address;
        delete something;
        index idx_code {
            fields +code;
            unique true;
        }
        constraint chk_code {
            check "code <> ''";
        }
    }
}`)

	person := schema.Children[0].(*ast.FieldSet)
	want := []string{"code", "address", "something", "idx_code", "chk_code"}
	if diff := cmp.Diff(want, childNames(person)); diff != "" {
		t.Errorf("member names mismatch (-want +got):\n%s", diff)
	}

	if _, ok := person.Children[2].(*ast.Deletion); !ok {
		t.Errorf("expected a deletion, got %+v", person.Children[2])
	}

	idx := person.Children[3].(*ast.Index)
	fields := idx.Children[0].(*ast.Property)
	if fields.Name != "fields" {
		t.Fatalf("expected fields property, got %s", fields.Name)
	}
	dn := fields.Args[0].(*ast.DottedName)
	if dn.Value != "code" || dn.Direction != "asc" {
		t.Errorf("unexpected index field: %+v", dn)
	}

	cons := person.Children[4].(*ast.Constraint)
	check := cons.Children[0].(*ast.Property)
	if check.Name != "check" || check.Args[0] != "code <> ''" {
		t.Errorf("unexpected check property: %+v", check)
	}
}

func TestParseImplementsAll(t *testing.T) {
	schema := parse(t, `
schema demo {
    fieldset both : a b {
        implements all;
    }
}`)

	both := schema.Children[0].(*ast.FieldSet)
	impl := both.Children[0].(*ast.Property)
	if impl.Name != "implements" {
		t.Fatalf("expected implements property, got %s", impl.Name)
	}
	if _, ok := impl.Args[0].(*ast.All); !ok {
		t.Errorf("expected the all marker, got %+v", impl.Args[0])
	}
}

func TestParseDottedNameForms(t *testing.T) {
	schema := parse(t, `
schema demo {
    fieldset x {
        cluster schema.a.b;
        prop c.d[fieldset field];
    }
}`)

	x := schema.Children[0].(*ast.FieldSet)

	abs := x.Children[0].(*ast.Property).Args[0].(*ast.DottedName)
	if !abs.Absolute || abs.Value != "a.b" {
		t.Errorf("expected absolute name a.b, got %+v", abs)
	}

	min := x.Children[1].(*ast.Property).Args[0].(*ast.DottedName)
	if min.Value != "c.d" {
		t.Errorf("expected name c.d, got %s", min.Value)
	}
	if min.MinKinds != ast.KindFieldSet|ast.KindField {
		t.Errorf("expected fieldset|field min-classes, got %v", min.MinKinds)
	}
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse("test.yasdl", "schema demo { field ; }")
	if err == nil {
		t.Fatal("expected a syntax error")
	}
	if err.Line != 1 {
		t.Errorf("expected error on line 1, got %d", err.Line)
	}
}
