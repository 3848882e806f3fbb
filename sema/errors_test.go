package sema

import (
	"testing"

	"yasdl/report"
)

// expectFailure compiles a single schema and asserts that the given
// diagnostic code was reported.
func expectFailure(t *testing.T, code, src string) {
	t.Helper()
	_, _, ok := compileOne(t, src)
	if ok {
		t.Fatalf("compilation should have failed with %s", code)
	}
	if !hasCode(code) {
		t.Errorf("expected diagnostic %s, got %+v", code, report.Diagnostics())
	}
}

func TestSelfUseIsRejected(t *testing.T) {
	expectFailure(t, "01011", `
schema selfuse {
    use selfuse;
    guid "x";
    language "en";
}`)
}

func TestDuplicateBlockNames(t *testing.T) {
	expectFailure(t, "01041", `
schema dupname {
    guid "x";
    language "en";
    fieldset twice {
        field f { type "text"; }
        field f { type "text"; }
    }
}`)
}

func TestReservedPropertyNameAsDefinition(t *testing.T) {
	expectFailure(t, "01032", `
schema resname {
    guid "x";
    language "en";
    fieldset fs {
        field references { type "text"; }
    }
}`)
}

func TestIdIsReserved(t *testing.T) {
	expectFailure(t, "01033", `
schema idname {
    guid "x";
    language "en";
    fieldset fs {
        field id { type "text"; }
    }
}`)
}

func TestAbstractFinalConflict(t *testing.T) {
	expectFailure(t, "01061", `
schema modconflict {
    guid "x";
    language "en";
    abstract final fieldset fs {
        field f { type "text"; }
    }
}`)
}

func TestSelfImplementationIsRejected(t *testing.T) {
	expectFailure(t, "01082", `
schema selfimpl {
    guid "x";
    language "en";
    fieldset fs {
        implements fs;
        field f { type "text"; }
    }
}`)
}

func TestImplementsCycle(t *testing.T) {
	expectFailure(t, "01091", `
schema implcycle {
    guid "x";
    language "en";
    field a { implements b; type "text"; }
    field b { implements a; type "text"; }
}`)
}

func TestMultipleImplementors(t *testing.T) {
	expectFailure(t, "02011", `
schema multiimpl {
    guid "x";
    language "en";
    abstract field spec { type "text"; }
    field one { implements spec; type "text"; }
    field two { implements spec; type "text"; }
}`)
}

func TestAbstractRequiredWithoutImplementation(t *testing.T) {
	expectFailure(t, "02041", `
schema absreq {
    guid "x";
    language "en";
    fieldset fs {
        abstract required field f { type "text"; }
    }
}`)
}

func TestImplementingFinalDefinition(t *testing.T) {
	expectFailure(t, "02042", `
schema finalimpl {
    guid "x";
    language "en";
    final field locked { type "text"; }
    field other { implements locked; type "text"; }
}`)
}

func TestImplementingDefinitionWithImpAncestors(t *testing.T) {
	expectFailure(t, "02021", `
schema impanc {
    guid "x";
    language "en";
    abstract field base { type "char"; size 10; }
    field stub : =base;
    field taker { implements stub; type "text"; }
}`)
}

func TestAncestorSelfReferenceAllowsSibling(t *testing.T) {
	// The enclosing definition is excluded from the ancestor search, so a
	// nested fieldset may be named after its outermost ancestor.
	_, _, ok := compileOne(t, `
schema locidiom {
    guid "x";
    language "en";
    abstract fieldset location {
        field city { type "char"; size 50; }
    }
    fieldset office {
        fieldset location : location;
    }
}`)
	if !ok {
		t.Fatalf("the location idiom should compile, got %+v", report.Diagnostics())
	}
}

func TestReferenceToNestedFieldset(t *testing.T) {
	expectFailure(t, "04031", `
schema nestedref {
    guid "x";
    language "en";
    required fieldset holder {
        guid "h";
        fieldset inner {
            field f { type "text"; }
        }
        field bad -> inner;
    }
}`)
}

func TestIndexOnForeignField(t *testing.T) {
	expectFailure(t, "04044", `
schema idxforeign {
    guid "x";
    language "en";
    field elsewhere { type "text"; }
    fieldset holder {
        field local { type "text"; }
        index bad {
            fields elsewhere;
        }
    }
}`)
}

func TestDuplicateIndexField(t *testing.T) {
	expectFailure(t, "04045", `
schema idxdup {
    guid "x";
    language "en";
    fieldset holder {
        field f { type "text"; }
        index bad {
            fields f f;
        }
    }
}`)
}

func TestAbstractRealizedWithoutFallback(t *testing.T) {
	expectFailure(t, "05031", `
schema absreal {
    guid "x";
    language "en";
    required fieldset inv {
        guid "inv";
        field r -> target;
    }
    abstract fieldset target {
        guid "t";
        field f { type "text"; }
    }
}`)
}

func TestRealizedFieldNeedsType(t *testing.T) {
	expectFailure(t, "07054", `
schema notype {
    guid "x";
    language "en";
    required fieldset fs {
        guid "fs";
        field untyped;
    }
}`)
}

func TestNotNullOutsideField(t *testing.T) {
	expectFailure(t, "07081", `
schema nncontext {
    guid "x";
    language "en";
    required fieldset fs {
        guid "fs";
        notnull true;
        field f { type "text"; }
    }
}`)
}

func TestNotNullSetNullConflict(t *testing.T) {
	expectFailure(t, "07181", `
schema nnsetnull {
    guid "x";
    language "en";
    required fieldset fs {
        guid "fs";
        field r -> fs2 {
            notnull true;
            ondelete "setnull";
        }
    }
    required fieldset fs2 {
        guid "fs2";
        field f { type "text"; }
    }
}`)
}

func TestMissingSchemaGuid(t *testing.T) {
	expectFailure(t, "07191", `
schema noguid {
    language "en";
}`)
}

func TestUnusedDeletionWarns(t *testing.T) {
	_, _, ok := compileOne(t, `
schema unuseddel {
    guid "x";
    language "en";
    fieldset fs {
        delete ghost;
        field f { type "text"; }
    }
}`)
	if !ok {
		t.Fatalf("compilation failed: %+v", report.Diagnostics())
	}
	if !hasCode("03071") {
		t.Errorf("expected the unused deletion warning, got %+v", report.Diagnostics())
	}
}

func TestMissingLanguageWarns(t *testing.T) {
	_, _, ok := compileOne(t, `
schema nolang {
    guid "x";
}`)
	if !ok {
		t.Fatalf("compilation failed: %+v", report.Diagnostics())
	}
	if !hasCode("07141") {
		t.Errorf("expected the missing language warning, got %+v", report.Diagnostics())
	}
}

func TestStrictModeStopsOnWarnings(t *testing.T) {
	_, _, ok := compileOne(t, `
schema strictw {
    guid "x";
}`, Strict())
	if ok {
		t.Fatal("strict mode should stop on the missing language warning")
	}
}

func TestDriverChecks(t *testing.T) {
	_, _, ok := compileOne(t, `
schema drv {
    guid "x";
    language "en";
    required fieldset fs {
        guid "fs";
        field nosize { type "char"; }
        field badtype { type "frobnicate"; }
    }
}`, WithDriver(BaseTypes))
	if ok {
		t.Fatal("driver checks should have failed")
	}
	if !hasCode("08011") {
		t.Errorf("expected an unsupported type error, got %+v", report.Diagnostics())
	}
	if !hasCode("08012") {
		t.Errorf("expected a missing size error, got %+v", report.Diagnostics())
	}
}

func TestUniversalReferenceHasNoType(t *testing.T) {
	expectFailure(t, "07053", `
schema univtype {
    guid "x";
    language "en";
    required fieldset fs {
        guid "fs";
        field anyref {
            references any;
            type "text";
        }
        field f2 { type "text"; }
    }
}`)
}
