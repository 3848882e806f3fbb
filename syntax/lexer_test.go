package syntax

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func tokenize(t *testing.T, src string) []*Token {
	t.Helper()
	toks, err := NewLexer("test.yasdl", src).Tokenize()
	if err != nil {
		t.Fatalf("unexpected lexer error: %v", err)
	}
	return toks
}

func kinds(toks []*Token) []int {
	res := make([]int, len(toks))
	for i, tok := range toks {
		res[i] = tok.Kind
	}
	return res
}

func TestLexBasicTokens(t *testing.T) {
	toks := tokenize(t, "schema demo { field x : y -> z; }")

	want := []int{SCHEMA, NAME, LBRACE, FIELD, NAME, COLON, NAME, ARROW, NAME, SEMICOLON, RBRACE, EOF}
	if diff := cmp.Diff(want, kinds(toks)); diff != "" {
		t.Errorf("token kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestLexNamesAreCaseInsensitive(t *testing.T) {
	toks := tokenize(t, "FieldSet Location")

	if toks[0].Kind != FIELDSET {
		t.Errorf("expected FIELDSET keyword, got kind %d", toks[0].Kind)
	}
	if toks[1].Kind != NAME || toks[1].Value != "location" {
		t.Errorf("expected lowercased name 'location', got %q", toks[1].Value)
	}
}

func TestLexComments(t *testing.T) {
	toks := tokenize(t, "# a comment\nfield # trailing\nname")

	want := []int{FIELD, NAME, EOF}
	if diff := cmp.Diff(want, kinds(toks)); diff != "" {
		t.Errorf("token kinds mismatch (-want +got):\n%s", diff)
	}
	if toks[0].Line != 2 {
		t.Errorf("expected 'field' on line 2, got line %d", toks[0].Line)
	}
}

func TestLexStrings(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{`"hello"`, "hello"},
		{`'hello'`, "hello"},
		{`"with \"escape\""`, `with "escape"`},
		{`'tab\there'`, "tab\there"},
		{`"""triple "quoted" text"""`, `triple "quoted" text`},
		{`''`, ""},
	}

	for _, c := range cases {
		toks := tokenize(t, c.src)
		if toks[0].Kind != STRING {
			t.Errorf("%s: expected STRING token, got kind %d", c.src, toks[0].Kind)
			continue
		}
		if toks[0].Value != c.want {
			t.Errorf("%s: expected %q, got %q", c.src, c.want, toks[0].Value)
		}
	}
}

func TestLexUnterminatedString(t *testing.T) {
	_, err := NewLexer("test.yasdl", `"no end`).Tokenize()
	if err == nil {
		t.Fatal("expected a lexer error for an unterminated string")
	}
}

func TestLexNumbers(t *testing.T) {
	cases := []struct {
		src  string
		kind int
		want string
	}{
		{"100", INT, "100"},
		{"-5", INT, "-5"},
		{"+5", INT, "5"},
		{"1.5", FLOAT, "1.5"},
		{"2e10", FLOAT, "2e10"},
		{"3.5e-2", FLOAT, "3.5e-2"},
	}

	for _, c := range cases {
		toks := tokenize(t, c.src)
		if toks[0].Kind != c.kind {
			t.Errorf("%s: expected kind %d, got %d", c.src, c.kind, toks[0].Kind)
		}
		if toks[0].Value != c.want {
			t.Errorf("%s: expected value %q, got %q", c.src, c.want, toks[0].Value)
		}
	}
}

func TestLexIndexDirections(t *testing.T) {
	// +/- before a name must stay a direction marker, not a sign
	toks := tokenize(t, "fields +code -name;")

	want := []int{FIELDS, PLUS, NAME, MINUS, NAME, SEMICOLON, EOF}
	if diff := cmp.Diff(want, kinds(toks)); diff != "" {
		t.Errorf("token kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestLexIllegalCharacter(t *testing.T) {
	_, err := NewLexer("test.yasdl", "field ?").Tokenize()
	if err == nil {
		t.Fatal("expected a lexer error for an illegal character")
	}
	if err.Line != 1 || err.Col != 6 {
		t.Errorf("expected error at 1:6, got %d:%d", err.Line, err.Col)
	}
}
