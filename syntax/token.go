package syntax

// Token represents a token read in by the lexer
type Token struct {
	Kind  int
	Value string

	// Line is the line number starting at 1
	Line int

	// Col is the 0-indexed column number
	Col int
}

// The various kinds of tokens supported by the lexer
const (
	// names and literals
	NAME = iota
	STRING
	INT
	FLOAT
	NONE
	TRUE
	FALSE
	ALL

	// definition keywords
	SCHEMA
	FIELDSET
	FIELD
	INDEX
	CONSTRAINT

	// import keywords
	USE
	REQUIRE
	AS

	// modifiers
	FINAL
	ABSTRACT
	REQUIRED

	// member manipulation
	RENAME
	DELETE
	FIELDS

	// punctuation
	DOT
	COLON
	SEMICOLON
	EQUALS
	ARROW
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET
	PLUS
	MINUS

	// end of input
	EOF
)

// Reserved maps reserved words to their token kinds.  Names are
// case-insensitive; the lexer lowercases before looking them up.
var Reserved = map[string]int{
	"none":       NONE,
	"true":       TRUE,
	"false":      FALSE,
	"all":        ALL,
	"schema":     SCHEMA,
	"fieldset":   FIELDSET,
	"field":      FIELD,
	"index":      INDEX,
	"constraint": CONSTRAINT,
	"use":        USE,
	"require":    REQUIRE,
	"as":         AS,
	"final":      FINAL,
	"abstract":   ABSTRACT,
	"required":   REQUIRED,
	"rename":     RENAME,
	"delete":     DELETE,
	"fields":     FIELDS,
}

// ReservedPropertyNames lists property names with special meaning.  They are
// not keywords, but a non-property item cannot carry one of these names.
// Note that "fields" is special: it is a property name represented by a
// keyword in the source.
var ReservedPropertyNames = []string{
	"ancestors", "implements", "references", "unique", "delindexes", "fields", "cluster",
}

// IsReservedPropertyName tests a (lowercase) name against the reserved
// property name list.
func IsReservedPropertyName(name string) bool {
	for _, r := range ReservedPropertyNames {
		if r == name {
			return true
		}
	}
	return false
}

// tokenKindNames is used for syntax error messages only.
var tokenKindNames = map[int]string{
	NAME: "name", STRING: "string", INT: "integer", FLOAT: "float",
	NONE: "'none'", TRUE: "'true'", FALSE: "'false'", ALL: "'all'",
	SCHEMA: "'schema'", FIELDSET: "'fieldset'", FIELD: "'field'",
	INDEX: "'index'", CONSTRAINT: "'constraint'",
	USE: "'use'", REQUIRE: "'require'", AS: "'as'",
	FINAL: "'final'", ABSTRACT: "'abstract'", REQUIRED: "'required'",
	RENAME: "'rename'", DELETE: "'delete'", FIELDS: "'fields'",
	DOT: "'.'", COLON: "':'", SEMICOLON: "';'", EQUALS: "'='", ARROW: "'->'",
	LBRACE: "'{'", RBRACE: "'}'", LBRACKET: "'['", RBRACKET: "']'",
	PLUS: "'+'", MINUS: "'-'", EOF: "end of input",
}
