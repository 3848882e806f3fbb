package syntax

import (
	"strconv"
	"strings"

	"yasdl/ast"
)

// Parser is a recursive descent parser producing an ast.Schema from a token
// stream.  The grammar is small enough that one token of lookahead suffices.
type Parser struct {
	origin string
	toks   []*Token
	pos    int
}

// Parse parses one schema document.  The returned schema has its source lines
// attached for diagnostics; owner links and name caches are set up by the
// loader once the whole schema set is known.
func Parse(origin, data string) (*ast.Schema, *Error) {
	lexer := NewLexer(origin, data)
	toks, err := lexer.Tokenize()
	if err != nil {
		return nil, err
	}

	p := &Parser{origin: origin, toks: toks}
	schema, err := p.parseSchema()
	if err != nil {
		return nil, err
	}

	schema.Origin = origin
	schema.SourceLines = strings.Split(data, "\n")
	return schema, nil
}

func (p *Parser) tok() *Token {
	return p.toks[p.pos]
}

func (p *Parser) advance() *Token {
	t := p.toks[p.pos]
	if t.Kind != EOF {
		p.pos++
	}
	return t
}

func (p *Parser) errorf(t *Token, msg string) *Error {
	return &Error{Origin: p.origin, Line: t.Line, Col: t.Col, Message: msg}
}

func (p *Parser) expect(kind int) (*Token, *Error) {
	t := p.tok()
	if t.Kind != kind {
		return nil, p.errorf(t, "expected "+tokenKindNames[kind]+", found "+tokenKindNames[t.Kind])
	}
	return p.advance(), nil
}

// -----------------------------------------------------------------------------

// parseSchema parses: SCHEMA schema_name '{' uses defs '}'
func (p *Parser) parseSchema() (*ast.Schema, *Error) {
	start, err := p.expect(SCHEMA)
	if err != nil {
		return nil, err
	}

	pkgName, err := p.parsePackageName()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(LBRACE); err != nil {
		return nil, err
	}

	schema := &ast.Schema{PackageName: pkgName}
	parts := ast.SplitName(pkgName)
	schema.Name = parts[len(parts)-1]
	schema.Line, schema.Col = start.Line, start.Col

	for p.tok().Kind == USE || p.tok().Kind == REQUIRE {
		use, err := p.parseUse()
		if err != nil {
			return nil, err
		}
		schema.Uses = append(schema.Uses, use)
	}

	for p.tok().Kind != RBRACE {
		item, err := p.parseSchemaItem()
		if err != nil {
			return nil, err
		}
		schema.Children = append(schema.Children, item)
	}

	if _, err := p.expect(RBRACE); err != nil {
		return nil, err
	}
	if _, err := p.expect(EOF); err != nil {
		return nil, err
	}

	return schema, nil
}

// parsePackageName parses a plain dotted name without prefixes or a
// min-classes suffix, as used in the schema header and import statements.
func (p *Parser) parsePackageName() (string, *Error) {
	t, err := p.expect(NAME)
	if err != nil {
		return "", err
	}
	name := t.Value
	for p.tok().Kind == DOT {
		p.advance()
		seg, err := p.expect(NAME)
		if err != nil {
			return "", err
		}
		name += "." + seg.Value
	}
	return name, nil
}

// parseUse parses: (USE | REQUIRE) (schema_name | STRING) [AS NAME] ';'
func (p *Parser) parseUse() (*ast.Use, *Error) {
	start := p.advance()

	use := &ast.Use{Require: start.Kind == REQUIRE}
	use.Line, use.Col = start.Line, start.Col
	if use.Require {
		use.Modifiers = append(use.Modifiers, "required")
	}

	if p.tok().Kind == STRING {
		use.Name = p.advance().Value
	} else {
		name, err := p.parsePackageName()
		if err != nil {
			return nil, err
		}
		use.Name = name
	}

	if p.tok().Kind == AS {
		p.advance()
		alias, err := p.expect(NAME)
		if err != nil {
			return nil, err
		}
		use.Alias = alias.Value
	}

	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return use, nil
}

// parseSchemaItem parses an outermost definition: a field, a fieldset or a
// simple property.  Indexes and constraints only occur inside fieldsets.
func (p *Parser) parseSchemaItem() (ast.Item, *Error) {
	switch p.tok().Kind {
	case ABSTRACT, FINAL, REQUIRED, FIELD, FIELDSET:
		return p.parseDef()
	case NAME, FIELDS:
		return p.parseSimpleProp()
	}
	return nil, p.errorf(p.tok(), "expected definition or property, found "+tokenKindNames[p.tok().Kind])
}

// parseDef parses: modifiers (fielddef | fieldsetdef)
func (p *Parser) parseDef() (ast.Item, *Error) {
	var modifiers []string
	for {
		switch p.tok().Kind {
		case ABSTRACT:
			p.advance()
			modifiers = append(modifiers, "abstract")
			continue
		case FINAL:
			p.advance()
			modifiers = append(modifiers, "final")
			continue
		case REQUIRED:
			p.advance()
			modifiers = append(modifiers, "required")
			continue
		}
		break
	}

	switch p.tok().Kind {
	case FIELD:
		return p.parseField(modifiers)
	case FIELDSET:
		return p.parseFieldSet(modifiers)
	}
	return nil, p.errorf(p.tok(), "expected 'field' or 'fieldset', found "+tokenKindNames[p.tok().Kind])
}

// parseField parses: FIELD NAME typedef [ARROW imp_name] (';' | '{' simpleprops '}')
func (p *Parser) parseField(modifiers []string) (*ast.Field, *Error) {
	start := p.advance()

	name, err := p.expect(NAME)
	if err != nil {
		return nil, err
	}

	f := &ast.Field{}
	f.Name = name.Value
	f.Line, f.Col = start.Line, start.Col
	f.Modifiers = modifiers

	ancestors, err := p.parseTypeDef(start)
	if err != nil {
		return nil, err
	}

	var references *ast.Property
	if p.tok().Kind == ARROW {
		arrow := p.advance()
		target, err := p.parseImpName()
		if err != nil {
			return nil, err
		}
		references = &ast.Property{Args: []ast.Value{target}}
		references.Name = "references"
		references.Line, references.Col = arrow.Line, arrow.Col
	}

	switch p.tok().Kind {
	case SEMICOLON:
		p.advance()
	case LBRACE:
		p.advance()
		for p.tok().Kind != RBRACE {
			prop, err := p.parseSimpleProp()
			if err != nil {
				return nil, err
			}
			f.Children = append(f.Children, prop)
		}
		p.advance()
	default:
		return nil, p.errorf(p.tok(), "expected ';' or '{', found "+tokenKindNames[p.tok().Kind])
	}

	if ancestors != nil {
		f.Children = append(f.Children, ancestors)
	}
	if references != nil {
		f.Children = append(f.Children, references)
	}
	return f, nil
}

// parseFieldSet parses: FIELDSET NAME typedef (';' | '{' fsitems '}')
func (p *Parser) parseFieldSet(modifiers []string) (*ast.FieldSet, *Error) {
	start := p.advance()

	name, err := p.expect(NAME)
	if err != nil {
		return nil, err
	}

	fs := &ast.FieldSet{}
	fs.Name = name.Value
	fs.Line, fs.Col = start.Line, start.Col
	fs.Modifiers = modifiers

	ancestors, err := p.parseTypeDef(start)
	if err != nil {
		return nil, err
	}

	switch p.tok().Kind {
	case SEMICOLON:
		p.advance()
	case LBRACE:
		p.advance()
		for p.tok().Kind != RBRACE {
			item, err := p.parseFieldSetItem()
			if err != nil {
				return nil, err
			}
			fs.Children = append(fs.Children, item)
		}
		p.advance()
	default:
		return nil, p.errorf(p.tok(), "expected ';' or '{', found "+tokenKindNames[p.tok().Kind])
	}

	if ancestors != nil {
		fs.Children = append(fs.Children, ancestors)
	}
	return fs, nil
}

// parseFieldSetItem parses a member of a fieldset body.
func (p *Parser) parseFieldSetItem() (ast.Item, *Error) {
	switch p.tok().Kind {
	case ABSTRACT, FINAL, REQUIRED, FIELD, FIELDSET:
		return p.parseDef()
	case INDEX:
		return p.parseIndex()
	case CONSTRAINT:
		return p.parseConstraint()
	case DELETE:
		return p.parseDeletion()
	case NAME, FIELDS:
		return p.parseSimpleProp()
	}
	return nil, p.errorf(p.tok(), "expected definition, property or deletion, found "+tokenKindNames[p.tok().Kind])
}

// parseIndex parses: INDEX NAME '{' simpleprops '}'
func (p *Parser) parseIndex() (*ast.Index, *Error) {
	start := p.advance()

	name, err := p.expect(NAME)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(LBRACE); err != nil {
		return nil, err
	}

	ix := &ast.Index{}
	ix.Name = name.Value
	ix.Line, ix.Col = start.Line, start.Col

	for p.tok().Kind != RBRACE {
		prop, err := p.parseSimpleProp()
		if err != nil {
			return nil, err
		}
		ix.Children = append(ix.Children, prop)
	}
	p.advance()
	return ix, nil
}

// parseConstraint parses: CONSTRAINT NAME '{' simpleprops '}'
func (p *Parser) parseConstraint() (*ast.Constraint, *Error) {
	start := p.advance()

	name, err := p.expect(NAME)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(LBRACE); err != nil {
		return nil, err
	}

	c := &ast.Constraint{}
	c.Name = name.Value
	c.Line, c.Col = start.Line, start.Col

	for p.tok().Kind != RBRACE {
		prop, err := p.parseSimpleProp()
		if err != nil {
			return nil, err
		}
		c.Children = append(c.Children, prop)
	}
	p.advance()
	return c, nil
}

// parseDeletion parses: DELETE NAME ';'
func (p *Parser) parseDeletion() (*ast.Deletion, *Error) {
	start := p.advance()

	name, err := p.expect(NAME)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}

	d := &ast.Deletion{}
	d.Name = name.Value
	d.Line, d.Col = start.Line, start.Col
	return d, nil
}

// parseTypeDef parses the optional colon operator: [':' imp_name+].  The
// result is an ancestors property, or nil when the colon is absent.
func (p *Parser) parseTypeDef(at *Token) (*ast.Property, *Error) {
	if p.tok().Kind != COLON {
		return nil, nil
	}
	p.advance()

	prop := &ast.Property{}
	prop.Name = "ancestors"
	prop.Line, prop.Col = at.Line, at.Col

	for {
		name, err := p.parseImpName()
		if err != nil {
			return nil, err
		}
		prop.Args = append(prop.Args, name)

		k := p.tok().Kind
		if k != NAME && k != EQUALS && k != SCHEMA {
			break
		}
	}
	return prop, nil
}

// parseSimpleProp parses: NAME propvalues ';' | FIELDS idxfields ';'
func (p *Parser) parseSimpleProp() (*ast.Property, *Error) {
	start := p.tok()

	prop := &ast.Property{}
	prop.Line, prop.Col = start.Line, start.Col

	switch start.Kind {
	case NAME:
		p.advance()
		prop.Name = start.Value
		for {
			k := p.tok().Kind
			if k == SEMICOLON {
				break
			}
			val, err := p.parsePropValue()
			if err != nil {
				return nil, err
			}
			prop.Args = append(prop.Args, val)
		}
	case FIELDS:
		p.advance()
		prop.Name = "fields"
		for {
			field, err := p.parseIndexField()
			if err != nil {
				return nil, err
			}
			prop.Args = append(prop.Args, field)
			if p.tok().Kind == SEMICOLON {
				break
			}
		}
	default:
		return nil, p.errorf(start, "expected property name, found "+tokenKindNames[start.Kind])
	}

	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return prop, nil
}

// parseIndexField parses: ['+' | '-'] dotted_name
func (p *Parser) parseIndexField() (*ast.DottedName, *Error) {
	direction := "asc"
	start := p.tok()
	switch start.Kind {
	case PLUS:
		p.advance()
	case MINUS:
		p.advance()
		direction = "desc"
	}

	name, err := p.parseDottedName()
	if err != nil {
		return nil, err
	}
	name.Direction = direction
	if start.Kind == PLUS || start.Kind == MINUS {
		name.Line, name.Col = start.Line, start.Col
	}
	return name, nil
}

// parsePropValue parses a single heterogeneous property argument.
func (p *Parser) parsePropValue() (ast.Value, *Error) {
	t := p.tok()
	switch t.Kind {
	case INT:
		p.advance()
		n, err := strconv.Atoi(t.Value)
		if err != nil {
			return nil, p.errorf(t, "invalid integer literal: "+t.Value)
		}
		return n, nil
	case FLOAT:
		p.advance()
		f, err := strconv.ParseFloat(t.Value, 64)
		if err != nil {
			return nil, p.errorf(t, "invalid float literal: "+t.Value)
		}
		return f, nil
	case STRING:
		p.advance()
		return t.Value, nil
	case TRUE:
		p.advance()
		return true, nil
	case FALSE:
		p.advance()
		return false, nil
	case NONE:
		p.advance()
		return ast.None{}, nil
	case ALL:
		p.advance()
		return &ast.All{Line: t.Line, Col: t.Col}, nil
	case NAME, EQUALS, SCHEMA:
		return p.parseImpName()
	}
	return nil, p.errorf(t, "expected property value, found "+tokenKindNames[t.Kind])
}

// parseImpName parses: ['='] dotted_name
func (p *Parser) parseImpName() (*ast.DottedName, *Error) {
	if p.tok().Kind == EQUALS {
		eq := p.advance()
		name, err := p.parseDottedName()
		if err != nil {
			return nil, err
		}
		name.Imp = true
		name.Line, name.Col = eq.Line, eq.Col
		return name, nil
	}
	return p.parseDottedName()
}

// parseDottedName parses: ['schema' '.'] NAME ('.' NAME)* [min_classes].
// The min-classes bracket may only follow the last segment.
func (p *Parser) parseDottedName() (*ast.DottedName, *Error) {
	dn := &ast.DottedName{}

	start := p.tok()
	dn.Line, dn.Col = start.Line, start.Col

	if start.Kind == SCHEMA {
		p.advance()
		if _, err := p.expect(DOT); err != nil {
			return nil, err
		}
		dn.Absolute = true
	}

	seg, err := p.expect(NAME)
	if err != nil {
		return nil, err
	}
	dn.Value = seg.Value

	for p.tok().Kind == DOT {
		p.advance()
		seg, err := p.expect(NAME)
		if err != nil {
			return nil, err
		}
		dn.Value += "." + seg.Value
	}

	if p.tok().Kind == LBRACKET {
		kinds, err := p.parseMinClasses()
		if err != nil {
			return nil, err
		}
		dn.MinKinds = kinds
	}

	return dn, nil
}

// parseMinClasses parses: '[' (schema|fieldset|field|index|property)+ ']'
func (p *Parser) parseMinClasses() (ast.Kind, *Error) {
	p.advance()

	var kinds ast.Kind
	for p.tok().Kind != RBRACKET {
		t := p.advance()
		switch t.Kind {
		case SCHEMA:
			kinds |= ast.KindSchema
		case FIELDSET:
			kinds |= ast.KindFieldSet
		case FIELD:
			kinds |= ast.KindField
		case INDEX:
			kinds |= ast.KindIndex
		case NAME:
			if t.Value == "property" {
				kinds |= ast.KindProperty
				break
			}
			return 0, p.errorf(t, "invalid class in min-classes set: "+t.Value)
		default:
			return 0, p.errorf(t, "invalid class in min-classes set: "+tokenKindNames[t.Kind])
		}
	}
	p.advance()

	return kinds, nil
}
