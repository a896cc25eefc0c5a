// Package cparse implements a small declaration parser for C-ABI headers.
// It covers the subset of C that appears in API headers meant for binding
// generation: object-like defines, typedefs of primitives, typedef'd
// structs and enums, and function prototypes. It is not a C frontend and
// does not run the preprocessor; conditional sections are ignored wholesale.
package cparse

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

type parser struct {
	tokens []token
	pos    int
}

// Parse parses the given header source.
func Parse(src string) (*Header, error) {
	lex := newLexer(src)
	tokens, err := lex.tokenize()
	if err != nil {
		return nil, err
	}

	header := new(Header)
	for _, pp := range lex.pplines {
		def, ok := parseDefine(pp)
		if ok {
			header.Defines = append(header.Defines, def)
		}
	}

	p := &parser{tokens: tokens}
	err = p.parseTopLevel(header)
	if err != nil {
		return nil, err
	}

	return header, nil
}

// ParseFile reads and parses a header file.
func ParseFile(path string) (*Header, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read %s", path)
	}

	header, err := Parse(string(content))
	if err != nil {
		return nil, eris.Wrapf(err, "failed to parse %s", path)
	}
	return header, nil
}

// parseDefine extracts object-like macros with a literal value. Include
// guards (no value) and function-like macros are not declarations we care
// about.
func parseDefine(pp ppLine) (Define, bool) {
	if !strings.HasPrefix(pp.content, "#define") {
		return Define{}, false
	}

	rest := strings.TrimSpace(strings.TrimPrefix(pp.content, "#define"))
	fields := strings.SplitN(rest, " ", 2)
	if len(fields) < 2 {
		return Define{}, false
	}

	name := fields[0]
	if strings.Contains(name, "(") {
		return Define{}, false
	}

	value := strings.TrimSpace(fields[1])
	if value == "" {
		return Define{}, false
	}

	return Define{Name: name, Value: value, Line: pp.line}, true
}

func (p *parser) cur() token {
	return p.tokens[p.pos]
}

func (p *parser) peek() token {
	if p.pos+1 >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+1]
}

func (p *parser) advance() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) expectPunct(value string) error {
	tok := p.advance()
	if tok.kind != tokPunct || tok.value != value {
		return eris.Errorf("line %d: expected %q but found %q", tok.line, value, tok.value)
	}
	return nil
}

func (p *parser) expectIdent() (token, error) {
	tok := p.advance()
	if tok.kind != tokIdent {
		return tok, eris.Errorf("line %d: expected an identifier but found %q", tok.line, tok.value)
	}
	return tok, nil
}

func isPunct(tok token, value string) bool {
	return tok.kind == tokPunct && tok.value == value
}

func (p *parser) parseTopLevel(header *Header) error {
	for {
		tok := p.cur()
		switch {
		case tok.kind == tokEOF:
			return nil
		case tok.kind == tokIdent && tok.value == "typedef":
			err := p.parseTypedef(header)
			if err != nil {
				return err
			}
		case tok.kind == tokIdent && tok.value == "extern":
			p.advance()
			// extern "C" { ... } blocks from C++ guards are transparent
			if p.cur().kind == tokString {
				p.advance()
				if isPunct(p.cur(), "{") {
					p.advance()
				}
			}
		case isPunct(tok, "}") || isPunct(tok, ";"):
			p.advance()
		default:
			fn, err := p.parseFunction()
			if err != nil {
				return err
			}
			header.Functions = append(header.Functions, fn)
		}
	}
}

// multiword type handling: "unsigned long long" and friends
var typePrefixWords = map[string]bool{
	"unsigned": true,
	"signed":   true,
	"long":     true,
	"short":    true,
}

var typeFollowWords = map[string]bool{
	"int":    true,
	"char":   true,
	"long":   true,
	"short":  true,
	"double": true,
}

func (p *parser) parseType() (Type, error) {
	var typ Type

	for p.cur().kind == tokIdent && p.cur().value == "const" {
		typ.Const = true
		p.advance()
	}

	if p.cur().kind == tokIdent && (p.cur().value == "struct" || p.cur().value == "enum") {
		p.advance()
	}

	words := make([]string, 0, 3)
	for {
		tok, err := p.expectIdent()
		if err != nil {
			return typ, err
		}
		words = append(words, tok.value)

		if typePrefixWords[tok.value] && p.cur().kind == tokIdent && typeFollowWords[p.cur().value] {
			continue
		}
		break
	}
	typ.Base = strings.Join(words, " ")

	for {
		if isPunct(p.cur(), "*") {
			typ.Pointers++
			p.advance()
		} else if p.cur().kind == tokIdent && p.cur().value == "const" {
			// const applying to the pointer itself, irrelevant for bindings
			p.advance()
		} else {
			break
		}
	}

	return typ, nil
}

func (p *parser) parseTypedef(header *Header) error {
	start := p.advance() // typedef

	if p.cur().kind == tokIdent && p.cur().value == "struct" {
		return p.parseStructTypedef(header, start.line)
	}
	if p.cur().kind == tokIdent && p.cur().value == "enum" {
		return p.parseEnumTypedef(header, start.line)
	}

	target, err := p.parseType()
	if err != nil {
		return err
	}

	name, err := p.expectIdent()
	if err != nil {
		return err
	}

	err = p.expectPunct(";")
	if err != nil {
		return err
	}

	header.Typedefs = append(header.Typedefs, Typedef{
		Name:   name.value,
		Target: target,
		Line:   start.line,
	})
	return nil
}

func (p *parser) parseStructTypedef(header *Header, line int) error {
	p.advance() // struct

	s := Struct{Line: line}
	if p.cur().kind == tokIdent {
		s.Tag = p.advance().value
	}

	if !isPunct(p.cur(), "{") {
		// typedef struct Tag Name; (opaque forward declaration)
		if s.Tag == "" {
			return eris.Errorf("line %d: struct typedef without a body needs a tag", line)
		}

		name, err := p.expectIdent()
		if err != nil {
			return err
		}
		err = p.expectPunct(";")
		if err != nil {
			return err
		}

		s.Name = name.value
		s.Opaque = true
		header.Structs = append(header.Structs, s)
		return nil
	}

	p.advance() // {
	s.Fields = make([]Field, 0)
	for !isPunct(p.cur(), "}") {
		if p.cur().kind == tokEOF {
			return eris.Errorf("line %d: unterminated struct body", line)
		}

		field, err := p.parseField()
		if err != nil {
			return err
		}
		s.Fields = append(s.Fields, field)
	}
	p.advance() // }

	if len(s.Fields) == 0 {
		return eris.Errorf("line %d: struct body is empty", line)
	}

	name, err := p.expectIdent()
	if err != nil {
		return err
	}
	err = p.expectPunct(";")
	if err != nil {
		return err
	}

	s.Name = name.value
	header.Structs = append(header.Structs, s)
	return nil
}

func (p *parser) parseField() (Field, error) {
	var field Field

	typ, err := p.parseType()
	if err != nil {
		return field, err
	}
	field.Type = typ

	if isPunct(p.cur(), "(") {
		// function pointer member: ret (*name)(params);
		p.advance()
		err = p.expectPunct("*")
		if err != nil {
			return field, err
		}

		name, err := p.expectIdent()
		if err != nil {
			return field, err
		}
		field.Name = name.value
		field.FuncPtr = true

		err = p.expectPunct(")")
		if err != nil {
			return field, err
		}
		err = p.expectPunct("(")
		if err != nil {
			return field, err
		}

		field.Params, _, err = p.parseParams()
		if err != nil {
			return field, err
		}

		return field, p.expectPunct(";")
	}

	name, err := p.expectIdent()
	if err != nil {
		return field, err
	}
	field.Name = name.value

	if isPunct(p.cur(), "[") {
		p.advance()
		size := p.advance()
		if size.kind != tokNumber && size.kind != tokIdent {
			return field, eris.Errorf("line %d: invalid array length %q", size.line, size.value)
		}
		field.Type.ArrayLen = size.value

		err = p.expectPunct("]")
		if err != nil {
			return field, err
		}
	}

	return field, p.expectPunct(";")
}

func (p *parser) parseEnumTypedef(header *Header, line int) error {
	p.advance() // enum

	if p.cur().kind == tokIdent {
		p.advance() // tag
	}

	err := p.expectPunct("{")
	if err != nil {
		return err
	}

	e := Enum{Line: line}
	for {
		if isPunct(p.cur(), "}") {
			break
		}

		name, err := p.expectIdent()
		if err != nil {
			return err
		}

		member := EnumMember{Name: name.value}
		if isPunct(p.cur(), "=") {
			p.advance()

			// capture the value expression up to the next , or }
			parts := make([]string, 0, 3)
			for !isPunct(p.cur(), ",") && !isPunct(p.cur(), "}") {
				if p.cur().kind == tokEOF {
					return eris.Errorf("line %d: unterminated enum body", line)
				}
				parts = append(parts, p.advance().value)
			}
			member.Value = strings.Join(parts, " ")
		}
		e.Members = append(e.Members, member)

		if isPunct(p.cur(), ",") {
			p.advance()
			if isPunct(p.cur(), "}") {
				return eris.Errorf("line %d: trailing comma in enum", p.cur().line)
			}
		}
	}
	p.advance() // }

	name, err := p.expectIdent()
	if err != nil {
		return err
	}
	err = p.expectPunct(";")
	if err != nil {
		return err
	}

	e.Name = name.value
	header.Enums = append(header.Enums, e)
	return nil
}

func (p *parser) parseParams() ([]Param, bool, error) {
	params := make([]Param, 0)
	variadic := false

	// empty list or (void)
	if isPunct(p.cur(), ")") {
		p.advance()
		return params, false, nil
	}
	if p.cur().kind == tokIdent && p.cur().value == "void" && isPunct(p.peek(), ")") {
		p.advance()
		p.advance()
		return params, false, nil
	}

	for {
		if isPunct(p.cur(), "...") {
			p.advance()
			variadic = true
			break
		}

		typ, err := p.parseType()
		if err != nil {
			return nil, false, err
		}

		param := Param{Type: typ}
		if p.cur().kind == tokIdent {
			param.Name = p.advance().value
		}
		params = append(params, param)

		if isPunct(p.cur(), ",") {
			p.advance()
			continue
		}
		break
	}

	err := p.expectPunct(")")
	if err != nil {
		return nil, false, err
	}

	return params, variadic, nil
}

func (p *parser) parseFunction() (Function, error) {
	ret, err := p.parseType()
	if err != nil {
		return Function{}, err
	}

	name, err := p.expectIdent()
	if err != nil {
		return Function{}, err
	}

	fn := Function{
		Name:   name.value,
		Return: ret,
		Line:   name.line,
	}

	err = p.expectPunct("(")
	if err != nil {
		return fn, err
	}

	fn.Params, fn.Variadic, err = p.parseParams()
	if err != nil {
		return fn, err
	}

	return fn, p.expectPunct(";")
}
