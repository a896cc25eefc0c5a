package cparse

import (
	"strings"

	"github.com/rotisserie/eris"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokPunct
)

type token struct {
	kind  tokenKind
	value string
	line  int
}

// lexer produces a token stream from header source. Comments are skipped,
// preprocessor lines are collected separately since they are line-based
// while everything else is free-form.
type lexer struct {
	src     string
	pos     int
	line    int
	pplines []ppLine
}

type ppLine struct {
	content string
	line    int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func (l *lexer) peekByte() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) byteAt(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

// skipToLineEnd consumes everything up to (but not including) the next
// newline and returns it.
func (l *lexer) skipToLineEnd() string {
	start := l.pos
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.pos++
	}
	return l.src[start:l.pos]
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) {
		c := l.src[l.pos]

		switch {
		case c == '\n':
			l.line++
			l.pos++
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case c == '/' && l.byteAt(1) == '/':
			l.skipToLineEnd()
		case c == '/' && l.byteAt(1) == '*':
			end := strings.Index(l.src[l.pos+2:], "*/")
			if end == -1 {
				return token{}, eris.Errorf("line %d: unterminated block comment", l.line)
			}
			l.line += strings.Count(l.src[l.pos:l.pos+2+end+2], "\n")
			l.pos += 2 + end + 2
		case c == '#':
			// preprocessor directives are line-based; continuation lines
			// (trailing backslash) are folded into one entry
			line := l.line
			content := l.skipToLineEnd()
			for strings.HasSuffix(strings.TrimRight(content, " \t\r"), "\\") {
				content = strings.TrimRight(content, " \t\r")
				content = content[:len(content)-1]
				if l.pos < len(l.src) {
					l.pos++ // the newline
					l.line++
				}
				content += " " + strings.TrimSpace(l.skipToLineEnd())
			}
			l.pplines = append(l.pplines, ppLine{content: strings.TrimSpace(content), line: line})
		case isIdentStart(c):
			start := l.pos
			for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
				l.pos++
			}
			return token{kind: tokIdent, value: l.src[start:l.pos], line: l.line}, nil
		case isDigit(c):
			start := l.pos
			for l.pos < len(l.src) && (isIdentPart(l.src[l.pos]) || l.src[l.pos] == '.') {
				l.pos++
			}
			return token{kind: tokNumber, value: l.src[start:l.pos], line: l.line}, nil
		case c == '"':
			start := l.pos
			l.pos++
			for l.pos < len(l.src) && l.src[l.pos] != '"' {
				if l.src[l.pos] == '\\' {
					l.pos++
				}
				l.pos++
			}
			if l.pos >= len(l.src) {
				return token{}, eris.Errorf("line %d: unterminated string literal", l.line)
			}
			l.pos++
			return token{kind: tokString, value: l.src[start:l.pos], line: l.line}, nil
		case strings.IndexByte("{}();,*[]=.+-", c) != -1:
			// "..." is the only multi-byte punctuation we care about
			if c == '.' && l.byteAt(1) == '.' && l.byteAt(2) == '.' {
				l.pos += 3
				return token{kind: tokPunct, value: "...", line: l.line}, nil
			}
			l.pos++
			return token{kind: tokPunct, value: string(c), line: l.line}, nil
		default:
			return token{}, eris.Errorf("line %d: unexpected character %q", l.line, c)
		}
	}

	return token{kind: tokEOF, line: l.line}, nil
}

// tokenize consumes the whole input. Preprocessor lines end up in
// l.pplines, everything else in the returned slice.
func (l *lexer) tokenize() ([]token, error) {
	var tokens []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, tok)
		if tok.kind == tokEOF {
			return tokens, nil
		}
	}
}
