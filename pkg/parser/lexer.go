package parser

import (
	"sort"
	"unicode/utf8"

	"github.com/sandrolain/gojslt/pkg/types"
)

const eof = -1

// Lexer splits a template into tokens, one per call to Next. It keeps a
// start and current offset into the input in the style of a hand-written
// state-function scanner.
type Lexer struct {
	input      string // Input string being scanned
	source     string // Resource name used in locations
	length     int    // Length of input string
	start      int    // Start position of current token
	current    int    // Current position in input
	width      int    // Width of last rune read
	lineStarts []int  // Byte offset of the first character of each line
	err        *types.Error
}

// NewLexer returns a lexer positioned at the start of input.
func NewLexer(input, source string) *Lexer {
	starts := []int{0}
	for i := 0; i < len(input); i++ {
		if input[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Lexer{
		input:      input,
		source:     source,
		length:     len(input),
		lineStarts: starts,
	}
}

// Next scans one token. Once the input is exhausted every call yields TokenEOF.
func (l *Lexer) Next() Token {
	l.skipWhitespace()

	ch := l.nextRune()
	if ch == eof {
		return l.eof()
	}

	switch {
	case ch == '"':
		pos := l.start
		l.ignore()
		return l.withPosition(l.scanString(TokenString), pos)
	case ch == '.':
		return l.scanDot()
	case ch == '$':
		l.ignore()
		if !l.accept(isNameStart) {
			return l.error(types.ErrInvalidCharacter, "Expected variable name after '$'")
		}
		l.acceptAll(isNameChar)
		return l.newToken(TokenVariable)
	case isDigit(ch):
		l.backup()
		return l.scanNumber()
	case isNameStart(ch):
		l.backup()
		return l.scanName()
	}

	if tt, ok := withEquals[ch]; ok && l.acceptRune('=') {
		return l.newToken(tt)
	}
	if tt, ok := punctuation[ch]; ok {
		return l.newToken(tt)
	}

	return l.error(types.ErrInvalidCharacter, "Unexpected character "+quoteRune(ch))
}

// Error reports the first lexical error, or nil.
func (l *Lexer) Error() *types.Error {
	return l.err
}

// Locate converts a byte offset into a source location.
func (l *Lexer) Locate(pos int) types.Location {
	line := sort.Search(len(l.lineStarts), func(i int) bool { return l.lineStarts[i] > pos }) - 1
	if line < 0 {
		line = 0
	}
	col := utf8.RuneCountInString(l.input[l.lineStarts[line]:min(pos, l.length)]) + 1
	return types.Location{Source: l.source, Line: line + 1, Column: col}
}

// scanDot reads ".", ".key" or ."quoted key". The dot has been consumed.
func (l *Lexer) scanDot() Token {
	if l.accept(isNameStart) {
		l.ignoreDot()
		l.acceptAll(isNameChar)
		return l.newToken(TokenDotKey)
	}
	if l.acceptRune('"') {
		pos := l.start
		l.ignore()
		return l.withPosition(l.scanString(TokenDotStr), pos)
	}
	return l.newToken(TokenDot)
}

// ignoreDot drops the leading dot of the current token while keeping the
// token position on the dot.
func (l *Lexer) ignoreDot() {
	l.start++
}

func (l *Lexer) withPosition(t Token, pos int) Token {
	if t.Type != TokenError {
		t.Position = pos
	}
	return t
}

// scanString reads up to the closing quote; the opening one is already
// consumed. The token value keeps its
// escape sequences.
func (l *Lexer) scanString(tt TokenType) Token {
Loop:
	for {
		switch l.nextRune() {
		case '"':
			break Loop
		case '\\':
			if r := l.nextRune(); r != eof {
				break
			}
			fallthrough
		case eof:
			return l.error(types.ErrStringNotClosed, "Unterminated string literal")
		}
	}

	l.backup()
	t := l.newToken(tt)
	l.acceptRune('"')
	l.ignore()
	return t
}

// scanNumber accepts JSON number syntax: (0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?
func (l *Lexer) scanNumber() Token {
	if !l.acceptRune('0') {
		l.accept(isNonZeroDigit)
		l.acceptAll(isDigit)
	}

	if l.acceptRune('.') {
		if !l.acceptAll(isDigit) {
			return l.error(types.ErrInvalidNumber, "Expected digits after decimal point")
		}
	}

	if l.acceptRunes2('e', 'E') {
		l.acceptRunes2('+', '-')
		if !l.acceptAll(isDigit) {
			return l.error(types.ErrInvalidNumber, "Expected digits in exponent")
		}
	}

	if l.accept(isNameStart) {
		return l.error(types.ErrInvalidNumber, "Invalid number literal")
	}
	return l.newToken(TokenNumber)
}

// scanName reads a name, a keyword or a prefix:name pair.
// Names start with a letter or underscore and may contain letters, digits,
// underscores and dashes.
func (l *Lexer) scanName() Token {
	l.acceptAll(isNameChar)

	if tt, ok := keywords[l.input[l.start:l.current]]; ok {
		return l.newToken(tt)
	}

	// prefix:name, with no whitespace around the colon
	if l.acceptRune(':') {
		if l.accept(isNameStart) {
			l.acceptAll(isNameChar)
			return l.newToken(TokenPName)
		}
		l.backup()
	}
	return l.newToken(TokenName)
}

func (l *Lexer) eof() Token {
	return Token{
		Type:     TokenEOF,
		Position: l.current,
	}
}

func (l *Lexer) error(code types.ErrorCode, message string) Token {
	t := l.newToken(TokenError)
	if l.err == nil {
		loc := l.Locate(t.Position)
		l.err = types.Errorf(code, &loc, "%s", message)
	}
	return t
}

func (l *Lexer) newToken(tt TokenType) Token {
	t := Token{
		Type:     tt,
		Value:    l.input[l.start:l.current],
		Position: l.start,
	}
	if tt == TokenDotKey {
		t.Position = l.start - 1
	}
	l.width = 0
	l.start = l.current
	return t
}

func (l *Lexer) nextRune() rune {
	if l.current >= l.length {
		l.width = 0
		return eof
	}

	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.width = w
	l.current += w
	return r
}

func (l *Lexer) backup() {
	l.current -= l.width
}

func (l *Lexer) ignore() {
	l.start = l.current
}

func (l *Lexer) acceptRune(r rune) bool {
	return l.accept(func(c rune) bool {
		return c == r
	})
}

func (l *Lexer) acceptRunes2(r1, r2 rune) bool {
	return l.accept(func(c rune) bool {
		return c == r1 || c == r2
	})
}

func (l *Lexer) accept(isValid func(rune) bool) bool {
	if isValid(l.nextRune()) {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptAll(isValid func(rune) bool) bool {
	var matched bool
	for l.accept(isValid) {
		matched = true
	}
	return matched
}

// skipWhitespace skips blanks and // line comments.
func (l *Lexer) skipWhitespace() {
	for {
		l.acceptAll(isWhitespace)
		l.ignore()

		if l.current+1 < l.length && l.input[l.current] == '/' && l.input[l.current+1] == '/' {
			for {
				ch := l.nextRune()
				if ch == eof || ch == '\n' {
					break
				}
			}
			continue
		}
		return
	}
}

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	default:
		return false
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isNonZeroDigit(r rune) bool {
	return r >= '1' && r <= '9'
}

func isNameStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isNameChar(r rune) bool {
	return isNameStart(r) || isDigit(r) || r == '-'
}

func quoteRune(r rune) string {
	if r == utf8.RuneError {
		return "'\\ufffd'"
	}
	return "'" + string(r) + "'"
}
