package parser

import (
	"fmt"
	"strings"

	"github.com/buger/jsonparser"

	"github.com/sandrolain/gojslt/pkg/types"
)

const defaultMaxDepth = 512

// Parser implements a recursive descent parser for templates.
type Parser struct {
	lexer   *Lexer
	arena   *types.NodeArena
	current Token
	prev    Token
	depth   int
	opts    Options
}

// NewParser creates a new parser for the given input string.
func NewParser(input string, opts ...Option) *Parser {
	options := Options{
		MaxDepth: defaultMaxDepth,
	}
	for _, opt := range opts {
		opt(&options)
	}

	p := &Parser{
		lexer: NewLexer(input, options.Source),
		arena: types.NewNodeArena(),
		opts:  options,
	}
	return p
}

// Parse parses the whole input into a NodeModule. When requireBody is set
// the input must end with an expression.
func (p *Parser) Parse(requireBody bool) (node *types.ASTNode, err error) {
	defer func() {
		if r := recover(); r != nil {
			pe, ok := r.(*types.Error)
			if !ok {
				panic(r)
			}
			node, err = nil, pe
		}
	}()

	// Read the first token
	p.advance()

	module := p.node(types.NodeModule)

	for p.current.Type == TokenImport {
		module.Imports = append(module.Imports, p.parseImport())
	}

	for {
		switch p.current.Type {
		case TokenLet:
			module.Lets = append(module.Lets, p.parseLet())
			continue
		case TokenDef:
			module.Functions = append(module.Functions, p.parseDef())
			continue
		}
		break
	}

	if p.current.Type != TokenEOF {
		module.Body = p.parseExpr()
	} else if requireBody {
		p.fail(types.ErrSyntaxError, "Parse error: expected an expression but reached the end of the template")
	}

	if p.current.Type != TokenEOF {
		p.unexpected("end of template")
	}
	return module, nil
}

// advance moves to the next token.
func (p *Parser) advance() {
	p.prev = p.current
	p.current = p.lexer.Next()
	if p.current.Type == TokenError {
		panic(p.lexer.Error())
	}
}

// node allocates a node located at the current token.
func (p *Parser) node(t types.NodeType) *types.ASTNode {
	return p.arena.Alloc(t, p.lexer.Locate(p.current.Position))
}

// nodeAt allocates a node located at the given token.
func (p *Parser) nodeAt(t types.NodeType, tok Token) *types.ASTNode {
	return p.arena.Alloc(t, p.lexer.Locate(tok.Position))
}

// expect checks that the current token has type tt and advances past it.
func (p *Parser) expect(tt TokenType) Token {
	if p.current.Type != tt {
		p.unexpected(tt.String())
	}
	tok := p.current
	p.advance()
	return tok
}

// accept advances when the current token has type tt.
func (p *Parser) accept(tt TokenType) bool {
	if p.current.Type != tt {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) unexpected(want string) {
	got := p.current.Value
	if p.current.Type == TokenEOF {
		got = "end of template"
	}
	p.fail(types.ErrExpectedToken, fmt.Sprintf("Parse error: expected %s but found %q", want, got))
}

// fail aborts parsing. The panic is recovered in Parse.
func (p *Parser) fail(code types.ErrorCode, message string) {
	loc := p.lexer.Locate(p.current.Position)
	panic(types.Errorf(code, &loc, "%s", message))
}

func (p *Parser) enter() {
	p.depth++
	if p.opts.MaxDepth > 0 && p.depth > p.opts.MaxDepth {
		p.fail(types.ErrTooDeep, fmt.Sprintf("Parse error: template nesting exceeds %d levels", p.opts.MaxDepth))
	}
}

func (p *Parser) leave() {
	p.depth--
}

// Declarations

// parseImport: import "file" as prefix
func (p *Parser) parseImport() *types.ASTNode {
	n := p.node(types.NodeImport)
	p.expect(TokenImport)
	n.Value = p.unescape(p.expect(TokenString))
	p.expect(TokenAs)
	n.Prefix = p.expect(TokenName).Value
	return n
}

// parseLet: let name = expr
func (p *Parser) parseLet() *types.ASTNode {
	n := p.node(types.NodeLet)
	p.expect(TokenLet)
	n.Value = p.expect(TokenName).Value
	p.expect(TokenAssign)
	n.Body = p.parseExpr()
	return n
}

func (p *Parser) parseLets() []*types.ASTNode {
	var lets []*types.ASTNode
	for p.current.Type == TokenLet {
		lets = append(lets, p.parseLet())
	}
	return lets
}

// parseDef: def name(p1, p2) lets expr
func (p *Parser) parseDef() *types.ASTNode {
	n := p.node(types.NodeDef)
	p.expect(TokenDef)
	n.Value = p.expect(TokenName).Value
	p.expect(TokenParenOpen)
	if p.current.Type != TokenParenClose {
		n.Params = append(n.Params, p.expect(TokenName).Value)
		for p.accept(TokenComma) {
			n.Params = append(n.Params, p.expect(TokenName).Value)
		}
	}
	p.expect(TokenParenClose)
	n.Lets = p.parseLets()
	n.Body = p.parseExpr()
	return n
}

// Expressions

// parseExpr: or ('|' or)*
func (p *Parser) parseExpr() *types.ASTNode {
	p.enter()
	defer p.leave()

	left := p.parseOr()
	for p.current.Type == TokenPipe {
		n := p.binary()
		n.LHS = left
		n.RHS = p.parseOr()
		left = n
	}
	return left
}

// binary allocates a binary node for the current operator and advances.
func (p *Parser) binary() *types.ASTNode {
	n := p.node(types.NodeBinary)
	n.Value = p.current.Type.String()
	p.advance()
	return n
}

// parseOr: and ('or' or)?
func (p *Parser) parseOr() *types.ASTNode {
	left := p.parseAnd()
	if p.current.Type == TokenOr {
		n := p.binary()
		n.LHS = left
		n.RHS = p.parseOr()
		return n
	}
	return left
}

// parseAnd: comparison ('and' and)?
func (p *Parser) parseAnd() *types.ASTNode {
	left := p.parseComparison()
	if p.current.Type == TokenAnd {
		n := p.binary()
		n.LHS = left
		n.RHS = p.parseAnd()
		return n
	}
	return left
}

// parseComparison: additive (op additive)?
func (p *Parser) parseComparison() *types.ASTNode {
	left := p.parseAdditive()
	switch p.current.Type {
	case TokenEqual, TokenNotEqual, TokenLess, TokenLessEqual, TokenGreater, TokenGreaterEqual:
		n := p.binary()
		n.LHS = left
		n.RHS = p.parseAdditive()
		return n
	}
	return left
}

// parseAdditive: multiplicative (('+'|'-') multiplicative)*
func (p *Parser) parseAdditive() *types.ASTNode {
	left := p.parseMultiplicative()
	for p.current.Type == TokenPlus || p.current.Type == TokenMinus {
		n := p.binary()
		n.LHS = left
		n.RHS = p.parseMultiplicative()
		left = n
	}
	return left
}

// parseMultiplicative: base (('*'|'/'|'%') base)*
func (p *Parser) parseMultiplicative() *types.ASTNode {
	left := p.parseBase()
	for p.current.Type == TokenMult || p.current.Type == TokenDiv || p.current.Type == TokenMod {
		n := p.binary()
		n.LHS = left
		n.RHS = p.parseBase()
		left = n
	}
	return left
}

func (p *Parser) parseBase() *types.ASTNode {
	p.enter()
	defer p.leave()

	switch p.current.Type {
	case TokenNull:
		n := p.node(types.NodeNull)
		p.advance()
		return n
	case TokenTrue, TokenFalse:
		n := p.node(types.NodeBoolean)
		n.Value = p.current.Value
		p.advance()
		return n
	case TokenNumber:
		n := p.node(types.NodeNumber)
		n.Value = p.current.Value
		p.advance()
		return n
	case TokenMinus:
		// negative number literal
		n := p.node(types.NodeNumber)
		minus := p.current
		p.advance()
		if p.current.Type != TokenNumber || p.current.Position != minus.Position+1 {
			p.unexpected("number after '-'")
		}
		n.Value = "-" + p.current.Value
		p.advance()
		return n
	case TokenString:
		n := p.node(types.NodeString)
		n.Value = p.unescape(p.current)
		p.advance()
		return n
	case TokenParenOpen:
		p.advance()
		e := p.parseExpr()
		p.expect(TokenParenClose)
		return e
	case TokenIf:
		return p.parseIf()
	case TokenBracketOpen:
		return p.parseArray()
	case TokenBraceOpen:
		return p.parseObject()
	case TokenName, TokenPName, TokenVariable, TokenDot, TokenDotKey, TokenDotStr:
		return p.parseChainable()
	}
	p.unexpected("an expression")
	return nil
}

// parseChainable: (call | $var | . | .key) link*
func (p *Parser) parseChainable() *types.ASTNode {
	var n *types.ASTNode
	switch p.current.Type {
	case TokenName, TokenPName:
		n = p.parseCall()
	case TokenVariable:
		n = p.node(types.NodeVariable)
		n.Value = p.current.Value
		p.advance()
	case TokenDot:
		n = p.node(types.NodeDot)
		p.advance()
	default:
		n = p.parseDotKey(nil)
	}

	for {
		switch p.current.Type {
		case TokenDotKey, TokenDotStr:
			n = p.parseDotKey(n)
		case TokenBracketOpen:
			n = p.parseSlice(n)
		default:
			return n
		}
	}
}

func (p *Parser) parseDotKey(parent *types.ASTNode) *types.ASTNode {
	n := p.node(types.NodeDot)
	if p.current.Type == TokenDotStr {
		n.Value = p.unescape(p.current)
	} else {
		n.Value = p.current.Value
	}
	n.LHS = parent
	p.advance()
	return n
}

// parseSlice: '[' expr? (':' expr?)? ']'
func (p *Parser) parseSlice(parent *types.ASTNode) *types.ASTNode {
	n := p.node(types.NodeSlice)
	n.LHS = parent
	p.expect(TokenBracketOpen)

	var left, right *types.ASTNode
	if p.current.Type != TokenColon {
		left = p.parseExpr()
	}
	if p.accept(TokenColon) {
		n.Colon = true
		if p.current.Type != TokenBracketClose {
			right = p.parseExpr()
		}
	}
	if left == nil && !n.Colon {
		p.unexpected("an index")
	}
	p.expect(TokenBracketClose)
	n.Expressions = []*types.ASTNode{left, right}
	return n
}

// parseCall: name '(' args ')'
func (p *Parser) parseCall() *types.ASTNode {
	n := p.node(types.NodeCall)
	name := p.current.Value
	if p.current.Type == TokenPName {
		i := strings.IndexByte(name, ':')
		n.Prefix, name = name[:i], name[i+1:]
	}
	n.Value = name
	p.advance()

	p.expect(TokenParenOpen)
	if p.current.Type != TokenParenClose {
		n.Expressions = append(n.Expressions, p.parseExpr())
		for p.accept(TokenComma) {
			n.Expressions = append(n.Expressions, p.parseExpr())
		}
	}
	p.expect(TokenParenClose)
	return n
}

// parseIf: if '(' expr ')' lets expr (else lets expr)?
func (p *Parser) parseIf() *types.ASTNode {
	n := p.node(types.NodeIf)
	p.expect(TokenIf)
	p.expect(TokenParenOpen)
	n.Condition = p.parseExpr()
	p.expect(TokenParenClose)
	n.Lets = p.parseLets()
	n.Body = p.parseExpr()
	if p.accept(TokenElse) {
		n.ElseLets = p.parseLets()
		n.Else = p.parseExpr()
	}
	return n
}

// parseFilter parses the optional trailing "if (expr)" of a comprehension.
func (p *Parser) parseFilter() *types.ASTNode {
	if !p.accept(TokenIf) {
		return nil
	}
	p.expect(TokenParenOpen)
	f := p.parseExpr()
	p.expect(TokenParenClose)
	return f
}

// parseArray: '[' (for ... | elements) ']'
func (p *Parser) parseArray() *types.ASTNode {
	open := p.current
	p.expect(TokenBracketOpen)

	if p.current.Type == TokenFor {
		n := p.nodeAt(types.NodeArrayFor, open)
		p.advance()
		p.expect(TokenParenOpen)
		n.Condition = p.parseExpr()
		p.expect(TokenParenClose)
		n.Lets = p.parseLets()
		n.Body = p.parseExpr()
		n.Filter = p.parseFilter()
		p.expect(TokenBracketClose)
		return n
	}

	n := p.nodeAt(types.NodeArray, open)
	for p.current.Type != TokenBracketClose {
		n.Expressions = append(n.Expressions, p.parseExpr())
		if !p.accept(TokenComma) {
			break
		}
	}
	p.expect(TokenBracketClose)
	return n
}

// parseObject: '{' lets (for ... | pairs matcher?) '}'
func (p *Parser) parseObject() *types.ASTNode {
	open := p.current
	p.expect(TokenBraceOpen)
	lets := p.parseLets()

	if p.current.Type == TokenFor {
		n := p.nodeAt(types.NodeObjectFor, open)
		p.advance()
		p.expect(TokenParenOpen)
		n.Condition = p.parseExpr()
		p.expect(TokenParenClose)
		n.Lets = append(lets, p.parseLets()...)
		n.LHS = p.parseExpr()
		p.expect(TokenColon)
		n.RHS = p.parseExpr()
		n.Filter = p.parseFilter()
		p.expect(TokenBraceClose)
		return n
	}

	n := p.nodeAt(types.NodeObject, open)
	n.Lets = lets
	for p.current.Type != TokenBraceClose {
		if p.current.Type == TokenMult {
			n.Matcher = p.parseMatcher()
			p.accept(TokenComma)
			break
		}
		pair := p.node(types.NodePair)
		pair.LHS = p.parseExpr()
		p.expect(TokenColon)
		pair.RHS = p.parseExpr()
		n.Pairs = append(n.Pairs, pair)
		if !p.accept(TokenComma) {
			break
		}
	}
	p.expect(TokenBraceClose)
	return n
}

// parseMatcher: '*' ('-' key (',' key)*)? ':' expr
func (p *Parser) parseMatcher() *types.ASTNode {
	n := p.node(types.NodeMatcher)
	p.expect(TokenMult)
	if p.accept(TokenMinus) {
		n.Minus = append(n.Minus, p.parseMatcherKey())
		for p.accept(TokenComma) {
			n.Minus = append(n.Minus, p.parseMatcherKey())
		}
	}
	p.expect(TokenColon)
	n.Body = p.parseExpr()
	return n
}

func (p *Parser) parseMatcherKey() string {
	switch p.current.Type {
	case TokenName:
		return p.expect(TokenName).Value
	case TokenString:
		return p.unescape(p.expect(TokenString))
	}
	p.unexpected("a key name")
	return ""
}

// unescape decodes the JSON escapes of a string token.
func (p *Parser) unescape(tok Token) string {
	if strings.IndexByte(tok.Value, '\\') < 0 {
		return tok.Value
	}
	out, err := jsonparser.Unescape([]byte(tok.Value), nil)
	if err != nil {
		loc := p.lexer.Locate(tok.Position)
		panic(types.Errorf(types.ErrUnsupportedEscape, &loc, "Parse error: invalid escape in string %q", tok.Value).WithCause(err))
	}
	return string(out)
}
