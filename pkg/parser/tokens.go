package parser

// TokenType identifies the kind of a lexical token.
type TokenType uint8

const (
	TokenEOF TokenType = iota
	TokenError

	TokenString   // "text" with JSON escapes
	TokenNumber   // JSON number syntax
	TokenName     // is-number, fallback
	TokenPName    // prefix:name
	TokenVariable // $name
	TokenDotKey   // .key
	TokenDotStr   // ."quoted key"

	// keywords, contiguous so String can range-check them
	TokenNull
	TokenTrue
	TokenFalse
	TokenAnd
	TokenOr
	TokenIf
	TokenElse
	TokenFor
	TokenLet
	TokenDef
	TokenImport
	TokenAs

	TokenBracketOpen
	TokenBracketClose
	TokenBraceOpen
	TokenBraceClose
	TokenParenOpen
	TokenParenClose
	TokenDot
	TokenComma
	TokenColon
	TokenAssign
	TokenPlus
	TokenMinus
	TokenMult
	TokenDiv
	TokenMod
	TokenPipe
	TokenEqual
	TokenNotEqual
	TokenLess
	TokenLessEqual
	TokenGreater
	TokenGreaterEqual
)

var tokenNames = [...]string{
	TokenEOF:          "(eof)",
	TokenError:        "(error)",
	TokenString:       "(string)",
	TokenNumber:       "(number)",
	TokenName:         "(name)",
	TokenPName:        "(prefixed name)",
	TokenVariable:     "(variable)",
	TokenDotKey:       "(key)",
	TokenDotStr:       "(key)",
	TokenBracketOpen:  "[",
	TokenBracketClose: "]",
	TokenBraceOpen:    "{",
	TokenBraceClose:   "}",
	TokenParenOpen:    "(",
	TokenParenClose:   ")",
	TokenDot:          ".",
	TokenComma:        ",",
	TokenColon:        ":",
	TokenAssign:       "=",
	TokenPlus:         "+",
	TokenMinus:        "-",
	TokenMult:         "*",
	TokenDiv:          "/",
	TokenMod:          "%",
	TokenPipe:         "|",
	TokenEqual:        "==",
	TokenNotEqual:     "!=",
	TokenLess:         "<",
	TokenLessEqual:    "<=",
	TokenGreater:      ">",
	TokenGreaterEqual: ">=",
}

func (tt TokenType) String() string {
	if tt >= TokenNull && tt <= TokenAs {
		for word, kw := range keywords {
			if kw == tt {
				return word
			}
		}
	}
	if int(tt) < len(tokenNames) && tokenNames[tt] != "" {
		return tokenNames[tt]
	}
	return "(unknown)"
}

// Token is one lexeme of a template. Position is the byte offset of its
// first character.
type Token struct {
	Type     TokenType
	Value    string
	Position int
}

var keywords = map[string]TokenType{
	"null":   TokenNull,
	"true":   TokenTrue,
	"false":  TokenFalse,
	"and":    TokenAnd,
	"or":     TokenOr,
	"if":     TokenIf,
	"else":   TokenElse,
	"for":    TokenFor,
	"let":    TokenLet,
	"def":    TokenDef,
	"import": TokenImport,
	"as":     TokenAs,
}

var punctuation = map[rune]TokenType{
	'[': TokenBracketOpen,
	']': TokenBracketClose,
	'{': TokenBraceOpen,
	'}': TokenBraceClose,
	'(': TokenParenOpen,
	')': TokenParenClose,
	'.': TokenDot,
	',': TokenComma,
	':': TokenColon,
	'=': TokenAssign,
	'+': TokenPlus,
	'-': TokenMinus,
	'*': TokenMult,
	'/': TokenDiv,
	'%': TokenMod,
	'|': TokenPipe,
	'<': TokenLess,
	'>': TokenGreater,
}

// withEquals holds the operators formed by a first character followed by '='.
var withEquals = map[rune]TokenType{
	'=': TokenEqual,
	'!': TokenNotEqual,
	'<': TokenLessEqual,
	'>': TokenGreaterEqual,
}
