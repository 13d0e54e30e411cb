// Package token defines the lexer's output vocabulary: token kinds,
// the keyword table, and the Token value itself (§3.2).
package token

import (
	"fmt"

	"github.com/shkhuz/aria/internal/bigint"
	"github.com/shkhuz/aria/internal/source"
)

// Kind tags a Token's syntactic category.
type Kind int

const (
	Invalid Kind = iota
	EOF

	Ident
	Keyword
	StringLit
	IntLit
	CharLit

	// Brackets
	LBrace // {
	RBrace // }
	LBrack // [
	RBrack // ]
	LParen // (
	RParen // )

	Colon     // :
	Semicolon // ;
	Dot       // .
	Comma     // ,

	Assign // =
	Eq     // ==
	Bang   // !
	NotEq  // !=
	Lt     // <
	LtEq   // <=
	Gt     // >
	GtEq   // >=
	Amp    // &
	AmpAmp // &&
	PipePipe
	Plus  // +
	Minus // -
	Star  // *
	Slash // /
)

var kindNames = map[Kind]string{
	Invalid: "invalid", EOF: "EOF", Ident: "identifier", Keyword: "keyword",
	StringLit: "string literal", IntLit: "integer literal", CharLit: "char literal",
	LBrace: "{", RBrace: "}", LBrack: "[", RBrack: "]", LParen: "(", RParen: ")",
	Colon: ":", Semicolon: ";", Dot: ".", Comma: ",",
	Assign: "=", Eq: "==", Bang: "!", NotEq: "!=",
	Lt: "<", LtEq: "<=", Gt: ">", GtEq: ">=",
	Amp: "&", AmpAmp: "&&", PipePipe: "||",
	Plus: "+", Minus: "-", Star: "*", Slash: "/",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// KeywordKind further classifies a Keyword token.
type KeywordKind int

const (
	KwImm KeywordKind = iota
	KwMut
	KwFn
	KwExtern
	KwStruct
	KwType
	KwImport
	KwIf
	KwElse
	KwWhile
	KwFor
	KwBreak
	KwContinue
	KwReturn
	KwAs
	KwTrue
	KwFalse
	KwVoid
	KwNoreturn
	// primitive type keywords
	KwU8
	KwU16
	KwU32
	KwU64
	KwI8
	KwI16
	KwI32
	KwI64
	KwBool
)

// Keywords maps the spelling to its KeywordKind. The lexer consults
// this table after matching the identifier grammar; anything not
// present here is a plain Ident token (§4.2).
var Keywords = map[string]KeywordKind{
	"imm": KwImm, "mut": KwMut, "fn": KwFn, "extern": KwExtern,
	"struct": KwStruct, "type": KwType, "import": KwImport,
	"if": KwIf, "else": KwElse, "while": KwWhile, "for": KwFor,
	"break": KwBreak, "continue": KwContinue, "return": KwReturn,
	"as": KwAs, "true": KwTrue, "false": KwFalse,
	"void": KwVoid, "noreturn": KwNoreturn,
	"u8": KwU8, "u16": KwU16, "u32": KwU32, "u64": KwU64,
	"i8": KwI8, "i16": KwI16, "i32": KwI32, "i64": KwI64,
	"bool": KwBool,
}

// PrimKeywords is the subset of Keywords that name a builtin type:
// the sized integers, bool, void and noreturn (§4.3, §4.5.4).
var PrimKeywords = map[KeywordKind]bool{
	KwU8: true, KwU16: true, KwU32: true, KwU64: true,
	KwI8: true, KwI16: true, KwI32: true, KwI64: true,
	KwBool: true, KwVoid: true, KwNoreturn: true,
}

// Token is a tagged variant over identifiers, classified keywords,
// literals, and punctuation/operator kinds, each carrying its span
// (§3.2).
type Token struct {
	Kind    Kind
	Span    source.Span
	Lexeme  string // source spelling of identifiers, keywords and literals; empty for punctuation and EOF
	Keyword KeywordKind
	IntVal  bigint.Int // only meaningful when Kind == IntLit
	CharVal rune       // only meaningful when Kind == CharLit
}

func (t Token) String() string {
	switch t.Kind {
	case Ident, StringLit, CharLit:
		return fmt.Sprintf("%s(%q)", t.Kind, t.Lexeme)
	case IntLit:
		return fmt.Sprintf("%s(%s)", t.Kind, t.IntVal.String())
	case Keyword:
		return fmt.Sprintf("keyword(%q)", t.Lexeme)
	default:
		return t.Kind.String()
	}
}
