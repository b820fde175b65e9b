package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Token types for the MCFN lexer
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError
	TokenNewline
	TokenRaw // unstructured text inside runs/data blocks

	// Literals
	TokenNumber     // 42, -7
	TokenString     // "hello"
	TokenVString    // v"interpolated [obj:name]"
	TokenSelector   // @a, @e[tag=foo]
	TokenDefRef     // $def(NAME)
	TokenIdentifier // foo, Bar

	// Keywords
	TokenFunc
	TokenObj
	TokenVar
	TokenStor
	TokenIf
	TokenWhile
	TokenRun
	TokenRuns
	TokenShow
	TokenTitle
	TokenCall
	TokenVCall
	TokenReturn
	TokenExec
	TokenData
	TokenRand
	TokenHashDefine // #define

	// Operators and delimiters
	TokenLParen   // (
	TokenRParen   // )
	TokenLBrace   // {
	TokenRBrace   // }
	TokenLBracket // [
	TokenRBracket // ]
	TokenColon    // :
	TokenComma    // ,
	TokenSemi     // ;
	TokenAssign   // =
	TokenPlusEq   // +=
	TokenMinusEq  // -=
	TokenStarEq   // *=
	TokenSlashEq  // /=
	TokenPlus     // +
	TokenMinus    // -
	TokenStar     // *
	TokenSlash    // /
	TokenEq       // ==
	TokenNe       // !=
	TokenLt       // <
	TokenLe       // <=
	TokenGt       // >
	TokenGe       // >=
)

var tokenNames = map[TokenType]string{
	TokenEOF:        "EOF",
	TokenError:      "ERROR",
	TokenNewline:    "NEWLINE",
	TokenRaw:        "RAW",
	TokenNumber:     "NUMBER",
	TokenString:     "STRING",
	TokenVString:    "VSTRING",
	TokenSelector:   "SELECTOR",
	TokenDefRef:     "DEFREF",
	TokenIdentifier: "IDENTIFIER",
	TokenFunc:       "func",
	TokenObj:        "obj",
	TokenVar:        "var",
	TokenStor:       "stor",
	TokenIf:         "if",
	TokenWhile:      "while",
	TokenRun:        "run",
	TokenRuns:       "runs",
	TokenShow:       "show",
	TokenTitle:      "title",
	TokenCall:       "call",
	TokenVCall:      "vcall",
	TokenReturn:     "return",
	TokenExec:       "exec",
	TokenData:       "data",
	TokenRand:       "rand",
	TokenHashDefine: "#define",
	TokenLParen:     "(",
	TokenRParen:     ")",
	TokenLBrace:     "{",
	TokenRBrace:     "}",
	TokenLBracket:   "[",
	TokenRBracket:   "]",
	TokenColon:      ":",
	TokenComma:      ",",
	TokenSemi:       ";",
	TokenAssign:     "=",
	TokenPlusEq:     "+=",
	TokenMinusEq:    "-=",
	TokenStarEq:     "*=",
	TokenSlashEq:    "/=",
	TokenPlus:       "+",
	TokenMinus:      "-",
	TokenStar:       "*",
	TokenSlash:      "/",
	TokenEq:         "==",
	TokenNe:         "!=",
	TokenLt:         "<",
	TokenLe:         "<=",
	TokenGt:         ">",
	TokenGe:         ">=",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", t)
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string   // the raw text (string tokens keep their quotes)
	Pos     Position // start position
}

func (t Token) String() string {
	if t.Type == TokenEOF {
		return "EOF"
	}
	if t.Type == TokenError {
		return fmt.Sprintf("ERROR(%s)", t.Literal)
	}
	if len(t.Literal) > 20 {
		return fmt.Sprintf("%s(%q...)", t.Type, t.Literal[:20])
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
}

// Reserved words mapped to their token types.
var reservedWords = map[string]TokenType{
	"func":   TokenFunc,
	"obj":    TokenObj,
	"var":    TokenVar,
	"stor":   TokenStor,
	"if":     TokenIf,
	"while":  TokenWhile,
	"run":    TokenRun,
	"runs":   TokenRuns,
	"show":   TokenShow,
	"title":  TokenTitle,
	"call":   TokenCall,
	"vcall":  TokenVCall,
	"return": TokenReturn,
	"exec":   TokenExec,
	"data":   TokenData,
	"rand":   TokenRand,
}
