package compiler

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Lexer: Tokenizer for MCFN syntax
// ---------------------------------------------------------------------------

// Lexer tokenizes MCFN source code. Newlines are significant (they act as
// statement terminators) and are emitted as tokens; other whitespace and
// // comments are skipped. Text that matches no token rule is absorbed into
// a raw token running to the end of the line or the next brace, which is how
// arbitrary host commands survive inside runs/data blocks.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      rune // current character
	line    int  // current line (1-based)
	col     int  // current column (1-based)
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
	}
	l.readChar()
	return l
}

// Lex tokenizes the whole input. It stops at the first lexical fault.
func Lex(input string) ([]Token, error) {
	l := NewLexer(input)
	var toks []Token
	for {
		tok := l.NextToken()
		if tok.Type == TokenError {
			return nil, errAt(tok.Pos, "%s", tok.Literal)
		}
		toks = append(toks, tok)
		if tok.Type == TokenEOF {
			return toks, nil
		}
	}
}

// readChar reads the next character. Line and column always describe the
// character currently in ch.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0 // EOF
		l.pos = l.readPos
	} else {
		r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
		l.ch = r
		l.pos = l.readPos
		l.readPos += size
	}
	l.col++
}

// peekChar returns the next character without consuming it.
func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

// position returns the current position.
func (l *Lexer) position() Position {
	return Position{
		Offset: l.pos,
		Line:   l.line,
		Column: l.col,
	}
}

// skipSpaceAndComments skips spaces, tabs, carriage returns and // comments,
// but never newlines.
func (l *Lexer) skipSpaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		default:
			return
		}
	}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	l.skipSpaceAndComments()

	pos := l.position()

	switch {
	case l.ch == 0:
		return Token{Type: TokenEOF, Literal: "", Pos: pos}

	case l.ch == '\n':
		l.readChar()
		return Token{Type: TokenNewline, Literal: "\n", Pos: pos}

	case l.ch == '(':
		l.readChar()
		return Token{Type: TokenLParen, Literal: "(", Pos: pos}

	case l.ch == ')':
		l.readChar()
		return Token{Type: TokenRParen, Literal: ")", Pos: pos}

	case l.ch == '{':
		l.readChar()
		return Token{Type: TokenLBrace, Literal: "{", Pos: pos}

	case l.ch == '}':
		l.readChar()
		return Token{Type: TokenRBrace, Literal: "}", Pos: pos}

	case l.ch == '[':
		l.readChar()
		return Token{Type: TokenLBracket, Literal: "[", Pos: pos}

	case l.ch == ']':
		l.readChar()
		return Token{Type: TokenRBracket, Literal: "]", Pos: pos}

	case l.ch == ':':
		l.readChar()
		return Token{Type: TokenColon, Literal: ":", Pos: pos}

	case l.ch == ',':
		l.readChar()
		return Token{Type: TokenComma, Literal: ",", Pos: pos}

	case l.ch == ';':
		l.readChar()
		return Token{Type: TokenSemi, Literal: ";", Pos: pos}

	case l.ch == '=':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return Token{Type: TokenEq, Literal: "==", Pos: pos}
		}
		return Token{Type: TokenAssign, Literal: "=", Pos: pos}

	case l.ch == '!':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Type: TokenNe, Literal: "!=", Pos: pos}
		}
		return l.readRaw(pos)

	case l.ch == '<':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return Token{Type: TokenLe, Literal: "<=", Pos: pos}
		}
		return Token{Type: TokenLt, Literal: "<", Pos: pos}

	case l.ch == '>':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return Token{Type: TokenGe, Literal: ">=", Pos: pos}
		}
		return Token{Type: TokenGt, Literal: ">", Pos: pos}

	case l.ch == '+':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return Token{Type: TokenPlusEq, Literal: "+=", Pos: pos}
		}
		return Token{Type: TokenPlus, Literal: "+", Pos: pos}

	case l.ch == '-':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return Token{Type: TokenMinusEq, Literal: "-=", Pos: pos}
		}
		return Token{Type: TokenMinus, Literal: "-", Pos: pos}

	case l.ch == '*':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return Token{Type: TokenStarEq, Literal: "*=", Pos: pos}
		}
		return Token{Type: TokenStar, Literal: "*", Pos: pos}

	case l.ch == '/':
		// "//" was consumed as a comment above
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return Token{Type: TokenSlashEq, Literal: "/=", Pos: pos}
		}
		return Token{Type: TokenSlash, Literal: "/", Pos: pos}

	case l.ch == '"':
		return l.readString(pos, "")

	case l.ch == '#':
		return l.readHashDefine(pos)

	case l.ch == '$':
		return l.readDefRef(pos)

	case l.ch == '@':
		return l.readSelector(pos)

	case unicode.IsDigit(l.ch):
		return l.readNumber(pos)

	case isIdentStart(l.ch):
		return l.readIdentifier(pos)

	default:
		return l.readRaw(pos)
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// readIdentifier reads an identifier or keyword. An identifier "v"
// immediately followed by a double quote introduces a v-string.
func (l *Lexer) readIdentifier(pos Position) Token {
	start := l.pos
	for isIdentChar(l.ch) {
		l.readChar()
	}
	lit := l.input[start:l.pos]

	if lit == "v" && l.ch == '"' {
		return l.readString(pos, "v")
	}

	if t, ok := reservedWords[lit]; ok {
		return Token{Type: t, Literal: lit, Pos: pos}
	}
	return Token{Type: TokenIdentifier, Literal: lit, Pos: pos}
}

// readNumber reads an unsigned integer literal. Signs are handled by the
// parser so that binary minus stays unambiguous.
func (l *Lexer) readNumber(pos Position) Token {
	start := l.pos
	for unicode.IsDigit(l.ch) {
		l.readChar()
	}
	return Token{Type: TokenNumber, Literal: l.input[start:l.pos], Pos: pos}
}

// readString reads a double-quoted string. The literal keeps its quotes
// (and the v prefix for v-strings); escape handling happens at parse time.
func (l *Lexer) readString(pos Position, prefix string) Token {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteByte('"')
	l.readChar() // consume opening quote
	for {
		switch l.ch {
		case 0, '\n':
			return Token{Type: TokenError, Literal: "unterminated string", Pos: pos}
		case '\\':
			b.WriteRune(l.ch)
			l.readChar()
			if l.ch == 0 || l.ch == '\n' {
				return Token{Type: TokenError, Literal: "unterminated string", Pos: pos}
			}
			b.WriteRune(l.ch)
			l.readChar()
		case '"':
			b.WriteByte('"')
			l.readChar()
			typ := TokenString
			if prefix == "v" {
				typ = TokenVString
			}
			return Token{Type: typ, Literal: b.String(), Pos: pos}
		default:
			b.WriteRune(l.ch)
			l.readChar()
		}
	}
}

// readHashDefine reads the #define keyword. A bare # that is not part of
// #define falls through to raw text.
func (l *Lexer) readHashDefine(pos Position) Token {
	if strings.HasPrefix(l.input[l.pos:], "#define") {
		rest := l.input[l.pos+len("#define"):]
		if rest == "" || !isIdentChar(firstRune(rest)) {
			for i := 0; i < len("#define"); i++ {
				l.readChar()
			}
			return Token{Type: TokenHashDefine, Literal: "#define", Pos: pos}
		}
	}
	return l.readRaw(pos)
}

// readDefRef reads $def(NAME) or $(NAME).
func (l *Lexer) readDefRef(pos Position) Token {
	start := l.pos
	l.readChar() // consume $
	if strings.HasPrefix(l.input[l.pos:], "def(") {
		for i := 0; i < 3; i++ {
			l.readChar()
		}
	}
	if l.ch != '(' {
		return l.readRawFrom(start, pos)
	}
	l.readChar() // consume (
	if !isIdentStart(l.ch) {
		return Token{Type: TokenError, Literal: "malformed $def(...) reference", Pos: pos}
	}
	for isIdentChar(l.ch) {
		l.readChar()
	}
	if l.ch != ')' {
		return Token{Type: TokenError, Literal: "malformed $def(...) reference", Pos: pos}
	}
	l.readChar() // consume )
	return Token{Type: TokenDefRef, Literal: l.input[start:l.pos], Pos: pos}
}

// readSelector reads a target selector: @a, @s, @e[tag=foo], etc.
func (l *Lexer) readSelector(pos Position) Token {
	start := l.pos
	l.readChar() // consume @
	n := 0
	for n < 2 && strings.ContainsRune("pares", l.ch) {
		l.readChar()
		n++
	}
	if n == 0 {
		return l.readRawFrom(start, pos)
	}
	if l.ch == '[' {
		for l.ch != ']' {
			if l.ch == 0 || l.ch == '\n' {
				return Token{Type: TokenError, Literal: "unterminated selector", Pos: pos}
			}
			l.readChar()
		}
		l.readChar() // consume ]
	}
	return Token{Type: TokenSelector, Literal: l.input[start:l.pos], Pos: pos}
}

// readRaw absorbs text that matches no other rule, up to the end of the
// line or the next brace. Raw tokens only ever surface inside runs/data
// blocks, where the parser reassembles them into command lines.
func (l *Lexer) readRaw(pos Position) Token {
	return l.readRawFrom(l.pos, pos)
}

// readRawFrom absorbs raw text whose first characters were already consumed
// by a rule that then failed to match.
func (l *Lexer) readRawFrom(start int, pos Position) Token {
	for l.ch != 0 && l.ch != '\n' && l.ch != '{' && l.ch != '}' {
		l.readChar()
	}
	lit := strings.TrimRight(l.input[start:l.pos], " \t\r")
	return Token{Type: TokenRaw, Literal: lit, Pos: pos}
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}
