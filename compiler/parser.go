package compiler

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Parser: Recursive descent parser for MCFN syntax
// ---------------------------------------------------------------------------

// ExternalDefineResolver loads the raw text of defines/<name>.define for
// `#define NAME;` declarations. Supplied by the compile driver; a parser
// without one rejects external defines.
type ExternalDefineResolver func(name string) (string, error)

// Parser parses MCFN source code into routines and define tables.
// The first fault aborts parsing; there is no error recovery.
type Parser struct {
	input    string
	path     string
	toks     []Token
	i        int
	defines  DefineTable
	resolver ExternalDefineResolver
}

// NewParser creates a parser for the given input. Lexing happens up front;
// a lex fault surfaces here.
func NewParser(input, path string) (*Parser, error) {
	toks, err := Lex(input)
	if err != nil {
		if ce, ok := err.(*Error); ok {
			ce.Path = path
		}
		return nil, err
	}
	return &Parser{
		input:   input,
		path:    path,
		toks:    toks,
		defines: DefineTable{},
	}, nil
}

// SetDefineResolver installs the loader for external define files.
func (p *Parser) SetDefineResolver(fn ExternalDefineResolver) {
	p.resolver = fn
}

// cur returns the current token.
func (p *Parser) cur() Token {
	return p.toks[p.i]
}

// advance moves to the next token.
func (p *Parser) advance() {
	if p.i < len(p.toks)-1 {
		p.i++
	}
}

// curIs checks if the current token is of the given type.
func (p *Parser) curIs(t TokenType) bool {
	return p.cur().Type == t
}

// match consumes the current token if it is of the given type.
func (p *Parser) match(t TokenType) bool {
	if p.curIs(t) {
		p.advance()
		return true
	}
	return false
}

// expect consumes and returns the current token, or fails.
func (p *Parser) expect(t TokenType) (Token, error) {
	tok := p.cur()
	if tok.Type != t {
		return tok, p.errf(tok.Pos, "expected %s, got %s", t, tok.Type)
	}
	p.advance()
	return tok, nil
}

// errf builds a compilation fault carrying the parser's path.
func (p *Parser) errf(pos Position, format string, args ...interface{}) *Error {
	e := errAt(pos, format, args...)
	e.Path = p.path
	return e
}

// skipNewlines consumes any run of newline tokens.
func (p *Parser) skipNewlines() {
	for p.curIs(TokenNewline) {
		p.advance()
	}
}

// needTerminator consumes a statement terminator: ';', a newline, or the
// end of the enclosing block.
func (p *Parser) needTerminator() error {
	if p.match(TokenSemi) {
		return nil
	}
	if p.curIs(TokenNewline) {
		p.advance()
		return nil
	}
	if p.curIs(TokenRBrace) || p.curIs(TokenEOF) {
		return nil
	}
	return p.errf(p.cur().Pos, "expected ';' or newline, got %s", p.cur().Type)
}

// ---------------------------------------------------------------------------
// Top-level parsing
// ---------------------------------------------------------------------------

// ParseFile parses the whole input: #define declarations and routines.
// The returned define table holds every define encountered in this file.
func (p *Parser) ParseFile() (*SourceFile, DefineTable, error) {
	file := &SourceFile{Path: p.path}
	for !p.curIs(TokenEOF) {
		switch p.cur().Type {
		case TokenNewline, TokenSemi:
			p.advance()
		case TokenHashDefine:
			if err := p.parseDefine(); err != nil {
				return nil, nil, err
			}
		case TokenFunc:
			r, err := p.parseRoutine()
			if err != nil {
				return nil, nil, err
			}
			file.Routines = append(file.Routines, r)
		default:
			return nil, nil, p.errf(p.cur().Pos, "unexpected %s at top level", p.cur().Type)
		}
	}
	return file, p.defines, nil
}

// parseDefine parses one of:
//
//	#define NAME { ...json... }
//	#define NAME;   (external ./defines/NAME.define)
//	#define NAME:   (same as above)
func (p *Parser) parseDefine() error {
	p.advance() // consume #define
	nameTok, err := p.expect(TokenIdentifier)
	if err != nil {
		return err
	}
	name := nameTok.Literal

	if p.curIs(TokenSemi) || p.curIs(TokenColon) {
		p.advance()
		p.skipNewlines()
		if p.resolver == nil {
			return p.errf(nameTok.Pos, "external define %q: no defines directory available", name)
		}
		raw, err := p.resolver(name)
		if err != nil {
			return p.errf(nameTok.Pos, "external define %q: %v", name, err)
		}
		val, err := ParseRelaxedJSON(raw)
		if err != nil {
			return p.errf(nameTok.Pos, "external define %q: %v", name, err)
		}
		p.defines[name] = Define{Value: val, Raw: raw}
		return nil
	}

	if p.curIs(TokenLBrace) {
		raw, err := p.collectBraceText()
		if err != nil {
			return err
		}
		val, err := ParseRelaxedJSON(raw)
		if err != nil {
			return p.errf(nameTok.Pos, "define %q: %v", name, err)
		}
		p.defines[name] = Define{Value: val, Raw: raw}
		if p.curIs(TokenSemi) || p.curIs(TokenNewline) {
			p.advance()
		}
		return nil
	}

	return p.errf(p.cur().Pos, "#define %s expects '{ ... }', ';' or ':'", name)
}

// collectBraceText consumes a balanced brace block and returns the verbatim
// source text between the outer braces.
func (p *Parser) collectBraceText() (string, error) {
	open, err := p.expect(TokenLBrace)
	if err != nil {
		return "", err
	}
	depth := 1
	for depth > 0 {
		switch p.cur().Type {
		case TokenLBrace:
			depth++
		case TokenRBrace:
			depth--
			if depth == 0 {
				text := p.input[open.Pos.Offset+1 : p.cur().Pos.Offset]
				p.advance()
				return text, nil
			}
		case TokenEOF:
			return "", p.errf(open.Pos, "unterminated '{' block")
		}
		p.advance()
	}
	return "", nil
}

// parseRoutine parses a func declaration.
func (p *Parser) parseRoutine() (*Routine, error) {
	funcTok, err := p.expect(TokenFunc)
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expect(TokenIdentifier)
	if err != nil {
		return nil, err
	}

	var params []string
	if p.match(TokenLParen) {
		if p.curIs(TokenIdentifier) {
			tok, _ := p.expect(TokenIdentifier)
			params = append(params, tok.Literal)
			for p.match(TokenComma) {
				tok, err := p.expect(TokenIdentifier)
				if err != nil {
					return nil, err
				}
				params = append(params, tok.Literal)
			}
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
	}
	p.skipNewlines()

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &Routine{
		Pos:    funcTok.Pos,
		Name:   nameTok.Literal,
		Params: params,
		Body:   body,
	}, nil
}

// parseBlock parses { stmt* }.
func (p *Parser) parseBlock() ([]Stmt, error) {
	if _, err := p.expect(TokenLBrace); err != nil {
		return nil, err
	}
	var stmts []Stmt
	for {
		p.skipNewlines()
		if p.curIs(TokenRBrace) {
			p.advance()
			return stmts, nil
		}
		if p.curIs(TokenEOF) {
			return nil, p.errf(p.cur().Pos, "unterminated block")
		}
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
}

// parseStmt dispatches on the statement's leading token.
func (p *Parser) parseStmt() (Stmt, error) {
	switch p.cur().Type {
	case TokenObj:
		return p.parseObjDecl()
	case TokenVar:
		return p.parseVarDecl()
	case TokenStor:
		return p.parseStor()
	case TokenIdentifier:
		return p.parseAssignOrCompound()
	case TokenIf:
		return p.parseIf()
	case TokenWhile:
		return p.parseWhile()
	case TokenRand:
		return p.parseRand()
	case TokenRun:
		return p.parseRun()
	case TokenRuns:
		return p.parseRuns()
	case TokenShow:
		return p.parseShow()
	case TokenTitle:
		return p.parseTitle()
	case TokenCall:
		return p.parseCall()
	case TokenVCall:
		return p.parseVCall()
	case TokenReturn:
		return p.parseReturn()
	case TokenExec:
		return p.parseExec()
	default:
		return nil, p.errf(p.cur().Pos, "unexpected %s", p.cur().Type)
	}
}

// ---------------------------------------------------------------------------
// Declarations
// ---------------------------------------------------------------------------

func (p *Parser) parseObjDecl() (Stmt, error) {
	objTok, _ := p.expect(TokenObj)
	var pairs []ObjPair
	for {
		nameTok, err := p.expect(TokenIdentifier)
		if err != nil {
			return nil, err
		}
		crit := "dummy"
		if p.match(TokenLParen) {
			critTok, err := p.expect(TokenIdentifier)
			if err != nil {
				return nil, err
			}
			crit = critTok.Literal
			if _, err := p.expect(TokenRParen); err != nil {
				return nil, err
			}
		}
		pairs = append(pairs, ObjPair{Name: nameTok.Literal, Criterion: crit})
		if !p.match(TokenComma) {
			break
		}
	}
	if err := p.needTerminator(); err != nil {
		return nil, err
	}
	return &ObjDecl{Pos: objTok.Pos, Pairs: pairs}, nil
}

func (p *Parser) parseVarDecl() (Stmt, error) {
	varTok, _ := p.expect(TokenVar)
	var refs []ScoreRef
	for {
		ref, err := p.parseRef()
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
		if !p.match(TokenComma) {
			break
		}
	}
	if err := p.needTerminator(); err != nil {
		return nil, err
	}
	return &VarDecl{Pos: varTok.Pos, Refs: refs}, nil
}

func (p *Parser) parseStor() (Stmt, error) {
	storTok, _ := p.expect(TokenStor)
	var items []StorItem
	for {
		keyTok, err := p.expect(TokenIdentifier)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenAssign); err != nil {
			return nil, err
		}

		var val StorValue
		switch p.cur().Type {
		case TokenNumber, TokenMinus:
			n, err := p.parseSignedNumber()
			if err != nil {
				return nil, err
			}
			val = &StorInt{Value: n}
		case TokenString:
			s, err := p.unquote(p.cur())
			if err != nil {
				return nil, err
			}
			p.advance()
			val = &StorString{Value: s}
		case TokenLBrace:
			raw, err := p.collectBraceText()
			if err != nil {
				return nil, err
			}
			val = &StorJSON{Text: "{" + FlattenSpace(raw) + "}"}
		case TokenDefRef:
			name := defRefRe.FindStringSubmatch(p.cur().Literal)[1]
			p.advance()
			val = &StorDef{Name: name}
		default:
			return nil, p.errf(p.cur().Pos, "invalid stor value: %s", p.cur().Type)
		}
		items = append(items, StorItem{Key: keyTok.Literal, Value: val})
		if !p.match(TokenComma) {
			break
		}
	}
	if err := p.needTerminator(); err != nil {
		return nil, err
	}
	return &Stor{Pos: storTok.Pos, Items: items}, nil
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// parseRef parses obj:name.
func (p *Parser) parseRef() (ScoreRef, error) {
	objTok, err := p.expect(TokenIdentifier)
	if err != nil {
		return ScoreRef{}, err
	}
	if _, err := p.expect(TokenColon); err != nil {
		return ScoreRef{}, err
	}
	nameTok, err := p.expect(TokenIdentifier)
	if err != nil {
		return ScoreRef{}, err
	}
	return ScoreRef{Obj: objTok.Literal, Name: nameTok.Literal}, nil
}

// parseSignedNumber parses an integer with an optional leading minus.
func (p *Parser) parseSignedNumber() (int, error) {
	neg := p.match(TokenMinus)
	tok, err := p.expect(TokenNumber)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(tok.Literal)
	if err != nil {
		return 0, p.errf(tok.Pos, "invalid integer %q", tok.Literal)
	}
	if neg {
		n = -n
	}
	return n, nil
}

func (p *Parser) parseExpr() (Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.curIs(TokenPlus) || p.curIs(TokenMinus) {
		op := p.cur().Literal
		pos := p.cur().Pos
		p.advance()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Pos: pos, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseTerm() (Expr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.curIs(TokenStar) || p.curIs(TokenSlash) {
		op := p.cur().Literal
		pos := p.cur().Pos
		p.advance()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Pos: pos, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseFactor() (Expr, error) {
	tok := p.cur()
	switch tok.Type {
	case TokenNumber, TokenMinus:
		n, err := p.parseSignedNumber()
		if err != nil {
			return nil, err
		}
		return &IntLit{Pos: tok.Pos, Value: n}, nil
	case TokenString:
		s, err := p.unquote(tok)
		if err != nil {
			return nil, err
		}
		p.advance()
		return &StrLit{Pos: tok.Pos, Value: s}, nil
	case TokenIdentifier:
		ref, err := p.parseRef()
		if err != nil {
			return nil, err
		}
		return &RefExpr{Pos: tok.Pos, Ref: ref}, nil
	case TokenLParen:
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, p.errf(tok.Pos, "expected expression, got %s", tok.Type)
	}
}

// unquote decodes a string token's literal (JSON escape rules).
func (p *Parser) unquote(tok Token) (string, error) {
	var s string
	if err := json.Unmarshal([]byte(tok.Literal), &s); err != nil {
		return "", p.errf(tok.Pos, "invalid string literal")
	}
	return s, nil
}

// vContent returns the interpolation text of a v-string token. Escapes are
// left alone; v-strings pass through to the interpolation engine verbatim.
func vContent(tok Token) string {
	return tok.Literal[2 : len(tok.Literal)-1]
}

// ---------------------------------------------------------------------------
// Assignment and arithmetic
// ---------------------------------------------------------------------------

func (p *Parser) parseAssignOrCompound() (Stmt, error) {
	startPos := p.cur().Pos
	ref, err := p.parseRef()
	if err != nil {
		return nil, err
	}

	switch p.cur().Type {
	case TokenAssign:
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.needTerminator(); err != nil {
			return nil, err
		}
		return &Assign{Pos: startPos, Target: ref, Value: e}, nil

	case TokenPlusEq, TokenMinusEq, TokenStarEq, TokenSlashEq:
		op := p.cur().Literal
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.needTerminator(); err != nil {
			return nil, err
		}
		return &CompoundAssign{Pos: startPos, Target: ref, Op: op, Value: e}, nil

	default:
		return nil, p.errf(p.cur().Pos, "expected assignment, got %s", p.cur().Type)
	}
}

// ---------------------------------------------------------------------------
// Control flow
// ---------------------------------------------------------------------------

// parseSlot parses an optional [slot] suspension annotation.
func (p *Parser) parseSlot() (string, error) {
	if !p.match(TokenLBracket) {
		return "", nil
	}
	tok, err := p.expect(TokenIdentifier)
	if err != nil {
		return "", err
	}
	if _, err := p.expect(TokenRBracket); err != nil {
		return "", err
	}
	return tok.Literal, nil
}

var relationalOps = map[TokenType]string{
	TokenEq: "==",
	TokenNe: "!=",
	TokenLt: "<",
	TokenLe: "<=",
	TokenGt: ">",
	TokenGe: ">=",
}

func (p *Parser) parseIf() (Stmt, error) {
	ifTok, _ := p.expect(TokenIf)
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	lhs, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	op, ok := relationalOps[p.cur().Type]
	if !ok {
		return nil, p.errf(p.cur().Pos, "expected comparison operator, got %s", p.cur().Type)
	}
	p.advance()
	rhs, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	slot, err := p.parseSlot()
	if err != nil {
		return nil, err
	}
	p.skipNewlines()
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &If{Pos: ifTok.Pos, LHS: lhs, Op: op, RHS: rhs, Body: body, Slot: slot}, nil
}

func (p *Parser) parseWhile() (Stmt, error) {
	whileTok, _ := p.expect(TokenWhile)
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	ref, err := p.parseRef()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	slot, err := p.parseSlot()
	if err != nil {
		return nil, err
	}
	p.skipNewlines()
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &While{Pos: whileTok.Pos, Cond: ref, Body: body, Slot: slot}, nil
}

func (p *Parser) parseRand() (Stmt, error) {
	randTok, _ := p.expect(TokenRand)
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	ref, err := p.parseRef()
	if err != nil {
		return nil, err
	}
	s := &Rand{Pos: randTok.Pos, Target: ref}
	if p.match(TokenComma) {
		lo, err := p.parseSignedNumber()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenComma); err != nil {
			return nil, err
		}
		hi, err := p.parseSignedNumber()
		if err != nil {
			return nil, err
		}
		s.HasRange = true
		s.Lo, s.Hi = lo, hi
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	if err := p.needTerminator(); err != nil {
		return nil, err
	}
	return s, nil
}

// ---------------------------------------------------------------------------
// Passthrough and broadcast
// ---------------------------------------------------------------------------

func (p *Parser) parseRun() (Stmt, error) {
	runTok, _ := p.expect(TokenRun)
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	tok := p.cur()
	var s *Run
	switch tok.Type {
	case TokenVString:
		p.advance()
		s = &Run{Pos: runTok.Pos, Text: vContent(tok), Interp: true}
	case TokenString:
		text, err := p.unquote(tok)
		if err != nil {
			return nil, err
		}
		p.advance()
		s = &Run{Pos: runTok.Pos, Text: text}
	default:
		return nil, p.errf(tok.Pos, "run(...) expects a string, got %s", tok.Type)
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	if err := p.needTerminator(); err != nil {
		return nil, err
	}
	return s, nil
}

func (p *Parser) parseRuns() (Stmt, error) {
	runsTok, _ := p.expect(TokenRuns)
	p.skipNewlines()
	lines, err := p.collectRawLines()
	if err != nil {
		return nil, err
	}
	return &Runs{Pos: runsTok.Pos, Lines: lines}, nil
}

// collectRawLines consumes a balanced brace block and returns its verbatim
// source lines as command lines: // tails cut, whitespace runs collapsed,
// blank lines dropped. Slicing the source directly keeps resource locations
// and NBT fragments byte-exact.
func (p *Parser) collectRawLines() ([]string, error) {
	text, err := p.collectBraceText()
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, ln := range strings.Split(text, "\n") {
		if c := strings.Index(ln, "//"); c != -1 {
			ln = ln[:c]
		}
		ln = strings.Join(strings.Fields(ln), " ")
		if ln != "" {
			lines = append(lines, ln)
		}
	}
	return lines, nil
}

func (p *Parser) parseShow() (Stmt, error) {
	showTok, _ := p.expect(TokenShow)
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	tok := p.cur()
	if tok.Type != TokenVString {
		return nil, p.errf(tok.Pos, `show(...) expects v"..." interpolated text`)
	}
	p.advance()
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	if err := p.needTerminator(); err != nil {
		return nil, err
	}
	return &Show{Pos: showTok.Pos, Text: vContent(tok)}, nil
}

func (p *Parser) parseTitle() (Stmt, error) {
	titleTok, _ := p.expect(TokenTitle)
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	// optional leading position word: title(title, "...")
	if p.curIs(TokenIdentifier) || p.curIs(TokenTitle) {
		p.advance()
		if _, err := p.expect(TokenComma); err != nil {
			return nil, err
		}
	}
	tok := p.cur()
	if tok.Type != TokenString {
		return nil, p.errf(tok.Pos, "title(...) expects a plain string, got %s", tok.Type)
	}
	text, err := p.unquote(tok)
	if err != nil {
		return nil, err
	}
	p.advance()
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	if err := p.needTerminator(); err != nil {
		return nil, err
	}
	return &Title{Pos: titleTok.Pos, Text: text}, nil
}

// ---------------------------------------------------------------------------
// Calls, return, exec
// ---------------------------------------------------------------------------

// parseArgs parses a parenthesized, comma-separated argument list.
func (p *Parser) parseArgs() ([]Expr, error) {
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	var args []Expr
	if !p.curIs(TokenRParen) {
		for {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, e)
			if !p.match(TokenComma) {
				break
			}
		}
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parseCall() (Stmt, error) {
	callTok, _ := p.expect(TokenCall)
	nameTok, err := p.expect(TokenIdentifier)
	if err != nil {
		return nil, err
	}
	args, err := p.parseArgs()
	if err != nil {
		return nil, err
	}
	slot, err := p.parseSlot()
	if err != nil {
		return nil, err
	}
	if err := p.needTerminator(); err != nil {
		return nil, err
	}
	return &Call{Pos: callTok.Pos, Name: nameTok.Literal, Args: args, Slot: slot}, nil
}

func (p *Parser) parseVCall() (Stmt, error) {
	vcallTok, _ := p.expect(TokenVCall)
	dst, err := p.parseRef()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenComma); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(TokenIdentifier)
	if err != nil {
		return nil, err
	}
	args, err := p.parseArgs()
	if err != nil {
		return nil, err
	}
	slot, err := p.parseSlot()
	if err != nil {
		return nil, err
	}
	if err := p.needTerminator(); err != nil {
		return nil, err
	}
	return &VCall{Pos: vcallTok.Pos, Dst: dst, Name: nameTok.Literal, Args: args, Slot: slot}, nil
}

func (p *Parser) parseReturn() (Stmt, error) {
	retTok, _ := p.expect(TokenReturn)
	var val Expr
	switch p.cur().Type {
	case TokenNumber, TokenMinus, TokenString, TokenIdentifier, TokenLParen:
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		val = e
	}
	if err := p.needTerminator(); err != nil {
		return nil, err
	}
	return &Return{Pos: retTok.Pos, Value: val}, nil
}

func (p *Parser) parseExec() (Stmt, error) {
	execTok, _ := p.expect(TokenExec)

	var selector string
	switch p.cur().Type {
	case TokenSelector, TokenIdentifier:
		selector = p.cur().Literal
		p.advance()
	case TokenString:
		s, err := p.unquote(p.cur())
		if err != nil {
			return nil, err
		}
		selector = s
		p.advance()
	default:
		return nil, p.errf(p.cur().Pos, "exec expects a selector, got %s", p.cur().Type)
	}
	p.skipNewlines()
	if _, err := p.expect(TokenLBrace); err != nil {
		return nil, err
	}

	s := &Exec{Pos: execTok.Pos, Selector: selector}
	for {
		p.skipNewlines()
		switch p.cur().Type {
		case TokenRBrace:
			p.advance()
			return s, nil
		case TokenEOF:
			return nil, p.errf(execTok.Pos, "unterminated exec block")
		case TokenRuns:
			p.advance()
			p.skipNewlines()
			lines, err := p.collectRawLines()
			if err != nil {
				return nil, err
			}
			s.RunLines = append(s.RunLines, lines...)
		case TokenData:
			p.advance()
			p.skipNewlines()
			lines, err := p.collectRawLines()
			if err != nil {
				return nil, err
			}
			s.DataLines = append(s.DataLines, lines...)
		default:
			return nil, p.errf(p.cur().Pos, "exec block allows only runs{...} and data{...}, got %s", p.cur().Type)
		}
	}
}
