// Package parser is a recursive-descent parser with a Pratt
// expression sub-parser, producing an ast.Program from a token
// stream. This is peripheral machinery per the spec: a conventional,
// well-understood pattern, specified here only to the extent that its
// output shape feeds the semantic analyzer and TAC generator.
package parser

import (
	"fmt"

	"github.com/gmofishsauce/tacc/internal/ast"
	"github.com/gmofishsauce/tacc/internal/diag"
	"github.com/gmofishsauce/tacc/internal/token"
)

// Parser holds the token stream and parse position.
type Parser struct {
	toks []token.Token
	pos  int
}

// New creates a Parser over a complete token stream (as produced by
// lexer.Tokenize, including its trailing EOF token).
func New(toks []token.Token) *Parser {
	return &Parser{toks: toks}
}

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos]
}

func (p *Parser) peekN(n int) token.Token {
	idx := p.pos + n
	if idx >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[idx]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) atEOF() bool {
	return p.cur().Kind == token.EOF
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	return &diag.ParseError{Msg: fmt.Sprintf(format, args...), Tok: p.cur()}
}

func (p *Parser) expectPunct(s string) (token.Token, error) {
	if !p.cur().IsPunct(s) {
		return token.Token{}, p.errorf("expected %q", s)
	}
	return p.advance(), nil
}

func (p *Parser) expectKeyword(s string) (token.Token, error) {
	if !p.cur().IsKeyword(s) {
		return token.Token{}, p.errorf("expected keyword %q", s)
	}
	return p.advance(), nil
}

func (p *Parser) expectIdent() (ast.Identifier, error) {
	if p.cur().Kind != token.Ident {
		return ast.Identifier{}, p.errorf("expected identifier")
	}
	t := p.advance()
	return ast.Identifier{Name: t.Lexeme, Tok: t}, nil
}

// typeSpecifierKeywords are every recognized declaration-specifier
// keyword, admissible or not; the semantic analyzer decides which are
// legal. Collecting them all here lets Parse hand the analyzer
// a precise token for each illegal specifier instead of failing early
// in the parser.
var typeSpecifierKeywords = map[string]bool{
	"int": true, "void": true, "char": true, "unsigned": true,
	"const": true, "static": true,
}

// Parse parses the whole token stream into a Program.
func Parse(toks []token.Token) (*ast.Program, error) {
	p := New(toks)
	prog := &ast.Program{}
	for !p.atEOF() {
		decl, err := p.parseTopLevel()
		if err != nil {
			return nil, err
		}
		prog.Decls = append(prog.Decls, decl)
	}
	return prog, nil
}

// parseTopLevel parses one function definition, function declaration,
// or file-scope variable declaration.
func (p *Parser) parseTopLevel() (ast.Decl, error) {
	startTok := p.cur()
	specs, err := p.parseSpecifiers()
	if err != nil {
		return nil, err
	}
	if len(specs) == 0 {
		return nil, p.errorf("expected a declaration")
	}
	typeTok := specs[len(specs)-1]

	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	if p.cur().IsPunct("(") {
		params, err := p.parseParamList()
		if err != nil {
			return nil, err
		}
		if p.cur().IsPunct(";") {
			p.advance()
			return &ast.FuncDecl{ReturnType: typeTok, Name: name, Params: params, Tok: startTok}, nil
		}
		body, err := p.parseCompoundStmt()
		if err != nil {
			return nil, err
		}
		return &ast.FuncDef{ReturnType: typeTok, Name: name, Params: params, Body: body, Tok: startTok}, nil
	}

	// File-scope variable declaration.
	decl, err := p.finishDeclStmt(specs, name, startTok)
	if err != nil {
		return nil, err
	}
	return &ast.FileVarDecl{DeclStmt: decl}, nil
}

// parseSpecifiers consumes every leading declaration-specifier
// keyword (type name, storage class, qualifier) and returns them in
// source order.
func (p *Parser) parseSpecifiers() ([]token.Token, error) {
	var specs []token.Token
	for p.cur().Kind == token.Keyword && typeSpecifierKeywords[p.cur().Lexeme] {
		specs = append(specs, p.advance())
	}
	return specs, nil
}

func (p *Parser) parseParamList() ([]ast.Param, error) {
	if _, err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var params []ast.Param
	for !p.cur().IsPunct(")") {
		if len(params) > 0 {
			if _, err := p.expectPunct(","); err != nil {
				return nil, err
			}
		}
		specs, err := p.parseSpecifiers()
		if err != nil {
			return nil, err
		}
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Param{Specifiers: specs, Name: name})
	}
	if _, err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return params, nil
}

// finishDeclStmt parses the declarator list and trailing semicolon of
// a declaration statement whose specifiers and first identifier have
// already been consumed.
func (p *Parser) finishDeclStmt(specs []token.Token, first ast.Identifier, tok token.Token) (*ast.DeclStmt, error) {
	d := &ast.DeclStmt{Specifiers: specs, Tok: tok}
	name := first
	for {
		var init ast.Expr
		if p.cur().IsPunct("=") {
			p.advance()
			var err error
			init, err = p.parseAssignment()
			if err != nil {
				return nil, err
			}
		}
		d.Vars = append(d.Vars, ast.VarSpec{Name: name, Init: init})
		if p.cur().IsPunct(",") {
			p.advance()
			var err error
			name, err = p.expectIdent()
			if err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if _, err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return d, nil
}

func (p *Parser) startsDecl() bool {
	return p.cur().Kind == token.Keyword && typeSpecifierKeywords[p.cur().Lexeme]
}

// parseStmt parses exactly one statement (or declaration-as-statement)
// inside a function body.
func (p *Parser) parseStmt() (ast.Stmt, error) {
	tok := p.cur()
	switch {
	case p.startsDecl():
		specs, err := p.parseSpecifiers()
		if err != nil {
			return nil, err
		}
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return p.finishDeclStmt(specs, name, tok)
	case tok.IsPunct("{"):
		return p.parseCompoundStmt()
	case tok.IsKeyword("if"):
		return p.parseIf()
	case tok.IsKeyword("while"):
		return p.parseWhile()
	case tok.IsKeyword("do"):
		return p.parseDoWhile()
	case tok.IsKeyword("for"):
		return p.parseFor()
	case tok.IsKeyword("switch"):
		return p.parseSwitch()
	case tok.IsKeyword("return"):
		return p.parseReturn()
	case tok.IsKeyword("goto"):
		return p.parseGoto()
	case tok.IsKeyword("break"):
		p.advance()
		if _, err := p.expectPunct(";"); err != nil {
			return nil, err
		}
		return &ast.BreakStmt{Tok: tok}, nil
	case tok.IsKeyword("continue"):
		p.advance()
		if _, err := p.expectPunct(";"); err != nil {
			return nil, err
		}
		return &ast.ContinueStmt{Tok: tok}, nil
	case tok.Kind == token.Ident && p.peekN(1).IsPunct(":"):
		p.advance()
		p.advance()
		inner, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		return &ast.LabelStmt{Name: tok.Lexeme, Stmt: inner, Tok: tok}, nil
	default:
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct(";"); err != nil {
			return nil, err
		}
		return &ast.ExprStmt{X: x, Tok: tok}, nil
	}
}

func (p *Parser) parseCompoundStmt() (*ast.CompoundStmt, error) {
	tok, err := p.expectPunct("{")
	if err != nil {
		return nil, err
	}
	block := &ast.CompoundStmt{Tok: tok}
	for !p.cur().IsPunct("}") {
		if p.atEOF() {
			return nil, p.errorf("unexpected end of input in block")
		}
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, s)
	}
	if _, err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return block, nil
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	tok := p.advance()
	if _, err := p.expectPunct("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	then, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	s := &ast.IfStmt{Cond: cond, Then: then, Tok: tok}
	if p.cur().IsKeyword("else") {
		p.advance()
		elseStmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		s.Else = elseStmt
	}
	return s, nil
}

func (p *Parser) parseWhile() (ast.Stmt, error) {
	tok := p.advance()
	if _, err := p.expectPunct("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Cond: cond, Body: body, Tok: tok}, nil
}

func (p *Parser) parseDoWhile() (ast.Stmt, error) {
	tok := p.advance()
	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("while"); err != nil {
		return nil, err
	}
	if _, err := p.expectPunct("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return &ast.DoWhileStmt{Body: body, Cond: cond, Tok: tok}, nil
}

func (p *Parser) parseFor() (ast.Stmt, error) {
	tok := p.advance()
	if _, err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var init ast.Stmt
	if !p.cur().IsPunct(";") {
		var err error
		if p.startsDecl() {
			specs, err2 := p.parseSpecifiers()
			if err2 != nil {
				return nil, err2
			}
			name, err2 := p.expectIdent()
			if err2 != nil {
				return nil, err2
			}
			init, err = p.finishDeclStmt(specs, name, tok)
		} else {
			itok := p.cur()
			x, err2 := p.parseExpr()
			if err2 != nil {
				return nil, err2
			}
			if _, err2 := p.expectPunct(";"); err2 != nil {
				return nil, err2
			}
			init = &ast.ExprStmt{X: x, Tok: itok}
		}
		if err != nil {
			return nil, err
		}
	} else {
		p.advance()
	}
	var cond ast.Expr
	if !p.cur().IsPunct(";") {
		var err error
		cond, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	var post ast.Stmt
	if !p.cur().IsPunct(")") {
		ptok := p.cur()
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		post = &ast.ExprStmt{X: x, Tok: ptok}
	}
	if _, err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return &ast.ForStmt{Init: init, Cond: cond, Post: post, Body: body, Tok: tok}, nil
}

func (p *Parser) parseSwitch() (ast.Stmt, error) {
	tok := p.advance()
	if _, err := p.expectPunct("("); err != nil {
		return nil, err
	}
	tag, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	if _, err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	s := &ast.SwitchStmt{Tag: tag, Tok: tok}
	for !p.cur().IsPunct("}") {
		var sec ast.SwitchSection
		if p.cur().IsKeyword("case") {
			p.advance()
			v, err := p.parseAssignment()
			if err != nil {
				return nil, err
			}
			sec.CaseValues = append(sec.CaseValues, v)
			if _, err := p.expectPunct(":"); err != nil {
				return nil, err
			}
		} else if p.cur().IsKeyword("default") {
			p.advance()
			sec.IsDefault = true
			if _, err := p.expectPunct(":"); err != nil {
				return nil, err
			}
		} else {
			return nil, p.errorf("expected 'case' or 'default'")
		}
		for !p.cur().IsKeyword("case") && !p.cur().IsKeyword("default") && !p.cur().IsPunct("}") {
			st, err := p.parseStmt()
			if err != nil {
				return nil, err
			}
			sec.Stmts = append(sec.Stmts, st)
		}
		s.Sections = append(s.Sections, sec)
	}
	if _, err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return s, nil
}

func (p *Parser) parseReturn() (ast.Stmt, error) {
	tok := p.advance()
	var val ast.Expr
	if !p.cur().IsPunct(";") {
		var err error
		val, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{Value: val, Tok: tok}, nil
}

func (p *Parser) parseGoto() (ast.Stmt, error) {
	tok := p.advance()
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return &ast.GotoStmt{Label: name.Name, Tok: tok}, nil
}

// ============================================================
// Expressions: Pratt parser
// ============================================================

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true,
}

// binPrec gives the binding power of each binary operator; higher
// binds tighter. Assignment is handled separately (right-assoc,
// parsed above everything else).
var binPrec = map[string]int{
	"||": 1,
	"&&": 2,
	"|":  3,
	"^":  4,
	"&":  5,
	"==": 6, "!=": 6,
	"<": 7, ">": 7, "<=": 7, ">=": 7,
	"<<": 8, ">>": 8,
	"+": 9, "-": 9,
	"*": 10, "/": 10, "%": 10,
}

func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() (ast.Expr, error) {
	left, err := p.parseBinary(1)
	if err != nil {
		return nil, err
	}
	if p.cur().Kind == token.Punct && assignOps[p.cur().Lexeme] {
		op := p.advance()
		right, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		return &ast.AssignExpr{Left: left, Op: op, Right: right}, nil
	}
	return left, nil
}

func (p *Parser) parseBinary(minPrec int) (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.cur()
		if tok.Kind != token.Punct {
			break
		}
		prec, ok := binPrec[tok.Lexeme]
		if !ok || prec < minPrec {
			break
		}
		op := p.advance()
		right, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Left: left, Op: op, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	tok := p.cur()
	switch {
	case tok.IsPunct("++"), tok.IsPunct("--"), tok.IsPunct("~"), tok.IsPunct("!"),
		tok.IsPunct("+"), tok.IsPunct("-"):
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.PrefixExpr{Op: tok, X: x}, nil
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.cur().IsPunct("++"), p.cur().IsPunct("--"):
			op := p.advance()
			x = &ast.PostfixExpr{X: x, Op: op}
		case p.cur().IsPunct("("):
			ident, ok := x.(ast.Identifier)
			if !ok {
				return nil, p.errorf("call target must be an identifier")
			}
			call := &ast.CallExpr{Callee: ident, Tok: p.cur()}
			p.advance()
			for !p.cur().IsPunct(")") {
				if len(call.Args) > 0 {
					if _, err := p.expectPunct(","); err != nil {
						return nil, err
					}
				}
				arg, err := p.parseAssignment()
				if err != nil {
					return nil, err
				}
				call.Args = append(call.Args, arg)
			}
			if _, err := p.expectPunct(")"); err != nil {
				return nil, err
			}
			x = call
		case p.cur().IsPunct("."):
			tok := p.advance()
			member, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			x = &ast.MemberExpr{X: x, Member: member.Name, Tok: tok}
		default:
			return x, nil
		}
	}
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.cur()
	switch {
	case tok.Kind == token.Ident:
		p.advance()
		return ast.Identifier{Name: tok.Lexeme, Tok: tok}, nil
	case tok.Kind == token.Number, tok.Kind == token.String, tok.Kind == token.Char:
		p.advance()
		return &ast.Literal{Tok: tok}, nil
	case tok.IsPunct("("):
		p.advance()
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return x, nil
	default:
		return nil, p.errorf("expected an expression")
	}
}
