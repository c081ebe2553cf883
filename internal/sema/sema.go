// Package sema implements the semantic analyzer: three passes over
// the AST, each traversing scopes in sync with the symbol table
// walker (spec.md §4.1). Analyze is a pure check: nothing here
// mutates the AST.
package sema

import (
	"github.com/gmofishsauce/tacc/internal/ast"
	"github.com/gmofishsauce/tacc/internal/diag"
	"github.com/gmofishsauce/tacc/internal/symtab"
	"github.com/gmofishsauce/tacc/internal/token"
)

// Analyzer runs the three passes and owns the resulting symbol table.
type Analyzer struct {
	prog  *ast.Program
	syms  *symtab.Table
	funcs map[string]*ast.FuncDef // function definitions by name, recorded in pass 1

	// Scope ids assigned during pass 1, replayed by passes 2 and 3
	// instead of walking the symbol table builder twice.
	funcScope   map[*ast.FuncDef]int
	blockScope  map[*ast.CompoundStmt]int
	forScope    map[*ast.ForStmt]int
	switchScope map[*ast.SwitchStmt]int
}

// New creates an Analyzer over prog.
func New(prog *ast.Program) *Analyzer {
	return &Analyzer{
		prog:        prog,
		syms:        symtab.New(),
		funcs:       map[string]*ast.FuncDef{},
		funcScope:   map[*ast.FuncDef]int{},
		blockScope:  map[*ast.CompoundStmt]int{},
		forScope:    map[*ast.ForStmt]int{},
		switchScope: map[*ast.SwitchStmt]int{},
	}
}

// Analyze runs all three passes in order and returns the populated
// symbol table, or the first error encountered.
func (a *Analyzer) Analyze() (*symtab.Table, error) {
	if err := a.pass1TypesAndSymbols(); err != nil {
		return nil, err
	}
	if err := a.pass2UndefinedUse(); err != nil {
		return nil, err
	}
	if err := a.pass3Initialization(); err != nil {
		return nil, err
	}
	return a.syms, nil
}

// FuncScopes exposes the scope id assigned to each function body
// during pass 1, so the TAC generator can address the same scope
// tree without rebuilding it.
func (a *Analyzer) FuncScopes() map[*ast.FuncDef]int {
	return a.funcScope
}

// ============================================================
// Pass 1 — type restrictions + symbol table construction
// ============================================================

func isOnlyInt(specs []token.Token) (token.Token, error) {
	var intTok token.Token
	found := false
	for _, s := range specs {
		switch s.Lexeme {
		case "int":
			intTok = s
			found = true
		case "void", "char":
			return token.Token{}, &diag.SemanticError{Msg: "type '" + s.Lexeme + "' is not supported; only 'int' is admissible", Tok: s}
		case "unsigned", "const", "static":
			return token.Token{}, &diag.SemanticError{Msg: "declaration specifier '" + s.Lexeme + "' is not supported", Tok: s}
		}
	}
	if !found {
		if len(specs) > 0 {
			return token.Token{}, &diag.SemanticError{Msg: "declaration must specify type 'int'", Tok: specs[0]}
		}
		return token.Token{}, &diag.SemanticError{Msg: "declaration must specify type 'int'"}
	}
	return intTok, nil
}

func (a *Analyzer) pass1TypesAndSymbols() error {
	for _, d := range a.prog.Decls {
		switch decl := d.(type) {
		case *ast.FileVarDecl:
			if _, err := isOnlyInt(decl.Specifiers); err != nil {
				return err
			}
			for _, v := range decl.Vars {
				sym := &symtab.Symbol{Name: v.Name.Name, Kind: symtab.Global, Type: "int", Tok: v.Name.Tok}
				if err := a.syms.Declare(a.syms.Root(), sym); err != nil {
					return err
				}
				if v.Init != nil {
					if err := a.checkExprShape(v.Init); err != nil {
						return err
					}
				}
			}
		case *ast.FuncDecl:
			if decl.ReturnType.Lexeme != "int" {
				return &diag.SemanticError{Msg: "function return type must be 'int'", Tok: decl.ReturnType}
			}
			for _, p := range decl.Params {
				if _, err := isOnlyInt(p.Specifiers); err != nil {
					return err
				}
			}
			sym := &symtab.Symbol{Name: decl.Name.Name, Kind: symtab.Func, Type: "int", Tok: decl.Tok}
			if err := a.syms.Declare(a.syms.Root(), sym); err != nil {
				return err
			}
		case *ast.FuncDef:
			if decl.ReturnType.Lexeme != "int" {
				return &diag.SemanticError{Msg: "function return type must be 'int'", Tok: decl.ReturnType}
			}
			for _, p := range decl.Params {
				if _, err := isOnlyInt(p.Specifiers); err != nil {
					return err
				}
			}
			sym := &symtab.Symbol{Name: decl.Name.Name, Kind: symtab.Func, Type: "int", Tok: decl.Tok}
			if err := a.syms.Declare(a.syms.Root(), sym); err != nil {
				return err
			}
			a.funcs[decl.Name.Name] = decl
			fnScope := a.syms.OpenScope(a.syms.Root(), decl.Name.Name)
			a.funcScope[decl] = fnScope
			for _, p := range decl.Params {
				psym := &symtab.Symbol{Name: p.Name.Name, Kind: symtab.Param, Type: "int", Tok: p.Name.Tok}
				if err := a.syms.Declare(fnScope, psym); err != nil {
					return err
				}
			}
			if err := a.pass1Block(decl.Body, fnScope); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *Analyzer) pass1Block(block *ast.CompoundStmt, scope int) error {
	blockScope := a.syms.OpenScope(scope, "block")
	a.blockScope[block] = blockScope
	for _, s := range block.Stmts {
		if err := a.pass1Stmt(s, blockScope); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) pass1Stmt(s ast.Stmt, scope int) error {
	switch st := s.(type) {
	case *ast.DeclStmt:
		if _, err := isOnlyInt(st.Specifiers); err != nil {
			return err
		}
		for _, v := range st.Vars {
			sym := &symtab.Symbol{Name: v.Name.Name, Kind: symtab.Local, Type: "int", Tok: v.Name.Tok}
			if err := a.syms.Declare(scope, sym); err != nil {
				return err
			}
			if v.Init != nil {
				if err := a.checkExprShape(v.Init); err != nil {
					return err
				}
			}
		}
	case *ast.CompoundStmt:
		return a.pass1Block(st, scope)
	case *ast.IfStmt:
		if err := a.checkExprShape(st.Cond); err != nil {
			return err
		}
		if err := a.pass1Stmt(st.Then, scope); err != nil {
			return err
		}
		if st.Else != nil {
			return a.pass1Stmt(st.Else, scope)
		}
	case *ast.WhileStmt:
		if err := a.checkExprShape(st.Cond); err != nil {
			return err
		}
		return a.pass1Stmt(st.Body, scope)
	case *ast.DoWhileStmt:
		if err := a.pass1Stmt(st.Body, scope); err != nil {
			return err
		}
		return a.checkExprShape(st.Cond)
	case *ast.ForStmt:
		forScope := a.syms.OpenScope(scope, "for_stmt")
		a.forScope[st] = forScope
		if st.Init != nil {
			if err := a.pass1Stmt(st.Init, forScope); err != nil {
				return err
			}
		}
		if st.Cond != nil {
			if err := a.checkExprShape(st.Cond); err != nil {
				return err
			}
		}
		if st.Post != nil {
			if err := a.pass1Stmt(st.Post, forScope); err != nil {
				return err
			}
		}
		return a.pass1Stmt(st.Body, forScope)
	case *ast.SwitchStmt:
		if err := a.checkExprShape(st.Tag); err != nil {
			return err
		}
		switchScope := a.syms.OpenScope(scope, "block")
		a.switchScope[st] = switchScope
		for _, sec := range st.Sections {
			for _, v := range sec.CaseValues {
				if err := a.checkExprShape(v); err != nil {
					return err
				}
			}
			for _, inner := range sec.Stmts {
				if err := a.pass1Stmt(inner, switchScope); err != nil {
					return err
				}
			}
		}
	case *ast.ReturnStmt:
		if st.Value != nil {
			return a.checkExprShape(st.Value)
		}
	case *ast.ExprStmt:
		return a.checkExprShape(st.X)
	case *ast.LabelStmt:
		return a.pass1Stmt(st.Stmt, scope)
	}
	return nil
}

// checkExprShape rejects string/char literals, call expressions, and
// member expressions anywhere they occur, per spec.md Pass 1.
func (a *Analyzer) checkExprShape(e ast.Expr) error {
	switch x := e.(type) {
	case *ast.Literal:
		if x.Tok.Kind == token.String || x.Tok.Kind == token.Char {
			return &diag.SemanticError{Msg: "string and character literals are not supported", Tok: x.Tok}
		}
	case *ast.CallExpr:
		return &diag.SemanticError{Msg: "function calls are not supported in expressions", Tok: x.Tok}
	case *ast.MemberExpr:
		return &diag.SemanticError{Msg: "member access is not supported", Tok: x.Tok}
	case *ast.AssignExpr:
		if err := a.checkExprShape(x.Left); err != nil {
			return err
		}
		return a.checkExprShape(x.Right)
	case *ast.BinaryExpr:
		if err := a.checkExprShape(x.Left); err != nil {
			return err
		}
		return a.checkExprShape(x.Right)
	case *ast.PrefixExpr:
		return a.checkExprShape(x.X)
	case *ast.PostfixExpr:
		return a.checkExprShape(x.X)
	}
	return nil
}
