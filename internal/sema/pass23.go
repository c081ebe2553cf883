package sema

import (
	"github.com/gmofishsauce/tacc/internal/ast"
	"github.com/gmofishsauce/tacc/internal/diag"
)

// ============================================================
// Pass 2 — undefined use
// ============================================================

func (a *Analyzer) pass2UndefinedUse() error {
	for _, d := range a.prog.Decls {
		switch decl := d.(type) {
		case *ast.FileVarDecl:
			for _, v := range decl.Vars {
				if v.Init != nil {
					if err := a.resolveExpr(v.Init, a.syms.Root()); err != nil {
						return err
					}
				}
			}
		case *ast.FuncDef:
			fnScope := a.funcScope[decl]
			if err := a.resolveBlock(decl.Body, fnScope); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *Analyzer) resolveBlock(block *ast.CompoundStmt, parentScope int) error {
	scope := a.blockScope[block]
	for _, s := range block.Stmts {
		if err := a.resolveStmt(s, scope); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) resolveStmt(s ast.Stmt, scope int) error {
	switch st := s.(type) {
	case *ast.DeclStmt:
		for _, v := range st.Vars {
			if v.Init != nil {
				if err := a.resolveExpr(v.Init, scope); err != nil {
					return err
				}
			}
		}
	case *ast.CompoundStmt:
		return a.resolveBlock(st, scope)
	case *ast.IfStmt:
		if err := a.resolveExpr(st.Cond, scope); err != nil {
			return err
		}
		if err := a.resolveStmt(st.Then, scope); err != nil {
			return err
		}
		if st.Else != nil {
			return a.resolveStmt(st.Else, scope)
		}
	case *ast.WhileStmt:
		if err := a.resolveExpr(st.Cond, scope); err != nil {
			return err
		}
		return a.resolveStmt(st.Body, scope)
	case *ast.DoWhileStmt:
		if err := a.resolveStmt(st.Body, scope); err != nil {
			return err
		}
		return a.resolveExpr(st.Cond, scope)
	case *ast.ForStmt:
		forScope := a.forScope[st]
		if st.Init != nil {
			if err := a.resolveStmt(st.Init, forScope); err != nil {
				return err
			}
		}
		if st.Cond != nil {
			if err := a.resolveExpr(st.Cond, forScope); err != nil {
				return err
			}
		}
		if st.Post != nil {
			if err := a.resolveStmt(st.Post, forScope); err != nil {
				return err
			}
		}
		return a.resolveStmt(st.Body, forScope)
	case *ast.SwitchStmt:
		if err := a.resolveExpr(st.Tag, scope); err != nil {
			return err
		}
		swScope := a.switchScope[st]
		for _, sec := range st.Sections {
			for _, v := range sec.CaseValues {
				if err := a.resolveExpr(v, swScope); err != nil {
					return err
				}
			}
			for _, inner := range sec.Stmts {
				if err := a.resolveStmt(inner, swScope); err != nil {
					return err
				}
			}
		}
	case *ast.ReturnStmt:
		if st.Value != nil {
			return a.resolveExpr(st.Value, scope)
		}
	case *ast.ExprStmt:
		return a.resolveExpr(st.X, scope)
	case *ast.LabelStmt:
		return a.resolveStmt(st.Stmt, scope)
	}
	return nil
}

func (a *Analyzer) resolveExpr(e ast.Expr, scope int) error {
	switch x := e.(type) {
	case ast.Identifier:
		if _, ok := a.syms.Lookup(scope, x.Name); !ok {
			return &diag.SemanticError{Msg: "'" + x.Name + "' is undefined", Tok: x.Tok}
		}
	case *ast.Literal:
		return nil
	case *ast.AssignExpr:
		if err := a.resolveExpr(x.Left, scope); err != nil {
			return err
		}
		return a.resolveExpr(x.Right, scope)
	case *ast.BinaryExpr:
		if err := a.resolveExpr(x.Left, scope); err != nil {
			return err
		}
		return a.resolveExpr(x.Right, scope)
	case *ast.PrefixExpr:
		return a.resolveExpr(x.X, scope)
	case *ast.PostfixExpr:
		return a.resolveExpr(x.X, scope)
	case *ast.CallExpr:
		for _, arg := range x.Args {
			if err := a.resolveExpr(arg, scope); err != nil {
				return err
			}
		}
	case *ast.MemberExpr:
		return a.resolveExpr(x.X, scope)
	}
	return nil
}

// ============================================================
// Pass 3 — initialization discipline
// ============================================================

// The initialization set tracks, by resolved *symtab.Symbol identity
// (so shadowed names in nested scopes are distinguished), which names
// are known-initialized at the current program point.

func (a *Analyzer) pass3Initialization() error {
	// Globals declared with an initializer are initialized in every function.
	globals := map[interface{}]bool{}
	for _, d := range a.prog.Decls {
		if fv, ok := d.(*ast.FileVarDecl); ok {
			for _, v := range fv.Vars {
				if v.Init != nil {
					a.markInitialized(a.syms.Root(), v.Name.Name, globals)
				}
			}
		}
	}
	for _, d := range a.prog.Decls {
		fd, ok := d.(*ast.FuncDef)
		if !ok {
			continue
		}
		fnScope := a.funcScope[fd]
		init := a.copySet(globals)
		for _, p := range fd.Params {
			if sym, ok := a.syms.Lookup(fnScope, p.Name.Name); ok {
				init[sym] = true
			}
		}
		if err := a.initBlock(fd.Body, init); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) copySet(s map[interface{}]bool) map[interface{}]bool {
	out := make(map[interface{}]bool, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func (a *Analyzer) markInitialized(scope int, name string, set map[interface{}]bool) {
	if sym, ok := a.syms.Lookup(scope, name); ok {
		set[sym] = true
	}
}

func (a *Analyzer) isInitialized(scope int, name string, set map[interface{}]bool) bool {
	sym, ok := a.syms.Lookup(scope, name)
	if !ok {
		return true // undefined use was already reported by pass 2
	}
	return set[sym]
}

func (a *Analyzer) initBlock(block *ast.CompoundStmt, set map[interface{}]bool) error {
	scope := a.blockScope[block]
	for _, s := range block.Stmts {
		if err := a.initStmt(s, scope, set); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) initStmt(s ast.Stmt, scope int, set map[interface{}]bool) error {
	switch st := s.(type) {
	case *ast.DeclStmt:
		for _, v := range st.Vars {
			if v.Init != nil {
				if err := a.initExprRead(v.Init, scope, set); err != nil {
					return err
				}
				a.markInitialized(scope, v.Name.Name, set)
			}
		}
	case *ast.CompoundStmt:
		return a.initBlock(st, set)
	case *ast.IfStmt:
		if err := a.initExprRead(st.Cond, scope, set); err != nil {
			return err
		}
		thenSet := a.copySet(set)
		if err := a.initStmt(st.Then, scope, thenSet); err != nil {
			return err
		}
		if st.Else != nil {
			elseSet := a.copySet(set)
			if err := a.initStmt(st.Else, scope, elseSet); err != nil {
				return err
			}
		}
	case *ast.WhileStmt:
		if err := a.initExprRead(st.Cond, scope, set); err != nil {
			return err
		}
		bodySet := a.copySet(set)
		return a.initStmt(st.Body, scope, bodySet)
	case *ast.DoWhileStmt:
		bodySet := a.copySet(set)
		if err := a.initStmt(st.Body, scope, bodySet); err != nil {
			return err
		}
		// The body runs at least once, so its definitions are visible
		// to the single condition re-check that follows — but they do
		// not propagate past the loop to the outer set.
		return a.initExprRead(st.Cond, scope, bodySet)
	case *ast.ForStmt:
		forScope := a.forScope[st]
		if st.Init != nil {
			// The initializer is ordinary sequential code: it follows
			// the same rule as a declaration or expression statement
			// and its definitions join the outer set.
			if err := a.initStmt(st.Init, forScope, set); err != nil {
				return err
			}
		}
		if st.Cond != nil {
			if err := a.initExprRead(st.Cond, forScope, set); err != nil {
				return err
			}
		}
		bodySet := a.copySet(set)
		if err := a.initStmt(st.Body, forScope, bodySet); err != nil {
			return err
		}
		if st.Post != nil {
			return a.initStmt(st.Post, forScope, bodySet)
		}
	case *ast.SwitchStmt:
		if err := a.initExprRead(st.Tag, scope, set); err != nil {
			return err
		}
		swScope := a.switchScope[st]
		for _, sec := range st.Sections {
			for _, v := range sec.CaseValues {
				if err := a.initExprRead(v, scope, set); err != nil {
					return err
				}
			}
			sectionSet := a.copySet(set)
			for _, inner := range sec.Stmts {
				if err := a.initStmt(inner, swScope, sectionSet); err != nil {
					return err
				}
			}
		}
	case *ast.ReturnStmt:
		if st.Value != nil {
			return a.initExprRead(st.Value, scope, set)
		}
	case *ast.ExprStmt:
		return a.initExprStmt(st.X, scope, set)
	case *ast.LabelStmt:
		return a.initStmt(st.Stmt, scope, set)
	}
	return nil
}

// initExprStmt handles an expression used as a statement: a plain "="
// assignment to an identifier establishes initialization; everything
// else is treated as a read of every identifier it touches.
func (a *Analyzer) initExprStmt(e ast.Expr, scope int, set map[interface{}]bool) error {
	if asn, ok := e.(*ast.AssignExpr); ok {
		if err := a.initExprRead(asn.Right, scope, set); err != nil {
			return err
		}
		if ident, ok := asn.Left.(ast.Identifier); ok && asn.Op.Lexeme == "=" {
			a.markInitialized(scope, ident.Name, set)
			return nil
		}
		return a.initExprRead(asn.Left, scope, set)
	}
	return a.initExprRead(e, scope, set)
}

// initExprRead checks that every identifier read by e is initialized.
// A plain "=" assignment nested inside a larger expression still
// establishes initialization of its left-hand identifier.
func (a *Analyzer) initExprRead(e ast.Expr, scope int, set map[interface{}]bool) error {
	switch x := e.(type) {
	case ast.Identifier:
		if !a.isInitialized(scope, x.Name, set) {
			return &diag.SemanticError{Msg: "'" + x.Name + "' used before being initialized", Tok: x.Tok}
		}
	case *ast.Literal:
		return nil
	case *ast.AssignExpr:
		if err := a.initExprRead(x.Right, scope, set); err != nil {
			return err
		}
		if ident, ok := x.Left.(ast.Identifier); ok {
			if x.Op.Lexeme == "=" {
				a.markInitialized(scope, ident.Name, set)
				return nil
			}
			// Compound assignment reads the current value first.
			if !a.isInitialized(scope, ident.Name, set) {
				return &diag.SemanticError{Msg: "'" + ident.Name + "' used before being initialized", Tok: ident.Tok}
			}
			a.markInitialized(scope, ident.Name, set)
			return nil
		}
		return a.initExprRead(x.Left, scope, set)
	case *ast.BinaryExpr:
		if err := a.initExprRead(x.Left, scope, set); err != nil {
			return err
		}
		return a.initExprRead(x.Right, scope, set)
	case *ast.PrefixExpr:
		switch x.Op.Lexeme {
		case "++", "--":
			if ident, ok := x.X.(ast.Identifier); ok {
				if !a.isInitialized(scope, ident.Name, set) {
					return &diag.SemanticError{Msg: "'" + ident.Name + "' used before being initialized", Tok: ident.Tok}
				}
				a.markInitialized(scope, ident.Name, set)
				return nil
			}
		}
		return a.initExprRead(x.X, scope, set)
	case *ast.PostfixExpr:
		if ident, ok := x.X.(ast.Identifier); ok {
			if !a.isInitialized(scope, ident.Name, set) {
				return &diag.SemanticError{Msg: "'" + ident.Name + "' used before being initialized", Tok: ident.Tok}
			}
			a.markInitialized(scope, ident.Name, set)
			return nil
		}
		return a.initExprRead(x.X, scope, set)
	case *ast.CallExpr:
		for _, arg := range x.Args {
			if err := a.initExprRead(arg, scope, set); err != nil {
				return err
			}
		}
	case *ast.MemberExpr:
		return a.initExprRead(x.X, scope, set)
	}
	return nil
}
