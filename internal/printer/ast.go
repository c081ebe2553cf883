package printer

import "github.com/gmofishsauce/tacc/internal/ast"

// AST writes prog as an indented tree, one construct per line.
func AST(p *Writer, prog *ast.Program) {
	for _, d := range prog.Decls {
		writeDecl(p, d)
	}
}

func writeDecl(p *Writer, d ast.Decl) {
	switch decl := d.(type) {
	case *ast.FileVarDecl:
		p.line("VARDECL")
		p.indent++
		writeVars(p, decl.Vars)
		p.indent--
	case *ast.FuncDecl:
		p.line("FUNCDECL %s %s", decl.ReturnType.Lexeme, decl.Name.Name)
		p.indent++
		writeParams(p, decl.Params)
		p.indent--
	case *ast.FuncDef:
		p.line("FUNCDEF %s %s", decl.ReturnType.Lexeme, decl.Name.Name)
		p.indent++
		writeParams(p, decl.Params)
		writeStmt(p, decl.Body)
		p.indent--
	}
}

func writeParams(p *Writer, params []ast.Param) {
	for _, param := range params {
		p.line("PARAM %s", param.Name.Name)
	}
}

func writeVars(p *Writer, vars []ast.VarSpec) {
	for _, v := range vars {
		if v.Init != nil {
			p.line("VAR %s", v.Name.Name)
			p.indent++
			writeExpr(p, v.Init)
			p.indent--
		} else {
			p.line("VAR %s", v.Name.Name)
		}
	}
}

func writeStmt(p *Writer, s ast.Stmt) {
	switch st := s.(type) {
	case *ast.DeclStmt:
		p.line("DECL")
		p.indent++
		writeVars(p, st.Vars)
		p.indent--
	case *ast.CompoundStmt:
		p.line("BLOCK")
		p.indent++
		for _, inner := range st.Stmts {
			writeStmt(p, inner)
		}
		p.indent--
	case *ast.IfStmt:
		p.line("IF")
		p.indent++
		writeExpr(p, st.Cond)
		p.indent--
		p.line("THEN")
		p.indent++
		writeStmt(p, st.Then)
		p.indent--
		if st.Else != nil {
			p.line("ELSE")
			p.indent++
			writeStmt(p, st.Else)
			p.indent--
		}
	case *ast.WhileStmt:
		p.line("WHILE")
		p.indent++
		writeExpr(p, st.Cond)
		p.indent--
		p.line("DO")
		p.indent++
		writeStmt(p, st.Body)
		p.indent--
	case *ast.DoWhileStmt:
		p.line("DOWHILE")
		p.indent++
		writeStmt(p, st.Body)
		p.indent--
		p.line("WHILE")
		p.indent++
		writeExpr(p, st.Cond)
		p.indent--
	case *ast.ForStmt:
		p.line("FOR")
		p.indent++
		if st.Init != nil {
			p.line("INIT")
			p.indent++
			writeStmt(p, st.Init)
			p.indent--
		}
		if st.Cond != nil {
			p.line("COND")
			p.indent++
			writeExpr(p, st.Cond)
			p.indent--
		}
		if st.Post != nil {
			p.line("POST")
			p.indent++
			writeStmt(p, st.Post)
			p.indent--
		}
		p.line("DO")
		p.indent++
		writeStmt(p, st.Body)
		p.indent--
		p.indent--
	case *ast.SwitchStmt:
		p.line("SWITCH")
		p.indent++
		writeExpr(p, st.Tag)
		for _, sec := range st.Sections {
			if sec.IsDefault {
				p.line("DEFAULT")
			} else {
				for _, v := range sec.CaseValues {
					p.line("CASE")
					p.indent++
					writeExpr(p, v)
					p.indent--
				}
			}
			p.indent++
			for _, inner := range sec.Stmts {
				writeStmt(p, inner)
			}
			p.indent--
		}
		p.indent--
	case *ast.ReturnStmt:
		if st.Value != nil {
			p.line("RETURN")
			p.indent++
			writeExpr(p, st.Value)
			p.indent--
		} else {
			p.line("RETURN")
		}
	case *ast.GotoStmt:
		p.line("GOTO %s", st.Label)
	case *ast.BreakStmt:
		p.line("BREAK")
	case *ast.ContinueStmt:
		p.line("CONTINUE")
	case *ast.LabelStmt:
		p.line("LABEL %s", st.Name)
		p.indent++
		writeStmt(p, st.Stmt)
		p.indent--
	case *ast.ExprStmt:
		p.line("EXPRSTMT")
		p.indent++
		writeExpr(p, st.X)
		p.indent--
	}
}

func writeExpr(p *Writer, e ast.Expr) {
	if e == nil {
		return
	}
	switch x := e.(type) {
	case ast.Identifier:
		p.line("ID %s", x.Name)
	case *ast.Literal:
		p.line("LIT %s", x.Tok.Lexeme)
	case *ast.AssignExpr:
		p.line("ASSIGN %s", x.Op.Lexeme)
		p.indent++
		writeExpr(p, x.Left)
		writeExpr(p, x.Right)
		p.indent--
	case *ast.BinaryExpr:
		p.line("BINARY %s", x.Op.Lexeme)
		p.indent++
		writeExpr(p, x.Left)
		writeExpr(p, x.Right)
		p.indent--
	case *ast.PrefixExpr:
		p.line("PREFIX %s", x.Op.Lexeme)
		p.indent++
		writeExpr(p, x.X)
		p.indent--
	case *ast.PostfixExpr:
		p.line("POSTFIX %s", x.Op.Lexeme)
		p.indent++
		writeExpr(p, x.X)
		p.indent--
	case *ast.CallExpr:
		p.line("CALL %s", x.Callee.Name)
		p.indent++
		for _, arg := range x.Args {
			writeExpr(p, arg)
		}
		p.indent--
	case *ast.MemberExpr:
		p.line("MEMBER %s", x.Member)
		p.indent++
		writeExpr(p, x.X)
		p.indent--
	}
}
