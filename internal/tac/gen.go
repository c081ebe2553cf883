package tac

import (
	"github.com/gmofishsauce/tacc/internal/ast"
	"github.com/gmofishsauce/tacc/internal/diag"
	"github.com/gmofishsauce/tacc/internal/symtab"
	"github.com/gmofishsauce/tacc/internal/token"
)

// loopCtx is one entry of the generator's break/continue context
// stack: the label break jumps to, and (if any) the label continue
// jumps to.
type loopCtx struct {
	breakLabel  token.Token
	contLabel   token.Token
	hasContinue bool
}

// Generator lowers an AST (already checked by sema) into a TAC
// object. Temporaries and labels are fresh globally within the TAC
// object, not per function.
type Generator struct {
	t    *TAC
	syms *symtab.Table
	fn   *FunctionBlock
	cur  *BasicBlock
	ctx  []loopCtx
}

// Generate lowers prog into a fresh TAC object.
func Generate(prog *ast.Program, syms *symtab.Table, funcScopes map[*ast.FuncDef]int) (*TAC, error) {
	g := &Generator{t: New(), syms: syms}
	for _, d := range prog.Decls {
		switch decl := d.(type) {
		case *ast.FileVarDecl:
			for _, v := range decl.Vars {
				if v.Init == nil {
					continue
				}
				valTok, err := g.genExprGlobal(v.Init)
				if err != nil {
					return nil, err
				}
				nameTok := v.Name.Tok
				g.t.Globals = append(g.t.Globals, &Instr{Type: DECL, Res: &nameTok, Left: &valTok})
			}
		case *ast.FuncDef:
			if err := g.genFunc(decl, funcScopes[decl]); err != nil {
				return nil, err
			}
		}
	}
	return g.t, nil
}

// genExprGlobal evaluates a global initializer. No function body exists
// to hold generated temporaries, so only a bare literal or identifier
// is accepted; any other initializer shape, including constant
// arithmetic such as "1 + 2", is a TACError. The semantic analyzer does
// not restrict global initializers to these shapes.
func (g *Generator) genExprGlobal(e ast.Expr) (token.Token, error) {
	switch x := e.(type) {
	case ast.Identifier:
		return x.Tok, nil
	case *ast.Literal:
		return x.Tok, nil
	default:
		return token.Token{}, &diag.TACError{Msg: "global initializer must be a single literal or identifier", Tok: e.Pos()}
	}
}

func (g *Generator) genFunc(fd *ast.FuncDef, scopeID int) error {
	g.fn = &FunctionBlock{Name: fd.Name.Tok, ScopeID: scopeID, ParamCount: len(fd.Params)}
	entry := &BasicBlock{}
	g.fn.Blocks = []*BasicBlock{entry}
	g.cur = entry

	for _, s := range fd.Body.Stmts {
		if err := g.genStmt(s); err != nil {
			return err
		}
	}
	g.t.Functions = append(g.t.Functions, g.fn)
	return nil
}

func (g *Generator) emit(instr *Instr) {
	if instr.Type == LABEL {
		g.closeBlock()
	}
	g.cur.Instrs = append(g.cur.Instrs, instr)
}

func (g *Generator) closeBlock() {
	next := &BasicBlock{}
	g.fn.Blocks = append(g.fn.Blocks, next)
	g.cur = next
}

func tok(kind token.Kind, lexeme string) *token.Token {
	t := token.Token{Kind: kind, Lexeme: lexeme}
	return &t
}

func numTok(lexeme string) token.Token {
	return token.Token{Kind: token.Number, Lexeme: lexeme}
}

func (g *Generator) pushLoop(breakLabel, contLabel token.Token) {
	g.ctx = append(g.ctx, loopCtx{breakLabel: breakLabel, contLabel: contLabel, hasContinue: true})
}

func (g *Generator) pushSwitch(breakLabel token.Token) {
	var c loopCtx
	c.breakLabel = breakLabel
	if len(g.ctx) > 0 {
		top := g.ctx[len(g.ctx)-1]
		c.contLabel = top.contLabel
		c.hasContinue = top.hasContinue
	}
	g.ctx = append(g.ctx, c)
}

func (g *Generator) popCtx() {
	g.ctx = g.ctx[:len(g.ctx)-1]
}

// ============================================================
// Statements
// ============================================================

func (g *Generator) genStmt(s ast.Stmt) error {
	switch st := s.(type) {
	case *ast.DeclStmt:
		for _, v := range st.Vars {
			if v.Init == nil {
				continue
			}
			valTok, err := g.genExpr(v.Init)
			if err != nil {
				return err
			}
			nameTok := v.Name.Tok
			g.emit(&Instr{Type: DECL, Res: &nameTok, Left: &valTok})
		}
		return nil
	case *ast.CompoundStmt:
		for _, inner := range st.Stmts {
			if err := g.genStmt(inner); err != nil {
				return err
			}
		}
		return nil
	case *ast.ExprStmt:
		_, err := g.genExpr(st.X)
		return err
	case *ast.IfStmt:
		return g.genIf(st)
	case *ast.WhileStmt:
		return g.genWhile(st)
	case *ast.DoWhileStmt:
		return g.genDoWhile(st)
	case *ast.ForStmt:
		return g.genFor(st)
	case *ast.SwitchStmt:
		return g.genSwitch(st)
	case *ast.ReturnStmt:
		var valTok *token.Token
		if st.Value != nil {
			v, err := g.genExpr(st.Value)
			if err != nil {
				return err
			}
			valTok = &v
		}
		g.emit(&Instr{Type: RETURN, Res: valTok, Op: tok(token.ReturnMarker, "return")})
		return nil
	case *ast.GotoStmt:
		lbl := token.Token{Kind: token.Ident, Lexeme: st.Label}
		g.emit(&Instr{Type: GOTO, Res: &lbl, Op: tok(token.GotoMarker, "goto")})
		return nil
	case *ast.BreakStmt:
		if len(g.ctx) == 0 {
			return &diag.TACError{Msg: "'break' used outside a loop or switch", Tok: st.Tok}
		}
		target := g.ctx[len(g.ctx)-1].breakLabel
		g.emit(&Instr{Type: GOTO, Res: &target, Op: tok(token.GotoMarker, "goto")})
		return nil
	case *ast.ContinueStmt:
		if len(g.ctx) == 0 || !g.ctx[len(g.ctx)-1].hasContinue {
			return &diag.TACError{Msg: "'continue' used outside a loop", Tok: st.Tok}
		}
		target := g.ctx[len(g.ctx)-1].contLabel
		g.emit(&Instr{Type: GOTO, Res: &target, Op: tok(token.GotoMarker, "goto")})
		return nil
	case *ast.LabelStmt:
		lbl := token.Token{Kind: token.Ident, Lexeme: st.Name}
		g.emit(&Instr{Type: LABEL, Res: &lbl, Op: tok(token.LabelMarker, "label")})
		return g.genStmt(st.Stmt)
	default:
		return &diag.TACError{Msg: "unhandled statement shape reached the TAC generator", Tok: s.Pos()}
	}
}

func (g *Generator) genIf(st *ast.IfStmt) error {
	condTok, err := g.genExpr(st.Cond)
	if err != nil {
		return err
	}
	trueL := g.t.NewLabel()
	falseL := g.t.NewLabel()
	g.emit(&Instr{Type: IF, Res: &condTok, Left: &trueL, Right: &falseL, Op: tok(token.IfMarker, "if")})
	g.emit(&Instr{Type: LABEL, Res: &trueL, Op: tok(token.LabelMarker, "label")})
	if err := g.genStmt(st.Then); err != nil {
		return err
	}
	if st.Else != nil {
		endL := g.t.NewLabel()
		g.emit(&Instr{Type: GOTO, Res: &endL, Op: tok(token.GotoMarker, "goto")})
		g.emit(&Instr{Type: LABEL, Res: &falseL, Op: tok(token.LabelMarker, "label")})
		if err := g.genStmt(st.Else); err != nil {
			return err
		}
		g.emit(&Instr{Type: LABEL, Res: &endL, Op: tok(token.LabelMarker, "label")})
	} else {
		g.emit(&Instr{Type: LABEL, Res: &falseL, Op: tok(token.LabelMarker, "label")})
	}
	return nil
}

func (g *Generator) genWhile(st *ast.WhileStmt) error {
	headerL := g.t.NewLabel()
	bodyL := g.t.NewLabel()
	exitL := g.t.NewLabel()

	g.emit(&Instr{Type: LABEL, Res: &headerL, Op: tok(token.LabelMarker, "label")})
	condTok, err := g.genExpr(st.Cond)
	if err != nil {
		return err
	}
	g.emit(&Instr{Type: WHILE, Res: &condTok, Left: &bodyL, Right: &exitL, Op: tok(token.WhileMarker, "while")})
	g.emit(&Instr{Type: LABEL, Res: &bodyL, Op: tok(token.LabelMarker, "label")})

	g.pushLoop(exitL, headerL)
	err = g.genStmt(st.Body)
	g.popCtx()
	if err != nil {
		return err
	}
	g.emit(&Instr{Type: GOTO, Res: &headerL, Op: tok(token.GotoMarker, "goto")})
	g.emit(&Instr{Type: LABEL, Res: &exitL, Op: tok(token.LabelMarker, "label")})
	return nil
}

func (g *Generator) genDoWhile(st *ast.DoWhileStmt) error {
	bodyL := g.t.NewLabel()
	condL := g.t.NewLabel()
	exitL := g.t.NewLabel()

	g.emit(&Instr{Type: LABEL, Res: &bodyL, Op: tok(token.LabelMarker, "label")})
	g.pushLoop(exitL, condL)
	err := g.genStmt(st.Body)
	g.popCtx()
	if err != nil {
		return err
	}
	g.emit(&Instr{Type: LABEL, Res: &condL, Op: tok(token.LabelMarker, "label")})
	condTok, err := g.genExpr(st.Cond)
	if err != nil {
		return err
	}
	g.emit(&Instr{Type: WHILE, Res: &condTok, Left: &bodyL, Right: &exitL, Op: tok(token.WhileMarker, "while")})
	g.emit(&Instr{Type: LABEL, Res: &exitL, Op: tok(token.LabelMarker, "label")})
	return nil
}

func (g *Generator) genFor(st *ast.ForStmt) error {
	if st.Init != nil {
		if err := g.genStmt(st.Init); err != nil {
			return err
		}
	}
	headerL := g.t.NewLabel()
	bodyL := g.t.NewLabel()
	incrL := g.t.NewLabel()
	exitL := g.t.NewLabel()

	g.emit(&Instr{Type: LABEL, Res: &headerL, Op: tok(token.LabelMarker, "label")})
	var condTok token.Token
	if st.Cond != nil {
		var err error
		condTok, err = g.genExpr(st.Cond)
		if err != nil {
			return err
		}
	} else {
		condTok = numTok("1")
	}
	g.emit(&Instr{Type: FOR, Res: &condTok, Left: &bodyL, Right: &exitL, Op: tok(token.ForMarker, "for")})
	g.emit(&Instr{Type: LABEL, Res: &bodyL, Op: tok(token.LabelMarker, "label")})

	g.pushLoop(exitL, incrL)
	err := g.genStmt(st.Body)
	g.popCtx()
	if err != nil {
		return err
	}
	g.emit(&Instr{Type: LABEL, Res: &incrL, Op: tok(token.LabelMarker, "label")})
	if st.Post != nil {
		if err := g.genStmt(st.Post); err != nil {
			return err
		}
	}
	g.emit(&Instr{Type: GOTO, Res: &headerL, Op: tok(token.GotoMarker, "goto")})
	g.emit(&Instr{Type: LABEL, Res: &exitL, Op: tok(token.LabelMarker, "label")})
	return nil
}

// genSwitch lowers a switch into a chain of equality comparisons
// followed by fallthrough-sequenced section bodies, per the
// supplemented behavior in SPEC_FULL.md (spec.md's TAC table has no
// dedicated SWITCH instr_type).
func (g *Generator) genSwitch(st *ast.SwitchStmt) error {
	tagTok, err := g.genExpr(st.Tag)
	if err != nil {
		return err
	}

	sectionLabels := make([]token.Token, len(st.Sections))
	defaultIdx := -1
	for i, sec := range st.Sections {
		sectionLabels[i] = g.t.NewLabel()
		if sec.IsDefault {
			defaultIdx = i
		}
	}
	exitL := g.t.NewLabel()

	for i, sec := range st.Sections {
		if sec.IsDefault {
			continue
		}
		valTok, err := g.genExpr(sec.CaseValues[0])
		if err != nil {
			return err
		}
		cmpTmp := g.t.NewTemp()
		eqOp := tok(token.Punct, "==")
		g.emit(&Instr{Type: ASSIGN, Res: &cmpTmp, Left: &tagTok, Right: &valTok, Op: eqOp})
		falseL := g.t.NewLabel()
		g.emit(&Instr{Type: IF, Res: &cmpTmp, Left: &sectionLabels[i], Right: &falseL, Op: tok(token.IfMarker, "if")})
		g.emit(&Instr{Type: LABEL, Res: &falseL, Op: tok(token.LabelMarker, "label")})
	}
	if defaultIdx >= 0 {
		g.emit(&Instr{Type: GOTO, Res: &sectionLabels[defaultIdx], Op: tok(token.GotoMarker, "goto")})
	} else {
		g.emit(&Instr{Type: GOTO, Res: &exitL, Op: tok(token.GotoMarker, "goto")})
	}

	g.pushSwitch(exitL)
	for i, sec := range st.Sections {
		g.emit(&Instr{Type: LABEL, Res: &sectionLabels[i], Op: tok(token.LabelMarker, "label")})
		for _, inner := range sec.Stmts {
			if err := g.genStmt(inner); err != nil {
				g.popCtx()
				return err
			}
		}
	}
	g.popCtx()
	g.emit(&Instr{Type: LABEL, Res: &exitL, Op: tok(token.LabelMarker, "label")})
	return nil
}

// ============================================================
// Expressions
// ============================================================

func (g *Generator) genExpr(e ast.Expr) (token.Token, error) {
	switch x := e.(type) {
	case ast.Identifier:
		return x.Tok, nil
	case *ast.Literal:
		return x.Tok, nil
	case *ast.AssignExpr:
		return g.genAssign(x)
	case *ast.BinaryExpr:
		return g.genBinary(x)
	case *ast.PrefixExpr:
		return g.genPrefix(x)
	case *ast.PostfixExpr:
		return g.genPostfix(x)
	case *ast.CallExpr:
		return g.genCall(x)
	default:
		return token.Token{}, &diag.TACError{Msg: "unhandled expression shape reached the TAC generator", Tok: e.Pos()}
	}
}

func (g *Generator) genAssign(x *ast.AssignExpr) (token.Token, error) {
	lhs, ok := x.Left.(ast.Identifier)
	if !ok {
		return token.Token{}, &diag.TACError{Msg: "assignment target must be an identifier", Tok: x.Pos()}
	}
	rhsTok, err := g.genExpr(x.Right)
	if err != nil {
		return token.Token{}, err
	}
	if x.Op.Lexeme == "=" {
		g.emit(&Instr{Type: ASSIGN, Res: &lhs.Tok, Left: &rhsTok})
		return lhs.Tok, nil
	}
	// Compound assignment: "lhs op= rhs" becomes a temp holding
	// "lhs op rhs", then a plain copy back into lhs.
	baseOp := x.Op.Lexeme[:len(x.Op.Lexeme)-1]
	opTok := tok(token.Punct, baseOp)
	tmp := g.t.NewTemp()
	g.emit(&Instr{Type: ASSIGN, Res: &tmp, Left: &lhs.Tok, Right: &rhsTok, Op: opTok})
	g.emit(&Instr{Type: ASSIGN, Res: &lhs.Tok, Left: &tmp})
	return lhs.Tok, nil
}

func (g *Generator) genBinary(x *ast.BinaryExpr) (token.Token, error) {
	leftTok, err := g.genExpr(x.Left)
	if err != nil {
		return token.Token{}, err
	}
	rightTok, err := g.genExpr(x.Right)
	if err != nil {
		return token.Token{}, err
	}
	tmp := g.t.NewTemp()
	opTok := x.Op
	g.emit(&Instr{Type: ASSIGN, Res: &tmp, Left: &leftTok, Right: &rightTok, Op: &opTok})
	return tmp, nil
}

func (g *Generator) genPrefix(x *ast.PrefixExpr) (token.Token, error) {
	switch x.Op.Lexeme {
	case "++", "--":
		ident, ok := x.X.(ast.Identifier)
		if !ok {
			return token.Token{}, &diag.TACError{Msg: "increment/decrement target must be an identifier", Tok: x.Pos()}
		}
		base := "+"
		if x.Op.Lexeme == "--" {
			base = "-"
		}
		one := numTok("1")
		opTok := tok(token.Punct, base)
		g.emit(&Instr{Type: ASSIGN, Res: &ident.Tok, Left: &ident.Tok, Right: &one, Op: opTok})
		return ident.Tok, nil
	case "~", "!":
		xTok, err := g.genExpr(x.X)
		if err != nil {
			return token.Token{}, err
		}
		tmp := g.t.NewTemp()
		opTok := x.Op
		g.emit(&Instr{Type: ASSIGN, Res: &tmp, Left: &xTok, Op: &opTok})
		return tmp, nil
	case "+":
		return g.genExpr(x.X)
	case "-":
		xTok, err := g.genExpr(x.X)
		if err != nil {
			return token.Token{}, err
		}
		zero := numTok("0")
		tmp := g.t.NewTemp()
		opTok := tok(token.Punct, "-")
		g.emit(&Instr{Type: ASSIGN, Res: &tmp, Left: &zero, Right: &xTok, Op: opTok})
		return tmp, nil
	default:
		return token.Token{}, &diag.TACError{Msg: "unhandled prefix operator " + x.Op.Lexeme, Tok: x.Pos()}
	}
}

func (g *Generator) genPostfix(x *ast.PostfixExpr) (token.Token, error) {
	ident, ok := x.X.(ast.Identifier)
	if !ok {
		return token.Token{}, &diag.TACError{Msg: "increment/decrement target must be an identifier", Tok: x.Pos()}
	}
	tmp := g.t.NewTemp()
	g.emit(&Instr{Type: ASSIGN, Res: &tmp, Left: &ident.Tok})
	base := "+"
	if x.Op.Lexeme == "--" {
		base = "-"
	}
	one := numTok("1")
	opTok := tok(token.Punct, base)
	g.emit(&Instr{Type: ASSIGN, Res: &ident.Tok, Left: &ident.Tok, Right: &one, Op: opTok})
	return tmp, nil
}

func (g *Generator) genCall(x *ast.CallExpr) (token.Token, error) {
	for _, arg := range x.Args {
		argTok, err := g.genExpr(arg)
		if err != nil {
			return token.Token{}, err
		}
		paramTok := token.Token{Kind: token.ParamMarker, Lexeme: "param"}
		g.emit(&Instr{Type: PARAM, Res: &paramTok, Left: &argTok})
	}
	tmp := g.t.NewTemp()
	callee := x.Callee.Tok
	g.emit(&Instr{Type: CALL, Res: &tmp, Left: &callee, Op: tok(token.CallMarker, "call")})
	return tmp, nil
}
