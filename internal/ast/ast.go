// Package ast defines the tagged-union abstract syntax tree produced
// by the parser and consumed by the semantic analyzer and TAC
// generator. Dispatch is always by concrete type (a Go type switch),
// never by embedded behavior: these are plain data carriers.
package ast

import "github.com/gmofishsauce/tacc/internal/token"

// Node is implemented by every AST node so printers can fetch a
// source location without a type switch.
type Node interface {
	Pos() token.Token
}

// Decl is a top-level declaration: a function definition, a function
// declaration (prototype), or a file-scope variable declaration.
type Decl interface {
	Node
	declNode()
}

// Stmt is any statement that can appear inside a function body.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is any expression node. Expression subtrees contain only
// tokens or other Expr nodes; there are no dangling references.
type Expr interface {
	Node
	exprNode()
}

// Program is the AST root: an ordered sequence of top-level units.
type Program struct {
	Decls []Decl
}

// VarSpec is one declared variable within a DeclStmt, with an
// optional initializer expression.
type VarSpec struct {
	Name Identifier
	Init Expr // nil if no initializer
}

// DeclStmt declares one or more int variables, e.g. "int a, b = 2;".
// Specifiers holds every declaration-specifier token encountered
// (including disallowed ones like "unsigned"/"const"/"static" so the
// semantic analyzer can reject them with a precise location).
type DeclStmt struct {
	Specifiers []token.Token
	Vars       []VarSpec
	Tok        token.Token
}

func (s *DeclStmt) stmtNode()      {}
func (s *DeclStmt) Pos() token.Token { return s.Tok }

// Param is one function parameter: its declared type specifiers and
// its name.
type Param struct {
	Specifiers []token.Token
	Name       Identifier
}

// FuncDecl is a function prototype with no body: "int f(int x);".
type FuncDecl struct {
	ReturnType token.Token
	Name       Identifier
	Params     []Param
	Tok        token.Token
}

func (d *FuncDecl) declNode()        {}
func (d *FuncDecl) Pos() token.Token { return d.Tok }

// FuncDef is a function definition with a body.
type FuncDef struct {
	ReturnType token.Token
	Name       Identifier
	Params     []Param
	Body       *CompoundStmt
	Tok        token.Token
}

func (d *FuncDef) declNode()        {}
func (d *FuncDef) Pos() token.Token { return d.Tok }

// FileVarDecl is a file-scope (global) variable declaration; it
// reuses DeclStmt's shape but is a Decl, not a Stmt.
type FileVarDecl struct {
	*DeclStmt
}

func (d *FileVarDecl) declNode()        {}
func (d *FileVarDecl) Pos() token.Token { return d.Tok }

// CompoundStmt is a brace-delimited block of statements.
type CompoundStmt struct {
	Stmts []Stmt
	Tok   token.Token
}

func (s *CompoundStmt) stmtNode()      {}
func (s *CompoundStmt) Pos() token.Token { return s.Tok }

// IfStmt is "if (Cond) Then [else Else]".
type IfStmt struct {
	Cond Expr
	Then Stmt
	Else Stmt // nil if no else clause
	Tok  token.Token
}

func (s *IfStmt) stmtNode()      {}
func (s *IfStmt) Pos() token.Token { return s.Tok }

// WhileStmt is "while (Cond) Body".
type WhileStmt struct {
	Cond Expr
	Body Stmt
	Tok  token.Token
}

func (s *WhileStmt) stmtNode()      {}
func (s *WhileStmt) Pos() token.Token { return s.Tok }

// DoWhileStmt is "do Body while (Cond);"; the body always executes at
// least once.
type DoWhileStmt struct {
	Body Stmt
	Cond Expr
	Tok  token.Token
}

func (s *DoWhileStmt) stmtNode()      {}
func (s *DoWhileStmt) Pos() token.Token { return s.Tok }

// ForStmt is "for (Init; Cond; Post) Body". Init and Post may be nil;
// Init is either a DeclStmt or an expression wrapped in ExprStmt.
type ForStmt struct {
	Init Stmt
	Cond Expr
	Post Stmt
	Body Stmt
	Tok  token.Token
}

func (s *ForStmt) stmtNode()      {}
func (s *ForStmt) Pos() token.Token { return s.Tok }

// SwitchSection is one ordered "case V:"/"default:" label followed by
// its statements, up to (but not including) the next label.
type SwitchSection struct {
	CaseValues []Expr // empty for "default"
	IsDefault  bool
	Stmts      []Stmt
}

// SwitchStmt is "switch (Tag) { sections... }".
type SwitchStmt struct {
	Tag      Expr
	Sections []SwitchSection
	Tok      token.Token
}

func (s *SwitchStmt) stmtNode()      {}
func (s *SwitchStmt) Pos() token.Token { return s.Tok }

// ReturnStmt is "return [Value];".
type ReturnStmt struct {
	Value Expr // nil for bare "return;"
	Tok   token.Token
}

func (s *ReturnStmt) stmtNode()      {}
func (s *ReturnStmt) Pos() token.Token { return s.Tok }

// GotoStmt is "goto Label;".
type GotoStmt struct {
	Label string
	Tok   token.Token
}

func (s *GotoStmt) stmtNode()      {}
func (s *GotoStmt) Pos() token.Token { return s.Tok }

// BreakStmt is "break;".
type BreakStmt struct {
	Tok token.Token
}

func (s *BreakStmt) stmtNode()      {}
func (s *BreakStmt) Pos() token.Token { return s.Tok }

// ContinueStmt is "continue;".
type ContinueStmt struct {
	Tok token.Token
}

func (s *ContinueStmt) stmtNode()      {}
func (s *ContinueStmt) Pos() token.Token { return s.Tok }

// LabelStmt is "Name: Stmt" — a target for goto.
type LabelStmt struct {
	Name string
	Stmt Stmt
	Tok  token.Token
}

func (s *LabelStmt) stmtNode()      {}
func (s *LabelStmt) Pos() token.Token { return s.Tok }

// ExprStmt is an expression evaluated for its side effect.
type ExprStmt struct {
	X   Expr
	Tok token.Token
}

func (s *ExprStmt) stmtNode()      {}
func (s *ExprStmt) Pos() token.Token { return s.Tok }

// ============================================================
// Expressions
// ============================================================

// Identifier is a bare name reference.
type Identifier struct {
	Name string
	Tok  token.Token
}

func (e Identifier) exprNode()      {}
func (e Identifier) Pos() token.Token { return e.Tok }

// Literal is a numeric, string, or character literal. Only Number
// literals are admissible past the semantic analyzer; String and Char
// are recognized here so Pass 1 can reject them with a precise
// location.
type Literal struct {
	Tok token.Token
}

func (e *Literal) exprNode()      {}
func (e *Literal) Pos() token.Token { return e.Tok }

// AssignExpr is "Left Op Right" where Op is "=" or a compound
// assignment operator ("+=", "-=", ...).
type AssignExpr struct {
	Left  Expr
	Op    token.Token
	Right Expr
}

func (e *AssignExpr) exprNode()      {}
func (e *AssignExpr) Pos() token.Token { return e.Op }

// BinaryExpr is "Left Op Right".
type BinaryExpr struct {
	Left  Expr
	Op    token.Token
	Right Expr
}

func (e *BinaryExpr) exprNode()      {}
func (e *BinaryExpr) Pos() token.Token { return e.Op }

// PrefixExpr is a prefix unary operator applied to X: "++x", "--x",
// "~x", "!x", "+x", "-x".
type PrefixExpr struct {
	Op token.Token
	X  Expr
}

func (e *PrefixExpr) exprNode()      {}
func (e *PrefixExpr) Pos() token.Token { return e.Op }

// PostfixExpr is a postfix unary operator applied to X: "x++", "x--".
type PostfixExpr struct {
	X  Expr
	Op token.Token
}

func (e *PostfixExpr) exprNode()      {}
func (e *PostfixExpr) Pos() token.Token { return e.Op }

// CallExpr is "Callee(Args...)". Emitted for completeness by the
// parser and TAC generator; the semantic analyzer rejects every call
// expression it reaches in live code.
type CallExpr struct {
	Callee Identifier
	Args   []Expr
	Tok    token.Token
}

func (e *CallExpr) exprNode()      {}
func (e *CallExpr) Pos() token.Token { return e.Tok }

// MemberExpr is "X.Member". Always rejected by the semantic analyzer
// (no aggregate types in this dialect); parsed only so a clear
// SemanticError can be raised at the use site instead of a ParseError.
type MemberExpr struct {
	X      Expr
	Member string
	Tok    token.Token
}

func (e *MemberExpr) exprNode()      {}
func (e *MemberExpr) Pos() token.Token { return e.Tok }
