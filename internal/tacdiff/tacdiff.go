// Package tacdiff snapshots a TAC object into a normalized, comparable
// form and diffs two snapshots path by path, so optimizer passes can
// be checked for "no further change" (or for an expected rewrite)
// without relying on pointer identity. Grounded on
// src/tac_diff.py's snapshot_tac/diff_tac/compare_tac_structures in
// the distillation's original source: a token collapses to its (kind,
// lexeme) pair, an instruction to its normalized fields, and a diff
// walks the resulting tree reporting human-readable paths like
// "tac.functions[0].blocks[2][5].op".
package tacdiff

import (
	"fmt"

	"github.com/gmofishsauce/tacc/internal/tac"
	"github.com/gmofishsauce/tacc/internal/token"
)

// Tok is a token reduced to the two fields that matter for structural
// equality; position never participates, matching token.Token.Equal.
type Tok struct {
	Kind   string
	Lexeme string
}

func normTok(t *token.Token) *Tok {
	if t == nil {
		return nil
	}
	return &Tok{Kind: t.Kind.String(), Lexeme: t.Lexeme}
}

// Instr is one normalized instruction.
type Instr struct {
	Type  string
	Res   *Tok
	Left  *Tok
	Right *Tok
	Op    *Tok
}

func normInstr(i *tac.Instr) Instr {
	return Instr{
		Type:  i.Type.String(),
		Res:   normTok(i.Res),
		Left:  normTok(i.Left),
		Right: normTok(i.Right),
		Op:    normTok(i.Op),
	}
}

// Func is one normalized function: its name and its blocks' instruction
// lists, in block order.
type Func struct {
	Name   string
	Blocks [][]Instr
}

// Snapshot is a whole TAC object reduced to its comparable structure.
type Snapshot struct {
	Globals   []Instr
	Functions []Func
}

// Take snapshots t's current structure. Call it before and after an
// optimizer pass to diff the result.
func Take(t *tac.TAC) Snapshot {
	s := Snapshot{}
	for _, instr := range t.Globals {
		s.Globals = append(s.Globals, normInstr(instr))
	}
	for _, fn := range t.Functions {
		f := Func{Name: fn.Name.Lexeme}
		for _, b := range fn.Blocks {
			var block []Instr
			for _, instr := range b.Instrs {
				block = append(block, normInstr(instr))
			}
			f.Blocks = append(f.Blocks, block)
		}
		s.Functions = append(s.Functions, f)
	}
	return s
}

func tokEqual(a, b *Tok) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func diffTok(path string, a, b *Tok, out *[]string) {
	if !tokEqual(a, b) {
		*out = append(*out, fmt.Sprintf("%s: %v != %v", path, a, b))
	}
}

func diffInstr(path string, a, b Instr, out *[]string) {
	if a.Type != b.Type {
		*out = append(*out, fmt.Sprintf("%s.type: %s != %s", path, a.Type, b.Type))
	}
	diffTok(path+".res", a.Res, b.Res, out)
	diffTok(path+".left", a.Left, b.Left, out)
	diffTok(path+".right", a.Right, b.Right, out)
	diffTok(path+".op", a.Op, b.Op, out)
}

func diffBlock(path string, a, b []Instr, out *[]string) {
	if len(a) != len(b) {
		*out = append(*out, fmt.Sprintf("%s: length %d != %d", path, len(a), len(b)))
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		diffInstr(fmt.Sprintf("%s[%d]", path, i), a[i], b[i], out)
	}
}

func diffFunc(path string, a, b Func, out *[]string) {
	if a.Name != b.Name {
		*out = append(*out, fmt.Sprintf("%s.name: %s != %s", path, a.Name, b.Name))
	}
	if len(a.Blocks) != len(b.Blocks) {
		*out = append(*out, fmt.Sprintf("%s.blocks: length %d != %d", path, len(a.Blocks), len(b.Blocks)))
	}
	n := len(a.Blocks)
	if len(b.Blocks) < n {
		n = len(b.Blocks)
	}
	for i := 0; i < n; i++ {
		diffBlock(fmt.Sprintf("%s.blocks[%d]", path, i), a.Blocks[i], b.Blocks[i], out)
	}
}

// Diff returns human-readable differences between two snapshots, each
// path rooted at "tac", e.g. "tac.functions[0].blocks[2][5].op".
func Diff(a, b Snapshot) []string {
	var out []string
	diffBlock("tac.globals", a.Globals, b.Globals, &out)
	if len(a.Functions) != len(b.Functions) {
		out = append(out, fmt.Sprintf("tac.functions: length %d != %d", len(a.Functions), len(b.Functions)))
	}
	n := len(a.Functions)
	if len(b.Functions) < n {
		n = len(b.Functions)
	}
	for i := 0; i < n; i++ {
		diffFunc(fmt.Sprintf("tac.functions[%d]", i), a.Functions[i], b.Functions[i], &out)
	}
	return out
}

// Equal reports whether a and b have no structural differences.
func Equal(a, b Snapshot) bool {
	return len(Diff(a, b)) == 0
}

// Compare is the (are_equal, diffs) pair, matching
// compare_tac_structures in the distillation's original source.
func Compare(a, b Snapshot) (bool, []string) {
	diffs := Diff(a, b)
	return len(diffs) == 0, diffs
}
