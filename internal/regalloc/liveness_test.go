package regalloc

import (
	"testing"

	"github.com/gmofishsauce/tacc/internal/tac"
	"github.com/gmofishsauce/tacc/internal/token"
)

func ident(s string) *token.Token { return &token.Token{Kind: token.Ident, Lexeme: s} }
func lit(s string) *token.Token   { return &token.Token{Kind: token.Number, Lexeme: s} }

func TestLivenessSimpleStraightLine(t *testing.T) {
	// a = 1; b = a; return b;  -- 'a' is live between the first two
	// instructions, dead after; 'b' is live until the return.
	fn := &tac.FunctionBlock{
		Blocks: []*tac.BasicBlock{{Instrs: []*tac.Instr{
			{Type: tac.ASSIGN, Res: ident("a"), Left: lit("1")},
			{Type: tac.ASSIGN, Res: ident("b"), Left: ident("a")},
			{Type: tac.RETURN, Res: ident("b")},
		}}},
	}
	fl := Liveness(fn)
	if !fl.Instrs[0][0].Out["a"] {
		t.Error("'a' should be live out of the first instruction (used by the second)")
	}
	if fl.Instrs[0][1].Out["a"] {
		t.Error("'a' should not be live out of the second instruction, which is its last use")
	}
	if !fl.Instrs[0][1].Out["b"] {
		t.Error("'b' should be live out of the second instruction (used by the return)")
	}
}

func TestLivenessAcrossBlocks(t *testing.T) {
	// block0: a = 1; goto L
	// block1: L: return a
	fn := &tac.FunctionBlock{
		Blocks: []*tac.BasicBlock{
			{Instrs: []*tac.Instr{
				{Type: tac.ASSIGN, Res: ident("a"), Left: lit("1")},
				{Type: tac.GOTO, Res: ident("L")},
			}},
			{Instrs: []*tac.Instr{
				{Type: tac.LABEL, Res: ident("L")},
				{Type: tac.RETURN, Res: ident("a")},
			}},
		},
	}
	fl := Liveness(fn)
	if !fl.Blocks[0].Out["a"] {
		t.Error("'a' should be live out of block 0, since block 1 uses it")
	}
	if !fl.Blocks[1].In["a"] {
		t.Error("'a' should be live into block 1")
	}
}

func TestLivenessDeadDefinitionNotLiveOut(t *testing.T) {
	fn := &tac.FunctionBlock{
		Blocks: []*tac.BasicBlock{{Instrs: []*tac.Instr{
			{Type: tac.ASSIGN, Res: ident("dead"), Left: lit("1")},
			{Type: tac.RETURN, Res: lit("0")},
		}}},
	}
	fl := Liveness(fn)
	if fl.Instrs[0][0].Out["dead"] {
		t.Error("'dead' is never used and should not be live out of its own definition")
	}
}

func TestLivenessLoopBackEdgeKeepsVariableLive(t *testing.T) {
	// block0: i = 0
	// block1 (L): WHILE i -> body(block2) else exit(block3)
	// block2 (body): i = i - 1; goto L
	// block3 (exit): return 0
	fn := &tac.FunctionBlock{
		Blocks: []*tac.BasicBlock{
			{Instrs: []*tac.Instr{{Type: tac.ASSIGN, Res: ident("i"), Left: lit("0")}}},
			{Instrs: []*tac.Instr{
				{Type: tac.LABEL, Res: ident("L")},
				{Type: tac.WHILE, Res: ident("i"), Left: ident("B"), Right: ident("X")},
			}},
			{Instrs: []*tac.Instr{
				{Type: tac.LABEL, Res: ident("B")},
				{Type: tac.ASSIGN, Res: ident("i"), Left: ident("i"), Right: lit("1"), Op: &token.Token{Kind: token.Punct, Lexeme: "-"}},
				{Type: tac.GOTO, Res: ident("L")},
			}},
			{Instrs: []*tac.Instr{
				{Type: tac.LABEL, Res: ident("X")},
				{Type: tac.RETURN, Res: lit("0")},
			}},
		},
	}
	fl := Liveness(fn)
	if !fl.Blocks[1].In["i"] {
		t.Error("'i' should be live into the loop header, fed back by the loop body")
	}
}

func TestSetsEqualAndCopySet(t *testing.T) {
	a := map[string]bool{"x": true, "y": true}
	b := copySet(a)
	if !setsEqual(a, b) {
		t.Error("a copied set should be equal to its source")
	}
	b["z"] = true
	if setsEqual(a, b) {
		t.Error("mutating the copy should not affect the original comparison")
	}
}
