package cfg

import (
	"testing"

	"github.com/gmofishsauce/tacc/internal/tac"
	"github.com/gmofishsauce/tacc/internal/token"
)

func label(name string) *tac.Instr {
	t := token.Token{Kind: token.Ident, Lexeme: name}
	return &tac.Instr{Type: tac.LABEL, Res: &t}
}

func gotoInstr(name string) *tac.Instr {
	t := token.Token{Kind: token.Ident, Lexeme: name}
	return &tac.Instr{Type: tac.GOTO, Res: &t}
}

func TestBuildFallthroughEdge(t *testing.T) {
	fn := &tac.FunctionBlock{
		Blocks: []*tac.BasicBlock{
			{Instrs: []*tac.Instr{{Type: tac.DECL}}},
			{Instrs: []*tac.Instr{{Type: tac.RETURN}}},
		},
	}
	g := Build(fn)
	if len(g.Nodes[0].Succs) != 1 || g.Nodes[0].Succs[0] != 1 {
		t.Errorf("Succs of block 0 = %v, want [1] (fallthrough)", g.Nodes[0].Succs)
	}
	if len(g.Nodes[1].Preds) != 1 || g.Nodes[1].Preds[0] != 0 {
		t.Errorf("Preds of block 1 = %v, want [0]", g.Nodes[1].Preds)
	}
}

func TestBuildGotoEdge(t *testing.T) {
	fn := &tac.FunctionBlock{
		Blocks: []*tac.BasicBlock{
			{Instrs: []*tac.Instr{gotoInstr("L")}},
			{Instrs: []*tac.Instr{{Type: tac.DECL}}},
			{Instrs: []*tac.Instr{label("L"), {Type: tac.RETURN}}},
		},
	}
	g := Build(fn)
	if len(g.Nodes[0].Succs) != 1 || g.Nodes[0].Succs[0] != 2 {
		t.Errorf("Succs of block 0 = %v, want [2] (goto L)", g.Nodes[0].Succs)
	}
}

func TestBuildReturnHasNoSuccessors(t *testing.T) {
	fn := &tac.FunctionBlock{
		Blocks: []*tac.BasicBlock{
			{Instrs: []*tac.Instr{{Type: tac.RETURN}}},
		},
	}
	g := Build(fn)
	if len(g.Nodes[0].Succs) != 0 {
		t.Errorf("Succs of a RETURN block = %v, want none", g.Nodes[0].Succs)
	}
}

func TestBuildIfHasTwoSuccessors(t *testing.T) {
	condTok := token.Token{Kind: token.Ident, Lexeme: "c"}
	trueL := token.Token{Kind: token.Ident, Lexeme: "T"}
	falseL := token.Token{Kind: token.Ident, Lexeme: "F"}
	fn := &tac.FunctionBlock{
		Blocks: []*tac.BasicBlock{
			{Instrs: []*tac.Instr{{Type: tac.IF, Res: &condTok, Left: &trueL, Right: &falseL}}},
			{Instrs: []*tac.Instr{label("T"), {Type: tac.RETURN}}},
			{Instrs: []*tac.Instr{label("F"), {Type: tac.RETURN}}},
		},
	}
	g := Build(fn)
	if len(g.Nodes[0].Succs) != 2 {
		t.Fatalf("Succs of the IF block = %v, want 2 edges", g.Nodes[0].Succs)
	}
}

func TestReversedOrder(t *testing.T) {
	fn := &tac.FunctionBlock{
		Blocks: []*tac.BasicBlock{
			{Instrs: []*tac.Instr{{Type: tac.DECL}}},
			{Instrs: []*tac.Instr{{Type: tac.DECL}}},
			{Instrs: []*tac.Instr{{Type: tac.RETURN}}},
		},
	}
	g := Build(fn)
	want := []int{2, 1, 0}
	got := g.Reversed()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Reversed()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestLinkDeduplicatesEdges(t *testing.T) {
	fn := &tac.FunctionBlock{
		Blocks: []*tac.BasicBlock{
			{Instrs: []*tac.Instr{{Type: tac.DECL}}},
			{Instrs: []*tac.Instr{{Type: tac.RETURN}}},
		},
	}
	g := Build(fn)
	g.link(0, 1)
	g.link(0, 1)
	if len(g.Nodes[0].Succs) != 1 {
		t.Errorf("Succs = %v, want a single deduplicated edge", g.Nodes[0].Succs)
	}
}
