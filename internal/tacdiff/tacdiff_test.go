package tacdiff

import (
	"testing"

	"github.com/gmofishsauce/tacc/internal/tac"
	"github.com/gmofishsauce/tacc/internal/token"
)

func ident(s string) *token.Token { return &token.Token{Kind: token.Ident, Lexeme: s} }
func num(s string) *token.Token   { return &token.Token{Kind: token.Number, Lexeme: s} }

func sampleTAC() *tac.TAC {
	return &tac.TAC{
		Globals: []*tac.Instr{{Type: tac.DECL, Res: ident("g"), Left: num("1")}},
		Functions: []*tac.FunctionBlock{{
			Name:   token.Token{Kind: token.Ident, Lexeme: "f"},
			Blocks: []*tac.BasicBlock{{Instrs: []*tac.Instr{{Type: tac.RETURN, Res: ident("g")}}}},
		}},
	}
}

func TestEqualOnIdenticalSnapshots(t *testing.T) {
	a := Take(sampleTAC())
	b := Take(sampleTAC())
	if !Equal(a, b) {
		t.Errorf("two snapshots of structurally identical TAC should be equal, diffs: %v", Diff(a, b))
	}
}

func TestEqualIgnoresTokenPosition(t *testing.T) {
	tc1 := sampleTAC()
	tc2 := sampleTAC()
	tc2.Functions[0].Blocks[0].Instrs[0].Res.Line = 99
	tc2.Functions[0].Blocks[0].Instrs[0].Res.Column = 7
	if !Equal(Take(tc1), Take(tc2)) {
		t.Error("position fields must not affect structural equality")
	}
}

func TestDiffReportsChangedOperand(t *testing.T) {
	tc1 := sampleTAC()
	tc2 := sampleTAC()
	tc2.Functions[0].Blocks[0].Instrs[0].Res = ident("h")
	diffs := Diff(Take(tc1), Take(tc2))
	if len(diffs) == 0 {
		t.Fatal("expected a diff for the changed RETURN operand")
	}
}

func TestDiffReportsLengthMismatch(t *testing.T) {
	tc1 := sampleTAC()
	tc2 := sampleTAC()
	tc2.Functions[0].Blocks[0].Instrs = append(tc2.Functions[0].Blocks[0].Instrs,
		&tac.Instr{Type: tac.RETURN, Res: num("0")})
	diffs := Diff(Take(tc1), Take(tc2))
	found := false
	for _, d := range diffs {
		if d == "tac.functions[0].blocks[0]: length 1 != 2" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a length-mismatch diff, got: %v", diffs)
	}
}

func TestCompareReturnsEqualAndDiffs(t *testing.T) {
	a := Take(sampleTAC())
	b := Take(sampleTAC())
	eq, diffs := Compare(a, b)
	if !eq || len(diffs) != 0 {
		t.Errorf("Compare of identical snapshots = (%v, %v), want (true, nil)", eq, diffs)
	}

	tc2 := sampleTAC()
	tc2.Globals[0].Left = num("2")
	eq2, diffs2 := Compare(a, Take(tc2))
	if eq2 || len(diffs2) == 0 {
		t.Errorf("Compare of differing snapshots = (%v, %v), want (false, non-empty)", eq2, diffs2)
	}
}
