package optimize

import (
	"testing"

	"github.com/gmofishsauce/tacc/internal/tac"
	"github.com/gmofishsauce/tacc/internal/tacdiff"
	"github.com/gmofishsauce/tacc/internal/token"
)

func numTok(s string) *token.Token {
	return &token.Token{Kind: token.Number, Lexeme: s}
}

func opTok(s string) *token.Token {
	return &token.Token{Kind: token.Punct, Lexeme: s}
}

func identTok(s string) *token.Token {
	return &token.Token{Kind: token.Ident, Lexeme: s}
}

func TestFoldArithmetic(t *testing.T) {
	tests := []struct {
		op   string
		l, r string
		want string
	}{
		{"+", "2", "3", "5"},
		{"-", "5", "3", "2"},
		{"*", "4", "3", "12"},
		{"/", "7", "2", "3"},
		{"/", "-7", "2", "-3"}, // truncation toward zero
		{"%", "7", "2", "1"},
		{"%", "-7", "2", "-1"},
		{"<", "1", "2", "1"},
		{"<", "2", "1", "0"},
		{">", "2", "1", "1"},
		{"==", "3", "3", "1"},
		{"==", "3", "4", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.op+"_"+tt.l+"_"+tt.r, func(t *testing.T) {
			instr := &tac.Instr{Type: tac.ASSIGN, Res: identTok("t"), Left: numTok(tt.l), Right: numTok(tt.r), Op: opTok(tt.op)}
			if err := foldInstr(instr); err != nil {
				t.Fatalf("foldInstr: %v", err)
			}
			if instr.Left.Lexeme != tt.want {
				t.Errorf("folded value = %s, want %s", instr.Left.Lexeme, tt.want)
			}
			if instr.Right != nil || instr.Op != nil {
				t.Errorf("expected Right and Op to be cleared after folding")
			}
		})
	}
}

func TestFoldDivisionByZeroIsError(t *testing.T) {
	instr := &tac.Instr{Type: tac.ASSIGN, Res: identTok("t"), Left: numTok("1"), Right: numTok("0"), Op: opTok("/")}
	if err := foldInstr(instr); err == nil {
		t.Fatal("foldInstr: expected an error for division by zero")
	}
}

func TestFoldModulusByZeroIsError(t *testing.T) {
	instr := &tac.Instr{Type: tac.ASSIGN, Res: identTok("t"), Left: numTok("1"), Right: numTok("0"), Op: opTok("%")}
	if err := foldInstr(instr); err == nil {
		t.Fatal("foldInstr: expected an error for modulus by zero")
	}
}

func TestFoldIgnoresNonLiteralOperands(t *testing.T) {
	instr := &tac.Instr{Type: tac.ASSIGN, Res: identTok("t"), Left: identTok("a"), Right: numTok("1"), Op: opTok("+")}
	if err := foldInstr(instr); err != nil {
		t.Fatalf("foldInstr: %v", err)
	}
	if instr.Op == nil {
		t.Error("non-foldable instruction should be left unchanged")
	}
}

func TestFoldIsIdempotent(t *testing.T) {
	tc := &tac.TAC{Functions: []*tac.FunctionBlock{{
		Blocks: []*tac.BasicBlock{{Instrs: []*tac.Instr{
			{Type: tac.ASSIGN, Res: identTok("t"), Left: numTok("2"), Right: numTok("3"), Op: opTok("+")},
		}}},
	}}}
	if err := Fold(tc); err != nil {
		t.Fatalf("Fold: %v", err)
	}
	before := tacdiff.Take(tc)
	if err := Fold(tc); err != nil {
		t.Fatalf("second Fold: %v", err)
	}
	if diffs := tacdiff.Diff(before, tacdiff.Take(tc)); len(diffs) != 0 {
		t.Errorf("Fold is not idempotent: a second pass changed already-folded structure: %v", diffs)
	}
}
