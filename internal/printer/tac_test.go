package printer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gmofishsauce/tacc/internal/tac"
	"github.com/gmofishsauce/tacc/internal/token"
)

func tident(s string) *token.Token { return &token.Token{Kind: token.Ident, Lexeme: s} }
func tnum(s string) *token.Token   { return &token.Token{Kind: token.Number, Lexeme: s} }
func top(s string) *token.Token    { return &token.Token{Kind: token.Punct, Lexeme: s} }

func TestTACNumbersInstructionsSequentially(t *testing.T) {
	tc := &tac.TAC{
		Globals: []*tac.Instr{{Type: tac.DECL, Res: tident("g"), Left: tnum("1")}},
		Functions: []*tac.FunctionBlock{{
			Name:   token.Token{Kind: token.Ident, Lexeme: "f"},
			Blocks: []*tac.BasicBlock{{Instrs: []*tac.Instr{{Type: tac.RETURN, Res: tnum("0")}}}},
		}},
	}
	var buf bytes.Buffer
	w := New(&buf)
	TAC(w, tc)
	w.Flush()
	out := buf.String()
	if !strings.HasPrefix(out, "0000: g = 1") {
		t.Errorf("first listed line should be numbered 0000, got:\n%s", out)
	}
	if !strings.Contains(out, "FUNC f") {
		t.Errorf("expected an unnumbered 'FUNC f' header, got:\n%s", out)
	}
	if !strings.Contains(out, "0001: return 0") {
		t.Errorf("the numbering should continue across the function boundary, got:\n%s", out)
	}
}

func TestRenderAssignPlainCopy(t *testing.T) {
	instr := &tac.Instr{Type: tac.ASSIGN, Res: tident("a"), Left: tident("b")}
	if got := renderAssign(instr); got != "a = b" {
		t.Errorf("renderAssign = %q, want %q", got, "a = b")
	}
}

func TestRenderAssignBinary(t *testing.T) {
	instr := &tac.Instr{Type: tac.ASSIGN, Res: tident("a"), Left: tident("b"), Right: tident("c"), Op: top("+")}
	if got := renderAssign(instr); got != "a = b + c" {
		t.Errorf("renderAssign = %q, want %q", got, "a = b + c")
	}
}

func TestRenderAssignUnary(t *testing.T) {
	instr := &tac.Instr{Type: tac.ASSIGN, Res: tident("a"), Left: tident("b"), Op: top("-")}
	if got := renderAssign(instr); got != "a = - b" {
		t.Errorf("renderAssign = %q, want %q", got, "a = - b")
	}
}

func TestRenderInstrIfBranch(t *testing.T) {
	instr := &tac.Instr{Type: tac.IF, Res: tident("c"), Left: tident("T"), Right: tident("F")}
	if got := renderInstr(instr); got != "if c goto T else F" {
		t.Errorf("renderInstr(IF) = %q", got)
	}
}

func TestPad4ZeroPads(t *testing.T) {
	if pad4(7) != "0007" {
		t.Errorf("pad4(7) = %q, want 0007", pad4(7))
	}
	if pad4(12345) != "12345" {
		t.Errorf("pad4(12345) = %q, want 12345 (no truncation beyond 4 digits)", pad4(12345))
	}
}

func TestItoaZero(t *testing.T) {
	if itoa(0) != "0" {
		t.Errorf("itoa(0) = %q, want \"0\"", itoa(0))
	}
}
