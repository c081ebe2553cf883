package asmgen

import (
	"strings"
	"testing"

	"github.com/gmofishsauce/tacc/internal/tac"
	"github.com/gmofishsauce/tacc/internal/token"
)

func ident(s string) *token.Token { return &token.Token{Kind: token.Ident, Lexeme: s} }
func num(s string) *token.Token   { return &token.Token{Kind: token.Number, Lexeme: s} }
func op(s string) *token.Token    { return &token.Token{Kind: token.Punct, Lexeme: s} }

func TestOperandRendersLiteralVerbatim(t *testing.T) {
	if got := operand(num("7"), map[string]int{"a": 3}); got != "7" {
		t.Errorf("operand(7) = %s, want 7", got)
	}
}

func TestOperandRendersColoredRegister(t *testing.T) {
	if got := operand(ident("a"), map[string]int{"a": 2}); got != "r2" {
		t.Errorf("operand(a) = %s, want r2", got)
	}
}

func TestOperandFallsBackToNameWhenUncolored(t *testing.T) {
	if got := operand(ident("a"), map[string]int{}); got != "a" {
		t.Errorf("operand(a) = %s, want a (no color assigned)", got)
	}
}

func TestEmitGlobalDecl(t *testing.T) {
	instr := &tac.Instr{Type: tac.DECL, Res: ident("g"), Left: num("5")}
	line, err := emitGlobal(instr)
	if err != nil {
		t.Fatalf("emitGlobal: %v", err)
	}
	if line != "g: .quad 5" {
		t.Errorf("emitGlobal = %q, want %q", line, "g: .quad 5")
	}
}

func TestEmitGlobalRejectsWrongShape(t *testing.T) {
	instr := &tac.Instr{Type: tac.ASSIGN, Res: ident("g"), Left: num("5")}
	if _, err := emitGlobal(instr); err == nil {
		t.Error("emitGlobal should reject a non-DECL global instruction")
	}
}

func TestEmitAssignPlainCopy(t *testing.T) {
	instr := &tac.Instr{Type: tac.ASSIGN, Res: ident("a"), Left: ident("b")}
	lines, err := emitAssign(instr, nil)
	if err != nil {
		t.Fatalf("emitAssign: %v", err)
	}
	if len(lines) != 1 || lines[0] != "mov a, b" {
		t.Errorf("emitAssign plain copy = %v, want [\"mov a, b\"]", lines)
	}
}

func TestEmitAssignIncrementSpecialCase(t *testing.T) {
	instr := &tac.Instr{Type: tac.ASSIGN, Res: ident("a"), Left: ident("a"), Right: num("1"), Op: op("+")}
	lines, err := emitAssign(instr, nil)
	if err != nil {
		t.Fatalf("emitAssign: %v", err)
	}
	if len(lines) != 1 || lines[0] != "add a, 1" {
		t.Errorf("a = a + 1 should special-case to a single add, got %v", lines)
	}
}

func TestEmitAssignDecrementSpecialCase(t *testing.T) {
	instr := &tac.Instr{Type: tac.ASSIGN, Res: ident("a"), Left: ident("a"), Right: num("1"), Op: op("-")}
	lines, err := emitAssign(instr, nil)
	if err != nil {
		t.Fatalf("emitAssign: %v", err)
	}
	if len(lines) != 1 || lines[0] != "sub a, 1" {
		t.Errorf("a = a - 1 should special-case to a single sub, got %v", lines)
	}
}

func TestEmitAssignGeneralAddition(t *testing.T) {
	instr := &tac.Instr{Type: tac.ASSIGN, Res: ident("c"), Left: ident("a"), Right: ident("b"), Op: op("+")}
	lines, err := emitAssign(instr, nil)
	if err != nil {
		t.Fatalf("emitAssign: %v", err)
	}
	want := []string{"mov c, a", "add c, b"}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("lines[%d] = %q, want %q", i, lines[i], w)
		}
	}
}

func TestEmitAssignDivisionUsesCqoIdiv(t *testing.T) {
	instr := &tac.Instr{Type: tac.ASSIGN, Res: ident("c"), Left: ident("a"), Right: ident("b"), Op: op("/")}
	lines, err := emitAssign(instr, nil)
	if err != nil {
		t.Fatalf("emitAssign: %v", err)
	}
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "cqo") || !strings.Contains(joined, "idiv rbx") {
		t.Errorf("division should lower through cqo/idiv rbx, got %v", lines)
	}
	if !strings.Contains(joined, "mov rbx, b") {
		t.Errorf("the divisor should be moved into rbx before idiv, got %v", lines)
	}
	if lines[len(lines)-1] != "mov c, rax" {
		t.Errorf("division result should be moved from rax, got %v", lines)
	}
}

func TestEmitAssignDivisionWithLiteralDivisorUsesScratchRegister(t *testing.T) {
	// x / 3: the dividend is a variable so constant folding never fires,
	// and idiv cannot take an immediate operand directly.
	instr := &tac.Instr{Type: tac.ASSIGN, Res: ident("c"), Left: ident("x"), Right: num("3"), Op: op("/")}
	lines, err := emitAssign(instr, nil)
	if err != nil {
		t.Fatalf("emitAssign: %v", err)
	}
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "mov rbx, 3") {
		t.Errorf("a literal divisor must be moved into rbx before idiv, got %v", lines)
	}
	if strings.Contains(joined, "idiv 3") {
		t.Error("idiv must never take a literal operand directly")
	}
}

func TestEmitAssignModulusReadsRemainderFromRdx(t *testing.T) {
	instr := &tac.Instr{Type: tac.ASSIGN, Res: ident("c"), Left: ident("a"), Right: ident("b"), Op: op("%")}
	lines, err := emitAssign(instr, nil)
	if err != nil {
		t.Fatalf("emitAssign: %v", err)
	}
	if lines[len(lines)-1] != "mov c, rdx" {
		t.Errorf("modulus result should be moved from rdx, got %v", lines)
	}
}

func TestEmitAssignRelationalUsesSetccAndMovzx(t *testing.T) {
	instr := &tac.Instr{Type: tac.ASSIGN, Res: ident("c"), Left: ident("a"), Right: ident("b"), Op: op("<")}
	lines, err := emitAssign(instr, nil)
	if err != nil {
		t.Fatalf("emitAssign: %v", err)
	}
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "setl") || !strings.Contains(joined, "movzx") {
		t.Errorf("'<' should lower through setl+movzx, got %v", lines)
	}
}

func TestEmitAssignNaturalBitwiseFallback(t *testing.T) {
	instr := &tac.Instr{Type: tac.ASSIGN, Res: ident("c"), Left: ident("a"), Right: ident("b"), Op: op("&")}
	lines, err := emitAssign(instr, nil)
	if err != nil {
		t.Fatalf("emitAssign: %v", err)
	}
	if lines[1] != "and c, b" {
		t.Errorf("'&' should lower to 'and', got %v", lines)
	}
}

func TestEmitAssignLogicalNot(t *testing.T) {
	instr := &tac.Instr{Type: tac.ASSIGN, Res: ident("c"), Left: ident("a"), Op: op("!")}
	lines, err := emitAssign(instr, nil)
	if err != nil {
		t.Fatalf("emitAssign: %v", err)
	}
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "sete") || !strings.Contains(joined, "movzx") {
		t.Errorf("'!' should lower through sete+movzx, got %v", lines)
	}
}

func TestEmitAssignBitwiseNot(t *testing.T) {
	instr := &tac.Instr{Type: tac.ASSIGN, Res: ident("c"), Left: ident("a"), Op: op("~")}
	lines, err := emitAssign(instr, nil)
	if err != nil {
		t.Fatalf("emitAssign: %v", err)
	}
	if lines[len(lines)-1] != "not c" {
		t.Errorf("'~' should emit a 'not', got %v", lines)
	}
}

func TestEmitAssignUnsupportedUnaryIsError(t *testing.T) {
	instr := &tac.Instr{Type: tac.ASSIGN, Res: ident("c"), Left: ident("a"), Op: op("?")}
	if _, err := emitAssign(instr, nil); err == nil {
		t.Error("an unrecognized unary operator should produce an ASMError")
	}
}

func TestEmitInstrIfEmitsCmpAndTwoJumps(t *testing.T) {
	instr := &tac.Instr{Type: tac.IF, Res: ident("cond"), Left: ident("T"), Right: ident("F")}
	lines, err := emitInstr(instr, nil)
	if err != nil {
		t.Fatalf("emitInstr: %v", err)
	}
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "cmp") || lines[1] != "jne T" || lines[2] != "jmp F" {
		t.Errorf("IF lowering = %v", lines)
	}
}

func TestEmitInstrReturnWithValue(t *testing.T) {
	instr := &tac.Instr{Type: tac.RETURN, Res: num("0")}
	lines, err := emitInstr(instr, nil)
	if err != nil {
		t.Fatalf("emitInstr: %v", err)
	}
	if len(lines) != 2 || lines[0] != "mov rax, 0" || lines[1] != "ret" {
		t.Errorf("RETURN 0 lowering = %v", lines)
	}
}

func TestEmitInstrBareReturn(t *testing.T) {
	instr := &tac.Instr{Type: tac.RETURN}
	lines, err := emitInstr(instr, nil)
	if err != nil {
		t.Fatalf("emitInstr: %v", err)
	}
	if len(lines) != 1 || lines[0] != "ret" {
		t.Errorf("bare RETURN lowering = %v, want [\"ret\"]", lines)
	}
}

func TestEmitInstrLabel(t *testing.T) {
	instr := &tac.Instr{Type: tac.LABEL, Res: ident("L")}
	lines, err := emitInstr(instr, nil)
	if err != nil {
		t.Fatalf("emitInstr: %v", err)
	}
	if lines[0] != "L:" {
		t.Errorf("LABEL lowering = %v, want [\"L:\"]", lines)
	}
}

func TestEmitUnhandledInstructionTypeIsError(t *testing.T) {
	instr := &tac.Instr{Type: tac.DECL + 100}
	if _, err := emitInstr(instr, nil); err == nil {
		t.Error("an unrecognized instruction type should produce an ASMError")
	}
}

func TestEmitEndToEndProducesFunctionLabel(t *testing.T) {
	fn := &tac.FunctionBlock{
		Name: token.Token{Kind: token.Ident, Lexeme: "f"},
		Blocks: []*tac.BasicBlock{{Instrs: []*tac.Instr{
			{Type: tac.ASSIGN, Res: ident("a"), Left: num("1")},
			{Type: tac.RETURN, Res: ident("a")},
		}}},
	}
	tc := &tac.TAC{
		Globals:   []*tac.Instr{{Type: tac.DECL, Res: ident("g"), Left: num("9")}},
		Functions: []*tac.FunctionBlock{fn},
	}
	out, err := Emit(tc)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !strings.Contains(out, "g: .quad 9") {
		t.Errorf("Emit output missing global declaration, got:\n%s", out)
	}
	if !strings.Contains(out, "f:\n") {
		t.Errorf("Emit output missing function label, got:\n%s", out)
	}
	if !strings.Contains(out, "ret") {
		t.Errorf("Emit output missing a ret, got:\n%s", out)
	}
}
