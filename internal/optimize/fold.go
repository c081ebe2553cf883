// Package optimize implements the three dataflow passes that run
// between TAC generation and register allocation: constant folding,
// copy/constant propagation, and dead code elimination (spec.md §4.4-§4.6).
package optimize

import (
	"strconv"

	"github.com/gmofishsauce/tacc/internal/diag"
	"github.com/gmofishsauce/tacc/internal/tac"
	"github.com/gmofishsauce/tacc/internal/token"
)

var foldableOps = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true,
	"<": true, ">": true, "==": true,
}

// Fold walks every instruction in every block (and the global
// initializers) and replaces two-numeric-literal-operand DECL/ASSIGN
// instructions with their evaluated single-operand result. Idempotent.
func Fold(t *tac.TAC) error {
	for _, instr := range t.Globals {
		if err := foldInstr(instr); err != nil {
			return err
		}
	}
	for _, fn := range t.Functions {
		for _, b := range fn.Blocks {
			for _, instr := range b.Instrs {
				if err := foldInstr(instr); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func foldInstr(instr *tac.Instr) error {
	if instr.Type != tac.DECL && instr.Type != tac.ASSIGN {
		return nil
	}
	if instr.Op == nil || instr.Right == nil || instr.Left == nil {
		return nil
	}
	if !foldableOps[instr.Op.Lexeme] {
		return nil
	}
	left, ok := numericValue(*instr.Left)
	if !ok {
		return nil
	}
	right, ok := numericValue(*instr.Right)
	if !ok {
		return nil
	}
	result, err := evalOp(instr.Op.Lexeme, left, right, *instr.Op)
	if err != nil {
		return err
	}
	instr.Left = &token.Token{Kind: token.Number, Lexeme: strconv.FormatInt(result, 10), Line: instr.Op.Line, Column: instr.Op.Column}
	instr.Right = nil
	instr.Op = nil
	return nil
}

func numericValue(t token.Token) (int64, bool) {
	if t.Kind != token.Number {
		return 0, false
	}
	v, err := strconv.ParseInt(t.Lexeme, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// evalOp evaluates a folded binary operation. Division and modulus
// truncate toward zero, matching Go's native integer semantics.
func evalOp(op string, l, r int64, opTok token.Token) (int64, error) {
	switch op {
	case "+":
		return l + r, nil
	case "-":
		return l - r, nil
	case "*":
		return l * r, nil
	case "/":
		if r == 0 {
			return 0, &diag.TACError{Msg: "division by zero", Tok: opTok}
		}
		return l / r, nil
	case "%":
		if r == 0 {
			return 0, &diag.TACError{Msg: "modulus by zero", Tok: opTok}
		}
		return l % r, nil
	case "<":
		if l < r {
			return 1, nil
		}
		return 0, nil
	case ">":
		if l > r {
			return 1, nil
		}
		return 0, nil
	case "==":
		if l == r {
			return 1, nil
		}
		return 0, nil
	}
	return 0, nil
}
