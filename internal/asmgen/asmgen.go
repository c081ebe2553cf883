// Package asmgen renders a TAC object into an x86-64-style textual
// listing per spec.md §4.8. The emitter is syntactic: it does not
// model calling conventions or stack layout, and the listing is
// informational rather than assemblable machine code.
package asmgen

import (
	"fmt"
	"strings"

	"github.com/gmofishsauce/tacc/internal/diag"
	"github.com/gmofishsauce/tacc/internal/regalloc"
	"github.com/gmofishsauce/tacc/internal/tac"
	"github.com/gmofishsauce/tacc/internal/token"
)

var setcc = map[string]string{
	"<": "setl", ">": "setg", "==": "sete",
	"!=": "setne", "<=": "setle", ">=": "setge",
}

var natural = map[string]string{
	"&": "and", "|": "or", "^": "xor",
	"<<": "shl", ">>": "shr",
	"&&": "and", "||": "or",
}

// Emit renders t as a textual asm listing, running register
// allocation for each function along the way.
func Emit(t *tac.TAC) (string, error) {
	var sb strings.Builder
	for _, instr := range t.Globals {
		line, err := emitGlobal(instr)
		if err != nil {
			return "", err
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	for _, fn := range t.Functions {
		alloc := regalloc.Allocate(fn)
		sb.WriteString(fn.Name.Lexeme)
		sb.WriteString(":\n")
		for _, b := range fn.Blocks {
			for _, instr := range b.Instrs {
				lines, err := emitInstr(instr, alloc.Colors)
				if err != nil {
					return "", err
				}
				for _, l := range lines {
					if strings.HasSuffix(l, ":") {
						sb.WriteString(l)
					} else {
						sb.WriteByte('\t')
						sb.WriteString(l)
					}
					sb.WriteByte('\n')
				}
			}
		}
	}
	return sb.String(), nil
}

func emitGlobal(instr *tac.Instr) (string, error) {
	if instr.Type != tac.DECL || instr.Res == nil || instr.Left == nil {
		return "", &diag.ASMError{Msg: "unexpected global initializer shape"}
	}
	return fmt.Sprintf("%s: .quad %s", instr.Res.Lexeme, operand(instr.Left, nil)), nil
}

func operand(t *token.Token, colors map[string]int) string {
	if t == nil {
		return ""
	}
	if t.Kind == token.Number {
		return t.Lexeme
	}
	if colors != nil {
		if c, ok := colors[t.Lexeme]; ok {
			return fmt.Sprintf("r%d", c)
		}
	}
	return t.Lexeme
}

func sameIdent(a, b *token.Token) bool {
	return a != nil && b != nil && a.Kind == token.Ident && b.Kind == token.Ident && a.Lexeme == b.Lexeme
}

func isLiteralOne(t *token.Token) bool {
	return t != nil && t.Kind == token.Number && t.Lexeme == "1"
}

func emitInstr(instr *tac.Instr, colors map[string]int) ([]string, error) {
	switch instr.Type {
	case tac.DECL:
		return []string{fmt.Sprintf("mov %s, %s", operand(instr.Res, colors), operand(instr.Left, colors))}, nil
	case tac.ASSIGN:
		return emitAssign(instr, colors)
	case tac.PARAM:
		return []string{fmt.Sprintf("; param %s", operand(instr.Left, colors))}, nil
	case tac.CALL:
		return []string{
			fmt.Sprintf("call %s", instr.Left.Lexeme),
			fmt.Sprintf("mov %s, rax", operand(instr.Res, colors)),
		}, nil
	case tac.LABEL:
		return []string{fmt.Sprintf("%s:", instr.Res.Lexeme)}, nil
	case tac.GOTO:
		return []string{fmt.Sprintf("jmp %s", instr.Res.Lexeme)}, nil
	case tac.IF, tac.WHILE, tac.FOR:
		return []string{
			fmt.Sprintf("cmp %s, 0", operand(instr.Res, colors)),
			fmt.Sprintf("jne %s", instr.Left.Lexeme),
			fmt.Sprintf("jmp %s", instr.Right.Lexeme),
		}, nil
	case tac.RETURN:
		if instr.Res == nil {
			return []string{"ret"}, nil
		}
		return []string{
			fmt.Sprintf("mov rax, %s", operand(instr.Res, colors)),
			"ret",
		}, nil
	default:
		return nil, &diag.ASMError{Msg: "unhandled instruction type in emitter"}
	}
}

func emitAssign(instr *tac.Instr, colors map[string]int) ([]string, error) {
	dst := operand(instr.Res, colors)

	if instr.Op == nil {
		return []string{fmt.Sprintf("mov %s, %s", dst, operand(instr.Left, colors))}, nil
	}
	op := instr.Op.Lexeme

	if instr.Right == nil {
		switch op {
		case "~":
			return []string{
				fmt.Sprintf("mov %s, %s", dst, operand(instr.Left, colors)),
				fmt.Sprintf("not %s", dst),
			}, nil
		case "!":
			return []string{
				fmt.Sprintf("cmp %s, 0", operand(instr.Left, colors)),
				fmt.Sprintf("sete %sb", dst),
				fmt.Sprintf("movzx %s, %sb", dst, dst),
			}, nil
		default:
			return nil, &diag.ASMError{Msg: "unsupported unary operator '" + op + "'"}
		}
	}

	left := operand(instr.Left, colors)
	right := operand(instr.Right, colors)

	switch op {
	case "+":
		if sameIdent(instr.Res, instr.Left) && isLiteralOne(instr.Right) {
			return []string{fmt.Sprintf("add %s, 1", dst)}, nil
		}
		return []string{fmt.Sprintf("mov %s, %s", dst, left), fmt.Sprintf("add %s, %s", dst, right)}, nil
	case "-":
		if sameIdent(instr.Res, instr.Left) && isLiteralOne(instr.Right) {
			return []string{fmt.Sprintf("sub %s, 1", dst)}, nil
		}
		return []string{fmt.Sprintf("mov %s, %s", dst, left), fmt.Sprintf("sub %s, %s", dst, right)}, nil
	case "*":
		return []string{fmt.Sprintf("mov %s, %s", dst, left), fmt.Sprintf("imul %s, %s", dst, right)}, nil
	case "/":
		return []string{
			fmt.Sprintf("mov rax, %s", left),
			fmt.Sprintf("mov rbx, %s", right),
			"cqo",
			"idiv rbx",
			fmt.Sprintf("mov %s, rax", dst),
		}, nil
	case "%":
		return []string{
			fmt.Sprintf("mov rax, %s", left),
			fmt.Sprintf("mov rbx, %s", right),
			"cqo",
			"idiv rbx",
			fmt.Sprintf("mov %s, rdx", dst),
		}, nil
	case "<", ">", "==", "!=", "<=", ">=":
		return []string{
			fmt.Sprintf("cmp %s, %s", left, right),
			fmt.Sprintf("%s %sb", setcc[op], dst),
			fmt.Sprintf("movzx %s, %sb", dst, dst),
		}, nil
	default:
		if mnemonic, ok := natural[op]; ok {
			return []string{fmt.Sprintf("mov %s, %s", dst, left), fmt.Sprintf("%s %s, %s", mnemonic, dst, right)}, nil
		}
		return nil, &diag.ASMError{Msg: "unsupported binary operator '" + op + "'"}
	}
}
