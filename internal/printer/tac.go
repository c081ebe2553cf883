package printer

import "github.com/gmofishsauce/tacc/internal/tac"

// TAC writes the numbered "NNNN: <stmt>" listing described in
// spec.md §6. The counter runs continuously across the whole
// program; function boundaries get an unnumbered header line.
func TAC(p *Writer, t *tac.TAC) {
	n := 0
	for _, instr := range t.Globals {
		p.raw(numbered(n, renderInstr(instr)))
		n++
	}
	for _, fn := range t.Functions {
		p.raw("FUNC " + fn.Name.Lexeme)
		for _, b := range fn.Blocks {
			for _, instr := range b.Instrs {
				p.raw(numbered(n, renderInstr(instr)))
				n++
			}
		}
	}
}

func numbered(n int, stmt string) string {
	return pad4(n) + ": " + stmt
}

func pad4(n int) string {
	s := itoa(n)
	for len(s) < 4 {
		s = "0" + s
	}
	return s
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

func renderInstr(instr *tac.Instr) string {
	switch instr.Type {
	case tac.DECL:
		return instr.Res.Lexeme + " = " + instr.Left.Lexeme
	case tac.ASSIGN:
		return renderAssign(instr)
	case tac.PARAM:
		return "param " + instr.Left.Lexeme
	case tac.CALL:
		return instr.Res.Lexeme + " = call " + instr.Left.Lexeme
	case tac.LABEL:
		return "label " + instr.Res.Lexeme + ":"
	case tac.GOTO:
		return "goto " + instr.Res.Lexeme
	case tac.IF, tac.WHILE, tac.FOR:
		return "if " + instr.Res.Lexeme + " goto " + instr.Left.Lexeme + " else " + instr.Right.Lexeme
	case tac.RETURN:
		if instr.Res == nil {
			return "return"
		}
		return "return " + instr.Res.Lexeme
	default:
		return "?"
	}
}

func renderAssign(instr *tac.Instr) string {
	dst := instr.Res.Lexeme
	if instr.Op == nil {
		return dst + " = " + instr.Left.Lexeme
	}
	if instr.Right == nil {
		return dst + " = " + instr.Op.Lexeme + " " + instr.Left.Lexeme
	}
	return dst + " = " + instr.Left.Lexeme + " " + instr.Op.Lexeme + " " + instr.Right.Lexeme
}
