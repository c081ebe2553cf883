package printer

import "github.com/gmofishsauce/tacc/internal/token"

// Tokens writes one line per token: "line:col KIND lexeme".
func Tokens(p *Writer, toks []token.Token) {
	for _, t := range toks {
		p.line("%d:%d %s %q", t.Line, t.Column, t.Kind, t.Lexeme)
	}
}
