package optimize

import (
	"github.com/gmofishsauce/tacc/internal/cfg"
	"github.com/gmofishsauce/tacc/internal/tac"
	"github.com/gmofishsauce/tacc/internal/token"
)

// facts maps an identifier name to the token it is currently known to
// equal: a NUMBER literal, or another identifier it is a plain copy
// of.
type facts map[string]token.Token

// Propagate runs forward copy/constant propagation to a fixpoint over
// each function's CFG, then rewrites use sites with the facts known
// at that point.
func Propagate(t *tac.TAC) error {
	for _, fn := range t.Functions {
		propagateFunc(fn)
	}
	return nil
}

func propagateFunc(fn *tac.FunctionBlock) {
	if len(fn.Blocks) == 0 {
		return
	}
	g := cfg.Build(fn)
	n := len(g.Nodes)
	entryFacts := make([]facts, n)
	exitFacts := make([]facts, n)
	inWorklist := make([]bool, n)
	worklist := []int{0}
	inWorklist[0] = true

	for len(worklist) > 0 {
		i := worklist[0]
		worklist = worklist[1:]
		inWorklist[i] = false

		entry := meet(g, i, exitFacts)
		entryFacts[i] = entry
		exit := transfer(g.Nodes[i].Block, entry)
		if !factsEqual(exit, exitFacts[i]) {
			exitFacts[i] = exit
			for _, s := range g.Nodes[i].Succs {
				if !inWorklist[s] {
					inWorklist[s] = true
					worklist = append(worklist, s)
				}
			}
		}
	}

	for i, node := range g.Nodes {
		live := copyFacts(entryFacts[i])
		for _, instr := range node.Block.Instrs {
			rewriteUses(instr, live)
			applyTransfer(instr, live)
		}
	}
}

func meet(g *cfg.CFG, i int, exitFacts []facts) facts {
	var result facts
	first := true
	for _, p := range g.Nodes[i].Preds {
		pf := exitFacts[p]
		if pf == nil {
			continue
		}
		if first {
			result = copyFacts(pf)
			first = false
			continue
		}
		result = intersect(result, pf)
	}
	if result == nil {
		result = facts{}
	}
	return result
}

func intersect(a, b facts) facts {
	out := facts{}
	for k, v := range a {
		if bv, ok := b[k]; ok && bv.Equal(v) {
			out[k] = v
		}
	}
	return out
}

func copyFacts(f facts) facts {
	out := make(facts, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

func factsEqual(a, b facts) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		bv, ok := b[k]
		if !ok || !bv.Equal(v) {
			return false
		}
	}
	return true
}

// transfer computes the facts map at the end of a block, given its
// entry facts, without mutating the block.
func transfer(b *tac.BasicBlock, entry facts) facts {
	live := copyFacts(entry)
	for _, instr := range b.Instrs {
		applyTransfer(instr, live)
	}
	return live
}

func applyTransfer(instr *tac.Instr, live facts) {
	switch instr.Type {
	case tac.DECL, tac.ASSIGN:
		if instr.Res == nil {
			return
		}
		name := instr.Res.Lexeme
		kill(live, name)
		if instr.Op == nil && instr.Right == nil && instr.Left != nil {
			if instr.Left.Kind == token.Number {
				live[name] = *instr.Left
			} else if instr.Left.Kind == token.Ident && instr.Left.Lexeme != name {
				live[name] = *instr.Left
			}
		}
	case tac.CALL:
		if instr.Res != nil {
			kill(live, instr.Res.Lexeme)
		}
	}
}

// kill drops the fact about name and every copy fact whose value is
// name, since a redefinition of name invalidates both.
func kill(live facts, name string) {
	delete(live, name)
	for k, v := range live {
		if v.Kind == token.Ident && v.Lexeme == name {
			delete(live, k)
		}
	}
}

// rewriteUses substitutes identifier operands with their known value,
// cloning tokens so the rewrite never aliases a shared token.
func rewriteUses(instr *tac.Instr, live facts) {
	switch instr.Type {
	case tac.DECL, tac.ASSIGN:
		substitute(&instr.Left, live)
		substitute(&instr.Right, live)
	case tac.PARAM:
		substitute(&instr.Left, live)
	case tac.IF, tac.WHILE, tac.FOR:
		substitute(&instr.Res, live)
	case tac.RETURN:
		substitute(&instr.Res, live)
	}
}

func substitute(slot **token.Token, live facts) {
	if *slot == nil || (*slot).Kind != token.Ident {
		return
	}
	v, ok := live[(*slot).Lexeme]
	if !ok {
		return
	}
	clone := v
	*slot = &clone
}
