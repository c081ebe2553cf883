// Package regalloc implements the two-stage liveness analysis and the
// greedy interference-graph coloring described in spec.md §4.7.
package regalloc

import (
	"github.com/gmofishsauce/tacc/internal/cfg"
	"github.com/gmofishsauce/tacc/internal/tac"
	"github.com/gmofishsauce/tacc/internal/token"
)

// BlockLiveness holds one block's fixpoint in/out name sets.
type BlockLiveness struct {
	In, Out map[string]bool
}

// InstrLiveness holds one instruction's in/out name sets, derived
// from its block's exit set by a single backward walk.
type InstrLiveness struct {
	In, Out map[string]bool
}

// FuncLiveness is the liveness result for one function: per-block
// fixpoint sets, and per-instruction sets in block order.
type FuncLiveness struct {
	Blocks []BlockLiveness
	Instrs [][]InstrLiveness
}

// Liveness runs the block-level fixpoint, then the per-instruction
// backward walk, over fn's current CFG.
func Liveness(fn *tac.FunctionBlock) *FuncLiveness {
	g := cfg.Build(fn)
	n := len(g.Nodes)

	def := make([]map[string]bool, n)
	use := make([]map[string]bool, n)
	for i, node := range g.Nodes {
		d := map[string]bool{}
		u := map[string]bool{}
		for _, instr := range node.Block.Instrs {
			for name := range usesOf(instr) {
				if !d[name] {
					u[name] = true
				}
			}
			for name := range defsOf(instr) {
				d[name] = true
			}
		}
		def[i] = d
		use[i] = u
	}

	in := make([]map[string]bool, n)
	out := make([]map[string]bool, n)
	for i := range in {
		in[i] = map[string]bool{}
		out[i] = map[string]bool{}
	}

	changed := true
	for changed {
		changed = false
		for _, i := range g.Reversed() {
			newOut := map[string]bool{}
			for _, s := range g.Nodes[i].Succs {
				for name := range in[s] {
					newOut[name] = true
				}
			}
			newIn := map[string]bool{}
			for name := range use[i] {
				newIn[name] = true
			}
			for name := range newOut {
				if !def[i][name] {
					newIn[name] = true
				}
			}
			if !setsEqual(newOut, out[i]) || !setsEqual(newIn, in[i]) {
				changed = true
			}
			out[i] = newOut
			in[i] = newIn
		}
	}

	fl := &FuncLiveness{}
	for i, node := range g.Nodes {
		fl.Blocks = append(fl.Blocks, BlockLiveness{In: in[i], Out: out[i]})

		instrs := node.Block.Instrs
		perInstr := make([]InstrLiveness, len(instrs))
		liveOut := copySet(out[i])
		for j := len(instrs) - 1; j >= 0; j-- {
			instr := instrs[j]
			instrOut := copySet(liveOut)
			instrIn := map[string]bool{}
			for name := range usesOf(instr) {
				instrIn[name] = true
			}
			defs := defsOf(instr)
			for name := range instrOut {
				if !defs[name] {
					instrIn[name] = true
				}
			}
			perInstr[j] = InstrLiveness{In: instrIn, Out: instrOut}
			liveOut = instrIn
		}
		fl.Instrs = append(fl.Instrs, perInstr)
	}
	return fl
}

func usesOf(instr *tac.Instr) map[string]bool {
	out := map[string]bool{}
	add := func(t *token.Token) {
		if t != nil && t.Kind == token.Ident {
			out[t.Lexeme] = true
		}
	}
	switch instr.Type {
	case tac.DECL, tac.ASSIGN:
		add(instr.Left)
		add(instr.Right)
	case tac.PARAM:
		add(instr.Left)
	case tac.IF, tac.WHILE, tac.FOR, tac.RETURN:
		add(instr.Res)
	}
	return out
}

func defsOf(instr *tac.Instr) map[string]bool {
	out := map[string]bool{}
	switch instr.Type {
	case tac.DECL, tac.ASSIGN, tac.CALL:
		if instr.Res != nil && instr.Res.Kind == token.Ident {
			out[instr.Res.Lexeme] = true
		}
	}
	return out
}

func setsEqual(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

func copySet(s map[string]bool) map[string]bool {
	out := make(map[string]bool, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
