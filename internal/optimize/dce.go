package optimize

import (
	"strconv"

	"github.com/gmofishsauce/tacc/internal/cfg"
	"github.com/gmofishsauce/tacc/internal/tac"
	"github.com/gmofishsauce/tacc/internal/token"
)

// DCE removes unreachable blocks, trampoline labels, and unused
// definitions from every function, per spec.md §4.6.
func DCE(t *tac.TAC) error {
	for _, fn := range t.Functions {
		dceFunc(fn)
	}
	return nil
}

func dceFunc(fn *tac.FunctionBlock) {
	if len(fn.Blocks) == 0 {
		return
	}
	g := cfg.Build(fn)
	reachable := bfsReachable(g)

	used := map[string]bool{}
	for i, node := range g.Nodes {
		if !reachable[i] {
			continue
		}
		for _, instr := range node.Block.Instrs {
			markUses(instr, used)
			if instr.Type == tac.IF || instr.Type == tac.WHILE || instr.Type == tac.FOR {
				if instr.Res != nil && instr.Res.Kind == token.Number {
					rewriteToGoto(instr)
				}
			}
		}
	}

	redirect := map[string]string{}
	for _, node := range g.Nodes {
		if len(node.Block.Instrs) == 2 &&
			node.Block.Instrs[0].IsLabel() &&
			node.Block.Instrs[1].Type == tac.GOTO {
			label := node.Block.Instrs[0].LabelName()
			targets := node.Block.Instrs[1].Targets()
			if len(targets) == 1 && targets[0] != label {
				redirect[label] = targets[0]
			}
		}
	}
	resolve := func(l string) string {
		seen := map[string]bool{}
		for {
			next, ok := redirect[l]
			if !ok || seen[l] {
				return l
			}
			seen[l] = true
			l = next
		}
	}
	for _, node := range g.Nodes {
		for _, instr := range node.Block.Instrs {
			switch instr.Type {
			case tac.GOTO:
				if instr.Res != nil {
					instr.Res.Lexeme = resolve(instr.Res.Lexeme)
				}
			case tac.IF, tac.WHILE, tac.FOR:
				if instr.Left != nil {
					instr.Left.Lexeme = resolve(instr.Left.Lexeme)
				}
				if instr.Right != nil {
					instr.Right.Lexeme = resolve(instr.Right.Lexeme)
				}
			}
		}
	}

	for _, node := range g.Nodes {
		var kept []*tac.Instr
		for _, instr := range node.Block.Instrs {
			if (instr.Type == tac.DECL || instr.Type == tac.ASSIGN) && instr.Res != nil && !used[instr.Res.Lexeme] {
				continue
			}
			kept = append(kept, instr)
			if instr.Type == tac.GOTO {
				break
			}
		}
		node.Block.Instrs = kept
	}

	g2 := cfg.Build(fn)
	reachable2 := bfsReachable(g2)
	var keptBlocks []*tac.BasicBlock
	for i, node := range g2.Nodes {
		if i == 0 || reachable2[i] {
			keptBlocks = append(keptBlocks, node.Block)
		}
	}
	fn.Blocks = keptBlocks
}

func bfsReachable(g *cfg.CFG) map[int]bool {
	visited := map[int]bool{0: true}
	queue := []int{0}
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		for _, s := range g.Nodes[i].Succs {
			if !visited[s] {
				visited[s] = true
				queue = append(queue, s)
			}
		}
	}
	return visited
}

func markUses(instr *tac.Instr, used map[string]bool) {
	switch instr.Type {
	case tac.DECL, tac.ASSIGN:
		markIdent(instr.Left, used)
		markIdent(instr.Right, used)
	case tac.PARAM, tac.CALL:
		markIdent(instr.Left, used)
	case tac.IF, tac.WHILE, tac.FOR, tac.RETURN:
		markIdent(instr.Res, used)
	}
}

func markIdent(t *token.Token, used map[string]bool) {
	if t != nil && t.Kind == token.Ident {
		used[t.Lexeme] = true
	}
}

// rewriteToGoto collapses an IF/WHILE/FOR with a literal numeric
// condition into the unconditional GOTO it always takes.
func rewriteToGoto(instr *tac.Instr) {
	val, _ := strconv.ParseInt(instr.Res.Lexeme, 10, 64)
	target := instr.Right
	if val != 0 {
		target = instr.Left
	}
	instr.Type = tac.GOTO
	instr.Res = target
	instr.Left = nil
	instr.Right = nil
	instr.Op = &token.Token{Kind: token.GotoMarker, Lexeme: "goto"}
}
