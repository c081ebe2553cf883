package optimize

import (
	"github.com/gmofishsauce/tacc/internal/tac"
	"github.com/gmofishsauce/tacc/internal/tacdiff"
)

// maxRounds bounds the fold/propagate/DCE fixpoint loop; each round
// only ever shrinks or simplifies the TAC, so a small bound is a
// safety net against a mistaken non-terminating rewrite, not a
// realistic limit for the programs this compiler accepts.
const maxRounds = 16

// Run executes fold, then copy/constant propagation, then dead code
// elimination, optionally repeating the sequence until the TAC no
// longer changes (spec.md §5's "optionally to fixpoint"). Change
// detection between rounds is a tacdiff.Equal comparison of the TAC's
// normalized form rather than object identity, per spec.md §9's
// compare_tac_structures contract.
func Run(t *tac.TAC, toFixpoint bool) error {
	for round := 0; round < maxRounds; round++ {
		before := tacdiff.Take(t)
		if err := Fold(t); err != nil {
			return err
		}
		if err := Propagate(t); err != nil {
			return err
		}
		if err := DCE(t); err != nil {
			return err
		}
		if !toFixpoint || tacdiff.Equal(before, tacdiff.Take(t)) {
			return nil
		}
	}
	return nil
}
