package printer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gmofishsauce/tacc/internal/symtab"
)

// Symtab writes a depth-first preorder list of scopes, each rendered
// as "{id, name, symbol map}". Scope creation order already matches
// preorder, since every scope is opened and fully populated before
// its enclosing traversal moves to the next sibling.
func Symtab(p *Writer, t *symtab.Table) {
	for _, sc := range t.Scopes() {
		names := make([]string, 0, len(sc.Symbols))
		for name := range sc.Symbols {
			names = append(names, name)
		}
		sort.Strings(names)

		var syms []string
		for _, name := range names {
			sym := sc.Symbols[name]
			syms = append(syms, fmt.Sprintf("%s:%s", sym.Name, sym.Kind))
		}
		p.line("{%d, %s, [%s]}", sc.ID, sc.Name, strings.Join(syms, ", "))
	}
}
