// Package symtab implements the nested-scope symbol table. Scopes are
// arena-allocated records addressed by integer id; parent and children
// are ids, not owning pointers, so the tree has no ownership cycles
// and serializes (for the "-t" dump) by a trivial depth-first walk.
package symtab

import (
	"github.com/gmofishsauce/tacc/internal/diag"
	"github.com/gmofishsauce/tacc/internal/token"
)

// Kind is the role a symbol plays.
type Kind int

const (
	Func Kind = iota
	Param
	Global
	Local
)

func (k Kind) String() string {
	switch k {
	case Func:
		return "func"
	case Param:
		return "param"
	case Global:
		return "global"
	default:
		return "local"
	}
}

// Symbol is one entry in a scope's identifier map.
type Symbol struct {
	Name string
	Kind Kind
	Type string // always "int" in this dialect, kept as a string per spec
	Tok  token.Token
}

// Scope is one node in the scope tree.
type Scope struct {
	ID       int
	Name     string
	Parent   int // -1 for the root
	Children []int
	Symbols  map[string]*Symbol
}

// Table is the whole scope tree, addressed by id.
type Table struct {
	scopes []*Scope
}

// New creates a table with a single root scope named "global".
func New() *Table {
	t := &Table{}
	t.scopes = append(t.scopes, &Scope{ID: 0, Name: "global", Parent: -1, Symbols: map[string]*Symbol{}})
	return t
}

// Root returns the id of the global scope.
func (t *Table) Root() int { return 0 }

// Scope returns the scope with the given id.
func (t *Table) Scope(id int) *Scope { return t.scopes[id] }

// OpenScope creates a new child scope of parent and returns its id.
// name is a diagnostic label such as a function's identifier,
// "block", or "for_stmt".
func (t *Table) OpenScope(parent int, name string) int {
	id := len(t.scopes)
	s := &Scope{ID: id, Name: name, Parent: parent, Symbols: map[string]*Symbol{}}
	t.scopes = append(t.scopes, s)
	t.scopes[parent].Children = append(t.scopes[parent].Children, id)
	return id
}

// Declare adds sym to scope id. It fails if the name is already
// declared in that exact scope, unless sym is a Func redeclaration
// with an identical return type — in which case only the location is
// updated and the call succeeds.
func (t *Table) Declare(id int, sym *Symbol) error {
	scope := t.scopes[id]
	if existing, ok := scope.Symbols[sym.Name]; ok {
		if existing.Kind == Func && sym.Kind == Func && existing.Type == sym.Type {
			existing.Tok = sym.Tok
			return nil
		}
		return &diag.SymbolTableError{
			Msg: "redeclaration of '" + sym.Name + "' in the same scope",
			Tok: sym.Tok,
		}
	}
	scope.Symbols[sym.Name] = sym
	return nil
}

// Lookup walks up the scope chain from id looking for name.
func (t *Table) Lookup(id int, name string) (*Symbol, bool) {
	for id != -1 {
		scope := t.scopes[id]
		if sym, ok := scope.Symbols[name]; ok {
			return sym, true
		}
		id = scope.Parent
	}
	return nil, false
}

// Scopes returns every scope in creation (id) order, the order a
// depth-first-in-creation-order dump (spec §6) requires.
func (t *Table) Scopes() []*Scope {
	return t.scopes
}
