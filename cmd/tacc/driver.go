package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/gmofishsauce/tacc/internal/asmgen"
	"github.com/gmofishsauce/tacc/internal/lexer"
	"github.com/gmofishsauce/tacc/internal/optimize"
	"github.com/gmofishsauce/tacc/internal/parser"
	"github.com/gmofishsauce/tacc/internal/printer"
	"github.com/gmofishsauce/tacc/internal/sema"
	"github.com/gmofishsauce/tacc/internal/tac"
	"github.com/gmofishsauce/tacc/internal/token"
)

type runOptions struct {
	listTokens     bool
	printAST       bool
	printSymtab    bool
	printTACBefore bool
	printTACAfter  bool
	tokenOut       string
}

// run drives the fixed pipeline order: tokenize, parse, symbol table
// and semantic check, TAC gen, optimize, register allocation, emit.
// Each phase boundary wraps its error with the phase name so a
// failure's origin is clear from the message alone.
func run(name, src string, opts runOptions) error {
	toks, lexErr := lexer.Tokenize(src)
	if lexErr != nil {
		return errors.Wrap(lexErr, "tokenize")
	}
	if opts.listTokens {
		w := printer.New(os.Stdout)
		printer.Tokens(w, toks)
		w.Flush()
		if err := writeTokenListing(toks, opts.tokenOut); err != nil {
			return errors.Wrap(err, "write token listing")
		}
	}

	prog, err := parser.Parse(toks)
	if err != nil {
		return errors.Wrap(err, "parse")
	}
	if opts.printAST {
		w := printer.New(os.Stdout)
		printer.AST(w, prog)
		w.Flush()
	}

	analyzer := sema.New(prog)
	syms, err := analyzer.Analyze()
	if err != nil {
		return errors.Wrap(err, "semantic check")
	}
	if opts.printSymtab {
		w := printer.New(os.Stdout)
		printer.Symtab(w, syms)
		w.Flush()
	}

	t, err := tac.Generate(prog, syms, analyzer.FuncScopes())
	if err != nil {
		return errors.Wrap(err, "TAC generation")
	}
	if opts.printTACBefore {
		w := printer.New(os.Stdout)
		printer.TAC(w, t)
		w.Flush()
	}

	if err := optimize.Fold(t); err != nil {
		return errors.Wrap(err, "constant folding")
	}
	if opts.printTACAfter {
		w := printer.New(os.Stdout)
		printer.TAC(w, t)
		w.Flush()
	}
	if err := optimize.Run(t, true); err != nil {
		return errors.Wrap(err, "optimize")
	}

	asmText, err := asmgen.Emit(t)
	if err != nil {
		return errors.Wrap(err, "asm emission")
	}
	fmt.Print(asmText)
	return nil
}

func writeTokenListing(toks []token.Token, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := printer.New(f)
	printer.Tokens(w, toks)
	w.Flush()
	return nil
}
