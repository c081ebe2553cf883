// Command tacc compiles a single source file through the full
// front-to-back pipeline described in spec.md §5: tokenize, parse,
// build the symbol table, check semantics, generate TAC, optimize,
// allocate registers, and emit a textual asm listing.
package main

import (
	"flag"
	"fmt"
	"os"
)

func main() {
	listTokens := flag.Bool("l", false, "print tokens")
	printASTFlag := flag.Bool("a", false, "print the AST")
	printSymtabFlag := flag.Bool("t", false, "print the symbol table")
	printTACBefore := flag.Bool("o0", false, "print TAC before optimization")
	printTACAfter := flag.Bool("o1", false, "print TAC after the constant-folding pass")
	tokenOut := flag.String("w", "./output.txt", "token listing output path")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "usage: tacc [flags] input\n")
		os.Exit(1)
	}
	inputName := flag.Arg(0)
	src, err := os.ReadFile(inputName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	opts := runOptions{
		listTokens:     *listTokens,
		printAST:       *printASTFlag,
		printSymtab:    *printSymtabFlag,
		printTACBefore: *printTACBefore,
		printTACAfter:  *printTACAfter,
		tokenOut:       *tokenOut,
	}
	if err := run(inputName, string(src), opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
