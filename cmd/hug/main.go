package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/funvibe/hug/internal/config"
	"github.com/funvibe/hug/internal/diagnostics"
	"github.com/funvibe/hug/internal/ident"
	"github.com/funvibe/hug/internal/lexer"
	"github.com/funvibe/hug/internal/parser"
	"github.com/funvibe/hug/internal/pipeline"
	"github.com/funvibe/hug/internal/prettyprinter"
	hug "github.com/funvibe/hug/pkg/embed"
)

const usage = `Usage:
  hug [-debug] <file%[1]s>   run a script
  hug tokens <file%[1]s>     print the token stream
  hug tree <file%[1]s>       print the program tree
  hug help                 show this message
`

func printUsage() {
	fmt.Fprintf(os.Stderr, usage, config.SourceFileExt)
}

func handleHelp() bool {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "help", "-help", "--help", "-h":
		printUsage()
		return true
	}
	return false
}

// readSource reads the file argument of a subcommand.
func readSource(cmd string) (string, string) {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "Usage: %s %s <file>\n", os.Args[0], cmd)
		os.Exit(2)
	}
	path := os.Args[2]
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %s\n", err)
		os.Exit(1)
	}
	return path, string(src)
}

func handleTokens() bool {
	if os.Args[1] != "tokens" {
		return false
	}
	path, src := readSource("tokens")
	pairs, errs := lexer.Lex(src)
	for _, pair := range pairs {
		fmt.Println(pair)
	}
	if len(errs) > 0 {
		printer := diagnostics.NewPrinter(os.Stderr)
		printer.Sources[path] = src
		for _, e := range errs {
			e.File = path
			printer.Print(e)
		}
		os.Exit(1)
	}
	return true
}

func handleTree() bool {
	if os.Args[1] != "tree" {
		return false
	}
	path, src := readSource("tree")
	ctx := pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
	).Run(pipeline.NewContext(path, src, ident.NewTable()))

	printer := diagnostics.NewPrinter(os.Stderr)
	printer.Sources[path] = src
	for _, w := range ctx.Errors.Warnings() {
		printer.Print(w)
	}
	if err := ctx.Err(); err != nil {
		printer.PrintError(err)
		os.Exit(1)
	}
	fmt.Print(prettyprinter.PrintTree(ctx.Tree))
	return true
}

func runScript(path string, debugMode bool) {
	printer := diagnostics.NewPrinter(os.Stderr)

	machine, err := hug.New(path)
	if err != nil {
		if src, readErr := os.ReadFile(path); readErr == nil {
			printer.Sources[path] = string(src)
		}
		printer.PrintError(err)
		os.Exit(1)
	}
	for name, src := range machine.Sources() {
		printer.Sources[name] = src
	}

	runErr := machine.Run()
	for _, w := range machine.Warnings() {
		printer.Print(w)
	}
	if debugMode {
		machine.Machine().Dump(os.Stderr)
	}
	if runErr != nil {
		printer.PrintError(runErr)
	}
	if err := machine.Close(); err != nil {
		printer.PrintError(err)
		os.Exit(1)
	}
	if runErr != nil {
		os.Exit(1)
	}
}

func main() {
	// Catch panics and show user-friendly error
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r) // Re-panic to get stack trace
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()

	if handleHelp() || handleTokens() || handleTree() {
		return
	}

	debugMode := false
	var fileArg string
	for _, arg := range os.Args[1:] {
		if arg == "-debug" || arg == "--debug" {
			debugMode = true
			continue
		}
		if fileArg == "" && !strings.HasPrefix(arg, "-") {
			fileArg = arg
			continue
		}
		fmt.Fprintf(os.Stderr, "Unexpected argument: %s\n", arg)
		printUsage()
		os.Exit(2)
	}
	if fileArg == "" {
		printUsage()
		os.Exit(2)
	}
	if filepath.Ext(fileArg) != config.SourceFileExt {
		fmt.Fprintf(os.Stderr, "Warning: %s does not have the %s extension\n", fileArg, config.SourceFileExt)
	}
	runScript(fileArg, debugMode)
}
