package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/evanlang2/evanlang2c/internal/compiler"
	"github.com/evanlang2/evanlang2c/internal/config"
	"github.com/evanlang2/evanlang2c/internal/repl"
)

// Version info, set by ldflags during build.
var (
	Version = "dev"
	Commit  = "unknown"
)

var (
	red  = color.New(color.FgRed).SprintFunc()
	cyan = color.New(color.FgCyan).SprintFunc()
	bold = color.New(color.Bold).SprintFunc()
)

func main() {
	if len(os.Args) < 2 {
		printHelp()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "compile":
		runCompile(os.Args[2:])
	case "repl":
		runRepl(os.Args[2:])
	case "version", "--version":
		printVersion()
	case "--help", "-h", "help":
		printHelp()
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", red("error"), os.Args[1])
		printHelp()
		os.Exit(1)
	}
}

func runCompile(args []string) {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	out := fs.String("o", "", "output C file (default: stdout)")
	cfgPath := fs.String("c", "evanlang2c.yaml", "path to config manifest")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: evanlang2c compile [-o file] [-c config.yaml] <entry>.el2\n")
		os.Exit(1)
	}
	entry := fs.Arg(0)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: loading %s: %v\n", red("error"), *cfgPath, err)
		os.Exit(1)
	}

	driver := compiler.New(cfg)
	fmt.Fprintf(os.Stderr, "%s compiling %s\n", cyan("->"), entry)
	src, err := driver.CompileFile(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		os.Exit(1)
	}

	if *out == "" {
		fmt.Print(src)
		return
	}
	if err := os.WriteFile(*out, []byte(src), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "%s: writing %s: %v\n", red("error"), *out, err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "%s wrote %s\n", cyan("->"), *out)
}

func runRepl(args []string) {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	cfgPath := fs.String("c", "evanlang2c.yaml", "path to config manifest")
	fs.Parse(args)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: loading %s: %v\n", red("error"), *cfgPath, err)
		os.Exit(1)
	}
	repl.New(cfg).Start(os.Stdout)
}

func printVersion() {
	fmt.Printf("evanlang2c %s (%s)\n", bold(Version), Commit)
}

func printHelp() {
	fmt.Println(bold("evanlang2c - a small ML-family language compiling to C"))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  evanlang2c <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Printf("  %s [-o file] [-c config.yaml] <entry>.el2   Compile a program to C\n", cyan("compile"))
	fmt.Printf("  %s [-c config.yaml]                         Start the interactive repl\n", cyan("repl"))
	fmt.Printf("  %s                                          Print version information\n", cyan("version"))
}
