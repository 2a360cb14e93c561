package main

import (
	"flag"
	"fmt"
	"os"

	"flarec/internal/compiler"
)

const version = "0.1.0"

func main() {
	debug := flag.Bool("d", false, "Enable debug output")
	showVersion := flag.Bool("v", false, "Show version")
	flag.BoolVar(debug, "debug", false, "Enable debug output")
	flag.BoolVar(showVersion, "version", false, "Show version")

	flag.Parse()

	if *showVersion {
		fmt.Printf("flarec version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: flarec [options] <file>")
		fmt.Fprintln(os.Stderr, "\nOptions:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	result := compiler.Compile(compiler.Options{
		EntryFile: args[0],
		Debug:     *debug,
	})

	if !result.Success {
		os.Exit(1)
	}
}
