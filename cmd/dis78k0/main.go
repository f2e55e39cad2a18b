package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/Urethramancer/k0emu/disassembler"
	"github.com/grimdork/climate/arg"
)

func main() {
	opt := arg.New("dis78k0")
	opt.SetDefaultHelp(true)
	opt.SetOption(arg.GroupDefault, "o", "origin", "Address the input was loaded at.", "0", false, arg.VarString, nil)
	opt.SetPositional("INPUT", "Binary file to disassemble.", "", true, arg.VarString)
	opt.SetPositional("OUTPUT", "File to write the listing to. Defaults to standard output.", "", false, arg.VarString)

	err := opt.Parse(os.Args[1:])
	if err != nil {
		if errors.Is(err, arg.ErrNoArgs) {
			opt.PrintHelp()
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		os.Exit(2)
	}

	inputFile := opt.GetPosString("INPUT")
	outputFile := opt.GetPosString("OUTPUT")
	if inputFile == "" {
		opt.PrintHelp()
		os.Exit(2)
	}

	origin, err := disassembler.ParseNumber(opt.GetString("origin"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		os.Exit(2)
	}

	code, err := os.ReadFile(inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input file: %v\n", err)
		os.Exit(1)
	}

	text, err := disassembler.Disassemble(code, origin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Disassembly error: %v\n", err)
		os.Exit(1)
	}

	if outputFile == "" {
		fmt.Print(text)
		return
	}

	if err := os.WriteFile(outputFile, []byte(text), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Disassembly written to %s\n", outputFile)
}
