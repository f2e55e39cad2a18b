package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/Urethramancer/k0emu/assembler"
	"github.com/Urethramancer/k0emu/disassembler"
	"github.com/grimdork/climate/arg"
)

func main() {
	opt := arg.New("asm78k0")
	opt.SetDefaultHelp(true)
	opt.SetOption(arg.GroupDefault, "o", "origin", "Address the code will be loaded at.", "0", false, arg.VarString, nil)
	opt.SetPositional("INPUT", "Assembly source.", "", true, arg.VarString)
	opt.SetPositional("OUTPUT", "Binary file to write. Without it the code is printed as hex.", "", false, arg.VarString)

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
	if inputFile == "" {
		opt.PrintHelp()
		os.Exit(2)
	}
	origin, err := disassembler.ParseNumber(opt.GetString("origin"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		os.Exit(2)
	}

	data, err := os.ReadFile(inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input file: %v\n", err)
		os.Exit(1)
	}

	asm := assembler.New()
	code, err := asm.Assemble(string(data), origin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Assembly error: %v\n", err)
		os.Exit(1)
	}

	outputFile := opt.GetPosString("OUTPUT")
	if outputFile == "" {
		for i := 0; i < len(code); i += 16 {
			end := min(i+16, len(code))
			fmt.Printf("%04X  % X\n", int(origin)+i, code[i:end])
		}
		return
	}

	if err := os.WriteFile(outputFile, code, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%d bytes written to %s\n", len(code), outputFile)
}
