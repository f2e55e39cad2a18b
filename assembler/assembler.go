// Package assembler turns 78K0 assembly source into machine code. Encodings
// come from the processor's own opcode tables, so anything the disassembler
// prints assembles back to the same bytes.
package assembler

import (
	"fmt"
	"strings"

	"github.com/Urethramancer/k0emu/cpu"
)

// maxPasses bounds the sizing loop. Sizes only change when a forward
// reference flips between short and SFR addressing.
const maxPasses = 16

// Assembler holds the state for the assembly process.
type Assembler struct {
	symbols map[string]int
}

// New creates a new Assembler instance.
func New() *Assembler {
	return &Assembler{
		symbols: make(map[string]int),
	}
}

// Symbol returns the value of a label or equ after Assemble.
func (asm *Assembler) Symbol(name string) (int, bool) {
	v, ok := asm.symbols[strings.ToLower(name)]
	return v, ok
}

// Assemble takes 78K0 assembly code and returns the machine code, starting
// at origin. Gaps left by org are filled with FFH, as in erased flash.
func (asm *Assembler) Assemble(src string, origin uint16) ([]byte, error) {
	lines := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")

	nodes, err := asm.parseLines(lines)
	if err != nil {
		return nil, fmt.Errorf("parsing error: %w", err)
	}

	// Pass: resolve label addresses and node sizes until stable.
	stable := false
	for pass := 0; pass < maxPasses && !stable; pass++ {
		stable = true
		pc := int(origin)
		for _, n := range nodes {
			changed, next, err := asm.size(n, pc)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", n.Line, err)
			}
			if changed {
				stable = false
			}
			pc = next
		}
	}
	if !stable {
		return nil, fmt.Errorf("label addresses did not settle after %d passes", maxPasses)
	}

	// Generate machine code.
	var machineCode []byte
	pc := int(origin)
	for _, n := range nodes {
		var code []byte
		var err error

		switch n.Type {
		case NodeLabel:
			// Labels do not emit code.
			continue
		case NodeDirective:
			if n.Mnemonic == "org" {
				addr, _ := asm.parseConstant(n.Args)
				for ; pc < addr; pc++ {
					machineCode = append(machineCode, 0xFF)
				}
				continue
			}
			code, err = asm.generateDirectiveCode(n)
		case NodeInstruction:
			code, err = asm.generateInstructionCode(n, uint16(pc))
		}

		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		machineCode = append(machineCode, code...)
		pc += len(code)
	}

	if int(origin)+len(machineCode) > cpu.MemorySize {
		return nil, fmt.Errorf("%d bytes at %04X do not fit in memory", len(machineCode), origin)
	}
	return machineCode, nil
}

// size places one node at pc during a sizing pass. It reports whether
// anything moved and where the next node goes.
func (asm *Assembler) size(n *Node, pc int) (bool, int, error) {
	switch n.Type {
	case NodeLabel:
		if addr, ok := asm.symbols[n.Label]; !ok || addr != pc {
			asm.symbols[n.Label] = pc
			return true, pc, nil
		}
		return false, pc, nil

	case NodeDirective:
		switch n.Mnemonic {
		case "org":
			addr, err := asm.parseConstant(n.Args)
			if err != nil {
				return false, pc, err
			}
			if addr < pc {
				return false, pc, fmt.Errorf("org %04X is behind the current address %04X", addr, pc)
			}
			return false, addr, nil
		case "equ":
			v, err := asm.parseConstant(n.Args)
			if err != nil {
				// Forward references settle in a later pass.
				return false, pc, nil
			}
			if old, ok := asm.symbols[n.Label]; !ok || old != v {
				asm.symbols[n.Label] = v
				return true, pc, nil
			}
			return false, pc, nil
		}
		size, err := asm.getDirectiveSize(n)
		if err != nil {
			return false, pc, err
		}
		changed := size != n.Size
		n.Size = size
		return changed, pc + size, nil
	}

	f, _, err := asm.choose(n, false)
	if err != nil {
		return false, pc, err
	}
	changed := f != n.form
	n.form, n.Size = f, f.size
	return changed, pc + f.size, nil
}

// generateInstructionCode resolves the operands now that every label is
// known and emits the encoding.
func (asm *Assembler) generateInstructionCode(n *Node, pc uint16) ([]byte, error) {
	f, args, err := asm.choose(n, true)
	if err != nil {
		return nil, err
	}
	if f.size != n.Size {
		return nil, fmt.Errorf("%s changed size after layout", n.Mnemonic)
	}
	return f.encode(args, pc)
}
