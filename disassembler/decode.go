package disassembler

import (
	"strconv"
	"strings"

	"github.com/Urethramancer/k0emu/cpu"
)

// Instruction represents a single decoded instruction at a specific address.
type Instruction struct {
	Address  uint16
	Bytes    []byte
	Mnemonic string
	Operands string
	// Text is the mnemonic and operands as one line.
	Text string
	// Target is the code address a branch or call goes to, or -1.
	Target int
	IsCode bool // Flag to mark as reachable code
}

// Size is the encoded length.
func (inst *Instruction) Size() int {
	return len(inst.Bytes)
}

// Decode decodes the instruction at the start of code, which was loaded at
// pc. Unknown or truncated opcodes decode as a one byte db.
func Decode(code []byte, pc uint16) Instruction {
	inst := Instruction{Address: pc, Target: -1}
	if len(code) == 0 {
		return inst
	}

	var b1 byte
	if len(code) > 1 {
		b1 = code[1]
	}
	op, ok := cpu.Lookup(code[0], b1)
	if !ok || op.Size > len(code) {
		inst.Bytes = code[:1]
		inst.Mnemonic = "db"
		inst.Operands = hexNum(uint16(code[0]), 2)
		inst.Text = inst.Mnemonic + " " + inst.Operands
		return inst
	}

	inst.Bytes = code[:op.Size]
	opcode, args := code[0], code[1:op.Size]
	if op.Prefixed {
		opcode, args = code[1], code[2:op.Size]
	}

	text, addr := expand(op.Mnemonic, opcode, args, pc+uint16(op.Size))
	inst.Text = text
	inst.Mnemonic, inst.Operands, _ = strings.Cut(text, " ")
	if addr >= 0 && isFlow(inst.Mnemonic) && inst.Operands != "ax" {
		inst.Target = addr
	}
	return inst
}

// expand fills in a cpu.Opcode template. It also returns the last absolute,
// relative or CALLF address it rendered, or -1.
func expand(tmpl string, op byte, args []byte, next uint16) (string, int) {
	var sb strings.Builder
	addr := -1
	i := 0
	for {
		open := strings.IndexByte(tmpl, '{')
		if open < 0 {
			sb.WriteString(tmpl)
			break
		}
		sb.WriteString(tmpl[:open])
		end := open + strings.IndexByte(tmpl[open:], '}')
		field := tmpl[open+1 : end]
		tmpl = tmpl[end+1:]

		switch field {
		case "r":
			sb.WriteString(cpu.RegNames[op&7])
		case "rp":
			sb.WriteString(cpu.PairNames[(op>>1)&3])
		case "bit":
			sb.WriteString(strconv.Itoa(int(op>>4) & 7))
		case "byte":
			sb.WriteString(hexNum(uint16(args[i]), 2))
			i++
		case "word":
			sb.WriteString(hexNum(cpu.Absolute(args[i], args[i+1]), 4))
			i += 2
		case "addr16":
			a := cpu.Absolute(args[i], args[i+1])
			sb.WriteString(hexNum(a, 4))
			addr = int(a)
			i += 2
		case "saddr":
			sb.WriteString(memName(cpu.ShortAddr(args[i])))
			i++
		case "sfr":
			sb.WriteString(memName(cpu.SFRAddr(args[i])))
			i++
		case "rel":
			a := next + uint16(int8(args[i]))
			sb.WriteString(hexNum(a, 4))
			addr = int(a)
			i++
		case "addr11":
			a := cpu.CallFTarget(op, args[i])
			sb.WriteString(hexNum(a, 4))
			addr = int(a)
			i++
		case "addr5":
			sb.WriteString(hexNum(cpu.CallTVector(op), 4))
		}
	}
	return sb.String(), addr
}

// isFlow reports whether the mnemonic transfers control to an address operand.
func isFlow(mn string) bool {
	return isBranch(mn) || isCall(mn)
}

// isBranch checks if an instruction is a form of branch.
func isBranch(mn string) bool {
	switch mn {
	case "br", "bc", "bnc", "bz", "bnz", "bt", "bf", "btclr", "dbnz":
		return true
	}
	return false
}

// isCall checks if an instruction enters a subroutine.
func isCall(mn string) bool {
	return mn == "call" || mn == "callf" || mn == "callt"
}

// isTerminal checks if an instruction unconditionally stops linear execution.
func isTerminal(mn string) bool {
	return mn == "br" || mn == "ret" || mn == "reti" || mn == "retb"
}
