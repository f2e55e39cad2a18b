package disassembler

import (
	"fmt"
	"strings"

	"github.com/Urethramancer/k0emu/cpu"
)

// LabelType defines the context of a label.
type LabelType int

const (
	// JumpTarget is for a branch (BR, BZ, BT, DBNZ etc.).
	JumpTarget LabelType = iota
	// SubroutineEntry is for a CALL, CALLF or CALLT target.
	SubroutineEntry
)

// Disassemble renders an image loaded at origin as assembly text. Only code
// reachable from the entry points is shown as instructions; everything else
// becomes data. An image loaded at 0 is entered through its reset and BRK
// vectors, anything else at origin.
func Disassemble(code []byte, origin uint16) (string, error) {
	if len(code) == 0 {
		return "", nil
	}
	if int(origin)+len(code) > cpu.MemorySize {
		return "", fmt.Errorf("image of %d bytes at %04X does not fit in memory", len(code), origin)
	}

	img := image{code: code, origin: int(origin)}

	// --- STAGE 1: Linear Sweep ---
	// Every offset is decoded, since variable length code can be entered anywhere.
	instructions := make(map[int]*Instruction, len(code))
	for off := range code {
		inst := Decode(code[off:], origin+uint16(off))
		instructions[int(inst.Address)] = &inst
	}

	// --- STAGE 2: Control Flow Analysis ---
	labelTargets := make(map[int]LabelType)
	q := newQueue()
	for _, entry := range img.entries() {
		q.push(entry)
		labelTargets[entry] = SubroutineEntry
	}

	for {
		addr, ok := q.pop()
		if !ok {
			break
		}

		inst, exists := instructions[addr]
		if !exists || inst.IsCode || inst.Mnemonic == "db" {
			continue
		}
		inst.IsCode = true

		if !isTerminal(inst.Mnemonic) {
			q.push(addr + inst.Size())
		}

		if inst.Mnemonic == "callt" {
			vec := cpu.CallTVector(inst.Bytes[0])
			if w, ok := img.word(int(vec)); ok {
				inst.Target = int(w)
			}
		}
		if inst.Target >= 0 && img.contains(inst.Target) {
			q.push(inst.Target)
			if isCall(inst.Mnemonic) {
				labelTargets[inst.Target] = SubroutineEntry
			} else if _, exists := labelTargets[inst.Target]; !exists {
				labelTargets[inst.Target] = JumpTarget
			}
		}
	}

	// --- STAGE 3: Render Final Output ---
	var out strings.Builder
	stringCounter := 1
	if origin != 0 {
		fmt.Fprintf(&out, "    %-8s %s\n", "org", hexNum(origin, 4))
	}

	end := img.origin + len(code)
	for pc := img.origin; pc < end; {
		// If the current address is not marked as code, find the end of the
		// data block and pass it to the data analyzer.
		if inst := instructions[pc]; !inst.IsCode {
			dataEnd := pc
			for dataEnd < end && !instructions[dataEnd].IsCode {
				dataEnd++
			}
			out.WriteString(formatData(code[pc-img.origin:dataEnd-img.origin], &stringCounter))
			pc = dataEnd
			continue
		}

		if labelType, exists := labelTargets[pc]; exists {
			fmt.Fprintf(&out, "%s:\n", labelName(uint16(pc), labelType))
		}

		inst := instructions[pc]
		operands := inst.Operands
		if inst.Target >= 0 && inst.Mnemonic != "callt" {
			if labelType, exists := labelTargets[inst.Target]; exists && instructions[inst.Target].IsCode {
				operands = strings.Replace(operands, hexNum(uint16(inst.Target), 4), labelName(uint16(inst.Target), labelType), 1)
			}
		}

		if operands != "" {
			fmt.Fprintf(&out, "    %-8s %s\n", inst.Mnemonic, operands)
		} else {
			fmt.Fprintf(&out, "    %s\n", inst.Mnemonic)
		}

		pc += inst.Size()
	}

	return out.String(), nil
}

// image is the code being disassembled and where it lives.
type image struct {
	code   []byte
	origin int
}

func (img image) contains(addr int) bool {
	return addr >= img.origin && addr < img.origin+len(img.code)
}

// word reads a little-endian word from the image.
func (img image) word(addr int) (uint16, bool) {
	if !img.contains(addr) || !img.contains(addr+1) {
		return 0, false
	}
	off := addr - img.origin
	return cpu.Absolute(img.code[off], img.code[off+1]), true
}

// entries lists where execution can start. Erased flash (FFFF) and zero
// vectors are ignored.
func (img image) entries() []int {
	if img.origin != 0 {
		return []int{img.origin}
	}

	var list []int
	for _, vec := range []int{cpu.ResetVector, cpu.BRKVector} {
		w, ok := img.word(vec)
		if ok && w != 0 && w != 0xFFFF && img.contains(int(w)) {
			list = append(list, int(w))
		}
	}
	if len(list) == 0 {
		list = append(list, img.origin)
	}
	return list
}

// addrQueue is a simple worklist queue for addresses to decode.
type addrQueue struct {
	items []int
	seen  map[int]bool
}

func newQueue() *addrQueue {
	return &addrQueue{seen: make(map[int]bool)}
}

func (q *addrQueue) push(addr int) {
	if !q.seen[addr] {
		q.items = append(q.items, addr)
		q.seen[addr] = true
	}
}

func (q *addrQueue) pop() (int, bool) {
	if len(q.items) == 0 {
		return 0, false
	}
	a := q.items[0]
	q.items = q.items[1:]
	return a, true
}
