package disassembler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Urethramancer/k0emu/cpu"
)

// hexNum formats v the way NEC assemblers expect: upper case hex with an H
// suffix, and a leading zero when the first digit is a letter.
func hexNum(v uint16, digits int) string {
	s := fmt.Sprintf("%0*XH", digits, v)
	if s[0] >= 'A' && s[0] <= 'F' {
		return "0" + s
	}
	return s
}

// ParseNumber reads an address or byte written as hexNum prints it
// ("0FE40H"), with a 0x prefix, or as bare hex.
func ParseNumber(s string) (uint16, error) {
	t := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(t, "0x"):
		t = t[2:]
	case strings.HasSuffix(t, "h"):
		t = t[:len(t)-1]
	}
	v, err := strconv.ParseUint(t, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("bad number %q: %w", s, err)
	}
	return uint16(v), nil
}

// sfrNames are the registers worth naming in operands.
var sfrNames = map[uint16]string{
	cpu.AddrSP:     "sp",
	cpu.AddrSP + 1: "sp+1",
	cpu.AddrPSW:    "psw",
}

// memName renders a saddr or sfr operand, using the register name when it
// has one.
func memName(addr uint16) string {
	if name, ok := sfrNames[addr]; ok {
		return name
	}
	return hexNum(addr, 4)
}

// labelName generates a label string based on the address and its context.
func labelName(addr uint16, labelType LabelType) string {
	prefix := "loc_"
	switch labelType {
	case SubroutineEntry:
		prefix = "sub_"
	}
	return fmt.Sprintf("%s%04X", prefix, addr)
}
