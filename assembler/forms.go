package assembler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Urethramancer/k0emu/cpu"
)

// form is one encoding of a mnemonic, taken from the processor's opcode
// tables. Register, bit and CALLT fields are already filled in from the
// opcode, so only value fields remain.
type form struct {
	prefix   byte // 0 when unprefixed
	opcode   byte
	mnemonic string
	operands []token
	size     int
}

// forms lists every encoding by mnemonic, in opcode order so that the short
// address forms are tried before the SFR forms.
var forms = buildForms()

func buildForms() map[string][]*form {
	m := make(map[string][]*form)
	add := func(prefix, opcode byte, op cpu.Opcode) {
		f, err := newForm(prefix, opcode, op)
		if err != nil {
			panic(err)
		}
		m[f.mnemonic] = append(m[f.mnemonic], f)
	}

	prefixes := map[byte]bool{cpu.Prefix31: true, cpu.Prefix61: true, cpu.Prefix71: true}
	for b0 := 0; b0 < 256; b0++ {
		if prefixes[byte(b0)] {
			continue
		}
		if op, ok := cpu.Lookup(byte(b0), 0); ok {
			add(0, byte(b0), op)
		}
	}
	for _, p := range []byte{cpu.Prefix31, cpu.Prefix61, cpu.Prefix71} {
		for b1 := 0; b1 < 256; b1++ {
			if op, ok := cpu.Lookup(p, byte(b1)); ok {
				add(p, byte(b1), op)
			}
		}
	}
	return m
}

func newForm(prefix, opcode byte, op cpu.Opcode) (*form, error) {
	mn, tmpl, _ := strings.Cut(op.Mnemonic, " ")
	r := strings.NewReplacer(
		"{r}", cpu.RegNames[opcode&7],
		"{rp}", cpu.PairNames[(opcode>>1)&3],
		"{bit}", strconv.Itoa(int(opcode>>4)&7),
		"{addr5}", fmt.Sprintf("%04xh", cpu.CallTVector(opcode)),
	)
	toks, err := tokenize(r.Replace(tmpl))
	if err != nil {
		return nil, err
	}
	return &form{prefix: prefix, opcode: opcode, mnemonic: mn, operands: toks, size: op.Size}, nil
}

// arg is a resolved operand field.
type arg struct {
	field string
	value int
}

// match checks operands against the form. Undefined symbols match any field
// unless final is set, in which case they are an error.
func (f *form) match(asm *Assembler, operands []token, final bool) ([]arg, bool, error) {
	var args []arg
	j := 0
	for _, want := range f.operands {
		if j >= len(operands) {
			return nil, false, nil
		}
		got := operands[j]

		switch want.kind {
		case tokPunct:
			if got.kind != tokPunct || got.text != want.text {
				return nil, false, nil
			}
			j++

		case tokWord:
			if got.kind != tokWord {
				return nil, false, nil
			}
			if n, ok := parseNumber(want.text); ok {
				if m, ok := parseNumber(got.text); !ok || m != n {
					return nil, false, nil
				}
			} else if got.text != want.text {
				return nil, false, nil
			}
			j++

		case tokField:
			if got.kind == tokWord && registers[got.text] {
				return nil, false, nil
			}
			v, known, n, err := asm.expr(operands[j:])
			if err != nil {
				return nil, false, nil
			}
			if !known {
				if final {
					return nil, false, fmt.Errorf("undefined symbol: %s", got.text)
				}
			} else if !f.fits(want.text, v) {
				return nil, false, nil
			}
			args = append(args, arg{field: want.text, value: v})
			j += n
		}
	}
	return args, j == len(operands), nil
}

// fits reports whether v can be encoded in field.
func (f *form) fits(field string, v int) bool {
	switch field {
	case "byte":
		return v >= -128 && v <= 0xFF
	case "word", "addr16", "rel":
		return v >= -0x8000 && v <= 0xFFFF
	case "saddr", "sfr":
		if v < 0 || v > 0xFFFF {
			return false
		}
		// Word moves need an even address.
		if f.mnemonic == "movw" && v&1 != 0 {
			return false
		}
		if field == "saddr" {
			return cpu.ShortAddr(byte(v)) == uint16(v)
		}
		return cpu.SFRAddr(byte(v)) == uint16(v)
	case "addr11":
		return v >= 0 && v <= 0xFFFF && cpu.CallFTarget(f.opcode, byte(v)) == uint16(v)
	}
	return false
}

// encode emits the form with its operands for an instruction at pc.
func (f *form) encode(args []arg, pc uint16) ([]byte, error) {
	code := make([]byte, 0, f.size)
	if f.prefix != 0 {
		code = append(code, f.prefix)
	}
	code = append(code, f.opcode)
	for _, a := range args {
		switch a.field {
		case "word", "addr16":
			code = append(code, byte(a.value), byte(a.value>>8))
		case "rel":
			disp := a.value - int(pc) - f.size
			if disp < -128 || disp > 127 {
				return nil, fmt.Errorf("branch target %04X out of range", a.value)
			}
			code = append(code, byte(int8(disp)))
		default:
			code = append(code, byte(a.value))
		}
	}
	return code, nil
}

// choose finds the first form of the node's mnemonic that accepts its
// operands.
func (asm *Assembler) choose(n *Node, final bool) (*form, []arg, error) {
	for _, f := range forms[n.Mnemonic] {
		args, ok, err := f.match(asm, n.Operands, final)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			return f, args, nil
		}
	}
	return nil, nil, fmt.Errorf("no encoding of %s takes these operands", n.Mnemonic)
}
