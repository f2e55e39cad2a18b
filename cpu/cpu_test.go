package cpu_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Urethramancer/k0emu/cpu"
)

const origin = 0x1000

// load places code at origin and points PC at it.
func load(t *testing.T, code ...byte) *cpu.Processor {
	t.Helper()
	p := cpu.New()
	p.LoadCode(origin, code)
	p.PC = origin
	return p
}

// steps executes n instructions, failing the test on the first error.
func steps(t *testing.T, p *cpu.Processor, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := p.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
}

func TestPSWBitTwo(t *testing.T) {
	p := cpu.New()
	for v := 0; v < 256; v++ {
		p.Write(cpu.AddrPSW, byte(v))
		if got := p.Read(cpu.AddrPSW); got != byte(v)&^4 {
			t.Fatalf("wrote %02X to PSW, read %02X", v, got)
		}
	}
}

func TestReservedMemory(t *testing.T) {
	p := cpu.New()
	for v := 0; v < 256; v++ {
		p.Write(0xF900, byte(v))
		if got := p.Read(0xF900); got != cpu.ReservedValue {
			t.Fatalf("wrote %02X to F900, read %02X", v, got)
		}
	}
	if p.Read(cpu.ReservedStart-1) != 0 || p.Read(cpu.ReservedEnd) != 0 {
		t.Errorf("reserved range leaks past its bounds")
	}
}

func TestBankSwitch(t *testing.T) {
	p := cpu.New()
	p.Write(0xFEF8-3*8, 0x5A)
	p.SelectBank(3)
	if got := p.Reg(cpu.RegX); got != 0x5A {
		t.Errorf("bank 3 X = %02X, want 5A", got)
	}
	if p.Bank() != 3 {
		t.Errorf("bank = %d, want 3", p.Bank())
	}

	// SEL RB1 then MOV A,#12 lands in bank 1.
	p = load(t, cpu.Prefix61, cpu.OPSEL1, 0xA1, 0x12)
	steps(t, p, 2)
	if got := p.Read(0xFEF8 - 8 + 1); got != 0x12 {
		t.Errorf("bank 1 A = %02X, want 12", got)
	}
	if got := p.Read(0xFEF8 + 1); got != 0 {
		t.Errorf("bank 0 A changed to %02X", got)
	}
}

func TestRegisterPairs(t *testing.T) {
	p := cpu.New()
	p.SetPair(cpu.PairHL, 0xBEEF)
	if p.Reg(cpu.RegL) != 0xEF || p.Reg(cpu.RegH) != 0xBE {
		t.Errorf("HL split as L=%02X H=%02X", p.Reg(cpu.RegL), p.Reg(cpu.RegH))
	}
	p.SetReg(cpu.RegX, 0x34)
	p.SetReg(cpu.RegA, 0x12)
	if p.AX() != 0x1234 {
		t.Errorf("AX = %04X, want 1234", p.AX())
	}
}

func TestStackRoundTrip(t *testing.T) {
	// PUSH AX; POP BC
	p := load(t, cpu.OPPUSH|0, cpu.OPPOP|2)
	sp := p.SP()
	for v := 0; v < 0x10000; v++ {
		p.PC = origin
		p.SetAX(uint16(v))
		steps(t, p, 2)
		if got := p.Pair(cpu.PairBC); got != uint16(v) {
			t.Fatalf("pushed %04X, popped %04X", v, got)
		}
		if p.SP() != sp {
			t.Fatalf("SP moved from %04X to %04X", sp, p.SP())
		}
	}
}

func TestStackWrap(t *testing.T) {
	// PUSH AX; POP BC
	p := load(t, cpu.OPPUSH|0, cpu.OPPOP|2)
	p.SetSP(0)
	p.SetAX(0x1234)
	steps(t, p, 1)
	if p.SP() != 0xFFFE {
		t.Fatalf("SP = %04X after PUSH at 0000, want FFFE", p.SP())
	}
	if p.Read(0xFFFE) != 0x34 || p.Read(0xFFFF) != 0x12 {
		t.Fatalf("stack holds % X", []byte{p.Read(0xFFFE), p.Read(0xFFFF)})
	}
	steps(t, p, 1)
	if p.SP() != 0 || p.Pair(cpu.PairBC) != 0x1234 {
		t.Errorf("POP: SP=%04X BC=%04X", p.SP(), p.Pair(cpu.PairBC))
	}
}

func TestPushLayout(t *testing.T) {
	p := load(t, cpu.OPPUSH|0)
	p.SetAX(0x1234)
	steps(t, p, 1)
	sp := p.SP()
	if sp != cpu.DefaultSP-2 {
		t.Fatalf("SP = %04X", sp)
	}
	if p.Read(sp) != 0x34 || p.Read(sp+1) != 0x12 {
		t.Errorf("stack holds % X", []byte{p.Read(sp), p.Read(sp + 1)})
	}
}

func TestRelativeBranch(t *testing.T) {
	p := load(t, cpu.OPBR, 0xFE)
	steps(t, p, 1)
	if p.PC != origin {
		t.Errorf("BR $-2 went to %04X", p.PC)
	}

	p = load(t, cpu.OPBR, 0x00)
	steps(t, p, 1)
	if p.PC != origin+2 {
		t.Errorf("BR $+0 went to %04X", p.PC)
	}

	p = load(t, cpu.OPBZ, 0x10)
	steps(t, p, 1)
	if p.PC != origin+2 {
		t.Errorf("BZ taken with Z clear")
	}
}

func TestDecrementScenario(t *testing.T) {
	// MOV A,#00; MOV PSW,A; MOV A,#FF; DEC A
	p := load(t, 0xA1, 0x00, 0xF2, 0x1E, 0xA1, 0xFF, 0x51)
	steps(t, p, 4)
	if p.A() != 0xFE {
		t.Errorf("A = %02X, want FE", p.A())
	}
	if p.Flag(cpu.FlagZ) || p.Flag(cpu.FlagAC) {
		t.Errorf("PSW = %02X, want Z and AC clear", p.PSW())
	}
}

func TestDivideByZero(t *testing.T) {
	p := load(t, cpu.Prefix31, cpu.OPDIVUW)
	p.SetAX(0x1234)
	p.SetReg(cpu.RegC, 0)
	steps(t, p, 1)
	if p.AX() != 0xFFFF || p.C() != 0x34 {
		t.Errorf("AX=%04X C=%02X, want FFFF 34", p.AX(), p.C())
	}
}

func TestDivide(t *testing.T) {
	p := load(t, cpu.Prefix31, cpu.OPDIVUW)
	p.SetAX(1000)
	p.SetReg(cpu.RegC, 7)
	steps(t, p, 1)
	if p.AX() != 142 || p.C() != 6 {
		t.Errorf("AX=%d C=%d, want 142 6", p.AX(), p.C())
	}
}

func TestMultiply(t *testing.T) {
	// MOV A,#FF; MOV X,#FF; MULU X
	p := load(t, 0xA1, 0xFF, 0xA0, 0xFF, cpu.Prefix31, cpu.OPMULU)
	steps(t, p, 3)
	if p.AX() != 0xFE01 {
		t.Errorf("AX = %04X, want FE01", p.AX())
	}
}

func TestArithmeticForms(t *testing.T) {
	tests := []struct {
		name  string
		code  []byte
		a     byte
		flags byte
	}{
		{"add a,#", []byte{0xA1, 0x7F, 0x0D, 0x01}, 0x80, cpu.FlagAC},
		{"sub a,#", []byte{0xA1, 0x00, 0x1D, 0x01}, 0xFF, cpu.FlagAC | cpu.FlagCY},
		{"cmp a,#", []byte{0xA1, 0x42, 0x4D, 0x42}, 0x42, cpu.FlagZ},
		{"and a,#", []byte{0xA1, 0xF0, 0x5D, 0x0F}, 0x00, cpu.FlagZ},
		{"or a,#", []byte{0xA1, 0xF0, 0x6D, 0x0F}, 0xFF, 0},
		{"xor a,#", []byte{0xA1, 0xFF, 0x7D, 0xFF}, 0x00, cpu.FlagZ},
		{"addc a,#", []byte{cpu.OPSET1, 0x2D, 0x01}, 0x03, 0},
		{"add a,a", []byte{0xA1, 0x81, cpu.Prefix61, 0x09}, 0x02, cpu.FlagCY},
	}
	for _, tt := range tests {
		p := load(t, tt.code...)
		p.SetA(1)
		steps(t, p, 2)
		if p.A() != tt.a {
			t.Errorf("%s: A = %02X, want %02X", tt.name, p.A(), tt.a)
		}
		if got := p.PSW() & (cpu.FlagZ | cpu.FlagAC | cpu.FlagCY); got != tt.flags {
			t.Errorf("%s: flags = %02X, want %02X", tt.name, got, tt.flags)
		}
	}
}

func TestALUMemoryForms(t *testing.T) {
	// MOV FE80,#10; ADD FE80,#05
	p := load(t, cpu.OPMOVShort, 0x80, 0x10, 0x88, 0x80, 0x05)
	steps(t, p, 2)
	if got := p.Read(0xFE80); got != 0x15 {
		t.Errorf("saddr = %02X, want 15", got)
	}

	// MOVW HL,#FE90; MOV C,#1; MOV A,#3; MOV [HL+C],A; ADD A,[HL+C]
	p = load(t,
		cpu.OPMOVWImm|6, 0x90, 0xFE,
		0xA2, 0x01,
		0xA1, 0x03,
		0xBA,
		cpu.Prefix31, 0x0A,
	)
	steps(t, p, 5)
	if p.Read(0xFE91) != 0x03 || p.A() != 0x06 {
		t.Errorf("[HL+C] = %02X A = %02X", p.Read(0xFE91), p.A())
	}
}

func TestWordArithmetic(t *testing.T) {
	p := load(t, cpu.OPMOVWImm|0, 0xFF, 0xFF, cpu.OPADDW, 0x01, 0x00)
	steps(t, p, 2)
	if p.AX() != 0 || !p.Flag(cpu.FlagZ|cpu.FlagCY) {
		t.Errorf("ADDW: AX=%04X PSW=%02X", p.AX(), p.PSW())
	}

	p = load(t, cpu.OPMOVWImm|0, 0x0F, 0x00, cpu.OPSUBW, 0x01, 0x00)
	p.SetPSW(cpu.FlagAC)
	steps(t, p, 2)
	if p.AX() != 0x000E || p.Flag(cpu.FlagAC) {
		t.Errorf("SUBW: AX=%04X PSW=%02X", p.AX(), p.PSW())
	}

	p = load(t, cpu.OPINCW|2, cpu.OPDECW|4)
	p.SetPair(cpu.PairBC, 0xFFFF)
	steps(t, p, 2)
	if p.Pair(cpu.PairBC) != 0 || p.Pair(cpu.PairDE) != 0xFFFF {
		t.Errorf("INCW/DECW: BC=%04X DE=%04X", p.Pair(cpu.PairBC), p.Pair(cpu.PairDE))
	}
}

func TestRotates(t *testing.T) {
	p := load(t, cpu.OPROL, cpu.OPRORC, cpu.OPROLC, cpu.OPROR)
	p.SetA(0x81)
	steps(t, p, 1)
	if p.A() != 0x03 || !p.Flag(cpu.FlagCY) {
		t.Fatalf("ROL: A=%02X PSW=%02X", p.A(), p.PSW())
	}
	steps(t, p, 1)
	if p.A() != 0x81 || !p.Flag(cpu.FlagCY) {
		t.Fatalf("RORC: A=%02X PSW=%02X", p.A(), p.PSW())
	}
	steps(t, p, 1)
	if p.A() != 0x03 || !p.Flag(cpu.FlagCY) {
		t.Fatalf("ROLC: A=%02X PSW=%02X", p.A(), p.PSW())
	}
	steps(t, p, 1)
	if p.A() != 0x81 || !p.Flag(cpu.FlagCY) {
		t.Fatalf("ROR: A=%02X PSW=%02X", p.A(), p.PSW())
	}
}

func TestNibbleRotates(t *testing.T) {
	p := load(t, cpu.Prefix31, cpu.OPROL4, cpu.Prefix31, cpu.OPROR4)
	p.SetPair(cpu.PairHL, 0xFE40)
	p.Write(0xFE40, 0x12)
	p.SetA(0xAB)
	steps(t, p, 1)
	if p.Read(0xFE40) != 0x2B || p.A() != 0xA1 {
		t.Fatalf("ROL4: [HL]=%02X A=%02X", p.Read(0xFE40), p.A())
	}
	steps(t, p, 1)
	if p.Read(0xFE40) != 0x12 || p.A() != 0xAB {
		t.Fatalf("ROR4: [HL]=%02X A=%02X", p.Read(0xFE40), p.A())
	}
}

func TestRestrictedOperand(t *testing.T) {
	p := load(t, cpu.Prefix31, cpu.OPROL4)
	p.SetPair(cpu.PairHL, 0xFF10)
	err := p.Step()
	if !errors.Is(err, cpu.ErrRestrictedOperand) {
		t.Fatalf("got %v, want restricted operand", err)
	}
	if p.PC != origin {
		t.Errorf("PC moved to %04X after a failed step", p.PC)
	}
}

func TestMisalignedWord(t *testing.T) {
	p := load(t, 0x89, 0x81)
	err := p.Step()
	var mis *cpu.MisalignedAddressError
	if !errors.As(err, &mis) {
		t.Fatalf("got %v, want misaligned address", err)
	}
	if mis.Address != 0xFE81 {
		t.Errorf("address = %04X, want FE81", mis.Address)
	}

	p = load(t, cpu.OPMOVWAbsAX, 0x01, 0xFE)
	if err := p.Step(); !errors.Is(err, cpu.ErrMisalignedAddress) {
		t.Errorf("MOVW !FE01,AX: got %v", err)
	}
}

func TestUnimplementedOpcode(t *testing.T) {
	p := load(t, 0x06)
	err := p.Step()
	var un *cpu.UnimplementedOpcodeError
	if !errors.As(err, &un) {
		t.Fatalf("got %v, want unimplemented opcode", err)
	}
	if un.PC != origin || un.Opcode != 0x06 || un.Prefix != 0 {
		t.Errorf("got %+v", un)
	}

	p = load(t, cpu.Prefix71, 0x02)
	err = p.Step()
	if !errors.As(err, &un) || un.Prefix != cpu.Prefix71 || un.Opcode != 0x02 {
		t.Errorf("prefixed: got %v", err)
	}
}

func TestShortAddressing(t *testing.T) {
	if cpu.ShortAddr(0x1E) != 0xFF1E || cpu.ShortAddr(0x20) != 0xFE20 || cpu.ShortAddr(0xFF) != 0xFEFF {
		t.Errorf("saddr mapping wrong")
	}
	if cpu.SFRAddr(0x00) != 0xFF00 {
		t.Errorf("sfr mapping wrong")
	}
	if _, err := cpu.SFRAddrPair(0x1D); err == nil {
		t.Errorf("odd sfrp accepted")
	}
}

func TestMoves(t *testing.T) {
	p := load(t,
		0xA3, 0x77, // MOV B,#77
		0x63,             // MOV A,B
		0x9E, 0x00, 0xFE, // MOV !FE00,A
		cpu.OPMOVWImm|4, 0x00, 0xFE, // MOVW DE,#FE00
		0x85, // MOV A,[DE]
		0x72, // MOV C,A
		0x32, // XCH A,C
	)
	steps(t, p, 7)
	if p.Read(0xFE00) != 0x77 || p.C() != 0x77 || p.A() != 0x77 {
		t.Errorf("A=%02X C=%02X [FE00]=%02X", p.A(), p.C(), p.Read(0xFE00))
	}

	p = load(t,
		cpu.OPMOVWShort, 0x40, 0x34, 0x12, // MOVW FE40,#1234
		0x89, 0x40, // MOVW AX,FE40
		cpu.OPMOVWImm|2, 0xCD, 0xAB, // MOVW BC,#ABCD
		0xE2, // XCHW AX,BC
	)
	steps(t, p, 4)
	if p.AX() != 0xABCD || p.Pair(cpu.PairBC) != 0x1234 {
		t.Errorf("AX=%04X BC=%04X", p.AX(), p.Pair(cpu.PairBC))
	}
}

func TestSFRWordStore(t *testing.T) {
	// MOVW SP,#FE00 through the sfrp form.
	p := load(t, cpu.OPMOVWSFR, 0x1C, 0x00, 0xFE)
	steps(t, p, 1)
	if p.SP() != 0xFE00 {
		t.Errorf("SP = %04X", p.SP())
	}
}

func TestCallReturn(t *testing.T) {
	p := load(t, cpu.OPCALL, 0x00, 0x20)
	p.LoadCode(0x2000, []byte{cpu.OPRET})
	sp := p.SP()
	steps(t, p, 1)
	if p.PC != 0x2000 || p.SP() != sp-2 || p.ReadWord(p.SP()) != origin+3 {
		t.Fatalf("CALL: PC=%04X SP=%04X", p.PC, p.SP())
	}
	steps(t, p, 1)
	if p.PC != origin+3 || p.SP() != sp {
		t.Errorf("RET: PC=%04X SP=%04X", p.PC, p.SP())
	}
}

func TestCallF(t *testing.T) {
	if got := cpu.CallFTarget(0x4C, 0x21); got != 0x0C21 {
		t.Errorf("CALLF target = %04X, want 0C21", got)
	}
	p := load(t, 0x1C, 0x80)
	steps(t, p, 1)
	if p.PC != 0x0980 {
		t.Errorf("PC = %04X, want 0980", p.PC)
	}
}

func TestCallT(t *testing.T) {
	if got := cpu.CallTVector(0xC3); got != 0x0042 {
		t.Errorf("vector = %04X, want 0042", got)
	}
	p := load(t, 0xFF)
	p.WriteWord(0x007E, 0x3456)
	steps(t, p, 1)
	if p.PC != 0x3456 || p.ReadWord(p.SP()) != origin+1 {
		t.Errorf("PC = %04X", p.PC)
	}
}

func TestBreakAndReturn(t *testing.T) {
	p := load(t, cpu.OPBRK)
	p.WriteWord(cpu.BRKVector, 0x3000)
	p.LoadCode(0x3000, []byte{cpu.OPRETI})
	p.SetPSW(cpu.FlagIE | cpu.FlagCY)
	sp := p.SP()
	steps(t, p, 1)
	if p.PC != 0x3000 || p.Flag(cpu.FlagIE) || p.SP() != sp-3 {
		t.Fatalf("BRK: PC=%04X PSW=%02X SP=%04X", p.PC, p.PSW(), p.SP())
	}
	steps(t, p, 1)
	if p.PC != origin+1 || p.PSW() != cpu.FlagIE|cpu.FlagCY || p.SP() != sp {
		t.Errorf("RETI: PC=%04X PSW=%02X SP=%04X", p.PC, p.PSW(), p.SP())
	}
}

func TestDBNZ(t *testing.T) {
	// MOV B,#3; loop: DBNZ B,loop
	p := load(t, 0xA3, 0x03, cpu.OPDBNZB, 0xFE)
	steps(t, p, 3)
	if p.PC != origin+2 || p.B() != 1 {
		t.Fatalf("PC=%04X B=%d", p.PC, p.B())
	}
	steps(t, p, 1)
	if p.PC != origin+4 || p.B() != 0 {
		t.Errorf("PC=%04X B=%d", p.PC, p.B())
	}
}

func TestBitInstructions(t *testing.T) {
	p := load(t,
		0x3A, 0x40, // SET1 FE40.3
		0x8C|0x30, 0x40, 0x02, // BT FE40.3,$+2
		cpu.OPNOP, cpu.OPNOP,
		cpu.Prefix71, 0x34, 0x40, // MOV1 CY,FE40.3
	)
	steps(t, p, 2)
	if p.Read(0xFE40) != 0x08 || p.PC != origin+7 {
		t.Fatalf("SET1/BT: [FE40]=%02X PC=%04X", p.Read(0xFE40), p.PC)
	}
	steps(t, p, 1)
	if !p.Flag(cpu.FlagCY) {
		t.Errorf("MOV1 CY,FE40.3 left CY clear")
	}

	// BTCLR on a clear bit falls through; on a set bit it clears and branches.
	p = load(t, cpu.Prefix31, 0x01, 0x40, 0x10)
	steps(t, p, 1)
	if p.PC != origin+4 {
		t.Errorf("BTCLR clear bit: PC=%04X", p.PC)
	}
	p.PC = origin
	p.Write(0xFE40, 0x01)
	steps(t, p, 1)
	if p.PC != origin+0x14 || p.Read(0xFE40) != 0 {
		t.Errorf("BTCLR set bit: PC=%04X [FE40]=%02X", p.PC, p.Read(0xFE40))
	}

	// SET1 CY; AND1 CY,A.0; XOR1 CY,A.1; NOT1 CY
	p = load(t, cpu.OPSET1, cpu.Prefix61, 0x8D, cpu.Prefix61, 0x9F, cpu.OPNOT1)
	p.SetA(0x03)
	steps(t, p, 2)
	if !p.Flag(cpu.FlagCY) {
		t.Fatalf("AND1 cleared CY")
	}
	steps(t, p, 1)
	if p.Flag(cpu.FlagCY) {
		t.Fatalf("XOR1 left CY set")
	}
	steps(t, p, 1)
	if !p.Flag(cpu.FlagCY) {
		t.Errorf("NOT1 left CY clear")
	}
}

func TestBitOperandForms(t *testing.T) {
	const (
		short = 0xFE40
		sfr   = 0xFF20
		hl    = 0xFE80
		regA  = 0xFEF9
	)
	tests := []struct {
		name   string
		code   []byte
		addr   uint16
		before byte
		cy     bool
		pc     uint16
		after  byte
		wantCY bool
	}{
		// Branches: bit 3 unless noted, displacement 10H.
		{"bt saddr taken", []byte{cpu.OPBTShort | 0x30, 0x40, 0x10}, short, 0x08, false, 0x1013, 0x08, false},
		{"bt saddr not taken", []byte{cpu.OPBTShort | 0x30, 0x40, 0x10}, short, 0x00, false, 0x1003, 0x00, false},
		{"bt sfr", []byte{cpu.Prefix31, 0x36, 0x20, 0x10}, sfr, 0x08, false, 0x1014, 0x08, false},
		{"bt a", []byte{cpu.Prefix31, 0x3E, 0x10}, regA, 0x08, false, 0x1013, 0x08, false},
		{"bt [hl]", []byte{cpu.Prefix31, 0xB6, 0x10}, hl, 0x08, false, 0x1013, 0x08, false},
		{"bf saddr taken", []byte{cpu.Prefix31, 0x33, 0x40, 0x10}, short, 0x00, false, 0x1014, 0x00, false},
		{"bf saddr not taken", []byte{cpu.Prefix31, 0x33, 0x40, 0x10}, short, 0x08, false, 0x1004, 0x08, false},
		{"bf sfr", []byte{cpu.Prefix31, 0x37, 0x20, 0x10}, sfr, 0xF7, false, 0x1014, 0xF7, false},
		{"bf a", []byte{cpu.Prefix31, 0x3F, 0x10}, regA, 0x00, false, 0x1013, 0x00, false},
		{"bf [hl] not taken", []byte{cpu.Prefix31, 0xB7, 0x10}, hl, 0x08, false, 0x1003, 0x08, false},
		{"btclr sfr.7", []byte{cpu.Prefix31, 0x75, 0x20, 0x10}, sfr, 0x80, false, 0x1014, 0x00, false},
		{"btclr [hl].7", []byte{cpu.Prefix31, 0xF5, 0x10}, hl, 0x81, false, 0x1013, 0x01, false},
		{"btclr a.7 clear", []byte{cpu.Prefix31, 0x7D, 0x10}, regA, 0x01, false, 0x1003, 0x01, false},

		{"set1 sfr", []byte{cpu.Prefix71, 0x3A, 0x20}, sfr, 0x00, false, 0x1003, 0x08, false},
		{"clr1 sfr", []byte{cpu.Prefix71, 0x3B, 0x20}, sfr, 0xFF, false, 0x1003, 0xF7, false},
		{"set1 [hl]", []byte{cpu.Prefix71, 0xB2}, hl, 0x00, false, 0x1002, 0x08, false},
		{"clr1 [hl]", []byte{cpu.Prefix71, 0xB3}, hl, 0xFF, false, 0x1002, 0xF7, false},

		{"mov1 saddr,cy", []byte{cpu.Prefix71, 0x31, 0x40}, short, 0x00, true, 0x1003, 0x08, true},
		{"mov1 sfr,cy", []byte{cpu.Prefix71, 0x39, 0x20}, sfr, 0xFF, false, 0x1003, 0xF7, false},
		{"mov1 [hl],cy", []byte{cpu.Prefix71, 0xB1}, hl, 0x00, true, 0x1002, 0x08, true},
		{"mov1 a,cy", []byte{cpu.Prefix61, 0xB9}, regA, 0x00, true, 0x1002, 0x08, true},
		{"mov1 cy,sfr", []byte{cpu.Prefix71, 0x3C, 0x20}, sfr, 0x08, false, 0x1003, 0x08, true},
		{"mov1 cy,[hl]", []byte{cpu.Prefix71, 0xB4}, hl, 0x00, true, 0x1002, 0x00, false},

		{"or1 saddr", []byte{cpu.Prefix71, 0x36, 0x40}, short, 0x08, false, 0x1003, 0x08, true},
		{"or1 sfr", []byte{cpu.Prefix71, 0x3E, 0x20}, sfr, 0x00, false, 0x1003, 0x00, false},
		{"or1 [hl]", []byte{cpu.Prefix71, 0xB6}, hl, 0x08, false, 0x1002, 0x08, true},
		{"or1 a", []byte{cpu.Prefix61, 0xBE}, regA, 0x00, true, 0x1002, 0x00, true},
		{"and1 [hl]", []byte{cpu.Prefix71, 0xB5}, hl, 0x00, true, 0x1002, 0x00, false},
		{"xor1 sfr", []byte{cpu.Prefix71, 0x3F, 0x20}, sfr, 0x08, true, 0x1003, 0x08, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := load(t, tt.code...)
			p.SetPair(cpu.PairHL, hl)
			p.Write(tt.addr, tt.before)
			if tt.cy {
				p.SetPSW(cpu.FlagCY)
			}
			steps(t, p, 1)
			if p.PC != tt.pc {
				t.Errorf("PC = %04X, want %04X", p.PC, tt.pc)
			}
			if got := p.Read(tt.addr); got != tt.after {
				t.Errorf("[%04X] = %02X, want %02X", tt.addr, got, tt.after)
			}
			if p.Flag(cpu.FlagCY) != tt.wantCY {
				t.Errorf("CY = %v, want %v", p.Flag(cpu.FlagCY), tt.wantCY)
			}
		})
	}
}

func TestHalt(t *testing.T) {
	p := load(t, cpu.Prefix71, cpu.OPHALT)
	steps(t, p, 1)
	if !p.Halted() {
		t.Errorf("HALT did not halt")
	}
	p.Reset()
	if p.Halted() {
		t.Errorf("Reset left the processor halted")
	}
}

func TestCallAfterHalt(t *testing.T) {
	p := load(t, cpu.Prefix71, cpu.OPHALT)
	steps(t, p, 1)
	p.LoadCode(0x2000, []byte{cpu.OPRET})
	if err := p.Call(context.Background(), 0x2000); err != nil {
		t.Fatal(err)
	}
	if p.Halted() {
		t.Errorf("Call left the processor halted")
	}

	// A HALT inside the routine is reported and stays visible.
	p.LoadCode(0x2000, []byte{cpu.Prefix71, cpu.OPHALT})
	if err := p.Call(context.Background(), 0x2000); err == nil {
		t.Errorf("Call returned nil after HALT")
	}
	if !p.Halted() {
		t.Errorf("HALT inside Call not reported by Halted")
	}
}

func TestCall(t *testing.T) {
	p := cpu.New()
	// MOV A,#42; RET
	p.LoadCode(0x2000, []byte{0xA1, 0x42, cpu.OPRET})
	p.PC = origin
	sp := p.SP()
	if err := p.Call(context.Background(), 0x2000); err != nil {
		t.Fatal(err)
	}
	if p.A() != 0x42 || p.PC != origin || p.SP() != sp {
		t.Errorf("A=%02X PC=%04X SP=%04X", p.A(), p.PC, p.SP())
	}
}

func TestCallCancelled(t *testing.T) {
	p := cpu.New()
	p.LoadCode(0x2000, []byte{cpu.OPBR, 0xFE})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := p.Call(ctx, 0x2000)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("got %v, want deadline exceeded", err)
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		b0, b1 byte
		want   string
		size   int
	}{
		{0x00, 0, "nop", 1},
		{0xA1, 0, "mov {r},#{byte}", 2},
		{cpu.Prefix31, 0x01, "btclr {saddr}.{bit},${rel}", 4},
		{cpu.Prefix61, 0xD8, "sel rb1", 2},
		{cpu.Prefix71, 0x10, "halt", 2},
		{0xEE, 0, "movw {saddr},#{word}", 4},
	}
	for _, tt := range tests {
		op, ok := cpu.Lookup(tt.b0, tt.b1)
		if !ok || op.Mnemonic != tt.want || op.Size != tt.size {
			t.Errorf("%02X %02X: got %+v %v", tt.b0, tt.b1, op, ok)
		}
	}
	if _, ok := cpu.Lookup(0x06, 0); ok {
		t.Errorf("06 should not decode")
	}
}

func TestReadWriteMemory(t *testing.T) {
	p := cpu.New()
	if err := p.WriteMemory(0xFFFF, []byte{1, 2}); err != nil {
		t.Fatal(err)
	}
	data, err := p.ReadMemory(0xFFFF, 2)
	if err != nil {
		t.Fatal(err)
	}
	if data[0] != 1 || data[1] != 2 || p.Read(0) != 2 {
		t.Errorf("wrap failed: % X", data)
	}
	if _, err := p.ReadMemory(0, -1); err == nil {
		t.Errorf("negative length accepted")
	}
}
