package cpu

// General purpose register indices, as encoded in the low three bits of
// register-family opcodes.
const (
	RegX = iota
	RegA
	RegC
	RegB
	RegE
	RegD
	RegL
	RegH
)

// Register pair indices, as encoded in bits 1-2 of pair-family opcodes.
const (
	PairAX = iota
	PairBC
	PairDE
	PairHL
)

// RegNames are the register names by index.
var RegNames = [8]string{"x", "a", "c", "b", "e", "d", "l", "h"}

// PairNames are the register pair names by index.
var PairNames = [4]string{"ax", "bc", "de", "hl"}

// Bank returns the register bank selected by PSW.
func (p *Processor) Bank() int {
	psw := p.PSW()
	bank := 0
	if psw&FlagRBS0 != 0 {
		bank |= 1
	}
	if psw&FlagRBS1 != 0 {
		bank |= 2
	}
	return bank
}

// SelectBank switches to register bank n (0-3).
func (p *Processor) SelectBank(n int) {
	var f byte
	if n&1 != 0 {
		f |= FlagRBS0
	}
	if n&2 != 0 {
		f |= FlagRBS1
	}
	p.setFlags(f, FlagRBS0|FlagRBS1)
}

// regAddr maps a register index to its address in the active bank.
func (p *Processor) regAddr(idx int) uint16 {
	return uint16(RegisterBankBase - p.Bank()*8 + idx&7)
}

// Reg returns general purpose register idx of the active bank.
func (p *Processor) Reg(idx int) byte {
	return p.Read(p.regAddr(idx))
}

// SetReg writes general purpose register idx of the active bank.
func (p *Processor) SetReg(idx int, v byte) {
	p.Write(p.regAddr(idx), v)
}

// Pair returns register pair idx of the active bank.
func (p *Processor) Pair(idx int) uint16 {
	lo := p.Reg(idx&3*2)
	hi := p.Reg(idx&3*2 + 1)
	return uint16(lo) | uint16(hi)<<8
}

// SetPair writes register pair idx of the active bank.
func (p *Processor) SetPair(idx int, v uint16) {
	p.SetReg(idx&3*2, byte(v))
	p.SetReg(idx&3*2+1, byte(v>>8))
}

// A returns the accumulator.
func (p *Processor) A() byte { return p.Reg(RegA) }

// SetA writes the accumulator.
func (p *Processor) SetA(v byte) { p.SetReg(RegA, v) }

// X returns register X.
func (p *Processor) X() byte { return p.Reg(RegX) }

// B returns register B.
func (p *Processor) B() byte { return p.Reg(RegB) }

// C returns register C.
func (p *Processor) C() byte { return p.Reg(RegC) }

// AX returns register pair AX.
func (p *Processor) AX() uint16 { return p.Pair(PairAX) }

// SetAX writes register pair AX.
func (p *Processor) SetAX(v uint16) { p.SetPair(PairAX, v) }

// DE returns register pair DE.
func (p *Processor) DE() uint16 { return p.Pair(PairDE) }

// HL returns register pair HL.
func (p *Processor) HL() uint16 { return p.Pair(PairHL) }

// opSEL handles SEL RBn. RBS0 and RBS1 sit at the same bit positions in the
// opcode as in PSW.
func (p *Processor) opSEL(in operands) error {
	p.setFlags(in.op, FlagRBS0|FlagRBS1)
	return nil
}
