package cpu

// bitRef names one bit of memory. Since registers and PSW are memory mapped,
// CY, A.bit, saddr.bit, sfr.bit and [HL].bit all reduce to a bitRef.
type bitRef struct {
	addr uint16
	bit  byte
}

// carryBit is CY.
var carryBit = bitRef{addr: AddrPSW, bit: 0}

func (p *Processor) readBit(b bitRef) bool {
	return p.Read(b.addr)&(1<<b.bit) != 0
}

func (p *Processor) writeBit(b bitRef, v bool) {
	m := p.Read(b.addr)
	if v {
		m |= 1 << b.bit
	} else {
		m &^= 1 << b.bit
	}
	p.Write(b.addr, m)
}

// bitOperand locates the bit an instruction works on. The bit number always
// comes from bits 4-6 of the opcode.
type bitOperand func(p *Processor, in operands) bitRef

func bitOfCY(p *Processor, in operands) bitRef    { return carryBit }
func bitOfA(p *Processor, in operands) bitRef     { return bitRef{p.regAddr(RegA), in.bit()} }
func bitOfShort(p *Processor, in operands) bitRef { return bitRef{in.saddr(), in.bit()} }
func bitOfSFR(p *Processor, in operands) bitRef   { return bitRef{in.sfr(), in.bit()} }
func bitOfHL(p *Processor, in operands) bitRef    { return bitRef{p.BasedHL(), in.bit()} }

// set1 returns SET1 for the operand.
func set1(loc bitOperand) handler {
	return func(p *Processor, in operands) error {
		p.writeBit(loc(p, in), true)
		return nil
	}
}

// clr1 returns CLR1 for the operand.
func clr1(loc bitOperand) handler {
	return func(p *Processor, in operands) error {
		p.writeBit(loc(p, in), false)
		return nil
	}
}

// opNOT1 handles NOT1 CY.
func (p *Processor) opNOT1(in operands) error {
	p.writeBit(carryBit, !p.readBit(carryBit))
	return nil
}

// mov1ToCY returns MOV1 CY,<bit>.
func mov1ToCY(loc bitOperand) handler {
	return func(p *Processor, in operands) error {
		p.writeBit(carryBit, p.readBit(loc(p, in)))
		return nil
	}
}

// mov1FromCY returns MOV1 <bit>,CY.
func mov1FromCY(loc bitOperand) handler {
	return func(p *Processor, in operands) error {
		p.writeBit(loc(p, in), p.readBit(carryBit))
		return nil
	}
}

// and1 returns AND1 CY,<bit>.
func and1(loc bitOperand) handler {
	return func(p *Processor, in operands) error {
		p.writeBit(carryBit, p.readBit(carryBit) && p.readBit(loc(p, in)))
		return nil
	}
}

// or1 returns OR1 CY,<bit>.
func or1(loc bitOperand) handler {
	return func(p *Processor, in operands) error {
		p.writeBit(carryBit, p.readBit(carryBit) || p.readBit(loc(p, in)))
		return nil
	}
}

// xor1 returns XOR1 CY,<bit>.
func xor1(loc bitOperand) handler {
	return func(p *Processor, in operands) error {
		p.writeBit(carryBit, p.readBit(carryBit) != p.readBit(loc(p, in)))
		return nil
	}
}

// bt returns BT <bit>,$addr16.
func bt(loc bitOperand) handler {
	return func(p *Processor, in operands) error {
		p.branchIf(in, p.readBit(loc(p, in)))
		return nil
	}
}

// bf returns BF <bit>,$addr16.
func bf(loc bitOperand) handler {
	return func(p *Processor, in operands) error {
		p.branchIf(in, !p.readBit(loc(p, in)))
		return nil
	}
}

// btclr returns BTCLR <bit>,$addr16. A set bit is cleared and the branch
// taken; a clear bit is left alone.
func btclr(loc bitOperand) handler {
	return func(p *Processor, in operands) error {
		b := loc(p, in)
		if !p.readBit(b) {
			return nil
		}
		p.writeBit(b, false)
		p.branchIf(in, true)
		return nil
	}
}
