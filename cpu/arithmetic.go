package cpu

// aluOp selects one of the eight two-operand byte operations. The value
// matches the row (ADD=0 ... XOR=7) the operation occupies in the opcode map.
type aluOp byte

const (
	aluADD aluOp = iota
	aluSUB
	aluADDC
	aluSUBC
	aluCMP
	aluAND
	aluOR
	aluXOR
)

var aluNames = [8]string{"add", "sub", "addc", "subc", "cmp", "and", "or", "xor"}

// operate applies kind to a and b, updating PSW. It returns the result and
// whether it should be written back (CMP only sets flags).
func (p *Processor) operate(kind aluOp, a, b byte) (byte, bool) {
	var r, f byte
	switch kind {
	case aluADD:
		r, f = add(a, b, 0)
	case aluSUB:
		r, f = sub(a, b, 0)
	case aluADDC:
		r, f = add(a, b, p.carry())
	case aluSUBC:
		r, f = sub(a, b, p.carry())
	case aluCMP:
		_, f = sub(a, b, 0)
		p.setFlags(f, flagsArith)
		return a, false
	case aluAND:
		r = a & b
		p.setFlags(zero(r), flagsLogic)
		return r, true
	case aluOR:
		r = a | b
		p.setFlags(zero(r), flagsLogic)
		return r, true
	case aluXOR:
		r = a ^ b
		p.setFlags(zero(r), flagsLogic)
		return r, true
	}
	p.setFlags(f, flagsArith)
	return r, true
}

// operateA applies kind to A and b, storing the result in A.
func (p *Processor) operateA(kind aluOp, b byte) {
	if r, ok := p.operate(kind, p.A(), b); ok {
		p.SetA(r)
	}
}

// operateMem applies kind to the byte at addr and b, storing the result at addr.
func (p *Processor) operateMem(kind aluOp, addr uint16, b byte) {
	if r, ok := p.operate(kind, p.Read(addr), b); ok {
		p.Write(addr, r)
	}
}

// aluRow extracts the operation from the high nibble of rows 0-7.
func aluRow(op byte) aluOp {
	return aluOp(op>>4) & 7
}

// opALUAbs handles <op> A,!addr16.
func (p *Processor) opALUAbs(in operands) error {
	p.operateA(aluRow(in.op), p.Read(in.word(0)))
	return nil
}

// opALUHLByte handles <op> A,[HL+byte].
func (p *Processor) opALUHLByte(in operands) error {
	p.operateA(aluRow(in.op), p.Read(p.BasedHLByte(in.args[0])))
	return nil
}

// opALUImm handles <op> A,#byte.
func (p *Processor) opALUImm(in operands) error {
	p.operateA(aluRow(in.op), in.args[0])
	return nil
}

// opALUShort handles <op> A,saddr.
func (p *Processor) opALUShort(in operands) error {
	p.operateA(aluRow(in.op), p.Read(in.saddr()))
	return nil
}

// opALUHL handles <op> A,[HL].
func (p *Processor) opALUHL(in operands) error {
	p.operateA(aluRow(in.op), p.Read(p.BasedHL()))
	return nil
}

// opALUHLC handles <op> A,[HL+C].
func (p *Processor) opALUHLC(in operands) error {
	p.operateA(aluRow(in.op), p.Read(p.BasedHLC()))
	return nil
}

// opALUHLB handles <op> A,[HL+B].
func (p *Processor) opALUHLB(in operands) error {
	p.operateA(aluRow(in.op), p.Read(p.BasedHLB()))
	return nil
}

// opALUShortImm handles <op> saddr,#byte. These sit in rows 8-F.
func (p *Processor) opALUShortImm(in operands) error {
	p.operateMem(aluRow(in.op), in.saddr(), in.args[1])
	return nil
}

// opALURegA handles <op> r,A.
func (p *Processor) opALURegA(in operands) error {
	p.operateMem(aluRow(in.op), p.regAddr(in.reg()), p.A())
	return nil
}

// opALUAReg handles <op> A,r.
func (p *Processor) opALUAReg(in operands) error {
	p.operateA(aluRow(in.op), p.Reg(in.reg()))
	return nil
}

// opINC handles INC r.
func (p *Processor) opINC(in operands) error {
	p.incMem(p.regAddr(in.reg()))
	return nil
}

// opDEC handles DEC r.
func (p *Processor) opDEC(in operands) error {
	p.decMem(p.regAddr(in.reg()))
	return nil
}

// opINCShort handles INC saddr.
func (p *Processor) opINCShort(in operands) error {
	p.incMem(in.saddr())
	return nil
}

// opDECShort handles DEC saddr.
func (p *Processor) opDECShort(in operands) error {
	p.decMem(in.saddr())
	return nil
}

func (p *Processor) incMem(addr uint16) {
	r, f := inc(p.Read(addr))
	p.Write(addr, r)
	p.setFlags(f, flagsIncr)
}

func (p *Processor) decMem(addr uint16) {
	r, f := dec(p.Read(addr))
	p.Write(addr, r)
	p.setFlags(f, flagsIncr)
}

// opINCW handles INCW rp. No flags change.
func (p *Processor) opINCW(in operands) error {
	p.SetPair(in.pair(), p.Pair(in.pair())+1)
	return nil
}

// opDECW handles DECW rp. No flags change.
func (p *Processor) opDECW(in operands) error {
	p.SetPair(in.pair(), p.Pair(in.pair())-1)
	return nil
}

// opADDW handles ADDW AX,#word.
func (p *Processor) opADDW(in operands) error {
	r, f := addw(p.AX(), in.word(0))
	p.SetAX(r)
	p.setFlags(f, flagsArith)
	return nil
}

// opSUBW handles SUBW AX,#word.
func (p *Processor) opSUBW(in operands) error {
	r, f := subw(p.AX(), in.word(0))
	p.SetAX(r)
	p.setFlags(f, flagsArith)
	return nil
}

// opCMPW handles CMPW AX,#word.
func (p *Processor) opCMPW(in operands) error {
	_, f := subw(p.AX(), in.word(0))
	p.setFlags(f, flagsArith)
	return nil
}

// opMULU handles MULU X: AX = A * X.
func (p *Processor) opMULU(in operands) error {
	p.SetAX(uint16(p.A()) * uint16(p.X()))
	return nil
}

// opDIVUW handles DIVUW C: AX = AX / C, C = AX % C. Division by zero leaves
// AX = FFFF and C = X, as the silicon does.
func (p *Processor) opDIVUW(in operands) error {
	ax := p.AX()
	c := p.C()
	if c == 0 {
		p.SetAX(0xFFFF)
		p.SetReg(RegC, byte(ax))
		return nil
	}
	p.SetAX(ax / uint16(c))
	p.SetReg(RegC, byte(ax%uint16(c)))
	return nil
}

// opROR handles ROR A,1.
func (p *Processor) opROR(in operands) error {
	a := p.A()
	out := a & 1
	p.SetA(a>>1 | out<<7)
	p.setFlags(out, FlagCY)
	return nil
}

// opRORC handles RORC A,1.
func (p *Processor) opRORC(in operands) error {
	a := p.A()
	p.SetA(a>>1 | p.carry()<<7)
	p.setFlags(a&1, FlagCY)
	return nil
}

// opROL handles ROL A,1.
func (p *Processor) opROL(in operands) error {
	a := p.A()
	out := a >> 7
	p.SetA(a<<1 | out)
	p.setFlags(out, FlagCY)
	return nil
}

// opROLC handles ROLC A,1.
func (p *Processor) opROLC(in operands) error {
	a := p.A()
	p.SetA(a<<1 | p.carry())
	p.setFlags(a>>7, FlagCY)
	return nil
}

// nibbleTarget resolves [HL] for ROL4/ROR4, which cannot address the SFR page.
func (p *Processor) nibbleTarget(mnemonic string) (uint16, error) {
	addr := p.BasedHL()
	if addr >= 0xFF00 {
		return 0, &RestrictedOperandError{Mnemonic: mnemonic, Address: addr}
	}
	return addr, nil
}

// opROL4 handles ROL4 [HL]: A(3-0) <- (HL)(7-4), (HL)(7-4) <- (HL)(3-0),
// (HL)(3-0) <- A(3-0).
func (p *Processor) opROL4(in operands) error {
	addr, err := p.nibbleTarget("rol4")
	if err != nil {
		return err
	}
	a := p.A()
	m := p.Read(addr)
	p.Write(addr, m<<4|a&0x0F)
	p.SetA(a&0xF0 | m>>4)
	return nil
}

// opROR4 handles ROR4 [HL]: A(3-0) <- (HL)(3-0), (HL)(7-4) <- A(3-0),
// (HL)(3-0) <- (HL)(7-4).
func (p *Processor) opROR4(in operands) error {
	addr, err := p.nibbleTarget("ror4")
	if err != nil {
		return err
	}
	a := p.A()
	m := p.Read(addr)
	p.Write(addr, a<<4|m>>4)
	p.SetA(a&0xF0 | m&0x0F)
	return nil
}

// opADJBA handles ADJBA.
func (p *Processor) opADJBA(in operands) error {
	r, f := adjba(p.A(), p.PSW())
	p.SetA(r)
	p.setFlags(f, flagsArith)
	return nil
}

// opADJBS handles ADJBS.
func (p *Processor) opADJBS(in operands) error {
	r, f := adjbs(p.A(), p.PSW())
	p.SetA(r)
	p.setFlags(f, flagsArith)
	return nil
}
