package cpu

// Handlers run with PC already pointing past the whole instruction, so
// relative targets and return addresses both start from PC.

// branchIf adds the displacement in the last operand byte to PC when cond holds.
func (p *Processor) branchIf(in operands, cond bool) {
	if cond {
		p.PC += in.rel()
	}
}

// opBR handles BR $addr16.
func (p *Processor) opBR(in operands) error {
	p.branchIf(in, true)
	return nil
}

// opBC handles BC $addr16.
func (p *Processor) opBC(in operands) error {
	p.branchIf(in, p.Flag(FlagCY))
	return nil
}

// opBNC handles BNC $addr16.
func (p *Processor) opBNC(in operands) error {
	p.branchIf(in, !p.Flag(FlagCY))
	return nil
}

// opBZ handles BZ $addr16.
func (p *Processor) opBZ(in operands) error {
	p.branchIf(in, p.Flag(FlagZ))
	return nil
}

// opBNZ handles BNZ $addr16.
func (p *Processor) opBNZ(in operands) error {
	p.branchIf(in, !p.Flag(FlagZ))
	return nil
}

// opBRAbs handles BR !addr16.
func (p *Processor) opBRAbs(in operands) error {
	p.PC = in.word(0)
	return nil
}

// opBRAX handles BR AX.
func (p *Processor) opBRAX(in operands) error {
	p.PC = p.AX()
	return nil
}

// dbnz decrements the byte at addr and branches while it is non-zero. Flags
// are not touched.
func (p *Processor) dbnz(in operands, addr uint16) {
	v := p.Read(addr) - 1
	p.Write(addr, v)
	p.branchIf(in, v != 0)
}

// opDBNZReg handles DBNZ B and DBNZ C.
func (p *Processor) opDBNZReg(in operands) error {
	reg := RegC
	if in.op == 0x8B {
		reg = RegB
	}
	p.dbnz(in, p.regAddr(reg))
	return nil
}

// opDBNZShort handles DBNZ saddr,$addr16.
func (p *Processor) opDBNZShort(in operands) error {
	p.dbnz(in, in.saddr())
	return nil
}

// call pushes the return address and jumps to target.
func (p *Processor) call(target uint16) {
	p.pushWord(p.PC)
	p.PC = target
}

// opCALL handles CALL !addr16.
func (p *Processor) opCALL(in operands) error {
	p.call(in.word(0))
	return nil
}

// CallFTarget returns the CALLF destination encoded by opcode op and its operand byte.
func CallFTarget(op, lo byte) uint16 {
	return CallFBase | uint16(op&0x70)<<4 | uint16(lo)
}

// CallTVector returns the address of the CALLT vector selected by op.
func CallTVector(op byte) uint16 {
	return CallTableBase + uint16(op&0x3E)
}

// opCALLF handles CALLF !addr11.
func (p *Processor) opCALLF(in operands) error {
	p.call(CallFTarget(in.op, in.args[0]))
	return nil
}

// opCALLT handles CALLT [addr5].
func (p *Processor) opCALLT(in operands) error {
	p.call(p.ReadWord(CallTVector(in.op)))
	return nil
}

// opRET handles RET.
func (p *Processor) opRET(in operands) error {
	p.PC = p.popWord()
	return nil
}
