package cpu

// SP arithmetic wraps at 64K like every other address calculation. How the
// chip behaves when the stack runs off either end has not been checked on
// hardware.

func (p *Processor) pushByte(v byte) {
	sp := p.SP() - 1
	p.SetSP(sp)
	p.Write(sp, v)
}

func (p *Processor) popByte() byte {
	sp := p.SP()
	v := p.Read(sp)
	p.SetSP(sp + 1)
	return v
}

// pushWord pushes the high byte first so the word sits little-endian on the stack.
func (p *Processor) pushWord(v uint16) {
	p.pushByte(byte(v >> 8))
	p.pushByte(byte(v))
}

func (p *Processor) popWord() uint16 {
	lo := p.popByte()
	hi := p.popByte()
	return uint16(lo) | uint16(hi)<<8
}

// opPUSH handles PUSH rp.
func (p *Processor) opPUSH(in operands) error {
	p.pushWord(p.Pair(in.pair()))
	return nil
}

// opPOP handles POP rp.
func (p *Processor) opPOP(in operands) error {
	p.SetPair(in.pair(), p.popWord())
	return nil
}

// opPUSHPSW handles PUSH PSW.
func (p *Processor) opPUSHPSW(in operands) error {
	p.pushByte(p.PSW())
	return nil
}

// opPOPPSW handles POP PSW.
func (p *Processor) opPOPPSW(in operands) error {
	p.SetPSW(p.popByte())
	return nil
}
