package cpu

// opNOP handles NOP.
func (p *Processor) opNOP(in operands) error {
	return nil
}

// opMOVRegImm handles MOV r,#byte.
func (p *Processor) opMOVRegImm(in operands) error {
	p.SetReg(in.reg(), in.args[0])
	return nil
}

// opMOVAReg handles MOV A,r.
func (p *Processor) opMOVAReg(in operands) error {
	p.SetA(p.Reg(in.reg()))
	return nil
}

// opMOVRegA handles MOV r,A.
func (p *Processor) opMOVRegA(in operands) error {
	p.SetReg(in.reg(), p.A())
	return nil
}

// opMOVShortImm handles MOV saddr,#byte.
func (p *Processor) opMOVShortImm(in operands) error {
	p.Write(in.saddr(), in.args[1])
	return nil
}

// opMOVSFRImm handles MOV sfr,#byte.
func (p *Processor) opMOVSFRImm(in operands) error {
	p.Write(in.sfr(), in.args[1])
	return nil
}

// load returns an operation that moves the byte at the resolved address into A.
func load(resolve func(*Processor, operands) uint16) handler {
	return func(p *Processor, in operands) error {
		p.SetA(p.Read(resolve(p, in)))
		return nil
	}
}

// store returns an operation that moves A to the resolved address.
func store(resolve func(*Processor, operands) uint16) handler {
	return func(p *Processor, in operands) error {
		p.Write(resolve(p, in), p.A())
		return nil
	}
}

// exchange returns an operation that swaps A with the byte at the resolved address.
func exchange(resolve func(*Processor, operands) uint16) handler {
	return func(p *Processor, in operands) error {
		addr := resolve(p, in)
		a := p.A()
		p.SetA(p.Read(addr))
		p.Write(addr, a)
		return nil
	}
}

// Address resolvers shared by the load, store and exchange forms.
func atShort(p *Processor, in operands) uint16  { return in.saddr() }
func atSFR(p *Processor, in operands) uint16    { return in.sfr() }
func atAbs(p *Processor, in operands) uint16    { return in.word(0) }
func atDE(p *Processor, in operands) uint16     { return p.DE() }
func atHL(p *Processor, in operands) uint16     { return p.BasedHL() }
func atHLByte(p *Processor, in operands) uint16 { return p.BasedHLByte(in.args[0]) }
func atHLB(p *Processor, in operands) uint16    { return p.BasedHLB() }
func atHLC(p *Processor, in operands) uint16    { return p.BasedHLC() }
func atReg(p *Processor, in operands) uint16    { return p.regAddr(in.reg()) }

// opMOVWRegImm handles MOVW rp,#word.
func (p *Processor) opMOVWRegImm(in operands) error {
	p.SetPair(in.pair(), in.word(0))
	return nil
}

// opMOVWShortImm handles MOVW saddrp,#word.
func (p *Processor) opMOVWShortImm(in operands) error {
	addr, err := ShortAddrPair(in.args[0])
	if err != nil {
		return err
	}
	p.WriteWord(addr, in.word(1))
	return nil
}

// opMOVWSFRImm handles MOVW sfrp,#word.
func (p *Processor) opMOVWSFRImm(in operands) error {
	addr, err := SFRAddrPair(in.args[0])
	if err != nil {
		return err
	}
	p.WriteWord(addr, in.word(1))
	return nil
}

// opMOVWAXShort handles MOVW AX,saddrp.
func (p *Processor) opMOVWAXShort(in operands) error {
	addr, err := ShortAddrPair(in.args[0])
	if err != nil {
		return err
	}
	p.SetAX(p.ReadWord(addr))
	return nil
}

// opMOVWShortAX handles MOVW saddrp,AX.
func (p *Processor) opMOVWShortAX(in operands) error {
	addr, err := ShortAddrPair(in.args[0])
	if err != nil {
		return err
	}
	p.WriteWord(addr, p.AX())
	return nil
}

// opMOVWAXSFR handles MOVW AX,sfrp.
func (p *Processor) opMOVWAXSFR(in operands) error {
	addr, err := SFRAddrPair(in.args[0])
	if err != nil {
		return err
	}
	p.SetAX(p.ReadWord(addr))
	return nil
}

// opMOVWSFRAX handles MOVW sfrp,AX.
func (p *Processor) opMOVWSFRAX(in operands) error {
	addr, err := SFRAddrPair(in.args[0])
	if err != nil {
		return err
	}
	p.WriteWord(addr, p.AX())
	return nil
}

// opMOVWAXAbs handles MOVW AX,!addr16.
func (p *Processor) opMOVWAXAbs(in operands) error {
	addr, err := AbsolutePair(in.args[0], in.args[1])
	if err != nil {
		return err
	}
	p.SetAX(p.ReadWord(addr))
	return nil
}

// opMOVWAbsAX handles MOVW !addr16,AX.
func (p *Processor) opMOVWAbsAX(in operands) error {
	addr, err := AbsolutePair(in.args[0], in.args[1])
	if err != nil {
		return err
	}
	p.WriteWord(addr, p.AX())
	return nil
}

// opMOVWAXReg handles MOVW AX,rp.
func (p *Processor) opMOVWAXReg(in operands) error {
	p.SetAX(p.Pair(in.pair()))
	return nil
}

// opMOVWRegAX handles MOVW rp,AX.
func (p *Processor) opMOVWRegAX(in operands) error {
	p.SetPair(in.pair(), p.AX())
	return nil
}

// opXCHW handles XCHW AX,rp.
func (p *Processor) opXCHW(in operands) error {
	ax := p.AX()
	p.SetAX(p.Pair(in.pair()))
	p.SetPair(in.pair(), ax)
	return nil
}
