package cpu

// opBRK handles BRK: PSW and the return address go on the stack, interrupts
// are disabled and execution continues at the BRK vector.
func (p *Processor) opBRK(in operands) error {
	p.pushByte(p.PSW())
	p.pushWord(p.PC)
	p.setFlag(FlagIE, false)
	p.PC = p.ReadWord(BRKVector)
	return nil
}

// opRETI handles RETI and RETB, which behave the same here since no
// interrupt controller is modelled.
func (p *Processor) opRETI(in operands) error {
	p.PC = p.popWord()
	p.SetPSW(p.popByte())
	return nil
}

// opHALT handles HALT and STOP. With no interrupt sources the processor
// would never wake, so both simply mark it halted.
func (p *Processor) opHALT(in operands) error {
	p.halted = true
	return nil
}
