package cpu

import "fmt"

// Step fetches, decodes and executes a single instruction. A failed step
// leaves PC on the offending instruction.
func (p *Processor) Step() error {
	pc := p.PC

	// Decode
	inst, in, err := p.decode(pc)
	if err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}

	// Execute
	p.PC = pc + uint16(inst.size)
	err = inst.exec(p, in)
	if err != nil {
		p.PC = pc
		return fmt.Errorf("execution failed at %04X: %w", pc, err)
	}

	return nil
}
