package cpu

import (
	"context"
	"fmt"
)

// Read returns the byte at addr. The unpopulated region always reads as
// ReservedValue.
func (p *Processor) Read(addr uint16) byte {
	if addr >= ReservedStart && addr < ReservedEnd {
		return ReservedValue
	}
	return p.mem[addr]
}

// Write stores v at addr. Writes to the unpopulated region are dropped and
// bit 2 of the PSW is forced to 0.
func (p *Processor) Write(addr uint16, v byte) {
	if addr >= ReservedStart && addr < ReservedEnd {
		return
	}
	if addr == AddrPSW {
		v &^= pswStuck
	}
	p.mem[addr] = v
}

// ReadWord reads a little-endian word at addr. The high byte comes from
// addr+1, wrapping at the top of memory.
func (p *Processor) ReadWord(addr uint16) uint16 {
	return uint16(p.Read(addr)) | uint16(p.Read(addr+1))<<8
}

// WriteWord writes a little-endian word at addr.
func (p *Processor) WriteWord(addr uint16, v uint16) {
	p.Write(addr, byte(v))
	p.Write(addr+1, byte(v>>8))
}

// ReadMemory returns n bytes starting at addr, wrapping at the top of memory.
func (p *Processor) ReadMemory(addr uint16, n int) ([]byte, error) {
	if n < 0 || n > MemorySize {
		return nil, fmt.Errorf("read of %d bytes at %04X: invalid length", n, addr)
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = p.Read(addr + uint16(i))
	}
	return out, nil
}

// WriteMemory stores data starting at addr, wrapping at the top of memory.
func (p *Processor) WriteMemory(addr uint16, data []byte) error {
	if len(data) > MemorySize {
		return fmt.Errorf("write of %d bytes at %04X: invalid length", len(data), addr)
	}
	p.LoadCode(addr, data)
	return nil
}

// Call runs the subroutine at addr as if it had been called from the current
// PC, and returns once it has returned to that PC with the stack pointer
// restored. ctx is checked between instructions. A halt left over from an
// earlier run is cleared first.
func (p *Processor) Call(ctx context.Context, addr uint16) error {
	p.halted = false
	ret := p.PC
	sp := p.SP()
	p.pushWord(ret)
	p.PC = addr

	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("call %04X: %w", addr, err)
		}
		if err := p.Step(); err != nil {
			return fmt.Errorf("call %04X: %w", addr, err)
		}
		if p.PC == ret && p.SP() == sp {
			return nil
		}
		if p.halted {
			return fmt.Errorf("call %04X: processor halted at %04X", addr, p.PC)
		}
	}
}
