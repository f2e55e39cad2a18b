package cpu

// Processor is a 78K0 (uPD78F0831Y) core. All architectural state apart from
// the program counter lives in its 64 KiB memory: the register banks, the
// stack pointer and the PSW are memory mapped, so every access goes through
// Read and Write.
type Processor struct {
	// mem is the whole address space. Only Read and Write may touch it.
	mem [MemorySize]byte
	// PC is the program counter.
	PC uint16

	// halted is set by HALT and STOP.
	halted bool
}

// Memory map and vector locations.
const (
	// MemorySize is the size of the 16-bit address space.
	MemorySize = 0x10000
	// ReservedStart is the first address of the unpopulated region.
	ReservedStart = 0xF800
	// ReservedEnd is the first address after the unpopulated region.
	ReservedEnd = 0xFB00
	// ReservedValue is what the unpopulated region reads as.
	ReservedValue = 0x08

	// RegisterBankBase is the address of X in bank 0. Bank n starts 8n bytes lower.
	RegisterBankBase = 0xFEF8
	// AddrSP is the stack pointer (little-endian word).
	AddrSP = 0xFF1C
	// AddrPSW is the processor status word.
	AddrPSW = 0xFF1E

	// ResetVector holds the start address.
	ResetVector = 0x0000
	// BRKVector holds the BRK handler address.
	BRKVector = 0x003E
	// CallTableBase is the first CALLT vector.
	CallTableBase = 0x0040
	// CallFBase is the start of the CALLF area.
	CallFBase = 0x0800

	// DefaultSP matches the stack pointer the on-chip debugger leaves behind.
	DefaultSP = 0xFE1F
)

// PSW flags.
const (
	// FlagCY is carry.
	FlagCY = 1 << 0
	// FlagISP is the in-service priority flag.
	FlagISP = 1 << 1
	// FlagRBS0 is register bank select bit 0.
	FlagRBS0 = 1 << 3
	// FlagAC is auxiliary carry.
	FlagAC = 1 << 4
	// FlagRBS1 is register bank select bit 1.
	FlagRBS1 = 1 << 5
	// FlagZ is zero.
	FlagZ = 1 << 6
	// FlagIE is interrupt enable.
	FlagIE = 1 << 7

	// pswStuck is the PSW bit that always reads 0.
	pswStuck = 1 << 2
)

// New creates a processor with cleared memory, the debugger's stack pointer
// and PC loaded from the reset vector.
func New() *Processor {
	p := &Processor{}
	p.SetSP(DefaultSP)
	p.Reset()
	return p
}

// Reset reloads PC from the reset vector and clears the halt state. Memory is
// left alone so an image loaded beforehand starts from its own vector.
func (p *Processor) Reset() {
	p.PC = p.ReadWord(ResetVector)
	p.halted = false
}

// LoadCode copies code into memory at addr. Writes go through Write, so the
// reserved region and PSW keep their invariants.
func (p *Processor) LoadCode(addr uint16, code []byte) {
	for i, b := range code {
		p.Write(addr+uint16(i), b)
	}
}

// Halted reports whether HALT or STOP has been executed since the last Reset
// or Call.
func (p *Processor) Halted() bool {
	return p.halted
}

// PSW returns the processor status word.
func (p *Processor) PSW() byte {
	return p.Read(AddrPSW)
}

// SetPSW writes the processor status word.
func (p *Processor) SetPSW(v byte) {
	p.Write(AddrPSW, v)
}

// SP returns the stack pointer.
func (p *Processor) SP() uint16 {
	return p.ReadWord(AddrSP)
}

// SetSP writes the stack pointer.
func (p *Processor) SetSP(v uint16) {
	p.WriteWord(AddrSP, v)
}

// Flag reports whether all bits in f are set in PSW.
func (p *Processor) Flag(f byte) bool {
	return p.PSW()&f == f
}

// setFlags replaces the PSW bits selected by mask with those in f.
func (p *Processor) setFlags(f, mask byte) {
	p.SetPSW(p.PSW()&^mask | f&mask)
}

// setFlag sets or clears a single PSW flag.
func (p *Processor) setFlag(f byte, on bool) {
	if on {
		p.setFlags(f, f)
		return
	}
	p.setFlags(0, f)
}

// carry returns CY as 0 or 1.
func (p *Processor) carry() byte {
	return p.PSW() & FlagCY
}
