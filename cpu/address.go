package cpu

// ShortAddr resolves a saddr operand. Offsets below 0x20 land in the SFR page
// (FF00-FF1F); the rest address FE20-FEFF.
func ShortAddr(lo byte) uint16 {
	if lo < 0x20 {
		return 0xFF00 + uint16(lo)
	}
	return 0xFE00 + uint16(lo)
}

// SFRAddr resolves an sfr operand.
func SFRAddr(lo byte) uint16 {
	return 0xFF00 + uint16(lo)
}

// ShortAddrPair resolves a saddrp operand, which must be even.
func ShortAddrPair(lo byte) (uint16, error) {
	return aligned(ShortAddr(lo))
}

// SFRAddrPair resolves an sfrp operand, which must be even.
func SFRAddrPair(lo byte) (uint16, error) {
	return aligned(SFRAddr(lo))
}

// Absolute resolves an !addr16 operand.
func Absolute(lo, hi byte) uint16 {
	return uint16(lo) | uint16(hi)<<8
}

// AbsolutePair resolves an !addr16 operand of a word instruction, which must be even.
func AbsolutePair(lo, hi byte) (uint16, error) {
	return aligned(Absolute(lo, hi))
}

func aligned(addr uint16) (uint16, error) {
	if addr&1 != 0 {
		return 0, &MisalignedAddressError{Address: addr}
	}
	return addr, nil
}

// BasedHL resolves [HL].
func (p *Processor) BasedHL() uint16 {
	return p.HL()
}

// BasedHLByte resolves [HL+byte].
func (p *Processor) BasedHLByte(offset byte) uint16 {
	return p.HL() + uint16(offset)
}

// BasedHLB resolves [HL+B].
func (p *Processor) BasedHLB() uint16 {
	return p.HL() + uint16(p.B())
}

// BasedHLC resolves [HL+C].
func (p *Processor) BasedHLC() uint16 {
	return p.HL() + uint16(p.C())
}

// operands is the decoded view of the instruction being executed.
type operands struct {
	// op is the byte that selected the handler: the first byte, or the
	// second for 0x31/0x61/0x71 forms.
	op byte
	// args are the bytes following op.
	args []byte
}

// reg is the register index embedded in the low three bits of op.
func (in operands) reg() int {
	return int(in.op & 7)
}

// pair is the register pair index embedded in bits 1-2 of op.
func (in operands) pair() int {
	return int(in.op>>1) & 3
}

// bit is the bit index embedded in bits 4-6 of op.
func (in operands) bit() byte {
	return (in.op >> 4) & 7
}

// word returns the little-endian word at args[i].
func (in operands) word(i int) uint16 {
	return Absolute(in.args[i], in.args[i+1])
}

// rel returns the signed displacement in the last argument byte.
func (in operands) rel() uint16 {
	return uint16(int8(in.args[len(in.args)-1]))
}

// saddr resolves args[0] as a saddr operand.
func (in operands) saddr() uint16 {
	return ShortAddr(in.args[0])
}

// sfr resolves args[0] as an sfr operand.
func (in operands) sfr() uint16 {
	return SFRAddr(in.args[0])
}
