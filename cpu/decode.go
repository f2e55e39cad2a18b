package cpu

// handler executes one decoded instruction. PC already points at the next
// instruction when it runs.
type handler func(p *Processor, in operands) error

// instruction is one opcode table entry.
type instruction struct {
	// mnemonic is the assembler template; see Opcode.
	mnemonic string
	// size is the full encoded length, prefix included.
	size int
	exec handler
}

type opTable [256]instruction

func (t *opTable) set(op byte, mnemonic string, size int, exec handler) {
	t[op] = instruction{mnemonic: mnemonic, size: size, exec: exec}
}

var (
	baseOps  opTable
	prefix31 opTable
	prefix61 opTable
	prefix71 opTable
)

// table returns the second-level table for a prefix byte, or nil.
func table(prefix byte) *opTable {
	switch prefix {
	case Prefix31:
		return &prefix31
	case Prefix61:
		return &prefix61
	case Prefix71:
		return &prefix71
	}
	return nil
}

// Opcode describes a table entry for tools that need the encoding but not
// the behaviour.
type Opcode struct {
	// Mnemonic is a lower case template. Operand fields are written as
	// {r}, {rp}, {bit} (taken from the opcode) and {byte}, {word}, {addr16},
	// {saddr}, {sfr}, {rel}, {addr11}, {addr5} (taken from the operand bytes
	// in order).
	Mnemonic string
	// Size is the encoded length including any prefix byte.
	Size int
	// Prefixed is set for 0x31, 0x61 and 0x71 forms.
	Prefixed bool
}

// Lookup finds the opcode starting with b0. b1 is only consulted when b0 is
// a prefix.
func Lookup(b0, b1 byte) (Opcode, bool) {
	inst, prefixed := lookup(b0, b1)
	if inst.exec == nil {
		return Opcode{}, false
	}
	return Opcode{Mnemonic: inst.mnemonic, Size: inst.size, Prefixed: prefixed}, true
}

func lookup(b0, b1 byte) (*instruction, bool) {
	if t := table(b0); t != nil {
		return &t[b1], true
	}
	return &baseOps[b0], false
}

// decode finds the instruction at pc.
func (p *Processor) decode(pc uint16) (*instruction, operands, error) {
	b0 := p.Read(pc)
	b1 := p.Read(pc + 1)
	inst, prefixed := lookup(b0, b1)
	if inst.exec == nil {
		if prefixed {
			return nil, operands{}, &UnimplementedOpcodeError{PC: pc, Prefix: b0, Opcode: b1}
		}
		return nil, operands{}, &UnimplementedOpcodeError{PC: pc, Opcode: b0}
	}

	code := p.fetch(pc, inst.size)
	if prefixed {
		return inst, operands{op: code[1], args: code[2:]}, nil
	}
	return inst, operands{op: code[0], args: code[1:]}, nil
}

func (p *Processor) fetch(pc uint16, n int) []byte {
	code := make([]byte, n)
	for i := range code {
		code[i] = p.Read(pc + uint16(i))
	}
	return code
}

// Fetch returns PC and the bytes of the instruction it points at. An
// undecodable opcode yields just its opcode bytes.
func (p *Processor) Fetch() (uint16, []byte) {
	b0 := p.Read(p.PC)
	inst, prefixed := lookup(b0, p.Read(p.PC+1))
	n := inst.size
	if n == 0 {
		n = 1
		if prefixed {
			n = 2
		}
	}
	return p.PC, p.fetch(p.PC, n)
}

func init() {
	b := &baseOps

	b.set(OPNOP, "nop", 1, (*Processor).opNOP)
	b.set(OPNOT1, "not1 cy", 1, (*Processor).opNOT1)
	b.set(OPMOVWAXAbs, "movw ax,!{addr16}", 3, (*Processor).opMOVWAXAbs)
	b.set(OPMOVWAbsAX, "movw !{addr16},ax", 3, (*Processor).opMOVWAbsAX)
	b.set(OPDBNZShort, "dbnz {saddr},${rel}", 3, (*Processor).opDBNZShort)
	b.set(0x05, "xch a,[de]", 1, exchange(atDE))
	b.set(0x07, "xch a,[hl]", 1, exchange(atHL))
	b.set(OPMOVShort, "mov {saddr},#{byte}", 3, (*Processor).opMOVShortImm)
	b.set(OPMOVSFR, "mov {sfr},#{byte}", 3, (*Processor).opMOVSFRImm)
	b.set(OPSET1, "set1 cy", 1, set1(bitOfCY))
	b.set(OPCLR1, "clr1 cy", 1, clr1(bitOfCY))
	b.set(OPPUSHP, "push psw", 1, (*Processor).opPUSHPSW)
	b.set(OPPOPP, "pop psw", 1, (*Processor).opPOPPSW)
	b.set(OPROR, "ror a,1", 1, (*Processor).opROR)
	b.set(OPRORC, "rorc a,1", 1, (*Processor).opRORC)
	b.set(OPROL, "rol a,1", 1, (*Processor).opROL)
	b.set(OPROLC, "rolc a,1", 1, (*Processor).opROLC)

	b.set(0x81, "inc {saddr}", 2, (*Processor).opINCShort)
	b.set(0x83, "xch a,{saddr}", 2, exchange(atShort))
	b.set(0x85, "mov a,[de]", 1, load(atDE))
	b.set(0x87, "mov a,[hl]", 1, load(atHL))
	b.set(0x89, "movw ax,{saddr}", 2, (*Processor).opMOVWAXShort)
	b.set(OPDBNZC, "dbnz c,${rel}", 2, (*Processor).opDBNZReg)
	b.set(OPDBNZB, "dbnz b,${rel}", 2, (*Processor).opDBNZReg)
	b.set(OPBC, "bc ${rel}", 2, (*Processor).opBC)
	b.set(0x8E, "mov a,!{addr16}", 3, load(atAbs))
	b.set(OPRETI, "reti", 1, (*Processor).opRETI)

	b.set(0x91, "dec {saddr}", 2, (*Processor).opDECShort)
	b.set(0x93, "xch a,{sfr}", 2, exchange(atSFR))
	b.set(0x95, "mov [de],a", 1, store(atDE))
	b.set(0x97, "mov [hl],a", 1, store(atHL))
	b.set(0x99, "movw {saddr},ax", 2, (*Processor).opMOVWShortAX)
	b.set(OPCALL, "call !{addr16}", 3, (*Processor).opCALL)
	b.set(OPBRAbs, "br !{addr16}", 3, (*Processor).opBRAbs)
	b.set(OPBNC, "bnc ${rel}", 2, (*Processor).opBNC)
	b.set(0x9E, "mov !{addr16},a", 3, store(atAbs))
	b.set(OPRETB, "retb", 1, (*Processor).opRETI)

	b.set(0xA9, "movw ax,{sfr}", 2, (*Processor).opMOVWAXSFR)
	b.set(0xAA, "mov a,[hl+c]", 1, load(atHLC))
	b.set(0xAB, "mov a,[hl+b]", 1, load(atHLB))
	b.set(OPBZ, "bz ${rel}", 2, (*Processor).opBZ)
	b.set(0xAE, "mov a,[hl+{byte}]", 2, load(atHLByte))
	b.set(OPRET, "ret", 1, (*Processor).opRET)

	b.set(0xB9, "movw {sfr},ax", 2, (*Processor).opMOVWSFRAX)
	b.set(0xBA, "mov [hl+c],a", 1, store(atHLC))
	b.set(0xBB, "mov [hl+b],a", 1, store(atHLB))
	b.set(OPBNZ, "bnz ${rel}", 2, (*Processor).opBNZ)
	b.set(0xBE, "mov [hl+{byte}],a", 2, store(atHLByte))
	b.set(OPBRK, "brk", 1, (*Processor).opBRK)

	b.set(OPADDW, "addw ax,#{word}", 3, (*Processor).opADDW)
	b.set(0xCE, "xch a,!{addr16}", 3, exchange(atAbs))
	b.set(OPSUBW, "subw ax,#{word}", 3, (*Processor).opSUBW)
	b.set(0xDE, "xch a,[hl+{byte}]", 2, exchange(atHLByte))
	b.set(OPCMPW, "cmpw ax,#{word}", 3, (*Processor).opCMPW)
	b.set(OPMOVWShort, "movw {saddr},#{word}", 4, (*Processor).opMOVWShortImm)
	b.set(0xF0, "mov a,{saddr}", 2, load(atShort))
	b.set(0xF2, "mov {saddr},a", 2, store(atShort))
	b.set(0xF4, "mov a,{sfr}", 2, load(atSFR))
	b.set(0xF6, "mov {sfr},a", 2, store(atSFR))
	b.set(OPBR, "br ${rel}", 2, (*Processor).opBR)
	b.set(OPMOVWSFR, "movw {sfr},#{word}", 4, (*Processor).opMOVWSFRImm)

	for t := byte(0); t < 32; t++ {
		b.set(OPCALLT|t<<1, "callt [{addr5}]", 1, (*Processor).opCALLT)
	}

	// Register families. A is not a valid operand of its own XCH and MOV forms.
	for r := byte(0); r < 8; r++ {
		if r != RegA {
			b.set(OPXCHReg|r, "xch a,{r}", 1, exchange(atReg))
			b.set(OPMOVAReg|r, "mov a,{r}", 1, (*Processor).opMOVAReg)
			b.set(OPMOVRegA|r, "mov {r},a", 1, (*Processor).opMOVRegA)
		}
		b.set(OPINCReg|r, "inc {r}", 1, (*Processor).opINC)
		b.set(OPDECReg|r, "dec {r}", 1, (*Processor).opDEC)
		b.set(OPMOVRegImm|r, "mov {r},#{byte}", 2, (*Processor).opMOVRegImm)
	}

	for rp := byte(0); rp < 4; rp++ {
		f := rp << 1
		b.set(OPMOVWImm|f, "movw {rp},#{word}", 3, (*Processor).opMOVWRegImm)
		b.set(OPINCW|f, "incw {rp}", 1, (*Processor).opINCW)
		b.set(OPDECW|f, "decw {rp}", 1, (*Processor).opDECW)
		b.set(OPPOP|f, "pop {rp}", 1, (*Processor).opPOP)
		b.set(OPPUSH|f, "push {rp}", 1, (*Processor).opPUSH)
		if rp != PairAX {
			b.set(0xC0|f, "movw ax,{rp}", 1, (*Processor).opMOVWAXReg)
			b.set(0xD0|f, "movw {rp},ax", 1, (*Processor).opMOVWRegAX)
			b.set(0xE0|f, "xchw ax,{rp}", 1, (*Processor).opXCHW)
		}
	}

	// Rows 0-7 of the ALU block and the bit families share the high nibble:
	// it is the operation for the former and the bit number for the latter.
	for n := byte(0); n < 8; n++ {
		hi := n << 4
		name := aluNames[n]

		b.set(hi|0x08, name+" a,!{addr16}", 3, (*Processor).opALUAbs)
		b.set(hi|0x09, name+" a,[hl+{byte}]", 2, (*Processor).opALUHLByte)
		b.set(hi|0x0D, name+" a,#{byte}", 2, (*Processor).opALUImm)
		b.set(hi|0x0E, name+" a,{saddr}", 2, (*Processor).opALUShort)
		b.set(hi|0x0F, name+" a,[hl]", 1, (*Processor).opALUHL)
		b.set(hi|0x88, name+" {saddr},#{byte}", 3, (*Processor).opALUShortImm)

		b.set(OPSET1Short|hi, "set1 {saddr}.{bit}", 2, set1(bitOfShort))
		b.set(OPCLR1Short|hi, "clr1 {saddr}.{bit}", 2, clr1(bitOfShort))
		b.set(OPCALLF|hi, "callf !{addr11}", 2, (*Processor).opCALLF)
		b.set(OPBTShort|hi, "bt {saddr}.{bit},${rel}", 3, bt(bitOfShort))

		prefix31.set(hi|0x0A, name+" a,[hl+c]", 2, (*Processor).opALUHLC)
		prefix31.set(hi|0x0B, name+" a,[hl+b]", 2, (*Processor).opALUHLB)
		prefix31.set(hi|0x01, "btclr {saddr}.{bit},${rel}", 4, btclr(bitOfShort))
		prefix31.set(hi|0x03, "bf {saddr}.{bit},${rel}", 4, bf(bitOfShort))
		prefix31.set(hi|0x05, "btclr {sfr}.{bit},${rel}", 4, btclr(bitOfSFR))
		prefix31.set(hi|0x06, "bt {sfr}.{bit},${rel}", 4, bt(bitOfSFR))
		prefix31.set(hi|0x07, "bf {sfr}.{bit},${rel}", 4, bf(bitOfSFR))
		prefix31.set(hi|0x0D, "btclr a.{bit},${rel}", 3, btclr(bitOfA))
		prefix31.set(hi|0x0E, "bt a.{bit},${rel}", 3, bt(bitOfA))
		prefix31.set(hi|0x0F, "bf a.{bit},${rel}", 3, bf(bitOfA))
		prefix31.set(hi|0x85, "btclr [hl].{bit},${rel}", 3, btclr(bitOfHL))
		prefix31.set(hi|0x86, "bt [hl].{bit},${rel}", 3, bt(bitOfHL))
		prefix31.set(hi|0x87, "bf [hl].{bit},${rel}", 3, bf(bitOfHL))

		for r := byte(0); r < 8; r++ {
			prefix61.set(hi|r, name+" {r},a", 2, (*Processor).opALURegA)
			prefix61.set(hi|0x08|r, name+" a,{r}", 2, (*Processor).opALUAReg)
		}
		prefix61.set(hi|0x89, "mov1 a.{bit},cy", 2, mov1FromCY(bitOfA))
		prefix61.set(hi|0x8A, "set1 a.{bit}", 2, set1(bitOfA))
		prefix61.set(hi|0x8B, "clr1 a.{bit}", 2, clr1(bitOfA))
		prefix61.set(hi|0x8C, "mov1 cy,a.{bit}", 2, mov1ToCY(bitOfA))
		prefix61.set(hi|0x8D, "and1 cy,a.{bit}", 2, and1(bitOfA))
		prefix61.set(hi|0x8E, "or1 cy,a.{bit}", 2, or1(bitOfA))
		prefix61.set(hi|0x8F, "xor1 cy,a.{bit}", 2, xor1(bitOfA))

		prefix71.set(hi|0x01, "mov1 {saddr}.{bit},cy", 3, mov1FromCY(bitOfShort))
		prefix71.set(hi|0x04, "mov1 cy,{saddr}.{bit}", 3, mov1ToCY(bitOfShort))
		prefix71.set(hi|0x05, "and1 cy,{saddr}.{bit}", 3, and1(bitOfShort))
		prefix71.set(hi|0x06, "or1 cy,{saddr}.{bit}", 3, or1(bitOfShort))
		prefix71.set(hi|0x07, "xor1 cy,{saddr}.{bit}", 3, xor1(bitOfShort))
		prefix71.set(hi|0x09, "mov1 {sfr}.{bit},cy", 3, mov1FromCY(bitOfSFR))
		prefix71.set(hi|0x0A, "set1 {sfr}.{bit}", 3, set1(bitOfSFR))
		prefix71.set(hi|0x0B, "clr1 {sfr}.{bit}", 3, clr1(bitOfSFR))
		prefix71.set(hi|0x0C, "mov1 cy,{sfr}.{bit}", 3, mov1ToCY(bitOfSFR))
		prefix71.set(hi|0x0D, "and1 cy,{sfr}.{bit}", 3, and1(bitOfSFR))
		prefix71.set(hi|0x0E, "or1 cy,{sfr}.{bit}", 3, or1(bitOfSFR))
		prefix71.set(hi|0x0F, "xor1 cy,{sfr}.{bit}", 3, xor1(bitOfSFR))
		prefix71.set(hi|0x81, "mov1 [hl].{bit},cy", 2, mov1FromCY(bitOfHL))
		prefix71.set(hi|0x82, "set1 [hl].{bit}", 2, set1(bitOfHL))
		prefix71.set(hi|0x83, "clr1 [hl].{bit}", 2, clr1(bitOfHL))
		prefix71.set(hi|0x84, "mov1 cy,[hl].{bit}", 2, mov1ToCY(bitOfHL))
		prefix71.set(hi|0x85, "and1 cy,[hl].{bit}", 2, and1(bitOfHL))
		prefix71.set(hi|0x86, "or1 cy,[hl].{bit}", 2, or1(bitOfHL))
		prefix71.set(hi|0x87, "xor1 cy,[hl].{bit}", 2, xor1(bitOfHL))
	}

	prefix31.set(OPROL4, "rol4 [hl]", 2, (*Processor).opROL4)
	prefix31.set(OPDIVUW, "divuw c", 2, (*Processor).opDIVUW)
	prefix31.set(OPMULU, "mulu x", 2, (*Processor).opMULU)
	prefix31.set(0x8A, "xch a,[hl+c]", 2, exchange(atHLC))
	prefix31.set(0x8B, "xch a,[hl+b]", 2, exchange(atHLB))
	prefix31.set(OPROR4, "ror4 [hl]", 2, (*Processor).opROR4)
	prefix31.set(OPBRAX, "br ax", 2, (*Processor).opBRAX)

	prefix61.set(OPADJBA, "adjba", 2, (*Processor).opADJBA)
	prefix61.set(OPADJBS, "adjbs", 2, (*Processor).opADJBS)
	prefix61.set(OPSEL0, "sel rb0", 2, (*Processor).opSEL)
	prefix61.set(OPSEL1, "sel rb1", 2, (*Processor).opSEL)
	prefix61.set(OPSEL2, "sel rb2", 2, (*Processor).opSEL)
	prefix61.set(OPSEL3, "sel rb3", 2, (*Processor).opSEL)

	prefix71.set(OPSTOP, "stop", 2, (*Processor).opHALT)
	prefix71.set(OPHALT, "halt", 2, (*Processor).opHALT)
}
