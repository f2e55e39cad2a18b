package cpu

// Escape prefixes selecting the second-level opcode tables.
const (
	Prefix31 = 0x31
	Prefix61 = 0x61
	Prefix71 = 0x71
)

// Single-byte opcodes with no embedded field.
const (
	OPNOP   = 0x00 // NOP
	OPNOT1  = 0x01 // NOT1 CY
	OPSET1  = 0x20 // SET1 CY
	OPCLR1  = 0x21 // CLR1 CY
	OPPUSHP = 0x22 // PUSH PSW
	OPPOPP  = 0x23 // POP PSW
	OPROR   = 0x24 // ROR A,1
	OPRORC  = 0x25 // RORC A,1
	OPROL   = 0x26 // ROL A,1
	OPROLC  = 0x27 // ROLC A,1
	OPRETI  = 0x8F // RETI
	OPRETB  = 0x9F // RETB
	OPRET   = 0xAF // RET
	OPBRK   = 0xBF // BRK
)

// Opcodes with operands.
const (
	OPMOVWAXAbs = 0x02 // MOVW AX,!addr16
	OPMOVWAbsAX = 0x03 // MOVW !addr16,AX
	OPDBNZShort = 0x04 // DBNZ saddr,$addr16
	OPMOVShort  = 0x11 // MOV saddr,#byte
	OPMOVSFR    = 0x13 // MOV sfr,#byte
	OPDBNZC     = 0x8A // DBNZ C,$addr16
	OPDBNZB     = 0x8B // DBNZ B,$addr16
	OPBC        = 0x8D // BC $addr16
	OPBNC       = 0x9D // BNC $addr16
	OPBZ        = 0xAD // BZ $addr16
	OPBNZ       = 0xBD // BNZ $addr16
	OPCALL      = 0x9A // CALL !addr16
	OPBRAbs     = 0x9B // BR !addr16
	OPBR        = 0xFA // BR $addr16
	OPADDW      = 0xCA // ADDW AX,#word
	OPSUBW      = 0xDA // SUBW AX,#word
	OPCMPW      = 0xEA // CMPW AX,#word
	OPMOVWShort = 0xEE // MOVW saddrp,#word
	OPMOVWSFR   = 0xFE // MOVW sfrp,#word
)

// Base opcodes of families; the embedded register, pair or bit is OR'd in.
const (
	OPXCHReg    = 0x30 // XCH A,r
	OPINCReg    = 0x40 // INC r
	OPDECReg    = 0x50 // DEC r
	OPMOVAReg   = 0x60 // MOV A,r
	OPMOVRegA   = 0x70 // MOV r,A
	OPMOVRegImm = 0xA0 // MOV r,#byte
	OPMOVWImm   = 0x10 // MOVW rp,#word (rp<<1)
	OPINCW      = 0x80 // INCW rp (rp<<1)
	OPDECW      = 0x90 // DECW rp (rp<<1)
	OPPOP       = 0xB0 // POP rp (rp<<1)
	OPPUSH      = 0xB1 // PUSH rp (rp<<1)
	OPSET1Short = 0x0A // SET1 saddr.bit (bit<<4)
	OPCLR1Short = 0x0B // CLR1 saddr.bit (bit<<4)
	OPCALLF     = 0x0C // CALLF !addr11 (page<<4)
	OPBTShort   = 0x8C // BT saddr.bit,$addr16 (bit<<4)
	OPCALLT     = 0xC1 // CALLT [addr5] (index<<1)
)

// Second bytes after Prefix31.
const (
	OPROL4  = 0x80 // ROL4 [HL]
	OPDIVUW = 0x82 // DIVUW C
	OPMULU  = 0x88 // MULU X
	OPROR4  = 0x90 // ROR4 [HL]
	OPBRAX  = 0x98 // BR AX
)

// Second bytes after Prefix61.
const (
	OPADJBA = 0x80 // ADJBA
	OPADJBS = 0x90 // ADJBS
	OPSEL0  = 0xD0 // SEL RB0
	OPSEL1  = 0xD8 // SEL RB1
	OPSEL2  = 0xF0 // SEL RB2
	OPSEL3  = 0xF8 // SEL RB3
)

// Second bytes after Prefix71.
const (
	OPSTOP = 0x00 // STOP
	OPHALT = 0x10 // HALT
)
