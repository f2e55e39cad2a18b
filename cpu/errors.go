package cpu

import (
	"errors"
	"fmt"
)

var (
	// ErrUnimplementedOpcode is matched by UnimplementedOpcodeError.
	ErrUnimplementedOpcode = errors.New("opcode not implemented")
	// ErrMisalignedAddress is matched by MisalignedAddressError.
	ErrMisalignedAddress = errors.New("misaligned word address")
	// ErrRestrictedOperand is matched by RestrictedOperandError.
	ErrRestrictedOperand = errors.New("restricted operand")
)

// UnimplementedOpcodeError is returned when no handler exists for an opcode.
type UnimplementedOpcodeError struct {
	// PC is the address of the first opcode byte.
	PC uint16
	// Prefix is 0x31, 0x61 or 0x71 for two-byte opcodes, 0 otherwise.
	Prefix byte
	// Opcode is the byte that failed to decode.
	Opcode byte
}

func (e *UnimplementedOpcodeError) Error() string {
	if e.Prefix != 0 {
		return fmt.Sprintf("%s: %02X %02X at %04X", ErrUnimplementedOpcode, e.Prefix, e.Opcode, e.PC)
	}
	return fmt.Sprintf("%s: %02X at %04X", ErrUnimplementedOpcode, e.Opcode, e.PC)
}

func (e *UnimplementedOpcodeError) Unwrap() error {
	return ErrUnimplementedOpcode
}

// MisalignedAddressError is returned when a word operand resolves to an odd address.
type MisalignedAddressError struct {
	Address uint16
}

func (e *MisalignedAddressError) Error() string {
	return fmt.Sprintf("%s: %04X", ErrMisalignedAddress, e.Address)
}

func (e *MisalignedAddressError) Unwrap() error {
	return ErrMisalignedAddress
}

// RestrictedOperandError is returned when an instruction is given an operand
// the hardware does not accept, such as ROL4 [HL] with HL in the SFR area.
type RestrictedOperandError struct {
	Mnemonic string
	Address  uint16
}

func (e *RestrictedOperandError) Error() string {
	return fmt.Sprintf("%s: %s on %04X", ErrRestrictedOperand, e.Mnemonic, e.Address)
}

func (e *RestrictedOperandError) Unwrap() error {
	return ErrRestrictedOperand
}
