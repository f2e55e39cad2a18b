// Package debugger speaks the byte protocol of the on-chip debug monitor.
// A Client drives real hardware (or anything else serving the protocol) and
// a Server exposes any Target, such as the emulator, the same way.
//
// Every exchange is a command byte with little-endian address operands,
// answered by the lower case command byte, any data, and the '>' prompt:
//
//	R lo hi n        -> r <n bytes> >   (n = 0 reads 256 bytes)
//	W lo hi n <data> -> w >
//	B lo hi          -> b >             (after the routine returns)
//
// A failing command is answered with "e>" and an unknown one with "?>".
package debugger

import (
	"context"
	"errors"
)

// Protocol bytes.
const (
	CmdRead  = 'R'
	CmdWrite = 'W'
	CmdCall  = 'B'

	AckRead  = 'r'
	AckWrite = 'w'
	AckCall  = 'b'

	Fault   = 'e'
	Unknown = '?'
	Prompt  = '>'

	// MaxTransfer is the most bytes one R or W command moves.
	MaxTransfer = 256
)

var (
	// ErrUnexpectedResponse is returned when the other end answers out of protocol.
	ErrUnexpectedResponse = errors.New("unexpected response")
	// ErrUnknownCommand is returned when a command byte is not recognised.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrTargetFault is returned when the target could not carry out a command.
	ErrTargetFault = errors.New("target fault")
)

// Target is memory and code that can be inspected and run remotely.
type Target interface {
	ReadMemory(addr uint16, n int) ([]byte, error)
	WriteMemory(addr uint16, data []byte) error
	Call(ctx context.Context, addr uint16) error
}

// lengthByte encodes a transfer length, 256 being sent as 0.
func lengthByte(n int) byte {
	return byte(n)
}

// transferLength decodes a length byte.
func transferLength(b byte) int {
	if b == 0 {
		return MaxTransfer
	}
	return int(b)
}
