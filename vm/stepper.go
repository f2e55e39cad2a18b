package vm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Urethramancer/k0emu/disassembler"
	"golang.org/x/term"
)

// Stepper single-steps a VM from keyboard input. Space or enter executes
// one instruction, r runs to completion and q quits.
type Stepper struct {
	vm  *VM
	in  io.Reader
	out io.Writer
}

// NewStepper creates a Stepper reading keys from in and printing to out.
func NewStepper(v *VM, in io.Reader, out io.Writer) *Stepper {
	return &Stepper{vm: v, in: in, out: out}
}

// Loop runs until the user quits, the processor halts or an instruction
// fails. A terminal on in is switched to raw mode for the duration.
func (s *Stepper) Loop(ctx context.Context) error {
	if f, ok := s.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		old, err := term.MakeRaw(int(f.Fd()))
		if err != nil {
			return fmt.Errorf("stepper: %w", err)
		}
		defer term.Restore(int(f.Fd()), old)
	}

	s.show()
	key := make([]byte, 1)
	for !s.vm.CPU.Halted() {
		if _, err := s.in.Read(key); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("stepper: %w", err)
		}

		switch key[0] {
		case ' ', '\r', '\n':
			if err := s.vm.Step(); err != nil {
				return err
			}
			s.show()
		case 'r':
			_, err := s.vm.Run(ctx, 0)
			s.show()
			return err
		case 'q', 3:
			return nil
		}
	}
	return nil
}

// show prints the registers and the next instruction. Lines end in CRLF
// since the terminal may be raw.
func (s *Stepper) show() {
	w := crlf{s.out}
	s.vm.DumpRegisters(w)
	pc, code := s.vm.CPU.Fetch()
	fmt.Fprintf(w, "%04X  % -12X %s\n", pc, code, disassembler.Decode(code, pc).Text)
}

// crlf translates LF to CRLF.
type crlf struct {
	w io.Writer
}

func (c crlf) Write(p []byte) (int, error) {
	start := 0
	for i, b := range p {
		if b != '\n' {
			continue
		}
		if _, err := c.w.Write(p[start:i]); err != nil {
			return start, err
		}
		if _, err := c.w.Write([]byte("\r\n")); err != nil {
			return i, err
		}
		start = i + 1
	}
	if _, err := c.w.Write(p[start:]); err != nil {
		return start, err
	}
	return len(p), nil
}
