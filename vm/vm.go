// Package vm wraps a 78K0 processor with image loading, traced execution
// and register dumps.
package vm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Urethramancer/k0emu/cpu"
	"github.com/Urethramancer/k0emu/disassembler"
	"github.com/sirupsen/logrus"
)

// ErrStepLimit is returned by Run when the step budget runs out.
var ErrStepLimit = errors.New("step limit reached")

// VM owns a processor and the logger its execution is traced to.
type VM struct {
	CPU *cpu.Processor
	log *logrus.Logger
}

// Option configures a VM.
type Option func(*VM)

// WithLogger sends traces to l instead of the standard logger.
func WithLogger(l *logrus.Logger) Option {
	return func(v *VM) {
		v.log = l
	}
}

// New creates a VM with a fresh processor.
func New(opts ...Option) *VM {
	v := &VM{CPU: cpu.New()}
	for _, opt := range opts {
		opt(v)
	}
	if v.log == nil {
		v.log = logrus.StandardLogger()
	}
	return v
}

// LoadImage loads a raw firmware image at address 0 and starts it from its
// reset vector.
func (v *VM) LoadImage(path string) error {
	code, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load image: %w", err)
	}
	if err := v.load(0, code); err != nil {
		return err
	}
	v.CPU.Reset()
	return nil
}

// LoadCode copies code to origin and points PC at it.
func (v *VM) LoadCode(origin uint16, code []byte) error {
	if err := v.load(origin, code); err != nil {
		return err
	}
	v.CPU.PC = origin
	return nil
}

func (v *VM) load(origin uint16, code []byte) error {
	if int(origin)+len(code) > cpu.MemorySize {
		return fmt.Errorf("load image: %d bytes at %04X does not fit in memory", len(code), origin)
	}
	v.CPU.LoadCode(origin, code)
	v.log.WithFields(logrus.Fields{
		"origin": fmt.Sprintf("%04X", origin),
		"size":   len(code),
	}).Debug("Image loaded")
	return nil
}

// Step executes one instruction, tracing it at debug level.
func (v *VM) Step() error {
	pc, code := v.CPU.Fetch()
	fields := logrus.Fields{
		"pc": fmt.Sprintf("%04X", pc),
		"op": fmt.Sprintf("% X", code),
	}
	if v.log.IsLevelEnabled(logrus.DebugLevel) {
		fields["asm"] = disassembler.Decode(code, pc).Text
		v.log.WithFields(fields).Debug("CPU Step")
	}

	if err := v.CPU.Step(); err != nil {
		v.log.WithFields(fields).Error(err)
		return err
	}
	return nil
}

// Run steps the processor until it halts, an instruction fails, ctx is done
// or maxSteps instructions have run. maxSteps <= 0 means no limit. It
// returns the number of instructions executed.
func (v *VM) Run(ctx context.Context, maxSteps int) (int, error) {
	n := 0
	for !v.CPU.Halted() {
		if maxSteps > 0 && n >= maxSteps {
			return n, ErrStepLimit
		}
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if err := v.Step(); err != nil {
			return n, err
		}
		n++
	}
	v.log.WithField("pc", fmt.Sprintf("%04X", v.CPU.PC)).Debug("CPU halted")
	return n, nil
}

// flagNames lists PSW flags from bit 7 down.
var flagNames = []struct {
	flag byte
	name string
}{
	{cpu.FlagIE, "IE"},
	{cpu.FlagZ, "Z"},
	{cpu.FlagRBS1, "RBS1"},
	{cpu.FlagAC, "AC"},
	{cpu.FlagRBS0, "RBS0"},
	{cpu.FlagISP, "ISP"},
	{cpu.FlagCY, "CY"},
}

// DumpRegisters prints the processor state to w.
func (v *VM) DumpRegisters(w io.Writer) {
	p := v.CPU
	var set []string
	for _, f := range flagNames {
		if p.Flag(f.flag) {
			set = append(set, f.name)
		}
	}
	flags := strings.Join(set, " ")
	if flags == "" {
		flags = "-"
	}

	fmt.Fprintf(w, "PC=%04X SP=%04X PSW=%02X [%s] RB%d\n", p.PC, p.SP(), p.PSW(), flags, p.Bank())
	for i, name := range cpu.RegNames {
		if i > 0 {
			fmt.Fprint(w, " ")
		}
		fmt.Fprintf(w, "%s=%02X", strings.ToUpper(name), p.Reg(i))
	}
	fmt.Fprintln(w)
	for i, name := range cpu.PairNames {
		if i > 0 {
			fmt.Fprint(w, " ")
		}
		fmt.Fprintf(w, "%s=%04X", strings.ToUpper(name), p.Pair(i))
	}
	fmt.Fprintln(w)
	if p.Halted() {
		fmt.Fprintln(w, "halted")
	}
}
