package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/Urethramancer/k0emu/debugger"
	"github.com/Urethramancer/k0emu/disassembler"
	"github.com/Urethramancer/k0emu/vm"
	"github.com/grimdork/climate/arg"
	"github.com/sirupsen/logrus"
)

// run78k0 loads a 78K0 image into the emulator and runs it, or serves it to
// dbg78k0 over a pseudoterminal.
func main() {
	opt := arg.New("run78k0")
	opt.SetDefaultHelp(true)
	opt.SetFlag(arg.GroupDefault, "v", "verbose", "Trace every instruction.")
	opt.SetOption(arg.GroupDefault, "n", "steps", "Stop after this many instructions (0 runs until HALT).", 1000000, false, arg.VarInt, nil)
	opt.SetOption(arg.GroupDefault, "o", "origin", "Load raw code at this address and start there, instead of loading a ROM image at 0.", "", false, arg.VarString, nil)
	opt.SetFlag(arg.GroupDefault, "i", "interactive", "Single-step on the terminal.")
	opt.SetFlag(arg.GroupDefault, "", "serve", "Serve the loaded emulator on a new pseudoterminal instead of running it.")
	opt.SetPositional("IMAGE", "Binary image to load.", "", true, arg.VarString)
	opt.ParseEnvironment("K0EMU", "")

	err := opt.Parse(os.Args[1:])
	if err != nil {
		if errors.Is(err, arg.ErrNoArgs) {
			opt.PrintHelp()
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		os.Exit(2)
	}

	image := opt.GetPosString("IMAGE")
	if image == "" {
		opt.PrintHelp()
		os.Exit(2)
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	if opt.GetBool("verbose") {
		log.SetLevel(logrus.DebugLevel)
	}

	v := vm.New(vm.WithLogger(log))
	if err := load(v, image, opt.GetString("origin")); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch {
	case opt.GetBool("serve"):
		err = serve(ctx, v, log)
	case opt.GetBool("interactive"):
		err = vm.NewStepper(v, os.Stdin, os.Stdout).Loop(ctx)
	default:
		err = run(ctx, v, opt.GetInt("steps"))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		os.Exit(1)
	}
}

func load(v *vm.VM, image, origin string) error {
	if origin == "" {
		return v.LoadImage(image)
	}

	addr, err := disassembler.ParseNumber(origin)
	if err != nil {
		return fmt.Errorf("origin: %w", err)
	}
	code, err := os.ReadFile(image)
	if err != nil {
		return err
	}
	return v.LoadCode(addr, code)
}

func run(ctx context.Context, v *vm.VM, steps int) error {
	n, err := v.Run(ctx, steps)
	fmt.Printf("%d instructions executed\n", n)
	v.DumpRegisters(os.Stdout)
	if errors.Is(err, vm.ErrStepLimit) || errors.Is(err, context.Canceled) {
		fmt.Println(err)
		return nil
	}
	return err
}

func serve(ctx context.Context, v *vm.VM, log *logrus.Logger) error {
	pty, err := debugger.NewPty()
	if err != nil {
		return err
	}
	defer pty.Close()

	fmt.Printf("Serving on %s\n", pty.Name())
	go func() {
		<-ctx.Done()
		pty.Close()
	}()

	err = debugger.NewServer(v.CPU, log).Serve(ctx, pty.Master)
	if ctx.Err() != nil {
		return nil
	}
	return err
}
