package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/Urethramancer/k0emu/debugger"
	"github.com/Urethramancer/k0emu/disassembler"
	"github.com/grimdork/climate/arg"
)

// dbg78k0 drives the debug monitor on a 78K0 board, or an emulator started
// with run78k0 --serve, over a serial line.
func main() {
	opt := arg.New("dbg78k0")
	opt.SetDefaultHelp(true)
	opt.SetOption(arg.GroupDefault, "d", "device", "Serial device the monitor is attached to.", "/dev/ttyUSB0", false, arg.VarString, nil)
	opt.SetOption(arg.GroupDefault, "b", "baud", "Line speed.", debugger.DefaultBaud, false, arg.VarInt, nil)
	opt.SetOption(arg.GroupDefault, "w", "wait", "Seconds to wait for a called routine to return.", 10, false, arg.VarInt, nil)

	var s session
	opt.SetCommand("read", "Dump LEN bytes of memory from ADDR.", arg.GroupDefault, func(o *arg.Options) error {
		o.SetPositional("ADDR", "Start address.", "", true, arg.VarString)
		o.SetPositional("LEN", "Number of bytes.", "", true, arg.VarString)
		if err := o.Parse(o.Args); err != nil {
			return err
		}
		return s.read(opt, o.GetPosString("ADDR"), o.GetPosString("LEN"))
	}, []string{"r"})
	opt.SetCommand("write", "Store BYTES at ADDR.", arg.GroupDefault, func(o *arg.Options) error {
		o.SetPositional("ADDR", "Start address.", "", true, arg.VarString)
		o.SetPositional("BYTES", "Hex bytes to store.", nil, true, arg.VarStringSlice)
		if err := o.Parse(o.Args); err != nil {
			return err
		}
		return s.write(opt, o.GetPosString("ADDR"), o.GetPosStringSlice("BYTES"))
	}, []string{"w"})
	opt.SetCommand("call", "Run the routine at ADDR and wait for it to return.", arg.GroupDefault, func(o *arg.Options) error {
		o.SetPositional("ADDR", "Routine address.", "", true, arg.VarString)
		if err := o.Parse(o.Args); err != nil {
			return err
		}
		return s.call(opt, o.GetPosString("ADDR"))
	}, []string{"c"})
	opt.ParseEnvironment("K0EMU", "")

	err := opt.Parse(os.Args[1:])
	if err != nil {
		if errors.Is(err, arg.ErrNoArgs) {
			opt.PrintHelp()
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		os.Exit(1)
	}
	if !s.ran {
		opt.PrintHelp()
		os.Exit(2)
	}
}

// session is the connection a command runs over.
type session struct {
	client *debugger.Client
	close  func() error
	ran    bool
}

func (s *session) open(opt *arg.Options) error {
	s.ran = true
	c, t, err := debugger.DialSerial(opt.GetString("device"), opt.GetInt("baud"), 500*time.Millisecond)
	if err != nil {
		return err
	}
	s.client, s.close = c, t.Close
	return nil
}

func (s *session) read(opt *arg.Options, addrArg, lenArg string) error {
	addr, err := disassembler.ParseNumber(addrArg)
	if err != nil {
		return err
	}
	n, err := strconv.ParseUint(lenArg, 0, 17)
	if err != nil || n == 0 || n > 0x10000 {
		return fmt.Errorf("bad length %q", lenArg)
	}

	if err := s.open(opt); err != nil {
		return err
	}
	defer s.close()

	data, err := s.client.ReadMemory(addr, int(n))
	if err != nil {
		return err
	}
	fmt.Print(hex.Dump(data))
	return nil
}

func (s *session) write(opt *arg.Options, addrArg string, byteArgs []string) error {
	addr, err := disassembler.ParseNumber(addrArg)
	if err != nil {
		return err
	}
	if len(byteArgs) == 0 {
		return errors.New("nothing to write")
	}
	data := make([]byte, len(byteArgs))
	for i, a := range byteArgs {
		v, err := disassembler.ParseNumber(a)
		if err != nil || v > 0xFF {
			return fmt.Errorf("bad byte %q", a)
		}
		data[i] = byte(v)
	}

	if err := s.open(opt); err != nil {
		return err
	}
	defer s.close()

	return s.client.WriteMemory(addr, data)
}

func (s *session) call(opt *arg.Options, addrArg string) error {
	addr, err := disassembler.ParseNumber(addrArg)
	if err != nil {
		return err
	}

	if err := s.open(opt); err != nil {
		return err
	}
	defer s.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, time.Duration(opt.GetInt("wait"))*time.Second)
	defer cancel()
	return s.client.Call(ctx, addr)
}
