package debugger_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/Urethramancer/k0emu/cpu"
	"github.com/Urethramancer/k0emu/debugger"
	"github.com/sirupsen/logrus"
)

// serve runs a server for target on one end of a pipe and returns the other.
func serve(t *testing.T, target debugger.Target) (net.Conn, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	l := logrus.New()
	l.SetOutput(&logs)
	l.SetLevel(logrus.DebugLevel)

	ctx, cancel := context.WithCancel(context.Background())
	local, remote := net.Pipe()
	done := make(chan error, 1)
	go func() {
		done <- debugger.NewServer(target, l).Serve(ctx, remote)
		remote.Close()
	}()
	t.Cleanup(func() {
		local.Close()
		cancel()
		<-done
	})
	return local, &logs
}

func connect(t *testing.T, target debugger.Target) (*debugger.Client, *bytes.Buffer) {
	t.Helper()
	conn, logs := serve(t, target)
	c, err := debugger.NewClient(conn)
	if err != nil {
		t.Fatal(err)
	}
	return c, logs
}

func TestReadWrite(t *testing.T) {
	p := cpu.New()
	c, _ := connect(t, p)

	data := make([]byte, 600)
	for i := range data {
		data[i] = byte(i * 7)
	}
	if err := c.WriteMemory(0x2000, data); err != nil {
		t.Fatal(err)
	}
	if got := p.Read(0x2000 + 599); got != data[599] {
		t.Errorf("target byte %02X, want %02X", got, data[599])
	}

	got, err := c.ReadMemory(0x2000, len(data))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Error("read back differs from what was written")
	}

	exact, err := c.ReadMemory(0x2000, debugger.MaxTransfer)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(exact, data[:debugger.MaxTransfer]) {
		t.Error("full length read differs")
	}
}

func TestCall(t *testing.T) {
	p := cpu.New()
	c, _ := connect(t, p)

	// mov a,#42H; mov !2100H,a; ret
	if err := c.WriteMemory(0x2000, []byte{0xA1, 0x42, 0x9E, 0x00, 0x21, 0xAF}); err != nil {
		t.Fatal(err)
	}
	if err := c.Call(context.Background(), 0x2000); err != nil {
		t.Fatal(err)
	}
	got, err := c.ReadMemory(0x2100, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != 0x42 {
		t.Errorf("routine stored %02X, want 42", got[0])
	}
}

func TestTargetFault(t *testing.T) {
	p := cpu.New()
	c, logs := connect(t, p)

	if err := c.WriteMemory(0x2000, []byte{0x06}); err != nil {
		t.Fatal(err)
	}
	err := c.Call(context.Background(), 0x2000)
	if !errors.Is(err, debugger.ErrTargetFault) {
		t.Fatalf("got %v, want target fault", err)
	}
	if !strings.Contains(logs.String(), "level=warning") {
		t.Errorf("fault not logged:\n%s", logs.String())
	}

	// The monitor keeps serving after a fault.
	if _, err := c.ReadMemory(0x2000, 1); err != nil {
		t.Error(err)
	}
}

func TestUnknownCommand(t *testing.T) {
	conn, _ := serve(t, cpu.New())

	reply := make([]byte, 1)
	if _, err := io.ReadFull(conn, reply); err != nil || reply[0] != debugger.Prompt {
		t.Fatalf("no prompt: %q %v", reply, err)
	}
	if _, err := conn.Write([]byte{'X'}); err != nil {
		t.Fatal(err)
	}
	reply = make([]byte, 2)
	if _, err := io.ReadFull(conn, reply); err != nil {
		t.Fatal(err)
	}
	if string(reply) != "?>" {
		t.Errorf("got %q, want \"?>\"", reply)
	}
}

func TestRawRead(t *testing.T) {
	p := cpu.New()
	p.Write(0x2000, 0xAB)
	conn, logs := serve(t, p)

	io.ReadFull(conn, make([]byte, 1))
	if _, err := conn.Write([]byte{'R', 0x00, 0x20, 0x01}); err != nil {
		t.Fatal(err)
	}
	reply := make([]byte, 3)
	if _, err := io.ReadFull(conn, reply); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(reply, []byte{'r', 0xAB, '>'}) {
		t.Errorf("got % X", reply)
	}
	if !strings.Contains(logs.String(), "addr=2000") {
		t.Errorf("read not logged:\n%s", logs.String())
	}
}

// stuck never returns from a call until it is cancelled.
type stuck struct {
	*cpu.Processor
}

func (stuck) Call(ctx context.Context, addr uint16) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestCallDeadline(t *testing.T) {
	c, _ := connect(t, stuck{cpu.New()})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := c.Call(ctx, 0x2000)
	if !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, os.ErrDeadlineExceeded) {
		t.Errorf("got %v, want a deadline error", err)
	}
}

func TestCallCancelled(t *testing.T) {
	c, _ := connect(t, cpu.New())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Call(ctx, 0x2000); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestServeEOF(t *testing.T) {
	local, remote := net.Pipe()
	done := make(chan error, 1)
	go func() {
		done <- debugger.NewServer(cpu.New(), nil).Serve(context.Background(), remote)
	}()
	io.ReadFull(local, make([]byte, 1))
	local.Close()
	if err := <-done; err != nil {
		t.Errorf("Serve returned %v after the client hung up", err)
	}
}

// link is a canned monitor: replies are read from in, commands go to out.
type link struct {
	io.Reader
	out bytes.Buffer
}

func (l *link) Write(b []byte) (int, error) { return l.out.Write(b) }

func TestFaultWithoutPrompt(t *testing.T) {
	l := &link{Reader: strings.NewReader(">e")}
	c, err := debugger.NewClient(l)
	if err != nil {
		t.Fatal(err)
	}
	err = c.WriteMemory(0x2000, []byte{1})
	if !errors.Is(err, debugger.ErrTargetFault) || !errors.Is(err, io.EOF) {
		t.Errorf("got %v, want a target fault and a lost prompt", err)
	}

	l = &link{Reader: strings.NewReader(">?>")}
	c, err = debugger.NewClient(l)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.ReadMemory(0x2000, 1); !errors.Is(err, debugger.ErrUnknownCommand) || errors.Is(err, io.EOF) {
		t.Errorf("got %v, want only an unknown command", err)
	}
}
