//go:build !windows

package debugger

import (
	"fmt"
	"os"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

// Pty is a pseudoterminal pair. A Server runs on the master side while a
// client, such as dbg78k0, opens the slave by name as if it were a serial
// port.
type Pty struct {
	Master *os.File
	slave  *os.File
}

// NewPty allocates a pseudoterminal with its slave side in raw mode.
func NewPty() (*Pty, error) {
	ptm, pts, err := termios.Pty()
	if err != nil {
		return nil, fmt.Errorf("pty: %w", err)
	}

	var attr unix.Termios
	if err := termios.Tcgetattr(pts.Fd(), &attr); err != nil {
		ptm.Close()
		pts.Close()
		return nil, fmt.Errorf("pty: %w", err)
	}
	termios.Cfmakeraw(&attr)
	if err := termios.Tcsetattr(pts.Fd(), termios.TCSANOW, &attr); err != nil {
		ptm.Close()
		pts.Close()
		return nil, fmt.Errorf("pty: %w", err)
	}
	return &Pty{Master: ptm, slave: pts}, nil
}

// Name is the slave device path.
func (p *Pty) Name() string {
	return p.slave.Name()
}

// Close releases both sides.
func (p *Pty) Close() error {
	err := p.Master.Close()
	if e := p.slave.Close(); err == nil {
		err = e
	}
	return err
}
