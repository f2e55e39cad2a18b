//go:build !windows

package debugger

import (
	"fmt"
	"time"

	"github.com/pkg/term"
)

// DefaultBaud is the monitor's line speed.
const DefaultBaud = 115200

// OpenSerial opens a serial device in raw mode. Reads give up after timeout
// and report io.EOF.
func OpenSerial(device string, baud int, timeout time.Duration) (*term.Term, error) {
	t, err := term.Open(device, term.Speed(baud), term.RawMode, term.ReadTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", device, err)
	}
	return t, nil
}

// DialSerial opens device and connects a client to the monitor on it.
// The caller closes the returned terminal.
func DialSerial(device string, baud int, timeout time.Duration) (*Client, *term.Term, error) {
	t, err := OpenSerial(device, baud, timeout)
	if err != nil {
		return nil, nil, err
	}
	c, err := NewClient(t)
	if err != nil {
		t.Close()
		return nil, nil, err
	}
	c.patient = true
	return c, t, nil
}
