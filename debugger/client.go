package debugger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// Client implements Target over a connection to a debug monitor.
type Client struct {
	rw io.ReadWriter
	// patient makes Call treat io.EOF as a read timeout rather than a
	// closed connection.
	patient bool
}

// NewClient waits for the monitor's prompt on rw and returns a client for it.
func NewClient(rw io.ReadWriter) (*Client, error) {
	c := &Client{rw: rw}
	if err := c.expect(Prompt); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return c, nil
}

// ReadMemory reads n bytes from addr, split into as many commands as needed.
func (c *Client) ReadMemory(addr uint16, n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("read %04X: negative length %d", addr, n)
	}

	out := make([]byte, 0, n)
	for n > 0 {
		chunk := min(n, MaxTransfer)
		if err := c.send(CmdRead, byte(addr), byte(addr>>8), lengthByte(chunk)); err != nil {
			return nil, fmt.Errorf("read %04X: %w", addr, err)
		}
		if err := c.expect(AckRead); err != nil {
			return nil, fmt.Errorf("read %04X: %w", addr, err)
		}
		buf := make([]byte, chunk)
		if _, err := io.ReadFull(c.rw, buf); err != nil {
			return nil, fmt.Errorf("read %04X: %w", addr, err)
		}
		if err := c.expect(Prompt); err != nil {
			return nil, fmt.Errorf("read %04X: %w", addr, err)
		}
		out = append(out, buf...)
		addr += uint16(chunk)
		n -= chunk
	}
	return out, nil
}

// WriteMemory writes data to addr, split into as many commands as needed.
func (c *Client) WriteMemory(addr uint16, data []byte) error {
	for len(data) > 0 {
		chunk := min(len(data), MaxTransfer)
		msg := append([]byte{CmdWrite, byte(addr), byte(addr >> 8), lengthByte(chunk)}, data[:chunk]...)
		if err := c.send(msg...); err != nil {
			return fmt.Errorf("write %04X: %w", addr, err)
		}
		if err := c.expect(AckWrite, Prompt); err != nil {
			return fmt.Errorf("write %04X: %w", addr, err)
		}
		addr += uint16(chunk)
		data = data[chunk:]
	}
	return nil
}

// deadliner is implemented by connections with read timeouts, such as net.Conn.
type deadliner interface {
	SetReadDeadline(t time.Time) error
}

// Call runs the routine at addr on the target and waits for it to return.
// On a serial link, reads that time out are retried until ctx is done so
// long routines can be waited out.
func (c *Client) Call(ctx context.Context, addr uint16) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("call %04X: %w", addr, err)
	}
	if d, ok := c.rw.(deadliner); ok {
		if dl, ok := ctx.Deadline(); ok {
			if err := d.SetReadDeadline(dl); err != nil {
				return fmt.Errorf("call %04X: %w", addr, err)
			}
			defer d.SetReadDeadline(time.Time{})
		}
	}
	if err := c.send(CmdCall, byte(addr), byte(addr>>8)); err != nil {
		return fmt.Errorf("call %04X: %w", addr, err)
	}

	for _, want := range []byte{AckCall, Prompt} {
		for {
			err := c.expect(want)
			if err == nil {
				break
			}
			if ctx.Err() != nil {
				return fmt.Errorf("call %04X: %w", addr, ctx.Err())
			}
			if c.patient && errors.Is(err, io.EOF) {
				continue
			}
			return fmt.Errorf("call %04X: %w", addr, err)
		}
	}
	return nil
}

func (c *Client) send(b ...byte) error {
	_, err := c.rw.Write(b)
	return err
}

// expect reads len(want) bytes and checks them against want.
func (c *Client) expect(want ...byte) error {
	got := make([]byte, 1)
	for _, w := range want {
		if _, err := io.ReadFull(c.rw, got); err != nil {
			return err
		}
		switch {
		case got[0] == w:
		case got[0] == Fault:
			return c.resync(ErrTargetFault)
		case got[0] == Unknown:
			return c.resync(ErrUnknownCommand)
		default:
			return fmt.Errorf("%w: got %02X, want %02X", ErrUnexpectedResponse, got[0], w)
		}
	}
	return nil
}

// resync reads the prompt that follows an error marker. A missing prompt
// means the link is out of step and is reported along with cause.
func (c *Client) resync(cause error) error {
	if err := c.expect(Prompt); err != nil {
		return fmt.Errorf("%w, then %w", cause, err)
	}
	return cause
}
