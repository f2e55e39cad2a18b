package debugger

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Server answers protocol commands on behalf of a Target.
type Server struct {
	target Target
	log    *logrus.Logger
}

// NewServer creates a server for t. A nil logger means the standard logger.
func NewServer(t Target, l *logrus.Logger) *Server {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return &Server{target: t, log: l}
}

// Serve prompts on rw and handles commands until rw reports EOF, ctx is
// done or the connection fails. Commands are handled one at a time; closing
// rw is the way to interrupt a blocked read.
func (s *Server) Serve(ctx context.Context, rw io.ReadWriter) error {
	if err := s.reply(rw, Prompt); err != nil {
		return err
	}

	cmd := make([]byte, 1)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := io.ReadFull(rw, cmd); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("serve: %w", err)
		}

		var err error
		switch cmd[0] {
		case CmdRead:
			err = s.read(rw)
		case CmdWrite:
			err = s.write(rw)
		case CmdCall:
			err = s.call(ctx, rw)
		default:
			s.log.WithField("cmd", fmt.Sprintf("%02X", cmd[0])).Warn(ErrUnknownCommand)
			err = s.reply(rw, Unknown, Prompt)
		}
		if err != nil {
			return err
		}
	}
}

// operands reads n operand bytes of the current command.
func operands(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("serve: short command: %w", err)
	}
	return buf, nil
}

func (s *Server) read(rw io.ReadWriter) error {
	op, err := operands(rw, 3)
	if err != nil {
		return err
	}
	addr, n := uint16(op[0])|uint16(op[1])<<8, transferLength(op[2])
	s.log.WithFields(logrus.Fields{"addr": fmt.Sprintf("%04X", addr), "len": n}).Debug("Read")

	data, err := s.target.ReadMemory(addr, n)
	if err != nil {
		return s.fault(rw, err)
	}
	msg := append([]byte{AckRead}, data...)
	return s.reply(rw, append(msg, Prompt)...)
}

func (s *Server) write(rw io.ReadWriter) error {
	op, err := operands(rw, 3)
	if err != nil {
		return err
	}
	addr, n := uint16(op[0])|uint16(op[1])<<8, transferLength(op[2])
	data, err := operands(rw, n)
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"addr": fmt.Sprintf("%04X", addr), "len": n}).Debug("Write")

	if err := s.target.WriteMemory(addr, data); err != nil {
		return s.fault(rw, err)
	}
	return s.reply(rw, AckWrite, Prompt)
}

func (s *Server) call(ctx context.Context, rw io.ReadWriter) error {
	op, err := operands(rw, 2)
	if err != nil {
		return err
	}
	addr := uint16(op[0]) | uint16(op[1])<<8
	s.log.WithField("addr", fmt.Sprintf("%04X", addr)).Debug("Call")

	if err := s.target.Call(ctx, addr); err != nil {
		return s.fault(rw, err)
	}
	return s.reply(rw, AckCall, Prompt)
}

// fault reports a failed command to the client and carries on serving.
func (s *Server) fault(w io.Writer, cause error) error {
	s.log.Warn(cause)
	return s.reply(w, Fault, Prompt)
}

func (s *Server) reply(w io.Writer, b ...byte) error {
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
