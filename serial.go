package serial

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"syscall"

	"github.com/mattn/go-isatty"
	"golang.org/x/sys/unix"
)

// Port provides line-oriented access to a Linux serial device whose
// line discipline is configured through the attribute applier.
// Reads are killable via Close from another goroutine.
type Port struct {
	fd        int
	file      *os.File
	done      chan struct{}
	closeOnce sync.Once
	config    Config
	pipeR     int // self-pipe read fd
	pipeW     int // self-pipe write fd
}

// Open opens the device named in cfg, verifies it is a terminal, and
// applies the requested configuration in raw mode. The configuration
// commit goes through the default applier, so a device whose line
// discipline is momentarily busy is retried before Open gives up.
func Open(cfg Config) (*Port, error) {
	if cfg.Delimiter == "" {
		cfg.Delimiter = "\r\n"
	}

	fd, err := syscall.Open(cfg.Device, syscall.O_RDWR|syscall.O_NOCTTY|syscall.O_NONBLOCK, 0666)
	if err != nil {
		return nil, wrapError(err, CodeOpenFailed, "open %s", cfg.Device)
	}

	if !isatty.IsTerminal(uintptr(fd)) {
		unix.Close(fd)
		return nil, newError(CodeNotTerminal, "%s is not a terminal device", cfg.Device)
	}

	if err := Configure(fd, cfg); err != nil {
		unix.Close(fd)
		return nil, err
	}

	// Configuration is done, go back to blocking I/O.
	syscall.SetNonblock(fd, false)

	// Self-pipe so Close can wake up a blocked poll.
	pipeFds := make([]int, 2)
	if err := unix.Pipe(pipeFds); err != nil {
		unix.Close(fd)
		return nil, wrapError(err, CodeOpenFailed, "pipe")
	}

	return &Port{
		fd:     fd,
		file:   os.NewFile(uintptr(fd), cfg.Device),
		done:   make(chan struct{}),
		config: cfg,
		pipeR:  pipeFds[0],
		pipeW:  pipeFds[1],
	}, nil
}

// SetSpeed rewrites only the port's input/output speed, keeping the port's
// own flow-control setting and leaving every other attribute untouched.
func (p *Port) SetSpeed(baud int) error {
	err := SetSpeed(p.fd, baud, p.config.FlowControl)
	if err == nil {
		p.config.BaudRate = baud
	}
	return err
}

// Attrs returns the attributes the device currently reports.
func (p *Port) Attrs() (Attrs, error) {
	return ReadAttrs(p.fd)
}

// WriteLine writes a line followed by newline to the port.
func (p *Port) WriteLine(line string, newline string) error {
	_, err := p.file.WriteString(line + newline)
	return err
}

// waitReadable polls until the device has data or the port is closed.
// Returns an error when the port was closed while waiting.
func (p *Port) waitReadable() error {
	for {
		pfd := []unix.PollFd{
			{Fd: int32(p.fd), Events: unix.POLLIN},
			{Fd: int32(p.pipeR), Events: unix.POLLIN},
		}
		if _, err := unix.Poll(pfd, -1); err != nil {
			return err
		}
		select {
		case <-p.done:
			return newError(CodeClosed, "port closed")
		default:
		}
		if pfd[1].Revents&unix.POLLIN != 0 {
			var b [1]byte
			unix.Read(p.pipeR, b[:])
			return newError(CodeClosed, "port closed")
		}
		if pfd[0].Revents&unix.POLLIN != 0 {
			return nil
		}
	}
}

// ReadLine blocks until a full delimiter-terminated line arrives or the
// port is closed. A plain buffer is used instead of bufio to keep latency
// at the single read call.
func (p *Port) ReadLine() (string, error) {
	buf := make([]byte, 4096)
	line := ""
	for {
		if err := p.waitReadable(); err != nil {
			return "", err
		}
		n, err := p.file.Read(buf)
		if err != nil {
			return "", fmt.Errorf("read: %w", err)
		}
		line += string(buf[:n])
		if idx := strings.Index(line, p.config.Delimiter); idx >= 0 {
			return line[:idx], nil
		}
	}
}

// ReadLinesLoop continuously reads lines from the port and invokes onLine
// for each complete line. On a read error onError is called once and the
// loop exits; closing the port exits the loop silently.
func (p *Port) ReadLinesLoop(onLine func(string), onError func(error)) {
	buf := make([]byte, 4096)
	pending := ""
	for {
		if err := p.waitReadable(); err != nil {
			if !IsCode(err, CodeClosed) {
				onError(err)
			}
			return
		}
		n, err := p.file.Read(buf)
		if err != nil {
			onError(err)
			return
		}
		pending += string(buf[:n])
		for {
			idx := strings.Index(pending, p.config.Delimiter)
			if idx < 0 {
				break
			}
			onLine(pending[:idx])
			pending = pending[idx+len(p.config.Delimiter):]
		}
	}
}

// Close closes the port and unblocks any pending ReadLine/ReadLinesLoop.
// Safe to call multiple times; subsequent calls are no-ops.
func (p *Port) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.done)
		// Wake up poll via the self-pipe.
		if p.pipeW > 0 {
			unix.Write(p.pipeW, []byte{1})
		}
		if p.file != nil {
			err = p.file.Close()
		}
		if p.pipeR > 0 {
			unix.Close(p.pipeR)
		}
		if p.pipeW > 0 {
			unix.Close(p.pipeW)
		}
	})
	return err
}
