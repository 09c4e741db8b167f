package serial

import (
	"golang.org/x/sys/unix"
)

// Parity selects the parity bit generation and checking mode.
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
)

func (p Parity) String() string {
	switch p {
	case ParityOdd:
		return "odd"
	case ParityEven:
		return "even"
	default:
		return "none"
	}
}

// FlowControl selects the flow control mode of a port.
type FlowControl int

const (
	FlowNone FlowControl = iota
	FlowRTSCTS
)

// Attrs is the decoded line-discipline configuration of a serial device:
// the settings the kernel reports back rather than the raw termios words.
// Two Attrs values compare with ==; padding and hardware-reserved termios
// bits never enter the comparison.
//
// On Linux the input and output speeds are driven by the same CBAUD bits,
// so InputSpeed and OutputSpeed decode to the same value; both are kept so
// a divergence would be visible if a driver ever reports one.
type Attrs struct {
	InputSpeed  int // baud, 0 if the device reports an unknown rate
	OutputSpeed int
	CharSize    int // bits per character, 5 through 8
	Parity      Parity
	StopBits    int // 1 or 2
	RTSCTS      bool
	Raw         bool // canonical processing, echo and output post-processing disabled
}

var baudCodes = map[int]uint32{
	50:      unix.B50,
	75:      unix.B75,
	110:     unix.B110,
	134:     unix.B134,
	150:     unix.B150,
	200:     unix.B200,
	300:     unix.B300,
	600:     unix.B600,
	1200:    unix.B1200,
	1800:    unix.B1800,
	2400:    unix.B2400,
	4800:    unix.B4800,
	9600:    unix.B9600,
	19200:   unix.B19200,
	38400:   unix.B38400,
	57600:   unix.B57600,
	115200:  unix.B115200,
	230400:  unix.B230400,
	460800:  unix.B460800,
	500000:  unix.B500000,
	576000:  unix.B576000,
	921600:  unix.B921600,
	1000000: unix.B1000000,
	1152000: unix.B1152000,
	1500000: unix.B1500000,
	2000000: unix.B2000000,
	2500000: unix.B2500000,
	3000000: unix.B3000000,
	3500000: unix.B3500000,
	4000000: unix.B4000000,
}

func baudCode(baud int) (uint32, error) {
	code, ok := baudCodes[baud]
	if !ok {
		return 0, newError(CodeBadBaudRate, "unsupported baud rate %d", baud)
	}
	return code, nil
}

func baudFromCode(code uint32) int {
	for baud, c := range baudCodes {
		if c == code {
			return baud
		}
	}
	return 0
}

// decodeAttrs extracts the semantic settings from a raw termios value.
func decodeAttrs(tio *unix.Termios) Attrs {
	a := Attrs{StopBits: 1}

	baud := baudFromCode(tio.Cflag & unix.CBAUD)
	a.InputSpeed = baud
	a.OutputSpeed = baud

	switch tio.Cflag & unix.CSIZE {
	case unix.CS5:
		a.CharSize = 5
	case unix.CS6:
		a.CharSize = 6
	case unix.CS7:
		a.CharSize = 7
	case unix.CS8:
		a.CharSize = 8
	}

	if tio.Cflag&unix.PARENB != 0 {
		if tio.Cflag&unix.PARODD != 0 {
			a.Parity = ParityOdd
		} else {
			a.Parity = ParityEven
		}
	}

	if tio.Cflag&unix.CSTOPB != 0 {
		a.StopBits = 2
	}

	a.RTSCTS = tio.Cflag&unix.CRTSCTS != 0
	a.Raw = tio.Lflag&(unix.ICANON|unix.ECHO) == 0 && tio.Oflag&unix.OPOST == 0

	return a
}
