package serial

import (
	"golang.org/x/sys/unix"
)

// Config holds configuration parameters for opening a serial port.
// DataBits and StopBits default to 8 and 1 when left zero; BaudRate must
// always be set to a supported rate.
type Config struct {
	Device      string
	BaudRate    int
	DataBits    int // 5, 6, 7 or 8
	Parity      Parity
	StopBits    int // 1 or 2
	FlowControl FlowControl
	Delimiter   string // line delimiter for reads, default "\r\n"
}

// buildTermios translates the semantic configuration into a complete raw
// termios value: no echo, no canonical processing, no output
// post-processing, VMIN=1/VTIME=0 for immediate reads.
func buildTermios(cfg Config) (*unix.Termios, error) {
	tio := &unix.Termios{}
	tio.Cflag = unix.CREAD | unix.CLOCAL

	dataBits := cfg.DataBits
	if dataBits == 0 {
		dataBits = 8
	}
	switch dataBits {
	case 5:
		tio.Cflag |= unix.CS5
	case 6:
		tio.Cflag |= unix.CS6
	case 7:
		tio.Cflag |= unix.CS7
	case 8:
		tio.Cflag |= unix.CS8
	default:
		return nil, newError(CodeBadCharSize, "unsupported character size %d", dataBits)
	}

	switch cfg.Parity {
	case ParityNone:
	case ParityOdd:
		tio.Cflag |= unix.PARENB | unix.PARODD
		tio.Iflag |= unix.INPCK
	case ParityEven:
		tio.Cflag |= unix.PARENB
		tio.Iflag |= unix.INPCK
	}

	switch cfg.StopBits {
	case 0, 1:
	case 2:
		tio.Cflag |= unix.CSTOPB
	default:
		return nil, newError(CodeBadStopBits, "unsupported stop bit count %d", cfg.StopBits)
	}

	if cfg.FlowControl == FlowRTSCTS {
		tio.Cflag |= unix.CRTSCTS
	}

	code, err := baudCode(cfg.BaudRate)
	if err != nil {
		return nil, err
	}
	tio.Cflag |= code
	tio.Ispeed = code
	tio.Ospeed = code

	tio.Cc[unix.VMIN] = 1
	tio.Cc[unix.VTIME] = 0

	return tio, nil
}

// Configure builds a complete raw-mode termios from cfg and commits it to
// the descriptor using the default applier. Unsupported values in cfg fail
// before the device is touched.
func Configure(fd int, cfg Config) error {
	return defaultApplier().Configure(fd, cfg)
}

// Configure is the Applier-bound variant of the package-level Configure.
func (a *Applier) Configure(fd int, cfg Config) error {
	tio, err := buildTermios(cfg)
	if err != nil {
		return err
	}
	return a.apply(termDevice{fd: fd}, tio)
}

// SetSpeed changes only the input and output speed of an already configured
// descriptor. When flow is FlowRTSCTS the hardware flow-control flag is set
// as well; every other field of the current configuration is preserved.
func SetSpeed(fd int, baud int, flow FlowControl) error {
	return defaultApplier().SetSpeed(fd, baud, flow)
}

// SetSpeed is the Applier-bound variant of the package-level SetSpeed.
func (a *Applier) SetSpeed(fd int, baud int, flow FlowControl) error {
	return a.setSpeed(termDevice{fd: fd}, baud, flow)
}

func (a *Applier) setSpeed(dev attrDevice, baud int, flow FlowControl) error {
	code, err := baudCode(baud)
	if err != nil {
		return err
	}
	tio, err := dev.getAttrs()
	if err != nil {
		return wrapError(err, CodeGetAttrFailed, "could not get serial attributes")
	}

	tio.Cflag &^= unix.CBAUD
	tio.Cflag |= code
	tio.Ispeed = code
	tio.Ospeed = code
	if flow == FlowRTSCTS {
		tio.Cflag |= unix.CRTSCTS
	}

	return a.apply(dev, tio)
}
