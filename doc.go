// Package serial configures and reads Linux serial devices through the
// termios interface, with a retry protocol around the attribute commit.
//
// The kernel can report EAGAIN from TCSETS while the line discipline is
// mid-transition (for example while another process is draining the port).
// The attribute applier retries that one condition a bounded number of
// times with a short fixed delay, fails immediately on anything else, and
// after a successful commit reads the attributes back so that settings the
// driver silently dropped are at least reported, though never corrected.
//
// Features:
//   - Raw syscall-based serial I/O on Linux, no buffering delays
//   - Full line-discipline configuration (baud, char size, parity, stop
//     bits, RTS/CTS flow control) with fail-fast validation
//   - Speed-only reconfiguration that preserves all other settings
//   - Bounded EAGAIN retry with best-effort readback verification
//   - Line-based reading with custom delimiter (default: \r\n)
//   - Self-pipe mechanism for killability
//   - PTY-based tests for reliability
//
// This package does **not** support Windows.
//
// Example usage:
//
//	cfg := serial.Config{
//	    Device:   "/dev/ttyUSB0",
//	    BaudRate: 115200,
//	    DataBits: 8,
//	    Parity:   serial.ParityNone,
//	    StopBits: 1,
//	}
//	port, err := serial.Open(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	go port.ReadLinesLoop(
//	    func(line string) { fmt.Println("Received:", line) },
//	    func(err error) { log.Println("Read error:", err) },
//	)
//
//	if err := port.WriteLine("C,START", "\r\n"); err != nil {
//	    log.Println("Write failed:", err)
//	}
//
//	// Renegotiate the link speed without touching framing settings.
//	if err := port.SetSpeed(57600); err != nil {
//	    log.Println("Speed change failed:", err)
//	}
package serial
