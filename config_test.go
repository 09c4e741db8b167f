package serial

import (
	"testing"

	"github.com/creack/pty"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

// openPTYFd returns the descriptor of a fresh pty slave, cleaned up with
// the test.
func openPTYFd(t *testing.T) int {
	t.Helper()
	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { master.Close(); slave.Close() })
	return int(slave.Fd())
}

func TestConfigureRoundTrip(t *testing.T) {
	fd := openPTYFd(t)

	cfg := Config{
		BaudRate: 115200,
		DataBits: 8,
		Parity:   ParityNone,
		StopBits: 1,
	}
	require.NoError(t, Configure(fd, cfg))

	got, err := ReadAttrs(fd)
	require.NoError(t, err)
	require.Equal(t, 115200, got.InputSpeed)
	require.Equal(t, 115200, got.OutputSpeed)
	require.Equal(t, 8, got.CharSize)
	require.Equal(t, ParityNone, got.Parity)
	require.Equal(t, 1, got.StopBits)
	require.True(t, got.Raw)
}

func TestConfigureSevenEvenTwo(t *testing.T) {
	fd := openPTYFd(t)

	cfg := Config{
		BaudRate: 9600,
		DataBits: 7,
		Parity:   ParityEven,
		StopBits: 2,
	}
	require.NoError(t, Configure(fd, cfg))

	got, err := ReadAttrs(fd)
	require.NoError(t, err)
	require.Equal(t, 7, got.CharSize)
	require.Equal(t, ParityEven, got.Parity)
	require.Equal(t, 2, got.StopBits)
}

func TestConfigureRejectsBadConfigBeforeTouchingDevice(t *testing.T) {
	fd := openPTYFd(t)

	require.NoError(t, Configure(fd, Config{BaudRate: 9600, Parity: ParityOdd}))
	before, err := ReadAttrs(fd)
	require.NoError(t, err)

	err = Configure(fd, Config{BaudRate: 31337})
	require.True(t, IsCode(err, CodeBadBaudRate))

	after, err := ReadAttrs(fd)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(before, after))
}

func TestSetSpeedPreservesOtherFields(t *testing.T) {
	fd := openPTYFd(t)

	require.NoError(t, Configure(fd, Config{
		BaudRate: 9600,
		DataBits: 7,
		Parity:   ParityEven,
		StopBits: 2,
	}))
	before, err := ReadAttrs(fd)
	require.NoError(t, err)

	require.NoError(t, SetSpeed(fd, 115200, FlowNone))

	after, err := ReadAttrs(fd)
	require.NoError(t, err)
	require.Equal(t, 115200, after.InputSpeed)
	require.Equal(t, 115200, after.OutputSpeed)
	require.Empty(t, cmp.Diff(before, after,
		cmpopts.IgnoreFields(Attrs{}, "InputSpeed", "OutputSpeed")))
}

func TestSetSpeedSetsFlowControlWhenEnabled(t *testing.T) {
	fd := openPTYFd(t)

	require.NoError(t, Configure(fd, Config{BaudRate: 9600}))
	require.NoError(t, SetSpeed(fd, 57600, FlowRTSCTS))

	got, err := ReadAttrs(fd)
	require.NoError(t, err)
	require.Equal(t, 57600, got.InputSpeed)
	require.True(t, got.RTSCTS)
}
