package transport

import (
	"context"
	"sync"
	"time"

	"github.com/goburrow/serial"

	"fieldbus-engine/pkg/errors"
	"fieldbus-engine/pkg/logger"
)

// readSlice is the port-level read timeout. Receive loops in slices of
// this size up to the caller's deadline, so arbitrary per-call timeouts
// work even though the port timeout is fixed at open time.
const readSlice = 50 * time.Millisecond

// SerialConfig describes a serial line (RS-232/RS-485)
type SerialConfig struct {
	Device   string `yaml:"device"`
	BaudRate int    `yaml:"baud_rate"`
	DataBits int    `yaml:"data_bits"`
	StopBits int    `yaml:"stop_bits"`
	Parity   string `yaml:"parity"` // "N", "E" or "O"
}

// SerialTransport carries frames over a serial port
type SerialTransport struct {
	config SerialConfig

	mu   sync.Mutex
	port serial.Port

	statsTracker
}

// NewSerialTransport creates a transport for the given serial line.
// Missing line parameters default to 9600 8N1.
func NewSerialTransport(config SerialConfig) *SerialTransport {
	if config.BaudRate == 0 {
		config.BaudRate = 9600
	}
	if config.DataBits == 0 {
		config.DataBits = 8
	}
	if config.StopBits == 0 {
		config.StopBits = 1
	}
	if config.Parity == "" {
		config.Parity = "N"
	}
	return &SerialTransport{config: config}
}

// Connect opens the serial port
func (t *SerialTransport) Connect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port != nil {
		_ = t.port.Close()
		t.port = nil
	}

	port, err := serial.Open(&serial.Config{
		Address:  t.config.Device,
		BaudRate: t.config.BaudRate,
		DataBits: t.config.DataBits,
		StopBits: t.config.StopBits,
		Parity:   t.config.Parity,
		Timeout:  readSlice,
	})
	if err != nil {
		wrapped := errors.New("serial.connect", errors.KindConnectionFailed, err)
		t.recordError(wrapped)
		return wrapped
	}

	t.port = port
	t.recordConnect()
	logger.LogDebug("serial transport opened %s at %d baud", t.config.Device, t.config.BaudRate)
	return nil
}

// Disconnect closes the port if open
func (t *SerialTransport) Disconnect() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	return err
}

// IsConnected reports whether the port is open
func (t *SerialTransport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.port != nil
}

// Send writes the full buffer to the port
func (t *SerialTransport) Send(ctx context.Context, data []byte) (int, error) {
	port := t.currentPort()
	if port == nil {
		return 0, errors.Newf("serial.send", errors.KindConnectionLost, "port not open")
	}

	n, err := port.Write(data)
	if err != nil {
		wrapped := errors.New("serial.send", errors.KindSendFailed, err)
		t.recordError(wrapped)
		return n, wrapped
	}
	if n < len(data) {
		return n, errors.Newf("serial.send", errors.KindSendFailed,
			"short write: %d of %d bytes", n, len(data))
	}

	t.recordSend(n)
	return n, nil
}

// Receive reads bytes arriving within the timeout. The port itself
// times out every readSlice; the loop keeps trying until data arrives,
// the deadline passes or the context is cancelled.
func (t *SerialTransport) Receive(ctx context.Context, buf []byte, timeout time.Duration) (int, error) {
	port := t.currentPort()
	if port == nil {
		return 0, errors.Newf("serial.receive", errors.KindConnectionLost, "port not open")
	}

	deadline := time.Now().Add(timeout)
	for {
		// Cancellation is a shutdown, not a link failure; hand the
		// context error back untouched so it is not counted as one.
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		n, err := port.Read(buf)
		if n > 0 {
			t.recordReceive(n)
			return n, nil
		}
		if err != nil && err != serial.ErrTimeout {
			wrapped := errors.New("serial.receive", errors.KindConnectionLost, err)
			t.recordError(wrapped)
			return 0, wrapped
		}

		if !time.Now().Before(deadline) {
			return 0, errors.Newf("serial.receive", errors.KindTimeout,
				"no data within %v", timeout)
		}
	}
}

// Stats returns a snapshot of the transport counters
func (t *SerialTransport) Stats() Stats {
	return t.snapshot()
}

func (t *SerialTransport) currentPort() serial.Port {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.port
}
