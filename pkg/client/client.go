package client

import (
	"context"
	"sync"
	"time"

	"fieldbus-engine/pkg/errors"
	"fieldbus-engine/pkg/frame"
	"fieldbus-engine/pkg/logger"
	"fieldbus-engine/pkg/transport"
)

// Mode selects the framing used on the wire
type Mode int

const (
	// ModeTCP - MBAP framing with transaction id correlation
	ModeTCP Mode = iota
	// ModeRTU - address+CRC framing, responses matched by arrival order
	ModeRTU
)

// String returns the string representation of the mode
func (m Mode) String() string {
	switch m {
	case ModeTCP:
		return "tcp"
	case ModeRTU:
		return "rtu"
	default:
		return "unknown"
	}
}

// maxFrameSize bounds a single ADU: 253 PDU bytes plus framing
const maxFrameSize = 300

// Config holds the per-client exchange parameters
type Config struct {
	Mode    Mode
	UnitID  byte
	Timeout time.Duration // per-exchange response deadline
}

// Client orchestrates one request/response exchange at a time over a
// Transport: build the PDU, frame it, send it, await the matching
// response under the request timeout, validate and decode it.
//
// A single exchange performs no retries; retry and backoff policy
// belong to the channel runtime.
type Client struct {
	tr      transport.Transport
	mode    Mode
	unitID  byte
	timeout time.Duration

	// commandMu serializes exchanges: most field links are half-duplex
	// and correlation is only simple when requests never overlap.
	commandMu sync.Mutex
	txid      uint16

	// carry holds bytes received past the end of the last extracted
	// frame. A stale response and the awaited one often arrive in a
	// single read; the leftover must survive into the next receive.
	carry []byte
}

// New creates a protocol client over the given transport
func New(tr transport.Transport, cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Second
	}
	return &Client{
		tr:      tr,
		mode:    cfg.Mode,
		unitID:  cfg.UnitID,
		timeout: cfg.Timeout,
	}
}

// UnitID returns the configured unit (slave) id
func (c *Client) UnitID() byte {
	return c.unitID
}

// Exchange performs one framed request/response round trip and returns
// the raw response PDU. TCP-mode responses must match the request's
// transaction id and unit id; mismatched or stale frames are logged and
// discarded, and the wait continues until the deadline.
func (c *Client) Exchange(ctx context.Context, requestPDU []byte) ([]byte, error) {
	c.commandMu.Lock()
	defer c.commandMu.Unlock()

	var adu []byte
	var txid uint16
	switch c.mode {
	case ModeTCP:
		txid = c.nextTxid()
		adu = frame.BuildTCP(txid, c.unitID, requestPDU)
	case ModeRTU:
		adu = frame.BuildRTU(c.unitID, requestPDU)
	default:
		return nil, errors.Newf("client.exchange", errors.KindProtocol, "unknown mode %d", c.mode)
	}

	if logger.IsTraceEnabled() {
		logger.LogTrace("unit %d sending %02X", c.unitID, adu)
	}

	if _, err := c.tr.Send(ctx, adu); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(c.timeout)
	for {
		raw, err := c.receiveFrame(ctx, deadline)
		if err != nil {
			return nil, err
		}

		pduBytes, match, err := c.matchFrame(raw, txid)
		if err != nil {
			return nil, err
		}
		if !match {
			continue
		}
		return pduBytes, nil
	}
}

// nextTxid advances the wrapping transaction id counter. Exclusively
// owned by this client; the exchange mutex is already held.
func (c *Client) nextTxid() uint16 {
	c.txid++
	return c.txid
}

// receiveFrame accumulates bytes from the transport until one complete
// frame is available or the deadline passes. Bytes carried over from an
// earlier coalesced read are consumed before the transport is asked for
// more; bytes beyond the extracted frame are carried into the next call.
func (c *Client) receiveFrame(ctx context.Context, deadline time.Time) ([]byte, error) {
	buf := make([]byte, maxFrameSize)
	filled := copy(buf, c.carry)
	c.carry = nil

	for {
		want, known := c.expectedLength(buf[:filled])
		if known && filled >= want {
			if filled > want {
				c.carry = append([]byte(nil), buf[want:filled]...)
			}
			return buf[:want], nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, errors.Newf("client.receive", errors.KindTimeout,
				"no complete response within %v", c.timeout)
		}
		if filled >= len(buf) {
			return nil, errors.Newf("client.receive", errors.KindProtocol,
				"frame exceeds %d bytes without completing", len(buf))
		}

		n, err := c.tr.Receive(ctx, buf[filled:], remaining)
		if err != nil {
			return nil, err
		}
		filled += n
	}
}

func (c *Client) expectedLength(buf []byte) (int, bool) {
	if c.mode == ModeTCP {
		return frame.ExpectedTCPLength(buf)
	}
	return frame.ExpectedRTULength(buf)
}

// matchFrame unwraps a raw frame and decides whether it answers the
// in-flight request. A parse failure is terminal for the exchange; a
// correlation mismatch is not the awaited response and is dropped.
func (c *Client) matchFrame(raw []byte, txid uint16) (pduBytes []byte, match bool, err error) {
	switch c.mode {
	case ModeTCP:
		f, err := frame.ParseTCP(raw)
		if err != nil {
			return nil, false, err
		}
		if f.TransactionID != txid {
			logger.LogWarn("unit %d discarding stale frame: txid %d, expected %d",
				c.unitID, f.TransactionID, txid)
			return nil, false, nil
		}
		if f.UnitID != c.unitID {
			logger.LogWarn("discarding frame from unit %d, expected %d", f.UnitID, c.unitID)
			return nil, false, nil
		}
		return f.PDU, true, nil

	default: // ModeRTU: the link is half-duplex, frames match by arrival order
		f, err := frame.ParseRTU(raw)
		if err != nil {
			return nil, false, err
		}
		if f.UnitID != c.unitID {
			logger.LogWarn("discarding frame from unit %d, expected %d", f.UnitID, c.unitID)
			return nil, false, nil
		}
		return f.PDU, true, nil
	}
}
