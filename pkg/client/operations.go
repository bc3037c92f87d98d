package client

import (
	"context"

	"fieldbus-engine/pkg/errors"
	"fieldbus-engine/pkg/pdu"
)

// ReadCoils reads quantity coil states starting at address (FC 0x01)
func (c *Client) ReadCoils(ctx context.Context, address, quantity uint16) ([]bool, error) {
	return c.readBits(ctx, pdu.FuncReadCoils, address, quantity)
}

// ReadDiscreteInputs reads quantity discrete inputs starting at address (FC 0x02)
func (c *Client) ReadDiscreteInputs(ctx context.Context, address, quantity uint16) ([]bool, error) {
	return c.readBits(ctx, pdu.FuncReadDiscreteInputs, address, quantity)
}

// ReadHoldingRegisters reads quantity holding registers starting at address (FC 0x03)
func (c *Client) ReadHoldingRegisters(ctx context.Context, address, quantity uint16) ([]uint16, error) {
	return c.readRegisters(ctx, pdu.FuncReadHoldingRegisters, address, quantity)
}

// ReadInputRegisters reads quantity input registers starting at address (FC 0x04)
func (c *Client) ReadInputRegisters(ctx context.Context, address, quantity uint16) ([]uint16, error) {
	return c.readRegisters(ctx, pdu.FuncReadInputRegisters, address, quantity)
}

// WriteSingleCoil writes one coil state (FC 0x05) and validates the echo
func (c *Client) WriteSingleCoil(ctx context.Context, address uint16, on bool) error {
	resp, err := c.Exchange(ctx, pdu.BuildWriteSingleCoil(address, on))
	if err != nil {
		return err
	}
	echoAddr, _, err := pdu.DecodeWriteResponse(pdu.FuncWriteSingleCoil, resp)
	if err != nil {
		return err
	}
	if echoAddr != address {
		return errors.Newf("client.write", errors.KindProtocol,
			"write echo address %d, expected %d", echoAddr, address)
	}
	return nil
}

// WriteSingleRegister writes one holding register (FC 0x06) and
// validates the echo.
func (c *Client) WriteSingleRegister(ctx context.Context, address, value uint16) error {
	resp, err := c.Exchange(ctx, pdu.BuildWriteSingleRegister(address, value))
	if err != nil {
		return err
	}
	echoAddr, echoValue, err := pdu.DecodeWriteResponse(pdu.FuncWriteSingleRegister, resp)
	if err != nil {
		return err
	}
	if echoAddr != address || echoValue != value {
		return errors.Newf("client.write", errors.KindProtocol,
			"write echo (%d, 0x%04X), expected (%d, 0x%04X)", echoAddr, echoValue, address, value)
	}
	return nil
}

// WriteMultipleRegisters writes a contiguous register block (FC 0x10)
// and validates the acknowledged quantity.
func (c *Client) WriteMultipleRegisters(ctx context.Context, address uint16, values []uint16) error {
	req, err := pdu.BuildWriteMultipleRegisters(address, values)
	if err != nil {
		return err
	}
	resp, err := c.Exchange(ctx, req)
	if err != nil {
		return err
	}
	echoAddr, echoQty, err := pdu.DecodeWriteResponse(pdu.FuncWriteMultipleRegisters, resp)
	if err != nil {
		return err
	}
	if echoAddr != address || int(echoQty) != len(values) {
		return errors.Newf("client.write", errors.KindProtocol,
			"block write ack (%d, %d), expected (%d, %d)", echoAddr, echoQty, address, len(values))
	}
	return nil
}

// WriteMultipleCoils writes a contiguous coil block (FC 0x0F) and
// validates the acknowledged quantity.
func (c *Client) WriteMultipleCoils(ctx context.Context, address uint16, values []bool) error {
	req, err := pdu.BuildWriteMultipleCoils(address, values)
	if err != nil {
		return err
	}
	resp, err := c.Exchange(ctx, req)
	if err != nil {
		return err
	}
	echoAddr, echoQty, err := pdu.DecodeWriteResponse(pdu.FuncWriteMultipleCoils, resp)
	if err != nil {
		return err
	}
	if echoAddr != address || int(echoQty) != len(values) {
		return errors.Newf("client.write", errors.KindProtocol,
			"block write ack (%d, %d), expected (%d, %d)", echoAddr, echoQty, address, len(values))
	}
	return nil
}

func (c *Client) readBits(ctx context.Context, fc pdu.FunctionCode, address, quantity uint16) ([]bool, error) {
	req, err := pdu.BuildReadRequest(fc, address, quantity)
	if err != nil {
		return nil, err
	}
	resp, err := c.Exchange(ctx, req)
	if err != nil {
		return nil, err
	}
	return pdu.DecodeReadBitsResponse(fc, resp, int(quantity))
}

func (c *Client) readRegisters(ctx context.Context, fc pdu.FunctionCode, address, quantity uint16) ([]uint16, error) {
	req, err := pdu.BuildReadRequest(fc, address, quantity)
	if err != nil {
		return nil, err
	}
	resp, err := c.Exchange(ctx, req)
	if err != nil {
		return nil, err
	}
	values, err := pdu.DecodeReadRegistersResponse(fc, resp)
	if err != nil {
		return nil, err
	}
	if len(values) < int(quantity) {
		return nil, errors.Newf("client.read", errors.KindProtocol,
			"response carries %d registers, requested %d", len(values), quantity)
	}
	return values, nil
}
