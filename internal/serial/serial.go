// Package serial wraps go.bug.st/serial with the ESP32 reset behaviour
// the ROM loader session needs.
package serial

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// Port is a serial port talking to an ESP32 board.
type Port struct {
	port     serial.Port
	portName string
	baudRate int
}

// Open opens a serial port in 8N1 mode at the given baud rate.
func Open(portName string, baudRate int) (*Port, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open port %s: %w", portName, err)
	}

	if err := port.SetReadTimeout(100 * time.Millisecond); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout: %w", err)
	}

	return &Port{
		port:     port,
		portName: portName,
		baudRate: baudRate,
	}, nil
}

// Close closes the serial port.
func (p *Port) Close() error {
	if p.port != nil {
		return p.port.Close()
	}
	return nil
}

// Write writes data to the serial port.
func (p *Port) Write(data []byte) (int, error) {
	return p.port.Write(data)
}

// ReadWithTimeout reads data with a one-shot timeout.
func (p *Port) ReadWithTimeout(buf []byte, timeout time.Duration) (int, error) {
	if err := p.port.SetReadTimeout(timeout); err != nil {
		return 0, err
	}
	defer p.port.SetReadTimeout(100 * time.Millisecond)

	return p.port.Read(buf)
}

// Flush discards any buffered input.
func (p *Port) Flush() error {
	return p.port.ResetInputBuffer()
}

// SetDTR sets the DTR signal.
func (p *Port) SetDTR(value bool) error {
	return p.port.SetDTR(value)
}

// SetRTS sets the RTS signal.
func (p *Port) SetRTS(value bool) error {
	return p.port.SetRTS(value)
}

// ResetToBootloader resets the ESP32 into download mode via DTR/RTS,
// using the auto-reset circuit found on most dev boards. Signal
// polarities are inverted by the transistor drivers.
func (p *Port) ResetToBootloader() error {
	// Assert EN (reset)
	if err := p.SetRTS(true); err != nil {
		return err
	}
	if err := p.SetDTR(false); err != nil {
		return err
	}
	time.Sleep(100 * time.Millisecond)

	// Assert GPIO0 (boot mode), release EN
	if err := p.SetRTS(false); err != nil {
		return err
	}
	if err := p.SetDTR(true); err != nil {
		return err
	}
	time.Sleep(50 * time.Millisecond)

	// Release GPIO0
	if err := p.SetRTS(true); err != nil {
		return err
	}
	if err := p.SetDTR(false); err != nil {
		return err
	}
	time.Sleep(50 * time.Millisecond)

	// Release all
	if err := p.SetRTS(false); err != nil {
		return err
	}
	if err := p.SetDTR(false); err != nil {
		return err
	}

	// Drop any garbage produced by the reset
	p.Flush()
	time.Sleep(100 * time.Millisecond)

	return nil
}

// HardReset resets the chip without entering download mode, so the
// device resumes running its firmware after we are done looking at it.
func (p *Port) HardReset() error {
	if err := p.SetRTS(true); err != nil {
		return err
	}
	time.Sleep(100 * time.Millisecond)
	return p.SetRTS(false)
}

// PortName returns the port name.
func (p *Port) PortName() string {
	return p.portName
}

// ListPorts returns the available serial ports.
func ListPorts() ([]string, error) {
	return serial.GetPortsList()
}
