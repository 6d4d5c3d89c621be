// Package device probes attached ESP32 boards through the ROM loader.
package device

import (
	"fmt"
	"time"

	"github.com/bigbag/espinspect/internal/protocol"
	"github.com/bigbag/espinspect/internal/serial"
	"github.com/bigbag/espinspect/internal/slip"
)

// Info describes a probed ESP32 device.
type Info struct {
	Port     string
	ChipID   uint32
	ChipName string
	Security *protocol.SecurityInfo // nil when the chip did not report it
	MagicReg uint32                 // raw chip-detect magic register value
}

// Probe resets the device on portName into download mode and queries it.
// The device is hard-reset back into its firmware before returning.
func Probe(portName string, baudRate int) (*Info, error) {
	port, err := serial.Open(portName, baudRate)
	if err != nil {
		return nil, err
	}
	defer port.Close()

	s := &session{port: port}

	if err := port.ResetToBootloader(); err != nil {
		return nil, fmt.Errorf("failed to reset %s: %w", portName, err)
	}
	if err := s.sync(); err != nil {
		return nil, fmt.Errorf("failed to sync on %s: %w", portName, err)
	}

	info := &Info{
		Port:     portName,
		ChipName: "ESP32 (unknown variant)",
	}

	// Best effort: sync worked, so it is an ESP32 of some kind even
	// when the detail queries fail.
	if sec, err := s.securityInfo(); err == nil {
		info.Security = sec
		info.ChipID = sec.ChipID
		info.ChipName = protocol.ChipName(sec.ChipID)
	}
	if magic, err := s.readReg(protocol.ChipDetectMagicReg); err == nil {
		info.MagicReg = magic
	}

	port.HardReset()
	return info, nil
}

// Scan probes every listed serial port and returns all devices found.
func Scan(baudRate int) ([]Info, error) {
	ports, err := serial.ListPorts()
	if err != nil {
		return nil, fmt.Errorf("failed to list ports: %w", err)
	}

	var found []Info
	for _, portName := range ports {
		info, err := Probe(portName, baudRate)
		if err != nil {
			continue
		}
		found = append(found, *info)
	}
	return found, nil
}

// session is one ROM loader conversation over an open port.
type session struct {
	port *serial.Port
}

// sync establishes communication with the ROM loader.
func (s *session) sync() error {
	req := protocol.NewRequest(protocol.CmdSync, protocol.SyncData())
	frame := slip.Encode(req.Encode())

	for attempt := 0; attempt < 5; attempt++ {
		s.port.Flush()

		if _, err := s.port.Write(frame); err != nil {
			continue
		}

		resp, err := s.readResponse(500 * time.Millisecond)
		if err != nil {
			continue
		}

		if resp.Command == protocol.CmdSync && resp.IsSuccess() {
			// The ROM answers a sync several times; drain the rest.
			for i := 0; i < 7; i++ {
				s.readResponse(100 * time.Millisecond)
			}
			return nil
		}
	}

	return fmt.Errorf("sync failed after 5 attempts")
}

func (s *session) securityInfo() (*protocol.SecurityInfo, error) {
	resp, err := s.command(protocol.NewRequest(protocol.CmdGetSecurityInfo, nil))
	if err != nil {
		return nil, err
	}
	return protocol.ParseSecurityInfo(resp.Data)
}

func (s *session) readReg(addr uint32) (uint32, error) {
	resp, err := s.command(protocol.NewRequest(protocol.CmdReadReg, protocol.ReadRegData(addr)))
	if err != nil {
		return 0, err
	}
	return resp.Value, nil
}

// command sends a request and waits for a successful response.
func (s *session) command(req *protocol.Request) (*protocol.Response, error) {
	frame := slip.Encode(req.Encode())

	if _, err := s.port.Write(frame); err != nil {
		return nil, err
	}

	resp, err := s.readResponse(2 * time.Second)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("command 0x%02X failed: %s", req.Command, resp.ErrorString())
	}
	return resp, nil
}

// readResponse accumulates serial input until a complete frame decodes
// into a response, or the deadline passes.
func (s *session) readResponse(timeout time.Duration) (*protocol.Response, error) {
	deadline := time.Now().Add(timeout)
	var buffer []byte

	for time.Now().Before(deadline) {
		chunk := make([]byte, 256)
		n, err := s.port.ReadWithTimeout(chunk, 100*time.Millisecond)
		if n > 0 {
			buffer = append(buffer, chunk[:n]...)
		}
		if err != nil && n == 0 {
			continue
		}

		frame, rest := slip.NextFrame(buffer)
		if frame == nil {
			continue
		}
		buffer = rest

		data := slip.Decode(frame)
		if len(data) >= 10 {
			return protocol.DecodeResponse(data)
		}
	}

	return nil, fmt.Errorf("timeout waiting for response")
}
