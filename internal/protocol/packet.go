package protocol

import (
	"encoding/binary"
	"fmt"
)

// Request is an ESP32 ROM bootloader request packet.
type Request struct {
	Command  byte
	Data     []byte
	Checksum uint32
}

// Response is an ESP32 ROM bootloader response packet.
type Response struct {
	Command byte
	Data    []byte
	Value   uint32
	Status  byte
	Error   byte
}

// NewRequest creates a request with its checksum filled in.
func NewRequest(cmd byte, data []byte) *Request {
	r := &Request{Command: cmd, Data: data}
	r.Checksum = r.checksum()
	return r
}

// checksum is XOR of all data bytes over the 0xEF seed.
func (r *Request) checksum() uint32 {
	var sum byte = 0xEF
	for _, b := range r.Data {
		sum ^= b
	}
	return uint32(sum)
}

// Encode serializes the request to bytes (before SLIP framing).
// Packet format:
//
//	0:    direction (0x00 = request)
//	1:    command
//	2-3:  data size (little-endian)
//	4-7:  checksum (little-endian)
//	8+:   data
func (r *Request) Encode() []byte {
	packet := make([]byte, 8+len(r.Data))
	packet[0] = DirRequest
	packet[1] = r.Command
	binary.LittleEndian.PutUint16(packet[2:4], uint16(len(r.Data)))
	binary.LittleEndian.PutUint32(packet[4:8], r.Checksum)
	copy(packet[8:], r.Data)
	return packet
}

// DecodeResponse parses a response from raw bytes (after SLIP decoding).
func DecodeResponse(data []byte) (*Response, error) {
	// Minimum response is 8 bytes of header plus status and error
	if len(data) < 10 {
		return nil, fmt.Errorf("response too short: %d bytes", len(data))
	}
	if data[0] != DirResponse {
		return nil, fmt.Errorf("invalid direction byte: 0x%02X", data[0])
	}

	resp := &Response{Command: data[1]}

	dataSize := binary.LittleEndian.Uint16(data[2:4])
	resp.Value = binary.LittleEndian.Uint32(data[4:8])

	if int(dataSize) > len(data)-8 {
		return nil, fmt.Errorf("data size mismatch: expected %d, have %d", dataSize, len(data)-8)
	}

	if dataSize >= 2 {
		// Last two payload bytes are status and error
		resp.Data = data[8 : 8+dataSize-2]
		resp.Status = data[8+dataSize-2]
		resp.Error = data[8+dataSize-1]
	} else if dataSize > 0 {
		resp.Data = data[8 : 8+dataSize]
	}

	return resp, nil
}

// IsSuccess returns true if the response indicates success.
func (r *Response) IsSuccess() bool {
	return r.Status == 0 && r.Error == 0
}

// ErrorString returns a human-readable failure description, empty on success.
func (r *Response) ErrorString() string {
	if r.IsSuccess() {
		return ""
	}
	return fmt.Sprintf("status=0x%02X error=0x%02X (%s)", r.Status, r.Error, ErrorMessage(r.Error))
}

// SyncData returns the payload of a SYNC command: 0x07 0x07 0x12 0x20
// followed by 32 bytes of 0x55.
func SyncData() []byte {
	data := make([]byte, 36)
	data[0] = 0x07
	data[1] = 0x07
	data[2] = 0x12
	data[3] = 0x20
	for i := 4; i < 36; i++ {
		data[i] = 0x55
	}
	return data
}

// ReadRegData returns the payload of a READ_REG command. The register
// value comes back in the response Value field.
func ReadRegData(addr uint32) []byte {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, addr)
	return data
}

// SpiAttachData returns the payload of an SPI_ATTACH command.
// All zeros selects the default SPI flash configuration.
func SpiAttachData() []byte {
	return make([]byte, 8)
}
