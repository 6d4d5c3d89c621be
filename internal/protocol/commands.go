package protocol

// ESP32 ROM bootloader commands used for inspection
const (
	CmdSync            = 0x08
	CmdReadReg         = 0x0A
	CmdSpiAttach       = 0x0D
	CmdGetSecurityInfo = 0x14
)

// Direction byte values
const (
	DirRequest  = 0x00
	DirResponse = 0x01
)

// DefaultBaudRate is what the ROM loader is talked to at.
const DefaultBaudRate = 921600

// ChipDetectMagicReg holds a per-family magic value; reading it is the
// usual way to tell ESP32 variants apart without a stub.
const ChipDetectMagicReg = 0x40001000

// Chip IDs reported by GET_SECURITY_INFO
const (
	ChipIDESP32C3 = 0x05
	ChipIDESP32S3 = 0x09
	ChipIDESP32C6 = 0x0D
	ChipIDESP32H2 = 0x10
)

// ChipName returns the human-readable name for a chip ID
func ChipName(id uint32) string {
	switch id {
	case ChipIDESP32C3:
		return "ESP32-C3"
	case ChipIDESP32S3:
		return "ESP32-S3"
	case ChipIDESP32C6:
		return "ESP32-C6"
	case ChipIDESP32H2:
		return "ESP32-H2"
	default:
		return "ESP32 (unknown variant)"
	}
}

// Error codes from the ROM bootloader
const (
	ErrInvalidMessage  = 0x05
	ErrFailedToAct     = 0x06
	ErrInvalidCRC      = 0x07
	ErrFlashWriteErr   = 0x08
	ErrFlashReadErr    = 0x09
	ErrFlashReadLenErr = 0x0A
	ErrDeflateError    = 0x0B
)

// ErrorMessage returns a human-readable ROM error message
func ErrorMessage(code byte) string {
	switch code {
	case ErrInvalidMessage:
		return "invalid message"
	case ErrFailedToAct:
		return "failed to act"
	case ErrInvalidCRC:
		return "invalid CRC"
	case ErrFlashWriteErr:
		return "flash write error"
	case ErrFlashReadErr:
		return "flash read error"
	case ErrFlashReadLenErr:
		return "flash read length error"
	case ErrDeflateError:
		return "deflate error"
	default:
		return "unknown error"
	}
}
