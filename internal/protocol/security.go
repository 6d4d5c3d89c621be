package protocol

import (
	"encoding/binary"
	"fmt"
)

// SecurityInfo is the parsed payload of a GET_SECURITY_INFO response.
// Layout: flags (4, LE), flash_crypt_cnt (1), key_purposes (7), then on
// chips that report it, chip_id (4, LE) and api_version (4, LE).
type SecurityInfo struct {
	Flags         uint32
	FlashCryptCnt byte
	KeyPurposes   [7]byte
	ChipID        uint32
	APIVersion    uint32
}

// Security flag bits
const (
	SecFlagSecureBootEnabled      = 1 << 0
	SecFlagFlashEncryptionEnabled = 1 << 4
)

// ParseSecurityInfo decodes a GET_SECURITY_INFO response payload.
func ParseSecurityInfo(data []byte) (*SecurityInfo, error) {
	if len(data) < 12 {
		return nil, fmt.Errorf("security info too short: %d bytes", len(data))
	}

	info := &SecurityInfo{
		Flags:         binary.LittleEndian.Uint32(data[0:4]),
		FlashCryptCnt: data[4],
	}
	copy(info.KeyPurposes[:], data[5:12])

	if len(data) >= 20 {
		info.ChipID = binary.LittleEndian.Uint32(data[12:16])
		info.APIVersion = binary.LittleEndian.Uint32(data[16:20])
	}

	return info, nil
}

// SecureBootEnabled reports whether the secure boot flag is set.
func (s *SecurityInfo) SecureBootEnabled() bool {
	return s.Flags&SecFlagSecureBootEnabled != 0
}

// FlashEncryptionEnabled reports whether the flash encryption flag is set.
func (s *SecurityInfo) FlashEncryptionEnabled() bool {
	return s.Flags&SecFlagFlashEncryptionEnabled != 0
}
