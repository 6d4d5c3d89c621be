package protocol

import (
	"encoding/binary"
	"testing"
)

func TestParseSecurityInfo_TooShort(t *testing.T) {
	inputs := [][]byte{
		nil,
		{},
		make([]byte, 11),
	}

	for _, data := range inputs {
		if _, err := ParseSecurityInfo(data); err == nil {
			t.Errorf("ParseSecurityInfo(%d bytes) expected error, got nil", len(data))
		}
	}
}

func TestParseSecurityInfo_Minimal(t *testing.T) {
	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[0:4], 0x11)
	data[4] = 0x03
	for i := 5; i < 12; i++ {
		data[i] = byte(i)
	}

	info, err := ParseSecurityInfo(data)
	if err != nil {
		t.Fatalf("ParseSecurityInfo() error = %v", err)
	}

	if info.Flags != 0x11 {
		t.Errorf("ParseSecurityInfo Flags = 0x%X, want 0x11", info.Flags)
	}
	if info.FlashCryptCnt != 0x03 {
		t.Errorf("ParseSecurityInfo FlashCryptCnt = 0x%02X, want 0x03", info.FlashCryptCnt)
	}
	if info.ChipID != 0 {
		t.Errorf("ParseSecurityInfo ChipID = %d, want 0 when absent", info.ChipID)
	}
}

func TestParseSecurityInfo_WithChipID(t *testing.T) {
	data := make([]byte, 20)
	binary.LittleEndian.PutUint32(data[12:16], ChipIDESP32C3)
	binary.LittleEndian.PutUint32(data[16:20], 2)

	info, err := ParseSecurityInfo(data)
	if err != nil {
		t.Fatalf("ParseSecurityInfo() error = %v", err)
	}

	if info.ChipID != ChipIDESP32C3 {
		t.Errorf("ParseSecurityInfo ChipID = 0x%X, want 0x%X", info.ChipID, ChipIDESP32C3)
	}
	if info.APIVersion != 2 {
		t.Errorf("ParseSecurityInfo APIVersion = %d, want 2", info.APIVersion)
	}
}

func TestSecurityInfo_FlagHelpers(t *testing.T) {
	tests := []struct {
		flags      uint32
		secureBoot bool
		flashEnc   bool
	}{
		{0, false, false},
		{SecFlagSecureBootEnabled, true, false},
		{SecFlagFlashEncryptionEnabled, false, true},
		{SecFlagSecureBootEnabled | SecFlagFlashEncryptionEnabled, true, true},
	}

	for _, tc := range tests {
		info := &SecurityInfo{Flags: tc.flags}
		if got := info.SecureBootEnabled(); got != tc.secureBoot {
			t.Errorf("SecureBootEnabled(flags=0x%X) = %v, want %v", tc.flags, got, tc.secureBoot)
		}
		if got := info.FlashEncryptionEnabled(); got != tc.flashEnc {
			t.Errorf("FlashEncryptionEnabled(flags=0x%X) = %v, want %v", tc.flags, got, tc.flashEnc)
		}
	}
}
