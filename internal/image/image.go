package image

import (
	"errors"
	"fmt"
	"strings"
)

// ESP image header layout (esp_image_header_t, esp-idf v3/v4):
//   0: magic (0xE9)
//   1: segment count
//   2: SPI config byte (bit layout differs between toolchains)
const (
	HeaderMin    = 8  // anything shorter is not a usable header
	HeaderWindow = 32 // how much of the file prefix we inspect
	DumpLen      = 16 // bytes shown in the hex dump

	// Magic is the expected value of the first header byte. It is
	// reported but never enforced.
	Magic = 0xE9
)

// ErrTooSmall is returned when the input holds fewer than HeaderMin bytes.
var ErrTooSmall = errors.New("image header too small")

// Header holds the fixed-offset fields decoded from an image prefix.
type Header struct {
	Raw          []byte // the header window, at most HeaderWindow bytes
	Magic        byte
	SegmentCount byte
	ConfigByte   byte
}

// ParseHeader decodes the fixed-offset fields from the leading bytes of a
// firmware image. data may be shorter than HeaderWindow; fewer than
// HeaderMin bytes returns ErrTooSmall.
func ParseHeader(data []byte) (*Header, error) {
	if len(data) < HeaderMin {
		return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrTooSmall, len(data), HeaderMin)
	}
	if len(data) > HeaderWindow {
		data = data[:HeaderWindow]
	}
	return &Header{
		Raw:          data,
		Magic:        data[0],
		SegmentCount: data[1],
		ConfigByte:   data[2],
	}, nil
}

// Dump returns the portion of the header window shown in reports.
func (h *Header) Dump() []byte {
	if len(h.Raw) > DumpLen {
		return h.Raw[:DumpLen]
	}
	return h.Raw
}

// Flash size codes as esptool writes them into the image header.
var sizeLabels = map[byte]string{
	0: "1MB",
	1: "2MB",
	2: "4MB",
	3: "8MB",
	4: "16MB",
	5: "32MB",
}

// SizeLabel returns the flash-size label for a size code, or "unknown"
// for codes outside the table.
func SizeLabel(code byte) string {
	if label, ok := sizeLabels[code]; ok {
		return label
	}
	return "unknown"
}

// Candidate is one speculative bit-field reading of the SPI config byte.
type Candidate struct {
	Name  string
	Value byte
	Label string
}

// Candidates returns the three plausible flash-size decodings of the SPI
// config byte. Toolchains disagree on which bits carry the size and the
// real layout is not pinned down, so all three are reported and none is
// preferred over the others.
func Candidates(config byte) [3]Candidate {
	low3 := config & 0x07
	low4 := config & 0x0F
	high3 := (config >> 4) & 0x07

	return [3]Candidate{
		{Name: "lower 3 bits", Value: low3, Label: SizeLabel(low3)},
		{Name: "lower 4 bits", Value: low4, Label: SizeLabel(low4)},
		{Name: "upper 3 bits", Value: high3, Label: SizeLabel(high3)},
	}
}

// HexDump renders data as space-separated two-digit hex values.
func HexDump(data []byte) string {
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = fmt.Sprintf("%02x", b)
	}
	return strings.Join(parts, " ")
}
