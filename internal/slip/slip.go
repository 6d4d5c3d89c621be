// Package slip implements the SLIP framing the ESP ROM loader speaks.
package slip

const (
	End    = 0xC0
	Esc    = 0xDB
	EscEnd = 0xDC
	EscEsc = 0xDD
)

// Encode wraps data in a SLIP frame: END delimiters at both ends,
// special bytes escaped.
func Encode(data []byte) []byte {
	out := make([]byte, 0, len(data)+10)
	out = append(out, End)
	for _, b := range data {
		switch b {
		case End:
			out = append(out, Esc, EscEnd)
		case Esc:
			out = append(out, Esc, EscEsc)
		default:
			out = append(out, b)
		}
	}
	return append(out, End)
}

// Decode strips the END delimiters from a frame and unescapes the payload.
// Returns nil if the frame holds no payload.
func Decode(frame []byte) []byte {
	start, end := 0, len(frame)
	for start < end && frame[start] == End {
		start++
	}
	for end > start && frame[end-1] == End {
		end--
	}
	if start >= end {
		return nil
	}

	body := frame[start:end]
	out := make([]byte, 0, len(body))
	for i := 0; i < len(body); i++ {
		if body[i] != Esc || i+1 >= len(body) {
			out = append(out, body[i])
			continue
		}
		i++
		switch body[i] {
		case EscEnd:
			out = append(out, End)
		case EscEsc:
			out = append(out, Esc)
		default:
			// Malformed escape, keep the byte as-is.
			out = append(out, body[i])
		}
	}
	return out
}

// NextFrame splits the first complete frame (END delimiters included) off
// the front of a byte stream. Returns a nil frame when no complete frame
// is buffered yet; rest is then the unconsumed input.
func NextFrame(data []byte) (frame, rest []byte) {
	start := -1
	for i, b := range data {
		if b == End {
			start = i
			break
		}
	}
	if start == -1 {
		return nil, data
	}

	inFrame := false
	for i := start; i < len(data); i++ {
		if data[i] != End {
			inFrame = true
			continue
		}
		if inFrame {
			return data[start : i+1], data[i+1:]
		}
	}
	return nil, data
}
