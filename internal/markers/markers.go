package markers

import (
	"bytes"
	"io"
)

// Markers is the fixed set of ASCII tokens that hint at a flash-size
// configuration baked into an image. Matches are reported in this order.
var Markers = []string{"4096", "8192", "8MB", "4MB", "8192k", "4096k"}

// chunkSize is how much of the input is read per iteration.
const chunkSize = 64 * 1024

// ProgressCallback reports how many bytes have been scanned so far.
type ProgressCallback func(scanned int64)

// Match records the first occurrence of a marker.
type Match struct {
	Marker string
	Offset int64
}

// Scan reads r to EOF and returns the first offset of every marker found,
// ordered as in Markers. Input is consumed in chunks; the last
// maxMarkerLen-1 bytes of each chunk are carried over so matches that
// straddle a chunk boundary are still found.
func Scan(r io.Reader, progress ProgressCallback) ([]Match, error) {
	maxLen := 0
	for _, m := range Markers {
		if len(m) > maxLen {
			maxLen = len(m)
		}
	}

	found := make(map[string]int64, len(Markers))
	buf := make([]byte, chunkSize)

	var tail []byte
	var offset int64 // file offset of the start of the current window
	var scanned int64

	for {
		n, err := r.Read(buf)
		if n > 0 {
			window := make([]byte, 0, len(tail)+n)
			window = append(window, tail...)
			window = append(window, buf[:n]...)

			for _, m := range Markers {
				if _, ok := found[m]; ok {
					continue
				}
				if i := bytes.Index(window, []byte(m)); i >= 0 {
					found[m] = offset + int64(i)
				}
			}

			scanned += int64(n)
			if progress != nil {
				progress(scanned)
			}

			keep := maxLen - 1
			if keep > len(window) {
				keep = len(window)
			}
			offset += int64(len(window) - keep)
			tail = window[len(window)-keep:]
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	var matches []Match
	for _, m := range Markers {
		if off, ok := found[m]; ok {
			matches = append(matches, Match{Marker: m, Offset: off})
		}
	}
	return matches, nil
}
