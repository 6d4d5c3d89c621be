package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bigbag/espinspect/internal/image"
	"github.com/bigbag/espinspect/internal/markers"
)

// headerReport decodes the image header at path and writes the report
// to w. Returns image.ErrTooSmall (after printing "File too small")
// when the file holds fewer than image.HeaderMin bytes.
func headerReport(w io.Writer, path string) error {
	window, err := readHeaderWindow(path)
	if err != nil {
		return err
	}

	hdr, err := image.ParseHeader(window)
	if err != nil {
		if errors.Is(err, image.ErrTooSmall) {
			fmt.Fprintln(w, "File too small")
		}
		return err
	}

	fmt.Fprintf(w, "Header bytes: %s\n", image.HexDump(hdr.Dump()))
	fmt.Fprintf(w, "Magic: 0x%02x\n", hdr.Magic)
	fmt.Fprintf(w, "Segment count: %d\n", hdr.SegmentCount)
	fmt.Fprintf(w, "Raw config byte: 0x%02x (%08b)\n", hdr.ConfigByte, hdr.ConfigByte)

	fmt.Fprintln(w, "Decoded candidates:")
	for _, c := range image.Candidates(hdr.ConfigByte) {
		fmt.Fprintf(w, " - %s -> %d %s\n", c.Name, c.Value, c.Label)
	}

	// Second pass over the whole file for corroborating ASCII markers.
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to reopen %s: %w", path, err)
	}
	defer f.Close()

	matches, err := markers.Scan(f, nil)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", path, err)
	}
	for _, m := range matches {
		fmt.Fprintf(w, "Found ascii marker: %s\n", m.Marker)
	}

	fmt.Fprintln(w, "\nDone")
	return nil
}

// readHeaderWindow reads up to image.HeaderWindow bytes from the start
// of the file. Short files are not an error here; ParseHeader decides
// whether the window is usable.
func readHeaderWindow(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	window := make([]byte, image.HeaderWindow)
	n, err := io.ReadFull(f, window)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return window[:n], nil
}
