package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bigbag/espinspect/internal/image"
)

func writeTempImage(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "firmware.bin")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestHeaderReport_EmptyFile(t *testing.T) {
	path := writeTempImage(t, nil)

	var out bytes.Buffer
	err := headerReport(&out, path)
	if !errors.Is(err, image.ErrTooSmall) {
		t.Fatalf("headerReport() error = %v, want ErrTooSmall", err)
	}
	if !strings.Contains(out.String(), "File too small") {
		t.Errorf("headerReport() output = %q, want 'File too small'", out.String())
	}
}

func TestHeaderReport_ShortFile(t *testing.T) {
	path := writeTempImage(t, []byte{0xE9, 0x03, 0x02})

	var out bytes.Buffer
	if err := headerReport(&out, path); !errors.Is(err, image.ErrTooSmall) {
		t.Fatalf("headerReport() error = %v, want ErrTooSmall", err)
	}
}

func TestHeaderReport_Example(t *testing.T) {
	data := make([]byte, 16)
	copy(data, []byte{0xE9, 0x03, 0x02})
	path := writeTempImage(t, data)

	var out bytes.Buffer
	if err := headerReport(&out, path); err != nil {
		t.Fatalf("headerReport() error = %v", err)
	}

	report := out.String()
	for _, want := range []string{
		"Header bytes: e9 03 02 00 00 00 00 00 00 00 00 00 00 00 00 00",
		"Magic: 0xe9",
		"Segment count: 3",
		"Raw config byte: 0x02 (00000010)",
		"Decoded candidates:",
		" - lower 3 bits -> 2 4MB",
		" - lower 4 bits -> 2 4MB",
		" - upper 3 bits -> 0 1MB",
		"Done",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("headerReport() output missing %q:\n%s", want, report)
		}
	}
}

func TestHeaderReport_UnknownCandidates(t *testing.T) {
	// Config byte 0xFF: low3=7, low4=15, high3=7, all outside the table.
	data := make([]byte, 8)
	copy(data, []byte{0xE9, 0x01, 0xFF})
	path := writeTempImage(t, data)

	var out bytes.Buffer
	if err := headerReport(&out, path); err != nil {
		t.Fatalf("headerReport() error = %v", err)
	}

	report := out.String()
	if strings.Count(report, "unknown") != 3 {
		t.Errorf("headerReport() output should have 3 unknown candidates:\n%s", report)
	}
	if !strings.Contains(report, "Done") {
		t.Errorf("headerReport() missing completion line:\n%s", report)
	}
}

func TestHeaderReport_Marker(t *testing.T) {
	data := make([]byte, 64)
	copy(data, []byte{0xE9, 0x03, 0x02})
	copy(data[40:], "4MB")
	path := writeTempImage(t, data)

	var out bytes.Buffer
	if err := headerReport(&out, path); err != nil {
		t.Fatalf("headerReport() error = %v", err)
	}

	if !strings.Contains(out.String(), "Found ascii marker: 4MB") {
		t.Errorf("headerReport() output missing marker line:\n%s", out.String())
	}
}

func TestHeaderReport_NoMarkers(t *testing.T) {
	data := make([]byte, 64)
	copy(data, []byte{0xE9, 0x03, 0x02})
	path := writeTempImage(t, data)

	var out bytes.Buffer
	if err := headerReport(&out, path); err != nil {
		t.Fatalf("headerReport() error = %v", err)
	}

	if strings.Contains(out.String(), "Found ascii marker") {
		t.Errorf("headerReport() reported a marker in marker-free data:\n%s", out.String())
	}
}

func TestHeaderReport_MissingFile(t *testing.T) {
	var out bytes.Buffer
	err := headerReport(&out, filepath.Join(t.TempDir(), "nope.bin"))

	if err == nil {
		t.Fatal("headerReport() expected error for missing file, got nil")
	}
	if errors.Is(err, image.ErrTooSmall) {
		t.Error("headerReport() missing-file error must differ from ErrTooSmall")
	}
	if out.Len() != 0 {
		t.Errorf("headerReport() produced output before failing: %q", out.String())
	}
}

func TestReadHeaderWindow_Truncates(t *testing.T) {
	data := make([]byte, 100)
	path := writeTempImage(t, data)

	window, err := readHeaderWindow(path)
	if err != nil {
		t.Fatalf("readHeaderWindow() error = %v", err)
	}
	if len(window) != image.HeaderWindow {
		t.Errorf("readHeaderWindow() length = %d, want %d", len(window), image.HeaderWindow)
	}
}

func TestReadHeaderWindow_ShortFile(t *testing.T) {
	path := writeTempImage(t, []byte{0x01, 0x02})

	window, err := readHeaderWindow(path)
	if err != nil {
		t.Fatalf("readHeaderWindow() error = %v", err)
	}
	if len(window) != 2 {
		t.Errorf("readHeaderWindow() length = %d, want 2", len(window))
	}
}
