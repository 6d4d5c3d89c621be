package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/bigbag/espinspect/internal/device"
	"github.com/bigbag/espinspect/internal/image"
	"github.com/bigbag/espinspect/internal/markers"
	"github.com/bigbag/espinspect/internal/protocol"
	"github.com/bigbag/espinspect/internal/serial"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	portFlag string
	baudFlag int
)

// Exit codes: 1 for unreadable input and device failures, 2 when the
// image is too short to hold a header.
const (
	exitFailure  = 1
	exitTooSmall = 2
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "espinspect",
		Short: "Inspect ESP32 firmware images and devices",
		Long: `espinspect decodes the header of an ESP32 firmware image, reports
the plausible flash-size readings of its SPI config byte, and scans
the image for ASCII markers that hint at the configured flash size.

With a board attached it can also probe the chip over serial.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	headerCmd := &cobra.Command{
		Use:   "header <image.bin>",
		Short: "Decode the image header and guess the flash size",
		Long: `Decode the fixed-offset fields of a firmware image header.

The SPI config byte at offset 2 encodes the flash size, but toolchains
disagree on which bits carry it. All plausible decodings are printed;
none is authoritative.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return headerReport(os.Stdout, args[0])
		},
	}

	scanCmd := &cobra.Command{
		Use:   "scan <image.bin>",
		Short: "Scan an image for flash-size markers",
		Long: `Scan the whole file for ASCII tokens (4096, 8192, 8MB, 4MB, 8192k,
4096k) and report the first offset of each one found.`,
		Args: cobra.ExactArgs(1),
		RunE: runScan,
	}

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Probe a connected ESP32 device",
		Long:  "Reset an attached ESP32 into download mode and report chip details.",
		RunE:  runInfo,
	}
	infoCmd.Flags().StringVarP(&portFlag, "port", "p", "", "Serial port (scan all ports if not specified)")
	infoCmd.Flags().IntVarP(&baudFlag, "baud", "b", protocol.DefaultBaudRate, "Baud rate")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available serial ports",
		RunE:  runList,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("espinspect %s\n", version)
			fmt.Printf("  commit: %s\n", commit)
			fmt.Printf("  built:  %s\n", date)
		},
	}

	rootCmd.AddCommand(headerCmd, scanCmd, infoCmd, listCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, image.ErrTooSmall) {
			// "File too small" was already printed by the report.
			os.Exit(exitTooSmall)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitFailure)
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	path := args[0]

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	bar := progressbar.NewOptions64(stat.Size(),
		progressbar.OptionSetDescription("Scanning"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowBytes(true),
		progressbar.OptionThrottle(100),
		progressbar.OptionClearOnFinish(),
	)

	matches, err := markers.Scan(f, func(scanned int64) {
		bar.Set64(scanned)
	})
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", path, err)
	}
	bar.Finish()

	if len(matches) == 0 {
		fmt.Println("No markers found")
		return nil
	}

	for _, m := range matches {
		fmt.Printf("%s 0x%x\n", m.Marker, m.Offset)
	}
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	if portFlag != "" {
		info, err := device.Probe(portFlag, baudFlag)
		if err != nil {
			return fmt.Errorf("failed to probe device on %s: %w", portFlag, err)
		}
		printDeviceInfo(info)
		return nil
	}

	fmt.Println("Scanning for ESP32 devices...")
	devices, err := device.Scan(baudFlag)
	if err != nil {
		return err
	}

	if len(devices) == 0 {
		fmt.Println("No ESP32 devices found")
		return nil
	}

	fmt.Printf("Found %d device(s):\n\n", len(devices))
	for i, d := range devices {
		fmt.Printf("Device %d:\n", i+1)
		printDeviceInfo(&d)
		fmt.Println()
	}
	return nil
}

func printDeviceInfo(d *device.Info) {
	fmt.Printf("  Port:      %s\n", d.Port)
	fmt.Printf("  Chip:      %s\n", d.ChipName)
	if d.ChipID != 0 {
		fmt.Printf("  Chip ID:   0x%02X\n", d.ChipID)
	}
	if d.MagicReg != 0 {
		fmt.Printf("  Magic reg: 0x%08X\n", d.MagicReg)
	}
	if d.Security != nil {
		fmt.Printf("  Secure boot:      %v\n", d.Security.SecureBootEnabled())
		fmt.Printf("  Flash encryption: %v\n", d.Security.FlashEncryptionEnabled())
	}
}

func runList(cmd *cobra.Command, args []string) error {
	ports, err := serial.ListPorts()
	if err != nil {
		return err
	}

	if len(ports) == 0 {
		fmt.Println("No serial ports found")
		return nil
	}

	fmt.Println("Available serial ports:")
	for _, p := range ports {
		fmt.Printf("  %s\n", p)
	}
	return nil
}
