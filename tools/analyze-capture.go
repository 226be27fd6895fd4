//go:build ignore

// Analyze-capture walks a raw binary capture of dongle traffic and prints
// every frame it finds: header fields, decoded message summary, and a hex
// dump of the payload head.
//
// Captures are a byte-for-byte dump of one direction of the USB bulk
// stream (for example from usbmon or a logging transport wrapper).
//
// Usage: go run tools/analyze-capture.go <capture.bin>
package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/autokit/carlink/internal/protocol"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: analyze-capture <capture.bin>")
		fmt.Println("Example: analyze-capture captures/session-20260831.bin")
		os.Exit(1)
	}

	filename := os.Args[1]
	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== Carlink Capture Analyzer ===\n")
	fmt.Printf("File: %s (%d bytes)\n\n", filename, len(data))

	frameNum := 0
	skipped := 0
	offset := 0

	for offset+protocol.HeaderSize <= len(data) {
		hdr, err := protocol.ParseHeader(data[offset:offset+protocol.HeaderSize], protocol.DefaultPacketMax)
		if err != nil {
			// Same resync policy as the live reader: slide one byte on a
			// bad magic, skip the whole header otherwise.
			if errors.Is(err, protocol.ErrBadMagic) {
				offset++
			} else {
				offset += protocol.HeaderSize
			}
			skipped++
			continue
		}

		payloadEnd := offset + protocol.HeaderSize + int(hdr.Length)
		if payloadEnd > len(data) {
			fmt.Printf("[%08x] truncated frame: type=%s declared=%d available=%d\n",
				offset, hdr.Type, hdr.Length, len(data)-offset-protocol.HeaderSize)
			break
		}

		frameNum++
		payload := data[offset+protocol.HeaderSize : payloadEnd]
		analyzeFrame(frameNum, offset, hdr, payload)
		offset = payloadEnd
	}

	fmt.Printf("Frames: %d, bytes skipped during resync: %d\n", frameNum, skipped)
}

func analyzeFrame(num int, offset int, hdr protocol.Header, payload []byte) {
	fmt.Printf("========================================\n")
	fmt.Printf("Frame #%d at 0x%08x - %s - %d bytes\n", num, offset, hdr.Type, len(payload))
	fmt.Printf("========================================\n")

	msg, err := protocol.DecodeMessage(hdr, payload)
	if err != nil {
		fmt.Printf("  decode error: %v\n", err)
	} else {
		describe(msg)
	}

	if len(payload) > 0 {
		fmt.Println("  Payload head:")
		hexDump(payload, 64)
	}
	fmt.Println()
}

func describe(msg protocol.Message) {
	switch m := msg.(type) {
	case *protocol.Opened:
		fmt.Printf("  Opened: %dx%d @ %d fps\n", m.Width, m.Height, m.FPS)
	case *protocol.Plugged:
		fmt.Printf("  Plugged: phone=%s wifi=%v\n", m.PhoneType, m.Wifi)
	case *protocol.Unplugged:
		fmt.Println("  Unplugged")
	case *protocol.Phase:
		fmt.Printf("  Phase: %d\n", m.Phase)
	case *protocol.Command:
		fmt.Printf("  Command: %s (%d)\n", m.Value, uint32(m.Value))
	case *protocol.VideoData:
		fmt.Printf("  VideoData: %dx%d flags=0x%02x frame=%d data=%d bytes\n",
			m.Width, m.Height, m.Flags, m.FrameNum, len(m.Data))
	case *protocol.AudioData:
		switch {
		case m.Command != 0:
			fmt.Printf("  AudioData command: %s\n", m.Command)
		case m.HasVolumeDuration:
			fmt.Printf("  AudioData volume ramp: vol=%.2f dur=%.2f\n", m.Volume, m.VolumeDuration)
		default:
			fmt.Printf("  AudioData: decode_type=%d %d bytes PCM\n", m.DecodeType, len(m.Data))
		}
	case *protocol.MediaData:
		fmt.Printf("  MediaData: type=%d keys=%d art=%d bytes\n", m.Type, len(m.Media), len(m.AlbumArt))
		for k, v := range m.Media {
			fmt.Printf("    %s = %v\n", k, v)
		}
	case *protocol.StringInfo:
		fmt.Printf("  %s: %q\n", m.Type, m.Value)
	case *protocol.BoxInfo:
		fmt.Printf("  BoxInfo: %d settings keys\n", len(m.Settings))
	case *protocol.ManufacturerInfo:
		fmt.Printf("  ManufacturerInfo: a=%d b=%d\n", m.A, m.B)
	case *protocol.HeartbeatAck:
		fmt.Println("  HeartbeatAck")
	case *protocol.Unknown:
		fmt.Printf("  Unknown type %s: %d bytes\n", m.Type, len(m.Data))
		dumpWords(m.Data)
	}
}

// dumpWords prints a payload as 32-bit little-endian words, the most
// useful view when guessing at an undocumented message shape.
func dumpWords(payload []byte) {
	for i := 0; i+4 <= len(payload) && i < 32; i += 4 {
		word := binary.LittleEndian.Uint32(payload[i : i+4])
		fmt.Printf("    [%02d-%02d] 0x%08x %13d\n", i, i+3, word, word)
	}
}

func hexDump(payload []byte, limit int) {
	n := len(payload)
	if n > limit {
		n = limit
	}
	for i := 0; i < n; i += 16 {
		end := i + 16
		if end > n {
			end = n
		}
		fmt.Printf("    %04x  ", i)
		for j := i; j < end; j++ {
			fmt.Printf("%02x ", payload[j])
		}
		fmt.Print(" ")
		for j := i; j < end; j++ {
			if payload[j] >= 32 && payload[j] <= 126 {
				fmt.Printf("%c", payload[j])
			} else {
				fmt.Print(".")
			}
		}
		fmt.Println()
	}
	if len(payload) > limit {
		fmt.Printf("    ... %d more bytes\n", len(payload)-limit)
	}
}
