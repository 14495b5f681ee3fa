package listing

import (
	"errors"
	"fmt"
)

// SysEx constants
const (
	SysExStart = 0xF0
	SysExEnd   = 0xF7
)

var manufacturers = map[string]string{
	"\x41":         "Roland",
	"\x42":         "Korg",
	"\x43":         "Yamaha",
	"\x44":         "Casio",
	"\x47":         "Akai",
	"\x7D":         "Non-commercial",
	"\x7E":         "Universal Non-Real Time",
	"\x7F":         "Universal Real Time",
	"\x00\x20\x32": "Behringer",
	"\x00\x20\x29": "Novation",
	"\x00\x00\x66": "Mackie",
}

// ExtractManufacturerID extracts the manufacturer ID from SysEx data
func ExtractManufacturerID(data []byte) ([]byte, error) {
	if len(data) < 2 {
		return nil, errors.New("syx data too short for manufacturer ID")
	}

	if data[0] != SysExStart {
		return nil, errors.New("invalid SysEx start")
	}

	// Extended manufacturer IDs start with 0x00
	if data[1] == 0x00 {
		if len(data) < 4 {
			return nil, errors.New("syx data too short for extended manufacturer ID")
		}
		return data[1:4], nil
	}

	return data[1:2], nil
}

// ManufacturerName returns a known manufacturer name, or the ID in hex
func ManufacturerName(id []byte) string {
	if name, ok := manufacturers[string(id)]; ok {
		return name
	}
	return fmt.Sprintf("% X", id)
}
