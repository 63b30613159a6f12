// Package framesource receives frames from upstream producers as binary
// telegrams over TCP or serial links, and generates synthetic frames for
// simulators and tests.
package framesource

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/snksoft/crc"
)

// telegrams are encoded as [SOT][BODY][CRC][EOT] with the body and CRC
// escape-sanitized so neither sentinel can appear between SOT and EOT.
// the body is formatted as
// [SEQ 4] [DTYPE 1] [NDIMS 1] [DIM 4 each] [payload bytes]

const (
	// telStart is the start of telegram byte
	telStart = 0x0D

	// telEnd is the end of telegram byte
	telEnd = 0x0A

	// specialCharFirstReplacement is the first byte used to replace a special character
	specialCharFirstReplacement = 0x5E

	// specialCharShift is the amount to shift special characters up.
	// special characters max out at 0x5E, so we will never overflow
	specialCharShift = 0x40
)

var (
	// dataOrder is the byte order of the header fields
	dataOrder = binary.LittleEndian

	// specialChars is a byte slice of values that must be filtered out of messages
	specialChars = []byte{0x0A, 0x0D, 0x5E}

	crcTable = crc.NewTable(crc.XMODEM)

	// ErrCRCMismatch is generated when a received telegram fails its checksum
	ErrCRCMismatch = errors.New("CRC mismatch, significant data lost in transmission")
)

// crcHelper computes the two-byte CRC value in a concurrent safe way and one line
func crcHelper(buf []byte) []byte {
	crcUint := crcTable.InitCrc()
	crcUint = crcTable.UpdateCrc(crcUint, buf)
	crcBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(crcBytes, crcTable.CRC16(crcUint))
	return crcBytes
}

func sanitize(data []byte) []byte {
	out := []byte{}
	for _, b := range data {
		if bytes.Contains(specialChars, []byte{b}) {
			out = append(out, specialCharFirstReplacement, b+specialCharShift)
		} else {
			out = append(out, b)
		}
	}
	return out
}

func reverseSanitize(data []byte) []byte {
	out := []byte{}
	subNext := false
	for _, b := range data {
		if b == specialCharFirstReplacement {
			// if we hit a substitution marker, do nothing with this byte
			// and indicate to subtract from the next one
			subNext = true
		} else {
			if subNext {
				b = b - specialCharShift
			}
			out = append(out, b)
			subNext = false
		}
	}
	return out
}

// EncodeTelegram wraps a body for the wire: the CRC-16 of the raw body is
// appended, the result is escape-sanitized, and the sentinels go on the
// outside.
func EncodeTelegram(body []byte) []byte {
	buf := append(append([]byte{}, body...), crcHelper(body)...)
	buf = sanitize(buf)
	out := make([]byte, 0, len(buf)+2)
	out = append(out, telStart)
	out = append(out, buf...)
	out = append(out, telEnd)
	return out
}

// DecodeTelegram renders a raw byte stream into a body, verifying framing
// and checksum.
func DecodeTelegram(tele []byte) ([]byte, error) {
	// first make sure that we have a start and an end
	if !bytes.Contains(tele, []byte{telStart}) {
		return nil, fmt.Errorf("telegram start byte %X not found", telStart)
	} else if !bytes.Contains(tele, []byte{telEnd}) {
		return nil, fmt.Errorf("telegram end byte %X not found", telEnd)
	}

	// if we do, drop anything else
	iStart := bytes.IndexByte(tele, telStart)
	iEnd := bytes.IndexByte(tele, telEnd)
	tele = tele[iStart+1 : iEnd]

	// now desanitize the message
	tele = reverseSanitize(tele)
	if len(tele) < 2 {
		return nil, errors.New("telegram too short to carry a checksum")
	}

	// pop the CRC bytes
	fidx := len(tele) - 2
	crcBytesRecv := tele[fidx:]
	tele = tele[:fidx]

	// compute the CRC and ensure we match
	crcBytesCompute := crcHelper(tele)
	if !bytes.Equal(crcBytesRecv, crcBytesCompute) {
		return nil, ErrCRCMismatch
	}
	return tele, nil
}
