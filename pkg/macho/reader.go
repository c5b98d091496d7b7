package macho

import (
	"bytes"
	"encoding/binary"
	"unicode/utf8"
)

// maxCStringLen caps how far a load-command string is scanned for its terminator.
const maxCStringLen = 1024

type integer interface {
	~uint16 | ~uint32 | ~uint64 | ~int16 | ~int32 | ~int64
}

// byteOrder returns the order used to read fields of an image; the magic is
// always read little-endian so a swapped image is a big-endian one.
func byteOrder(swap bool) binary.ByteOrder {
	if swap {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// readInt reads a fixed-width integer at off. It reports false instead of
// panicking when the value does not fit entirely inside data.
func readInt[T integer](data []byte, off int, swap bool) (T, bool) {
	var zero T
	size := binary.Size(zero)
	if off < 0 || size <= 0 || off > len(data)-size {
		return zero, false
	}
	bo := byteOrder(swap)
	switch size {
	case 2:
		return T(bo.Uint16(data[off:])), true
	case 4:
		return T(bo.Uint32(data[off:])), true
	case 8:
		return T(bo.Uint64(data[off:])), true
	}
	return zero, false
}

// readCString reads a NUL terminated UTF-8 string starting at off, scanning at
// most max bytes. Missing terminators, invalid UTF-8 and empty strings all
// yield false.
func readCString(data []byte, off, max int) (string, bool) {
	if off < 0 || off >= len(data) || max <= 0 {
		return "", false
	}
	window := data[off:]
	if len(window) > max {
		window = window[:max]
	}
	end := bytes.IndexByte(window, 0)
	if end <= 0 {
		return "", false
	}
	if !utf8.Valid(window[:end]) {
		return "", false
	}
	return string(window[:end]), true
}
