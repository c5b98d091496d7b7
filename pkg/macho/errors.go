package macho

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Open when the path does not exist.
	ErrNotFound = errors.New("file not found")
	// ErrInvalidMagic is returned when the leading signature is not a Mach-O or fat magic.
	ErrInvalidMagic = errors.New("invalid Mach-O magic")
	// ErrUnsupportedArch is reserved for callers that reject an architecture; Decode never returns it.
	ErrUnsupportedArch = errors.New("unsupported architecture")
	// ErrCorrupted is returned when a structural read falls outside the buffer.
	ErrCorrupted = errors.New("corrupted Mach-O")
)

// FormatError describes a malformed image. Kind is one of the sentinel
// errors above, so callers can test with errors.Is.
type FormatError struct {
	Off  int64
	Msg  string
	Kind error
}

func (e *FormatError) Error() string {
	msg := e.Kind.Error() + ": " + e.Msg
	if e.Off >= 0 {
		msg += fmt.Sprintf(" at offset %#x", e.Off)
	}
	return msg
}

func (e *FormatError) Unwrap() error { return e.Kind }

// ReadError wraps an I/O failure while loading an image from disk.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

func corrupted(off int, format string, args ...any) error {
	return &FormatError{Off: int64(off), Msg: fmt.Sprintf(format, args...), Kind: ErrCorrupted}
}
