// Package macho decodes the dependency information of Mach-O images: target
// architecture, run-path search directories and the dynamic libraries an
// image links against.
//
// Decoding is a pure function of the input buffer and never performs I/O;
// Open is a thin convenience that loads a file and hands it to Decode.
package macho

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

const (
	fatHeaderSize   = 8 // magic + nfat_arch
	fatArchOffField = 8 // offset field within fat_arch
)

type decodeConfig struct {
	strict bool
}

// Option configures Decode and Open.
type Option func(*decodeConfig)

// WithStrict rejects load commands smaller than their own header and a
// command stream whose length disagrees with the header's sizeofcmds.
func WithStrict() Option {
	return func(c *decodeConfig) {
		c.strict = true
	}
}

// Decode reads the dependency report of the Mach-O image held in data. For a
// fat container only the first architecture slot is decoded.
func Decode(data []byte, opts ...Option) (*Image, error) {
	conf := &decodeConfig{}
	for _, opt := range opts {
		opt(conf)
	}

	magic, err := readMagic(data, 0)
	if err != nil {
		return nil, err
	}
	if magic.IsFat() {
		return decodeFat(data, magic, conf)
	}
	return decodeThin(data, 0, magic, conf)
}

func decodeFat(data []byte, magic Magic, conf *decodeConfig) (*Image, error) {
	swap := magic.NeedsSwap()

	nfat, ok := readInt[uint32](data, 4, swap)
	if !ok {
		return nil, corrupted(4, "truncated fat header")
	}
	if nfat == 0 {
		return nil, corrupted(4, "fat header declares no architectures")
	}

	// first fat_arch entry
	offField := fatHeaderSize + fatArchOffField
	archOff, ok := readInt[uint32](data, offField, swap)
	if !ok {
		return nil, corrupted(offField, "truncated fat_arch entry")
	}

	off := int(archOff)
	inner, err := readMagic(data, off)
	if err != nil {
		return nil, err
	}
	if inner.IsFat() {
		return nil, &FormatError{Off: int64(off), Msg: "nested fat container", Kind: ErrInvalidMagic}
	}
	return decodeThin(data, off, inner, conf)
}

func decodeThin(data []byte, off int, magic Magic, conf *decodeConfig) (*Image, error) {
	hdr, err := readFileHeader(data, off, magic)
	if err != nil {
		return nil, err
	}
	lc, err := walkLoadCommands(data, hdr, conf.strict)
	if err != nil {
		return nil, err
	}
	return &Image{
		Arch:         hdr.Cpu.String(),
		Is64Bit:      magic.Is64Bit(),
		Type:         hdr.Type,
		Dependencies: lc.deps,
		Rpaths:       lc.rpaths,
	}, nil
}

// Open reads the file at path and decodes it.
func Open(path string, opts ...Option) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, &ReadError{Path: path, Err: err}
	}
	return Decode(data, opts...)
}
