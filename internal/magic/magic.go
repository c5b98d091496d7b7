// Package magic sniffs file signatures without reading whole files.
package magic

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/blacktop/otool/pkg/macho"
)

// Read returns the first four bytes of the file as a Mach-O magic.
func Read(filePath string) (macho.Magic, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer f.Close()

	var magic [4]byte
	if _, err = io.ReadFull(f, magic[:]); err != nil {
		return 0, fmt.Errorf("failed to read magic: %w", err)
	}
	return macho.Magic(binary.LittleEndian.Uint32(magic[:])), nil
}

// IsMachO reports whether the file starts with a thin or fat Mach-O magic.
func IsMachO(filePath string) (bool, error) {
	m, err := Read(filePath)
	if err != nil {
		return false, err
	}
	if !m.Valid() {
		return false, fmt.Errorf("not a macho file")
	}
	return true, nil
}
