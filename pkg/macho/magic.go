package macho

import "fmt"

// A Magic is the leading signature of a Mach-O image or fat container, as
// read in native (little-endian) order.
type Magic uint32

const (
	Magic32  Magic = 0xfeedface
	Magic64  Magic = 0xfeedfacf
	Cigam32  Magic = 0xcefaedfe // Magic32 stored big-endian
	Cigam64  Magic = 0xcffaedfe // Magic64 stored big-endian
	MagicFat Magic = 0xcafebabe
	CigamFat Magic = 0xbebafeca // MagicFat stored big-endian
)

var magicStrings = []intName{
	{uint32(Magic32), "32-bit MachO"},
	{uint32(Magic64), "64-bit MachO"},
	{uint32(Cigam32), "32-bit MachO (swapped)"},
	{uint32(Cigam64), "64-bit MachO (swapped)"},
	{uint32(MagicFat), "Universal MachO"},
	{uint32(CigamFat), "Universal MachO (swapped)"},
}

// Valid reports whether m is one of the six recognised signatures.
func (m Magic) Valid() bool {
	_, ok := lookupName(uint32(m), magicStrings)
	return ok
}

func (m Magic) Is64Bit() bool {
	return m == Magic64 || m == Cigam64
}

// NeedsSwap reports whether the fields following the magic are stored in the
// opposite byte order from the magic's native reading.
func (m Magic) NeedsSwap() bool {
	return m == Cigam32 || m == Cigam64 || m == CigamFat
}

func (m Magic) IsFat() bool {
	return m == MagicFat || m == CigamFat
}

func (m Magic) String() string {
	if s, ok := lookupName(uint32(m), magicStrings); ok {
		return s
	}
	return fmt.Sprintf("Magic(%#08x)", uint32(m))
}

// readMagic reads the signature at off.
func readMagic(data []byte, off int) (Magic, error) {
	m, ok := readInt[Magic](data, off, false)
	if !ok {
		return 0, &FormatError{Off: int64(off), Msg: "truncated magic", Kind: ErrCorrupted}
	}
	if !m.Valid() {
		return 0, &FormatError{Off: int64(off), Msg: fmt.Sprintf("unknown magic %#08x", uint32(m)), Kind: ErrInvalidMagic}
	}
	return m, nil
}
