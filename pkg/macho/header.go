package macho

const (
	fileHeaderSize32 = 7 * 4
	fileHeaderSize64 = 8 * 4
)

// A FileHeader represents a Mach-O file header.
type FileHeader struct {
	Magic  Magic
	Cpu    Cpu
	SubCpu uint32
	Type   Type
	Ncmd   uint32
	Cmdsz  uint32
	Flags  uint32

	off int // offset of the header within the decoded buffer
}

// Size returns the on-disk size of the header.
func (h *FileHeader) Size() int {
	if h.Magic.Is64Bit() {
		return fileHeaderSize64
	}
	return fileHeaderSize32
}

// CommandsOffset is where the first load command starts.
func (h *FileHeader) CommandsOffset() int {
	return h.off + h.Size()
}

// readFileHeader decodes the header that begins at off. magic must be the
// thin-image signature already read at off.
func readFileHeader(data []byte, off int, magic Magic) (*FileHeader, error) {
	h := &FileHeader{Magic: magic, off: off}
	if off < 0 || off > len(data)-h.Size() {
		return nil, corrupted(off, "truncated %d-byte header (file is %d bytes)", h.Size(), len(data))
	}
	swap := magic.NeedsSwap()
	// the bounds check above covers every field
	h.Cpu, _ = readInt[Cpu](data, off+4, swap)
	h.SubCpu, _ = readInt[uint32](data, off+8, swap)
	h.Type, _ = readInt[Type](data, off+12, swap)
	h.Ncmd, _ = readInt[uint32](data, off+16, swap)
	h.Cmdsz, _ = readInt[uint32](data, off+20, swap)
	h.Flags, _ = readInt[uint32](data, off+24, swap)
	return h, nil
}
