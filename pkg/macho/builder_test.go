package macho

import "encoding/binary"

// imageBuilder assembles synthetic thin Mach-O images for tests.
type imageBuilder struct {
	bo   binary.ByteOrder
	is64 bool
	cpu  Cpu
	typ  Type
	cmds [][]byte

	ncmds *uint32 // overrides len(cmds) when set
	cmdsz *uint32 // overrides the computed sizeofcmds when set
}

func newImage(bo binary.ByteOrder, is64 bool, cpu Cpu, typ Type) *imageBuilder {
	return &imageBuilder{bo: bo, is64: is64, cpu: cpu, typ: typ}
}

func (b *imageBuilder) add(cmd []byte) *imageBuilder {
	b.cmds = append(b.cmds, cmd)
	return b
}

func (b *imageBuilder) build() []byte {
	magic := uint32(Magic32)
	hdrSize := fileHeaderSize32
	if b.is64 {
		magic = uint32(Magic64)
		hdrSize = fileHeaderSize64
	}
	var sizeofcmds uint32
	for _, c := range b.cmds {
		sizeofcmds += uint32(len(c))
	}
	ncmds := uint32(len(b.cmds))
	if b.ncmds != nil {
		ncmds = *b.ncmds
	}
	if b.cmdsz != nil {
		sizeofcmds = *b.cmdsz
	}

	out := make([]byte, hdrSize)
	b.bo.PutUint32(out[0:], magic)
	b.bo.PutUint32(out[4:], uint32(b.cpu))
	b.bo.PutUint32(out[8:], 0)
	b.bo.PutUint32(out[12:], uint32(b.typ))
	b.bo.PutUint32(out[16:], ncmds)
	b.bo.PutUint32(out[20:], sizeofcmds)
	b.bo.PutUint32(out[24:], 0x200085)
	for _, c := range b.cmds {
		out = append(out, c...)
	}
	return out
}

func align8(n int) int {
	return (n + 7) &^ 7
}

// dylibCmd encodes a dylib_command with its name stored right after the
// fixed fields.
func dylibCmd(bo binary.ByteOrder, cmd LoadCmd, name string, current, compat Version) []byte {
	size := align8(24 + len(name) + 1)
	buf := make([]byte, size)
	bo.PutUint32(buf[0:], uint32(cmd))
	bo.PutUint32(buf[4:], uint32(size))
	bo.PutUint32(buf[8:], 24)
	bo.PutUint32(buf[12:], 2)
	bo.PutUint32(buf[16:], uint32(current))
	bo.PutUint32(buf[20:], uint32(compat))
	copy(buf[24:], name)
	return buf
}

func rpathCmd(bo binary.ByteOrder, path string) []byte {
	size := align8(12 + len(path) + 1)
	buf := make([]byte, size)
	bo.PutUint32(buf[0:], uint32(LoadCmdRpath))
	bo.PutUint32(buf[4:], uint32(size))
	bo.PutUint32(buf[8:], 12)
	copy(buf[12:], path)
	return buf
}

// rawCmd encodes a load command with a zeroed payload.
func rawCmd(bo binary.ByteOrder, cmd LoadCmd, size uint32) []byte {
	n := int(size)
	if n < 8 {
		n = 8
	}
	buf := make([]byte, n)
	bo.PutUint32(buf[0:], uint32(cmd))
	bo.PutUint32(buf[4:], size)
	return buf
}

// fatImage wraps slices in a big-endian fat container. Each slice is placed
// at a 16 byte aligned offset after the fat_arch table.
func fatImage(cpus []Cpu, slices ...[]byte) []byte {
	hdr := make([]byte, fatHeaderSize+20*len(slices))
	binary.BigEndian.PutUint32(hdr[0:], uint32(MagicFat))
	binary.BigEndian.PutUint32(hdr[4:], uint32(len(slices)))

	out := hdr
	for i, s := range slices {
		off := (len(out) + 15) &^ 15
		out = append(out, make([]byte, off-len(out))...)
		entry := out[fatHeaderSize+20*i:]
		binary.BigEndian.PutUint32(entry[0:], uint32(cpus[i]))
		binary.BigEndian.PutUint32(entry[4:], 0)
		binary.BigEndian.PutUint32(entry[8:], uint32(off))
		binary.BigEndian.PutUint32(entry[12:], uint32(len(s)))
		binary.BigEndian.PutUint32(entry[16:], 4)
		out = append(out, s...)
	}
	return out
}

func u32(v uint32) *uint32 { return &v }
