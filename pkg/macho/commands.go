package macho

const loadCmdHeaderSize = 8 // cmd + cmdsize

type loadCommands struct {
	deps   []Dependency
	rpaths []string
}

// walkLoadCommands visits hdr.Ncmd load commands starting right after the
// header. Only the (cmd, cmdsize) pair is fatal when out of bounds; dylib and
// rpath payloads that fail to decode are skipped. The cursor advances by the
// declared cmdsize, which is not checked against sizeofcmds unless strict.
func walkLoadCommands(data []byte, hdr *FileHeader, strict bool) (*loadCommands, error) {
	swap := hdr.Magic.NeedsSwap()
	lc := &loadCommands{}

	start := hdr.CommandsOffset()
	cur := start
	for i := uint32(0); i < hdr.Ncmd; i++ {
		cmd, ok := readInt[LoadCmd](data, cur, swap)
		if !ok {
			return nil, corrupted(cur, "load command %d of %d is out of bounds", i+1, hdr.Ncmd)
		}
		size, ok := readInt[uint32](data, cur+4, swap)
		if !ok {
			return nil, corrupted(cur+4, "load command %d (%s) size is out of bounds", i+1, cmd)
		}
		if strict && size < loadCmdHeaderSize {
			return nil, corrupted(cur, "load command %d (%s) has invalid size %d", i+1, cmd, size)
		}

		switch cmd {
		case LoadCmdDylib, LoadCmdLoadWeakDylib, LoadCmdReexportDylib, LoadCmdLazyLoadDylib, LoadCmdDylibID:
			if dep, ok := readDylib(data, cur, swap, cmd); ok {
				lc.deps = append(lc.deps, dep)
			}
		case LoadCmdRpath:
			if path, ok := readRpath(data, cur, swap); ok {
				lc.rpaths = append(lc.rpaths, path)
			}
		}

		cur += int(size)
	}

	if strict && uint64(cur-start) != uint64(hdr.Cmdsz) {
		return nil, corrupted(start, "load commands span %d bytes but header declares %d", cur-start, hdr.Cmdsz)
	}

	return lc, nil
}
