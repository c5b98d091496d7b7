package macho

import "fmt"

// A Version is a packed dylib version: xxxx.yy.zz in 16.8.8 bits.
type Version uint32

// NewVersion packs a major.minor.patch triple.
func NewVersion(major uint16, minor, patch uint8) Version {
	return Version(uint32(major)<<16 | uint32(minor)<<8 | uint32(patch))
}

func (v Version) Major() uint16 { return uint16(v >> 16) }
func (v Version) Minor() uint8  { return uint8(v >> 8) }
func (v Version) Patch() uint8  { return uint8(v) }

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch())
}

// A DylibKind says how an image references a dynamic library.
type DylibKind uint8

const (
	KindLoad DylibKind = iota
	KindWeakLoad
	KindReexport
	KindLazyLoad
	KindID
)

var dylibKinds = []struct {
	name string
	desc string
	cmd  LoadCmd
}{
	KindLoad:     {"load", "load", LoadCmdDylib},
	KindWeakLoad: {"weakLoad", "weak load", LoadCmdLoadWeakDylib},
	KindReexport: {"reexport", "re-export", LoadCmdReexportDylib},
	KindLazyLoad: {"lazyLoad", "lazy load", LoadCmdLazyLoadDylib},
	KindID:       {"selfId", "identity", LoadCmdDylibID},
}

func (k DylibKind) String() string {
	if int(k) < len(dylibKinds) {
		return dylibKinds[k].name
	}
	return fmt.Sprintf("DylibKind(%d)", uint8(k))
}

// Description is the human readable label used in diagnostic listings.
func (k DylibKind) Description() string {
	if int(k) < len(dylibKinds) {
		return dylibKinds[k].desc
	}
	return k.String()
}

// Label is the short tag printed in diagnostic listings.
func (k DylibKind) Label() string {
	if k == KindID {
		return "ID"
	}
	return k.Description()
}

// Command returns the load command that produces this kind.
func (k DylibKind) Command() LoadCmd {
	if int(k) < len(dylibKinds) {
		return dylibKinds[k].cmd
	}
	return 0
}

func (k DylibKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *DylibKind) UnmarshalText(text []byte) error {
	for i, d := range dylibKinds {
		if d.name == string(text) {
			*k = DylibKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown dylib kind %q", text)
}

// kindForCmd maps a dylib load command to its kind; anything unrecognised
// is treated as a plain load.
func kindForCmd(cmd LoadCmd) DylibKind {
	switch cmd {
	case LoadCmdLoadWeakDylib:
		return KindWeakLoad
	case LoadCmdReexportDylib:
		return KindReexport
	case LoadCmdLazyLoadDylib:
		return KindLazyLoad
	case LoadCmdDylibID:
		return KindID
	default:
		return KindLoad
	}
}

// A Dependency is one dylib reference found in an image's load commands.
type Dependency struct {
	Path                 string    `json:"path" yaml:"path"`
	CurrentVersion       string    `json:"current_version" yaml:"current_version"`
	CompatibilityVersion string    `json:"compatibility_version" yaml:"compatibility_version"`
	Kind                 DylibKind `json:"kind" yaml:"kind"`
}

// dylib_command field offsets relative to the start of the command.
const (
	dylibNameOffset  = 8
	dylibTimestamp   = 12
	dylibCurrentVers = 16
	dylibCompatVers  = 20
	rpathPathOffset  = 8
)

// readDylib decodes the dylib_command at off. A record whose fields or name
// cannot be read is reported as absent.
func readDylib(data []byte, off int, swap bool, cmd LoadCmd) (Dependency, bool) {
	nameOff, ok := readInt[uint32](data, off+dylibNameOffset, swap)
	if !ok {
		return Dependency{}, false
	}
	if _, ok := readInt[uint32](data, off+dylibTimestamp, swap); !ok {
		return Dependency{}, false
	}
	cur, ok := readInt[Version](data, off+dylibCurrentVers, swap)
	if !ok {
		return Dependency{}, false
	}
	compat, ok := readInt[Version](data, off+dylibCompatVers, swap)
	if !ok {
		return Dependency{}, false
	}
	name, ok := readCString(data, off+int(nameOff), maxCStringLen)
	if !ok {
		return Dependency{}, false
	}
	return Dependency{
		Path:                 name,
		CurrentVersion:       cur.String(),
		CompatibilityVersion: compat.String(),
		Kind:                 kindForCmd(cmd),
	}, true
}

// readRpath decodes the rpath_command at off.
func readRpath(data []byte, off int, swap bool) (string, bool) {
	pathOff, ok := readInt[uint32](data, off+rpathPathOffset, swap)
	if !ok {
		return "", false
	}
	return readCString(data, off+int(pathOff), maxCStringLen)
}
