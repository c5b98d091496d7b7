package macho

// A Type is the Mach-O file type, e.g. an object file, executable, or dynamic library.
type Type uint32

const (
	TypeObj        Type = 1
	TypeExec       Type = 2
	TypeFVMLib     Type = 3
	TypeCore       Type = 4
	TypePreload    Type = 5 /* preloaded executable file */
	TypeDylib      Type = 6 /* dynamically bound shared library */
	TypeDylinker   Type = 7 /* dynamic link editor */
	TypeBundle     Type = 8
	TypeDylibStub  Type = 0x9 /* shared library stub for static */
	TypeDsym       Type = 0xa /* companion file with only debug */
	TypeKextBundle Type = 0xb /* x86_64 kexts */
	TypeFileSet    Type = 0xc /* kernel cache fileset */
)

var typeStrings = []intName{
	{uint32(TypeObj), "MH_OBJECT"},
	{uint32(TypeExec), "MH_EXECUTE"},
	{uint32(TypeFVMLib), "MH_FVMLIB"},
	{uint32(TypeCore), "MH_CORE"},
	{uint32(TypePreload), "MH_PRELOAD"},
	{uint32(TypeDylib), "MH_DYLIB"},
	{uint32(TypeDylinker), "MH_DYLINKER"},
	{uint32(TypeBundle), "MH_BUNDLE"},
	{uint32(TypeDylibStub), "MH_DYLIB_STUB"},
	{uint32(TypeDsym), "MH_DSYM"},
	{uint32(TypeKextBundle), "MH_KEXT_BUNDLE"},
	{uint32(TypeFileSet), "MH_FILESET"},
}

func (t Type) String() string   { return stringName(uint32(t), typeStrings, false) }
func (t Type) GoString() string { return stringName(uint32(t), typeStrings, true) }
