package macho

import "fmt"

// A Cpu is a Mach-O cpu type.
type Cpu int32

const (
	cpuArch64   = 0x01000000 // 64 bit ABI
	cpuArch6432 = 0x02000000 // ABI for 64-bit hardware with 32-bit types; LP32
)

const (
	Cpu386     Cpu = 7
	CpuAmd64   Cpu = Cpu386 | cpuArch64
	CpuArm     Cpu = 12
	CpuArm64   Cpu = CpuArm | cpuArch64
	CpuArm6432 Cpu = CpuArm | cpuArch6432
	CpuPpc     Cpu = 18
	CpuPpc64   Cpu = CpuPpc | cpuArch64
)

var cpuStrings = []intName{
	{uint32(Cpu386), "i386"},
	{uint32(CpuAmd64), "x86_64"},
	{uint32(CpuArm), "arm"},
	{uint32(CpuArm64), "arm64"},
	{uint32(CpuArm6432), "arm64_32"},
	{uint32(CpuPpc), "ppc"},
	{uint32(CpuPpc64), "ppc64"},
}

// String returns the architecture name, or unknown(<code>) for unrecognised
// cpu types.
func (c Cpu) String() string {
	if s, ok := lookupName(uint32(c), cpuStrings); ok {
		return s
	}
	return fmt.Sprintf("unknown(%d)", int32(c))
}

func (c Cpu) GoString() string {
	if s, ok := lookupName(uint32(c), cpuStrings); ok {
		return "macho." + s
	}
	return fmt.Sprintf("macho.Cpu(%d)", int32(c))
}
