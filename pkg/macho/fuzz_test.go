package macho

import (
	"encoding/binary"
	"errors"
	"testing"
)

func FuzzDecode(f *testing.F) {
	f.Add(libFooImage(le, true))
	f.Add(libFooImage(binary.BigEndian, false))
	f.Add(fatImage([]Cpu{CpuArm64}, libFooImage(le, true)))
	f.Add([]byte{0xcf, 0xfa, 0xed, 0xfe})
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		img, err := Decode(data)
		if err != nil {
			if img != nil {
				t.Fatal("image returned with error")
			}
			if !errors.Is(err, ErrCorrupted) && !errors.Is(err, ErrInvalidMagic) {
				t.Fatalf("unexpected error kind: %v", err)
			}
			return
		}
		for _, dep := range img.Dependencies {
			if dep.Path == "" {
				t.Fatal("decoded dependency with empty path")
			}
		}
		for _, rp := range img.Rpaths {
			if rp == "" {
				t.Fatal("decoded empty rpath")
			}
		}
	})
}
