package magic

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/blacktop/otool/pkg/macho"
)

func TestIsMachO(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		data    []byte
		want    macho.Magic
		isMachO bool
		wantErr bool
	}{
		{"thin 64", []byte{0xcf, 0xfa, 0xed, 0xfe, 0x0c, 0x00, 0x00, 0x01}, macho.Magic64, true, false},
		{"swapped 32", []byte{0xfe, 0xed, 0xfa, 0xce}, macho.Cigam32, true, false},
		{"fat", []byte{0xca, 0xfe, 0xba, 0xbe, 0, 0, 0, 1}, macho.CigamFat, true, false},
		{"text", []byte("#!/bin/sh\n"), 0, false, true},
		{"short", []byte{0xcf, 0xfa}, 0, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			if err := os.WriteFile(path, tt.data, 0o644); err != nil {
				t.Fatal(err)
			}
			got, err := IsMachO(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("IsMachO() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.isMachO {
				t.Errorf("IsMachO() = %v, want %v", got, tt.isMachO)
			}
			if tt.isMachO {
				m, err := Read(path)
				if err != nil {
					t.Fatal(err)
				}
				if m != tt.want {
					t.Errorf("Read() = %v, want %v", m, tt.want)
				}
			}
		})
	}
}

func TestReadMissing(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Read() of a missing file should fail")
	}
}
