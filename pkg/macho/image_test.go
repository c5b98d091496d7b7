package macho

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestImageString(t *testing.T) {
	img := &Image{
		Arch:    "arm64",
		Is64Bit: true,
		Type:    TypeDylib,
		Dependencies: []Dependency{
			{Path: "/usr/lib/libFoo.dylib", CurrentVersion: "1.2.3", CompatibilityVersion: "0.0.0", Kind: KindID},
			{Path: "/usr/lib/libBar.dylib", CurrentVersion: "2.3.4", CompatibilityVersion: "1.0.0", Kind: KindLoad},
			{Path: "@rpath/Baz.framework/Baz", CurrentVersion: "5.0.0", CompatibilityVersion: "1.0.0", Kind: KindWeakLoad},
		},
	}
	want := "/usr/lib/libFoo.dylib:\n" +
		"\t/usr/lib/libBar.dylib (compatibility version 1.0.0, current version 2.3.4)\n" +
		"\t@rpath/Baz.framework/Baz (compatibility version 1.0.0, current version 5.0.0)\n"
	if got := img.String(); got != want {
		t.Errorf("String() =\n%s\nwant\n%s", got, want)
	}
}

func TestImageStringWithoutIdentity(t *testing.T) {
	img := &Image{
		Dependencies: []Dependency{
			{Path: "/usr/lib/libSystem.B.dylib", CurrentVersion: "1319.0.0", CompatibilityVersion: "1.0.0"},
			{Path: "/usr/lib/libobjc.A.dylib"},
		},
	}
	want := "\t/usr/lib/libSystem.B.dylib (compatibility version 1.0.0, current version 1319.0.0)\n" +
		"\t/usr/lib/libobjc.A.dylib\n"
	if got := img.String(); got != want {
		t.Errorf("String() =\n%q\nwant\n%q", got, want)
	}
	if got := (&Image{}).String(); got != "" {
		t.Errorf("empty image String() = %q", got)
	}
}

func TestImageVerbose(t *testing.T) {
	img, err := Decode(libFooImage(le, true))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	out := img.Verbose()
	for _, want := range []string{
		"Architecture: arm64 (64-bit)\n",
		"File Type:    MH_DYLIB (6)\n",
		"RPaths:\n\t@loader_path/../Frameworks\n",
		"Dependencies (2):\n",
		"\t[ID] /usr/lib/libFoo.dylib\n",
		"\t[load] /usr/lib/libBar.dylib\n",
		"current version:       2.3.4\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Verbose() missing %q in:\n%s", want, out)
		}
	}

	img.Rpaths = nil
	img.Is64Bit = false
	out = img.Verbose()
	if strings.Contains(out, "RPaths:") {
		t.Errorf("Verbose() printed an empty RPaths section:\n%s", out)
	}
	if !strings.Contains(out, "(32-bit)") {
		t.Errorf("Verbose() missing bit width:\n%s", out)
	}
}

func TestImageIDAndImports(t *testing.T) {
	img, err := Decode(libFooImage(le, false))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	id, ok := img.ID()
	if !ok || id.Path != "/usr/lib/libFoo.dylib" {
		t.Errorf("ID() = %+v, %v", id, ok)
	}
	imports := img.Imports()
	if len(imports) != 1 || imports[0].Path != "/usr/lib/libBar.dylib" {
		t.Errorf("Imports() = %+v", imports)
	}
}

func TestImageJSON(t *testing.T) {
	img, err := Decode(libFooImage(le, true))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	data, err := json.Marshal(img)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	for _, want := range []string{`"arch":"arm64"`, `"kind":"selfId"`, `"kind":"load"`, `"current_version":"2.3.4"`, `"type":6`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("JSON missing %s: %s", want, data)
		}
	}

	var back Image
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if back.Dependencies[0].Kind != KindID {
		t.Errorf("round tripped kind = %s", back.Dependencies[0].Kind)
	}
}
