package otool

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/blacktop/otool/internal/colors"
	"github.com/blacktop/otool/pkg/macho"
)

const (
	lcLoadDylib = 0xc
	lcIDDylib   = 0xd
)

func dylibCmd(cmd uint32, name string, current, compat uint32) []byte {
	size := (24 + len(name) + 1 + 7) &^ 7
	b := make([]byte, size)
	binary.LittleEndian.PutUint32(b[0:], cmd)
	binary.LittleEndian.PutUint32(b[4:], uint32(size))
	binary.LittleEndian.PutUint32(b[8:], 24)
	binary.LittleEndian.PutUint32(b[16:], current)
	binary.LittleEndian.PutUint32(b[20:], compat)
	copy(b[24:], name)
	return b
}

// testDylib builds a little-endian arm64 MH_DYLIB with its own id and the given imports.
func testDylib(id string, imports ...string) []byte {
	cmds := [][]byte{dylibCmd(lcIDDylib, id, 0x10000, 0x10000)}
	for _, imp := range imports {
		cmds = append(cmds, dylibCmd(lcLoadDylib, imp, 0x050a0203, 0x10000))
	}
	body := bytes.Join(cmds, nil)
	hdr := make([]byte, 32)
	binary.LittleEndian.PutUint32(hdr[0:], 0xfeedfacf)
	binary.LittleEndian.PutUint32(hdr[4:], 0x0100000c)
	binary.LittleEndian.PutUint32(hdr[12:], 0x6)
	binary.LittleEndian.PutUint32(hdr[16:], uint32(len(cmds)))
	binary.LittleEndian.PutUint32(hdr[20:], uint32(len(body)))
	return append(hdr, body...)
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func newInspector(t *testing.T) *Inspector {
	t.Helper()
	i, err := NewInspector(16)
	if err != nil {
		t.Fatalf("NewInspector() error = %v", err)
	}
	return i
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "libFoo.dylib")
	writeFile(t, path, testDylib("/usr/lib/libFoo.dylib", "/usr/lib/libSystem.B.dylib"))

	i := newInspector(t)
	res, err := i.Inspect(path)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if res.Bundled() {
		t.Errorf("Bundled() = true for a plain file")
	}
	if res.Image.Arch != "arm64" || !res.Image.Is64Bit {
		t.Errorf("Image = %+v", res.Image)
	}
	if len(res.Image.Dependencies) != 2 || res.Image.Dependencies[1].CurrentVersion != "1290.2.3" {
		t.Errorf("Dependencies = %+v", res.Image.Dependencies)
	}

	again, err := i.Inspect(path)
	if err != nil {
		t.Fatal(err)
	}
	if again.Image != res.Image {
		t.Error("second Inspect() did not hit the cache")
	}

	writeFile(t, path, testDylib("/usr/lib/libFoo.dylib", "/usr/lib/libSystem.B.dylib", "/usr/lib/libz.1.dylib"))
	changed, err := i.Inspect(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(changed.Image.Dependencies) != 3 {
		t.Errorf("changed file dependencies = %d, want 3", len(changed.Image.Dependencies))
	}
	if i.Cached() != 2 {
		t.Errorf("Cached() = %d, want 2", i.Cached())
	}
	i.Forget()
	if i.Cached() != 0 {
		t.Errorf("Cached() after Forget = %d", i.Cached())
	}
}

func TestInspectErrors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage")
	writeFile(t, garbage, []byte("not a mach-o file"))

	tests := []struct {
		name string
		path string
		want error
	}{
		{"missing", filepath.Join(dir, "missing"), macho.ErrNotFound},
		{"invalid magic", garbage, macho.ErrInvalidMagic},
	}
	i := newInspector(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := i.Inspect(tt.path); !errors.Is(err, tt.want) {
				t.Errorf("Inspect() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func scanTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b", "libB.dylib"), testDylib("/usr/lib/libB.dylib", "/usr/lib/libA.dylib"))
	writeFile(t, filepath.Join(root, "a", "libA.dylib"), testDylib("/usr/lib/libA.dylib", "/usr/lib/libSystem.B.dylib"))
	writeFile(t, filepath.Join(root, "broken.dylib"), []byte{0xcf, 0xfa, 0xed, 0xfe, 0, 0, 0, 0})
	writeFile(t, filepath.Join(root, "README"), []byte("hello world"))
	writeFile(t, filepath.Join(root, "tiny"), []byte{0xcf})
	writeFile(t, filepath.Join(root, "libC.dSYM", "libC.dylib"), testDylib("/usr/lib/libC.dylib"))
	return root
}

func TestScan(t *testing.T) {
	root := scanTree(t)

	var (
		total int
		seen  atomic.Int32
	)
	report, err := newInspector(t).Scan(context.Background(), root, &ScanConfig{
		Workers: 2,
		Exclude: []string{"*.dSYM"},
		OnStart: func(n int) { total = n },
		OnFile:  func(string, error) { seen.Add(1) },
	})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if total != 3 || seen.Load() != 3 {
		t.Errorf("OnStart total = %d, OnFile calls = %d, want 3 and 3", total, seen.Load())
	}
	if len(report.Results) != 2 {
		t.Fatalf("Results = %d, want 2", len(report.Results))
	}
	if !strings.HasSuffix(report.Results[0].Path, "libA.dylib") || !strings.HasSuffix(report.Results[1].Path, "libB.dylib") {
		t.Errorf("Results not sorted: %s, %s", report.Results[0].Path, report.Results[1].Path)
	}
	if _, ok := report.Failed[filepath.Join(root, "broken.dylib")]; !ok || len(report.Failed) != 1 {
		t.Errorf("Failed = %v", report.Failed)
	}
	if report.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", report.Skipped)
	}

	users := report.Dependents("/usr/lib/libA.dylib")
	if len(users) != 1 || !strings.HasSuffix(users[0].Path, "libB.dylib") {
		t.Errorf("Dependents(libA) = %v", users)
	}
	if users := report.Dependents("/usr/lib/libB.dylib"); len(users) != 0 {
		t.Errorf("an image's own id must not count as a dependent: %v", users)
	}
}

func TestScanCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newInspector(t).Scan(ctx, scanTree(t), nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Scan() error = %v, want context.Canceled", err)
	}
}

func TestScanMissingRoot(t *testing.T) {
	if _, err := newInspector(t).Scan(context.Background(), filepath.Join(t.TempDir(), "nope"), nil); err == nil {
		t.Error("Scan() on a missing root should fail")
	}
}

func noColor(t *testing.T) {
	t.Helper()
	was := colors.Enabled()
	off := false
	colors.Init(&off)
	t.Cleanup(func() { colors.Init(&was) })
}

func TestRenderText(t *testing.T) {
	noColor(t)
	img, err := macho.Decode(testDylib("/usr/lib/libFoo.dylib", "/usr/lib/libSystem.B.dylib"))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		verbose bool
		want    string
	}{
		{"compact", false, img.String()},
		{"verbose", true, img.Verbose()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := RenderText(&buf, img, tt.verbose); err != nil {
				t.Fatal(err)
			}
			if buf.String() != tt.want {
				t.Errorf("RenderText() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
	var buf bytes.Buffer
	RenderText(&buf, img, false)
	if want := "/usr/lib/libFoo.dylib:\n\t/usr/lib/libSystem.B.dylib (compatibility version 1.0.0, current version 1290.2.3)\n"; buf.String() != want {
		t.Errorf("compact = %q, want %q", buf.String(), want)
	}
}

func TestRenderJSONAndYAML(t *testing.T) {
	noColor(t)
	img, err := macho.Decode(testDylib("/usr/lib/libFoo.dylib", "/usr/lib/libSystem.B.dylib"))
	if err != nil {
		t.Fatal(err)
	}

	var jbuf bytes.Buffer
	if err := RenderJSON(&jbuf, img); err != nil {
		t.Fatal(err)
	}
	var got struct {
		Arch         string `json:"arch"`
		Dependencies []struct {
			Path string `json:"path"`
			Kind string `json:"kind"`
		} `json:"dependencies"`
	}
	if err := json.Unmarshal(jbuf.Bytes(), &got); err != nil {
		t.Fatalf("RenderJSON() produced invalid JSON: %v", err)
	}
	if got.Arch != "arm64" || len(got.Dependencies) != 2 || got.Dependencies[0].Kind != "selfId" || got.Dependencies[1].Kind != "load" {
		t.Errorf("RenderJSON() = %s", jbuf.String())
	}

	var ybuf bytes.Buffer
	if err := RenderYAML(&ybuf, img); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"arch: arm64", "kind: selfId", "path: /usr/lib/libSystem.B.dylib"} {
		if !strings.Contains(ybuf.String(), want) {
			t.Errorf("RenderYAML() missing %q:\n%s", want, ybuf.String())
		}
	}
}

func TestWatch(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, dir string) (watched, rebuilt string)
	}{
		{
			name: "dylib",
			setup: func(t *testing.T, dir string) (string, string) {
				path := filepath.Join(dir, "libFoo.dylib")
				writeFile(t, path, testDylib("/usr/lib/libFoo.dylib"))
				return path, path
			},
		},
		{
			name: "versioned framework",
			setup: func(t *testing.T, dir string) (string, string) {
				fw := filepath.Join(dir, "Foo.framework")
				bin := filepath.Join(fw, "Versions", "A", "Foo")
				writeFile(t, bin, testDylib("@rpath/Foo.framework/Foo"))
				if err := os.Symlink("A", filepath.Join(fw, "Versions", "Current")); err != nil {
					t.Fatal(err)
				}
				if err := os.Symlink(filepath.Join("Versions", "Current", "Foo"), filepath.Join(fw, "Foo")); err != nil {
					t.Fatal(err)
				}
				return fw, bin
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			watched, rebuilt := tt.setup(t, t.TempDir())

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			results := make(chan int, 16)
			send := func(n int) {
				select {
				case results <- n:
				default:
				}
			}
			done := make(chan error, 1)
			i := newInspector(t)
			go func() {
				done <- i.Watch(ctx, watched, func(res *Result, err error) {
					if err != nil {
						send(-1)
						return
					}
					send(len(res.Image.Dependencies))
				})
			}()

			select {
			case n := <-results:
				if n != 1 {
					t.Fatalf("initial dependencies = %d, want 1", n)
				}
			case err := <-done:
				t.Fatalf("Watch() returned early: %v", err)
			}
			writeFile(t, rebuilt, testDylib("/usr/lib/libFoo.dylib", "/usr/lib/libSystem.B.dylib"))

			for {
				select {
				case n := <-results:
					// a truncating write may be observed half written
					if n == 2 {
						cancel()
						if err := <-done; err != nil {
							t.Errorf("Watch() error = %v", err)
						}
						return
					}
				case <-ctx.Done():
					t.Fatal("timed out waiting for the change")
				}
			}
		})
	}
}
