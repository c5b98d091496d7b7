package otool

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/blacktop/otool/internal/colors"
	"github.com/blacktop/otool/pkg/macho"
	"gopkg.in/yaml.v3"
)

// RenderText writes the compact (otool -L style) or verbose listing of img.
// Output is byte-identical to Image.String/Image.Verbose when colors are off.
func RenderText(w io.Writer, img *macho.Image, verbose bool) error {
	var out string
	switch {
	case !colors.Enabled() && verbose:
		out = img.Verbose()
	case !colors.Enabled():
		out = img.String()
	case verbose:
		out = colorVerbose(img)
	default:
		out = colorCompact(img)
	}
	_, err := io.WriteString(w, out)
	return err
}

func colorCompact(img *macho.Image) string {
	var b strings.Builder
	for idx, dep := range img.Dependencies {
		if idx == 0 && dep.Kind == macho.KindID {
			b.WriteString(colors.BoldBlue().Sprint(dep.Path) + ":\n")
			continue
		}
		b.WriteString("\t" + colors.Kind(dep.Kind).Sprint(dep.Path))
		if dep.CurrentVersion != "" {
			b.WriteString(colors.Faint().Sprintf(" (compatibility version %s, current version %s)", dep.CompatibilityVersion, dep.CurrentVersion))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func colorVerbose(img *macho.Image) string {
	var b strings.Builder
	bits := "32-bit"
	if img.Is64Bit {
		bits = "64-bit"
	}
	bold := colors.Bold()
	fmt.Fprintf(&b, "%s %s (%s)\n", bold.Sprint("Architecture:"), colors.HiMagenta().Sprint(img.Arch), bits)
	fmt.Fprintf(&b, "%s    %s (%d)\n", bold.Sprint("File Type:"), img.Type, uint32(img.Type))
	if len(img.Rpaths) > 0 {
		b.WriteString("\n" + bold.Sprint("RPaths:") + "\n")
		for _, rp := range img.Rpaths {
			b.WriteString("\t" + colors.HiCyan().Sprint(rp) + "\n")
		}
	}
	fmt.Fprintf(&b, "\n%s\n", bold.Sprintf("Dependencies (%d):", len(img.Dependencies)))
	for _, dep := range img.Dependencies {
		kc := colors.Kind(dep.Kind)
		fmt.Fprintf(&b, "\t%s %s\n", kc.Sprintf("[%s]", dep.Kind.Label()), kc.Sprint(dep.Path))
		fmt.Fprintf(&b, "\t\t%s       %s\n", colors.Faint().Sprint("current version:"), dep.CurrentVersion)
		fmt.Fprintf(&b, "\t\t%s %s\n", colors.Faint().Sprint("compatibility version:"), dep.CompatibilityVersion)
	}
	return b.String()
}

// RenderJSON writes v as indented JSON, highlighted when colors are enabled.
func RenderJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if colors.Enabled() {
		return quick.Highlight(w, string(data)+"\n", "json", "terminal256", "nord")
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// RenderYAML writes v as YAML.
func RenderYAML(w io.Writer, v any) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	if colors.Enabled() {
		return quick.Highlight(w, buf.String(), "yaml", "terminal256", "nord")
	}
	_, err := w.Write(buf.Bytes())
	return err
}
