package macho

import (
	"fmt"
	"strings"
)

// An Image is the dependency report of one decoded Mach-O image.
type Image struct {
	Arch         string       `json:"arch" yaml:"arch"`
	Is64Bit      bool         `json:"is_64bit" yaml:"is_64bit"`
	Type         Type         `json:"type" yaml:"type"`
	Dependencies []Dependency `json:"dependencies" yaml:"dependencies"`
	Rpaths       []string     `json:"rpaths,omitempty" yaml:"rpaths,omitempty"`
}

// ID returns the image's own install name when it carries an LC_ID_DYLIB.
func (i *Image) ID() (Dependency, bool) {
	for _, d := range i.Dependencies {
		if d.Kind == KindID {
			return d, true
		}
	}
	return Dependency{}, false
}

// Imports returns the dependencies other than the image's own identity.
func (i *Image) Imports() []Dependency {
	var deps []Dependency
	for _, d := range i.Dependencies {
		if d.Kind != KindID {
			deps = append(deps, d)
		}
	}
	return deps
}

// String renders the compact otool -L style listing. A leading identity
// record is printed on its own line followed by a colon; every other
// dependency is tab indented with its version pair.
func (i *Image) String() string {
	var b strings.Builder
	for idx, dep := range i.Dependencies {
		if idx == 0 && dep.Kind == KindID {
			b.WriteString(dep.Path + ":\n")
			continue
		}
		b.WriteString("\t" + dep.Path)
		if dep.CurrentVersion != "" {
			fmt.Fprintf(&b, " (compatibility version %s, current version %s)", dep.CompatibilityVersion, dep.CurrentVersion)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (i *Image) bits() string {
	if i.Is64Bit {
		return "64-bit"
	}
	return "32-bit"
}

// Verbose renders the diagnostic listing.
func (i *Image) Verbose() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Architecture: %s (%s)\n", i.Arch, i.bits())
	fmt.Fprintf(&b, "File Type:    %s (%d)\n", i.Type, uint32(i.Type))
	if len(i.Rpaths) > 0 {
		b.WriteString("\nRPaths:\n")
		for _, rp := range i.Rpaths {
			b.WriteString("\t" + rp + "\n")
		}
	}
	fmt.Fprintf(&b, "\nDependencies (%d):\n", len(i.Dependencies))
	for _, dep := range i.Dependencies {
		fmt.Fprintf(&b, "\t[%s] %s\n", dep.Kind.Label(), dep.Path)
		fmt.Fprintf(&b, "\t\tcurrent version:       %s\n", dep.CurrentVersion)
		fmt.Fprintf(&b, "\t\tcompatibility version: %s\n", dep.CompatibilityVersion)
	}
	return b.String()
}
