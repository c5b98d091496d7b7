// Package colors holds the palette for dependency listings. fatih/color turns
// it off when stdout is not a terminal; Init applies --color/--no-color.
package colors

import (
	"github.com/blacktop/otool/pkg/macho"
	"github.com/fatih/color"
)

// Init overrides the detected setting unless forceColor is nil.
func Init(forceColor *bool) {
	if forceColor != nil {
		color.NoColor = !*forceColor
	}
}

func Enabled() bool {
	return !color.NoColor
}

func Bold() *color.Color      { return color.New(color.Bold) }
func Faint() *color.Color     { return color.New(color.Faint) }
func BoldBlue() *color.Color  { return color.New(color.Bold, color.FgBlue) }
func HiYellow() *color.Color  { return color.New(color.FgHiYellow) }
func HiCyan() *color.Color    { return color.New(color.FgHiCyan) }
func HiMagenta() *color.Color { return color.New(color.FgHiMagenta) }
func HiBlue() *color.Color    { return color.New(color.FgHiBlue) }
func Green() *color.Color     { return color.New(color.FgGreen) }

// Kind returns the color used for a dependency of kind k.
func Kind(k macho.DylibKind) *color.Color {
	switch k {
	case macho.KindID:
		return color.New(color.Bold, color.FgHiMagenta)
	case macho.KindWeakLoad:
		return HiYellow()
	case macho.KindReexport:
		return HiCyan()
	case macho.KindLazyLoad:
		return HiBlue()
	default:
		return Green()
	}
}
