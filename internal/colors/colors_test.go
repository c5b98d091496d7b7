package colors

import (
	"testing"

	"github.com/blacktop/otool/pkg/macho"
	"github.com/fatih/color"
)

func TestInit(t *testing.T) {
	on, off := true, false
	kinds := []macho.DylibKind{macho.KindLoad, macho.KindWeakLoad, macho.KindReexport, macho.KindLazyLoad, macho.KindID}

	tests := []struct {
		name    string
		noColor bool // auto-detected state before Init
		force   *bool
		want    bool
	}{
		{"forced on over a pipe", true, &on, true},
		{"forced off on a terminal", false, &off, false},
		{"auto on", false, nil, true},
		{"auto off", true, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := color.NoColor
			defer func() { color.NoColor = orig }()

			color.NoColor = tt.noColor
			Init(tt.force)
			if Enabled() != tt.want {
				t.Fatalf("Enabled() = %v, want %v", Enabled(), tt.want)
			}
			for _, k := range kinds {
				got := Kind(k).Sprint("libFoo")
				if plain := got == "libFoo"; plain == tt.want {
					t.Errorf("Kind(%s).Sprint() = %q with colors enabled=%v", k, got, tt.want)
				}
			}
		})
	}
}
