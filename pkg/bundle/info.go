package bundle

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/blacktop/go-plist"
)

// Info is the subset of a bundle's Info.plist needed to locate and describe
// its primary image.
// https://developer.apple.com/library/archive/documentation/General/Reference/InfoPlistKeyReference/Introduction/Introduction.html
type Info struct {
	CFBundleExecutable         string   `plist:"CFBundleExecutable,omitempty" json:"executable,omitempty"`
	CFBundleIdentifier         string   `plist:"CFBundleIdentifier,omitempty" json:"identifier,omitempty"`
	CFBundleName               string   `plist:"CFBundleName,omitempty" json:"name,omitempty"`
	CFBundlePackageType        string   `plist:"CFBundlePackageType,omitempty" json:"package_type,omitempty"`
	CFBundleShortVersionString string   `plist:"CFBundleShortVersionString,omitempty" json:"short_version,omitempty"`
	CFBundleVersion            string   `plist:"CFBundleVersion,omitempty" json:"version,omitempty"`
	CFBundleSupportedPlatforms []string `plist:"CFBundleSupportedPlatforms,omitempty" json:"platforms,omitempty"`
	DTPlatformName             string   `plist:"DTPlatformName,omitempty" json:"platform_name,omitempty"`
	LSMinimumSystemVersion     string   `plist:"LSMinimumSystemVersion,omitempty" json:"min_macos,omitempty"`
	MinimumOSVersion           string   `plist:"MinimumOSVersion,omitempty" json:"min_os,omitempty"`
}

func (i *Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CFBundleExecutable: %s\n", i.CFBundleExecutable)
	fmt.Fprintf(&b, "CFBundleIdentifier: %s\n", i.CFBundleIdentifier)
	fmt.Fprintf(&b, "CFBundleName: %s\n", i.CFBundleName)
	fmt.Fprintf(&b, "CFBundleShortVersionString: %s\n", i.CFBundleShortVersionString)
	fmt.Fprintf(&b, "CFBundleVersion: %s\n", i.CFBundleVersion)
	return b.String()
}

// ParseInfo parses an Info.plist in any of the XML, binary or OpenStep formats.
func ParseInfo(data []byte) (*Info, error) {
	i := &Info{}
	if err := plist.NewDecoder(bytes.NewReader(data)).Decode(i); err != nil {
		return nil, fmt.Errorf("failed to parse Info.plist: %w", err)
	}
	return i, nil
}
