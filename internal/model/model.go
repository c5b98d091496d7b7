// Package model contains the scan result models for the database.
package model

import (
	"errors"
	"time"

	"github.com/blacktop/otool/pkg/macho"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("no image found")

// Image is the model for a scanned Mach-O image.
type Image struct {
	Path      string `gorm:"primaryKey" json:"path"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Binary       string       `json:"binary,omitempty"` // resolved file when Path is a bundle
	Size         int64        `json:"size"`
	ModTime      time.Time    `json:"mod_time"`
	Arch         string       `json:"arch"`
	Is64Bit      bool         `json:"is_64bit"`
	Type         uint32       `json:"type"`
	Dependencies []Dependency `gorm:"foreignKey:ImagePath;constraint:OnDelete:CASCADE" json:"dependencies,omitempty"`
	Rpaths       []Rpath      `gorm:"foreignKey:ImagePath;constraint:OnDelete:CASCADE" json:"rpaths,omitempty"`
}

// Dependency is one dylib reference of an Image.
type Dependency struct {
	ID        uint   `gorm:"primaryKey" json:"-"`
	ImagePath string `gorm:"index" json:"-"`
	Ordinal   int    `json:"-"`

	Path                 string `gorm:"index" json:"path"`
	CurrentVersion       string `json:"current_version"`
	CompatibilityVersion string `json:"compatibility_version"`
	Kind                 string `json:"kind"`
}

// Rpath is one run-path search directory of an Image.
type Rpath struct {
	ID        uint   `gorm:"primaryKey" json:"-"`
	ImagePath string `gorm:"index" json:"-"`
	Ordinal   int    `json:"-"`

	Path string `json:"path"`
}

// FromMachO converts a decoded image into its database model.
func FromMachO(path, binary string, size int64, modTime time.Time, img *macho.Image) *Image {
	m := &Image{
		Path:    path,
		Binary:  binary,
		Size:    size,
		ModTime: modTime,
		Arch:    img.Arch,
		Is64Bit: img.Is64Bit,
		Type:    uint32(img.Type),
	}
	for i, d := range img.Dependencies {
		m.Dependencies = append(m.Dependencies, Dependency{
			ImagePath:            path,
			Ordinal:              i,
			Path:                 d.Path,
			CurrentVersion:       d.CurrentVersion,
			CompatibilityVersion: d.CompatibilityVersion,
			Kind:                 d.Kind.String(),
		})
	}
	for i, r := range img.Rpaths {
		m.Rpaths = append(m.Rpaths, Rpath{ImagePath: path, Ordinal: i, Path: r})
	}
	return m
}

// MachO converts the model back into a decoded image report.
func (i *Image) MachO() (*macho.Image, error) {
	img := &macho.Image{
		Arch:    i.Arch,
		Is64Bit: i.Is64Bit,
		Type:    macho.Type(i.Type),
	}
	for _, d := range i.Dependencies {
		var kind macho.DylibKind
		if err := kind.UnmarshalText([]byte(d.Kind)); err != nil {
			return nil, err
		}
		img.Dependencies = append(img.Dependencies, macho.Dependency{
			Path:                 d.Path,
			CurrentVersion:       d.CurrentVersion,
			CompatibilityVersion: d.CompatibilityVersion,
			Kind:                 kind,
		})
	}
	for _, r := range i.Rpaths {
		img.Rpaths = append(img.Rpaths, r.Path)
	}
	return img, nil
}
