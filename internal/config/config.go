// Package config is used to load the configuration file
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/blacktop/otool/internal/utils"
	"github.com/spf13/viper"
)

const (
	DriverSqlite   = "sqlite"
	DriverMemory   = "memory"
	DriverPostgres = "postgres"

	defaultCacheSize = 128
)

type scan struct {
	Workers int      `json:"workers,omitempty" mapstructure:"workers"`
	Exclude []string `json:"exclude,omitempty" mapstructure:"exclude"`
}

type cache struct {
	Size int `json:"size,omitempty" mapstructure:"size"`
}

type database struct {
	Driver string `json:"driver,omitempty" mapstructure:"driver" jsonschema:"enum=sqlite,enum=memory,enum=postgres"`
	Path   string `json:"path,omitempty" mapstructure:"path"`
	// postgres
	Host     string `json:"host,omitempty" mapstructure:"host"`
	Port     string `json:"port,omitempty" mapstructure:"port"`
	User     string `json:"user,omitempty" mapstructure:"user"`
	Password string `json:"password,omitempty" mapstructure:"password"`
	Name     string `json:"name,omitempty" mapstructure:"name"`
}

// Config is the configuration struct
type Config struct {
	Color    bool     `json:"color,omitempty" mapstructure:"color"`
	Strict   bool     `json:"strict,omitempty" mapstructure:"strict"`
	Scan     scan     `json:"scan" mapstructure:"scan"`
	Cache    cache    `json:"cache" mapstructure:"cache"`
	Database database `json:"database" mapstructure:"database"`
}

// Dir returns the directory holding otool's config and database files.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: failed to get user home directory: %v", err)
	}
	return filepath.Join(home, ".config", "otool"), nil
}

func (c *Config) verify() error {
	if c.Scan.Workers <= 0 {
		c.Scan.Workers = runtime.NumCPU()
	}
	if c.Cache.Size <= 0 {
		c.Cache.Size = defaultCacheSize
	}
	switch c.Database.Driver {
	case "":
		c.Database.Driver = DriverSqlite
	case DriverSqlite, DriverMemory:
	case DriverPostgres:
		if c.Database.Port == "" {
			c.Database.Port = "5432"
		}
		if c.Database.Host == "" || c.Database.User == "" || c.Database.Name == "" {
			return fmt.Errorf("config: postgres requires database.host, database.user and database.name")
		}
		return nil
	default:
		return fmt.Errorf("config: unsupported database driver %q (want %s, %s or %s)", c.Database.Driver, DriverSqlite, DriverMemory, DriverPostgres)
	}
	if c.Database.Path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		name := "otool.db"
		if c.Database.Driver == DriverMemory {
			name = "otool.gob"
		}
		c.Database.Path = filepath.Join(dir, name)
	}
	c.Database.Path = utils.ExpandHome(c.Database.Path)
	return nil
}

// LoadConfig loads the configuration file
func LoadConfig() (*Config, error) {
	return load(viper.GetViper())
}

func load(v *viper.Viper) (*Config, error) {
	var c *Config

	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %v", err)
	}
	if c == nil {
		c = &Config{}
	}

	if err := c.verify(); err != nil {
		return nil, fmt.Errorf("config: failed to verify: %v", err)
	}

	return c, nil
}
