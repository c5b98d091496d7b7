/*
Copyright © 2018-2025 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/apex/log"
	clihander "github.com/apex/log/handlers/cli"
	"github.com/blacktop/otool/internal/colors"
	"github.com/blacktop/otool/internal/commands/otool"
	"github.com/blacktop/otool/internal/config"
	"github.com/blacktop/otool/internal/utils"
	"github.com/blacktop/otool/pkg/bundle"
	"github.com/blacktop/otool/pkg/macho"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	// Debug boolean flag for debug logging
	Debug bool
	// AppVersion stores the plugin's version
	AppVersion string
	// AppBuildCommit stores the plugin's build commit
	AppBuildCommit string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "otool [-L] [-v] <macho|bundle>",
	Short: "List the shared libraries a Mach-O image depends on",
	Example: heredoc.Doc(`
		# List a dylib's dependencies (like otool -L)
		$ otool -L /usr/lib/libobjc.A.dylib

		# Resolve an app bundle to its main executable
		$ otool /Applications/Safari.app

		# Diagnostic listing with load command kinds and rpaths
		$ otool -v /System/Library/Frameworks/Foundation.framework

		# Machine readable
		$ otool --json libfoo.dylib | jq '.dependencies[].path'`),
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if Debug {
			log.SetLevel(log.DebugLevel)
		}
		initColor()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := config.LoadConfig()
		if err != nil {
			return err
		}

		if viper.GetBool("json") && viper.GetBool("yaml") {
			return fmt.Errorf("--json and --yaml are mutually exclusive")
		}
		if viper.GetBool("json") || viper.GetBool("yaml") {
			var ignored []string
			cmd.Flags().VisitAll(func(f *pflag.Flag) {
				if f.Changed && slices.Contains([]string{"verbose", "libraries"}, f.Name) {
					ignored = append(ignored, f.Name)
				}
			})
			if len(ignored) > 0 {
				log.Warnf("structured output is set; flag(s) [ %s ] ignored", "--"+strings.Join(ignored, ", --"))
			}
		}

		path := filepath.Clean(args[0])
		log.WithField("path", path).Debug("Parsing")

		insp, err := otool.NewInspector(conf.Cache.Size, decodeOptions(conf)...)
		if err != nil {
			return err
		}
		res, err := insp.Inspect(path)
		if err != nil {
			return err
		}
		if res.Bundled() {
			log.WithField("path", res.Binary).Info("Main executable")
			if info, _, err := bundle.ReadInfo(path); err == nil {
				for _, line := range strings.Split(strings.TrimSpace(info.String()), "\n") {
					utils.Indent(log.Debug, 2)(line)
				}
			}
		}

		switch {
		case viper.GetBool("json"):
			return otool.RenderJSON(os.Stdout, res.Image)
		case viper.GetBool("yaml"):
			return otool.RenderYAML(os.Stdout, res.Image)
		default:
			return otool.RenderText(os.Stdout, res.Image, viper.GetBool("verbose"))
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func init() {
	log.SetHandler(clihander.Default)

	cobra.OnInitialize(initConfig)

	// Flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/otool/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&Debug, "debug", "V", false, "debug logging")
	rootCmd.PersistentFlags().Bool("color", false, "colorize output")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().Bool("strict", false, "reject malformed load command tables instead of skipping bad records")
	viper.BindPFlag("color", rootCmd.PersistentFlags().Lookup("color"))
	viper.BindPFlag("no-color", rootCmd.PersistentFlags().Lookup("no-color"))
	viper.BindPFlag("strict", rootCmd.PersistentFlags().Lookup("strict"))
	viper.BindEnv("color", "CLICOLOR_FORCE")

	rootCmd.Flags().BoolP("libraries", "L", true, "display the names and version numbers of the shared libraries used")
	rootCmd.Flags().BoolP("verbose", "v", false, "diagnostic listing (architecture, file type, rpaths and dependency kinds)")
	rootCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.Flags().Bool("yaml", false, "output as YAML")
	viper.BindPFlag("verbose", rootCmd.Flags().Lookup("verbose"))
	viper.BindPFlag("json", rootCmd.Flags().Lookup("json"))
	viper.BindPFlag("yaml", rootCmd.Flags().Lookup("yaml"))
	// Settings
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := config.Dir()
		cobra.CheckErr(err)

		viper.AddConfigPath(dir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("otool")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Debugf("Using config file: %s", viper.ConfigFileUsed())
	}
}

func initColor() {
	switch {
	case viper.GetBool("no-color"):
		off := false
		colors.Init(&off)
	case viper.GetBool("color"):
		on := true
		colors.Init(&on)
	}
}

func decodeOptions(conf *config.Config) []macho.Option {
	if conf.Strict {
		return []macho.Option{macho.WithStrict()}
	}
	return nil
}
