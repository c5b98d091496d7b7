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
	"context"
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/apex/log"
	"github.com/blacktop/otool/internal/commands/otool"
	"github.com/blacktop/otool/internal/config"
	"github.com/blacktop/otool/pkg/macho"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(rdepsCmd)

	rdepsCmd.Flags().StringP("scan", "s", "", "scan this directory instead of querying the database")
	rdepsCmd.Flags().BoolP("transitive", "t", false, "include images that load the dylib through other images")
	rdepsCmd.Flags().Bool("json", false, "output as JSON")
	viper.BindPFlag("rdeps.scan", rdepsCmd.Flags().Lookup("scan"))
	viper.BindPFlag("rdeps.transitive", rdepsCmd.Flags().Lookup("transitive"))
	viper.BindPFlag("rdeps.json", rdepsCmd.Flags().Lookup("json"))
}

func dependentsFromDB(conf *config.Config, dylib string, transitive bool) ([]string, error) {
	d, err := connectDB(conf)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	if transitive {
		all, err := d.List()
		if err != nil {
			return nil, err
		}
		images := make(map[string]*macho.Image, len(all))
		for _, img := range all {
			m, err := img.MachO()
			if err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", img.Path, err)
			}
			images[img.Path] = m
		}
		return otool.TransitiveDependents(images, dylib)
	}

	images, err := d.Dependents(dylib)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, img := range images {
		paths = append(paths, img.Path)
	}
	return paths, nil
}

func dependentsFromScan(conf *config.Config, root, dylib string, transitive bool) ([]string, error) {
	insp, err := otool.NewInspector(conf.Cache.Size, decodeOptions(conf)...)
	if err != nil {
		return nil, err
	}
	report, err := insp.Scan(context.Background(), root, &otool.ScanConfig{
		Workers: conf.Scan.Workers,
		Exclude: conf.Scan.Exclude,
	})
	if err != nil {
		return nil, err
	}
	users := report.Dependents(dylib)
	if transitive {
		if users, err = report.TransitiveDependents(dylib); err != nil {
			return nil, err
		}
	}
	var paths []string
	for _, res := range users {
		paths = append(paths, res.Path)
	}
	return paths, nil
}

// rdepsCmd represents the rdeps command
var rdepsCmd = &cobra.Command{
	Use:   "rdeps <install-name>",
	Short: "List the images that link against a dylib",
	Example: heredoc.Doc(`
		# Query images saved with 'otool scan --db'
		$ otool rdeps /usr/lib/libz.1.dylib

		# Scan a directory on the fly
		$ otool rdeps @rpath/Sparkle.framework/Versions/B/Sparkle --scan /Applications

		# Include everything that reaches libz through another scanned image
		$ otool rdeps -t /usr/lib/libz.1.dylib`),
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := config.LoadConfig()
		if err != nil {
			return err
		}

		var paths []string
		if root := viper.GetString("rdeps.scan"); root != "" {
			paths, err = dependentsFromScan(conf, root, args[0], viper.GetBool("rdeps.transitive"))
		} else {
			paths, err = dependentsFromDB(conf, args[0], viper.GetBool("rdeps.transitive"))
		}
		if err != nil {
			return err
		}

		if viper.GetBool("rdeps.json") {
			return otool.RenderJSON(os.Stdout, paths)
		}
		if len(paths) == 0 {
			log.WithField("dylib", args[0]).Warn("No dependents found")
			return nil
		}
		for _, p := range paths {
			fmt.Println(p)
		}
		return nil
	},
}
