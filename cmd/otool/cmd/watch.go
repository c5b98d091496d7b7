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
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/apex/log"
	"github.com/blacktop/otool/internal/colors"
	"github.com/blacktop/otool/internal/commands/otool"
	"github.com/blacktop/otool/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolP("verbose", "v", false, "diagnostic listing")
	viper.BindPFlag("watch.verbose", watchCmd.Flags().Lookup("verbose"))
}

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <macho|bundle>",
	Short: "Print the dependency listing every time a Mach-O is rebuilt",
	Example: heredoc.Doc(`
		# Re-list dependencies on every build
		$ otool watch build/Debug/MyApp.app`),
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := config.LoadConfig()
		if err != nil {
			return err
		}

		insp, err := otool.NewInspector(conf.Cache.Size, decodeOptions(conf)...)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		path := filepath.Clean(args[0])
		log.WithField("path", path).Info("Watching for changes...")

		return insp.Watch(ctx, path, func(res *otool.Result, err error) {
			if err != nil {
				log.WithError(err).WithField("path", path).Error("Failed to decode")
				return
			}
			colors.Faint().Printf("[%s] %s\n", res.ModTime.Format(time.TimeOnly), res.Binary)
			if err := otool.RenderText(os.Stdout, res.Image, viper.GetBool("watch.verbose")); err != nil {
				log.Error(err.Error())
			}
		})
	},
}
