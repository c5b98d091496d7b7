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
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/apex/log"
	"github.com/blacktop/otool/internal/colors"
	"github.com/blacktop/otool/internal/commands/otool"
	"github.com/blacktop/otool/internal/config"
	"github.com/blacktop/otool/internal/model"
	"github.com/blacktop/otool/internal/utils"
	"github.com/caarlos0/ctrlc"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().IntP("workers", "w", 0, "number of files decoded in parallel (default: number of CPUs)")
	scanCmd.Flags().StringSliceP("exclude", "e", []string{}, "glob patterns of files/directories to skip")
	scanCmd.Flags().Bool("json", false, "output as JSON")
	scanCmd.Flags().Bool("yaml", false, "output as YAML")
	scanCmd.Flags().BoolP("progress", "p", false, "show a progress bar")
	scanCmd.Flags().Bool("db", false, "save the results to the database")
	scanCmd.Flags().String("db-path", "", "database path (default: $HOME/.config/otool/otool.db)")
	viper.BindPFlag("scan.workers", scanCmd.Flags().Lookup("workers"))
	viper.BindPFlag("scan.exclude", scanCmd.Flags().Lookup("exclude"))
	viper.BindPFlag("scan.json", scanCmd.Flags().Lookup("json"))
	viper.BindPFlag("scan.yaml", scanCmd.Flags().Lookup("yaml"))
	viper.BindPFlag("scan.progress", scanCmd.Flags().Lookup("progress"))
	viper.BindPFlag("scan.db", scanCmd.Flags().Lookup("db"))
	viper.BindPFlag("database.path", scanCmd.Flags().Lookup("db-path"))
}

// stopProgress aborts an unfinished bar and waits for p to render its last frame.
func stopProgress(p *mpb.Progress, bar *mpb.Bar, drop bool) {
	if p == nil {
		return
	}
	if !bar.Completed() {
		bar.Abort(drop)
	}
	p.Wait()
}

func saveReport(conf *config.Config, report *otool.ScanReport) error {
	d, err := connectDB(conf)
	if err != nil {
		return err
	}
	defer d.Close()

	for _, res := range report.Results {
		if err := d.Save(model.FromMachO(res.Path, res.Binary, res.Size, res.ModTime, res.Image)); err != nil {
			return fmt.Errorf("failed to save %s: %w", res.Path, err)
		}
	}
	log.WithFields(log.Fields{
		"driver": conf.Database.Driver,
		"path":   conf.Database.Path,
		"images": len(report.Results),
	}).Info("Saved to database")
	return nil
}

func printReport(report *otool.ScanReport) error {
	for _, res := range report.Results {
		colors.Bold().Printf("%s:\n", res.Path)
		img := *res.Image
		img.Dependencies = res.Image.Imports()
		if err := otool.RenderText(os.Stdout, &img, false); err != nil {
			return err
		}
	}
	return nil
}

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <dir>",
	Short: "List the dependencies of every Mach-O below a directory",
	Example: heredoc.Doc(`
		# Scan an app bundle
		$ otool scan /Applications/Xcode.app --progress

		# Skip debug symbols and save to the database
		$ otool scan /usr/lib -e '*.dSYM' --db

		# JSON report
		$ otool scan ~/Library/Frameworks --json`),
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

		var (
			p   *mpb.Progress
			bar *mpb.Bar
		)
		scanConf := &otool.ScanConfig{
			Workers: conf.Scan.Workers,
			Exclude: conf.Scan.Exclude,
			OnStart: func(total int) {
				log.WithField("files", humanize.Comma(int64(total))).Info("Decoding Mach-O candidates")
				if !viper.GetBool("scan.progress") || total == 0 {
					return
				}
				if !term.IsTerminal(int(os.Stderr.Fd())) {
					log.Debug("stderr is not a terminal, not drawing a progress bar")
					return
				}
				p = mpb.New(mpb.WithWidth(80), mpb.WithOutput(os.Stderr))
				name := "      "
				bar = p.New(int64(total),
					mpb.BarStyle().Lbound("[").Filler("=").Tip(">").Padding("-").Rbound("|"),
					mpb.PrependDecorators(
						decor.Name(name, decor.WC{W: len(name), C: decor.DindentRight | decor.DextraSpace}),
						decor.OnComplete(
							decor.AverageETA(decor.ET_STYLE_GO, decor.WC{W: 4}), "✅ ",
						),
					),
					mpb.AppendDecorators(
						decor.CountersNoUnit("%d/%d"),
						decor.Name(" "),
						decor.Percentage(),
						decor.Name(" ] "),
					),
				)
			},
			OnFile: func(path string, err error) {
				if bar != nil {
					bar.Increment()
				}
			},
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		start := time.Now()
		var report *otool.ScanReport
		done := make(chan struct{})
		if err := ctrlc.Default.Run(ctx, func() error {
			defer close(done)
			r, err := insp.Scan(ctx, args[0], scanConf)
			report = r
			return err
		}); err != nil {
			if errors.As(err, &ctrlc.ErrorCtrlC{}) {
				cancel()
				<-done
				stopProgress(p, bar, true)
				log.Warn("Exiting...")
				return nil
			}
			stopProgress(p, bar, true)
			return err
		}
		stopProgress(p, bar, false)
		log.WithField("images", insp.Cached()).Debug("Inspector cache")

		if len(report.Results) == 0 && len(report.Failed) == 0 {
			return fmt.Errorf("%w in %s", otool.ErrNoMachO, args[0])
		}

		var size uint64
		for _, res := range report.Results {
			size += uint64(res.Size)
		}
		log.WithFields(log.Fields{
			"decoded": humanize.Comma(int64(len(report.Results))),
			"failed":  len(report.Failed),
			"skipped": humanize.Comma(int64(report.Skipped)),
			"size":    humanize.Bytes(size),
			"took":    time.Since(start).Round(time.Millisecond),
		}).Info("Scan complete")
		for _, path := range slices.Sorted(maps.Keys(report.Failed)) {
			utils.Indent(log.WithField("path", path).Warn, 2)(report.Failed[path])
		}

		if viper.GetBool("scan.db") {
			if err := saveReport(conf, report); err != nil {
				return err
			}
		}

		switch {
		case viper.GetBool("scan.json"):
			return otool.RenderJSON(os.Stdout, report)
		case viper.GetBool("scan.yaml"):
			return otool.RenderYAML(os.Stdout, report)
		default:
			return printReport(report)
		}
	},
}
