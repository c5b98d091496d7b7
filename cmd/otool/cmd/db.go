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

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/apex/log"
	"github.com/blacktop/otool/internal/colors"
	"github.com/blacktop/otool/internal/commands/otool"
	"github.com/blacktop/otool/internal/config"
	"github.com/blacktop/otool/internal/db"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbListCmd)
	dbCmd.AddCommand(dbShowCmd)
	dbCmd.AddCommand(dbRmCmd)

	dbShowCmd.Flags().BoolP("verbose", "v", false, "diagnostic listing")
	dbShowCmd.Flags().Bool("json", false, "output as JSON")
	viper.BindPFlag("db.show.verbose", dbShowCmd.Flags().Lookup("verbose"))
	viper.BindPFlag("db.show.json", dbShowCmd.Flags().Lookup("json"))
}

func connectDB(conf *config.Config) (db.Database, error) {
	var (
		d   db.Database
		err error
	)
	if conf.Database.Driver == config.DriverPostgres {
		d, err = db.NewPostgres(
			conf.Database.Host,
			conf.Database.Port,
			conf.Database.User,
			conf.Database.Password,
			conf.Database.Name,
			100,
		)
	} else {
		d, err = db.New(conf.Database.Driver, conf.Database.Path)
	}
	if err != nil {
		return nil, err
	}
	if err := d.Connect(); err != nil {
		return nil, err
	}
	return d, nil
}

func openDB() (db.Database, error) {
	conf, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	return connectDB(conf)
}

// dbCmd represents the db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Query images saved with 'otool scan --db'",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var dbListCmd = &cobra.Command{
	Use:           "list",
	Aliases:       []string{"ls"},
	Short:         "List saved images",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDB()
		if err != nil {
			return err
		}
		defer d.Close()

		images, err := d.List()
		if err != nil {
			return err
		}
		for _, img := range images {
			fmt.Printf("%s %s %s\n",
				colors.Bold().Sprint(img.Path),
				colors.HiMagenta().Sprint(img.Arch),
				colors.Faint().Sprintf("(%d deps, %s, scanned %s)", len(img.Dependencies), humanize.Bytes(uint64(img.Size)), humanize.Time(img.UpdatedAt)),
			)
		}
		return nil
	},
}

var dbShowCmd = &cobra.Command{
	Use:   "show <path>",
	Short: "Print the saved listing of an image",
	Example: heredoc.Doc(`
		$ otool db show /usr/lib/libobjc.A.dylib -v`),
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDB()
		if err != nil {
			return err
		}
		defer d.Close()

		saved, err := d.Get(args[0])
		if err != nil {
			return err
		}
		img, err := saved.MachO()
		if err != nil {
			return err
		}
		if viper.GetBool("db.show.json") {
			return otool.RenderJSON(os.Stdout, saved)
		}
		return otool.RenderText(os.Stdout, img, viper.GetBool("db.show.verbose"))
	},
}

var dbRmCmd = &cobra.Command{
	Use:           "rm <path>",
	Short:         "Remove a saved image",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDB()
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.Delete(args[0]); err != nil {
			return err
		}
		log.WithField("path", args[0]).Info("Removed")
		return nil
	},
}
