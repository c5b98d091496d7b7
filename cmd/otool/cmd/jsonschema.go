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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/blacktop/otool/internal/commands/otool"
	"github.com/blacktop/otool/internal/config"
	"github.com/blacktop/otool/pkg/macho"
	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(schemaCmd)

	schemaCmd.Flags().StringP("output", "o", "-", "where to save the JSON schema")
	schemaCmd.Flags().StringP("kind", "k", "report", "schema kind (report, config)")
	viper.BindPFlag("jsonschema.output", schemaCmd.Flags().Lookup("output"))
	viper.BindPFlag("jsonschema.kind", schemaCmd.Flags().Lookup("kind"))
}

// schemaCmd represents the jsonschema command
var schemaCmd = &cobra.Command{
	Use:           "jsonschema",
	Aliases:       []string{"schema"},
	Short:         "Output otool's JSON schema",
	SilenceUsage:  true,
	SilenceErrors: true,
	Hidden:        true,
	Args:          cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var schema *jsonschema.Schema
		switch kind := viper.GetString("jsonschema.kind"); kind {
		case "config":
			schema = jsonschema.Reflect(&config.Config{})
			schema.Description = "otool configuration file"
		case "report":
			schema = jsonschema.Reflect(&macho.Image{})
			schema.Definitions["ScanReport"] = jsonschema.Reflect(&otool.ScanReport{})
			schema.Description = "otool dependency report"
		default:
			return fmt.Errorf("unknown schema kind %q (want report or config)", kind)
		}
		bts, err := json.MarshalIndent(schema, "	", "	")
		if err != nil {
			return fmt.Errorf("failed to create jsonschema: %w", err)
		}
		out := viper.GetString("jsonschema.output")
		if out == "-" {
			fmt.Println(string(bts))
			return nil
		}
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return fmt.Errorf("failed to write jsonschema file: %w", err)
		}
		if err := os.WriteFile(out, bts, 0o666); err != nil {
			return fmt.Errorf("failed to write jsonschema file: %w", err)
		}
		return nil
	},
}
