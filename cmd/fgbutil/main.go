// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command fgbutil converts a FlatGeobuf file to GeoJSON, or a GeoJSON
// file to FlatGeobuf, writing the result to stdout.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagInput        string
	flagInputFormat  string
	flagOutputFormat string
	flagIndex        bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fgbutil",
	Short: "Convert between FlatGeobuf and GeoJSON",
	Long: `fgbutil reads a FlatGeobuf or GeoJSON file and writes the
equivalent representation in the other format to stdout.`,
	Args: cobra.NoArgs,
	RunE: runConvert,
}

func init() {
	rootCmd.Flags().StringVar(&flagInput, "input", "", "input file path")
	rootCmd.Flags().StringVar(&flagInputFormat, "inputformat", "fgb", "input format: fgb or geojson")
	rootCmd.Flags().StringVar(&flagOutputFormat, "outputformat", "geojson", "output format: fgb or geojson")
	rootCmd.Flags().BoolVar(&flagIndex, "index", false, "build a spatial index when writing fgb output")
	_ = rootCmd.MarkFlagRequired("input")
}

func runConvert(cmd *cobra.Command, args []string) error {
	f, err := os.Open(flagInput)
	if err != nil {
		return fmt.Errorf("fgbutil: %w", err)
	}
	defer f.Close()

	var fc *collection
	switch flagInputFormat {
	case "fgb":
		fc, err = readFgb(f)
	case "geojson":
		fc, err = readGeoJSON(f)
	default:
		return fgbutilErrf("unknown inputformat %q", flagInputFormat)
	}
	if err != nil {
		return err
	}

	switch flagOutputFormat {
	case "geojson":
		return writeGeoJSON(os.Stdout, fc)
	case "fgb":
		return writeFgb(os.Stdout, fc, flagIndex)
	default:
		return fgbutilErrf("unknown outputformat %q", flagOutputFormat)
	}
}

func fgbutilErrf(format string, a ...interface{}) error {
	return fmt.Errorf("fgbutil: "+format, a...)
}
