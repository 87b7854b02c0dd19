// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/tabsift/internal/merge"
	"github.com/pdiddy/tabsift/pkg/types"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <dir>",
	Short: "Combine the documents of a folder into one document",
	Long: `Merge reads every supported document in <dir> in name order and writes
them into a single docx or Markdown file, chosen by the output extension.
Markdown output gives each document a title heading and separates documents
with a rule. Files that cannot be read are reported and skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("output")
		format, _ := cmd.Flags().GetString("format")
		imagesDir, _ := cmd.Flags().GetString("images-dir")
		separator, _ := cmd.Flags().GetString("separator")

		f := types.OutputFormat(format)
		if out == "" {
			if f == "" {
				f = types.FormatDocx
			}
			out = merge.DefaultOutput(args[0], f)
		}

		res, err := merge.Dir(context.Background(), args[0], out, merge.Options{
			Format:    f,
			ImagesDir: imagesDir,
			Separator: separator,
			Log:       logger,
			Out:       os.Stdout,
		})
		if err != nil {
			return err
		}
		if res.HasFailures() {
			return fmt.Errorf("%d file(s) could not be merged", len(res.Skipped))
		}
		return nil
	},
}

func init() {
	mergeCmd.Flags().StringP("output", "o", "", "output file (default: <dir>_merged.docx)")
	mergeCmd.Flags().String("format", "", "output format: docx or markdown (default: from the output extension)")
	mergeCmd.Flags().String("images-dir", "", "folder for extracted images (markdown output)")
	mergeCmd.Flags().String("separator", merge.DefaultSeparator, "separator between documents (markdown output)")
	rootCmd.AddCommand(mergeCmd)
}
