// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard cycle progress so the next run starts over",
	Long: `Reset clears the saved work list, cursor and running flag. Documents already
written to the output folder are left in place.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openStateApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.runner.Reset(context.Background()); err != nil {
			return err
		}
		fmt.Println("Progress reset. The next run starts a new cycle.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
