// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/tabsift/internal/state"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the current cycle",
	Long: `Status prints whether a cycle is in progress and how far it got. With
--dump it writes the raw persisted properties and the per-document outcome
journal as YAML or JSON.`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	dump, _ := cmd.Flags().GetString("dump")

	a, err := openStateApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	switch dump {
	case "":
	case "yaml", "json":
		snap, err := state.Dump(ctx, a.store)
		if err != nil {
			return err
		}
		if dump == "json" {
			return snap.WriteJSON(os.Stdout)
		}
		return snap.WriteYAML(os.Stdout)
	default:
		return fmt.Errorf("invalid --dump %q: must be yaml or json", dump)
	}

	st, err := a.runner.Status(ctx)
	if err != nil {
		return err
	}
	fmt.Println(st)
	if remaining := st.Remaining(); remaining > 0 {
		fmt.Printf("%d documents remaining\n", remaining)
	}
	return nil
}

func init() {
	statusCmd.Flags().String("dump", "", "write the raw state as yaml or json")
	rootCmd.AddCommand(statusCmd)
}
