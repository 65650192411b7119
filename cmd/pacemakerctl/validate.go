package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <snapshot.json>",
		Short: "Check a working-set snapshot's API-boundary invariants without scheduling",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := loadWorkingSet(args[0])
			if err != nil {
				return err
			}
			if err := ws.Validate(); err != nil {
				return fmt.Errorf("snapshot is invalid: %w", err)
			}
			fmt.Println("snapshot is valid")
			return nil
		},
	}
}
