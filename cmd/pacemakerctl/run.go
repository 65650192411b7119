package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oishikohei/pacemaker/scheduler"
)

type runFlags struct {
	maxPerNode   uint32
	notify       bool
}

func newRunCmd(root *rootFlags) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run <snapshot.json>",
		Short: "Run one scheduling round over a working-set snapshot and print the plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(root, flags, args[0])
		},
	}
	cmd.Flags().Uint32Var(&flags.maxPerNode, "max-per-node", 1, "default clone-node-max when a collective doesn't set its own")
	cmd.Flags().BoolVar(&flags.notify, "notify", false, "enable notify/notified pseudo-action construction")
	return cmd
}

func runSnapshot(root *rootFlags, flags *runFlags, path string) error {
	ws, err := loadWorkingSet(path)
	if err != nil {
		return err
	}

	logger := root.logger()
	ctx := scheduler.NewEvalContext(ws, logger)
	engine := scheduler.NewEngine(scheduler.EngineConfig{
		DefaultMaxPerNode:   flags.maxPerNode,
		EnableNotifications: flags.notify,
		Logger:              logger,
	})

	if err := engine.Run(ctx); err != nil {
		return fmt.Errorf("running scheduling round: %w", err)
	}

	printPlan(ws.Root)
	return nil
}

func printPlan(r *scheduler.Resource) {
	if r == nil {
		return
	}
	loc := r.Location(false)
	locStr := "(unassigned)"
	if loc != nil {
		locStr = *loc
	}
	fmt.Printf("%-24s %-10s %s\n", r.ID, r.Variant, locStr)
	for _, c := range r.Children {
		printPlan(c)
	}
}
