package main

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/skyforge/primeup/ui"
)

var downCmd = &cobra.Command{
	Use:   "down CLUSTER",
	Short: "Terminate a cluster's instances",
	Args:  cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		clusterName := args[0]
		workersOnly := lo.Must(cmd.Flags().GetBool("workers-only"))

		client, err := newClient()
		if err != nil {
			return err
		}
		p := newProvisioner(client, nil)

		what := "all instances"
		if workersOnly {
			what = "workers"
		}
		spinner := ui.NewSpinner(fmt.Sprintf("Terminating %s of cluster '%s'", what, clusterName))
		if err := p.Terminate(cmd.Context(), clusterName, workersOnly); err != nil {
			spinner.Fail()
			return err
		}
		spinner.Success(fmt.Sprintf("Terminated %s of cluster '%s'", what, clusterName))
		return nil
	},
}

func init() {
	downCmd.Flags().Bool("workers-only", false, "keep the head instance running")
}
