package main

import (
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status CLUSTER",
	Short: "Show the canonical status of every instance in a cluster",
	Args:  cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		clusterName := args[0]

		client, err := newClient()
		if err != nil {
			return err
		}
		p := newProvisioner(client, nil)

		statuses, err := p.Query(cmd.Context(), clusterName)
		if err != nil {
			return err
		}
		if len(statuses) == 0 {
			cmd.Printf("no instances found for cluster '%s'\n", clusterName)
			return nil
		}
		for _, id := range sortedKeys(statuses) {
			cmd.Printf("%s\t%s\n", id, statuses[id])
		}
		return nil
	},
}
