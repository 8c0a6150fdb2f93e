package main

import (
	"fmt"
	"strconv"

	"github.com/alessio/shellescape"
	"github.com/spf13/cobra"

	"github.com/skyforge/primeup/provisioner"
)

var infoCmd = &cobra.Command{
	Use:   "info CLUSTER",
	Short: "Show connection details for a cluster's active instances",
	Args:  cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		clusterName := args[0]

		client, err := newClient()
		if err != nil {
			return err
		}
		p := newProvisioner(client, nil)

		info, err := p.ClusterInfo(cmd.Context(), clusterName, nil)
		if err != nil {
			return err
		}
		if len(info.Instances) == 0 {
			cmd.Printf("no active instances found for cluster '%s'\n", clusterName)
			return nil
		}
		printConnections(cmd, info)
		return nil
	},
}

func printConnections(cmd *cobra.Command, info *provisioner.ClusterInfo) {
	for _, id := range sortedKeys(info.Instances) {
		for _, conn := range info.Instances[id] {
			role := "worker"
			if id == info.HeadInstanceID {
				role = "head"
			}
			ssh := shellescape.QuoteCommand([]string{
				"ssh", "-p", strconv.Itoa(conn.SSHPort),
				fmt.Sprintf("%s@%s", info.SSHUser, conn.ExternalIP),
			})
			cmd.Printf("%s\t%s\t%s\t%s\n", id, role, conn.Tags["provider"], ssh)
		}
	}
}
