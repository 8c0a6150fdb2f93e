package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skyforge/primeup/catalog"
	"github.com/skyforge/primeup/cli/flags"
	"github.com/skyforge/primeup/clusterfile"
	"github.com/skyforge/primeup/namegen"
	"github.com/skyforge/primeup/provisioner"
	"github.com/skyforge/primeup/ui"
)

var upCmd = &cobra.Command{
	Use:   "up [CLUSTERFILE]",
	Short: "Create a cluster, or grow an existing one to its declared size",
	Args:  cobra.MaximumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		file := "cluster.yaml"
		if len(args) > 0 {
			file = args[0]
		}

		cf, err := clusterfile.Read(file, clusterfile.ReadOptions{})
		if err != nil {
			if e, ok := err.(clusterfile.UnmarshalError); ok {
				cmd.PrintErrln(e.Source)
			}
			return fmt.Errorf("failed to read cluster manifest '%s': %w", file, err)
		}

		clusterName := cf.Name
		if clusterName == "" {
			clusterName = namegen.ClusterName()
		}

		instanceType, err := catalog.ParseInstanceType(cf.InstanceType)
		if err != nil {
			return err
		}
		cat, err := catalog.LoadCSV(viper.GetString(flags.Catalog))
		if err != nil {
			return err
		}

		client, err := newClient()
		if err != nil {
			return err
		}

		spinner := ui.NewSpinner("Registering SSH key")
		pubKeyPath := viper.GetString(flags.SSHPublicKey)
		pubKey, err := os.ReadFile(pubKeyPath)
		if err != nil {
			spinner.Fail()
			return fmt.Errorf("failed to read public key '%s': %w", pubKeyPath, err)
		}
		keyName, err := client.EnsureSSHKey(cmd.Context(), string(pubKey))
		if err != nil {
			spinner.Fail()
			return err
		}
		spinner.Success(fmt.Sprintf("SSH key registered as '%s'", keyName))

		p := newProvisioner(client, cat)

		spinner = ui.NewSpinner(fmt.Sprintf("Provisioning cluster '%s' (%d nodes)", clusterName, cf.Nodes))
		record, err := p.Reconcile(cmd.Context(), clusterName, cf.Nodes, provisioner.NodeConfig{
			InstanceType: instanceType,
			DiskSize:     cf.DiskSize,
		}, cf.Region)
		if err != nil {
			spinner.Fail()
			return err
		}
		spinner.Success(fmt.Sprintf("Cluster '%s' is up (%d created, %d resumed)",
			clusterName, len(record.CreatedInstanceIDs), len(record.ResumedInstanceIDs)))

		spinner = ui.NewSpinner("Waiting for SSH endpoints")
		info, err := p.ClusterInfo(cmd.Context(), clusterName, nil)
		if err != nil {
			spinner.Fail()
			return err
		}
		spinner.Success("All instances reachable")

		printConnections(cmd, info)
		return nil
	},
}
