package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/fatih/color"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skyforge/primeup/catalog"
	"github.com/skyforge/primeup/cli/flags"
	"github.com/skyforge/primeup/cli/log"
	"github.com/skyforge/primeup/prime"
	"github.com/skyforge/primeup/provisioner"
)

// Versioning information set at build time
var version, commit = "dev", "n/a"

var rootCmd = &cobra.Command{
	Use:   "primeup",
	Short: "primeup provisions GPU clusters on Prime Intellect.",

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return log.Init()
	},
}

func init() {
	flags.Register(rootCmd.PersistentFlags())

	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(downCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(versionCmd)
}

// newClient builds an API client from the local credentials.
func newClient() (*prime.Client, error) {
	creds, err := prime.LoadCredentials()
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	return prime.NewClient(creds,
		prime.WithBaseURL(viper.GetString(flags.APIURL)),
		prime.WithLogger(log.With("component", "prime")),
	), nil
}

// newProvisioner wires a provisioner around the client. The catalog may be
// nil for commands that never launch instances.
func newProvisioner(client *prime.Client, cat *catalog.Catalog) *provisioner.Provisioner {
	return provisioner.New(client, provisioner.Config{
		Logger:  log.With("component", "provisioner"),
		Catalog: cat,
	})
}

// sortedKeys returns map keys in a stable order for display.
func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetOut(os.Stdout)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		lo.Must(fmt.Fprintln(os.Stderr, color.HiRedString(fmt.Sprint(err))))
		os.Exit(1)
	}
}
