// Package provisioner reconciles a desired cluster topology (one head node
// plus workers) against the pods actually present on the Prime Intellect
// account. The provider has no cluster primitive: membership is encoded purely
// in instance names ("{cluster}-head" / "{cluster}-worker"), and the
// reconciler drives the observed instance count toward the desired one with
// bounded polling.
//
// A reconciliation call owns its goroutine and blocks through every poll.
// Calls for different clusters are independent; concurrent calls for the same
// cluster are not coordinated and must be serialized by the caller, or role
// assignment can race.
package provisioner

import (
	"context"
	"log/slog"
	"time"

	"github.com/skyforge/primeup/catalog"
	"github.com/skyforge/primeup/prime"
)

// ProviderName identifies this provider in provisioning records.
const ProviderName = "primeintellect"

const (
	headSuffix   = "-head"
	workerSuffix = "-worker"
)

const (
	defaultPollInterval = 5 * time.Second
	defaultMaxPolls     = 12
	// Provisioning is materially slower than status polling, so the
	// converge-wait budget is a multiple of the base poll budget.
	convergeFactor = 16

	defaultSSHPollInterval = 10 * time.Second
	defaultSSHMaxPolls     = 6
)

// DefaultDiskSize is the disk size in GB used when a NodeConfig leaves it unset.
const DefaultDiskSize = 120

// API is the slice of the pods API the provisioner needs. *prime.Client
// satisfies it; tests substitute fakes.
type API interface {
	ListPods(ctx context.Context) ([]prime.Instance, error)
	GetPod(ctx context.Context, id string) (prime.Instance, error)
	LaunchPod(ctx context.Context, spec prime.LaunchSpec) (prime.Instance, error)
	DeletePod(ctx context.Context, id string) error
}

// NodeConfig describes the instances a cluster is made of.
type NodeConfig struct {
	InstanceType catalog.InstanceType
	// DiskSize in GB. Zero means DefaultDiskSize.
	DiskSize int
}

// Config tunes a Provisioner. The zero value is usable: every field has a
// production default. Poll intervals and the sleep function are injectable so
// tests run without wall-clock waits.
type Config struct {
	Logger          *slog.Logger
	Catalog         *catalog.Catalog
	PollInterval    time.Duration
	MaxPolls        int
	SSHPollInterval time.Duration
	SSHMaxPolls     int
	Sleep           func(context.Context, time.Duration) error
}

// Provisioner brings named clusters to their desired size and answers
// liveness and connectivity queries about them.
type Provisioner struct {
	api     API
	catalog *catalog.Catalog
	log     *slog.Logger

	pollInterval    time.Duration
	maxPolls        int
	sshPollInterval time.Duration
	sshMaxPolls     int
	sleep           func(context.Context, time.Duration) error
}

func New(api API, config Config) *Provisioner {
	p := &Provisioner{
		api:             api,
		catalog:         config.Catalog,
		log:             config.Logger,
		pollInterval:    config.PollInterval,
		maxPolls:        config.MaxPolls,
		sshPollInterval: config.SSHPollInterval,
		sshMaxPolls:     config.SSHMaxPolls,
		sleep:           config.Sleep,
	}
	if p.log == nil {
		p.log = slog.Default()
	}
	if p.pollInterval == 0 {
		p.pollInterval = defaultPollInterval
	}
	if p.maxPolls == 0 {
		p.maxPolls = defaultMaxPolls
	}
	if p.sshPollInterval == 0 {
		p.sshPollInterval = defaultSSHPollInterval
	}
	if p.sshMaxPolls == 0 {
		p.sshMaxPolls = defaultSSHMaxPolls
	}
	if p.sleep == nil {
		p.sleep = sleepContext
	}
	return p
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
