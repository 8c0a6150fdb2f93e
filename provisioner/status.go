package provisioner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/skyforge/primeup/prime"
)

// ClusterStatus is the canonical status taxonomy understood by callers.
type ClusterStatus string

const (
	ClusterStatusInit    ClusterStatus = "INIT"
	ClusterStatusUp      ClusterStatus = "UP"
	ClusterStatusStopped ClusterStatus = "STOPPED"
)

// ErrNotSupported marks operations the provider does not implement.
// Stop/resume must fail fast rather than silently no-op.
var ErrNotSupported = errors.New("not supported by the primeintellect provider")

// canonicalStatus folds provider statuses into the canonical taxonomy.
// Everything pre-ACTIVE or in teardown (PROVISIONING, PENDING, ERROR,
// DELETING) is INIT: still in flux from the caller's point of view.
func canonicalStatus(s prime.Status) ClusterStatus {
	switch s {
	case prime.StatusActive:
		return ClusterStatusUp
	case prime.StatusStopped, prime.StatusTerminated:
		return ClusterStatusStopped
	default:
		return ClusterStatusInit
	}
}

// Query reports the canonical status of every instance in the cluster.
func (p *Provisioner) Query(ctx context.Context, clusterName string) (map[string]ClusterStatus, error) {
	instances, err := p.listInstances(ctx, clusterName)
	if err != nil {
		return nil, err
	}
	return lo.MapValues(instances, func(inst prime.Instance, _ string) ClusterStatus {
		return canonicalStatus(inst.Status)
	}), nil
}

// Terminate deletes every instance of the cluster, or only the workers when
// workerOnly is set. The first deletion failure aborts the call; callers
// retry termination as a whole.
func (p *Provisioner) Terminate(ctx context.Context, clusterName string, workerOnly bool) error {
	instances, err := p.listInstances(ctx, clusterName)
	if err != nil {
		return err
	}
	for id, inst := range instances {
		if workerOnly && strings.HasSuffix(inst.Name, headSuffix) {
			continue
		}
		p.log.Debug("Terminating instance", "cluster", clusterName, "instance", id, "name", inst.Name)
		if err := p.api.DeletePod(ctx, id); err != nil {
			return fmt.Errorf("terminate instance %s of cluster %s: %w", id, clusterName, err)
		}
	}
	return nil
}

// Stop is not implemented by the provider.
func (p *Provisioner) Stop(ctx context.Context, clusterName string, workerOnly bool) error {
	return fmt.Errorf("stop cluster %s: %w", clusterName, ErrNotSupported)
}

// Resume is not implemented by the provider.
func (p *Provisioner) Resume(ctx context.Context, clusterName string) error {
	return fmt.Errorf("resume cluster %s: %w", clusterName, ErrNotSupported)
}
