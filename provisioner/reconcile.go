package provisioner

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/skyforge/primeup/catalog"
	"github.com/skyforge/primeup/prime"
)

// OverCapacityError reports that a cluster already holds more instances than
// the reconciliation asked for. The reconciler never deletes extras on its
// own: external interference or stale state needs a human decision.
type OverCapacityError struct {
	ClusterName string
	Existing    int
	Desired     int
}

func (e *OverCapacityError) Error() string {
	return fmt.Sprintf("cluster %s already has %d instances, but %d are required",
		e.ClusterName, e.Existing, e.Desired)
}

// ConvergeTimeoutError reports that the cluster never reached the desired
// active count within the poll budget, usually a provider capacity issue.
type ConvergeTimeoutError struct {
	ClusterName string
	Active      int
	Desired     int
	Polls       int
}

func (e *ConvergeTimeoutError) Error() string {
	return fmt.Sprintf("cluster %s has %d/%d active instances after %d polls: provider capacity issue",
		e.ClusterName, e.Active, e.Desired, e.Polls)
}

var pendingStatuses = []prime.Status{prime.StatusProvisioning, prime.StatusPending}

// Reconcile brings the named cluster to count instances of the given shape.
//
// It first blocks until no instance of the cluster is still being created,
// then launches the shortfall sequentially (the first instance ever launched
// for a cluster is the head, everything after is a worker) and polls until the
// active count matches. It never launches beyond count, and it fails rather
// than delete when more instances exist than requested.
//
// On a launch failure the already-created instances are left in place; the
// caller is expected to clean up with Terminate.
func (p *Provisioner) Reconcile(ctx context.Context, clusterName string, count int, node NodeConfig, region string) (*ProvisionRecord, error) {
	if count < 1 {
		return nil, fmt.Errorf("cluster %s: instance count must be at least 1, got %d", clusterName, count)
	}

	// Instances already in flight when the call starts count as resumed, not
	// created. They are reported only when the cluster turns out to already be
	// at size; a run that launches reports just what it created.
	resumed, err := p.listInstances(ctx, clusterName, pendingStatuses...)
	if err != nil {
		return nil, err
	}

	// Drain-pending: wait out every in-flight creation before counting
	// anything, or a slow provider would make us launch duplicates. There is
	// deliberately no attempt budget here; creation has no fixed SLA.
	for {
		pending, err := p.listInstances(ctx, clusterName, pendingStatuses...)
		if err != nil {
			return nil, err
		}
		if len(pending) == 0 {
			break
		}
		statuses := lo.Map(lo.Values(pending), func(inst prime.Instance, _ int) prime.Status {
			return inst.Status
		})
		p.log.Info("Waiting for in-flight instances to settle",
			"cluster", clusterName, "count", len(pending), "statuses", statuses)
		if err := p.sleep(ctx, p.pollInterval); err != nil {
			return nil, err
		}
	}

	pending, err := p.listInstances(ctx, clusterName, pendingStatuses...)
	if err != nil {
		return nil, err
	}
	if len(pending) > count {
		return nil, &OverCapacityError{ClusterName: clusterName, Existing: len(pending), Desired: count}
	}

	active, err := p.listInstances(ctx, clusterName, prime.StatusActive)
	if err != nil {
		return nil, err
	}
	headID := headInstanceID(active)

	toStart := count - len(active)
	if toStart < 0 {
		return nil, &OverCapacityError{ClusterName: clusterName, Existing: len(active), Desired: count}
	}
	if toStart == 0 {
		if headID == "" {
			// A converged cluster without a -head name can only come from
			// external interference; promote an arbitrary instance so the
			// record stays usable.
			headID = lo.Keys(active)[0]
		}
		p.log.Info("Cluster already at desired size", "cluster", clusterName, "count", count)
		return &ProvisionRecord{
			ProviderName:       ProviderName,
			ClusterName:        clusterName,
			Region:             region,
			HeadInstanceID:     headID,
			ResumedInstanceIDs: lo.Keys(resumed),
			CreatedInstanceIDs: []string{},
		}, nil
	}

	cloudID, ok := p.catalog.UpstreamCloudID(node.InstanceType.Raw)
	if !ok {
		return nil, fmt.Errorf("instance type %s is not in the catalog", node.InstanceType.Raw)
	}
	placement := catalog.ParseRegion(region)
	diskSize := node.DiskSize
	if diskSize == 0 {
		diskSize = DefaultDiskSize
	}

	createdIDs := make([]string, 0, toStart)
	for i := 0; i < toStart; i++ {
		role := "worker"
		if headID == "" {
			role = "head"
		}
		inst, err := p.api.LaunchPod(ctx, prime.LaunchSpec{
			Name:         clusterName + "-" + role,
			CloudID:      cloudID,
			ProviderType: node.InstanceType.Provider,
			GPUType:      node.InstanceType.GPUType,
			GPUCount:     node.InstanceType.GPUCount,
			DiskSize:     diskSize,
			Country:      placement.Country,
			DataCenterID: placement.DataCenterID,
		})
		if err != nil {
			return nil, fmt.Errorf("launch %s instance for cluster %s: %w", role, clusterName, err)
		}
		p.log.Info("Launched instance", "cluster", clusterName, "instance", inst.ID, "role", role)
		createdIDs = append(createdIDs, inst.ID)
		if headID == "" {
			headID = inst.ID
		}
	}

	// Converge-wait: bounded, unlike drain-pending, so capacity failures
	// surface instead of hanging forever.
	maxPolls := p.maxPolls * convergeFactor
	lastActive := 0
	for poll := 0; poll < maxPolls; poll++ {
		active, err := p.listInstances(ctx, clusterName, prime.StatusActive)
		if err != nil {
			return nil, err
		}
		lastActive = len(active)
		p.log.Info("Waiting for instances to become active",
			"cluster", clusterName, "active", lastActive, "desired", count)
		if lastActive == count {
			return &ProvisionRecord{
				ProviderName:       ProviderName,
				ClusterName:        clusterName,
				Region:             region,
				HeadInstanceID:     headID,
				ResumedInstanceIDs: []string{},
				CreatedInstanceIDs: createdIDs,
			}, nil
		}
		if err := p.sleep(ctx, p.pollInterval); err != nil {
			return nil, err
		}
	}
	return nil, &ConvergeTimeoutError{ClusterName: clusterName, Active: lastActive, Desired: count, Polls: maxPolls}
}
