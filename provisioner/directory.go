package provisioner

import (
	"context"
	"slices"
	"strings"

	"github.com/skyforge/primeup/prime"
)

// listInstances fetches all pods and keeps those belonging to the cluster,
// optionally restricted to a status set. Membership is by exact name match on
// the "-head"/"-worker" naming convention. The result is a point-in-time
// snapshot; callers re-invoke to observe changes.
func (p *Provisioner) listInstances(ctx context.Context, clusterName string, statuses ...prime.Status) (map[string]prime.Instance, error) {
	pods, err := p.api.ListPods(ctx)
	if err != nil {
		return nil, err
	}

	headName := clusterName + headSuffix
	workerName := clusterName + workerSuffix

	instances := make(map[string]prime.Instance)
	for _, pod := range pods {
		if pod.Name != headName && pod.Name != workerName {
			continue
		}
		if len(statuses) > 0 && !slices.Contains(statuses, pod.Status) {
			continue
		}
		instances[pod.ID] = pod
	}
	return instances, nil
}

// headInstanceID scans an already-fetched set for the instance named with the
// head suffix. Returns "" when the cluster has no head yet.
func headInstanceID(instances map[string]prime.Instance) string {
	for id, inst := range instances {
		if strings.HasSuffix(inst.Name, headSuffix) {
			return id
		}
	}
	return ""
}
