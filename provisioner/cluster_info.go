package provisioner

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/skyforge/primeup/prime"
)

const internalIPNotSupported = "NOT_SUPPORTED"

// SSHEndpoint is a parsed "user@host" or "user@host -p port" connection string.
type SSHEndpoint struct {
	User string
	Host string
	Port int
}

// ParseSSHEndpoint splits a provider connection string. Without an explicit
// port marker the port defaults to 22.
func ParseSSHEndpoint(s string) (SSHEndpoint, error) {
	target := strings.TrimSpace(s)
	port := 22
	if before, after, ok := strings.Cut(target, " -p "); ok {
		target = strings.TrimSpace(before)
		p, err := strconv.Atoi(strings.TrimSpace(after))
		if err != nil {
			return SSHEndpoint{}, fmt.Errorf("ssh connection %q has an invalid port: %w", s, err)
		}
		port = p
	}
	user, host, ok := strings.Cut(target, "@")
	if !ok || user == "" || host == "" {
		return SSHEndpoint{}, fmt.Errorf("ssh connection %q is not of the form user@host", s)
	}
	return SSHEndpoint{User: user, Host: host, Port: port}, nil
}

// ClusterInfo turns the cluster's active instances into connection-ready
// records. "ACTIVE" does not imply reachability: the provider activates the
// compute resource before the SSH gateway exists, so instances without an SSH
// endpoint are re-fetched individually until one appears or the attempt budget
// runs out. Assembly is all-or-nothing: one unreachable instance fails the call.
func (p *Provisioner) ClusterInfo(ctx context.Context, clusterName string, providerConfig map[string]any) (*ClusterInfo, error) {
	running, err := p.listInstances(ctx, clusterName, prime.StatusActive)
	if err != nil {
		return nil, err
	}

	info := &ClusterInfo{
		Instances:      make(map[string][]ConnectionInfo, len(running)),
		ProviderName:   ProviderName,
		ProviderConfig: providerConfig,
	}
	for id, inst := range running {
		for attempt := 1; inst.SSHConnection == "" && attempt <= p.sshMaxPolls; attempt++ {
			p.log.Info("SSH endpoint not assigned yet",
				"cluster", clusterName, "instance", inst.Name,
				"attempt", attempt, "max", p.sshMaxPolls)
			if err := p.sleep(ctx, p.sshPollInterval); err != nil {
				return nil, err
			}
			if inst, err = p.api.GetPod(ctx, id); err != nil {
				return nil, fmt.Errorf("refresh instance %s of cluster %s: %w", id, clusterName, err)
			}
		}
		if inst.SSHConnection == "" {
			return nil, fmt.Errorf("instance %s of cluster %s never reported an SSH endpoint after %d attempts",
				id, clusterName, p.sshMaxPolls)
		}

		endpoint, err := ParseSSHEndpoint(inst.SSHConnection)
		if err != nil {
			return nil, fmt.Errorf("instance %s of cluster %s: %w", id, clusterName, err)
		}

		info.Instances[id] = []ConnectionInfo{{
			InstanceID: id,
			InternalIP: internalIPNotSupported,
			ExternalIP: inst.IP,
			SSHPort:    endpoint.Port,
			Tags:       map[string]string{"provider": inst.ProviderType},
		}}
		if strings.HasSuffix(inst.Name, headSuffix) {
			info.HeadInstanceID = id
			info.SSHUser = endpoint.User
		}
	}
	return info, nil
}
