// Package clusterfile reads the YAML manifest describing a desired cluster.
package clusterfile

import (
	"fmt"
	"regexp"

	"github.com/skyforge/primeup/catalog"
)

const ClusterfileVersion = "1"

// maxNameLength is the provider's limit on cluster names; instance names add
// a short role suffix on top.
const maxNameLength = 120

// Clusterfile is the desired cluster topology as declared by the user.
type Clusterfile struct {
	Version      string `yaml:"version"`
	Name         string `yaml:"name"`
	InstanceType string `yaml:"instance_type"`
	Nodes        int    `yaml:"nodes"`
	DiskSize     int    `yaml:"disk_size"`
	Region       string `yaml:"region"`
}

var nameRegex = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

func (c Clusterfile) Validate() error {
	if c.Version != ClusterfileVersion {
		return fmt.Errorf("unsupported version '%s'", c.Version)
	}

	// An empty name is allowed: the CLI generates one.
	if c.Name != "" {
		if !nameRegex.MatchString(c.Name) {
			return fmt.Errorf("name must be a valid identifier")
		}
		if len(c.Name) > maxNameLength {
			return fmt.Errorf("name must be at most %d characters", maxNameLength)
		}
	}

	if c.InstanceType == "" {
		return fmt.Errorf("instance_type is required")
	}
	if _, err := catalog.ParseInstanceType(c.InstanceType); err != nil {
		return fmt.Errorf("instance_type: %w", err)
	}

	if c.Nodes < 1 {
		return fmt.Errorf("nodes must be at least 1")
	}
	if c.DiskSize != 0 && c.DiskSize < 10 {
		return fmt.Errorf("disk_size must be at least 10 GB")
	}
	return nil
}
