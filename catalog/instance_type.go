// Package catalog resolves the string-encoded instance types used by the
// surrounding framework into the upstream cloud identifiers the pods API
// expects. The lookup table is built once at startup and injected into the
// launch path; nothing in here mutates after construction.
package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// CPUNodeType is the gpu_spec marker for instances without accelerators.
const CPUNodeType = "CPU_NODE"

// InstanceType is the decoded form of a "{provider}__{gpu_spec}__..." string,
// e.g. "datacrunch__8xH100_80GB__124__1857". It is parsed once at the catalog
// boundary so the rest of the system never re-splits delimited strings.
type InstanceType struct {
	Raw      string
	Provider string
	GPUType  string
	GPUCount int
}

// ParseInstanceType decodes an instance type string. The gpu_spec segment is
// either CPU_NODE or "{count}x{gpu_type}".
func ParseInstanceType(s string) (InstanceType, error) {
	parts := strings.Split(s, "__")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return InstanceType{}, fmt.Errorf("instance type %q is not of the form provider__gpu_spec__...", s)
	}

	it := InstanceType{Raw: s, Provider: parts[0]}

	gpuSpec := parts[1]
	if strings.Contains(gpuSpec, CPUNodeType) {
		it.GPUType = CPUNodeType
		it.GPUCount = 1
		return it, nil
	}

	count, gpuType, ok := strings.Cut(gpuSpec, "x")
	if !ok || gpuType == "" {
		return InstanceType{}, fmt.Errorf("instance type %q has malformed gpu spec %q", s, gpuSpec)
	}
	n, err := strconv.Atoi(count)
	if err != nil || n < 1 {
		return InstanceType{}, fmt.Errorf("instance type %q has invalid gpu count %q", s, count)
	}
	it.GPUType = gpuType
	it.GPUCount = n
	return it, nil
}
