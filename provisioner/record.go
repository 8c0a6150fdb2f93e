package provisioner

// ProvisionRecord is the outcome of one reconciliation pass. It is produced
// once per call and never persisted.
type ProvisionRecord struct {
	ProviderName string
	ClusterName  string
	Region       string
	// Zone is always empty: the provider has no zone concept.
	Zone               string
	HeadInstanceID     string
	ResumedInstanceIDs []string
	CreatedInstanceIDs []string
}

// ConnectionInfo is one reachable endpoint of an instance.
type ConnectionInfo struct {
	InstanceID string
	// InternalIP is always "NOT_SUPPORTED": the provider exposes no private network.
	InternalIP string
	ExternalIP string
	SSHPort    int
	Tags       map[string]string
}

// ClusterInfo is the connection-ready view of a converged cluster.
// It is assembled fresh on every query and never cached.
type ClusterInfo struct {
	Instances      map[string][]ConnectionInfo
	HeadInstanceID string
	ProviderName   string
	ProviderConfig map[string]any
	SSHUser        string
}
