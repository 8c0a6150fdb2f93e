package prime

// Status is the lifecycle status reported by the Prime Intellect API for a pod.
type Status string

const (
	StatusProvisioning Status = "PROVISIONING"
	StatusPending      Status = "PENDING"
	StatusActive       Status = "ACTIVE"
	StatusStopped      Status = "STOPPED"
	StatusError        Status = "ERROR"
	StatusDeleting     Status = "DELETING"
	StatusTerminated   Status = "TERMINATED"
)

// Instance is a single rented compute pod as reported by the API.
// Identity is the provider-assigned ID; everything else may change between reads.
type Instance struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status Status `json:"status"`
	// IP is the external address. Empty until the provider assigns one.
	IP string `json:"ip"`
	// SSHConnection is "user@host" or "user@host -p port". It appears
	// asynchronously after the pod becomes ACTIVE and may be empty for a while.
	SSHConnection string `json:"sshConnection"`
	// ProviderType identifies the upstream cloud actually hosting the pod.
	ProviderType string `json:"providerType"`
}

// SSHKey is a public key registered with the provider account.
type SSHKey struct {
	Name      string `json:"name"`
	PublicKey string `json:"publicKey"`
}
