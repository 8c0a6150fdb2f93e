package prime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// LaunchSpec describes a pod to create.
type LaunchSpec struct {
	Name         string
	CloudID      string
	ProviderType string
	GPUType      string
	GPUCount     int
	DiskSize     int
	// Country and DataCenterID are nil when the placement is unconstrained.
	Country      *string
	DataCenterID *string
}

type launchRequest struct {
	Pod      launchPod      `json:"pod"`
	Provider launchProvider `json:"provider"`
}

type launchPod struct {
	Name         string  `json:"name"`
	CloudID      string  `json:"cloudId"`
	Socket       string  `json:"socket"`
	GPUType      string  `json:"gpuType"`
	GPUCount     int     `json:"gpuCount"`
	DiskSize     int     `json:"diskSize"`
	Country      *string `json:"country"`
	DataCenterID *string `json:"dataCenterId"`
}

type launchProvider struct {
	Type string `json:"type"`
}

// ListPods returns every pod on the account.
func (c *Client) ListPods(ctx context.Context) ([]Instance, error) {
	raw, err := c.do(ctx, http.MethodGet, "/api/v1/pods", nil, nil)
	if err != nil {
		return nil, err
	}
	var env struct {
		Data []Instance `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode pod list: %w", err)
	}
	return env.Data, nil
}

// GetPod fetches the current details of a single pod.
func (c *Client) GetPod(ctx context.Context, id string) (Instance, error) {
	raw, err := c.do(ctx, http.MethodGet, "/api/v1/pods/"+id, nil, nil)
	if err != nil {
		return Instance{}, err
	}
	return decodeInstance(raw)
}

// LaunchPod creates a pod and returns the provider's record of it.
// Creation is asynchronous: the returned instance is typically PROVISIONING.
func (c *Client) LaunchPod(ctx context.Context, spec LaunchSpec) (Instance, error) {
	body := launchRequest{
		Pod: launchPod{
			Name:         spec.Name,
			CloudID:      spec.CloudID,
			Socket:       "PCIe",
			GPUType:      spec.GPUType,
			GPUCount:     spec.GPUCount,
			DiskSize:     spec.DiskSize,
			Country:      spec.Country,
			DataCenterID: spec.DataCenterID,
		},
		Provider: launchProvider{Type: spec.ProviderType},
	}
	raw, err := c.do(ctx, http.MethodPost, "/api/v1/pods", nil, body)
	if err != nil {
		return Instance{}, err
	}
	return decodeInstance(raw)
}

// DeletePod destroys a pod. Deleting is the only way a pod ever goes away.
func (c *Client) DeletePod(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/v1/pods/"+id, nil, nil)
	return err
}

// decodeInstance accepts both a bare instance object and the {"data": ...}
// envelope; single-pod endpoints are inconsistent about which they return.
func decodeInstance(raw json.RawMessage) (Instance, error) {
	var env struct {
		Data *Instance `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err == nil && env.Data != nil {
		return *env.Data, nil
	}
	var inst Instance
	if err := json.Unmarshal(raw, &inst); err != nil {
		return Instance{}, fmt.Errorf("decode pod: %w", err)
	}
	return inst, nil
}
