package provisioner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyforge/primeup/prime"
)

func TestReconcileFreshClusterLaunchesHead(t *testing.T) {
	api := newFakeAPI()
	sleeps := &recordedSleeps{}
	p := newTestProvisioner(api, sleeps)

	record, err := p.Reconcile(context.Background(), "c1", 1, testNodeConfig(), "PLACEHOLDER")
	require.NoError(t, err)

	require.Len(t, api.launches, 1)
	launch := api.launches[0]
	assert.Equal(t, "c1-head", launch.Name)
	assert.Equal(t, "cloud-123", launch.CloudID)
	assert.Equal(t, "datacrunch", launch.ProviderType)
	assert.Equal(t, "H100_80GB", launch.GPUType)
	assert.Equal(t, 1, launch.GPUCount)
	assert.Equal(t, DefaultDiskSize, launch.DiskSize)
	assert.Nil(t, launch.Country)
	assert.Nil(t, launch.DataCenterID)

	assert.Equal(t, "primeintellect", record.ProviderName)
	assert.Equal(t, "c1", record.ClusterName)
	assert.Empty(t, record.Zone)
	assert.Len(t, record.CreatedInstanceIDs, 1)
	assert.Equal(t, record.CreatedInstanceIDs[0], record.HeadInstanceID)
	assert.Empty(t, record.ResumedInstanceIDs)
}

func TestReconcileGrowsClusterWithWorkers(t *testing.T) {
	api := newFakeAPI()
	headID := api.seed("c1-head", prime.StatusActive)
	p := newTestProvisioner(api, &recordedSleeps{})

	record, err := p.Reconcile(context.Background(), "c1", 2, testNodeConfig(), "PLACEHOLDER")
	require.NoError(t, err)

	require.Len(t, api.launches, 1)
	assert.Equal(t, "c1-worker", api.launches[0].Name)
	assert.Equal(t, headID, record.HeadInstanceID)
	assert.Len(t, record.CreatedInstanceIDs, 1)

	// Exactly one instance carries the head name after convergence.
	heads := 0
	for _, name := range api.names() {
		if strings.HasSuffix(name, "-head") {
			heads++
		}
	}
	assert.Equal(t, 1, heads)
}

func TestReconcileConvergedClusterIsIdempotent(t *testing.T) {
	api := newFakeAPI()
	headID := api.seed("c1-head", prime.StatusActive)
	p := newTestProvisioner(api, &recordedSleeps{})

	first, err := p.Reconcile(context.Background(), "c1", 1, testNodeConfig(), "PLACEHOLDER")
	require.NoError(t, err)
	second, err := p.Reconcile(context.Background(), "c1", 1, testNodeConfig(), "PLACEHOLDER")
	require.NoError(t, err)

	assert.Empty(t, api.launches)
	assert.Equal(t, headID, first.HeadInstanceID)
	assert.Equal(t, headID, second.HeadInstanceID)
	assert.Empty(t, second.CreatedInstanceIDs)
}

func TestReconcileRegionParsedIntoPlacement(t *testing.T) {
	api := newFakeAPI()
	p := newTestProvisioner(api, &recordedSleeps{})

	_, err := p.Reconcile(context.Background(), "c1", 1, testNodeConfig(), "US - dc1")
	require.NoError(t, err)

	require.Len(t, api.launches, 1)
	require.NotNil(t, api.launches[0].Country)
	require.NotNil(t, api.launches[0].DataCenterID)
	assert.Equal(t, "US", *api.launches[0].Country)
	assert.Equal(t, "dc1", *api.launches[0].DataCenterID)
}

func TestReconcileDrainsPendingInstancesBeforeCounting(t *testing.T) {
	api := newFakeAPI()
	// Pending from a previous interrupted run, settling after two list calls.
	pendingID := api.seedSettling("c1-head", prime.StatusPending, 2)
	sleeps := &recordedSleeps{}
	p := newTestProvisioner(api, sleeps)

	record, err := p.Reconcile(context.Background(), "c1", 1, testNodeConfig(), "PLACEHOLDER")
	require.NoError(t, err)

	assert.Empty(t, api.launches)
	assert.Empty(t, record.CreatedInstanceIDs)
	assert.Equal(t, []string{pendingID}, record.ResumedInstanceIDs)
	assert.Equal(t, pendingID, record.HeadInstanceID)
}

func TestReconcileLaunchRunReportsOnlyCreatedInstances(t *testing.T) {
	api := newFakeAPI()
	// A head still settling from an earlier run, plus a shortfall of one.
	headID := api.seedSettling("c1-head", prime.StatusPending, 2)
	p := newTestProvisioner(api, &recordedSleeps{})

	record, err := p.Reconcile(context.Background(), "c1", 2, testNodeConfig(), "PLACEHOLDER")
	require.NoError(t, err)

	require.Len(t, api.launches, 1)
	assert.Equal(t, "c1-worker", api.launches[0].Name)
	assert.Equal(t, headID, record.HeadInstanceID)
	assert.Len(t, record.CreatedInstanceIDs, 1)
	// The drained head is waited for but not reported: a run that launches
	// lists only what it created.
	assert.Empty(t, record.ResumedInstanceIDs)
}

func TestReconcileFailsWhenActiveExceedsTarget(t *testing.T) {
	api := newFakeAPI()
	api.seed("c1-head", prime.StatusActive)
	api.seed("c1-worker", prime.StatusActive)
	api.seed("c1-worker", prime.StatusActive)
	p := newTestProvisioner(api, &recordedSleeps{})

	_, err := p.Reconcile(context.Background(), "c1", 2, testNodeConfig(), "PLACEHOLDER")

	var overErr *OverCapacityError
	require.ErrorAs(t, err, &overErr)
	assert.Equal(t, 3, overErr.Existing)
	assert.Equal(t, 2, overErr.Desired)
	assert.Empty(t, api.launches)
}

func TestReconcileFailsWhenPendingExceedsTarget(t *testing.T) {
	pending := func(n int) []prime.Instance {
		var out []prime.Instance
		for i := 0; i < n; i++ {
			out = append(out, prime.Instance{
				ID:     "pend-" + string(rune('a'+i)),
				Name:   "c1-worker",
				Status: prime.StatusPending,
			})
		}
		return out
	}
	api := newFakeAPI()
	// Scripted lists: empty resumed snapshot, empty drain pass, then three
	// pending instances appearing out of band right before the capacity check.
	api.listQueue = [][]prime.Instance{nil, nil, pending(3)}
	p := newTestProvisioner(api, &recordedSleeps{})

	_, err := p.Reconcile(context.Background(), "c1", 2, testNodeConfig(), "PLACEHOLDER")

	var overErr *OverCapacityError
	require.ErrorAs(t, err, &overErr)
	assert.Empty(t, api.launches)
}

func TestReconcilePromotesArbitraryHeadWhenNoneNamed(t *testing.T) {
	api := newFakeAPI()
	a := api.seed("c1-worker", prime.StatusActive)
	b := api.seed("c1-worker", prime.StatusActive)
	p := newTestProvisioner(api, &recordedSleeps{})

	record, err := p.Reconcile(context.Background(), "c1", 2, testNodeConfig(), "PLACEHOLDER")
	require.NoError(t, err)
	assert.Contains(t, []string{a, b}, record.HeadInstanceID)
}

func TestReconcileLaunchFailureAbortsWithoutRollback(t *testing.T) {
	api := newFakeAPI()
	boom := errors.New("no capacity in region")
	api.launchErrs = []error{nil, boom}
	p := newTestProvisioner(api, &recordedSleeps{})

	_, err := p.Reconcile(context.Background(), "c1", 2, testNodeConfig(), "PLACEHOLDER")

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "c1")
	// The first instance stays: cleanup is the caller's job, via Terminate.
	assert.Len(t, api.names(), 1)
}

func TestReconcileTimesOutWhenInstancesNeverActivate(t *testing.T) {
	api := newFakeAPI()
	api.launchSettle = 1 << 30 // never settles
	sleeps := &recordedSleeps{}
	p := New(api, Config{
		Logger:   silentLogger,
		Catalog:  testCatalog(),
		MaxPolls: 2,
		Sleep:    sleeps.sleep,
	})

	_, err := p.Reconcile(context.Background(), "c1", 1, testNodeConfig(), "PLACEHOLDER")

	var timeoutErr *ConvergeTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, 0, timeoutErr.Active)
	assert.Equal(t, 1, timeoutErr.Desired)
	// The converge budget is 16x the base poll budget.
	assert.Equal(t, 2*convergeFactor, timeoutErr.Polls)
	assert.Equal(t, 2*convergeFactor, sleeps.count())
}

func TestReconcileRejectsNonPositiveCount(t *testing.T) {
	p := newTestProvisioner(newFakeAPI(), &recordedSleeps{})
	_, err := p.Reconcile(context.Background(), "c1", 0, testNodeConfig(), "PLACEHOLDER")
	assert.Error(t, err)
}

func TestReconcileUnknownInstanceTypeFails(t *testing.T) {
	api := newFakeAPI()
	p := newTestProvisioner(api, &recordedSleeps{})

	node := testNodeConfig()
	node.InstanceType.Raw = "datacrunch__1xUNKNOWN__0__0"
	_, err := p.Reconcile(context.Background(), "c1", 1, node, "PLACEHOLDER")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog")
	assert.Empty(t, api.launches)
}
