package provisioner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/skyforge/primeup/catalog"
	"github.com/skyforge/primeup/prime"
)

// --- Test helpers ---

var silentLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

const testInstanceType = "datacrunch__1xH100_80GB__124__1857"

func testCatalog() *catalog.Catalog {
	return catalog.New(map[string]string{testInstanceType: "cloud-123"})
}

func testNodeConfig() NodeConfig {
	it, err := catalog.ParseInstanceType(testInstanceType)
	if err != nil {
		panic(err)
	}
	return NodeConfig{InstanceType: it}
}

// recordedSleeps replaces the provisioner's sleep so tests never wait.
type recordedSleeps struct {
	mu        sync.Mutex
	durations []time.Duration
}

func (r *recordedSleeps) sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.durations = append(r.durations, d)
	return nil
}

func (r *recordedSleeps) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.durations)
}

// fakePod wraps an instance with a countdown of list calls before the fake
// flips a pending pod to ACTIVE, simulating asynchronous provisioning.
type fakePod struct {
	inst             prime.Instance
	pollsUntilActive int
}

// fakeAPI is an in-memory stand-in for the pods API.
type fakeAPI struct {
	mu     sync.Mutex
	pods   map[string]*fakePod
	nextID int

	// launchSettle is the pollsUntilActive assigned to launched pods.
	launchSettle int
	launches     []prime.LaunchSpec
	launchErrs   []error

	// listQueue, when non-empty, overrides state-based listing call by call.
	listQueue [][]prime.Instance
	// getQueue, when non-empty for an id, overrides GetPod call by call.
	getQueue map[string][]prime.Instance

	deleteErr map[string]error
	deleted   []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		pods:         make(map[string]*fakePod),
		launchSettle: 1,
		getQueue:     make(map[string][]prime.Instance),
		deleteErr:    make(map[string]error),
	}
}

func (f *fakeAPI) seed(name string, status prime.Status) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.add(name, status, 0)
}

func (f *fakeAPI) seedSettling(name string, status prime.Status, polls int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.add(name, status, polls)
}

func (f *fakeAPI) add(name string, status prime.Status, polls int) string {
	id := fmt.Sprintf("pod-%d", f.nextID)
	f.nextID++
	f.pods[id] = &fakePod{
		inst:             prime.Instance{ID: id, Name: name, Status: status},
		pollsUntilActive: polls,
	}
	return id
}

func (f *fakeAPI) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for _, pod := range f.pods {
		names = append(names, pod.inst.Name)
	}
	return names
}

func (f *fakeAPI) ListPods(context.Context) ([]prime.Instance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.listQueue) > 0 {
		out := f.listQueue[0]
		f.listQueue = f.listQueue[1:]
		return out, nil
	}
	var out []prime.Instance
	for _, pod := range f.pods {
		if pod.pollsUntilActive > 0 {
			pod.pollsUntilActive--
			if pod.pollsUntilActive == 0 {
				pod.inst.Status = prime.StatusActive
			}
		}
		out = append(out, pod.inst)
	}
	return out, nil
}

func (f *fakeAPI) GetPod(_ context.Context, id string) (prime.Instance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if queue := f.getQueue[id]; len(queue) > 0 {
		out := queue[0]
		f.getQueue[id] = queue[1:]
		return out, nil
	}
	pod, ok := f.pods[id]
	if !ok {
		return prime.Instance{}, fmt.Errorf("no pod %s", id)
	}
	return pod.inst, nil
}

func (f *fakeAPI) LaunchPod(_ context.Context, spec prime.LaunchSpec) (prime.Instance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.launchErrs) > 0 {
		err := f.launchErrs[0]
		f.launchErrs = f.launchErrs[1:]
		if err != nil {
			return prime.Instance{}, err
		}
	}
	f.launches = append(f.launches, spec)
	id := f.add(spec.Name, prime.StatusProvisioning, f.launchSettle)
	return f.pods[id].inst, nil
}

func (f *fakeAPI) DeletePod(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.deleteErr[id]; err != nil {
		return err
	}
	delete(f.pods, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func newTestProvisioner(api API, sleeps *recordedSleeps) *Provisioner {
	return New(api, Config{
		Logger:  silentLogger,
		Catalog: testCatalog(),
		Sleep:   sleeps.sleep,
	})
}
