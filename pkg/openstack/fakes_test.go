package openstack_test

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/kaigouthro/nimbus/pkg/openstack"
)

// recordingLogger keeps every entry; safe for concurrent use.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

type logEntry struct {
	level  string
	msg    string
	fields map[string]interface{}
}

func (l *recordingLogger) add(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, logEntry{level: level, msg: msg, fields: fields})
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) { l.add("debug", msg, fields) }
func (l *recordingLogger) Info(msg string, fields map[string]interface{})  { l.add("info", msg, fields) }
func (l *recordingLogger) Warn(msg string, fields map[string]interface{})  { l.add("warn", msg, fields) }
func (l *recordingLogger) Error(msg string, fields map[string]interface{}) { l.add("error", msg, fields) }

func (l *recordingLogger) byLevel(level string) []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	var matched []logEntry

	for _, entry := range l.entries {
		if entry.level == level {
			matched = append(matched, entry)
		}
	}

	return matched
}

// fakeCompute implements the read side of openstack.ComputeClient. Calls to
// anything else panic on the embedded nil interface.
type fakeCompute struct {
	openstack.ComputeClient

	instances    []openstack.Instance
	instancesErr error
	instance     *openstack.Instance
	instanceErr  error
	flavors      []openstack.Flavor
	flavorsErr   error
	keyPairs     []openstack.KeyPair
	keyPairsErr  error
}

func (f *fakeCompute) ListInstances(context.Context, *openstack.Session) ([]openstack.Instance, error) {
	return f.instances, f.instancesErr
}

func (f *fakeCompute) GetInstance(context.Context, *openstack.Session, string) (*openstack.Instance, error) {
	return f.instance, f.instanceErr
}

func (f *fakeCompute) ListFlavors(context.Context, *openstack.Session) ([]openstack.Flavor, error) {
	return f.flavors, f.flavorsErr
}

func (f *fakeCompute) ListKeyPairs(context.Context, *openstack.Session) ([]openstack.KeyPair, error) {
	return f.keyPairs, f.keyPairsErr
}

type fakeVolumes struct {
	openstack.VolumesClient

	volumes []openstack.Volume
	err     error
}

func (f *fakeVolumes) List(context.Context, *openstack.Session) ([]openstack.Volume, error) {
	return f.volumes, f.err
}

type fakeNetworks struct {
	networks    []openstack.Network
	networksErr error
	subnets     map[string][]openstack.Subnet
	subnetErrs  map[string]error
	routers     []openstack.Router
	routersErr  error
	ports       map[string][]openstack.Port
	portErrs    map[string]error

	subnetCalls atomic.Int32
	routerCalls atomic.Int32
	portCalls   atomic.Int32
}

func (f *fakeNetworks) ListNetworks(context.Context, *openstack.Session) ([]openstack.Network, error) {
	return f.networks, f.networksErr
}

func (f *fakeNetworks) ListSubnets(_ context.Context, _ *openstack.Session, networkID string) ([]openstack.Subnet, error) {
	f.subnetCalls.Add(1)

	if err := f.subnetErrs[networkID]; err != nil {
		return nil, err
	}

	return f.subnets[networkID], nil
}

func (f *fakeNetworks) ListRouters(context.Context, *openstack.Session) ([]openstack.Router, error) {
	f.routerCalls.Add(1)

	return f.routers, f.routersErr
}

func (f *fakeNetworks) ListPorts(_ context.Context, _ *openstack.Session, filter *openstack.PortFilter) ([]openstack.Port, error) {
	f.portCalls.Add(1)

	if err := f.portErrs[filter.DeviceID]; err != nil {
		return nil, err
	}

	return f.ports[filter.DeviceID], nil
}

type fakeImages struct {
	images []openstack.Image
	err    error
}

func (f *fakeImages) List(context.Context, *openstack.Session) ([]openstack.Image, error) {
	return f.images, f.err
}

type fakeSecurityGroups struct {
	openstack.SecurityGroupsClient

	groups []openstack.SecurityGroup
	err    error
}

func (f *fakeSecurityGroups) List(context.Context, *openstack.Session) ([]openstack.SecurityGroup, error) {
	return f.groups, f.err
}

type fakeQuotas struct {
	compute    openstack.ServiceQuotas
	computeErr error
	volume     openstack.ServiceQuotas
	volumeErr  error
	network    openstack.ServiceQuotas
	networkErr error

	calls atomic.Int32
}

func (f *fakeQuotas) Compute(context.Context, *openstack.Session, string) (openstack.ServiceQuotas, error) {
	f.calls.Add(1)

	return f.compute, f.computeErr
}

func (f *fakeQuotas) Volume(context.Context, *openstack.Session, string) (openstack.ServiceQuotas, error) {
	f.calls.Add(1)

	return f.volume, f.volumeErr
}

func (f *fakeQuotas) Network(context.Context, *openstack.Session, string) (openstack.ServiceQuotas, error) {
	f.calls.Add(1)

	return f.network, f.networkErr
}

type fakeClient struct {
	compute        *fakeCompute
	volumes        *fakeVolumes
	networks       *fakeNetworks
	images         *fakeImages
	securityGroups *fakeSecurityGroups
	quotas         *fakeQuotas
	logger         *recordingLogger
	policy         openstack.EnrichmentPolicy
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		compute:        &fakeCompute{},
		volumes:        &fakeVolumes{},
		networks:       &fakeNetworks{},
		images:         &fakeImages{},
		securityGroups: &fakeSecurityGroups{},
		quotas:         &fakeQuotas{},
		logger:         &recordingLogger{},
		policy:         openstack.EnrichBestEffort,
	}
}

func (c *fakeClient) Compute() openstack.ComputeClient               { return c.compute }
func (c *fakeClient) Volumes() openstack.VolumesClient               { return c.volumes }
func (c *fakeClient) Networks() openstack.NetworksClient             { return c.networks }
func (c *fakeClient) FloatingIPs() openstack.FloatingIPsClient       { return nil }
func (c *fakeClient) Images() openstack.ImagesClient                 { return c.images }
func (c *fakeClient) SecurityGroups() openstack.SecurityGroupsClient { return c.securityGroups }
func (c *fakeClient) Quotas() openstack.QuotasClient                 { return c.quotas }
func (c *fakeClient) Logger() openstack.Logger                       { return c.logger }
func (c *fakeClient) EnrichmentPolicy() openstack.EnrichmentPolicy   { return c.policy }

func testSession() *openstack.Session {
	return &openstack.Session{Token: "tok", ProjectID: "proj-1"}
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
