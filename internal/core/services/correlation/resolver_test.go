package correlation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/osvik/riskwatch/internal/adapters/storage"
	"github.com/osvik/riskwatch/internal/core/domain"
	"github.com/osvik/riskwatch/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeControlPlane implements ports.ControlPlane for tests.
type fakeControlPlane struct {
	ports    []domain.Port
	networks map[string]domain.Network
	listErr  error
	netErr   error

	listCalls int
}

func (f *fakeControlPlane) ListPorts(ctx context.Context, filter domain.PortFilter) ([]domain.Port, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.ports, nil
}

func (f *fakeControlPlane) GetNetwork(ctx context.Context, id string) (*domain.Network, error) {
	if f.netErr != nil {
		return nil, f.netErr
	}
	if n, ok := f.networks[id]; ok {
		return &n, nil
	}
	// Networks default to externally routable unless a test says otherwise.
	return &domain.Network{ID: id, RouterExternal: true}, nil
}

var _ ports.ControlPlane = (*fakeControlPlane)(nil)

var (
	riskTime    = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	portCreated = riskTime.Add(-30 * 24 * time.Hour)
)

func qualifyingPort() domain.Port {
	return domain.Port{
		ID:          "port-1",
		ProjectID:   "proj-1",
		DeviceID:    "vm-1",
		DeviceOwner: "compute:nova",
		CreatedAt:   portCreated,
		NetworkID:   "net-1",
	}
}

func newTestStore(t *testing.T) *storage.SQLiteAdapter {
	t.Helper()
	store, err := storage.NewSQLiteAdapter(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestResolver_SingleQualifyingPort(t *testing.T) {
	cloud := &fakeControlPlane{ports: []domain.Port{qualifyingPort()}}
	resolver := NewResolver(cloud, 0)

	port, err := resolver.Resolve(context.Background(), "10.0.0.5", riskTime)
	require.NoError(t, err)
	require.NotNil(t, port)
	assert.Equal(t, "port-1", port.ID)
	assert.Equal(t, "vm-1", port.DeviceID)
}

func TestResolver_NoPorts(t *testing.T) {
	cloud := &fakeControlPlane{}
	resolver := NewResolver(cloud, 0)

	port, err := resolver.Resolve(context.Background(), "10.0.0.5", riskTime)
	require.NoError(t, err)
	assert.Nil(t, port)
}

func TestResolver_MultiplePortsAmbiguous(t *testing.T) {
	p1 := qualifyingPort()
	p2 := qualifyingPort()
	p2.ID = "port-2"
	cloud := &fakeControlPlane{ports: []domain.Port{p1, p2}}
	resolver := NewResolver(cloud, 0)

	port, err := resolver.Resolve(context.Background(), "10.0.0.5", riskTime)
	require.NoError(t, err)
	assert.Nil(t, port, "ambiguous attribution must be refused, not guessed")
}

func TestResolver_PortCreatedAfterRisk(t *testing.T) {
	p := qualifyingPort()
	p.CreatedAt = riskTime.Add(time.Hour)
	cloud := &fakeControlPlane{ports: []domain.Port{p}}
	resolver := NewResolver(cloud, 0)

	port, err := resolver.Resolve(context.Background(), "10.0.0.5", riskTime)
	require.NoError(t, err)
	assert.Nil(t, port)
}

func TestResolver_UnsupportedDeviceOwner(t *testing.T) {
	p := qualifyingPort()
	p.DeviceOwner = "network:dhcp"
	cloud := &fakeControlPlane{ports: []domain.Port{p}}
	resolver := NewResolver(cloud, 0)

	port, err := resolver.Resolve(context.Background(), "10.0.0.5", riskTime)
	require.NoError(t, err)
	assert.Nil(t, port)
}

func TestResolver_InternalOnlyNetwork(t *testing.T) {
	cloud := &fakeControlPlane{
		ports: []domain.Port{qualifyingPort()},
		networks: map[string]domain.Network{
			"net-1": {ID: "net-1", RouterExternal: false},
		},
	}
	resolver := NewResolver(cloud, 0)

	port, err := resolver.Resolve(context.Background(), "10.0.0.5", riskTime)
	require.NoError(t, err)
	assert.Nil(t, port)
}

func TestResolver_MalformedIP(t *testing.T) {
	cloud := &fakeControlPlane{listErr: errors.New("should not be called")}
	resolver := NewResolver(cloud, 0)

	port, err := resolver.Resolve(context.Background(), "garbage", riskTime)
	require.NoError(t, err)
	assert.Nil(t, port)
	assert.Zero(t, cloud.listCalls)
}

func TestResolver_ListPortsFailure(t *testing.T) {
	cloud := &fakeControlPlane{listErr: errors.New("connection refused")}
	resolver := NewResolver(cloud, 0)

	_, err := resolver.Resolve(context.Background(), "10.0.0.5", riskTime)
	assert.Error(t, err, "transport faults are errors, not silent no-matches")
}

func TestResolver_GetNetworkFailure(t *testing.T) {
	cloud := &fakeControlPlane{
		ports:  []domain.Port{qualifyingPort()},
		netErr: errors.New("timeout"),
	}
	resolver := NewResolver(cloud, 0)

	_, err := resolver.Resolve(context.Background(), "10.0.0.5", riskTime)
	assert.Error(t, err)
}

func TestLedger_CreatesBindingFromPort(t *testing.T) {
	store := newTestStore(t)
	ledger := NewLedger(store)

	port := qualifyingPort()
	usage, err := ledger.GetOrCreate("10.0.0.5", &port)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", usage.IP)
	assert.Equal(t, "port-1", usage.PortID)
	assert.Equal(t, "proj-1", usage.ProjectID)
	assert.Equal(t, "vm-1", usage.ResourceID)
	assert.Equal(t, domain.ResourceTypeInstance, usage.ResourceType)
	assert.NotEmpty(t, usage.ID)
}

func TestLedger_Idempotent(t *testing.T) {
	store := newTestStore(t)
	ledger := NewLedger(store)

	port := qualifyingPort()
	first, err := ledger.GetOrCreate("10.0.0.5", &port)
	require.NoError(t, err)

	second, err := ledger.GetOrCreate("10.0.0.5", &port)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	usages, err := store.ListIPUsages("10.0.0.5")
	require.NoError(t, err)
	assert.Len(t, usages, 1, "repeated resolution must never duplicate bindings")
}

func TestLedger_Lookup(t *testing.T) {
	store := newTestStore(t)
	ledger := NewLedger(store)

	got, err := ledger.Lookup("10.0.0.5")
	require.NoError(t, err)
	assert.Nil(t, got)

	port := qualifyingPort()
	created, err := ledger.GetOrCreate("10.0.0.5", &port)
	require.NoError(t, err)

	got, err = ledger.Lookup("10.0.0.5")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)
}
