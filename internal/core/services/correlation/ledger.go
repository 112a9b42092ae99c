package correlation

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/osvik/riskwatch/internal/core/domain"
	"github.com/osvik/riskwatch/internal/core/ports"
)

// Ledger is the authoritative "IP + port -> resource" mapping derived from
// resolved ports. Bindings are append-only: once a port has been recorded
// the stored row wins forever, so repeated resolution of the same port can
// never produce duplicates.
type Ledger struct {
	store ports.Storage
}

// NewLedger creates a ledger over the given store.
func NewLedger(store ports.Storage) *Ledger {
	return &Ledger{store: store}
}

// Lookup returns a previously recorded binding for an IP, or nil when
// the IP has never been resolved.
func (l *Ledger) Lookup(ip string) (*domain.IPUsage, error) {
	usages, err := l.store.ListIPUsages(ip)
	if err != nil {
		return nil, fmt.Errorf("looking up bindings for %s: %w", ip, err)
	}
	if len(usages) == 0 {
		return nil, nil
	}
	return &usages[0], nil
}

// GetOrCreate returns the binding for a qualifying port, creating one from
// the port's device attachment on first sight.
func (l *Ledger) GetOrCreate(ip string, port *domain.Port) (*domain.IPUsage, error) {
	existing, err := l.store.GetIPUsageByPort(port.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ports.ErrNotFound) {
		return nil, fmt.Errorf("looking up binding for port %s: %w", port.ID, err)
	}

	resourceType, ok := domain.ResourceTypeForOwner(port.DeviceOwner)
	if !ok {
		// Resolver already filtered owners; a miss here means the port
		// snapshot changed between calls.
		return nil, fmt.Errorf("port %s has unsupported owner %q", port.ID, port.DeviceOwner)
	}

	usage := &domain.IPUsage{
		ID:           uuid.NewString(),
		IP:           ip,
		PortID:       port.ID,
		ProjectID:    port.ProjectID,
		ResourceID:   port.DeviceID,
		ResourceType: resourceType,
	}
	if err := l.store.CreateIPUsage(usage); err != nil {
		return nil, fmt.Errorf("recording binding for port %s: %w", port.ID, err)
	}
	return usage, nil
}
