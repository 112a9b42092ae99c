package correlation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/osvik/riskwatch/internal/core/domain"
	"github.com/osvik/riskwatch/internal/core/ports"
)

// Resolver answers the question "which port owned this IP at this time?"
// against the cloud network control plane.
//
// Every exclusion rule yields (nil, nil) rather than an error: a port we
// cannot trust is simply not a match, and the risk will surface
// unattributed for manual triage. Only transport failures are errors.
type Resolver struct {
	cloud   ports.ControlPlane
	timeout time.Duration
}

// NewResolver creates a resolver backed by the given control plane.
// timeout bounds each control-plane round trip; zero disables the bound.
func NewResolver(cloud ports.ControlPlane, timeout time.Duration) *Resolver {
	return &Resolver{cloud: cloud, timeout: timeout}
}

// Resolve returns the single trustworthy port owning ip at or before
// notAfter, or nil when no candidate qualifies.
func (r *Resolver) Resolve(ctx context.Context, ip string, notAfter time.Time) (*domain.Port, error) {
	if !domain.IsValidIP(ip) {
		slog.Debug("refusing to resolve malformed address", "ip", ip)
		return nil, nil
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	candidates, err := r.cloud.ListPorts(ctx, domain.PortFilter{IP: ip})
	if err != nil {
		return nil, fmt.Errorf("listing ports for %s: %w", ip, err)
	}

	// Ambiguous attribution is refused rather than guessed.
	if len(candidates) != 1 {
		slog.Debug("port resolution ambiguous", "ip", ip, "candidates", len(candidates))
		return nil, nil
	}
	port := candidates[0]

	// A port created after the observation cannot have caused it.
	if port.CreatedAt.After(notAfter) {
		slog.Debug("port newer than risk", "ip", ip, "port", port.ID)
		return nil, nil
	}

	if _, ok := domain.ResourceTypeForOwner(port.DeviceOwner); !ok {
		slog.Debug("unsupported device owner", "ip", ip, "port", port.ID, "owner", port.DeviceOwner)
		return nil, nil
	}

	network, err := r.cloud.GetNetwork(ctx, port.NetworkID)
	if err != nil {
		return nil, fmt.Errorf("fetching network %s: %w", port.NetworkID, err)
	}
	if !network.RouterExternal {
		slog.Debug("port on internal-only network", "ip", ip, "port", port.ID, "network", port.NetworkID)
		return nil, nil
	}

	return &port, nil
}
