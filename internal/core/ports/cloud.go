package ports

import (
	"context"

	"github.com/osvik/riskwatch/internal/core/domain"
)

// ControlPlane exposes the two cloud network queries the resolver needs.
// Implementations talk to a remote API; calls may block, time out, or
// fail transiently, and results are point-in-time snapshots.
type ControlPlane interface {
	// ListPorts returns the ports matching the filter.
	ListPorts(ctx context.Context, filter domain.PortFilter) ([]domain.Port, error)
	// GetNetwork returns the network with the given id.
	GetNetwork(ctx context.Context, id string) (*domain.Network, error)
}
