package correlation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/osvik/riskwatch/internal/core/domain"
	"github.com/osvik/riskwatch/internal/core/ports"
	"github.com/osvik/riskwatch/internal/telemetry"
)

// sweepBatchSize caps how many expired risks a single delete statement
// touches so a large backlog never turns into one unbounded transaction.
const sweepBatchSize = 500

// Manager turns raw IP-based risks into deduplicated, resource-attributed
// findings. It is safe for concurrent use across distinct risk ids; the
// final persist for each risk runs inside one store transaction.
type Manager struct {
	store    ports.Storage
	resolver *Resolver
	ledger   *Ledger
}

// NewManager wires the correlation engine over a store and a control
// plane. cloudTimeout bounds each control-plane round trip.
func NewManager(store ports.Storage, cloud ports.ControlPlane, cloudTimeout time.Duration) *Manager {
	return &Manager{
		store:    store,
		resolver: NewResolver(cloud, cloudTimeout),
		ledger:   NewLedger(store),
	}
}

// ProcessRisk attributes and deduplicates a single reported risk.
//
// Resolution failures of the "could not attribute" kind (no candidate,
// ambiguous, unsupported owner, internal network) still transition the
// risk to PROCESSED, just without attribution. Control-plane transport
// failures abort the whole operation with no state mutation so the
// triggering event can be redelivered.
func (m *Manager) ProcessRisk(ctx context.Context, riskID string) error {
	risk, err := m.store.GetRisk(riskID)
	if errors.Is(err, ports.ErrNotFound) {
		// Already merged or expired by a concurrent run.
		slog.Info("risk gone before processing", "risk", riskID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading risk %s: %w", riskID, err)
	}
	if risk.Status == domain.RiskStatusProcessed {
		// Guard against at-least-once redelivery.
		slog.Info("risk already processed", "risk", riskID)
		return nil
	}

	usage, err := m.findIPUsage(ctx, risk)
	if err != nil {
		return err
	}

	err = m.store.Transaction(func(tx ports.Storage) error {
		risk.Status = domain.RiskStatusProcessed
		if usage != nil {
			risk.ProjectID = usage.ProjectID
			risk.ResourceID = usage.ResourceID
			risk.ResourceType = usage.ResourceType
		}

		existing, err := m.findDuplicate(tx, risk)
		if err != nil {
			return err
		}
		if existing != nil {
			// The older record tracks latest activity; its first_seen
			// keeps marking the first occurrence.
			existing.Time = risk.Time
			existing.Expires = risk.Expires
			existing.LastSeen = risk.LastSeen
			if err := tx.SaveRisk(existing); err != nil {
				return err
			}
			if err := tx.DeleteRisk(risk.ID); err != nil {
				return err
			}
			telemetry.RisksMerged.Inc()
			slog.Info("risk merged into existing finding",
				"risk", risk.ID, "into", existing.ID, "resource", existing.ResourceID)
			return nil
		}

		return tx.SaveRisk(risk)
	})
	if err != nil {
		return fmt.Errorf("persisting risk %s: %w", riskID, err)
	}

	if usage == nil {
		telemetry.RisksUnattributed.Inc()
	}
	telemetry.RisksProcessed.Inc()
	return nil
}

// findIPUsage resolves the binding for a risk's IP at the risk's event
// time. A nil binding with nil error means "could not attribute".
func (m *Manager) findIPUsage(ctx context.Context, risk *domain.SecurityRisk) (*domain.IPUsage, error) {
	// The ledger is checked first so repeat sightings of a known IP
	// never hit the control plane.
	cached, err := m.ledger.Lookup(risk.IPAddress)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}

	port, err := m.resolver.Resolve(ctx, risk.IPAddress, risk.Time)
	if err != nil {
		telemetry.ControlPlaneErrors.Inc()
		return nil, fmt.Errorf("resolving %s: %w", risk.IPAddress, err)
	}
	if port == nil {
		return nil, nil
	}

	return m.ledger.GetOrCreate(risk.IPAddress, port)
}

// findDuplicate looks for an older processed risk for the same resource,
// project and type. An existing risk that was never attributed (empty
// project) is never a merge target: absorbing a newly attributed risk
// into an unattributed placeholder would silently discard its identity.
func (m *Manager) findDuplicate(tx ports.Storage, risk *domain.SecurityRisk) (*domain.SecurityRisk, error) {
	if !risk.Attributed() {
		return nil, nil
	}

	matches, err := tx.FindRisks(domain.RiskFilter{
		ResourceID: risk.ResourceID,
		ProjectID:  risk.ProjectID,
		TypeID:     risk.TypeID,
		Status:     domain.RiskStatusProcessed,
	})
	if err != nil {
		return nil, fmt.Errorf("searching duplicates: %w", err)
	}

	for i := range matches {
		if matches[i].ID == risk.ID || matches[i].ProjectID == "" {
			continue
		}
		return &matches[i], nil
	}
	return nil, nil
}

// SweepExpired deletes every risk whose expiry is before now, in batches.
// Safe to invoke repeatedly; already-deleted rows are simply absent.
func (m *Manager) SweepExpired(ctx context.Context, now time.Time) error {
	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := m.store.DeleteExpiredRisks(now, sweepBatchSize)
		if err != nil {
			return fmt.Errorf("deleting expired risks: %w", err)
		}
		total += n
		if n < sweepBatchSize {
			break
		}
	}
	if total > 0 {
		telemetry.RisksExpired.Add(float64(total))
		slog.Info("expired risks removed", "count", total)
	}
	return nil
}
