package ports

import (
	"errors"
	"time"

	"github.com/osvik/riskwatch/internal/core/domain"
)

// ErrNotFound is returned by point lookups when no record exists.
var ErrNotFound = errors.New("record not found")

// Storage defines the behavior for data persistence.
type Storage interface {
	// GetRisk retrieves a security risk by id.
	GetRisk(id string) (*domain.SecurityRisk, error)
	// CreateRisk persists a new security risk.
	CreateRisk(risk *domain.SecurityRisk) error
	// SaveRisk updates an existing security risk.
	SaveRisk(risk *domain.SecurityRisk) error
	// DeleteRisk removes a security risk by id.
	DeleteRisk(id string) error
	// FindRisks retrieves risks matching the filter criteria.
	FindRisks(filter domain.RiskFilter) ([]domain.SecurityRisk, error)
	// DeleteExpiredRisks removes up to limit risks whose expiry is before
	// now and returns how many were removed.
	DeleteExpiredRisks(now time.Time, limit int) (int64, error)

	// GetIPUsageByPort retrieves the binding cached for a port, if any.
	GetIPUsageByPort(portID string) (*domain.IPUsage, error)
	// CreateIPUsage persists a new IP usage binding.
	CreateIPUsage(usage *domain.IPUsage) error
	// ListIPUsages retrieves all bindings recorded for an IP.
	ListIPUsages(ip string) ([]domain.IPUsage, error)

	// Risk type catalog.
	GetRiskType(id string) (*domain.SecurityRiskType, error)
	GetRiskTypeByName(name string) (*domain.SecurityRiskType, error)
	ListRiskTypes() ([]domain.SecurityRiskType, error)
	SaveRiskType(rt *domain.SecurityRiskType) error

	// Counts consumed by the metrics collector.
	CountRisksByType() (map[string]int64, error)
	CountProjectsWithRisks() (int64, error)

	// Transaction runs fn against a transactional view of the store.
	// All mutations inside fn commit or roll back as one unit.
	Transaction(fn func(Storage) error) error

	// Close closes the storage connection.
	Close() error
}
