package storage

import (
	"errors"
	"time"

	"github.com/osvik/riskwatch/internal/core/domain"
	"github.com/osvik/riskwatch/internal/core/ports"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// SQLiteAdapter implements ports.Storage using GORM and SQLite.
type SQLiteAdapter struct {
	db *gorm.DB
}

// RiskModel is the GORM model for security risks.
type RiskModel struct {
	ID           string `gorm:"primaryKey"`
	IPAddress    string `gorm:"index"`
	TypeID       string `gorm:"index"`
	Time         time.Time
	Expires      time.Time `gorm:"index"`
	Status       string
	ProjectID    string
	ResourceID   string `gorm:"index"`
	ResourceType string
	FirstSeen    time.Time
	LastSeen     time.Time
}

// IPUsageModel is the GORM model for resolved IP/port bindings.
type IPUsageModel struct {
	ID           string `gorm:"primaryKey"`
	IP           string `gorm:"index"`
	PortID       string `gorm:"uniqueIndex"`
	ProjectID    string
	ResourceID   string
	ResourceType string
}

// RiskTypeModel is the GORM model for the risk-type catalog.
type RiskTypeModel struct {
	ID          string `gorm:"primaryKey"`
	Name        string `gorm:"uniqueIndex"`
	DisplayName string
	Description string
	HelpURL     string
}

// NewSQLiteAdapter initializes the database and migrates schema.
func NewSQLiteAdapter(path string) (*SQLiteAdapter, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	// Trace DB calls alongside the rest of the service
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	db.Exec("PRAGMA journal_mode=WAL")

	if err := db.AutoMigrate(&RiskModel{}, &IPUsageModel{}, &RiskTypeModel{}); err != nil {
		return nil, err
	}

	// Covering index for the dedup lookup
	db.Exec("CREATE INDEX IF NOT EXISTS idx_risks_dedup ON risk_models(resource_id, project_id, type_id, status)")

	return &SQLiteAdapter{db: db}, nil
}

// GetRisk retrieves a security risk by id.
func (a *SQLiteAdapter) GetRisk(id string) (*domain.SecurityRisk, error) {
	var model RiskModel
	if err := a.db.First(&model, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return riskToDomain(model), nil
}

// CreateRisk persists a new security risk.
func (a *SQLiteAdapter) CreateRisk(risk *domain.SecurityRisk) error {
	model := riskToModel(*risk)
	return a.db.Create(&model).Error
}

// SaveRisk updates an existing security risk.
func (a *SQLiteAdapter) SaveRisk(risk *domain.SecurityRisk) error {
	model := riskToModel(*risk)
	return a.db.Save(&model).Error
}

// DeleteRisk removes a security risk by id.
func (a *SQLiteAdapter) DeleteRisk(id string) error {
	return a.db.Delete(&RiskModel{}, "id = ?", id).Error
}

// FindRisks retrieves risks matching the filter criteria.
func (a *SQLiteAdapter) FindRisks(filter domain.RiskFilter) ([]domain.SecurityRisk, error) {
	query := a.db.Model(&RiskModel{})

	// Apply filters dynamically
	if filter.ResourceID != "" {
		query = query.Where("resource_id = ?", filter.ResourceID)
	}
	if filter.ProjectID != "" {
		query = query.Where("project_id = ?", filter.ProjectID)
	}
	if filter.TypeID != "" {
		query = query.Where("type_id = ?", filter.TypeID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}

	var models []RiskModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	risks := make([]domain.SecurityRisk, len(models))
	for i, m := range models {
		risks[i] = *riskToDomain(m)
	}
	return risks, nil
}

// DeleteExpiredRisks removes up to limit risks expiring before now and
// returns the number removed. SQLite has no DELETE ... LIMIT, so expired
// ids are collected first and deleted in one statement.
func (a *SQLiteAdapter) DeleteExpiredRisks(now time.Time, limit int) (int64, error) {
	var ids []string
	err := a.db.Model(&RiskModel{}).
		Where("expires < ?", now).
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	res := a.db.Delete(&RiskModel{}, "id IN ?", ids)
	return res.RowsAffected, res.Error
}

// GetIPUsageByPort retrieves the binding cached for a port, if any.
func (a *SQLiteAdapter) GetIPUsageByPort(portID string) (*domain.IPUsage, error) {
	var model IPUsageModel
	if err := a.db.First(&model, "port_id = ?", portID).Error; err != nil {
		return nil, mapErr(err)
	}
	return usageToDomain(model), nil
}

// CreateIPUsage persists a new IP usage binding.
func (a *SQLiteAdapter) CreateIPUsage(usage *domain.IPUsage) error {
	model := usageToModel(*usage)
	return a.db.Create(&model).Error
}

// ListIPUsages retrieves all bindings recorded for an IP.
func (a *SQLiteAdapter) ListIPUsages(ip string) ([]domain.IPUsage, error) {
	var models []IPUsageModel
	if err := a.db.Find(&models, "ip = ?", ip).Error; err != nil {
		return nil, err
	}

	usages := make([]domain.IPUsage, len(models))
	for i, m := range models {
		usages[i] = *usageToDomain(m)
	}
	return usages, nil
}

// GetRiskType retrieves a catalog entry by id.
func (a *SQLiteAdapter) GetRiskType(id string) (*domain.SecurityRiskType, error) {
	var model RiskTypeModel
	if err := a.db.First(&model, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return typeToDomain(model), nil
}

// GetRiskTypeByName retrieves a catalog entry by its unique name.
func (a *SQLiteAdapter) GetRiskTypeByName(name string) (*domain.SecurityRiskType, error) {
	var model RiskTypeModel
	if err := a.db.First(&model, "name = ?", name).Error; err != nil {
		return nil, mapErr(err)
	}
	return typeToDomain(model), nil
}

// ListRiskTypes retrieves the full catalog.
func (a *SQLiteAdapter) ListRiskTypes() ([]domain.SecurityRiskType, error) {
	var models []RiskTypeModel
	if err := a.db.Order("name").Find(&models).Error; err != nil {
		return nil, err
	}

	types := make([]domain.SecurityRiskType, len(models))
	for i, m := range models {
		types[i] = *typeToDomain(m)
	}
	return types, nil
}

// SaveRiskType inserts or updates a catalog entry.
func (a *SQLiteAdapter) SaveRiskType(rt *domain.SecurityRiskType) error {
	model := typeToModel(*rt)
	return a.db.Save(&model).Error
}

// CountRisksByType returns the number of risks per catalog type name.
func (a *SQLiteAdapter) CountRisksByType() (map[string]int64, error) {
	var rows []struct {
		Name  string
		Count int64
	}
	err := a.db.Model(&RiskTypeModel{}).
		Select("risk_type_models.name AS name, COUNT(risk_models.id) AS count").
		Joins("LEFT JOIN risk_models ON risk_models.type_id = risk_type_models.id").
		Group("risk_type_models.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Name] = r.Count
	}
	return counts, nil
}

// CountProjectsWithRisks returns how many distinct projects currently
// have at least one attributed risk.
func (a *SQLiteAdapter) CountProjectsWithRisks() (int64, error) {
	var count int64
	err := a.db.Model(&RiskModel{}).
		Where("project_id != ''").
		Distinct("project_id").
		Count(&count).Error
	return count, err
}

// Transaction runs fn against a transactional view of the adapter.
func (a *SQLiteAdapter) Transaction(fn func(ports.Storage) error) error {
	return a.db.Transaction(func(tx *gorm.DB) error {
		return fn(&SQLiteAdapter{db: tx})
	})
}

// Close closes the storage connection.
func (a *SQLiteAdapter) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func mapErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ports.ErrNotFound
	}
	return err
}

// Ensure interface compliance
var _ ports.Storage = (*SQLiteAdapter)(nil)
