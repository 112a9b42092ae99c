package storage

import "github.com/osvik/riskwatch/internal/core/domain"

// Converters between GORM models and domain types. Kept separate from the
// adapter so the mapping is auditable in one place.

func riskToModel(r domain.SecurityRisk) RiskModel {
	return RiskModel{
		ID:           r.ID,
		IPAddress:    r.IPAddress,
		TypeID:       r.TypeID,
		Time:         r.Time,
		Expires:      r.Expires,
		Status:       string(r.Status),
		ProjectID:    r.ProjectID,
		ResourceID:   r.ResourceID,
		ResourceType: r.ResourceType,
		FirstSeen:    r.FirstSeen,
		LastSeen:     r.LastSeen,
	}
}

func riskToDomain(m RiskModel) *domain.SecurityRisk {
	return &domain.SecurityRisk{
		ID:           m.ID,
		IPAddress:    m.IPAddress,
		TypeID:       m.TypeID,
		Time:         m.Time,
		Expires:      m.Expires,
		Status:       domain.RiskStatus(m.Status),
		ProjectID:    m.ProjectID,
		ResourceID:   m.ResourceID,
		ResourceType: m.ResourceType,
		FirstSeen:    m.FirstSeen,
		LastSeen:     m.LastSeen,
	}
}

func usageToModel(u domain.IPUsage) IPUsageModel {
	return IPUsageModel{
		ID:           u.ID,
		IP:           u.IP,
		PortID:       u.PortID,
		ProjectID:    u.ProjectID,
		ResourceID:   u.ResourceID,
		ResourceType: u.ResourceType,
	}
}

func usageToDomain(m IPUsageModel) *domain.IPUsage {
	return &domain.IPUsage{
		ID:           m.ID,
		IP:           m.IP,
		PortID:       m.PortID,
		ProjectID:    m.ProjectID,
		ResourceID:   m.ResourceID,
		ResourceType: m.ResourceType,
	}
}

func typeToModel(t domain.SecurityRiskType) RiskTypeModel {
	return RiskTypeModel{
		ID:          t.ID,
		Name:        t.Name,
		DisplayName: t.DisplayName,
		Description: t.Description,
		HelpURL:     t.HelpURL,
	}
}

func typeToDomain(m RiskTypeModel) *domain.SecurityRiskType {
	return &domain.SecurityRiskType{
		ID:          m.ID,
		Name:        m.Name,
		DisplayName: m.DisplayName,
		Description: m.Description,
		HelpURL:     m.HelpURL,
	}
}
