package domain

// RiskFilter defines criteria for querying security risks.
// Zero values mean "any".
type RiskFilter struct {
	ResourceID string     `json:"resource_id"`
	ProjectID  string     `json:"project_id"`
	TypeID     string     `json:"type_id"`
	Status     RiskStatus `json:"status"`
}

// PortFilter narrows a control-plane port listing.
type PortFilter struct {
	IP string `json:"ip,omitempty"`
}
