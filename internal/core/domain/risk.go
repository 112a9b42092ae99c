package domain

import "time"

// RiskStatus is the processing state of a security risk.
type RiskStatus string

const (
	// RiskStatusNew marks a risk that has been reported but not yet
	// attributed to a resource.
	RiskStatusNew RiskStatus = "NEW"
	// RiskStatusProcessed marks a risk the correlator has handled,
	// whether or not attribution succeeded.
	RiskStatusProcessed RiskStatus = "PROCESSED"
)

// SecurityRisk is a reported security finding tied to an IP address.
//
// A risk enters the system with status NEW and unset attribution fields.
// The correlator transitions it to PROCESSED exactly once, filling in
// ProjectID/ResourceID/ResourceType when the IP could be attributed to a
// cloud resource. Risks may also disappear before expiry when they are
// absorbed into an older duplicate for the same resource and type.
type SecurityRisk struct {
	ID        string    `json:"id"`
	IPAddress string    `json:"ipaddress"`
	TypeID    string    `json:"type_id"`
	Time      time.Time `json:"time"`    // when the risky activity was observed
	Expires   time.Time `json:"expires"` // relevance window ceiling

	Status RiskStatus `json:"status"`

	// Attribution, set only after a successful resolution.
	ProjectID    string `json:"project_id,omitempty"`
	ResourceID   string `json:"resource_id,omitempty"`
	ResourceType string `json:"resource_type,omitempty"`

	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

// Attributed reports whether the risk was successfully tied to a resource.
func (r *SecurityRisk) Attributed() bool {
	return r.ProjectID != "" && r.ResourceID != ""
}

// Expired reports whether the risk's relevance window has passed.
func (r *SecurityRisk) Expired(now time.Time) bool {
	return r.Expires.Before(now)
}

// SecurityRiskType is a catalog entry describing a class of risk
// (e.g. "ssh-bruteforce"). The catalog is managed out of band; the
// correlator only reads it.
type SecurityRiskType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
	Description string `json:"description,omitempty"`
	HelpURL     string `json:"help_url,omitempty"`
}
