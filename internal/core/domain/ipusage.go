package domain

// IPUsage is a remembered binding between an IP address, the network port
// it appeared on, and the resource that owned that port.
//
// Rows are a cache of control-plane truth, created the first time a
// qualifying port is resolved for an IP. They are never mutated and never
// deleted by the correlator; at most one live binding exists per port.
type IPUsage struct {
	ID           string `json:"id"`
	IP           string `json:"ip"`
	PortID       string `json:"port_id"`
	ProjectID    string `json:"project_id"`
	ResourceID   string `json:"resource_id"`
	ResourceType string `json:"resource_type"`
}
