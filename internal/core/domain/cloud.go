package domain

import (
	"strings"
	"time"
)

// Port is a point-in-time control-plane snapshot of a network attachment
// point. Ownership of an IP at a given time is expressed through the
// port's device association.
type Port struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	DeviceID    string    `json:"device_id"`
	DeviceOwner string    `json:"device_owner"`
	CreatedAt   time.Time `json:"created_at"`
	NetworkID   string    `json:"network_id"`
}

// Network is a control-plane snapshot of the network a port lives on.
// Only externally routable networks can be the origin of externally
// observed traffic.
type Network struct {
	ID             string `json:"id"`
	RouterExternal bool   `json:"router_external"`
}

// ResourceTypeInstance is the resource type recorded for ports attached
// by a compute workload.
const ResourceTypeInstance = "instance"

// computeOwnerPrefix matches device owners like "compute:nova" or
// "compute:az-2".
const computeOwnerPrefix = "compute:"

// ResourceTypeForOwner maps a port's device-owner classification to the
// resource type we attribute risks to. Owners we do not understand
// (load balancers, DHCP agents, routers) return ok=false and the port is
// not a usable attribution source.
func ResourceTypeForOwner(deviceOwner string) (string, bool) {
	if strings.HasPrefix(deviceOwner, computeOwnerPrefix) {
		return ResourceTypeInstance, true
	}
	return "", false
}
