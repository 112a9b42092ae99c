package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsValidIP(t *testing.T) {
	assert.True(t, IsValidIP("203.0.113.10"))
	assert.True(t, IsValidIP("2001:db8::1"))
	assert.False(t, IsValidIP("not-an-ip"))
	assert.False(t, IsValidIP("203.0.113"))
	assert.False(t, IsValidIP(""))
}

func TestIsPrivateIP(t *testing.T) {
	private := []string{
		"10.0.0.5",
		"10.255.255.255",
		"172.16.0.1",
		"172.31.200.13",
		"192.168.1.50",
	}
	for _, ip := range private {
		assert.True(t, IsPrivateIP(ip), ip)
	}

	public := []string{
		"203.0.113.10",
		"11.0.0.1",
		"172.32.0.1",
		"192.169.0.1",
		"8.8.8.8",
	}
	for _, ip := range public {
		assert.False(t, IsPrivateIP(ip), ip)
	}
}

func TestResourceTypeForOwner(t *testing.T) {
	rt, ok := ResourceTypeForOwner("compute:nova")
	assert.True(t, ok)
	assert.Equal(t, ResourceTypeInstance, rt)

	rt, ok = ResourceTypeForOwner("compute:az-2")
	assert.True(t, ok)
	assert.Equal(t, ResourceTypeInstance, rt)

	for _, owner := range []string{"network:dhcp", "network:router_interface", "octavia", ""} {
		_, ok := ResourceTypeForOwner(owner)
		assert.False(t, ok, owner)
	}
}

func TestSecurityRisk_Attributed(t *testing.T) {
	r := SecurityRisk{}
	assert.False(t, r.Attributed())

	r.ProjectID = "proj-1"
	assert.False(t, r.Attributed())

	r.ResourceID = "vm-1"
	assert.True(t, r.Attributed())
}

func TestSecurityRisk_Expired(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	r := SecurityRisk{Expires: now.Add(time.Minute)}
	assert.False(t, r.Expired(now))

	r.Expires = now.Add(-time.Minute)
	assert.True(t, r.Expired(now))

	// Boundary: expiring exactly now is not yet expired
	r.Expires = now
	assert.False(t, r.Expired(now))
}
