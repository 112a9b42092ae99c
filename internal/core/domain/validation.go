package domain

import (
	"net"
	"regexp"
)

// Validation Helpers

var rfc1918Regex = regexp.MustCompile(
	`^(10(\.(25[0-5]|2[0-4][0-9]|1[0-9]{1,2}|[0-9]{1,2})){3}|` +
		`((172\.(1[6-9]|2[0-9]|3[01]))|` +
		`192\.168)(\.(25[0-5]|2[0-4][0-9]|1[0-9]{1,2}|[0-9]{1,2})){2})$`)

// IsValidIP checks if the string parses as an IPv4 or IPv6 address.
func IsValidIP(ip string) bool {
	return net.ParseIP(ip) != nil
}

// IsPrivateIP reports whether the address falls within the RFC 1918
// private ranges. Note that a private address does not rule out
// attribution: tenant fixed IPs are private while their network can
// still be router-external.
func IsPrivateIP(ip string) bool {
	return rfc1918Regex.MatchString(ip)
}
