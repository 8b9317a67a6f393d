package discovery

import (
	"errors"
	"net"
	"strconv"
	"time"
)

// Service constants.
const (
	// ServiceType is the DNS-SD service type of a bridge host.
	ServiceType = "_readersbridge._tcp"

	// Domain is the mDNS domain.
	Domain = "local."

	// DefaultPort matches the bridge's default listening port.
	DefaultPort = 7420

	// BrowseTimeout is the default timeout for FindFirst.
	BrowseTimeout = 10 * time.Second

	// MaxInstanceNameLen is the DNS label limit for instance names.
	MaxInstanceNameLen = 63
)

// TXT record keys.
const (
	TXTKeyVersion = "v"
	TXTKeyName    = "name"
	TXTKeyAuth    = "auth"
	TXTKeySDK     = "sdk"
)

// Discovery errors.
var (
	ErrNotFound            = errors.New("bridge not found")
	ErrMissingRequired     = errors.New("missing required TXT record")
	ErrInvalidVersion      = errors.New("invalid protocol version")
	ErrInstanceNameTooLong = errors.New("instance name too long")
	ErrNotAdvertising      = errors.New("not advertising")
)

// BridgeInfo is what a host advertises.
type BridgeInfo struct {
	// Name is the bridge display name and mDNS instance name.
	Name string

	// Port is the bridge TCP port (default 7420).
	Port uint16

	// Version is the bridge protocol version.
	Version uint8

	// AuthRequired is true when the host has a pairing secret.
	AuthRequired bool

	// SDK labels the SDK behind the bridge.
	SDK string
}

// BridgeService is a discovered bridge host.
type BridgeService struct {
	InstanceName string
	Host         string
	Port         uint16
	Addresses    []string

	Name         string
	Version      uint8
	AuthRequired bool
	SDK          string
}

// Address returns a dialable host:port, preferring IPv4 addresses and
// falling back to the advertised host name.
func (s *BridgeService) Address() string {
	port := strconv.Itoa(int(s.Port))
	for _, a := range s.Addresses {
		if ip := net.ParseIP(a); ip != nil && ip.To4() != nil {
			return net.JoinHostPort(a, port)
		}
	}
	if len(s.Addresses) > 0 {
		return net.JoinHostPort(s.Addresses[0], port)
	}
	return net.JoinHostPort(s.Host, port)
}

// FilterFunc selects discovered bridges.
type FilterFunc func(*BridgeService) bool

// FilterByName matches bridges with the given display name.
func FilterByName(name string) FilterFunc {
	return func(s *BridgeService) bool {
		return s.Name == name
	}
}

// FilterByVersion matches bridges speaking the given protocol version.
func FilterByVersion(version uint8) FilterFunc {
	return func(s *BridgeService) bool {
		return s.Version == version
	}
}
