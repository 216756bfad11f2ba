package livedata

import (
	"net"
	"os"
	"strings"
)

// ResolveBaseURL picks the API base URL. An explicit BaseURL wins; otherwise
// local hosts get DevBaseURL and everything else ProdBaseURL.
func ResolveBaseURL(cfg *Config) string {
	if base, ok := cfg.GetBaseURL().Get(); ok {
		return base
	}

	host := cfg.Host
	if host == "" {
		host, _ = os.Hostname() //nolint:errcheck // empty host is treated as local
	}
	if IsLocalHost(host) {
		return cfg.GetDevBaseURL()
	}
	return cfg.GetProdBaseURL()
}

// IsLocalHost reports whether host names a development machine: empty,
// localhost, a loopback address, or a .local or .localhost name.
func IsLocalHost(host string) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(strings.Trim(host, "[]"))

	switch {
	case host == "", host == "localhost":
		return true
	case strings.HasSuffix(host, ".local"), strings.HasSuffix(host, ".localhost"):
		return true
	}

	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
