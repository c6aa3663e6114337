package ldap

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

const (
	defaultLDAPPort  = 389
	defaultLDAPSPort = 636
)

// ParseLDAPURL parses a forest host into server information. It accepts a
// bare host name, host:port, or an ldap:// or ldaps:// URL. Bare hosts use
// plain LDAP on port 389.
func ParseLDAPURL(raw string) (*ServerInfo, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("URL cannot be empty")
	}

	var useTLS bool
	rest := raw
	switch {
	case strings.HasPrefix(strings.ToLower(raw), "ldaps://"):
		useTLS = true
		rest = raw[len("ldaps://"):]
	case strings.HasPrefix(strings.ToLower(raw), "ldap://"):
		rest = raw[len("ldap://"):]
	case strings.Contains(raw, "://"):
		return nil, fmt.Errorf("unsupported scheme in %q, must be ldap:// or ldaps://", raw)
	}

	// Anything after the authority (DN, attributes, scope) is ignored.
	if i := strings.Index(rest, "/"); i >= 0 {
		rest = rest[:i]
	}

	port := defaultLDAPPort
	if useTLS {
		port = defaultLDAPSPort
	}

	host := rest
	if h, p, err := net.SplitHostPort(rest); err == nil {
		host = h
		port, err = strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid port number: %s", p)
		}
	}

	server := &ServerInfo{
		Host:   host,
		Port:   port,
		UseTLS: useTLS,
	}

	return server, ValidateServerInfo(server)
}

// ValidateServerInfo checks that server information is usable.
func ValidateServerInfo(server *ServerInfo) error {
	if server == nil {
		return fmt.Errorf("server info cannot be nil")
	}

	if server.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}

	if server.Port <= 0 || server.Port > 65535 {
		return fmt.Errorf("invalid port number: %d", server.Port)
	}

	return nil
}

// ServerInfoToURL renders server information as an LDAP URL.
func ServerInfoToURL(server *ServerInfo) string {
	scheme := "ldap"
	if server.UseTLS {
		scheme = "ldaps"
	}

	return fmt.Sprintf("%s://%s", scheme, net.JoinHostPort(server.Host, strconv.Itoa(server.Port)))
}
