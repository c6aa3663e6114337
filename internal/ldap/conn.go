package ldap

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/hashicorp/terraform-plugin-log/tflog"
)

// ldapDialer opens real connections with go-ldap. Every call returns a fresh
// connection; nothing is pooled between operations.
type ldapDialer struct {
	timeout       time.Duration
	startTLS      bool
	skipTLSVerify bool
	rootCAs       *x509.CertPool
}

// newDialer builds the production dialer from the client configuration.
func newDialer(cfg *Config) (*ldapDialer, error) {
	d := &ldapDialer{
		timeout:       cfg.Timeout,
		startTLS:      cfg.StartTLS,
		skipTLSVerify: cfg.SkipTLSVerify,
	}

	if cfg.TLSCACertFile != "" {
		pem, err := os.ReadFile(cfg.TLSCACertFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", cfg.TLSCACertFile)
		}
		d.rootCAs = pool
	}

	return d, nil
}

func (d *ldapDialer) tlsConfig(host string) *tls.Config {
	return &tls.Config{
		ServerName:         host,
		RootCAs:            d.rootCAs,
		InsecureSkipVerify: d.skipTLSVerify, //nolint:gosec // user opt-in
		MinVersion:         tls.VersionTLS12,
	}
}

// Dial connects to a forest, upgrading with StartTLS when configured.
func (d *ldapDialer) Dial(ctx context.Context, forest Forest) (Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	server, err := ParseLDAPURL(forest.Host)
	if err != nil {
		return nil, fmt.Errorf("invalid forest host %q: %w", forest.Host, err)
	}
	url := ServerInfoToURL(server)

	netDialer := &net.Dialer{Timeout: d.timeout}
	if deadline, ok := ctx.Deadline(); ok {
		netDialer.Deadline = deadline
	}

	tflog.SubsystemTrace(ctx, SubsystemName, "Dialing forest", map[string]any{
		"url":       url,
		"start_tls": d.startTLS && !server.UseTLS,
	})

	opts := []ldap.DialOpt{ldap.DialWithDialer(netDialer)}
	if server.UseTLS {
		opts = append(opts, ldap.DialWithTLSConfig(d.tlsConfig(server.Host)))
	}

	conn, err := ldap.DialURL(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}

	if d.startTLS && !server.UseTLS {
		if err := conn.StartTLS(d.tlsConfig(server.Host)); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("StartTLS with %s failed: %w", url, err)
		}
	}

	conn.SetTimeout(d.timeout)

	return conn, nil
}
