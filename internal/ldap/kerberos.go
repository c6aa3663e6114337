package ldap

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-ldap/ldap/v3"
	"github.com/go-ldap/ldap/v3/gssapi"
	krb5client "github.com/jcmturner/gokrb5/v8/client"
)

// kerberosBind binds the service account over GSSAPI.
func kerberosBind(conn gssapiBinder, cfg *Config, server *ServerInfo) error {
	principal, realm, err := kerberosPrincipal(cfg)
	if err != nil {
		return fmt.Errorf("kerberos configuration error: %w", err)
	}

	client, err := createGSSAPIClient(cfg, principal, realm)
	if err != nil {
		return fmt.Errorf("failed to create GSSAPI client: %w", err)
	}
	defer func() {
		_ = client.DeleteSecContext()
	}()

	spn, err := buildServicePrincipal(cfg, server)
	if err != nil {
		return fmt.Errorf("failed to build service principal: %w", err)
	}

	if err := conn.GSSAPIBind(client, spn, ""); err != nil {
		return fmt.Errorf("GSSAPI bind failed: %w", err)
	}

	return nil
}

// createGSSAPIClient builds a GSSAPI client from a keytab when one is
// configured, otherwise from the service account password.
func createGSSAPIClient(cfg *Config, principal, realm string) (ldap.GSSAPIClient, error) {
	if !fileExists(cfg.KerberosConfig) {
		return nil, fmt.Errorf("Kerberos configuration file not found at %s. "+
			"Either create it or set 'kerberos_config'. Example minimal configuration:\n%s",
			cfg.KerberosConfig, generateExampleKrb5Conf(realm))
	}

	if cfg.KerberosKeytab != "" {
		if !fileExists(cfg.KerberosKeytab) {
			return nil, fmt.Errorf("keytab not found at %s", cfg.KerberosKeytab)
		}
		return gssapi.NewClientWithKeytab(principal, realm, cfg.KerberosKeytab, cfg.KerberosConfig, krb5client.DisablePAFXFAST(true))
	}

	if cfg.Password != "" {
		return gssapi.NewClientWithPassword(principal, realm, cfg.Password, cfg.KerberosConfig, krb5client.DisablePAFXFAST(true))
	}

	return nil, fmt.Errorf("no suitable credentials found for Kerberos authentication: set kerberos_keytab or password")
}

// kerberosPrincipal splits the service account into principal and realm.
// A realm embedded in the username ("svc@EXAMPLE.COM") wins over the
// configured one.
func kerberosPrincipal(cfg *Config) (string, string, error) {
	principal := cfg.Username
	realm := cfg.KerberosRealm

	if user, r, ok := strings.Cut(principal, "@"); ok {
		principal = user
		realm = r
	}

	if principal == "" {
		return "", "", fmt.Errorf("username (principal) is required for Kerberos authentication")
	}
	if realm == "" {
		return "", "", fmt.Errorf("kerberos realm is required (set kerberos_realm or include realm in username)")
	}

	return principal, strings.ToUpper(realm), nil
}

// buildServicePrincipal constructs the LDAP service principal name for a
// server. An explicit SPN overrides it.
func buildServicePrincipal(cfg *Config, server *ServerInfo) (string, error) {
	if cfg.KerberosSPN != "" {
		return cfg.KerberosSPN, nil
	}

	if server == nil || server.Host == "" {
		return "", fmt.Errorf("hostname is required for service principal")
	}

	return "ldap/" + server.Host, nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func generateExampleKrb5Conf(realm string) string {
	if realm == "" {
		realm = "EXAMPLE.COM"
	}
	domain := strings.ToLower(realm)

	return fmt.Sprintf(`[libdefaults]
    default_realm = %[1]s
    dns_lookup_realm = false
    dns_lookup_kdc = true

[domain_realm]
    .%[2]s = %[1]s
    %[2]s = %[1]s`, realm, domain)
}
