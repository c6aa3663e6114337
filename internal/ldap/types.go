package ldap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-ldap/ldap/v3"
)

// Config holds everything the directory client needs. It is built by the
// caller (the provider resolves it from HCL and environment variables) and
// never mutated after NewDirectoryClient.
type Config struct {
	// Directory locations, tried in order. Forests[0] is the primary forest
	// used for credential verification.
	Forests []Forest

	// Service account used for lookups
	Username string
	Password string

	// UserDomain is appended to bare usernames before binding ("jdoe" -> "jdoe@example.com").
	UserDomain string

	// MailDomain replaces the domain part of the mail attribute. Empty leaves mail untouched.
	MailDomain string

	// Search settings
	UserSearchField     string   `default:"sAMAccountName"`
	ComputerSearchField string   `default:"name"`
	UserAttributes      []string // Defaults to DefaultUserAttributes
	ComputerAttributes  []string // Defaults to DefaultComputerAttributes

	// Connection settings
	Timeout       time.Duration `default:"30s"`
	StartTLS      bool          // Upgrade plain ldap:// connections with StartTLS
	SkipTLSVerify bool          // Skip certificate verification (not recommended)
	TLSCACertFile string        // PEM bundle used to verify the server certificate

	// Kerberos settings for the service account
	KerberosRealm  string
	KerberosKeytab string
	KerberosConfig string `default:"/etc/krb5.conf"`
	KerberosSPN    string
}

// Forest is one configured directory location: a server and the base DN
// searched on it.
type Forest struct {
	Host   string // Host name, host:port, or ldap:// / ldaps:// URL
	BaseDN string
}

func (f Forest) String() string {
	return f.Host + " (" + f.BaseDN + ")"
}

// DefaultUserAttributes are retrieved for user lookups.
var DefaultUserAttributes = []string{
	"sAMAccountName", "userPrincipalName", "thumbnailPhoto",
	"givenName", "surname", "memberOf", "sn", "title",
	"streetAddress", "st", "l", "physicalDeliveryOfficeName",
	"department", "telephoneNumber", "mobile", "postalCode",
	"canonicalName", "mail",
	"userAccountControl", "badPwdCount", "badPasswordTime", "accountExpires", "lockoutTime",
	"objectSid", "objectGUID",
}

// DefaultComputerAttributes are retrieved for computer lookups.
var DefaultComputerAttributes = []string{
	"cn", "createTimestamp", "distinguishedName", "lastLogonTimestamp",
	"modifyTimestamp", "operatingSystem", "whenChanged", "canonicalName",
	"objectSid", "objectGUID",
}

// DefaultConfig returns a configuration with every tunable at its default.
// Forests and credentials still have to be filled in by the caller.
func DefaultConfig() *Config {
	cfg := &Config{}
	_ = cfg.applyDefaults()
	return cfg
}

// applyDefaults fills zero-valued fields from struct tags and the default
// attribute lists.
func (c *Config) applyDefaults() error {
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("failed to apply configuration defaults: %w", err)
	}

	if len(c.UserAttributes) == 0 {
		c.UserAttributes = append([]string(nil), DefaultUserAttributes...)
	}
	if len(c.ComputerAttributes) == 0 {
		c.ComputerAttributes = append([]string(nil), DefaultComputerAttributes...)
	}

	return nil
}

// Validate checks that the configuration can drive a lookup.
func (c *Config) Validate() error {
	if len(c.Forests) == 0 {
		return fmt.Errorf("at least one forest must be configured")
	}

	for i, forest := range c.Forests {
		if strings.TrimSpace(forest.Host) == "" {
			return fmt.Errorf("forest %d: host cannot be empty", i)
		}
		if _, err := ParseLDAPURL(forest.Host); err != nil {
			return fmt.Errorf("forest %d: %w", i, err)
		}
		if err := ValidateBaseDN(forest.BaseDN); err != nil {
			return fmt.Errorf("forest %d: invalid base DN %q: %w", i, forest.BaseDN, err)
		}
	}

	if !c.HasServiceAccount() {
		return fmt.Errorf("a service account is required: set username and password, or a Kerberos realm")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}

	return nil
}

// ValidateBaseDN checks that baseDN parses as a Distinguished Name and names
// a domain, i.e. carries at least one DC component.
func ValidateBaseDN(baseDN string) error {
	if strings.TrimSpace(baseDN) == "" {
		return fmt.Errorf("DN cannot be empty")
	}

	dn, err := ldap.ParseDN(baseDN)
	if err != nil {
		return fmt.Errorf("malformed DN: %w", err)
	}

	for _, rdn := range dn.RDNs {
		for _, attr := range rdn.Attributes {
			if strings.EqualFold(attr.Type, "DC") {
				return nil
			}
		}
	}

	return fmt.Errorf("no DC component (e.g. DC=corp,DC=example,DC=com)")
}

// HasServiceAccount reports whether lookups can bind.
func (c *Config) HasServiceAccount() bool {
	return (c.Username != "" && c.Password != "") || c.UsesKerberos()
}

// UsesKerberos reports whether the service account binds with GSSAPI.
func (c *Config) UsesKerberos() bool {
	return c.KerberosRealm != "" && c.Username != ""
}

// PrimaryForest returns the forest used for credential verification.
func (c *Config) PrimaryForest() Forest {
	return c.Forests[0]
}

// BindName qualifies a bare username with the configured user domain.
// UPN (user@domain), down-level (DOMAIN\user) and DN forms are returned unchanged.
func (c *Config) BindName(username string) string {
	if c.UserDomain == "" || strings.ContainsAny(username, `@\=`) {
		return username
	}
	return username + "@" + strings.TrimPrefix(c.UserDomain, "@")
}

// RecordType selects which kind of directory object a lookup targets.
type RecordType int

const (
	RecordTypeUser RecordType = iota
	RecordTypeComputer
)

// String returns the canonical name of the record type.
func (t RecordType) String() string {
	switch t {
	case RecordTypeUser:
		return "user"
	case RecordTypeComputer:
		return "computer"
	default:
		return "unknown"
	}
}

// ParseRecordType accepts "user", "computer" and "cn" (an alias for computer),
// ignoring case.
func ParseRecordType(s string) (RecordType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user":
		return RecordTypeUser, nil
	case "computer", "cn":
		return RecordTypeComputer, nil
	default:
		return 0, fmt.Errorf("unsupported record type %q: must be user or computer", s)
	}
}

// searchField returns the attribute matched against the lookup value.
func (c *Config) searchField(t RecordType) string {
	if t == RecordTypeComputer {
		return c.ComputerSearchField
	}
	return c.UserSearchField
}

// attributes returns the attribute list retrieved for a record type.
func (c *Config) attributes(t RecordType) []string {
	if t == RecordTypeComputer {
		return c.ComputerAttributes
	}
	return c.UserAttributes
}

// Conn is the subset of *ldap.Conn the client uses. It exists so tests can
// substitute a fake directory.
type Conn interface {
	Bind(username, password string) error
	Search(req *ldap.SearchRequest) (*ldap.SearchResult, error)
	Close() error
}

// gssapiBinder is implemented by connections that support Kerberos binds.
type gssapiBinder interface {
	GSSAPIBind(client ldap.GSSAPIClient, servicePrincipal, authzid string) error
}

// Dialer opens connections to forests.
type Dialer interface {
	Dial(ctx context.Context, forest Forest) (Conn, error)
}

// ServerInfo contains information about an LDAP server.
type ServerInfo struct {
	Host   string
	Port   int
	UseTLS bool
}
