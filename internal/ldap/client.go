package ldap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/hashicorp/terraform-plugin-log/tflog"
)

// DirectoryClient verifies credentials and looks up users and computers
// across an ordered list of forests. It holds only immutable configuration
// and is safe for concurrent use; each operation dials its own connections.
type DirectoryClient struct {
	config     *Config
	dialer     Dialer
	normalizer *Normalizer
}

// NewDirectoryClient validates cfg and returns a client that dials real
// directory servers.
func NewDirectoryClient(ctx context.Context, cfg *Config) (*DirectoryClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}

	dialer, err := newDialer(cfg)
	if err != nil {
		return nil, err
	}

	return NewDirectoryClientWithDialer(ctx, cfg, dialer)
}

// NewDirectoryClientWithDialer is NewDirectoryClient with a caller-supplied
// dialer.
func NewDirectoryClientWithDialer(ctx context.Context, cfg *Config, dialer Dialer) (*DirectoryClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if dialer == nil {
		return nil, fmt.Errorf("dialer cannot be nil")
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	tflog.SubsystemDebug(ctx, SubsystemName, "Directory client created", map[string]any{
		"forest_count":  len(cfg.Forests),
		"primary":       cfg.PrimaryForest().String(),
		"kerberos":      cfg.UsesKerberos(),
		"start_tls":     cfg.StartTLS,
		"timeout":       cfg.Timeout.String(),
		"mail_rewrite":  cfg.MailDomain != "",
		"user_suffixed": cfg.UserDomain != "",
	})

	return &DirectoryClient{
		config:     cfg,
		dialer:     dialer,
		normalizer: NewNormalizer(cfg.MailDomain),
	}, nil
}

// Config returns the client's configuration. Callers must not modify it.
func (c *DirectoryClient) Config() *Config {
	return c.config
}

// Connect dials forest and simple-binds as username. The caller owns the
// returned connection.
func (c *DirectoryClient) Connect(ctx context.Context, forest Forest, username, password string) (Conn, error) {
	bindName := c.config.BindName(username)

	conn, err := c.dial(ctx, forest)
	if err != nil {
		return nil, err
	}

	LogConnectionEvent(ctx, "authentication_attempt", map[string]any{
		"forest":    forest.String(),
		"bind_name": bindName,
	})

	if err := conn.Bind(bindName, password); err != nil {
		_ = conn.Close()
		LogLDAPError(ctx, "bind", err, map[string]any{"forest": forest.String(), "bind_name": bindName})
		return nil, setupError("bind", forest, err)
	}

	LogConnectionEvent(ctx, "authentication_success", map[string]any{
		"forest":    forest.String(),
		"bind_name": bindName,
	})

	return conn, nil
}

// Verify reports whether username and password bind successfully against
// the primary forest. Rejected credentials return (false, nil); an error
// means the answer is unknown.
func (c *DirectoryClient) Verify(ctx context.Context, username, password string) (bool, error) {
	var valid bool

	err := LogOperation(ctx, "verify", map[string]any{
		"username": username,
		"forest":   c.config.PrimaryForest().String(),
	}, func() error {
		// An empty password is an unauthenticated bind, which servers accept.
		if username == "" || password == "" {
			tflog.SubsystemDebug(ctx, SubsystemName, "Refusing verification with empty credentials")
			return nil
		}

		conn, err := c.Connect(ctx, c.config.PrimaryForest(), username, password)
		if err != nil {
			if hasResultCode(err, ldap.LDAPResultInvalidCredentials) {
				return nil
			}
			return err
		}
		_ = conn.Close()

		valid = true
		return nil
	})

	return valid, err
}

// Lookup finds exactly one user or computer whose search field starts with
// value, trying each forest in order. It fails with a not-found error only
// after every forest has been searched. Several matches in one forest, or a
// forest that cannot be reached, stop the scan with an error.
func (c *DirectoryClient) Lookup(ctx context.Context, value string, recordType RecordType) (*Record, error) {
	var record *Record

	err := LogOperation(ctx, "lookup", map[string]any{
		"value":       value,
		"record_type": recordType.String(),
	}, func() error {
		if strings.TrimSpace(value) == "" {
			return &LDAPError{
				Operation: "lookup",
				Category:  ErrorCategoryValidation,
				Message:   "lookup value cannot be empty",
			}
		}

		filter := fmt.Sprintf("(%s=%s*)", c.config.searchField(recordType), ldap.EscapeFilter(value))

		for _, forest := range c.config.Forests {
			entries, err := c.search(ctx, forest, filter, c.config.attributes(recordType))
			if err != nil {
				return err
			}

			switch len(entries) {
			case 0:
				tflog.SubsystemDebug(ctx, SubsystemName, "No match in forest, trying next", map[string]any{
					"forest": forest.String(),
				})
				continue
			case 1:
				record = c.Normalize(entries[0], forest)
				return nil
			default:
				dns := make([]string, len(entries))
				for i, entry := range entries {
					dns[i] = entry.DN
				}
				return newAmbiguousError(recordType, value, forest, dns)
			}
		}

		return newNotFoundError(recordType, value, len(c.config.Forests))
	})

	return record, err
}

// Normalize converts a raw entry from forest into a record.
func (c *DirectoryClient) Normalize(entry *ldap.Entry, forest Forest) *Record {
	return c.normalizer.Normalize(entry, forest)
}

// search runs one subtree search as the service account.
func (c *DirectoryClient) search(ctx context.Context, forest Forest, filter string, attributes []string) ([]*ldap.Entry, error) {
	conn, err := c.serviceConn(ctx, forest)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	req := ldap.NewSearchRequest(
		forest.BaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0,
		int(c.config.Timeout/time.Second),
		false,
		filter,
		attributes,
		nil,
	)

	tflog.SubsystemDebug(ctx, SubsystemName, "Searching forest", map[string]any{
		"forest":     forest.String(),
		"filter":     filter,
		"attributes": len(attributes),
	})

	start := time.Now()
	result, err := conn.Search(req)
	if err != nil {
		LogLDAPError(ctx, "search", err, map[string]any{"forest": forest.String(), "filter": filter})
		searchErr := NewLDAPError("search", err)
		searchErr.Forest = forest.String()
		// A missing base DN is a configuration problem, not an absent object.
		if searchErr.Category == ErrorCategoryNotFound {
			searchErr.Category = ErrorCategoryValidation
		}
		return nil, searchErr
	}

	if len(result.Referrals) > 0 {
		tflog.SubsystemDebug(ctx, SubsystemName, "Ignoring referrals", map[string]any{
			"forest":    forest.String(),
			"referrals": result.Referrals,
		})
	}

	tflog.SubsystemDebug(ctx, SubsystemName, "Search completed", map[string]any{
		"forest":      forest.String(),
		"entries":     len(result.Entries),
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return result.Entries, nil
}

// serviceConn dials forest and binds as the service account, using GSSAPI
// when a Kerberos realm is configured.
func (c *DirectoryClient) serviceConn(ctx context.Context, forest Forest) (Conn, error) {
	if !c.config.UsesKerberos() {
		return c.Connect(ctx, forest, c.config.Username, c.config.Password)
	}

	conn, err := c.dial(ctx, forest)
	if err != nil {
		return nil, err
	}

	binder, ok := conn.(gssapiBinder)
	if !ok {
		_ = conn.Close()
		bindErr := setupError("bind", forest, fmt.Errorf("connection does not support GSSAPI"))
		bindErr.Category = ErrorCategoryAuthentication
		return nil, bindErr
	}

	server, err := ParseLDAPURL(forest.Host)
	if err != nil {
		_ = conn.Close()
		return nil, setupError("bind", forest, err)
	}

	if err := kerberosBind(binder, c.config, server); err != nil {
		_ = conn.Close()
		LogConnectionEvent(ctx, "authentication_failed", map[string]any{
			"forest": forest.String(),
			"method": "kerberos",
			"error":  err.Error(),
		})
		bindErr := setupError("bind", forest, err)
		bindErr.Category = ErrorCategoryAuthentication
		return nil, bindErr
	}

	LogConnectionEvent(ctx, "authentication_success", map[string]any{
		"forest": forest.String(),
		"method": "kerberos",
	})

	return conn, nil
}

func (c *DirectoryClient) dial(ctx context.Context, forest Forest) (Conn, error) {
	LogConnectionEvent(ctx, "connection_attempt", map[string]any{"forest": forest.String()})

	conn, err := c.dialer.Dial(ctx, forest)
	if err != nil {
		LogConnectionEvent(ctx, "connection_failed", map[string]any{
			"forest": forest.String(),
			"error":  err.Error(),
		})
		return nil, setupError("connect", forest, err)
	}

	LogConnectionEvent(ctx, "connection_established", map[string]any{"forest": forest.String()})
	return conn, nil
}
