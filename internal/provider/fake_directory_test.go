package provider

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/require"

	ldapclient "github.com/isometry/terraform-provider-adlookup/internal/ldap"
)

var fakeForests = []ldapclient.Forest{
	{Host: "dc1.corp.example.com", BaseDN: "DC=corp,DC=example,DC=com"},
	{Host: "dc1.lab.example.com", BaseDN: "DC=lab,DC=example,DC=com"},
}

// fakeDirectory serves canned entries per base DN and accepts a fixed set of
// credentials.
type fakeDirectory struct {
	mu          sync.Mutex
	unreachable bool
	passwords   map[string]string // bind name -> password
	entries     map[string][]*ldap.Entry
	filters     []string
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		passwords: map[string]string{"svc-lookup@corp.example.com": "svc-secret"},
		entries:   make(map[string][]*ldap.Entry),
	}
}

func (d *fakeDirectory) Dial(ctx context.Context, forest ldapclient.Forest) (ldapclient.Conn, error) {
	if d.unreachable {
		return nil, ldap.NewError(ldap.ErrorNetwork, errors.New("dial tcp: connection refused"))
	}
	return &fakeConn{dir: d, forest: forest}, nil
}

type fakeConn struct {
	dir    *fakeDirectory
	forest ldapclient.Forest
}

func (c *fakeConn) Bind(username, password string) error {
	if want, ok := c.dir.passwords[username]; ok && want == password {
		return nil
	}
	return ldap.NewError(ldap.LDAPResultInvalidCredentials, errors.New("80090308: LdapErr: DSID-0C09044E, data 52e"))
}

func (c *fakeConn) Search(req *ldap.SearchRequest) (*ldap.SearchResult, error) {
	c.dir.mu.Lock()
	c.dir.filters = append(c.dir.filters, req.Filter)
	c.dir.mu.Unlock()

	return &ldap.SearchResult{Entries: c.dir.entries[req.BaseDN]}, nil
}

func (c *fakeConn) Close() error { return nil }

// newFakeClient returns a client over dir using the fake forests.
func newFakeClient(t *testing.T, dir *fakeDirectory) *ldapclient.DirectoryClient {
	t.Helper()

	client, err := ldapclient.NewDirectoryClientWithDialer(t.Context(), &ldapclient.Config{
		Forests:    fakeForests,
		Username:   "svc-lookup",
		Password:   "svc-secret",
		UserDomain: "corp.example.com",
		MailDomain: "example.com",
	}, dir)
	require.NoError(t, err)

	return client
}

func fakeUserEntry(dn string) *ldap.Entry {
	return ldap.NewEntry(dn, map[string][]string{
		"sAMAccountName":     {"jdoe"},
		"mail":               {"john.doe@corp.example.com"},
		"userAccountControl": {"512"},
		"whenCreated":        {"20240131235959.0Z"},
		"lastLogonTimestamp": {"0"},
		"memberOf": {
			"CN=Admins,OU=Groups,DC=corp,DC=example,DC=com",
			"CN=Staff,OU=Groups,DC=corp,DC=example,DC=com",
		},
	})
}
