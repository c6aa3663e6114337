package ldap

import (
	"context"

	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/mock"
)

// MockDialer implements Dialer for testing.
type MockDialer struct {
	mock.Mock
}

func (m *MockDialer) Dial(ctx context.Context, forest Forest) (Conn, error) {
	args := m.Called(ctx, forest)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	conn, ok := args.Get(0).(Conn)
	if !ok {
		return nil, args.Error(1)
	}
	return conn, args.Error(1)
}

// MockConn implements Conn for testing.
type MockConn struct {
	mock.Mock
}

func (m *MockConn) Bind(username, password string) error {
	args := m.Called(username, password)
	return args.Error(0)
}

func (m *MockConn) Search(req *ldap.SearchRequest) (*ldap.SearchResult, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	result, ok := args.Get(0).(*ldap.SearchResult)
	if !ok {
		return nil, args.Error(1)
	}
	return result, args.Error(1)
}

func (m *MockConn) Close() error {
	args := m.Called()
	return args.Error(0)
}

// testForests is a two-forest configuration used across client tests.
var testForests = []Forest{
	{Host: "dc1.corp.example.com", BaseDN: "DC=corp,DC=example,DC=com"},
	{Host: "ldaps://dc1.lab.example.com", BaseDN: "DC=lab,DC=example,DC=com"},
}

func testConfig() *Config {
	return &Config{
		Forests:    append([]Forest(nil), testForests...),
		Username:   "svc-lookup",
		Password:   "svc-secret",
		UserDomain: "corp.example.com",
		MailDomain: "example.com",
	}
}

// createMockUserEntry creates a user entry shaped like an AD search result.
func createMockUserEntry(dn string) *ldap.Entry {
	return ldap.NewEntry(dn, map[string][]string{
		"sAMAccountName":     {"jdoe"},
		"givenName":          {"John"},
		"sn":                 {"Doe"},
		"mail":               {"john.doe@exchange.corp.example.com"},
		"userAccountControl": {"512"},
		"whenChanged":        {"20230401120000.0Z"},
		"pwdLastSet":         {"0"},
		"memberOf": {
			"CN=Engineering,OU=Groups,DC=corp,DC=example,DC=com",
			"CN=VPN Users,OU=Groups,DC=corp,DC=example,DC=com",
		},
	})
}

func searchResult(entries ...*ldap.Entry) *ldap.SearchResult {
	return &ldap.SearchResult{Entries: entries}
}

// searchOn matches a search request against a base DN and filter.
func searchOn(baseDN, filter string) any {
	return mock.MatchedBy(func(req *ldap.SearchRequest) bool {
		return req.BaseDN == baseDN && req.Filter == filter
	})
}
