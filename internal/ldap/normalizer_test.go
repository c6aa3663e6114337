package ldap

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleSID is S-1-5-21-1004336348-1177238915-682003330-512.
var sampleSID = []byte{
	0x01, 0x05, 0x00, 0x00, 0x00, 0x00, 0x00, 0x05,
	0x15, 0x00, 0x00, 0x00,
	0xdc, 0xf4, 0xdc, 0x3b,
	0x83, 0x3d, 0x2b, 0x46,
	0x82, 0x8b, 0xa6, 0x28,
	0x00, 0x02, 0x00, 0x00,
}

// sampleGUID is the AD byte layout of 6f9619ff-8b86-d011-b42d-00c04fc964ff.
var sampleGUID = []byte{
	0xff, 0x19, 0x96, 0x6f,
	0x86, 0x8b,
	0x11, 0xd0,
	0xb4, 0x2d, 0x00, 0xc0, 0x4f, 0xc9, 0x64, 0xff,
}

func binaryAttr(name string, value []byte) *ldap.EntryAttribute {
	return &ldap.EntryAttribute{
		Name:       name,
		Values:     []string{string(value)},
		ByteValues: [][]byte{value},
	}
}

func TestNormalizer_Normalize(t *testing.T) {
	photo := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F'}

	entry := &ldap.Entry{
		DN: "CN=John Doe,OU=Staff,DC=corp,DC=example,DC=com",
		Attributes: []*ldap.EntryAttribute{
			ldap.NewEntryAttribute("sAMAccountName", []string{"jdoe"}),
			ldap.NewEntryAttribute("displayName", []string{"John Doe"}),
			ldap.NewEntryAttribute("mail", []string{"jdoe@mail.corp.example.com"}),
			ldap.NewEntryAttribute("userAccountControl", []string{"66048"}),
			ldap.NewEntryAttribute("accountExpires", []string{"9223372036854775807"}),
			ldap.NewEntryAttribute("badPasswordTime", []string{"133247808000000000"}),
			ldap.NewEntryAttribute("memberOf", []string{"CN=A,DC=corp", "CN=B,DC=corp", "CN=C,DC=corp"}),
			ldap.NewEntryAttribute("proxyAddresses", []string{"SMTP:jdoe@example.com", "smtp:john.doe@example.com"}),
			ldap.NewEntryAttribute("description", []string{}),
			binaryAttr("thumbnailPhoto", photo),
			binaryAttr("objectSid", sampleSID),
			binaryAttr("objectGUID", sampleGUID),
		},
	}

	record := NewNormalizer("example.com").Normalize(entry, testForests[0])

	assert.Equal(t, entry.DN, record.DN)
	assert.Equal(t, testForests[0].BaseDN, record.Forest)

	assert.Equal(t, map[string]string{
		"samaccountname":     "jdoe",
		"displayname":        "John Doe",
		"mail":               "jdoe@example.com",
		"useraccountcontrol": "Enabled, password never expires",
		"accountexpires":     NeverLabel,
		"badpasswordtime":    "04/01/2023 00:00:00",
		"thumbnailphoto":     base64.StdEncoding.EncodeToString(photo),
		"objectsid":          "S-1-5-21-1004336348-1177238915-682003330-512",
		"objectguid":         "6f9619ff-8b86-d011-b42d-00c04fc964ff",
	}, record.Attributes)

	// Each multi-valued attribute keeps its own values in server order.
	assert.Equal(t, map[string][]string{
		"memberof":       {"CN=A,DC=corp", "CN=B,DC=corp", "CN=C,DC=corp"},
		"proxyaddresses": {"SMTP:jdoe@example.com", "smtp:john.doe@example.com"},
	}, record.MultiValued)

	flat := record.Flatten()
	assert.Len(t, flat, len(record.Attributes)+len(record.MultiValued))
	assert.Equal(t, "jdoe", flat["samaccountname"])
	assert.Equal(t, []string{"CN=A,DC=corp", "CN=B,DC=corp", "CN=C,DC=corp"}, flat["memberof"])
}

func TestNormalizer_DeclinedTransformsDropAttribute(t *testing.T) {
	entry := &ldap.Entry{
		DN: "CN=svc,DC=corp",
		Attributes: []*ldap.EntryAttribute{
			ldap.NewEntryAttribute("userAccountControl", []string{"999"}),
			binaryAttr("objectSid", []byte{0x01, 0x05}),
			binaryAttr("objectGUID", []byte{0x01, 0x02, 0x03}),
			ldap.NewEntryAttribute("cn", []string{"svc"}),
		},
	}

	record := NewNormalizer("").Normalize(entry, testForests[0])

	assert.Equal(t, map[string]string{"cn": "svc"}, record.Attributes)
	assert.NotContains(t, record.Attributes, "useraccountcontrol")
}

func TestNormalizer_MailDomain(t *testing.T) {
	tests := map[string]struct {
		domain string
		mail   string
		want   string
	}{
		"rewritten":          {domain: "example.com", mail: "person@other.domain", want: "person@example.com"},
		"leading at ignored": {domain: "@example.com", mail: "person@other.domain", want: "person@example.com"},
		"no domain part":     {domain: "example.com", mail: "person", want: "person@example.com"},
		"no rewrite":         {domain: "", mail: "person@other.domain", want: "person@other.domain"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			entry := ldap.NewEntry("CN=p,DC=corp", map[string][]string{"mail": {tt.mail}})
			record := NewNormalizer(tt.domain).Normalize(entry, testForests[0])

			assert.Equal(t, tt.want, record.Attributes["mail"])
		})
	}
}

func TestNormalizer_PhotoAttributes(t *testing.T) {
	raw := []byte{0x89, 'P', 'N', 'G', 0x00, 0xff}
	want := base64.StdEncoding.EncodeToString(raw)

	for _, name := range []string{"thumbnailPhoto", "jpegPhoto", "photo"} {
		entry := &ldap.Entry{DN: "CN=p,DC=corp", Attributes: []*ldap.EntryAttribute{binaryAttr(name, raw)}}

		record := NewNormalizer("").Normalize(entry, testForests[0])

		require.Contains(t, record.Attributes, strings.ToLower(name))
		assert.Equal(t, want, record.Attributes[strings.ToLower(name)], name)
	}
}

func TestAccountStatus(t *testing.T) {
	tests := map[string]struct {
		raw    string
		want   string
		wantOK bool
	}{
		"enabled":             {raw: "512", want: "Enabled", wantOK: true},
		"disabled":            {raw: "514", want: "Disabled", wantOK: true},
		"change at logon":     {raw: "544", want: "Account Enabled - Require user to change password at first logon", wantOK: true},
		"workstation":         {raw: "4096", want: "Workstation/server", wantOK: true},
		"never expires":       {raw: "66048", want: "Enabled, password never expires", wantOK: true},
		"disabled never exp":  {raw: "66050", want: "Disabled, password never expires", wantOK: true},
		"smart card":          {raw: "262656", want: "Smart Card Logon Required", wantOK: true},
		"domain controller":   {raw: "532480", want: "Domain controller", wantOK: true},
		"single flag":         {raw: "16", want: "lockout", wantOK: true},
		"delegation flag":     {raw: "16777216", want: "trusted_to_auth_for_delegation", wantOK: true},
		"unknown combination": {raw: "513", wantOK: false},
		"not a number":        {raw: "enabled", wantOK: false},
		"empty":               {raw: "", wantOK: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, ok := AccountStatus(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSIDHandler_ConvertBinarySIDToString(t *testing.T) {
	h := NewSIDHandler()

	got, err := h.ConvertBinarySIDToString(sampleSID)
	require.NoError(t, err)
	assert.Equal(t, "S-1-5-21-1004336348-1177238915-682003330-512", got)

	// Well-known SID with a single sub-authority: S-1-5-18 (LocalSystem).
	got, err = h.ConvertBinarySIDToString([]byte{0x01, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x05, 0x12, 0x00, 0x00, 0x00})
	require.NoError(t, err)
	assert.Equal(t, "S-1-5-18", got)

	for name, raw := range map[string][]byte{
		"empty":            nil,
		"short":            {0x01, 0x05},
		"bad revision":     {0x02, 0x00, 0, 0, 0, 0, 0, 5},
		"truncated":        sampleSID[:20],
		"trailing garbage": append(append([]byte(nil), sampleSID...), 0x00),
	} {
		_, err := h.ConvertBinarySIDToString(raw)
		assert.Error(t, err, name)
	}
}

func TestGUIDHandler_GUIDBytesToString(t *testing.T) {
	h := NewGUIDHandler()

	got, err := h.GUIDBytesToString(sampleGUID)
	require.NoError(t, err)
	assert.Equal(t, "6f9619ff-8b86-d011-b42d-00c04fc964ff", got)

	_, err = h.GUIDBytesToString(sampleGUID[:15])
	assert.Error(t, err)
}
