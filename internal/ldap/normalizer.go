package ldap

import (
	"encoding/base64"
	"strings"

	"github.com/go-ldap/ldap/v3"
)

// Transform renders a single raw attribute value. Returning false drops the
// attribute from the record.
type Transform func(raw []byte) (string, bool)

// Normalizer turns raw search entries into records.
type Normalizer struct {
	transforms map[string]Transform
}

// NewNormalizer builds the transform table. mailDomain replaces the domain
// part of mail values; an empty domain leaves them as returned.
func NewNormalizer(mailDomain string) *Normalizer {
	sids := NewSIDHandler()
	guids := NewGUIDHandler()

	n := &Normalizer{transforms: map[string]Transform{
		"useraccountcontrol": func(raw []byte) (string, bool) {
			return AccountStatus(string(raw))
		},
		"mail": mailTransform(mailDomain),
		"objectsid": func(raw []byte) (string, bool) {
			s, err := sids.ConvertBinarySIDToString(raw)
			return s, err == nil
		},
		"objectguid": func(raw []byte) (string, bool) {
			s, err := guids.GUIDBytesToString(raw)
			return s, err == nil
		},
	}}

	for _, name := range []string{
		"createtimestamp", "modifytimestamp", "whenchanged", "whencreated",
		"badpasswordtime", "accountexpires", "lastlogontimestamp", "lastlogon",
		"pwdlastset",
	} {
		n.transforms[name] = timestampTransform
	}

	for _, name := range []string{"thumbnailphoto", "jpegphoto", "photo"} {
		n.transforms[name] = photoTransform
	}

	return n
}

func timestampTransform(raw []byte) (string, bool) {
	return ConvertTimestamp(string(raw)), true
}

func photoTransform(raw []byte) (string, bool) {
	return base64.StdEncoding.EncodeToString(raw), true
}

func mailTransform(domain string) Transform {
	domain = strings.TrimPrefix(strings.TrimSpace(domain), "@")

	return func(raw []byte) (string, bool) {
		mail := string(raw)
		if domain == "" {
			return mail, true
		}
		local, _, _ := strings.Cut(mail, "@")
		return local + "@" + domain, true
	}
}

// Normalize converts an entry into a record. Single-valued attributes pass
// through the transform table; multi-valued ones are kept as ordered lists
// without transformation.
func (n *Normalizer) Normalize(entry *ldap.Entry, forest Forest) *Record {
	record := &Record{
		DN:          entry.DN,
		Forest:      forest.BaseDN,
		Attributes:  make(map[string]string),
		MultiValued: make(map[string][]string),
	}

	for _, attr := range entry.Attributes {
		key := strings.ToLower(attr.Name)

		switch len(attr.ByteValues) {
		case 0:
			continue
		case 1:
			raw := attr.ByteValues[0]
			transform, ok := n.transforms[key]
			if !ok {
				record.Attributes[key] = string(raw)
				continue
			}
			if value, ok := transform(raw); ok {
				record.Attributes[key] = value
			}
		default:
			values := make([]string, len(attr.Values))
			copy(values, attr.Values)
			record.MultiValued[key] = values
		}
	}

	return record
}
