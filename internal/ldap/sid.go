package ldap

import (
	"fmt"

	"github.com/bwmarrin/go-objectsid"
)

// SIDHandler converts Active Directory binary SIDs.
type SIDHandler struct{}

// NewSIDHandler creates a new SID handler instance.
func NewSIDHandler() *SIDHandler {
	return &SIDHandler{}
}

// ConvertBinarySIDToString converts a binary objectSid to S-1-5-21-... form.
func (s *SIDHandler) ConvertBinarySIDToString(binarySID []byte) (string, error) {
	if err := validateBinarySID(binarySID); err != nil {
		return "", err
	}

	return objectsid.Decode(binarySID).String(), nil
}

// validateBinarySID checks the layout go-objectsid expects: revision 1,
// sub-authority count, 6-byte authority, then 4 bytes per sub-authority.
func validateBinarySID(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("binary SID cannot be empty")
	}
	if len(b) < 8 {
		return fmt.Errorf("binary SID too short: %d bytes", len(b))
	}
	if b[0] != 1 {
		return fmt.Errorf("unsupported SID revision %d", b[0])
	}
	if want := 8 + 4*int(b[1]); len(b) != want {
		return fmt.Errorf("invalid SID length: expected %d bytes for %d sub-authorities, got %d", want, b[1], len(b))
	}
	return nil
}
