package ldap

import (
	"fmt"

	"github.com/google/uuid"
)

// GUIDBytesLength is the size of a binary objectGUID.
const GUIDBytesLength = 16

// GUIDHandler converts Active Directory binary GUIDs.
type GUIDHandler struct{}

// NewGUIDHandler creates a new GUID handler instance.
func NewGUIDHandler() *GUIDHandler {
	return &GUIDHandler{}
}

// GUIDBytesToString converts Active Directory GUID bytes to the canonical
// string form. AD stores the first three groups little-endian.
func (g *GUIDHandler) GUIDBytesToString(guidBytes []byte) (string, error) {
	if len(guidBytes) != GUIDBytesLength {
		return "", fmt.Errorf("invalid GUID byte length: expected %d, got %d", GUIDBytesLength, len(guidBytes))
	}

	standardBytes := make([]byte, GUIDBytesLength)

	// Data1
	standardBytes[0] = guidBytes[3]
	standardBytes[1] = guidBytes[2]
	standardBytes[2] = guidBytes[1]
	standardBytes[3] = guidBytes[0]

	// Data2
	standardBytes[4] = guidBytes[5]
	standardBytes[5] = guidBytes[4]

	// Data3
	standardBytes[6] = guidBytes[7]
	standardBytes[7] = guidBytes[6]

	// Data4 is already big-endian
	copy(standardBytes[8:], guidBytes[8:])

	id, err := uuid.FromBytes(standardBytes)
	if err != nil {
		return "", fmt.Errorf("invalid GUID: %w", err)
	}

	return id.String(), nil
}
