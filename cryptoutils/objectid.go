package cryptoutils

import (
	"fmt"
	"strings"

	"github.com/multiformats/go-base36"
	"github.com/ruteri/sites-portal-backend/interfaces"
)

// DecodeCompactObjectID decodes a base-36 subdomain label into an object id.
// The label must decode to exactly the network's address length; leading '0'
// digits stand for leading zero bytes.
func DecodeCompactObjectID(label string) (interfaces.ObjectID, error) {
	if label == "" {
		return interfaces.ObjectID{}, fmt.Errorf("empty compact object id")
	}

	decoded, err := base36.DecodeString(strings.ToLower(label))
	if err != nil {
		return interfaces.ObjectID{}, fmt.Errorf("invalid base36 label %q: %w", label, err)
	}

	if len(decoded) != interfaces.ObjectIDLength {
		return interfaces.ObjectID{}, fmt.Errorf("base36 label %q decodes to %d bytes, want %d", label, len(decoded), interfaces.ObjectIDLength)
	}

	return interfaces.NewObjectIDFromBytes(decoded)
}

// EncodeCompactObjectID returns the lower-case base-36 label for id.
func EncodeCompactObjectID(id interfaces.ObjectID) string {
	return base36.EncodeToStringLc(id[:])
}
