package cryptoutils

import (
	"encoding/base64"
	"fmt"
	"regexp"

	"github.com/holiman/uint256"
)

var decimalPattern = regexp.MustCompile(`^[0-9]+$`)

// EncodeURLSafe returns the URL-safe Base64 form of data: standard Base64 with
// '/' replaced by '_', '+' by '-', and padding removed.
func EncodeURLSafe(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// IsDecimal reports whether s is a non-empty string of ASCII digits.
func IsDecimal(s string) bool {
	return decimalPattern.MatchString(s)
}

// U256LittleEndian parses a decimal unsigned 256-bit integer and returns its
// canonical 32-byte little-endian serialization.
func U256LittleEndian(decimal string) ([]byte, error) {
	value, err := uint256.FromDecimal(decimal)
	if err != nil {
		return nil, fmt.Errorf("invalid u256 %q: %w", decimal, err)
	}

	be := value.Bytes32()
	le := make([]byte, len(be))
	for i := range be {
		le[i] = be[len(be)-1-i]
	}
	return le, nil
}

// NormalizeBlobID converts a blob identifier to the form accepted by blob
// sources. Decimal identifiers are serialized as u256 and URL-safe encoded;
// anything else is already canonical and returned unchanged.
//
// When a decimal identifier cannot be serialized the raw value is returned
// together with the error. The value is a best-effort fallback and callers
// should log the error as a warning.
func NormalizeBlobID(raw string) (string, error) {
	if !IsDecimal(raw) {
		return raw, nil
	}

	serialized, err := U256LittleEndian(raw)
	if err != nil {
		return raw, fmt.Errorf("could not serialize blob id, using raw value: %w", err)
	}

	return EncodeURLSafe(serialized), nil
}
