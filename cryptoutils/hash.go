package cryptoutils

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/ruteri/sites-portal-backend/interfaces"
)

// SHA256 hashes fetched blob content.
func SHA256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// VerifyBlobHash compares the SHA-256 of data with the expected hash recorded
// for a resource. An empty expected hash is not checked.
func VerifyBlobHash(data []byte, expected []byte) error {
	if len(expected) == 0 {
		return nil
	}

	actual := SHA256(data)
	if !bytes.Equal(actual[:], expected) {
		return fmt.Errorf("%w: expected %s, got %s", interfaces.ErrIntegrityMismatch,
			base64.StdEncoding.EncodeToString(expected),
			base64.StdEncoding.EncodeToString(actual[:]))
	}
	return nil
}
