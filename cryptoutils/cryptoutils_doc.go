// Package cryptoutils implements the identifier codecs and content hashing
// used by the portal.
//
// # Blob Identifiers
//
// The storage network reports blob ids either as decimal u256 values or as
// already encoded strings. NormalizeBlobID serializes decimal ids as 32-byte
// little-endian integers and renders them in URL-safe Base64 without padding:
//
//	id, err := cryptoutils.NormalizeBlobID("1234")
//	if err != nil {
//	    log.Warn("blob id kept in raw form", "err", err)
//	}
//
// # Compact Object Identifiers
//
// A site object id may be used directly as a subdomain in its base-36 form.
// DecodeCompactObjectID accepts only labels that decode to exactly 32 bytes.
//
// # Integrity
//
// SHA256 and VerifyBlobHash check fetched bytes against the hash recorded for
// a resource.
package cryptoutils
