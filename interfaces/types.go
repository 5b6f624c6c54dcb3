package interfaces

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ObjectIDLength is the registry network's address length in bytes.
const ObjectIDLength = 32

// ObjectID is a registry object address.
type ObjectID [ObjectIDLength]byte

// NewObjectIDFromBytes creates an object id from up to 32 bytes, left-padding
// shorter input with zeros.
func NewObjectIDFromBytes(source []byte) (ObjectID, error) {
	if len(source) > ObjectIDLength {
		return ObjectID{}, fmt.Errorf("invalid object id: %d bytes exceeds %d", len(source), ObjectIDLength)
	}

	var id ObjectID
	copy(id[:], common.LeftPadBytes(source, ObjectIDLength))
	return id, nil
}

// NewObjectIDFromHex parses a hex object id with or without the 0x prefix.
// Short ids such as "0x2" are left-padded to the full address length.
func NewObjectIDFromHex(source string) (ObjectID, error) {
	clean := strings.TrimPrefix(strings.TrimPrefix(source, "0x"), "0X")
	if clean == "" || len(clean) > 2*ObjectIDLength {
		return ObjectID{}, errors.New("invalid object id length: hex string must be 1 to 64 characters")
	}

	if len(clean)%2 == 1 {
		clean = "0" + clean
	}

	idBytes, err := hex.DecodeString(clean)
	if err != nil {
		return ObjectID{}, fmt.Errorf("invalid hex format: %w", err)
	}

	return NewObjectIDFromBytes(idBytes)
}

// Hex returns the canonical 0x-prefixed, zero-padded, lowercase form.
func (id ObjectID) Hex() string {
	return "0x" + hex.EncodeToString(id[:])
}

// String returns the canonical hex form.
func (id ObjectID) String() string {
	return id.Hex()
}

// Bytes returns the raw 32-byte address.
func (id ObjectID) Bytes() []byte {
	return id[:]
}

// IsZero reports whether the id is the zero address.
func (id ObjectID) IsZero() bool {
	return id == ObjectID{}
}

// DomainDetails is the parsed request target.
type DomainDetails struct {
	// Subdomain is the lower-cased label(s) preceding the portal suffix.
	Subdomain string

	// Path is the URL path. It always begins with "/".
	Path string
}

// Header is one entry of a resource's ordered header map.
type Header struct {
	Key   string
	Value string
}

// Range is an optional byte range of a blob. Either bound may be absent.
type Range struct {
	Start *uint64
	End   *uint64
}

// RequestHeader renders the HTTP Range request header value, or "" when
// neither bound is set.
func (r *Range) RequestHeader() string {
	if r == nil || (r.Start == nil && r.End == nil) {
		return ""
	}

	var start, end string
	if r.Start != nil {
		start = strconv.FormatUint(*r.Start, 10)
	}
	if r.End != nil {
		end = strconv.FormatUint(*r.End, 10)
	}
	return fmt.Sprintf("bytes=%s-%s", start, end)
}

// ResourcePath describes one file of a site.
type ResourcePath struct {
	// Path is the logical file path recorded on chain, e.g. "/css/site.css".
	Path string

	// ObjectID is the registry object holding the resource record.
	ObjectID ObjectID

	// BlobID is the URL-safe blob identifier used against blob sources.
	BlobID string

	// BlobHash is the expected SHA-256 of the blob bytes. May be empty.
	BlobHash []byte

	// Range optionally restricts the resource to a slice of the blob.
	Range *Range

	// Version is the registry version of the resource object.
	Version string

	// Headers are the HTTP headers recorded for the resource, in order.
	Headers []Header
}

// ResourceIndex maps file basenames to resources for one resolved site.
type ResourceIndex struct {
	// SiteID is the object the index was built from.
	SiteID ObjectID

	// Resources is keyed by the basename of ResourcePath.Path.
	Resources map[string]*ResourcePath

	// Failures records entries that could not be indexed, keyed by a
	// best-effort basename.
	Failures map[string]error
}

// NewResourceIndex returns an empty index for siteID.
func NewResourceIndex(siteID ObjectID) *ResourceIndex {
	return &ResourceIndex{
		SiteID:    siteID,
		Resources: make(map[string]*ResourcePath),
		Failures:  make(map[string]error),
	}
}

// IsEmpty reports whether the index holds neither resources nor failures.
func (idx *ResourceIndex) IsEmpty() bool {
	return len(idx.Resources) == 0 && len(idx.Failures) == 0
}

// RetrievedBlob is content fetched for a resource.
type RetrievedBlob struct {
	// Data is the fetched byte sequence. It must not be modified.
	Data []byte

	// Headers are the resource headers plus the synthesized object headers.
	Headers http.Header

	// FetchedAt is the time the fetch completed.
	FetchedAt time.Time

	// SHA256 is the hash of Data.
	SHA256 [32]byte

	// Source names the blob source that served the bytes.
	Source string
}
