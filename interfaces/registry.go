package interfaces

import (
	"context"
	"encoding/json"
)

// ObjectRecord is one registry object as returned by an object lookup.
type ObjectRecord struct {
	ObjectID ObjectID

	// Version is the object version as reported by the network.
	Version string

	// Type is the fully qualified Move type of the object.
	Type string

	// Fields holds the object's content fields as raw JSON.
	Fields json.RawMessage
}

// ObjectResult is one element of a batch lookup. Exactly one of Record and
// Err is set.
type ObjectResult struct {
	ObjectID ObjectID
	Record   *ObjectRecord
	Err      error
}

// DynamicFieldEntry is one child record of a parent object.
type DynamicFieldEntry struct {
	// Name is the raw JSON value of the dynamic field name.
	Name json.RawMessage

	// ObjectType is the type of the child object.
	ObjectType string

	// ObjectID is the child object id.
	ObjectID ObjectID
}

// DynamicFieldPage is one page of a parent's children.
type DynamicFieldPage struct {
	Entries     []DynamicFieldEntry
	NextCursor  *string
	HasNextPage bool
}

// RegistryClient is the subset of the registry network's RPC used by the portal.
type RegistryClient interface {
	// GetObject returns the object with its content. Returns ErrNotFound if
	// the object does not exist.
	GetObject(ctx context.Context, id ObjectID) (*ObjectRecord, error)

	// GetDynamicFields returns one page of children of parentID starting after
	// cursor. A nil cursor requests the first page.
	GetDynamicFields(ctx context.Context, parentID ObjectID, cursor *string) (*DynamicFieldPage, error)

	// MultiGetObjects fetches a batch of objects in a single call. The result
	// has one element per requested id, in request order. The returned error
	// is reserved for failures of the call as a whole.
	MultiGetObjects(ctx context.Context, ids []ObjectID) ([]ObjectResult, error)

	// ResolveName resolves a registered name to an object id. Returns nil
	// without error when the name is not registered.
	ResolveName(ctx context.Context, name string) (*ObjectID, error)
}

// NameService resolves human-readable names to object ids.
// Implementations return ErrNotFound for unknown names and
// ErrUpstreamUnavailable when the service cannot be reached.
type NameService interface {
	ResolveName(ctx context.Context, name string) (ObjectID, error)
	Name() string
}
